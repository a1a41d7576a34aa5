// Package shell is an interactive console for playing a practice room
// against the pass-only bot.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/wordroom/board"
	"github.com/domino14/wordroom/game"
	"github.com/domino14/wordroom/move"
	"github.com/domino14/wordroom/room"
	"github.com/domino14/wordroom/tilemapping"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("no game yet; start one with `new`")
)

const commandTimeout = 10 * time.Second

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

// extractFields splits a line into a command, positional arguments and
// -option value pairs.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := &shellcmd{cmd: fields[0], options: map[string]string{}}
	for i := 1; i < len(fields); i++ {
		if strings.HasPrefix(fields[i], "-") {
			if i+1 >= len(fields) {
				return nil, errWrongOptionSyntax
			}
			cmd.options[fields[i][1:]] = fields[i+1]
			i++
			continue
		}
		cmd.args = append(cmd.args, fields[i])
	}
	return cmd, nil
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type ShellController struct {
	l   *readline.Instance
	out io.Writer

	hub      *room.Hub
	events   *room.Broadcaster
	settings game.Settings

	code     string
	playerID string
	sub      *room.Subscription
	rack     []tilemapping.Tile
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// NewShellController makes a console whose practice rooms live in hub.
func NewShellController(hub *room.Hub, events *room.Broadcaster, settings game.Settings) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mwordroom>\033[0m ",
		HistoryFile:     "/tmp/wordroom-readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc := newController(hub, events, settings, l.Stderr())
	sc.l = l
	return sc
}

func newController(hub *room.Hub, events *room.Broadcaster, settings game.Settings, out io.Writer) *ShellController {
	settings.Mode = game.ModePractice
	settings.MaxPlayers = game.MinPlayers
	return &ShellController{hub: hub, events: events, settings: settings, out: out}
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func (sc *ShellController) do(cmd room.Command) (any, error) {
	if sc.code == "" {
		return nil, errNoGame
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	val, err := sc.hub.Dispatch(ctx, sc.code, cmd)
	sc.drain()
	return val, err
}

// drain prints the events that arrived since the last command.
func (sc *ShellController) drain() {
	if sc.sub == nil {
		return
	}
	for {
		select {
		case e, ok := <-sc.sub.Events:
			if !ok {
				return
			}
			if line := sc.describe(e); line != "" {
				sc.showMessage(line)
			}
		default:
			return
		}
	}
}

func (sc *ShellController) describe(e room.Event) string {
	switch p := e.Payload.(type) {
	case room.RackUpdated:
		sc.rack = p.Tiles
		return ""
	case room.MoveAccepted:
		words := make([]string, len(p.Words))
		for i, w := range p.Words {
			words[i] = fmt.Sprintf("%s (%d)", w.Word, w.Score)
		}
		bingo := ""
		if p.Bingo {
			bingo = " bingo!"
		}
		return fmt.Sprintf("%s played %s for %d%s", sc.name(p.PlayerID), strings.Join(words, ", "), p.Score, bingo)
	case room.MoveRejected:
		return fmt.Sprintf("move rejected (%s): %s", p.Reason, p.Message)
	case room.TurnChanged:
		return fmt.Sprintf("%s to play (%s)", sc.name(p.PlayerID), p.Cause)
	case room.ChallengeOpened:
		return fmt.Sprintf("%s challenged %s", sc.name(p.ChallengerID), p.Word)
	case room.ChallengeResolved:
		verdict := "valid"
		if !p.Valid {
			verdict = "not valid"
		}
		return fmt.Sprintf("challenge on %s: %s (%s)", p.Word, verdict, p.ResolvedBy)
	case room.TimerWarning:
		return fmt.Sprintf("%d seconds left", p.RemainingMs/1000)
	case room.GameFinished:
		var sb strings.Builder
		fmt.Fprintf(&sb, "game over (%s)\n", p.Reason)
		for _, r := range p.Results {
			fmt.Fprintf(&sb, "%d. %-14s %4d  bingos %d, best %d, longest %s\n",
				r.Rank, r.Name, r.Score, r.Stats.Bingos, r.Stats.HighestMove, r.Stats.LongestWord)
		}
		return strings.TrimRight(sb.String(), "\n")
	}
	return ""
}

func (sc *ShellController) name(id string) string {
	if id == sc.playerID {
		return "you"
	}
	return "opponent"
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	if sc.code != "" {
		sc.leave()
	}
	name := cmd.options["name"]
	if name == "" {
		name = "self"
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	c, res, err := sc.hub.Create(ctx, sc.settings, name)
	if err != nil {
		return nil, err
	}
	sc.code, sc.playerID = c.Code(), res.PlayerID
	sc.sub = sc.events.Subscribe(sc.code, sc.playerID)
	if _, err := sc.do(room.Start{PlayerID: sc.playerID}); err != nil {
		return nil, err
	}
	return sc.show()
}

func (sc *ShellController) leave() {
	sc.do(room.Leave{PlayerID: sc.playerID})
	if sc.sub != nil {
		sc.sub.Close()
	}
	sc.code, sc.playerID, sc.sub, sc.rack = "", "", nil, nil
}

func (sc *ShellController) state() (game.State, error) {
	val, err := sc.do(room.GetState{})
	if err != nil {
		return game.State{}, err
	}
	return val.(game.State), nil
}

func (sc *ShellController) show() (*Response, error) {
	st, err := sc.state()
	if err != nil {
		return nil, err
	}
	return msg(sc.displayText(st)), nil
}

func (sc *ShellController) displayText(st game.State) string {
	var sb strings.Builder
	sb.WriteString(board.FromTiles(st.Board).ToDisplayText())
	sb.WriteString("\n")
	for _, p := range st.Players {
		marker := "  "
		if st.Turn != nil && st.Turn.PlayerID == p.ID {
			marker = "->"
		}
		fmt.Fprintf(&sb, "%s %-14s %4d\n", marker, p.Name, p.Score)
	}
	fmt.Fprintf(&sb, "bag: %d  rack: %s", st.BagCount, sc.rackString())
	if st.Turn != nil {
		fmt.Fprintf(&sb, "  clock: %ds", st.Turn.RemainingMs/1000)
	}
	return sb.String()
}

func (sc *ShellController) rackString() string {
	letters := []rune(tilemapping.TilesString(sc.rack))
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return string(letters)
}

func (sc *ShellController) tiles(args []string) ([]move.TileRequest, error) {
	if len(args) != 2 {
		return nil, errors.New("need <coords> <word>, as in 8H GOAT")
	}
	return move.RequestsFromCoords(args[0], args[1])
}

func (sc *ShellController) play(args []string) (*Response, error) {
	reqs, err := sc.tiles(args)
	if err != nil {
		return nil, err
	}
	if _, err := sc.do(room.SubmitMove{PlayerID: sc.playerID, Tiles: reqs}); err != nil {
		return nil, err
	}
	return sc.show()
}

func (sc *ShellController) preview(args []string) (*Response, error) {
	reqs, err := sc.tiles(args)
	if err != nil {
		return nil, err
	}
	val, err := sc.do(room.Preview{PlayerID: sc.playerID, Tiles: reqs})
	res, _ := val.(*game.MoveResult)
	if res == nil {
		return nil, err
	}
	var sb strings.Builder
	for _, w := range res.Score.Words {
		valid := "ok"
		if !w.Valid {
			valid = "not a word"
		}
		fmt.Fprintf(&sb, "%-15s %3d  %s\n", w.Word, w.Score, valid)
	}
	fmt.Fprintf(&sb, "total %d", res.Score.Total)
	return msg(sb.String()), nil
}

func (sc *ShellController) swap(args []string) (*Response, error) {
	if len(args) != 1 {
		return nil, errors.New("need the letters to swap, ? for a blank")
	}
	if _, err := sc.do(room.Swap{PlayerID: sc.playerID, Letters: args[0]}); err != nil {
		return nil, err
	}
	return sc.show()
}

func (sc *ShellController) pass() (*Response, error) {
	if _, err := sc.do(room.Pass{PlayerID: sc.playerID}); err != nil {
		return nil, err
	}
	return sc.show()
}

func (sc *ShellController) finish() (*Response, error) {
	if _, err := sc.do(room.Finish{PlayerID: sc.playerID}); err != nil {
		return nil, err
	}
	return msg("finished"), nil
}

func (sc *ShellController) rackCmd() (*Response, error) {
	if sc.code == "" {
		return nil, errNoGame
	}
	sc.drain()
	return msg(sc.rackString()), nil
}

func (sc *ShellController) handle(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "new", "n":
		return sc.newGame(cmd)
	case "show", "s", "b":
		return sc.show()
	case "rack", "r":
		return sc.rackCmd()
	case "play", "pl", "p":
		return sc.play(cmd.args)
	case "preview", "pv":
		return sc.preview(cmd.args)
	case "swap", "exchange", "ex", "x":
		return sc.swap(cmd.args)
	case "pass", "pa":
		return sc.pass()
	case "finish":
		return sc.finish()
	case "help", "h":
		return msg(usage), nil
	default:
		msg := fmt.Sprintf("command %v not found", strconv.Quote(cmd.cmd))
		log.Info().Msg(msg)
		return nil, errors.New(msg)
	}
}

const usage = `commands:
new [-name <name>]      start a practice game against the bot
show                    show the board, scores and your rack
rack                    show your rack
play <coords> <word>    play a word, as in: play 8H GOAT (lowercase for a blank)
preview <coords> <word> score a play without making it
swap <letters>          exchange tiles, ? for a blank
pass                    pass your turn
finish                  end the game
exit                    quit`

// Loop reads commands until exit or end of input.
func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" {
			sig <- syscall.SIGINT
			break
		}
		resp, err := sc.handle(line)
		if err != nil {
			sc.showError(err)
		} else if resp != nil {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup leaves the current room.
func (sc *ShellController) Cleanup() {
	if sc.code != "" {
		sc.leave()
	}
}
