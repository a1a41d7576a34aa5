package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/wordroom/bot"
	"github.com/domino14/wordroom/game"
	"github.com/domino14/wordroom/move"
	"github.com/domino14/wordroom/tilemapping"
)

// ErrRoomClosed is returned for commands sent to a room that has shut down.
var ErrRoomClosed = fmt.Errorf("%w: room closed", game.ErrRoomNotFound)

const defaultMailboxSize = 64

type reply struct {
	value any
	err   error
}

type envelope struct {
	ctx   context.Context
	cmd   Command
	reply chan reply
}

// Option configures a Coordinator.
type Option func(*Coordinator)

func WithClock(c game.Clock) Option {
	return func(co *Coordinator) { co.clock = c }
}

func WithRandomizer(r tilemapping.Randomizer) Option {
	return func(co *Coordinator) { co.rng = r }
}

// WithBot sets the opponent seated in practice rooms.
func WithBot(b bot.Bot) Option {
	return func(co *Coordinator) { co.bot = b }
}

func WithMailboxSize(n int) Option {
	return func(co *Coordinator) { co.mailboxSize = n }
}

// A Coordinator owns one room. All commands for it, including timer
// expiries, go through a single mailbox and are handled one at a time
// by Run.
type Coordinator struct {
	code  string
	game  *game.Game
	sink  EventSink
	bot   bot.Bot
	clock game.Clock
	rng   tilemapping.Randomizer
	log   zerolog.Logger

	mailboxSize int
	inbox       chan envelope
	done        chan struct{}
	closed      bool
	onClose     func(code string)
}

// NewCoordinator creates a room. Call Run to start processing commands.
func NewCoordinator(code string, settings game.Settings, dict game.WordChecker, sink EventSink, opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		code:        code,
		sink:        sink,
		clock:       game.RealClock(),
		mailboxSize: defaultMailboxSize,
		done:        make(chan struct{}),
		log:         log.With().Str("room", code).Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sink == nil {
		c.sink = discardSink{}
	}
	if c.bot == nil {
		c.bot = bot.NewPassBot(bot.DefaultName)
	}
	c.inbox = make(chan envelope, c.mailboxSize)

	gopts := []game.Option{
		game.WithClock(c.clock),
		game.WithHooks(game.Hooks{
			TurnExpired:      func(gen uint64) { c.post(turnTimeout{gen}) },
			TurnWarning:      func(gen uint64) { c.post(turnWarning{gen}) },
			ChallengeExpired: func(gen uint64) { c.post(challengeTimeout{gen}) },
		}),
	}
	if c.rng != nil {
		gopts = append(gopts, game.WithRandomizer(c.rng))
	}
	g, err := game.NewGame(code, settings, dict, gopts...)
	if err != nil {
		return nil, err
	}
	c.game = g
	return c, nil
}

func (c *Coordinator) Code() string {
	return c.code
}

// Done is closed once the room has shut down.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Run processes the mailbox until the room empties or ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	c.log.Debug().Msg("room-running")
	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			close(c.done)
			return
		case env := <-c.inbox:
			val, err := c.handle(env.ctx, env.cmd)
			if err != nil {
				c.log.Debug().Err(err).Str("verb", env.cmd.verb()).Msg("command-rejected")
			}
			if env.reply != nil {
				env.reply <- reply{val, err}
			}
			if c.closed {
				// The last reply is out; anything still queued is refused.
				close(c.done)
				return
			}
		}
	}
}

// Do sends cmd to the room and waits for the reply.
func (c *Coordinator) Do(ctx context.Context, cmd Command) (any, error) {
	env := envelope{ctx: ctx, cmd: cmd, reply: make(chan reply, 1)}
	select {
	case c.inbox <- env:
	case <-c.done:
		return nil, ErrRoomClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-env.reply:
		return r.value, r.err
	case <-c.done:
		select {
		case r := <-env.reply:
			return r.value, r.err
		default:
			return nil, ErrRoomClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close shuts the room down.
func (c *Coordinator) Close(ctx context.Context) error {
	_, err := c.Do(ctx, closeRoom{})
	if errors.Is(err, ErrRoomClosed) {
		return nil
	}
	return err
}

// post queues a timer expiry without waiting for a reply.
func (c *Coordinator) post(cmd Command) {
	env := envelope{ctx: context.Background(), cmd: cmd}
	select {
	case c.inbox <- env:
		return
	case <-c.done:
		return
	default:
	}
	go func() {
		select {
		case c.inbox <- env:
		case <-c.done:
		}
	}()
}

func (c *Coordinator) handle(ctx context.Context, cmd Command) (any, error) {
	val, err := c.dispatch(ctx, cmd)
	if !c.closed {
		c.playBots(ctx)
	}
	return val, err
}

func (c *Coordinator) dispatch(ctx context.Context, cmd Command) (any, error) {
	g := c.game
	switch cmd := cmd.(type) {
	case Join:
		return c.join(cmd)
	case Attach:
		return c.attach(cmd)
	case Leave:
		return c.leave(cmd)
	case SetReady:
		if err := g.SetReady(cmd.PlayerID, cmd.Ready); err != nil {
			return nil, err
		}
		return c.broadcastState(), nil
	case Start:
		return c.start(cmd)
	case SubmitMove:
		return c.submit(ctx, cmd)
	case Preview:
		return g.Preview(ctx, cmd.PlayerID, cmd.Tiles)
	case Pass:
		if err := g.Pass(cmd.PlayerID); err != nil {
			return nil, err
		}
		c.emitTurn(CausePass)
		return g.Snapshot(), nil
	case Swap:
		if _, err := g.Exchange(cmd.PlayerID, cmd.Letters); err != nil {
			return nil, err
		}
		c.emitRack(cmd.PlayerID)
		c.emitTurn(CauseSwap)
		return g.Snapshot(), nil
	case IssueChallenge:
		ch, err := g.IssueChallenge(cmd.PlayerID, cmd.TargetID, cmd.Word)
		if err != nil {
			return nil, err
		}
		c.emit(EventChallengeOpened, "", ChallengeOpened{
			ChallengerID: ch.ChallengerID,
			TargetID:     ch.TargetID,
			Word:         ch.Word,
			ExpiresAt:    ch.ExpiresAt(),
		})
		return ch, nil
	case RespondChallenge:
		v, err := g.RespondChallenge(cmd.PlayerID, cmd.Valid)
		if err != nil {
			return nil, err
		}
		c.emitVerdict(v)
		return v, nil
	case Finish:
		if err := g.Finish(cmd.PlayerID); err != nil {
			return nil, err
		}
		c.emitFinished()
		return g.Snapshot(), nil
	case GetState:
		return g.Snapshot(), nil
	case turnTimeout:
		ok, err := g.TurnExpired(cmd.gen)
		if ok {
			c.emitTurn(CauseTimeout)
		}
		return nil, err
	case turnWarning:
		if g.TurnWarning(cmd.gen) {
			ts := g.TurnState()
			c.emit(EventTimerWarning, "", TimerWarning{PlayerID: ts.PlayerID, RemainingMs: ts.RemainingMs})
		}
		return nil, nil
	case challengeTimeout:
		if v, ok := g.ChallengeExpired(cmd.gen); ok {
			c.emitVerdict(v)
		}
		return nil, nil
	case closeRoom:
		c.shutdown()
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %s", game.ErrInvalidCommand, cmd.verb())
}

func (c *Coordinator) join(cmd Join) (JoinResult, error) {
	g := c.game
	host := g.NumPlayers() == 0
	p, err := g.AddPlayer(cmd.Name, host)
	if err != nil {
		return JoinResult{}, err
	}
	if host && g.Settings().Mode == game.ModePractice {
		if _, err := g.AddBot(c.bot.Name()); err != nil {
			return JoinResult{}, err
		}
	}
	return JoinResult{PlayerID: p.ID, State: c.broadcastState()}, nil
}

func (c *Coordinator) attach(cmd Attach) (game.State, error) {
	if _, _, err := c.game.Player(cmd.PlayerID); err != nil {
		return game.State{}, err
	}
	st := c.game.Snapshot()
	c.emit(EventRoomState, cmd.PlayerID, st)
	if c.game.Status() == game.StatusInProgress {
		c.emitRack(cmd.PlayerID)
	}
	c.log.Debug().Str("player", cmd.PlayerID).Msg("player-attached")
	return st, nil
}

func (c *Coordinator) leave(cmd Leave) (game.RemoveResult, error) {
	g := c.game
	res, err := g.RemovePlayer(cmd.PlayerID)
	if err != nil {
		return res, err
	}
	c.emit(EventPlayerLeft, "", PlayerLeft{PlayerID: res.Player.ID, Name: res.Player.Name, NewHost: res.NewHost})
	switch {
	case res.Finished:
		c.emitFinished()
	case res.TurnChanged:
		c.emitTurn(CauseLeave)
	}
	if !lo.SomeBy(g.Players(), func(p *game.Player) bool { return !p.Bot }) {
		c.shutdown()
		return res, nil
	}
	c.broadcastState()
	return res, nil
}

func (c *Coordinator) start(cmd Start) (game.State, error) {
	g := c.game
	if err := g.Start(cmd.PlayerID); err != nil {
		return game.State{}, err
	}
	st := g.Snapshot()
	c.emit(EventGameStarted, "", GameStarted{Players: st.Players, TurnIndex: st.Turn.PlayerIndex, Clock: st.Turn})
	for _, p := range g.Players() {
		if !p.Bot {
			c.emitRack(p.ID)
		}
	}
	return st, nil
}

func (c *Coordinator) submit(ctx context.Context, cmd SubmitMove) (*game.MoveResult, error) {
	res, err := c.game.SubmitMove(ctx, cmd.PlayerID, cmd.Tiles)
	if err != nil {
		rej := MoveRejected{PlayerID: cmd.PlayerID, Reason: game.ReasonCode(err), Message: err.Error()}
		if res != nil {
			score := res.Score
			rej.Score = &score
		}
		c.emit(EventMoveRejected, cmd.PlayerID, rej)
		return res, err
	}
	p, _, _ := c.game.Player(cmd.PlayerID)
	c.emit(EventMoveAccepted, "", MoveAccepted{
		PlayerID: cmd.PlayerID,
		Words:    res.Score.Words,
		Score:    res.Score.Total,
		Bingo:    res.Score.Bingo,
		Total:    p.Score,
	})
	c.emitRack(cmd.PlayerID)
	if res.Finished {
		c.emitFinished()
	} else {
		c.emitTurn(CauseMove)
	}
	return res, nil
}

// playBots lets any bot on turn act. Bounded by seat count so a bot can
// never loop the room.
func (c *Coordinator) playBots(ctx context.Context) {
	g := c.game
	for i := 0; i < g.NumPlayers(); i++ {
		if g.Status() != game.StatusInProgress {
			return
		}
		if _, open := g.ActiveChallenge(); open {
			return
		}
		p := g.CurrentPlayer()
		if p == nil || !p.Bot {
			return
		}
		d := c.bot.ChooseMove(ctx, g.Snapshot(), p.Rack())
		var cmd Command = Pass{PlayerID: p.ID}
		switch d.Action {
		case move.MoveTypePlay:
			cmd = SubmitMove{PlayerID: p.ID, Tiles: d.Tiles}
		case move.MoveTypeExchange:
			cmd = Swap{PlayerID: p.ID, Letters: d.Exchange}
		}
		if _, err := c.dispatch(ctx, cmd); err != nil {
			c.log.Warn().Err(err).Str("player", p.ID).Msg("bot-move-failed")
			if _, err := c.dispatch(ctx, Pass{PlayerID: p.ID}); err != nil {
				return
			}
		}
	}
}

func (c *Coordinator) shutdown() {
	if c.closed {
		return
	}
	c.closed = true
	if c.game.Abort(game.FinishRoomClosed) {
		c.emitFinished()
	}
	c.log.Debug().Msg("room-closed")
	if c.onClose != nil {
		c.onClose(c.code)
	}
}

func (c *Coordinator) emit(typ, to string, payload any) {
	c.sink.Publish(Event{Type: typ, Room: c.code, To: to, At: c.clock.Now(), Payload: payload})
}

func (c *Coordinator) broadcastState() game.State {
	st := c.game.Snapshot()
	c.emit(EventRoomState, "", st)
	return st
}

func (c *Coordinator) emitRack(playerID string) {
	tiles, err := c.game.RackFor(playerID)
	if err != nil {
		return
	}
	c.emit(EventRackUpdated, playerID, RackUpdated{Tiles: tiles})
}

func (c *Coordinator) emitTurn(cause string) {
	ts := c.game.TurnState()
	if ts == nil {
		return
	}
	c.emit(EventTurnChanged, "", TurnChanged{TurnIndex: ts.PlayerIndex, PlayerID: ts.PlayerID, Clock: ts, Cause: cause})
}

func (c *Coordinator) emitVerdict(v game.Verdict) {
	c.emit(EventChallengeResolved, "", ChallengeResolved{
		Valid:      v.Valid,
		Word:       v.Challenge.Word,
		Penalty:    v.Penalty,
		Reversal:   v.Reversal,
		ResolvedBy: v.ResolvedBy,
		Players:    c.game.Snapshot().Players,
	})
}

func (c *Coordinator) emitFinished() {
	c.emit(EventGameFinished, "", GameFinished{Reason: c.game.FinishReason(), Results: c.game.Results()})
}
