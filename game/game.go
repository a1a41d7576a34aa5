// Package game holds the authoritative state of one room: players, board,
// bag, whose turn it is and any open challenge. A Game is not safe for
// concurrent use; the room package serializes every call.
package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/wordroom/board"
	"github.com/domino14/wordroom/lexicon"
	"github.com/domino14/wordroom/move"
	"github.com/domino14/wordroom/scoring"
	"github.com/domino14/wordroom/tilemapping"
)

// Finish reasons.
const (
	FinishOutOfTiles       = "out-of-tiles"
	FinishByHost           = "host"
	FinishNotEnoughPlayers = "not-enough-players"
	FinishRoomClosed       = "room-closed"
)

// WordChecker decides word validity. *lexicon.Gate implements it.
type WordChecker interface {
	Check(ctx context.Context, v lexicon.Variant, words []string) []bool
}

// Hooks receive timer expiries. See TurnHooks.
type Hooks struct {
	TurnExpired      func(gen uint64)
	TurnWarning      func(gen uint64)
	ChallengeExpired func(gen uint64)
}

// Option configures a Game.
type Option func(*Game)

func WithClock(c Clock) Option {
	return func(g *Game) { g.clock = c }
}

// WithRandomizer fixes bag shuffling, for reproducible games.
func WithRandomizer(r tilemapping.Randomizer) Option {
	return func(g *Game) { g.rng = r }
}

func WithHooks(h Hooks) Option {
	return func(g *Game) { g.hooks = h }
}

// Turn is one entry of the game log.
type Turn struct {
	Seq      int       `json:"seq"`
	PlayerID string    `json:"playerId"`
	Action   string    `json:"action"`
	Summary  string    `json:"summary"`
	Words    []string  `json:"words,omitempty"`
	Score    int       `json:"score"`
	At       time.Time `json:"at"`
}

// Game is the actual internal game structure that controls the entire
// business logic of the game; drawing, making moves, etc.
type Game struct {
	code     string
	settings Settings
	dict     WordChecker
	clock    Clock
	rng      tilemapping.Randomizer
	hooks    Hooks
	log      zerolog.Logger

	board   *board.GameBoard
	bag     *tilemapping.Bag
	players []*Player

	turns   *TurnController
	arbiter *ChallengeArbiter

	lastMove     *LastMove
	history      []Turn
	finishReason string
}

// NewGame creates a room's game in the waiting state.
func NewGame(code string, settings Settings, dict WordChecker, opts ...Option) (*Game, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		code:     code,
		settings: settings,
		dict:     dict,
		clock:    RealClock(),
		board:    board.MakeBoard(),
		log:      log.With().Str("room", code).Logger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.turns = NewTurnController(g.clock, settings.TurnDuration, settings.WarningBefore,
		TurnHooks{Expired: g.hooks.TurnExpired, Warning: g.hooks.TurnWarning})
	g.arbiter = NewChallengeArbiter(g.clock, settings.ChallengeWindow,
		settings.ChallengePenalty, g.hooks.ChallengeExpired)
	g.bag = tilemapping.NewBag(tilemapping.EnglishLetterDistribution(), g.rng)
	return g, nil
}

func (g *Game) Code() string {
	return g.code
}

func (g *Game) Settings() Settings {
	return g.settings
}

func (g *Game) Status() Status {
	return g.turns.Status()
}

func (g *Game) Board() *board.GameBoard {
	return g.board
}

func (g *Game) Bag() *tilemapping.Bag {
	return g.bag
}

func (g *Game) Players() []*Player {
	return g.players
}

func (g *Game) NumPlayers() int {
	return len(g.players)
}

func (g *Game) History() []Turn {
	return g.history
}

func (g *Game) LastMove() *LastMove {
	return g.lastMove
}

func (g *Game) FinishReason() string {
	return g.finishReason
}

// Player looks up a seat by ID.
func (g *Game) Player(id string) (*Player, int, error) {
	for i, p := range g.players {
		if p.ID == id {
			return p, i, nil
		}
	}
	return nil, -1, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
}

// CurrentPlayer is the player on turn, or nil when not in progress.
func (g *Game) CurrentPlayer() *Player {
	if g.Status() != StatusInProgress {
		return nil
	}
	return g.players[g.turns.Current()]
}

// TurnClock is the running clock.
func (g *Game) TurnClock() TurnClock {
	return g.turns.Clock()
}

// ActiveChallenge returns the open challenge, if any.
func (g *Game) ActiveChallenge() (Challenge, bool) {
	return g.arbiter.Active()
}

// AddPlayer seats a new player. The host is ready from the start.
func (g *Game) AddPlayer(name string, host bool) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if g.Status() != StatusWaiting {
		return nil, ErrAlreadyStarted
	}
	if len(g.players) >= g.settings.MaxPlayers {
		return nil, ErrRoomFull
	}
	p := newPlayer(name, host)
	g.players = append(g.players, p)
	g.log.Debug().Str("player", p.ID).Str("name", name).Bool("host", host).Msg("player-joined")
	return p, nil
}

// AddBot seats a computer player, always ready.
func (g *Game) AddBot(name string) (*Player, error) {
	p, err := g.AddPlayer(name, false)
	if err != nil {
		return nil, err
	}
	p.Bot = true
	p.Ready = true
	return p, nil
}

// RemoveResult says what a departure changed.
type RemoveResult struct {
	Player      PlayerInfo
	TurnChanged bool
	Finished    bool
	NewHost     string
}

// RemovePlayer takes a player out of the room. In a running game their
// tiles go back in the bag and the turn moves on if it was theirs.
func (g *Game) RemovePlayer(id string) (RemoveResult, error) {
	p, idx, err := g.Player(id)
	if err != nil {
		return RemoveResult{}, err
	}
	res := RemoveResult{Player: p.Info()}
	if c, ok := g.arbiter.Active(); ok && (c.ChallengerID == id || c.TargetID == id) {
		g.arbiter.Cancel()
	}
	if g.Status() == StatusInProgress {
		p.throwRackIn(g.bag)
	}
	g.players = append(g.players[:idx], g.players[idx+1:]...)

	if p.Host {
		if next, ok := lo.Find(g.players, func(o *Player) bool { return !o.Bot }); ok {
			next.Host = true
			next.Ready = true
			res.NewHost = next.ID
		}
	}

	if g.Status() == StatusInProgress {
		humans := lo.CountBy(g.players, func(o *Player) bool { return !o.Bot })
		if len(g.players) < MinPlayers || humans == 0 {
			g.finish(FinishNotEnoughPlayers)
			res.Finished = true
		} else {
			res.TurnChanged = g.turns.RemovePlayer(idx)
		}
	}
	g.log.Debug().Str("player", id).Bool("turn-changed", res.TurnChanged).Msg("player-left")
	return res, nil
}

// SetReady toggles a non-host player's ready flag before the game starts.
func (g *Game) SetReady(id string, ready bool) error {
	p, _, err := g.Player(id)
	if err != nil {
		return err
	}
	if g.Status() != StatusWaiting {
		return ErrAlreadyStarted
	}
	if !p.Host {
		p.Ready = ready
	}
	return nil
}

// Start shuffles the bag, deals player 0 first, and starts player 0's
// clock. Only the host may start.
func (g *Game) Start(requesterID string) error {
	p, _, err := g.Player(requesterID)
	if err != nil {
		return err
	}
	if !p.Host {
		return ErrNotHost
	}
	if g.Status() != StatusWaiting {
		return ErrAlreadyStarted
	}
	if len(g.players) < MinPlayers {
		return ErrNotEnoughPlayers
	}
	if lo.SomeBy(g.players, func(o *Player) bool { return !o.Host && !o.Ready }) {
		return ErrPlayersNotReady
	}

	g.bag.Shuffle()
	racks := g.bag.DealInitialRacks(len(g.players))
	for i, r := range racks {
		g.players[i].rack = r
	}
	if err := g.turns.Start(len(g.players)); err != nil {
		return err
	}
	g.log.Info().Int("players", len(g.players)).Msg("game-started")
	return nil
}

// MoveResult is the outcome of a submitted or previewed play.
type MoveResult struct {
	PlayerID string            `json:"playerId"`
	Move     *move.Move        `json:"-"`
	Score    scoring.MoveScore `json:"score"`
	Drawn    int               `json:"drawn"`
	Finished bool              `json:"finished"`
}

// SubmitMove validates, scores, checks and commits a play by the player
// on turn. A rejected play changes nothing; for invalid words the
// provisional score is still returned along with ErrInvalidWord.
func (g *Game) SubmitMove(ctx context.Context, playerID string, reqs []move.TileRequest) (*MoveResult, error) {
	p, err := g.requireTurn(playerID)
	if err != nil {
		return nil, err
	}
	res, rack, err := g.evaluate(ctx, p, reqs)
	if err != nil {
		return res, err
	}
	placements := res.Move.Placements()

	if err := g.board.PlaceTiles(placements); err != nil {
		return nil, err
	}
	p.rack = rack
	p.addScore(res.Score.Total)
	p.recordMove(res.Score.Total, res.Score.Bingo, res.Score.LongestWord())
	drawn := g.bag.Draw(p.rack.Needed())
	if err := p.rack.Add(drawn...); err != nil {
		return nil, err
	}
	res.Drawn = len(drawn)

	words := lo.Map(res.Score.Words, func(ws scoring.WordScore, _ int) string { return ws.Word })
	seq := len(g.history)
	g.lastMove = &LastMove{Seq: seq, PlayerID: p.ID, Words: words, Score: res.Score.Total}
	g.record(p, res.Move, words, res.Score.Total)
	g.log.Info().Str("player", p.ID).Strs("words", words).Int("score", res.Score.Total).
		Msg("move-accepted")

	if g.bag.TilesRemaining() == 0 && p.rack.NumTiles() == 0 {
		g.finish(FinishOutOfTiles)
		res.Finished = true
		return res, nil
	}
	if _, err := g.turns.Advance(); err != nil {
		return nil, err
	}
	return res, nil
}

// Preview scores a play from the player's rack without committing it.
// It need not be the player's turn.
func (g *Game) Preview(ctx context.Context, playerID string, reqs []move.TileRequest) (*MoveResult, error) {
	if g.Status() != StatusInProgress {
		return nil, ErrNotInProgress
	}
	p, _, err := g.Player(playerID)
	if err != nil {
		return nil, err
	}
	res, _, err := g.evaluate(ctx, p, reqs)
	return res, err
}

// evaluate runs everything short of committing: rack resolution, geometry,
// word extraction, scoring and the dictionary. It only reads game state.
func (g *Game) evaluate(ctx context.Context, p *Player, reqs []move.TileRequest) (*MoveResult, *tilemapping.Rack, error) {
	rack := p.rack.Copy()
	placements, err := resolveTiles(rack, reqs)
	if err != nil {
		return nil, nil, err
	}
	if err := g.board.ValidatePlacement(placements, g.board.IsEmpty()); err != nil {
		return nil, nil, err
	}
	words := g.board.FormedWords(placements)
	if len(words) == 0 && len(placements) == 1 {
		words = []board.Word{board.SingleLetterWord(placements[0])}
	}
	if len(words) == 0 {
		return nil, nil, ErrNoWords
	}

	res := &MoveResult{
		PlayerID: p.ID,
		Move:     move.NewPlacementMove(p.ID, placements),
		Score:    scoring.ScoreMove(g.board, words, len(placements)),
	}
	texts := lo.Map(words, func(w board.Word, _ int) string { return w.Text })
	for i, ok := range g.dict.Check(ctx, g.settings.Variant, texts) {
		res.Score.Words[i].Valid = ok
	}
	if bad := res.Score.InvalidWords(); len(bad) > 0 {
		return res, nil, fmt.Errorf("%w: %s", ErrInvalidWord, strings.Join(bad, ", "))
	}
	return res, rack, nil
}

// resolveTiles takes the requested tiles off rack, which the caller owns.
func resolveTiles(rack *tilemapping.Rack, reqs []move.TileRequest) ([]move.Placement, error) {
	placements := make([]move.Placement, 0, len(reqs))
	for _, r := range reqs {
		letters := []rune(tilemapping.NormalizeLetters(r.Letter))
		if len(letters) != 1 || letters[0] < 'A' || letters[0] > 'Z' {
			return nil, fmt.Errorf("%w (%q)", ErrBadLetter, r.Letter)
		}
		want := letters[0]
		if r.Blank {
			want = tilemapping.BlankLetter
		}
		t, ok := rack.Take(want)
		if !ok {
			return nil, fmt.Errorf("%w: %c", ErrTileNotOnRack, want)
		}
		placements = append(placements, move.Placement{Tile: t, Letter: letters[0], Row: r.Row, Col: r.Col})
	}
	return placements, nil
}

// Pass gives up the turn.
func (g *Game) Pass(playerID string) error {
	p, err := g.requireTurn(playerID)
	if err != nil {
		return err
	}
	g.record(p, move.NewPassMove(p.ID), nil, 0)
	_, err = g.turns.Advance()
	return err
}

// Exchange swaps tiles with the bag and ends the turn. It returns the
// tiles drawn.
func (g *Game) Exchange(playerID string, letters string) ([]tilemapping.Tile, error) {
	p, err := g.requireTurn(playerID)
	if err != nil {
		return nil, err
	}
	rs := []rune(tilemapping.NormalizeLetters(letters))
	if len(rs) < 1 || len(rs) > tilemapping.RackSize {
		return nil, ErrBadSwap
	}
	if g.bag.TilesRemaining() < SwapMinimumBag {
		return nil, ErrBagTooSmall
	}
	rack := p.rack.Copy()
	thrown, err := rack.TakeLetters(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTileNotOnRack, err)
	}
	drawn, err := g.bag.Exchange(thrown)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBagTooSmall, err)
	}
	if err := rack.Add(drawn...); err != nil {
		return nil, err
	}
	p.rack = rack
	g.record(p, move.NewExchangeMove(p.ID, thrown), nil, 0)
	if _, err := g.turns.Advance(); err != nil {
		return nil, err
	}
	return drawn, nil
}

// TurnExpired handles the turn timer armed with gen. It reports false
// for a stale timer. A current one is recorded as a pass.
func (g *Game) TurnExpired(gen uint64) (bool, error) {
	if !g.turns.Expire(gen) {
		return false, nil
	}
	p := g.CurrentPlayer()
	g.record(p, move.NewTimeoutMove(p.ID), nil, 0)
	g.log.Debug().Str("player", p.ID).Msg("turn-timed-out")
	_, err := g.turns.Advance()
	return err == nil, err
}

// TurnWarning reports whether a warning armed with gen is still current.
func (g *Game) TurnWarning(gen uint64) bool {
	return g.turns.Warn(gen)
}

// IssueChallenge opens a challenge against a word of the last move.
func (g *Game) IssueChallenge(challengerID, targetID, word string) (Challenge, error) {
	if g.Status() != StatusInProgress {
		return Challenge{}, ErrNotInProgress
	}
	if _, _, err := g.Player(challengerID); err != nil {
		return Challenge{}, err
	}
	if _, _, err := g.Player(targetID); err != nil {
		return Challenge{}, err
	}
	return g.arbiter.Issue(challengerID, g.lastMove, targetID, word)
}

// RespondChallenge resolves the open challenge with the target's verdict.
func (g *Game) RespondChallenge(responderID string, valid bool) (Verdict, error) {
	v, err := g.arbiter.Respond(responderID, valid)
	if err != nil {
		return Verdict{}, err
	}
	return g.applyVerdict(v), nil
}

// ChallengeExpired handles the challenge timer armed with gen.
func (g *Game) ChallengeExpired(gen uint64) (Verdict, bool) {
	v, ok := g.arbiter.Expire(gen)
	if !ok {
		return Verdict{}, false
	}
	return g.applyVerdict(v), true
}

func (g *Game) applyVerdict(v Verdict) Verdict {
	if g.lastMove != nil && g.lastMove.Seq == v.Challenge.MoveSeq {
		g.lastMove.Challenged = true
	}
	apply := func(pen *Penalty) {
		if pen == nil {
			return
		}
		if p, _, err := g.Player(pen.PlayerID); err == nil {
			pen.Applied = -p.addScore(-pen.Points)
		}
	}
	apply(v.Penalty)
	apply(v.Reversal)
	g.log.Info().Bool("valid", v.Valid).Str("by", v.ResolvedBy).Str("word", v.Challenge.Word).
		Msg("challenge-resolved")
	return v
}

// Finish ends the game at the host's request.
func (g *Game) Finish(requesterID string) error {
	p, _, err := g.Player(requesterID)
	if err != nil {
		return err
	}
	if !p.Host {
		return ErrNotHost
	}
	if g.Status() != StatusInProgress {
		return ErrNotInProgress
	}
	g.finish(FinishByHost)
	return nil
}

// Abort ends a running game and stops its timers. It reports whether a
// game was running.
func (g *Game) Abort(reason string) bool {
	g.arbiter.Cancel()
	if g.Status() != StatusInProgress {
		return false
	}
	g.finish(reason)
	return true
}

func (g *Game) finish(reason string) {
	g.arbiter.Cancel()
	g.turns.Finish()
	g.finishReason = reason
	g.log.Info().Str("reason", reason).Msg("game-finished")
}

// RackFor returns a player's tiles.
func (g *Game) RackFor(playerID string) ([]tilemapping.Tile, error) {
	p, _, err := g.Player(playerID)
	if err != nil {
		return nil, err
	}
	return p.Rack(), nil
}

// SetRackFor replaces a player's rack with the given letters, returning
// unused rack tiles to the bag. Used for tests.
func (g *Game) SetRackFor(playerID string, letters string) error {
	p, _, err := g.Player(playerID)
	if err != nil {
		return err
	}
	if g.Status() != StatusInProgress {
		return ErrNotInProgress
	}
	rs := []rune(tilemapping.NormalizeLetters(letters))
	if len(rs) > tilemapping.RackSize {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, tilemapping.ErrRackFull)
	}
	// Letters already on the rack are reused; the rest come from the bag.
	// Nothing changes unless every letter is available.
	leftover := p.rack.Tiles()
	tiles := make([]tilemapping.Tile, len(rs))
	var need []rune
	var needAt []int
	for i, r := range rs {
		_, idx, ok := lo.FindIndexOf(leftover, func(t tilemapping.Tile) bool { return t.Letter == r })
		if !ok {
			need = append(need, r)
			needAt = append(needAt, i)
			continue
		}
		tiles[i] = leftover[idx]
		leftover = append(leftover[:idx], leftover[idx+1:]...)
	}
	drawn, err := g.bag.Remove(need)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	for j, i := range needAt {
		tiles[i] = drawn[j]
	}
	g.bag.PutBack(leftover)
	p.rack = tilemapping.NewRack(tiles)
	return nil
}

func (g *Game) requireTurn(playerID string) (*Player, error) {
	if g.Status() != StatusInProgress {
		return nil, ErrNotInProgress
	}
	p, idx, err := g.Player(playerID)
	if err != nil {
		return nil, err
	}
	if idx != g.turns.Current() {
		return nil, ErrOutOfTurn
	}
	return p, nil
}

func (g *Game) record(p *Player, m *move.Move, words []string, score int) {
	g.history = append(g.history, Turn{
		Seq:      len(g.history),
		PlayerID: p.ID,
		Action:   m.Action().String(),
		Summary:  m.ShortDescription(),
		Words:    words,
		Score:    score,
		At:       g.clock.Now(),
	})
}
