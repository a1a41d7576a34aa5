package game_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/domino14/wordroom/game"
	"github.com/domino14/wordroom/lexicon"
	"github.com/domino14/wordroom/move"
	"github.com/domino14/wordroom/testhelpers"
	"github.com/domino14/wordroom/tilemapping"
)

type firedTimers struct {
	turn, warning, challenge []uint64
}

type fixture struct {
	g       *game.Game
	players []*game.Player
	clock   *testhelpers.FakeClock
	fired   *firedTimers
}

func newFixture(t *testing.T, n int, dict game.WordChecker) *fixture {
	t.Helper()
	is := is.New(t)
	if dict == nil {
		dict = lexicon.NewGate()
	}
	clock := testhelpers.NewFakeClock()
	fired := &firedTimers{}
	g, err := game.NewGame("ABC123", game.DefaultSettings(), dict,
		game.WithClock(clock),
		game.WithRandomizer(rand.New(rand.NewSource(42))),
		game.WithHooks(game.Hooks{
			TurnExpired:      func(gen uint64) { fired.turn = append(fired.turn, gen) },
			TurnWarning:      func(gen uint64) { fired.warning = append(fired.warning, gen) },
			ChallengeExpired: func(gen uint64) { fired.challenge = append(fired.challenge, gen) },
		}))
	is.NoErr(err)

	names := []string{"JD", "cesar", "mina", "josh"}
	var players []*game.Player
	for i := 0; i < n; i++ {
		p, err := g.AddPlayer(names[i], i == 0)
		is.NoErr(err)
		if i > 0 {
			is.NoErr(g.SetReady(p.ID, true))
		}
		players = append(players, p)
	}
	is.NoErr(g.Start(players[0].ID))
	return &fixture{g: g, players: players, clock: clock, fired: fired}
}

func acceptAll() *lexicon.Gate {
	return lexicon.NewGate(lexicon.WithLexicon(lexicon.VariantTWL, lexicon.AcceptAll{}))
}

func tilesAccountedFor(g *game.Game) int {
	n := g.Bag().TilesRemaining() + g.Board().NumTiles()
	for _, p := range g.Players() {
		n += len(p.Rack())
	}
	return n
}

func reqs(coords, word string) []move.TileRequest {
	r, err := move.RequestsFromCoords(coords, word)
	if err != nil {
		panic(err)
	}
	return r
}

func TestTwoPlayerFirstMove(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, nil)
	host, guest := f.players[0], f.players[1]
	is.Equal(f.g.CurrentPlayer().ID, host.ID)
	is.Equal(f.g.Bag().TilesRemaining(), 86)

	is.NoErr(f.g.SetRackFor(host.ID, "GOAEINR"))
	res, err := f.g.SubmitMove(context.Background(), host.ID, []move.TileRequest{
		{Letter: "G", Row: 7, Col: 7},
		{Letter: "O", Row: 7, Col: 8},
	})
	is.NoErr(err)
	is.Equal(res.Score.Total, 6)
	is.Equal(res.Score.Words[0].Word, "GO")
	is.True(res.Score.Words[0].Valid)
	is.Equal(res.Drawn, 2)

	is.Equal(host.Score, 6)
	is.Equal(len(host.Rack()), 7)
	is.Equal(f.g.Bag().TilesRemaining(), 84)
	is.Equal(f.g.CurrentPlayer().ID, guest.ID)
	is.Equal(f.g.TurnClock().PlayerIndex, 1)
	is.Equal(tilesAccountedFor(f.g), 100)

	lm := f.g.LastMove()
	is.Equal(lm.PlayerID, host.ID)
	is.Equal(lm.Words, []string{"GO"})
}

func TestRejectedMoveChangesNothing(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, nil)
	host := f.players[0]
	is.NoErr(f.g.SetRackFor(host.ID, "EEAIORS"))

	boardBefore := f.g.Board().Copy()
	bagBefore := f.g.Bag().Peek()
	rackBefore := host.Rack()
	ctx := context.Background()

	res, err := f.g.SubmitMove(ctx, host.ID, reqs("8H", "EE"))
	is.True(errors.Is(err, game.ErrInvalidWord))
	is.Equal(game.ReasonCode(err), game.ReasonInvalidWord)
	// Provisional score is still computed, doubled by the star.
	is.Equal(res.Score.Total, 4)
	is.Equal(res.Score.InvalidWords(), []string{"EE"})

	_, err = f.g.SubmitMove(ctx, host.ID, reqs("1A", "ER"))
	is.True(errors.Is(err, game.ErrInvalidPlacement))

	_, err = f.g.SubmitMove(ctx, host.ID, reqs("8H", "EX"))
	is.True(errors.Is(err, game.ErrTileNotOnRack))

	_, err = f.g.SubmitMove(ctx, host.ID, []move.TileRequest{{Letter: "QX", Row: 7, Col: 7}})
	is.True(errors.Is(err, game.ErrBadLetter))

	is.True(f.g.Board().Equals(boardBefore))
	is.Equal(f.g.Bag().Peek(), bagBefore)
	is.Equal(host.Rack(), rackBefore)
	is.Equal(host.Score, 0)
	is.Equal(f.g.CurrentPlayer().ID, host.ID)
	is.Equal(len(f.g.History()), 0)
}

func TestOutOfTurn(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, nil)
	guest := f.players[1]

	_, err := f.g.SubmitMove(context.Background(), guest.ID, reqs("8H", "GO"))
	is.True(errors.Is(err, game.ErrOutOfTurn))
	is.True(errors.Is(f.g.Pass(guest.ID), game.ErrOutOfTurn))
	_, err = f.g.SubmitMove(context.Background(), "nobody", reqs("8H", "GO"))
	is.True(errors.Is(err, game.ErrPlayerNotFound))
}

func TestStartPreconditions(t *testing.T) {
	is := is.New(t)
	g, err := game.NewGame("ABC123", game.DefaultSettings(), lexicon.NewGate())
	is.NoErr(err)
	host, err := g.AddPlayer("JD", true)
	is.NoErr(err)
	is.True(errors.Is(g.Start(host.ID), game.ErrNotEnoughPlayers))

	guest, err := g.AddPlayer("cesar", false)
	is.NoErr(err)
	is.True(!guest.Ready)
	is.True(errors.Is(g.Start(host.ID), game.ErrPlayersNotReady))
	is.True(errors.Is(g.Start(guest.ID), game.ErrNotHost))

	is.NoErr(g.SetReady(guest.ID, true))
	is.NoErr(g.Start(host.ID))
	is.Equal(g.Status(), game.StatusInProgress)
	is.True(errors.Is(g.Start(host.ID), game.ErrAlreadyStarted))

	_, err = g.AddPlayer("late", false)
	is.True(errors.Is(err, game.ErrAlreadyStarted))
	// Player 0 was dealt first.
	is.Equal(len(host.Rack()), 7)
	is.Equal(len(guest.Rack()), 7)
}

func TestRoomFull(t *testing.T) {
	is := is.New(t)
	g, err := game.NewGame("ABC123", game.DefaultSettings(), lexicon.NewGate())
	is.NoErr(err)
	for _, n := range []string{"a", "b", "c", "d"} {
		_, err := g.AddPlayer(n, n == "a")
		is.NoErr(err)
	}
	_, err = g.AddPlayer("e", false)
	is.True(errors.Is(err, game.ErrRoomFull))
	_, err = g.AddPlayer("  ", false)
	is.True(errors.Is(err, game.ErrEmptyName))
}

func TestTimeoutIsAPass(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, nil)
	host, guest := f.players[0], f.players[1]

	f.clock.Advance(game.DefaultTurnDuration - game.DefaultWarningBefore)
	is.Equal(len(f.fired.warning), 1)
	is.True(f.g.TurnWarning(f.fired.warning[0]))
	is.Equal(f.g.TurnState().RemainingMs, game.DefaultWarningBefore.Milliseconds())

	f.clock.Advance(game.DefaultWarningBefore)
	is.Equal(len(f.fired.turn), 1)
	gen := f.fired.turn[0]
	ok, err := f.g.TurnExpired(gen)
	is.NoErr(err)
	is.True(ok)
	is.Equal(f.g.CurrentPlayer().ID, guest.ID)
	is.Equal(f.g.TurnState().RemainingMs, game.DefaultTurnDuration.Milliseconds())
	is.Equal(f.g.History()[0].Action, "timeout")
	is.Equal(f.g.History()[0].PlayerID, host.ID)

	// Late delivery of the same expiry is ignored.
	ok, err = f.g.TurnExpired(gen)
	is.NoErr(err)
	is.True(!ok)
	is.True(!f.g.TurnWarning(f.fired.warning[0]))
}

func TestExplicitMoveBeatsExpiry(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, nil)
	host, guest := f.players[0], f.players[1]

	f.clock.Advance(game.DefaultTurnDuration)
	stale := f.fired.turn[0]
	// The pass lands before the expiry is processed.
	is.NoErr(f.g.Pass(host.ID))
	ok, err := f.g.TurnExpired(stale)
	is.NoErr(err)
	is.True(!ok)
	is.Equal(f.g.CurrentPlayer().ID, guest.ID)
	is.Equal(len(f.g.History()), 1)
}

func playGO(t *testing.T, f *fixture) {
	t.Helper()
	is := is.New(t)
	host := f.players[0]
	is.NoErr(f.g.SetRackFor(host.ID, "GOAEINR"))
	_, err := f.g.SubmitMove(context.Background(), host.ID, reqs("8H", "GO"))
	is.NoErr(err)
}

func TestChallengeTimeoutPenalizesChallenger(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, nil)
	host, guest := f.players[0], f.players[1]
	playGO(t, f)

	c, err := f.g.IssueChallenge(guest.ID, host.ID, "go")
	is.NoErr(err)
	is.Equal(c.Word, "GO")
	is.Equal(c.ExpiresAt(), f.clock.Now().Add(game.DefaultChallengeWindow))

	_, err = f.g.IssueChallenge(guest.ID, host.ID, "GO")
	is.True(errors.Is(err, game.ErrChallengeActive))
	is.Equal(game.ReasonCode(err), game.ReasonCommandConflict)

	f.clock.Advance(game.DefaultChallengeWindow)
	is.Equal(len(f.fired.challenge), 1)
	v, ok := f.g.ChallengeExpired(f.fired.challenge[0])
	is.True(ok)
	is.True(v.Valid)
	is.Equal(v.ResolvedBy, game.ResolvedByTimeout)
	is.Equal(v.Penalty.PlayerID, guest.ID)
	is.Equal(v.Penalty.Points, game.DefaultChallengePenalty)
	// Guest had nothing to lose.
	is.Equal(v.Penalty.Applied, 0)
	is.Equal(guest.Score, 0)
	is.Equal(host.Score, 6)

	_, ok = f.g.ActiveChallenge()
	is.True(!ok)
	_, ok = f.g.ChallengeExpired(f.fired.challenge[0])
	is.True(!ok)

	_, err = f.g.IssueChallenge(guest.ID, host.ID, "GO")
	is.True(errors.Is(err, game.ErrAlreadyChallenged))
}

func TestChallengePenaltyPartiallyApplied(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, acceptAll())
	host, guest := f.players[0], f.players[1]
	playGO(t, f)

	// NO down through the O, with the N on the double letter at 6,8.
	is.NoErr(f.g.SetRackFor(guest.ID, "NAEIRST"))
	_, err := f.g.SubmitMove(context.Background(), guest.ID, reqs("I7", "N."))
	is.NoErr(err)
	is.Equal(guest.Score, 3)

	_, err = f.g.IssueChallenge(host.ID, guest.ID, "NO")
	is.NoErr(err)
	v, err := f.g.RespondChallenge(guest.ID, true)
	is.NoErr(err)
	is.Equal(v.ResolvedBy, game.ResolvedByResponse)
	is.Equal(v.Penalty.PlayerID, host.ID)
	is.Equal(v.Penalty.Applied, 6)
	is.Equal(host.Score, 0)
}

func TestChallengeInvalidReversesScore(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, nil)
	host, guest := f.players[0], f.players[1]
	playGO(t, f)
	tilesOnBoard := f.g.Board().NumTiles()

	_, err := f.g.IssueChallenge(guest.ID, host.ID, "GO")
	is.NoErr(err)
	_, err = f.g.RespondChallenge(guest.ID, false)
	is.True(errors.Is(err, game.ErrNotChallengeTarget))

	v, err := f.g.RespondChallenge(host.ID, false)
	is.NoErr(err)
	is.True(!v.Valid)
	is.True(v.Penalty == nil)
	is.Equal(v.Reversal.PlayerID, host.ID)
	is.Equal(v.Reversal.Applied, 6)
	is.Equal(host.Score, 0)
	is.Equal(guest.Score, 0)
	is.Equal(f.g.Board().NumTiles(), tilesOnBoard)

	_, err = f.g.RespondChallenge(host.ID, true)
	is.True(errors.Is(err, game.ErrNoActiveChallenge))
}

func TestChallengeRules(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 3, nil)
	host, guest, third := f.players[0], f.players[1], f.players[2]

	_, err := f.g.IssueChallenge(guest.ID, host.ID, "GO")
	is.True(errors.Is(err, game.ErrNothingToChallenge))

	playGO(t, f)
	_, err = f.g.IssueChallenge(host.ID, host.ID, "GO")
	is.True(errors.Is(err, game.ErrSelfChallenge))
	_, err = f.g.IssueChallenge(guest.ID, third.ID, "GO")
	is.True(errors.Is(err, game.ErrNotMoveAuthor))
	_, err = f.g.IssueChallenge(guest.ID, host.ID, "CAT")
	is.True(errors.Is(err, game.ErrWordNotInMove))
	_, err = f.g.IssueChallenge("nobody", host.ID, "GO")
	is.True(errors.Is(err, game.ErrPlayerNotFound))

	// Any non-author may challenge, not only the next player.
	_, err = f.g.IssueChallenge(third.ID, host.ID, "GO")
	is.NoErr(err)
	// The turn clock is not paused by a challenge.
	is.Equal(f.g.CurrentPlayer().ID, guest.ID)
	is.NoErr(f.g.Pass(guest.ID))
	_, ok := f.g.ActiveChallenge()
	is.True(ok)
}

func TestSingleLetterFirstMove(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, nil)
	host := f.players[0]

	is.NoErr(f.g.SetRackFor(host.ID, "AEIORST"))
	_, err := f.g.SubmitMove(context.Background(), host.ID, reqs("8H", "E"))
	is.True(errors.Is(err, game.ErrInvalidWord))

	res, err := f.g.SubmitMove(context.Background(), host.ID, reqs("8H", "A"))
	is.NoErr(err)
	is.Equal(res.Score.Total, 2)
}

func TestBlankPlay(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, nil)
	host := f.players[0]

	is.NoErr(f.g.SetRackFor(host.ID, "?OAEINR"))
	res, err := f.g.SubmitMove(context.Background(), host.ID, reqs("8H", "gO"))
	is.NoErr(err)
	is.Equal(res.Score.Total, 2)
	cell, ok := f.g.Board().TileAt(7, 7)
	is.True(ok)
	is.True(cell.Tile.IsBlank())
	is.Equal(cell.Letter, 'G')
}

func TestBingo(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, acceptAll())
	host := f.players[0]

	is.NoErr(f.g.SetRackFor(host.ID, "RETAINS"))
	res, err := f.g.SubmitMove(context.Background(), host.ID, reqs("8B", "RETAINS"))
	is.NoErr(err)
	is.True(res.Score.Bingo)
	is.Equal(res.Score.Total, 66)
	is.Equal(host.Stats().Bingos, 1)
	is.Equal(host.Stats().LongestWord, "RETAINS")
	is.Equal(host.Stats().HighestMove, 66)
}

func TestPreviewDoesNotCommit(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, nil)
	host, guest := f.players[0], f.players[1]
	is.NoErr(f.g.SetRackFor(host.ID, "GOAEINR"))

	res, err := f.g.Preview(context.Background(), host.ID, reqs("8H", "GO"))
	is.NoErr(err)
	is.Equal(res.Score.Total, 6)
	is.True(f.g.Board().IsEmpty())
	is.Equal(len(host.Rack()), 7)
	is.Equal(f.g.CurrentPlayer().ID, host.ID)

	// Off-turn players can preview their own racks.
	is.NoErr(f.g.SetRackFor(guest.ID, "GOAEINR"))
	res, err = f.g.Preview(context.Background(), guest.ID, reqs("8H", "GO"))
	is.NoErr(err)
	is.Equal(res.PlayerID, guest.ID)
	is.True(f.g.Board().IsEmpty())
}

func TestExchange(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, nil)
	host, guest := f.players[0], f.players[1]
	is.NoErr(f.g.SetRackFor(host.ID, "AEIORST"))

	_, err := f.g.Exchange(host.ID, "")
	is.True(errors.Is(err, game.ErrBadSwap))
	_, err = f.g.Exchange(host.ID, "ZZ")
	is.True(errors.Is(err, game.ErrTileNotOnRack))
	is.Equal(tilemapping.TilesString(host.Rack()), "AEIORST")

	drawn, err := f.g.Exchange(host.ID, "ae")
	is.NoErr(err)
	is.Equal(len(drawn), 2)
	is.Equal(len(host.Rack()), 7)
	is.Equal(f.g.CurrentPlayer().ID, guest.ID)
	is.Equal(tilesAccountedFor(f.g), 100)
	is.Equal(f.g.History()[0].Action, "exchange")
}

func TestExchangeNeedsFullBag(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, nil)
	host := f.players[0]
	is.NoErr(f.g.SetRackFor(host.ID, "AEIORST"))
	f.g.Bag().Draw(f.g.Bag().TilesRemaining() - 6)

	_, err := f.g.Exchange(host.ID, "A")
	is.True(errors.Is(err, game.ErrBagTooSmall))
	is.Equal(f.g.CurrentPlayer().ID, host.ID)
}

func TestLeaveReturnsTilesAndMovesTurn(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 3, nil)
	host, guest := f.players[0], f.players[1]

	res, err := f.g.RemovePlayer(host.ID)
	is.NoErr(err)
	is.True(res.TurnChanged)
	is.True(!res.Finished)
	is.Equal(res.NewHost, guest.ID)
	is.True(guest.Host)
	is.Equal(f.g.CurrentPlayer().ID, guest.ID)
	is.Equal(f.g.NumPlayers(), 2)
	is.Equal(f.g.Bag().TilesRemaining(), 86)
	is.Equal(tilesAccountedFor(f.g), 100)

	res, err = f.g.RemovePlayer(guest.ID)
	is.NoErr(err)
	is.True(res.Finished)
	is.Equal(f.g.Status(), game.StatusFinished)
	is.Equal(f.g.FinishReason(), game.FinishNotEnoughPlayers)

	_, err = f.g.RemovePlayer(guest.ID)
	is.True(errors.Is(err, game.ErrPlayerNotFound))
}

func TestLeaveBeforeCurrentKeepsTurn(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 3, nil)
	host, guest, third := f.players[0], f.players[1], f.players[2]
	is.NoErr(f.g.Pass(host.ID))
	is.NoErr(f.g.Pass(guest.ID))
	is.Equal(f.g.CurrentPlayer().ID, third.ID)
	f.clock.Advance(30 * time.Second)
	remaining := f.g.TurnState().RemainingMs

	res, err := f.g.RemovePlayer(guest.ID)
	is.NoErr(err)
	is.True(!res.TurnChanged)
	is.Equal(f.g.CurrentPlayer().ID, third.ID)
	is.Equal(f.g.TurnState().RemainingMs, remaining)
	is.NoErr(f.g.Pass(third.ID))
	is.Equal(f.g.CurrentPlayer().ID, host.ID)
}

func TestFinishOutOfTiles(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, nil)
	host := f.players[0]
	is.NoErr(f.g.SetRackFor(host.ID, "GO"))
	f.g.Bag().Draw(f.g.Bag().TilesRemaining())

	res, err := f.g.SubmitMove(context.Background(), host.ID, reqs("8H", "GO"))
	is.NoErr(err)
	is.True(res.Finished)
	is.Equal(f.g.Status(), game.StatusFinished)
	is.Equal(f.g.FinishReason(), game.FinishOutOfTiles)
	is.True(errors.Is(f.g.Pass(host.ID), game.ErrNotInProgress))
	is.Equal(f.clock.Pending(), 0)
}

func TestFinishByHostAndResults(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 3, nil)
	host, guest := f.players[0], f.players[1]
	playGO(t, f)

	is.True(errors.Is(f.g.Finish(guest.ID), game.ErrNotHost))
	is.NoErr(f.g.Finish(host.ID))
	is.Equal(f.g.FinishReason(), game.FinishByHost)

	results := f.g.Results()
	is.Equal(results[0].ID, host.ID)
	is.Equal(results[0].Rank, 1)
	is.Equal(results[1].Rank, 2)
	is.Equal(results[2].Rank, 2)
}

func TestSnapshot(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, nil)
	host, guest := f.players[0], f.players[1]
	playGO(t, f)
	_, err := f.g.IssueChallenge(guest.ID, host.ID, "GO")
	is.NoErr(err)
	f.clock.Advance(game.DefaultChallengeWindow / 3)

	st := f.g.Snapshot()
	is.Equal(st.Code, "ABC123")
	is.Equal(st.Status, game.StatusInProgress)
	is.Equal(len(st.Board), 2)
	is.Equal(st.BagCount, 84)
	is.Equal(st.Turn.PlayerID, guest.ID)
	is.Equal(st.Players[0].RackCount, 7)
	is.Equal(st.Challenge.RemainingMs, (game.DefaultChallengeWindow - game.DefaultChallengeWindow/3).Milliseconds())
	is.Equal(st.LastMove.Words, []string{"GO"})
}

func TestSetRackForFailureChangesNothing(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, nil)
	host := f.players[0]
	bagBefore := f.g.Bag().Peek()
	rackBefore := host.Rack()

	// One Z in the set.
	err := f.g.SetRackFor(host.ID, "ZZ")
	is.True(errors.Is(err, game.ErrInvalidCommand))
	is.Equal(f.g.Bag().Peek(), bagBefore)
	is.Equal(host.Rack(), rackBefore)

	is.NoErr(f.g.SetRackFor(host.ID, "QUIET"))
	is.Equal(tilemapping.TilesString(host.Rack()), "QUIET")
	is.Equal(tilesAccountedFor(f.g), 100)
}

func TestAbortStopsTimers(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, 2, nil)
	is.True(f.clock.Pending() > 0)

	is.True(f.g.Abort(game.FinishRoomClosed))
	is.Equal(f.g.Status(), game.StatusFinished)
	is.Equal(f.g.FinishReason(), game.FinishRoomClosed)
	is.Equal(f.clock.Pending(), 0)

	f.clock.Advance(time.Hour)
	is.Equal(len(f.fired.turn), 0)
	is.True(!f.g.Abort(game.FinishRoomClosed))
}
