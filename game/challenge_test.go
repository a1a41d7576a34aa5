package game_test

import (
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/domino14/wordroom/game"
	"github.com/domino14/wordroom/testhelpers"
)

func TestArbiterSecondChallengeRejected(t *testing.T) {
	is := is.New(t)
	clock := testhelpers.NewFakeClock()
	var fired []uint64
	a := game.NewChallengeArbiter(clock, 15*time.Second, 10, func(gen uint64) { fired = append(fired, gen) })
	last := &game.LastMove{Seq: 3, PlayerID: "jd", Words: []string{"QI", "QAT"}, Score: 31}

	c, err := a.Issue("cesar", last, "jd", "qat")
	is.NoErr(err)
	is.Equal(c.MoveScore, 31)
	is.Equal(c.MoveSeq, 3)

	_, err = a.Issue("mina", last, "jd", "QI")
	is.True(errors.Is(err, game.ErrCommandConflict))
	active, ok := a.Active()
	is.True(ok)
	is.Equal(active.ChallengerID, "cesar")

	a.Cancel()
	_, ok = a.Active()
	is.True(!ok)
	clock.Advance(time.Minute)
	is.Equal(len(fired), 0)
}

func TestArbiterTimeoutDefaultsToValid(t *testing.T) {
	is := is.New(t)
	clock := testhelpers.NewFakeClock()
	var fired []uint64
	a := game.NewChallengeArbiter(clock, 15*time.Second, 10, func(gen uint64) { fired = append(fired, gen) })
	last := &game.LastMove{PlayerID: "jd", Words: []string{"QI"}, Score: 22}

	_, err := a.Issue("cesar", last, "jd", "QI")
	is.NoErr(err)
	clock.Advance(14 * time.Second)
	is.Equal(len(fired), 0)
	clock.Advance(time.Second)
	is.Equal(len(fired), 1)

	v, ok := a.Expire(fired[0])
	is.True(ok)
	is.True(v.Valid)
	is.Equal(v.ResolvedBy, game.ResolvedByTimeout)
	is.Equal(*v.Penalty, game.Penalty{PlayerID: "cesar", Points: 10})
	is.True(v.Reversal == nil)

	// A response after the window closed has nothing to answer.
	_, err = a.Respond("jd", false)
	is.True(errors.Is(err, game.ErrNoActiveChallenge))
}

func TestArbiterResponseBeatsTimeout(t *testing.T) {
	is := is.New(t)
	clock := testhelpers.NewFakeClock()
	var fired []uint64
	a := game.NewChallengeArbiter(clock, 15*time.Second, 10, func(gen uint64) { fired = append(fired, gen) })
	last := &game.LastMove{PlayerID: "jd", Words: []string{"ZQ"}, Score: 40}

	_, err := a.Issue("cesar", last, "jd", "ZQ")
	is.NoErr(err)
	clock.Advance(15 * time.Second)
	is.Equal(len(fired), 1)

	// The target's answer was queued ahead of the expiry.
	v, err := a.Respond("jd", false)
	is.NoErr(err)
	is.True(!v.Valid)
	is.Equal(v.Reversal.PlayerID, "jd")
	is.Equal(v.Reversal.Points, 40)

	_, ok := a.Expire(fired[0])
	is.True(!ok)
}
