package game

import (
	"fmt"
	"time"
)

// Status is a room's lifecycle state.
type Status uint8

const (
	StatusWaiting Status = iota
	StatusInProgress
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusInProgress:
		return "in-progress"
	case StatusFinished:
		return "finished"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for _, st := range []Status{StatusWaiting, StatusInProgress, StatusFinished} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("%w: unknown status %q", ErrInvalidState, text)
}

// TurnClock is the countdown for one turn. A fresh one is made on every
// advance.
type TurnClock struct {
	PlayerIndex int           `json:"playerIndex"`
	StartedAt   time.Time     `json:"startedAt"`
	Duration    time.Duration `json:"duration"`
}

func (tc TurnClock) ExpiresAt() time.Time {
	return tc.StartedAt.Add(tc.Duration)
}

// Remaining is the time left at now, never negative.
func (tc TurnClock) Remaining(now time.Time) time.Duration {
	r := tc.ExpiresAt().Sub(now)
	if r < 0 {
		return 0
	}
	return r
}

// TurnHooks are called from timer goroutines with the generation that
// armed them. They must only hand the generation back to whoever
// serializes the room; they must not touch game state.
type TurnHooks struct {
	Expired func(gen uint64)
	Warning func(gen uint64)
}

// TurnController drives whose turn it is and owns the turn timer. It is
// not safe for concurrent use.
type TurnController struct {
	clock         Clock
	duration      time.Duration
	warningBefore time.Duration
	hooks         TurnHooks

	status     Status
	numPlayers int
	turn       TurnClock
	generation uint64
	timers     []Timer
}

func NewTurnController(clock Clock, duration, warningBefore time.Duration, hooks TurnHooks) *TurnController {
	return &TurnController{
		clock:         clock,
		duration:      duration,
		warningBefore: warningBefore,
		hooks:         hooks,
	}
}

// Start moves from waiting to the first turn, player 0.
func (tc *TurnController) Start(numPlayers int) error {
	if tc.status != StatusWaiting {
		return ErrAlreadyStarted
	}
	if numPlayers < MinPlayers {
		return ErrNotEnoughPlayers
	}
	tc.numPlayers = numPlayers
	tc.status = StatusInProgress
	tc.arm(0)
	return nil
}

// Advance passes the turn to the next player with a full clock.
func (tc *TurnController) Advance() (TurnClock, error) {
	if tc.status != StatusInProgress {
		return TurnClock{}, ErrNotInProgress
	}
	tc.arm((tc.turn.PlayerIndex + 1) % tc.numPlayers)
	return tc.turn, nil
}

// Expire reports whether an expiry armed with gen is still current. A
// stale expiry, one that lost the race against an explicit move, returns
// false and must be ignored. A current expiry is a pass: the caller
// advances.
func (tc *TurnController) Expire(gen uint64) bool {
	return tc.status == StatusInProgress && gen == tc.generation
}

// Warn reports whether a warning armed with gen is still current.
func (tc *TurnController) Warn(gen uint64) bool {
	return tc.Expire(gen)
}

// RemovePlayer adjusts the turn order after the player at idx left. It
// reports whether the player on turn changed; if so the new player gets
// a fresh clock.
func (tc *TurnController) RemovePlayer(idx int) bool {
	if tc.status != StatusInProgress {
		return false
	}
	tc.numPlayers--
	cur := tc.turn.PlayerIndex
	switch {
	case idx < cur:
		tc.turn.PlayerIndex--
		return false
	case idx == cur:
		if tc.numPlayers < 1 {
			return false
		}
		tc.arm(cur % tc.numPlayers)
		return true
	}
	return false
}

// Finish is terminal.
func (tc *TurnController) Finish() {
	tc.status = StatusFinished
	tc.stopTimers()
	tc.generation++
}

func (tc *TurnController) Status() Status {
	return tc.status
}

func (tc *TurnController) Current() int {
	return tc.turn.PlayerIndex
}

func (tc *TurnController) Clock() TurnClock {
	return tc.turn
}

func (tc *TurnController) Generation() uint64 {
	return tc.generation
}

func (tc *TurnController) arm(playerIndex int) {
	tc.stopTimers()
	tc.generation++
	gen := tc.generation
	tc.turn = TurnClock{
		PlayerIndex: playerIndex,
		StartedAt:   tc.clock.Now(),
		Duration:    tc.duration,
	}
	if tc.hooks.Expired != nil {
		tc.timers = append(tc.timers, tc.clock.AfterFunc(tc.duration, func() {
			tc.hooks.Expired(gen)
		}))
	}
	if tc.hooks.Warning != nil && tc.warningBefore > 0 && tc.warningBefore < tc.duration {
		tc.timers = append(tc.timers, tc.clock.AfterFunc(tc.duration-tc.warningBefore, func() {
			tc.hooks.Warning(gen)
		}))
	}
}

func (tc *TurnController) stopTimers() {
	for _, t := range tc.timers {
		t.Stop()
	}
	tc.timers = tc.timers[:0]
}
