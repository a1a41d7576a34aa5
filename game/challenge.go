package game

import (
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/wordroom/tilemapping"
)

const (
	ResolvedByResponse = "response"
	ResolvedByTimeout  = "timeout"
)

// LastMove is what a challenge can be raised against: the most recent
// accepted placement.
type LastMove struct {
	Seq        int      `json:"seq"`
	PlayerID   string   `json:"playerId"`
	Words      []string `json:"words"`
	Score      int      `json:"score"`
	Challenged bool     `json:"challenged"`
}

// Challenge is an objection to one word of the last move.
type Challenge struct {
	ChallengerID string        `json:"challengerId"`
	TargetID     string        `json:"targetId"`
	Word         string        `json:"word"`
	IssuedAt     time.Time     `json:"issuedAt"`
	Window       time.Duration `json:"window"`
	MoveSeq      int           `json:"moveSeq"`
	MoveScore    int           `json:"moveScore"`
}

func (c Challenge) ExpiresAt() time.Time {
	return c.IssuedAt.Add(c.Window)
}

// Penalty is a score deduction. Points is the nominal amount; Applied is
// what was actually taken once the score was clamped at zero.
type Penalty struct {
	PlayerID string `json:"playerId"`
	Points   int    `json:"points"`
	Applied  int    `json:"applied"`
}

// Verdict is how a challenge was resolved. When Valid is false the move's
// author loses the move's score; the arbiter only reports it.
type Verdict struct {
	Challenge  Challenge `json:"challenge"`
	Valid      bool      `json:"valid"`
	ResolvedBy string    `json:"resolvedBy"`
	Penalty    *Penalty  `json:"penalty,omitempty"`
	Reversal   *Penalty  `json:"reversal,omitempty"`
}

// ChallengeArbiter runs the challenge window. At most one challenge is
// active; a second one is rejected. Not safe for concurrent use.
type ChallengeArbiter struct {
	clock    Clock
	window   time.Duration
	penalty  int
	onExpire func(gen uint64)

	active     *Challenge
	generation uint64
	timer      Timer
}

func NewChallengeArbiter(clock Clock, window time.Duration, penalty int, onExpire func(gen uint64)) *ChallengeArbiter {
	return &ChallengeArbiter{
		clock:    clock,
		window:   window,
		penalty:  penalty,
		onExpire: onExpire,
	}
}

// Issue opens a challenge by challengerID against word in last, which
// must have been played by targetID.
func (a *ChallengeArbiter) Issue(challengerID string, last *LastMove, targetID, word string) (Challenge, error) {
	if a.active != nil {
		return Challenge{}, ErrChallengeActive
	}
	if last == nil {
		return Challenge{}, ErrNothingToChallenge
	}
	if last.Challenged {
		return Challenge{}, ErrAlreadyChallenged
	}
	if challengerID == last.PlayerID {
		return Challenge{}, ErrSelfChallenge
	}
	if targetID != last.PlayerID {
		return Challenge{}, ErrNotMoveAuthor
	}
	word = tilemapping.NormalizeLetters(word)
	if !slices.Contains(last.Words, word) {
		return Challenge{}, ErrWordNotInMove
	}

	a.generation++
	gen := a.generation
	a.active = &Challenge{
		ChallengerID: challengerID,
		TargetID:     targetID,
		Word:         word,
		IssuedAt:     a.clock.Now(),
		Window:       a.window,
		MoveSeq:      last.Seq,
		MoveScore:    last.Score,
	}
	if a.onExpire != nil {
		a.timer = a.clock.AfterFunc(a.window, func() { a.onExpire(gen) })
	}
	log.Debug().Str("challenger", challengerID).Str("word", word).Msg("challenge-opened")
	return *a.active, nil
}

// Respond resolves the active challenge with the target's verdict.
func (a *ChallengeArbiter) Respond(responderID string, valid bool) (Verdict, error) {
	if a.active == nil {
		return Verdict{}, ErrNoActiveChallenge
	}
	if responderID != a.active.TargetID {
		return Verdict{}, ErrNotChallengeTarget
	}
	return a.resolve(valid, ResolvedByResponse), nil
}

// Expire resolves the challenge armed with gen as valid, the default when
// nobody answers. It reports false for a stale generation.
func (a *ChallengeArbiter) Expire(gen uint64) (Verdict, bool) {
	if a.active == nil || gen != a.generation {
		return Verdict{}, false
	}
	return a.resolve(true, ResolvedByTimeout), true
}

// Cancel drops the active challenge without a verdict.
func (a *ChallengeArbiter) Cancel() {
	a.stop()
	a.active = nil
}

// Active returns the open challenge, if any.
func (a *ChallengeArbiter) Active() (Challenge, bool) {
	if a.active == nil {
		return Challenge{}, false
	}
	return *a.active, true
}

func (a *ChallengeArbiter) resolve(valid bool, by string) Verdict {
	c := *a.active
	a.stop()
	a.active = nil
	v := Verdict{Challenge: c, Valid: valid, ResolvedBy: by}
	if valid {
		v.Penalty = &Penalty{PlayerID: c.ChallengerID, Points: a.penalty}
	} else {
		v.Reversal = &Penalty{PlayerID: c.TargetID, Points: c.MoveScore}
	}
	log.Debug().Bool("valid", valid).Str("by", by).Str("word", c.Word).Msg("challenge-resolved")
	return v
}

func (a *ChallengeArbiter) stop() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.generation++
}
