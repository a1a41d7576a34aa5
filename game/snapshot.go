package game

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/domino14/wordroom/board"
)

// TurnState is the running clock as clients see it. Clients only render
// RemainingMs; the server is the only authority on time.
type TurnState struct {
	PlayerIndex int       `json:"playerIndex"`
	PlayerID    string    `json:"playerId"`
	StartedAt   time.Time `json:"startedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	RemainingMs int64     `json:"remainingMs"`
}

// ChallengeState is an open challenge with the server's remaining time.
type ChallengeState struct {
	Challenge
	ExpiresAt   time.Time `json:"expiresAt"`
	RemainingMs int64     `json:"remainingMs"`
}

// State is the public snapshot of a room, safe to send to every member.
type State struct {
	Code         string               `json:"code"`
	Mode         Mode                 `json:"mode"`
	Variant      string               `json:"variant"`
	MaxPlayers   int                  `json:"maxPlayers"`
	Status       Status               `json:"status"`
	Players      []PlayerInfo         `json:"players"`
	Board        []board.OccupiedCell `json:"board"`
	BagCount     int                  `json:"bagCount"`
	Turn         *TurnState           `json:"turn,omitempty"`
	Challenge    *ChallengeState      `json:"challenge,omitempty"`
	LastMove     *LastMove            `json:"lastMove,omitempty"`
	FinishReason string               `json:"finishReason,omitempty"`
}

// Snapshot captures the room as of now.
func (g *Game) Snapshot() State {
	now := g.clock.Now()
	st := State{
		Code:         g.code,
		Mode:         g.settings.Mode,
		Variant:      string(g.settings.Variant),
		MaxPlayers:   g.settings.MaxPlayers,
		Status:       g.Status(),
		Players:      lo.Map(g.players, func(p *Player, _ int) PlayerInfo { return p.Info() }),
		Board:        g.board.Tiles(),
		BagCount:     g.bag.TilesRemaining(),
		FinishReason: g.finishReason,
	}
	if g.lastMove != nil {
		lm := *g.lastMove
		st.LastMove = &lm
	}
	if g.Status() == StatusInProgress {
		st.Turn = g.TurnState()
	}
	if c, ok := g.arbiter.Active(); ok {
		st.Challenge = &ChallengeState{
			Challenge:   c,
			ExpiresAt:   c.ExpiresAt(),
			RemainingMs: remaining(c.ExpiresAt(), now).Milliseconds(),
		}
	}
	return st
}

// TurnState describes the running clock, or nil when no game is running.
func (g *Game) TurnState() *TurnState {
	if g.Status() != StatusInProgress {
		return nil
	}
	tc := g.turns.Clock()
	return &TurnState{
		PlayerIndex: tc.PlayerIndex,
		PlayerID:    g.players[tc.PlayerIndex].ID,
		StartedAt:   tc.StartedAt,
		ExpiresAt:   tc.ExpiresAt(),
		RemainingMs: tc.Remaining(g.clock.Now()).Milliseconds(),
	}
}

func remaining(at, now time.Time) time.Duration {
	if d := at.Sub(now); d > 0 {
		return d
	}
	return 0
}

// PlayerResult is a final standing.
type PlayerResult struct {
	PlayerInfo
	Rank int `json:"rank"`
}

// Results ranks players by score; ties share a rank.
func (g *Game) Results() []PlayerResult {
	order := lo.Map(g.players, func(p *Player, _ int) PlayerInfo { return p.Info() })
	sort.SliceStable(order, func(i, j int) bool { return order[i].Score > order[j].Score })
	out := make([]PlayerResult, len(order))
	for i, p := range order {
		rank := i + 1
		if i > 0 && p.Score == order[i-1].Score {
			rank = out[i-1].Rank
		}
		out[i] = PlayerResult{PlayerInfo: p, Rank: rank}
	}
	return out
}
