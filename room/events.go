package room

import (
	"time"

	"github.com/domino14/wordroom/game"
	"github.com/domino14/wordroom/scoring"
	"github.com/domino14/wordroom/tilemapping"
)

// Outbound event types.
const (
	EventRoomState         = "room.state"
	EventGameStarted       = "game.started"
	EventMoveAccepted      = "move.accepted"
	EventMoveRejected      = "move.rejected"
	EventTurnChanged       = "turn.changed"
	EventChallengeOpened   = "challenge.opened"
	EventChallengeResolved = "challenge.resolved"
	EventRackUpdated       = "rack.updated"
	EventTimerWarning      = "timer.warning"
	EventGameFinished      = "game.finished"
	EventPlayerLeft        = "player.left"
)

// Event is one outbound message. An empty To goes to every member of
// the room; otherwise only to that player.
type Event struct {
	Type    string    `json:"type"`
	Room    string    `json:"room"`
	To      string    `json:"to,omitempty"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload"`
}

// EventSink receives events from rooms. Publish is called from the room's
// goroutine and must not block.
type EventSink interface {
	Publish(Event)
}

// SinkFunc adapts a function to an EventSink.
type SinkFunc func(Event)

func (f SinkFunc) Publish(e Event) {
	f(e)
}

// MultiSink fans events out to several sinks.
type MultiSink []EventSink

func (m MultiSink) Publish(e Event) {
	for _, s := range m {
		s.Publish(e)
	}
}

type discardSink struct{}

func (discardSink) Publish(Event) {}

// GameStarted is the payload of game.started.
type GameStarted struct {
	Players   []game.PlayerInfo `json:"players"`
	TurnIndex int               `json:"turnIndex"`
	Clock     *game.TurnState   `json:"clock"`
}

// MoveAccepted is the payload of move.accepted.
type MoveAccepted struct {
	PlayerID string              `json:"playerId"`
	Words    []scoring.WordScore `json:"words"`
	Score    int                 `json:"score"`
	Bingo    bool                `json:"bingo"`
	Total    int                 `json:"total"`
}

// MoveRejected is the payload of move.rejected. Score is the provisional
// score when the words were the problem.
type MoveRejected struct {
	PlayerID string             `json:"playerId"`
	Reason   string             `json:"reason"`
	Message  string             `json:"message"`
	Score    *scoring.MoveScore `json:"score,omitempty"`
}

// TurnChanged is the payload of turn.changed.
type TurnChanged struct {
	TurnIndex int             `json:"turnIndex"`
	PlayerID  string          `json:"playerId"`
	Clock     *game.TurnState `json:"clock"`
	Cause     string          `json:"cause"`
}

// ChallengeOpened is the payload of challenge.opened.
type ChallengeOpened struct {
	ChallengerID string    `json:"challengerId"`
	TargetID     string    `json:"targetId"`
	Word         string    `json:"word"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// ChallengeResolved is the payload of challenge.resolved.
type ChallengeResolved struct {
	Valid      bool              `json:"valid"`
	Word       string            `json:"word"`
	Penalty    *game.Penalty     `json:"penalty,omitempty"`
	Reversal   *game.Penalty     `json:"reversal,omitempty"`
	ResolvedBy string            `json:"resolvedBy"`
	Players    []game.PlayerInfo `json:"players"`
}

// RackUpdated is sent only to the rack's owner.
type RackUpdated struct {
	Tiles []tilemapping.Tile `json:"tiles"`
}

// TimerWarning is the payload of timer.warning.
type TimerWarning struct {
	PlayerID    string `json:"playerId"`
	RemainingMs int64  `json:"remainingMs"`
}

// GameFinished is the payload of game.finished.
type GameFinished struct {
	Reason  string              `json:"reason"`
	Results []game.PlayerResult `json:"results"`
}

// PlayerLeft is the payload of player.left.
type PlayerLeft struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	NewHost  string `json:"newHost,omitempty"`
}

// Causes of a turn change.
const (
	CauseMove    = "move"
	CausePass    = "pass"
	CauseSwap    = "swap"
	CauseTimeout = "timeout"
	CauseLeave   = "leave"
)
