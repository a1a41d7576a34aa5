package room

import (
	"github.com/domino14/wordroom/game"
	"github.com/domino14/wordroom/move"
)

// Command is anything a room's mailbox accepts.
type Command interface {
	verb() string
}

// Join seats a new player. The first player in a room becomes host.
type Join struct {
	Name string
}

// JoinResult is the reply to Join.
type JoinResult struct {
	PlayerID string     `json:"playerId"`
	State    game.State `json:"state"`
}

// Attach binds a fresh session to an existing player. The reply is the
// current state; the player's rack is sent privately.
type Attach struct {
	PlayerID string
}

type Leave struct {
	PlayerID string
}

type SetReady struct {
	PlayerID string
	Ready    bool
}

type Start struct {
	PlayerID string
}

// SubmitMove places tiles. The reply is a *game.MoveResult, which is
// also returned next to ErrInvalidWord so clients can show the score.
type SubmitMove struct {
	PlayerID string
	Tiles    []move.TileRequest
}

// Preview scores a play without committing it.
type Preview struct {
	PlayerID string
	Tiles    []move.TileRequest
}

type Pass struct {
	PlayerID string
}

// Swap exchanges the named rack letters ("?" for a blank).
type Swap struct {
	PlayerID string
	Letters  string
}

// IssueChallenge disputes Word from the last move by TargetID.
type IssueChallenge struct {
	PlayerID string
	TargetID string
	Word     string
}

// RespondChallenge is the target's verdict on the open challenge.
type RespondChallenge struct {
	PlayerID string
	Valid    bool
}

type Finish struct {
	PlayerID string
}

// GetState asks for a snapshot.
type GetState struct{}

// Timer expiries, posted by the game's hooks.
type (
	turnTimeout      struct{ gen uint64 }
	turnWarning      struct{ gen uint64 }
	challengeTimeout struct{ gen uint64 }
	closeRoom        struct{}
)

func (Join) verb() string             { return VerbJoin }
func (Attach) verb() string           { return VerbAttach }
func (Leave) verb() string            { return VerbLeave }
func (SetReady) verb() string         { return VerbReady }
func (Start) verb() string            { return VerbStart }
func (SubmitMove) verb() string       { return VerbSubmit }
func (Preview) verb() string          { return VerbPreview }
func (Pass) verb() string             { return VerbPass }
func (Swap) verb() string             { return VerbSwap }
func (IssueChallenge) verb() string   { return VerbChallenge }
func (RespondChallenge) verb() string { return VerbRespond }
func (Finish) verb() string           { return VerbFinish }
func (GetState) verb() string         { return VerbState }
func (turnTimeout) verb() string      { return "turn.timeout" }
func (turnWarning) verb() string      { return "turn.warning" }
func (challengeTimeout) verb() string { return "challenge.timeout" }
func (closeRoom) verb() string        { return "room.close" }
