package game

import (
	"errors"
	"fmt"

	"github.com/domino14/wordroom/board"
	"github.com/domino14/wordroom/lexicon"
)

// Error classes. Every error returned by this package wraps one of these,
// so callers can branch with errors.Is and report a stable reason.
var (
	ErrInvalidPlacement      = board.ErrInvalidPlacement
	ErrInvalidWord           = errors.New("invalid word")
	ErrOutOfTurn             = errors.New("not your turn")
	ErrCommandConflict       = errors.New("command conflict")
	ErrDictionaryUnavailable = lexicon.ErrDictionaryUnavailable
	ErrRoomNotFound          = errors.New("room not found")
	ErrPlayerNotFound        = errors.New("player not found")
	ErrInvalidState          = errors.New("invalid game state")
	ErrInvalidCommand        = errors.New("invalid command")
)

var (
	ErrNotInProgress      = fmt.Errorf("%w: game is not in progress", ErrInvalidState)
	ErrAlreadyStarted     = fmt.Errorf("%w: game has already started", ErrInvalidState)
	ErrNotEnoughPlayers   = fmt.Errorf("%w: need at least two players", ErrInvalidState)
	ErrPlayersNotReady    = fmt.Errorf("%w: not every player is ready", ErrInvalidState)
	ErrRoomFull           = fmt.Errorf("%w: room is full", ErrInvalidCommand)
	ErrNotHost            = fmt.Errorf("%w: only the host can do that", ErrInvalidCommand)
	ErrEmptyName          = fmt.Errorf("%w: a name is required", ErrInvalidCommand)
	ErrBagTooSmall        = fmt.Errorf("%w: the bag needs at least 7 tiles to swap", ErrInvalidCommand)
	ErrBadSwap            = fmt.Errorf("%w: swap between 1 and 7 tiles", ErrInvalidCommand)
	ErrTileNotOnRack      = fmt.Errorf("%w: tile not on rack", ErrInvalidPlacement)
	ErrBadLetter          = fmt.Errorf("%w: letter must be a single A-Z", ErrInvalidPlacement)
	ErrNoWords            = fmt.Errorf("%w: no words formed", ErrInvalidPlacement)
	ErrChallengeActive    = fmt.Errorf("%w: a challenge is already active", ErrCommandConflict)
	ErrAlreadyChallenged  = fmt.Errorf("%w: that move was already challenged", ErrCommandConflict)
	ErrNothingToChallenge = fmt.Errorf("%w: there is no move to challenge", ErrInvalidCommand)
	ErrSelfChallenge      = fmt.Errorf("%w: you cannot challenge your own move", ErrInvalidCommand)
	ErrNotMoveAuthor      = fmt.Errorf("%w: target did not make the last move", ErrInvalidCommand)
	ErrWordNotInMove      = fmt.Errorf("%w: word was not formed by the last move", ErrInvalidCommand)
	ErrNoActiveChallenge  = fmt.Errorf("%w: no challenge is active", ErrInvalidCommand)
	ErrNotChallengeTarget = fmt.Errorf("%w: only the challenged player may respond", ErrInvalidCommand)
)

// Reason codes sent to clients in rejections.
const (
	ReasonInvalidPlacement      = "invalid-placement"
	ReasonInvalidWord           = "invalid-word"
	ReasonOutOfTurn             = "out-of-turn"
	ReasonCommandConflict       = "command-conflict"
	ReasonDictionaryUnavailable = "dictionary-unavailable"
	ReasonRoomNotFound          = "room-not-found"
	ReasonPlayerNotFound        = "player-not-found"
	ReasonInvalidState          = "invalid-state"
	ReasonInvalidCommand        = "invalid-command"
	ReasonInternal              = "internal"
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrInvalidPlacement, ReasonInvalidPlacement},
	{ErrInvalidWord, ReasonInvalidWord},
	{ErrOutOfTurn, ReasonOutOfTurn},
	{ErrCommandConflict, ReasonCommandConflict},
	{ErrDictionaryUnavailable, ReasonDictionaryUnavailable},
	{ErrRoomNotFound, ReasonRoomNotFound},
	{ErrPlayerNotFound, ReasonPlayerNotFound},
	{ErrInvalidState, ReasonInvalidState},
	{ErrInvalidCommand, ReasonInvalidCommand},
}

// ReasonCode maps an error to its wire reason. Nil maps to "".
func ReasonCode(err error) string {
	if err == nil {
		return ""
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ReasonInternal
}
