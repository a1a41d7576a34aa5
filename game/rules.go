package game

import (
	"fmt"
	"time"

	"github.com/domino14/wordroom/lexicon"
)

// Mode is the kind of room.
type Mode string

const (
	ModeClassic  Mode = "classic"
	ModePrivate  Mode = "private"
	ModeGuest    Mode = "guest"
	ModePractice Mode = "practice"
)

// ParseMode validates a mode name. The empty string means classic.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeClassic:
		return ModeClassic, nil
	case ModePrivate, ModeGuest, ModePractice:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidCommand, s)
}

const (
	MinPlayers = 2
	MaxPlayers = 4

	DefaultTurnDuration     = 120 * time.Second
	DefaultChallengeWindow  = 15 * time.Second
	DefaultChallengePenalty = 10
	DefaultWarningBefore    = 10 * time.Second
	// SwapMinimumBag is the fewest tiles the bag may hold for a swap.
	SwapMinimumBag = 7
)

// Settings are fixed when a room is created.
type Settings struct {
	Mode             Mode            `json:"mode" mapstructure:"mode"`
	MaxPlayers       int             `json:"maxPlayers" mapstructure:"max_players"`
	TurnDuration     time.Duration   `json:"turnDuration" mapstructure:"turn_duration"`
	WarningBefore    time.Duration   `json:"warningBefore" mapstructure:"warning_before"`
	ChallengeWindow  time.Duration   `json:"challengeWindow" mapstructure:"challenge_window"`
	ChallengePenalty int             `json:"challengePenalty" mapstructure:"challenge_penalty"`
	Variant          lexicon.Variant `json:"variant" mapstructure:"variant"`
}

func DefaultSettings() Settings {
	return Settings{
		Mode:             ModeClassic,
		MaxPlayers:       MaxPlayers,
		TurnDuration:     DefaultTurnDuration,
		WarningBefore:    DefaultWarningBefore,
		ChallengeWindow:  DefaultChallengeWindow,
		ChallengePenalty: DefaultChallengePenalty,
		Variant:          lexicon.VariantTWL,
	}
}

// Validate checks ranges. A practice room always has exactly two seats.
func (s Settings) Validate() error {
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}
	if s.MaxPlayers < MinPlayers || s.MaxPlayers > MaxPlayers {
		return fmt.Errorf("%w: max players must be between %d and %d",
			ErrInvalidCommand, MinPlayers, MaxPlayers)
	}
	if s.Mode == ModePractice && s.MaxPlayers != MinPlayers {
		return fmt.Errorf("%w: practice rooms have two seats", ErrInvalidCommand)
	}
	if s.TurnDuration <= 0 || s.ChallengeWindow <= 0 {
		return fmt.Errorf("%w: durations must be positive", ErrInvalidCommand)
	}
	if s.ChallengePenalty < 0 {
		return fmt.Errorf("%w: challenge penalty cannot be negative", ErrInvalidCommand)
	}
	if _, err := lexicon.ParseVariant(string(s.Variant)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	return nil
}
