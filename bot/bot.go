// Package bot provides the computer opponent for practice rooms. It
// only ever passes; it exists so one person can try the game alone.
package bot

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/domino14/wordroom/game"
	"github.com/domino14/wordroom/move"
	"github.com/domino14/wordroom/tilemapping"
)

// DefaultName is the seat name of the practice bot.
const DefaultName = "Practice Bot"

// Decision is what a bot wants to do on its turn.
type Decision struct {
	Action   move.MoveType
	Tiles    []move.TileRequest
	Exchange string
}

// Bot picks a move given the public room state and its own rack.
type Bot interface {
	Name() string
	ChooseMove(ctx context.Context, st game.State, rack []tilemapping.Tile) Decision
}

// PassBot always passes.
type PassBot struct {
	name string
}

func NewPassBot(name string) *PassBot {
	if name == "" {
		name = DefaultName
	}
	return &PassBot{name: name}
}

func (b *PassBot) Name() string {
	return b.name
}

func (b *PassBot) ChooseMove(ctx context.Context, st game.State, rack []tilemapping.Tile) Decision {
	log.Debug().Str("room", st.Code).Str("rack", tilemapping.TilesString(rack)).Msg("bot-passing")
	return Decision{Action: move.MoveTypePass}
}
