package game

import (
	"github.com/rs/zerolog/log"

	"github.com/domino14/wordroom/tilemapping"
)

// PlayerStats accumulate over one game.
type PlayerStats struct {
	Bingos      int    `json:"bingos"`
	HighestMove int    `json:"highestMove"`
	LongestWord string `json:"longestWord"`
	MovesPlayed int    `json:"movesPlayed"`
}

// Player is a seat in a room. ID is independent of any connection.
type Player struct {
	ID    string
	Name  string
	Score int
	Host  bool
	Ready bool
	Bot   bool

	rack  *tilemapping.Rack
	stats PlayerStats
}

func newPlayer(name string, host bool) *Player {
	return &Player{
		ID:    NewPlayerID(),
		Name:  name,
		Host:  host,
		Ready: host,
		rack:  tilemapping.NewRack(nil),
	}
}

// addScore changes the score by delta, never going below zero. It returns
// the change actually applied.
func (p *Player) addScore(delta int) int {
	before := p.Score
	p.Score += delta
	if p.Score < 0 {
		p.Score = 0
	}
	return p.Score - before
}

func (p *Player) throwRackIn(bag *tilemapping.Bag) {
	log.Debug().Str("rack", p.rack.String()).Str("player", p.Name).
		Msg("throwing rack in")
	bag.PutBack(p.rack.Tiles())
	p.rack.Clear()
}

func (p *Player) recordMove(score int, bingo bool, longest string) {
	p.stats.MovesPlayed++
	if bingo {
		p.stats.Bingos++
	}
	if score > p.stats.HighestMove {
		p.stats.HighestMove = score
	}
	if len(longest) > len(p.stats.LongestWord) {
		p.stats.LongestWord = longest
	}
}

// PlayerInfo is the public view of a player. Other players only learn
// how many tiles are on the rack.
type PlayerInfo struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Score     int         `json:"score"`
	Host      bool        `json:"host"`
	Ready     bool        `json:"ready"`
	Bot       bool        `json:"bot,omitempty"`
	RackCount int         `json:"rackCount"`
	Stats     PlayerStats `json:"stats"`
}

func (p *Player) Info() PlayerInfo {
	return PlayerInfo{
		ID:        p.ID,
		Name:      p.Name,
		Score:     p.Score,
		Host:      p.Host,
		Ready:     p.Ready,
		Bot:       p.Bot,
		RackCount: p.rack.NumTiles(),
		Stats:     p.stats,
	}
}

// Rack returns a copy of the player's tiles.
func (p *Player) Rack() []tilemapping.Tile {
	return p.rack.Tiles()
}

func (p *Player) Stats() PlayerStats {
	return p.stats
}
