package tilemapping

import (
	"errors"
	"fmt"
)

// RackSize is the number of tiles a full rack holds.
const RackSize = 7

var ErrRackFull = errors.New("rack is full")

// Rack is a player's hand, in the order the tiles were drawn.
type Rack struct {
	tiles []Tile
}

// NewRack creates a rack holding the given tiles.
func NewRack(tiles []Tile) *Rack {
	r := &Rack{tiles: make([]Tile, 0, RackSize)}
	r.tiles = append(r.tiles, tiles...)
	return r
}

// String returns a user-visible version of this rack.
func (r *Rack) String() string {
	return TilesString(r.tiles)
}

// Copy returns a deep copy of this rack
func (r *Rack) Copy() *Rack {
	return NewRack(r.tiles)
}

// Tiles returns a copy of the tiles on the rack.
func (r *Rack) Tiles() []Tile {
	out := make([]Tile, len(r.tiles))
	copy(out, r.tiles)
	return out
}

func (r *Rack) NumTiles() int {
	return len(r.tiles)
}

// Needed is how many tiles it takes to fill the rack back up.
func (r *Rack) Needed() int {
	return RackSize - len(r.tiles)
}

// Add puts tiles on the rack.
func (r *Rack) Add(tiles ...Tile) error {
	if len(r.tiles)+len(tiles) > RackSize {
		return ErrRackFull
	}
	r.tiles = append(r.tiles, tiles...)
	return nil
}

// Has reports whether a tile with the given letter is on the rack. Pass
// BlankLetter to ask about blanks.
func (r *Rack) Has(letter rune) bool {
	return r.indexOf(letter) >= 0
}

func (r *Rack) indexOf(letter rune) int {
	for i, t := range r.tiles {
		if t.Letter == letter {
			return i
		}
	}
	return -1
}

// Take removes and returns the first tile with the given letter.
func (r *Rack) Take(letter rune) (Tile, bool) {
	idx := r.indexOf(letter)
	if idx < 0 {
		return Tile{}, false
	}
	t := r.tiles[idx]
	r.tiles = append(r.tiles[:idx], r.tiles[idx+1:]...)
	return t, true
}

// TakeLetters removes one tile per letter. Either all letters are taken
// or the rack is left untouched and an error is returned.
func (r *Rack) TakeLetters(letters []rune) ([]Tile, error) {
	scratch := r.Copy()
	taken := make([]Tile, 0, len(letters))
	for _, l := range letters {
		t, ok := scratch.Take(l)
		if !ok {
			return nil, fmt.Errorf("tile %c not on rack %v", l, r.String())
		}
		taken = append(taken, t)
	}
	r.tiles = scratch.tiles
	return taken, nil
}

// Score is the sum of the tile values on the rack.
func (r *Rack) Score() int {
	s := 0
	for _, t := range r.tiles {
		s += t.Value
	}
	return s
}

func (r *Rack) Clear() {
	r.tiles = r.tiles[:0]
}
