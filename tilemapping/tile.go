// Package tilemapping holds the physical game pieces: tiles, the letter
// distribution they come from, the bag, and player racks.
package tilemapping

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BlankLetter marks a blank tile. A blank has no letter of its own until
// it is placed on the board and designated.
const BlankLetter = '?'

// A Tile is a single physical tile. Tiles never change after creation;
// only their owner (bag, rack or board) does.
type Tile struct {
	ID     int  `json:"id"`
	Letter rune `json:"letter"`
	Value  int  `json:"value"`
}

func (t Tile) IsBlank() bool {
	return t.Letter == BlankLetter
}

func (t Tile) String() string {
	return fmt.Sprintf("%c%d", t.Letter, t.Value)
}

// TilesString returns the letters of the tiles, in order.
func TilesString(tiles []Tile) string {
	var sb strings.Builder
	for _, t := range tiles {
		sb.WriteRune(t.Letter)
	}
	return sb.String()
}

// upper returns a fresh caser; a cases.Caser is stateful and must not be
// shared between goroutines.
func upper() cases.Caser {
	return cases.Upper(language.Und)
}

// NormalizeLetters upper-cases user input and strips surrounding space.
// Dictionary keys and tile letters are always in this form.
func NormalizeLetters(s string) string {
	return upper().String(strings.TrimSpace(s))
}

// NormalizeLetter returns the tile-form of a single letter.
func NormalizeLetter(r rune) rune {
	rs := []rune(upper().String(string(r)))
	if len(rs) != 1 {
		return r
	}
	return rs[0]
}
