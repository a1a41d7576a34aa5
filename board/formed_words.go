package board

import (
	"strings"

	"github.com/domino14/wordroom/move"
)

// WordTile is one letter of a formed word. New is true for tiles placed
// by the move being evaluated; only those earn bonus squares.
type WordTile struct {
	TileID int  `json:"tileId"`
	Letter rune `json:"letter"`
	Value  int  `json:"value"`
	Row    int  `json:"row"`
	Col    int  `json:"col"`
	New    bool `json:"new"`
}

// Word is a run of tiles formed by a play.
type Word struct {
	Text      string     `json:"word"`
	Tiles     []WordTile `json:"tiles"`
	Direction Direction  `json:"-"`
}

func (w Word) Len() int {
	return len(w.Tiles)
}

// Start is the position of the first letter.
func (w Word) Start() Position {
	return Position{w.Tiles[0].Row, w.Tiles[0].Col}
}

type spanKey struct {
	text  string
	start Position
	dir   Direction
	n     int
}

func (w Word) key() spanKey {
	return spanKey{w.Text, w.Start(), w.Direction, len(w.Tiles)}
}

// FormedWords returns every word of two or more letters formed by the
// placements, main word first, followed by cross-words in placement order.
// The placements are assumed to have passed ValidatePlacement.
func (g *GameBoard) FormedWords(placements []move.Placement) []Word {
	if len(placements) == 0 {
		return nil
	}
	overlay := make(map[Position]move.Placement, len(placements))
	positions := make([]Position, len(placements))
	for i, p := range placements {
		overlay[Position{p.Row, p.Col}] = p
		positions[i] = Position{p.Row, p.Col}
	}
	mainDir, _ := placementDirection(positions)

	var words []Word
	seen := map[spanKey]bool{}
	add := func(w *Word) {
		if w == nil || seen[w.key()] {
			return
		}
		seen[w.key()] = true
		words = append(words, *w)
	}

	add(g.wordThrough(overlay, placements[0].Row, placements[0].Col, mainDir))
	for _, p := range placements {
		add(g.wordThrough(overlay, p.Row, p.Col, mainDir.cross()))
	}
	return words
}

// SingleLetterWord is the one-letter "word" a lone tile makes when it
// touches nothing. It only counts if the dictionary allows one-letter
// words.
func SingleLetterWord(p move.Placement) Word {
	return Word{
		Text: string(p.Letter),
		Tiles: []WordTile{{
			TileID: p.Tile.ID, Letter: p.Letter, Value: p.Tile.Value,
			Row: p.Row, Col: p.Col, New: true,
		}},
	}
}

// wordThrough walks backwards from row, col along dir until it finds an
// empty square or the edge, then forwards collecting letters. It returns
// nil if the run is shorter than two letters.
func (g *GameBoard) wordThrough(overlay map[Position]move.Placement, row, col int, dir Direction) *Word {
	ri, ci := dir.vector()
	occupied := func(r, c int) bool {
		_, ok := overlay[Position{r, c}]
		return ok || g.HasLetter(r, c)
	}

	// Find the top or left edge.
	for occupied(row-ri, col-ci) {
		row -= ri
		col -= ci
	}

	var sb strings.Builder
	var tiles []WordTile
	for ; occupied(row, col); row, col = row+ri, col+ci {
		var wt WordTile
		if p, ok := overlay[Position{row, col}]; ok {
			wt = WordTile{TileID: p.Tile.ID, Letter: p.Letter, Value: p.Tile.Value,
				Row: row, Col: col, New: true}
		} else {
			cell := g.squares[row][col]
			wt = WordTile{TileID: cell.Tile.ID, Letter: cell.Letter, Value: cell.Tile.Value,
				Row: row, Col: col}
		}
		sb.WriteRune(wt.Letter)
		tiles = append(tiles, wt)
	}
	if len(tiles) < 2 {
		return nil
	}
	return &Word{Text: sb.String(), Tiles: tiles, Direction: dir}
}
