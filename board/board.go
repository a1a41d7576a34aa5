// Package board models the 15x15 game board: bonus squares, occupancy,
// placement legality and the words a placement forms.
package board

import (
	"fmt"
	"strings"

	"github.com/domino14/wordroom/move"
	"github.com/domino14/wordroom/tilemapping"
)

const (
	// BoardDim is the number of rows (and columns) on the board.
	BoardDim = 15
	// CenterRow and CenterCol locate the star.
	CenterRow = 7
	CenterCol = 7
)

// Cell is a tile resident on the board. Letter is the face the tile
// shows; for a blank it is the designated letter.
type Cell struct {
	Tile   tilemapping.Tile `json:"tile"`
	Letter rune             `json:"letter"`
}

// OccupiedCell is a cell together with its position, for snapshots.
type OccupiedCell struct {
	Position
	Cell
}

// A GameBoard is the main board structure. It contains all of the
// squares, with bonuses or filled letters.
type GameBoard struct {
	squares  [BoardDim][BoardDim]*Cell
	numTiles int
}

// MakeBoard creates an empty board.
func MakeBoard() *GameBoard {
	return &GameBoard{}
}

// Dim is the dimension of the board. It assumes the board is square.
func (g *GameBoard) Dim() int {
	return BoardDim
}

// PosExists reports whether row, col is on the board.
func (g *GameBoard) PosExists(row int, col int) bool {
	return row >= 0 && row < BoardDim && col >= 0 && col < BoardDim
}

// TileAt returns the cell at row, col and whether it is occupied.
// Off-board positions are reported as empty.
func (g *GameBoard) TileAt(row int, col int) (Cell, bool) {
	if !g.PosExists(row, col) || g.squares[row][col] == nil {
		return Cell{}, false
	}
	return *g.squares[row][col], true
}

// HasLetter reports whether a tile sits at row, col.
func (g *GameBoard) HasLetter(row int, col int) bool {
	return g.PosExists(row, col) && g.squares[row][col] != nil
}

// BonusAt returns the bonus printed on the square, whether or not it
// has been covered.
func (g *GameBoard) BonusAt(row int, col int) BonusSquare {
	return bonusSquares[Position{row, col}]
}

// IsEmpty returns if the board is empty.
func (g *GameBoard) IsEmpty() bool {
	return g.numTiles == 0
}

// NumTiles is the count of tiles on the board.
func (g *GameBoard) NumTiles() int {
	return g.numTiles
}

// PlaceTiles puts every placement on the board, or none of them.
func (g *GameBoard) PlaceTiles(placements []move.Placement) error {
	seen := make(map[Position]bool, len(placements))
	for _, p := range placements {
		pos := Position{p.Row, p.Col}
		if !g.PosExists(p.Row, p.Col) {
			return fmt.Errorf("%w (row %v col %v)", ErrOutOfBounds, p.Row, p.Col)
		}
		if seen[pos] {
			return fmt.Errorf("%w (row %v col %v)", ErrDuplicateSquare, p.Row, p.Col)
		}
		if g.HasLetter(p.Row, p.Col) {
			return fmt.Errorf("%w (row %v col %v)", ErrSquareOccupied, p.Row, p.Col)
		}
		seen[pos] = true
	}
	for _, p := range placements {
		g.squares[p.Row][p.Col] = &Cell{Tile: p.Tile, Letter: p.Letter}
	}
	g.numTiles += len(placements)
	return nil
}

// Tiles lists every occupied cell in row-major order.
func (g *GameBoard) Tiles() []OccupiedCell {
	out := make([]OccupiedCell, 0, g.numTiles)
	for r := 0; r < BoardDim; r++ {
		for c := 0; c < BoardDim; c++ {
			if s := g.squares[r][c]; s != nil {
				out = append(out, OccupiedCell{Position: Position{r, c}, Cell: *s})
			}
		}
	}
	return out
}

// FromTiles rebuilds a board from a snapshot. Cells off the board or on
// an occupied square are skipped.
func FromTiles(cells []OccupiedCell) *GameBoard {
	g := MakeBoard()
	for _, oc := range cells {
		if !g.PosExists(oc.Row, oc.Col) || g.HasLetter(oc.Row, oc.Col) {
			continue
		}
		cell := oc.Cell
		g.squares[oc.Row][oc.Col] = &cell
		g.numTiles++
	}
	return g
}

// Copy returns a deep copy of this board.
func (g *GameBoard) Copy() *GameBoard {
	newg := &GameBoard{numTiles: g.numTiles}
	for r := 0; r < BoardDim; r++ {
		for c := 0; c < BoardDim; c++ {
			if s := g.squares[r][c]; s != nil {
				cp := *s
				newg.squares[r][c] = &cp
			}
		}
	}
	return newg
}

// Equals compares occupancy and faces of two boards.
func (g *GameBoard) Equals(o *GameBoard) bool {
	if g.numTiles != o.numTiles {
		return false
	}
	for r := 0; r < BoardDim; r++ {
		for c := 0; c < BoardDim; c++ {
			a, b := g.squares[r][c], o.squares[r][c]
			if (a == nil) != (b == nil) {
				return false
			}
			if a != nil && *a != *b {
				return false
			}
		}
	}
	return true
}

// ToDisplayText renders the board for terminals.
func (g *GameBoard) ToDisplayText() string {
	var sb strings.Builder
	sb.WriteString("   ")
	for c := 0; c < BoardDim; c++ {
		sb.WriteString(fmt.Sprintf("%c ", 'A'+c))
	}
	sb.WriteString("\n")
	for r := 0; r < BoardDim; r++ {
		sb.WriteString(fmt.Sprintf("%2d|", r+1))
		for c := 0; c < BoardDim; c++ {
			if s := g.squares[r][c]; s != nil {
				letter := s.Letter
				if s.Tile.IsBlank() {
					letter = []rune(strings.ToLower(string(letter)))[0]
				}
				sb.WriteRune(letter)
			} else {
				sb.WriteString(g.BonusAt(r, c).symbol())
			}
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}
	return sb.String()
}
