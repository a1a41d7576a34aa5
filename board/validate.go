package board

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/domino14/wordroom/move"
	"github.com/domino14/wordroom/tilemapping"
)

// ErrInvalidPlacement is the class of every geometry, adjacency and
// first-move violation. The specific errors below wrap it.
var ErrInvalidPlacement = errors.New("invalid placement")

var (
	ErrNoTiles         = fmt.Errorf("%w: no tiles placed", ErrInvalidPlacement)
	ErrTooManyTiles    = fmt.Errorf("%w: cannot place more than %d tiles", ErrInvalidPlacement, tilemapping.RackSize)
	ErrDuplicateSquare = fmt.Errorf("%w: two tiles on the same square", ErrInvalidPlacement)
	ErrOutOfBounds     = fmt.Errorf("%w: play extends off of the board", ErrInvalidPlacement)
	ErrSquareOccupied  = fmt.Errorf("%w: square already has a tile", ErrInvalidPlacement)
	ErrNotCollinear    = fmt.Errorf("%w: tiles must be in a single row or column", ErrInvalidPlacement)
	ErrGap             = fmt.Errorf("%w: tiles must be placed without gaps", ErrInvalidPlacement)
	ErrMissesCenter    = fmt.Errorf("%w: the first play must touch the center square", ErrInvalidPlacement)
	ErrNotConnected    = fmt.Errorf("%w: your play must border a tile already on the board", ErrInvalidPlacement)
)

// Direction is the axis a play runs along.
type Direction uint8

const (
	Horizontal Direction = iota
	Vertical
)

func (d Direction) String() string {
	if d == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// vector returns the row and column increments for one step along d.
func (d Direction) vector() (int, int) {
	if d == Vertical {
		return 1, 0
	}
	return 0, 1
}

func (d Direction) cross() Direction {
	if d == Vertical {
		return Horizontal
	}
	return Vertical
}

// ValidatePlacement returns an error if the placement is not a legal
// Crossword Game move on this board. It does not look at whether the words
// are real; it runs before any scoring or dictionary work.
func (g *GameBoard) ValidatePlacement(placements []move.Placement, firstMove bool) error {
	if len(placements) == 0 {
		return ErrNoTiles
	}
	if len(placements) > tilemapping.RackSize {
		return ErrTooManyTiles
	}

	positions := lo.Map(placements, func(p move.Placement, _ int) Position {
		return Position{p.Row, p.Col}
	})
	if len(lo.Uniq(positions)) != len(positions) {
		return ErrDuplicateSquare
	}
	for _, p := range positions {
		if !g.PosExists(p.Row, p.Col) {
			return fmt.Errorf("%w (row %v col %v)", ErrOutOfBounds, p.Row, p.Col)
		}
	}
	for _, p := range positions {
		if g.HasLetter(p.Row, p.Col) {
			return fmt.Errorf("%w (row %v col %v)", ErrSquareOccupied, p.Row, p.Col)
		}
	}

	dir, ok := placementDirection(positions)
	if !ok {
		return ErrNotCollinear
	}

	placed := lo.SliceToMap(positions, func(p Position) (Position, bool) { return p, true })
	if err := g.checkGaps(positions, placed, dir); err != nil {
		return err
	}

	if firstMove {
		if !placed[Position{CenterRow, CenterCol}] {
			return ErrMissesCenter
		}
		return nil
	}
	for _, p := range positions {
		for _, n := range neighbors(p) {
			if g.HasLetter(n.Row, n.Col) {
				return nil
			}
		}
	}
	return ErrNotConnected
}

// placementDirection returns the axis of the play. A single tile is
// reported as horizontal.
func placementDirection(positions []Position) (Direction, bool) {
	rows := lo.Uniq(lo.Map(positions, func(p Position, _ int) int { return p.Row }))
	cols := lo.Uniq(lo.Map(positions, func(p Position, _ int) int { return p.Col }))
	switch {
	case len(rows) == 1:
		return Horizontal, true
	case len(cols) == 1:
		return Vertical, true
	}
	return Horizontal, false
}

func (g *GameBoard) checkGaps(positions []Position, placed map[Position]bool, dir Direction) error {
	ri, ci := dir.vector()
	first := lo.MinBy(positions, func(a, b Position) bool { return a.Row*ri+a.Col*ci < b.Row*ri+b.Col*ci })
	last := lo.MaxBy(positions, func(a, b Position) bool { return a.Row*ri+a.Col*ci > b.Row*ri+b.Col*ci })
	for r, c := first.Row, first.Col; r <= last.Row && c <= last.Col; r, c = r+ri, c+ci {
		if !placed[Position{r, c}] && !g.HasLetter(r, c) {
			return fmt.Errorf("%w (row %v col %v)", ErrGap, r, c)
		}
	}
	return nil
}

func neighbors(p Position) []Position {
	return []Position{
		{p.Row - 1, p.Col},
		{p.Row + 1, p.Col},
		{p.Row, p.Col - 1},
		{p.Row, p.Col + 1},
	}
}
