package move

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/domino14/wordroom/tilemapping"
)

// MoveType is a type of move; a play, an exchange, pass, etc.
type MoveType uint8

const (
	MoveTypePlay MoveType = iota
	MoveTypeExchange
	MoveTypePass
	// MoveTypeTimeout is a pass the server made on the player's behalf
	// when their clock ran out.
	MoveTypeTimeout
)

// PlayedThroughMarker stands for a square already occupied on the board
// when a play is written out as coordinates plus word.
const PlayedThroughMarker = '.'

func (mt MoveType) String() string {
	switch mt {
	case MoveTypePlay:
		return "play"
	case MoveTypeExchange:
		return "exchange"
	case MoveTypePass:
		return "pass"
	case MoveTypeTimeout:
		return "timeout"
	}
	return "unhandled"
}

// TileRequest is a tile as a client submits it: a letter on a square.
// Blank requests a blank tile from the rack, designated as Letter.
type TileRequest struct {
	Letter string `json:"letter"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Blank  bool   `json:"blank,omitempty"`
}

// A Placement binds a rack tile to a square. For blanks, Letter is the
// designated letter; otherwise it equals Tile.Letter.
type Placement struct {
	Tile   tilemapping.Tile `json:"tile"`
	Letter rune             `json:"letter"`
	Row    int              `json:"row"`
	Col    int              `json:"col"`
}

// Move is a submitted action, before scoring.
type Move struct {
	action     MoveType
	playerID   string
	placements []Placement
	exchanged  []tilemapping.Tile
}

// NewPlacementMove creates a tile-placement move.
func NewPlacementMove(playerID string, placements []Placement) *Move {
	p := make([]Placement, len(placements))
	copy(p, placements)
	return &Move{action: MoveTypePlay, playerID: playerID, placements: p}
}

// NewExchangeMove creates an exchange of the given rack tiles.
func NewExchangeMove(playerID string, tiles []tilemapping.Tile) *Move {
	return &Move{action: MoveTypeExchange, playerID: playerID, exchanged: tiles}
}

func NewPassMove(playerID string) *Move {
	return &Move{action: MoveTypePass, playerID: playerID}
}

func NewTimeoutMove(playerID string) *Move {
	return &Move{action: MoveTypeTimeout, playerID: playerID}
}

func (m *Move) Action() MoveType {
	return m.action
}

func (m *Move) PlayerID() string {
	return m.playerID
}

// Placements returns the placed tiles in submission order.
func (m *Move) Placements() []Placement {
	return m.placements
}

func (m *Move) Exchanged() []tilemapping.Tile {
	return m.exchanged
}

// TilesPlayed is the number of tiles that leave the rack for the board.
func (m *Move) TilesPlayed() int {
	return len(m.placements)
}

// String provides a string just for debugging purposes.
func (m *Move) String() string {
	switch m.action {
	case MoveTypePlay:
		return fmt.Sprintf("<action: play player: %v tiles: %v>", m.playerID, m.ShortDescription())
	case MoveTypeExchange:
		return fmt.Sprintf("<action: exchange player: %v tiles: %v>", m.playerID,
			tilemapping.TilesString(m.exchanged))
	}
	return fmt.Sprintf("<action: %v player: %v>", m.action, m.playerID)
}

// ShortDescription provides a short description, useful for logging or
// user display.
func (m *Move) ShortDescription() string {
	switch m.action {
	case MoveTypePlay:
		parts := make([]string, len(m.placements))
		for i, p := range m.placements {
			parts[i] = fmt.Sprintf("%c@%d,%d", p.Letter, p.Row, p.Col)
		}
		return strings.Join(parts, " ")
	case MoveTypeExchange:
		return "-" + tilemapping.TilesString(m.exchanged)
	case MoveTypePass:
		return "(Pass)"
	case MoveTypeTimeout:
		return "(Time)"
	}
	return ""
}

var reVertical, reHorizontal *regexp.Regexp

func init() {
	reVertical = regexp.MustCompile(`^(?P<col>[A-O])(?P<row>[0-9]+)$`)
	reHorizontal = regexp.MustCompile(`^(?P<row>[0-9]+)(?P<col>[A-O])$`)
}

// ToBoardGameCoords turns a 0-indexed row and column into the familiar
// "8H" (horizontal) or "H8" (vertical) notation.
func ToBoardGameCoords(row int, col int, vertical bool) string {
	colCoords := string(rune('A' + col))
	rowCoords := strconv.Itoa(row + 1)
	if vertical {
		return colCoords + rowCoords
	}
	return rowCoords + colCoords
}

// FromBoardGameCoords does the inverse operation of ToBoardGameCoords above.
func FromBoardGameCoords(c string) (int, int, bool, error) {
	c = strings.ToUpper(c)
	if m := reVertical.FindStringSubmatch(c); len(m) == 3 {
		row, _ := strconv.Atoi(m[2])
		return row - 1, int(m[1][0] - 'A'), true, nil
	}
	if m := reHorizontal.FindStringSubmatch(c); len(m) == 3 {
		row, _ := strconv.Atoi(m[1])
		return row - 1, int(m[2][0] - 'A'), false, nil
	}
	return 0, 0, false, fmt.Errorf("unrecognized coordinates %q", c)
}

var ErrEmptyWord = errors.New("no tiles in word")

// RequestsFromCoords expands coordinates plus a word ("8H GO", "H8 c.T")
// into tile requests. Lower-case letters are blanks; PlayedThroughMarker
// skips a square that is already on the board.
func RequestsFromCoords(coords, word string) ([]TileRequest, error) {
	row, col, vertical, err := FromBoardGameCoords(coords)
	if err != nil {
		return nil, err
	}
	var reqs []TileRequest
	for i, r := range []rune(word) {
		rr, cc := row, col+i
		if vertical {
			rr, cc = row+i, col
		}
		if r == PlayedThroughMarker {
			continue
		}
		reqs = append(reqs, TileRequest{
			Letter: string(unicode.ToUpper(r)),
			Row:    rr,
			Col:    cc,
			Blank:  unicode.IsLower(r),
		})
	}
	if len(reqs) == 0 {
		return nil, ErrEmptyWord
	}
	return reqs, nil
}
