package board

import (
	"fmt"
	"os"
)

var (
	ColorSupport = os.Getenv("WORDROOM_DISABLE_COLOR") != "on"
)

// A BonusSquare is a bonus square (duh)
type BonusSquare uint8

const (
	BonusNone BonusSquare = iota
	// Bonus2LS is a double letter score
	Bonus2LS
	// Bonus3LS is a triple letter score
	Bonus3LS
	// Bonus2WS is a double word score
	Bonus2WS
	// Bonus3WS is a triple word score
	Bonus3WS
	// BonusCenter is the star; it scores as a double word the first time
	// it is covered.
	BonusCenter
)

func (b BonusSquare) String() string {
	switch b {
	case Bonus2LS:
		return "DL"
	case Bonus3LS:
		return "TL"
	case Bonus2WS:
		return "DW"
	case Bonus3WS:
		return "TW"
	case BonusCenter:
		return "center"
	}
	return "none"
}

// MarshalText lets bonus squares travel as their short names.
func (b BonusSquare) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// LetterMultiplier applies to the tile covering the square.
func (b BonusSquare) LetterMultiplier() int {
	switch b {
	case Bonus2LS:
		return 2
	case Bonus3LS:
		return 3
	}
	return 1
}

// WordMultiplier applies to every word through the square.
func (b BonusSquare) WordMultiplier() int {
	switch b {
	case Bonus2WS, BonusCenter:
		return 2
	case Bonus3WS:
		return 3
	}
	return 1
}

// symbol is the one-character rendering of an empty bonus square.
func (b BonusSquare) symbol() string {
	var s string
	switch b {
	case Bonus3WS:
		s = "="
	case Bonus2WS:
		s = "-"
	case Bonus3LS:
		s = `"`
	case Bonus2LS:
		s = "'"
	case BonusCenter:
		s = "*"
	default:
		return " "
	}
	if !ColorSupport {
		return s
	}
	switch b {
	case Bonus3WS:
		return fmt.Sprintf("\033[31m%s\033[0m", s)
	case Bonus2WS, BonusCenter:
		return fmt.Sprintf("\033[35m%s\033[0m", s)
	case Bonus3LS:
		return fmt.Sprintf("\033[34m%s\033[0m", s)
	default:
		return fmt.Sprintf("\033[36m%s\033[0m", s)
	}
}

// Position is a 0-indexed (row, col) pair.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// bonusSquares is the standard layout. It is symmetric across both
// diagonals and both center lines.
var bonusSquares = map[Position]BonusSquare{
	{7, 7}: BonusCenter,

	{0, 0}: Bonus3WS, {0, 7}: Bonus3WS, {0, 14}: Bonus3WS,
	{7, 0}: Bonus3WS, {7, 14}: Bonus3WS,
	{14, 0}: Bonus3WS, {14, 7}: Bonus3WS, {14, 14}: Bonus3WS,

	{1, 1}: Bonus2WS, {2, 2}: Bonus2WS, {3, 3}: Bonus2WS, {4, 4}: Bonus2WS,
	{10, 10}: Bonus2WS, {11, 11}: Bonus2WS, {12, 12}: Bonus2WS, {13, 13}: Bonus2WS,
	{1, 13}: Bonus2WS, {2, 12}: Bonus2WS, {3, 11}: Bonus2WS, {4, 10}: Bonus2WS,
	{10, 4}: Bonus2WS, {11, 3}: Bonus2WS, {12, 2}: Bonus2WS, {13, 1}: Bonus2WS,

	{1, 5}: Bonus3LS, {1, 9}: Bonus3LS,
	{5, 1}: Bonus3LS, {5, 5}: Bonus3LS, {5, 9}: Bonus3LS, {5, 13}: Bonus3LS,
	{9, 1}: Bonus3LS, {9, 5}: Bonus3LS, {9, 9}: Bonus3LS, {9, 13}: Bonus3LS,
	{13, 5}: Bonus3LS, {13, 9}: Bonus3LS,

	{0, 3}: Bonus2LS, {0, 11}: Bonus2LS,
	{2, 6}: Bonus2LS, {2, 8}: Bonus2LS,
	{3, 0}: Bonus2LS, {3, 7}: Bonus2LS, {3, 14}: Bonus2LS,
	{6, 2}: Bonus2LS, {6, 6}: Bonus2LS, {6, 8}: Bonus2LS, {6, 12}: Bonus2LS,
	{7, 3}: Bonus2LS, {7, 11}: Bonus2LS,
	{8, 2}: Bonus2LS, {8, 6}: Bonus2LS, {8, 8}: Bonus2LS, {8, 12}: Bonus2LS,
	{11, 0}: Bonus2LS, {11, 7}: Bonus2LS, {11, 14}: Bonus2LS,
	{12, 6}: Bonus2LS, {12, 8}: Bonus2LS,
	{14, 3}: Bonus2LS, {14, 11}: Bonus2LS,
}
