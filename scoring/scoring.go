// Package scoring computes word and move scores from the words a
// placement forms.
package scoring

import (
	"github.com/samber/lo"

	"github.com/domino14/wordroom/board"
	"github.com/domino14/wordroom/tilemapping"
)

// BingoBonus is awarded once per move that uses every tile on a full rack.
const BingoBonus = 50

// WordScore is a formed word with its computed value. Valid is filled in
// by the caller after a dictionary check.
type WordScore struct {
	Word  string           `json:"word"`
	Tiles []board.WordTile `json:"tiles"`
	Score int              `json:"score"`
	Valid bool             `json:"valid"`
}

// MoveScore totals every word of a move.
type MoveScore struct {
	Words      []WordScore `json:"words"`
	Bingo      bool        `json:"bingo"`
	BingoBonus int         `json:"bingoBonus"`
	Total      int         `json:"total"`
}

// ScoreWord sums the tile values of w, applying letter and word bonuses
// only for tiles that are new in this move.
func ScoreWord(b *board.GameBoard, w board.Word) int {
	letters := 0
	wordMultiplier := 1
	for _, t := range w.Tiles {
		if !t.New {
			letters += t.Value
			continue
		}
		bonus := b.BonusAt(t.Row, t.Col)
		letters += t.Value * bonus.LetterMultiplier()
		wordMultiplier *= bonus.WordMultiplier()
	}
	return letters * wordMultiplier
}

// ScoreMove scores every word and adds the bingo bonus if tilesPlayed is
// a full rack. Word multipliers and the bingo bonus do not interact.
func ScoreMove(b *board.GameBoard, words []board.Word, tilesPlayed int) MoveScore {
	ms := MoveScore{
		Words: lo.Map(words, func(w board.Word, _ int) WordScore {
			return WordScore{Word: w.Text, Tiles: w.Tiles, Score: ScoreWord(b, w)}
		}),
	}
	ms.Total = lo.SumBy(ms.Words, func(ws WordScore) int { return ws.Score })
	if tilesPlayed == tilemapping.RackSize {
		ms.Bingo = true
		ms.BingoBonus = BingoBonus
		ms.Total += BingoBonus
	}
	return ms
}

// InvalidWords returns the words not marked valid.
func (ms MoveScore) InvalidWords() []string {
	return lo.FilterMap(ms.Words, func(ws WordScore, _ int) (string, bool) {
		return ws.Word, !ws.Valid
	})
}

// LongestWord returns the longest word in the move.
func (ms MoveScore) LongestWord() string {
	longest := ""
	for _, ws := range ms.Words {
		if len(ws.Word) > len(longest) {
			longest = ws.Word
		}
	}
	return longest
}
