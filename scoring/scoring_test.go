package scoring

import (
	"testing"

	"github.com/matryer/is"
	"github.com/samber/lo"

	"github.com/domino14/wordroom/board"
	"github.com/domino14/wordroom/move"
	"github.com/domino14/wordroom/tilemapping"
)

func across(row, col int, word string) []move.Placement {
	ld := tilemapping.EnglishLetterDistribution()
	var ps []move.Placement
	for i, r := range word {
		t := tilemapping.Tile{ID: row*100 + col + i, Letter: r, Value: ld.Score(r)}
		letter := r
		if r >= 'a' && r <= 'z' {
			t = tilemapping.Tile{ID: t.ID, Letter: tilemapping.BlankLetter}
			letter = r - 'a' + 'A'
		}
		ps = append(ps, move.Placement{Tile: t, Letter: letter, Row: row, Col: col + i})
	}
	return ps
}

func TestDoubleLetterOnlyForNewTiles(t *testing.T) {
	is := is.New(t)
	b := board.MakeBoard()

	// A on the double letter at 7,3 counts twice when new.
	ps := across(7, 3, "AT")
	words := b.FormedWords(ps)
	is.Equal(ScoreWord(b, words[0]), 3)

	// Once resident, the same A only counts once.
	is.NoErr(b.PlaceTiles(ps))
	words = b.FormedWords(across(7, 5, "S"))
	is.Equal(words[0].Text, "ATS")
	is.Equal(ScoreWord(b, words[0]), 3)
}

func TestCenterIsDoubleWord(t *testing.T) {
	is := is.New(t)
	b := board.MakeBoard()
	ms := ScoreMove(b, b.FormedWords(across(7, 7, "GO")), 2)
	// G=2 O=1, doubled by the star.
	is.Equal(ms.Total, 6)
	is.True(!ms.Bingo)
}

func TestBingoFirstMove(t *testing.T) {
	is := is.New(t)
	b := board.MakeBoard()
	ps := across(7, 1, "RETAINS")
	ms := ScoreMove(b, b.FormedWords(ps), len(ps))
	// T on the double letter, star doubles the word, plus the bonus.
	is.Equal(ms.Words[0].Score, 16)
	is.True(ms.Bingo)
	is.Equal(ms.BingoBonus, BingoBonus)
	is.Equal(ms.Total, 66)
}

func TestBingoAddedOnceAcrossWords(t *testing.T) {
	is := is.New(t)
	b := board.MakeBoard()
	is.NoErr(b.PlaceTiles(across(6, 8, "AT")))

	ps := across(7, 3, "RETAINS")
	words := b.FormedWords(ps)
	is.Equal(lo.Map(words, func(w board.Word, _ int) string { return w.Text }),
		[]string{"RETAINS", "AN", "TS"})

	ms := ScoreMove(b, words, len(ps))
	sum := lo.SumBy(ms.Words, func(ws WordScore) int { return ws.Score })
	is.Equal(sum, 20)
	is.Equal(ms.Total, sum+BingoBonus)
	is.Equal(ms.LongestWord(), "RETAINS")
}

func TestBlankOnTripleWord(t *testing.T) {
	is := is.New(t)
	b := board.MakeBoard()
	// Blank Z on 7,0 is worth nothing, but still triples the word.
	words := b.FormedWords(across(7, 0, "zA"))
	is.Equal(ScoreWord(b, words[0]), 3)
}

func TestInvalidWords(t *testing.T) {
	is := is.New(t)
	ms := MoveScore{Words: []WordScore{
		{Word: "CAT", Valid: true},
		{Word: "XQ"},
	}}
	is.Equal(ms.InvalidWords(), []string{"XQ"})
}
