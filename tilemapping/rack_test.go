package tilemapping

import (
	"testing"

	"github.com/matryer/is"
)

func rackOf(letters string) *Rack {
	tiles := []Tile{}
	ld := EnglishLetterDistribution()
	for i, l := range letters {
		tiles = append(tiles, Tile{ID: i, Letter: l, Value: ld.Score(l)})
	}
	return NewRack(tiles)
}

func TestRackTake(t *testing.T) {
	is := is.New(t)
	r := rackOf("AEINRS?")

	is.True(r.Has('S'))
	is.True(r.Has(BlankLetter))
	tile, ok := r.Take('S')
	is.True(ok)
	is.Equal(tile.Letter, 'S')
	is.Equal(r.NumTiles(), 6)
	is.Equal(r.Needed(), 1)
	_, ok = r.Take('Z')
	is.True(!ok)
}

func TestRackTakeLettersAllOrNothing(t *testing.T) {
	is := is.New(t)
	r := rackOf("AAB")

	_, err := r.TakeLetters([]rune("ABC"))
	is.True(err != nil)
	is.Equal(r.String(), "AAB")

	taken, err := r.TakeLetters([]rune("AA"))
	is.NoErr(err)
	is.Equal(TilesString(taken), "AA")
	is.Equal(r.String(), "B")
}

func TestRackAddFull(t *testing.T) {
	is := is.New(t)
	r := rackOf("ABCDEFG")
	is.Equal(r.Add(Tile{ID: 99, Letter: 'H'}), ErrRackFull)
	is.Equal(r.Score(), 1+3+3+2+1+4+2)
}

func TestRackCopyIsDeep(t *testing.T) {
	is := is.New(t)
	r := rackOf("QUIZ")
	c := r.Copy()
	c.Take('Q')
	is.Equal(r.String(), "QUIZ")
	is.Equal(c.String(), "UIZ")
}

func TestNormalizeLetters(t *testing.T) {
	is := is.New(t)
	is.Equal(NormalizeLetters("  cat "), "CAT")
	is.Equal(NormalizeLetter('q'), 'Q')
}
