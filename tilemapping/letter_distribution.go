package tilemapping

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// englishDistribution is the standard 100-tile English set.
// letter,quantity,value,vowel
const englishDistribution = `?,2,0,0
A,9,1,1
B,2,3,0
C,2,3,0
D,4,2,0
E,12,1,1
F,2,4,0
G,3,2,0
H,2,4,0
I,9,1,1
J,1,8,0
K,1,5,0
L,4,1,0
M,2,3,0
N,6,1,0
O,8,1,1
P,2,3,0
Q,1,10,0
R,6,1,0
S,4,1,0
T,6,1,0
U,4,1,1
V,2,4,0
W,2,4,0
X,1,8,0
Y,2,4,0
Z,1,10,0
`

// LetterDistribution encodes the tile distribution for the relevant game.
type LetterDistribution struct {
	Name       string
	Vowels     []rune
	letters    []rune
	counts     map[rune]int
	scores     map[rune]int
	numLetters int
}

var (
	englishOnce sync.Once
	english     *LetterDistribution
)

// ScanLetterDistribution reads a distribution in
// letter,quantity,value,vowel CSV form.
func ScanLetterDistribution(name string, data io.Reader) (*LetterDistribution, error) {
	r := csv.NewReader(data)
	ld := &LetterDistribution{
		Name:   name,
		counts: map[rune]int{},
		scores: map[rune]int{},
	}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != 4 {
			return nil, fmt.Errorf("expected 4 fields, got %d", len(record))
		}
		letters := []rune(strings.TrimSpace(record[0]))
		if len(letters) != 1 {
			return nil, fmt.Errorf("bad letter %q", record[0])
		}
		letter := letters[0]
		n, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, err
		}
		p, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, err
		}
		v, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, err
		}
		if _, dup := ld.counts[letter]; dup {
			return nil, fmt.Errorf("letter %c listed twice", letter)
		}
		if v == 1 {
			ld.Vowels = append(ld.Vowels, letter)
		}
		ld.letters = append(ld.letters, letter)
		ld.counts[letter] = n
		ld.scores[letter] = p
		ld.numLetters += n
	}
	return ld, nil
}

// EnglishLetterDistribution returns the English letter distribution.
func EnglishLetterDistribution() *LetterDistribution {
	englishOnce.Do(func() {
		ld, err := ScanLetterDistribution("english", strings.NewReader(englishDistribution))
		if err != nil {
			panic(err)
		}
		english = ld
	})
	return english
}

// Score gives the point value of a tile showing this letter. The blank
// is always worth its own value regardless of the letter it stands for.
func (ld *LetterDistribution) Score(letter rune) int {
	return ld.scores[letter]
}

// Count is the number of tiles of this letter in a full bag.
func (ld *LetterDistribution) Count(letter rune) int {
	return ld.counts[letter]
}

// Letters returns the distinct letters in distribution order.
func (ld *LetterDistribution) Letters() []rune {
	out := make([]rune, len(ld.letters))
	copy(out, ld.letters)
	return out
}

// NumTiles is the size of a full bag.
func (ld *LetterDistribution) NumTiles() int {
	return ld.numLetters
}

// HasLetter reports whether letter can appear on a non-blank tile.
func (ld *LetterDistribution) HasLetter(letter rune) bool {
	_, ok := ld.counts[letter]
	return ok && letter != BlankLetter
}

// MakeBag returns a full, shuffled bag of tiles.
func (ld *LetterDistribution) MakeBag(rng Randomizer) *Bag {
	b := NewBag(ld, rng)
	b.Shuffle()
	return b
}
