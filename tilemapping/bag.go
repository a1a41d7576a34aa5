package tilemapping

import (
	"fmt"

	"lukechampine.com/frand"
)

// Randomizer is the source of randomness used for shuffling. Both
// *frand.RNG and *math/rand.Rand satisfy it.
type Randomizer interface {
	Intn(n int) int
}

type frandSource struct{}

func (frandSource) Intn(n int) int {
	return frand.Intn(n)
}

// A Bag is the bag o'tiles! Draws come off the front.
type Bag struct {
	tiles              []Tile
	initialNumTiles    int
	letterDistribution *LetterDistribution
	rng                Randomizer
}

// NewBag creates an unshuffled bag holding the full distribution, in
// distribution order. A nil rng uses a cryptographically seeded source.
func NewBag(ld *LetterDistribution, rng Randomizer) *Bag {
	if rng == nil {
		rng = frandSource{}
	}
	tiles := make([]Tile, 0, ld.NumTiles())
	id := 0
	for _, letter := range ld.letters {
		for i := 0; i < ld.counts[letter]; i++ {
			tiles = append(tiles, Tile{ID: id, Letter: letter, Value: ld.scores[letter]})
			id++
		}
	}
	return &Bag{
		tiles:              tiles,
		initialNumTiles:    len(tiles),
		letterDistribution: ld,
		rng:                rng,
	}
}

// Shuffle performs a Fisher-Yates shuffle of the remaining tiles.
func (b *Bag) Shuffle() {
	for i := len(b.tiles) - 1; i > 0; i-- {
		j := b.rng.Intn(i + 1)
		b.tiles[i], b.tiles[j] = b.tiles[j], b.tiles[i]
	}
}

// Draw removes and returns up to n tiles from the front of the bag. It
// returns fewer if the bag runs out, and even no tiles at all :o
func (b *Bag) Draw(n int) []Tile {
	if n <= 0 {
		return nil
	}
	if n > len(b.tiles) {
		n = len(b.tiles)
	}
	drawn := make([]Tile, n)
	copy(drawn, b.tiles[:n])
	b.tiles = b.tiles[n:]
	return drawn
}

// DealInitialRacks draws RackSize tiles for each player, player 0 first.
func (b *Bag) DealInitialRacks(playerCount int) []*Rack {
	racks := make([]*Rack, playerCount)
	for i := 0; i < playerCount; i++ {
		racks[i] = NewRack(b.Draw(RackSize))
	}
	return racks
}

// PutBack returns tiles to the bag and reshuffles.
func (b *Bag) PutBack(tiles []Tile) {
	if len(tiles) == 0 {
		return
	}
	b.tiles = append(b.tiles, tiles...)
	b.Shuffle()
}

// Exchange draws replacements first, then puts the given tiles back, so a
// player never draws back what they threw in.
func (b *Bag) Exchange(tiles []Tile) ([]Tile, error) {
	if len(tiles) > len(b.tiles) {
		return nil, fmt.Errorf("tried to exchange %v tiles, tile bag has %v",
			len(tiles), len(b.tiles))
	}
	drawn := b.Draw(len(tiles))
	b.PutBack(tiles)
	return drawn, nil
}

// Remove takes one tile per letter out of the bag, wherever it sits.
// Either every letter is found or the bag is left untouched.
func (b *Bag) Remove(letters []rune) ([]Tile, error) {
	rest := make([]Tile, len(b.tiles))
	copy(rest, b.tiles)
	taken := make([]Tile, 0, len(letters))
	for _, l := range letters {
		idx := -1
		for i, t := range rest {
			if t.Letter == l {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("tile %c not in bag", l)
		}
		taken = append(taken, rest[idx])
		rest = append(rest[:idx], rest[idx+1:]...)
	}
	b.tiles = rest
	return taken, nil
}

func (b *Bag) TilesRemaining() int {
	return len(b.tiles)
}

// InitialNumTiles is how many tiles the bag was created with.
func (b *Bag) InitialNumTiles() int {
	return b.initialNumTiles
}

// Peek returns a copy of the remaining tiles in draw order.
func (b *Bag) Peek() []Tile {
	ret := make([]Tile, len(b.tiles))
	copy(ret, b.tiles)
	return ret
}

func (b *Bag) LetterDistribution() *LetterDistribution {
	return b.letterDistribution
}

// Copy returns a deep copy sharing the same random source.
func (b *Bag) Copy() *Bag {
	return &Bag{
		tiles:              b.Peek(),
		initialNumTiles:    b.initialNumTiles,
		letterDistribution: b.letterDistribution,
		rng:                b.rng,
	}
}
