package lexicon

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/domino14/wordroom/tilemapping"
)

// WordSet is an in-memory Lexicon.
type WordSet struct {
	name  string
	words map[string]struct{}
}

// NewWordSet builds a set from words, normalising each one.
func NewWordSet(name string, words ...string) *WordSet {
	ws := &WordSet{name: name, words: make(map[string]struct{}, len(words))}
	ws.Add(words...)
	return ws
}

func (ws *WordSet) Name() string {
	return ws.name
}

func (ws *WordSet) HasWord(word string) bool {
	_, ok := ws.words[word]
	return ok
}

// Add inserts words. It must not be called once the set is shared.
func (ws *WordSet) Add(words ...string) {
	for _, w := range words {
		if n := tilemapping.NormalizeLetters(w); n != "" {
			ws.words[n] = struct{}{}
		}
	}
}

func (ws *WordSet) Len() int {
	return len(ws.words)
}

// commonWords are accepted in every variant without further lookup.
var commonWords = []string{
	"A", "I", "IN", "ON", "AT", "TO", "BE", "IS", "IT", "OF", "AND", "OR",
	"THE", "FOR", "YOU", "THEY", "WE", "HE", "SHE", "ME", "MY", "BY", "UP",
	"GO", "DO", "NO", "SO", "IF", "AS", "AN", "ALL", "BUT", "CAT", "DOG",
	"SUN", "RUN", "FUN", "HAT", "BAT", "RAT", "SAT", "MAT", "FAT", "VAN",
	"MAN", "CAN", "FAN", "PAN", "TAN", "WAS", "HAD", "HAS", "HIS", "HER",
	"HIM", "HOW", "NOW", "NEW", "WHO", "WHY", "WAY", "DAY", "SAY", "MAY",
	"PAY", "LAY", "RAY", "BAY", "GAY", "HAY", "NAY", "PLAY", "STAY", "GRAY",
	"PRAY", "TRAY", "CLAY", "SLAY", "SPRAY", "STRAY", "TIME", "GAME", "WORD",
	"SCORE", "BOARD", "TILES", "RACK", "TURN",
}

var baseWords = []string{
	"A", "I", "AN", "AND", "THE", "TO", "IN", "ON", "AT", "OF", "IS", "IT",
	"CAT", "DOG", "WORD", "WORDS", "GAME", "PLAY", "SCRABBLE",
}

var variantExtras = map[Variant][]string{
	VariantSOWPODS: {"COLOUR"},
}

// CommonWords returns the shared quick-accept set.
func CommonWords() *WordSet {
	return NewWordSet("common", commonWords...)
}

// LocalDictionary returns the built-in wordlist for v.
func LocalDictionary(v Variant) *WordSet {
	ws := NewWordSet(string(v), baseWords...)
	ws.Add(variantExtras[v]...)
	return ws
}

// Wordlists maps a variant to extra words, as read from a YAML file of
// the form:
//
//	TWL: [QI, ZA]
//	SOWPODS: [COLOUR, FLAVOUR]
type Wordlists map[Variant][]string

// LoadWordlistFile reads extra words per variant from a YAML file.
func LoadWordlistFile(path string) (Wordlists, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	raw := map[string][]string{}
	if err := yaml.NewDecoder(f).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing wordlist %s: %w", path, err)
	}
	wl := Wordlists{}
	for k, words := range raw {
		v, err := ParseVariant(k)
		if err != nil {
			return nil, fmt.Errorf("wordlist %s: %w", path, err)
		}
		wl[v] = append(wl[v], words...)
	}
	return wl, nil
}
