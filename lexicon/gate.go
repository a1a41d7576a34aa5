package lexicon

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/wordroom/cache"
	"github.com/domino14/wordroom/tilemapping"
)

// singleLetterWords are the only one-letter words.
var singleLetterWords = map[string]bool{"A": true, "I": true}

// Gate is the word-legality oracle used by every room. It is safe for
// concurrent use once built.
type Gate struct {
	common        Lexicon
	variants      map[Variant]Lexicon
	remote        Oracle
	remoteTimeout time.Duration
	verdicts      *cache.Sharded[bool]
	parallel      int
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithRemote sets the fallback oracle and the bound on each lookup.
func WithRemote(o Oracle, timeout time.Duration) GateOption {
	return func(g *Gate) {
		g.remote = o
		g.remoteTimeout = timeout
	}
}

// WithWordlists adds extra words to the built-in variant lists.
func WithWordlists(wl Wordlists) GateOption {
	return func(g *Gate) {
		for v, words := range wl {
			if ws, ok := g.variants[v].(*WordSet); ok {
				ws.Add(words...)
			}
		}
	}
}

// WithLexicon replaces the wordlist for one variant.
func WithLexicon(v Variant, lex Lexicon) GateOption {
	return func(g *Gate) {
		g.variants[v] = lex
	}
}

// WithCacheSize bounds how many remote verdicts are remembered.
func WithCacheSize(n int) GateOption {
	return func(g *Gate) {
		g.verdicts = cache.NewSharded[bool](n)
	}
}

// NewGate builds a gate with the built-in lists for every variant and no
// remote oracle.
func NewGate(opts ...GateOption) *Gate {
	g := &Gate{
		common:        CommonWords(),
		variants:      map[Variant]Lexicon{},
		remoteTimeout: 2 * time.Second,
		verdicts:      cache.NewSharded[bool](4096),
		parallel:      4,
	}
	for _, v := range Variants {
		g.variants[v] = LocalDictionary(v)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsValid reports whether word is playable in variant v. It never returns
// true on doubt: a failing remote lookup makes the word invalid.
func (g *Gate) IsValid(ctx context.Context, v Variant, word string) bool {
	w := tilemapping.NormalizeLetters(word)
	switch len([]rune(w)) {
	case 0:
		return false
	case 1:
		return singleLetterWords[w]
	}
	if g.common.HasWord(w) {
		return true
	}
	if lex, ok := g.variants[v]; ok && lex.HasWord(w) {
		return true
	}
	if g.remote == nil {
		return false
	}

	valid, err := g.verdicts.Load(w, func(string) (bool, error) {
		lctx, cancel := context.WithTimeout(ctx, g.remoteTimeout)
		defer cancel()
		return g.remote.Lookup(lctx, w)
	})
	if err != nil {
		log.Warn().Err(err).Str("word", w).Str("variant", string(v)).Msg("dictionary-remote-failed")
		return false
	}
	return valid
}

// Check returns the validity of each word, in order. Lookups that go
// remote run in parallel.
func (g *Gate) Check(ctx context.Context, v Variant, words []string) []bool {
	out := make([]bool, len(words))
	eg := errgroup.Group{}
	eg.SetLimit(g.parallel)
	for i, w := range words {
		eg.Go(func() error {
			out[i] = g.IsValid(ctx, v, w)
			return nil
		})
	}
	// IsValid never fails; the group only bounds concurrency.
	_ = eg.Wait()
	return out
}

// InvalidWords returns the words that are not playable, in order.
func (g *Gate) InvalidWords(ctx context.Context, v Variant, words []string) []string {
	var bad []string
	for i, ok := range g.Check(ctx, v, words) {
		if !ok {
			bad = append(bad, words[i])
		}
	}
	return bad
}
