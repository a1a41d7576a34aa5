// Package lexicon decides whether words are playable. A Gate consults a
// small common-word set, then the local wordlist for the room's variant,
// then an optional remote oracle.
package lexicon

import (
	"fmt"
	"strings"
)

// Lexicon is anything that can answer whether a normalised (upper-case)
// word is in it.
type Lexicon interface {
	Name() string
	HasWord(word string) bool
}

// AcceptAll accepts every word. Useful for practice rooms and tests.
type AcceptAll struct{}

func (lex AcceptAll) Name() string {
	return "AcceptAll"
}

func (lex AcceptAll) HasWord(word string) bool {
	return true
}

// Variant selects one of the curated wordlists.
type Variant string

const (
	VariantTWL     Variant = "TWL"
	VariantSOWPODS Variant = "SOWPODS"
	VariantENABLE  Variant = "ENABLE"
)

// Variants lists the known variants in A, B, C order.
var Variants = []Variant{VariantTWL, VariantSOWPODS, VariantENABLE}

// ParseVariant accepts either a variant name or its letter (A, B or C).
func ParseVariant(s string) (Variant, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A", string(VariantTWL):
		return VariantTWL, nil
	case "B", string(VariantSOWPODS):
		return VariantSOWPODS, nil
	case "C", string(VariantENABLE):
		return VariantENABLE, nil
	}
	return "", fmt.Errorf("unknown dictionary variant %q", s)
}
