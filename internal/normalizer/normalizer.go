// Package normalizer folds lyric text into the form the chunker and analyzer expect.
package normalizer

import (
	"errors"
	"fmt"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultNoiseChars are deleted from lyrics before chunking.
// Brackets and sentence marks carry no lexical content and confuse word splitting.
const DefaultNoiseChars = "?？「」.-！!(（)）…・"

// ErrNormalization is returned when the underlying transform rejects the input.
var ErrNormalization = errors.New("normalization failed")

// Normalizer applies NFKC and deletes a fixed set of noise characters.
// Whitespace is left in place; NFKC folds the ideographic space to U+0020.
// A Normalizer is safe for concurrent use.
type Normalizer struct {
	noise map[rune]struct{}
}

// New creates a Normalizer that deletes every rune in noise.
func New(noise string) *Normalizer {
	set := make(map[rune]struct{}, len(noise))
	for _, r := range noise {
		set[r] = struct{}{}
	}
	return &Normalizer{noise: set}
}

var defaultNormalizer = New(DefaultNoiseChars)

// Default returns the Normalizer configured with DefaultNoiseChars.
func Default() *Normalizer {
	return defaultNormalizer
}

// Normalize runs the default Normalizer.
func Normalize(text string) (string, error) {
	return defaultNormalizer.Normalize(text)
}

// Normalize folds text to NFKC and removes noise characters.
// Deleting a character can leave a sequence that composes differently,
// so NFKC runs again after removal and the result is stable under re-normalization.
func (n *Normalizer) Normalize(text string) (string, error) {
	if text == "" {
		return "", nil
	}

	// transform.Chain keeps state, build one per call
	t := transform.Chain(norm.NFKC, runes.Remove(runes.Predicate(n.isNoise)), norm.NFKC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNormalization, err)
	}
	return out, nil
}

func (n *Normalizer) isNoise(r rune) bool {
	_, ok := n.noise[r]
	return ok
}
