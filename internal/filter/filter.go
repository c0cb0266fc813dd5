// Package filter decides which morphemes become output tokens.
package filter

import (
	"github.com/pricofy/lyric-tokenizer/internal/morph"
)

// Part-of-speech tags from the IPA dictionary.
const (
	POSNoun      = "名詞"
	POSAdjective = "形容詞"
	POSVerb      = "動詞"
	POSPronoun   = "代名詞"
	POSAdnominal = "連体詞"
	POSParticle  = "助詞"
)

var (
	defaultKeepPOS = map[string]struct{}{
		POSNoun:      {},
		POSAdjective: {},
		POSVerb:      {},
		POSPronoun:   {},
		POSAdnominal: {},
	}

	// No NG words by default: noise characters are removed before analysis.
	defaultNGWords = map[string]struct{}{}

	// Inflecting parts of speech are emitted in dictionary form.
	inflectingPOS = map[string]struct{}{
		POSVerb:      {},
		POSAdjective: {},
		"verb":       {},
		"adjective":  {},
	}
)

// DefaultKeepPOS returns a copy of the default part-of-speech allow-list.
func DefaultKeepPOS() map[string]struct{} {
	return UseDefault().Resolve(defaultKeepPOS)
}

// DefaultNGWords returns a copy of the default NG-word set.
func DefaultNGWords() map[string]struct{} {
	return UseDefault().Resolve(defaultNGWords)
}

// Config selects the allow-list and the NG words.
// The zero value keeps the default part-of-speech list and excludes no words.
type Config struct {
	KeepPOS Selection `json:"keepPos"`
	NGWords Selection `json:"ngWords"`
}

// Filter is a Config resolved into plain sets. It is read-only and safe for
// concurrent use.
type Filter struct {
	keepPOS map[string]struct{}
	ngWords map[string]struct{}
}

// New resolves cfg.
func New(cfg Config) *Filter {
	return &Filter{
		keepPOS: cfg.KeepPOS.Resolve(defaultKeepPOS),
		ngWords: cfg.NGWords.Resolve(defaultNGWords),
	}
}

// Accept returns the token for m and whether it is kept.
// Verbs and adjectives yield their dictionary form, everything else its surface.
// The token is not case-folded or trimmed.
func (f *Filter) Accept(m morph.Morpheme) (string, bool) {
	if len(f.keepPOS) > 0 {
		if _, ok := f.keepPOS[m.POS]; !ok {
			return "", false
		}
	}

	token := m.Surface
	if _, ok := inflectingPOS[m.POS]; ok {
		token = m.BaseForm
	}
	if token == "" {
		return "", false
	}

	if len(f.ngWords) > 0 {
		if _, ok := f.ngWords[token]; ok {
			return "", false
		}
	}
	return token, true
}

// Accept resolves cfg and applies it to a single morpheme.
func Accept(m morph.Morpheme, cfg Config) (string, bool) {
	return New(cfg).Accept(m)
}
