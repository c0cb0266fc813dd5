package morph

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Analysis modes supported by Kagome.
const (
	ModeNormal   = "normal"
	ModeSearch   = "search"
	ModeExtended = "extended"
)

// whitespace tokens carry this secondary POS in the IPA dictionary
const posWhitespace = "空白"

// Kagome wraps the kagome tokenizer so callers don't depend on it directly.
type Kagome struct {
	kagome *tokenizer.Tokenizer
	mode   tokenizer.TokenizeMode
}

// NewKagome builds a Kagome analyzer over the IPA dictionary.
// Loading the dictionary is expensive; build once and reuse.
func NewKagome(mode string) (*Kagome, error) {
	m, err := parseMode(mode)
	if err != nil {
		return nil, err
	}
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("failed to create kagome tokenizer: %w", err)
	}
	return &Kagome{kagome: t, mode: m}, nil
}

var (
	defaultOnce     sync.Once
	defaultAnalyzer *Kagome
	defaultErr      error
)

// Default returns the process-wide Kagome analyzer, building it on first use.
func Default() (*Kagome, error) {
	defaultOnce.Do(func() {
		defaultAnalyzer, defaultErr = NewKagome(ModeNormal)
	})
	return defaultAnalyzer, defaultErr
}

// Analyze tokenizes text. A panic inside the tokenizer is returned as an error.
func (k *Kagome) Analyze(ctx context.Context, text string) (morphemes []Morpheme, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			morphemes = nil
			err = fmt.Errorf("%w: kagome panic: %v", ErrAnalysis, r)
		}
	}()

	tokens := k.kagome.Analyze(text, k.mode)
	morphemes = make([]Morpheme, 0, len(tokens))
	for _, token := range tokens {
		pos := token.POS()
		if len(pos) > 1 && pos[1] == posWhitespace {
			continue
		}
		m := Morpheme{Surface: token.Surface}
		if len(pos) > 0 {
			m.POS = pos[0]
		}
		m.BaseForm = baseForm(token)
		morphemes = append(morphemes, m)
	}
	return morphemes, nil
}

// baseForm falls back to the surface when the dictionary has no entry ("*").
func baseForm(token tokenizer.Token) string {
	base, ok := token.BaseForm()
	if !ok || base == "" || base == "*" {
		return token.Surface
	}
	return base
}

func parseMode(mode string) (tokenizer.TokenizeMode, error) {
	switch strings.ToLower(mode) {
	case "", ModeNormal:
		return tokenizer.Normal, nil
	case ModeSearch:
		return tokenizer.Search, nil
	case ModeExtended:
		return tokenizer.Extended, nil
	default:
		return tokenizer.Normal, fmt.Errorf("unknown analysis mode %q", mode)
	}
}
