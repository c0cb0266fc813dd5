// Package chunker splits normalized text into analyzer-sized pieces on word boundaries.
package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxChars is the soft limit per chunk.
	DefaultMaxChars = 2000

	// DefaultHardMaxChars is the limit no chunk may exceed.
	// The analyzer must accept input up to this size.
	DefaultHardMaxChars = 4000

	// DefaultBatchChars bounds the characters sent in one remote analyzer call.
	// Analyzer responses are roughly 30 bytes per input character, which keeps
	// a batch well under the 6MB Lambda payload limit.
	DefaultBatchChars = 32000
)

// ErrInvalidLimits is returned when the soft limit exceeds the hard limit.
var ErrInvalidLimits = errors.New("invalid chunk limits")

// Len returns the length of s in characters.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Split splits text on whitespace runs into chunks of at most maxChars characters.
// Words are never broken unless a single word is longer than hardMaxChars, in
// which case it is cut into hardMaxChars-sized pieces. Chunks are returned in
// input order and joined with single spaces they reproduce the
// whitespace-collapsed text. Non-positive limits fall back to the defaults.
func Split(text string, maxChars, hardMaxChars int) ([]string, error) {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if hardMaxChars <= 0 {
		hardMaxChars = DefaultHardMaxChars
	}
	if maxChars > hardMaxChars {
		return nil, fmt.Errorf("%w: maxChars %d exceeds hardMaxChars %d", ErrInvalidLimits, maxChars, hardMaxChars)
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	var chunks []string
	var buf []string
	currentLength := 0

	for _, word := range words {
		wordLength := Len(word)
		addLength := wordLength
		if len(buf) > 0 {
			addLength++ // separator
		}

		// Flush before the soft limit is crossed
		if currentLength+addLength > maxChars && len(buf) > 0 {
			chunks = append(chunks, strings.Join(buf, " "))
			buf = []string{word}
			currentLength = wordLength
		} else {
			buf = append(buf, word)
			currentLength += addLength
		}

		// A word longer than the hard limit is cut in place
		for Len(buf[len(buf)-1]) > hardMaxChars {
			if len(buf) > 1 {
				chunks = append(chunks, strings.Join(buf[:len(buf)-1], " "))
				buf = buf[len(buf)-1:]
			}
			head, rest := cut(buf[0], hardMaxChars)
			chunks = append(chunks, head)
			buf = []string{rest}
			currentLength = joinedLength(buf)
		}

		// Safety valve: never let the buffer itself outgrow the hard limit
		if currentLength > hardMaxChars {
			taken, total := 0, 0
			for i, w := range buf {
				add := Len(w)
				if i > 0 {
					add++
				}
				if total+add > hardMaxChars {
					break
				}
				total += add
				taken++
			}
			if taken > 0 {
				chunks = append(chunks, strings.Join(buf[:taken], " "))
				buf = append([]string(nil), buf[taken:]...)
				currentLength = joinedLength(buf)
			}
		}
	}

	// Flush remaining buffer
	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, " "))
	}

	return chunks, nil
}

// Batch groups chunks into batches that don't exceed maxChars in total.
// Each chunk is kept whole. Returns a slice of batches, where each batch is a
// slice of chunks.
func Batch(chunks []string, maxChars int) [][]string {
	if len(chunks) == 0 {
		return nil
	}

	if maxChars <= 0 {
		maxChars = DefaultBatchChars
	}

	var batches [][]string
	var currentBatch []string
	currentChars := 0

	for _, chunk := range chunks {
		chunkChars := Len(chunk)

		// If a single chunk exceeds maxChars, it gets its own batch
		if chunkChars > maxChars {
			if len(currentBatch) > 0 {
				batches = append(batches, currentBatch)
				currentBatch = nil
				currentChars = 0
			}
			batches = append(batches, []string{chunk})
			continue
		}

		if currentChars+chunkChars > maxChars && len(currentBatch) > 0 {
			batches = append(batches, currentBatch)
			currentBatch = nil
			currentChars = 0
		}

		currentBatch = append(currentBatch, chunk)
		currentChars += chunkChars
	}

	if len(currentBatch) > 0 {
		batches = append(batches, currentBatch)
	}

	return batches
}

// cut splits s after n characters.
func cut(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}

func joinedLength(words []string) int {
	if len(words) == 0 {
		return 0
	}
	total := len(words) - 1
	for _, w := range words {
		total += Len(w)
	}
	return total
}
