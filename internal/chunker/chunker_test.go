package chunker

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLen(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{name: "empty string", text: "", expected: 0},
		{name: "ascii", text: "love song", expected: 9},
		{name: "japanese counts characters not bytes", text: "桜の花", expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Len(tt.text))
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		hardMax  int
		expected []string
	}{
		{
			name:     "empty input",
			text:     "",
			maxChars: 10,
			hardMax:  20,
			expected: nil,
		},
		{
			name:     "whitespace only",
			text:     " \t\n ",
			maxChars: 10,
			hardMax:  20,
			expected: nil,
		},
		{
			name:     "single chunk",
			text:     "aa bb cc",
			maxChars: 10,
			hardMax:  20,
			expected: []string{"aa bb cc"},
		},
		{
			name:     "whitespace runs collapse",
			text:     "  aa \n\n bb\t cc  ",
			maxChars: 10,
			hardMax:  20,
			expected: []string{"aa bb cc"},
		},
		{
			name:     "flush at soft limit",
			text:     "aaaa bbbb cccc",
			maxChars: 9,
			hardMax:  20,
			expected: []string{"aaaa bbbb", "cccc"},
		},
		{
			name:     "separator counts toward soft limit",
			text:     "aaaa bbbbb",
			maxChars: 9,
			hardMax:  20,
			expected: []string{"aaaa", "bbbbb"},
		},
		{
			name:     "word over soft limit stays whole",
			text:     "a bbbbbbbbbbbbbbb c",
			maxChars: 5,
			hardMax:  20,
			expected: []string{"a", "bbbbbbbbbbbbbbb", "c"},
		},
		{
			name:     "word over hard limit is cut",
			text:     "a " + strings.Repeat("x", 25) + " b",
			maxChars: 5,
			hardMax:  10,
			expected: []string{"a", "xxxxxxxxxx", "xxxxxxxxxx", "xxxxx", "b"},
		},
		{
			name:     "multibyte words are cut by character",
			text:     strings.Repeat("あ", 7),
			maxChars: 2,
			hardMax:  3,
			expected: []string{"あああ", "あああ", "あ"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split(tt.text, tt.maxChars, tt.hardMax)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, chunks)
		})
	}
}

func TestSplit_ExactHardLimitWord(t *testing.T) {
	word := strings.Repeat("z", DefaultHardMaxChars)

	chunks, err := Split(word, DefaultMaxChars, DefaultHardMaxChars)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, word, chunks[0])
}

func TestSplit_OneOverHardLimitWord(t *testing.T) {
	word := strings.Repeat("z", DefaultHardMaxChars) + "y"

	chunks, err := Split(word, DefaultMaxChars, DefaultHardMaxChars)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("z", DefaultHardMaxChars), chunks[0])
	assert.Equal(t, "y", chunks[1])
}

func TestSplit_DefaultLimits(t *testing.T) {
	chunks, err := Split("test", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"test"}, chunks)
}

func TestSplit_InvalidLimits(t *testing.T) {
	_, err := Split("test", 11, 10)
	require.ErrorIs(t, err, ErrInvalidLimits)
}

func TestSplit_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("abcあいう漢字ｱ")
	spaces := []string{" ", "  ", "\t", "\n", "　"}

	for i := 0; i < 200; i++ {
		var sb strings.Builder
		words := rng.Intn(40)
		for w := 0; w < words; w++ {
			if w > 0 || rng.Intn(2) == 0 {
				sb.WriteString(spaces[rng.Intn(len(spaces))])
			}
			n := 1 + rng.Intn(30)
			if rng.Intn(10) == 0 {
				n = 30 + rng.Intn(80)
			}
			for c := 0; c < n; c++ {
				sb.WriteRune(alphabet[rng.Intn(len(alphabet))])
			}
		}
		text := sb.String()
		maxChars := 1 + rng.Intn(40)
		hardMax := maxChars + rng.Intn(40)

		chunks, err := Split(text, maxChars, hardMax)
		require.NoError(t, err)

		for _, c := range chunks {
			assert.NotEmpty(t, c)
			assert.LessOrEqual(t, Len(c), hardMax, "chunk %q over hard limit %d", c, hardMax)
		}

		// Joining chunks must give back the collapsed text, except where an
		// over-long word was cut (those pieces are rejoined without a space).
		collapsed := strings.Join(strings.Fields(text), "")
		joined := strings.ReplaceAll(strings.Join(chunks, " "), " ", "")
		assert.Equal(t, collapsed, joined)
	}
}

func TestSplit_ReconstructsCollapsedText(t *testing.T) {
	text := "夜空に　光る  星の\n数だけ 願いを\t込めて"

	chunks, err := Split(text, 6, 12)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(chunks, " "))
	for _, c := range chunks {
		assert.LessOrEqual(t, Len(c), 6)
	}
}

func TestBatch(t *testing.T) {
	tests := []struct {
		name            string
		chunks          []string
		maxChars        int
		expectedBatches int
	}{
		{
			name:            "empty input",
			chunks:          []string{},
			maxChars:        100,
			expectedBatches: 0,
		},
		{
			name:            "nil input",
			chunks:          nil,
			maxChars:        100,
			expectedBatches: 0,
		},
		{
			name:            "single chunk fits",
			chunks:          []string{"Hello world"},
			maxChars:        100,
			expectedBatches: 1,
		},
		{
			name:            "multiple chunks fit in one batch",
			chunks:          []string{"Hello", "World", "Test"},
			maxChars:        100,
			expectedBatches: 1,
		},
		{
			name: "chunks split into multiple batches",
			chunks: []string{
				strings.Repeat("a", 10),
				strings.Repeat("b", 10),
				strings.Repeat("c", 10),
			},
			maxChars:        15,
			expectedBatches: 3,
		},
		{
			name: "each chunk in own batch",
			chunks: []string{
				strings.Repeat("a", 10),
				strings.Repeat("b", 10),
			},
			maxChars:        10,
			expectedBatches: 2,
		},
		{
			name: "oversized chunk gets own batch",
			chunks: []string{
				"small",
				strings.Repeat("x", 50),
				"another",
			},
			maxChars:        20,
			expectedBatches: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := Batch(tt.chunks, tt.maxChars)
			assert.Len(t, batches, tt.expectedBatches)

			var all []string
			for _, b := range batches {
				all = append(all, b...)
			}
			assert.Equal(t, len(tt.chunks), len(all), "Batch() lost chunks")
			for i, c := range tt.chunks {
				if i < len(all) {
					assert.Equal(t, c, all[i])
				}
			}
		})
	}
}

func TestBatch_DefaultMaxChars(t *testing.T) {
	batches := Batch([]string{"test"}, 0)
	assert.Len(t, batches, 1)
}
