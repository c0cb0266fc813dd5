package filter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricofy/lyric-tokenizer/internal/morph"
)

func TestAccept(t *testing.T) {
	tests := []struct {
		name     string
		morpheme morph.Morpheme
		config   Config
		expected string
		kept     bool
	}{
		{
			name:     "noun kept by default list",
			morpheme: morph.Morpheme{Surface: "猫", BaseForm: "猫", POS: POSNoun},
			expected: "猫",
			kept:     true,
		},
		{
			name:     "particle dropped by default list",
			morpheme: morph.Morpheme{Surface: "は", BaseForm: "は", POS: POSParticle},
			kept:     false,
		},
		{
			name:     "verb uses dictionary form",
			morpheme: morph.Morpheme{Surface: "食べ", BaseForm: "食べる", POS: POSVerb},
			expected: "食べる",
			kept:     true,
		},
		{
			name:     "english verb tag uses dictionary form",
			morpheme: morph.Morpheme{Surface: "食べた", BaseForm: "食べる", POS: "verb"},
			config:   Config{KeepPOS: Disable()},
			expected: "食べる",
			kept:     true,
		},
		{
			name:     "adjective uses dictionary form",
			morpheme: morph.Morpheme{Surface: "美しく", BaseForm: "美しい", POS: POSAdjective},
			expected: "美しい",
			kept:     true,
		},
		{
			name:     "noun keeps surface form",
			morpheme: morph.Morpheme{Surface: "ネコ", BaseForm: "猫", POS: POSNoun},
			expected: "ネコ",
			kept:     true,
		},
		{
			name:     "exact allow-list",
			morpheme: morph.Morpheme{Surface: "猫", BaseForm: "猫", POS: "noun"},
			config:   Config{KeepPOS: Exactly("noun")},
			expected: "猫",
			kept:     true,
		},
		{
			name:     "exact allow-list rejects others",
			morpheme: morph.Morpheme{Surface: "は", BaseForm: "は", POS: "particle"},
			config:   Config{KeepPOS: Exactly("noun")},
			kept:     false,
		},
		{
			name:     "disabled allow-list keeps everything",
			morpheme: morph.Morpheme{Surface: "は", BaseForm: "は", POS: POSParticle},
			config:   Config{KeepPOS: Disable()},
			expected: "は",
			kept:     true,
		},
		{
			name:     "empty candidate dropped",
			morpheme: morph.Morpheme{Surface: "x", BaseForm: "", POS: POSVerb},
			kept:     false,
		},
		{
			name:     "ng word excluded",
			morpheme: morph.Morpheme{Surface: "これ", BaseForm: "これ", POS: POSNoun},
			config:   Config{NGWords: Exactly("これ")},
			kept:     false,
		},
		{
			name:     "ng word compared against dictionary form",
			morpheme: morph.Morpheme{Surface: "し", BaseForm: "する", POS: POSVerb},
			config:   Config{NGWords: Exactly("する", "いる")},
			kept:     false,
		},
		{
			name:     "no case folding",
			morpheme: morph.Morpheme{Surface: "Love", BaseForm: "Love", POS: POSNoun},
			config:   Config{NGWords: Exactly("love")},
			expected: "Love",
			kept:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, kept := Accept(tt.morpheme, tt.config)
			assert.Equal(t, tt.kept, kept)
			assert.Equal(t, tt.expected, token)
		})
	}
}

func TestDefaults(t *testing.T) {
	keep := DefaultKeepPOS()
	for _, pos := range []string{POSNoun, POSAdjective, POSVerb, POSPronoun, POSAdnominal} {
		assert.Contains(t, keep, pos)
	}
	assert.Len(t, keep, 5)
	assert.Empty(t, DefaultNGWords())

	// callers get copies
	delete(keep, POSNoun)
	assert.Contains(t, DefaultKeepPOS(), POSNoun)
}

func TestSelection_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     Kind
		resolved []string
	}{
		{name: "true selects default", input: `true`, kind: KindDefault, resolved: []string{"d"}},
		{name: "null selects default", input: `null`, kind: KindDefault, resolved: []string{"d"}},
		{name: "false disables", input: `false`, kind: KindDisabled},
		{name: "single string", input: `"名詞"`, kind: KindExactly, resolved: []string{"名詞"}},
		{name: "array", input: `["名詞","動詞"]`, kind: KindExactly, resolved: []string{"名詞", "動詞"}},
		{name: "empty array", input: `[]`, kind: KindExactly},
	}

	defaults := map[string]struct{}{"d": {}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Selection
			require.NoError(t, json.Unmarshal([]byte(tt.input), &s))
			assert.Equal(t, tt.kind, s.Kind())

			got := s.Resolve(defaults)
			assert.Len(t, got, len(tt.resolved))
			for _, v := range tt.resolved {
				assert.Contains(t, got, v)
			}
		})
	}
}

func TestSelection_UnmarshalJSON_Invalid(t *testing.T) {
	var s Selection
	require.Error(t, json.Unmarshal([]byte(`42`), &s))
}

func TestSelection_UnmarshalText(t *testing.T) {
	tests := []struct {
		input    string
		expected Selection
	}{
		{"", UseDefault()},
		{"default", UseDefault()},
		{"none", Disable()},
		{"FALSE", Disable()},
		{"名詞", Exactly("名詞")},
		{" 名詞 , 動詞 ,", Exactly("名詞", "動詞")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var s Selection
			require.NoError(t, s.UnmarshalText([]byte(tt.input)))
			assert.Equal(t, tt.expected, s)
		})
	}
}

func TestConfig_JSON(t *testing.T) {
	var cfg Config
	require.NoError(t, json.Unmarshal([]byte(`{"keepPos":"名詞","ngWords":["これ"]}`), &cfg))

	f := New(cfg)
	_, kept := f.Accept(morph.Morpheme{Surface: "これ", BaseForm: "これ", POS: POSNoun})
	assert.False(t, kept)
	_, kept = f.Accept(morph.Morpheme{Surface: "食べ", BaseForm: "食べる", POS: POSVerb})
	assert.False(t, kept)
	token, kept := f.Accept(morph.Morpheme{Surface: "空", BaseForm: "空", POS: POSNoun})
	assert.True(t, kept)
	assert.Equal(t, "空", token)

	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"keepPos":["名詞"],"ngWords":["これ"]}`, string(out))
}
