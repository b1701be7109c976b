package intent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLexicon(t *testing.T) {
	lex := DefaultLexicon()
	require.NotNil(t, lex)
	assert.Same(t, lex, DefaultLexicon())
	assert.Equal(t, DefaultNegationWindow, lex.NegationWindow())

	def := lex.Def()
	assert.Len(t, def.Cues, len(DefaultLexiconDef().Cues))
	assert.Len(t, def.Idioms, len(defaultIdioms))

	// Def hands out a copy.
	def.Cues[0].Weight = 0.01
	assert.NotEqual(t, 0.01, lex.Def().Cues[0].Weight)
}

func TestNewLexicon_Invalid(t *testing.T) {
	tests := []struct {
		name string
		def  LexiconDef
	}{
		{"unknown intent", LexiconDef{Cues: []Cue{{Phrase: "meh", Intent: "bored", Weight: 0.5}}}},
		{"zero weight", LexiconDef{Cues: []Cue{{Phrase: "meh", Intent: Neutral, Weight: 0}}}},
		{"weight above one", LexiconDef{Cues: []Cue{{Phrase: "meh", Intent: Neutral, Weight: 1.5}}}},
		{"no words", LexiconDef{Cues: []Cue{{Phrase: "!!", Intent: Neutral, Weight: 0.5}}}},
		{"duplicate cue", LexiconDef{Cues: []Cue{
			{Phrase: "Great Job", Intent: Positive, Weight: 0.5},
			{Phrase: "great  job", Intent: Positive, Weight: 0.6},
		}}},
		{"bad idiom pattern", LexiconDef{Idioms: []Idiom{{Name: "x", Pattern: "(", Intent: Positive, Weight: 0.5}}}},
		{"unnamed idiom", LexiconDef{Idioms: []Idiom{{Pattern: "x", Intent: Positive, Weight: 0.5}}}},
		{"duplicate idiom", LexiconDef{Idioms: []Idiom{
			{Name: "x", Pattern: "a", Intent: Positive, Weight: 0.5},
			{Name: "x", Pattern: "b", Intent: Positive, Weight: 0.5},
		}}},
		{"multi-word negator", LexiconDef{Negators: []string{"by no means"}}},
		{"negative window", LexiconDef{NegationWindow: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLexicon(tt.def)
			assert.ErrorIs(t, err, ErrInvalidLexicon)
		})
	}
}

func TestLexiconDef_Merge(t *testing.T) {
	base := LexiconDef{
		Cues:           []Cue{{Phrase: "ok", Intent: Neutral, Weight: 0.4}},
		Idioms:         []Idiom{{Name: "finally", Pattern: `^finally`, Intent: Positive, Weight: 0.85}},
		Negators:       []string{"not"},
		NegationWindow: 3,
	}
	overlay := LexiconDef{
		Cues: []Cue{
			{Phrase: "OK", Intent: Positive, Weight: 0.6},
			{Phrase: "lgtm", Intent: Positive, Weight: 0.85},
		},
		Idioms:   []Idiom{{Name: "finally", Pattern: `finally`, Intent: Positive, Weight: 0.9}},
		Negators: []string{"not", "hardly"},
	}

	got := base.Merge(overlay)
	assert.Equal(t, []Cue{
		{Phrase: "OK", Intent: Positive, Weight: 0.6},
		{Phrase: "lgtm", Intent: Positive, Weight: 0.85},
	}, got.Cues)
	require.Len(t, got.Idioms, 1)
	assert.InDelta(t, 0.9, got.Idioms[0].Weight, 1e-9)
	assert.Equal(t, []string{"not", "hardly"}, got.Negators)
	assert.Equal(t, 3, got.NegationWindow)

	assert.Len(t, base.Cues, 1, "merge must not modify the receiver")
	assert.Equal(t, Neutral, base.Cues[0].Intent)
}

func writeLexiconFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lexicon.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadLexicon(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		lex, err := LoadLexicon("", 0)
		require.NoError(t, err)
		assert.Same(t, DefaultLexicon(), lex)
	})

	t.Run("overlay", func(t *testing.T) {
		path := writeLexiconFile(t, `
negators = ["hardly"]

[[cue]]
phrase = "lgtm"
intent = "positive"
weight = 0.85

[[cue]]
phrase = "ok"
intent = "neutral"
weight = 0.9

[[idiom]]
name = "ship-it"
pattern = '\bship it\b'
intent = "positive"
weight = 0.9
`)
		lex, err := LoadLexicon(path, 0)
		require.NoError(t, err)
		s := NewScorer(lex)

		assert.Equal(t, Score{Intent: Positive, Confidence: 0.85}, s.DetectIntent("LGTM"))
		assert.Equal(t, Score{Intent: Neutral, Confidence: 0.9}, s.DetectIntent("ok"))
		assert.Equal(t, Score{Intent: Positive, Confidence: 0.9}, s.DetectIntent("Ship it"))
		assert.Equal(t, Negative, s.DetectIntent("hardly helpful").Intent)
		assert.Equal(t, Negative, s.DetectIntent("That didn't work").Intent)
	})

	t.Run("window override", func(t *testing.T) {
		lex, err := LoadLexicon("", 6)
		require.NoError(t, err)
		assert.Equal(t, 6, lex.NegationWindow())
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := LoadLexicon(writeLexiconFile(t, "[[cue]]\nphrase = \"x\"\nintent = \"positive\"\nweight = 0.5\nboost = 2\n"), 0)
		assert.ErrorIs(t, err, ErrInvalidLexiconFile)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := LoadLexicon(writeLexiconFile(t, "[[cue]\nphrase ="), 0)
		assert.ErrorIs(t, err, ErrInvalidLexiconFile)
	})

	t.Run("invalid cue", func(t *testing.T) {
		_, err := LoadLexicon(writeLexiconFile(t, "[[cue]]\nphrase = \"x\"\nintent = \"smug\"\nweight = 0.5\n"), 0)
		assert.ErrorIs(t, err, ErrInvalidLexicon)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadLexicon(filepath.Join(t.TempDir(), "absent.toml"), 0)
		assert.ErrorIs(t, err, ErrInvalidLexiconFile)
	})
}
