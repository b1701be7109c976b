package intent

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		phrase string
		want   Intent
		conf   float64
	}{
		{"That didn't work", Negative, 0.6},
		{"That didn’t work", Negative, 0.6},
		{"Problem solved", Positive, 0.95},
		{"Finally!", Positive, 0.85},
		{"Finally, the build is green", Positive, 0.85},
		{"", Neutral, 0.3},
		{"Perfect! That worked beautifully", Positive, 1.0},
		{"ok let's move on to the next thing", Positive, 0.8},
		{"good, what's next", Positive, 0.85},
		{"I see how it works now", Positive, 0.9},
		{"Still getting the same error", Negative, 0.95},
		{"No, that's not right", Negative, 0.6},
		{"Try something else", Negative, 0.8},
		{"Ok", Neutral, 0.4},
		{"Let me check", Neutral, 0.5},
		{"Hold on", Neutral, 0.5},
		{"Whatever", Neutral, 0.35},
		{"Let me try that", Neutral, 0.5},
		{"Can you help me fix the login bug?", Neutral, 0.3},
		{"Oh wait, it's working now! I just had to refresh", Positive, 0.85},
		{"Thanks", Positive, 0.7},
		{"no problem", Positive, 0.6},
		{"it's not bad", Positive, 0.6},
		{"no luck", Negative, 0.75},
		{"still failing", Negative, 0.85},
	}

	s := NewScorer(nil)
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			got := s.DetectIntent(tt.phrase)
			assert.Equal(t, tt.want, got.Intent)
			assert.InDelta(t, tt.conf, got.Confidence, 1e-9)
		})
	}
}

func TestDetectIntent_Contradiction(t *testing.T) {
	got := NewScorer(nil).DetectIntent("great but wrong")
	assert.Equal(t, Score{Intent: Neutral, Confidence: 0}, got)
}

func TestDetectIntent_OpposingEvidenceLowersConfidence(t *testing.T) {
	s := NewScorer(nil)
	clean := s.DetectIntent("perfect")
	mixed := s.DetectIntent("perfect, one error left")

	assert.Equal(t, Positive, mixed.Intent)
	assert.Less(t, mixed.Confidence, clean.Confidence)
}

func TestDetectIntent_Binary(t *testing.T) {
	got := NewScorer(nil).DetectIntent("\x00\xff\xfe\x01garbage\x7f")
	assert.Equal(t, Score{Intent: Neutral, Confidence: NoEvidenceConfidence}, got)
}

func TestNegationWindow(t *testing.T) {
	s := NewScorer(nil)

	t.Run("within window", func(t *testing.T) {
		assert.Equal(t, Negative, s.DetectIntent("not really that good").Intent)
	})

	t.Run("beyond window", func(t *testing.T) {
		assert.Equal(t, Positive, s.DetectIntent("not really at all that good").Intent)
	})

	t.Run("clause bounded", func(t *testing.T) {
		got := s.DetectIntent("not now, good")
		assert.Equal(t, Positive, got.Intent)
		assert.InDelta(t, 0.5, got.Confidence, 1e-9)
	})

	t.Run("wider window", func(t *testing.T) {
		def := DefaultLexiconDef()
		def.NegationWindow = 5
		lex, err := NewLexicon(def)
		require.NoError(t, err)
		assert.Equal(t, Negative, NewScorer(lex).DetectIntent("not really at all that good").Intent)
	})

	t.Run("disabled", func(t *testing.T) {
		def := DefaultLexiconDef()
		def.NegationWindow = 0
		lex, err := NewLexicon(def)
		require.NoError(t, err)
		assert.Equal(t, Positive, NewScorer(lex).DetectIntent("didn't work").Intent)
	})

	t.Run("negator is not also a cue", func(t *testing.T) {
		d := s.Analyze("no good")
		require.Len(t, d.Hits, 1)
		assert.Equal(t, Hit{Phrase: "good", Intent: Negative, Weight: 0.5, Negated: true}, d.Hits[0])
	})

	t.Run("neutral cues are not inverted", func(t *testing.T) {
		got := s.DetectIntent("not sure")
		assert.Equal(t, Neutral, got.Intent)
		assert.InDelta(t, 0.4, got.Confidence, 1e-9)
	})
}

func TestAnalyze_Hits(t *testing.T) {
	s := NewScorer(nil)

	d := s.Analyze("That didn't work")
	assert.Equal(t, Score{Intent: Negative, Confidence: 0.6}, d.Score)
	assert.Equal(t, []Hit{{Phrase: "work", Intent: Negative, Weight: 0.6, Negated: true}}, d.Hits)

	d = s.Analyze("No problem, thanks")
	require.Len(t, d.Hits, 2)
	assert.Equal(t, Hit{Phrase: "no problem", Intent: Positive, Weight: 0.6, Idiom: true}, d.Hits[0])
	assert.Equal(t, "thanks", d.Hits[1].Phrase)

	d = s.Analyze("")
	assert.Empty(t, d.Hits)
	assert.NotNil(t, d.Hits)
}

func TestAnalyze_LongestCueWins(t *testing.T) {
	d := NewScorer(nil).Analyze("problem solved")
	require.Len(t, d.Hits, 1)
	assert.Equal(t, "problem solved", d.Hits[0].Phrase)

	// Cues never span a clause break.
	d = NewScorer(nil).Analyze("problem. solved")
	require.Len(t, d.Hits, 2)
	assert.Equal(t, "problem", d.Hits[0].Phrase)
	assert.Equal(t, "solved", d.Hits[1].Phrase)
}

func TestScorer_Concurrent(t *testing.T) {
	s := NewScorer(nil)
	phrases := []string{"That didn't work", "Problem solved", "Finally!", "ok"}
	want := make([]Score, len(phrases))
	for i, p := range phrases {
		want[i] = s.DetectIntent(p)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, p := range phrases {
				assert.Equal(t, want[i], s.DetectIntent(p))
			}
		}()
	}
	wg.Wait()
}
