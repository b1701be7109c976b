package intent

import (
	"math"
	"strings"
)

const (
	// NoEvidenceConfidence is returned with Neutral when no cue matches.
	NoEvidenceConfidence = 0.3

	corroborationStep = 0.1
	tieEpsilon        = 1e-9
)

// Scorer classifies single utterances against a Lexicon. It is safe for
// concurrent use.
type Scorer struct {
	lex *Lexicon
}

// NewScorer returns a Scorer for lex, or for DefaultLexicon when lex is nil.
func NewScorer(lex *Lexicon) *Scorer {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Scorer{lex: lex}
}

// Lexicon returns the lexicon the scorer uses.
func (s *Scorer) Lexicon() *Lexicon {
	return s.lex
}

// DetectIntent returns the intent of phrase and a confidence in [0, 1].
func (s *Scorer) DetectIntent(phrase string) Score {
	return s.Analyze(phrase).Score
}

// Analyze is DetectIntent with the matched cues and idioms attached.
func (s *Scorer) Analyze(phrase string) Detail {
	hits := s.hits(phrase)
	return Detail{Score: score(hits), Hits: hits}
}

func (s *Scorer) hits(phrase string) []Hit {
	text := normalize(phrase)
	toks := tokenize(text)
	masked := make([]bool, len(toks))
	hits := make([]Hit, 0, 4)

	for _, ci := range s.lex.idioms {
		for _, loc := range ci.re.FindAllStringIndex(text, -1) {
			first, last := -1, -1
			for i, t := range toks {
				if t.start < loc[1] && t.end > loc[0] {
					if first < 0 {
						first = i
					}
					last = i
				}
			}
			if first >= 0 && anyMasked(masked[first:last+1]) {
				continue
			}
			hit := Hit{
				Phrase: strings.TrimSpace(text[loc[0]:loc[1]]),
				Intent: ci.idiom.Intent,
				Weight: ci.idiom.Weight,
				Idiom:  true,
			}
			if first >= 0 {
				for i := first; i <= last; i++ {
					masked[i] = true
				}
				if hit.Intent != Neutral && s.negatorBefore(toks, masked, first) >= 0 {
					hit.Intent = hit.Intent.invert()
					hit.Negated = true
				}
			}
			hits = append(hits, hit)
		}
	}

	type cueHit struct {
		hit   Hit
		start int
	}
	var cueHits []cueHit
	negatorUsed := make(map[int]bool)

	for i := 0; i < len(toks); {
		if masked[i] {
			i++
			continue
		}
		cc, ok := s.longestCue(toks, masked, i)
		if !ok {
			i++
			continue
		}
		hit := Hit{Phrase: strings.Join(cc.words, " "), Intent: cc.cue.Intent, Weight: cc.cue.Weight}
		if hit.Intent != Neutral {
			if j := s.negatorBefore(toks, masked, i); j >= 0 {
				hit.Intent = hit.Intent.invert()
				hit.Negated = true
				negatorUsed[j] = true
			}
		}
		cueHits = append(cueHits, cueHit{hit: hit, start: i})
		i += len(cc.words)
	}

	// A negator that flipped another cue does not also count as a cue.
	for _, ch := range cueHits {
		if negatorUsed[ch.start] {
			continue
		}
		hits = append(hits, ch.hit)
	}
	return hits
}

// longestCue finds the longest cue starting at token i whose words are all
// unmasked and in the same clause.
func (s *Scorer) longestCue(toks []token, masked []bool, i int) (compiledCue, bool) {
	for _, cc := range s.lex.cues[toks[i].text] {
		n := len(cc.words)
		if i+n > len(toks) {
			continue
		}
		ok := true
		for k := 0; k < n; k++ {
			t := toks[i+k]
			if masked[i+k] || t.text != cc.words[k] || t.clause != toks[i].clause {
				ok = false
				break
			}
		}
		if ok {
			return cc, true
		}
	}
	return compiledCue{}, false
}

// negatorBefore returns the index of the nearest negator within the
// negation window before token i in the same clause, or -1.
func (s *Scorer) negatorBefore(toks []token, masked []bool, i int) int {
	for j := i - 1; j >= 0 && j >= i-s.lex.window; j-- {
		if toks[j].clause != toks[i].clause {
			break
		}
		if !masked[j] && s.lex.isNegator(toks[j].text) {
			return j
		}
	}
	return -1
}

func anyMasked(m []bool) bool {
	for _, v := range m {
		if v {
			return true
		}
	}
	return false
}

type tally struct {
	sum  float64
	max  float64
	hits int
}

// score folds hits into a single Score. Confidence starts at the strongest
// winning cue, grows with each corroborating cue, and is discounted by the
// weight of opposing evidence.
func score(hits []Hit) Score {
	if len(hits) == 0 {
		return Score{Intent: Neutral, Confidence: NoEvidenceConfidence}
	}

	t := map[Intent]*tally{Positive: {}, Negative: {}, Neutral: {}}
	for _, h := range hits {
		tt := t[h.Intent]
		tt.sum += h.Weight
		tt.max = math.Max(tt.max, h.Weight)
		tt.hits++
	}
	pos, neg, neu := t[Positive].sum, t[Negative].sum, t[Neutral].sum

	if pos > 0 && math.Abs(pos-neg) < tieEpsilon && pos >= neu-tieEpsilon {
		return Score{Intent: Neutral, Confidence: 0}
	}

	winner, opposing := Neutral, math.Max(pos, neg)
	switch {
	case pos > neg+tieEpsilon && pos > neu+tieEpsilon:
		winner, opposing = Positive, neg
	case neg > pos+tieEpsilon && neg > neu+tieEpsilon:
		winner, opposing = Negative, pos
	}

	w := t[winner]
	if w.sum == 0 {
		return Score{Intent: Neutral, Confidence: 0}
	}
	strength := math.Min(1, w.max+corroborationStep*float64(w.hits-1))
	margin := math.Max(0, (w.sum-opposing)/w.sum)
	return Score{Intent: winner, Confidence: round2(strength * margin)}
}

func round2(v float64) float64 {
	return math.Round(math.Max(0, math.Min(1, v))*100) / 100
}
