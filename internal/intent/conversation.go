package intent

import (
	"fmt"
	"sort"
)

// TurnFilter selects which turns are scored.
type TurnFilter func(Turn) bool

// UserTurns scores only turns written by the user.
func UserTurns(t Turn) bool {
	return t.Role == RoleUser
}

// Aggregator folds per-turn intent scores into a conversation verdict.
type Aggregator struct {
	scorer *Scorer
	weight WeightFunc
	filter TurnFilter
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithWeighting replaces the default Exponential(DefaultWeightBase) recency
// weighting.
func WithWeighting(fn WeightFunc) AggregatorOption {
	return func(a *Aggregator) {
		if fn != nil {
			a.weight = fn
		}
	}
}

// WithTurnFilter replaces UserTurns as the selector of scored turns.
func WithTurnFilter(fn TurnFilter) AggregatorOption {
	return func(a *Aggregator) {
		if fn != nil {
			a.filter = fn
		}
	}
}

// NewAggregator returns an Aggregator backed by scorer. A nil scorer uses
// the default lexicon.
func NewAggregator(scorer *Scorer, opts ...AggregatorOption) *Aggregator {
	if scorer == nil {
		scorer = NewScorer(nil)
	}
	a := &Aggregator{
		scorer: scorer,
		weight: Exponential(DefaultWeightBase),
		filter: UserTurns,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Scorer returns the utterance scorer.
func (a *Aggregator) Scorer() *Scorer {
	return a.scorer
}

// AnalyzeConversation scores the selected turns in index order and returns
// the recency-weighted overall intent. Confidence is the winning intent's
// share of all weighted score; ties go to Neutral. A conversation with
// nothing scored is (Neutral, 0).
//
// Turns with an unknown role or a negative index are rejected.
func (a *Aggregator) AnalyzeConversation(turns []Turn) (Analysis, error) {
	for i, t := range turns {
		if !t.Role.IsValid() {
			return Analysis{}, fmt.Errorf("%w: turn %d has role %q (want %q or %q)",
				ErrInvalidRole, i, t.Role, RoleUser, RoleAssistant)
		}
		if t.Index < 0 {
			return Analysis{}, fmt.Errorf("%w: turn %d has index %d", ErrInvalidIndex, i, t.Index)
		}
	}

	ordered := make([]Turn, len(turns))
	copy(ordered, turns)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	selected := ordered[:0:0]
	for _, t := range ordered {
		if a.filter(t) {
			selected = append(selected, t)
		}
	}

	analysis := Analysis{
		Overall: Neutral,
		Scores:  map[Intent]float64{Positive: 0, Negative: 0, Neutral: 0},
	}
	for pos, t := range selected {
		s := a.scorer.DetectIntent(t.Content)
		w := a.weight(pos, len(selected))
		analysis.Scores[s.Intent] += w * s.Confidence
		analysis.Turns = append(analysis.Turns, TurnScore{
			Index:      t.Index,
			Intent:     s.Intent,
			Confidence: s.Confidence,
			Weight:     w,
		})
	}

	var total float64
	for _, v := range analysis.Scores {
		total += v
	}
	if total <= 0 {
		return analysis, nil
	}

	p, n, u := analysis.Scores[Positive], analysis.Scores[Negative], analysis.Scores[Neutral]
	switch {
	case p > n+tieEpsilon && p > u+tieEpsilon:
		analysis.Overall = Positive
	case n > p+tieEpsilon && n > u+tieEpsilon:
		analysis.Overall = Negative
	}
	analysis.Confidence = round2(analysis.Scores[analysis.Overall] / total)
	return analysis, nil
}
