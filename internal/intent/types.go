package intent

// Intent is the valence of a human utterance.
type Intent string

const (
	Positive Intent = "positive"
	Negative Intent = "negative"
	Neutral  Intent = "neutral"
)

// IsValid reports whether i is one of the three intents.
func (i Intent) IsValid() bool {
	switch i {
	case Positive, Negative, Neutral:
		return true
	}
	return false
}

// invert swaps positive and negative. Neutral is unchanged.
func (i Intent) invert() Intent {
	switch i {
	case Positive:
		return Negative
	case Negative:
		return Positive
	}
	return i
}

// Score is the classification of a single utterance.
type Score struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Hit is one cue or idiom found in an utterance.
type Hit struct {
	Phrase  string  `json:"phrase"`
	Intent  Intent  `json:"intent"`
	Weight  float64 `json:"weight"`
	Negated bool    `json:"negated,omitempty"`
	Idiom   bool    `json:"idiom,omitempty"`
}

// Detail is a Score together with the evidence behind it.
type Detail struct {
	Score
	Hits []Hit `json:"hits"`
}

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn is one message in a conversation. Higher Index is more recent.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Index   int    `json:"index"`
}

// Indexed returns a copy of turns numbered by position.
func Indexed(turns []Turn) []Turn {
	out := make([]Turn, len(turns))
	for i, t := range turns {
		t.Index = i
		out[i] = t
	}
	return out
}

// TurnScore is the contribution of one scored turn.
type TurnScore struct {
	Index      int     `json:"index"`
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Weight     float64 `json:"weight"`
}

// Analysis is the aggregated intent of a conversation.
type Analysis struct {
	Overall    Intent             `json:"overall_intent"`
	Confidence float64            `json:"confidence"`
	Scores     map[Intent]float64 `json:"scores"`
	Turns      []TurnScore        `json:"turns,omitempty"`
}
