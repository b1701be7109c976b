package intent

// DefaultLexiconDef returns the built-in cue, idiom and negator tables.
func DefaultLexiconDef() LexiconDef {
	var cues []Cue
	cues = append(cues, positiveCues...)
	cues = append(cues, negativeCues...)
	cues = append(cues, neutralCues...)
	return LexiconDef{
		Cues:           cues,
		Idioms:         append([]Idiom(nil), defaultIdioms...),
		Negators:       append([]string(nil), defaultNegators...),
		NegationWindow: DefaultNegationWindow,
	}
}

var defaultIdioms = []Idiom{
	{Name: "finally", Pattern: `^\W*finally\b`, Intent: Positive, Weight: 0.85},
	{Name: "no-problem", Pattern: `\bno (?:problem|worries)\b`, Intent: Positive, Weight: 0.6},
	{Name: "not-bad", Pattern: `\bnot bad\b`, Intent: Positive, Weight: 0.6},
	{Name: "no-luck", Pattern: `\bno luck\b`, Intent: Negative, Weight: 0.75},
	{Name: "not-quite", Pattern: `\bnot quite\b`, Intent: Negative, Weight: 0.6},
	{Name: "hold-on", Pattern: `\bhold on\b`, Intent: Neutral, Weight: 0.5},
	{Name: "let-me", Pattern: `\blet me (?:check|see|try|look|think)\b`, Intent: Neutral, Weight: 0.5},
	{Name: "wait-a-moment", Pattern: `\bwait a (?:sec|second|minute|moment)\b`, Intent: Neutral, Weight: 0.5},
}

var defaultNegators = []string{
	"not", "no", "never", "nothing", "neither", "nor", "without", "cannot",
	"don't", "dont", "doesn't", "doesnt", "didn't", "didnt",
	"isn't", "isnt", "wasn't", "wasnt", "aren't", "arent",
	"can't", "cant", "won't", "wont", "couldn't", "couldnt",
	"shouldn't", "haven't", "hasn't",
}

var positiveCues = []Cue{
	// praise
	{"perfect", Positive, 0.9},
	{"excellent", Positive, 0.85},
	{"awesome", Positive, 0.85},
	{"amazing", Positive, 0.85},
	{"brilliant", Positive, 0.85},
	{"fantastic", Positive, 0.85},
	{"great", Positive, 0.7},
	{"great job", Positive, 0.9},
	{"nice", Positive, 0.6},
	{"nice work", Positive, 0.85},
	{"good", Positive, 0.5},
	{"good job", Positive, 0.85},
	{"well done", Positive, 0.85},
	{"love it", Positive, 0.85},
	{"beautiful", Positive, 0.8},
	{"beautifully", Positive, 0.8},
	{"cool", Positive, 0.5},
	{"helpful", Positive, 0.65},
	{"interesting", Positive, 0.4},

	// gratitude
	{"thanks", Positive, 0.7},
	{"thank you", Positive, 0.75},
	{"thx", Positive, 0.6},

	// resolution
	{"works", Positive, 0.7},
	{"worked", Positive, 0.75},
	{"working", Positive, 0.6},
	{"work", Positive, 0.6},
	{"works now", Positive, 0.85},
	{"working now", Positive, 0.85},
	{"it works", Positive, 0.8},
	{"it's working", Positive, 0.85},
	{"fixed", Positive, 0.8},
	{"solved", Positive, 0.85},
	{"problem solved", Positive, 0.95},
	{"resolved", Positive, 0.8},
	{"success", Positive, 0.7},
	{"successful", Positive, 0.7},
	{"passing", Positive, 0.6},
	{"passes", Positive, 0.6},

	// confirmation
	{"exactly", Positive, 0.6},
	{"correct", Positive, 0.6},
	{"right", Positive, 0.4},
	{"yes", Positive, 0.5},
	{"yep", Positive, 0.5},
	{"yeah", Positive, 0.4},
	{"makes sense", Positive, 0.75},
	{"make sense", Positive, 0.7},
	{"i see", Positive, 0.55},
	{"got it", Positive, 0.65},
	{"explains", Positive, 0.65},
	{"explains it", Positive, 0.7},

	// moving forward
	{"move on", Positive, 0.7},
	{"next", Positive, 0.45},
	{"what's next", Positive, 0.75},
	{"continue", Positive, 0.45},
}

var negativeCues = []Cue{
	// failure
	{"wrong", Negative, 0.7},
	{"incorrect", Negative, 0.7},
	{"broken", Negative, 0.75},
	{"broke", Negative, 0.7},
	{"error", Negative, 0.6},
	{"errors", Negative, 0.6},
	{"same error", Negative, 0.85},
	{"still getting", Negative, 0.6},
	{"still failing", Negative, 0.85},
	{"failing", Negative, 0.7},
	{"failed", Negative, 0.7},
	{"fails", Negative, 0.7},
	{"crash", Negative, 0.7},
	{"crashes", Negative, 0.7},
	{"crashed", Negative, 0.7},
	{"worse", Negative, 0.75},
	{"stuck", Negative, 0.6},
	{"problem", Negative, 0.45},

	// rejection
	{"no", Negative, 0.5},
	{"nope", Negative, 0.7},
	{"undo", Negative, 0.7},
	{"revert", Negative, 0.7},
	{"useless", Negative, 0.8},
	{"terrible", Negative, 0.85},

	// retry
	{"try again", Negative, 0.65},
	{"try something else", Negative, 0.8},
	{"something else", Negative, 0.6},

	// frustration
	{"frustrating", Negative, 0.8},
	{"annoying", Negative, 0.7},
	{"ugh", Negative, 0.7},
}

var neutralCues = []Cue{
	{"ok", Neutral, 0.4},
	{"okay", Neutral, 0.4},
	{"alright", Neutral, 0.4},
	{"sure", Neutral, 0.4},
	{"fine", Neutral, 0.4},
	{"wait", Neutral, 0.4},
	{"whatever", Neutral, 0.35},
	{"hmm", Neutral, 0.35},
	{"maybe", Neutral, 0.3},
}
