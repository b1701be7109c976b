package intent

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// DefaultNegationWindow is how many tokens before a cue are searched for a
// negator.
const DefaultNegationWindow = 3

// Cue is a word or short phrase with a fixed intent and weight.
type Cue struct {
	Phrase string  `json:"phrase" toml:"phrase"`
	Intent Intent  `json:"intent" toml:"intent"`
	Weight float64 `json:"weight" toml:"weight"`
}

// Idiom is a fixed expression matched on the normalized utterance before
// cue lookup. Words covered by an idiom match are not scored as cues.
// Patterns see lowercased text with straight apostrophes.
type Idiom struct {
	Name    string  `json:"name" toml:"name"`
	Pattern string  `json:"pattern" toml:"pattern"`
	Intent  Intent  `json:"intent" toml:"intent"`
	Weight  float64 `json:"weight" toml:"weight"`
}

// LexiconDef is the uncompiled form of a Lexicon.
type LexiconDef struct {
	Cues           []Cue    `json:"cues" toml:"cue"`
	Idioms         []Idiom  `json:"idioms" toml:"idiom"`
	Negators       []string `json:"negators" toml:"negators"`
	NegationWindow int      `json:"negation_window" toml:"negation_window"`
}

// Merge returns d with o layered on top. Cues and idioms in o replace those
// with the same phrase or name; the rest are appended. Negators are unioned
// and a positive window in o replaces d's.
func (d LexiconDef) Merge(o LexiconDef) LexiconDef {
	out := LexiconDef{
		Cues:           append([]Cue(nil), d.Cues...),
		Idioms:         append([]Idiom(nil), d.Idioms...),
		Negators:       append([]string(nil), d.Negators...),
		NegationWindow: d.NegationWindow,
	}

	cueAt := make(map[string]int, len(out.Cues))
	for i, c := range out.Cues {
		cueAt[strings.Join(words(c.Phrase), " ")] = i
	}
	for _, c := range o.Cues {
		key := strings.Join(words(c.Phrase), " ")
		if i, ok := cueAt[key]; ok {
			out.Cues[i] = c
			continue
		}
		cueAt[key] = len(out.Cues)
		out.Cues = append(out.Cues, c)
	}

	idiomAt := make(map[string]int, len(out.Idioms))
	for i, id := range out.Idioms {
		idiomAt[id.Name] = i
	}
	for _, id := range o.Idioms {
		if i, ok := idiomAt[id.Name]; ok {
			out.Idioms[i] = id
			continue
		}
		idiomAt[id.Name] = len(out.Idioms)
		out.Idioms = append(out.Idioms, id)
	}

	seen := make(map[string]bool, len(out.Negators))
	for _, n := range out.Negators {
		seen[n] = true
	}
	for _, n := range o.Negators {
		if !seen[n] {
			seen[n] = true
			out.Negators = append(out.Negators, n)
		}
	}

	if o.NegationWindow > 0 {
		out.NegationWindow = o.NegationWindow
	}
	return out
}

type compiledCue struct {
	words []string
	cue   Cue
}

type compiledIdiom struct {
	re    *regexp.Regexp
	idiom Idiom
}

// Lexicon is a compiled, immutable set of cues, idioms and negators. It is
// safe for concurrent use.
type Lexicon struct {
	def      LexiconDef
	cues     map[string][]compiledCue
	idioms   []compiledIdiom
	negators map[string]struct{}
	window   int
}

// NewLexicon validates and compiles def.
func NewLexicon(def LexiconDef) (*Lexicon, error) {
	if def.NegationWindow < 0 {
		return nil, fmt.Errorf("%w: negative negation window %d", ErrInvalidLexicon, def.NegationWindow)
	}

	lex := &Lexicon{
		def:      def,
		cues:     make(map[string][]compiledCue),
		negators: make(map[string]struct{}, len(def.Negators)),
		window:   def.NegationWindow,
	}

	seen := make(map[string]bool, len(def.Cues))
	for _, c := range def.Cues {
		if err := checkWeighted(c.Intent, c.Weight); err != nil {
			return nil, fmt.Errorf("cue %q: %w", c.Phrase, err)
		}
		w := words(c.Phrase)
		if len(w) == 0 {
			return nil, fmt.Errorf("%w: cue %q has no words", ErrInvalidLexicon, c.Phrase)
		}
		key := strings.Join(w, " ")
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate cue %q", ErrInvalidLexicon, key)
		}
		seen[key] = true
		lex.cues[w[0]] = append(lex.cues[w[0]], compiledCue{words: w, cue: c})
	}
	for first := range lex.cues {
		group := lex.cues[first]
		sort.SliceStable(group, func(i, j int) bool {
			return len(group[i].words) > len(group[j].words)
		})
	}

	names := make(map[string]bool, len(def.Idioms))
	for _, id := range def.Idioms {
		if id.Name == "" {
			return nil, fmt.Errorf("%w: idiom %q has no name", ErrInvalidLexicon, id.Pattern)
		}
		if names[id.Name] {
			return nil, fmt.Errorf("%w: duplicate idiom %q", ErrInvalidLexicon, id.Name)
		}
		names[id.Name] = true
		if err := checkWeighted(id.Intent, id.Weight); err != nil {
			return nil, fmt.Errorf("idiom %q: %w", id.Name, err)
		}
		re, err := regexp.Compile(id.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: idiom %q: %v", ErrInvalidLexicon, id.Name, err)
		}
		lex.idioms = append(lex.idioms, compiledIdiom{re: re, idiom: id})
	}

	for _, n := range def.Negators {
		w := words(n)
		if len(w) != 1 {
			return nil, fmt.Errorf("%w: negator %q must be a single word", ErrInvalidLexicon, n)
		}
		lex.negators[w[0]] = struct{}{}
	}

	return lex, nil
}

func checkWeighted(i Intent, w float64) error {
	if !i.IsValid() {
		return fmt.Errorf("%w: unknown intent %q", ErrInvalidLexicon, i)
	}
	if w <= 0 || w > 1 {
		return fmt.Errorf("%w: weight %v outside (0, 1]", ErrInvalidLexicon, w)
	}
	return nil
}

// DefaultLexicon returns the built-in lexicon.
var DefaultLexicon = sync.OnceValue(func() *Lexicon {
	lex, err := NewLexicon(DefaultLexiconDef())
	if err != nil {
		panic("intent: default lexicon: " + err.Error())
	}
	return lex
})

// Def returns a copy of the definition the lexicon was built from.
func (l *Lexicon) Def() LexiconDef {
	return LexiconDef{}.Merge(l.def)
}

// NegationWindow returns the negation look-behind in tokens.
func (l *Lexicon) NegationWindow() int {
	return l.window
}

func (l *Lexicon) isNegator(word string) bool {
	_, ok := l.negators[word]
	return ok
}
