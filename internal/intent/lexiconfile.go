package intent

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadLexiconFile reads a lexicon overlay from a TOML file:
//
//	negation_window = 4
//	negators = ["hardly"]
//
//	[[cue]]
//	phrase = "lgtm"
//	intent = "positive"
//	weight = 0.85
//
//	[[idiom]]
//	name = "ship-it"
//	pattern = '\bship it\b'
//	intent = "positive"
//	weight = 0.9
func LoadLexiconFile(path string) (LexiconDef, error) {
	var def LexiconDef
	md, err := toml.DecodeFile(path, &def)
	if err != nil {
		return LexiconDef{}, fmt.Errorf("%w: %s: %v", ErrInvalidLexiconFile, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return LexiconDef{}, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalidLexiconFile, path, strings.Join(keys, ", "))
	}
	return def, nil
}

// LoadLexicon returns the default lexicon merged with the overlay in path
// and, when window is positive, with that negation window. An empty path
// and zero window return DefaultLexicon.
func LoadLexicon(path string, window int) (*Lexicon, error) {
	if path == "" && window == 0 {
		return DefaultLexicon(), nil
	}
	def := DefaultLexiconDef()
	if path != "" {
		overlay, err := LoadLexiconFile(path)
		if err != nil {
			return nil, err
		}
		def = def.Merge(overlay)
	}
	if window > 0 {
		def.NegationWindow = window
	}
	lex, err := NewLexicon(def)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lex, nil
}
