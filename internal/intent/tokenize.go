package intent

import (
	"strings"
	"unicode"
)

// token is a normalized word with its byte span in the normalized text and
// the clause it belongs to.
type token struct {
	text       string
	start, end int
	clause     int
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// normalize lowercases s and unifies apostrophes.
func normalize(s string) string {
	return apostrophes.Replace(strings.ToLower(s))
}

// isClauseBreak reports whether r ends a clause for negation purposes.
func isClauseBreak(r rune) bool {
	switch r {
	case '.', ',', ';', ':', '!', '?', '\n', '—', '–', '(', ')', '…':
		return true
	}
	return false
}

// tokenize splits normalized text into words. Letters, digits and inner
// apostrophes form words; clause punctuation advances the clause counter.
func tokenize(s string) []token {
	var (
		tokens []token
		clause int
		start  = -1
	)
	flush := func(end int) {
		if start < 0 {
			return
		}
		word := s[start:end]
		trimmed := strings.TrimLeft(word, "'")
		offset := start + len(word) - len(trimmed)
		trimmed = strings.TrimRight(trimmed, "'")
		if trimmed != "" {
			tokens = append(tokens, token{
				text:   trimmed,
				start:  offset,
				end:    offset + len(trimmed),
				clause: clause,
			})
		}
		start = -1
	}

	for i, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		if isClauseBreak(r) {
			clause++
		}
	}
	flush(len(s))
	return tokens
}

// words returns the token texts of a normalized phrase.
func words(phrase string) []string {
	toks := tokenize(normalize(phrase))
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.text
	}
	return out
}
