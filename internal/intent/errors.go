package intent

import "errors"

var (
	// ErrInvalidRole indicates a conversation turn has a role other than
	// user or assistant.
	ErrInvalidRole = errors.New("invalid turn role")

	// ErrInvalidIndex indicates a conversation turn has a negative index.
	ErrInvalidIndex = errors.New("invalid turn index")

	// ErrInvalidLexicon indicates a cue, idiom or window setting is malformed.
	ErrInvalidLexicon = errors.New("invalid lexicon")

	// ErrInvalidLexiconFile indicates a lexicon file could not be parsed.
	ErrInvalidLexiconFile = errors.New("invalid lexicon file")
)
