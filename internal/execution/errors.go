package execution

import "errors"

var (
	// ErrInvalidRule indicates a rule definition is malformed.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrInvalidRuleFile indicates a rule file could not be parsed.
	ErrInvalidRuleFile = errors.New("invalid rule file")
)
