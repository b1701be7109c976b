package execution

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Kind selects how a rule's pattern is evaluated.
type Kind int

const (
	// KindLiteral matches Pattern as plain text.
	KindLiteral Kind = iota
	// KindRegex matches Pattern as a regular expression.
	KindRegex
	// KindCount matches Pattern as a regular expression whose first capture
	// group is an integer checked against the rule's CountPredicate.
	KindCount
	// KindSequence matches Pattern only when Confirm matches later in the text.
	KindSequence
)

var kindNames = map[Kind]string{
	KindLiteral:  "literal",
	KindRegex:    "regex",
	KindCount:    "count",
	KindSequence: "sequence",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidRule, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for kind, name := range kindNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, s)
}

// CountPredicate is the condition a KindCount rule applies to its captured
// number.
type CountPredicate int

const (
	// CountNonZero requires the captured count to be greater than zero.
	CountNonZero CountPredicate = iota
	// CountZero requires the captured count to be zero.
	CountZero
)

// MarshalText implements encoding.TextMarshaler.
func (p CountPredicate) MarshalText() ([]byte, error) {
	if p == CountZero {
		return []byte("zero"), nil
	}
	return []byte("nonzero"), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *CountPredicate) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "zero":
		*p = CountZero
	case "nonzero", "non-zero", "":
		*p = CountNonZero
	default:
		return fmt.Errorf("%w: unknown count predicate %q", ErrInvalidRule, string(text))
	}
	return nil
}

// Rule maps a text pattern to a signal type with a base confidence.
type Rule struct {
	// Name identifies the rule in signals and listings.
	Name string `json:"name" toml:"name"`

	// Domain is the rule group. Rules in DomainGeneric leave Type empty and
	// set Failure instead.
	Domain Domain `json:"domain" toml:"domain"`

	Kind    Kind   `json:"kind" toml:"kind"`
	Pattern string `json:"pattern" toml:"pattern"`

	// Confirm must match after the anchor for KindSequence rules.
	Confirm string `json:"confirm,omitempty" toml:"confirm"`

	// Exclude discards any match whose line also matches it.
	Exclude string `json:"exclude,omitempty" toml:"exclude"`

	// Unless disables the rule for the whole output when it matches anywhere.
	Unless string `json:"unless,omitempty" toml:"unless"`

	// Defer yields the rule to another domain's rules when the command names
	// that domain and not this one.
	Defer Domain `json:"defer,omitempty" toml:"defer"`

	Count         CountPredicate `json:"count,omitempty" toml:"count"`
	CaseSensitive bool           `json:"case_sensitive,omitempty" toml:"case_sensitive"`

	Type       SignalType `json:"signal_type,omitempty" toml:"signal_type"`
	Failure    bool       `json:"failure,omitempty" toml:"failure"`
	Confidence float64    `json:"confidence" toml:"confidence"`
}

func (r Rule) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRule)
	}
	if !r.Domain.IsValid() {
		return fmt.Errorf("%w: rule %s: unknown domain %q", ErrInvalidRule, r.Name, r.Domain)
	}
	if r.Pattern == "" {
		return fmt.Errorf("%w: rule %s: pattern is required", ErrInvalidRule, r.Name)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("%w: rule %s: confidence %.2f out of range [0,1]", ErrInvalidRule, r.Name, r.Confidence)
	}
	if _, ok := kindNames[r.Kind]; !ok {
		return fmt.Errorf("%w: rule %s: unknown kind %d", ErrInvalidRule, r.Name, int(r.Kind))
	}
	if r.Kind == KindSequence && r.Confirm == "" {
		return fmt.Errorf("%w: rule %s: sequence rules need a confirm pattern", ErrInvalidRule, r.Name)
	}

	if r.Defer != "" && (!r.Defer.IsValid() || r.Defer == r.Domain || r.Defer == DomainGeneric) {
		return fmt.Errorf("%w: rule %s: cannot defer to domain %q", ErrInvalidRule, r.Name, r.Defer)
	}

	if r.Domain == DomainGeneric {
		if r.Type != "" {
			return fmt.Errorf("%w: rule %s: generic rules take their type from the command", ErrInvalidRule, r.Name)
		}
		return nil
	}
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: rule %s: unknown signal type %q", ErrInvalidRule, r.Name, r.Type)
	}
	if r.Type.Domain() != r.Domain {
		return fmt.Errorf("%w: rule %s: signal type %s does not belong to domain %s", ErrInvalidRule, r.Name, r.Type, r.Domain)
	}
	return nil
}

// compiledRule is a Rule with its patterns compiled.
type compiledRule struct {
	Rule
	match   *regexp.Regexp
	confirm *regexp.Regexp
	exclude *regexp.Regexp
	unless  *regexp.Regexp
}

func compileRule(r Rule) (*compiledRule, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	flags := "(?i)"
	if r.CaseSensitive {
		flags = ""
	}
	src := r.Pattern
	if r.Kind == KindLiteral {
		src = regexp.QuoteMeta(src)
	}

	cr := &compiledRule{Rule: r}
	var err error
	if cr.match, err = regexp.Compile(flags + src); err != nil {
		return nil, fmt.Errorf("%w: rule %s: pattern: %v", ErrInvalidRule, r.Name, err)
	}
	if r.Kind == KindCount && cr.match.NumSubexp() < 1 {
		return nil, fmt.Errorf("%w: rule %s: count rules need a capture group", ErrInvalidRule, r.Name)
	}
	if r.Confirm != "" {
		if cr.confirm, err = regexp.Compile(flags + r.Confirm); err != nil {
			return nil, fmt.Errorf("%w: rule %s: confirm: %v", ErrInvalidRule, r.Name, err)
		}
	}
	if r.Exclude != "" {
		if cr.exclude, err = regexp.Compile(flags + r.Exclude); err != nil {
			return nil, fmt.Errorf("%w: rule %s: exclude: %v", ErrInvalidRule, r.Name, err)
		}
	}
	if r.Unless != "" {
		if cr.unless, err = regexp.Compile(flags + r.Unless); err != nil {
			return nil, fmt.Errorf("%w: rule %s: unless: %v", ErrInvalidRule, r.Name, err)
		}
	}
	return cr, nil
}

// match is one qualifying occurrence of a rule in a textView.
type match struct {
	start, end int
	line       int
}

// each calls fn for every qualifying match in textual order until fn
// returns false. Matches on claimed lines are skipped, and nothing matches
// when the Unless pattern occurs anywhere, claimed lines included.
func (r *compiledRule) each(v *textView, claimed map[int]bool, fn func(match) bool) {
	if r.unless != nil && r.unless.MatchString(v.text) {
		return
	}
	for _, loc := range r.match.FindAllStringSubmatchIndex(v.text, -1) {
		start, end := loc[0], loc[1]
		if start == end {
			continue
		}
		line := v.lineOf(start)
		if claimed[line] {
			continue
		}
		if r.exclude != nil && r.exclude.MatchString(v.line(line)) {
			continue
		}

		switch r.Kind {
		case KindCount:
			if loc[2] < 0 {
				continue
			}
			n, err := strconv.Atoi(v.text[loc[2]:loc[3]])
			zero := err == nil && n == 0
			if zero != (r.Count == CountZero) {
				continue
			}
		case KindSequence:
			if !r.confirm.MatchString(v.text[end:]) {
				continue
			}
		}

		if !fn(match{start: start, end: end, line: line}) {
			return
		}
	}
}

// first returns the leftmost qualifying match.
func (r *compiledRule) first(v *textView, claimed map[int]bool) (match, bool) {
	var found match
	var ok bool
	r.each(v, claimed, func(m match) bool {
		found, ok = m, true
		return false
	})
	return found, ok
}

// Library is an immutable, ordered rule table grouped by domain.
type Library struct {
	rules   []Rule
	domains map[Domain][]*compiledRule
}

// NewLibrary compiles rules into a Library. Rules keep their relative order
// within each domain; earlier rules have higher priority.
func NewLibrary(rules []Rule) (*Library, error) {
	lib := &Library{
		rules:   make([]Rule, 0, len(rules)),
		domains: make(map[Domain][]*compiledRule),
	}
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate rule name %q", ErrInvalidRule, r.Name)
		}
		seen[r.Name] = struct{}{}

		cr, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		lib.rules = append(lib.rules, r)
		lib.domains[r.Domain] = append(lib.domains[r.Domain], cr)
	}
	return lib, nil
}

// Extend returns a new Library with overrides placed ahead of the receiver's
// rules in each domain. The receiver is not modified.
func (l *Library) Extend(overrides []Rule) (*Library, error) {
	combined := make([]Rule, 0, len(overrides)+len(l.rules))
	combined = append(combined, overrides...)
	combined = append(combined, l.rules...)
	return NewLibrary(combined)
}

// Rules returns a copy of the rule definitions in priority order.
func (l *Library) Rules() []Rule {
	out := make([]Rule, len(l.rules))
	copy(out, l.rules)
	return out
}

// Len returns the number of rules.
func (l *Library) Len() int {
	return len(l.rules)
}

var defaultLibrary = sync.OnceValue(func() *Library {
	lib, err := NewLibrary(DefaultRules())
	if err != nil {
		panic("execution: default rules do not compile: " + err.Error())
	}
	return lib
})

// DefaultLibrary returns the shared built-in rule library.
func DefaultLibrary() *Library {
	return defaultLibrary()
}
