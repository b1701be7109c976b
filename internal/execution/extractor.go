package execution

import (
	"math"
	"sort"
	"strings"
)

const (
	// commandBoost is added to signals in a domain the command names.
	commandBoost = 0.05

	// corroborationStep is added per additional evidence line of the same type.
	corroborationStep = 0.05

	maxDetailsRunes = 120
	maxContextRunes = 200
)

// Extractor turns command output into signals using a rule Library.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	lib *Library
}

// NewExtractor returns an Extractor over lib. A nil lib selects
// DefaultLibrary.
func NewExtractor(lib *Library) *Extractor {
	if lib == nil {
		lib = DefaultLibrary()
	}
	return &Extractor{lib: lib}
}

// Library returns the rule library in use.
func (e *Extractor) Library() *Library {
	return e.lib
}

// AnalyzeOutput scans output and returns at most one Signal per domain,
// ordered by where the evidence appears. The command nudges confidence and
// settles rules that defer to another domain; it never decides which domains
// are checked. No evidence yields an empty slice.
func (e *Extractor) AnalyzeOutput(output, command string) []Signal {
	signals := []Signal{}
	if strings.TrimSpace(output) == "" {
		return signals
	}

	v := newTextView(output)
	hinted := make(map[Domain]bool)
	for _, d := range CommandDomains(command) {
		hinted[d] = true
	}
	claimed := make(map[int]bool)
	fired := make(map[Domain]bool)

	for _, d := range domainOrder {
		if d == DomainGeneric {
			continue
		}
		resolve := func(r *compiledRule) SignalType { return r.Type }
		if sig, ok := e.evaluate(v, applicable(e.lib.domains[d], hinted), claimed, resolve, hinted[d]); ok {
			signals = append(signals, sig)
			fired[d] = true
		}
	}

	if target, ok := genericTarget(command, fired); ok {
		resolve := func(r *compiledRule) SignalType { return typeFor(target, r.Failure) }
		if sig, ok := e.evaluate(v, e.lib.domains[DomainGeneric], claimed, resolve, true); ok {
			signals = append(signals, sig)
		}
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Offset < signals[j].Offset
	})
	return signals
}

// evaluate runs one domain's rules in priority order. The first rule with a
// qualifying match fixes the signal type; every rule of that type then
// contributes corroborating lines, and the strongest of them sets the base
// confidence. Evidence lines are claimed for later domains.
func (e *Extractor) evaluate(v *textView, rules []*compiledRule, claimed map[int]bool, resolve func(*compiledRule) SignalType, hinted bool) (Signal, bool) {
	for _, r := range rules {
		typ := resolve(r)
		if typ == "" {
			continue
		}
		m, ok := r.first(v, claimed)
		if !ok {
			continue
		}

		conf := r.Confidence
		lines := map[int]bool{m.line: true}
		for _, other := range rules {
			if resolve(other) != typ {
				continue
			}
			other.each(v, claimed, func(om match) bool {
				lines[om.line] = true
				if other.Confidence > conf {
					conf = other.Confidence
				}
				return true
			})
		}
		conf += corroborationStep * float64(len(lines)-1)
		if hinted {
			conf += commandBoost
		}
		for line := range lines {
			claimed[line] = true
		}

		return Signal{
			Type:       typ,
			Confidence: clampConfidence(conf),
			Details:    excerpt(v.text[m.start:m.end], maxDetailsRunes),
			Context:    excerpt(v.line(m.line), maxContextRunes),
			Offset:     v.origin(m.start),
			Rule:       r.Name,
		}, true
	}
	return Signal{}, false
}

// applicable drops rules that defer to a domain the command names when the
// command does not also name the rule's own domain.
func applicable(rules []*compiledRule, hinted map[Domain]bool) []*compiledRule {
	out := rules[:0:0]
	for _, r := range rules {
		if r.Defer != "" && hinted[r.Defer] && !hinted[r.Domain] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// genericTarget picks the domain generic markers are attributed to: the
// first domain the command names that has no signal yet. Servers are
// skipped since they have no failure type and a generic success line says
// nothing about a server having started.
func genericTarget(command string, fired map[Domain]bool) (Domain, bool) {
	for _, d := range CommandDomains(command) {
		if d == DomainServer || fired[d] {
			continue
		}
		return d, true
	}
	return "", false
}

// clampConfidence bounds c to [0,1] and rounds to two decimals.
func clampConfidence(c float64) float64 {
	c = math.Max(0, math.Min(1, c))
	return math.Round(c*100) / 100
}
