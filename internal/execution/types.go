package execution

// Domain groups rules by the kind of tool whose output they recognize.
type Domain string

const (
	DomainTest      Domain = "test"
	DomainTypecheck Domain = "typecheck"
	DomainLint      Domain = "lint"
	DomainInstall   Domain = "install"
	DomainServer    Domain = "server"
	DomainBuild     Domain = "build"

	// DomainGeneric holds tool-agnostic markers. Its signals are attributed to
	// the domain inferred from the command.
	DomainGeneric Domain = "generic"
)

// domainOrder is the evaluation precedence. Earlier domains claim evidence
// first, so the more distinctive output formats are checked before the
// build domain's broad wording.
var domainOrder = []Domain{
	DomainTest,
	DomainTypecheck,
	DomainLint,
	DomainInstall,
	DomainServer,
	DomainBuild,
	DomainGeneric,
}

// Domains returns the rule domains in evaluation order.
func Domains() []Domain {
	out := make([]Domain, len(domainOrder))
	copy(out, domainOrder)
	return out
}

// IsValid reports whether d is a known domain.
func (d Domain) IsValid() bool {
	for _, known := range domainOrder {
		if d == known {
			return true
		}
	}
	return false
}

// SignalType identifies the outcome a Signal reports.
type SignalType string

const (
	TestPass       SignalType = "test_pass"
	TestFail       SignalType = "test_fail"
	BuildSuccess   SignalType = "build_success"
	BuildFail      SignalType = "build_fail"
	ServerStart    SignalType = "server_start"
	TypecheckPass  SignalType = "typecheck_pass"
	TypecheckFail  SignalType = "typecheck_fail"
	LintPass       SignalType = "lint_pass"
	LintFail       SignalType = "lint_fail"
	InstallSuccess SignalType = "install_success"
	InstallFail    SignalType = "install_fail"
)

// signalDomains maps every signal type to its domain.
var signalDomains = map[SignalType]Domain{
	TestPass:       DomainTest,
	TestFail:       DomainTest,
	BuildSuccess:   DomainBuild,
	BuildFail:      DomainBuild,
	ServerStart:    DomainServer,
	TypecheckPass:  DomainTypecheck,
	TypecheckFail:  DomainTypecheck,
	LintPass:       DomainLint,
	LintFail:       DomainLint,
	InstallSuccess: DomainInstall,
	InstallFail:    DomainInstall,
}

// outcomeTypes gives the positive and negative type of each domain. The
// server domain has no failure type.
var outcomeTypes = map[Domain][2]SignalType{
	DomainTest:      {TestPass, TestFail},
	DomainTypecheck: {TypecheckPass, TypecheckFail},
	DomainLint:      {LintPass, LintFail},
	DomainInstall:   {InstallSuccess, InstallFail},
	DomainServer:    {ServerStart, ""},
	DomainBuild:     {BuildSuccess, BuildFail},
}

// IsValid reports whether t is one of the known signal types.
func (t SignalType) IsValid() bool {
	_, ok := signalDomains[t]
	return ok
}

// Domain returns the domain a signal type belongs to.
func (t SignalType) Domain() Domain {
	return signalDomains[t]
}

// IsNegative reports whether t reports a failure.
func (t SignalType) IsNegative() bool {
	switch t {
	case TestFail, BuildFail, TypecheckFail, LintFail, InstallFail:
		return true
	}
	return false
}

// IsPositive reports whether t reports a success.
func (t SignalType) IsPositive() bool {
	return t.IsValid() && !t.IsNegative()
}

// typeFor returns the signal type reporting the given outcome in domain d,
// or "" when the domain cannot express it.
func typeFor(d Domain, failure bool) SignalType {
	pair, ok := outcomeTypes[d]
	if !ok {
		return ""
	}
	if failure {
		return pair[1]
	}
	return pair[0]
}

// Signal is one piece of typed evidence extracted from command output.
type Signal struct {
	// Type is the outcome this signal reports.
	Type SignalType `json:"signal_type"`

	// Confidence is in [0, 1].
	Confidence float64 `json:"confidence"`

	// Details is the matched text, e.g. "15 passed in 3.21s".
	Details string `json:"details"`

	// Context is the line the match was found on, when available.
	Context string `json:"context,omitempty"`

	// Offset is the byte offset of the match start in the original output.
	Offset int `json:"offset"`

	// Rule names the rule that produced the signal.
	Rule string `json:"rule"`
}

// Verdict is the overall success decision for a set of signals.
type Verdict struct {
	Success    bool    `json:"is_success"`
	Confidence float64 `json:"confidence"`
}
