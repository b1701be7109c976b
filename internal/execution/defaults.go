package execution

// DefaultRules returns the built-in rule table. Within each domain failure
// markers with explicit counts come first, then explicit success summaries,
// then broad single-token fallbacks with lower confidence.
func DefaultRules() []Rule {
	rules := make([]Rule, 0, 80)
	rules = append(rules, testRules()...)
	rules = append(rules, typecheckRules()...)
	rules = append(rules, lintRules()...)
	rules = append(rules, installRules()...)
	rules = append(rules, serverRules()...)
	rules = append(rules, buildRules()...)
	rules = append(rules, genericRules()...)
	return rules
}

func testRules() []Rule {
	return []Rule{
		// --- Failures (any of these outranks passing evidence) ---
		{
			Name:       "jest-summary-failed",
			Domain:     DomainTest,
			Kind:       KindCount,
			Pattern:    `\bTests:[ \t]+(\d+)[ \t]+failed`,
			Type:       TestFail,
			Confidence: 0.95,
		},
		{
			Name:       "failed-count",
			Domain:     DomainTest,
			Kind:       KindCount,
			Pattern:    `\b(\d+)[ \t]+(?:tests?[ \t]+)?(?:failed|failing)\b`,
			Type:       TestFail,
			Confidence: 0.9,
		},
		{
			Name:          "go-test-fail",
			Domain:        DomainTest,
			Kind:          KindRegex,
			Pattern:       `(?m)^[ \t]*--- FAIL:`,
			CaseSensitive: true,
			Type:          TestFail,
			Confidence:    0.9,
		},
		{
			Name:          "failed-marker",
			Domain:        DomainTest,
			Kind:          KindRegex,
			Pattern:       `\bFAILED\b`,
			Exclude:       `(?i)\bbuild failed\b|\bcompilation failed\b`,
			CaseSensitive: true,
			Type:          TestFail,
			Confidence:    0.85,
		},
		{
			Name:          "fail-suite",
			Domain:        DomainTest,
			Kind:          KindRegex,
			Pattern:       `(?m)^[ \t]*FAIL[ \t]+\S`,
			CaseSensitive: true,
			Type:          TestFail,
			Confidence:    0.85,
		},
		{
			Name:       "cross-mark",
			Domain:     DomainTest,
			Kind:       KindRegex,
			Pattern:    `[✕✗✘]`,
			Type:       TestFail,
			Confidence: 0.85,
		},
		{
			// pytest counts collection and fixture errors after the outcomes.
			Name:       "pytest-errors",
			Domain:     DomainTest,
			Kind:       KindCount,
			Pattern:    `(?m)(?:^[ \t]*|=[ \t]+|\b(?:passed|failed|skipped|deselected|xfailed|xpassed|warnings?),[ \t]+)(\d+)[ \t]+errors?\b[^\n]*?\bin[ \t]+\d+(?:\.\d+)?s\b`,
			Type:       TestFail,
			Confidence: 0.9,
		},

		// --- Explicit passing summaries ---
		{
			Name:       "passed-in",
			Domain:     DomainTest,
			Kind:       KindCount,
			Pattern:    `\b(\d+)[ \t]+passed\b[^\n]*?\bin[ \t]+\d+(?:\.\d+)?[ \t]*m?s\b`,
			Exclude:    `\b[1-9]\d*[ \t]+errors?\b`,
			Type:       TestPass,
			Confidence: 0.95,
		},
		{
			Name:       "jest-summary-passed",
			Domain:     DomainTest,
			Kind:       KindCount,
			Pattern:    `\bTests:[ \t]+(\d+)[ \t]+passed`,
			Type:       TestPass,
			Confidence: 0.9,
		},
		{
			Name:       "cargo-test-ok",
			Domain:     DomainTest,
			Kind:       KindLiteral,
			Pattern:    "test result: ok.",
			Type:       TestPass,
			Confidence: 0.9,
		},
		{
			Name:       "passed-count",
			Domain:     DomainTest,
			Kind:       KindCount,
			Pattern:    `\b(\d+)[ \t]+(?:tests?[ \t]+)?(?:passed|passing)\b`,
			Exclude:    `\b[1-9]\d*[ \t]+errors?\b`,
			Type:       TestPass,
			Confidence: 0.85,
		},
		{
			Name:          "go-test-ok",
			Domain:        DomainTest,
			Kind:          KindRegex,
			Pattern:       `(?m)^ok[ \t]+\S+[ \t]+(?:\d+(?:\.\d+)?s|\(cached\))`,
			CaseSensitive: true,
			Type:          TestPass,
			Confidence:    0.85,
		},

		// --- Bare tokens ---
		{
			Name:          "pass-suite",
			Domain:        DomainTest,
			Kind:          KindRegex,
			Pattern:       `(?m)^[ \t]*PASS(?:[ \t]+\S|[ \t]*$)`,
			CaseSensitive: true,
			Type:          TestPass,
			Confidence:    0.7,
		},
		{
			Name:          "passed-marker",
			Domain:        DomainTest,
			Kind:          KindRegex,
			Pattern:       `\bPASSED\b`,
			CaseSensitive: true,
			Type:          TestPass,
			Confidence:    0.65,
		},
		{
			Name:       "check-mark",
			Domain:     DomainTest,
			Kind:       KindLiteral,
			Pattern:    "✓",
			Exclude:    `\b(?:compiled|built|ready|starting|linting|generating|collecting|creating|transformed|modules)\b`,
			Type:       TestPass,
			Confidence: 0.6,
		},
	}
}

func typecheckRules() []Rule {
	return []Rule{
		{
			Name:       "ts-error-code",
			Domain:     DomainTypecheck,
			Kind:       KindRegex,
			Pattern:    `\berror[ \t]+TS\d+`,
			Type:       TypecheckFail,
			Confidence: 0.95,
		},
		{
			Name:       "found-errors",
			Domain:     DomainTypecheck,
			Kind:       KindCount,
			Pattern:    `(?m)\bFound[ \t]+(\d+)[ \t]+errors?(?:[ \t]+in\b|\.[ \t]+Watching|[ \t]*$)`,
			Defer:      DomainLint,
			Type:       TypecheckFail,
			Confidence: 0.9,
		},
		{
			Name:       "mypy-error",
			Domain:     DomainTypecheck,
			Kind:       KindRegex,
			Pattern:    `(?m)^[ \t]*\S+\.pyi?:\d+:(?:\d+:)?[ \t]+error:`,
			Type:       TypecheckFail,
			Confidence: 0.9,
		},
		{
			Name:       "pyright-errors",
			Domain:     DomainTypecheck,
			Kind:       KindCount,
			Pattern:    `\b(\d+)[ \t]+errors?,[ \t]+\d+[ \t]+warnings?,[ \t]+\d+[ \t]+informations?`,
			Type:       TypecheckFail,
			Confidence: 0.9,
		},
		{
			Name:       "found-zero-errors",
			Domain:     DomainTypecheck,
			Kind:       KindCount,
			Pattern:    `(?m)\bFound[ \t]+(\d+)[ \t]+errors?(?:[ \t]+in\b|\.[ \t]+Watching|\.?[ \t]*$)`,
			Count:      CountZero,
			Defer:      DomainLint,
			Type:       TypecheckPass,
			Confidence: 0.9,
		},
		{
			Name:       "mypy-success",
			Domain:     DomainTypecheck,
			Kind:       KindRegex,
			Pattern:    `\bSuccess:[ \t]+no issues found`,
			Type:       TypecheckPass,
			Confidence: 0.95,
		},
		{
			Name:       "pyright-clean",
			Domain:     DomainTypecheck,
			Kind:       KindCount,
			Pattern:    `\b(\d+)[ \t]+errors?,[ \t]+\d+[ \t]+warnings?,[ \t]+\d+[ \t]+informations?`,
			Count:      CountZero,
			Type:       TypecheckPass,
			Confidence: 0.9,
		},
	}
}

func lintRules() []Rule {
	return []Rule{
		{
			Name:       "eslint-problems",
			Domain:     DomainLint,
			Kind:       KindCount,
			Pattern:    `✖[ \t]+(\d+)[ \t]+problems?`,
			Type:       LintFail,
			Confidence: 0.95,
		},
		{
			Name:       "ruff-found",
			Domain:     DomainLint,
			Kind:       KindCount,
			Pattern:    `\bFound[ \t]+(\d+)[ \t]+errors?\b`,
			Type:       LintFail,
			Confidence: 0.85,
		},
		{
			Name:          "lint-code-location",
			Domain:        DomainLint,
			Kind:          KindRegex,
			Pattern:       `(?m)^[ \t]*\S+:\d+:\d+:[ \t]+[A-Z]{1,3}\d{3,4}\b`,
			CaseSensitive: true,
			Type:          LintFail,
			Confidence:    0.85,
		},
		{
			Name:       "eslint-stylish-error",
			Domain:     DomainLint,
			Kind:       KindRegex,
			Pattern:    `(?m)^[ \t]+\d+:\d+[ \t]+error[ \t]+\S`,
			Type:       LintFail,
			Confidence: 0.8,
		},
		{
			Name:       "golangci-issues",
			Domain:     DomainLint,
			Kind:       KindCount,
			Pattern:    `(?m)^[ \t]*(\d+)[ \t]+issues?[.:]`,
			Type:       LintFail,
			Confidence: 0.8,
		},
		{
			Name:       "all-files-pass",
			Domain:     DomainLint,
			Kind:       KindLiteral,
			Pattern:    "All files pass linting",
			Type:       LintPass,
			Confidence: 0.95,
		},
		{
			Name:       "all-checks-passed",
			Domain:     DomainLint,
			Kind:       KindLiteral,
			Pattern:    "All checks passed",
			Type:       LintPass,
			Confidence: 0.95,
		},
		{
			Name:       "ruff-clean",
			Domain:     DomainLint,
			Kind:       KindCount,
			Pattern:    `\bFound[ \t]+(\d+)[ \t]+errors?\b`,
			Count:      CountZero,
			Type:       LintPass,
			Confidence: 0.85,
		},
		{
			Name:       "no-problems",
			Domain:     DomainLint,
			Kind:       KindRegex,
			Pattern:    `✔[ \t]+No[ \t]+(?:ESLint[ \t]+)?(?:problems|issues|warnings)`,
			Type:       LintPass,
			Confidence: 0.9,
		},
		{
			Name:       "golangci-clean",
			Domain:     DomainLint,
			Kind:       KindCount,
			Pattern:    `(?m)^[ \t]*(\d+)[ \t]+issues?[.:]`,
			Count:      CountZero,
			Type:       LintPass,
			Confidence: 0.85,
		},
		{
			Name:       "pylint-perfect",
			Domain:     DomainLint,
			Kind:       KindRegex,
			Pattern:    `rated at 10(?:\.0+)?/10`,
			Type:       LintPass,
			Confidence: 0.85,
		},
		{
			Name:       "no-lint-errors",
			Domain:     DomainLint,
			Kind:       KindRegex,
			Pattern:    `\bno[ \t]+lint(?:ing)?[ \t]+(?:errors|issues|problems)\b`,
			Type:       LintPass,
			Confidence: 0.8,
		},
	}
}

func installRules() []Rule {
	return []Rule{
		{
			Name:       "pip-unresolvable",
			Domain:     DomainInstall,
			Kind:       KindRegex,
			Pattern:    `Could not find a version that satisfies|No matching distribution found`,
			Type:       InstallFail,
			Confidence: 0.95,
		},
		{
			Name:       "npm-resolve-error",
			Domain:     DomainInstall,
			Kind:       KindRegex,
			Pattern:    `\b(?:ERESOLVE|ETARGET|E404)\b|No matching version found|unable to resolve dependency tree|Could not resolve dependency`,
			Type:       InstallFail,
			Confidence: 0.9,
		},
		{
			Name:          "pnpm-error",
			Domain:        DomainInstall,
			Kind:          KindRegex,
			Pattern:       `\bERR_PNPM_[A-Z_]+`,
			CaseSensitive: true,
			Type:          InstallFail,
			Confidence:    0.9,
		},
		{
			Name:       "install-failed",
			Domain:     DomainInstall,
			Kind:       KindRegex,
			Pattern:    `\b(?:failed to install|installation failed|could not install packages)\b`,
			Type:       InstallFail,
			Confidence: 0.85,
		},
		{
			Name:       "pip-installed",
			Domain:     DomainInstall,
			Kind:       KindLiteral,
			Pattern:    "Successfully installed",
			Type:       InstallSuccess,
			Confidence: 0.95,
		},
		{
			Name:       "added-packages",
			Domain:     DomainInstall,
			Kind:       KindRegex,
			Pattern:    `\b(?:added|installed)[ \t]+\d+[ \t]+packages?\b`,
			Type:       InstallSuccess,
			Confidence: 0.9,
		},
		{
			Name:       "up-to-date-audited",
			Domain:     DomainInstall,
			Kind:       KindRegex,
			Pattern:    `\bup to date,?[ \t]+audited[ \t]+\d+[ \t]+packages?`,
			Type:       InstallSuccess,
			Confidence: 0.85,
		},
		{
			Name:       "yarn-success",
			Domain:     DomainInstall,
			Kind:       KindRegex,
			Pattern:    `\bsuccess[ \t]+(?:Saved lockfile|Already up-to-date)`,
			Type:       InstallSuccess,
			Confidence: 0.85,
		},
		{
			Name:       "pnpm-packages",
			Domain:     DomainInstall,
			Kind:       KindRegex,
			Pattern:    `\bPackages:[ \t]+\+\d+`,
			Type:       InstallSuccess,
			Confidence: 0.8,
		},
		{
			Name:       "zero-vulnerabilities",
			Domain:     DomainInstall,
			Kind:       KindCount,
			Pattern:    `\bfound[ \t]+(\d+)[ \t]+vulnerabilit(?:y|ies)\b`,
			Count:      CountZero,
			Type:       InstallSuccess,
			Confidence: 0.7,
		},
		{
			Name:       "go-module-added",
			Domain:     DomainInstall,
			Kind:       KindRegex,
			Pattern:    `(?m)^go: added \S+`,
			Type:       InstallSuccess,
			Confidence: 0.7,
		},
	}
}

func serverRules() []Rule {
	return []Rule{
		{
			Name:       "dev-server-ready",
			Domain:     DomainServer,
			Kind:       KindSequence,
			Pattern:    `\bStarting[ \t]+(?:the[ \t]+)?(?:development[ \t]+|dev[ \t]+)?server\b`,
			Confirm:    `(?:Local|Network):[ \t]+https?://|You can now view|\b(?:listening|running)[ \t]+(?:on|at)\b|\bready in\b|Compiled successfully|started server on`,
			Type:       ServerStart,
			Confidence: 0.95,
		},
		{
			Name:       "view-in-browser",
			Domain:     DomainServer,
			Kind:       KindRegex,
			Pattern:    `You can now view[ \t]+\S+[ \t]+in the browser`,
			Type:       ServerStart,
			Confidence: 0.9,
		},
		{
			Name:       "django-runserver",
			Domain:     DomainServer,
			Kind:       KindRegex,
			Pattern:    `Starting development server at https?://`,
			Type:       ServerStart,
			Confidence: 0.9,
		},
		{
			Name:       "uvicorn-running",
			Domain:     DomainServer,
			Kind:       KindRegex,
			Pattern:    `Uvicorn running on https?://`,
			Type:       ServerStart,
			Confidence: 0.9,
		},
		{
			Name:       "local-url",
			Domain:     DomainServer,
			Kind:       KindRegex,
			Pattern:    `\b(?:Local|Network):[ \t]+https?://`,
			Type:       ServerStart,
			Confidence: 0.85,
		},
		{
			Name:       "listening-on",
			Domain:     DomainServer,
			Kind:       KindRegex,
			Pattern:    `\b(?:listening|running|started)[ \t]+(?:on|at)[ \t]+(?:https?://|port[ \t]+\d+|[\w.-]*:\d{2,5}\b)`,
			Type:       ServerStart,
			Confidence: 0.85,
		},
		{
			Name:       "started-server-on",
			Domain:     DomainServer,
			Kind:       KindLiteral,
			Pattern:    "started server on",
			Type:       ServerStart,
			Confidence: 0.85,
		},
		{
			Name:       "ready-in",
			Domain:     DomainServer,
			Kind:       KindRegex,
			Pattern:    `\bready in[ \t]+\d+(?:\.\d+)?[ \t]*m?s\b`,
			Type:       ServerStart,
			Confidence: 0.8,
		},
		{
			Name:       "startup-complete",
			Domain:     DomainServer,
			Kind:       KindLiteral,
			Pattern:    "Application startup complete",
			Type:       ServerStart,
			Confidence: 0.8,
		},
	}
}

func buildRules() []Rule {
	return []Rule{
		// --- Specific failures ---
		{
			Name:       "compiled-with-errors",
			Domain:     DomainBuild,
			Kind:       KindCount,
			Pattern:    `\bcompiled with[ \t]+(\d+)[ \t]+errors?`,
			Type:       BuildFail,
			Confidence: 0.95,
		},
		{
			Name:       "failed-to-compile",
			Domain:     DomainBuild,
			Kind:       KindRegex,
			Pattern:    `\bFailed to compile\b|\bcould not compile\b`,
			Type:       BuildFail,
			Confidence: 0.95,
		},
		{
			Name:       "build-failed",
			Domain:     DomainBuild,
			Kind:       KindRegex,
			Pattern:    `\bbuild (?:failed|failure)\b`,
			Type:       BuildFail,
			Confidence: 0.9,
		},
		{
			Name:       "compilation-failed",
			Domain:     DomainBuild,
			Kind:       KindRegex,
			Pattern:    `\bcompilation (?:failed|error)\b`,
			Type:       BuildFail,
			Confidence: 0.9,
		},
		{
			Name:          "webpack-error-in",
			Domain:        DomainBuild,
			Kind:          KindRegex,
			Pattern:       `(?m)^[ \t]*ERROR in\b`,
			CaseSensitive: true,
			Type:          BuildFail,
			Confidence:    0.9,
		},
		{
			Name:          "rustc-error",
			Domain:        DomainBuild,
			Kind:          KindRegex,
			Pattern:       `(?m)^[ \t]*error\[E\d{4}\]`,
			CaseSensitive: true,
			Type:          BuildFail,
			Confidence:    0.9,
		},
		{
			Name:       "make-error",
			Domain:     DomainBuild,
			Kind:       KindRegex,
			Pattern:    `(?m)^make(?:\[\d+\])?: \*\*\*`,
			Type:       BuildFail,
			Confidence: 0.9,
		},
		{
			Name:       "compiler-error",
			Domain:     DomainBuild,
			Kind:       KindRegex,
			Pattern:    `(?m)^[ \t]*\S+\.(?:c|cc|cpp|h|hpp|java|kt|swift|rs):\d+(?::\d+)?:[ \t]+(?:fatal )?error:`,
			Type:       BuildFail,
			Confidence: 0.9,
		},
		{
			Name:       "go-compile-error",
			Domain:     DomainBuild,
			Kind:       KindRegex,
			Pattern:    `(?m)^[ \t]*\S+\.go:\d+:\d+:[ \t]`,
			Exclude:    `\(\w+\)[ \t]*$`,
			Type:       BuildFail,
			Confidence: 0.85,
		},
		{
			Name:       "errors-generated",
			Domain:     DomainBuild,
			Kind:       KindCount,
			Pattern:    `\b(\d+)[ \t]+errors?[ \t]+generated`,
			Type:       BuildFail,
			Confidence: 0.85,
		},

		// --- Specific successes ---
		{
			Name:       "compiled-successfully",
			Domain:     DomainBuild,
			Kind:       KindLiteral,
			Pattern:    "compiled successfully",
			Type:       BuildSuccess,
			Confidence: 0.9,
		},
		{
			Name:       "build-succeeded",
			Domain:     DomainBuild,
			Kind:       KindRegex,
			Pattern:    `\bbuild (?:succeeded|successful(?:ly)?|complete[d]?)\b|\bBUILD SUCCESS(?:FUL)?\b`,
			Type:       BuildSuccess,
			Confidence: 0.9,
		},
		{
			Name:       "cargo-finished",
			Domain:     DomainBuild,
			Kind:       KindRegex,
			Pattern:    `(?m)^[ \t]*Finished[ \t].*\btarget\(s\)[ \t]+in[ \t]`,
			Type:       BuildSuccess,
			Confidence: 0.9,
		},
		{
			Name:       "zero-errors",
			Domain:     DomainBuild,
			Kind:       KindCount,
			Pattern:    `\b(\d+)[ \t]+errors?\b`,
			Count:      CountZero,
			Type:       BuildSuccess,
			Confidence: 0.8,
		},
		{
			Name:       "built-in",
			Domain:     DomainBuild,
			Kind:       KindRegex,
			Pattern:    `\b(?:built|bundled|compiled)[ \t]+in[ \t]+\d+(?:\.\d+)?[ \t]*m?s\b`,
			Type:       BuildSuccess,
			Confidence: 0.8,
		},

		// --- Broad fallback ---
		{
			Name:       "error-word",
			Domain:     DomainBuild,
			Kind:       KindRegex,
			Pattern:    `\berrors?\b`,
			Exclude:    `\b(?:0|no|zero)[ \t]+errors?\b|\berrors?[ \t]*[:=][ \t]*0\b|\berrors?\.\w|\bwithout errors?\b`,
			Unless:     `\b0[ \t]+errors?\b|\berrors?[ \t]*[:=][ \t]*0\b`,
			Type:       BuildFail,
			Confidence: 0.6,
		},
	}
}

func genericRules() []Rule {
	return []Rule{
		{
			Name:       "go-panic",
			Domain:     DomainGeneric,
			Kind:       KindRegex,
			Pattern:    `(?m)^panic: `,
			Failure:    true,
			Confidence: 0.8,
		},
		{
			Name:       "segfault",
			Domain:     DomainGeneric,
			Kind:       KindRegex,
			Pattern:    `\bsegmentation fault\b|\bcore dumped\b`,
			Failure:    true,
			Confidence: 0.8,
		},
		{
			Name:       "command-not-found",
			Domain:     DomainGeneric,
			Kind:       KindRegex,
			Pattern:    `\bcommand not found\b|is not recognized as an internal or external command`,
			Failure:    true,
			Confidence: 0.8,
		},
		{
			Name:          "python-traceback",
			Domain:        DomainGeneric,
			Kind:          KindLiteral,
			Pattern:       "Traceback (most recent call last)",
			CaseSensitive: true,
			Failure:       true,
			Confidence:    0.75,
		},
		{
			Name:          "npm-error",
			Domain:        DomainGeneric,
			Kind:          KindRegex,
			Pattern:       `(?m)^npm (?:ERR!|error)[ \t]`,
			CaseSensitive: true,
			Failure:       true,
			Confidence:    0.7,
		},
		{
			Name:       "exit-nonzero",
			Domain:     DomainGeneric,
			Kind:       KindCount,
			Pattern:    `\bexit(?:ed)?[ \t]+(?:with[ \t]+)?(?:status|code)[ \t]+(\d+)`,
			Failure:    true,
			Confidence: 0.7,
		},
		{
			Name:          "fatal",
			Domain:        DomainGeneric,
			Kind:          KindRegex,
			Pattern:       `(?m)^[ \t]*(?:fatal|FATAL)(?::|[ \t]+error)`,
			CaseSensitive: true,
			Failure:       true,
			Confidence:    0.65,
		},
		{
			Name:       "done-in",
			Domain:     DomainGeneric,
			Kind:       KindRegex,
			Pattern:    `\bDone in[ \t]+\d+(?:\.\d+)?[ \t]*m?s\b`,
			Confidence: 0.6,
		},
		{
			Name:       "exit-zero",
			Domain:     DomainGeneric,
			Kind:       KindCount,
			Pattern:    `\bexit(?:ed)?[ \t]+(?:with[ \t]+)?(?:status|code)[ \t]+(\d+)`,
			Count:      CountZero,
			Confidence: 0.6,
		},
	}
}
