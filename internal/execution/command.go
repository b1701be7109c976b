package execution

import "regexp"

// commandHint recognizes commands belonging to a domain.
type commandHint struct {
	domain Domain
	regex  *regexp.Regexp
}

// commandHints are evaluated in domain precedence order. A command may
// belong to several domains, e.g. "make test".
var commandHints = []commandHint{
	{
		domain: DomainTest,
		regex:  regexp.MustCompile(`(?i)\b(?:test|tests|pytest|jest|vitest|mocha|rspec|phpunit|ava)\b|\bnpm\s+t\b`),
	},
	{
		domain: DomainTypecheck,
		regex:  regexp.MustCompile(`(?i)\b(?:tsc|typecheck|type-check|mypy|pyright|vue-tsc)\b`),
	},
	{
		domain: DomainLint,
		regex:  regexp.MustCompile(`(?i)\b(?:lint|eslint|ruff|flake8|pylint|golangci-lint|rubocop|stylelint|clippy)\b`),
	},
	{
		domain: DomainInstall,
		regex:  regexp.MustCompile(`(?i)\b(?:npm|pnpm|yarn|bun)\s+(?:install|i|ci|add)\b|\bpip3?\s+install\b|\bpoetry\s+(?:install|add)\b|\bgo\s+(?:get|mod\s+download)\b|\bbundle\s+install\b|\bcargo\s+(?:add|fetch)\b|^\s*(?:yarn|pnpm\s+install)\s*$`),
	},
	{
		domain: DomainServer,
		regex:  regexp.MustCompile(`(?i)\b(?:npm|pnpm|yarn|bun)\s+(?:run\s+)?(?:start|dev|serve|preview)\b|\b(?:uvicorn|gunicorn|nodemon|runserver|http-server)\b|\bflask\s+run\b|\brails\s+s(?:erver)?\b|\bnext\s+(?:dev|start)\b`),
	},
	{
		domain: DomainBuild,
		regex:  regexp.MustCompile(`(?i)\b(?:build|compile|webpack|make|gradle|mvn|rollup|esbuild)\b`),
	},
}

// CommandDomains returns the domains a shell command appears to exercise, in
// precedence order. An empty command has no domains.
func CommandDomains(command string) []Domain {
	if command == "" {
		return nil
	}
	var domains []Domain
	for _, h := range commandHints {
		if h.regex.MatchString(command) {
			domains = append(domains, h.domain)
		}
	}
	return domains
}
