package execution

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// ruleFile is the on-disk layout of a rule override file:
//
//	[[rule]]
//	name = "pnpm-frozen-lockfile"
//	domain = "install"
//	kind = "literal"
//	pattern = "ERR_PNPM_OUTDATED_LOCKFILE"
//	signal_type = "install_fail"
//	confidence = 0.95
type ruleFile struct {
	Rules []Rule `toml:"rule"`
}

// LoadRuleFile reads override rules from a TOML file. Every rule is
// compiled before returning so a bad pattern fails at startup rather than
// on first use.
func LoadRuleFile(path string) ([]Rule, error) {
	var f ruleFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRuleFile, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalidRuleFile, path, strings.Join(keys, ", "))
	}

	for _, r := range f.Rules {
		if _, err := compileRule(r); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return f.Rules, nil
}

// LoadLibrary returns DefaultLibrary extended with the rules in path. An
// empty path returns DefaultLibrary unchanged.
func LoadLibrary(path string) (*Library, error) {
	if path == "" {
		return DefaultLibrary(), nil
	}
	overrides, err := LoadRuleFile(path)
	if err != nil {
		return nil, err
	}
	return DefaultLibrary().Extend(overrides)
}
