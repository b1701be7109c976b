package hooks

import (
	"fmt"

	"github.com/fyrsmithlabs/outcomed/internal/config"
)

// Config controls which hook events are analyzed and when the result is fed
// back to the model. It is read from the "hooks" section.
type Config struct {
	// ShellTools are the tool names whose PostToolUse output is analyzed.
	ShellTools []string `koanf:"shell_tools"`

	// ContextOnFailure reports failure verdicts back as additional context.
	ContextOnFailure bool `koanf:"context_on_failure"`

	// ContextOnNegative reports negative prompts back as additional context.
	ContextOnNegative bool `koanf:"context_on_negative"`

	// MinConfidence is the verdict or intent confidence (0-1) required before
	// anything is reported back.
	MinConfidence float64 `koanf:"min_confidence"`

	// TranscriptRoot confines session analysis on Stop to transcripts under
	// this directory. Empty allows any readable .jsonl file.
	TranscriptRoot string `koanf:"transcript_root"`
}

// NewDefaultConfig returns the defaults used when no hooks section is set.
func NewDefaultConfig() *Config {
	return &Config{
		ShellTools:        []string{"Bash"},
		ContextOnFailure:  true,
		ContextOnNegative: false,
		MinConfidence:     0.7,
	}
}

// FromConfig overlays the "hooks" section of cfg on the defaults.
func FromConfig(cfg *config.Config) (*Config, error) {
	out := NewDefaultConfig()
	if cfg == nil {
		return out, nil
	}
	if err := cfg.Section("hooks", out); err != nil {
		return nil, err
	}
	return out, out.Validate()
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("hooks.min_confidence must be between 0 and 1, got %v", c.MinConfidence)
	}
	if len(c.ShellTools) == 0 {
		return fmt.Errorf("hooks.shell_tools must name at least one tool")
	}
	return nil
}

func (c *Config) isShellTool(name string) bool {
	for _, t := range c.ShellTools {
		if t == name {
			return true
		}
	}
	return false
}
