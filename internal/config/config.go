// Package config loads outcomed configuration from YAML and the environment.
//
// Sections owned by other packages (logging, telemetry) are decoded on
// demand with Config.Section so those packages can depend on this one.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/v2"
)

// Config holds the complete outcomed configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Rules     RulesConfig     `koanf:"rules"`
	Intent    IntentConfig    `koanf:"intent"`
	Events    EventsConfig    `koanf:"events"`
	Redaction RedactionConfig `koanf:"redaction"`
	MCP       MCPConfig       `koanf:"mcp"`

	k *koanf.Koanf
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string          `koanf:"host"`
	Port            int             `koanf:"port"`
	ShutdownTimeout Duration        `koanf:"shutdown_timeout"`
	BodyLimit       string          `koanf:"body_limit"`
	RateLimit       RateLimitConfig `koanf:"rate_limit"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RateLimitConfig configures per-client request limiting. Zero RPS disables
// it.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// RulesConfig points at optional TOML override files.
type RulesConfig struct {
	ExecutionFile string `koanf:"execution_file"`
	LexiconFile   string `koanf:"lexicon_file"`
}

// IntentConfig tunes intent scoring and conversation weighting.
type IntentConfig struct {
	NegationWindow int     `koanf:"negation_window"`
	Weighting      string  `koanf:"weighting"`
	WeightBase     float64 `koanf:"weight_base"`
}

// EventsConfig configures NATS publishing of analysis results.
type EventsConfig struct {
	Enabled       bool     `koanf:"enabled"`
	URL           string   `koanf:"url"`
	Token         Secret   `koanf:"token"`
	SubjectPrefix string   `koanf:"subject_prefix"`
	Timeout       Duration `koanf:"timeout"`
}

// RedactionConfig configures secret scrubbing of output excerpts.
type RedactionConfig struct {
	Enabled       bool   `koanf:"enabled"`
	AllowlistFile string `koanf:"allowlist_file"`
}

// MCPConfig configures the MCP stdio server.
type MCPConfig struct {
	// TranscriptRoot confines analyze_session to transcripts under this
	// directory. Empty allows any readable .jsonl file.
	TranscriptRoot string `koanf:"transcript_root"`
}

// Section decodes the subtree at path into out. Paths that are not present
// leave out untouched, so callers pass a struct pre-filled with defaults.
func (c *Config) Section(path string, out any) error {
	if c.k == nil || !c.k.Exists(path) {
		return nil
	}
	if err := c.k.Unmarshal(path, out); err != nil {
		return fmt.Errorf("decoding %s config: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port))
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Server.RateLimit.RPS < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit.rps must not be negative, got %v", c.Server.RateLimit.RPS))
	}
	if c.Server.RateLimit.RPS > 0 && c.Server.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("server.rate_limit.burst must be at least 1 when rate limiting is enabled"))
	}

	if c.Intent.NegationWindow < 0 {
		errs = append(errs, fmt.Errorf("intent.negation_window must not be negative, got %d", c.Intent.NegationWindow))
	}
	switch strings.ToLower(c.Intent.Weighting) {
	case "linear", "exponential":
	default:
		errs = append(errs, fmt.Errorf("intent.weighting must be linear or exponential, got %q", c.Intent.Weighting))
	}
	if c.Intent.WeightBase < 1 {
		errs = append(errs, fmt.Errorf("intent.weight_base must be at least 1, got %v", c.Intent.WeightBase))
	}

	if c.Events.Enabled {
		if c.Events.URL == "" {
			errs = append(errs, errors.New("events.url is required when events are enabled"))
		}
		if c.Events.SubjectPrefix == "" || strings.ContainsAny(c.Events.SubjectPrefix, " *>") {
			errs = append(errs, fmt.Errorf("events.subject_prefix %q is not a valid NATS subject prefix", c.Events.SubjectPrefix))
		}
	}

	return errors.Join(errs...)
}
