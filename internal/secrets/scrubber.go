package secrets

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	gitleaksConfig "github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
	gitleaksRegexp "github.com/zricethezav/gitleaks/v8/regexp"
)

// Scrubber detects and redacts secrets from content.
type Scrubber interface {
	// Scrub redacts secrets from the content.
	Scrub(content string) *Result

	// IsEnabled returns whether scrubbing is enabled.
	IsEnabled() bool
}

// scrubber wraps a gitleaks detector. The detector is not documented as
// safe for concurrent use, so calls are serialized.
type scrubber struct {
	mu       sync.Mutex
	detector *detect.Detector
}

// New builds a Scrubber from cfg. A disabled config returns a NoopScrubber.
func New(cfg Config) (Scrubber, error) {
	if !cfg.Enabled {
		return NoopScrubber{}, nil
	}

	allowlist, err := LoadAllowlist(cfg.AllowlistFile)
	if err != nil {
		return nil, err
	}

	detector, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("creating gitleaks detector: %w", err)
	}
	if err := applyAllowlist(&detector.Config, allowlist); err != nil {
		return nil, err
	}

	return &scrubber{detector: detector}, nil
}

// Scrub replaces every detected secret with a [REDACTED:<rule-id>] marker.
func (s *scrubber) Scrub(content string) *Result {
	result := &Result{Scrubbed: content, Findings: make([]Finding, 0)}
	if content == "" {
		return result
	}

	s.mu.Lock()
	found := s.detector.DetectString(content)
	s.mu.Unlock()
	if len(found) == 0 {
		return result
	}

	// Replace longer secrets first so a secret that contains another is
	// not split by the shorter marker.
	sort.SliceStable(found, func(i, j int) bool { return len(found[i].Secret) > len(found[j].Secret) })

	result.ByRule = make(map[string]int)
	scrubbed := content
	for _, f := range found {
		result.Findings = append(result.Findings, Finding{
			RuleID:      f.RuleID,
			Description: f.Description,
			Line:        f.StartLine,
			StartCol:    f.StartColumn,
			EndCol:      f.EndColumn,
		})
		result.ByRule[f.RuleID]++
		if f.Secret != "" {
			scrubbed = strings.ReplaceAll(scrubbed, f.Secret, "[REDACTED:"+f.RuleID+"]")
		}
	}
	sort.SliceStable(result.Findings, func(i, j int) bool {
		if result.Findings[i].Line != result.Findings[j].Line {
			return result.Findings[i].Line < result.Findings[j].Line
		}
		return result.Findings[i].StartCol < result.Findings[j].StartCol
	})
	result.Scrubbed = scrubbed
	return result
}

// IsEnabled returns true.
func (s *scrubber) IsEnabled() bool {
	return true
}

// applyAllowlist merges allowlist patterns into the gitleaks config.
func applyAllowlist(cfg *gitleaksConfig.Config, allowlist *Allowlist) error {
	if len(allowlist.Regexes) == 0 && len(allowlist.StopWords) == 0 {
		return nil
	}

	global := &gitleaksConfig.Allowlist{Description: "outcomed allowlist"}
	for _, pattern := range allowlist.Regexes {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidRegex, pattern, err)
		}
		global.Regexes = append(global.Regexes, (*gitleaksRegexp.Regexp)(re))
	}
	global.StopWords = append(global.StopWords, allowlist.StopWords...)

	cfg.Allowlists = append(cfg.Allowlists, global)
	return nil
}

// NoopScrubber returns content unchanged.
type NoopScrubber struct{}

// Scrub returns content unchanged.
func (NoopScrubber) Scrub(content string) *Result {
	return &Result{Scrubbed: content, Findings: make([]Finding, 0)}
}

// IsEnabled returns false.
func (NoopScrubber) IsEnabled() bool {
	return false
}

var (
	_ Scrubber = (*scrubber)(nil)
	_ Scrubber = NoopScrubber{}
)
