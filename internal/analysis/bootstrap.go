package analysis

import (
	"fmt"

	"github.com/fyrsmithlabs/outcomed/internal/config"
	"github.com/fyrsmithlabs/outcomed/internal/events"
	"github.com/fyrsmithlabs/outcomed/internal/execution"
	"github.com/fyrsmithlabs/outcomed/internal/intent"
	"github.com/fyrsmithlabs/outcomed/internal/secrets"
)

// Engines builds the execution and intent engines described by cfg.
func Engines(cfg *config.Config) (*execution.Extractor, *intent.Aggregator, error) {
	lib, err := execution.LoadLibrary(cfg.Rules.ExecutionFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading execution rules: %w", err)
	}

	lex, err := intent.LoadLexicon(cfg.Rules.LexiconFile, cfg.Intent.NegationWindow)
	if err != nil {
		return nil, nil, fmt.Errorf("loading lexicon: %w", err)
	}
	weight, err := intent.ParseWeighting(cfg.Intent.Weighting, cfg.Intent.WeightBase)
	if err != nil {
		return nil, nil, err
	}

	return execution.NewExtractor(lib),
		intent.NewAggregator(intent.NewScorer(lex), intent.WithWeighting(weight)),
		nil
}

// NewFromConfig builds a Service from cfg. Options are applied after the
// configured dependencies, so callers can still override any of them. The
// caller owns the returned Service and must Close it.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Service, error) {
	extractor, aggregator, err := Engines(cfg)
	if err != nil {
		return nil, err
	}

	scrubber, err := secrets.New(secrets.Config{
		Enabled:       cfg.Redaction.Enabled,
		AllowlistFile: cfg.Redaction.AllowlistFile,
	})
	if err != nil {
		return nil, fmt.Errorf("creating scrubber: %w", err)
	}

	publisher, err := events.New(events.Config{
		Enabled:       cfg.Events.Enabled,
		URL:           cfg.Events.URL,
		Token:         cfg.Events.Token.Value(),
		SubjectPrefix: cfg.Events.SubjectPrefix,
		Timeout:       cfg.Events.Timeout.Duration(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating event publisher: %w", err)
	}

	base := []Option{
		WithExtractor(extractor),
		WithAggregator(aggregator),
		WithScrubber(scrubber),
		WithPublisher(publisher),
	}
	return New(append(base, opts...)...), nil
}
