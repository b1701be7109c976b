package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/outcomed/internal/events"
	"github.com/fyrsmithlabs/outcomed/internal/execution"
	"github.com/fyrsmithlabs/outcomed/internal/intent"
	"github.com/fyrsmithlabs/outcomed/internal/logging"
	"github.com/fyrsmithlabs/outcomed/internal/sanitize"
	"github.com/fyrsmithlabs/outcomed/internal/secrets"
	"github.com/fyrsmithlabs/outcomed/internal/transcript"
)

const instrumentationName = "github.com/fyrsmithlabs/outcomed/internal/analysis"

// Service runs analyses. It is safe for concurrent use.
type Service struct {
	extractor  *execution.Extractor
	aggregator *intent.Aggregator
	parser     *transcript.Parser

	logger    *logging.Logger
	tracer    trace.Tracer
	metrics   *Metrics
	publisher events.Publisher
	scrubber  secrets.Scrubber
	newID     func() string
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithExtractor sets the execution engine.
func WithExtractor(e *execution.Extractor) Option {
	return func(s *Service) { s.extractor = e }
}

// WithAggregator sets the conversation engine; its scorer also serves
// single-phrase detection.
func WithAggregator(a *intent.Aggregator) Option {
	return func(s *Service) { s.aggregator = a }
}

// WithParser sets the transcript parser.
func WithParser(p *transcript.Parser) Option {
	return func(s *Service) { s.parser = p }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithTracer sets the tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPublisher sets the event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithScrubber sets the secret scrubber applied to signal excerpts.
func WithScrubber(sc secrets.Scrubber) Option {
	return func(s *Service) { s.scrubber = sc }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// New returns a Service. Unset dependencies default to the built-in engines,
// a nop logger, the global tracer, DefaultMetrics, no events and no
// redaction.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = execution.NewExtractor(nil)
	}
	if s.aggregator == nil {
		s.aggregator = intent.NewAggregator(nil)
	}
	if s.parser == nil {
		s.parser = transcript.NewParser()
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(instrumentationName)
	}
	if s.metrics == nil {
		s.metrics = DefaultMetrics()
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.scrubber == nil {
		s.scrubber = secrets.NoopScrubber{}
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.NewString() }
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.logger = s.logger.Named("analysis")
	return s
}

// Rules lists the execution rules in effect.
func (s *Service) Rules() []execution.Rule {
	return s.extractor.Library().Rules()
}

// AnalyzeOutput extracts signals from output and aggregates them into a
// verdict. It never fails; output with no evidence yields no signals and a
// neutral failure verdict.
func (s *Service) AnalyzeOutput(ctx context.Context, output, command string) ExecutionReport {
	id := s.newID()
	ctx = logging.WithAnalysisID(ctx, id)
	ctx, span := s.tracer.Start(ctx, "outcome.analyze_output", trace.WithAttributes(
		attribute.String("analysis.id", id),
		attribute.Int("output.bytes", len(output)),
	))
	defer span.End()
	start := time.Now()

	report := s.analyzeOutput(ctx, id, output, command)

	s.metrics.Analyses.WithLabelValues(kindOutput).Inc()
	s.metrics.Duration.WithLabelValues(kindOutput).Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.String("command", report.Command),
		attribute.Int("signals.count", len(report.Signals)),
		attribute.Bool("verdict.success", report.Verdict.Success),
		attribute.Float64("verdict.confidence", report.Verdict.Confidence),
	)
	s.publish(ctx, events.KindVerdict, "", report)
	return report
}

func (s *Service) analyzeOutput(ctx context.Context, id, output, command string) ExecutionReport {
	signals := s.extractor.AnalyzeOutput(output, command)
	command, redactions := s.scrub(command)
	redactions += s.redact(signals)
	verdict := execution.CalculateOverallSuccess(signals)

	for _, sig := range signals {
		s.metrics.Signals.WithLabelValues(string(sig.Type)).Inc()
		s.logger.Trace(ctx, "signal extracted",
			zap.String("signal_type", string(sig.Type)),
			zap.String("rule", sig.Rule),
			zap.Float64("confidence", sig.Confidence),
		)
	}
	s.metrics.Verdicts.WithLabelValues(verdictLabel(verdict.Success)).Inc()
	if redactions > 0 {
		s.metrics.Redactions.Add(float64(redactions))
	}

	s.logger.Debug(ctx, "output analyzed",
		zap.String("command", command),
		zap.Int("signals", len(signals)),
		zap.Bool("is_success", verdict.Success),
		zap.Float64("confidence", verdict.Confidence),
		zap.Int("redactions", redactions),
	)
	return ExecutionReport{
		ID:         id,
		Command:    command,
		Signals:    signals,
		Verdict:    verdict,
		Redactions: redactions,
	}
}

// redact scrubs Details and Context of each signal in place and returns the
// number of findings.
func (s *Service) redact(signals []execution.Signal) int {
	total := 0
	for i := range signals {
		for _, field := range []*string{&signals[i].Details, &signals[i].Context} {
			var n int
			*field, n = s.scrub(*field)
			total += n
		}
	}
	return total
}

// scrub returns text with secrets replaced and the number of findings.
func (s *Service) scrub(text string) (string, int) {
	if text == "" || !s.scrubber.IsEnabled() {
		return text, 0
	}
	res := s.scrubber.Scrub(text)
	if !res.HasFindings() {
		return text, 0
	}
	return res.Scrubbed, len(res.Findings)
}

// DetectIntent classifies a single phrase.
func (s *Service) DetectIntent(ctx context.Context, phrase string) IntentReport {
	id := s.newID()
	ctx = logging.WithAnalysisID(ctx, id)
	ctx, span := s.tracer.Start(ctx, "intent.detect", trace.WithAttributes(
		attribute.String("analysis.id", id),
		attribute.Int("phrase.length", len(phrase)),
	))
	defer span.End()
	start := time.Now()

	detail := s.aggregator.Scorer().Analyze(phrase)

	s.metrics.Analyses.WithLabelValues(kindIntent).Inc()
	s.metrics.Duration.WithLabelValues(kindIntent).Observe(time.Since(start).Seconds())
	s.metrics.Intents.WithLabelValues(kindIntent, string(detail.Intent)).Inc()
	span.SetAttributes(
		attribute.String("intent.label", string(detail.Intent)),
		attribute.Float64("intent.confidence", detail.Confidence),
		attribute.Int("intent.hits", len(detail.Hits)),
	)
	s.logger.Debug(ctx, "intent detected",
		zap.String("intent", string(detail.Intent)),
		zap.Float64("confidence", detail.Confidence),
		zap.Int("hits", len(detail.Hits)),
	)
	return IntentReport{ID: id, Detail: detail}
}

// AnalyzeConversation aggregates the intent of turns. Invalid roles and
// negative indices are rejected with the intent package's sentinel errors.
func (s *Service) AnalyzeConversation(ctx context.Context, turns []intent.Turn) (ConversationReport, error) {
	id := s.newID()
	ctx = logging.WithAnalysisID(ctx, id)
	ctx, span := s.tracer.Start(ctx, "intent.analyze_conversation", trace.WithAttributes(
		attribute.String("analysis.id", id),
		attribute.Int("turns.count", len(turns)),
	))
	defer span.End()

	report, err := s.analyzeConversation(ctx, id, turns)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn(ctx, "conversation rejected", zap.Error(err))
		return ConversationReport{}, err
	}
	s.publish(ctx, events.KindIntent, "", report)
	return report, nil
}

func (s *Service) analyzeConversation(ctx context.Context, id string, turns []intent.Turn) (ConversationReport, error) {
	start := time.Now()
	a, err := s.aggregator.AnalyzeConversation(turns)
	if err != nil {
		return ConversationReport{}, err
	}

	s.metrics.Analyses.WithLabelValues(kindConversation).Inc()
	s.metrics.Duration.WithLabelValues(kindConversation).Observe(time.Since(start).Seconds())
	s.metrics.Intents.WithLabelValues(kindConversation, string(a.Overall)).Inc()
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("intent.overall", string(a.Overall)),
		attribute.Float64("intent.confidence", a.Confidence),
		attribute.Int("turns.scored", len(a.Turns)),
	)
	s.logger.Debug(ctx, "conversation analyzed",
		zap.String("overall_intent", string(a.Overall)),
		zap.Float64("confidence", a.Confidence),
		zap.Int("scored_turns", len(a.Turns)),
	)
	return ConversationReport{ID: id, Analysis: a}, nil
}

// AnalyzeSession parses the transcript at path and analyzes every shell
// command and the user's side of the conversation.
func (s *Service) AnalyzeSession(ctx context.Context, path string) (SessionReport, error) {
	sess, err := s.parser.Parse(path)
	if err != nil {
		return SessionReport{}, fmt.Errorf("parse transcript: %w", err)
	}
	return s.AnalyzeParsedSession(ctx, sess)
}

// AnalyzeSessionReader is AnalyzeSession over an open transcript stream.
func (s *Service) AnalyzeSessionReader(ctx context.Context, r io.Reader, sessionID string) (SessionReport, error) {
	sess, err := s.parser.ParseReader(r, sessionID)
	if err != nil {
		return SessionReport{}, fmt.Errorf("parse transcript: %w", err)
	}
	return s.AnalyzeParsedSession(ctx, sess)
}

// AnalyzeParsedSession analyzes an already parsed transcript. Commands
// still awaiting their result are reported but contribute no signals.
func (s *Service) AnalyzeParsedSession(ctx context.Context, sess *transcript.Session) (SessionReport, error) {
	id := s.newID()
	ctx = logging.WithAnalysisID(ctx, id)
	// Transcript session IDs are untrusted; keep them within the log ID alphabet.
	ctx = logging.WithSessionID(ctx, sanitize.Identifier(sess.ID))
	ctx, span := s.tracer.Start(ctx, "session.analyze", trace.WithAttributes(
		attribute.String("analysis.id", id),
		attribute.String("session.id", sess.ID),
		attribute.Int("session.turns", len(sess.Turns)),
		attribute.Int("session.commands", len(sess.Commands)),
	))
	defer span.End()
	start := time.Now()

	report := SessionReport{
		ID:          id,
		SessionID:   sess.ID,
		Commands:    make([]CommandReport, 0, len(sess.Commands)),
		ParseErrors: sess.ErrorCount,
	}

	var all []execution.Signal
	for _, cmd := range sess.Commands {
		shown, _ := s.scrub(cmd.Command)
		cr := CommandReport{
			ToolUseID: cmd.ToolUseID,
			Command:   shown,
			TurnIndex: cmd.TurnIndex,
			Completed: cmd.Completed,
			IsError:   cmd.IsError,
		}
		if cmd.Completed {
			cr.Report = s.analyzeOutput(ctx, s.newID(), cmd.Output, cmd.Command)
			all = append(all, cr.Report.Signals...)
		} else {
			cr.Report = ExecutionReport{ID: s.newID(), Command: shown, Signals: []execution.Signal{}}
		}
		report.Commands = append(report.Commands, cr)
	}
	report.SignalCount = len(all)
	report.Verdict = execution.CalculateOverallSuccess(all)

	conv, err := s.analyzeConversation(ctx, s.newID(), sess.Turns)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SessionReport{}, fmt.Errorf("session %s: %w", sess.ID, err)
	}
	report.Conversation = conv

	s.metrics.Analyses.WithLabelValues(kindSession).Inc()
	s.metrics.Duration.WithLabelValues(kindSession).Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("signals.count", report.SignalCount),
		attribute.Bool("verdict.success", report.Verdict.Success),
		attribute.String("intent.overall", string(conv.Overall)),
	)
	s.logger.Info(ctx, "session analyzed",
		zap.Int("commands", len(report.Commands)),
		zap.Int("signals", report.SignalCount),
		zap.Bool("is_success", report.Verdict.Success),
		zap.String("overall_intent", string(conv.Overall)),
		zap.Int("parse_errors", report.ParseErrors),
	)

	s.publish(ctx, events.KindVerdict, sess.ID, report)
	s.publish(ctx, events.KindIntent, sess.ID, conv)
	return report, nil
}

// publish sends payload as an event. Failures are logged and counted.
func (s *Service) publish(ctx context.Context, kind events.Kind, sessionID string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(ctx, "encoding event payload", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	ev := events.Event{
		ID:        s.newID(),
		Kind:      kind,
		Timestamp: s.now().UTC(),
		SessionID: sessionID,
		Payload:   data,
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.metrics.PublishFailures.WithLabelValues(string(kind)).Inc()
		s.logger.Warn(ctx, "event publish failed", zap.String("kind", string(kind)), zap.Error(err))
	}
}

// Close releases the event publisher.
func (s *Service) Close() error {
	return s.publisher.Close()
}
