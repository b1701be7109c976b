package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/outcomed/internal/events"
	"github.com/fyrsmithlabs/outcomed/internal/execution"
	"github.com/fyrsmithlabs/outcomed/internal/intent"
	"github.com/fyrsmithlabs/outcomed/internal/logging"
	"github.com/fyrsmithlabs/outcomed/internal/secrets"
	"github.com/fyrsmithlabs/outcomed/internal/telemetry"
)

const (
	jestPass = ` PASS  src/App.test.js
  ✓ renders without crashing (42ms)

Test Suites: 1 passed, 1 total
Tests:       2 passed, 2 total`

	jestFail = ` FAIL  src/App.test.js
  ● renders header › shows title

Tests:       1 failed, 1 total`
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) kinds() []events.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Kind, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Kind
	}
	return out
}

// wordScrubber redacts a fixed word so tests do not depend on gitleaks rules.
type wordScrubber struct{ word string }

func (w wordScrubber) IsEnabled() bool { return true }

func (w wordScrubber) Scrub(content string) *secrets.Result {
	n := strings.Count(content, w.word)
	res := &secrets.Result{Scrubbed: strings.ReplaceAll(content, w.word, "[REDACTED:test]")}
	for i := 0; i < n; i++ {
		res.Findings = append(res.Findings, secrets.Finding{RuleID: "test"})
	}
	return res
}

type fixture struct {
	svc     *Service
	pub     *recordingPublisher
	metrics *Metrics
	tel     *telemetry.TestTelemetry
	logs    *logging.TestLogger
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		pub:     &recordingPublisher{},
		metrics: NewMetrics(prometheus.NewRegistry()),
		tel:     telemetry.NewTestTelemetry(),
		logs:    logging.NewTestLogger(),
	}
	seq := 0
	base := []Option{
		WithPublisher(f.pub),
		WithMetrics(f.metrics),
		WithTracer(f.tel.Tracer("test")),
		WithLogger(f.logs.Logger),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	}
	f.svc = New(append(base, opts...)...)
	return f
}

func TestService_AnalyzeOutput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report := f.svc.AnalyzeOutput(ctx, jestFail, "npm test")

	assert.Equal(t, "id-1", report.ID)
	assert.Equal(t, "npm test", report.Command)
	require.Len(t, report.Signals, 1)
	assert.Equal(t, execution.TestFail, report.Signals[0].Type)
	assert.False(t, report.Verdict.Success)
	assert.Equal(t, report.Signals[0].Confidence, report.Verdict.Confidence)

	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Analyses.WithLabelValues("output")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Verdicts.WithLabelValues("failure")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Signals.WithLabelValues("test_fail")), 0)

	f.tel.AssertSpanExists(t, "outcome.analyze_output")
	v, ok := f.tel.SpanAttribute("outcome.analyze_output", "verdict.success")
	require.True(t, ok)
	assert.False(t, v.AsBool())

	f.logs.AssertField(t, "output analyzed", "analysis.id", "id-1")

	require.Equal(t, []events.Kind{events.KindVerdict}, f.pub.kinds())
	var published ExecutionReport
	require.NoError(t, json.Unmarshal(f.pub.events[0].Payload, &published))
	assert.Equal(t, report.Verdict, published.Verdict)
}

func TestService_AnalyzeOutput_NoEvidence(t *testing.T) {
	f := newFixture(t)

	report := f.svc.AnalyzeOutput(context.Background(), "\x00\xff\xfe binary", "")

	assert.NotNil(t, report.Signals)
	assert.Empty(t, report.Signals)
	assert.Equal(t, execution.Verdict{}, report.Verdict)
}

func TestService_AnalyzeOutput_Redacts(t *testing.T) {
	f := newFixture(t, WithScrubber(wordScrubber{word: "hunter2"}))

	output := " FAIL  src/auth.test.js\n\nTests:       1 failed, 1 total  seed=hunter2"
	report := f.svc.AnalyzeOutput(context.Background(), output, "API_TOKEN=hunter2 npm test")

	require.NotEmpty(t, report.Signals)
	for _, sig := range report.Signals {
		assert.NotContains(t, sig.Details, "hunter2")
		assert.NotContains(t, sig.Context, "hunter2")
	}
	assert.Equal(t, "API_TOKEN=[REDACTED:test] npm test", report.Command)
	assert.GreaterOrEqual(t, report.Redactions, 2)
	assert.InDelta(t, float64(report.Redactions), testutil.ToFloat64(f.metrics.Redactions), 0)
	f.logs.AssertNotContains(t, "hunter2")

	v, ok := f.tel.SpanAttribute("outcome.analyze_output", "command")
	require.True(t, ok)
	assert.Equal(t, report.Command, v.AsString())

	require.Len(t, f.pub.events, 1)
	assert.NotContains(t, string(f.pub.events[0].Payload), "hunter2")
}

func TestService_DetectIntent(t *testing.T) {
	f := newFixture(t)

	report := f.svc.DetectIntent(context.Background(), "Perfect, thanks!")

	assert.Equal(t, "id-1", report.ID)
	assert.Equal(t, intent.Positive, report.Intent)
	assert.InDelta(t, 1.0, report.Confidence, 1e-9)
	assert.Len(t, report.Hits, 2)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Intents.WithLabelValues("intent", "positive")), 0)
	f.tel.AssertSpanExists(t, "intent.detect")
	assert.Empty(t, f.pub.kinds(), "single phrases are not published")
}

func TestService_AnalyzeConversation(t *testing.T) {
	f := newFixture(t)

	report, err := f.svc.AnalyzeConversation(context.Background(), intent.Indexed([]intent.Turn{
		{Role: intent.RoleUser, Content: "This is broken"},
		{Role: intent.RoleAssistant, Content: "Fixed, great news"},
		{Role: intent.RoleUser, Content: "Perfect, thanks!"},
	}))
	require.NoError(t, err)

	assert.Equal(t, intent.Positive, report.Overall)
	assert.Len(t, report.Turns, 2, "assistant turns are not scored")
	assert.Equal(t, []events.Kind{events.KindIntent}, f.pub.kinds())
	f.tel.AssertSpanExists(t, "intent.analyze_conversation")
}

func TestService_AnalyzeConversation_InvalidRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AnalyzeConversation(context.Background(), []intent.Turn{
		{Role: "system", Content: "hi", Index: 0},
	})
	require.ErrorIs(t, err, intent.ErrInvalidRole)
	assert.Empty(t, f.pub.kinds())
	f.logs.AssertLogged(t, zapcore.WarnLevel, "conversation rejected")
}

func TestService_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("nats: connection closed")

	report := f.svc.AnalyzeOutput(context.Background(), jestPass, "npm test")

	assert.True(t, report.Verdict.Success)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.PublishFailures.WithLabelValues("verdict")), 0)
	f.logs.AssertLogged(t, zapcore.WarnLevel, "event publish failed")
}

const transcriptJSONL = `{"type":"user","sessionId":"sess-7","message":{"role":"user","content":"The login tests are failing, can you fix them?"}}
{"type":"assistant","sessionId":"sess-7","message":{"role":"assistant","content":[{"type":"tool_use","id":"t1","name":"Bash","input":{"command":"npm test"}}]}}
{"type":"user","sessionId":"sess-7","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":" FAIL  src/App.test.js\n\nTests:       1 failed, 1 total","is_error":true}]}}
{"type":"assistant","sessionId":"sess-7","message":{"role":"assistant","content":[{"type":"text","text":"Fixed the token check."},{"type":"tool_use","id":"t2","name":"Bash","input":{"command":"npm test"}}]}}
{"type":"user","sessionId":"sess-7","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t2","content":" PASS  src/App.test.js\n\nTests:       2 passed, 2 total"}]}}
{"type":"assistant","sessionId":"sess-7","message":{"role":"assistant","content":[{"type":"tool_use","id":"t3","name":"Bash","input":{"command":"npm run dev"}}]}}
{"type":"user","sessionId":"sess-7","message":{"role":"user","content":"Perfect, thanks!"}}
`

func TestService_AnalyzeSession(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "sess-7.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(transcriptJSONL), 0o600))

	report, err := f.svc.AnalyzeSession(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "sess-7", report.SessionID)
	require.Len(t, report.Commands, 3)

	assert.False(t, report.Commands[0].Report.Verdict.Success)
	assert.True(t, report.Commands[0].IsError)
	assert.True(t, report.Commands[1].Report.Verdict.Success)
	assert.False(t, report.Commands[2].Completed)
	assert.Empty(t, report.Commands[2].Report.Signals)

	assert.Equal(t, 2, report.SignalCount)
	assert.False(t, report.Verdict.Success, "any failure in the session fails the verdict")
	assert.Equal(t, intent.Positive, report.Conversation.Overall)

	f.tel.AssertSpanExists(t, "session.analyze")
	assert.Equal(t, []events.Kind{events.KindVerdict, events.KindIntent}, f.pub.kinds())
	assert.Equal(t, "sess-7", f.pub.events[0].SessionID)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Analyses.WithLabelValues("session")), 0)
}

func TestService_AnalyzeSessionReader(t *testing.T) {
	f := newFixture(t)

	report, err := f.svc.AnalyzeSessionReader(context.Background(), strings.NewReader(transcriptJSONL), "fallback")
	require.NoError(t, err)
	assert.Equal(t, "sess-7", report.SessionID)
}

func TestService_AnalyzeSession_Missing(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AnalyzeSession(context.Background(), filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Error(t, err)
}

func TestService_Rules(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, execution.DefaultLibrary().Len(), len(f.svc.Rules()))
}

func TestService_Concurrent(t *testing.T) {
	f := newFixture(t, WithIDGenerator(func() string { return "id" }))
	ctx := context.Background()
	want := f.svc.AnalyzeOutput(ctx, jestPass, "npm test")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := f.svc.AnalyzeOutput(ctx, jestPass, "npm test")
			assert.Equal(t, want, got)
			f.svc.DetectIntent(ctx, "looks good")
		}()
	}
	wg.Wait()
}

func TestNew_Defaults(t *testing.T) {
	svc := New(WithMetrics(NewMetrics(prometheus.NewRegistry())))
	report := svc.AnalyzeOutput(context.Background(), jestPass, "npm test")
	assert.Len(t, report.ID, 36)
	assert.True(t, report.Verdict.Success)
	assert.NoError(t, svc.Close())
}
