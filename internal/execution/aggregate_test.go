package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateOverallSuccess(t *testing.T) {
	tests := []struct {
		name           string
		signals        []Signal
		wantSuccess    bool
		wantConfidence float64
	}{
		{
			name:           "no signals",
			signals:        nil,
			wantSuccess:    false,
			wantConfidence: 0,
		},
		{
			name: "single success",
			signals: []Signal{
				{Type: TestPass, Confidence: 0.9},
			},
			wantSuccess:    true,
			wantConfidence: 0.9,
		},
		{
			name: "mean of successes",
			signals: []Signal{
				{Type: TestPass, Confidence: 1.0},
				{Type: BuildSuccess, Confidence: 0.8},
				{Type: ServerStart, Confidence: 0.9},
			},
			wantSuccess:    true,
			wantConfidence: 0.9,
		},
		{
			name: "failure is authoritative",
			signals: []Signal{
				{Type: TestPass, Confidence: 1.0},
				{Type: LintFail, Confidence: 0.6},
				{Type: BuildSuccess, Confidence: 0.95},
			},
			wantSuccess:    false,
			wantConfidence: 0.6,
		},
		{
			name: "strongest failure wins",
			signals: []Signal{
				{Type: TestFail, Confidence: 0.85},
				{Type: BuildFail, Confidence: 0.95},
				{Type: InstallFail, Confidence: 0.7},
			},
			wantSuccess:    false,
			wantConfidence: 0.95,
		},
		{
			name: "unknown types are ignored",
			signals: []Signal{
				{Type: SignalType("deploy_ok"), Confidence: 1.0},
				{Type: TypecheckPass, Confidence: 0.7},
			},
			wantSuccess:    true,
			wantConfidence: 0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateOverallSuccess(tt.signals)
			assert.Equal(t, tt.wantSuccess, got.Success)
			assert.InDelta(t, tt.wantConfidence, got.Confidence, 1e-9)
		})
	}
}

func TestPartition(t *testing.T) {
	signals := []Signal{
		{Type: TestFail, Offset: 1},
		{Type: BuildSuccess, Offset: 2},
		{Type: LintFail, Offset: 3},
		{Type: ServerStart, Offset: 4},
	}

	failures, successes := Partition(signals)

	assert.Equal(t, []Signal{signals[0], signals[2]}, failures)
	assert.Equal(t, []Signal{signals[1], signals[3]}, successes)
}

func TestSignalTypePolarity(t *testing.T) {
	for typ, domain := range signalDomains {
		t.Run(string(typ), func(t *testing.T) {
			assert.True(t, typ.IsValid())
			assert.Equal(t, domain, typ.Domain())
			assert.NotEqual(t, typ.IsPositive(), typ.IsNegative())
		})
	}
	assert.False(t, SignalType("nope").IsPositive())
	assert.False(t, SignalType("nope").IsNegative())
}
