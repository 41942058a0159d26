package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_RecordsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheus(reg)
	require.NoError(t, err)

	rec.LoginAttempt(ResultSuccess, 20*time.Millisecond)
	rec.LoginAttempt("invalid_credentials", 0)
	rec.LoginAttempt("", 0)
	rec.Logout()
	rec.GuardDecision(DecisionAllow)
	rec.GuardDecision(DecisionAllow)
	rec.GuardDecision(DecisionForbidden)

	assert.InDelta(t, 1, testutil.ToFloat64(rec.logins.WithLabelValues(ResultSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.logins.WithLabelValues("invalid_credentials")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.logins.WithLabelValues(ResultError)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.logouts), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(rec.guard.WithLabelValues(DecisionAllow)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.guard.WithLabelValues(DecisionForbidden)), 0)
}

func TestNewPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg)
	require.NoError(t, err)

	_, err = NewPrometheus(reg)
	require.Error(t, err)
}

func TestNoop(t *testing.T) {
	var rec SessionRecorder = Noop{}
	rec.LoginAttempt(ResultSuccess, time.Second)
	rec.Logout()
	rec.GuardDecision(DecisionLogin)
}
