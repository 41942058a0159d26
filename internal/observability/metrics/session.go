package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Guard decision labels.
const (
	DecisionAllow     = "allow"
	DecisionLogin     = "redirect_login"
	DecisionForbidden = "forbidden"
)

// SessionRecorder receives session lifecycle events.
type SessionRecorder interface {
	LoginAttempt(outcome string, d time.Duration)
	Logout()
	GuardDecision(decision string)
}

// Noop discards every event.
type Noop struct{}

func (Noop) LoginAttempt(string, time.Duration) {}
func (Noop) Logout()                            {}
func (Noop) GuardDecision(string)               {}

// Prometheus records session events as Prometheus collectors.
type Prometheus struct {
	logins        *prometheus.CounterVec
	loginDuration prometheus.Histogram
	logouts       prometheus.Counter
	guard         *prometheus.CounterVec
}

var _ SessionRecorder = (*Prometheus)(nil)

// NewPrometheus creates the collectors and registers them with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "livraria_session_login_attempts_total",
				Help: "Login attempts by outcome.",
			},
			[]string{"outcome"},
		),
		loginDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "livraria_session_login_duration_seconds",
			Help:    "Latency of login calls to the backend.",
			Buckets: prometheus.DefBuckets,
		}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livraria_session_logouts_total",
			Help: "Explicit logouts.",
		}),
		guard: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "livraria_guard_decisions_total",
				Help: "Access guard decisions by outcome.",
			},
			[]string{"decision"},
		),
	}
	for _, c := range []prometheus.Collector{p.logins, p.loginDuration, p.logouts, p.guard} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) LoginAttempt(outcome string, d time.Duration) {
	if outcome == "" {
		outcome = ResultError
	}
	p.logins.WithLabelValues(outcome).Inc()
	if d > 0 {
		p.loginDuration.Observe(d.Seconds())
	}
}

func (p *Prometheus) Logout() { p.logouts.Inc() }

func (p *Prometheus) GuardDecision(decision string) {
	p.guard.WithLabelValues(decision).Inc()
}
