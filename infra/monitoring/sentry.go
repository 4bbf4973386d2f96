package monitoring

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/ldarsim/config"
	coremon "github.com/kilianp07/ldarsim/core/monitoring"
)

// NewSentryMonitor initializes Sentry for one batch run. Every event carries
// the run id as a tag. An empty DSN yields a NopMonitor.
func NewSentryMonitor(cfg config.SentryConfig, runID string) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	cfg.SetDefaults()
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		SampleRate:  cfg.SampleRate,
		ServerName:  "ldarsim",
	})
	if err != nil {
		return nil, err
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("run_id", runID)
	})
	return &sentryMonitor{max: int64(cfg.MaxEvents)}, nil
}

type sentryMonitor struct {
	max  int64
	sent atomic.Int64
}

// allow reports whether another event fits under the per-run cap.
func (s *sentryMonitor) allow() bool {
	if s.max <= 0 {
		return true
	}
	return s.sent.Add(1) <= s.max
}

func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil || !s.allow() {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		if p, ok := tags["program"]; ok {
			scope.SetFingerprint([]string{"replicate-failure", p, err.Error()})
			scope.SetContext("replicate", replicateContext(tags))
		}
		sentry.CaptureException(err)
	})
}

// replicateContext converts replicate tags into a structured Sentry context
// so the seed can be copied to rerun the replicate.
func replicateContext(tags map[string]string) sentry.Context {
	ctx := sentry.Context{"program": tags["program"]}
	if v, err := strconv.Atoi(tags["replicate"]); err == nil {
		ctx["replicate"] = v
	}
	if v, ok := tags["seed"]; ok {
		ctx["seed"] = v
	}
	return ctx
}

func (s *sentryMonitor) Recover() {
	if r := recover(); r != nil {
		sentry.CurrentHub().Recover(r)
		sentry.Flush(2 * time.Second)
		panic(r)
	}
}

func (s *sentryMonitor) Flush(timeout time.Duration) { sentry.Flush(timeout) }
