package ingest

import (
	"log/slog"
	"time"
)

type Option func(o *Orchestrator)

// WithLogger specifies the logger for the orchestrator
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithQueryInterval specifies the due-job polling interval.
// Defaults to 1s
func WithQueryInterval(q time.Duration) Option {
	return func(o *Orchestrator) {
		o.queryInterval = q
	}
}

// WithRefreshInterval specifies how often each registered source is
// re-fetched. Defaults to 30 minutes
func WithRefreshInterval(r time.Duration) Option {
	return func(o *Orchestrator) {
		o.refreshInterval = r
	}
}
