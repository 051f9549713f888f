package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/neilberkman/hireplan/internal/core/analytics"
)

// StatsSource provides the analytics summary.
type StatsSource interface {
	UsageStats(ctx context.Context) (analytics.Stats, error)
}

// SetStats copies an analytics summary into the aggregate gauges.
func (c *Collector) SetStats(stats analytics.Stats) {
	c.sessions.Set(float64(stats.TotalSessions))
	c.avgSessionDuration.Set(stats.AvgSessionDurationSeconds)
	c.totalMessages.Set(float64(stats.TotalMessages))

	c.toolUsage.Reset()
	for _, t := range stats.ToolUsage {
		c.toolUsage.WithLabelValues(t.Name).Set(float64(t.Count))
	}
	c.roleRequests.Reset()
	for _, r := range stats.RoleDistribution {
		c.roleRequests.WithLabelValues(r.Name).Set(float64(r.Count))
	}
}

// Refresher periodically loads the analytics aggregate into a Collector.
type Refresher struct {
	collector *Collector
	source    StatsSource
	interval  time.Duration
	logger    *slog.Logger
}

// NewRefresher creates a refresher. A non-positive interval defaults to 30s.
func NewRefresher(c *Collector, source StatsSource, interval time.Duration, logger *slog.Logger) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Refresher{collector: c, source: source, interval: interval, logger: logger}
}

// Start refreshes once, then on every tick until ctx is done.
func (r *Refresher) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if err := r.Refresh(ctx); err != nil {
		r.logger.Warn("initial metrics refresh failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("metrics refresher stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				r.logger.Warn("metrics refresh failed", "error", err)
			}
		}
	}
}

// Refresh loads the current stats into the collector.
func (r *Refresher) Refresh(ctx context.Context) error {
	stats, err := r.source.UsageStats(ctx)
	if err != nil {
		return err
	}
	r.collector.SetStats(stats)
	return nil
}
