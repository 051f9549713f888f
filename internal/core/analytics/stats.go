package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/neilberkman/hireplan/internal/core/models"
)

// TopToolsLimit is the number of tools reported by UsageStats.
const TopToolsLimit = 3

// Stats is the usage summary shown on the dashboard.
type Stats struct {
	TotalSessions             int
	MostRequestedRole         string // empty when no role was requested
	AvgSessionDurationSeconds float64
	TopTools                  []models.Count
	ToolUsage                 []models.Count // all tools, first-seen order
	RoleDistribution          []models.Count
	SessionsByDay             []DayCount
	TotalMessages             int
}

// HasMostRequestedRole reports whether any role request was recorded.
func (s Stats) HasMostRequestedRole() bool {
	return s.MostRequestedRole != ""
}

// DayCount is the number of sessions started on one calendar day.
type DayCount struct {
	Day      string // YYYY-MM-DD
	Sessions int
}

// UsageStats summarizes the aggregate.
func (s *Store) UsageStats(ctx context.Context) (Stats, error) {
	return s.UsageStatsSince(ctx, time.Time{})
}

// UsageStatsSince summarizes the aggregate, restricting session-based figures
// to sessions active at or after since. A zero since includes everything.
func (s *Store) UsageStatsSince(ctx context.Context, since time.Time) (Stats, error) {
	s.mu.Lock()
	agg, err := s.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return Stats{}, err
	}
	return Summarize(agg, since), nil
}

// Summarize computes Stats from an aggregate.
func Summarize(agg *models.Aggregate, since time.Time) Stats {
	var sessions []models.SessionRecord
	for _, rec := range agg.Sessions {
		if !since.IsZero() && rec.LastActive.Before(since) {
			continue
		}
		sessions = append(sessions, rec)
	}

	stats := Stats{
		TotalSessions:     len(sessions),
		MostRequestedRole: mostRequested(agg.RoleRequests),
		TopTools:          topN(agg.ToolUsage, TopToolsLimit),
		ToolUsage:         agg.ToolUsage.Entries(),
		RoleDistribution:  agg.RoleRequests.Entries(),
		SessionsByDay:     sessionsByDay(sessions),
	}

	if len(sessions) > 0 {
		var total float64
		for _, rec := range sessions {
			total += rec.DurationSeconds
			stats.TotalMessages += rec.MessagesCount
		}
		stats.AvgSessionDurationSeconds = total / float64(len(sessions))
	}
	return stats
}

// mostRequested returns the highest count, earliest first-seen on ties.
func mostRequested(c models.Counts) string {
	best := ""
	bestCount := 0
	for _, e := range c.Entries() {
		if e.Count > bestCount {
			best, bestCount = e.Name, e.Count
		}
	}
	return best
}

// topN returns the n highest counts in descending order, earliest first-seen
// on ties.
func topN(c models.Counts, n int) []models.Count {
	entries := c.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func sessionsByDay(sessions []models.SessionRecord) []DayCount {
	counts := map[string]int{}
	for _, rec := range sessions {
		counts[rec.StartTime.Local().Format("2006-01-02")]++
	}
	days := make([]DayCount, 0, len(counts))
	for day, n := range counts {
		days = append(days, DayCount{Day: day, Sessions: n})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })
	return days
}
