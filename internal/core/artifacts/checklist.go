package artifacts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/neilberkman/hireplan/internal/core/models"
)

// CompressBelowWeeks is the timeline under which the template is compressed.
const CompressBelowWeeks = 6

const (
	StagePreHiring    = "Pre-Hiring"
	StageSourcing     = "Sourcing"
	StageScreening    = "Screening"
	StageInterviewing = "Interviewing"
	StageDecision     = "Decision & Onboarding"
)

func baseChecklist() models.Checklist {
	return models.NewChecklist(
		models.Stage{Name: StagePreHiring, Tasks: []models.Task{
			{Task: "Finalize job description", Timeframe: "Week 1"},
			{Task: "Determine budget and compensation range", Timeframe: "Week 1"},
			{Task: "Set up applicant tracking system", Timeframe: "Week 1"},
		}},
		models.Stage{Name: StageSourcing, Tasks: []models.Task{
			{Task: "Post job on job boards", Timeframe: "Week 1-2"},
			{Task: "Reach out to network for referrals", Timeframe: "Week 1-2"},
			{Task: "Consider recruiter if applicable", Timeframe: "Week 2"},
		}},
		models.Stage{Name: StageScreening, Tasks: []models.Task{
			{Task: "Review applications", Timeframe: "Weeks 2-3"},
			{Task: "Conduct initial screening calls", Timeframe: "Weeks 3-4"},
		}},
		models.Stage{Name: StageInterviewing, Tasks: []models.Task{
			{Task: "Technical/skills assessment", Timeframe: "Week 4"},
			{Task: "Team interviews", Timeframe: "Week 5"},
			{Task: "Final interview with founders", Timeframe: "Week 5"},
		}},
		models.Stage{Name: StageDecision, Tasks: []models.Task{
			{Task: "Make offer", Timeframe: "Week 6"},
			{Task: "Negotiate and finalize offer", Timeframe: "Week 6"},
			{Task: "Prepare onboarding plan", Timeframe: "Weeks 6-7"},
		}},
	)
}

// BuildChecklist returns the staged hiring checklist for role. Timelines
// shorter than CompressBelowWeeks halve every template timeframe. Role
// specific tasks are appended after compression with fixed timeframes.
func BuildChecklist(role string, weeks int) models.Checklist {
	c := baseChecklist()
	if weeks < CompressBelowWeeks {
		c.Map(func(t models.Task) models.Task {
			t.Timeframe = CompressTimeframe(t.Timeframe)
			return t
		})
	}

	r := strings.ToLower(role)
	if strings.Contains(r, "engineer") {
		c.Append(StageScreening, models.Task{Task: "Code review or system design challenge", Timeframe: "Week 3"})
		c.Append(StageInterviewing, models.Task{Task: "Technical deep dive with engineering team", Timeframe: "Week 4"})
	}
	if strings.Contains(r, "intern") {
		c.Append(StageScreening, models.Task{Task: "Review academic projects and coursework", Timeframe: "Week 3"})
		c.Append(StageInterviewing, models.Task{Task: "AI/ML knowledge assessment", Timeframe: "Week 4"})
	}
	return c
}

// CompressTimeframe halves a "Week n" or "Week(s) a-b" timeframe:
// n becomes max(1, n/2); a-b becomes a' = max(1, a/2), b' = max(a'+1, b/2).
// Unrecognized text is returned unchanged.
func CompressTimeframe(timeframe string) string {
	rest, ok := strings.CutPrefix(timeframe, "Weeks ")
	if !ok {
		rest, ok = strings.CutPrefix(timeframe, "Week ")
	}
	if !ok {
		return timeframe
	}
	rest = strings.TrimSpace(rest)

	if from, to, isRange := strings.Cut(rest, "-"); isRange {
		a, errA := strconv.Atoi(strings.TrimSpace(from))
		b, errB := strconv.Atoi(strings.TrimSpace(to))
		if errA != nil || errB != nil {
			return timeframe
		}
		start := max(1, a/2)
		end := max(start+1, b/2)
		return fmt.Sprintf("Week %d-%d", start, end)
	}

	n, err := strconv.Atoi(rest)
	if err != nil {
		return timeframe
	}
	return fmt.Sprintf("Week %d", max(1, n/2))
}
