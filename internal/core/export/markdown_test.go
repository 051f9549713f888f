package export

import (
	"strings"
	"testing"
	"time"

	"github.com/neilberkman/hireplan/internal/core/artifacts"
	"github.com/neilberkman/hireplan/internal/core/models"
)

func sampleSession() *models.Session {
	created := models.At(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	sess := models.NewSession("s-1", created)
	sess.HiringNeeds.AddRole("founding engineer")
	sess.HiringNeeds.Skills["founding engineer"] = []string{"go", "devops"}
	sess.HiringNeeds.Experience["founding engineer"] = "3-5 years"
	weeks := 4
	sess.HiringNeeds.Timeline = &weeks
	sess.History = []models.Turn{
		{Role: models.RoleUser, Content: "We need a founding engineer", Timestamp: created},
		{Role: models.RoleAssistant, Content: "Sounds good.", Timestamp: models.At(created.Add(time.Minute))},
	}
	sess.JobDescriptions["founding engineer"] = artifacts.RenderJobDescription("founding engineer", []string{"go"}, "3-5 years")
	sess.HiringChecklists["founding engineer"] = artifacts.BuildChecklist("founding engineer", 4)
	return sess
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleSession())

	for _, want := range []string{
		"**Session ID:** `s-1`",
		"**Created:** May 01, 2024 10:00:00",
		"**Updated:** May 01, 2024 10:01:00",
		"**Messages:** 2",
		"### founding engineer",
		"- Skills: go, devops",
		"- Experience: 3-5 years",
		"Timeline: 4 weeks",
		"**USER** _May 01, 2024 10:00:00_",
		"We need a founding engineer",
		"**ASSISTANT**",
		"## Job descriptions",
		"## Hiring checklists",
		"**Pre-Hiring**",
		"- [ ] Make offer (Week 3)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}

	if strings.Index(md, "## Job descriptions") > strings.Index(md, "## Hiring checklists") {
		t.Error("job descriptions should precede checklists")
	}
}

func TestMarkdown_EmptySession(t *testing.T) {
	md := Markdown(models.NewSession("empty", models.At(time.Now())))
	if strings.Contains(md, "## Hiring needs") || strings.Contains(md, "## Job descriptions") {
		t.Errorf("empty session rendered sections:\n%s", md)
	}
}

func TestRoles(t *testing.T) {
	sess := models.NewSession("r", models.At(time.Now()))
	sess.HiringNeeds.AddRole("genai intern")
	sess.HiringNeeds.AddRole("founding engineer")
	m := map[string]string{"founding engineer": "", "genai intern": "", "designer": "", "analyst": ""}

	got := Roles(sess, m)
	want := []string{"genai intern", "founding engineer", "analyst", "designer"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Roles() = %v, want %v", got, want)
	}
}
