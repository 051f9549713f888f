package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/neilberkman/hireplan/internal/core/agent"
)

// runCLI executes the root command against a fresh data directory config
// and returns stdout and stderr.
func runCLI(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	cfgPath := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		content := "[llm]\nprovider = \"static\"\nstatic_reply = \"static reply\"\n"
		if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("HIREPLAN_LLM_PROVIDER", "static")
	t.Setenv("HIREPLAN_STORAGE_DRIVER", "file")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", cfgPath, "--data-dir", filepath.Join(dir, "data")}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func resetFlags() {
	configPath, dataDir, logLevel = "", "", "warn"
	askSession, askQuiet = "", false
	jdSkills, jdExperience, jdCopy = nil, agent.DefaultExperience, false
	checklistWeek, checklistCopy = agent.DefaultTimelineWeeks, false
	showJSON, showMessages = false, 6
	statsSince = ""
	exportOutput = ""
	importSession = ""
	sessionsLimit = 20
}

func sessionFromStderr(t *testing.T, stderr string) string {
	t.Helper()
	for _, line := range strings.Split(stderr, "\n") {
		if id, ok := strings.CutPrefix(strings.TrimSpace(line), "session: "); ok {
			return id
		}
	}
	t.Fatalf("no session id in stderr: %q", stderr)
	return ""
}

func TestAskFlow(t *testing.T) {
	dir := t.TempDir()

	out, stderr, err := runCLI(t, dir, "ask", "-q", "We need a founding engineer with Go skills")
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}
	if strings.TrimSpace(out) != "static reply" {
		t.Errorf("reply = %q", out)
	}
	id := sessionFromStderr(t, stderr)

	out, _, err = runCLI(t, dir, "ask", "-q", "-s", id, "generate job description")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "# Founding Engineer") {
		t.Errorf("job description reply = %q", out)
	}

	out, _, err = runCLI(t, dir, "show", id)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Messages: 4", "founding engineer", "job description yes, checklist no"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out, _, err = runCLI(t, dir, "sessions")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, "Showing 1 of 1 session(s)") {
		t.Errorf("sessions output = %q", out)
	}

	out, _, err = runCLI(t, dir, "stats")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Total Sessions:       1", "Total Messages:       4", "Most Requested Role:  founding engineer", "draft_job_description"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}

	out, _, err = runCLI(t, dir, "export", id, "-o", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "## Job descriptions") {
		t.Errorf("export output = %q", out)
	}

	path := filepath.Join(dir, "out.md")
	if _, _, err := runCLI(t, dir, "export", id, "-o", path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file not written: %v", err)
	}
}

func TestShow_UnknownSession(t *testing.T) {
	_, _, err := runCLI(t, t.TempDir(), "show", "missing")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("show missing error = %v", err)
	}
}

func TestSessions_Empty(t *testing.T) {
	out, _, err := runCLI(t, t.TempDir(), "sessions")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "No sessions found") {
		t.Errorf("output = %q", out)
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	out, stderr, err := runCLI(t, dir, "import", filepath.Join("..", "..", "..", "pkg", "transcript", "testdata", "sample.jsonl"))
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	if !strings.Contains(out, "Imported 4 turn(s)") || !strings.Contains(out, "Roles: founding engineer") {
		t.Errorf("import output = %q", out)
	}
	if strings.Count(stderr, "Warning:") != 2 {
		t.Errorf("expected two skipped-line warnings, stderr = %q", stderr)
	}

	empty := filepath.Join(dir, "empty.jsonl")
	if err := os.WriteFile(empty, []byte("\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, dir, "import", empty); err == nil {
		t.Error("empty transcript should fail")
	}
}

func TestArtifactCommands(t *testing.T) {
	dir := t.TempDir()

	out, _, err := runCLI(t, dir, "jd", "founding", "engineer", "--skills", "go,postgres", "--experience", "5+ years")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Skills in: go, postgres") || !strings.Contains(out, "5+ years experience") {
		t.Errorf("jd output = %q", out)
	}

	out, _, err = runCLI(t, dir, "checklist", "genai intern", "-w", "4")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "AI/ML knowledge assessment") || !strings.Contains(out, `"Week 3"`) {
		t.Errorf("checklist output = %q", out)
	}

	if _, _, err := runCLI(t, dir, "checklist", "intern", "-w", "0"); err == nil {
		t.Error("zero weeks should fail")
	}

	out, _, err = runCLI(t, dir, "market", "chef")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "No specific market data found for this role." {
		t.Errorf("market output = %q", out)
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2024, 11, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "yesterday", want: "2024-11-14"},
		{in: "3 days ago", want: "2024-11-12"},
		{in: "zzzz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSince(tt.in, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSince(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got.Format("2006-01-02") != tt.want {
				t.Errorf("parseSince(%q) = %v, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short", input: "hello", maxLen: 10, want: "hello"},
		{name: "collapses whitespace", input: "a\n\n  b", maxLen: 10, want: "a b"},
		{name: "cuts long words", input: strings.Repeat("x", 30), maxLen: 10, want: strings.Repeat("x", 10) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0s"},
		{-3, "0s"},
		{90.4, "1m30s"},
		{3600, "1h0m0s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestBar(t *testing.T) {
	got := bar(50, 10)
	if utf8.RuneCountInString(got) != 10 || strings.Count(got, "█") != 5 {
		t.Errorf("bar(50, 10) = %q", got)
	}
}

func TestSpinner(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Thinking...")
	s.Start()
	s.Stop()
	if !strings.Contains(buf.String(), "Thinking...") || !strings.HasSuffix(buf.String(), "\r\033[K") {
		t.Errorf("spinner output = %q", buf.String())
	}
}
