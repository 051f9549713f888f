// Package transcript reads conversation transcripts stored as JSON Lines.
//
// Two line shapes are accepted:
//
//	{"role": "user", "content": "hi", "timestamp": "2024-05-01T10:00:00Z"}
//	{"type": "assistant", "message": {"content": [{"type": "text", "text": "hello"}]}}
//
// Content may be a string or an array of typed blocks; only text blocks are
// kept.
package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Transcript is a parsed transcript file.
type Transcript struct {
	Name    string
	Entries []Entry
	Skipped []Skipped
}

// Entry is one conversation line.
type Entry struct {
	Line      int
	Role      string
	Content   string
	Timestamp time.Time // zero when the line has none
}

// Skipped records a line that carried no usable turn.
type Skipped struct {
	Line   int
	Reason string
}

type rawLine struct {
	Role      string          `json:"role,omitempty"`
	Type      string          `json:"type,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	Message   json.RawMessage `json:"message,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

type textBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// MaxLineSize bounds a single JSONL line.
const MaxLineSize = 10 * 1024 * 1024

// ParseFile parses the transcript at path. Name is the file name without
// its extension.
func ParseFile(path string) (t *Transcript, err error) {
	file, ferr := os.Open(path)
	if ferr != nil {
		return nil, fmt.Errorf("failed to open file: %w", ferr)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	t, err = Parse(file)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	t.Name = strings.TrimSuffix(base, filepath.Ext(base))
	return t, nil
}

// Parse reads a transcript from r. Malformed JSON fails the whole parse;
// lines without a known role or without text are recorded in Skipped.
func Parse(r io.Reader) (*Transcript, error) {
	t := &Transcript{Entries: make([]Entry, 0)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), MaxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var raw rawLine
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse JSON: %w", lineNum, err)
		}

		entry, reason := parseEntry(&raw, lineNum)
		if reason != "" {
			t.Skipped = append(t.Skipped, Skipped{Line: lineNum, Reason: reason})
			continue
		}
		t.Entries = append(t.Entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading transcript: %w", err)
	}
	return t, nil
}

func parseEntry(raw *rawLine, lineNum int) (Entry, string) {
	entry := Entry{Line: lineNum}

	content := raw.Content
	role := raw.Role
	if len(raw.Message) > 0 {
		var msg struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(raw.Message, &msg); err != nil {
			return entry, "message is not an object"
		}
		content = msg.Content
		if role == "" {
			role = msg.Role
		}
	}
	if role == "" {
		role = raw.Type
	}

	switch strings.ToLower(strings.TrimSpace(role)) {
	case "user", "human":
		entry.Role = "user"
	case "assistant", "ai":
		entry.Role = "assistant"
	case "":
		return entry, "missing role"
	default:
		return entry, fmt.Sprintf("unsupported role %q", role)
	}

	entry.Content = strings.TrimSpace(textContent(content))
	if entry.Content == "" {
		return entry, "no text content"
	}

	if raw.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, raw.Timestamp)
		if err != nil {
			return entry, "invalid timestamp"
		}
		entry.Timestamp = ts
	}
	return entry, ""
}

// textContent returns a string content as is, or the text blocks of an
// array content joined by newlines.
func textContent(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var blocks []textBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return ""
	}
	var b strings.Builder
	for _, block := range blocks {
		if block.Type == "text" {
			b.WriteString(block.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}
