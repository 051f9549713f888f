package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is a time encoded as RFC 3339 in JSON documents. It also accepts
// the zone-less ISO-8601 form written by older documents.
type Timestamp struct {
	time.Time
}

// At wraps t, normalized to UTC without a monotonic reading so that a value
// survives a JSON round trip unchanged.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTimestamp parses s in any of the accepted document formats.
// Zone-less values are read as local time.
func ParseTimestamp(s string) (time.Time, error) {
	for i, format := range timestampFormats {
		var (
			parsed time.Time
			err    error
		)
		if i == 0 {
			parsed, err = time.Parse(format, s)
		} else {
			parsed, err = time.ParseInLocation(format, s, time.Local)
		}
		if err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp: unrecognized format %q", s)
}
