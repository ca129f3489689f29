// Package models provides data model definitions for the PlantBoard backend.
package models

import (
	"fmt"
	"regexp"
	"time"
)

// isoPattern is the wire format accepted for date values, both from the
// remote API and when reloading persisted local state.
var isoPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{3})?Z$`)

const (
	isoLayoutMillis = "2006-01-02T15:04:05.000Z"
	isoLayoutPlain  = "2006-01-02T15:04:05Z"
)

// Timestamp is a time.Time that round-trips through JSON as an ISO-8601
// UTC string with millisecond precision.
type Timestamp struct {
	time.Time
}

// Now returns the current time as a Timestamp, truncated to milliseconds so
// a value survives a JSON round trip unchanged.
func Now() Timestamp {
	return Timestamp{time.Now().UTC().Truncate(time.Millisecond)}
}

// At wraps an existing time.Time as a Timestamp.
func At(t time.Time) Timestamp {
	return Timestamp{t.UTC().Truncate(time.Millisecond)}
}

// IsISOTimestamp reports whether s matches the accepted date wire format.
func IsISOTimestamp(s string) bool {
	return isoPattern.MatchString(s)
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + ts.UTC().Format(isoLayoutMillis) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. Strings matching the ISO
// pattern are revived into native time values; null yields the zero value.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		ts.Time = time.Time{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("timestamp must be a JSON string, got %s", s)
	}
	s = s[1 : len(s)-1]

	if isoPattern.MatchString(s) {
		layout := isoLayoutPlain
		if len(s) == len(isoLayoutMillis) {
			layout = isoLayoutMillis
		}
		t, err := time.Parse(layout, s)
		if err != nil {
			return fmt.Errorf("parse timestamp %q: %w", s, err)
		}
		ts.Time = t
		return nil
	}

	// Tolerate full RFC3339 from non-conforming producers.
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	ts.Time = t.UTC()
	return nil
}
