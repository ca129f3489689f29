// Package models tests for the ISO-8601 timestamp codec.
package models

import (
	"encoding/json"
	"testing"
	"time"
)

// TestIsISOTimestamp tests the accepted date wire format.
func TestIsISOTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "with millis", value: "2026-08-31T06:30:00.123Z", want: true},
		{name: "without millis", value: "2026-08-31T06:30:00Z", want: true},
		{name: "no zone", value: "2026-08-31T06:30:00", want: false},
		{name: "offset zone", value: "2026-08-31T06:30:00+02:00", want: false},
		{name: "micros", value: "2026-08-31T06:30:00.123456Z", want: false},
		{name: "date only", value: "2026-08-31", want: false},
		{name: "not a date", value: "shift-report", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsISOTimestamp(tt.value); got != tt.want {
				t.Errorf("IsISOTimestamp(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

// TestTimestampRoundTrip verifies a value survives marshal/unmarshal intact.
func TestTimestampRoundTrip(t *testing.T) {
	original := Now()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var revived Timestamp
	if err := json.Unmarshal(data, &revived); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !revived.Equal(original.Time) {
		t.Errorf("round trip changed value: got %v, want %v", revived, original)
	}
}

// TestTimestampUnmarshalVariants verifies both accepted layouts revive.
func TestTimestampUnmarshalVariants(t *testing.T) {
	var ts Timestamp

	if err := json.Unmarshal([]byte(`"2026-01-15T08:00:00Z"`), &ts); err != nil {
		t.Fatalf("plain layout failed: %v", err)
	}
	want := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("got %v, want %v", ts, want)
	}

	if err := json.Unmarshal([]byte(`"2026-01-15T08:00:00.250Z"`), &ts); err != nil {
		t.Fatalf("millis layout failed: %v", err)
	}
	want = want.Add(250 * time.Millisecond)
	if !ts.Equal(want) {
		t.Errorf("got %v, want %v", ts, want)
	}
}

// TestTimestampNull verifies null maps to the zero value and back.
func TestTimestampNull(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte("null"), &ts); err != nil {
		t.Fatalf("Unmarshal(null) failed: %v", err)
	}
	if !ts.IsZero() {
		t.Error("null should yield zero timestamp")
	}

	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("zero timestamp marshals to %s, want null", data)
	}
}

// TestTimestampRejectsGarbage verifies malformed input errors out.
func TestTimestampRejectsGarbage(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Error("expected error for non-date string")
	}
	if err := json.Unmarshal([]byte(`12345`), &ts); err == nil {
		t.Error("expected error for numeric timestamp")
	}
}

// TestDatasetClone verifies clones do not alias the source slices.
func TestDatasetClone(t *testing.T) {
	d := &Dataset{
		Tools: []Tool{{ID: "t1", Name: "Torque wrench", Status: ToolStatusAvailable}},
	}

	c := d.Clone()
	c.Tools[0].Status = ToolStatusIssued

	if d.Tools[0].Status != ToolStatusAvailable {
		t.Error("mutating a clone must not affect the source")
	}
	if d.Empty() {
		t.Error("dataset with one tool should not be Empty")
	}
	if !(&Dataset{}).Empty() {
		t.Error("zero dataset should be Empty")
	}
}
