package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Reading represents a single sensor temperature sample
type Reading struct {
	Temperature int       `json:"temperature"`
	PollNumber  int64     `json:"pollNumber"`
	Area        string    `json:"area"`
	Timestamp   time.Time `json:"timestamp"`
}

// Producers send zone-less timestamps as often as RFC 3339 ones.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON accepts RFC 3339 as well as zone-less ISO-8601 timestamps,
// the latter interpreted as UTC.
func (r *Reading) UnmarshalJSON(data []byte) error {
	type rawReading struct {
		Temperature int    `json:"temperature"`
		PollNumber  int64  `json:"pollNumber"`
		Area        string `json:"area"`
		Timestamp   string `json:"timestamp"`
	}

	var raw rawReading
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ts, err := ParseTimestamp(raw.Timestamp)
	if err != nil {
		return err
	}

	*r = Reading{
		Temperature: raw.Temperature,
		PollNumber:  raw.PollNumber,
		Area:        raw.Area,
		Timestamp:   ts,
	}
	return nil
}

// ParseTimestamp parses a reading timestamp in any of the accepted layouts.
// The result is always in UTC so that wall-clock values stay ordered once the
// zone is dropped by the incident store.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// DecodeReadings deserializes one queue payload into its readings.
// A JSON null payload yields no readings and no error.
func DecodeReadings(payload []byte) ([]Reading, error) {
	var readings []Reading
	if err := json.Unmarshal(payload, &readings); err != nil {
		return nil, fmt.Errorf("decode readings: %w", err)
	}
	return readings, nil
}
