package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeReadings(t *testing.T) {
	payload := []byte(`[
		{"temperature": 50, "pollNumber": 1, "area": "north", "timestamp": "2024-03-01T12:00:00Z"},
		{"Temperature": 48, "PollNumber": 1, "Area": "", "TimeStamp": "2024-03-01T12:00:05.250"},
		{"temperature": 30, "pollNumber": 2, "area": "south", "timestamp": "2024-03-01 12:00:07"}
	]`)

	readings, err := DecodeReadings(payload)
	require.NoError(t, err)
	require.Len(t, readings, 3)

	require.Equal(t, 50, readings[0].Temperature)
	require.Equal(t, int64(1), readings[0].PollNumber)
	require.Equal(t, "north", readings[0].Area)
	require.True(t, readings[0].Timestamp.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))

	require.Equal(t, 48, readings[1].Temperature)
	require.True(t, readings[1].Timestamp.Equal(time.Date(2024, 3, 1, 12, 0, 5, 250_000_000, time.UTC)))

	require.Equal(t, int64(2), readings[2].PollNumber)
	require.True(t, readings[2].Timestamp.Equal(time.Date(2024, 3, 1, 12, 0, 7, 0, time.UTC)))
}

func TestDecodeReadingsNull(t *testing.T) {
	readings, err := DecodeReadings([]byte(`null`))
	require.NoError(t, err)
	require.Empty(t, readings)
}

func TestDecodeReadingsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `temperature=50`},
		{name: "object instead of array", payload: `{"temperature": 50}`},
		{name: "fractional temperature", payload: `[{"temperature": 50.5, "pollNumber": 1, "timestamp": "2024-03-01T12:00:00Z"}]`},
		{name: "missing timestamp", payload: `[{"temperature": 50, "pollNumber": 1}]`},
		{name: "bad timestamp", payload: `[{"temperature": 50, "pollNumber": 1, "timestamp": "yesterday"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReadings([]byte(tt.payload))
			require.Error(t, err)
		})
	}
}

func TestNewIncidentSet(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(9 * time.Second)
	incidents := []BatchIncident{
		{PollNumber: 1, AverageTemperature: 49, Threshold: 45, StartTime: start, EndTime: end},
		{PollNumber: 4, AverageTemperature: 51, Threshold: 45, StartTime: start, EndTime: end},
	}

	set := NewIncidentSet(incidents, Thresholds{Temperature: 45, IntervalSeconds: 30})
	require.Equal(t, 2, set.Len())
	require.Equal(t, []int64{1, 4}, set.PollNumbers)
	require.Equal(t, []string{"", ""}, set.Areas)
	require.Equal(t, []string{"", ""}, set.Descriptions)
	require.Equal(t, []int32{45, 45}, set.Thresholds)
	require.Equal(t, []int32{30, 30}, set.Intervals)
	require.Equal(t, []time.Time{start, start}, set.StartTimes)
	require.Equal(t, []time.Time{end, end}, set.EndTimes)
}

func TestThresholds(t *testing.T) {
	d := DefaultThresholds()
	require.Equal(t, 45, d.Temperature)
	require.Equal(t, 10*time.Second, d.Interval())
	require.Equal(t, "violation", SeverityViolation.String())
	require.Equal(t, "warning", SeverityWarning.String())
	require.Equal(t, "nominal", SeverityNominal.String())
}

func TestDecodeReadingsConvertsOffsetsToUTC(t *testing.T) {
	payload := []byte(`[
		{"temperature": 50, "pollNumber": 1, "timestamp": "2024-03-01T17:00:00+05:30"},
		{"temperature": 50, "pollNumber": 1, "timestamp": "2024-03-01T07:00:00-05:00"}
	]`)

	readings, err := DecodeReadings(payload)
	require.NoError(t, err)
	require.Len(t, readings, 2)

	for _, r := range readings {
		require.Equal(t, time.UTC, r.Timestamp.Location())
	}
	require.Equal(t, "2024-03-01 11:30:00", readings[0].Timestamp.Format("2006-01-02 15:04:05"))
	require.Equal(t, "2024-03-01 12:00:00", readings[1].Timestamp.Format("2006-01-02 15:04:05"))
}

func TestThresholdsValidate(t *testing.T) {
	tests := []struct {
		name       string
		thresholds Thresholds
		valid      bool
	}{
		{name: "defaults", thresholds: DefaultThresholds(), valid: true},
		{name: "zero interval", thresholds: Thresholds{Temperature: 40}, valid: true},
		{name: "negative temperature", thresholds: Thresholds{Temperature: -10, IntervalSeconds: 5}, valid: true},
		{name: "negative interval", thresholds: Thresholds{Temperature: 45, IntervalSeconds: -1}},
		{name: "interval overflows int32", thresholds: Thresholds{Temperature: 45, IntervalSeconds: math.MaxInt32 + 1}},
		{name: "temperature overflows int32", thresholds: Thresholds{Temperature: math.MaxInt32 + 1, IntervalSeconds: 10}},
		{name: "temperature underflows int32", thresholds: Thresholds{Temperature: math.MinInt32 - 1, IntervalSeconds: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.thresholds.Validate()
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}
