package models

import (
	"fmt"
	"math"
	"time"
)

// DefaultThresholdTemperature and DefaultThresholdSeconds apply until the
// configuration store provides a row.
const (
	DefaultThresholdTemperature = 45
	DefaultThresholdSeconds     = 10
)

// Thresholds is the threshold/interval pair a window is evaluated against
type Thresholds struct {
	Temperature     int `json:"thresholdTemperature"`
	IntervalSeconds int `json:"thresholdTime"`
}

// DefaultThresholds returns the built-in thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		Temperature:     DefaultThresholdTemperature,
		IntervalSeconds: DefaultThresholdSeconds,
	}
}

// Interval returns the minimum window duration
func (t Thresholds) Interval() time.Duration {
	return time.Duration(t.IntervalSeconds) * time.Second
}

// Validate reports whether t can be applied and stored. Both values must fit
// the store's int columns and the interval must not be negative.
func (t Thresholds) Validate() error {
	if t.Temperature < math.MinInt32 || t.Temperature > math.MaxInt32 {
		return fmt.Errorf("threshold temperature %d out of range", t.Temperature)
	}
	if t.IntervalSeconds < 0 || t.IntervalSeconds > math.MaxInt32 {
		return fmt.Errorf("threshold interval %d out of range", t.IntervalSeconds)
	}
	return nil
}

// Severity is the classification tier of a batch
type Severity int

const (
	SeverityNominal Severity = iota
	SeverityWarning
	SeverityViolation
)

func (s Severity) String() string {
	switch s {
	case SeverityViolation:
		return "violation"
	case SeverityWarning:
		return "warning"
	default:
		return "nominal"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "violation":
		*s = SeverityViolation
	case "warning":
		*s = SeverityWarning
	case "nominal":
		*s = SeverityNominal
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// BatchIncident is the result for one poll batch of a closed window.
// Area and Description are always empty: readings are not area-attributed
// at aggregation time.
type BatchIncident struct {
	PollNumber         int64     `json:"pollNumber"`
	AverageTemperature float64   `json:"averageTemperature"`
	ReadingCount       int       `json:"readingCount"`
	Area               string    `json:"area"`
	Description        string    `json:"description"`
	Threshold          int       `json:"threshold"`
	StartTime          time.Time `json:"startTime"`
	EndTime            time.Time `json:"endTime"`
}

// ClassifiedIncident pairs a batch with its severity
type ClassifiedIncident struct {
	BatchIncident
	Severity Severity `json:"severity"`
}

// WindowReport describes a just-closed window for the status reporters
type WindowReport struct {
	Thresholds Thresholds           `json:"thresholds"`
	Start      time.Time            `json:"start"`
	End        time.Time            `json:"end"`
	ClosedAt   time.Time            `json:"closedAt"`
	Batches    []ClassifiedIncident `json:"batches"`
}

// IncidentSet holds the violating batches of one window as the parallel
// columns the incident store expects. All slices have the same length.
type IncidentSet struct {
	PollNumbers  []int64
	Areas        []string
	Descriptions []string
	Thresholds   []int32
	Intervals    []int32
	StartTimes   []time.Time
	EndTimes     []time.Time
}

// NewIncidentSet builds the column set for incidents evaluated against t
func NewIncidentSet(incidents []BatchIncident, t Thresholds) IncidentSet {
	set := IncidentSet{
		PollNumbers:  make([]int64, 0, len(incidents)),
		Areas:        make([]string, 0, len(incidents)),
		Descriptions: make([]string, 0, len(incidents)),
		Thresholds:   make([]int32, 0, len(incidents)),
		Intervals:    make([]int32, 0, len(incidents)),
		StartTimes:   make([]time.Time, 0, len(incidents)),
		EndTimes:     make([]time.Time, 0, len(incidents)),
	}

	for _, inc := range incidents {
		set.PollNumbers = append(set.PollNumbers, inc.PollNumber)
		set.Areas = append(set.Areas, inc.Area)
		set.Descriptions = append(set.Descriptions, inc.Description)
		set.Thresholds = append(set.Thresholds, int32(inc.Threshold))
		set.Intervals = append(set.Intervals, int32(t.IntervalSeconds))
		set.StartTimes = append(set.StartTimes, inc.StartTime)
		set.EndTimes = append(set.EndTimes, inc.EndTime)
	}

	return set
}

// Len returns the number of incidents in the set
func (s IncidentSet) Len() int {
	return len(s.PollNumbers)
}
