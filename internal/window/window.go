// Package window accumulates readings for the open window and aggregates
// them into per-poll batches once the window closes.
package window

import (
	"time"

	"github.com/darshanbhalani/temperature-consumer/internal/models"
)

// Buffer holds the readings of the window currently open. It is owned by a
// single goroutine and does no locking.
type Buffer struct {
	readings []models.Reading
}

// NewBuffer creates an empty buffer
func NewBuffer(capacity int) *Buffer {
	return &Buffer{readings: make([]models.Reading, 0, capacity)}
}

// Append adds readings to the open window
func (b *Buffer) Append(readings ...models.Reading) {
	b.readings = append(b.readings, readings...)
}

// Readings returns the buffered readings. The slice is only valid until the
// next Append or Clear.
func (b *Buffer) Readings() []models.Reading {
	return b.readings
}

// Len returns the number of buffered readings
func (b *Buffer) Len() int {
	return len(b.readings)
}

// Clear discards every buffered reading
func (b *Buffer) Clear() {
	clear(b.readings)
	b.readings = b.readings[:0]
}

// Window is the aggregated result of a closed window
type Window struct {
	Start   time.Time
	End     time.Time
	Batches []models.BatchIncident
}

// ShouldClose reports whether the open window has lasted at least interval
// since lastClose.
func ShouldClose(now, lastClose time.Time, interval time.Duration) bool {
	return now.Sub(lastClose) >= interval
}

type pollStats struct {
	total float64
	count int
}

// Close groups readings by poll number and averages each group. Start and
// End span the whole window and are stamped onto every batch. Batches keep
// the order in which their poll number first appeared. ok is false when
// there are no readings.
func Close(readings []models.Reading, threshold int) (w Window, ok bool) {
	if len(readings) == 0 {
		return Window{}, false
	}

	start, end := readings[0].Timestamp, readings[0].Timestamp
	stats := make(map[int64]*pollStats)
	order := make([]int64, 0)

	for _, r := range readings {
		if r.Timestamp.Before(start) {
			start = r.Timestamp
		}
		if r.Timestamp.After(end) {
			end = r.Timestamp
		}

		s, exists := stats[r.PollNumber]
		if !exists {
			s = &pollStats{}
			stats[r.PollNumber] = s
			order = append(order, r.PollNumber)
		}
		s.total += float64(r.Temperature)
		s.count++
	}

	batches := make([]models.BatchIncident, 0, len(order))
	for _, poll := range order {
		s := stats[poll]
		batches = append(batches, models.BatchIncident{
			PollNumber:         poll,
			AverageTemperature: s.total / float64(s.count),
			ReadingCount:       s.count,
			Area:               "",
			Description:        "",
			Threshold:          threshold,
			StartTime:          start,
			EndTime:            end,
		})
	}

	return Window{Start: start, End: end, Batches: batches}, true
}
