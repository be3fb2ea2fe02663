// Package status renders closed windows for operators.
package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/darshanbhalani/temperature-consumer/internal/models"
)

// Reporter receives every closed window. It is implemented by Console, Multi,
// the InfluxDB mirror and the Redis snapshot.
type Reporter interface {
	Report(ctx context.Context, report models.WindowReport) error
}

// Multi fans a report out to several reporters. Every reporter is called
// even if an earlier one fails.
type Multi []Reporter

func (m Multi) Report(ctx context.Context, report models.WindowReport) error {
	var errs []error
	for _, r := range m {
		if err := r.Report(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

const timeLayout = "2006-01-02 15:04:05"

var (
	ruleColor      = color.New(color.FgBlue)
	violationColor = color.New(color.FgBlack, color.BgRed)
	warningColor   = color.New(color.FgYellow)
	nominalColor   = color.New(color.FgGreen)
)

// SeverityColor returns the console presentation for a severity
func SeverityColor(s models.Severity) *color.Color {
	switch s {
	case models.SeverityViolation:
		return violationColor
	case models.SeverityWarning:
		return warningColor
	default:
		return nominalColor
	}
}

// FormatAverage renders a batch average the way the console shows it
func FormatAverage(avg float64) string {
	return fmt.Sprintf("%.2f °C", avg)
}

// Console prints each window as a colored table
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console reporter writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Report(_ context.Context, report models.WindowReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rule := strings.Repeat("-", 105)

	var b strings.Builder
	fmt.Fprintf(&b, "\nThreshold Time = %d seconds\n", report.Thresholds.IntervalSeconds)
	fmt.Fprintf(&b, "Threshold Temperature = %d °C\n", report.Thresholds.Temperature)
	fmt.Fprintf(&b, "Total Temperature Pools = %d\n\n", len(report.Batches))
	if _, err := io.WriteString(c.out, b.String()); err != nil {
		return fmt.Errorf("console report: %w", err)
	}

	ruleColor.Fprintln(c.out, rule)
	ruleColor.Fprintf(c.out, "| %-15s | %-15s | %-19s | %-20s | %-20s |\n",
		"Poll Number", "Area", "Average Temperature", "Start Time", "End Time")
	ruleColor.Fprintln(c.out, rule)

	for _, batch := range report.Batches {
		SeverityColor(batch.Severity).Fprintf(c.out, "| %-15d | %-15s | %-19s | %-20s | %-20s |\n",
			batch.PollNumber,
			batch.Area,
			FormatAverage(batch.AverageTemperature),
			batch.StartTime.Format(timeLayout),
			batch.EndTime.Format(timeLayout),
		)
	}

	_, err := ruleColor.Fprintln(c.out, rule)
	return err
}
