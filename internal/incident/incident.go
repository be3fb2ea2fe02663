// Package incident classifies window batches against the active threshold.
package incident

import (
	"github.com/darshanbhalani/temperature-consumer/internal/models"
)

// WarningMargin is how far below the threshold an average may sit and still
// be reported as a warning.
const WarningMargin = 5.0

// Classify returns the severity of a batch average. A batch exactly at the
// threshold is a warning; only averages strictly above it are violations.
func Classify(average float64, threshold int) models.Severity {
	limit := float64(threshold)

	switch {
	case average > limit:
		return models.SeverityViolation
	case limit-average <= WarningMargin:
		return models.SeverityWarning
	default:
		return models.SeverityNominal
	}
}

// Assess classifies every batch and returns them alongside the violating
// subset that has to be persisted.
func Assess(batches []models.BatchIncident, threshold int) (classified []models.ClassifiedIncident, violations []models.BatchIncident) {
	classified = make([]models.ClassifiedIncident, 0, len(batches))

	for _, b := range batches {
		severity := Classify(b.AverageTemperature, threshold)
		classified = append(classified, models.ClassifiedIncident{
			BatchIncident: b,
			Severity:      severity,
		})
		if severity == models.SeverityViolation {
			violations = append(violations, b)
		}
	}

	return classified, violations
}
