// Package thresholds keeps the active threshold/interval pair in step with
// the configuration store.
package thresholds

import (
	"context"

	"github.com/darshanbhalani/temperature-consumer/internal/log"
	"github.com/darshanbhalani/temperature-consumer/internal/models"
)

// Store looks up the configuration row. found is false when no active row
// exists.
type Store interface {
	LoadThresholds(ctx context.Context, configurationID int) (t models.Thresholds, found bool, err error)
}

// Gate holds the last known thresholds and refreshes them on demand
type Gate struct {
	store           Store
	configurationID int
	current         models.Thresholds
}

// NewGate creates a gate that starts out with initial
func NewGate(store Store, configurationID int, initial models.Thresholds) *Gate {
	return &Gate{
		store:           store,
		configurationID: configurationID,
		current:         initial,
	}
}

// Current returns the thresholds in effect
func (g *Gate) Current() models.Thresholds {
	return g.current
}

// Refresh reloads the thresholds. When the store has no row, fails, or
// returns an unusable row the previous values stay in effect.
func (g *Gate) Refresh(ctx context.Context) models.Thresholds {
	t, found, err := g.store.LoadThresholds(ctx, g.configurationID)
	if err == nil && found {
		err = t.Validate()
	}

	switch {
	case err != nil:
		log.Warnw("Keeping previous thresholds",
			"configuration_id", g.configurationID, "error", err)
	case !found:
	default:
		if t != g.current {
			log.Infow("Thresholds updated",
				"threshold_temperature", t.Temperature, "threshold_seconds", t.IntervalSeconds)
		}
		g.current = t
	}
	return g.current
}
