package thresholds

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/darshanbhalani/temperature-consumer/internal/models"
)

type fakeStore struct {
	thresholds models.Thresholds
	found      bool
	err        error
	calls      int
	lastID     int
}

func (f *fakeStore) LoadThresholds(_ context.Context, id int) (models.Thresholds, bool, error) {
	f.calls++
	f.lastID = id
	return f.thresholds, f.found, f.err
}

func TestGateRefresh(t *testing.T) {
	initial := models.Thresholds{Temperature: 45, IntervalSeconds: 10}

	tests := []struct {
		name     string
		store    *fakeStore
		expected models.Thresholds
	}{
		{
			name:     "row found",
			store:    &fakeStore{thresholds: models.Thresholds{Temperature: 60, IntervalSeconds: 30}, found: true},
			expected: models.Thresholds{Temperature: 60, IntervalSeconds: 30},
		},
		{
			name:     "no row keeps previous",
			store:    &fakeStore{found: false},
			expected: initial,
		},
		{
			name:     "store error keeps previous",
			store:    &fakeStore{err: errors.New("connection reset")},
			expected: initial,
		},
		{
			name:     "negative interval keeps previous",
			store:    &fakeStore{thresholds: models.Thresholds{Temperature: 60, IntervalSeconds: -1}, found: true},
			expected: initial,
		},
		{
			name:     "interval beyond int32 keeps previous",
			store:    &fakeStore{thresholds: models.Thresholds{Temperature: 60, IntervalSeconds: math.MaxInt32 + 1}, found: true},
			expected: initial,
		},
		{
			name:     "temperature beyond int32 keeps previous",
			store:    &fakeStore{thresholds: models.Thresholds{Temperature: math.MaxInt32 + 1, IntervalSeconds: 10}, found: true},
			expected: initial,
		},
		{
			name:     "zero interval accepted",
			store:    &fakeStore{thresholds: models.Thresholds{Temperature: 40, IntervalSeconds: 0}, found: true},
			expected: models.Thresholds{Temperature: 40, IntervalSeconds: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate(tt.store, 2, initial)
			require.Equal(t, initial, g.Current())

			got := g.Refresh(context.Background())
			require.Equal(t, tt.expected, got)
			require.Equal(t, tt.expected, g.Current())
			require.Equal(t, 1, tt.store.calls)
			require.Equal(t, 2, tt.store.lastID)
		})
	}
}

func TestGateKeepsLastGoodValueAcrossOutages(t *testing.T) {
	store := &fakeStore{thresholds: models.Thresholds{Temperature: 50, IntervalSeconds: 20}, found: true}
	g := NewGate(store, 2, models.DefaultThresholds())

	g.Refresh(context.Background())

	store.found = false
	store.err = errors.New("timeout")
	require.Equal(t, models.Thresholds{Temperature: 50, IntervalSeconds: 20}, g.Refresh(context.Background()))
}
