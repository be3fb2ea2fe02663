package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/darshanbhalani/temperature-consumer/internal/models"
	"github.com/darshanbhalani/temperature-consumer/internal/status"
)

var _ status.Reporter = (*Snapshot)(nil)

type fakeSetter struct {
	key   string
	value []byte
	ttl   time.Duration
	err   error
}

func (f *fakeSetter) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.key = key
	f.value = value.([]byte)
	f.ttl = ttl
	return redis.NewStatusResult("OK", f.err)
}

func TestSnapshotReport(t *testing.T) {
	fs := &fakeSetter{}
	s := &Snapshot{client: fs, key: "temperature:window:latest", ttl: time.Minute}

	report := models.WindowReport{
		Thresholds: models.Thresholds{Temperature: 45, IntervalSeconds: 10},
		Batches: []models.ClassifiedIncident{
			{BatchIncident: models.BatchIncident{PollNumber: 3, AverageTemperature: 45}, Severity: models.SeverityWarning},
		},
	}
	require.NoError(t, s.Report(context.Background(), report))
	require.Equal(t, "temperature:window:latest", fs.key)
	require.Equal(t, time.Minute, fs.ttl)

	var stored models.WindowReport
	require.NoError(t, json.Unmarshal(fs.value, &stored))
	require.Equal(t, 45, stored.Thresholds.Temperature)
	require.Len(t, stored.Batches, 1)
	require.Equal(t, models.SeverityWarning, stored.Batches[0].Severity)
}

func TestSnapshotReportError(t *testing.T) {
	fs := &fakeSetter{err: errors.New("READONLY")}
	s := &Snapshot{client: fs, key: "k"}

	err := s.Report(context.Background(), models.WindowReport{})
	require.ErrorIs(t, err, fs.err)
}
