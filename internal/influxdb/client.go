package influxdb

import (
	"context"
	"fmt"
	"strconv"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/darshanbhalani/temperature-consumer/internal/config"
	"github.com/darshanbhalani/temperature-consumer/internal/log"
	"github.com/darshanbhalani/temperature-consumer/internal/models"
)

const windowMeasurement = "temperature_window"

// Client mirrors closed windows into an InfluxDB v2 bucket
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
}

// NewClient initializes the InfluxDB v2 client and verifies connectivity
func NewClient(ctx context.Context, cfg config.InfluxDBConfig) (*Client, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)

	if _, err := client.Health(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}

	// The write API is non-blocking; write failures only surface here.
	go func() {
		for err := range writeAPI.Errors() {
			log.Warnw("InfluxDB write failed", "error", err)
		}
	}()

	log.Infow("InfluxDB connection verified", "url", cfg.URL, "bucket", cfg.Bucket)
	return &Client{
		client:   client,
		writeAPI: writeAPI,
	}, nil
}

// Report writes one point per batch of the closed window
func (c *Client) Report(_ context.Context, report models.WindowReport) error {
	for _, point := range windowPoints(report) {
		c.writeAPI.WritePoint(point)
	}
	return nil
}

func windowPoints(report models.WindowReport) []*write.Point {
	points := make([]*write.Point, 0, len(report.Batches))
	for _, batch := range report.Batches {
		points = append(points, write.NewPoint(
			windowMeasurement,
			map[string]string{
				"poll_number": strconv.FormatInt(batch.PollNumber, 10),
				"severity":    batch.Severity.String(),
			},
			map[string]interface{}{
				"average_temperature": batch.AverageTemperature,
				"reading_count":       batch.ReadingCount,
				"threshold":           report.Thresholds.Temperature,
				"interval_seconds":    report.Thresholds.IntervalSeconds,
				"window_seconds":      batch.EndTime.Sub(batch.StartTime).Seconds(),
			},
			batch.EndTime,
		))
	}
	return points
}

// Close flushes pending writes and closes the InfluxDB client
func (c *Client) Close() {
	c.writeAPI.Flush()
	c.client.Close()
}
