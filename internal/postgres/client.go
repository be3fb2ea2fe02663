package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/darshanbhalani/temperature-consumer/internal/config"
	"github.com/darshanbhalani/temperature-consumer/internal/log"
	"github.com/darshanbhalani/temperature-consumer/internal/models"
)

// conn is the subset of *pgx.Conn the client uses
type conn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Client stores incidents and reads the threshold configuration over a
// single long-lived connection.
type Client struct {
	conn conn
}

// NewClient connects to PostgreSQL and verifies the connection
func NewClient(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	log.Infow("Connecting to PostgreSQL", "host", cfg.Host, "port", cfg.Port, "database", cfg.Database)

	c, err := pgx.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := c.Ping(ctx); err != nil {
		_ = c.Close(ctx)
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	log.Info("Database connection successful")
	return &Client{conn: c}, nil
}

// StoreIncidents writes one window's violating batches in a single call
func (c *Client) StoreIncidents(ctx context.Context, set models.IncidentSet) error {
	if set.Len() == 0 {
		return nil
	}

	_, err := c.conn.Exec(ctx, storeIncidentsSQL,
		set.PollNumbers,
		set.Areas,
		set.Descriptions,
		set.Thresholds,
		set.Intervals,
		set.StartTimes,
		set.EndTimes,
	)
	if err != nil {
		return fmt.Errorf("store %d incidents: %w", set.Len(), err)
	}
	return nil
}

// LoadThresholds reads the active configuration row
func (c *Client) LoadThresholds(ctx context.Context, configurationID int) (models.Thresholds, bool, error) {
	var t models.Thresholds

	err := c.conn.QueryRow(ctx, loadThresholdsSQL, configurationID).Scan(&t.Temperature, &t.IntervalSeconds)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Thresholds{}, false, nil
	}
	if err != nil {
		return models.Thresholds{}, false, fmt.Errorf("load configuration %d: %w", configurationID, err)
	}
	return t, true, nil
}

// Close closes the database connection
func (c *Client) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}
