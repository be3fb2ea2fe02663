package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/darshanbhalani/temperature-consumer/internal/config"
	"github.com/darshanbhalani/temperature-consumer/internal/influxdb"
	"github.com/darshanbhalani/temperature-consumer/internal/kafka"
	"github.com/darshanbhalani/temperature-consumer/internal/log"
	"github.com/darshanbhalani/temperature-consumer/internal/postgres"
	"github.com/darshanbhalani/temperature-consumer/internal/processor"
	"github.com/darshanbhalani/temperature-consumer/internal/queue"
	"github.com/darshanbhalani/temperature-consumer/internal/redis"
	"github.com/darshanbhalani/temperature-consumer/internal/status"
	"github.com/darshanbhalani/temperature-consumer/internal/thresholds"
)

type closableSource interface {
	queue.Source
	Close() error
}

func main() {
	if err := run(); err != nil {
		log.Sync()
		fmt.Fprintf(os.Stderr, "temperature-consumer: %v\n", err)
		os.Exit(1)
	}
	log.Sync()
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := log.Init(cfg.Debug); err != nil {
		return err
	}

	// Create context that is canceled on termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Infow("Received termination signal, shutting down", "signal", sig.String())
		cancel()
	}()

	startupCtx, startupCancel := context.WithTimeout(ctx, 30*time.Second)
	defer startupCancel()

	db, err := postgres.NewClient(startupCtx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close(context.Background())

	reporters := status.Multi{status.NewConsole(os.Stdout)}

	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.NewClient(startupCtx, cfg.InfluxDB)
		if err != nil {
			return err
		}
		defer influxClient.Close()
		reporters = append(reporters, influxClient)
	}

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(startupCtx, cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		reporters = append(reporters, redis.NewSnapshot(redisClient, cfg.Redis.Key, cfg.Redis.TTL))
	}

	source, err := newSource(startupCtx, cfg.Queue)
	if err != nil {
		return err
	}
	defer func() {
		if err := source.Close(); err != nil {
			log.Warnw("Error closing subscription", "error", err)
		}
	}()

	gate := thresholds.NewGate(db, cfg.Window.ConfigurationID, cfg.Window.Thresholds())
	proc := processor.NewProcessor(source, db, reporters, gate)

	log.Infow("Starting temperature consumer",
		"queue_client", cfg.Queue.Client,
		"brokers", cfg.Queue.Brokers,
		"topic", cfg.Queue.Topic)

	if err := proc.Run(ctx); err != nil {
		return err
	}

	log.Info("Shutdown complete.")
	return nil
}

func newSource(ctx context.Context, cfg config.QueueConfig) (closableSource, error) {
	switch cfg.Client {
	case config.QueueClientFranz:
		return kafka.NewFranzConsumer(ctx, cfg)
	default:
		return kafka.NewConsumer(cfg)
	}
}
