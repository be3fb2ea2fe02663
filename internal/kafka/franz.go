package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/darshanbhalani/temperature-consumer/internal/config"
	"github.com/darshanbhalani/temperature-consumer/internal/log"
	"github.com/darshanbhalani/temperature-consumer/internal/queue"
)

// fetcher is the subset of *kgo.Client used by FranzConsumer
type fetcher interface {
	PollFetches(ctx context.Context) kgo.Fetches
	MarkCommitRecords(rs ...*kgo.Record)
	Close()
}

// FranzConsumer consumes the topic with franz-go, for Redpanda clusters or
// brokers sarama does not support.
type FranzConsumer struct {
	client  fetcher
	topic   string
	pending []*kgo.Record
}

// NewFranzConsumer creates a consumer group member and checks the brokers
// are reachable
func NewFranzConsumer(ctx context.Context, cfg config.QueueConfig) (*FranzConsumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.AutoCommitMarks(),
		kgo.SessionTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create franz-go client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach brokers %v: %w", cfg.Brokers, err)
	}

	log.Infow("Subscribed to topic", "topic", cfg.Topic, "group", cfg.GroupID, "client", "franz-go")
	return &FranzConsumer{client: client, topic: cfg.Topic}, nil
}

// Receive returns the next record value, polling the brokers when no
// fetched records are left
func (c *FranzConsumer) Receive(ctx context.Context) ([]byte, error) {
	for len(c.pending) == 0 {
		fetches := c.client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if fetches.IsClientClosed() {
			return nil, queue.ErrClosed
		}

		var errs []error
		fetches.EachError(func(topic string, partition int32, err error) {
			errs = append(errs, fmt.Errorf("%s[%d]: %w", topic, partition, err))
		})
		fetches.EachRecord(func(r *kgo.Record) {
			c.pending = append(c.pending, r)
		})

		if len(c.pending) == 0 && len(errs) > 0 {
			return nil, queue.Transient(errors.Join(errs...))
		}
		for _, err := range errs {
			log.Warnw("Fetch error", "topic", c.topic, "error", err)
		}
	}

	record := c.pending[0]
	c.pending[0] = nil
	c.pending = c.pending[1:]
	c.client.MarkCommitRecords(record)
	return record.Value, nil
}

// Close leaves the group and closes the client
func (c *FranzConsumer) Close() error {
	c.client.Close()
	return nil
}
