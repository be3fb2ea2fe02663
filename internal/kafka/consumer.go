package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"

	"github.com/darshanbhalani/temperature-consumer/internal/config"
	"github.com/darshanbhalani/temperature-consumer/internal/log"
	"github.com/darshanbhalani/temperature-consumer/internal/queue"
)

// Consumer represents a Kafka consumer group member subscribed to a single
// topic. Messages are handed to Receive one at a time.
type Consumer struct {
	id       string
	config   config.QueueConfig
	consumer sarama.ConsumerGroup
	messages chan *sarama.ConsumerMessage
	errs     chan error
	fatal    chan error

	startOnce sync.Once
	stop      context.CancelFunc
	done      chan struct{}

	joinOnce sync.Once
	joined   chan struct{}
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(cfg config.QueueConfig) (*Consumer, error) {
	id := "temperature-consumer-" + uuid.NewString()

	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = id
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return newConsumer(id, cfg, group), nil
}

func newConsumer(id string, cfg config.QueueConfig, group sarama.ConsumerGroup) *Consumer {
	return &Consumer{
		id:       id,
		config:   cfg,
		consumer: group,
		messages: make(chan *sarama.ConsumerMessage),
		errs:     make(chan error, 16),
		fatal:    make(chan error, 1),
		done:     make(chan struct{}),
		joined:   make(chan struct{}),
	}
}

// start joins the consumer group in the background on first use. The
// subscription is only established once the first session is set up.
func (c *Consumer) start() {
	c.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		c.stop = cancel

		go func() {
			for err := range c.consumer.Errors() {
				select {
				case c.errs <- err:
				default:
					log.Warnw("Dropping consumer error, receiver is behind", "consumer", c.id, "error", err)
				}
			}
		}()

		go func() {
			defer close(c.done)
			handler := &consumerGroupHandler{consumer: c}
			log.Infow("Joining consumer group", "consumer", c.id, "topic", c.config.Topic, "group", c.config.GroupID)

			// Consume returns on every rebalance and has to be called again.
			for {
				err := c.consumer.Consume(ctx, []string{c.config.Topic}, handler)
				if ctx.Err() != nil {
					return
				}
				if err != nil {
					if errors.Is(err, sarama.ErrClosedConsumerGroup) {
						err = queue.ErrClosed
					}
					c.fatal <- fmt.Errorf("consumer %s: %w", c.id, err)
					return
				}
			}
		}()
	})
}

// Receive blocks until the next message value is available
func (c *Consumer) Receive(ctx context.Context) ([]byte, error) {
	c.start()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg := <-c.messages:
		return msg.Value, nil
	case err := <-c.errs:
		return nil, queue.Transient(err)
	case err := <-c.fatal:
		return nil, err
	}
}

// Close leaves the consumer group
func (c *Consumer) Close() error {
	if c.stop != nil {
		c.stop()
	}
	err := c.consumer.Close()
	if c.stop != nil {
		<-c.done
	}
	return err
}

// consumerGroupHandler implements sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	consumer *Consumer
}

func (h *consumerGroupHandler) Setup(session sarama.ConsumerGroupSession) error {
	c := h.consumer
	c.joinOnce.Do(func() {
		log.Infow("Subscribed to topic", "consumer", c.id, "topic", c.config.Topic, "group", c.config.GroupID)
		close(c.joined)
	})
	log.Debugw("Consumer group session started",
		"consumer", c.id, "generation", session.GenerationID(), "claims", session.Claims())
	return nil
}

func (h *consumerGroupHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-session.Context().Done():
			return nil
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			select {
			case h.consumer.messages <- message:
				session.MarkMessage(message, "")
			case <-session.Context().Done():
				return nil
			}
		}
	}
}
