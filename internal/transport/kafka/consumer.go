package kafka

import (
	"context"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"fastfeet/internal/logx"
	"fastfeet/internal/notify"
)

// HandleFunc processes a single notification task from Kafka.
type HandleFunc func(context.Context, notify.Task) error

var newConsumerGroup = sarama.NewConsumerGroup

// retryDelay is the pause between failed consume sessions.
const retryDelay = time.Second

// Consumer wraps a Sarama consumer group and dispatches tasks to a handler.
// Offsets are marked only after the handler succeeds or fails permanently.
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler HandleFunc
	logger  logx.Logger
}

// NewConsumer creates a new Kafka consumer. It returns nil, nil when Kafka is not configured.
func NewConsumer(logger logx.Logger, brokers []string, groupID, topic string, h HandleFunc) (*Consumer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" || strings.TrimSpace(groupID) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true

	group, err := newConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		topic:   topic,
		handler: h,
		logger:  logger,
	}, nil
}

// Run consumes until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	if c == nil {
		return nil
	}

	go c.logErrors()

	h := &groupHandler{c: c}
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, h); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("kafka consume error", logx.Err(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) logErrors() {
	for err := range c.group.Errors() {
		c.logger.Warn("kafka consumer group error", logx.Err(err))
	}
}

// Close leaves the group.
func (c *Consumer) Close() error {
	if c == nil {
		return nil
	}
	return c.group.Close()
}

type groupHandler struct{ c *Consumer }

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log := h.c.logger
	for msg := range claim.Messages() {
		t, err := notify.Decode(msg.Value)
		if err != nil {
			log.Warn("kafka bad message",
				logx.Int64("offset", msg.Offset),
				logx.Err(err),
			)
			sess.MarkMessage(msg, "")
			continue
		}
		if t.Payload.DeliveryID <= 0 {
			log.Warn("kafka empty delivery_id", logx.String("task", string(t.Name)))
			sess.MarkMessage(msg, "")
			continue
		}

		if err := h.c.handler(sess.Context(), t); err != nil {
			if IsPermanent(err) {
				log.Error("kafka handle failed, skipping message",
					logx.String("task", string(t.Name)),
					logx.Int64("delivery_id", t.Payload.DeliveryID),
					logx.Err(err),
				)
				sess.MarkMessage(msg, "")
				continue
			}
			log.Warn("kafka handle failed, will retry",
				logx.String("task", string(t.Name)),
				logx.Int64("delivery_id", t.Payload.DeliveryID),
				logx.Err(err),
			)
			return err
		}

		sess.MarkMessage(msg, "")
	}
	return nil
}
