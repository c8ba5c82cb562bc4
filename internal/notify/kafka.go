package notify

import (
	"context"
	"strconv"
	"sync"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"

	"fastfeet/internal/domain"
	"fastfeet/internal/logx"
)

// NewProducerConfig returns the sarama settings used for notifications. The
// input buffer is the bound on queued-but-unsent tasks.
func NewProducerConfig(queueSize int) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ChannelBufferSize = queueSize
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	return cfg
}

// KafkaDispatcher publishes tasks through a sarama AsyncProducer.
type KafkaDispatcher struct {
	producer sarama.AsyncProducer
	topic    string
	logger   logx.Logger
	results  *prometheus.CounterVec

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewKafkaDispatcher starts draining producer results. results is labelled by task and result.
func NewKafkaDispatcher(producer sarama.AsyncProducer, topic string, logger logx.Logger, results *prometheus.CounterVec) *KafkaDispatcher {
	d := &KafkaDispatcher{producer: producer, topic: topic, logger: logger, results: results}
	d.wg.Add(2)
	go d.drainSuccesses()
	go d.drainErrors()
	return d
}

// Enqueue hands the task to the producer without blocking. When the input
// buffer is full the task is dropped and ErrQueueFull is returned.
func (d *KafkaDispatcher) Enqueue(_ context.Context, t Task) error {
	value, err := Encode(t)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic:    d.topic,
		Key:      sarama.StringEncoder(strconv.FormatInt(t.Payload.DeliveryID, 10)),
		Value:    sarama.ByteEncoder(value),
		Metadata: t.Name,
	}

	select {
	case d.producer.Input() <- msg:
		d.count(string(t.Name), "enqueued")
		return nil
	default:
		d.count(string(t.Name), "dropped")
		d.logger.Warn("notification dropped",
			logx.String("task", string(t.Name)),
			logx.Int64("delivery_id", t.Payload.DeliveryID),
		)
		return ErrQueueFull
	}
}

// Close flushes in-flight messages and stops the producer.
func (d *KafkaDispatcher) Close() error {
	d.closeOnce.Do(func() {
		d.producer.AsyncClose()
		d.wg.Wait()
	})
	return nil
}

func (d *KafkaDispatcher) drainSuccesses() {
	defer d.wg.Done()
	for msg := range d.producer.Successes() {
		d.logger.Debug("notification published",
			logx.String("task", taskOf(msg)),
			logx.Int("partition", int(msg.Partition)),
			logx.Int64("offset", msg.Offset),
		)
	}
}

func (d *KafkaDispatcher) drainErrors() {
	defer d.wg.Done()
	for perr := range d.producer.Errors() {
		task := taskOf(perr.Msg)
		d.count(task, "failed")
		d.logger.Warn("notification publish failed", logx.String("task", task), logx.Err(perr.Err))
	}
}

func (d *KafkaDispatcher) count(task, result string) {
	if d.results != nil {
		d.results.WithLabelValues(task, result).Inc()
	}
}

func taskOf(msg *sarama.ProducerMessage) string {
	if msg == nil {
		return ""
	}
	if name, ok := msg.Metadata.(domain.TaskName); ok {
		return string(name)
	}
	return ""
}
