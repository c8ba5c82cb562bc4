package app

import (
	"fmt"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"fastfeet/internal/config"
	"fastfeet/internal/logx"
	"fastfeet/internal/notify"
)

var newAsyncProducer = sarama.NewAsyncProducer

// dispatcherCloser flushes queued notifications on shutdown.
type dispatcherCloser func() error

type dispatcherIn struct {
	dig.In
	Config        *config.Config
	Logger        logx.Logger
	Notifications *prometheus.CounterVec `name:"notifications_total"`
}

type dispatcherOut struct {
	dig.Out
	Dispatcher notify.Dispatcher
	Close      dispatcherCloser
}

// newDispatcher publishes to Kafka when brokers are configured. Without
// brokers notifications are discarded and the API still runs.
func newDispatcher(in dispatcherIn) (dispatcherOut, error) {
	kc := in.Config.Kafka
	if !kc.Enabled() {
		in.Logger.Warn("kafka brokers not configured, notifications disabled")
		return dispatcherOut{
			Dispatcher: notify.Nop(),
			Close:      func() error { return nil },
		}, nil
	}

	producer, err := newAsyncProducer(kc.Brokers, notify.NewProducerConfig(kc.QueueSize))
	if err != nil {
		return dispatcherOut{}, fmt.Errorf("kafka producer: %w", err)
	}
	d := notify.NewKafkaDispatcher(producer, kc.Topic, in.Logger, in.Notifications)
	in.Logger.Info("notification dispatcher started",
		logx.String("topic", kc.Topic),
		logx.Int("queue_size", kc.QueueSize),
	)
	return dispatcherOut{Dispatcher: d, Close: d.Close}, nil
}

func registerNotify(container *dig.Container) error {
	return provideAll(container, newDispatcher)
}
