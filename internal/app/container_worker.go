package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"fastfeet/internal/config"
	"fastfeet/internal/logx"
	"fastfeet/internal/mail"
	"fastfeet/internal/service/notification"
	"fastfeet/internal/transport/kafka"
)

// MustBuildWorker builds the notification worker container.
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.buildWorker(ctx)
	if err != nil {
		b.fatal("failed to build worker container", err)
	}
	return container
}

func (b *ContainerBuilder) buildWorker(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, b.loadConfig); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerMetrics(container); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if err := registerWorker(container); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return container, nil
}

// MustBuildWorkerContainer builds the notification worker container.
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

type senderIn struct {
	dig.In
	Config  *config.Config
	Logger  logx.Logger
	Retries prometheus.Counter `name:"mail_retries_total"`
}

func newMailSender(in senderIn) (mail.Sender, error) {
	mc := in.Config.Mail
	smtp, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Addr:     mc.Addr(),
		User:     mc.User,
		Password: mc.Password,
		Host:     mc.Host,
		From:     mc.From,
	})
	if err != nil {
		return nil, err
	}
	return mail.NewRetryingSender(smtp, in.Logger, in.Retries, mail.RetryConfig{
		MaxAttempts: mc.MaxAttempts,
		BaseDelay:   mc.BaseDelay,
		MaxDelay:    mc.MaxDelay,
	}), nil
}

func newRenderer(cfg *config.Config) (*mail.Renderer, error) {
	return mail.NewRenderer(cfg.Delivery.Location)
}

func newProcessor(r *mail.Renderer, s mail.Sender, logger logx.Logger) *notification.Processor {
	return notification.NewProcessor(r, s, logger)
}

type handleIn struct {
	dig.In
	Processor     *notification.Processor
	Notifications *prometheus.CounterVec `name:"notifications_total"`
}

func newHandleFunc(in handleIn) kafka.HandleFunc {
	return makeNotificationHandler(in.Processor, in.Notifications)
}

func newConsumer(cfg *config.Config, logger logx.Logger, h kafka.HandleFunc) (*kafka.Consumer, error) {
	return kafka.NewConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.Group, cfg.Kafka.Topic, h)
}

// newMetricsServer exposes the worker's collectors; the worker has no other HTTP surface.
func newMetricsServer(cfg *config.Config) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		newMailSender,
		newRenderer,
		newProcessor,
		newHandleFunc,
		newConsumer,
		newMetricsServer,
	)
}
