package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/dig"

	"fastfeet/internal/logx"
	"fastfeet/internal/transport/kafka"
)

// WorkerRunner runs the notification worker
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun consumes until the container context is done.
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	logger logx.Logger,
	consumer *kafka.Consumer,
	metricsSrv *http.Server,
) error {
	if consumer == nil {
		return fmt.Errorf("kafka consumer is nil: worker container misconfigured")
	}
	defer closeWorker(logger, consumer, metricsSrv)

	if metricsSrv != nil {
		go func() {
			if err := <-startServer(metricsSrv, logger, "worker metrics"); err != nil {
				logger.Error("worker metrics server failed", logx.Err(err))
			}
		}()
	}

	logger.Info("fastfeet worker started")
	return consumer.Run(ctx)
}

func closeWorker(logger logx.Logger, kafkaConsumer *kafka.Consumer, metricsSrv *http.Server) {
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Close(); err != nil {
			logger.Error("kafka close error", logx.Err(err))
		}
	}
	if metricsSrv != nil {
		if err := metricsSrv.Close(); err != nil {
			logger.Warn("metrics server close error", logx.Err(err))
		}
	}
}
