package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"fastfeet/internal/config"
	"fastfeet/internal/logx"
	"fastfeet/internal/service/user"
)

const shutdownTimeout = 15 * time.Second

// Runner runs the HTTP API from a built container.
type Runner struct {
	runFn func(*dig.Container) error
}

// NewRunner returns a Runner for the API container.
func NewRunner() *Runner {
	return &Runner{runFn: run}
}

// MustRun starts the HTTP server using the provided DI container
func MustRun(container *dig.Container) {
	NewRunner().MustRun(container)
}

// MustRun runs until the container context is done. Anything other than a
// requested shutdown terminates the process.
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}
	logger := containerLogger(container)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("startup aborted: startup timeout exceeded")
	default:
		logger.Error("run error", logx.Err(err))
		exit(1)
	}
}

func containerLogger(container *dig.Container) logx.Logger {
	var logger logx.Logger
	if container != nil {
		_ = container.Invoke(func(l logx.Logger) { logger = l })
	}
	if logger == nil {
		logger = NewLogger(os.Stderr, "info")
	}
	return logger
}

func run(container *dig.Container) error {
	return container.Invoke(appRun)
}

type runIn struct {
	dig.In
	Ctx    context.Context
	Config *config.Config
	Server *http.Server
	Pool   *pgxpool.Pool
	Logger logx.Logger
	Users  *user.Service
	Flush  dispatcherCloser
}

func appRun(in runIn) error {
	if err := bootstrapAdministrator(in.Ctx, in.Config.Admin, in.Users, in.Logger); err != nil {
		return err
	}

	listenErr := startServer(in.Server, in.Logger, "fastfeet api")
	select {
	case <-in.Ctx.Done():
		in.Logger.Info("shutting down fastfeet api")
	case err := <-listenErr:
		closeResources(in.Pool, in.Server, in.Flush, in.Logger)
		return err
	}

	gracefulShutdown(in.Server, in.Logger, shutdownTimeout)
	closeResources(in.Pool, in.Server, in.Flush, in.Logger)
	return nil
}

type administratorEnsurer interface {
	EnsureAdministrator(ctx context.Context, name, email, password string) error
}

// bootstrapAdministrator creates the configured administrator account once.
func bootstrapAdministrator(ctx context.Context, admin config.Admin, users administratorEnsurer, logger logx.Logger) error {
	if !admin.Enabled() {
		logger.Debug("administrator bootstrap skipped")
		return nil
	}
	if err := users.EnsureAdministrator(ctx, admin.Name, admin.Email, admin.Password); err != nil {
		return fmt.Errorf("bootstrap administrator: %w", err)
	}
	return nil
}

// startServer listens in the background. The returned channel yields the
// listen failure, if any, and is closed once the server stops.
func startServer(server *http.Server, logger logx.Logger, name string) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logger.Info(name+" listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen %s: %w", server.Addr, err)
		}
	}()
	return errCh
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Warn("graceful shutdown error", logx.Err(err))
	}
}

func closeResources(pool *pgxpool.Pool, server *http.Server, flush dispatcherCloser, logger logx.Logger) {
	if err := server.Close(); err != nil {
		logger.Warn("server close error", logx.Err(err))
	}
	if flush != nil {
		if err := flush(); err != nil {
			logger.Warn("notification flush error", logx.Err(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
}
