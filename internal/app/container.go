package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"fastfeet/internal/access"
	"fastfeet/internal/auth"
	"fastfeet/internal/config"
	"fastfeet/internal/lifecycle"
	"fastfeet/internal/logx"
	"fastfeet/internal/notify"
	"fastfeet/internal/repository"
	"fastfeet/internal/service/delivery"
	"fastfeet/internal/service/deliveryman"
	"fastfeet/internal/service/file"
	"fastfeet/internal/service/problem"
	"fastfeet/internal/service/recipient"
	"fastfeet/internal/service/user"
)

type dbConnectFunc func(ctx context.Context, logger logx.Logger, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	loadConfig func() (*config.Config, error)
	dbConnect  dbConnectFunc
	migrate    func(dsn string, logger logx.Logger) error
	fatal      func(msg string, err error)
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		loadConfig: config.Load,
		dbConnect:  connectDbWithRetry,
		migrate:    repository.Migrate,
		fatal:      fatal,
	}
}

// WithConfig replaces config.Load.
func (b *ContainerBuilder) WithConfig(fn func() (*config.Config, error)) *ContainerBuilder {
	if fn != nil {
		b.loadConfig = fn
	}
	return b
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithMigrate replaces repository.Migrate.
func (b *ContainerBuilder) WithMigrate(fn func(string, logx.Logger) error) *ContainerBuilder {
	if fn != nil {
		b.migrate = fn
	}
	return b
}

// WithFatal sets what MustBuild calls when the container cannot be built.
func (b *ContainerBuilder) WithFatal(fn func(string, error)) *ContainerBuilder {
	if fn != nil {
		b.fatal = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.fatal("failed to build container", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, b.loadConfig); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerMetrics(container); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if err := registerDb(container, b.dbConnect, b.migrate); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerNotify(container); err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds the API container.
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context, loadConfig func() (*config.Config, error)) error {
	return provideAll(container,
		func() context.Context { return ctx },
		loadConfig,
		func(cfg *config.Config) logx.Logger { return NewLogger(os.Stdout, cfg.LogLevel) },
	)
}

func registerDb(container *dig.Container, dbConnect dbConnectFunc, migrate func(string, logx.Logger) error) error {
	providerDB := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*pgxpool.Pool, error) {
		dsn := cfg.DB.DSN()
		pool, err := dbConnect(ctx, logger, dsn, 10, time.Second)
		if err != nil {
			return nil, err
		}
		if err := migrate(dsn, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return pool, nil
	}
	return provideAll(container,
		providerDB,
		repository.NewReadinessChecker,
		repository.NewDeliveryRepo,
		repository.NewRecipientRepo,
		repository.NewDeliverymanRepo,
		repository.NewFileRepo,
		repository.NewProblemRepo,
		repository.NewUserRepo,
	)
}

type serviceIn struct {
	dig.In
	Config     *config.Config
	Logger     logx.Logger
	Timeout    time.Duration
	Dispatcher notify.Dispatcher

	Transitions  *prometheus.CounterVec `name:"delivery_transitions_total"`
	AdminLookups *prometheus.CounterVec `name:"access_admin_cache_lookups_total"`

	Deliveries  *repository.DeliveryRepo
	Recipients  *repository.RecipientRepo
	Deliverymen *repository.DeliverymanRepo
	Files       *repository.FileRepo
	Problems    *repository.ProblemRepo
	Users       *repository.UserRepo
}

type serviceOut struct {
	dig.Out
	Tokens      *auth.Tokens
	Policy      *access.Policy
	Deliveries  *delivery.Service
	Recipients  *recipient.Service
	Deliverymen *deliveryman.Service
	Files       *file.Service
	Problems    *problem.Service
	Users       *user.Service
}

func newServices(in serviceIn) (serviceOut, error) {
	tokens, err := auth.NewTokens(in.Config.Auth.Secret, in.Config.Auth.TTL)
	if err != nil {
		return serviceOut{}, fmt.Errorf("tokens: %w", err)
	}
	engine := lifecycle.New(in.Config.Delivery.Location)

	return serviceOut{
		Tokens: tokens,
		Policy: access.NewPolicy(in.Users, in.Config.Access.CacheSize, in.Config.Access.CacheTTL,
			in.AdminLookups, in.Logger),
		Deliveries: delivery.NewDeliveryService(in.Deliveries, in.Deliverymen, engine, in.Dispatcher,
			in.Timeout, in.Logger, delivery.WithTransitionsCounter(in.Transitions)),
		Recipients:  recipient.NewService(in.Recipients, in.Timeout),
		Deliverymen: deliveryman.NewService(in.Deliverymen, in.Files, in.Timeout),
		Files:       file.NewService(in.Files, in.Config.Files.Dir, in.Config.Files.PublicURL, in.Timeout),
		Problems:    problem.NewService(in.Problems, in.Deliveries, in.Timeout, in.Logger),
		Users:       user.NewService(in.Users, tokens, in.Timeout, in.Logger),
	}, nil
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		func() time.Duration { return 3 * time.Second },
		newServices,
	)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      20 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		newHandlers,
		newRateLimiter,
		newRateLimitMiddleware,
		newRouter,
		serverProvider,
	)
}
