package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"fastfeet/internal/access"
	"fastfeet/internal/config"
	"fastfeet/internal/http/middleware/ratelimit"
	"fastfeet/internal/logx"
	"fastfeet/internal/metrics"
	"fastfeet/internal/notify"
	"fastfeet/internal/repository"
	"fastfeet/internal/service/delivery"
	"fastfeet/internal/service/user"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:        8080,
		MetricsPort: 9102,
		LogLevel:    "error",
		DB: config.DB{
			Host: "localhost",
			Port: "5432",
			User: "user",
			Pass: "pass",
			Name: "db",
		},
		Kafka:     config.DefaultKafka(),
		Auth:      config.Auth{Secret: "test-secret", TTL: time.Hour},
		Delivery:  config.Delivery{Location: time.UTC},
		Mail:      config.DefaultMail(),
		Files:     config.Files{Dir: t.TempDir(), PublicURL: "http://files.test"},
		Access:    config.DefaultAccess(),
		RateLimit: config.DefaultRateLimit(),
	}
}

func stubBuilder(cfg *config.Config) *ContainerBuilder {
	return NewContainerBuilder().
		WithConfig(func() (*config.Config, error) { return cfg, nil }).
		WithDBConnect(func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error) {
			return &pgxpool.Pool{}, nil
		}).
		WithMigrate(func(string, logx.Logger) error { return nil })
}

func TestProvideAll_Success(t *testing.T) {
	t.Parallel()

	c := dig.New()

	err := provideAll(c,
		func() context.Context { return context.Background() },
		func() time.Duration { return 3 * time.Second },
	)
	require.NoError(t, err)

	err = c.Invoke(func(ctx context.Context, d time.Duration) {
		require.NotNil(t, ctx)
		require.Equal(t, 3*time.Second, d)
	})
	require.NoError(t, err)
}

func TestProvideAll_InvalidProvider(t *testing.T) {
	t.Parallel()

	c := dig.New()

	type bad struct{}
	err := provideAll(c, bad{})
	require.Error(t, err)
}

func TestRegisterCore_ProvidesDependencies(t *testing.T) {
	t.Parallel()

	c := dig.New()
	ctx := context.Background()
	cfg := testConfig(t)

	err := registerCore(c, ctx, func() (*config.Config, error) { return cfg, nil })
	require.NoError(t, err)

	err = c.Invoke(func(gotCtx context.Context, logger logx.Logger, gotCfg *config.Config) {
		require.Equal(t, ctx, gotCtx)
		require.NotNil(t, logger)
		require.Same(t, cfg, gotCfg)
	})
	require.NoError(t, err)
}

func TestRegisterCore_ConfigErrorSurfacesOnInvoke(t *testing.T) {
	t.Parallel()

	c := dig.New()
	sentinel := errors.New("bad env")
	require.NoError(t, registerCore(c, context.Background(), func() (*config.Config, error) { return nil, sentinel }))

	err := c.Invoke(func(logx.Logger) {})
	require.ErrorIs(t, err, sentinel)
}

func TestRegisterDb_ConnectsThenMigrates(t *testing.T) {
	t.Parallel()

	c := dig.New()
	ctx := context.Background()
	cfg := testConfig(t)

	require.NoError(t, c.Provide(func() context.Context { return ctx }))
	require.NoError(t, c.Provide(func() *config.Config { return cfg }))
	require.NoError(t, c.Provide(logx.Nop))

	stubPool := &pgxpool.Pool{}
	var steps []string

	stubConnect := func(gotCtx context.Context, _ logx.Logger, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error) {
		steps = append(steps, "connect")
		require.Equal(t, ctx, gotCtx)
		require.Equal(t, cfg.DB.DSN(), dsn)
		require.Equal(t, 10, retries)
		require.Equal(t, time.Second, delay)
		return stubPool, nil
	}
	stubMigrate := func(dsn string, _ logx.Logger) error {
		steps = append(steps, "migrate")
		require.Equal(t, cfg.DB.DSN(), dsn)
		return nil
	}

	require.NoError(t, registerDb(c, stubConnect, stubMigrate))

	err := c.Invoke(func(pool *pgxpool.Pool, users *repository.UserRepo, ready *repository.ReadinessChecker) {
		require.Same(t, stubPool, pool)
		require.NotNil(t, users)
		require.NotNil(t, ready)
	})
	require.NoError(t, err)
	require.Equal(t, []string{"connect", "migrate"}, steps)
}

func TestRegisterDb_ConnectErrorSkipsMigrate(t *testing.T) {
	t.Parallel()

	c := dig.New()
	require.NoError(t, c.Provide(func() context.Context { return context.Background() }))
	require.NoError(t, c.Provide(func() *config.Config { return testConfig(t) }))
	require.NoError(t, c.Provide(logx.Nop))

	sentinel := errors.New("no db")
	migrated := false
	require.NoError(t, registerDb(c,
		func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error) {
			return nil, sentinel
		},
		func(string, logx.Logger) error {
			migrated = true
			return nil
		},
	))

	err := c.Invoke(func(*pgxpool.Pool) {})
	require.ErrorIs(t, err, sentinel)
	require.False(t, migrated)
}

func TestContainerBuilder_Build_ProvidesServerAndServices(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	c, err := stubBuilder(cfg).build(context.Background())
	require.NoError(t, err)

	err = c.Invoke(func(
		srv *http.Server,
		deliveries *delivery.Service,
		users *user.Service,
		policy *access.Policy,
		dispatcher notify.Dispatcher,
		flush dispatcherCloser,
	) {
		require.Equal(t, ":8080", srv.Addr)
		require.Greater(t, srv.ReadHeaderTimeout, time.Duration(0))
		require.Greater(t, srv.ReadTimeout, time.Duration(0))
		require.Greater(t, srv.WriteTimeout, time.Duration(0))
		require.Greater(t, srv.IdleTimeout, time.Duration(0))
		require.NotNil(t, deliveries)
		require.NotNil(t, users)
		require.NotNil(t, policy)
		require.Equal(t, notify.Nop(), dispatcher)
		require.NoError(t, flush())
	})
	require.NoError(t, err)
}

func TestContainerBuilder_Build_RoutesRequests(t *testing.T) {
	t.Parallel()

	c, err := stubBuilder(testConfig(t)).build(context.Background())
	require.NoError(t, err)

	err = c.Invoke(func(h http.Handler) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		rr = httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/recipients", nil))
		require.Equal(t, http.StatusUnauthorized, rr.Code)

		rr = httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		require.Contains(t, rr.Body.String(), "rate_limit_exceeded_total")
		require.Contains(t, rr.Body.String(), `http_requests_total{method="GET",path="/ping",status="200"}`)
	})
	require.NoError(t, err)
}

func TestContainerBuilder_Build_ThrottlesSignIn(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.RateLimit.SessionsPerMinute = 2
	c, err := stubBuilder(cfg).build(context.Background())
	require.NoError(t, err)

	err = c.Invoke(func(h http.Handler) {
		signIn := func(addr string) *httptest.ResponseRecorder {
			r := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{}`))
			r.Header.Set("Content-Type", "application/json")
			r.RemoteAddr = addr
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, r)
			return rr
		}

		// empty credentials fail validation before any store call
		require.Equal(t, http.StatusBadRequest, signIn("198.51.100.4:5000").Code)
		require.Equal(t, http.StatusBadRequest, signIn("198.51.100.4:5001").Code)

		rr := signIn("198.51.100.4:5002")
		require.Equal(t, http.StatusTooManyRequests, rr.Code)
		require.Equal(t, "60", rr.Header().Get("Retry-After"))

		require.Equal(t, http.StatusBadRequest, signIn("198.51.100.5:5000").Code)
	})
	require.NoError(t, err)
}

func TestNewRateLimiter_DisabledWithoutLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.RateLimit.SessionsPerMinute = 0
	require.IsType(t, ratelimit.Unlimited{}, newRateLimiter(cfg))

	cfg.RateLimit.SessionsPerMinute = 3
	require.IsType(t, &ratelimit.SessionLimiter{}, newRateLimiter(cfg))
}

func TestContainerBuilder_Build_MissingSecretFailsOnInvoke(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Auth.Secret = ""
	c, err := stubBuilder(cfg).build(context.Background())
	require.NoError(t, err)

	err = c.Invoke(func(*http.Server) {})
	require.Error(t, err)
	require.Contains(t, err.Error(), "tokens")
}

func withProducer(t *testing.T, fn func([]string, *sarama.Config) (sarama.AsyncProducer, error)) {
	t.Helper()
	orig := newAsyncProducer
	newAsyncProducer = fn
	t.Cleanup(func() { newAsyncProducer = orig })
}

func TestNewDispatcher_KafkaEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Kafka.Brokers = []string{"kafka:9092"}
	cfg.Kafka.QueueSize = 8

	var gotBrokers []string
	var gotCfg *sarama.Config
	withProducer(t, func(brokers []string, sc *sarama.Config) (sarama.AsyncProducer, error) {
		gotBrokers, gotCfg = brokers, sc
		return mocks.NewAsyncProducer(t, sc), nil
	})

	out, err := newDispatcher(dispatcherIn{
		Config:        cfg,
		Logger:        logx.Nop(),
		Notifications: metrics.NewNotificationsTotal(),
	})
	require.NoError(t, err)
	require.IsType(t, &notify.KafkaDispatcher{}, out.Dispatcher)
	require.Equal(t, []string{"kafka:9092"}, gotBrokers)
	require.Equal(t, 8, gotCfg.ChannelBufferSize)
	require.NoError(t, out.Close())
}

func TestNewDispatcher_ProducerError(t *testing.T) {
	cfg := testConfig(t)
	cfg.Kafka.Brokers = []string{"kafka:9092"}

	sentinel := errors.New("no brokers reachable")
	withProducer(t, func([]string, *sarama.Config) (sarama.AsyncProducer, error) {
		return nil, sentinel
	})

	_, err := newDispatcher(dispatcherIn{Config: cfg, Logger: logx.Nop()})
	require.ErrorIs(t, err, sentinel)
}

func TestProvideMetrics_AlreadyRegistered_ReturnsExistingCollectors(t *testing.T) {
	oldReg := prometheus.DefaultRegisterer
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	t.Cleanup(func() { prometheus.DefaultRegisterer = oldReg })

	first, err := provideMetrics()
	require.NoError(t, err)
	second, err := provideMetrics()
	require.NoError(t, err)

	require.Same(t, first.TransitionsTotal, second.TransitionsTotal)
	require.Same(t, first.NotificationsTotal, second.NotificationsTotal)
	require.Equal(t, first.RateLimitExceededTotal, second.RateLimitExceededTotal)
	require.Same(t, first.HTTP.Requests, second.HTTP.Requests)
	require.Same(t, first.HTTP.Duration, second.HTTP.Duration)
}

type errRegisterer struct{ err error }

func (e errRegisterer) Register(prometheus.Collector) error  { return e.err }
func (e errRegisterer) MustRegister(...prometheus.Collector) {}
func (e errRegisterer) Unregister(prometheus.Collector) bool { return false }

func TestProvideMetrics_RegisterError(t *testing.T) {
	oldReg := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = errRegisterer{err: errors.New("boom")}
	t.Cleanup(func() { prometheus.DefaultRegisterer = oldReg })

	_, err := provideMetrics()
	require.Error(t, err)
	require.Contains(t, err.Error(), "register rate_limit_exceeded_total")
}
