//go:build integration

package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"fastfeet/internal/app"
	"fastfeet/internal/config"
	"fastfeet/internal/service/user"
)

// noonZone puts the current instant at about 12:00 so withdrawals fall inside the pickup window.
func noonZone() *time.Location {
	now := time.Now().UTC()
	sinceMidnight := now.Hour()*3600 + now.Minute()*60 + now.Second()
	offset := 12*3600 - sinceMidnight
	if offset < -12*3600 {
		offset += 24 * 3600
	}
	return time.FixedZone("noon", offset)
}

func startPostgres(t *testing.T) config.DB {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("fastfeet"),
		postgres.WithUsername("fastfeet"),
		postgres.WithPassword("fastfeet"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return config.DB{Host: host, Port: port.Port(), User: "fastfeet", Pass: "fastfeet", Name: "fastfeet"}
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *client) upload(name string, content []byte) int64 {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(c.t, err)
	_, err = fw.Write(content)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	resp, err := http.Post(c.base+"/files", mw.FormDataContentType(), &buf)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)

	var f struct {
		ID int64 `json:"id"`
	}
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&f))
	return f.ID
}

type idOnly struct {
	ID int64 `json:"id"`
}

func TestAPI_DeliveryLifecycle_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := &config.Config{
		Port:        8080,
		MetricsPort: 9102,
		LogLevel:    "error",
		DB:          startPostgres(t),
		Kafka:       config.DefaultKafka(),
		Auth:        config.Auth{Secret: "integration-secret", TTL: time.Hour},
		Delivery:    config.Delivery{Location: noonZone()},
		Mail:        config.DefaultMail(),
		Files:       config.Files{Dir: t.TempDir()},
		Access:      config.DefaultAccess(),
		RateLimit:   config.DefaultRateLimit(),
	}

	c := app.NewContainerBuilder().
		WithConfig(func() (*config.Config, error) { return cfg, nil }).
		MustBuild(ctx)

	var (
		handler http.Handler
		users   *user.Service
	)
	require.NoError(t, c.Invoke(func(h http.Handler, u *user.Service) {
		handler, users = h, u
	}))
	require.NoError(t, users.EnsureAdministrator(ctx, "Distribuidora FastFeet", "admin@fastfeet.com", "123456"))

	srv := httptest.NewServer(handler)
	defer srv.Close()
	api := &client{t: t, base: srv.URL}

	var session struct {
		Token string `json:"token"`
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/sessions",
		map[string]string{"email": "admin@fastfeet.com", "password": "123456"}, &session))
	api.token = session.Token

	var rec, dm, del idOnly
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/recipients", map[string]string{
		"name": "Ana", "street": "Rua A", "number": "10", "state": "SP", "city": "São Paulo", "zip_code": "01000-000",
	}, &rec))
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/deliverymen", map[string]string{
		"name": "Bruno", "email": "bruno@fastfeet.com",
	}, &dm))
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/deliveries", map[string]any{
		"product": "Notebook", "recipient_id": rec.ID, "deliveryman_id": dm.ID,
	}, &del))

	deliverer := &client{t: t, base: srv.URL}
	var pending []idOnly
	require.Equal(t, http.StatusOK, deliverer.do(http.MethodGet, fmt.Sprintf("/deliverymen/%d/deliveries", dm.ID), nil, &pending))
	require.Len(t, pending, 1)
	require.Equal(t, del.ID, pending[0].ID)

	start := time.Now().Add(time.Minute)
	require.Equal(t, http.StatusOK, deliverer.do(http.MethodPut,
		fmt.Sprintf("/deliverymen/%d/deliveries/%d/start", dm.ID, del.ID),
		map[string]time.Time{"start_date": start}, nil))

	// a second withdrawal of the same delivery is rejected
	require.Equal(t, http.StatusBadRequest, deliverer.do(http.MethodPut,
		fmt.Sprintf("/deliverymen/%d/deliveries/%d/start", dm.ID, del.ID),
		map[string]time.Time{"start_date": start}, nil))

	signature := deliverer.upload("signature.png", []byte("png"))
	require.Equal(t, http.StatusOK, deliverer.do(http.MethodPut,
		fmt.Sprintf("/deliverymen/%d/deliveries/%d/end", dm.ID, del.ID),
		map[string]int64{"signature_id": signature}, nil))

	var delivered []struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	require.Equal(t, http.StatusOK, deliverer.do(http.MethodGet, fmt.Sprintf("/deliverymen/%d/deliveries/delivered", dm.ID), nil, &delivered))
	require.Len(t, delivered, 1)
	require.Equal(t, del.ID, delivered[0].ID)

	require.Equal(t, http.StatusUnauthorized, deliverer.do(http.MethodGet, "/deliveries", nil, nil))
}

func TestAPI_ProblemCancelsDelivery_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := &config.Config{
		Port:        8080,
		MetricsPort: 9102,
		LogLevel:    "error",
		DB:          startPostgres(t),
		Kafka:       config.DefaultKafka(),
		Auth:        config.Auth{Secret: "integration-secret", TTL: time.Hour},
		Delivery:    config.Delivery{Location: noonZone()},
		Mail:        config.DefaultMail(),
		Files:       config.Files{Dir: t.TempDir()},
		Access:      config.DefaultAccess(),
		RateLimit:   config.DefaultRateLimit(),
	}
	c := app.NewContainerBuilder().
		WithConfig(func() (*config.Config, error) { return cfg, nil }).
		MustBuild(ctx)

	var (
		handler http.Handler
		users   *user.Service
	)
	require.NoError(t, c.Invoke(func(h http.Handler, u *user.Service) {
		handler, users = h, u
	}))
	require.NoError(t, users.EnsureAdministrator(ctx, "Admin", "admin@fastfeet.com", "123456"))

	srv := httptest.NewServer(handler)
	defer srv.Close()
	api := &client{t: t, base: srv.URL}

	var session struct {
		Token string `json:"token"`
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/sessions",
		map[string]string{"email": "admin@fastfeet.com", "password": "123456"}, &session))
	api.token = session.Token

	var rec, dm, del, problem idOnly
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/recipients", map[string]string{
		"name": "Ana", "street": "Rua A", "number": "10", "state": "SP", "city": "Santos", "zip_code": "11000-000",
	}, &rec))
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/deliverymen", map[string]string{
		"name": "Bruno", "email": "bruno@fastfeet.com",
	}, &dm))
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/deliveries", map[string]any{
		"product": "Monitor", "recipient_id": rec.ID, "deliveryman_id": dm.ID,
	}, &del))

	deliverer := &client{t: t, base: srv.URL}
	require.Equal(t, http.StatusCreated, deliverer.do(http.MethodPost,
		fmt.Sprintf("/deliveries/%d/problems", del.ID),
		map[string]string{"description": "Recipient moved away"}, &problem))

	var open []idOnly
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/deliveries/problems", nil, &open))
	require.Len(t, open, 1)

	require.Equal(t, http.StatusOK, api.do(http.MethodDelete, fmt.Sprintf("/problems/%d/cancel-delivery", problem.ID), nil, nil))

	require.Equal(t, http.StatusNotFound, api.do(http.MethodGet, fmt.Sprintf("/deliveries/%d", del.ID), nil, nil))
	require.Equal(t, http.StatusBadRequest, deliverer.do(http.MethodPost,
		fmt.Sprintf("/deliveries/%d/problems", del.ID),
		map[string]string{"description": "again"}, nil))
}
