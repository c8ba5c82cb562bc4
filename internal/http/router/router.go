package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fastfeet/internal/http/handlers"
	"fastfeet/internal/logx"
)

// Middleware is a chi-style middleware.
type Middleware = func(http.Handler) http.Handler

// Routes groups everything the router mounts.
type Routes struct {
	Logger logx.Logger

	Base        *handlers.Handlers
	Users       *handlers.UserHandler
	Recipients  *handlers.RecipientHandler
	Deliverymen *handlers.DeliverymanHandler
	Deliveries  *handlers.DeliveryHandler
	Problems    *handlers.ProblemHandler
	Files       *handlers.FileHandler

	// FilesDir is served read-only under /files/.
	FilesDir string
	Metrics  http.Handler

	Observe      Middleware
	Authenticate Middleware
	Admin        Middleware
	SessionLimit Middleware
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(rt Routes) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(orPass(rt.Observe))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/ping", rt.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(rt.Base.HealthcheckHead))
	if rt.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.Metrics)
	}
	r.NotFound(http.HandlerFunc(rt.Base.NotFound))

	if rt.FilesDir != "" {
		r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(rt.FilesDir))))
	}

	r.Post("/users", rt.Users.Create)
	r.With(orPass(rt.SessionLimit)).Post("/sessions", rt.Users.Session)
	r.Post("/files", rt.Files.Upload)

	// deliveryman app, addressed by deliveryman id
	r.Route("/deliverymen/{id}/deliveries", func(r chi.Router) {
		r.Get("/", rt.Deliveries.Pending)
		r.Get("/delivered", rt.Deliveries.Delivered)
		r.Put("/{deliveryID}/start", rt.Deliveries.Withdraw)
		r.Put("/{deliveryID}/end", rt.Deliveries.Conclude)
	})

	r.Group(func(r chi.Router) {
		r.Use(orPass(rt.Authenticate))

		r.Put("/users", rt.Users.Update)
		r.Get("/recipients", rt.Recipients.List)
		r.Get("/recipients/{id}", rt.Recipients.Get)

		r.Group(func(r chi.Router) {
			r.Use(orPass(rt.Admin))

			r.Post("/recipients", rt.Recipients.Create)
			r.Put("/recipients/{id}", rt.Recipients.Update)
			r.Delete("/recipients/{id}", rt.Recipients.Delete)

			r.Get("/deliverymen", rt.Deliverymen.List)
			r.Get("/deliverymen/{id}", rt.Deliverymen.Get)
			r.Post("/deliverymen", rt.Deliverymen.Create)
			r.Put("/deliverymen/{id}", rt.Deliverymen.Update)
			r.Delete("/deliverymen/{id}", rt.Deliverymen.Delete)

			r.Get("/deliveries", rt.Deliveries.List)
			r.Get("/deliveries/problems", rt.Problems.ListOpen)
			r.Get("/deliveries/{id}", rt.Deliveries.Get)
			r.Post("/deliveries", rt.Deliveries.Create)
			r.Put("/deliveries/{id}", rt.Deliveries.Update)
			r.Delete("/deliveries/{id}", rt.Deliveries.Cancel)

			r.Delete("/problems/{id}/cancel-delivery", rt.Deliveries.CancelByProblem)
		})
	})

	r.Get("/deliveries/{id}/problems", rt.Problems.ListByDelivery)
	r.Post("/deliveries/{id}/problems", rt.Problems.Create)

	return r
}

func orPass(m Middleware) Middleware {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return m
}
