package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"fastfeet/internal/access"
	"fastfeet/internal/auth"
	"fastfeet/internal/config"
	"fastfeet/internal/http/handlers"
	"fastfeet/internal/http/middleware"
	"fastfeet/internal/http/middleware/ratelimit"
	"fastfeet/internal/http/router"
	"fastfeet/internal/logx"
	"fastfeet/internal/repository"
	"fastfeet/internal/service/delivery"
	"fastfeet/internal/service/deliveryman"
	"fastfeet/internal/service/file"
	"fastfeet/internal/service/problem"
	"fastfeet/internal/service/recipient"
	"fastfeet/internal/service/user"
)

type handlersIn struct {
	dig.In
	Logger logx.Logger
	Ready  *repository.ReadinessChecker

	Deliveries  *delivery.Service
	Recipients  *recipient.Service
	Deliverymen *deliveryman.Service
	Files       *file.Service
	Problems    *problem.Service
	Users       *user.Service
}

type handlersOut struct {
	dig.Out
	Base        *handlers.Handlers
	Users       *handlers.UserHandler
	Recipients  *handlers.RecipientHandler
	Deliverymen *handlers.DeliverymanHandler
	Deliveries  *handlers.DeliveryHandler
	Problems    *handlers.ProblemHandler
	Files       *handlers.FileHandler
}

func newHandlers(in handlersIn) handlersOut {
	url := handlers.URLFunc(in.Files.URL)
	return handlersOut{
		Base:        handlers.New(in.Logger, in.Ready),
		Users:       handlers.NewUserHandler(in.Logger, in.Users),
		Recipients:  handlers.NewRecipientHandler(in.Logger, in.Recipients),
		Deliverymen: handlers.NewDeliverymanHandler(in.Logger, in.Deliverymen, url),
		Deliveries:  handlers.NewDeliveryHandler(in.Logger, in.Deliveries, url),
		Problems:    handlers.NewProblemHandler(in.Logger, in.Problems, url),
		Files:       handlers.NewFileHandler(in.Logger, in.Files),
	}
}

type routerIn struct {
	dig.In
	Config    *config.Config
	Logger    logx.Logger
	Tokens    *auth.Tokens
	Policy    *access.Policy
	RateLimit *ratelimit.Middleware
	HTTP      middleware.HTTPMetrics

	Base        *handlers.Handlers
	Users       *handlers.UserHandler
	Recipients  *handlers.RecipientHandler
	Deliverymen *handlers.DeliverymanHandler
	Deliveries  *handlers.DeliveryHandler
	Problems    *handlers.ProblemHandler
	Files       *handlers.FileHandler
}

func newRouter(in routerIn) http.Handler {
	return router.New(router.Routes{
		Logger:       in.Logger,
		Base:         in.Base,
		Users:        in.Users,
		Recipients:   in.Recipients,
		Deliverymen:  in.Deliverymen,
		Deliveries:   in.Deliveries,
		Problems:     in.Problems,
		Files:        in.Files,
		FilesDir:     in.Config.Files.Dir,
		Metrics:      promhttp.Handler(),
		Observe:      middleware.Observability(in.Logger, in.HTTP),
		Authenticate: middleware.Authenticate(in.Tokens, in.Logger),
		Admin:        in.Policy.Middleware(),
		SessionLimit: in.RateLimit.Handler(),
	})
}
