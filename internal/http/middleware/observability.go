package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"fastfeet/internal/logx"
)

// HTTPMetrics are the collectors Observability feeds. Either may be nil.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// Observability counts and times every request by route pattern and logs one line per request.
// Deliveryman and delivery ids stay out of the labels; they are logged instead.
func Observability(logger logx.Logger, m HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			route := routeOf(r)
			status := strconv.Itoa(ww.Status())
			if m.Requests != nil {
				m.Requests.WithLabelValues(r.Method, route, status).Inc()
			}
			if m.Duration != nil {
				m.Duration.WithLabelValues(r.Method, route, status).Observe(elapsed.Seconds())
			}

			fields := []logx.Field{
				logx.String("req_id", chimw.GetReqID(r.Context())),
				logx.String("method", r.Method),
				logx.String("path", route),
				logx.Int("status", ww.Status()),
				logx.Duration("duration", elapsed),
			}
			fields = append(fields, idParams(r)...)
			if ww.Status() >= http.StatusInternalServerError {
				logger.Error("http request", fields...)
				return
			}
			logger.Info("http request", fields...)
		})
	}
}

// routeOf falls back to the raw path for requests no route matched.
func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

var idKeys = map[string]string{
	"id":         "resource_id",
	"deliveryID": "delivery_id",
}

func idParams(r *http.Request) []logx.Field {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return nil
	}
	var out []logx.Field
	for i, k := range rc.URLParams.Keys {
		if name, ok := idKeys[k]; ok && i < len(rc.URLParams.Values) {
			out = append(out, logx.String(name, rc.URLParams.Values[i]))
		}
	}
	return out
}
