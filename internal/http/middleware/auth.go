package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"fastfeet/internal/auth"
	"fastfeet/internal/logx"
)

// TokenParser verifies a bearer token and returns the user id it names.
type TokenParser interface {
	Parse(raw string) (int64, error)
}

// Authenticate requires "Authorization: Bearer <token>" and stores the
// principal in the request context.
func Authenticate(tokens TokenParser, logger logx.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "Token not provided.")
				return
			}
			scheme, raw, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				unauthorized(w, "Invalid token.")
				return
			}
			userID, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				logger.Debug("token rejected", logx.String("path", r.URL.Path), logx.Err(err))
				unauthorized(w, "Invalid token.")
				return
			}
			ctx := auth.WithPrincipal(r.Context(), auth.Principal{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
