package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fastfeet/internal/apperr"
	"fastfeet/internal/logx"
)

const (
	bodyLimit       = 1 << 20
	validationError = "Validation failed."
)

func reqID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return "-"
}

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil && logger != nil {
		logger.Debug("json encode error",
			logx.String("req_id", reqID(r.Context())),
			logx.Err(err),
		)
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(logger, w, r, status, errResponse{Error: msg})
}

// writeAppError maps the apperr taxonomy onto HTTP statuses.
func writeAppError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		writeError(logger, w, r, http.StatusBadRequest, validationError)
	case errors.Is(err, apperr.ErrNotFound):
		writeError(logger, w, r, http.StatusNotFound, apperr.Reason(err, "Not found."))
	case errors.Is(err, apperr.ErrIllegalTransition):
		writeError(logger, w, r, http.StatusBadRequest, apperr.Reason(err, "Operation not permitted."))
	case errors.Is(err, apperr.ErrUnauthorized):
		writeError(logger, w, r, http.StatusUnauthorized, apperr.Reason(err, "Unauthorized."))
	case errors.Is(err, apperr.ErrConflict):
		writeError(logger, w, r, http.StatusConflict, apperr.Reason(err, "Conflict."))
	default:
		if logger != nil {
			logger.Error("request failed",
				logx.String("req_id", reqID(r.Context())),
				logx.String("method", r.Method),
				logx.String("path", r.URL.Path),
				logx.Err(err),
			)
		}
		writeError(logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, validationError)
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		writeError(logger, w, r, http.StatusBadRequest, validationError)
		return false
	}
	return true
}

func idFromURL(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.ErrInvalid
	}
	return id, nil
}

// pageFromQuery reads the 1-based "page" parameter. Absent means the first page.
func pageFromQuery(r *http.Request) (int, error) {
	s := r.URL.Query().Get("page")
	if s == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, apperr.ErrInvalid
	}
	return n, nil
}
