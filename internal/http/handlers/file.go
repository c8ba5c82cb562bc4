package handlers

import (
	"errors"
	"net/http"

	"fastfeet/internal/apperr"
	"fastfeet/internal/logx"
)

const uploadLimit = 5 << 20

// FileHandler serves uploads.
type FileHandler struct {
	uc     fileUsecase
	logger logx.Logger
}

// NewFileHandler creates a FileHandler.
func NewFileHandler(logger logx.Logger, uc fileUsecase) *FileHandler {
	return &FileHandler{uc: uc, logger: logger}
}

// Upload handles POST /files with a multipart "file" field.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, uploadLimit)
	f, hdr, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(h.logger, w, r, http.StatusRequestEntityTooLarge, "File too large.")
			return
		}
		writeAppError(h.logger, w, r, apperr.ErrInvalid)
		return
	}
	defer f.Close()

	stored, err := h.uc.Store(r.Context(), hdr.Filename, f)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusCreated, fileToResponse(stored, h.uc.URL))
}
