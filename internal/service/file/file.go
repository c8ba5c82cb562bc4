// Package file stores uploaded avatars and signatures on local disk.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"fastfeet/internal/apperr"
	"fastfeet/internal/domain"
)

type fileRepository interface {
	Create(ctx context.Context, f *domain.File) error
}

// Service writes uploads under dir and records their metadata.
type Service struct {
	repo             fileRepository
	dir              string
	publicURL        string
	operationTimeout time.Duration
	newName          func() string
}

// NewService creates a file Service. publicURL is the externally visible base of the API.
func NewService(r fileRepository, dir, publicURL string, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		repo:             r,
		dir:              dir,
		publicURL:        strings.TrimRight(publicURL, "/"),
		operationTimeout: timeout,
		newName:          func() string { return uuid.NewString() },
	}
}

// Dir is where uploads are stored.
func (s *Service) Dir() string { return s.dir }

// URL is the public address of a stored path.
func (s *Service) URL(path string) string {
	return s.publicURL + "/files/" + path
}

// Store copies body to disk under a fresh name that keeps the extension of
// originalName, then records it.
func (s *Service) Store(ctx context.Context, originalName string, body io.Reader) (*domain.File, error) {
	originalName = filepath.Base(strings.TrimSpace(originalName))
	if originalName == "" || originalName == "." || originalName == string(filepath.Separator) {
		return nil, apperr.ErrInvalid
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	path := s.newName() + strings.ToLower(filepath.Ext(originalName))
	full := filepath.Join(s.dir, path)
	out, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(out, body); err != nil {
		_ = out.Close()
		_ = os.Remove(full)
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(full)
		return nil, fmt.Errorf("close upload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	f := &domain.File{Name: originalName, Path: path}
	if err := s.repo.Create(ctx, f); err != nil {
		_ = os.Remove(full)
		return nil, err
	}
	f.URL = s.URL(path)
	return f, nil
}
