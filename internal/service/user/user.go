// Package user manages accounts and opens sessions.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fastfeet/internal/apperr"
	"fastfeet/internal/domain"
	"fastfeet/internal/logx"
	"fastfeet/internal/validation"
)

// Service runs account use cases.
type Service struct {
	repo             userRepository
	tokens           TokenIssuer
	cost             int
	operationTimeout time.Duration
	logger           logx.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithHashCost sets the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// NewService creates a user Service.
func NewService(r userRepository, tokens TokenIssuer, timeout time.Duration, logger logx.Logger, opts ...Option) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	s := &Service{
		repo:             r,
		tokens:           tokens,
		cost:             bcrypt.DefaultCost,
		operationTimeout: timeout,
		logger:           logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func matches(u *domain.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Create registers a non-administrator account.
func (s *Service) Create(ctx context.Context, name, email, password string) (*domain.User, error) {
	if err := validation.User(name, email, password); err != nil {
		return nil, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	u := domain.User{Name: name, Email: email, PasswordHash: hash}
	id, err := s.repo.Create(ctx, &u)
	if err != nil {
		return nil, err
	}
	u.ID = id
	return &u, nil
}

// Update changes the profile of the user in u.ID. Changing the password
// requires the current one.
func (s *Service) Update(ctx context.Context, upd domain.PartialUserUpdate) (*domain.User, error) {
	if err := validation.UserUpdate(upd); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	u, err := s.repo.Get(ctx, upd.ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFoundf("User not found.")
	}

	if upd.Email != nil && *upd.Email != u.Email {
		other, err := s.repo.GetByEmail(ctx, *upd.Email)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, apperr.Conflictf("User already exists.")
		}
		u.Email = *upd.Email
	}
	if upd.OldPassword != nil && !matches(u, *upd.OldPassword) {
		return nil, apperr.Unauthorizedf("Password does not match.")
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Password != nil {
		if u.PasswordHash, err = s.hash(*upd.Password); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, *u); err != nil {
		return nil, err
	}
	return u, nil
}

// Session authenticates by email and password and issues a token.
func (s *Service) Session(ctx context.Context, email, password string) (*domain.Session, error) {
	if err := validation.Session(email, password); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFoundf("User not found.")
	}
	if !matches(u, password) {
		return nil, apperr.Unauthorizedf("Password does not match.")
	}
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("session opened", logx.Int64("user_id", u.ID))
	return &domain.Session{User: *u, Token: token}, nil
}

// EnsureAdministrator creates the administrator account unless the email is taken.
func (s *Service) EnsureAdministrator(ctx context.Context, name, email, password string) error {
	if err := validation.User(name, email, password); err != nil {
		return errors.Join(err, errors.New("administrator bootstrap credentials"))
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	created, err := s.repo.EnsureAdministrator(ctx, domain.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("administrator created", logx.String("email", email))
	}
	return nil
}
