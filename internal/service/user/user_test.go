package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fastfeet/internal/apperr"
	"fastfeet/internal/domain"
	"fastfeet/internal/service/user"
	testlog "fastfeet/internal/testutil"
)

type memUsers struct {
	byID map[int64]domain.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[int64]domain.User{}} }

func (m *memUsers) Get(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Create(ctx context.Context, u *domain.User) (int64, error) {
	if existing, _ := m.GetByEmail(ctx, u.Email); existing != nil {
		return 0, apperr.Conflictf("User already exists.")
	}
	id := int64(len(m.byID) + 1)
	cp := *u
	cp.ID = id
	m.byID[id] = cp
	return id, nil
}

func (m *memUsers) Update(_ context.Context, u domain.User) error {
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) EnsureAdministrator(ctx context.Context, u domain.User) (bool, error) {
	if existing, _ := m.GetByEmail(ctx, u.Email); existing != nil {
		return false, nil
	}
	u.Administrator = true
	_, err := m.Create(ctx, &u)
	return err == nil, err
}

type stubTokens struct{ err error }

func (s stubTokens) Issue(id int64) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-" + string(rune('0'+id)), nil
}

func newService(repo *memUsers, tokens user.TokenIssuer) (*user.Service, *testlog.Recorder) {
	rec := testlog.New()
	return user.NewService(repo, tokens, time.Second, rec.Logger(), user.WithHashCost(bcrypt.MinCost)), rec
}

func strPtr(s string) *string { return &s }

func TestCreateAndSession(t *testing.T) {
	t.Parallel()
	repo := newMemUsers()
	svc, rec := newService(repo, stubTokens{})
	ctx := context.Background()

	u, err := svc.Create(ctx, "Ana", "ana@fastfeet.com", "123456")
	require.NoError(t, err)
	require.NotEqual(t, "123456", repo.byID[u.ID].PasswordHash)
	require.False(t, u.Administrator)

	_, err = svc.Create(ctx, "Ana", "ana@fastfeet.com", "123456")
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.Create(ctx, "Ana", "ana@fastfeet.com", "123")
	require.ErrorIs(t, err, apperr.ErrInvalid)

	sess, err := svc.Session(ctx, "ana@fastfeet.com", "123456")
	require.NoError(t, err)
	require.Equal(t, "token-1", sess.Token)
	require.Equal(t, u.ID, sess.User.ID)
	require.True(t, rec.Has("session opened"))

	_, err = svc.Session(ctx, "ana@fastfeet.com", "wrong-password")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
	require.EqualError(t, err, "Password does not match.")

	_, err = svc.Session(ctx, "nobody@fastfeet.com", "123456")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSession_TokenErrorPropagates(t *testing.T) {
	t.Parallel()
	repo := newMemUsers()
	boom := errors.New("sign failed")
	svc, _ := newService(repo, stubTokens{err: boom})

	_, err := svc.Create(context.Background(), "Ana", "ana@fastfeet.com", "123456")
	require.NoError(t, err)
	_, err = svc.Session(context.Background(), "ana@fastfeet.com", "123456")
	require.ErrorIs(t, err, boom)
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	repo := newMemUsers()
	svc, _ := newService(repo, stubTokens{})
	ctx := context.Background()

	u, err := svc.Create(ctx, "Ana", "ana@fastfeet.com", "123456")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Bia", "bia@fastfeet.com", "123456")
	require.NoError(t, err)

	got, err := svc.Update(ctx, domain.PartialUserUpdate{ID: u.ID, Name: strPtr("Ana Maria")})
	require.NoError(t, err)
	require.Equal(t, "Ana Maria", got.Name)

	_, err = svc.Update(ctx, domain.PartialUserUpdate{ID: u.ID, Email: strPtr("bia@fastfeet.com")})
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.Update(ctx, domain.PartialUserUpdate{
		ID: u.ID, OldPassword: strPtr("badpass"), Password: strPtr("654321"), ConfirmPassword: strPtr("654321"),
	})
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Update(ctx, domain.PartialUserUpdate{
		ID: u.ID, OldPassword: strPtr("123456"), Password: strPtr("654321"), ConfirmPassword: strPtr("000000"),
	})
	require.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = svc.Update(ctx, domain.PartialUserUpdate{
		ID: u.ID, OldPassword: strPtr("123456"), Password: strPtr("654321"), ConfirmPassword: strPtr("654321"),
	})
	require.NoError(t, err)

	_, err = svc.Session(ctx, "ana@fastfeet.com", "654321")
	require.NoError(t, err)

	_, err = svc.Update(ctx, domain.PartialUserUpdate{ID: 77, Name: strPtr("Ghost")})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestEnsureAdministrator(t *testing.T) {
	t.Parallel()
	repo := newMemUsers()
	svc, rec := newService(repo, stubTokens{})
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdministrator(ctx, "Admin", "admin@fastfeet.com", "123456"))
	require.True(t, rec.Has("administrator created"))
	require.True(t, repo.byID[1].Administrator)

	require.NoError(t, svc.EnsureAdministrator(ctx, "Admin", "admin@fastfeet.com", "other-password"))
	require.Len(t, repo.byID, 1)

	require.ErrorIs(t, svc.EnsureAdministrator(ctx, "Admin", "bad", "123456"), apperr.ErrInvalid)
}
