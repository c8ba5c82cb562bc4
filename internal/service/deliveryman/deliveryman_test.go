package deliveryman

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fastfeet/internal/apperr"
	"fastfeet/internal/domain"
)

type stubRepo struct {
	getFn           func(ctx context.Context, id int64) (*domain.Deliveryman, error)
	listFn          func(ctx context.Context, name string, page domain.Page) ([]domain.Deliveryman, error)
	createFn        func(ctx context.Context, dm *domain.Deliveryman) (int64, error)
	updatePartialFn func(ctx context.Context, u domain.PartialDeliverymanUpdate) (bool, error)
	softDeleteFn    func(ctx context.Context, id int64) (bool, error)
}

func (s *stubRepo) Get(ctx context.Context, id int64) (*domain.Deliveryman, error) {
	return s.getFn(ctx, id)
}

func (s *stubRepo) List(ctx context.Context, name string, page domain.Page) ([]domain.Deliveryman, error) {
	return s.listFn(ctx, name, page)
}

func (s *stubRepo) Create(ctx context.Context, dm *domain.Deliveryman) (int64, error) {
	return s.createFn(ctx, dm)
}

func (s *stubRepo) UpdatePartial(ctx context.Context, u domain.PartialDeliverymanUpdate) (bool, error) {
	return s.updatePartialFn(ctx, u)
}

func (s *stubRepo) SoftDelete(ctx context.Context, id int64) (bool, error) {
	return s.softDeleteFn(ctx, id)
}

type stubFiles map[int64]domain.File

func (s stubFiles) Get(_ context.Context, id int64) (*domain.File, error) {
	f, ok := s[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func int64Ptr(v int64) *int64 { return &v }

func TestService_Create(t *testing.T) {
	t.Parallel()

	stored := map[int64]domain.Deliveryman{}
	repo := &stubRepo{
		createFn: func(_ context.Context, dm *domain.Deliveryman) (int64, error) {
			for _, existing := range stored {
				if existing.Email == dm.Email {
					return 0, apperr.Conflictf("Deliveryman already exists.")
				}
			}
			id := int64(len(stored) + 1)
			cp := *dm
			cp.ID = id
			stored[id] = cp
			return id, nil
		},
		getFn: func(_ context.Context, id int64) (*domain.Deliveryman, error) {
			dm, ok := stored[id]
			if !ok {
				return nil, nil
			}
			return &dm, nil
		},
	}
	s := NewService(repo, stubFiles{4: {ID: 4, Path: "a.png"}}, time.Second)
	ctx := context.Background()

	got, err := s.Create(ctx, domain.Deliveryman{Name: "Bob", Email: "bob@fastfeet.com", AvatarID: int64Ptr(4)})
	require.NoError(t, err)
	require.Equal(t, int64(1), got.ID)

	_, err = s.Create(ctx, domain.Deliveryman{Name: "Bob", Email: "bob@fastfeet.com"})
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = s.Create(ctx, domain.Deliveryman{Name: "Eve", Email: "eve@fastfeet.com", AvatarID: int64Ptr(9)})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.EqualError(t, err, "Avatar of id 9 not found.")

	_, err = s.Create(ctx, domain.Deliveryman{Name: "Eve", Email: "not-an-email"})
	require.ErrorIs(t, err, apperr.ErrInvalid)
	require.Len(t, stored, 1)
}

func TestService_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	active := map[int64]bool{1: true}
	repo := &stubRepo{
		updatePartialFn: func(_ context.Context, u domain.PartialDeliverymanUpdate) (bool, error) {
			return active[u.ID], nil
		},
		getFn: func(_ context.Context, id int64) (*domain.Deliveryman, error) {
			if !active[id] {
				return nil, nil
			}
			return &domain.Deliveryman{ID: id, Name: "Renamed"}, nil
		},
		softDeleteFn: func(_ context.Context, id int64) (bool, error) {
			was := active[id]
			active[id] = false
			return was, nil
		},
	}
	s := NewService(repo, stubFiles{}, time.Second)
	ctx := context.Background()
	name := "Renamed"

	got, err := s.Update(ctx, domain.PartialDeliverymanUpdate{ID: 1, Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Name)

	_, err = s.Update(ctx, domain.PartialDeliverymanUpdate{ID: 1, AvatarID: int64Ptr(3)})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, s.Delete(ctx, 1))
	require.ErrorIs(t, s.Delete(ctx, 1), apperr.ErrNotFound)

	_, err = s.Get(ctx, 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.EqualError(t, err, "Deliveryman of id 1 not found.")
}

func TestService_List(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{
		listFn: func(_ context.Context, name string, page domain.Page) ([]domain.Deliveryman, error) {
			require.Equal(t, domain.Page{Number: 2, Size: PageSize}, page)
			return nil, nil
		},
	}
	_, err := NewService(repo, stubFiles{}, 0).List(context.Background(), "", 2)
	require.NoError(t, err)
}
