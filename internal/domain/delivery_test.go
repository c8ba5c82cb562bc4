package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fastfeet/internal/domain"
)

func ptrTime(t time.Time) *time.Time { return &t }

func TestDelivery_State(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		delivery domain.Delivery
		want     domain.DeliveryState
		terminal bool
	}{
		{name: "fresh", delivery: domain.Delivery{}, want: domain.StateCreated},
		{name: "withdrawn", delivery: domain.Delivery{StartDate: ptrTime(now)}, want: domain.StateWithdrawn},
		{
			name:     "concluded",
			delivery: domain.Delivery{StartDate: ptrTime(now), EndDate: ptrTime(now.Add(time.Hour))},
			want:     domain.StateConcluded,
			terminal: true,
		},
		{name: "canceled", delivery: domain.Delivery{CanceledAt: ptrTime(now)}, want: domain.StateCanceled, terminal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.delivery.State())
			require.Equal(t, tt.terminal, tt.delivery.State().Terminal())
			require.NoError(t, tt.delivery.Validate())
		})
	}
}

func TestDelivery_Validate(t *testing.T) {
	t.Parallel()

	now := time.Now()

	require.ErrorIs(t, domain.Delivery{EndDate: ptrTime(now)}.Validate(), domain.ErrEndWithoutStart)
	require.ErrorIs(t, domain.Delivery{StartDate: ptrTime(now), CanceledAt: ptrTime(now)}.Validate(), domain.ErrCanceledAfterStart)
	require.ErrorIs(t,
		domain.Delivery{StartDate: ptrTime(now), EndDate: ptrTime(now), CanceledAt: ptrTime(now)}.Validate(),
		domain.ErrConcludedAndCanceled,
	)
}

func TestPage_Offset(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, domain.NewPage(0, 20).Offset())
	require.Equal(t, 0, domain.NewPage(1, 20).Offset())
	require.Equal(t, 40, domain.NewPage(3, 20).Offset())
	require.Equal(t, 10, domain.NewPage(2, 10).Offset())
}

func TestNewSnapshot_CopiesParties(t *testing.T) {
	t.Parallel()

	canceled := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	snap := domain.NewSnapshot(
		domain.Delivery{ID: 3, Product: "Notebook", CanceledAt: &canceled},
		domain.Deliveryman{ID: 9, Name: "Ana", Email: "ana@fastfeet.com"},
		domain.Recipient{Name: "Bruno", City: "Recife", State: "PE"},
	)

	require.Equal(t, int64(3), snap.DeliveryID)
	require.Equal(t, "Notebook", snap.Product)
	require.Equal(t, "ana@fastfeet.com", snap.Deliveryman.Email)
	require.Equal(t, "Recife", snap.Recipient.City)
	require.Equal(t, &canceled, snap.CanceledAt)
	require.True(t, domain.TaskCancelDelivery.Valid())
	require.False(t, domain.TaskName("other").Valid())
}
