package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"fastfeet/internal/apperr"
	"fastfeet/internal/domain"
)

func TestUniqueConflict(t *testing.T) {
	t.Parallel()

	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolation, ConstraintName: "deliverymen_email_key"})
	err := uniqueConflict(dup, "Deliveryman already exists.")
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.Equal(t, "Deliveryman already exists.", err.Error())

	fk := &pgconn.PgError{Code: "23503"}
	require.NoError(t, uniqueConflict(fk, "Deliveryman already exists."))
	require.NoError(t, uniqueConflict(errors.New("conn reset"), "x"))
}

func TestNoRows(t *testing.T) {
	t.Parallel()

	require.True(t, noRows(fmt.Errorf("get file 3: %w", pgx.ErrNoRows)))
	require.False(t, noRows(errors.New("timeout")))
}

func TestSaveDelivery_RefusesBrokenMarkers(t *testing.T) {
	t.Parallel()

	now := time.Now()
	// the invariant check runs before the transaction is used
	repo := &TxRepo{}

	err := repo.SaveDelivery(context.Background(), &domain.Delivery{ID: 4, EndDate: &now})
	require.ErrorIs(t, err, domain.ErrEndWithoutStart)

	err = repo.SaveDelivery(context.Background(), &domain.Delivery{ID: 5, StartDate: &now, CanceledAt: &now})
	require.ErrorIs(t, err, domain.ErrCanceledAfterStart)
}
