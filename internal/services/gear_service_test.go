package services

import (
	"context"
	"testing"
	"time"

	"ski_rental_backend/internal/models"
	"ski_rental_backend/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGearServiceForTest(t *testing.T) (GearService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gearRepo := repositories.NewGearRepository(db)
	brandRepo := repositories.NewBrandRepository(db)
	rentalRepo := repositories.NewRentalRepository(db)
	svc := NewGearService(gearRepo, brandRepo, rentalRepo)

	return svc, mock, func() { db.Close() }
}

func gearRowColumns() []string {
	return []string{
		"id", "owner_id", "type", "brand_id", "name", "size", "status",
		"hourly_price", "daily_price", "notes", "created_at",
	}
}

func TestGearService_MarkBroken(t *testing.T) {
	svc, mock, cleanup := newGearServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	t.Run("FromRented", func(t *testing.T) {
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusBroken, int64(7), int64(10), models.GearStatusAvailable, models.GearStatusRented).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT (.+) FROM gear g").
			WithArgs(int64(7), int64(10)).
			WillReturnRows(sqlmock.NewRows(gearRowColumns()).
				AddRow(7, 10, "ski", 2, "Atomic", "170", "broken", 50.0, 300.0, nil, now))

		gear, err := svc.MarkBroken(ctx, 7, 10)
		require.NoError(t, err)
		assert.Equal(t, string(models.GearStatusBroken), gear.Status)
	})

	t.Run("FromBroken", func(t *testing.T) {
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusBroken, int64(8), int64(10), models.GearStatusAvailable, models.GearStatusRented).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(8), int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := svc.MarkBroken(ctx, 8, 10)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGearService_MarkRepaired(t *testing.T) {
	svc, mock, cleanup := newGearServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	t.Run("FromBroken", func(t *testing.T) {
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusAvailable, int64(7), int64(10), models.GearStatusBroken).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT (.+) FROM gear g").
			WithArgs(int64(7), int64(10)).
			WillReturnRows(sqlmock.NewRows(gearRowColumns()).
				AddRow(7, 10, "ski", 2, "Atomic", "170", "available", 50.0, 300.0, nil, now))

		gear, err := svc.MarkRepaired(ctx, 7, 10)
		require.NoError(t, err)
		assert.Equal(t, string(models.GearStatusAvailable), gear.Status)
	})

	t.Run("FromRented", func(t *testing.T) {
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusAvailable, int64(9), int64(10), models.GearStatusBroken).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(9), int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := svc.MarkRepaired(ctx, 9, 10)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
