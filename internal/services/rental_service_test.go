package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ski_rental_backend/internal/models"
	"ski_rental_backend/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRentalServiceForTest(t *testing.T) (RentalService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	rentalRepo := repositories.NewRentalRepository(db)
	gearRepo := repositories.NewGearRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	svc := NewRentalService(rentalRepo, gearRepo, customerRepo, db)

	return svc, mock, func() { db.Close() }
}

func rentalRowColumns() []string {
	return []string{
		"id", "owner_id", "customer_id", "gear_id", "rental_type", "duration",
		"start_at", "due_at", "return_at", "total_price", "condition_score", "comment", "created_at",
		"type", "name", "size",
		"full_name", "phone",
	}
}

func TestRentalService_CreateRental(t *testing.T) {
	svc, mock, cleanup := newRentalServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM customers WHERE id").
			WithArgs(int64(5), int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "full_name", "phone", "notes", "created_at"}).
				AddRow(5, 10, "Aizhan K", "+77001234567", nil, now))

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusRented, int64(7), int64(10), models.GearStatusAvailable).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT (.+) FROM gear g").
			WithArgs(int64(7), int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "type", "brand_id", "name", "size", "status", "hourly_price", "daily_price", "notes", "created_at"}).
				AddRow(7, 10, "ski", 2, "Atomic", "170", "rented", 50.0, 300.0, nil, now))
		mock.ExpectQuery("INSERT INTO rentals").
			WithArgs(int64(10), int64(5), int64(7), "hourly", 2, sqlmock.AnyArg(), sqlmock.AnyArg(), 100.0, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, now))
		mock.ExpectCommit()

		mock.ExpectQuery("SELECT (.+) FROM rentals r").
			WithArgs(int64(1), int64(10)).
			WillReturnRows(sqlmock.NewRows(rentalRowColumns()).
				AddRow(1, 10, 5, 7, "hourly", 2,
					now, now.Add(2*time.Hour), nil, 100.0, nil, nil, now,
					"ski", "Atomic", "170",
					"Aizhan K", "+77001234567"))

		rental, err := svc.CreateRental(ctx, 10, CreateRentalRequest{
			CustomerID: 5,
			GearID:     7,
			RentalType: "hourly",
			Duration:   2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), rental.ID)
		assert.Equal(t, 100.0, rental.TotalPrice)
		assert.False(t, rental.IsOverdue)
		require.NotNil(t, rental.Gear)
		assert.Equal(t, "ski", rental.Gear.Type)
	})

	t.Run("ReloadFailureStillReturnsRental", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM customers WHERE id").
			WithArgs(int64(5), int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "full_name", "phone", "notes", "created_at"}).
				AddRow(5, 10, "Aizhan K", "+77001234567", nil, now))

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusRented, int64(7), int64(10), models.GearStatusAvailable).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT (.+) FROM gear g").
			WithArgs(int64(7), int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "type", "brand_id", "name", "size", "status", "hourly_price", "daily_price", "notes", "created_at"}).
				AddRow(7, 10, "ski", 2, "Atomic", "170", "rented", 50.0, 300.0, nil, now))
		mock.ExpectQuery("INSERT INTO rentals").
			WithArgs(int64(10), int64(5), int64(7), "hourly", 2, sqlmock.AnyArg(), sqlmock.AnyArg(), 100.0, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(2, now))
		mock.ExpectCommit()

		mock.ExpectQuery("SELECT (.+) FROM rentals r").
			WithArgs(int64(2), int64(10)).
			WillReturnError(errors.New("connection reset"))

		rental, err := svc.CreateRental(ctx, 10, CreateRentalRequest{
			CustomerID: 5,
			GearID:     7,
			RentalType: "hourly",
			Duration:   2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), rental.ID)
		assert.Equal(t, 100.0, rental.TotalPrice)
		require.NotNil(t, rental.Gear)
		assert.Equal(t, "ski", rental.Gear.Type)
		require.NotNil(t, rental.Customer)
		assert.Equal(t, "Aizhan K", rental.Customer.FullName)
	})

	t.Run("GearUnavailable", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM customers WHERE id").
			WithArgs(int64(5), int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "full_name", "phone", "notes", "created_at"}).
				AddRow(5, 10, "Aizhan K", "+77001234567", nil, now))

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusRented, int64(7), int64(10), models.GearStatusAvailable).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(7), int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, err := svc.CreateRental(ctx, 10, CreateRentalRequest{
			CustomerID: 5,
			GearID:     7,
			RentalType: "hourly",
			Duration:   2,
		})
		assert.ErrorIs(t, err, ErrGearUnavailable)
	})

	t.Run("InvalidDuration", func(t *testing.T) {
		_, err := svc.CreateRental(ctx, 10, CreateRentalRequest{
			CustomerID: 5,
			GearID:     7,
			RentalType: "daily",
			Duration:   0,
		})
		assert.ErrorIs(t, err, ErrInvalidDuration)
	})

	t.Run("UnknownRentalType", func(t *testing.T) {
		_, err := svc.CreateRental(ctx, 10, CreateRentalRequest{
			CustomerID: 5,
			GearID:     7,
			RentalType: "weekly",
			Duration:   1,
		})
		assert.ErrorIs(t, err, ErrInvalidRentalType)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func bareRentalColumns() []string {
	return []string{
		"id", "owner_id", "customer_id", "gear_id", "rental_type", "duration",
		"start_at", "due_at", "return_at", "total_price", "condition_score", "comment", "created_at",
	}
}

func TestRentalService_ReturnRental(t *testing.T) {
	svc, mock, cleanup := newRentalServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id (.+) FOR UPDATE").
			WithArgs(int64(1), int64(10)).
			WillReturnRows(sqlmock.NewRows(bareRentalColumns()).
				AddRow(1, 10, 5, 7, "hourly", 2, now.Add(-2*time.Hour), now.Add(-time.Hour), nil, 100.0, nil, nil, now.Add(-2*time.Hour)))
		mock.ExpectExec("UPDATE rentals SET return_at").
			WithArgs(sqlmock.AnyArg(), 5, nil, int64(1), int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusAvailable, int64(7), int64(10), models.GearStatusRented).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mock.ExpectQuery("SELECT (.+) FROM rentals r").
			WithArgs(int64(1), int64(10)).
			WillReturnRows(sqlmock.NewRows(rentalRowColumns()).
				AddRow(1, 10, 5, 7, "hourly", 2,
					now.Add(-2*time.Hour), now.Add(-time.Hour), now, 100.0, 5, nil, now.Add(-2*time.Hour),
					"ski", "Atomic", "170",
					"Aizhan K", "+77001234567"))

		rental, warning, err := svc.ReturnRental(ctx, 1, 10, ReturnRentalRequest{ConditionScore: 5})
		require.NoError(t, err)
		assert.Empty(t, warning)
		require.NotNil(t, rental.ReturnAt)
		// A rental returned after its due time is not overdue once closed.
		assert.False(t, rental.IsOverdue)
	})

	t.Run("ScoreOneBreaksGear", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id (.+) FOR UPDATE").
			WithArgs(int64(2), int64(10)).
			WillReturnRows(sqlmock.NewRows(bareRentalColumns()).
				AddRow(2, 10, 5, 7, "daily", 1, now.Add(-time.Hour), now.Add(23*time.Hour), nil, 300.0, nil, nil, now.Add(-time.Hour)))
		mock.ExpectExec("UPDATE rentals SET return_at").
			WithArgs(sqlmock.AnyArg(), 1, nil, int64(2), int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusBroken, int64(7), int64(10), models.GearStatusRented).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mock.ExpectQuery("SELECT (.+) FROM rentals r").
			WithArgs(int64(2), int64(10)).
			WillReturnRows(sqlmock.NewRows(rentalRowColumns()).
				AddRow(2, 10, 5, 7, "daily", 1,
					now.Add(-time.Hour), now.Add(23*time.Hour), now, 300.0, 1, nil, now.Add(-time.Hour),
					"ski", "Atomic", "170",
					"Aizhan K", "+77001234567"))

		rental, warning, err := svc.ReturnRental(ctx, 2, 10, ReturnRentalRequest{ConditionScore: 1})
		require.NoError(t, err)
		assert.Empty(t, warning)
		require.NotNil(t, rental.ConditionScore)
		assert.Equal(t, 1, *rental.ConditionScore)
	})

	t.Run("ReloadFailureStillReturnsRental", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id (.+) FOR UPDATE").
			WithArgs(int64(4), int64(10)).
			WillReturnRows(sqlmock.NewRows(bareRentalColumns()).
				AddRow(4, 10, 5, 7, "hourly", 2, now.Add(-2*time.Hour), now.Add(time.Hour), nil, 100.0, nil, nil, now.Add(-2*time.Hour)))
		mock.ExpectExec("UPDATE rentals SET return_at").
			WithArgs(sqlmock.AnyArg(), 4, nil, int64(4), int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusAvailable, int64(7), int64(10), models.GearStatusRented).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mock.ExpectQuery("SELECT (.+) FROM rentals r").
			WithArgs(int64(4), int64(10)).
			WillReturnError(errors.New("connection reset"))

		rental, warning, err := svc.ReturnRental(ctx, 4, 10, ReturnRentalRequest{ConditionScore: 4})
		require.NoError(t, err)
		assert.Empty(t, warning)
		require.NotNil(t, rental.ReturnAt)
		require.NotNil(t, rental.ConditionScore)
		assert.Equal(t, 4, *rental.ConditionScore)
		assert.False(t, rental.IsOverdue)
	})

	t.Run("AlreadyReturned", func(t *testing.T) {
		returnedAt := now.Add(-time.Hour)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id (.+) FOR UPDATE").
			WithArgs(int64(3), int64(10)).
			WillReturnRows(sqlmock.NewRows(bareRentalColumns()).
				AddRow(3, 10, 5, 7, "hourly", 2, now.Add(-3*time.Hour), now.Add(-time.Hour), returnedAt, 100.0, 4, nil, now.Add(-3*time.Hour)))
		mock.ExpectRollback()

		_, _, err := svc.ReturnRental(ctx, 3, 10, ReturnRentalRequest{ConditionScore: 5})
		assert.ErrorIs(t, err, ErrAlreadyReturned)
	})

	t.Run("InvalidScore", func(t *testing.T) {
		_, _, err := svc.ReturnRental(ctx, 1, 10, ReturnRentalRequest{ConditionScore: 6})
		assert.ErrorIs(t, err, ErrInvalidScore)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
