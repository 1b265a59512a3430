package repositories

import (
	"context"
	"testing"

	"ski_rental_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestGearRepository_Reserve(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewGearRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusRented, int64(1), int64(10), models.GearStatusAvailable).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Reserve(ctx, nil, 1, 10)
		assert.NoError(t, err)
	})

	t.Run("NotAvailable", func(t *testing.T) {
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusRented, int64(1), int64(10), models.GearStatusAvailable).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(1), int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.Reserve(ctx, nil, 1, 10)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusRented, int64(99), int64(10), models.GearStatusAvailable).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(99), int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		err := repo.Reserve(ctx, nil, 99, 10)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGearRepository_Release(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewGearRepository(db)
	ctx := context.Background()

	t.Run("ToAvailable", func(t *testing.T) {
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusAvailable, int64(1), int64(10), models.GearStatusRented).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Release(ctx, nil, 1, 10, models.GearStatusAvailable)
		assert.NoError(t, err)
	})

	t.Run("ToBroken", func(t *testing.T) {
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusBroken, int64(1), int64(10), models.GearStatusRented).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Release(ctx, nil, 1, 10, models.GearStatusBroken)
		assert.NoError(t, err)
	})

	t.Run("NotRented", func(t *testing.T) {
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusAvailable, int64(1), int64(10), models.GearStatusRented).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(1), int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.Release(ctx, nil, 1, 10, models.GearStatusAvailable)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGearRepository_SetStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewGearRepository(db)
	ctx := context.Background()

	t.Run("MarkBrokenFromAvailable", func(t *testing.T) {
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusBroken, int64(3), int64(10), models.GearStatusAvailable).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SetStatus(ctx, nil, 3, 10, models.GearStatusBroken, models.GearStatusAvailable)
		assert.NoError(t, err)
	})

	t.Run("MarkBrokenFromRented", func(t *testing.T) {
		mock.ExpectExec("UPDATE gear SET status").
			WithArgs(models.GearStatusBroken, int64(4), int64(10), models.GearStatusAvailable, models.GearStatusRented).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SetStatus(ctx, nil, 4, 10, models.GearStatusBroken, models.GearStatusAvailable, models.GearStatusRented)
		assert.NoError(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
