package services

import (
	"context"
	"testing"
	"time"

	"ski_rental_backend/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCustomerServiceForTest(t *testing.T) (CustomerService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	customerRepo := repositories.NewCustomerRepository(db)
	rentalRepo := repositories.NewRentalRepository(db)
	svc := NewCustomerService(customerRepo, rentalRepo)

	return svc, mock, func() { db.Close() }
}

func TestCustomerService_CreateCustomer(t *testing.T) {
	svc, mock, cleanup := newCustomerServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("+77001234567", int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("INSERT INTO customers").
			WithArgs(int64(10), "Aizhan K", "+77001234567", nil, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, now))

		customer, err := svc.CreateCustomer(ctx, 10, CreateCustomerRequest{
			FullName: "Aizhan K",
			Phone:    "+7 (700) 123-45-67",
		})
		require.NoError(t, err)
		assert.Equal(t, "+77001234567", customer.Phone)
	})

	t.Run("DuplicatePhone", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("+77001234567", int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := svc.CreateCustomer(ctx, 10, CreateCustomerRequest{
			FullName: "Another Person",
			Phone:    "+77001234567",
		})
		assert.ErrorIs(t, err, ErrPhoneExists)
	})

	t.Run("PhoneTooShort", func(t *testing.T) {
		_, err := svc.CreateCustomer(ctx, 10, CreateCustomerRequest{
			FullName: "Short Phone",
			Phone:    "12345",
		})
		assert.ErrorIs(t, err, ErrCustomerValidation)
	})

	t.Run("PhoneWithLetters", func(t *testing.T) {
		_, err := svc.CreateCustomer(ctx, 10, CreateCustomerRequest{
			FullName: "Bad Phone",
			Phone:    "+7700abc4567",
		})
		assert.ErrorIs(t, err, ErrCustomerValidation)
	})

	t.Run("EmptyName", func(t *testing.T) {
		_, err := svc.CreateCustomer(ctx, 10, CreateCustomerRequest{
			FullName: "   ",
			Phone:    "+77001234567",
		})
		assert.ErrorIs(t, err, ErrCustomerValidation)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerService_DeleteCustomer(t *testing.T) {
	svc, mock, cleanup := newCustomerServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()
	customerCols := []string{"id", "owner_id", "full_name", "phone", "notes", "created_at"}

	t.Run("BlockedByRentalHistory", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM customers WHERE id").
			WithArgs(int64(5), int64(10)).
			WillReturnRows(sqlmock.NewRows(customerCols).AddRow(5, 10, "Aizhan K", "+77001234567", nil, now))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM rentals WHERE customer_id").
			WithArgs(int64(5), int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		err := svc.DeleteCustomer(ctx, 5, 10)
		assert.ErrorIs(t, err, ErrHasRentalHistory)
	})

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM customers WHERE id").
			WithArgs(int64(6), int64(10)).
			WillReturnRows(sqlmock.NewRows(customerCols).AddRow(6, 10, "No History", "+77009876543", nil, now))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM rentals WHERE customer_id").
			WithArgs(int64(6), int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec("DELETE FROM customers").
			WithArgs(int64(6), int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := svc.DeleteCustomer(ctx, 6, 10)
		assert.NoError(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
