package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ski_rental_backend/internal/models"
)

// CustomerRepository defines the interface for customer persistence.
type CustomerRepository interface {
	CreateCustomer(ctx context.Context, executor SQLExecutor, customer *models.Customer) (*models.Customer, error)
	GetCustomerByID(ctx context.Context, id, ownerID int64) (*models.Customer, error)
	GetCustomers(ctx context.Context, filters models.CustomerFilters) ([]models.Customer, int, error)
	UpdateCustomer(ctx context.Context, executor SQLExecutor, customer *models.Customer) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, executor SQLExecutor, id, ownerID int64) error
	// PhoneExists reports whether another customer of the same account
	// already uses the phone number.
	PhoneExists(ctx context.Context, phone string, ownerID int64, excludeID *int64) (bool, error)
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new instance of CustomerRepository.
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func scanCustomerRow(row scanner, isList bool) (*models.Customer, int, error) {
	var customer models.Customer
	var notes sql.NullString
	var totalCount int

	scanDest := []interface{}{
		&customer.ID, &customer.OwnerID, &customer.FullName, &customer.Phone, &notes, &customer.CreatedAt,
	}
	if isList {
		scanDest = append(scanDest, &totalCount)
	}

	if err := row.Scan(scanDest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, wrapDBError(err, "scanning customer")
	}
	if notes.Valid {
		customer.Notes = &notes.String
	}
	return &customer, totalCount, nil
}

func (r *customerRepository) CreateCustomer(ctx context.Context, executor SQLExecutor, customer *models.Customer) (*models.Customer, error) {
	query := `INSERT INTO customers (owner_id, full_name, phone, notes, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`

	customer.CreatedAt = time.Now()
	err := executor.QueryRowContext(ctx, query,
		customer.OwnerID, customer.FullName, customer.Phone, customer.Notes, customer.CreatedAt,
	).Scan(&customer.ID, &customer.CreatedAt)
	if err != nil {
		return nil, wrapDBError(err, "creating customer")
	}
	return customer, nil
}

func (r *customerRepository) GetCustomerByID(ctx context.Context, id, ownerID int64) (*models.Customer, error) {
	query := `SELECT id, owner_id, full_name, phone, notes, created_at FROM customers WHERE id = $1 AND owner_id = $2`
	customer, _, err := scanCustomerRow(r.db.QueryRowContext(ctx, query, id, ownerID), false)
	return customer, err
}

func (r *customerRepository) GetCustomers(ctx context.Context, filters models.CustomerFilters) ([]models.Customer, int, error) {
	customers := []models.Customer{}
	var totalCount int

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, owner_id, full_name, phone, notes, created_at, COUNT(*) OVER() AS total_count
		FROM customers WHERE owner_id = $1`)

	args := []interface{}{filters.OwnerID}
	argCount := 2

	if filters.Search != nil && *filters.Search != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (full_name ILIKE $%d OR phone ILIKE $%d)", argCount, argCount))
		args = append(args, "%"+*filters.Search+"%")
		argCount++
	}

	queryBuilder.WriteString(" ORDER BY full_name")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.PageSize)
		argCount++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError(err, "querying customers")
	}
	defer rows.Close()

	for rows.Next() {
		customer, scannedTotal, scanErr := scanCustomerRow(rows, true)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		customers = append(customers, *customer)
		totalCount = scannedTotal
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapDBError(err, "iterating customer rows")
	}
	return customers, totalCount, nil
}

func (r *customerRepository) UpdateCustomer(ctx context.Context, executor SQLExecutor, customer *models.Customer) (*models.Customer, error) {
	query := `UPDATE customers SET full_name = $1, phone = $2, notes = $3
	          WHERE id = $4 AND owner_id = $5
	          RETURNING id`

	var id int64
	err := executor.QueryRowContext(ctx, query,
		customer.FullName, customer.Phone, customer.Notes, customer.ID, customer.OwnerID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapDBError(err, fmt.Sprintf("updating customer ID %d", customer.ID))
	}
	return customer, nil
}

func (r *customerRepository) DeleteCustomer(ctx context.Context, executor SQLExecutor, id, ownerID int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM customers WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting customer ID %d", id))
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *customerRepository) PhoneExists(ctx context.Context, phone string, ownerID int64, excludeID *int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM customers WHERE phone = $1 AND owner_id = $2`
	args := []interface{}{phone, ownerID}
	if excludeID != nil {
		query += " AND id != $3"
		args = append(args, *excludeID)
	}
	query += ")"

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, wrapDBError(err, "checking customer phone uniqueness")
	}
	return exists, nil
}
