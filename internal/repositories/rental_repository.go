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

// RentalRepository defines the interface for rental ledger persistence.
// GetRentalForUpdate takes a row lock so the close-out of a rental is
// serialized against concurrent returns of the same rental.
type RentalRepository interface {
	CreateRental(ctx context.Context, executor SQLExecutor, rental *models.Rental) (*models.Rental, error)
	GetRentalByID(ctx context.Context, id, ownerID int64) (*models.Rental, error)
	GetRentalForUpdate(ctx context.Context, executor SQLExecutor, id, ownerID int64) (*models.Rental, error)
	GetRentals(ctx context.Context, filters models.RentalFilters) ([]models.Rental, int, error)
	// CloseRental writes the return fields exactly once; a second call
	// finds return_at already set and reports ErrInvalidState.
	CloseRental(ctx context.Context, executor SQLExecutor, id, ownerID int64, returnAt time.Time, conditionScore int, comment *string) error
	CountByCustomer(ctx context.Context, customerID, ownerID int64) (int, error)
	CountByGear(ctx context.Context, gearID, ownerID int64) (int, error)
}

type rentalRepository struct {
	db *sql.DB
}

// NewRentalRepository creates a new instance of RentalRepository.
func NewRentalRepository(db *sql.DB) RentalRepository {
	return &rentalRepository{db: db}
}

const rentalJoins = `
	FROM rentals r
	JOIN gear g ON r.gear_id = g.id
	LEFT JOIN brands b ON g.brand_id = b.id
	JOIN customers c ON r.customer_id = c.id
`

const selectRentalFields = `
	r.id, r.owner_id, r.customer_id, r.gear_id, r.rental_type, r.duration,
	r.start_at, r.due_at, r.return_at, r.total_price, r.condition_score, r.comment, r.created_at,
	g.type, b.name, g.size,
	c.full_name, c.phone
`

// scanRentalRow scans a rental with its joined gear/brand/customer
// summaries and refreshes the derived overdue flag.
func scanRentalRow(row scanner, isList bool) (*models.Rental, int, error) {
	var rental models.Rental
	var returnAt sql.NullTime
	var conditionScore sql.NullInt32
	var comment, brandName, size sql.NullString
	var gearType, customerName, customerPhone string
	var totalCount int

	scanDest := []interface{}{
		&rental.ID, &rental.OwnerID, &rental.CustomerID, &rental.GearID, &rental.RentalType, &rental.Duration,
		&rental.StartAt, &rental.DueAt, &returnAt, &rental.TotalPrice, &conditionScore, &comment, &rental.CreatedAt,
		&gearType, &brandName, &size,
		&customerName, &customerPhone,
	}
	if isList {
		scanDest = append(scanDest, &totalCount)
	}

	if err := row.Scan(scanDest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, wrapDBError(err, "scanning rental")
	}

	if returnAt.Valid {
		rental.ReturnAt = &returnAt.Time
	}
	if conditionScore.Valid {
		score := int(conditionScore.Int32)
		rental.ConditionScore = &score
	}
	if comment.Valid {
		rental.Comment = &comment.String
	}

	gear := models.GearSummary{ID: rental.GearID, Type: gearType}
	if brandName.Valid {
		gear.Brand = &brandName.String
	}
	if size.Valid {
		gear.Size = &size.String
	}
	rental.Gear = &gear
	rental.Customer = &models.CustomerSummary{ID: rental.CustomerID, FullName: customerName, Phone: customerPhone}

	rental.ComputeOverdue(time.Now())
	return &rental, totalCount, nil
}

func (r *rentalRepository) CreateRental(ctx context.Context, executor SQLExecutor, rental *models.Rental) (*models.Rental, error) {
	query := `INSERT INTO rentals
	            (owner_id, customer_id, gear_id, rental_type, duration, start_at, due_at, total_price, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id, created_at`

	rental.CreatedAt = time.Now()
	err := executor.QueryRowContext(ctx, query,
		rental.OwnerID, rental.CustomerID, rental.GearID, rental.RentalType, rental.Duration,
		rental.StartAt, rental.DueAt, rental.TotalPrice, rental.CreatedAt,
	).Scan(&rental.ID, &rental.CreatedAt)
	if err != nil {
		return nil, wrapDBError(err, "creating rental")
	}
	return rental, nil
}

func (r *rentalRepository) GetRentalByID(ctx context.Context, id, ownerID int64) (*models.Rental, error) {
	query := "SELECT " + selectRentalFields + rentalJoins + " WHERE r.id = $1 AND r.owner_id = $2"
	rental, _, err := scanRentalRow(r.db.QueryRowContext(ctx, query, id, ownerID), false)
	return rental, err
}

// GetRentalForUpdate fetches the bare rental row under FOR UPDATE. No
// joins: Postgres does not allow FOR UPDATE on the nullable side of an
// outer join, and the caller only needs the ledger fields.
func (r *rentalRepository) GetRentalForUpdate(ctx context.Context, executor SQLExecutor, id, ownerID int64) (*models.Rental, error) {
	query := `SELECT id, owner_id, customer_id, gear_id, rental_type, duration,
	                 start_at, due_at, return_at, total_price, condition_score, comment, created_at
	          FROM rentals WHERE id = $1 AND owner_id = $2 FOR UPDATE`

	var rental models.Rental
	var returnAt sql.NullTime
	var conditionScore sql.NullInt32
	var comment sql.NullString

	err := executor.QueryRowContext(ctx, query, id, ownerID).Scan(
		&rental.ID, &rental.OwnerID, &rental.CustomerID, &rental.GearID, &rental.RentalType, &rental.Duration,
		&rental.StartAt, &rental.DueAt, &returnAt, &rental.TotalPrice, &conditionScore, &comment, &rental.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapDBError(err, fmt.Sprintf("locking rental ID %d", id))
	}

	if returnAt.Valid {
		rental.ReturnAt = &returnAt.Time
	}
	if conditionScore.Valid {
		score := int(conditionScore.Int32)
		rental.ConditionScore = &score
	}
	if comment.Valid {
		rental.Comment = &comment.String
	}
	rental.ComputeOverdue(time.Now())
	return &rental, nil
}

func (r *rentalRepository) GetRentals(ctx context.Context, filters models.RentalFilters) ([]models.Rental, int, error) {
	rentals := []models.Rental{}
	var totalCount int

	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + selectRentalFields + ", COUNT(*) OVER() AS total_count " + rentalJoins)

	conditions := []string{"r.owner_id = $1"}
	args := []interface{}{filters.OwnerID}
	argCount := 2

	switch filters.Status {
	case models.RentalStatusFilterActive:
		conditions = append(conditions, "r.return_at IS NULL")
	case models.RentalStatusFilterCompleted:
		conditions = append(conditions, "r.return_at IS NOT NULL")
	case models.RentalStatusFilterOverdue:
		conditions = append(conditions, "r.return_at IS NULL AND r.due_at < NOW()")
	}

	if filters.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("r.customer_id = $%d", argCount))
		args = append(args, *filters.CustomerID)
		argCount++
	}
	if filters.GearID != nil {
		conditions = append(conditions, fmt.Sprintf("r.gear_id = $%d", argCount))
		args = append(args, *filters.GearID)
		argCount++
	}

	queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	queryBuilder.WriteString(" ORDER BY r.created_at DESC")

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
		return nil, 0, wrapDBError(err, "querying rentals")
	}
	defer rows.Close()

	for rows.Next() {
		rental, scannedTotal, scanErr := scanRentalRow(rows, true)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		rentals = append(rentals, *rental)
		totalCount = scannedTotal
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapDBError(err, "iterating rental rows")
	}
	return rentals, totalCount, nil
}

func (r *rentalRepository) CloseRental(ctx context.Context, executor SQLExecutor, id, ownerID int64, returnAt time.Time, conditionScore int, comment *string) error {
	query := `UPDATE rentals SET return_at = $1, condition_score = $2, comment = $3
	          WHERE id = $4 AND owner_id = $5 AND return_at IS NULL`

	result, err := executor.ExecContext(ctx, query, returnAt, conditionScore, comment, id, ownerID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("closing rental ID %d", id))
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrInvalidState
	}
	return nil
}

func (r *rentalRepository) CountByCustomer(ctx context.Context, customerID, ownerID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rentals WHERE customer_id = $1 AND owner_id = $2`, customerID, ownerID,
	).Scan(&count)
	if err != nil {
		return 0, wrapDBError(err, "counting rentals for customer")
	}
	return count, nil
}

func (r *rentalRepository) CountByGear(ctx context.Context, gearID, ownerID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rentals WHERE gear_id = $1 AND owner_id = $2`, gearID, ownerID,
	).Scan(&count)
	if err != nil {
		return 0, wrapDBError(err, "counting rentals for gear")
	}
	return count, nil
}
