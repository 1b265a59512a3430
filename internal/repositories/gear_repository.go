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

// GearRepository defines the interface for gear persistence and for the
// atomic availability transitions. Reserve and release are single
// conditional UPDATE statements keyed on the current status, so two
// concurrent callers can never both succeed for the same item.
type GearRepository interface {
	CreateGear(ctx context.Context, executor SQLExecutor, gear *models.Gear) (*models.Gear, error)
	GetGearByID(ctx context.Context, executor SQLExecutor, id, ownerID int64) (*models.Gear, error)
	GetGear(ctx context.Context, filters models.GearFilters) ([]models.Gear, int, error)
	UpdateGear(ctx context.Context, executor SQLExecutor, gear *models.Gear) (*models.Gear, error)
	DeleteGear(ctx context.Context, executor SQLExecutor, id, ownerID int64) error

	// Reserve transitions available -> rented. Fails with ErrNotFound if
	// the gear does not exist in the account, ErrInvalidState otherwise.
	Reserve(ctx context.Context, executor SQLExecutor, id, ownerID int64) error
	// Release transitions rented -> the given terminal status
	// (available, or broken for a condition-1 return).
	Release(ctx context.Context, executor SQLExecutor, id, ownerID int64, to models.GearStatus) error
	// SetStatus performs the manual overrides (mark broken / repaired),
	// conditional on the set of statuses the transition is legal from.
	SetStatus(ctx context.Context, executor SQLExecutor, id, ownerID int64, to models.GearStatus, from ...models.GearStatus) error
}

type gearRepository struct {
	db *sql.DB
}

// NewGearRepository creates a new instance of GearRepository.
func NewGearRepository(db *sql.DB) GearRepository {
	return &gearRepository{db: db}
}

const selectGearFields = `
	g.id, g.owner_id, g.type, g.brand_id, b.name, g.size, g.status,
	g.hourly_price, g.daily_price, g.notes, g.created_at
`

func scanGearRow(row scanner, isList bool) (*models.Gear, int, error) {
	var gear models.Gear
	var brandName, size, notes sql.NullString
	var totalCount int

	scanDest := []interface{}{
		&gear.ID, &gear.OwnerID, &gear.Type, &gear.BrandID, &brandName, &size,
		&gear.Status, &gear.HourlyPrice, &gear.DailyPrice, &notes, &gear.CreatedAt,
	}
	if isList {
		scanDest = append(scanDest, &totalCount)
	}

	if err := row.Scan(scanDest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, wrapDBError(err, "scanning gear")
	}
	if brandName.Valid {
		gear.BrandName = &brandName.String
	}
	if size.Valid {
		gear.Size = &size.String
	}
	if notes.Valid {
		gear.Notes = &notes.String
	}
	return &gear, totalCount, nil
}

func (r *gearRepository) CreateGear(ctx context.Context, executor SQLExecutor, gear *models.Gear) (*models.Gear, error) {
	query := `INSERT INTO gear (owner_id, type, brand_id, size, status, hourly_price, daily_price, notes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id, created_at`

	if gear.Status == "" {
		gear.Status = string(models.GearStatusAvailable)
	}
	gear.CreatedAt = time.Now()

	err := executor.QueryRowContext(ctx, query,
		gear.OwnerID, gear.Type, gear.BrandID, gear.Size, gear.Status,
		gear.HourlyPrice, gear.DailyPrice, gear.Notes, gear.CreatedAt,
	).Scan(&gear.ID, &gear.CreatedAt)
	if err != nil {
		return nil, wrapDBError(err, "creating gear")
	}
	return gear, nil
}

func (r *gearRepository) GetGearByID(ctx context.Context, executor SQLExecutor, id, ownerID int64) (*models.Gear, error) {
	if executor == nil {
		executor = r.db
	}
	query := "SELECT " + selectGearFields + `
		FROM gear g
		LEFT JOIN brands b ON g.brand_id = b.id
		WHERE g.id = $1 AND g.owner_id = $2`
	gear, _, err := scanGearRow(executor.QueryRowContext(ctx, query, id, ownerID), false)
	return gear, err
}

func (r *gearRepository) GetGear(ctx context.Context, filters models.GearFilters) ([]models.Gear, int, error) {
	gearList := []models.Gear{}
	var totalCount int

	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + selectGearFields + `, COUNT(*) OVER() AS total_count
		FROM gear g
		LEFT JOIN brands b ON g.brand_id = b.id`)

	conditions := []string{"g.owner_id = $1"}
	args := []interface{}{filters.OwnerID}
	argCount := 2

	if filters.Type != nil && *filters.Type != "" {
		conditions = append(conditions, fmt.Sprintf("g.type = $%d", argCount))
		args = append(args, *filters.Type)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("g.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}

	queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	queryBuilder.WriteString(" ORDER BY g.id")

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
		return nil, 0, wrapDBError(err, "querying gear")
	}
	defer rows.Close()

	for rows.Next() {
		gear, scannedTotal, scanErr := scanGearRow(rows, true)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		gearList = append(gearList, *gear)
		totalCount = scannedTotal
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapDBError(err, "iterating gear rows")
	}
	return gearList, totalCount, nil
}

// UpdateGear writes the caller-editable fields. Status is deliberately
// excluded; it only moves through Reserve/Release/SetStatus.
func (r *gearRepository) UpdateGear(ctx context.Context, executor SQLExecutor, gear *models.Gear) (*models.Gear, error) {
	query := `UPDATE gear SET type = $1, brand_id = $2, size = $3, hourly_price = $4, daily_price = $5, notes = $6
	          WHERE id = $7 AND owner_id = $8
	          RETURNING id`

	var id int64
	err := executor.QueryRowContext(ctx, query,
		gear.Type, gear.BrandID, gear.Size, gear.HourlyPrice, gear.DailyPrice, gear.Notes,
		gear.ID, gear.OwnerID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapDBError(err, fmt.Sprintf("updating gear ID %d", gear.ID))
	}
	return gear, nil
}

func (r *gearRepository) DeleteGear(ctx context.Context, executor SQLExecutor, id, ownerID int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM gear WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting gear ID %d", id))
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gearRepository) Reserve(ctx context.Context, executor SQLExecutor, id, ownerID int64) error {
	return r.transition(ctx, executor, id, ownerID, models.GearStatusRented, models.GearStatusAvailable)
}

func (r *gearRepository) Release(ctx context.Context, executor SQLExecutor, id, ownerID int64, to models.GearStatus) error {
	return r.transition(ctx, executor, id, ownerID, to, models.GearStatusRented)
}

func (r *gearRepository) SetStatus(ctx context.Context, executor SQLExecutor, id, ownerID int64, to models.GearStatus, from ...models.GearStatus) error {
	return r.transition(ctx, executor, id, ownerID, to, from...)
}

// transition is the single compare-and-set every status change goes
// through: one UPDATE conditional on the current status. Zero rows
// affected means either the record is missing (ErrNotFound) or it is in
// a state the transition is not legal from (ErrInvalidState).
func (r *gearRepository) transition(ctx context.Context, executor SQLExecutor, id, ownerID int64, to models.GearStatus, from ...models.GearStatus) error {
	if executor == nil {
		executor = r.db
	}

	placeholders := make([]string, 0, len(from))
	args := []interface{}{to, id, ownerID}
	for i, status := range from {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+4))
		args = append(args, status)
	}

	query := fmt.Sprintf(`UPDATE gear SET status = $1 WHERE id = $2 AND owner_id = $3 AND status IN (%s)`,
		strings.Join(placeholders, ", "))

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("transitioning gear ID %d to %s", id, to))
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 1 {
		return nil
	}

	var exists bool
	err = executor.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM gear WHERE id = $1 AND owner_id = $2)`, id, ownerID).Scan(&exists)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("checking gear ID %d existence", id))
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInvalidState
}
