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

// BrandRepository defines the interface for brand persistence.
type BrandRepository interface {
	CreateBrand(ctx context.Context, executor SQLExecutor, brand *models.Brand) (*models.Brand, error)
	GetBrandByID(ctx context.Context, id, ownerID int64) (*models.Brand, error)
	GetBrands(ctx context.Context, filters models.BrandFilters) ([]models.Brand, int, error)
	UpdateBrand(ctx context.Context, executor SQLExecutor, brand *models.Brand) (*models.Brand, error)
	DeleteBrand(ctx context.Context, executor SQLExecutor, id, ownerID int64) error
	NameExists(ctx context.Context, name string, ownerID int64, excludeID *int64) (bool, error)
	// GearCount reports how many gear items reference the brand; brand
	// deletion is blocked while it is non-zero.
	GearCount(ctx context.Context, brandID, ownerID int64) (int, error)
}

type brandRepository struct {
	db *sql.DB
}

// NewBrandRepository creates a new instance of BrandRepository.
func NewBrandRepository(db *sql.DB) BrandRepository {
	return &brandRepository{db: db}
}

func scanBrandRow(row scanner, isList bool) (*models.Brand, int, error) {
	var brand models.Brand
	var totalCount int

	scanDest := []interface{}{&brand.ID, &brand.OwnerID, &brand.Name, &brand.CreatedAt}
	if isList {
		scanDest = append(scanDest, &totalCount)
	}

	if err := row.Scan(scanDest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, wrapDBError(err, "scanning brand")
	}
	return &brand, totalCount, nil
}

func (r *brandRepository) CreateBrand(ctx context.Context, executor SQLExecutor, brand *models.Brand) (*models.Brand, error) {
	query := `INSERT INTO brands (owner_id, name, created_at)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at`

	brand.CreatedAt = time.Now()
	err := executor.QueryRowContext(ctx, query, brand.OwnerID, brand.Name, brand.CreatedAt).
		Scan(&brand.ID, &brand.CreatedAt)
	if err != nil {
		return nil, wrapDBError(err, "creating brand")
	}
	return brand, nil
}

func (r *brandRepository) GetBrandByID(ctx context.Context, id, ownerID int64) (*models.Brand, error) {
	query := `SELECT id, owner_id, name, created_at FROM brands WHERE id = $1 AND owner_id = $2`
	brand, _, err := scanBrandRow(r.db.QueryRowContext(ctx, query, id, ownerID), false)
	return brand, err
}

func (r *brandRepository) GetBrands(ctx context.Context, filters models.BrandFilters) ([]models.Brand, int, error) {
	brands := []models.Brand{}
	var totalCount int

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, owner_id, name, created_at, COUNT(*) OVER() AS total_count
		FROM brands WHERE owner_id = $1 ORDER BY name`)
	args := []interface{}{filters.OwnerID}
	argCount := 2

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
		return nil, 0, wrapDBError(err, "querying brands")
	}
	defer rows.Close()

	for rows.Next() {
		brand, scannedTotal, scanErr := scanBrandRow(rows, true)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		brands = append(brands, *brand)
		totalCount = scannedTotal
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapDBError(err, "iterating brand rows")
	}
	return brands, totalCount, nil
}

func (r *brandRepository) UpdateBrand(ctx context.Context, executor SQLExecutor, brand *models.Brand) (*models.Brand, error) {
	query := `UPDATE brands SET name = $1 WHERE id = $2 AND owner_id = $3 RETURNING id`

	var id int64
	err := executor.QueryRowContext(ctx, query, brand.Name, brand.ID, brand.OwnerID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapDBError(err, fmt.Sprintf("updating brand ID %d", brand.ID))
	}
	return brand, nil
}

func (r *brandRepository) DeleteBrand(ctx context.Context, executor SQLExecutor, id, ownerID int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM brands WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting brand ID %d", id))
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *brandRepository) NameExists(ctx context.Context, name string, ownerID int64, excludeID *int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM brands WHERE name = $1 AND owner_id = $2`
	args := []interface{}{name, ownerID}
	if excludeID != nil {
		query += " AND id != $3"
		args = append(args, *excludeID)
	}
	query += ")"

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, wrapDBError(err, "checking brand name uniqueness")
	}
	return exists, nil
}

func (r *brandRepository) GearCount(ctx context.Context, brandID, ownerID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM gear WHERE brand_id = $1 AND owner_id = $2`, brandID, ownerID,
	).Scan(&count)
	if err != nil {
		return 0, wrapDBError(err, "counting gear for brand")
	}
	return count, nil
}
