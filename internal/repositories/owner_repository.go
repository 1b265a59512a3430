package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ski_rental_backend/internal/models"

	"github.com/lib/pq"
)

// OwnerRepository defines the interface for owner account persistence.
type OwnerRepository interface {
	CreateOwner(ctx context.Context, executor SQLExecutor, owner *models.Owner) (*models.Owner, error)
	GetOwnerByID(ctx context.Context, id int64) (*models.Owner, error)
	GetOwnerByEmail(ctx context.Context, email string) (*models.Owner, error)
}

type ownerRepository struct {
	db *sql.DB
}

// NewOwnerRepository creates a new instance of OwnerRepository.
func NewOwnerRepository(db *sql.DB) OwnerRepository {
	return &ownerRepository{db: db}
}

func (r *ownerRepository) CreateOwner(ctx context.Context, executor SQLExecutor, owner *models.Owner) (*models.Owner, error) {
	query := `INSERT INTO owners (email, password_hash, company_name, created_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at`

	owner.CreatedAt = time.Now()
	err := executor.QueryRowContext(ctx, query,
		owner.Email, owner.PasswordHash, owner.CompanyName, owner.CreatedAt,
	).Scan(&owner.ID, &owner.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateKey
		}
		return nil, wrapDBError(err, "creating owner")
	}
	return owner, nil
}

func (r *ownerRepository) GetOwnerByID(ctx context.Context, id int64) (*models.Owner, error) {
	query := `SELECT id, email, password_hash, company_name, created_at FROM owners WHERE id = $1`
	return r.scanOwner(r.db.QueryRowContext(ctx, query, id))
}

func (r *ownerRepository) GetOwnerByEmail(ctx context.Context, email string) (*models.Owner, error) {
	query := `SELECT id, email, password_hash, company_name, created_at FROM owners WHERE email = $1`
	return r.scanOwner(r.db.QueryRowContext(ctx, query, email))
}

func (r *ownerRepository) scanOwner(row scanner) (*models.Owner, error) {
	var owner models.Owner
	var companyName sql.NullString
	err := row.Scan(&owner.ID, &owner.Email, &owner.PasswordHash, &companyName, &owner.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapDBError(err, "scanning owner")
	}
	if companyName.Valid {
		owner.CompanyName = &companyName.String
	}
	return &owner, nil
}
