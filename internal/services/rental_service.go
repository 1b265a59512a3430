package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ski_rental_backend/internal/models"
	"ski_rental_backend/internal/repositories"

	"github.com/rs/zerolog/log"
)

var (
	ErrRentalNotFound   = errors.New("rental not found")
	ErrRentalValidation = errors.New("rental data validation error")
	ErrGearUnavailable  = errors.New("gear is not available for rent")
	ErrAlreadyReturned  = errors.New("rental is already returned")
	ErrInvalidScore     = errors.New("condition score must be between 1 and 5")
)

// CreateRentalRequest DTO
type CreateRentalRequest struct {
	CustomerID int64  `json:"customer_id" binding:"required"`
	GearID     int64  `json:"gear_id" binding:"required"`
	RentalType string `json:"rental_type" binding:"required"`
	Duration   int    `json:"duration" binding:"required"`
}

// ReturnRentalRequest DTO
type ReturnRentalRequest struct {
	ConditionScore int     `json:"condition_score" binding:"required"`
	Comment        *string `json:"comment"`
}

// RentalService owns the rental ledger. Creating a rental reserves the
// gear, prices the transaction and writes the ledger row inside one
// database transaction, so either all of it happens or none of it does.
type RentalService interface {
	CreateRental(ctx context.Context, ownerID int64, req CreateRentalRequest) (*models.Rental, error)
	GetRentalByID(ctx context.Context, id, ownerID int64) (*models.Rental, error)
	GetRentals(ctx context.Context, filters models.RentalFilters) ([]models.Rental, int, error)
	// ReturnRental closes the rental and releases the gear. The returned
	// warning is non-empty when the ledger was closed but the gear status
	// could not be released; the rental itself still counts as returned.
	ReturnRental(ctx context.Context, id, ownerID int64, req ReturnRentalRequest) (*models.Rental, string, error)
}

type rentalService struct {
	rentalRepo   repositories.RentalRepository
	gearRepo     repositories.GearRepository
	customerRepo repositories.CustomerRepository
	db           *sql.DB
}

// NewRentalService creates a new instance of RentalService.
func NewRentalService(
	rr repositories.RentalRepository,
	gr repositories.GearRepository,
	cr repositories.CustomerRepository,
	db *sql.DB,
) RentalService {
	return &rentalService{rentalRepo: rr, gearRepo: gr, customerRepo: cr, db: db}
}

func (s *rentalService) CreateRental(ctx context.Context, ownerID int64, req CreateRentalRequest) (*models.Rental, error) {
	if !models.IsValidRentalType(req.RentalType) {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidRentalType, req.RentalType)
	}
	if req.Duration < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, req.Duration)
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	customer, err := s.customerRepo.GetCustomerByID(ctx, req.CustomerID, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrCustomerNotFound, req.CustomerID)
		}
		return nil, fmt.Errorf("failed to validate customer for rental: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin rental transaction: %w", err)
	}
	defer tx.Rollback()

	// Reserve first. The conditional update loses to any concurrent
	// reservation of the same item, and rolling back undoes it, so a
	// failed creation never leaves gear stuck in rented.
	if err := s.gearRepo.Reserve(ctx, tx, req.GearID, ownerID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, fmt.Errorf("%w: ID %d", ErrGearNotFound, req.GearID)
		case errors.Is(err, repositories.ErrInvalidState):
			return nil, fmt.Errorf("%w: ID %d", ErrGearUnavailable, req.GearID)
		default:
			return nil, fmt.Errorf("failed to reserve gear: %w", err)
		}
	}

	gear, err := s.gearRepo.GetGearByID(ctx, tx, req.GearID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load gear rates: %w", err)
	}

	startAt := time.Now()
	quote, err := QuotePrice(req.RentalType, req.Duration, gear.HourlyPrice, gear.DailyPrice, startAt)
	if err != nil {
		return nil, err
	}

	rental := &models.Rental{
		OwnerID:    ownerID,
		CustomerID: req.CustomerID,
		GearID:     req.GearID,
		RentalType: req.RentalType,
		Duration:   req.Duration,
		StartAt:    startAt,
		DueAt:      quote.DueAt,
		TotalPrice: quote.TotalPrice,
	}

	created, err := s.rentalRepo.CreateRental(ctx, tx, rental)
	if err != nil {
		return nil, fmt.Errorf("failed to create rental: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rental transaction: %w", err)
	}

	full, err := s.rentalRepo.GetRentalByID(ctx, created.ID, ownerID)
	if err != nil {
		// The rental is committed; a failed reload must not turn it into
		// an error response. Serve the in-memory view instead.
		log.Warn().Err(err).Int64("rental_id", created.ID).Msg("rental created but reload failed")
		created.Gear = &models.GearSummary{ID: gear.ID, Type: gear.Type, Brand: gear.BrandName, Size: gear.Size}
		created.Customer = &models.CustomerSummary{ID: customer.ID, FullName: customer.FullName, Phone: customer.Phone}
		created.ComputeOverdue(time.Now())
		return created, nil
	}
	return full, nil
}

func (s *rentalService) GetRentalByID(ctx context.Context, id, ownerID int64) (*models.Rental, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	rental, err := s.rentalRepo.GetRentalByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRentalNotFound
		}
		return nil, fmt.Errorf("failed to get rental by ID: %w", err)
	}
	return rental, nil
}

func (s *rentalService) GetRentals(ctx context.Context, filters models.RentalFilters) ([]models.Rental, int, error) {
	if filters.Status == "" {
		filters.Status = models.RentalStatusFilterAll
	}
	if !models.IsValidRentalStatusFilter(filters.Status) {
		return nil, 0, fmt.Errorf("%w: invalid status filter '%s'", ErrRentalValidation, filters.Status)
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	rentals, totalCount, err := s.rentalRepo.GetRentals(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get rentals: %w", err)
	}
	return rentals, totalCount, nil
}

func (s *rentalService) ReturnRental(ctx context.Context, id, ownerID int64, req ReturnRentalRequest) (*models.Rental, string, error) {
	if req.ConditionScore < 1 || req.ConditionScore > 5 {
		return nil, "", fmt.Errorf("%w: got %d", ErrInvalidScore, req.ConditionScore)
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to begin return transaction: %w", err)
	}
	defer tx.Rollback()

	rental, err := s.rentalRepo.GetRentalForUpdate(ctx, tx, id, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, "", ErrRentalNotFound
		}
		return nil, "", fmt.Errorf("failed to lock rental for return: %w", err)
	}
	if rental.ReturnAt != nil {
		return nil, "", ErrAlreadyReturned
	}

	returnedAt := time.Now()
	if err := s.rentalRepo.CloseRental(ctx, tx, id, ownerID, returnedAt, req.ConditionScore, req.Comment); err != nil {
		if errors.Is(err, repositories.ErrInvalidState) {
			return nil, "", ErrAlreadyReturned
		}
		return nil, "", fmt.Errorf("failed to close rental: %w", err)
	}

	// A score of 1 means the item came back unusable.
	target := models.GearStatusAvailable
	if req.ConditionScore == 1 {
		target = models.GearStatusBroken
	}

	var warning string
	if err := s.gearRepo.Release(ctx, tx, rental.GearID, ownerID, target); err != nil {
		if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrInvalidState) {
			// The gear was deleted or its status was changed out of band.
			// The return itself still stands; flag the inconsistency
			// instead of failing the customer-facing operation.
			warning = fmt.Sprintf("rental %d closed but gear %d could not be released to %s", id, rental.GearID, target)
			log.Warn().
				Int64("rental_id", id).
				Int64("gear_id", rental.GearID).
				Str("target_status", string(target)).
				Msg("gear release skipped during return")
		} else {
			return nil, "", fmt.Errorf("failed to release gear: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, "", fmt.Errorf("failed to commit return transaction: %w", err)
	}

	returned, err := s.rentalRepo.GetRentalByID(ctx, id, ownerID)
	if err != nil {
		// The return is committed; serve the locked row with the close-out
		// fields applied rather than fail the operation.
		log.Warn().Err(err).Int64("rental_id", id).Msg("rental returned but reload failed")
		rental.ReturnAt = &returnedAt
		rental.ConditionScore = &req.ConditionScore
		rental.Comment = req.Comment
		rental.ComputeOverdue(time.Now())
		return rental, warning, nil
	}
	return returned, warning, nil
}
