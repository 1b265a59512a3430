package services

import (
	"context"
	"errors"
	"fmt"

	"ski_rental_backend/internal/models"
	"ski_rental_backend/internal/repositories"
)

var (
	ErrGearNotFound           = errors.New("gear not found")
	ErrGearValidation         = errors.New("gear data validation error")
	ErrInvalidStateTransition = errors.New("gear is not in a state the transition is allowed from")
	ErrHasRentalHistory       = errors.New("record has rental history and cannot be deleted")
)

// CreateGearRequest DTO
type CreateGearRequest struct {
	Type        string  `json:"type" binding:"required"`
	BrandID     int64   `json:"brand_id" binding:"required"`
	Size        *string `json:"size"`
	HourlyPrice float64 `json:"hourly_price" binding:"required"`
	DailyPrice  float64 `json:"daily_price" binding:"required"`
	Notes       *string `json:"notes"`
}

// UpdateGearRequest DTO
type UpdateGearRequest struct {
	Type        *string  `json:"type"`
	BrandID     *int64   `json:"brand_id"`
	Size        *string  `json:"size"`
	HourlyPrice *float64 `json:"hourly_price"`
	DailyPrice  *float64 `json:"daily_price"`
	Notes       *string  `json:"notes"`
}

// GearService manages the gear fleet, including the manual status
// overrides. Reserve/release during a rental belong to RentalService.
type GearService interface {
	CreateGear(ctx context.Context, ownerID int64, req CreateGearRequest) (*models.Gear, error)
	GetGearByID(ctx context.Context, id, ownerID int64) (*models.Gear, error)
	GetGear(ctx context.Context, filters models.GearFilters) ([]models.Gear, int, error)
	UpdateGear(ctx context.Context, id, ownerID int64, req UpdateGearRequest) (*models.Gear, error)
	DeleteGear(ctx context.Context, id, ownerID int64) error
	// MarkBroken takes an available or rented item out of circulation;
	// MarkRepaired puts a broken one back.
	MarkBroken(ctx context.Context, id, ownerID int64) (*models.Gear, error)
	MarkRepaired(ctx context.Context, id, ownerID int64) (*models.Gear, error)
}

type gearService struct {
	gearRepo   repositories.GearRepository
	brandRepo  repositories.BrandRepository
	rentalRepo repositories.RentalRepository
}

// NewGearService creates a new instance of GearService.
func NewGearService(gr repositories.GearRepository, br repositories.BrandRepository, rr repositories.RentalRepository) GearService {
	return &gearService{gearRepo: gr, brandRepo: br, rentalRepo: rr}
}

func (s *gearService) validateBrand(ctx context.Context, brandID, ownerID int64) error {
	_, err := s.brandRepo.GetBrandByID(ctx, brandID, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: ID %d", ErrBrandNotFound, brandID)
		}
		return fmt.Errorf("failed to validate brand for gear: %w", err)
	}
	return nil
}

func validateGearPrices(hourly, daily float64) error {
	if hourly < 0 || daily < 0 {
		return fmt.Errorf("%w: prices must not be negative", ErrGearValidation)
	}
	return nil
}

func (s *gearService) CreateGear(ctx context.Context, ownerID int64, req CreateGearRequest) (*models.Gear, error) {
	if !models.IsValidGearType(req.Type) {
		return nil, fmt.Errorf("%w: invalid type '%s'", ErrGearValidation, req.Type)
	}
	if err := validateGearPrices(req.HourlyPrice, req.DailyPrice); err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	if err := s.validateBrand(ctx, req.BrandID, ownerID); err != nil {
		return nil, err
	}

	gear := &models.Gear{
		OwnerID:     ownerID,
		Type:        req.Type,
		BrandID:     req.BrandID,
		Size:        req.Size,
		Status:      string(models.GearStatusAvailable),
		HourlyPrice: req.HourlyPrice,
		DailyPrice:  req.DailyPrice,
		Notes:       req.Notes,
	}

	created, err := s.gearRepo.CreateGear(ctx, nil, gear)
	if err != nil {
		return nil, fmt.Errorf("failed to create gear: %w", err)
	}
	return s.gearRepo.GetGearByID(ctx, nil, created.ID, ownerID)
}

func (s *gearService) GetGearByID(ctx context.Context, id, ownerID int64) (*models.Gear, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	gear, err := s.gearRepo.GetGearByID(ctx, nil, id, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrGearNotFound
		}
		return nil, fmt.Errorf("failed to get gear by ID: %w", err)
	}
	return gear, nil
}

func (s *gearService) GetGear(ctx context.Context, filters models.GearFilters) ([]models.Gear, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	if filters.Type != nil && *filters.Type != "" && !models.IsValidGearType(*filters.Type) {
		return nil, 0, fmt.Errorf("%w: invalid type filter '%s'", ErrGearValidation, *filters.Type)
	}
	if filters.Status != nil && *filters.Status != "" && !models.IsValidGearStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: invalid status filter '%s'", ErrGearValidation, *filters.Status)
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	gearList, totalCount, err := s.gearRepo.GetGear(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get gear: %w", err)
	}
	return gearList, totalCount, nil
}

func (s *gearService) UpdateGear(ctx context.Context, id, ownerID int64, req UpdateGearRequest) (*models.Gear, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	gear, err := s.gearRepo.GetGearByID(ctx, nil, id, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrGearNotFound
		}
		return nil, fmt.Errorf("failed to find gear for update: %w", err)
	}

	if req.Type != nil {
		if !models.IsValidGearType(*req.Type) {
			return nil, fmt.Errorf("%w: invalid type '%s'", ErrGearValidation, *req.Type)
		}
		gear.Type = *req.Type
	}
	if req.BrandID != nil {
		if err := s.validateBrand(ctx, *req.BrandID, ownerID); err != nil {
			return nil, err
		}
		gear.BrandID = *req.BrandID
	}
	if req.Size != nil {
		gear.Size = req.Size
	}
	if req.HourlyPrice != nil {
		gear.HourlyPrice = *req.HourlyPrice
	}
	if req.DailyPrice != nil {
		gear.DailyPrice = *req.DailyPrice
	}
	if req.Notes != nil {
		gear.Notes = req.Notes
	}
	if err := validateGearPrices(gear.HourlyPrice, gear.DailyPrice); err != nil {
		return nil, err
	}

	if _, err := s.gearRepo.UpdateGear(ctx, nil, gear); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrGearNotFound
		}
		return nil, fmt.Errorf("failed to update gear: %w", err)
	}
	return s.gearRepo.GetGearByID(ctx, nil, id, ownerID)
}

func (s *gearService) DeleteGear(ctx context.Context, id, ownerID int64) error {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	gear, err := s.gearRepo.GetGearByID(ctx, nil, id, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrGearNotFound
		}
		return fmt.Errorf("failed to find gear for deletion: %w", err)
	}
	if gear.Status == string(models.GearStatusRented) {
		return fmt.Errorf("%w: gear is currently rented out", ErrInvalidStateTransition)
	}

	count, err := s.rentalRepo.CountByGear(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to check rental history for gear: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: gear appears in %d rentals", ErrHasRentalHistory, count)
	}

	if err := s.gearRepo.DeleteGear(ctx, nil, id, ownerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrGearNotFound
		}
		return fmt.Errorf("failed to delete gear: %w", err)
	}
	return nil
}

// MarkBroken is allowed from available and from rented: an item can be
// reported damaged mid-rental. The subsequent return tolerates the gear
// already being out of rented via the release-warning path.
func (s *gearService) MarkBroken(ctx context.Context, id, ownerID int64) (*models.Gear, error) {
	return s.override(ctx, id, ownerID, models.GearStatusBroken, models.GearStatusAvailable, models.GearStatusRented)
}

func (s *gearService) MarkRepaired(ctx context.Context, id, ownerID int64) (*models.Gear, error) {
	return s.override(ctx, id, ownerID, models.GearStatusAvailable, models.GearStatusBroken)
}

func (s *gearService) override(ctx context.Context, id, ownerID int64, to models.GearStatus, from ...models.GearStatus) (*models.Gear, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	err := s.gearRepo.SetStatus(ctx, nil, id, ownerID, to, from...)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrGearNotFound
		case errors.Is(err, repositories.ErrInvalidState):
			return nil, fmt.Errorf("%w: gear cannot be marked %s from its current status", ErrInvalidStateTransition, to)
		default:
			return nil, fmt.Errorf("failed to change gear status: %w", err)
		}
	}
	return s.gearRepo.GetGearByID(ctx, nil, id, ownerID)
}
