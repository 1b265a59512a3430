package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ski_rental_backend/internal/models"
	"ski_rental_backend/internal/repositories"
	"ski_rental_backend/pkg/utils"
)

var (
	ErrBrandNotFound   = errors.New("brand not found")
	ErrBrandValidation = errors.New("brand data validation error")
	ErrBrandNameExists = errors.New("brand name already exists for this account")
	ErrBrandInUse      = errors.New("brand is referenced by gear and cannot be deleted")
)

// CreateBrandRequest DTO
type CreateBrandRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateBrandRequest DTO
type UpdateBrandRequest struct {
	Name string `json:"name" binding:"required"`
}

// BrandService manages the brand catalog of one owner account.
type BrandService interface {
	CreateBrand(ctx context.Context, ownerID int64, req CreateBrandRequest) (*models.Brand, error)
	GetBrandByID(ctx context.Context, id, ownerID int64) (*models.Brand, error)
	GetBrands(ctx context.Context, filters models.BrandFilters) ([]models.Brand, int, error)
	UpdateBrand(ctx context.Context, id, ownerID int64, req UpdateBrandRequest) (*models.Brand, error)
	DeleteBrand(ctx context.Context, id, ownerID int64) error
}

type brandService struct {
	brandRepo repositories.BrandRepository
}

// NewBrandService creates a new instance of BrandService.
func NewBrandService(br repositories.BrandRepository) BrandService {
	return &brandService{brandRepo: br}
}

func (s *brandService) checkName(ctx context.Context, name string, ownerID int64, excludeID *int64) error {
	if utils.IsEmpty(name) {
		return fmt.Errorf("%w: name must not be empty", ErrBrandValidation)
	}
	exists, err := s.brandRepo.NameExists(ctx, name, ownerID, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check brand name uniqueness: %w", err)
	}
	if exists {
		return ErrBrandNameExists
	}
	return nil
}

func (s *brandService) CreateBrand(ctx context.Context, ownerID int64, req CreateBrandRequest) (*models.Brand, error) {
	name := strings.TrimSpace(req.Name)

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	if err := s.checkName(ctx, name, ownerID, nil); err != nil {
		return nil, err
	}

	brand := &models.Brand{OwnerID: ownerID, Name: name}
	created, err := s.brandRepo.CreateBrand(ctx, nil, brand)
	if err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}
	return created, nil
}

func (s *brandService) GetBrandByID(ctx context.Context, id, ownerID int64) (*models.Brand, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	brand, err := s.brandRepo.GetBrandByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("failed to get brand by ID: %w", err)
	}
	return brand, nil
}

func (s *brandService) GetBrands(ctx context.Context, filters models.BrandFilters) ([]models.Brand, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 50
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	brands, totalCount, err := s.brandRepo.GetBrands(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get brands: %w", err)
	}
	return brands, totalCount, nil
}

func (s *brandService) UpdateBrand(ctx context.Context, id, ownerID int64, req UpdateBrandRequest) (*models.Brand, error) {
	name := strings.TrimSpace(req.Name)

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	brand, err := s.brandRepo.GetBrandByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("failed to find brand for update: %w", err)
	}

	if err := s.checkName(ctx, name, ownerID, &id); err != nil {
		return nil, err
	}

	brand.Name = name
	updated, err := s.brandRepo.UpdateBrand(ctx, nil, brand)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("failed to update brand: %w", err)
	}
	return updated, nil
}

// DeleteBrand removes a brand only when no gear references it, so gear
// rows never point at a missing brand.
func (s *brandService) DeleteBrand(ctx context.Context, id, ownerID int64) error {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	if _, err := s.brandRepo.GetBrandByID(ctx, id, ownerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrBrandNotFound
		}
		return fmt.Errorf("failed to find brand for deletion: %w", err)
	}

	count, err := s.brandRepo.GearCount(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to count gear for brand: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d gear items reference it", ErrBrandInUse, count)
	}

	if err := s.brandRepo.DeleteBrand(ctx, nil, id, ownerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrBrandNotFound
		}
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	return nil
}
