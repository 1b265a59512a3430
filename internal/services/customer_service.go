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
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrCustomerValidation = errors.New("customer data validation error")
	ErrPhoneExists        = errors.New("phone number already registered for another customer")
)

// CreateCustomerRequest DTO
type CreateCustomerRequest struct {
	FullName string  `json:"full_name" binding:"required"`
	Phone    string  `json:"phone" binding:"required"`
	Notes    *string `json:"notes"`
}

// UpdateCustomerRequest DTO
type UpdateCustomerRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Notes    *string `json:"notes"`
}

// CustomerService manages the customer directory of one owner account.
type CustomerService interface {
	CreateCustomer(ctx context.Context, ownerID int64, req CreateCustomerRequest) (*models.Customer, error)
	GetCustomerByID(ctx context.Context, id, ownerID int64) (*models.Customer, error)
	GetCustomers(ctx context.Context, filters models.CustomerFilters) ([]models.Customer, int, error)
	UpdateCustomer(ctx context.Context, id, ownerID int64, req UpdateCustomerRequest) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id, ownerID int64) error
}

type customerService struct {
	customerRepo repositories.CustomerRepository
	rentalRepo   repositories.RentalRepository
}

// NewCustomerService creates a new instance of CustomerService.
func NewCustomerService(cr repositories.CustomerRepository, rr repositories.RentalRepository) CustomerService {
	return &customerService{customerRepo: cr, rentalRepo: rr}
}

// normalizePhone strips spaces, dashes and parentheses before validation,
// so "+7 (700) 123-45-67" and "+77001234567" are the same number.
func normalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		default:
			return r
		}
	}, phone)
}

func (s *customerService) checkPhone(ctx context.Context, phone string, ownerID int64, excludeID *int64) error {
	if !utils.IsValidPhone(phone) {
		return fmt.Errorf("%w: phone must be 10-15 digits with an optional leading '+'", ErrCustomerValidation)
	}
	exists, err := s.customerRepo.PhoneExists(ctx, phone, ownerID, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check phone uniqueness: %w", err)
	}
	if exists {
		return ErrPhoneExists
	}
	return nil
}

func (s *customerService) CreateCustomer(ctx context.Context, ownerID int64, req CreateCustomerRequest) (*models.Customer, error) {
	if utils.IsEmpty(req.FullName) {
		return nil, fmt.Errorf("%w: full_name must not be empty", ErrCustomerValidation)
	}
	phone := normalizePhone(req.Phone)

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	if err := s.checkPhone(ctx, phone, ownerID, nil); err != nil {
		return nil, err
	}

	customer := &models.Customer{
		OwnerID:  ownerID,
		FullName: strings.TrimSpace(req.FullName),
		Phone:    phone,
		Notes:    req.Notes,
	}
	created, err := s.customerRepo.CreateCustomer(ctx, nil, customer)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return created, nil
}

func (s *customerService) GetCustomerByID(ctx context.Context, id, ownerID int64) (*models.Customer, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	customer, err := s.customerRepo.GetCustomerByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer by ID: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetCustomers(ctx context.Context, filters models.CustomerFilters) ([]models.Customer, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	customers, totalCount, err := s.customerRepo.GetCustomers(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get customers: %w", err)
	}
	return customers, totalCount, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id, ownerID int64, req UpdateCustomerRequest) (*models.Customer, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	customer, err := s.customerRepo.GetCustomerByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer for update: %w", err)
	}

	if req.FullName != nil {
		if utils.IsEmpty(*req.FullName) {
			return nil, fmt.Errorf("%w: full_name must not be empty", ErrCustomerValidation)
		}
		customer.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		phone := normalizePhone(*req.Phone)
		if err := s.checkPhone(ctx, phone, ownerID, &id); err != nil {
			return nil, err
		}
		customer.Phone = phone
	}
	if req.Notes != nil {
		customer.Notes = req.Notes
	}

	updated, err := s.customerRepo.UpdateCustomer(ctx, nil, customer)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return updated, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id, ownerID int64) error {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	if _, err := s.customerRepo.GetCustomerByID(ctx, id, ownerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to find customer for deletion: %w", err)
	}

	count, err := s.rentalRepo.CountByCustomer(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to check rental history for customer: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: customer appears in %d rentals", ErrHasRentalHistory, count)
	}

	if err := s.customerRepo.DeleteCustomer(ctx, nil, id, ownerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}
