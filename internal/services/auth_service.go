package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ski_rental_backend/internal/models"
	"ski_rental_backend/internal/repositories"
	"ski_rental_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrOwnerNotFound      = errors.New("owner account not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrAuthValidation     = errors.New("registration data validation error")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

const minPasswordLength = 8

// RegisterRequest DTO
type RegisterRequest struct {
	Email       string  `json:"email" binding:"required"`
	Password    string  `json:"password" binding:"required"`
	CompanyName *string `json:"company_name"`
}

// LoginRequest DTO
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse DTO
type AuthResponse struct {
	Owner       *models.Owner `json:"owner"`
	AccessToken string        `json:"access_token"`
}

// AuthService handles owner registration, login and profile lookup.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	GetProfile(ctx context.Context, ownerID int64) (*models.Owner, error)
}

type authService struct {
	ownerRepo repositories.OwnerRepository
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(ownerRepo repositories.OwnerRepository) AuthService {
	return &authService{ownerRepo: ownerRepo}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrAuthValidation)
	}
	if !utils.IsValidPasswordLength(req.Password, minPasswordLength) {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrAuthValidation, minPasswordLength)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	owner := &models.Owner{
		Email:        email,
		PasswordHash: string(hashedPassword),
		CompanyName:  req.CompanyName,
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	created, err := s.ownerRepo.CreateOwner(ctx, nil, owner)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to register owner: %w", err)
	}

	token, err := utils.GenerateAccessToken(created.ID, created.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	created.PasswordHash = ""
	return &AuthResponse{Owner: created, AccessToken: token}, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	owner, err := s.ownerRepo.GetOwnerByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(owner.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateAccessToken(owner.ID, owner.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	owner.PasswordHash = ""
	return &AuthResponse{Owner: owner, AccessToken: token}, nil
}

func (s *authService) GetProfile(ctx context.Context, ownerID int64) (*models.Owner, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	owner, err := s.ownerRepo.GetOwnerByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to retrieve owner profile: %w", err)
	}
	owner.PasswordHash = ""
	return owner, nil
}
