package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/elky431-debug/creax-backend/internal/constants"
	apperrors "github.com/elky431-debug/creax-backend/internal/errors"
	"github.com/elky431-debug/creax-backend/internal/models"
	"github.com/elky431-debug/creax-backend/internal/repository"
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Email         string
	Password      string
	DisplayName   string
	Role          models.UserRole
	PayoutDetails string
}

// Signup creates a new user account.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		return nil, apperrors.Validation("display name is required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, apperrors.Validation("password is too short")
	}
	if input.Role != models.RoleCreator && input.Role != models.RoleDesigner {
		return nil, apperrors.Validation("role must be creator or designer")
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, apperrors.Conflict("an account already exists for this email")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("failed to check email", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	user := &models.User{
		Email:         email,
		PasswordHash:  string(hashedPassword),
		DisplayName:   strings.TrimSpace(input.DisplayName),
		Role:          input.Role,
		PayoutDetails: strings.TrimSpace(input.PayoutDetails),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, apperrors.Internal("failed to create user", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(strings.TrimSpace(strings.ToLower(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Validation("invalid email or password")
		}
		return nil, apperrors.Internal("failed to find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.Validation("invalid email or password")
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to find user", err)
	}

	return user, nil
}

// UpdatePayoutDetails replaces a designer's payout instructions.
func (s *AuthService) UpdatePayoutDetails(userID uint64, details string) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleDesigner {
		return nil, apperrors.Unauthorized("only designers have payout details")
	}
	user.PayoutDetails = strings.TrimSpace(details)
	if err := s.userRepo.Update(user); err != nil {
		return nil, apperrors.Internal("failed to update payout details", err)
	}
	return user, nil
}
