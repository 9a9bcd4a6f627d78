package dto

import (
	"time"

	"github.com/elky431-debug/creax-backend/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64          `json:"id"`
	DisplayName string          `json:"display_name"`
	Role        models.UserRole `json:"role"`
}

// ProfileDTO represents the authenticated user's own account, including
// fields hidden from other users.
type ProfileDTO struct {
	ID            uint64          `json:"id"`
	Email         string          `json:"email"`
	DisplayName   string          `json:"display_name"`
	Role          models.UserRole `json:"role"`
	PayoutDetails string          `json:"payout_details,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToUserDTO converts a User model to UserDTO. Email and payout details are
// never exposed here; they only appear on the owner's own profile.
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}
}

// ToProfileDTO converts a User model to the owner-visible ProfileDTO
func ToProfileDTO(user models.User) ProfileDTO {
	return ProfileDTO{
		ID:            user.ID,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		Role:          user.Role,
		PayoutDetails: user.PayoutDetails,
		CreatedAt:     user.CreatedAt,
	}
}
