package api

import (
	"time"

	"github.com/jmcleod/gatehouse/storage"
)

// SignupRequest is the JSON body for POST /signup.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned from POST /auth.
type TokenResponse struct {
	Token string `json:"token"`
}

// UpdateProfileRequest is the JSON body for POST /me. The profile fields
// are replaced wholesale; omitted fields are cleared.
type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
}

// UserResponse is the public representation of a user. The password hash
// never appears here.
type UserResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	Image         string    `json:"image,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ErrorResponse is returned for all error cases.
type ErrorResponse struct {
	Error string `json:"error"`
}

func userResponse(u *storage.User) UserResponse {
	return UserResponse{
		ID:            u.ID.String(),
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		Bio:           u.Bio,
		Image:         u.Image,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
