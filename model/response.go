package model

import "github.com/google/uuid"

// UserResponse is the public profile of a user. CreatedAt is unix seconds.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt int64     `json:"created_at"`
}

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}
