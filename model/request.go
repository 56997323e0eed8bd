// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new user.
type RegisterRequest struct {
	Email                string `json:"email" validate:"required,email,min=5,max=100"`
	Username             string `json:"username" validate:"required,min=5,max=50,username"`
	Password             string `json:"password" validate:"required,min=6,max=50,bcrypt_len,password_strength"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	Phone                string `json:"phone,omitempty" validate:"omitempty,max=20,phone"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,max=100"`
}

// RefreshRequest carries the opaque refresh secret for rotation or logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required,max=200"`
}
