// file: model/token.go

package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken holds the data for a refresh token in the database.
// Only the hash of the secret is persisted; the secret itself is returned to
// the client once, at issuance.
type RefreshToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"-"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}
