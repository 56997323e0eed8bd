package service

import (
	"storefront-api/logger"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords with bcrypt at a fixed cost.
type PasswordHasher struct {
	cost int
	// dummyHash is verified against when an account does not exist, so a
	// login costs one bcrypt comparison either way.
	dummyHash string
}

func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	h := &PasswordHasher{cost: cost}
	dummy, err := h.Hash("storefront-dummy-password")
	if err != nil {
		return nil, err
	}
	h.dummyHash = dummy
	return h, nil
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

// Verify reports whether password matches hash. Malformed hashes are a
// mismatch, not an error.
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyDummy burns the same work as Verify against a real hash.
func (h *PasswordHasher) VerifyDummy(password string) {
	_ = h.Verify(password, h.dummyHash)
}
