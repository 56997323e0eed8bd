package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"storefront-api/model"
	"storefront-api/repository"
	"time"

	"github.com/google/uuid"
)

const refreshSecretBytes = 32

// ErrTokenNotActive is returned by Lookup and Revoke for tokens that are
// unknown, expired or already revoked.
var ErrTokenNotActive = errors.New("refresh token not active")

// RefreshTokenStore issues and consumes opaque refresh tokens. Secrets are
// persisted as sha256 hashes.
type RefreshTokenStore struct {
	repo repository.ITokenRepository
	ttl  time.Duration
	now  func() time.Time
}

func NewRefreshTokenStore(repo repository.ITokenRepository, ttl time.Duration) *RefreshTokenStore {
	return &RefreshTokenStore{repo: repo, ttl: ttl, now: time.Now}
}

// Issue generates a fresh secret for userID and persists it as active. The
// returned token carries the plaintext secret in Token.
func (s *RefreshTokenStore) Issue(ctx context.Context, userID uuid.UUID) (*model.RefreshToken, error) {
	secret, err := generateSecret()
	if err != nil {
		return nil, fmt.Errorf("generate refresh secret: %w", err)
	}
	token := &model.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     secret,
		TokenHash: hashSecret(secret),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.repo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}
	return token, nil
}

// LookupActive returns the row for secret if it is usable right now.
func (s *RefreshTokenStore) LookupActive(ctx context.Context, secret string) (*model.RefreshToken, error) {
	if secret == "" {
		return nil, ErrTokenNotActive
	}
	token, err := s.repo.GetActiveByHash(ctx, hashSecret(secret), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenNotActive
		}
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}
	return token, nil
}

// Revoke consumes token. Only one caller can revoke a given row; losers get
// ErrTokenNotActive.
func (s *RefreshTokenStore) Revoke(ctx context.Context, token *model.RefreshToken) error {
	if err := s.repo.Revoke(ctx, token.ID); err != nil {
		if errors.Is(err, repository.ErrTokenNotActive) {
			return ErrTokenNotActive
		}
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	token.Revoked = true
	return nil
}

func generateSecret() (string, error) {
	bytes := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
