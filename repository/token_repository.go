// file: repository/token_repository.go

package repository

import (
	"context"
	"database/sql"
	"errors"
	"storefront-api/logger"
	"storefront-api/model"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for refresh token database operations.
type ITokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	GetActiveByHash(ctx context.Context, tokenHash string, now time.Time) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Create inserts a new refresh token record into the database.
func (r *TokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"token_id":   token.ID,
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a new refresh token")

	query := `INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked) VALUES ($1, $2, $3, $4, false) RETURNING created_at`
	err := r.DB.QueryRowContext(ctx, query, token.ID, token.UserID, token.TokenHash, token.ExpiresAt).Scan(&token.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query")
		return err
	}
	return nil
}

// GetActiveByHash returns the token only if it is neither revoked nor expired
// at now. Unknown, revoked and expired tokens all yield ErrNotFound.
func (r *TokenRepository) GetActiveByHash(ctx context.Context, tokenHash string, now time.Time) (*model.RefreshToken, error) {
	token := &model.RefreshToken{}
	query := `SELECT id, user_id, token_hash, expires_at, revoked, created_at FROM refresh_tokens WHERE token_hash = $1 AND revoked = false AND expires_at > $2`
	err := r.DB.QueryRowContext(ctx, query, tokenHash, now).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.Revoked, &token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.Log.WithError(err).Error("Failed to execute get active refresh token query")
		return nil, err
	}
	return token, nil
}

// Revoke flips revoked to true with a conditional update. Of several
// concurrent calls for the same id exactly one succeeds; the others get
// ErrTokenNotActive.
func (r *TokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	log := logger.Log.WithField("token_id", id)
	log.Info("Executing query to revoke a refresh token")

	query := `UPDATE refresh_tokens SET revoked = true WHERE id = $1 AND revoked = false`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		log.WithError(err).Error("Failed to execute revoke refresh token query")
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		log.Warn("Refresh token was already revoked")
		return ErrTokenNotActive
	}
	return nil
}

// DeleteStale purges expired rows and revoked rows created before cutoff.
func (r *TokenRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.Log.WithField("cutoff", cutoff)
	log.Info("Executing query to delete stale refresh tokens")

	query := `DELETE FROM refresh_tokens WHERE expires_at < $1 OR (revoked = true AND created_at < $1)`
	res, err := r.DB.ExecContext(ctx, query, cutoff)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete stale refresh tokens query")
		return 0, err
	}
	return res.RowsAffected()
}
