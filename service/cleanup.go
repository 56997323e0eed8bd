package service

import (
	"context"
	"storefront-api/logger"
	"time"

	"github.com/sirupsen/logrus"
)

type staleTokenDeleter interface {
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenCleaner periodically purges expired and long-revoked refresh tokens.
type TokenCleaner struct {
	repo      staleTokenDeleter
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewTokenCleaner(repo staleTokenDeleter, interval, retention time.Duration) *TokenCleaner {
	return &TokenCleaner{repo: repo, interval: interval, retention: retention, now: time.Now}
}

// RunOnce deletes rows that expired, or were revoked and created, more than
// retention ago.
func (c *TokenCleaner) RunOnce(ctx context.Context) (int64, error) {
	cutoff := c.now().Add(-c.retention)
	n, err := c.repo.DeleteStale(ctx, cutoff)
	if err != nil {
		logger.Log.WithError(err).Error("Refresh token cleanup failed")
		return 0, err
	}
	logger.Log.WithFields(logrus.Fields{
		"deleted": n,
		"cutoff":  cutoff,
	}).Info("Refresh token cleanup finished")
	return n, nil
}

// Run blocks until ctx is cancelled, cleaning up every interval.
func (c *TokenCleaner) Run(ctx context.Context) {
	if c.interval <= 0 {
		logger.Log.Info("Refresh token cleanup disabled")
		return
	}
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Errors are logged by RunOnce; the next tick retries.
			_, _ = c.RunOnce(ctx)
		}
	}
}
