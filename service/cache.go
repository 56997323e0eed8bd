// file: service/cache.go

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"storefront-api/logger"
	"storefront-api/model"
	"storefront-api/repository"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ICacheClient defines the contract for a cache client.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedUserRepository serves GetUserByID cache-aside from redis. Cached
// users never carry a password hash, so callers that verify passwords must
// go through GetUserByEmail, which is not cached.
type CachedUserRepository struct {
	repository.IUserRepository
	cache ICacheClient
	ttl   time.Duration
}

func NewCachedUserRepository(repo repository.IUserRepository, cache ICacheClient, ttl time.Duration) *CachedUserRepository {
	return &CachedUserRepository{IUserRepository: repo, cache: cache, ttl: ttl}
}

func userCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("users:%s", id)
}

func (r *CachedUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	key := userCacheKey(id)

	cached, err := r.cache.Get(ctx, key).Result()
	switch {
	case err == nil:
		var user model.User
		if err := json.Unmarshal([]byte(cached), &user); err == nil {
			return &user, nil
		}
	case !errors.Is(err, redis.Nil):
		logger.Log.WithError(err).WithField("key", key).Warn("User cache read failed")
	}

	user, err := r.IUserRepository.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(user); err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl).Err(); err != nil {
			logger.Log.WithError(err).WithField("key", key).Warn("User cache write failed")
		}
	}
	return user, nil
}
