package service

import (
	"context"
	"testing"
	"time"

	"storefront-api/model"
	"storefront-api/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}
func (m *mockUserRepo) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCachedUserRepository_GetUserByID(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	repo := new(mockUserRepo)
	cached := NewCachedUserRepository(repo, client, 5*time.Minute)

	user := &model.User{ID: uuid.New(), Email: "a@x.com", Username: "alice", PasswordHash: "secret-hash", Role: "user", CreatedAt: time.Now().UTC().Truncate(time.Second)}
	repo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()

	// 1. Cache miss goes to the repository and fills the cache.
	got, err := cached.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	raw, err := mr.Get(userCacheKey(user.ID))
	require.NoError(t, err)
	assert.NotContains(t, raw, "secret-hash", "password hash must never be cached")
	assert.Equal(t, 5*time.Minute, mr.TTL(userCacheKey(user.ID)))

	// 2. Cache hit does not touch the repository.
	got, err = cached.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.CreatedAt, got.CreatedAt)
	repo.AssertExpectations(t)
}

func TestCachedUserRepository_NotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	repo := new(mockUserRepo)
	cached := NewCachedUserRepository(repo, client, time.Minute)
	id := uuid.New()
	repo.On("GetUserByID", mock.Anything, id).Return(nil, repository.ErrNotFound).Once()

	_, err := cached.GetUserByID(ctx, id)

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.False(t, mr.Exists(userCacheKey(id)))
}

func TestCachedUserRepository_RedisDownFallsBack(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	repo := new(mockUserRepo)
	cached := NewCachedUserRepository(repo, client, time.Minute)
	user := &model.User{ID: uuid.New(), Email: "a@x.com"}
	repo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()
	mr.Close()

	got, err := cached.GetUserByID(ctx, user.ID)

	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	repo.AssertExpectations(t)
}

func TestCachedUserRepository_DelegatesOtherMethods(t *testing.T) {
	_, client := newTestRedis(t)
	repo := new(mockUserRepo)
	cached := NewCachedUserRepository(repo, client, time.Minute)
	repo.On("IsEmailTaken", mock.Anything, "a@x.com").Return(true, nil).Once()

	taken, err := cached.IsEmailTaken(context.Background(), "a@x.com")

	assert.NoError(t, err)
	assert.True(t, taken)
	repo.AssertExpectations(t)
}
