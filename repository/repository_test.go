package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"storefront-api/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestUserRepository_CreateUser(t *testing.T) {
	ctx := context.Background()
	insert := regexp.QuoteMeta(`INSERT INTO users (id, email, username, password_hash, phone, role)`)

	newUser := func() *model.User {
		return &model.User{ID: uuid.New(), Email: "a@x.com", Username: "alice", PasswordHash: "hash", Role: string(model.RoleUser)}
	}

	t.Run("success", func(t *testing.T) {
		db, mock := newMock(t)
		user := newUser()
		created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		mock.ExpectQuery(insert).
			WithArgs(user.ID, user.Email, user.Username, user.PasswordHash, user.Phone, user.Role).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

		err := NewUserRepository(db).CreateUser(ctx, user)

		assert.NoError(t, err)
		assert.Equal(t, created, user.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("email unique violation", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(insert).WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		err := NewUserRepository(db).CreateUser(ctx, newUser())

		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("username unique violation", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(insert).WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

		err := NewUserRepository(db).CreateUser(ctx, newUser())

		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("other failure passes through", func(t *testing.T) {
		db, mock := newMock(t)
		dbErr := errors.New("connection reset")
		mock.ExpectQuery(insert).WillReturnError(dbErr)

		err := NewUserRepository(db).CreateUser(ctx, newUser())

		assert.Equal(t, dbErr, err)
	})
}

func TestUserRepository_GetUserByEmail(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta(`FROM users WHERE LOWER(email) = LOWER($1)`)
	columns := []string{"id", "email", "username", "password_hash", "phone", "role", "created_at"}

	t.Run("found", func(t *testing.T) {
		db, mock := newMock(t)
		id := uuid.New()
		mock.ExpectQuery(query).WithArgs("a@x.com").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(id.String(), "a@x.com", "alice", "hash", "", "user", time.Now()))

		user, err := NewUserRepository(db).GetUserByEmail(ctx, "a@x.com")

		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "hash", user.PasswordHash)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(query).WithArgs("nobody@x.com").WillReturnError(sql.ErrNoRows)

		user, err := NewUserRepository(db).GetUserByEmail(ctx, "nobody@x.com")

		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserRepository_IsEmailTaken(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`)).
		WithArgs("A@X.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := NewUserRepository(db).IsEmailTaken(context.Background(), "A@X.com")

	assert.NoError(t, err)
	assert.True(t, taken)
}

func TestTokenRepository_GetActiveByHash(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	query := regexp.QuoteMeta(`FROM refresh_tokens WHERE token_hash = $1 AND revoked = false AND expires_at > $2`)

	t.Run("active", func(t *testing.T) {
		db, mock := newMock(t)
		id, userID := uuid.New(), uuid.New()
		mock.ExpectQuery(query).WithArgs("h", now).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "revoked", "created_at"}).
				AddRow(id.String(), userID.String(), "h", now.Add(time.Hour), false, now))

		token, err := NewTokenRepository(db).GetActiveByHash(ctx, "h", now)

		require.NoError(t, err)
		assert.Equal(t, id, token.ID)
		assert.Equal(t, userID, token.UserID)
	})

	t.Run("missing, revoked or expired", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(query).WithArgs("h", now).WillReturnError(sql.ErrNoRows)

		_, err := NewTokenRepository(db).GetActiveByHash(ctx, "h", now)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestTokenRepository_Revoke(t *testing.T) {
	ctx := context.Background()
	update := regexp.QuoteMeta(`UPDATE refresh_tokens SET revoked = true WHERE id = $1 AND revoked = false`)
	id := uuid.New()

	t.Run("wins the conditional update", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(update).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewTokenRepository(db).Revoke(ctx, id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already revoked", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(update).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, NewTokenRepository(db).Revoke(ctx, id), ErrTokenNotActive)
	})
}

func TestTokenRepository_DeleteStale(t *testing.T) {
	db, mock := newMock(t)
	cutoff := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM refresh_tokens WHERE expires_at < $1 OR (revoked = true AND created_at < $1)`)).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewTokenRepository(db).DeleteStale(context.Background(), cutoff)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
