package repository

import (
	"context"
	"database/sql"
	"errors"
	"storefront-api/logger"
	"storefront-api/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// IUserRepository defines the contract for user database operations.
type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	IsUsernameTaken(ctx context.Context, username string) (bool, error)
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// CreateUser inserts the user. The unique indexes on LOWER(email) and
// username are the authoritative guard; violations map to ErrEmailTaken and
// ErrUsernameTaken.
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	})
	log.Info("Executing query to create a new user")

	query := `INSERT INTO users (id, email, username, password_hash, phone, role) VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`
	err := r.DB.QueryRowContext(ctx, query, user.ID, user.Email, user.Username, user.PasswordHash, user.Phone, user.Role).Scan(&user.CreatedAt)
	if err != nil {
		if mapped := mapUserConflict(err); mapped != err {
			log.WithError(err).Warn("Create user rejected by unique constraint")
			return mapped
		}
		log.WithError(err).Error("Failed to execute create user query")
		return err
	}
	return nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, email, username, password_hash, phone, role, created_at FROM users WHERE LOWER(email) = LOWER($1)`
	return r.getOne(ctx, query, email)
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT id, email, username, password_hash, phone, role, created_at FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	user := &model.User{}
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.Phone, &user.Role, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.Log.WithError(err).Error("Failed to execute get user query")
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email)
}

func (r *UserRepository) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *UserRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		logger.Log.WithError(err).Error("Failed to execute existence query")
		return false, err
	}
	return exists, nil
}
