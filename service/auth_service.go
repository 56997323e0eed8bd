package service

import (
	"context"
	"errors"
	"fmt"
	"storefront-api/logger"
	"storefront-api/model"
	"storefront-api/repository"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken          = errors.New("email already taken")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserNotFound        = errors.New("user not found")
	ErrPasswordTooLong     = errors.New("password too long")
)

// CredentialHasher is the password hashing the orchestrator depends on.
// PasswordHasher implements it.
type CredentialHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	VerifyDummy(password string)
}

// AuthService coordinates registration, login, token rotation and logout.
// No locks are held here; concurrent refreshes are serialised by the
// conditional revoke in the token store.
type AuthService struct {
	users  repository.IUserRepository
	hasher CredentialHasher
	issuer *TokenIssuer
	tokens *RefreshTokenStore
}

func NewAuthService(users repository.IUserRepository, hasher CredentialHasher, issuer *TokenIssuer, tokens *RefreshTokenStore) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		issuer: issuer,
		tokens: tokens,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user account. The taken checks give early, friendly
// answers; the unique indexes decide any race between check and insert.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.UserResponse, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	log := logger.Log.WithFields(logrus.Fields{
		"email":    email,
		"username": username,
	})
	log.Info("Register attempt")

	taken, err := s.users.IsEmailTaken(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		log.Warn("Registration failed: email already taken")
		return nil, ErrEmailTaken
	}

	taken, err = s.users.IsUsernameTaken(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		log.Warn("Registration failed: username already taken")
		return nil, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         string(model.RoleUser),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrUsernameTaken):
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.WithField("user_id", user.ID).Info("User created")
	profile := user.Profile()
	return &profile, nil
}

// Login verifies credentials and issues an access/refresh pair. The hasher
// runs exactly once whether or not the account exists.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	log := logger.Log.WithField("email", email)
	log.Info("Login attempt")

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("get user: %w", err)
		}
		s.hasher.VerifyDummy(req.Password)
		log.Warn("Login failed")
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		log.Warn("Login failed")
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}
	log.WithField("user_id", user.ID).Info("User logged in")
	return resp, nil
}

// Refresh rotates a refresh token: the presented one is revoked first, then
// a new pair is issued. Unknown, expired, revoked and lost-race tokens all
// fail with ErrInvalidRefreshToken. If issuing fails after the revoke the
// session simply ends.
func (s *AuthService) Refresh(ctx context.Context, secret string) (*model.AuthResponse, error) {
	logger.Log.Info("Refresh attempt")

	current, err := s.tokens.LookupActive(ctx, secret)
	if err != nil {
		if errors.Is(err, ErrTokenNotActive) {
			logger.Log.Warn("Refresh failed: token not active")
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	log := logger.Log.WithFields(logrus.Fields{
		"token_id": current.ID,
		"user_id":  current.UserID,
	})

	if err := s.tokens.Revoke(ctx, current); err != nil {
		if errors.Is(err, ErrTokenNotActive) {
			log.Warn("Refresh failed: token consumed concurrently")
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("Refresh failed: user no longer exists")
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	resp, err := s.issuePair(ctx, user)
	if err != nil {
		log.WithError(err).Error("Refresh token consumed but replacement could not be issued")
		return nil, err
	}
	log.Info("Tokens refreshed")
	return resp, nil
}

// Logout revokes only the presented refresh token.
func (s *AuthService) Logout(ctx context.Context, secret string) error {
	current, err := s.tokens.LookupActive(ctx, secret)
	if err != nil {
		if errors.Is(err, ErrTokenNotActive) {
			return ErrInvalidRefreshToken
		}
		return err
	}
	if err := s.tokens.Revoke(ctx, current); err != nil {
		if errors.Is(err, ErrTokenNotActive) {
			return ErrInvalidRefreshToken
		}
		return err
	}
	logger.Log.WithFields(logrus.Fields{
		"token_id": current.ID,
		"user_id":  current.UserID,
	}).Info("User logged out")
	return nil
}

// Profile returns the public profile of the user with the given id.
func (s *AuthService) Profile(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	profile := user.Profile()
	return &profile, nil
}

func (s *AuthService) issuePair(ctx context.Context, user *model.User) (*model.AuthResponse, error) {
	access, expiresIn, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		ExpiresIn:    expiresIn,
		User:         user.Profile(),
	}, nil
}
