package service

import (
	"fmt"
	"storefront-api/config"
	"storefront-api/logger"
	"storefront-api/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod is the only algorithm the issuer signs with and the
// middleware accepts.
var SigningMethod = jwt.SigningMethodHS256

// TokenIssuer mints signed access tokens. It holds no mutable state.
type TokenIssuer struct {
	cfg config.TokenConfig
	now func() time.Time
}

func NewTokenIssuer(cfg config.TokenConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg, now: time.Now}
}

// Issue returns a signed access token for user and its lifetime in seconds,
// derived from the configured TTL.
func (i *TokenIssuer) Issue(user *model.User) (string, int, error) {
	now := i.now()
	claims := &model.AppClaims{
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.TTL)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(SigningMethod, claims)
	tokenString, err := token.SignedString(i.cfg.SigningKey)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to sign JWT")
		return "", 0, fmt.Errorf("failed to sign token string: %w", err)
	}

	return tokenString, int(i.cfg.TTL.Seconds()), nil
}

// ParseAccessToken verifies signature, expiry, issuer, audience and algorithm
// exactly as the issuer produces them.
func ParseAccessToken(cfg config.TokenConfig, tokenString string) (*model.AppClaims, error) {
	claims := &model.AppClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return cfg.SigningKey, nil
	},
		jwt.WithValidMethods([]string{SigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
