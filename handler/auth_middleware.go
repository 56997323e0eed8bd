package handler

import (
	"context"
	"net/http"
	"storefront-api/common"
	"storefront-api/config"
	"storefront-api/model"
	"storefront-api/service"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey   contextKey = "userID"
	UserRoleKey contextKey = "userRole"
)

// NewAuthMiddleware verifies bearer access tokens against cfg and puts the
// subject and role into the request context.
func NewAuthMiddleware(cfg config.TokenConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				err := common.NewAppError(http.StatusUnauthorized, common.CodeUnauthorized, "Authorization header is required", nil)
				err.Send(w)
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				err := common.NewAppError(http.StatusUnauthorized, common.CodeUnauthorized, "Invalid authorization header format", nil)
				err.Send(w)
				return
			}

			claims, err := service.ParseAccessToken(cfg, headerParts[1])
			if err != nil {
				appErr := common.NewAppError(http.StatusUnauthorized, common.CodeUnauthorized, "Invalid or expired token", nil)
				appErr.Send(w)
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				appErr := common.NewAppError(http.StatusUnauthorized, common.CodeUnauthorized, "Invalid or expired token", nil)
				appErr.Send(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(UserRoleKey).(string)

		if !ok || role != string(model.RoleAdmin) {
			err := common.NewAppError(http.StatusForbidden, common.CodeForbidden, "Access denied. Admin privileges required.", nil)
			err.Send(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}
