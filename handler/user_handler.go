package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"storefront-api/common"
	"storefront-api/model"
	"storefront-api/service"

	"github.com/google/uuid"
)

// AuthService is the session orchestrator as seen by the HTTP layer.
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.UserResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Profile(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
}

type UserHandler struct {
	service AuthService
}

func NewUserHandler(service AuthService) *UserHandler {
	return &UserHandler{service: service}
}

// authError translates orchestrator failures into HTTP errors. Anything not
// recognised is a generic 500.
func authError(err error) *common.AppError {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return common.NewAppError(http.StatusConflict, common.CodeEmailTaken, "Email already taken", nil)
	case errors.Is(err, service.ErrUsernameTaken):
		return common.NewAppError(http.StatusConflict, common.CodeUsernameTaken, "Username already taken", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		return common.NewAppError(http.StatusUnauthorized, common.CodeInvalidCredentials, "Invalid credentials", nil)
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return common.NewAppError(http.StatusUnauthorized, common.CodeInvalidRefresh, "Invalid refresh token", nil)
	case errors.Is(err, service.ErrPasswordTooLong):
		appErr := common.NewAppError(http.StatusUnprocessableEntity, common.CodeValidation, "Validation failed", nil)
		appErr.Fields = map[string]string{"password": "must be at most 72 bytes"}
		return appErr
	case errors.Is(err, service.ErrUserNotFound):
		return common.NewAppError(http.StatusNotFound, common.CodeNotFound, "User not found", nil)
	}
	return common.Internal(err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Register godoc
// @Summary      Register a new user
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request  body      model.RegisterRequest  true  "Registration payload"
// @Success      201      {object}  model.UserResponse
// @Failure      409      {object}  common.AppError
// @Failure      422      {object}  common.AppError
// @Router       /api/user/register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	profile, err := h.service.Register(r.Context(), req)
	if err != nil {
		return authError(err)
	}

	writeJSON(w, http.StatusCreated, profile)
	return nil
}

// Login godoc
// @Summary      Log in with email and password
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request  body      model.LoginRequest  true  "Credentials"
// @Success      200      {object}  model.AuthResponse
// @Failure      401      {object}  common.AppError
// @Router       /api/user/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		return authError(err)
	}

	writeJSON(w, http.StatusOK, resp)
	return nil
}

// Refresh godoc
// @Summary      Exchange a refresh token for a new token pair
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request  body      model.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  model.AuthResponse
// @Failure      401      {object}  common.AppError
// @Router       /api/user/refresh [post]
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	resp, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		return authError(err)
	}

	writeJSON(w, http.StatusOK, resp)
	return nil
}

// Logout godoc
// @Summary      Revoke a refresh token
// @Tags         user
// @Accept       json
// @Param        request  body  model.RefreshRequest  true  "Refresh token"
// @Success      204
// @Failure      401      {object}  common.AppError
// @Router       /api/user/logout [post]
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		return authError(err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Me godoc
// @Summary      Current user profile
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.UserResponse
// @Failure      401  {object}  common.AppError
// @Router       /api/user/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, common.CodeUnauthorized, "Invalid user ID in token", nil)
	}

	profile, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		return authError(err)
	}

	writeJSON(w, http.StatusOK, profile)
	return nil
}

// AdminPing godoc
// @Summary      Admin reachability check
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  common.AppError
// @Router       /api/admin/ping [get]
func AdminPing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "admin access granted"})
}
