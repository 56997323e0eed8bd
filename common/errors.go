package common

import (
	"encoding/json"
	"net/http"
	"storefront-api/logger"

	"github.com/sirupsen/logrus"
)

// Stable machine-readable error codes.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidRefresh     = "INVALID_REFRESH"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeBadRequest         = "BAD_REQUEST"
	CodeInternal           = "INTERNAL_ERROR"
)

// DebugMode adds the internal error text to responses. Development only.
var DebugMode bool

type AppError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Detail  string            `json:"detail,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Internal wraps an unexpected failure into a generic 500.
func Internal(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternal, "An unexpected error occurred", err)
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Status,
			"code":           e.Code,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
		if DebugMode {
			e.Detail = e.Err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Status)
	json.NewEncoder(w).Encode(e)
}
