package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{4,19}$`)
)

const bcryptMaxBytes = 72

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	// bcrypt only looks at the first 72 bytes and refuses anything longer.
	_ = v.RegisterValidation("bcrypt_len", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= bcryptMaxBytes
	})
	_ = v.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		var upper, lower, digit bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			}
		}
		return upper && lower && digit
	})
	return v
}

var fieldMessages = map[string]string{
	"required":          "is required",
	"email":             "must be a valid email address",
	"username":          "can only contain letters, numbers, '.', '_' or '-'",
	"phone":             "must be a valid phone number",
	"password_strength": "must include uppercase, lowercase and a number",
	"eqfield":           "does not match",
	"bcrypt_len":        "must be at most 72 bytes",
}

// Validate checks payload against its struct tags. Failures come back as a
// 422 AppError with one message per offending field.
func Validate(payload interface{}) *AppError {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return Internal(err)
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			switch fe.Tag() {
			case "min":
				msg = "must be at least " + fe.Param() + " characters"
			case "max":
				msg = "must be at most " + fe.Param() + " characters"
			default:
				msg = "is invalid"
			}
		}
		fields[fe.Field()] = msg
	}

	appErr := NewAppError(http.StatusUnprocessableEntity, CodeValidation, "Validation failed", nil)
	appErr.Fields = fields
	return appErr
}

// ValidateAndDecode decodes the JSON body into payload and validates it.
func ValidateAndDecode(r *http.Request, payload interface{}) *AppError {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		return NewAppError(http.StatusBadRequest, CodeBadRequest, "Invalid request body", nil)
	}
	return Validate(payload)
}
