package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrEmailTaken     = errors.New("email already taken")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrTokenNotActive = errors.New("refresh token is not active")
)

const uniqueViolation = "23505"

// uniqueConstraint returns the constraint name if err is a unique violation.
func uniqueConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}

func mapUserConflict(err error) error {
	constraint, ok := uniqueConstraint(err)
	if !ok {
		return err
	}
	switch {
	case strings.Contains(constraint, "email"):
		return ErrEmailTaken
	case strings.Contains(constraint, "username"):
		return ErrUsernameTaken
	}
	return err
}
