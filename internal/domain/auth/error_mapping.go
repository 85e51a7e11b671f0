package auth

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/socialgraph/socialgraph-api/internal/domain/user"
)

const sqlStateUniqueViolation = "23505"

// DBErrorDetails contains diagnostics extracted from PostgreSQL errors.
type DBErrorDetails struct {
	SQLState   string
	Constraint string
	Table      string
	Column     string
	Detail     string
}

func extractDBErrorDetails(err error) *DBErrorDetails {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	return &DBErrorDetails{
		SQLState:   string(pqErr.Code),
		Constraint: pqErr.Constraint,
		Table:      pqErr.Table,
		Column:     pqErr.Column,
		Detail:     pqErr.Detail,
	}
}

// mapRegisterError turns a user insert failure into an auth error.
// The pre-insert lookups race with concurrent signups, so the unique
// constraints remain the source of truth.
func mapRegisterError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, user.ErrEmailAlreadyExists):
		return ErrEmailAlreadyExists
	case errors.Is(err, user.ErrUsernameTaken):
		return ErrUsernameTaken
	}

	if details := extractDBErrorDetails(err); details != nil && details.SQLState == sqlStateUniqueViolation {
		switch details.Constraint {
		case "users_email_key":
			return ErrEmailAlreadyExists
		case "users_username_key":
			return ErrUsernameTaken
		}
	}
	return wrapRegisterError("create_user", err)
}

func wrapRegisterError(step string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("register step %s: %w", step, err)
}
