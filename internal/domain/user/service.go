package user

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
)

// Service handles user profile logic
type Service struct {
	repo Repository
}

// NewService creates user service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetProfile returns an active user by ID
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || u.IsBanned {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// UpdateProfile applies the provided fields and returns the fresh user
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	displayName := u.DisplayName
	if req.DisplayName != nil {
		displayName = nullString(*req.DisplayName)
	}
	bio := u.Bio
	if req.Bio != nil {
		bio = nullString(*req.Bio)
	}

	if err := s.repo.UpdateProfile(ctx, id, displayName, bio); err != nil {
		return nil, err
	}

	u.DisplayName = displayName
	u.Bio = bio
	return u, nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
