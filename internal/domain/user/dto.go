package user

import (
	"time"

	"github.com/google/uuid"
)

// UpdateProfileRequest for PATCH /users/me
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
}

// ProfileResponse represents the public view of a user
type ProfileResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	CreatedAt   string    `json:"created_at"`
}

// ProfileFromEntity converts entity to response
func ProfileFromEntity(u *User) *ProfileResponse {
	return &ProfileResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName.String,
		Bio:         u.Bio.String,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}
