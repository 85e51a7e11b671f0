package relationships

import (
	"time"

	"github.com/google/uuid"
)

// RespondRequest for PATCH /relationships/{id}
type RespondRequest struct {
	Status string `json:"status" validate:"required,relationship_reply"`
}

// RelationshipResponse represents a relationship in API response
type RelationshipResponse struct {
	ID          uuid.UUID `json:"id"`
	SenderID    uuid.UUID `json:"sender_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Status      Status    `json:"status"`
	AcceptedAt  *string   `json:"accepted_at"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
}

// RelationshipFromEntity converts entity to response
func RelationshipFromEntity(rel *Relationship) *RelationshipResponse {
	resp := &RelationshipResponse{
		ID:          rel.ID,
		SenderID:    rel.SenderID,
		RecipientID: rel.RecipientID,
		Status:      rel.Status,
		CreatedAt:   rel.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   rel.UpdatedAt.Format(time.RFC3339),
	}
	if rel.AcceptedAt.Valid {
		acceptedAt := rel.AcceptedAt.Time.Format(time.RFC3339)
		resp.AcceptedAt = &acceptedAt
	}
	return resp
}

// ActionResponse is returned by follow, respond and block
type ActionResponse struct {
	Message      string                `json:"message"`
	Relationship *RelationshipResponse `json:"relationship"`
}

// DeleteResponse is returned by delete
type DeleteResponse struct {
	Message        string    `json:"message"`
	ID             uuid.UUID `json:"id"`
	PreviousStatus Status    `json:"previous_status"`
}

// ConnectionResponse is a follower/following entry enriched with the other user's profile
type ConnectionResponse struct {
	RelationshipID uuid.UUID `json:"relationship_id"`
	UserID         uuid.UUID `json:"user_id"`
	Username       string    `json:"username,omitempty"`
	DisplayName    string    `json:"display_name,omitempty"`
	Since          string    `json:"since"`
}

// ConnectionFromEntity converts entity to connection response seen from ownerID
func ConnectionFromEntity(rel *Relationship, ownerID uuid.UUID, profile *UserProfile) *ConnectionResponse {
	since := rel.UpdatedAt
	if rel.AcceptedAt.Valid {
		since = rel.AcceptedAt.Time
	}
	resp := &ConnectionResponse{
		RelationshipID: rel.ID,
		UserID:         rel.Counterparty(ownerID),
		Since:          since.Format(time.RFC3339),
	}
	if profile != nil {
		resp.Username = profile.Username
		resp.DisplayName = profile.DisplayName
	}
	return resp
}
