package notification

import (
	"time"

	"github.com/google/uuid"
)

// NotificationResponse for API
type NotificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Payload   *Payload  `json:"data,omitempty"`
	IsRead    bool      `json:"is_read"`
	ReadAt    *string   `json:"read_at,omitempty"`
	CreatedAt string    `json:"created_at"`
}

// responseFromEntity converts entity to response. An undecodable payload is omitted.
func responseFromEntity(n *Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body.String,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.ReadAt.Valid {
		readAt := n.ReadAt.Time.Format(time.RFC3339)
		resp.ReadAt = &readAt
	}
	if p, err := n.Payload(); err == nil && (p.RelationshipID != nil || p.ActorID != nil) {
		resp.Payload = &p
	}
	return resp
}

// UnreadCountResponse for GET /notifications/unread-count
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// MarkAllResponse for POST /notifications/read-all
type MarkAllResponse struct {
	Updated int64 `json:"updated"`
}
