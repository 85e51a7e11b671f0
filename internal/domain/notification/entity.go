package notification

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type is the event a notification announces (matches notifications.type check)
type Type string

const (
	TypeFollowRequest  Type = "follow_request"
	TypeFollowAccepted Type = "follow_accepted"
)

// Notification is one inbox entry of UserID
type Notification struct {
	ID        uuid.UUID       `db:"id"`
	UserID    uuid.UUID       `db:"user_id"`
	Type      Type            `db:"type"`
	Title     string          `db:"title"`
	Body      sql.NullString  `db:"body"`
	Data      json.RawMessage `db:"data"`
	IsRead    bool            `db:"is_read"`
	ReadAt    sql.NullTime    `db:"read_at"`
	CreatedAt time.Time       `db:"created_at"`
}

// Payload points at the relationship and the user that caused the notification
type Payload struct {
	RelationshipID *uuid.UUID `json:"relationship_id,omitempty"`
	ActorID        *uuid.UUID `json:"actor_id,omitempty"`
}

func relationshipPayload(relationshipID, actorID uuid.UUID) Payload {
	return Payload{RelationshipID: &relationshipID, ActorID: &actorID}
}

// setPayload stores p in Data. The column is NOT NULL so an empty payload is "{}".
func (n *Notification) setPayload(p Payload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	n.Data = raw
	return nil
}

// Payload decodes Data
func (n *Notification) Payload() (Payload, error) {
	var p Payload
	if len(n.Data) == 0 {
		return p, nil
	}
	err := json.Unmarshal(n.Data, &p)
	return p, err
}
