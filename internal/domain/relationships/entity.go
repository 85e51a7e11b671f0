package relationships

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents relationship status (matches relationships.status check)
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusRefused  Status = "REFUSED"
	StatusBlocked  Status = "BLOCKED"
)

// IsValid reports whether s is one of the known statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRefused, StatusBlocked:
		return true
	}
	return false
}

// Relationship is the single directed record linking two users.
// The sender authored the current state of the row.
type Relationship struct {
	ID          uuid.UUID    `db:"id"`
	SenderID    uuid.UUID    `db:"sender_id"`
	RecipientID uuid.UUID    `db:"recipient_id"`
	Status      Status       `db:"status"`
	AcceptedAt  sql.NullTime `db:"accepted_at"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

// IsParty returns true if userID is the sender or the recipient
func (r *Relationship) IsParty(userID uuid.UUID) bool {
	return r.SenderID == userID || r.RecipientID == userID
}

// Links returns true if the record connects a and b in either direction
func (r *Relationship) Links(a, b uuid.UUID) bool {
	return (r.SenderID == a && r.RecipientID == b) || (r.SenderID == b && r.RecipientID == a)
}

// Counterparty returns the other participant from userID's point of view
func (r *Relationship) Counterparty(userID uuid.UUID) uuid.UUID {
	if r.SenderID == userID {
		return r.RecipientID
	}
	return r.SenderID
}

func (r *Relationship) clone() *Relationship {
	c := *r
	return &c
}

// setStatus keeps accepted_at in step with the status
func (r *Relationship) setStatus(status Status, now time.Time) {
	r.Status = status
	r.UpdatedAt = now
	if status == StatusAccepted {
		r.AcceptedAt = sql.NullTime{Time: now, Valid: true}
	} else {
		r.AcceptedAt = sql.NullTime{}
	}
}

// Direction filters listings relative to the requesting user
type Direction string

const (
	DirectionAny      Direction = ""
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// ListFilter narrows a relationship listing
type ListFilter struct {
	UserID    uuid.UUID
	Status    Status
	Direction Direction
	Limit     int
	Offset    int
}
