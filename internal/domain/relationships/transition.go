package relationships

import (
	"time"

	"github.com/google/uuid"
)

// Action names a state machine entry point; used for logs and metrics labels.
type Action string

const (
	ActionFollow  Action = "follow"
	ActionRespond Action = "respond"
	ActionBlock   Action = "block"
	ActionDelete  Action = "delete"
)

// Effect is the store write a transition requires
type Effect int

const (
	EffectCreate Effect = iota + 1
	EffectUpdate
)

// Event is the side effect to announce after a transition commits
type Event int

const (
	EventNone Event = iota
	EventFollowRequested
	EventFollowAccepted
)

const (
	MsgFollowed        = "Followed user successfully"
	MsgFriendAccepted  = "Accepted friend request successfully"
	MsgRequestAccepted = "Accepted follow request successfully"
	MsgRequestRefused  = "Refused follow request successfully"
	MsgBlocked         = "Blocked user successfully"
	MsgUnblocked       = "Unblocked user successfully"
	MsgCancelled       = "Cancelled follow request successfully"
	MsgUnfollowed      = "Unfollowed user successfully"
)

// Transition is the outcome of a successful decision: the row to persist,
// how to persist it and what to tell the caller.
type Transition struct {
	Action       Action
	Effect       Effect
	Relationship *Relationship
	Previous     Status
	Event        Event
	Message      string
}

// Created reports whether the transition inserts a new row
func (t *Transition) Created() bool {
	return t.Effect == EffectCreate
}

func newRelationship(sender, recipient uuid.UUID, status Status, now time.Time) *Relationship {
	rel := &Relationship{
		ID:          uuid.New(),
		SenderID:    sender,
		RecipientID: recipient,
		CreatedAt:   now,
	}
	rel.setStatus(status, now)
	return rel
}

// NextOnFollow decides what happens when actor sends a follow request to target.
// current is the record between the two users, nil if none exists.
func NextOnFollow(current *Relationship, actor, target uuid.UUID, now time.Time) (*Transition, error) {
	if actor == target {
		return nil, ErrCannotFollowSelf
	}

	if current == nil {
		return &Transition{
			Action:       ActionFollow,
			Effect:       EffectCreate,
			Relationship: newRelationship(actor, target, StatusPending, now),
			Event:        EventFollowRequested,
			Message:      MsgFollowed,
		}, nil
	}

	if !current.Links(actor, target) {
		return nil, errUnrelatedRecord()
	}

	next := current.clone()
	t := &Transition{Action: ActionFollow, Effect: EffectUpdate, Relationship: next, Previous: current.Status}

	switch current.Status {
	case StatusBlocked:
		if current.SenderID == target {
			return nil, ErrBlockedByUser
		}
		return nil, ErrYouBlockedUser

	case StatusPending:
		if current.SenderID == actor {
			return nil, ErrRequestAlreadySent
		}
		// Both users want to follow each other: collapse into a friendship.
		next.setStatus(StatusAccepted, now)
		t.Event = EventFollowAccepted
		t.Message = MsgFriendAccepted
		return t, nil

	case StatusAccepted:
		return nil, ErrAlreadyFollowing

	case StatusRefused:
		// The row is reused. A re-request from the refuser flips its direction.
		next.SenderID = actor
		next.RecipientID = target
		next.setStatus(StatusPending, now)
		t.Event = EventFollowRequested
		t.Message = MsgFollowed
		return t, nil
	}

	return nil, errUnexpectedStatus(current.Status)
}

// NextOnRespond decides the recipient's answer to a follow request.
func NextOnRespond(current *Relationship, actor uuid.UUID, newStatus Status, now time.Time) (*Transition, error) {
	if current == nil {
		return nil, ErrFollowRequestNotFound
	}
	if current.RecipientID != actor {
		return nil, ErrOnlyRecipientCanRespond
	}
	if !current.Status.IsValid() {
		return nil, errUnexpectedStatus(current.Status)
	}
	if current.Status == newStatus {
		return nil, errStatusAlready(newStatus)
	}
	if current.Status == StatusBlocked {
		return nil, ErrCannotUpdateBlocked
	}

	t := &Transition{Action: ActionRespond, Effect: EffectUpdate, Previous: current.Status}
	switch newStatus {
	case StatusAccepted:
		t.Event = EventFollowAccepted
		t.Message = MsgRequestAccepted
	case StatusRefused:
		t.Message = MsgRequestRefused
	case StatusPending:
		return nil, ErrCannotRevertToPending
	default:
		return nil, ErrInvalidStatus
	}

	next := current.clone()
	next.setStatus(newStatus, now)
	t.Relationship = next
	return t, nil
}

// NextOnBlock decides what happens when actor blocks target. Blocking
// overrides any non-blocked state and makes actor the sender of record.
func NextOnBlock(current *Relationship, actor, target uuid.UUID, now time.Time) (*Transition, error) {
	if actor == target {
		return nil, ErrCannotBlockSelf
	}

	if current == nil {
		return &Transition{
			Action:       ActionBlock,
			Effect:       EffectCreate,
			Relationship: newRelationship(actor, target, StatusBlocked, now),
			Message:      MsgBlocked,
		}, nil
	}

	if !current.Links(actor, target) {
		return nil, errUnrelatedRecord()
	}

	switch current.Status {
	case StatusBlocked:
		return nil, ErrAlreadyBlocked
	case StatusPending, StatusAccepted, StatusRefused:
		next := current.clone()
		next.SenderID = actor
		next.RecipientID = target
		next.setStatus(StatusBlocked, now)
		return &Transition{
			Action:       ActionBlock,
			Effect:       EffectUpdate,
			Relationship: next,
			Previous:     current.Status,
			Message:      MsgBlocked,
		}, nil
	}

	return nil, errUnexpectedStatus(current.Status)
}

// CheckDelete authorizes actor to remove current
func CheckDelete(current *Relationship, actor uuid.UUID) error {
	if current == nil {
		return ErrNotFollowingOrBlocking
	}
	if !current.IsParty(actor) {
		return ErrNotParty
	}
	if !current.Status.IsValid() {
		return errUnexpectedStatus(current.Status)
	}
	if current.Status == StatusBlocked && current.SenderID != actor {
		return ErrOnlyBlockerCanUnblock
	}
	return nil
}

// DeleteMessage picks the response message from the status the row had before deletion
func DeleteMessage(status Status) string {
	switch status {
	case StatusBlocked:
		return MsgUnblocked
	case StatusPending:
		return MsgCancelled
	default:
		return MsgUnfollowed
	}
}
