package relationships

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by the service unwraps to exactly one of these.
var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("conflict")
	ErrInternalInconsistency = errors.New("internal inconsistency")
)

// Store-level errors, translated by the service before they reach callers.
var (
	ErrRecordNotFound = errors.New("relationship record not found")
	ErrDuplicatePair  = errors.New("relationship already exists for this pair")
	ErrUnknownUser    = errors.New("relationship references unknown user")
	ErrSelfReference  = errors.New("relationship sender equals recipient")
)

// Error is a classified failure carrying a user-facing message
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrUserNotFound             = newError(ErrNotFound, "user not found")
	ErrCannotFollowSelf         = newError(ErrInvalidRequest, "you cannot follow yourself")
	ErrBlockedByUser            = newError(ErrForbidden, "you have been blocked by this user")
	ErrYouBlockedUser           = newError(ErrForbidden, "you have blocked this user")
	ErrRequestAlreadySent       = newError(ErrConflict, "you have already sent a follow request to this user")
	ErrAlreadyFollowing         = newError(ErrConflict, "you are already following this user")
	ErrPairAlreadyExists        = newError(ErrConflict, "a relationship with this user already exists")
	ErrFollowRequestNotFound    = newError(ErrNotFound, "follow request not found")
	ErrOnlyRecipientCanRespond  = newError(ErrForbidden, "only the recipient can accept or refuse a follow request")
	ErrCannotUpdateBlocked      = newError(ErrInvalidRequest, "cannot update a blocked relationship")
	ErrCannotRevertToPending    = newError(ErrInvalidRequest, "cannot go back to pending")
	ErrInvalidStatus            = newError(ErrInvalidRequest, "invalid status")
	ErrCannotBlockSelf          = newError(ErrInvalidRequest, "you cannot block yourself")
	ErrAlreadyBlocked           = newError(ErrInvalidRequest, "user is already blocked")
	ErrNotFollowingOrBlocking   = newError(ErrNotFound, "you are not currently following or blocking this user")
	ErrNotParty                 = newError(ErrForbidden, "you are not part of this relationship")
	ErrOnlyBlockerCanUnblock    = newError(ErrForbidden, "only the blocker can unblock this user")
	ErrAlreadyDeleted           = newError(ErrNotFound, "relationship was already deleted")
	ErrRelationshipNotFound     = newError(ErrNotFound, "relationship not found")
	ErrNoRelationshipWithUser   = newError(ErrNotFound, "you have no relationship with this user")
	ErrRelationshipVanished     = newError(ErrNotFound, "relationship no longer exists")
	ErrStatusFilterNotSupported = newError(ErrInvalidRequest, "unknown status filter")
)

func errStatusAlready(status Status) *Error {
	return newError(ErrInvalidRequest, fmt.Sprintf("status is already %s", status))
}

func errUnexpectedStatus(status Status) *Error {
	return newError(ErrInternalInconsistency, fmt.Sprintf("relationship has unexpected status %q", status))
}

func errUnrelatedRecord() *Error {
	return newError(ErrInternalInconsistency, "relationship does not link the requested users")
}
