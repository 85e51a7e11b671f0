package relationships

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/socialgraph/socialgraph-api/internal/domain/user"
	"github.com/socialgraph/socialgraph-api/internal/pkg/logger"
	"github.com/socialgraph/socialgraph-api/internal/pkg/metrics"
)

// UserDirectory resolves user existence for relationship targets
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Notifier announces committed relationship events to the counterparty
type Notifier interface {
	NotifyFollowRequest(ctx context.Context, recipientID, senderID, relationshipID uuid.UUID) error
	NotifyFollowAccepted(ctx context.Context, recipientID, accepterID, relationshipID uuid.UUID) error
}

// Service runs the relationship state machine against the store.
// Every mutating action is one transaction: lock, read, decide, write.
type Service struct {
	repo     Repository
	users    UserDirectory
	notifier Notifier // nil disables notifications
	now      func() time.Time
}

// NewService creates new relationships service
func NewService(repo Repository, users UserDirectory, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

// DeleteResult describes a removed relationship
type DeleteResult struct {
	Relationship *Relationship
	Message      string
}

// SendFollowRequest makes actorID follow targetID
func (s *Service) SendFollowRequest(ctx context.Context, actorID, targetID uuid.UUID) (*Transition, error) {
	if actorID == targetID {
		return nil, s.fail(ctx, ActionFollow, actorID, targetID, nil, ErrCannotFollowSelf)
	}
	if err := s.ensureUserExists(ctx, targetID); err != nil {
		return nil, s.fail(ctx, ActionFollow, actorID, targetID, nil, err)
	}

	var (
		result  *Transition
		current *Relationship
	)
	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		if err := tx.LockPair(ctx, actorID, targetID); err != nil {
			return err
		}
		var err error
		current, err = tx.FindBetween(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		t, err := NextOnFollow(current, actorID, targetID, s.now())
		if err != nil {
			return err
		}
		if err := apply(ctx, tx, t); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, ActionFollow, actorID, targetID, current, err)
	}

	s.succeed(ctx, result, actorID, targetID)
	return result, nil
}

// RespondToRequest lets the recipient accept or refuse a follow request
func (s *Service) RespondToRequest(ctx context.Context, actorID, relationshipID uuid.UUID, newStatus Status) (*Transition, error) {
	var (
		result  *Transition
		current *Relationship
	)
	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		var err error
		current, err = tx.LockByID(ctx, relationshipID)
		if err != nil {
			return err
		}
		t, err := NextOnRespond(current, actorID, newStatus, s.now())
		if err != nil {
			return err
		}
		if err := apply(ctx, tx, t); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, ActionRespond, actorID, uuid.Nil, current, err)
	}

	s.succeed(ctx, result, actorID, result.Relationship.SenderID)
	return result, nil
}

// BlockUser makes actorID block targetID, overriding any existing relationship
func (s *Service) BlockUser(ctx context.Context, actorID, targetID uuid.UUID) (*Transition, error) {
	if actorID == targetID {
		return nil, s.fail(ctx, ActionBlock, actorID, targetID, nil, ErrCannotBlockSelf)
	}
	if err := s.ensureUserExists(ctx, targetID); err != nil {
		return nil, s.fail(ctx, ActionBlock, actorID, targetID, nil, err)
	}

	var (
		result  *Transition
		current *Relationship
	)
	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		if err := tx.LockPair(ctx, actorID, targetID); err != nil {
			return err
		}
		var err error
		current, err = tx.FindBetween(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		t, err := NextOnBlock(current, actorID, targetID, s.now())
		if err != nil {
			return err
		}
		if err := apply(ctx, tx, t); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, ActionBlock, actorID, targetID, current, err)
	}

	s.succeed(ctx, result, actorID, targetID)
	return result, nil
}

// DeleteRelationship removes a relationship the actor is part of
// (unfollow, cancel request or unblock).
func (s *Service) DeleteRelationship(ctx context.Context, actorID, relationshipID uuid.UUID) (*DeleteResult, error) {
	var result *DeleteResult
	current, err := s.repo.FindByID(ctx, relationshipID)
	if err != nil {
		return nil, s.fail(ctx, ActionDelete, actorID, uuid.Nil, nil, err)
	}
	if err := CheckDelete(current, actorID); err != nil {
		return nil, s.fail(ctx, ActionDelete, actorID, uuid.Nil, current, err)
	}

	err = s.repo.WithinTx(ctx, func(tx Repository) error {
		locked, err := tx.LockByID(ctx, relationshipID)
		if err != nil {
			return err
		}
		// The row existed before the lock, so a competing delete won
		if locked == nil {
			return ErrAlreadyDeleted
		}
		current = locked
		if err := CheckDelete(current, actorID); err != nil {
			return err
		}
		deleted, err := tx.Delete(ctx, relationshipID)
		if err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return ErrAlreadyDeleted
			}
			return err
		}
		result = &DeleteResult{Relationship: deleted, Message: DeleteMessage(deleted.Status)}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, ActionDelete, actorID, uuid.Nil, current, err)
	}

	metrics.ObserveTransition(string(ActionDelete), "deleted")
	logger.FromContext(ctx).Info().
		Str("action", string(ActionDelete)).
		Str("actor_id", actorID.String()).
		Str("relationship_id", relationshipID.String()).
		Str("previous_status", string(result.Relationship.Status)).
		Msg("relationship deleted")
	return result, nil
}

// Get returns a relationship visible to actorID
func (s *Service) Get(ctx context.Context, actorID, relationshipID uuid.UUID) (*Relationship, error) {
	rel, err := s.repo.FindByID(ctx, relationshipID)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, ErrRelationshipNotFound
	}
	if !rel.IsParty(actorID) {
		return nil, ErrNotParty
	}
	return rel, nil
}

// Between returns the relationship between actorID and otherID
func (s *Service) Between(ctx context.Context, actorID, otherID uuid.UUID) (*Relationship, error) {
	rel, err := s.repo.FindBetween(ctx, actorID, otherID)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, ErrNoRelationshipWithUser
	}
	return rel, nil
}

// List returns the actor's relationships matching filter
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Relationship, int, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, ErrStatusFilterNotSupported
	}
	return s.repo.List(ctx, filter)
}

// Followers returns accepted relationships where userID is followed
func (s *Service) Followers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Relationship, int, error) {
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, ListFilter{
		UserID:    userID,
		Status:    StatusAccepted,
		Direction: DirectionIncoming,
		Limit:     limit,
		Offset:    offset,
	})
}

// Following returns accepted relationships where userID follows someone
func (s *Service) Following(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Relationship, int, error) {
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, ListFilter{
		UserID:    userID,
		Status:    StatusAccepted,
		Direction: DirectionOutgoing,
		Limit:     limit,
		Offset:    offset,
	})
}

func (s *Service) ensureUserExists(ctx context.Context, userID uuid.UUID) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("relationships lookup user: %w", err)
	}
	if u == nil {
		return ErrUserNotFound
	}
	return nil
}

func apply(ctx context.Context, tx Repository, t *Transition) error {
	switch t.Effect {
	case EffectCreate:
		return tx.Create(ctx, t.Relationship)
	case EffectUpdate:
		if err := tx.Update(ctx, t.Relationship); err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return ErrRelationshipVanished
			}
			return err
		}
		return nil
	}
	return errUnexpectedStatus(t.Relationship.Status)
}

func (s *Service) succeed(ctx context.Context, t *Transition, actorID, counterpartyID uuid.UUID) {
	outcome := "updated"
	if t.Created() {
		outcome = "created"
	}
	metrics.ObserveTransition(string(t.Action), outcome)

	logger.FromContext(ctx).Info().
		Str("action", string(t.Action)).
		Str("actor_id", actorID.String()).
		Str("relationship_id", t.Relationship.ID.String()).
		Str("previous_status", string(t.Previous)).
		Str("status", string(t.Relationship.Status)).
		Msg("relationship transition")

	s.announce(ctx, t, actorID, counterpartyID)
}

func (s *Service) announce(ctx context.Context, t *Transition, actorID, counterpartyID uuid.UUID) {
	if s.notifier == nil {
		return
	}

	var err error
	switch t.Event {
	case EventFollowRequested:
		err = s.notifier.NotifyFollowRequest(ctx, counterpartyID, actorID, t.Relationship.ID)
	case EventFollowAccepted:
		err = s.notifier.NotifyFollowAccepted(ctx, counterpartyID, actorID, t.Relationship.ID)
	default:
		return
	}
	if err != nil {
		logger.LogWarn(ctx, "failed to send relationship notification",
			"relationship_id", t.Relationship.ID.String(),
			"recipient_id", counterpartyID.String(),
			"error", err.Error(),
		)
	}
}

// fail classifies err, records it and returns what the caller should see
func (s *Service) fail(ctx context.Context, action Action, actorID, targetID uuid.UUID, current *Relationship, err error) error {
	switch {
	case errors.Is(err, ErrDuplicatePair):
		err = ErrPairAlreadyExists
	case errors.Is(err, ErrUnknownUser):
		err = ErrUserNotFound
	case errors.Is(err, ErrSelfReference):
		err = ErrCannotFollowSelf
		if action == ActionBlock {
			err = ErrCannotBlockSelf
		}
	}

	metrics.ObserveTransition(string(action), outcomeOf(err))

	if errors.Is(err, ErrInternalInconsistency) {
		event := logger.FromContext(ctx).Error().
			Err(err).
			Str("action", string(action)).
			Str("actor_id", actorID.String())
		if targetID != uuid.Nil {
			event = event.Str("target_id", targetID.String())
		}
		if current != nil {
			event = event.
				Str("relationship_id", current.ID.String()).
				Str("sender_id", current.SenderID.String()).
				Str("recipient_id", current.RecipientID.String()).
				Str("status", string(current.Status))
		}
		event.Msg("relationship state machine reached an uncovered state")
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}
	return fmt.Errorf("relationships %s: %w", action, err)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInternalInconsistency):
		return "inconsistent"
	default:
		return "error"
	}
}
