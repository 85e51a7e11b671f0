package notification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/socialgraph/socialgraph-api/internal/domain/user"
)

// UserLookup resolves the actor shown in a notification title
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Service handles notification logic
type Service struct {
	repo  Repository
	users UserLookup
}

// NewService creates notification service
func NewService(repo Repository, users UserLookup) *Service {
	return &Service{repo: repo, users: users}
}

// Create stores a notification for userID
func (s *Service) Create(ctx context.Context, userID uuid.UUID, notifType Type, title, body string, payload Payload) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Body:      sql.NullString{String: body, Valid: body != ""},
		CreatedAt: time.Now(),
	}
	if err := n.setPayload(payload); err != nil {
		return nil, fmt.Errorf("encode notification payload: %w", err)
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

// List returns notifications for user and the total matching count
func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

// GetUnreadCount returns unread count
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

// MarkAsRead marks a single notification of userID as read
func (s *Service) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, userID, id)
}

// MarkAllAsRead marks all notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// --- Relationship events ---

// NotifyFollowRequest tells recipientID that senderID wants to follow them
func (s *Service) NotifyFollowRequest(ctx context.Context, recipientID, senderID, relationshipID uuid.UUID) error {
	name := s.actorName(ctx, senderID)
	_, err := s.Create(ctx, recipientID, TypeFollowRequest,
		"New follow request",
		name+" wants to follow you",
		relationshipPayload(relationshipID, senderID),
	)
	return err
}

// NotifyFollowAccepted tells recipientID that accepterID accepted their request
func (s *Service) NotifyFollowAccepted(ctx context.Context, recipientID, accepterID, relationshipID uuid.UUID) error {
	name := s.actorName(ctx, accepterID)
	_, err := s.Create(ctx, recipientID, TypeFollowAccepted,
		"Follow request accepted",
		name+" accepted your follow request",
		relationshipPayload(relationshipID, accepterID),
	)
	return err
}

func (s *Service) actorName(ctx context.Context, id uuid.UUID) string {
	if s.users != nil {
		if u, err := s.users.GetByID(ctx, id); err == nil && u != nil {
			return u.Name()
		}
	}
	return "Someone"
}
