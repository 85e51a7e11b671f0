package relationships

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/socialgraph/socialgraph-api/internal/middleware"
	"github.com/socialgraph/socialgraph-api/internal/pkg/errorhandler"
	"github.com/socialgraph/socialgraph-api/internal/pkg/logger"
	"github.com/socialgraph/socialgraph-api/internal/pkg/response"
	"github.com/socialgraph/socialgraph-api/internal/pkg/validator"
)

// ProfileFetcher interface to retrieve user details
type ProfileFetcher interface {
	GetUserProfile(ctx context.Context, userID uuid.UUID) (*UserProfile, error)
}

// UserProfile represents public user data shown next to a relationship
type UserProfile struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
}

// Handler handles relationship HTTP requests
type Handler struct {
	service        *Service
	profileFetcher ProfileFetcher
}

// NewHandler creates relationship handler
func NewHandler(service *Service, profileFetcher ProfileFetcher) *Handler {
	return &Handler{
		service:        service,
		profileFetcher: profileFetcher,
	}
}

// Follow handles POST /relationships/follow/{userId}
// @Summary Follow a user
// @Description Sends a follow request. A pending request from the other user is accepted instead.
// @Tags Relationships
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User to follow"
// @Success 200,201 {object} response.Response{data=ActionResponse}
// @Failure 400,403,404,409,500 {object} response.Response
// @Router /relationships/follow/{userId} [post]
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	actorID := middleware.GetUserID(r.Context())
	t, err := h.service.SendFollowRequest(r.Context(), actorID, targetID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeTransition(w, t)
}

// Respond handles PATCH /relationships/{id}
// @Summary Accept or refuse a follow request
// @Tags Relationships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Relationship ID"
// @Param request body RespondRequest true "New status: ACCEPTED or REFUSED"
// @Success 200 {object} response.Response{data=ActionResponse}
// @Failure 400,403,404,422,500 {object} response.Response
// @Router /relationships/{id} [patch]
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid relationship ID")
		return
	}

	var req RespondRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	actorID := middleware.GetUserID(r.Context())
	t, err := h.service.RespondToRequest(r.Context(), actorID, id, Status(req.Status))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeTransition(w, t)
}

// Block handles POST /relationships/block/{userId}
// @Summary Block a user
// @Description Blocks a user, replacing any existing relationship with them.
// @Tags Relationships
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User to block"
// @Success 200,201 {object} response.Response{data=ActionResponse}
// @Failure 400,404,500 {object} response.Response
// @Router /relationships/block/{userId} [post]
func (h *Handler) Block(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	actorID := middleware.GetUserID(r.Context())
	t, err := h.service.BlockUser(r.Context(), actorID, targetID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeTransition(w, t)
}

// Delete handles DELETE /relationships/{id}
// @Summary Unfollow, cancel a request or unblock
// @Tags Relationships
// @Produce json
// @Security BearerAuth
// @Param id path string true "Relationship ID"
// @Success 200 {object} response.Response{data=DeleteResponse}
// @Failure 400,403,404,500 {object} response.Response
// @Router /relationships/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid relationship ID")
		return
	}

	actorID := middleware.GetUserID(r.Context())
	result, err := h.service.DeleteRelationship(r.Context(), actorID, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.OK(w, DeleteResponse{
		Message:        result.Message,
		ID:             result.Relationship.ID,
		PreviousStatus: result.Relationship.Status,
	})
}

// Get handles GET /relationships/{id}
// @Summary Get a relationship
// @Tags Relationships
// @Produce json
// @Security BearerAuth
// @Param id path string true "Relationship ID"
// @Success 200 {object} response.Response{data=RelationshipResponse}
// @Failure 400,403,404,500 {object} response.Response
// @Router /relationships/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid relationship ID")
		return
	}

	rel, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.OK(w, RelationshipFromEntity(rel))
}

// GetWithUser handles GET /relationships/with/{userId}
// @Summary Get the relationship with another user
// @Tags Relationships
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Other user ID"
// @Success 200 {object} response.Response{data=RelationshipResponse}
// @Failure 400,404,500 {object} response.Response
// @Router /relationships/with/{userId} [get]
func (h *Handler) GetWithUser(w http.ResponseWriter, r *http.Request) {
	otherID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	rel, err := h.service.Between(r.Context(), middleware.GetUserID(r.Context()), otherID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.OK(w, RelationshipFromEntity(rel))
}

// List handles GET /relationships
// @Summary List my relationships
// @Tags Relationships
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING, ACCEPTED, REFUSED or BLOCKED"
// @Param direction query string false "outgoing or incoming"
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.Response{data=[]RelationshipResponse}
// @Failure 400,500 {object} response.Response
// @Router /relationships [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	direction := query.Get("direction")
	if err := validator.ValidateVar(direction, "omitempty,oneof=outgoing incoming"); err != nil {
		response.BadRequest(w, "direction must be outgoing or incoming")
		return
	}

	page := response.ParsePage(r)
	items, total, err := h.service.List(r.Context(), ListFilter{
		UserID:    middleware.GetUserID(r.Context()),
		Status:    Status(strings.ToUpper(query.Get("status"))),
		Direction: Direction(direction),
		Limit:     page.Limit,
		Offset:    page.Offset(),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	out := make([]*RelationshipResponse, len(items))
	for i, rel := range items {
		out[i] = RelationshipFromEntity(rel)
	}

	response.WithMeta(w, out, page.Meta(total))
}

// Followers handles GET /users/{id}/followers
// @Summary List followers of a user
// @Tags Relationships
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response{data=[]ConnectionResponse}
// @Failure 400,404,500 {object} response.Response
// @Router /users/{id}/followers [get]
func (h *Handler) Followers(w http.ResponseWriter, r *http.Request) {
	h.listConnections(w, r, h.service.Followers)
}

// Following handles GET /users/{id}/following
// @Summary List users a user follows
// @Tags Relationships
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response{data=[]ConnectionResponse}
// @Failure 400,404,500 {object} response.Response
// @Router /users/{id}/following [get]
func (h *Handler) Following(w http.ResponseWriter, r *http.Request) {
	h.listConnections(w, r, h.service.Following)
}

type connectionLister func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Relationship, int, error)

func (h *Handler) listConnections(w http.ResponseWriter, r *http.Request, list connectionLister) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	page := response.ParsePage(r)
	items, total, err := list(r.Context(), userID, page.Limit, page.Offset())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	// Enrich with profile data
	out := make([]*ConnectionResponse, 0, len(items))
	for _, rel := range items {
		var profile *UserProfile
		if h.profileFetcher != nil {
			counterparty := rel.Counterparty(userID)
			profile, err = h.profileFetcher.GetUserProfile(r.Context(), counterparty)
			if err != nil {
				// Fallback to minimal data
				logger.LogWarn(r.Context(), "failed to load connection profile",
					"user_id", counterparty.String(),
					"error", err.Error(),
				)
				profile = nil
			}
		}
		out = append(out, ConnectionFromEntity(rel, userID, profile))
	}

	response.WithMeta(w, out, page.Meta(total))
}

func writeTransition(w http.ResponseWriter, t *Transition) {
	body := ActionResponse{
		Message:      t.Message,
		Relationship: RelationshipFromEntity(t.Relationship),
	}
	if t.Created() {
		response.Created(w, body)
		return
	}
	response.OK(w, body)
}

// handleError maps error kinds onto status codes
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	message := err.Error()
	var classified *Error
	if errors.As(err, &classified) {
		message = classified.Message
	}

	switch {
	case errors.Is(err, ErrInvalidRequest):
		response.BadRequest(w, message)
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, message)
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, message)
	case errors.Is(err, ErrConflict):
		response.Conflict(w, message)
	case errors.Is(err, ErrInternalInconsistency):
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_INCONSISTENCY", "Relationship is in an inconsistent state", err)
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
	}
}
