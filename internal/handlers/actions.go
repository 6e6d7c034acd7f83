package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/middleware"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// ActionHandler handles accountability action requests. Creating and
// transitioning actions is the subsystem's only write path: each write is one
// atomic store call, validation is limited to required fields, and a failed
// write is returned to the caller as-is with no retry.
type ActionHandler struct {
	actions db.ActionCollection
}

// NewActionHandler creates a new accountability action handler.
func NewActionHandler(actions db.ActionCollection) *ActionHandler {
	return &ActionHandler{actions: actions}
}

// CreateActionRequest is the payload for creating an accountability action.
type CreateActionRequest struct {
	ActorID   string            `json:"actor_id,omitempty"`
	RoleScope string            `json:"role_scope,omitempty"`
	Type      models.ActionType `json:"type"`
	Note      string            `json:"note"`
	DueDate   *time.Time        `json:"due_date,omitempty"`
}

// Create files a new accountability action against an actor or role scope.
func (h *ActionHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var req CreateActionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	// Required-field checks only; no further local validation
	if req.ActorID == "" && req.RoleScope == "" {
		http.Error(w, "Either actor_id or role_scope is required", http.StatusBadRequest)
		return
	}
	if !models.IsValidActionType(req.Type) {
		http.Error(w, "Invalid action type", http.StatusBadRequest)
		return
	}
	if req.Note == "" {
		http.Error(w, "Note is required", http.StatusBadRequest)
		return
	}

	action := models.AccountabilityAction{
		ActorID:   req.ActorID,
		RoleScope: req.RoleScope,
		Type:      req.Type,
		Note:      req.Note,
		DueDate:   req.DueDate,
		CreatedBy: claims.UserID,
	}

	if err := h.actions.InsertAction(r.Context(), action); err != nil {
		// Surfaced verbatim; the caller decides whether to retry
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// List returns accountability actions, optionally filtered by actor or status.
func (h *ActionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if actor := r.URL.Query().Get("actor_id"); actor != "" {
		filter["actor_id"] = actor
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := h.actions.FindActions(r.Context(), filter)
	if err != nil {
		http.Error(w, "Failed to load actions", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(r.Context())

	var actions []models.AccountabilityAction
	if err := cursor.All(r.Context(), &actions); err != nil {
		http.Error(w, "Failed to decode actions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, actions)
}

// Resolve transitions an open action to resolved.
func (h *ActionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.ActionResolved)
}

// Dismiss transitions an open action to dismissed.
func (h *ActionHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.ActionDismissed)
}

func (h *ActionHandler) transition(w http.ResponseWriter, r *http.Request, status models.ActionStatus) {
	id := mux.Vars(r)["id"]

	err := h.actions.TransitionAction(r.Context(), id, status)
	switch err {
	case nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
	case db.ErrNotFound:
		http.Error(w, "Action not found", http.StatusNotFound)
	case db.ErrAlreadyTransitioned:
		http.Error(w, "Action is not open", http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}
