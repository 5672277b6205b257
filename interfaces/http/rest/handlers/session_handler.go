package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindmapx/application/commands"
	"mindmapx/application/commands/bus"
	"mindmapx/application/queries"
	querybus "mindmapx/application/queries/bus"
	"mindmapx/application/session"
	"mindmapx/pkg/common"
	pkgerrors "mindmapx/pkg/errors"
	"mindmapx/pkg/utils"
)

// SessionHandler handles session-related HTTP requests
type SessionHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	onClose      func(sessionID string)
	logger       *zap.Logger
}

// NewSessionHandler creates a new session handler. onClose runs after a
// session is discarded and may be nil.
func NewSessionHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	onClose func(sessionID string),
	logger *zap.Logger,
) *SessionHandler {
	return &SessionHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		onClose:      onClose,
		logger:       logger,
	}
}

// CreateSessionRequest represents the request body for opening a session
type CreateSessionRequest struct {
	SessionID string `json:"session_id,omitempty" validate:"omitempty,max=64"`
}

// SelectNodeRequest represents the request body for clicking an idea
type SelectNodeRequest struct {
	NodeID string `json:"node_id" validate:"required"`
}

// AddChildRequest represents the request body for adding an idea
type AddChildRequest struct {
	Label string `json:"label" validate:"required,max=200"`
	Color string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// EditNodeRequest represents the request body for editing an idea
type EditNodeRequest struct {
	Label *string `json:"label,omitempty" validate:"omitempty,min=1,max=200"`
	Color *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// BeginDragRequest represents the request body for pressing on an idea
type BeginDragRequest struct {
	NodeID  string               `json:"node_id" validate:"required"`
	Pointer session.PointerEvent `json:"pointer"`
}

// ContinueDragRequest represents the request body for a pointer move
type ContinueDragRequest struct {
	Pointer session.PointerEvent `json:"pointer"`
}

// ZoomRequest represents the request body for zoom changes
type ZoomRequest struct {
	Action string  `json:"action" validate:"required,oneof=set in out reset"`
	Level  float64 `json:"level"`
}

// RoleColorRequest represents the request body for a role color change
type RoleColorRequest struct {
	Color string `json:"color" validate:"required,hexcolor"`
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.send(w, r, http.StatusCreated, commands.CreateSessionCommand{SessionID: req.SessionID})
}

// GetSession handles GET /sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.queryBus.Ask(r.Context(), queries.GetSessionQuery{SessionID: sessionID(r)})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, view)
}

// CloseSession handles DELETE /sessions/{id}
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if _, err := h.commandBus.Send(r.Context(), commands.CloseSessionCommand{SessionID: id}); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if h.onClose != nil {
		h.onClose(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartSession handles POST /sessions/{id}/start
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, http.StatusOK, commands.StartSessionCommand{SessionID: sessionID(r)})
}

// ResetSession handles POST /sessions/{id}/reset
func (h *SessionHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, http.StatusOK, commands.ResetSessionCommand{SessionID: sessionID(r)})
}

// FinishSession handles POST /sessions/{id}/finish
func (h *SessionHandler) FinishSession(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, http.StatusOK, commands.FinishSessionCommand{SessionID: sessionID(r)})
}

// SelectNode handles POST /sessions/{id}/select
func (h *SessionHandler) SelectNode(w http.ResponseWriter, r *http.Request) {
	var req SelectNodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.send(w, r, http.StatusOK, commands.SelectNodeCommand{SessionID: sessionID(r), NodeID: req.NodeID})
}

// ClearSelection handles DELETE /sessions/{id}/select
func (h *SessionHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, http.StatusOK, commands.ClearSelectionCommand{SessionID: sessionID(r)})
}

// AddChild handles POST /sessions/{id}/children
func (h *SessionHandler) AddChild(w http.ResponseWriter, r *http.Request) {
	var req AddChildRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.send(w, r, http.StatusCreated, commands.AddChildNodeCommand{
		SessionID: sessionID(r),
		Label:     req.Label,
		Color:     req.Color,
	})
}

// EditNode handles PUT /sessions/{id}/nodes/{nodeID}
func (h *SessionHandler) EditNode(w http.ResponseWriter, r *http.Request) {
	var req EditNodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.send(w, r, http.StatusOK, commands.EditNodeCommand{
		SessionID: sessionID(r),
		NodeID:    chi.URLParam(r, "nodeID"),
		Label:     req.Label,
		Color:     req.Color,
	})
}

// BeginDrag handles POST /sessions/{id}/drag
func (h *SessionHandler) BeginDrag(w http.ResponseWriter, r *http.Request) {
	var req BeginDragRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.send(w, r, http.StatusOK, commands.BeginDragCommand{
		SessionID: sessionID(r),
		NodeID:    req.NodeID,
		Pointer:   req.Pointer,
	})
}

// ContinueDrag handles PATCH /sessions/{id}/drag
func (h *SessionHandler) ContinueDrag(w http.ResponseWriter, r *http.Request) {
	var req ContinueDragRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.send(w, r, http.StatusOK, commands.ContinueDragCommand{SessionID: sessionID(r), Pointer: req.Pointer})
}

// EndDrag handles DELETE /sessions/{id}/drag. ?leave=true reports the
// pointer leaving the canvas instead of a release.
func (h *SessionHandler) EndDrag(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, http.StatusOK, commands.EndDragCommand{
		SessionID: sessionID(r),
		Leave:     r.URL.Query().Get("leave") == "true",
	})
}

// SetZoom handles PUT /sessions/{id}/zoom
func (h *SessionHandler) SetZoom(w http.ResponseWriter, r *http.Request) {
	var req ZoomRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.send(w, r, http.StatusOK, commands.SetZoomCommand{
		SessionID: sessionID(r),
		Action:    req.Action,
		Level:     req.Level,
	})
}

// SetRoleColor handles PUT /sessions/{id}/colors/{role}
func (h *SessionHandler) SetRoleColor(w http.ResponseWriter, r *http.Request) {
	var req RoleColorRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.send(w, r, http.StatusOK, commands.SetRoleColorCommand{
		SessionID: sessionID(r),
		Role:      chi.URLParam(r, "role"),
		Color:     req.Color,
	})
}

func (h *SessionHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := common.ParseJSONBody(w, r, v); err != nil {
		h.errorHandler.Handle(w, r, err)
		return false
	}
	if err := utils.ValidateStruct(v); err != nil {
		h.errorHandler.Handle(w, r, err)
		return false
	}
	return true
}

func (h *SessionHandler) send(w http.ResponseWriter, r *http.Request, status int, cmd bus.Command) {
	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, status, result)
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "id")
}
