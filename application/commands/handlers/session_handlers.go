package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindmapx/application/commands"
	"mindmapx/application/commands/bus"
	"mindmapx/application/session"
	"mindmapx/domain/config"
	"mindmapx/domain/core/valueobjects"
)

// Recorder receives business metrics from command handlers
type Recorder interface {
	NodeCreated()
	DragCompleted(wasClick bool)
	SessionOpened()
}

type nopRecorder struct{}

func (nopRecorder) NodeCreated()       {}
func (nopRecorder) DragCompleted(bool) {}
func (nopRecorder) SessionOpened()     {}

// SessionCommandHandler executes every session command
type SessionCommandHandler struct {
	sessions session.Repository
	factory  session.Factory
	cfg      *config.DomainConfig
	metrics  Recorder
	logger   *zap.Logger
}

// NewSessionCommandHandler creates a new handler instance
func NewSessionCommandHandler(
	sessions session.Repository,
	factory session.Factory,
	cfg *config.DomainConfig,
	metrics Recorder,
	logger *zap.Logger,
) *SessionCommandHandler {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &SessionCommandHandler{
		sessions: sessions,
		factory:  factory,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
	}
}

// Register binds every session command to the bus
func (h *SessionCommandHandler) Register(b *bus.CommandBus) error {
	routes := []struct {
		cmd bus.Command
		fn  bus.CommandHandlerFunc
	}{
		{commands.CreateSessionCommand{}, h.createSession},
		{commands.StartSessionCommand{}, h.startSession},
		{commands.FinishSessionCommand{}, h.finishSession},
		{commands.ResetSessionCommand{}, h.resetSession},
		{commands.CloseSessionCommand{}, h.closeSession},
		{commands.SelectNodeCommand{}, h.selectNode},
		{commands.ClearSelectionCommand{}, h.clearSelection},
		{commands.BeginDragCommand{}, h.beginDrag},
		{commands.ContinueDragCommand{}, h.continueDrag},
		{commands.EndDragCommand{}, h.endDrag},
		{commands.AddChildNodeCommand{}, h.addChildNode},
		{commands.EditNodeCommand{}, h.editNode},
		{commands.SetZoomCommand{}, h.setZoom},
		{commands.SetRoleColorCommand{}, h.setRoleColor},
	}
	for _, r := range routes {
		if err := b.Register(r.cmd, r.fn); err != nil {
			return err
		}
	}
	return nil
}

func (h *SessionCommandHandler) createSession(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.CreateSessionCommand)
	id := cmd.SessionID
	if id == "" {
		id = uuid.New().String()
	}
	s := h.factory(id)
	if err := h.sessions.Save(ctx, s); err != nil {
		return nil, err
	}
	h.metrics.SessionOpened()
	h.logger.Info("Session created", zap.String("session_id", id))
	return s.View(), nil
}

func (h *SessionCommandHandler) startSession(ctx context.Context, c bus.Command) (interface{}, error) {
	s, err := h.sessions.Get(ctx, c.(commands.StartSessionCommand).SessionID)
	if err != nil {
		return nil, err
	}
	s.Start(ctx)
	return s.View(), nil
}

func (h *SessionCommandHandler) finishSession(ctx context.Context, c bus.Command) (interface{}, error) {
	s, err := h.sessions.Get(ctx, c.(commands.FinishSessionCommand).SessionID)
	if err != nil {
		return nil, err
	}
	s.Finish(ctx)
	return s.View(), nil
}

func (h *SessionCommandHandler) resetSession(ctx context.Context, c bus.Command) (interface{}, error) {
	s, err := h.sessions.Get(ctx, c.(commands.ResetSessionCommand).SessionID)
	if err != nil {
		return nil, err
	}
	s.Reset(ctx)
	return s.View(), nil
}

func (h *SessionCommandHandler) closeSession(ctx context.Context, c bus.Command) (interface{}, error) {
	id := c.(commands.CloseSessionCommand).SessionID
	if err := h.sessions.Delete(ctx, id); err != nil {
		return nil, err
	}
	h.logger.Info("Session closed", zap.String("session_id", id))
	return nil, nil
}

func (h *SessionCommandHandler) selectNode(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.SelectNodeCommand)
	s, nodeID, err := h.sessionAndNode(ctx, cmd.SessionID, cmd.NodeID)
	if err != nil {
		return nil, err
	}
	s.SelectNode(ctx, nodeID)
	return s.View(), nil
}

func (h *SessionCommandHandler) clearSelection(ctx context.Context, c bus.Command) (interface{}, error) {
	s, err := h.sessions.Get(ctx, c.(commands.ClearSelectionCommand).SessionID)
	if err != nil {
		return nil, err
	}
	s.ClearSelection(ctx)
	return s.View(), nil
}

func (h *SessionCommandHandler) beginDrag(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.BeginDragCommand)
	s, nodeID, err := h.sessionAndNode(ctx, cmd.SessionID, cmd.NodeID)
	if err != nil {
		return nil, err
	}
	s.BeginDrag(ctx, nodeID, cmd.Pointer)
	return s.View(), nil
}

func (h *SessionCommandHandler) continueDrag(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.ContinueDragCommand)
	s, err := h.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	s.ContinueDrag(ctx, cmd.Pointer)
	return s.View(), nil
}

func (h *SessionCommandHandler) endDrag(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.EndDragCommand)
	s, err := h.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}

	var res session.DragResult
	var ended bool
	if cmd.Leave {
		res, ended = s.LeaveCanvas(ctx)
	} else {
		res, ended = s.EndDrag(ctx)
	}

	out := commands.DragResult{Ended: ended, WasClick: res.WasClick, View: s.View()}
	if ended {
		out.NodeID = res.NodeID.String()
		h.metrics.DragCompleted(res.WasClick)
	}
	return out, nil
}

func (h *SessionCommandHandler) addChildNode(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.AddChildNodeCommand)
	s, err := h.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	label, err := valueobjects.NewLabelWithConfig(cmd.Label, h.cfg)
	if err != nil {
		return nil, err
	}
	color, err := valueobjects.ParseOptionalColor(cmd.Color)
	if err != nil {
		return nil, err
	}

	id, err := s.AddChildNode(ctx, label, color)
	if err != nil {
		return nil, err
	}
	if !id.IsZero() {
		h.metrics.NodeCreated()
	}
	return commands.AddChildResult{NodeID: id.String(), View: s.View()}, nil
}

func (h *SessionCommandHandler) editNode(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.EditNodeCommand)
	s, nodeID, err := h.sessionAndNode(ctx, cmd.SessionID, cmd.NodeID)
	if err != nil {
		return nil, err
	}

	var label *valueobjects.Label
	if cmd.Label != nil {
		l, err := valueobjects.NewLabelWithConfig(*cmd.Label, h.cfg)
		if err != nil {
			return nil, err
		}
		label = &l
	}
	var color *valueobjects.Color
	if cmd.Color != nil {
		col, err := valueobjects.ParseOptionalColor(*cmd.Color)
		if err != nil {
			return nil, err
		}
		color = &col
	}

	if err := s.EditNode(ctx, nodeID, label, color); err != nil {
		return nil, err
	}
	return s.View(), nil
}

func (h *SessionCommandHandler) setZoom(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.SetZoomCommand)
	s, err := h.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}

	var zoom float64
	switch cmd.Action {
	case commands.ZoomSet:
		zoom = s.SetZoom(ctx, cmd.Level)
	case commands.ZoomIn:
		zoom = s.ZoomIn(ctx)
	case commands.ZoomOut:
		zoom = s.ZoomOut(ctx)
	case commands.ZoomReset:
		zoom = s.ResetZoom(ctx)
	default:
		return nil, fmt.Errorf("unknown zoom action %q", cmd.Action)
	}
	return commands.ZoomResult{Zoom: zoom}, nil
}

func (h *SessionCommandHandler) setRoleColor(ctx context.Context, c bus.Command) (interface{}, error) {
	cmd := c.(commands.SetRoleColorCommand)
	s, err := h.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	role, err := session.ParseRole(cmd.Role)
	if err != nil {
		return nil, err
	}
	color, err := valueobjects.NewColor(cmd.Color)
	if err != nil {
		return nil, err
	}
	if err := s.SetRoleColor(ctx, role, color); err != nil {
		return nil, err
	}
	return s.View(), nil
}

func (h *SessionCommandHandler) sessionAndNode(ctx context.Context, sessionID, rawNodeID string) (*session.Session, valueobjects.NodeID, error) {
	s, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, valueobjects.NodeID{}, err
	}
	nodeID, err := valueobjects.NewNodeIDFromString(rawNodeID)
	if err != nil {
		return nil, valueobjects.NodeID{}, err
	}
	return s, nodeID, nil
}
