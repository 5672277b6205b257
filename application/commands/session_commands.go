package commands

import (
	"mindmapx/application/session"
	"mindmapx/pkg/utils"
)

// CreateSessionCommand opens a new editing session. SessionID is optional.
type CreateSessionCommand struct {
	SessionID string `json:"session_id" validate:"omitempty,max=64"`
}

// Validate validates the command
func (c CreateSessionCommand) Validate() error { return utils.ValidateStruct(c) }

// StartSessionCommand moves a session from start to playing
type StartSessionCommand struct {
	SessionID string `json:"session_id" validate:"required"`
}

// Validate validates the command
func (c StartSessionCommand) Validate() error { return utils.ValidateStruct(c) }

// FinishSessionCommand ends editing
type FinishSessionCommand struct {
	SessionID string `json:"session_id" validate:"required"`
}

// Validate validates the command
func (c FinishSessionCommand) Validate() error { return utils.ValidateStruct(c) }

// ResetSessionCommand restores the single root idea
type ResetSessionCommand struct {
	SessionID string `json:"session_id" validate:"required"`
}

// Validate validates the command
func (c ResetSessionCommand) Validate() error { return utils.ValidateStruct(c) }

// CloseSessionCommand discards a session
type CloseSessionCommand struct {
	SessionID string `json:"session_id" validate:"required"`
}

// Validate validates the command
func (c CloseSessionCommand) Validate() error { return utils.ValidateStruct(c) }

// SelectNodeCommand clicks an idea
type SelectNodeCommand struct {
	SessionID string `json:"session_id" validate:"required"`
	NodeID    string `json:"node_id" validate:"required"`
}

// Validate validates the command
func (c SelectNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// ClearSelectionCommand clicks empty canvas
type ClearSelectionCommand struct {
	SessionID string `json:"session_id" validate:"required"`
}

// Validate validates the command
func (c ClearSelectionCommand) Validate() error { return utils.ValidateStruct(c) }

// BeginDragCommand presses the pointer on an idea
type BeginDragCommand struct {
	SessionID string               `json:"session_id" validate:"required"`
	NodeID    string               `json:"node_id" validate:"required"`
	Pointer   session.PointerEvent `json:"pointer"`
}

// Validate validates the command
func (c BeginDragCommand) Validate() error { return utils.ValidateStruct(c) }

// ContinueDragCommand moves the pointer during a drag
type ContinueDragCommand struct {
	SessionID string               `json:"session_id" validate:"required"`
	Pointer   session.PointerEvent `json:"pointer"`
}

// Validate validates the command
func (c ContinueDragCommand) Validate() error { return utils.ValidateStruct(c) }

// EndDragCommand releases the pointer, or reports it left the canvas
type EndDragCommand struct {
	SessionID string `json:"session_id" validate:"required"`
	Leave     bool   `json:"leave"`
}

// Validate validates the command
func (c EndDragCommand) Validate() error { return utils.ValidateStruct(c) }

// AddChildNodeCommand attaches a child to the selected idea
type AddChildNodeCommand struct {
	SessionID string `json:"session_id" validate:"required"`
	Label     string `json:"label" validate:"required,max=200"`
	Color     string `json:"color" validate:"omitempty,hexcolor"`
}

// Validate validates the command
func (c AddChildNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// EditNodeCommand changes label and/or color; nil fields are left alone
type EditNodeCommand struct {
	SessionID string  `json:"session_id" validate:"required"`
	NodeID    string  `json:"node_id" validate:"required"`
	Label     *string `json:"label" validate:"omitempty,min=1,max=200"`
	Color     *string `json:"color" validate:"omitempty,hexcolor"`
}

// Validate validates the command
func (c EditNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// Zoom actions
const (
	ZoomSet   = "set"
	ZoomIn    = "in"
	ZoomOut   = "out"
	ZoomReset = "reset"
)

// SetZoomCommand changes the zoom level. Level is used only by the set action.
type SetZoomCommand struct {
	SessionID string  `json:"session_id" validate:"required"`
	Action    string  `json:"action" validate:"required,oneof=set in out reset"`
	Level     float64 `json:"level"`
}

// Validate validates the command
func (c SetZoomCommand) Validate() error { return utils.ValidateStruct(c) }

// SetRoleColorCommand changes a role color
type SetRoleColorCommand struct {
	SessionID string `json:"session_id" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=root child selected"`
	Color     string `json:"color" validate:"required,hexcolor"`
}

// Validate validates the command
func (c SetRoleColorCommand) Validate() error { return utils.ValidateStruct(c) }

// AddChildResult is returned by AddChildNodeCommand
type AddChildResult struct {
	NodeID string       `json:"node_id"`
	View   session.View `json:"session"`
}

// DragResult is returned by EndDragCommand
type DragResult struct {
	Ended    bool         `json:"ended"`
	NodeID   string       `json:"node_id,omitempty"`
	WasClick bool         `json:"was_click"`
	View     session.View `json:"session"`
}

// ZoomResult is returned by SetZoomCommand
type ZoomResult struct {
	Zoom float64 `json:"zoom"`
}
