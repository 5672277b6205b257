package events

import (
	"time"

	"mindmapx/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(aggregateID, eventType string, timestamp time.Time, version int) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     version,
	}
}

// Event type names
const (
	TypeNodeAdded        = "node.added"
	TypeNodeEdited       = "node.edited"
	TypeNodeMoved        = "node.moved"
	TypeMapReset         = "map.reset"
	TypeSelectionChanged = "selection.changed"
	TypeDragStarted      = "drag.started"
	TypeDragEnded        = "drag.ended"
	TypeZoomChanged      = "view.zoom_changed"
	TypeRoleColorChanged = "view.role_color_changed"
	TypePhaseChanged     = "session.phase_changed"
)

// Map events

// NodeAdded is raised when a child idea is attached to a parent
type NodeAdded struct {
	BaseEvent
	NodeID   valueobjects.NodeID   `json:"node_id"`
	ParentID valueobjects.NodeID   `json:"parent_id"`
	EdgeID   valueobjects.EdgeID   `json:"edge_id"`
	Label    string                `json:"label"`
	Position valueobjects.Position `json:"position"`
	Color    valueobjects.Color    `json:"color,omitempty"`
}

// NewNodeAdded creates a NodeAdded event
func NewNodeAdded(mapID string, version int, nodeID, parentID valueobjects.NodeID, edgeID valueobjects.EdgeID,
	label string, pos valueobjects.Position, color valueobjects.Color, timestamp time.Time) NodeAdded {
	return NodeAdded{
		BaseEvent: newBase(mapID, TypeNodeAdded, timestamp, version),
		NodeID:    nodeID,
		ParentID:  parentID,
		EdgeID:    edgeID,
		Label:     label,
		Position:  pos,
		Color:     color,
	}
}

// NodeEdited is raised when a node's label or color changes
type NodeEdited struct {
	BaseEvent
	NodeID   valueobjects.NodeID `json:"node_id"`
	OldLabel string              `json:"old_label"`
	NewLabel string              `json:"new_label"`
	Color    valueobjects.Color  `json:"color,omitempty"`
}

// NewNodeEdited creates a NodeEdited event
func NewNodeEdited(mapID string, version int, nodeID valueobjects.NodeID, oldLabel, newLabel string,
	color valueobjects.Color, timestamp time.Time) NodeEdited {
	return NodeEdited{
		BaseEvent: newBase(mapID, TypeNodeEdited, timestamp, version),
		NodeID:    nodeID,
		OldLabel:  oldLabel,
		NewLabel:  newLabel,
		Color:     color,
	}
}

// NodeMoved is raised when a node is moved to a new position
type NodeMoved struct {
	BaseEvent
	NodeID      valueobjects.NodeID   `json:"node_id"`
	OldPosition valueobjects.Position `json:"old_position"`
	NewPosition valueobjects.Position `json:"new_position"`
}

// NewNodeMoved creates a NodeMoved event
func NewNodeMoved(mapID string, version int, nodeID valueobjects.NodeID, oldPos, newPos valueobjects.Position, timestamp time.Time) NodeMoved {
	return NodeMoved{
		BaseEvent:   newBase(mapID, TypeNodeMoved, timestamp, version),
		NodeID:      nodeID,
		OldPosition: oldPos,
		NewPosition: newPos,
	}
}

// MapReset is raised when the map is cleared back to its root
type MapReset struct {
	BaseEvent
	RootID valueobjects.NodeID `json:"root_id"`
}

// NewMapReset creates a MapReset event
func NewMapReset(mapID string, version int, rootID valueobjects.NodeID, timestamp time.Time) MapReset {
	return MapReset{
		BaseEvent: newBase(mapID, TypeMapReset, timestamp, version),
		RootID:    rootID,
	}
}

// Interaction events

// SelectionChanged is raised when the selected node changes or is cleared
type SelectionChanged struct {
	BaseEvent
	NodeID      *valueobjects.NodeID `json:"node_id,omitempty"`
	Suggestions []string             `json:"suggestions,omitempty"`
}

// NewSelectionChanged creates a SelectionChanged event; a nil id means cleared.
func NewSelectionChanged(sessionID string, nodeID *valueobjects.NodeID, suggestions []string, timestamp time.Time) SelectionChanged {
	return SelectionChanged{
		BaseEvent:   newBase(sessionID, TypeSelectionChanged, timestamp, 1),
		NodeID:      nodeID,
		Suggestions: suggestions,
	}
}

// DragStarted is raised when a pointer grabs a node
type DragStarted struct {
	BaseEvent
	NodeID     valueobjects.NodeID   `json:"node_id"`
	GrabOffset valueobjects.Position `json:"grab_offset"`
}

// NewDragStarted creates a DragStarted event
func NewDragStarted(sessionID string, nodeID valueobjects.NodeID, offset valueobjects.Position, timestamp time.Time) DragStarted {
	return DragStarted{
		BaseEvent:  newBase(sessionID, TypeDragStarted, timestamp, 1),
		NodeID:     nodeID,
		GrabOffset: offset,
	}
}

// DragEnded is raised when the pointer releases or leaves the canvas
type DragEnded struct {
	BaseEvent
	NodeID   valueobjects.NodeID `json:"node_id"`
	Left     bool                `json:"left_canvas"`
	WasClick bool                `json:"was_click"`
}

// NewDragEnded creates a DragEnded event
func NewDragEnded(sessionID string, nodeID valueobjects.NodeID, left, wasClick bool, timestamp time.Time) DragEnded {
	return DragEnded{
		BaseEvent: newBase(sessionID, TypeDragEnded, timestamp, 1),
		NodeID:    nodeID,
		Left:      left,
		WasClick:  wasClick,
	}
}

// View events

// ZoomChanged is raised when the zoom level changes
type ZoomChanged struct {
	BaseEvent
	Zoom float64 `json:"zoom"`
}

// NewZoomChanged creates a ZoomChanged event
func NewZoomChanged(sessionID string, zoom float64, timestamp time.Time) ZoomChanged {
	return ZoomChanged{
		BaseEvent: newBase(sessionID, TypeZoomChanged, timestamp, 1),
		Zoom:      zoom,
	}
}

// RoleColorChanged is raised when a role color in the scheme changes
type RoleColorChanged struct {
	BaseEvent
	Role  string             `json:"role"`
	Color valueobjects.Color `json:"color"`
}

// NewRoleColorChanged creates a RoleColorChanged event
func NewRoleColorChanged(sessionID, role string, color valueobjects.Color, timestamp time.Time) RoleColorChanged {
	return RoleColorChanged{
		BaseEvent: newBase(sessionID, TypeRoleColorChanged, timestamp, 1),
		Role:      role,
		Color:     color,
	}
}

// Session events

// PhaseChanged is raised when the session lifecycle advances
type PhaseChanged struct {
	BaseEvent
	From string `json:"from"`
	To   string `json:"to"`
}

// NewPhaseChanged creates a PhaseChanged event
func NewPhaseChanged(sessionID, from, to string, timestamp time.Time) PhaseChanged {
	return PhaseChanged{
		BaseEvent: newBase(sessionID, TypePhaseChanged, timestamp, 1),
		From:      from,
		To:        to,
	}
}
