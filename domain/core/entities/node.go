package entities

import (
	"time"

	"mindmapx/domain/core/valueobjects"
	pkgerrors "mindmapx/pkg/errors"
)

// Node is one idea on the canvas.
// Fields are private; the owning MindMap is the only writer.
type Node struct {
	id        valueobjects.NodeID
	label     valueobjects.Label
	position  valueobjects.Position
	isRoot    bool
	color     valueobjects.Color
	createdAt time.Time
	updatedAt time.Time
}

// NewNode creates a node with business rule validation
func NewNode(id valueobjects.NodeID, label valueobjects.Label, position valueobjects.Position,
	isRoot bool, color valueobjects.Color, now time.Time) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	if label.IsEmpty() {
		return nil, pkgerrors.NewValidationError("node label cannot be empty")
	}
	if !position.IsFinite() {
		return nil, pkgerrors.NewValidationError("node position must be finite")
	}

	return &Node{
		id:        id,
		label:     label,
		position:  position,
		isRoot:    isRoot,
		color:     color,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Label returns the node's text
func (n *Node) Label() valueobjects.Label {
	return n.label
}

// Position returns the node's position
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// IsRoot reports whether this is the map's root idea
func (n *Node) IsRoot() bool {
	return n.isRoot
}

// Color returns the explicit fill override, zero when the role color applies
func (n *Node) Color() valueobjects.Color {
	return n.color
}

func (n *Node) CreatedAt() time.Time { return n.createdAt }
func (n *Node) UpdatedAt() time.Time { return n.updatedAt }

// Relabel replaces the label
func (n *Node) Relabel(label valueobjects.Label, now time.Time) {
	n.label = label
	n.updatedAt = now
}

// Recolor replaces the fill override; the zero Color clears it
func (n *Node) Recolor(color valueobjects.Color, now time.Time) {
	n.color = color
	n.updatedAt = now
}

// MoveTo moves the node to a new position. No clamping is applied.
func (n *Node) MoveTo(position valueobjects.Position, now time.Time) {
	n.position = position
	n.updatedAt = now
}

// Clone returns an independent copy
func (n *Node) Clone() *Node {
	c := *n
	return &c
}
