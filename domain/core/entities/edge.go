package entities

import (
	"mindmapx/domain/core/valueobjects"
	pkgerrors "mindmapx/pkg/errors"
)

// Edge links a parent idea to one of its children. Edges are immutable.
type Edge struct {
	id       valueobjects.EdgeID
	sourceID valueobjects.NodeID
	targetID valueobjects.NodeID
}

// NewEdge creates the edge from parent to child with the composed id
func NewEdge(parent, child valueobjects.NodeID) (*Edge, error) {
	return NewEdgeWithID(valueobjects.NewEdgeID(parent, child), parent, child)
}

// NewEdgeWithID creates an edge carrying an existing id, as read from a document
func NewEdgeWithID(id valueobjects.EdgeID, parent, child valueobjects.NodeID) (*Edge, error) {
	if parent.IsZero() || child.IsZero() {
		return nil, pkgerrors.NewValidationError("edge endpoints cannot be empty")
	}
	if parent.Equals(child) {
		return nil, pkgerrors.NewValidationError("cannot connect node to itself")
	}
	return &Edge{id: id, sourceID: parent, targetID: child}, nil
}

func (e *Edge) ID() valueobjects.EdgeID { return e.id }

// SourceID returns the parent end
func (e *Edge) SourceID() valueobjects.NodeID { return e.sourceID }

// TargetID returns the child end
func (e *Edge) TargetID() valueobjects.NodeID { return e.targetID }

// Touches reports whether id is either endpoint
func (e *Edge) Touches(id valueobjects.NodeID) bool {
	return e.sourceID.Equals(id) || e.targetID.Equals(id)
}
