package valueobjects

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	pkgerrors "mindmapx/pkg/errors"
)

// RootNodeID is the fixed id of the root idea created by every reset.
const RootNodeID = "root"

// NodeID is a value object representing a unique node identifier
// Value objects are immutable and have no identity beyond their value
type NodeID struct {
	value string
}

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID{value: uuid.New().String()}
}

// NewNodeIDFromString creates a NodeID from an existing string.
// Any non-blank token is accepted so imported documents keep their ids.
func NewNodeIDFromString(id string) (NodeID, error) {
	if strings.TrimSpace(id) == "" {
		return NodeID{}, pkgerrors.NewValidationError("node ID cannot be empty")
	}
	if strings.ContainsAny(id, " \t\r\n") {
		return NodeID{}, pkgerrors.NewValidationError("node ID must not contain whitespace")
	}
	return NodeID{value: id}, nil
}

// Root returns the id of the root idea.
func Root() NodeID {
	return NodeID{value: RootNodeID}
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return id.value
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id NodeID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return pkgerrors.NewValidationError("NodeID must be a string")
	}
	parsed, err := NewNodeIDFromString(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// EdgeID identifies the single edge that attaches a child to its parent.
type EdgeID struct {
	value string
}

// NewEdgeID composes "<parent>-<child>"; unique because child ids are.
func NewEdgeID(parent, child NodeID) EdgeID {
	return EdgeID{value: parent.value + "-" + child.value}
}

// NewEdgeIDFromString wraps an imported edge id.
func NewEdgeIDFromString(id string) (EdgeID, error) {
	if strings.TrimSpace(id) == "" {
		return EdgeID{}, pkgerrors.NewValidationError("edge ID cannot be empty")
	}
	return EdgeID{value: id}, nil
}

func (id EdgeID) String() string { return id.value }

func (id EdgeID) Equals(other EdgeID) bool { return id.value == other.value }

func (id EdgeID) IsZero() bool { return id.value == "" }

// MarshalJSON implements json.Marshaler
func (id EdgeID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *EdgeID) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return pkgerrors.NewValidationError("EdgeID must be a string")
	}
	parsed, err := NewEdgeIDFromString(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IDGenerator hands out node ids for newly added children.
type IDGenerator interface {
	NextNodeID() NodeID
}

// UUIDGenerator generates random UUID node ids.
type UUIDGenerator struct{}

// NextNodeID implements IDGenerator
func (UUIDGenerator) NextNodeID() NodeID {
	return NewNodeID()
}

// SequenceGenerator generates predictable ids ("n1", "n2", ...).
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequenceGenerator creates a generator whose ids start with prefix.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "n"
	}
	return &SequenceGenerator{prefix: prefix, next: 1}
}

// NextNodeID implements IDGenerator
func (g *SequenceGenerator) NextNodeID() NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := NodeID{value: fmt.Sprintf("%s%d", g.prefix, g.next)}
	g.next++
	return id
}
