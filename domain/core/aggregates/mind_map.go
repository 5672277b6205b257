package aggregates

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"mindmapx/domain/config"
	"mindmapx/domain/core/entities"
	"mindmapx/domain/core/valueobjects"
	"mindmapx/domain/events"
	pkgerrors "mindmapx/pkg/errors"
)

// MapID identifies one mind map
type MapID string

// NewMapID creates a new random MapID
func NewMapID() MapID {
	return MapID(uuid.New().String())
}

// String returns the string representation
func (id MapID) String() string {
	return string(id)
}

// RandomSource supplies placement angles; *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// MindMap is the aggregate root holding the idea tree.
// It is not safe for concurrent use; callers serialize access.
type MindMap struct {
	id     MapID
	cfg    *config.DomainConfig
	nodes  map[valueobjects.NodeID]*entities.Node
	order  []valueobjects.NodeID
	edges  []*entities.Edge
	parent map[valueobjects.NodeID]*entities.Edge

	ids   valueobjects.IDGenerator
	rng   RandomSource
	clock func() time.Time

	version int
	events  []events.DomainEvent
}

// Option configures a MindMap at construction
type Option func(*MindMap)

// WithIDGenerator overrides the uuid node id generator
func WithIDGenerator(gen valueobjects.IDGenerator) Option {
	return func(m *MindMap) { m.ids = gen }
}

// WithRandomSource overrides the placement angle source
func WithRandomSource(rng RandomSource) Option {
	return func(m *MindMap) { m.rng = rng }
}

// WithClock overrides time.Now
func WithClock(clock func() time.Time) Option {
	return func(m *MindMap) { m.clock = clock }
}

// NewMindMap creates a map holding only the root idea, colored rootColor.
func NewMindMap(id MapID, cfg *config.DomainConfig, rootColor valueobjects.Color, opts ...Option) *MindMap {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if id == "" {
		id = NewMapID()
	}
	m := &MindMap{
		id:    id,
		cfg:   cfg,
		ids:   valueobjects.UUIDGenerator{},
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.restoreRoot(rootColor)
	return m
}

// ID returns the map's identifier
func (m *MindMap) ID() MapID {
	return m.id
}

// Version increments on every mutation
func (m *MindMap) Version() int {
	return m.version
}

// NodeCount returns the number of nodes
func (m *MindMap) NodeCount() int {
	return len(m.order)
}

// EdgeCount returns the number of edges
func (m *MindMap) EdgeCount() int {
	return len(m.edges)
}

// Node returns a copy of the node with id
func (m *MindMap) Node(id valueobjects.NodeID) (*entities.Node, error) {
	node, ok := m.nodes[id]
	if !ok {
		return nil, pkgerrors.NewReferenceError(pkgerrors.CodeNodeNotFound, id.String())
	}
	return node.Clone(), nil
}

// HasNode reports whether id is present
func (m *MindMap) HasNode(id valueobjects.NodeID) bool {
	_, ok := m.nodes[id]
	return ok
}

// RootID returns the id of the root idea
func (m *MindMap) RootID() valueobjects.NodeID {
	return valueobjects.Root()
}

// AddNode attaches a new child under parentID at a random angle, distance
// ChildDistance*zoom from the parent. Node and edge are inserted together.
func (m *MindMap) AddNode(parentID valueobjects.NodeID, label valueobjects.Label, color valueobjects.Color, zoom float64) (valueobjects.NodeID, error) {
	parent, ok := m.nodes[parentID]
	if !ok {
		return valueobjects.NodeID{}, pkgerrors.NewReferenceError(pkgerrors.CodeParentNotFound, parentID.String())
	}
	if label.IsEmpty() {
		return valueobjects.NodeID{}, pkgerrors.NewValidationError("label cannot be empty")
	}
	if m.cfg.MaxNodesPerMap > 0 && len(m.order) >= m.cfg.MaxNodesPerMap {
		return valueobjects.NodeID{}, pkgerrors.NewConflictError(
			fmt.Sprintf("mind map already holds the maximum of %d ideas", m.cfg.MaxNodesPerMap))
	}

	childID := m.ids.NextNodeID()
	if _, taken := m.nodes[childID]; taken {
		return valueobjects.NodeID{}, pkgerrors.NewInvariantViolation(pkgerrors.CodeDuplicateID,
			fmt.Sprintf("generated node id %q already exists", childID))
	}

	angle := m.rng.Float64() * 2 * math.Pi
	pos := parent.Position().Offset(angle, m.cfg.ChildDistance()*zoom)

	now := m.clock()
	child, err := entities.NewNode(childID, label, pos, false, color, now)
	if err != nil {
		return valueobjects.NodeID{}, err
	}
	edge, err := entities.NewEdge(parentID, childID)
	if err != nil {
		return valueobjects.NodeID{}, err
	}

	m.nodes[childID] = child
	m.order = append(m.order, childID)
	m.edges = append(m.edges, edge)
	m.parent[childID] = edge
	m.version++

	m.addEvent(events.NewNodeAdded(m.id.String(), m.version, childID, parentID, edge.ID(),
		label.String(), pos, color, now))

	return childID, nil
}

// EditNode overwrites the label and/or color; nil leaves a field unchanged.
// A zero Color clears the override. Position is untouched.
func (m *MindMap) EditNode(id valueobjects.NodeID, label *valueobjects.Label, color *valueobjects.Color) error {
	node, ok := m.nodes[id]
	if !ok {
		return pkgerrors.NewReferenceError(pkgerrors.CodeNodeNotFound, id.String())
	}
	if label != nil && label.IsEmpty() {
		return pkgerrors.NewValidationError("label cannot be empty")
	}

	now := m.clock()
	oldLabel := node.Label().String()
	if label != nil {
		node.Relabel(*label, now)
	}
	if color != nil {
		node.Recolor(*color, now)
	}
	m.version++

	m.addEvent(events.NewNodeEdited(m.id.String(), m.version, id, oldLabel, node.Label().String(), node.Color(), now))
	return nil
}

// MoveNode sets the node's position without clamping
func (m *MindMap) MoveNode(id valueobjects.NodeID, pos valueobjects.Position) error {
	node, ok := m.nodes[id]
	if !ok {
		return pkgerrors.NewReferenceError(pkgerrors.CodeNodeNotFound, id.String())
	}

	now := m.clock()
	old := node.Position()
	node.MoveTo(pos, now)
	m.version++

	m.addEvent(events.NewNodeMoved(m.id.String(), m.version, id, old, pos, now))
	return nil
}

// Reset discards every node and edge and recreates the root.
func (m *MindMap) Reset(rootColor valueobjects.Color) {
	m.restoreRoot(rootColor)
	m.version++
	m.addEvent(events.NewMapReset(m.id.String(), m.version, valueobjects.Root(), m.clock()))
}

func (m *MindMap) restoreRoot(rootColor valueobjects.Color) {
	now := m.clock()
	root, err := entities.NewNode(
		valueobjects.Root(),
		valueobjects.MustLabel(m.cfg.RootLabel),
		valueobjects.MustPosition(m.cfg.RootX, m.cfg.RootY),
		true,
		rootColor,
		now,
	)
	if err != nil {
		// Only reachable with a blank RootLabel in config
		panic(err)
	}
	m.nodes = map[valueobjects.NodeID]*entities.Node{root.ID(): root}
	m.order = []valueobjects.NodeID{root.ID()}
	m.edges = nil
	m.parent = make(map[valueobjects.NodeID]*entities.Edge)
}

// Snapshot returns a deep, read-only copy in insertion order
func (m *MindMap) Snapshot() Snapshot {
	snap := Snapshot{
		Nodes: make([]NodeSnapshot, 0, len(m.order)),
		Edges: make([]EdgeSnapshot, 0, len(m.edges)),
	}
	for _, id := range m.order {
		n := m.nodes[id]
		snap.Nodes = append(snap.Nodes, NodeSnapshot{
			ID:       n.ID(),
			Label:    n.Label().String(),
			Position: n.Position(),
			IsRoot:   n.IsRoot(),
			Color:    n.Color(),
		})
	}
	for _, e := range m.edges {
		snap.Edges = append(snap.Edges, EdgeSnapshot{
			ID:       e.ID(),
			SourceID: e.SourceID(),
			TargetID: e.TargetID(),
		})
	}
	return snap
}

// Validate checks every structural invariant of the tree
func (m *MindMap) Validate() error {
	if len(m.nodes) != len(m.order) {
		return pkgerrors.NewInvariantViolation(pkgerrors.CodeDuplicateID, "node index and insertion order disagree")
	}
	return m.Snapshot().Validate()
}

// Depth returns the number of levels in the tree, the root alone being 1
func (m *MindMap) Depth() int {
	return m.Snapshot().Depth()
}

// GetUncommittedEvents returns all uncommitted domain events
func (m *MindMap) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(m.events))
	copy(out, m.events)
	return out
}

// MarkEventsAsCommitted clears all uncommitted events
func (m *MindMap) MarkEventsAsCommitted() {
	m.events = nil
}

func (m *MindMap) addEvent(event events.DomainEvent) {
	m.events = append(m.events, event)
}
