package aggregates

import (
	"fmt"

	"mindmapx/domain/core/valueobjects"
	pkgerrors "mindmapx/pkg/errors"
)

// NodeSnapshot is an immutable copy of one node
type NodeSnapshot struct {
	ID       valueobjects.NodeID
	Label    string
	Position valueobjects.Position
	IsRoot   bool
	Color    valueobjects.Color
}

// EdgeSnapshot is an immutable copy of one edge
type EdgeSnapshot struct {
	ID       valueobjects.EdgeID
	SourceID valueobjects.NodeID
	TargetID valueobjects.NodeID
}

// Snapshot is a point-in-time copy of a mind map. Nodes are in creation order.
type Snapshot struct {
	Nodes []NodeSnapshot
	Edges []EdgeSnapshot
}

// Node finds a node by id
func (s Snapshot) Node(id valueobjects.NodeID) (NodeSnapshot, bool) {
	for _, n := range s.Nodes {
		if n.ID.Equals(id) {
			return n, true
		}
	}
	return NodeSnapshot{}, false
}

// Root returns the root node, if present
func (s Snapshot) Root() (NodeSnapshot, bool) {
	for _, n := range s.Nodes {
		if n.IsRoot {
			return n, true
		}
	}
	return NodeSnapshot{}, false
}

// Endpoints resolves both ends of e. A missing end yields a reference error.
func (s Snapshot) Endpoints(e EdgeSnapshot) (NodeSnapshot, NodeSnapshot, error) {
	src, ok := s.Node(e.SourceID)
	if !ok {
		return NodeSnapshot{}, NodeSnapshot{}, pkgerrors.NewReferenceError(pkgerrors.CodeEdgeEndpointMissing, e.SourceID.String())
	}
	dst, ok := s.Node(e.TargetID)
	if !ok {
		return NodeSnapshot{}, NodeSnapshot{}, pkgerrors.NewReferenceError(pkgerrors.CodeEdgeEndpointMissing, e.TargetID.String())
	}
	return src, dst, nil
}

// Children maps each node id to its child ids, in edge order
func (s Snapshot) Children() map[valueobjects.NodeID][]valueobjects.NodeID {
	out := make(map[valueobjects.NodeID][]valueobjects.NodeID)
	for _, e := range s.Edges {
		out[e.SourceID] = append(out[e.SourceID], e.TargetID)
	}
	return out
}

// Depth returns the number of levels below and including the root.
// An empty snapshot has depth 0.
func (s Snapshot) Depth() int {
	root, ok := s.Root()
	if !ok {
		return 0
	}
	children := s.Children()
	depth := 0
	level := []valueobjects.NodeID{root.ID}
	seen := map[valueobjects.NodeID]bool{root.ID: true}
	for len(level) > 0 {
		depth++
		var next []valueobjects.NodeID
		for _, id := range level {
			for _, c := range children[id] {
				if !seen[c] {
					seen[c] = true
					next = append(next, c)
				}
			}
		}
		level = next
	}
	return depth
}

// Validate checks the rooted-tree invariants: a single root, unique ids,
// resolvable edge endpoints, exactly one parent edge per non-root node,
// and every node reachable from the root.
func (s Snapshot) Validate() error {
	idx := make(map[valueobjects.NodeID]NodeSnapshot, len(s.Nodes))
	roots := 0
	for _, n := range s.Nodes {
		if _, dup := idx[n.ID]; dup {
			return pkgerrors.NewInvariantViolation(pkgerrors.CodeDuplicateID, fmt.Sprintf("node id %q appears twice", n.ID))
		}
		idx[n.ID] = n
		if n.IsRoot {
			roots++
		}
	}
	if roots != 1 {
		return pkgerrors.NewInvariantViolation(pkgerrors.CodeRootCount, fmt.Sprintf("expected exactly one root, found %d", roots))
	}

	edgeIDs := make(map[valueobjects.EdgeID]bool, len(s.Edges))
	targets := make(map[valueobjects.NodeID]bool, len(s.Edges))
	for _, e := range s.Edges {
		if edgeIDs[e.ID] {
			return pkgerrors.NewInvariantViolation(pkgerrors.CodeDuplicateID, fmt.Sprintf("edge id %q appears twice", e.ID))
		}
		edgeIDs[e.ID] = true

		if _, ok := idx[e.SourceID]; !ok {
			return pkgerrors.NewInvariantViolation(pkgerrors.CodeEdgeEndpointMissing, fmt.Sprintf("edge %q source %q missing", e.ID, e.SourceID))
		}
		target, ok := idx[e.TargetID]
		if !ok {
			return pkgerrors.NewInvariantViolation(pkgerrors.CodeEdgeEndpointMissing, fmt.Sprintf("edge %q target %q missing", e.ID, e.TargetID))
		}
		if target.IsRoot {
			return pkgerrors.NewInvariantViolation(pkgerrors.CodeDuplicateTarget, "root must not be the target of an edge")
		}
		if targets[e.TargetID] {
			return pkgerrors.NewInvariantViolation(pkgerrors.CodeDuplicateTarget, fmt.Sprintf("node %q has more than one parent", e.TargetID))
		}
		targets[e.TargetID] = true
	}

	for _, n := range s.Nodes {
		if !n.IsRoot && !targets[n.ID] {
			return pkgerrors.NewInvariantViolation(pkgerrors.CodeOrphanNode, fmt.Sprintf("node %q has no parent", n.ID))
		}
	}

	// One parent each plus one root still admits a detached cycle; walk from the root.
	root, _ := s.Root()
	children := s.Children()
	seen := map[valueobjects.NodeID]bool{root.ID: true}
	stack := []valueobjects.NodeID{root.ID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range children[id] {
			if !seen[c] {
				seen[c] = true
				stack = append(stack, c)
			}
		}
	}
	if len(seen) != len(s.Nodes) {
		return pkgerrors.NewInvariantViolation(pkgerrors.CodeOrphanNode,
			fmt.Sprintf("%d nodes unreachable from root", len(s.Nodes)-len(seen)))
	}
	return nil
}
