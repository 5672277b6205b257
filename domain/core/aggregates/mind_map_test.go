package aggregates

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmapx/domain/config"
	"mindmapx/domain/core/valueobjects"
	"mindmapx/domain/events"
	pkgerrors "mindmapx/pkg/errors"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestMap(t *testing.T, cfg *config.DomainConfig, rng RandomSource) *MindMap {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return NewMindMap("map-1", cfg, valueobjects.MustColor(cfg.RootColor),
		WithIDGenerator(valueobjects.NewSequenceGenerator("n")),
		WithRandomSource(rng),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestNewMindMapHoldsOnlyRoot(t *testing.T) {
	m := newTestMap(t, nil, fixedRand(0))

	snap := m.Snapshot()
	require.Len(t, snap.Nodes, 1)
	assert.Empty(t, snap.Edges)

	root := snap.Nodes[0]
	assert.True(t, root.IsRoot)
	assert.Equal(t, "Central Idea", root.Label)
	assert.True(t, root.Position.Equals(valueobjects.MustPosition(400, 300)))
	assert.Equal(t, "#F05A5B", root.Color.String())
	assert.NoError(t, m.Validate())
	assert.Equal(t, 1, m.Depth())
}

func TestAddNodePlacement(t *testing.T) {
	tests := []struct {
		name     string
		layout   config.Layout
		zoom     float64
		rand     float64
		wantDist float64
	}{
		{name: "full layout at zoom 1", layout: config.LayoutFull, zoom: 1.0, rand: 0, wantDist: 150},
		{name: "full layout zoomed in", layout: config.LayoutFull, zoom: 1.5, rand: 0.25, wantDist: 225},
		{name: "compact layout zoomed out", layout: config.LayoutCompact, zoom: 0.5, rand: 0.6, wantDist: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultDomainConfig()
			cfg.Layout = tt.layout
			m := newTestMap(t, cfg, fixedRand(tt.rand))

			id, err := m.AddNode(valueobjects.Root(), valueobjects.MustLabel("Feature 1"), valueobjects.Color{}, tt.zoom)
			require.NoError(t, err)

			child, err := m.Node(id)
			require.NoError(t, err)
			parent, err := m.Node(valueobjects.Root())
			require.NoError(t, err)

			assert.InDelta(t, tt.wantDist, child.Position().DistanceTo(parent.Position()), 1e-9)
			assert.False(t, child.IsRoot())
			assert.True(t, child.Color().IsZero())
		})
	}
}

func TestAddNodeBasicExpansion(t *testing.T) {
	m := newTestMap(t, nil, rand.New(rand.NewSource(7)))

	id, err := m.AddNode(valueobjects.Root(), valueobjects.MustLabel("Feature 1"), valueobjects.Color{}, 1.0)
	require.NoError(t, err)

	snap := m.Snapshot()
	require.Len(t, snap.Nodes, 2)
	require.Len(t, snap.Edges, 1)
	assert.Equal(t, valueobjects.Root(), snap.Edges[0].SourceID)
	assert.Equal(t, id, snap.Edges[0].TargetID)
	assert.Equal(t, "root-n1", snap.Edges[0].ID.String())
	assert.Equal(t, 2, m.Depth())

	evts := m.GetUncommittedEvents()
	require.Len(t, evts, 1)
	added, ok := evts[0].(events.NodeAdded)
	require.True(t, ok)
	assert.Equal(t, events.TypeNodeAdded, added.GetEventType())
	assert.Equal(t, id, added.NodeID)

	m.MarkEventsAsCommitted()
	assert.Empty(t, m.GetUncommittedEvents())
}

func TestAddNodeUnknownParent(t *testing.T) {
	m := newTestMap(t, nil, fixedRand(0))
	ghost, _ := valueobjects.NewNodeIDFromString("ghost")

	_, err := m.AddNode(ghost, valueobjects.MustLabel("x"), valueobjects.Color{}, 1)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsReference(err))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeParentNotFound))
	assert.Equal(t, 1, m.NodeCount())
	assert.Equal(t, 0, m.EdgeCount())
}

func TestAddNodeRespectsCapacity(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxNodesPerMap = 2
	m := newTestMap(t, cfg, fixedRand(0))

	_, err := m.AddNode(valueobjects.Root(), valueobjects.MustLabel("a"), valueobjects.Color{}, 1)
	require.NoError(t, err)
	_, err = m.AddNode(valueobjects.Root(), valueobjects.MustLabel("b"), valueobjects.Color{}, 1)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestEditNode(t *testing.T) {
	m := newTestMap(t, nil, fixedRand(0))
	id, err := m.AddNode(valueobjects.Root(), valueobjects.MustLabel("Feature 1"), valueobjects.Color{}, 1)
	require.NoError(t, err)
	before, _ := m.Node(id)

	label := valueobjects.MustLabel("Feature One")
	color := valueobjects.MustColor("#7B61FF")
	require.NoError(t, m.EditNode(id, &label, &color))

	after, _ := m.Node(id)
	assert.Equal(t, "Feature One", after.Label().String())
	assert.Equal(t, "#7B61FF", after.Color().String())
	assert.True(t, before.Position().Equals(after.Position()))

	// Label-only edit keeps the color
	label2 := valueobjects.MustLabel("Feature Uno")
	require.NoError(t, m.EditNode(id, &label2, nil))
	after, _ = m.Node(id)
	assert.Equal(t, "#7B61FF", after.Color().String())

	ghost, _ := valueobjects.NewNodeIDFromString("ghost")
	err = m.EditNode(ghost, &label, nil)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNodeNotFound))
}

func TestMoveNodeIsUnclamped(t *testing.T) {
	m := newTestMap(t, nil, fixedRand(0))
	far := valueobjects.MustPosition(-1e6, 1e6)

	require.NoError(t, m.MoveNode(valueobjects.Root(), far))
	root, _ := m.Node(valueobjects.Root())
	assert.True(t, root.Position().Equals(far))

	ghost, _ := valueobjects.NewNodeIDFromString("ghost")
	assert.True(t, pkgerrors.IsReference(m.MoveNode(ghost, far)))
}

func TestResetIsIdempotent(t *testing.T) {
	m := newTestMap(t, nil, fixedRand(0.5))
	parent := valueobjects.Root()
	for i := 0; i < 5; i++ {
		id, err := m.AddNode(parent, valueobjects.MustLabel("idea"), valueobjects.Color{}, 1)
		require.NoError(t, err)
		parent = id
	}
	require.NoError(t, m.MoveNode(valueobjects.Root(), valueobjects.MustPosition(1, 1)))

	rootColor := valueobjects.MustColor("#F05A5B")
	m.Reset(rootColor)
	once := m.Snapshot()
	m.Reset(rootColor)
	twice := m.Snapshot()

	assert.Equal(t, once, twice)
	require.Len(t, once.Nodes, 1)
	assert.True(t, once.Nodes[0].Position.Equals(valueobjects.MustPosition(400, 300)))
	assert.Empty(t, once.Edges)
}

func TestSnapshotIsACopy(t *testing.T) {
	m := newTestMap(t, nil, fixedRand(0))
	snap := m.Snapshot()
	snap.Nodes[0].Label = "mutated"

	root, _ := m.Node(valueobjects.Root())
	assert.Equal(t, "Central Idea", root.Label().String())
}

func TestTreeInvariantsHoldUnderRandomEditing(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	m := newTestMap(t, nil, rng)
	ids := []valueobjects.NodeID{valueobjects.Root()}

	for i := 0; i < 200; i++ {
		switch rng.Intn(4) {
		case 0, 1:
			parent := ids[rng.Intn(len(ids))]
			id, err := m.AddNode(parent, valueobjects.MustLabel("idea"), valueobjects.Color{}, 0.5+rng.Float64())
			require.NoError(t, err)
			ids = append(ids, id)
		case 2:
			target := ids[rng.Intn(len(ids))]
			require.NoError(t, m.MoveNode(target, valueobjects.MustPosition(rng.Float64()*800, rng.Float64()*600)))
		case 3:
			label := valueobjects.MustLabel("edited")
			require.NoError(t, m.EditNode(ids[rng.Intn(len(ids))], &label, nil))
		}

		snap := m.Snapshot()
		roots := 0
		for _, n := range snap.Nodes {
			if n.IsRoot {
				roots++
			}
		}
		require.Equal(t, 1, roots)

		targets := map[valueobjects.NodeID]bool{}
		for _, e := range snap.Edges {
			require.False(t, targets[e.TargetID], "duplicate edge target %s", e.TargetID)
			targets[e.TargetID] = true
		}
		require.NoError(t, m.Validate())
	}
}

func TestSnapshotValidateRejectsBrokenTrees(t *testing.T) {
	a, _ := valueobjects.NewNodeIDFromString("a")
	b, _ := valueobjects.NewNodeIDFromString("b")
	root := NodeSnapshot{ID: valueobjects.Root(), Label: "Central Idea", IsRoot: true}
	na := NodeSnapshot{ID: a, Label: "a"}
	nb := NodeSnapshot{ID: b, Label: "b"}

	tests := []struct {
		name string
		snap Snapshot
		code string
	}{
		{
			name: "no root",
			snap: Snapshot{Nodes: []NodeSnapshot{na}},
			code: pkgerrors.CodeRootCount,
		},
		{
			name: "two roots",
			snap: Snapshot{Nodes: []NodeSnapshot{root, {ID: a, IsRoot: true}}},
			code: pkgerrors.CodeRootCount,
		},
		{
			name: "dangling edge",
			snap: Snapshot{Nodes: []NodeSnapshot{root}, Edges: []EdgeSnapshot{{ID: valueobjects.NewEdgeID(valueobjects.Root(), a), SourceID: valueobjects.Root(), TargetID: a}}},
			code: pkgerrors.CodeEdgeEndpointMissing,
		},
		{
			name: "two parents",
			snap: Snapshot{
				Nodes: []NodeSnapshot{root, na, nb},
				Edges: []EdgeSnapshot{
					{ID: valueobjects.NewEdgeID(valueobjects.Root(), a), SourceID: valueobjects.Root(), TargetID: a},
					{ID: valueobjects.NewEdgeID(valueobjects.Root(), b), SourceID: valueobjects.Root(), TargetID: b},
					{ID: valueobjects.NewEdgeID(a, b), SourceID: a, TargetID: b},
				},
			},
			code: pkgerrors.CodeDuplicateTarget,
		},
		{
			name: "orphan",
			snap: Snapshot{Nodes: []NodeSnapshot{root, na}},
			code: pkgerrors.CodeOrphanNode,
		},
		{
			name: "detached cycle",
			snap: Snapshot{
				Nodes: []NodeSnapshot{root, na, nb},
				Edges: []EdgeSnapshot{
					{ID: valueobjects.NewEdgeID(a, b), SourceID: a, TargetID: b},
					{ID: valueobjects.NewEdgeID(b, a), SourceID: b, TargetID: a},
				},
			},
			code: pkgerrors.CodeOrphanNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate()
			require.Error(t, err)
			assert.True(t, pkgerrors.IsInvariant(err))
			assert.True(t, pkgerrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}
