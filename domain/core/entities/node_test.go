package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmapx/domain/core/valueobjects"
)

func TestNewNode(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	id, _ := valueobjects.NewNodeIDFromString("n1")

	tests := []struct {
		name    string
		id      valueobjects.NodeID
		label   valueobjects.Label
		wantErr bool
	}{
		{name: "valid child", id: id, label: valueobjects.MustLabel("Feature 1")},
		{name: "missing id", label: valueobjects.MustLabel("Feature 1"), wantErr: true},
		{name: "missing label", id: id, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := NewNode(tt.id, tt.label, valueobjects.MustPosition(1, 2), false, valueobjects.Color{}, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Feature 1", node.Label().String())
			assert.False(t, node.IsRoot())
			assert.True(t, node.Color().IsZero())
			assert.Equal(t, now, node.CreatedAt())
		})
	}
}

func TestNodeMutationsAndClone(t *testing.T) {
	start := time.Unix(0, 0)
	node, err := NewNode(valueobjects.Root(), valueobjects.MustLabel("Central Idea"),
		valueobjects.MustPosition(400, 300), true, valueobjects.MustColor("#F05A5B"), start)
	require.NoError(t, err)

	clone := node.Clone()
	later := start.Add(time.Minute)
	node.Relabel(valueobjects.MustLabel("Big Plan"), later)
	node.Recolor(valueobjects.Color{}, later)
	node.MoveTo(valueobjects.MustPosition(-5000, 9000), later)

	assert.Equal(t, "Big Plan", node.Label().String())
	assert.True(t, node.Color().IsZero())
	assert.True(t, node.Position().Equals(valueobjects.MustPosition(-5000, 9000)))
	assert.Equal(t, later, node.UpdatedAt())

	assert.Equal(t, "Central Idea", clone.Label().String())
	assert.Equal(t, "#F05A5B", clone.Color().String())
}

func TestNewEdge(t *testing.T) {
	child, _ := valueobjects.NewNodeIDFromString("n1")

	edge, err := NewEdge(valueobjects.Root(), child)
	require.NoError(t, err)
	assert.Equal(t, "root-n1", edge.ID().String())
	assert.True(t, edge.Touches(child))
	assert.True(t, edge.Touches(valueobjects.Root()))

	_, err = NewEdge(child, child)
	assert.Error(t, err)
}
