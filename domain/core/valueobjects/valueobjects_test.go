package valueobjects

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmapx/domain/config"
	pkgerrors "mindmapx/pkg/errors"
)

func TestNewPosition(t *testing.T) {
	tests := []struct {
		name    string
		x, y    float64
		wantErr bool
	}{
		{name: "origin", x: 0, y: 0},
		{name: "negative coordinates", x: -100.5, y: -200.75},
		{name: "very large coordinates", x: 1e10, y: -1e10},
		{name: "NaN x", x: math.NaN(), y: 0, wantErr: true},
		{name: "infinite y", x: 0, y: math.Inf(-1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := NewPosition(tt.x, tt.y)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
				assert.Contains(t, err.Error(), "invalid coordinates")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.x, pos.X())
			assert.Equal(t, tt.y, pos.Y())
		})
	}
}

func TestPositionArithmetic(t *testing.T) {
	a := MustPosition(10, 20)
	b := MustPosition(4, 5)

	assert.True(t, a.Add(b).Equals(MustPosition(14, 25)))
	assert.True(t, a.Sub(b).Equals(MustPosition(6, 15)))
	assert.True(t, b.Scale(0.5).Equals(MustPosition(2, 2.5)))
	assert.InDelta(t, 5.0, MustPosition(0, 0).DistanceTo(MustPosition(3, 4)), 1e-9)

	off := MustPosition(400, 300).Offset(math.Pi/2, 150)
	assert.InDelta(t, 400, off.X(), 1e-9)
	assert.InDelta(t, 450, off.Y(), 1e-9)
}

func TestPositionJSON(t *testing.T) {
	data, err := json.Marshal(MustPosition(1.5, -2))
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1.5,"y":-2}`, string(data))

	var p Position
	require.NoError(t, json.Unmarshal([]byte(`{"x":3,"y":4}`), &p))
	assert.True(t, p.Equals(MustPosition(3, 4)))
}

func TestNewColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "long form", input: "#4a90e2", want: "#4A90E2"},
		{name: "short form expands", input: "#abc", want: "#AABBCC"},
		{name: "surrounding spaces", input: "  #F05A5B ", want: "#F05A5B"},
		{name: "missing hash", input: "F05A5B", wantErr: true},
		{name: "bad digits", input: "#GG0000", wantErr: true},
		{name: "wrong length", input: "#1234", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewColor(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.String())
		})
	}
}

func TestColorRGBAAndFallback(t *testing.T) {
	c := MustColor("#0F172A")
	rgba := c.RGBA()
	assert.Equal(t, uint8(0x0F), rgba.R)
	assert.Equal(t, uint8(0x17), rgba.G)
	assert.Equal(t, uint8(0x2A), rgba.B)
	assert.Equal(t, uint8(0xFF), rgba.A)

	var unset Color
	assert.True(t, unset.IsZero())
	assert.Equal(t, c, unset.Or(c))
	assert.Equal(t, c, c.Or(MustColor("#FFFFFF")))

	empty, err := ParseOptionalColor("")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}

func TestNewLabel(t *testing.T) {
	cfg := config.DefaultDomainConfig()

	l, err := NewLabelWithConfig("  Feature 1  ", cfg)
	require.NoError(t, err)
	assert.Equal(t, "Feature 1", l.String())

	_, err = NewLabelWithConfig("   ", cfg)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewLabelWithConfig(strings.Repeat("x", cfg.MaxLabelLength+1), cfg)
	require.Error(t, err)
}

func TestLabelDisplay(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{name: "short label unchanged", label: "Export Options", want: "Export Options"},
		{name: "exactly twenty runes", label: "abcdefghijklmnopqrst", want: "abcdefghijklmnopqrst"},
		{name: "long label truncated", label: "Visual Organization Tool", want: "Visual Organization ..."},
		{name: "multibyte runes", label: "ééééééééééééééééééééé", want: "éééééééééééééééééééé..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MustLabel(tt.label).Display(20))
		})
	}
}

func TestNodeIDs(t *testing.T) {
	id, err := NewNodeIDFromString("1712345678901")
	require.NoError(t, err)
	assert.Equal(t, "1712345678901", id.String())

	_, err = NewNodeIDFromString("")
	assert.Error(t, err)
	_, err = NewNodeIDFromString("a b")
	assert.Error(t, err)

	assert.False(t, NewNodeID().Equals(NewNodeID()))
	assert.Equal(t, RootNodeID, Root().String())

	edge := NewEdgeID(Root(), id)
	assert.Equal(t, "root-1712345678901", edge.String())
}

func TestNodeIDJSON(t *testing.T) {
	data, err := json.Marshal(MustNodeIDForTest(t, "n7"))
	require.NoError(t, err)
	assert.Equal(t, `"n7"`, string(data))

	var id NodeID
	require.NoError(t, json.Unmarshal([]byte(`"n8"`), &id))
	assert.Equal(t, "n8", id.String())
	assert.Error(t, json.Unmarshal([]byte(`42`), &id))
}

func TestSequenceGenerator(t *testing.T) {
	gen := NewSequenceGenerator("n")
	assert.Equal(t, "n1", gen.NextNodeID().String())
	assert.Equal(t, "n2", gen.NextNodeID().String())
}

func MustNodeIDForTest(t *testing.T, s string) NodeID {
	t.Helper()
	id, err := NewNodeIDFromString(s)
	require.NoError(t, err)
	return id
}
