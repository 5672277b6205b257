package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"mindmapx/domain/core/valueobjects"
)

func TestSetZoomClamps(t *testing.T) {
	tests := []struct {
		name  string
		level float64
		want  float64
	}{
		{name: "far above max", level: 10, want: 1.5},
		{name: "below min", level: -5, want: 0.5},
		{name: "inside range", level: 1.2, want: 1.2},
		{name: "exact min", level: 0.5, want: 0.5},
		{name: "NaN falls back to default", level: math.NaN(), want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTransform(nil)
			assert.Equal(t, tt.want, tr.SetZoom(tt.level))
			assert.Equal(t, tt.want, tr.Zoom())
		})
	}
}

func TestZoomSteps(t *testing.T) {
	tr := NewTransform(nil)

	for i := 0; i < 20; i++ {
		tr.ZoomIn()
	}
	assert.Equal(t, 1.5, tr.Zoom())

	for i := 0; i < 3; i++ {
		tr.ZoomOut()
	}
	assert.Equal(t, 1.2, tr.Zoom())

	for i := 0; i < 20; i++ {
		tr.ZoomOut()
	}
	assert.Equal(t, 0.5, tr.Zoom())

	assert.Equal(t, 1.0, tr.ResetZoom())
}

func TestPointerToCanvas(t *testing.T) {
	tests := []struct {
		name    string
		pointer valueobjects.Position
		origin  valueobjects.Position
		zoom    float64
		want    valueobjects.Position
	}{
		{
			name:    "identity at zoom 1",
			pointer: valueobjects.MustPosition(420, 310),
			origin:  valueobjects.MustPosition(0, 0),
			zoom:    1,
			want:    valueobjects.MustPosition(420, 310),
		},
		{
			name:    "offset origin",
			pointer: valueobjects.MustPosition(120, 80),
			origin:  valueobjects.MustPosition(20, 30),
			zoom:    1,
			want:    valueobjects.MustPosition(100, 50),
		},
		{
			name:    "zoomed in halves distances",
			pointer: valueobjects.MustPosition(300, 200),
			origin:  valueobjects.MustPosition(0, 0),
			zoom:    1.5,
			want:    valueobjects.MustPosition(200, 200.0/1.5),
		},
		{
			name:    "zoomed out doubles distances",
			pointer: valueobjects.MustPosition(110, 60),
			origin:  valueobjects.MustPosition(10, 10),
			zoom:    0.5,
			want:    valueobjects.MustPosition(200, 100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PointerToCanvas(tt.pointer, tt.origin, tt.zoom)
			assert.True(t, got.Equals(tt.want), "got (%v,%v)", got.X(), got.Y())
		})
	}
}
