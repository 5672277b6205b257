// Package viewport converts between screen pointer coordinates and canvas
// coordinates under the current zoom level.
package viewport

import (
	"math"

	"mindmapx/domain/config"
	"mindmapx/domain/core/valueobjects"
)

// Transform holds the zoom level. Every setter clamps and none fail.
type Transform struct {
	zoom     float64
	min, max float64
	step     float64
	def      float64
}

// NewTransform creates a transform at the configured default zoom
func NewTransform(cfg *config.DomainConfig) *Transform {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &Transform{
		zoom: cfg.DefaultZoom,
		min:  cfg.MinZoom,
		max:  cfg.MaxZoom,
		step: cfg.ZoomStep,
		def:  cfg.DefaultZoom,
	}
}

// Zoom returns the current zoom level
func (t *Transform) Zoom() float64 {
	return t.zoom
}

// SetZoom sets the zoom, clamped into [min, max]
func (t *Transform) SetZoom(level float64) float64 {
	if math.IsNaN(level) {
		level = t.def
	}
	t.zoom = round1(clamp(level, t.min, t.max))
	return t.zoom
}

// ZoomIn steps the zoom up by one increment
func (t *Transform) ZoomIn() float64 {
	return t.SetZoom(t.zoom + t.step)
}

// ZoomOut steps the zoom down by one increment
func (t *Transform) ZoomOut() float64 {
	return t.SetZoom(t.zoom - t.step)
}

// ResetZoom restores the default zoom
func (t *Transform) ResetZoom() float64 {
	return t.SetZoom(t.def)
}

// PointerToCanvas maps a pointer position into canvas space at the current zoom
func (t *Transform) PointerToCanvas(pointer, viewportOrigin valueobjects.Position) valueobjects.Position {
	return PointerToCanvas(pointer, viewportOrigin, t.zoom)
}

// PointerToCanvas computes (pointer - viewportOrigin) / zoom.
func PointerToCanvas(pointer, viewportOrigin valueobjects.Position, zoom float64) valueobjects.Position {
	return pointer.Sub(viewportOrigin).Scale(1 / zoom)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round1 snaps to one decimal so repeated ±0.1 steps do not drift
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
