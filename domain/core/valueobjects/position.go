package valueobjects

import (
	"encoding/json"
	"math"

	pkgerrors "mindmapx/pkg/errors"
)

// Position is a value object representing a point in canvas space
type Position struct {
	x float64
	y float64
}

// NewPosition creates a position with validation
func NewPosition(x, y float64) (Position, error) {
	if !isValidCoordinate(x) || !isValidCoordinate(y) {
		return Position{}, pkgerrors.NewValidationError("invalid coordinates: must be finite numbers")
	}
	return Position{x: x, y: y}, nil
}

// MustPosition is NewPosition for literals known to be finite.
func MustPosition(x, y float64) Position {
	p, err := NewPosition(x, y)
	if err != nil {
		panic(err)
	}
	return p
}

// X returns the X coordinate
func (p Position) X() float64 {
	return p.x
}

// Y returns the Y coordinate
func (p Position) Y() float64 {
	return p.y
}

// Add returns p translated by other
func (p Position) Add(other Position) Position {
	return Position{x: p.x + other.x, y: p.y + other.y}
}

// Sub returns the vector from other to p
func (p Position) Sub(other Position) Position {
	return Position{x: p.x - other.x, y: p.y - other.y}
}

// Scale multiplies both coordinates by f
func (p Position) Scale(f float64) Position {
	return Position{x: p.x * f, y: p.y * f}
}

// Offset returns the point at distance from p in direction angle (radians).
func (p Position) Offset(angle, distance float64) Position {
	return Position{
		x: p.x + math.Cos(angle)*distance,
		y: p.y + math.Sin(angle)*distance,
	}
}

// DistanceTo calculates the Euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	dx := p.x - other.x
	dy := p.y - other.y
	return math.Sqrt(dx*dx + dy*dy)
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	const epsilon = 1e-9
	return math.Abs(p.x-other.x) < epsilon &&
		math.Abs(p.y-other.y) < epsilon
}

// IsFinite reports whether both coordinates are finite
func (p Position) IsFinite() bool {
	return isValidCoordinate(p.x) && isValidCoordinate(p.y)
}

type positionJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MarshalJSON implements json.Marshaler
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(positionJSON{X: p.x, Y: p.y})
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Position) UnmarshalJSON(data []byte) error {
	var raw positionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewPosition(raw.X, raw.Y)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// isValidCoordinate checks if a coordinate is a valid finite number
func isValidCoordinate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
