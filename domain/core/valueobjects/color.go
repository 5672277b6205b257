package valueobjects

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	pkgerrors "mindmapx/pkg/errors"
)

// Color is a hex "#RRGGBB" fill color. The zero value means "no override".
type Color struct {
	hex string
}

// NewColor parses "#RGB" or "#RRGGBB" (case-insensitive) into its canonical upper-case long form.
func NewColor(hex string) (Color, error) {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		return Color{}, pkgerrors.NewValidationError(fmt.Sprintf("color %q must start with #", hex))
	}
	digits := hex[1:]
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	if len(digits) != 6 {
		return Color{}, pkgerrors.NewValidationError(fmt.Sprintf("color %q must have 3 or 6 hex digits", hex))
	}
	if _, err := strconv.ParseUint(digits, 16, 32); err != nil {
		return Color{}, pkgerrors.NewValidationError(fmt.Sprintf("color %q is not valid hex", hex))
	}
	return Color{hex: "#" + strings.ToUpper(digits)}, nil
}

// MustColor is NewColor for literals known to be valid.
func MustColor(hex string) Color {
	c, err := NewColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseOptionalColor treats the empty string as "no override".
func ParseOptionalColor(hex string) (Color, error) {
	if strings.TrimSpace(hex) == "" {
		return Color{}, nil
	}
	return NewColor(hex)
}

// String returns the canonical hex form, or "" for the zero value
func (c Color) String() string {
	return c.hex
}

// IsZero reports whether no color is set
func (c Color) IsZero() bool {
	return c.hex == ""
}

// Equals checks if two colors are equal
func (c Color) Equals(other Color) bool {
	return c.hex == other.hex
}

// Or returns c, or fallback when c is unset.
func (c Color) Or(fallback Color) Color {
	if c.IsZero() {
		return fallback
	}
	return c
}

// RGBA converts the color for image rendering. The zero value is transparent.
func (c Color) RGBA() color.RGBA {
	if c.IsZero() {
		return color.RGBA{}
	}
	v, _ := strconv.ParseUint(c.hex[1:], 16, 32)
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// MarshalJSON implements json.Marshaler
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.hex)
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Color) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return pkgerrors.NewValidationError("color must be a string")
	}
	parsed, err := ParseOptionalColor(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
