package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"mindmapx/domain/config"
	pkgerrors "mindmapx/pkg/errors"
)

// Label is the trimmed, non-empty text of an idea
type Label struct {
	text string
}

// NewLabel creates a label with validation using default configuration
func NewLabel(text string) (Label, error) {
	return NewLabelWithConfig(text, config.DefaultDomainConfig())
}

// NewLabelWithConfig creates a label with validation and configuration
func NewLabelWithConfig(text string, cfg *config.DomainConfig) (Label, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Label{}, pkgerrors.NewValidationError("label cannot be empty")
	}

	if utf8.RuneCountInString(text) > cfg.MaxLabelLength {
		return Label{}, pkgerrors.NewValidationError(
			fmt.Sprintf("label exceeds maximum length of %d characters", cfg.MaxLabelLength))
	}

	return Label{text: text}, nil
}

// MustLabel is NewLabel for literals known to be valid.
func MustLabel(text string) Label {
	l, err := NewLabel(text)
	if err != nil {
		panic(err)
	}
	return l
}

// String returns the label text
func (l Label) String() string {
	return l.text
}

// IsEmpty checks if the label is unset
func (l Label) IsEmpty() bool {
	return l.text == ""
}

// Equals checks if two labels are equal
func (l Label) Equals(other Label) bool {
	return l.text == other.text
}

// Display returns the label cut to maxRunes with "..." appended when longer.
func (l Label) Display(maxRunes int) string {
	return Truncate(l.text, maxRunes)
}

// Truncate cuts s to maxRunes and appends "..." when it was longer
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes]) + "..."
}
