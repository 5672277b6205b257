package queries

import (
	pkgerrors "mindmapx/pkg/errors"
)

// GetSessionQuery returns the full view of one session
type GetSessionQuery struct {
	SessionID string
}

// Validate validates the GetSessionQuery
func (q GetSessionQuery) Validate() error {
	if q.SessionID == "" {
		return pkgerrors.NewValidationError("session ID is required")
	}
	return nil
}

// ExportFormat selects what an ExportQuery produces
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatPNG  ExportFormat = "png"
	FormatSVG  ExportFormat = "svg"
	FormatHTML ExportFormat = "html"
)

// ExportQuery renders a session. Width and Height apply to PNG only.
type ExportQuery struct {
	SessionID string
	Format    ExportFormat
	Width     int
	Height    int
}

// Validate validates the ExportQuery
func (q ExportQuery) Validate() error {
	if q.SessionID == "" {
		return pkgerrors.NewValidationError("session ID is required")
	}
	switch q.Format {
	case FormatJSON, FormatPNG, FormatSVG, FormatHTML:
	default:
		return pkgerrors.NewValidationError("format must be one of json, png, svg, html")
	}
	if q.Width < 0 || q.Height < 0 || q.Width > 8192 || q.Height > 8192 {
		return pkgerrors.NewValidationError("image size must be between 0 and 8192")
	}
	return nil
}

// ExportResult is a rendered export ready to download
type ExportResult struct {
	FileName    string
	ContentType string
	Body        []byte
}

// GetSuggestionsQuery returns suggested child labels for a label
type GetSuggestionsQuery struct {
	Label string
}

// Validate validates the GetSuggestionsQuery
func (q GetSuggestionsQuery) Validate() error {
	return nil
}

// GetPaletteQuery returns the preset colors
type GetPaletteQuery struct{}

// Validate validates the GetPaletteQuery
func (q GetPaletteQuery) Validate() error {
	return nil
}
