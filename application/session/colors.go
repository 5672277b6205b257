package session

import (
	"fmt"

	"mindmapx/domain/config"
	"mindmapx/domain/core/aggregates"
	"mindmapx/domain/core/valueobjects"
	pkgerrors "mindmapx/pkg/errors"
)

// Role names a color slot that can be changed from the chrome.
type Role string

const (
	RoleRoot     Role = "root"
	RoleChild    Role = "child"
	RoleSelected Role = "selected"
)

// ParseRole validates a role name
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleRoot, RoleChild, RoleSelected:
		return r, nil
	}
	return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown color role %q", s)).
		WithDetails(map[string]interface{}{"allowed": []Role{RoleRoot, RoleChild, RoleSelected}})
}

// ColorScheme is the set of colors a renderer needs.
type ColorScheme struct {
	Root       valueobjects.Color
	Child      valueobjects.Color
	Selected   valueobjects.Color
	Background valueobjects.Color
	NodeStroke valueobjects.Color
	Edge       valueobjects.Color
}

// DefaultColorScheme builds the scheme from config
func DefaultColorScheme(cfg *config.DomainConfig) ColorScheme {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return ColorScheme{
		Root:       valueobjects.MustColor(cfg.RootColor),
		Child:      valueobjects.MustColor(cfg.ChildColor),
		Selected:   valueobjects.MustColor(cfg.SelectedColor),
		Background: valueobjects.MustColor(cfg.BackgroundColor),
		NodeStroke: valueobjects.MustColor(cfg.NodeStrokeColor),
		Edge:       valueobjects.MustColor(cfg.EdgeColor),
	}
}

// Fill returns the node's own color, falling back to its role color
func (s ColorScheme) Fill(n aggregates.NodeSnapshot) valueobjects.Color {
	if n.IsRoot {
		return n.Color.Or(s.Root)
	}
	return n.Color.Or(s.Child)
}

// With returns a copy with role set to c
func (s ColorScheme) With(role Role, c valueobjects.Color) ColorScheme {
	switch role {
	case RoleRoot:
		s.Root = c
	case RoleChild:
		s.Child = c
	case RoleSelected:
		s.Selected = c
	}
	return s
}
