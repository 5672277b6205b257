package config

import (
	"fmt"
	"time"
)

// Layout selects the canvas geometry used for child placement and node sizing.
type Layout string

const (
	LayoutFull    Layout = "full"
	LayoutCompact Layout = "compact"
)

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Canvas geometry
	Layout            Layout
	ViewBoxWidth      float64
	ViewBoxHeight     float64
	RootLabel         string
	RootX             float64
	RootY             float64
	FullChildDistance float64
	CompactDistance   float64

	// Zoom
	MinZoom     float64
	MaxZoom     float64
	ZoomStep    float64
	DefaultZoom float64

	// Node constraints
	MaxLabelLength     int
	DisplayLabelLength int
	MaxNodesPerMap     int

	// Colors
	RootColor       string
	ChildColor      string
	SelectedColor   string
	BackgroundColor string
	NodeStrokeColor string
	EdgeColor       string
	Palette         []string

	// Interaction
	ClickSlop float64

	// Sessions
	SessionTTL    time.Duration
	ExportTimeout time.Duration

	// Validation settings
	StrictInvariants bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		Layout:            LayoutFull,
		ViewBoxWidth:      800,
		ViewBoxHeight:     600,
		RootLabel:         "Central Idea",
		RootX:             400,
		RootY:             300,
		FullChildDistance: 150,
		CompactDistance:   100,

		MinZoom:     0.5,
		MaxZoom:     1.5,
		ZoomStep:    0.1,
		DefaultZoom: 1.0,

		MaxLabelLength:     200,
		DisplayLabelLength: 20,
		MaxNodesPerMap:     5000,

		RootColor:       "#F05A5B",
		ChildColor:      "#4A90E2",
		SelectedColor:   "#FF6B6B",
		BackgroundColor: "#0F172A",
		NodeStrokeColor: "#334155",
		EdgeColor:       "#475569",
		Palette: []string{
			"#F05A5B", "#4A90E2", "#7B61FF", "#38A169",
			"#ED8936", "#9F7AEA", "#4299E1", "#48BB78",
			"#F6AD55", "#F56565", "#BF4E30", "#3182CE",
		},

		ClickSlop: 0,

		SessionTTL:    24 * time.Hour,
		ExportTimeout: 10 * time.Second,

		StrictInvariants: false,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxNodesPerMap = 2000
	config.SessionTTL = 2 * time.Hour

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Broken invariants panic instead of being logged
	config.StrictInvariants = true
	config.MaxNodesPerMap = 100000

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// ChildDistance is the base radius between a parent and a new child before zoom.
func (c *DomainConfig) ChildDistance() float64 {
	if c.Layout == LayoutCompact {
		return c.CompactDistance
	}
	return c.FullChildDistance
}

// NodeWidth returns the rendered width of a node; height is 0.6 of it.
func (c *DomainConfig) NodeWidth(isRoot bool) float64 {
	switch {
	case c.Layout == LayoutCompact && isRoot:
		return 80
	case c.Layout == LayoutCompact:
		return 70
	case isRoot:
		return 120
	default:
		return 100
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.Layout != LayoutFull && c.Layout != LayoutCompact {
		return fmt.Errorf("unknown layout %q", c.Layout)
	}
	if c.MinZoom <= 0 || c.MinZoom > c.MaxZoom {
		return fmt.Errorf("invalid zoom range [%v, %v]", c.MinZoom, c.MaxZoom)
	}
	if c.DefaultZoom < c.MinZoom || c.DefaultZoom > c.MaxZoom {
		return fmt.Errorf("default zoom %v outside [%v, %v]", c.DefaultZoom, c.MinZoom, c.MaxZoom)
	}
	if c.ZoomStep <= 0 {
		return fmt.Errorf("zoom step must be positive")
	}
	if c.ClickSlop < 0 {
		return fmt.Errorf("click slop must not be negative")
	}
	if c.MaxLabelLength < 1 {
		return fmt.Errorf("max label length must be positive")
	}
	return nil
}
