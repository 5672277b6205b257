package session

import (
	"time"

	"mindmapx/domain/config"
	"mindmapx/domain/core/aggregates"
	"mindmapx/domain/core/valueobjects"
)

// Frame is a point-in-time copy of the session used for rendering and export.
type Frame struct {
	SessionID  string
	Snapshot   aggregates.Snapshot
	Colors     ColorScheme
	Selected   *valueobjects.NodeID
	Dragging   *valueobjects.NodeID
	Zoom       float64
	Layout     config.Layout
	Phase      Phase
	Version    int
	CapturedAt time.Time
}

// NewFrame wraps a snapshot that has no live session behind it, such as an
// imported document. It renders with the default colors at default zoom.
func NewFrame(id string, snap aggregates.Snapshot, cfg *config.DomainConfig, at time.Time) Frame {
	return Frame{
		SessionID:  id,
		Snapshot:   snap,
		Colors:     DefaultColorScheme(cfg),
		Zoom:       cfg.DefaultZoom,
		Layout:     cfg.Layout,
		Phase:      PhaseFinished,
		CapturedAt: at,
	}
}

// IsSelected reports whether id is the selected node
func (f Frame) IsSelected(id valueobjects.NodeID) bool {
	return f.Selected != nil && f.Selected.Equals(id)
}

// IsDragging reports whether id is being dragged
func (f Frame) IsDragging(id valueobjects.NodeID) bool {
	return f.Dragging != nil && f.Dragging.Equals(id)
}

// Summary holds the counts shown in the finished screen
type Summary struct {
	Nodes int `json:"nodes"`
	Edges int `json:"connections"`
	Depth int `json:"depthLevels"`
}

// NodeView is one node as returned by the API
type NodeView struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	IsRoot bool    `json:"isRoot"`
	Color  string  `json:"color,omitempty"`
	Fill   string  `json:"fill"`
}

// EdgeView is one edge as returned by the API
type EdgeView struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// View is the serializable state of a session
type View struct {
	ID          string            `json:"id"`
	Phase       Phase             `json:"phase"`
	Mode        Mode              `json:"mode"`
	Selected    string            `json:"selected,omitempty"`
	Dragging    string            `json:"dragging,omitempty"`
	Zoom        float64           `json:"zoom"`
	Layout      config.Layout     `json:"layout"`
	Suggestions []string          `json:"suggestions"`
	Colors      map[string]string `json:"colors"`
	Version     int               `json:"version"`
	Nodes       []NodeView        `json:"nodes"`
	Edges       []EdgeView        `json:"edges"`
	Summary     Summary           `json:"summary"`
}

// Summarize counts nodes, edges and tree depth
func Summarize(snap aggregates.Snapshot) Summary {
	return Summary{
		Nodes: len(snap.Nodes),
		Edges: len(snap.Edges),
		Depth: snap.Depth(),
	}
}

func newView(f Frame, mode Mode, sugg []string) View {
	v := View{
		ID:          f.SessionID,
		Phase:       f.Phase,
		Mode:        mode,
		Zoom:        f.Zoom,
		Layout:      f.Layout,
		Suggestions: sugg,
		Colors: map[string]string{
			string(RoleRoot):     f.Colors.Root.String(),
			string(RoleChild):    f.Colors.Child.String(),
			string(RoleSelected): f.Colors.Selected.String(),
		},
		Version: f.Version,
		Nodes:   make([]NodeView, 0, len(f.Snapshot.Nodes)),
		Edges:   make([]EdgeView, 0, len(f.Snapshot.Edges)),
		Summary: Summarize(f.Snapshot),
	}
	if f.Selected != nil {
		v.Selected = f.Selected.String()
	}
	if f.Dragging != nil {
		v.Dragging = f.Dragging.String()
	}
	for _, n := range f.Snapshot.Nodes {
		v.Nodes = append(v.Nodes, NodeView{
			ID:     n.ID.String(),
			Label:  n.Label,
			X:      n.Position.X(),
			Y:      n.Position.Y(),
			IsRoot: n.IsRoot,
			Color:  n.Color.String(),
			Fill:   f.Colors.Fill(n).String(),
		})
	}
	for _, e := range f.Snapshot.Edges {
		v.Edges = append(v.Edges, EdgeView{
			ID:     e.ID.String(),
			Source: e.SourceID.String(),
			Target: e.TargetID.String(),
		})
	}
	return v
}
