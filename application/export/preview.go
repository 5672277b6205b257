package export

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"mindmapx/application/session"
	"mindmapx/domain/config"
	"mindmapx/domain/core/valueobjects"
	pkgerrors "mindmapx/pkg/errors"
)

// PreviewHTML renders an interactive HTML page of the frame. Nodes keep
// their canvas positions and can be dragged around in the browser.
func PreviewHTML(frame session.Frame, cfg *config.DomainConfig) ([]byte, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	geom := *cfg
	if frame.Layout != "" {
		geom.Layout = frame.Layout
	}

	names := make(map[valueobjects.NodeID]string, len(frame.Snapshot.Nodes))
	used := make(map[string]bool, len(frame.Snapshot.Nodes))
	nodes := make([]opts.GraphNode, 0, len(frame.Snapshot.Nodes))
	for _, n := range frame.Snapshot.Nodes {
		// Graph series key nodes by name, so repeated labels get the id appended
		name := valueobjects.Truncate(n.Label, geom.DisplayLabelLength)
		if used[name] {
			name = fmt.Sprintf("%s (%s)", name, n.ID)
		}
		used[name] = true
		names[n.ID] = name

		size := geom.NodeWidth(n.IsRoot)
		nodes = append(nodes, opts.GraphNode{
			Name:       name,
			X:          float32(n.Position.X()),
			Y:          float32(n.Position.Y()),
			Symbol:     "roundRect",
			SymbolSize: []float64{size, size * 0.6},
			ItemStyle: &opts.ItemStyle{
				Color:       frame.Colors.Fill(n).String(),
				BorderColor: borderColor(frame, n.ID),
				BorderWidth: 2,
			},
		})
	}

	links := make([]opts.GraphLink, 0, len(frame.Snapshot.Edges))
	for _, e := range frame.Snapshot.Edges {
		src, ok1 := names[e.SourceID]
		dst, ok2 := names[e.TargetID]
		if !ok1 || !ok2 {
			continue
		}
		links = append(links, opts.GraphLink{Source: src, Target: dst})
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       "mindmap",
			Height:          "100vh",
			Width:           "100vw",
			BackgroundColor: frame.Colors.Background.String(),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	graph.AddSeries(
		"mindmap",
		nodes,
		links,
		charts.WithGraphChartOpts(
			opts.GraphChart{
				Layout:    "none",
				Draggable: opts.Bool(true),
				Roam:      opts.Bool(true),
			},
		),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Color:    "white",
			Position: "inside",
		}),
		charts.WithLineStyleOpts(opts.LineStyle{
			Color: frame.Colors.Edge.String(),
			Width: 2,
		}),
	)

	page := components.NewPage()
	page.AddCharts(graph)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, pkgerrors.NewRenderError(pkgerrors.CodeEncodeFailed, "preview rendering failed").WithCause(err)
	}
	return buf.Bytes(), nil
}

func borderColor(frame session.Frame, id valueobjects.NodeID) string {
	if frame.IsSelected(id) {
		return frame.Colors.Selected.String()
	}
	return frame.Colors.NodeStroke.String()
}
