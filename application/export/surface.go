package export

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"

	"mindmapx/application/session"
	"mindmapx/domain/config"
	"mindmapx/domain/core/valueobjects"
)

// Shape is the kind of a drawing primitive
type Shape int

const (
	ShapeLine Shape = iota
	ShapeRoundRect
	ShapeCircle
	ShapeText
)

var white = valueobjects.MustColor("#FFFFFF")

// Primitive is one drawing instruction in canvas coordinates.
// Lines use X,Y to X2,Y2. Rects use X,Y,W,H and R as corner radius.
// Circles are centered on X,Y. Text is anchored at its baseline middle.
type Primitive struct {
	Shape       Shape
	X, Y        float64
	X2, Y2      float64
	W, H        float64
	R           float64
	Fill        valueobjects.Color
	Stroke      valueobjects.Color
	StrokeWidth float64
	Text        string
	FontSize    float64
	Bold        bool
}

// Surface is a rendered mind map: a replayable display list plus the same
// drawing as an SVG document.
type Surface struct {
	Width  float64
	Height float64
	Zoom   float64
	Prims  []Primitive
	svg    []byte
}

// SVG returns the vector document
func (s *Surface) SVG() []byte {
	if s == nil {
		return nil
	}
	return s.svg
}

// Render draws frame with edges beneath nodes. The selected node gets a
// highlighted outline and an edit badge; edges touching the dragged node are
// highlighted.
func Render(frame session.Frame, cfg *config.DomainConfig) *Surface {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	geom := *cfg
	if frame.Layout != "" {
		geom.Layout = frame.Layout
	}
	zoom := frame.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	compact := geom.Layout == config.LayoutCompact

	s := &Surface{
		Width:  geom.ViewBoxWidth,
		Height: geom.ViewBoxHeight,
		Zoom:   zoom,
	}
	snap := frame.Snapshot

	for _, e := range snap.Edges {
		from, to, err := snap.Endpoints(e)
		if err != nil {
			// Skipped rather than failing the whole drawing
			continue
		}
		stroke, width := frame.Colors.Edge, 2.0
		if frame.IsDragging(e.SourceID) || frame.IsDragging(e.TargetID) {
			stroke, width = frame.Colors.Selected, 3.0
		}
		s.Prims = append(s.Prims, Primitive{
			Shape:       ShapeLine,
			X:           from.Position.X(),
			Y:           from.Position.Y(),
			X2:          to.Position.X(),
			Y2:          to.Position.Y(),
			Stroke:      stroke,
			StrokeWidth: width,
		})
	}

	for _, n := range snap.Nodes {
		size := geom.NodeWidth(n.IsRoot)
		left := n.Position.X() - size/2
		top := n.Position.Y() - size/3
		active := frame.IsSelected(n.ID)

		stroke, width := frame.Colors.NodeStroke, 2.0
		if active {
			stroke, width = frame.Colors.Selected, 3.0
		}
		s.Prims = append(s.Prims, Primitive{
			Shape:       ShapeRoundRect,
			X:           left,
			Y:           top,
			W:           size,
			H:           size * 0.6,
			R:           8,
			Fill:        frame.Colors.Fill(n),
			Stroke:      stroke,
			StrokeWidth: width,
		})

		fontSize := 13.0
		switch {
		case compact && n.IsRoot:
			fontSize = 10
		case compact:
			fontSize = 9
		case n.IsRoot:
			fontSize = 14
		}
		s.Prims = append(s.Prims, Primitive{
			Shape:    ShapeText,
			X:        left + size/2,
			Y:        top + size*0.35,
			Fill:     white,
			Text:     valueobjects.Truncate(n.Label, geom.DisplayLabelLength),
			FontSize: fontSize,
			Bold:     n.IsRoot,
		})

		if active {
			r, badgeFont := 8.0, 10.0
			if compact {
				r, badgeFont = 6, 8
			}
			cx, cy := left+size, top+size*0.6
			s.Prims = append(s.Prims,
				Primitive{Shape: ShapeCircle, X: cx, Y: cy, R: r, Fill: frame.Colors.Selected, Stroke: white, StrokeWidth: 2},
				Primitive{Shape: ShapeText, X: cx, Y: cy + badgeFont*0.35, Fill: white, Text: "E", FontSize: badgeFont, Bold: true},
			)
		}
	}

	s.svg = s.writeSVG()
	return s
}

func (s *Surface) writeSVG() []byte {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	w, h := px(s.Width), px(s.Height)
	canvas.Startview(w, h, 0, 0, w, h)
	canvas.Gtransform(fmt.Sprintf("scale(%g)", s.Zoom))
	for _, p := range s.Prims {
		switch p.Shape {
		case ShapeLine:
			canvas.Line(px(p.X), px(p.Y), px(p.X2), px(p.Y2), strokeStyle(p))
		case ShapeRoundRect:
			canvas.Roundrect(px(p.X), px(p.Y), px(p.W), px(p.H), px(p.R), px(p.R),
				fmt.Sprintf("fill:%s;%s", p.Fill, strokeStyle(p)))
		case ShapeCircle:
			canvas.Circle(px(p.X), px(p.Y), px(p.R), fmt.Sprintf("fill:%s;%s", p.Fill, strokeStyle(p)))
		case ShapeText:
			weight := "normal"
			if p.Bold {
				weight = "bold"
			}
			canvas.Text(px(p.X), px(p.Y), p.Text,
				fmt.Sprintf("fill:%s;font-size:%gpx;font-family:system-ui,sans-serif;font-weight:%s;text-anchor:middle", p.Fill, p.FontSize, weight))
		}
	}
	canvas.Gend()
	canvas.End()
	return buf.Bytes()
}

func strokeStyle(p Primitive) string {
	return fmt.Sprintf("stroke:%s;stroke-width:%g", p.Stroke, p.StrokeWidth)
}

func px(v float64) int {
	return int(math.Round(v))
}
