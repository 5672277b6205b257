package export

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"mindmapx/domain/core/valueobjects"
	pkgerrors "mindmapx/pkg/errors"
)

// ImageFileName is the download name for raster exports
const ImageFileName = "mindmap.png"

// RasterOptions controls the output size. Zero values keep the surface size.
type RasterOptions struct {
	Width  int
	Height int
}

var (
	fontsOnce sync.Once
	fontsErr  error
	regular   *truetype.Font
	bold      *truetype.Font
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regular, fontsErr = truetype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		bold, fontsErr = truetype.Parse(gobold.TTF)
	})
	return fontsErr
}

// ToRasterImage paints background, replays the surface on top and encodes a
// PNG. Nothing is returned unless encoding succeeds.
func ToRasterImage(s *Surface, background valueobjects.Color, opts RasterOptions) ([]byte, error) {
	if s == nil {
		return nil, pkgerrors.NewRenderError(pkgerrors.CodeSurfaceUnavailable, "no rendered surface")
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = px(s.Width)
	}
	if height <= 0 {
		height = px(s.Height)
	}
	if width <= 0 || height <= 0 || s.Width <= 0 || s.Height <= 0 {
		return nil, pkgerrors.NewRenderError(pkgerrors.CodeSurfaceUnavailable,
			fmt.Sprintf("surface has no area (%dx%d)", width, height))
	}
	if err := loadFonts(); err != nil {
		return nil, pkgerrors.NewRenderError(pkgerrors.CodeSurfaceUnavailable, "font unavailable").WithCause(err)
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(background.RGBA())
	dc.Clear()

	scale := float64(width) / s.Width
	if sy := float64(height) / s.Height; sy < scale {
		scale = sy
	}
	scale *= s.Zoom
	dc.Scale(scale, scale)

	faces := map[faceKey]font.Face{}
	for _, p := range s.Prims {
		switch p.Shape {
		case ShapeLine:
			dc.DrawLine(p.X, p.Y, p.X2, p.Y2)
			stroke(dc, p)
		case ShapeRoundRect:
			dc.DrawRoundedRectangle(p.X, p.Y, p.W, p.H, p.R)
			fillAndStroke(dc, p)
		case ShapeCircle:
			dc.DrawCircle(p.X, p.Y, p.R)
			fillAndStroke(dc, p)
		case ShapeText:
			key := faceKey{size: p.FontSize * scale, bold: p.Bold}
			face, ok := faces[key]
			if !ok {
				f := regular
				if p.Bold {
					f = bold
				}
				face = truetype.NewFace(f, &truetype.Options{
					Size:    key.size,
					DPI:     72,
					Hinting: font.HintingFull,
				})
				faces[key] = face
			}
			dc.SetFontFace(face)
			dc.SetColor(p.Fill.RGBA())
			dc.DrawStringAnchored(p.Text, p.X, p.Y, 0.5, 0)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, pkgerrors.NewRenderError(pkgerrors.CodeEncodeFailed, "png encoding failed").WithCause(err)
	}
	return buf.Bytes(), nil
}

type faceKey struct {
	size float64
	bold bool
}

func stroke(dc *gg.Context, p Primitive) {
	dc.SetColor(p.Stroke.RGBA())
	dc.SetLineWidth(p.StrokeWidth)
	dc.Stroke()
}

func fillAndStroke(dc *gg.Context, p Primitive) {
	dc.SetColor(p.Fill.RGBA())
	dc.FillPreserve()
	stroke(dc, p)
}
