package export

import (
	"errors"
	"fmt"
	"html"
	"math"
	"strings"
)

// ErrEmptyCurve indicates a series with fewer than two points or
// mismatched coordinates.
var ErrEmptyCurve = errors.New("export: series needs at least two (x, y) points")

// Series is one polyline of a plot.
type Series struct {
	Label  string
	X, Y   []float64
	Stroke string
	// Dashed draws the line with a dash pattern, used for reference curves.
	Dashed bool
}

// Plot is a set of curves drawn on shared axes.
type Plot struct {
	Title  string
	XLabel string
	YLabel string
	Width  int
	Height int
	Series []Series
}

const margin = 50.0

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (p Plot) bounds() bounds {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, s := range p.Series {
		for i := range s.X {
			if math.IsNaN(s.Y[i]) || math.IsInf(s.Y[i], 0) {
				continue
			}
			b.minX = math.Min(b.minX, s.X[i])
			b.maxX = math.Max(b.maxX, s.X[i])
			b.minY = math.Min(b.minY, s.Y[i])
			b.maxY = math.Max(b.maxY, s.Y[i])
		}
	}
	if math.IsInf(b.minY, 1) {
		b.minY, b.maxY = 0, 1
	}
	if b.maxX == b.minX {
		b.maxX = b.minX + 1
	}
	if b.maxY == b.minY {
		b.minY -= 0.5
		b.maxY += 0.5
	}
	pad := (b.maxY - b.minY) * 0.1
	b.minY -= pad
	b.maxY += pad
	return b
}

// SVG renders the plot. Non-finite y values break the polyline.
func (p Plot) SVG() (string, error) {
	if len(p.Series) == 0 {
		return "", ErrEmptyCurve
	}
	for _, s := range p.Series {
		if len(s.X) < 2 || len(s.X) != len(s.Y) {
			return "", fmt.Errorf("%w: %q has %d x and %d y values", ErrEmptyCurve, s.Label, len(s.X), len(s.Y))
		}
	}
	width, height := p.Width, p.Height
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 420
	}

	b := p.bounds()
	plotW := float64(width) - 2*margin
	plotH := float64(height) - 2*margin
	sx := func(x float64) float64 { return margin + (x-b.minX)/(b.maxX-b.minX)*plotW }
	sy := func(y float64) float64 { return margin + plotH - (y-b.minY)/(b.maxY-b.minY)*plotH }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="12">
<rect width="100%%" height="100%%" fill="#ffffff"/>
`, width, height, width, height)

	// axes
	fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#444444"/>
`, margin, margin, plotW, plotH)
	for i := 0; i <= 4; i++ {
		fx := b.minX + float64(i)/4*(b.maxX-b.minX)
		fy := b.minY + float64(i)/4*(b.maxY-b.minY)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" text-anchor="middle">%.3g</text>
`, sx(fx), margin+plotH+16, fx)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" text-anchor="end">%.3g</text>
`, margin-6, sy(fy)+4, fy)
	}
	if p.Title != "" {
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="14">%s</text>
`, float64(width)/2, margin/2, html.EscapeString(p.Title))
	}
	if p.XLabel != "" {
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" text-anchor="middle">%s</text>
`, margin+plotW/2, float64(height)-8, html.EscapeString(p.XLabel))
	}
	if p.YLabel != "" {
		fmt.Fprintf(&sb, `<text x="14" y="%.1f" text-anchor="middle" transform="rotate(-90 14 %.1f)">%s</text>
`, margin+plotH/2, margin+plotH/2, html.EscapeString(p.YLabel))
	}

	for i, s := range p.Series {
		stroke := s.Stroke
		if stroke == "" {
			stroke = palette[i%len(palette)]
		}
		dash := ""
		if s.Dashed {
			dash = ` stroke-dasharray="6 4"`
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5"%s d="%s"/>
`, stroke, dash, pathData(s, sx, sy))

		// legend
		ly := margin + 14 + float64(i)*16
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"%s/>
<text x="%.1f" y="%.1f">%s</text>
`, margin+plotW-120, ly-4, margin+plotW-100, ly-4, stroke, dash, margin+plotW-94, ly, html.EscapeString(s.Label))
	}

	sb.WriteString("</svg>\n")
	return sb.String(), nil
}

var palette = []string{"#1f77b4", "#d62728", "#2ca02c", "#ff7f0e", "#9467bd"}

func pathData(s Series, sx, sy func(float64) float64) string {
	var sb strings.Builder
	pen := false
	for i := range s.X {
		y := s.Y[i]
		if math.IsNaN(y) || math.IsInf(y, 0) {
			pen = false
			continue
		}
		cmd := "L"
		if !pen {
			cmd = "M"
			pen = true
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s%.1f,%.1f", cmd, sx(s.X[i]), sy(y))
	}
	return sb.String()
}
