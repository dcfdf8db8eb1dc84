// Package export renders recorded responses as standalone SVG files.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/dampcal/internal/analysis"
	"github.com/san-kum/dampcal/internal/dynamo"
)

// Palette cycles through these stroke colors, one per probe.
var Palette = []string{"#00ff88", "#00ccff", "#ffcc00", "#ff4444", "#ff00ff", "#ffffff"}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b *bounds) add(x, y float64) {
	b.minX = math.Min(b.minX, x)
	b.maxX = math.Max(b.maxX, x)
	b.minY = math.Min(b.minY, y)
	b.maxY = math.Max(b.maxY, y)
}

// pad widens the box by 10% on every side.
func (b *bounds) pad() {
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
}

func (b *bounds) project(x, y float64, width, height int) (float64, float64) {
	px := (x - b.minX) / (b.maxX - b.minX) * float64(width)
	py := float64(height) - (y-b.minY)/(b.maxY-b.minY)*float64(height)
	return px, py
}

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
}

func path(sb *strings.Builder, pts []analysis.Point, b *bounds, width, height int, stroke string) {
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke))
	for i, p := range pts {
		x, y := b.project(p.X, p.Y, width, height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")
}

// TrajectoryToSVG creates an SVG from trajectory data
func TrajectoryToSVG(points []analysis.Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	b := bounds{points[0].X, points[0].X, points[0].Y, points[0].Y}
	for _, p := range points {
		b.add(p.X, p.Y)
	}
	b.pad()

	var sb strings.Builder
	header(&sb, width, height)
	path(&sb, points, &b, width, height, strokeColor)
	sb.WriteString("</svg>")
	return sb.String()
}

// ResponseToSVG plots the displacement history of every recorded probe on
// shared axes, with a zero line and the probe dofs as a legend.
func ResponseToSVG(r *dynamo.Result, width, height int) string {
	if r == nil || len(r.Times) < 2 || len(r.Probes) == 0 {
		return ""
	}

	b := bounds{r.Times[0], r.Times[0], 0, 0}
	series := make([][]analysis.Point, len(r.Probes))
	for p := range r.Probes {
		u := r.Series(p)
		pts := make([]analysis.Point, len(u))
		for i, v := range u {
			pts[i] = analysis.Point{X: r.Times[i], Y: v}
			b.add(r.Times[i], v)
		}
		series[p] = pts
	}
	b.pad()

	var sb strings.Builder
	header(&sb, width, height)

	_, zero := b.project(0, 0, width, height)
	sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444466" stroke-dasharray="4 4"/>
`, zero, width, zero))

	for p, pts := range series {
		path(&sb, pts, &b, width, height, Palette[p%len(Palette)])
	}

	for p, dof := range r.Probes {
		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">u%d</text>
`, 16+14*p, Palette[p%len(Palette)], dof))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// PhaseToSVG draws a phase portrait.
func PhaseToSVG(portrait *analysis.PhasePortrait2D, width, height int) string {
	if portrait == nil {
		return ""
	}
	return TrajectoryToSVG(portrait.Points, width, height, Palette[0])
}
