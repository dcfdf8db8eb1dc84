package analysis

import (
	"strings"

	"github.com/san-kum/dampcal/internal/dynamo"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds displacement against velocity for one probe.
type PhasePortrait2D struct {
	Probe  int
	Points []Point
}

// PhasePortrait extracts the (u, v) trajectory of recorded probe p.
func PhasePortrait(r *dynamo.Result, p int) *PhasePortrait2D {
	if r == nil || p < 0 || p >= len(r.Probes) {
		return nil
	}

	portrait := &PhasePortrait2D{
		Probe:  r.Probes[p],
		Points: make([]Point, 0, len(r.Displacements)),
	}
	for i := range r.Displacements {
		if i >= len(r.Velocities) {
			break
		}
		portrait.Points = append(portrait.Points, Point{X: r.Displacements[i][p], Y: r.Velocities[i][p]})
	}
	return portrait
}

// PhasePortraitToASCII draws the portrait on a width x height grid.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	// Axes first so the trajectory draws over them.
	if col := int(-minX / rangeX * float64(width-1)); col >= 0 && col < width {
		for row := range canvas {
			canvas[row][col] = '│'
		}
	}
	if row := height - 1 - int(-minY/rangeY*float64(height-1)); row >= 0 && row < height {
		for col := range canvas[row] {
			canvas[row][col] = '─'
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
