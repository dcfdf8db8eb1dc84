package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/viz"
)

const (
	width       = 70
	height      = 12
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	historyLen  = 60
)

// LiveRenderer draws the displaced chain while a simulation runs. It is a
// dynamo.Observer; frames beyond frameRate per second are skipped.
type LiveRenderer struct {
	out       io.Writer
	title     string
	dim       int
	frameRate int
	lastFrame time.Time

	canvas    *viz.Canvas
	amplitude float64
	history   []float64
	frames    int
}

func NewLiveRenderer(out io.Writer, title string, dim, frameRate int) *LiveRenderer {
	if dim < 1 {
		dim = 1
	}
	if frameRate < 1 {
		frameRate = 30
	}
	return &LiveRenderer{
		out:       out,
		title:     title,
		dim:       dim,
		frameRate: frameRate,
		canvas:    viz.NewCanvas(width, height),
		history:   make([]float64, 0, historyLen),
	}
}

func (r *LiveRenderer) Start() {
	fmt.Fprint(r.out, hideCursor)
}

func (r *LiveRenderer) Stop() {
	fmt.Fprint(r.out, showCursor+"\n")
}

// Frames is the number of frames drawn so far.
func (r *LiveRenderer) Frames() int { return r.frames }

func (r *LiveRenderer) OnStep(k *dynamo.Kinematics, t float64) {
	if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()
	if len(k.U) < r.dim {
		return
	}

	peak := k.U.MaxAbs()
	// The scale only grows so that decay stays visible.
	if peak > r.amplitude {
		r.amplitude = peak
	}
	r.history = append(r.history, k.U[len(k.U)-r.dim])
	if len(r.history) > historyLen {
		r.history = r.history[1:]
	}

	r.canvas.Clear()
	r.canvas.PlotChain(k.U, r.dim, r.amplitude)
	r.render(k, t, peak, k.U.IsValid())
	r.frames++
}

func (r *LiveRenderer) render(k *dynamo.Kinematics, t, peak float64, valid bool) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(viz.Title.Render(r.title) + "\n\n")
	b.WriteString(r.canvas.String())
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  t = %-10.4f  max|u| = %-12.4e  max|v| = %-12.4e\n", t, peak, k.V.MaxAbs()))
	if len(r.history) > 1 {
		b.WriteString("  tip " + viz.SparklineChart(r.history, historyLen) + "\n")
	}
	if !valid {
		b.WriteString("  " + viz.StatusError.Render("diverged") + "\n")
	}
	fmt.Fprint(r.out, b.String())
}
