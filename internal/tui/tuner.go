// Package tui holds the interactive damping tuner and a plain-terminal live
// renderer for running simulations.
package tui

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/san-kum/dampcal/internal/config"
	"github.com/san-kum/dampcal/internal/damping"
	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/experiment"
	"github.com/san-kum/dampcal/internal/scheme"
	"github.com/san-kum/dampcal/internal/viz"
)

// knob is one adjustable option. Additive knobs move by step, the others
// are scaled by factor.
type knob struct {
	name     string
	step     float64
	factor   float64
	min, max float64
}

var knobs = []knob{
	{name: "xi_1", step: 0.005, min: 0, max: 2},
	{name: "xi_n", step: 0.005, min: 0, max: 2},
	{name: "g_factor", step: 0.25, min: 0, max: 10},
	{name: "theta_factor", step: 0.05, min: 0, max: 1},
	{name: "time_step", factor: 1.25, min: 1e-7, max: 1},
	{name: "delta", step: 0.1, min: -5, max: 5},
}

func (k knob) adjust(v float64, dir int) float64 {
	if k.factor > 0 {
		if dir > 0 {
			v *= k.factor
		} else {
			v /= k.factor
		}
	} else {
		v += float64(dir) * k.step
	}
	return math.Max(k.min, math.Min(k.max, v))
}

type tickMsg time.Time

type resultMsg struct {
	gen    int
	result *dynamo.Result
	err    error
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Tuner recalibrates on every change and re-runs the configured model in
// the background. Results of superseded runs are dropped.
type Tuner struct {
	cfg    *config.Config
	logger log.FieldLogger

	cursor    int
	schemes   []string
	schemeIdx int

	coeffs damping.Coefficients
	calErr error

	gen     int
	running bool
	result  *dynamo.Result
	runErr  error
	frame   int

	width  int
	height int
}

func NewTuner(cfg *config.Config) *Tuner {
	logger := log.New()
	logger.SetOutput(io.Discard)

	t := &Tuner{
		cfg:     cfg.Clone(),
		logger:  logger,
		schemes: scheme.TranslationalNames(),
		width:   80,
		height:  24,
	}
	current, err := scheme.ParseTranslational(cfg.Damping.SchemeType)
	for i, name := range t.schemes {
		if err == nil && name == current.String() {
			t.schemeIdx = i
		}
	}
	return t
}

func (t *Tuner) Init() tea.Cmd {
	return t.recalibrate()
}

// recalibrate refreshes the coefficients and starts a new run.
func (t *Tuner) recalibrate() tea.Cmd {
	exp := experiment.New(t.cfg.Clone(), t.logger)
	t.coeffs, t.calErr = exp.Calibrate()
	t.gen++
	if t.calErr != nil {
		t.running = false
		return nil
	}

	gen := t.gen
	t.running = true
	run := func() tea.Msg {
		if err := exp.Setup(exp.Registry().DefaultMetrics()); err != nil {
			return resultMsg{gen: gen, err: err}
		}
		res, err := exp.Run(context.Background())
		return resultMsg{gen: gen, result: res, err: err}
	}
	return tea.Batch(run, tick())
}

func (t *Tuner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return t.handleKey(msg)
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
	case tickMsg:
		if t.running {
			t.frame++
			return t, tick()
		}
	case resultMsg:
		if msg.gen != t.gen {
			return t, nil
		}
		t.running = false
		t.result, t.runErr = msg.result, msg.err
	}
	return t, nil
}

func (t *Tuner) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return t, tea.Quit
	case "up", "k":
		if t.cursor > 0 {
			t.cursor--
		}
	case "down", "j":
		if t.cursor < len(knobs)-1 {
			t.cursor++
		}
	case "left", "h":
		return t, t.turn(-1)
	case "right", "l":
		return t, t.turn(1)
	case "tab":
		t.schemeIdx = (t.schemeIdx + 1) % len(t.schemes)
		t.cfg.Damping.SchemeType = t.schemes[t.schemeIdx]
		return t, t.recalibrate()
	case "x":
		t.cfg.Damping.CalculateXi = !t.cfg.Damping.CalculateXi
		return t, t.recalibrate()
	case "t":
		viz.ApplyTheme(viz.NextTheme())
	case "r":
		return t, t.recalibrate()
	}
	return t, nil
}

func (t *Tuner) turn(dir int) tea.Cmd {
	k := knobs[t.cursor]
	v := k.adjust(t.cfg.Params()[k.name], dir)
	if err := t.cfg.SetParam(k.name, v); err != nil {
		t.calErr = err
		return nil
	}
	return t.recalibrate()
}

// Config returns the tuned configuration.
func (t *Tuner) Config() *config.Config { return t.cfg }

func (t *Tuner) View() string {
	var b strings.Builder

	b.WriteString("\n  " + viz.Title.Render("d a m p c a l") + "  " +
		viz.Subtle.Render(fmt.Sprintf("%s  %s", t.cfg.Model, t.schemes[t.schemeIdx])) + "\n\n")

	params := t.cfg.Params()
	var left strings.Builder
	for i, k := range knobs {
		line := fmt.Sprintf("%-13s %10.4g", k.name, params[k.name])
		if i == t.cursor {
			left.WriteString(viz.Selected.Render("▸ "+line) + "\n")
		} else {
			left.WriteString(viz.MetricLabel.Render("  "+line) + "\n")
		}
	}
	xi := "off"
	if t.cfg.Damping.CalculateXi {
		xi = "on"
	}
	left.WriteString(viz.MetricLabel.Render(fmt.Sprintf("  %-13s %10s", "calculate_xi", xi)))

	right := viz.StatusError.Render(fmt.Sprintf("calibration failed:\n%v", t.calErr))
	if t.calErr == nil {
		right = viz.CoefficientReport(t.coeffs)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, viz.Panel.Render(left.String()), "  ", right))
	b.WriteString("\n\n")

	switch {
	case t.running:
		b.WriteString("  " + viz.StatusRunning.Render(viz.AnimatedSpinner(t.frame)+" running") + "\n")
	case t.runErr != nil:
		b.WriteString("  " + viz.StatusError.Render(fmt.Sprintf("run failed: %v", t.runErr)) + "\n")
	case t.result != nil && len(t.result.Probes) > 0:
		p := len(t.result.Probes) - 1
		pw := t.width - 6
		if pw < 40 {
			pw = 40
		}
		b.WriteString(viz.Subtle.Render(fmt.Sprintf("  u%d over %.3gs", t.result.Probes[p], t.cfg.Duration)) + "\n")
		for _, line := range strings.Split(strings.TrimSuffix(viz.ResponsePlot(t.result, p, pw, 6), "\n"), "\n") {
			b.WriteString("  " + viz.MetricValue.Render(line) + "\n")
		}
		b.WriteString("  " + metricLine(t.result.Metrics) + "\n")
	}

	b.WriteString("\n" + viz.KeyHint.Render("  ↑↓ select  ←→ adjust  tab scheme  x calculate_xi  t theme  r rerun  q quit") + "\n")
	return b.String()
}

func metricLine(m map[string]float64) string {
	parts := make([]string, 0, len(m))
	for _, name := range []string{"energy_decay", "peak_displacement", "stability"} {
		if v, ok := m[name]; ok {
			parts = append(parts, viz.MetricLabel.Render(name+" ")+viz.MetricValue.Render(fmt.Sprintf("%.4g", v)))
		}
	}
	return strings.Join(parts, "   ")
}

// RunTuner starts the tuner full screen and returns the tuned configuration.
func RunTuner(cfg *config.Config) (*config.Config, error) {
	t := NewTuner(cfg)
	final, err := tea.NewProgram(t, tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	return final.(*Tuner).Config(), nil
}
