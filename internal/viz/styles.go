package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Shared styles, recolored by ApplyTheme.
var (
	Panel    lipgloss.Style
	Title    lipgloss.Style
	Selected lipgloss.Style
	Subtle   lipgloss.Style

	StatusRunning lipgloss.Style
	StatusWarn    lipgloss.Style
	StatusError   lipgloss.Style

	MetricValue lipgloss.Style
	MetricLabel lipgloss.Style
	KeyHint     lipgloss.Style

	// Levels color bars and sparklines by height.
	LevelHigh lipgloss.Style
	LevelMid  lipgloss.Style
	LevelLow  lipgloss.Style
)

func init() {
	ApplyTheme(CurrentTheme)
}

// ApplyTheme makes t current and rebuilds every style from it.
func ApplyTheme(t Theme) {
	CurrentTheme = t
	Panel = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Frame).Padding(1, 2)
	Title = lipgloss.NewStyle().Bold(true).Foreground(t.Heading)
	Selected = lipgloss.NewStyle().Bold(true).Foreground(t.Highlight)
	Subtle = lipgloss.NewStyle().Foreground(t.Label)

	StatusRunning = lipgloss.NewStyle().Bold(true).Foreground(t.Ok)
	StatusWarn = lipgloss.NewStyle().Bold(true).Foreground(t.Warn)
	StatusError = lipgloss.NewStyle().Bold(true).Foreground(t.Fail)

	MetricValue = lipgloss.NewStyle().Bold(true).Foreground(t.Value)
	MetricLabel = lipgloss.NewStyle().Foreground(t.Label)
	KeyHint = lipgloss.NewStyle().Italic(true).Foreground(t.Label)

	LevelHigh = lipgloss.NewStyle().Foreground(t.Ok)
	LevelMid = lipgloss.NewStyle().Foreground(t.Warn)
	LevelLow = lipgloss.NewStyle().Foreground(t.Fail)
}

func level(norm float64) lipgloss.Style {
	switch {
	case norm > 0.7:
		return LevelHigh
	case norm > 0.3:
		return LevelMid
	}
	return LevelLow
}

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func AnimatedSpinner(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return spinner[frame%len(spinner)]
}

// ProgressBar renders a fraction in [0, 1]; values outside are clamped.
func ProgressBar(fraction float64, width int) string {
	fraction = math.Max(0, math.Min(1, fraction))
	filled := int(fraction * float64(width))
	return level(fraction).Render(strings.Repeat("█", filled) + strings.Repeat("░", width-filled))
}

var bars = []rune("▁▂▃▄▅▆▇█")

// SparklineChart squeezes values into width columns, each showing the mean
// of its bucket. Non-finite values are skipped.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 || width < 1 {
		return strings.Repeat("─", max(width, 0))
	}

	cols := min(width, len(values))
	means := make([]float64, cols)
	lo, hi := math.Inf(1), math.Inf(-1)
	for c := range means {
		start, end := c*len(values)/cols, (c+1)*len(values)/cols
		sum, n := 0.0, 0
		for _, v := range values[start:end] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			means[c] = math.NaN()
			continue
		}
		means[c] = sum / float64(n)
		lo, hi = math.Min(lo, means[c]), math.Max(hi, means[c])
	}

	span := hi - lo
	if !(span > 0) {
		span = 1
	}
	var b strings.Builder
	for _, m := range means {
		if math.IsNaN(m) {
			b.WriteString(" ")
			continue
		}
		norm := (m - lo) / span
		idx := min(int(norm*float64(len(bars)-1)), len(bars)-1)
		b.WriteString(level(norm).Render(string(bars[idx])))
	}
	return b.String()
}

// Separator is a muted rule with a center mark.
func Separator(width int) string {
	width = max(width, 8)
	left := (width - 3) / 2
	return Subtle.Render(strings.Repeat("─", left) + " ◆ " + strings.Repeat("─", width-3-left))
}
