package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/dampcal/internal/damping"
	"github.com/san-kum/dampcal/internal/dynamo"
)

type row struct {
	label string
	value float64
}

func table(rows []row) string {
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-18s", r.label)))
		b.WriteString(MetricValue.Render(fmt.Sprintf("% .6e", r.value)))
	}
	return b.String()
}

// CoefficientReport lays out a calibration in one panel: inputs, the
// Rayleigh pair and, for CDF, the secondary coefficients. Warnings follow
// below the table.
func CoefficientReport(c damping.Coefficients) string {
	rows := []row{
		{"dt", c.Dt},
		{"omega_1", c.Omega1},
		{"omega_n", c.OmegaN},
		{"xi_1", c.Xi1},
		{"xi_n", c.XiN},
		{"g_coefficient", c.GCoefficient},
		{"theta_factor", c.ThetaFactor},
		{"rayleigh_alpha", c.Alpha},
		{"rayleigh_beta", c.Beta},
	}
	sections := []string{Title.Render(c.Scheme.String()), table(rows)}

	if c.CDF != nil {
		cdf := []row{
			{"delta", c.CDF.Delta},
			{"b_0", c.CDF.B0},
			{"b_1", c.CDF.B1},
			{"b_2", c.CDF.B2},
			{"xib_1", c.CDF.Xib1},
			{"xib_n", c.CDF.XibN},
			{"rayleigh_alpha_b", c.CDF.AlphaB},
			{"rayleigh_beta_b", c.CDF.BetaB},
		}
		sections = append(sections, Separator(36), table(cdf))
	}

	for _, w := range c.Warnings {
		sections = append(sections, StatusWarn.Render("! "+w))
	}
	return Panel.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// MetricsReport lists metrics in name order.
func MetricsReport(metrics map[string]float64) string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]row, len(names))
	for i, name := range names {
		rows[i] = row{name, metrics[name]}
	}
	return Panel.Render(lipgloss.JoinVertical(lipgloss.Left, Title.Render("metrics"), table(rows)))
}

// ResponsePlot draws the displacement history of recorded probe p.
func ResponsePlot(r *dynamo.Result, p, width, height int) string {
	if r == nil || p < 0 || p >= len(r.Probes) {
		return ""
	}
	c := NewCanvas(width, height)
	c.PlotSeries(r.Series(p))
	return c.String()
}
