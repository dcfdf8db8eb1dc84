package viz

import (
	"math"
	"regexp"
	"strings"
	"testing"

	"github.com/san-kum/dampcal/internal/damping"
	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/scheme"
)

func TestCoefficientReport(t *testing.T) {
	c := damping.Coefficients{
		Scheme:   scheme.CentralDifferences,
		Dt:       1e-4,
		Alpha:    0.5,
		Beta:     1e-5,
		Warnings: []string{"xi_n = 1.2 is outside [0, 1)"},
	}
	out := CoefficientReport(c)
	for _, want := range []string{"Central_Differences", "rayleigh_alpha", "rayleigh_beta", "outside [0, 1)"} {
		if !strings.Contains(out, want) {
			t.Errorf("report misses %q", want)
		}
	}
	if strings.Contains(out, "b_0") {
		t.Error("non CDF report should not list CDF coefficients")
	}

	c.Scheme = scheme.CDF
	c.CDF = &damping.CDFCoefficients{Delta: 1.3, B0: -1}
	if !strings.Contains(CoefficientReport(c), "rayleigh_beta_b") {
		t.Error("CDF report should list the secondary pair")
	}
}

func TestMetricsReport(t *testing.T) {
	out := MetricsReport(map[string]float64{"stability": 1, "energy": 2})
	if strings.Index(out, "energy") > strings.Index(out, "stability") {
		t.Error("metrics should be sorted by name")
	}
}

func TestResponsePlot(t *testing.T) {
	r := &dynamo.Result{
		Times:         []float64{0, 1, 2},
		Displacements: []dynamo.State{{0}, {1}, {-1}},
		Probes:        []int{0},
	}
	if ResponsePlot(r, 0, 10, 3) == "" {
		t.Error("expected a plot")
	}
	if ResponsePlot(r, 1, 10, 3) != "" {
		t.Error("expected nothing for an unknown probe")
	}
}

func TestThemes(t *testing.T) {
	defer SetTheme("terminal")

	SetTheme("paper")
	if CurrentTheme.Name != "paper" {
		t.Errorf("expected paper, got %s", CurrentTheme.Name)
	}
	if NextTheme().Name != "phosphor" {
		t.Errorf("expected phosphor after paper, got %s", NextTheme().Name)
	}
	ApplyTheme(NextTheme())
	if NextTheme().Name != "terminal" {
		t.Error("themes should wrap around")
	}
	if GetTheme("nope").Name != "terminal" {
		t.Error("unknown theme should fall back to terminal")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names out of sync")
	}
}

func TestSparklineAndProgress(t *testing.T) {
	if SparklineChart(nil, 5) != "─────" {
		t.Error("empty sparkline should be a rule")
	}
	if !strings.Contains(ProgressBar(2, 4), "████") {
		t.Error("progress should clamp at full")
	}
	if !strings.Contains(ProgressBar(-1, 4), "░░░░") {
		t.Error("progress should clamp at empty")
	}
	if got := []rune(stripped(SparklineChart([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 4))); len(got) != 4 || got[0] != '▁' || got[3] != '█' {
		t.Errorf("expected a rising 4 column sparkline, got %q", string(got))
	}
	if got := []rune(stripped(SparklineChart([]float64{1, math.NaN(), 2}, 3))); len(got) != 3 || got[1] != ' ' {
		t.Errorf("NaN column should be blank, got %q", string(got))
	}
}

var escape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripped(s string) string { return escape.ReplaceAllString(s, "") }
