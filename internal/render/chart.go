// Package render draws carry trade simulation series as PNG charts. Every
// call is self-contained; there is no shared styling state.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

// Series is one pair's cumulative return and risk path.
type Series struct {
	Label   string
	Returns []float64
	Risks   []float64
}

// Options control chart layout and labels.
type Options struct {
	Title       string
	XAxisLabel  string
	ReturnLabel string
	RiskLabel   string
	Width       int
	Height      int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1280
	}
	if o.Height <= 0 {
		o.Height = 720
	}
	if o.Title == "" {
		o.Title = "Carry trade return and risk"
	}
	if o.XAxisLabel == "" {
		o.XAxisLabel = "Day"
	}
	if o.ReturnLabel == "" {
		o.ReturnLabel = "Cumulative return"
	}
	if o.RiskLabel == "" {
		o.RiskLabel = "Cumulative risk"
	}
	return o
}

// Render writes a PNG line chart with one return line (primary axis) and one
// risk line (secondary axis) per series.
func Render(w io.Writer, series []Series, opts Options) error {
	if len(series) == 0 {
		return errors.New("render: no series")
	}
	opts = opts.withDefaults()

	amountFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}

	lines := make([]chart.Series, 0, 2*len(series))
	var returns, risks [][]float64
	for _, s := range series {
		if len(s.Returns) != len(s.Risks) {
			return fmt.Errorf("render: %s has %d returns and %d risks", s.Label, len(s.Returns), len(s.Risks))
		}
		x := dayAxis(len(s.Returns))
		returns = append(returns, s.Returns)
		risks = append(risks, s.Risks)
		lines = append(lines,
			chart.ContinuousSeries{
				Name:    s.Label + " return",
				XValues: x,
				YValues: padSingle(s.Returns),
			},
			chart.ContinuousSeries{
				Name:    s.Label + " risk",
				XValues: x,
				YValues: padSingle(s.Risks),
				YAxis:   chart.YAxisSecondary,
				Style: chart.Style{
					StrokeDashArray: []float64{5, 3},
				},
			},
		)
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name: opts.XAxisLabel,
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.0f")
			},
		},
		YAxis: chart.YAxis{
			Name:           opts.ReturnLabel,
			ValueFormatter: amountFormatter,
			Range:          flatRange(returns),
		},
		YAxisSecondary: chart.YAxis{
			Name:           opts.RiskLabel,
			ValueFormatter: amountFormatter,
			Range:          flatRange(risks),
		},
		Series: lines,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	return graph.Render(chart.PNG, w)
}

func dayAxis(n int) []float64 {
	if n < 2 {
		return []float64{0, 1}
	}
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}

// go-chart cannot draw a single-point series, so a zero-day path becomes a flat segment.
func padSingle(values []float64) []float64 {
	if len(values) >= 2 {
		return values
	}
	v := 0.0
	if len(values) == 1 {
		v = values[0]
	}
	return []float64{v, v}
}

// flatRange widens an axis whose values are all equal (e.g. zero risk at zero
// volatility); go-chart cannot scale a zero-height range. Nil lets go-chart
// derive the range itself.
func flatRange(groups [][]float64) chart.Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, values := range groups {
		for _, v := range values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 0) || hi > lo {
		return nil
	}
	return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}
