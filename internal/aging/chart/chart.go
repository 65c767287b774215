// Package chart renders summary tables as images.
package chart

import (
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/shandysiswandi/goaging/internal/aging/entity"
)

var ErrEmptyTable = errors.New("chart: table has no groups")

const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// CollectorAging draws one stacked bar per collector with one layer per
// aging bucket and writes it to w as PNG.
func CollectorAging(table *entity.Table, w io.Writer, width, height vg.Length) error {
	if table == nil || len(table.Groups) == 0 {
		return ErrEmptyTable
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	p := plot.New()
	p.Title.Text = "Collector Aging Analysis"
	p.X.Label.Text = table.GroupBy
	p.Y.Label.Text = "Amount"
	p.Legend.Top = true
	p.X.Tick.Label.Rotation = 0.6
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	labels := make([]string, len(table.Groups))
	for i, g := range table.Groups {
		labels[i] = g.Label
	}

	barWidth := vg.Points(20)
	var below *plotter.BarChart
	for m, measure := range table.Measures {
		values := make(plotter.Values, len(table.Groups))
		for i, g := range table.Groups {
			if m < len(g.Values) {
				values[i] = g.Values[m].InexactFloat64()
			}
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return fmt.Errorf("chart: bucket %q: %w", measure, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(m)
		if below != nil {
			bars.StackOn(below)
		}

		p.Add(bars)
		p.Legend.Add(measure, bars)
		below = bars
	}
	p.NominalX(labels...)

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("chart: write png: %w", err)
	}
	return nil
}
