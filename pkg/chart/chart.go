package chart

import (
	"bytes"
	"errors"
	"fmt"

	gochart "github.com/wcharczuk/go-chart/v2"

	"mangapages/pkg/chapters"
	"mangapages/pkg/config"
)

// ErrEmptySeries is returned when there are no points to plot
var ErrEmptySeries = errors.New("no chapters to plot")

const (
	xAxisName = "Chapter"
	yAxisName = "Page Count"
)

// build assembles the page count chart for a title
func build(cfg config.ChartConfig, title string, series chapters.Series) (*gochart.Chart, error) {
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}

	xs := series.XValues()
	ys := series.YValues()

	// go-chart needs at least two X values
	if len(xs) == 1 {
		xs = []float64{xs[0], xs[0] + 1}
		ys = []float64{ys[0], ys[0]}
	}

	yAxis := gochart.YAxis{Name: yAxisName}
	if lo, hi := bounds(ys); lo == hi {
		floor := lo - 1
		if floor < 0 {
			floor = 0
		}
		yAxis.Range = &gochart.ContinuousRange{Min: floor, Max: hi + 1}
	}

	ch := &gochart.Chart{
		Title:      title,
		TitleStyle: gochart.Style{FontSize: cfg.TitleFontSize},
		Width:      cfg.Width,
		Height:     cfg.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      gochart.XAxis{Name: xAxisName},
		YAxis:      yAxis,
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    title,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeWidth: 2,
					StrokeColor: gochart.ColorBlue,
					DotWidth:    3,
					DotColor:    gochart.ColorBlue,
				},
			},
		},
	}

	return ch, nil
}

func bounds(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// renderBytes renders ch in the given format
func renderBytes(ch *gochart.Chart, format gochart.RendererProvider) ([]byte, error) {
	var buf bytes.Buffer
	if err := ch.Render(format, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}
