package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteSeriesChart renders an interactive HTML line chart of m(t).
func WriteSeriesChart(w io.Writer, title string, series []float64) error {
	xs := make([]string, len(series))
	data := make([]opts.LineData, len(series))
	for i, m := range series {
		xs[i] = strconv.Itoa(i + 1)
		data[i] = opts.LineData{Value: m}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("sweeps=%d", len(series))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Sweep", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "m", Min: -1, Max: 1}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	line.SetXAxis(xs).AddSeries("magnetization", data,
		charts.WithLineStyleOpts(opts.LineStyle{Color: hexColor(UpColor)}),
	)
	return line.Render(w)
}
