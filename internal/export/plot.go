package export

import (
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SeriesPlotSink saves m(t) as a PNG line plot.
type SeriesPlotSink struct {
	Path  string
	Title string
}

func NewSeriesPlotSink(path string) *SeriesPlotSink {
	return &SeriesPlotSink{Path: path, Title: "Magnetization"}
}

func (s *SeriesPlotSink) OnSeries(series []float64) error {
	if len(series) == 0 {
		return nil
	}
	p, err := SeriesPlot(s.Title, series)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, s.Path)
}

func SeriesPlot(title string, series []float64) (*plot.Plot, error) {
	pts := make(plotter.XYs, len(series))
	for i, m := range series {
		pts[i] = plotter.XY{X: float64(i + 1), Y: m}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Width = vg.Points(1)
	line.Color = UpColor

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Sweep"
	p.Y.Label.Text = "m"
	p.Y.Min, p.Y.Max = -1, 1
	p.Add(plotter.NewGrid(), line)
	return p, nil
}
