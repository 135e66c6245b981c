package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/isingsim/internal/lattice"
)

// spinGrid adapts a lattice view to plotter.GridXYZ. Rows are flipped so
// row 0 is drawn at the top, like an image.
type spinGrid struct {
	v lattice.View
}

func (g spinGrid) Dims() (c, r int)   { n := g.v.Size(); return n, n }
func (g spinGrid) X(c int) float64    { return float64(c) }
func (g spinGrid) Y(r int) float64    { return float64(r) }
func (g spinGrid) Z(c, r int) float64 { return float64(g.v.Get(c, g.v.Size()-1-r)) }

// PNGFrameSink saves one heat map per sweep as <dir>/<prefix>_<sweep>.png.
type PNGFrameSink struct {
	Dir    string
	Prefix string
	Size   vg.Length
}

func NewPNGFrameSink(dir, prefix string) *PNGFrameSink {
	return &PNGFrameSink{Dir: dir, Prefix: prefix, Size: 4 * vg.Inch}
}

func (s *PNGFrameSink) Path(sweep int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s_%d.png", s.Prefix, sweep))
}

func (s *PNGFrameSink) OnSweep(v lattice.View, sweep int) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}
	p, err := LatticePlot(v, fmt.Sprintf("Step %d", sweep))
	if err != nil {
		return err
	}
	return p.Save(s.Size, s.Size, s.Path(sweep))
}

// LatticePlot builds a two-color heat map of v.
func LatticePlot(v lattice.View, title string) (*plot.Plot, error) {
	if v.Size() == 0 {
		return nil, errors.New("export: empty lattice")
	}
	h := plotter.NewHeatMap(spinGrid{v: v}, coolwarm{})
	h.Min, h.Max = -1, 1

	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.Add(h)
	return p, nil
}
