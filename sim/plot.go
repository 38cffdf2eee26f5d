package sim

import (
	"fmt"
	"image/color"

	filter "github.com/sno/go-estimate"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// series is a single scatter of a simulation plot
type series struct {
	name  string
	data  *mat.Dense
	color color.Color
	shape draw.GlyphDrawer
}

// New2DPlot plots true model output, measured output and filtered output
// as scatters sharing the time axis. Every matrix holds time in its first
// column and value in its second column.
// It returns error if any matrix is nil or has less than 2 columns or if
// a scatter can not be created.
func New2DPlot(model, measure, filtered *mat.Dense) (*plot.Plot, error) {
	all := []series{
		{name: "model", data: model, color: color.RGBA{R: 255, B: 128, A: 255}, shape: draw.PyramidGlyph{}},
		{name: "measurement", data: measure, color: color.RGBA{G: 255, A: 128}, shape: draw.RingGlyph{}},
		{name: "filtered", data: filtered, color: color.RGBA{R: 169, G: 169, B: 169, A: 255}, shape: draw.CrossGlyph{}},
	}

	for _, s := range all {
		if s.data == nil {
			return nil, fmt.Errorf("%w: missing %s data", filter.ErrInvalidArgument, s.name)
		}
		if _, c := s.data.Dims(); c < 2 {
			return nil, fmt.Errorf("%w: %s data has %d columns", filter.ErrInvalidArgument, s.name, c)
		}
	}

	p := plot.New()
	p.Title.Text = "Simulation"
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Output"
	p.Legend.Top = true

	for _, s := range all {
		sc, err := plotter.NewScatter(makePoints(s.data))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s scatter: %w", s.name, err)
		}
		sc.GlyphStyle.Color = s.color
		sc.GlyphStyle.Shape = s.shape
		sc.GlyphStyle.Radius = vg.Points(3)

		p.Add(sc)
		p.Legend.Add(s.name, sc)
	}

	return p, nil
}

// TimeSeries converts simulation steps and filter estimates into time series of
// the output element idx: true output, measured output and filtered output
// where the filtered output is the estimated state projected by output matrix c.
// It returns error if steps and estimates lengths differ or idx is out of range.
func TimeSeries(steps []Step, est []filter.Estimate, c mat.Matrix, idx int) (model, measure, filtered *mat.Dense, err error) {
	if len(steps) == 0 || len(steps) != len(est) {
		return nil, nil, nil, fmt.Errorf("%w: %d steps and %d estimates", filter.ErrInvalidArgument, len(steps), len(est))
	}

	ny, nx := c.Dims()
	if idx < 0 || idx >= ny {
		return nil, nil, nil, fmt.Errorf("%w: invalid output index: %d", filter.ErrInvalidArgument, idx)
	}

	n := len(steps)
	model = mat.NewDense(n, 2, nil)
	measure = mat.NewDense(n, 2, nil)
	filtered = mat.NewDense(n, 2, nil)

	y := mat.NewVecDense(ny, nil)
	for i, s := range steps {
		model.Set(i, 0, s.T)
		model.Set(i, 1, s.Y.AtVec(idx))
		measure.Set(i, 0, s.T)
		measure.Set(i, 1, s.Z.AtVec(idx))

		if l := est[i].Val().Len(); l != nx {
			return nil, nil, nil, fmt.Errorf("%w: estimate %d has length %d", filter.ErrInvalidArgument, i, l)
		}
		y.MulVec(c, est[i].Val())
		filtered.Set(i, 0, est[i].Time())
		filtered.Set(i, 1, y.AtVec(idx))
	}

	return model, measure, filtered, nil
}

func makePoints(m *mat.Dense) plotter.XYs {
	r, _ := m.Dims()
	pts := make(plotter.XYs, r)
	for i := 0; i < r; i++ {
		pts[i].X = m.At(i, 0)
		pts[i].Y = m.At(i, 1)
	}

	return pts
}
