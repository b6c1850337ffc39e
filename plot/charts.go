package plot

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"github.com/golang/glog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/joshi-prasad/options/batch"
)

// RenderSmile draws the calibrated implied volatilities against strike as a
// PNG. A positive flatVol adds a dashed reference line at the flat
// volatility the grid was priced with. Quotes that failed to calibrate are
// left out of the curve.
func (self *SurfaceRenderer) RenderSmile(
	points []*batch.SmilePoint,
	flatVol float64) error {

	xys := plotter.XYs{}
	for _, point := range points {
		if math.IsNaN(point.ImpliedVol) {
			continue
		}
		xys = append(xys, plotter.XY{
			X: point.Strike,
			Y: point.ImpliedVol * 100,
		})
	}
	if len(xys) == 0 {
		return invalidInputError("No calibrated quotes to draw a smile from.")
	}

	chart := plot.New()
	chart.Title.Text = "Volatility Smile"
	chart.X.Label.Text = "Strike"
	chart.Y.Label.Text = "Implied Volatility (%)"
	chart.Add(plotter.NewGrid())

	line, markers, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	chart.Add(line, markers)
	chart.Legend.Add("Implied Volatility", line)

	if flatVol > 0 {
		flat := plotter.XYs{
			{X: xys[0].X, Y: flatVol * 100},
			{X: xys[len(xys)-1].X, Y: flatVol * 100},
		}
		flatLine, err := plotter.NewLine(flat)
		if err != nil {
			return err
		}
		flatLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		chart.Add(flatLine)
		chart.Legend.Add(
			fmt.Sprintf("Flat Vol (%.1f%%)", flatVol*100), flatLine)
	}

	filePath := filepath.Join(self.outputDir, SmileFileName)
	if err := chart.Save(10*vg.Inch, 6*vg.Inch, filePath); err != nil {
		return err
	}
	msg := fmt.Sprintf("Saved %s", filePath)
	glog.Info(msg)
	return nil
}

// RenderGreeksByStrike draws every greek against strike at the shortest
// maturity of the grid, scaled the way the CSV reports them so the curves
// share one vertical axis.
func (self *SurfaceRenderer) RenderGreeksByStrike(
	rows []*batch.GridRow) error {

	if len(rows) == 0 {
		return invalidInputError("No rows to draw greeks from.")
	}

	shortest := rows[0].Maturity
	for _, row := range rows {
		if row.Maturity < shortest {
			shortest = row.Maturity
		}
	}

	slice := []*batch.GridRow{}
	for _, row := range rows {
		if row.Maturity != shortest || math.IsNaN(row.Price) {
			continue
		}
		slice = append(slice, row)
	}
	if len(slice) == 0 {
		return invalidInputError(
			"No priced rows at maturity %g to draw greeks from.", shortest)
	}
	sort.Slice(slice, func(i, j int) bool {
		return slice[i].Strike < slice[j].Strike
	})

	deltas := make(plotter.XYs, len(slice))
	gammas := make(plotter.XYs, len(slice))
	vegas := make(plotter.XYs, len(slice))
	thetas := make(plotter.XYs, len(slice))
	rhos := make(plotter.XYs, len(slice))
	for ii, row := range slice {
		deltas[ii] = plotter.XY{X: row.Strike, Y: row.Delta}
		gammas[ii] = plotter.XY{X: row.Strike, Y: row.Gamma * 100}
		vegas[ii] = plotter.XY{X: row.Strike, Y: row.Vega}
		thetas[ii] = plotter.XY{X: row.Strike, Y: row.Theta * 100}
		rhos[ii] = plotter.XY{X: row.Strike, Y: row.Rho}
	}

	chart := plot.New()
	chart.Title.Text = fmt.Sprintf(
		"All Greeks vs Strike (Maturity = %.2f Years)", shortest)
	chart.X.Label.Text = "Strike"
	chart.Y.Label.Text = "Greek Value"
	chart.Add(plotter.NewGrid())
	chart.Legend.Top = true

	err := plotutil.AddLinePoints(chart,
		"Delta", deltas,
		"Gamma x 100", gammas,
		"Vega (per 1%)", vegas,
		"Theta/Day x 100", thetas,
		"Rho (per 1%)", rhos)
	if err != nil {
		return err
	}

	filePath := filepath.Join(self.outputDir, GreeksByStrikeFileName)
	if err := chart.Save(12*vg.Inch, 7*vg.Inch, filePath); err != nil {
		return err
	}
	msg := fmt.Sprintf("Saved %s", filePath)
	glog.Info(msg)
	return nil
}
