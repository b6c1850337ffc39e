// Package plot renders the pricing artifacts: interactive HTML heatmaps of
// the price and greek surfaces, and PNG charts of the volatility smile and
// the greeks by strike.
package plot

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/golang/glog"

	"github.com/joshi-prasad/options"
	"github.com/joshi-prasad/options/batch"
)

// File names of the rendered artifacts.
const (
	PriceSurfaceFileName   = "option_price_surface.html"
	DeltaSurfaceFileName   = "delta_surface.html"
	GammaSurfaceFileName   = "gamma_surface.html"
	VegaSurfaceFileName    = "vega_surface.html"
	ThetaSurfaceFileName   = "theta_surface.html"
	RhoSurfaceFileName     = "rho_surface.html"
	SmileFileName          = "volatility_smile.png"
	GreeksByStrikeFileName = "all_greeks_vs_strike.png"
)

// SurfaceRenderer writes every chart into one output directory.
type SurfaceRenderer struct {
	outputDir string
}

func NewSurfaceRenderer(outputDir string) *SurfaceRenderer {
	return &SurfaceRenderer{
		outputDir: outputDir,
	}
}

// RenderAll writes the six surface heatmaps, one per priced quantity, with
// strikes on the vertical axis and maturities on the horizontal one. Failed
// rows leave holes in the surface instead of aborting the render.
func (self *SurfaceRenderer) RenderAll(rows []*batch.GridRow) error {
	surfaces := []struct {
		title    string
		fileName string
		value    func(row *batch.GridRow) float64
	}{
		{"Price Surface (Strike vs Maturity)", PriceSurfaceFileName,
			func(row *batch.GridRow) float64 { return row.Price }},
		{"Delta Surface (Strike vs Maturity)", DeltaSurfaceFileName,
			func(row *batch.GridRow) float64 { return row.Delta }},
		{"Gamma Surface (Strike vs Maturity)", GammaSurfaceFileName,
			func(row *batch.GridRow) float64 { return row.Gamma }},
		{"Vega (per 1% vol) Surface (Strike vs Maturity)",
			VegaSurfaceFileName,
			func(row *batch.GridRow) float64 { return row.Vega }},
		{"Theta (per day) Surface (Strike vs Maturity)",
			ThetaSurfaceFileName,
			func(row *batch.GridRow) float64 { return row.Theta }},
		{"Rho (per 1% rate) Surface (Strike vs Maturity)",
			RhoSurfaceFileName,
			func(row *batch.GridRow) float64 { return row.Rho }},
	}
	for _, surface := range surfaces {
		err := self.renderHeatMap(rows, surface.title, surface.fileName,
			surface.value)
		if err != nil {
			return err
		}
	}
	return nil
}

func (self *SurfaceRenderer) renderHeatMap(
	rows []*batch.GridRow,
	title string,
	fileName string,
	value func(row *batch.GridRow) float64) error {

	if len(rows) == 0 {
		return invalidInputError("No rows to render for %s.", fileName)
	}

	strikes, maturities := gridAxes(rows)
	strikeIndex := indexOf(strikes)
	maturityIndex := indexOf(maturities)

	data := make([]opts.HeatMapData, 0, len(rows))
	minValue := math.Inf(1)
	maxValue := math.Inf(-1)
	for _, row := range rows {
		cell := value(row)
		if math.IsNaN(cell) || math.IsInf(cell, 0) {
			continue
		}
		data = append(data, opts.HeatMapData{
			Value: [3]interface{}{
				maturityIndex[row.Maturity],
				strikeIndex[row.Strike],
				cell,
			},
		})
		minValue = math.Min(minValue, cell)
		maxValue = math.Max(maxValue, cell)
	}
	if len(data) == 0 {
		minValue = 0
		maxValue = 1
	}

	heatMap := charts.NewHeatMap()
	heatMap.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "900px",
			Height:    "560px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			Name: "Maturity (Years)",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "category",
			Name: "Strike",
			Data: axisLabels(strikes),
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        float32(minValue),
			Max:        float32(maxValue),
		}),
	)
	heatMap.SetXAxis(axisLabels(maturities)).AddSeries("value", data)

	filePath := filepath.Join(self.outputDir, fileName)
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := heatMap.Render(file); err != nil {
		return err
	}
	msg := fmt.Sprintf("Saved %s", filePath)
	glog.Info(msg)
	return nil
}

func gridAxes(rows []*batch.GridRow) ([]float64, []float64) {
	strikeSet := map[float64]bool{}
	maturitySet := map[float64]bool{}
	for _, row := range rows {
		strikeSet[row.Strike] = true
		maturitySet[row.Maturity] = true
	}
	strikes := make([]float64, 0, len(strikeSet))
	for strike := range strikeSet {
		strikes = append(strikes, strike)
	}
	maturities := make([]float64, 0, len(maturitySet))
	for maturity := range maturitySet {
		maturities = append(maturities, maturity)
	}
	sort.Float64s(strikes)
	sort.Float64s(maturities)
	return strikes, maturities
}

func indexOf(values []float64) map[float64]int {
	index := map[float64]int{}
	for ii, value := range values {
		index[value] = ii
	}
	return index
}

func axisLabels(values []float64) []string {
	labels := make([]string, len(values))
	for ii, value := range values {
		labels[ii] = fmt.Sprintf("%g", value)
	}
	return labels
}

func invalidInputError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	glog.Error(msg)
	return fmt.Errorf("%w: %s", options.ErrInvalidParameter, msg)
}
