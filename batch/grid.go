// Package batch prices whole grids of option contracts and calibrates
// implied volatility smiles, producing the CSV files and terminal tables
// of the surface tooling.
package batch

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/golang/glog"
	"github.com/joshi-prasad/options"
)

// GridRequest describes a pricing surface: one contract per combination of
// strike and maturity, everything else held fixed. Model, LatticeSteps,
// OptionType, ExerciseStyle and Workers fall back to defaults when left
// unset. ExerciseSteps only applies to the lattice models.
type GridRequest struct {
	AssetPrice    float64
	InterestRate  float64
	DividendYield float64
	Volatility    float64
	OptionType    options.OptionType
	ExerciseStyle options.ExerciseStyle
	Model         string
	LatticeSteps  int
	ExerciseSteps []int
	Strikes       []float64
	Maturities    []float64
	Workers       int
}

// GridRow is one priced contract of the surface. The greek columns carry
// the market conventions used in the CSV reports, not the raw derivatives.
type GridRow struct {
	Strike   float64 `csv:"Strike"`
	Maturity float64 `csv:"Maturity"`
	Price    float64 `csv:"Price"`
	Model    string  `csv:"Model"`
	Style    string  `csv:"Style"`
	Delta    float64 `csv:"Delta"`
	Gamma    float64 `csv:"Gamma"`
	Vega     float64 `csv:"Vega (per 1% vol)"`
	Theta    float64 `csv:"Theta (per day)"`
	Rho      float64 `csv:"Rho (per 1% rate)"`
	Error    string  `csv:"Error"`
}

// ComputeGrid prices every strike and maturity combination of the request.
// Rows come back maturity major, in the order of the request slices, no
// matter how many workers priced them. A contract that fails keeps its row,
// with NaN values and the error kind filled in, so one bad input does not
// lose the rest of the surface.
func ComputeGrid(request *GridRequest) ([]*GridRow, error) {
	if len(request.Strikes) == 0 {
		return nil, invalidRequestError(
			"Grid request needs at least one strike.")
	}
	if len(request.Maturities) == 0 {
		return nil, invalidRequestError(
			"Grid request needs at least one maturity.")
	}

	model := request.Model
	if model == "" {
		model = options.ModelBsm
	}
	steps := request.LatticeSteps
	if steps <= 0 {
		steps = options.DefaultLatticeSteps
	}
	pricer, err := options.NewPricerForModel(model, steps)
	if err != nil {
		return nil, err
	}
	if len(request.ExerciseSteps) > 0 {
		lattice, ok := pricer.(options.LatticePricer)
		if !ok {
			return nil, invalidRequestError(
				"Exercise schedules apply to the lattice models, not to %s.",
				model)
		}
		lattice.SetExerciseSteps(request.ExerciseSteps)
	}

	optionType := request.OptionType
	if optionType == "" {
		optionType = options.Call
	}
	style := request.ExerciseStyle
	if style == "" {
		style = options.DefaultStyleForModel(model)
	}
	workers := request.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	rows := make([]*GridRow, len(request.Maturities)*len(request.Strikes))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for ii := 0; ii < workers; ii += 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				maturity := request.Maturities[index/len(request.Strikes)]
				strike := request.Strikes[index%len(request.Strikes)]
				contract := &options.OptionContract{
					AssetPrice:    request.AssetPrice,
					StrikePrice:   strike,
					YearsToExpiry: maturity,
					InterestRate:  request.InterestRate,
					DividendYield: request.DividendYield,
					Volatility:    request.Volatility,
					OptionType:    optionType,
					ExerciseStyle: style,
				}
				rows[index] = priceGridRow(pricer, contract, model)
			}
		}()
	}
	for index := range rows {
		jobs <- index
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, row := range rows {
		if math.IsNaN(row.Price) {
			failed += 1
		}
	}
	msg := fmt.Sprintf("Priced a %dx%d grid with model %s, %d rows failed.",
		len(request.Maturities), len(request.Strikes), model, failed)
	glog.Info(msg)
	return rows, nil
}

func priceGridRow(
	pricer options.Pricer,
	contract *options.OptionContract,
	model string) *GridRow {

	row := &GridRow{
		Strike:   contract.StrikePrice,
		Maturity: contract.YearsToExpiry,
		Price:    math.NaN(),
		Model:    model,
		Style:    string(contract.ExerciseStyle),
		Delta:    math.NaN(),
		Gamma:    math.NaN(),
		Vega:     math.NaN(),
		Theta:    math.NaN(),
		Rho:      math.NaN(),
	}
	result, err := pricer.Price(contract)
	if err != nil {
		row.Error = options.ErrorKind(err)
		if result == nil || !errors.Is(err, options.ErrNonConvergence) {
			return row
		}
		// The recoverable fallback still carries usable values, keep them
		// and leave the row flagged.
	}
	row.Price = result.Price
	row.Delta = result.Delta
	row.Gamma = result.Gamma
	row.Vega = result.VegaPerVolPoint()
	row.Theta = result.ThetaPerDay()
	row.Rho = result.RhoPerRatePoint()
	return row
}

func invalidRequestError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	glog.Error(msg)
	return fmt.Errorf("%w: %s", options.ErrInvalidParameter, msg)
}
