package batch

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/joshi-prasad/options"
)

// SmileRequest holds the market quotes of one expiry slice. Strikes and
// MarketPrices pair up index by index.
type SmileRequest struct {
	AssetPrice    float64
	YearsToExpiry float64
	InterestRate  float64
	DividendYield float64
	OptionType    options.OptionType
	ExerciseStyle options.ExerciseStyle
	Model         string
	LatticeSteps  int
	Strikes       []float64
	MarketPrices  []float64
}

// SmilePoint is one calibrated quote.
type SmilePoint struct {
	Strike      float64 `csv:"Strike"`
	MarketPrice float64 `csv:"Market Price"`
	ImpliedVol  float64 `csv:"Implied Vol"`
	Error       string  `csv:"Error"`
}

// CalibrateSmile inverts every quote of the request into an implied
// volatility. A quote that violates the arbitrage bounds or fails to
// converge keeps its place with a NaN volatility and the error kind filled
// in, so one stale quote does not lose the rest of the smile.
func CalibrateSmile(request *SmileRequest) ([]*SmilePoint, error) {
	if len(request.Strikes) == 0 {
		return nil, invalidRequestError(
			"Smile request needs at least one quote.")
	}
	if len(request.Strikes) != len(request.MarketPrices) {
		return nil, invalidRequestError(
			"Smile request has %d strikes but %d market prices.",
			len(request.Strikes), len(request.MarketPrices))
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
	optionType := request.OptionType
	if optionType == "" {
		optionType = options.Call
	}
	style := request.ExerciseStyle
	if style == "" {
		style = options.DefaultStyleForModel(model)
	}

	solver := options.NewIvSolver(pricer)
	points := make([]*SmilePoint, len(request.Strikes))
	for ii, strike := range request.Strikes {
		marketPrice := request.MarketPrices[ii]
		point := &SmilePoint{
			Strike:      strike,
			MarketPrice: marketPrice,
			ImpliedVol:  math.NaN(),
		}
		contract := &options.OptionContract{
			AssetPrice:    request.AssetPrice,
			StrikePrice:   strike,
			YearsToExpiry: request.YearsToExpiry,
			InterestRate:  request.InterestRate,
			DividendYield: request.DividendYield,
			OptionType:    optionType,
			ExerciseStyle: style,
		}
		volatility, err := solver.Solve(contract, marketPrice)
		if err != nil {
			msg := fmt.Sprintf(
				"No implied volatility for strike %g at price %g: %v",
				strike, marketPrice, err)
			glog.Warning(msg)
			point.Error = options.ErrorKind(err)
		} else {
			point.ImpliedVol = volatility
		}
		points[ii] = point
	}
	return points, nil
}
