package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/joshi-prasad/options"
	"github.com/joshi-prasad/options/batch"
	"github.com/joshi-prasad/options/plot"
)

func main() {
	flag.Set("alsologtostderr", "true")
	assetPrice := flag.Float64("asset_price", 100,
		"spot price of the underlying asset")
	interestRate := flag.Float64("interest_rate", 0.02,
		"annualized risk free interest rate")
	dividendYield := flag.Float64("dividend_yield", 0.01,
		"annualized continuous dividend yield")
	volatility := flag.Float64("volatility", 0.3,
		"flat volatility used to price the grid")
	optionType := flag.String("option_type", "put", "call or put")
	exerciseStyle := flag.String("exercise_style", "",
		"european, american or bermudan, defaults per model")
	model := flag.String("model", options.ModelBsm,
		"pricing model, one of bsm, baw, binomial or trinomial")
	latticeSteps := flag.Int("lattice_steps", options.DefaultLatticeSteps,
		"time steps for the lattice models")
	exerciseSteps := flag.String("exercise_steps", "",
		"comma separated lattice steps where bermudan exercise is allowed")
	strikes := flag.String("strikes", "90,100,110,120",
		"comma separated strike prices")
	strikeStep := flag.Float64("strike_step", 0,
		"spacing of a generated strike ladder, used with strike_count")
	strikeCount := flag.Int("strike_count", 0,
		"number of ladder strikes centered on the money, replaces strikes")
	maturities := flag.String("maturities", "0.25,0.5",
		"comma separated maturities in years")
	marketPrices := flag.String("market_prices", "1.2,3.5,8.9,15.1",
		"comma separated market quotes for the smile, one per strike, "+
			"quoted at the shortest maturity")
	workers := flag.Int("workers", 0,
		"grid pricing goroutines, 0 means one per CPU")
	outputDir := flag.String("output_dir", ".",
		"directory for the CSV and chart files")
	flag.Parse()
	defer glog.Flush()

	strikeValues, err := parseFloatList(*strikes)
	if err != nil {
		fail("Failed to parse the strikes.", err)
	}
	if *strikeCount > 0 {
		strikeValues, err = batch.StrikeLadder(*assetPrice, *strikeStep,
			*strikeCount)
		if err != nil {
			fail("Failed to build the strike ladder.", err)
		}
	}
	maturityValues, err := parseFloatList(*maturities)
	if err != nil {
		fail("Failed to parse the maturities.", err)
	}
	quoteValues, err := parseFloatList(*marketPrices)
	if err != nil {
		fail("Failed to parse the market prices.", err)
	}
	scheduleValues, err := parseIntList(*exerciseSteps)
	if err != nil {
		fail("Failed to parse the exercise steps.", err)
	}

	gridRequest := &batch.GridRequest{
		AssetPrice:    *assetPrice,
		InterestRate:  *interestRate,
		DividendYield: *dividendYield,
		Volatility:    *volatility,
		OptionType:    options.OptionType(*optionType),
		ExerciseStyle: options.ExerciseStyle(*exerciseStyle),
		Model:         *model,
		LatticeSteps:  *latticeSteps,
		ExerciseSteps: scheduleValues,
		Strikes:       strikeValues,
		Maturities:    maturityValues,
		Workers:       *workers,
	}
	rows, err := batch.ComputeGrid(gridRequest)
	if err != nil {
		fail("Failed to price the option grid.", err)
	}

	batch.PrintGridTable(rows, *assetPrice, gridRequest.OptionType)

	gridCsvPath := filepath.Join(*outputDir, batch.GridCsvFileName)
	if err := batch.WriteGridCsv(rows, gridCsvPath); err != nil {
		fail("Failed to write the pricing CSV.", err)
	}
	fmt.Printf("\nSaved %s\n", gridCsvPath)

	renderer := plot.NewSurfaceRenderer(*outputDir)
	if err := renderer.RenderAll(rows); err != nil {
		fail("Failed to render the surface heatmaps.", err)
	}
	if err := renderer.RenderGreeksByStrike(rows); err != nil {
		fail("Failed to render the greeks chart.", err)
	}

	// The quotes calibrate at the shortest maturity of the grid.
	smileRequest := &batch.SmileRequest{
		AssetPrice:    *assetPrice,
		YearsToExpiry: shortestMaturity(maturityValues),
		InterestRate:  *interestRate,
		DividendYield: *dividendYield,
		OptionType:    gridRequest.OptionType,
		ExerciseStyle: gridRequest.ExerciseStyle,
		Model:         *model,
		LatticeSteps:  *latticeSteps,
		Strikes:       strikeValues,
		MarketPrices:  quoteValues,
	}
	points, err := batch.CalibrateSmile(smileRequest)
	if err != nil {
		glog.Warning("Skipping the smile, calibration failed. ", err)
		return
	}
	smileCsvPath := filepath.Join(*outputDir, batch.SmileCsvFileName)
	if err := batch.WriteSmileCsv(points, smileCsvPath); err != nil {
		fail("Failed to write the implied volatility CSV.", err)
	}
	fmt.Printf("Saved %s\n", smileCsvPath)
	if err := renderer.RenderSmile(points, *volatility); err != nil {
		fail("Failed to render the smile chart.", err)
	}
}

func parseFloatList(list string) ([]float64, error) {
	parts := strings.Split(list, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

func parseIntList(list string) ([]int, error) {
	parts := strings.Split(list, ",")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

func shortestMaturity(maturities []float64) float64 {
	shortest := maturities[0]
	for _, maturity := range maturities {
		if maturity < shortest {
			shortest = maturity
		}
	}
	return shortest
}

func fail(message string, err error) {
	glog.Error(message, " ", err)
	glog.Flush()
	os.Exit(1)
}
