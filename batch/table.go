package batch

import (
	"fmt"
	"math"

	"github.com/fatih/color"

	"github.com/joshi-prasad/options"
)

// PrintGridTable renders priced rows on the terminal, in the order they
// were priced, with the in the money side highlighted and the strike
// nearest the asset price starred.
func PrintGridTable(
	rows []*GridRow,
	assetPrice float64,
	optionType options.OptionType) {

	if len(rows) == 0 {
		return
	}

	fmt.Printf("Model: %s, Style: %s, Asset: %.2f\n",
		rows[0].Model, rows[0].Style, assetPrice)
	fmt.Printf("  %-8s %-10s %-12s %-10s %-10s %-12s %-12s %-12s %s\n",
		"Strike", "Maturity", "Price", "Delta", "Gamma",
		"Vega(1%)", "Theta(day)", "Rho(1%)", "Error")

	// Set color for ITM data
	yellowColor := color.New(color.FgYellow).SprintFunc()
	defaultColor := color.New(color.FgBlue).SprintFunc()
	redColor := color.New(color.FgRed).SprintFunc()

	atmStrike := closestStrike(rows, assetPrice)
	priced := 0
	failed := 0
	for _, row := range rows {
		atmChar := ' '
		if row.Strike == atmStrike {
			atmChar = '*'
		}

		rowColor := defaultColor
		if optionType == options.Call && row.Strike < assetPrice {
			rowColor = yellowColor
		}
		if optionType == options.Put && row.Strike > assetPrice {
			rowColor = yellowColor
		}
		if row.Error != "" {
			rowColor = redColor
		}
		if math.IsNaN(row.Price) {
			failed += 1
		} else {
			priced += 1
		}

		fmt.Printf("%c %s %s\n",
			atmChar,
			rowColor(fmt.Sprintf(
				"%-8.2f %-10.4f %-12.6f %-10.6f %-10.6f %-12.6f %-12.6f %-12.6f",
				row.Strike, row.Maturity, row.Price, row.Delta, row.Gamma,
				row.Vega, row.Theta, row.Rho)),
			row.Error)
	}

	fmt.Println("\nTotals:")
	fmt.Printf("Priced rows: %-10d\n", priced)
	fmt.Printf("Failed rows: %-10d\n", failed)
}

func closestStrike(rows []*GridRow, assetPrice float64) float64 {
	closest := rows[0].Strike
	for _, row := range rows {
		if math.Abs(row.Strike-assetPrice) < math.Abs(closest-assetPrice) {
			closest = row.Strike
		}
	}
	return closest
}
