package batch

import (
	"os"

	"github.com/gocarina/gocsv"
)

// Default artifact names of the surface tooling.
const (
	GridCsvFileName  = "bsm_pricing_with_greeks.csv"
	SmileCsvFileName = "implied_volatilities.csv"
)

// WriteGridCsv writes priced grid rows to filePath, one line per contract,
// with the header taken from the GridRow csv tags.
func WriteGridCsv(rows []*GridRow, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()
	return gocsv.MarshalFile(&rows, file)
}

// WriteSmileCsv writes calibrated smile points to filePath.
func WriteSmileCsv(points []*SmilePoint, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()
	return gocsv.MarshalFile(&points, file)
}
