package batch

import (
	"math"
)

// AtmStrike rounds the asset price to the nearest multiple of the strike
// step, which is the strike the market quotes as at the money. A step that
// is not positive leaves the asset price unrounded.
func AtmStrike(assetPrice float64, step float64) float64 {
	if step <= 0 {
		return assetPrice
	}
	return math.Round(assetPrice/step) * step
}

// StrikeLadder builds totalStrikes strikes spaced step apart and centered
// on the at the money strike.
func StrikeLadder(
	assetPrice float64,
	step float64,
	totalStrikes int) ([]float64, error) {

	if totalStrikes <= 0 {
		return nil, invalidRequestError(
			"Strike ladder needs a positive strike count, got %d.",
			totalStrikes)
	}
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, invalidRequestError(
			"Strike ladder needs a positive step, got %g.", step)
	}

	strikes := make([]float64, totalStrikes)
	atm := AtmStrike(assetPrice, step)
	beginValue := atm - (float64(totalStrikes/2) * step)
	for ii := 0; ii < totalStrikes; ii += 1 {
		strikes[ii] = beginValue + (float64(ii) * step)
	}
	return strikes, nil
}
