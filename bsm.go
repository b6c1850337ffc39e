package options

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// NormCdf computes the cumulative distribution function of the standard
// normal distribution at x.
func NormCdf(x float64) float64 {
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	return normal.CDF(x)
}

// NormPDF computes the probability density function of the standard normal
// distribution at x.
func NormPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}

// BsmPricer prices European contracts with the Black-Scholes-Merton closed
// form, including a continuous dividend yield. All Greeks are analytic.
type BsmPricer struct {
}

func NewBsmPricer() *BsmPricer {
	return &BsmPricer{}
}

// Price returns the Black-Scholes-Merton price and Greeks of the contract.
// Only European exercise is supported; American and Bermudan contracts
// belong to the approximation and lattice pricers.
func (self *BsmPricer) Price(contract *OptionContract) (*PricingResult, error) {
	if err := contract.Validate(); err != nil {
		return nil, err
	}
	if contract.ExerciseStyle != European {
		return nil, invalidParameterError(
			"Black-Scholes-Merton prices european exercise only, got %q.",
			string(contract.ExerciseStyle))
	}
	return bsmResult(contract)
}

// bsmResult evaluates the closed form without looking at the exercise
// style. The American approximation reuses it for the European leg of its
// decomposition.
func bsmResult(contract *OptionContract) (*PricingResult, error) {
	if contract.YearsToExpiry == 0 {
		return contract.expiryResult(), nil
	}
	if contract.Volatility <= 0 {
		return nil, invalidParameterError(
			"Volatility must be positive to price before expiry, got %g.",
			contract.Volatility)
	}

	d1 := contract.CalculateD1Value(contract.Volatility)
	d2 := contract.CalculateD2Value(contract.Volatility)
	a := contract.CalculateAValue(contract.Volatility)

	// The asset leg carries the dividend discount, the strike leg the rate
	// discount.
	discountedAsset := contract.AssetPrice * contract.CalculateYValue()
	discountedStrike := contract.StrikePrice * contract.CalculateBValue()

	result := &PricingResult{}

	// Gamma and vega are identical for calls and puts.
	result.Gamma = discountedAsset * NormPDF(d1) /
		(contract.AssetPrice * contract.AssetPrice * a)
	result.Vega = discountedAsset * NormPDF(d1) *
		math.Sqrt(contract.YearsToExpiry)

	if contract.OptionType == Call {
		result.Price = discountedAsset*NormCdf(d1) - discountedStrike*NormCdf(d2)
		result.Delta = contract.CalculateYValue() * NormCdf(d1)
		result.Theta = -discountedAsset*NormPDF(d1)*contract.Volatility/
			(2*math.Sqrt(contract.YearsToExpiry)) -
			contract.InterestRate*discountedStrike*NormCdf(d2) +
			contract.DividendYield*discountedAsset*NormCdf(d1)
		result.Rho = contract.StrikePrice * contract.YearsToExpiry *
			contract.CalculateBValue() * NormCdf(d2)
	} else {
		result.Price = discountedStrike*NormCdf(-d2) - discountedAsset*NormCdf(-d1)
		result.Delta = -contract.CalculateYValue() * NormCdf(-d1)
		result.Theta = -discountedAsset*NormPDF(d1)*contract.Volatility/
			(2*math.Sqrt(contract.YearsToExpiry)) +
			contract.InterestRate*discountedStrike*NormCdf(-d2) -
			contract.DividendYield*discountedAsset*NormCdf(-d1)
		result.Rho = -contract.StrikePrice * contract.YearsToExpiry *
			contract.CalculateBValue() * NormCdf(-d2)
	}
	return result, nil
}
