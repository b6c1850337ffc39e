package options

import (
	"math"
)

type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

type ExerciseStyle string

const (
	European ExerciseStyle = "european"
	American ExerciseStyle = "american"
	Bermudan ExerciseStyle = "bermudan"
)

// OptionContract describes one vanilla option. It is a plain value: pricing
// calls never mutate it and keep no state across calls, so a contract may be
// shared freely between goroutines and reused for repeated pricing.
type OptionContract struct {
	AssetPrice    float64
	StrikePrice   float64
	YearsToExpiry float64
	InterestRate  float64 // continuously compounded
	DividendYield float64 // continuous yield paid by the asset
	Volatility    float64
	OptionType    OptionType
	ExerciseStyle ExerciseStyle
}

// Validate checks the contract fields every pricing model shares.
// Volatility positivity is checked by the pricers themselves: the expiry
// boundary (YearsToExpiry of zero) prices without it, and the implied
// volatility solver leaves it unset on purpose.
func (self *OptionContract) Validate() error {
	if !isFinite(self.AssetPrice) || self.AssetPrice <= 0 {
		return invalidParameterError(
			"Asset price must be positive, got %g.", self.AssetPrice)
	}
	if !isFinite(self.StrikePrice) || self.StrikePrice <= 0 {
		return invalidParameterError(
			"Strike price must be positive, got %g.", self.StrikePrice)
	}
	if !isFinite(self.YearsToExpiry) || self.YearsToExpiry < 0 {
		return invalidParameterError(
			"Years to expiry must be non-negative, got %g.", self.YearsToExpiry)
	}
	if !isFinite(self.InterestRate) {
		return invalidParameterError(
			"Interest rate must be finite, got %g.", self.InterestRate)
	}
	if !isFinite(self.DividendYield) {
		return invalidParameterError(
			"Dividend yield must be finite, got %g.", self.DividendYield)
	}
	if !isFinite(self.Volatility) {
		return invalidParameterError(
			"Volatility must be finite, got %g.", self.Volatility)
	}
	switch self.OptionType {
	case Call, Put:
	default:
		return invalidParameterError(
			"Option type must be call or put, got %q.", string(self.OptionType))
	}
	switch self.ExerciseStyle {
	case European, American, Bermudan:
	default:
		return invalidParameterError(
			"Exercise style must be european, american or bermudan, got %q.",
			string(self.ExerciseStyle))
	}
	return nil
}

// CalculateAValue calculates the value of 'a' used in the Black-Scholes
// formula: the volatility of the contract multiplied by the square root of
// the years to expiry. It is the standard deviation of the asset's return
// over the remaining life of the contract.
func (self *OptionContract) CalculateAValue(volatility float64) float64 {
	return volatility * math.Sqrt(self.YearsToExpiry)
}

// CalculateD1Value calculates the value of 'd1' in the Black-Scholes
// formula.
func (self *OptionContract) CalculateD1Value(volatility float64) float64 {
	// math.Log(self.AssetPrice/self.StrikePrice) is the logarithmic return
	// separating the asset from the strike.

	// (self.InterestRate-self.DividendYield+math.Pow(volatility, 2)/2) is
	// the risk-neutral drift of the asset: the carry it earns (rate less
	// the dividend yield it pays away) plus the volatility correction.
	// Multiplied by the years to expiry it gives the expected log drift
	// over the remaining life.

	// The sum is divided by CalculateAValue, the standard deviation of the
	// return over the same period, so d1 is a standardized distance.
	return (math.Log(self.AssetPrice/self.StrikePrice) +
		(self.InterestRate-self.DividendYield+math.Pow(volatility, 2)/2)*
			self.YearsToExpiry) /
		self.CalculateAValue(volatility)
}

// CalculateD2Value calculates the value of 'd2' in the Black-Scholes
// formula: d1 shifted down by one standard deviation of the terminal
// return. Under the risk-neutral measure the normal CDF of d2 is the
// probability that the contract finishes in the money.
func (self *OptionContract) CalculateD2Value(volatility float64) float64 {
	return self.CalculateD1Value(volatility) - self.CalculateAValue(volatility)
}

// CalculateBValue calculates the value of 'b', the discount factor on the
// strike leg: the exponential of the negated interest rate times the years
// to expiry.
func (self *OptionContract) CalculateBValue() float64 {
	return math.Exp(-self.InterestRate * self.YearsToExpiry)
}

// CalculateYValue calculates the dividend discount on the asset leg. With a
// zero dividend yield it is 1 and every formula reduces to the plain
// Black-Scholes form.
func (self *OptionContract) CalculateYValue() float64 {
	return math.Exp(-self.DividendYield * self.YearsToExpiry)
}

// IntrinsicValue returns the exercise payoff of the contract at the given
// asset price.
func (self *OptionContract) IntrinsicValue(assetPrice float64) float64 {
	if self.OptionType == Call {
		return maxFloat(0.0, assetPrice-self.StrikePrice)
	}
	return maxFloat(0.0, self.StrikePrice-assetPrice)
}

// expiryResult prices the degenerate boundary where no time remains: the
// contract is worth its exercise payoff, delta sits on its boundary step
// and the remaining sensitivities vanish.
func (self *OptionContract) expiryResult() *PricingResult {
	result := &PricingResult{
		Price: self.IntrinsicValue(self.AssetPrice),
	}
	if self.OptionType == Call {
		if self.AssetPrice > self.StrikePrice {
			result.Delta = 1
		}
	} else {
		if self.AssetPrice < self.StrikePrice {
			result.Delta = -1
		}
	}
	return result
}

// PricingResult holds the price of a contract together with its
// sensitivities. The Greeks are raw partial derivatives: delta and gamma
// with respect to the asset price, vega per 1.0 of volatility, theta per
// year of elapsed time, rho per 1.0 of rate. Every pricing call produces a
// fresh result; nothing is shared or cached.
type PricingResult struct {
	Price float64
	Delta float64
	Gamma float64
	Vega  float64
	Theta float64
	Rho   float64

	// GreeksApproximate marks Greeks obtained by finite-difference bumping
	// of the price function (BAW, lattices) as opposed to the closed form.
	GreeksApproximate bool
}

// VegaPerVolPoint rescales vega to a one percentage point move in
// volatility, the way option chains usually quote it.
func (self *PricingResult) VegaPerVolPoint() float64 {
	return self.Vega / 100
}

// ThetaPerDay rescales theta to one calendar day of decay, assuming 365
// days in a year.
func (self *PricingResult) ThetaPerDay() float64 {
	return self.Theta / 365
}

// RhoPerRatePoint rescales rho to a one percentage point move in the
// interest rate.
func (self *PricingResult) RhoPerRatePoint() float64 {
	return self.Rho / 100
}
