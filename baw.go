package options

import (
	"errors"
	"math"
)

const (
	// kBawTolerance is the relative tolerance on the high-contact
	// condition when solving for the critical asset price. The absolute
	// tolerance is this value times the strike.
	kBawTolerance = 1e-6

	// kBawMaxIterations caps the critical price iteration.
	kBawMaxIterations = 100
)

// BawPricer prices American contracts with the Barone-Adesi-Whaley
// quadratic approximation. The American price is decomposed into the
// European price plus an early exercise premium A*(S/S*)^q, where the
// critical asset price S* is found by Newton iteration on the high-contact
// condition. Greeks come from finite differences of the approximate price.
//
// If the critical price iteration fails to converge the pricer falls back
// to the European value and returns it together with a wrapped
// ErrNonConvergence. Callers that can live with the European lower bound
// may keep the result; callers that cannot should treat the error as fatal.
type BawPricer struct {
}

func NewBawPricer() *BawPricer {
	return &BawPricer{}
}

func (self *BawPricer) Price(contract *OptionContract) (*PricingResult, error) {
	if err := contract.Validate(); err != nil {
		return nil, err
	}
	if contract.ExerciseStyle != American {
		return nil, invalidParameterError(
			"Barone-Adesi-Whaley prices american exercise only, got %q.",
			string(contract.ExerciseStyle))
	}
	if contract.YearsToExpiry == 0 {
		return contract.expiryResult(), nil
	}
	if contract.Volatility <= 0 {
		return nil, invalidParameterError(
			"Volatility must be positive to price before expiry, got %g.",
			contract.Volatility)
	}

	// Early exercise is never optimal for a call on an asset that pays
	// nothing, or a put when rates are non-positive. The European closed
	// form is then exact and its analytic Greeks apply.
	if self.europeanOptimal(contract) {
		return bsmResult(contract)
	}

	basePrice, baseErr := self.americanPrice(contract)
	if baseErr != nil && !errors.Is(baseErr, ErrNonConvergence) {
		return nil, baseErr
	}
	assetBump := contract.AssetPrice * kFdRelativeBump
	result, err := fdGreeks(contract, basePrice, assetBump, assetBump,
		self.priceOnly)
	if err != nil {
		return nil, err
	}
	return result, baseErr
}

// europeanOptimal reports whether holding to expiry always dominates early
// exercise, in which case the American contract is worth its European
// counterpart.
func (self *BawPricer) europeanOptimal(contract *OptionContract) bool {
	if contract.OptionType == Call {
		return contract.DividendYield <= 0
	}
	return contract.InterestRate <= 0
}

// priceOnly adapts americanPrice for finite-difference bumping. A bumped
// contract that fails to converge still yields its European fallback, so
// the Greeks stay usable.
func (self *BawPricer) priceOnly(contract *OptionContract) (float64, error) {
	price, err := self.americanPrice(contract)
	if err != nil {
		if errors.Is(err, ErrNonConvergence) {
			return price, nil
		}
		return 0, err
	}
	return price, nil
}

func (self *BawPricer) americanPrice(
	contract *OptionContract) (float64, error) {
	if contract.YearsToExpiry == 0 {
		return contract.IntrinsicValue(contract.AssetPrice), nil
	}
	european, err := bsmResult(contract)
	if err != nil {
		return 0, err
	}
	if self.europeanOptimal(contract) {
		return european.Price, nil
	}
	if contract.OptionType == Call {
		return self.callPrice(contract, european.Price)
	}
	return self.putPrice(contract, european.Price)
}

// qValue computes the exponent of the early exercise premium: the relevant
// root of q^2 + (n-1)q - M/K(T) = 0, where n carries the drift, M the rate
// and K(T) = 1 - exp(-rT). Calls take the positive root, puts the negative
// one. With perpetual set, K(T) is 1 and the roots describe the perpetual
// contract used to seed the iteration.
func (self *BawPricer) qValue(contract *OptionContract, call bool,
	perpetual bool) float64 {
	variance := math.Pow(contract.Volatility, 2)
	n := 2 * (contract.InterestRate - contract.DividendYield) / variance
	ratio := 0.0
	if perpetual {
		ratio = 2 * contract.InterestRate / variance
	} else {
		kt := 1 - contract.CalculateBValue()
		if kt == 0 {
			// The zero-rate limit of (2r/variance) / (1 - exp(-rT)).
			ratio = 2 / (variance * contract.YearsToExpiry)
		} else {
			ratio = 2 * contract.InterestRate / (variance * kt)
		}
	}
	root := math.Sqrt(math.Pow(n-1, 2) + 4*ratio)
	if call {
		return (-(n - 1) + root) / 2
	}
	return (-(n - 1) - root) / 2
}

// callPrice values an American call with a positive dividend yield.
func (self *BawPricer) callPrice(contract *OptionContract,
	europeanPrice float64) (float64, error) {
	q2 := self.qValue(contract, true, false)
	critical, err := self.solveCallCriticalPrice(contract, q2)
	if err != nil {
		// The European price is a usable lower bound. Hand it back with
		// the error and let the caller decide.
		return europeanPrice, err
	}
	if contract.AssetPrice >= critical {
		// Above the exercise boundary the contract is worth immediate
		// exercise.
		return contract.AssetPrice - contract.StrikePrice, nil
	}
	shadow := *contract
	shadow.AssetPrice = critical
	d1 := shadow.CalculateD1Value(contract.Volatility)
	premium := (critical / q2) *
		(1 - contract.CalculateYValue()*NormCdf(d1))
	return europeanPrice +
		premium*math.Pow(contract.AssetPrice/critical, q2), nil
}

// solveCallCriticalPrice finds the asset price above which immediate
// exercise of the call is optimal. The iteration is seeded between the
// strike and the perpetual boundary and refines the high-contact condition
// S* - K = c(S*) + (1 - exp(-cT) N(d1)) S* / q2 with Newton steps.
func (self *BawPricer) solveCallCriticalPrice(contract *OptionContract,
	q2 float64) (float64, error) {
	strike := contract.StrikePrice
	carry := contract.InterestRate - contract.DividendYield
	expiry := contract.YearsToExpiry
	a := contract.CalculateAValue(contract.Volatility)
	yield := contract.CalculateYValue()

	q2Perpetual := self.qValue(contract, true, true)
	boundary := strike / (1 - 1/q2Perpetual)
	h2 := -(carry*expiry + 2*a) * strike / (boundary - strike)
	guess := strike + (boundary-strike)*(1-math.Exp(h2))

	shadow := *contract
	for i := 0; i < kBawMaxIterations; i++ {
		if !isFinite(guess) || guess <= 0 {
			break
		}
		shadow.AssetPrice = guess
		european, err := bsmResult(&shadow)
		if err != nil {
			return 0, err
		}
		d1 := shadow.CalculateD1Value(contract.Volatility)
		lhs := guess - strike
		rhs := european.Price + (1-yield*NormCdf(d1))*guess/q2
		if math.Abs(lhs-rhs) < kBawTolerance*strike {
			return guess, nil
		}
		slope := yield*NormCdf(d1)*(1-1/q2) +
			(1-yield*NormPDF(d1)/a)/q2
		guess = (strike + rhs - slope*guess) / (1 - slope)
	}
	return 0, nonConvergenceError(
		"Critical asset price for the american call did not converge "+
			"within %d iterations (strike %g, expiry %g).",
		kBawMaxIterations, strike, expiry)
}

// putPrice values an American put with a positive interest rate.
func (self *BawPricer) putPrice(contract *OptionContract,
	europeanPrice float64) (float64, error) {
	q1 := self.qValue(contract, false, false)
	critical, err := self.solvePutCriticalPrice(contract, q1)
	if err != nil {
		return europeanPrice, err
	}
	if contract.AssetPrice <= critical {
		return contract.StrikePrice - contract.AssetPrice, nil
	}
	shadow := *contract
	shadow.AssetPrice = critical
	d1 := shadow.CalculateD1Value(contract.Volatility)
	premium := -(critical / q1) *
		(1 - contract.CalculateYValue()*NormCdf(-d1))
	return europeanPrice +
		premium*math.Pow(contract.AssetPrice/critical, q1), nil
}

// solvePutCriticalPrice finds the asset price below which immediate
// exercise of the put is optimal. It mirrors the call solver with the
// negative exponent root and a seed that approaches the strike from below.
func (self *BawPricer) solvePutCriticalPrice(contract *OptionContract,
	q1 float64) (float64, error) {
	strike := contract.StrikePrice
	carry := contract.InterestRate - contract.DividendYield
	expiry := contract.YearsToExpiry
	a := contract.CalculateAValue(contract.Volatility)
	yield := contract.CalculateYValue()

	q1Perpetual := self.qValue(contract, false, true)
	boundary := strike / (1 - 1/q1Perpetual)
	h1 := (carry*expiry - 2*a) * strike / (strike - boundary)
	guess := boundary + (strike-boundary)*math.Exp(h1)

	shadow := *contract
	for i := 0; i < kBawMaxIterations; i++ {
		if !isFinite(guess) || guess <= 0 {
			break
		}
		shadow.AssetPrice = guess
		european, err := bsmResult(&shadow)
		if err != nil {
			return 0, err
		}
		d1 := shadow.CalculateD1Value(contract.Volatility)
		lhs := strike - guess
		rhs := european.Price - (1-yield*NormCdf(-d1))*guess/q1
		if math.Abs(lhs-rhs) < kBawTolerance*strike {
			return guess, nil
		}
		slope := -yield*NormCdf(-d1)*(1-1/q1) -
			(1+yield*NormPDF(d1)/a)/q1
		guess = (strike - rhs + slope*guess) / (1 + slope)
	}
	return 0, nonConvergenceError(
		"Critical asset price for the american put did not converge "+
			"within %d iterations (strike %g, expiry %g).",
		kBawMaxIterations, strike, expiry)
}
