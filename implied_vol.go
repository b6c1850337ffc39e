package options

import (
	"errors"
	"math"
)

const (
	// kIvSigmaLow and kIvSigmaHigh bracket the volatility search. The low
	// end is open: a market price implying less volatility than this fails
	// the arbitrage bounds first.
	kIvSigmaLow  = 1e-8
	kIvSigmaHigh = 5.0

	// kIvInitialGuess is where the search starts, a typical equity
	// volatility.
	kIvInitialGuess = 0.2

	// kIvPriceTolerance is the absolute price error at which the solver
	// accepts a volatility.
	kIvPriceTolerance = 1e-6

	// kIvSigmaTolerance is the bracket width at which the solver stops
	// refining and returns the midpoint. Inside a bracket this narrow the
	// price is flat to machine precision.
	kIvSigmaTolerance = 1e-9

	// kIvMaxIterations is the default iteration cap.
	kIvMaxIterations = 100

	// kIvVegaFloor is the smallest vega a Newton step will divide by.
	kIvVegaFloor = 1e-8
)

// IvSolver inverts a pricing model for volatility: it finds the volatility
// at which the model reproduces an observed market price. The solver is a
// safeguarded Newton iteration. It takes a Newton step when the pricer
// reports a usable vega and the step stays inside the current bracket, and
// falls back to bisection otherwise, so it converges for any pricer whose
// price grows with volatility.
type IvSolver struct {
	pricer        Pricer
	maxIterations int
}

func NewIvSolver(pricer Pricer) *IvSolver {
	return &IvSolver{
		pricer:        pricer,
		maxIterations: kIvMaxIterations,
	}
}

// SetMaxIterations overrides the iteration cap.
func (self *IvSolver) SetMaxIterations(iterations int) {
	self.maxIterations = iterations
}

// Solve returns the implied volatility of the contract at the given market
// price. The contract's own Volatility field is ignored. Market prices at
// or outside the no-arbitrage bounds fail with ErrNoArbitrageViolation;
// a search that exhausts the iteration cap fails with ErrNonConvergence.
func (self *IvSolver) Solve(contract *OptionContract,
	marketPrice float64) (float64, error) {
	if err := contract.Validate(); err != nil {
		return 0, err
	}
	if contract.YearsToExpiry <= 0 {
		return 0, invalidParameterError(
			"Implied volatility needs remaining time value, got %g years "+
				"to expiry.", contract.YearsToExpiry)
	}
	if !isFinite(marketPrice) {
		return 0, invalidParameterError(
			"Market price must be finite, got %g.", marketPrice)
	}
	if err := self.checkArbitrageBounds(contract, marketPrice); err != nil {
		return 0, err
	}

	low := kIvSigmaLow
	high := kIvSigmaHigh
	guess := kIvInitialGuess
	for i := 0; i < self.maxIterations; i++ {
		candidate := *contract
		candidate.Volatility = guess
		result, err := self.pricer.Price(&candidate)
		if err != nil && (result == nil || !errors.Is(err, ErrNonConvergence)) {
			return 0, err
		}
		residual := result.Price - marketPrice
		if math.Abs(residual) < kIvPriceTolerance {
			return guess, nil
		}

		// The price grows with volatility, so the sign of the residual
		// says which side of the guess the root is on.
		if residual > 0 {
			high = guess
		} else {
			low = guess
		}
		if high-low < kIvSigmaTolerance {
			return (low + high) / 2, nil
		}

		next := 0.0
		newton := false
		if isFinite(result.Vega) && result.Vega > kIvVegaFloor {
			next = guess - residual/result.Vega
			if isFinite(next) && next > low && next < high {
				newton = true
			}
		}
		if !newton {
			next = (low + high) / 2
		}
		guess = next
	}
	return 0, nonConvergenceError(
		"Implied volatility did not converge within %d iterations for "+
			"market price %g.", self.maxIterations, marketPrice)
}

// checkArbitrageBounds rejects market prices no volatility can reproduce.
// European bounds come from the discounted forward; American contracts can
// be exercised now, which raises the floor to intrinsic and the ceiling to
// the undiscounted asset or strike. Bermudan contracts may not be
// exercisable today, so they keep the European floor with the American
// ceiling.
func (self *IvSolver) checkArbitrageBounds(contract *OptionContract,
	marketPrice float64) error {
	discountedAsset := contract.AssetPrice * contract.CalculateYValue()
	discountedStrike := contract.StrikePrice * contract.CalculateBValue()

	floor := 0.0
	ceiling := 0.0
	if contract.OptionType == Call {
		floor = maxFloat(0.0, discountedAsset-discountedStrike)
		ceiling = discountedAsset
	} else {
		floor = maxFloat(0.0, discountedStrike-discountedAsset)
		ceiling = discountedStrike
	}
	switch contract.ExerciseStyle {
	case American:
		floor = maxFloat(floor,
			contract.IntrinsicValue(contract.AssetPrice))
		fallthrough
	case Bermudan:
		if contract.OptionType == Call {
			ceiling = contract.AssetPrice
		} else {
			ceiling = contract.StrikePrice
		}
	}

	if marketPrice <= floor {
		return noArbitrageError(
			"Market price %g is at or below the arbitrage floor %g; no "+
				"volatility can reproduce it.", marketPrice, floor)
	}
	if marketPrice >= ceiling {
		return noArbitrageError(
			"Market price %g is at or above the arbitrage ceiling %g; no "+
				"volatility can reproduce it.", marketPrice, ceiling)
	}
	return nil
}
