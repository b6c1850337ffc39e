package options

import (
	"math"
)

// trinomialParameters holds the per-step quantities of a log-space
// trinomial lattice.
type trinomialParameters struct {
	stepYears       float64
	logSpacing      float64
	probabilityUp   float64
	probabilityMid  float64
	probabilityDown float64
	discount        float64
}

// newTrinomialParameters derives the lattice step. Nodes are spaced one
// volatility times the square root of three step-years apart in log price,
// and the branch probabilities absorb the risk-neutral drift. Any
// probability outside [0, 1] is an error; nothing is clamped, because a
// clamped lattice silently prices a different process.
func newTrinomialParameters(contract *OptionContract,
	steps int) (*trinomialParameters, error) {
	if steps < 1 {
		return nil, invalidLatticeError(
			"Lattice step count must be at least 1, got %d.", steps)
	}
	stepYears := contract.YearsToExpiry / float64(steps)
	logSpacing := contract.Volatility * math.Sqrt(3*stepYears)
	drift := contract.InterestRate - contract.DividendYield -
		math.Pow(contract.Volatility, 2)/2
	shift := drift * math.Sqrt(stepYears) /
		(2 * contract.Volatility * math.Sqrt(3))
	probabilityUp := 1.0/6 + shift
	probabilityDown := 1.0/6 - shift
	probabilityMid := 1 - probabilityUp - probabilityDown
	for _, probability := range []float64{
		probabilityUp, probabilityMid, probabilityDown} {
		if !isFinite(probability) || probability < 0 || probability > 1 {
			return nil, invalidLatticeError(
				"Trinomial branch probabilities (%g, %g, %g) leave [0, 1] "+
					"with %d steps. Increase the step count.",
				probabilityUp, probabilityMid, probabilityDown, steps)
		}
	}
	return &trinomialParameters{
		stepYears:       stepYears,
		logSpacing:      logSpacing,
		probabilityUp:   probabilityUp,
		probabilityMid:  probabilityMid,
		probabilityDown: probabilityDown,
		discount:        math.Exp(-contract.InterestRate * stepYears),
	}, nil
}

// TrinomialPricer prices contracts on a recombining log-space trinomial
// lattice. Like the binomial pricer it supports all exercise styles, keeps
// one level of node values and reports finite-difference Greeks; the extra
// middle branch buys faster convergence per step.
type TrinomialPricer struct {
	steps         int
	exerciseSteps []int
}

func NewTrinomialPricer(steps int) *TrinomialPricer {
	return &TrinomialPricer{steps: steps}
}

func (self *TrinomialPricer) SetExerciseSteps(steps []int) {
	self.exerciseSteps = steps
}

func (self *TrinomialPricer) Price(
	contract *OptionContract) (*PricingResult, error) {
	if err := contract.Validate(); err != nil {
		return nil, err
	}
	if contract.YearsToExpiry == 0 {
		return contract.expiryResult(), nil
	}
	if contract.Volatility <= 0 {
		return nil, invalidParameterError(
			"Volatility must be positive to price before expiry, got %g.",
			contract.Volatility)
	}
	schedule, err := exerciseSchedule(contract, self.steps, self.exerciseSteps)
	if err != nil {
		return nil, err
	}
	params, err := newTrinomialParameters(contract, self.steps)
	if err != nil {
		return nil, err
	}
	basePrice := self.induct(contract, params, schedule)

	// Asset bumps of one node spacing each side, as in the binomial
	// pricer.
	moveUp := math.Exp(params.logSpacing)
	bumpUp := contract.AssetPrice * (moveUp - 1)
	bumpDown := contract.AssetPrice * (1 - 1/moveUp)
	return fdGreeks(contract, basePrice, bumpUp, bumpDown,
		func(bumped *OptionContract) (float64, error) {
			return self.treePrice(bumped, schedule)
		})
}

func (self *TrinomialPricer) treePrice(contract *OptionContract,
	schedule []bool) (float64, error) {
	params, err := newTrinomialParameters(contract, self.steps)
	if err != nil {
		return 0, err
	}
	return self.induct(contract, params, schedule), nil
}

func (self *TrinomialPricer) induct(contract *OptionContract,
	params *trinomialParameters, schedule []bool) float64 {

	// Terminal payoffs across the full width of the lattice, lowest node
	// first. Level i spans 2i+1 nodes; node j of a level sits j spacings
	// above the lowest node of that level.
	width := 2*self.steps + 1
	moveUp := math.Exp(params.logSpacing)
	values := make([]float64, width)
	asset := contract.AssetPrice *
		math.Exp(-float64(self.steps)*params.logSpacing)
	for j := 0; j < width; j++ {
		values[j] = contract.IntrinsicValue(asset)
		asset *= moveUp
	}

	// Node j of a level branches to nodes j, j+1 and j+2 of the level
	// below it (down, middle, up). The in-place ascending overwrite is
	// safe for the same reason as in the binomial pricer.
	for level := self.steps - 1; level >= 0; level-- {
		asset = contract.AssetPrice *
			math.Exp(-float64(level) * params.logSpacing)
		for j := 0; j <= 2*level; j++ {
			value := params.discount * (params.probabilityDown*values[j] +
				params.probabilityMid*values[j+1] +
				params.probabilityUp*values[j+2])
			if schedule[level] {
				value = maxFloat(value, contract.IntrinsicValue(asset))
			}
			values[j] = value
			asset *= moveUp
		}
	}
	return values[0]
}
