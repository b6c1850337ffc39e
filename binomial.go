package options

import (
	"math"
)

// binomialParameters holds the per-step quantities of a Cox-Ross-Rubinstein
// lattice.
type binomialParameters struct {
	stepYears   float64
	up          float64
	down        float64
	probability float64
	discount    float64
}

// newBinomialParameters derives the Cox-Ross-Rubinstein step from the
// contract. The up move is the exponential of one standard deviation over
// the step, the down move its reciprocal, and the risk-neutral up
// probability matches the carry-adjusted growth of the asset. A probability
// outside [0, 1] means the step is too coarse for the drift.
func newBinomialParameters(contract *OptionContract,
	steps int) (*binomialParameters, error) {
	if steps < 1 {
		return nil, invalidLatticeError(
			"Lattice step count must be at least 1, got %d.", steps)
	}
	stepYears := contract.YearsToExpiry / float64(steps)
	up := math.Exp(contract.Volatility * math.Sqrt(stepYears))
	down := 1 / up
	growth := math.Exp(
		(contract.InterestRate - contract.DividendYield) * stepYears)
	probability := (growth - down) / (up - down)
	if !isFinite(probability) || probability < 0 || probability > 1 {
		return nil, invalidLatticeError(
			"Risk-neutral up probability %g is outside [0, 1] with %d steps. "+
				"Increase the step count.", probability, steps)
	}
	return &binomialParameters{
		stepYears:   stepYears,
		up:          up,
		down:        down,
		probability: probability,
		discount:    math.Exp(-contract.InterestRate * stepYears),
	}, nil
}

// BinomialPricer prices contracts on a Cox-Ross-Rubinstein binomial
// lattice. It handles all three exercise styles and reports Greeks by
// finite differences. The backward induction keeps a single level of node
// values, so memory stays linear in the step count.
type BinomialPricer struct {
	steps         int
	exerciseSteps []int
}

func NewBinomialPricer(steps int) *BinomialPricer {
	return &BinomialPricer{steps: steps}
}

func (self *BinomialPricer) SetExerciseSteps(steps []int) {
	self.exerciseSteps = steps
}

func (self *BinomialPricer) Price(
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
	params, err := newBinomialParameters(contract, self.steps)
	if err != nil {
		return nil, err
	}
	basePrice := self.induct(contract, params, schedule)

	// The asset bumps straddle one terminal-node spacing on each side.
	// Terminal nodes of the tree sit a factor of up squared apart, and
	// delta and gamma must be read off the resolution the lattice actually
	// has. The schedule depends only on the step count and exercise style
	// and is reused across the bumped contracts.
	bumpUp := contract.AssetPrice * (params.up*params.up - 1)
	bumpDown := contract.AssetPrice * (1 - params.down*params.down)
	return fdGreeks(contract, basePrice, bumpUp, bumpDown,
		func(bumped *OptionContract) (float64, error) {
			return self.treePrice(bumped, schedule)
		})
}

func (self *BinomialPricer) treePrice(contract *OptionContract,
	schedule []bool) (float64, error) {
	params, err := newBinomialParameters(contract, self.steps)
	if err != nil {
		return 0, err
	}
	return self.induct(contract, params, schedule), nil
}

// induct runs the backward induction and returns the value at the root.
func (self *BinomialPricer) induct(contract *OptionContract,
	params *binomialParameters, schedule []bool) float64 {

	// Terminal payoffs. Index j counts down moves, so j = 0 is the highest
	// node of the level and each next node is one down move lower.
	downPerUp := params.down / params.up
	values := make([]float64, self.steps+1)
	asset := contract.AssetPrice * math.Pow(params.up, float64(self.steps))
	for j := range values {
		values[j] = contract.IntrinsicValue(asset)
		asset *= downPerUp
	}

	// Collapse the tree one level at a time, in place. Node j of the
	// current level reads nodes j and j+1 of the level below it, so the
	// ascending overwrite never clobbers a value that is still needed.
	for level := self.steps - 1; level >= 0; level-- {
		asset = contract.AssetPrice * math.Pow(params.up, float64(level))
		for j := 0; j <= level; j++ {
			value := params.discount * (params.probability*values[j] +
				(1-params.probability)*values[j+1])
			if schedule[level] {
				value = maxFloat(value, contract.IntrinsicValue(asset))
			}
			values[j] = value
			asset *= downPerUp
		}
	}
	return values[0]
}
