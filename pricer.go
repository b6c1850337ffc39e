package options

// Pricer values an option contract. Implementations are safe for
// concurrent use, return a fresh result on every call and never retain or
// mutate the contract they are given.
type Pricer interface {
	Price(contract *OptionContract) (*PricingResult, error)
}

// Model names accepted by NewPricerForModel and by the pricing service.
const (
	ModelBsm       = "bsm"
	ModelBaw       = "baw"
	ModelBinomial  = "binomial"
	ModelTrinomial = "trinomial"
)

// DefaultLatticeSteps is the step count the lattice pricers get when the
// caller does not choose one.
const DefaultLatticeSteps = 100

// NewPricerForModel builds the pricer for a model name. The steps argument
// applies to the lattice models and is ignored by the closed-form ones.
func NewPricerForModel(model string, steps int) (Pricer, error) {
	switch model {
	case ModelBsm:
		return NewBsmPricer(), nil
	case ModelBaw:
		return NewBawPricer(), nil
	case ModelBinomial:
		return NewBinomialPricer(steps), nil
	case ModelTrinomial:
		return NewTrinomialPricer(steps), nil
	}
	return nil, invalidParameterError(
		"Unknown pricing model %q. Supported models are %s, %s, %s and %s.",
		model, ModelBsm, ModelBaw, ModelBinomial, ModelTrinomial)
}

// DefaultStyleForModel returns the exercise style a model prices when the
// caller does not choose one. The closed form is european by construction,
// everything else exists to handle early exercise.
func DefaultStyleForModel(model string) ExerciseStyle {
	if model == ModelBsm {
		return European
	}
	return American
}
