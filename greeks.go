package options

const (
	// kFdRelativeBump is the relative step used when bumping volatility
	// and expiry for finite-difference Greeks, and the asset price bump
	// for pricers whose price is smooth in the asset.
	kFdRelativeBump = 1e-4

	// kFdSigmaFloor is the smallest absolute volatility bump. A relative
	// bump of a tiny volatility would drown in rounding noise.
	kFdSigmaFloor = 1e-6

	// kFdExpiryFloor is the smallest absolute expiry bump.
	kFdExpiryFloor = 1e-8

	// kFdRateBump is the absolute step used when bumping the interest
	// rate. Rates can be zero or negative, so a relative step would not
	// work.
	kFdRateBump = 1e-4
)

// fdGreeks estimates the Greeks of a price function by finite differences
// around the contract. basePrice is the already computed price of the
// unbumped contract.
//
// The asset bumps are the caller's because they depend on how the price
// function behaves between samples. A smooth pricer passes a small
// symmetric bump. A lattice pricer passes its own node spacing on each
// side: a lattice price is piecewise linear in the asset between node
// alignments, so differences narrower than one spacing see either zero
// curvature or a payoff kink, never the real gamma. Delta and gamma use
// the slope-of-slopes form, which reduces to the ordinary central
// differences when the bumps are symmetric.
func fdGreeks(contract *OptionContract, basePrice float64,
	assetBumpUp float64, assetBumpDown float64,
	price func(*OptionContract) (float64, error)) (*PricingResult, error) {

	result := &PricingResult{
		Price:             basePrice,
		GreeksApproximate: true,
	}

	up := *contract
	down := *contract
	up.AssetPrice = contract.AssetPrice + assetBumpUp
	down.AssetPrice = contract.AssetPrice - assetBumpDown
	priceUp, err := price(&up)
	if err != nil {
		return nil, err
	}
	priceDown, err := price(&down)
	if err != nil {
		return nil, err
	}
	slopeUp := (priceUp - basePrice) / assetBumpUp
	slopeDown := (basePrice - priceDown) / assetBumpDown
	result.Delta = (priceUp - priceDown) / (assetBumpUp + assetBumpDown)
	result.Gamma = (slopeUp - slopeDown) * 2 / (assetBumpUp + assetBumpDown)

	// Vega. The bump is floored so that very small volatilities still get
	// a usable step; if the downward bump would cross zero only the upward
	// side is used.
	sigmaBump := maxFloat(contract.Volatility*kFdRelativeBump, kFdSigmaFloor)
	up = *contract
	up.Volatility = contract.Volatility + sigmaBump
	priceUp, err = price(&up)
	if err != nil {
		return nil, err
	}
	if contract.Volatility-sigmaBump > 0 {
		down = *contract
		down.Volatility = contract.Volatility - sigmaBump
		priceDown, err = price(&down)
		if err != nil {
			return nil, err
		}
		result.Vega = (priceUp - priceDown) / (2 * sigmaBump)
	} else {
		result.Vega = (priceUp - basePrice) / sigmaBump
	}

	// Theta is the negated sensitivity to the years remaining: value lost
	// as the clock runs forward.
	expiryBump := maxFloat(contract.YearsToExpiry*kFdRelativeBump,
		kFdExpiryFloor)
	up = *contract
	up.YearsToExpiry = contract.YearsToExpiry + expiryBump
	priceUp, err = price(&up)
	if err != nil {
		return nil, err
	}
	if contract.YearsToExpiry-expiryBump > 0 {
		down = *contract
		down.YearsToExpiry = contract.YearsToExpiry - expiryBump
		priceDown, err = price(&down)
		if err != nil {
			return nil, err
		}
		result.Theta = -(priceUp - priceDown) / (2 * expiryBump)
	} else {
		result.Theta = -(priceUp - basePrice) / expiryBump
	}

	// Rho from an absolute rate bump, central on both sides since any
	// finite rate is valid.
	up = *contract
	down = *contract
	up.InterestRate = contract.InterestRate + kFdRateBump
	down.InterestRate = contract.InterestRate - kFdRateBump
	priceUp, err = price(&up)
	if err != nil {
		return nil, err
	}
	priceDown, err = price(&down)
	if err != nil {
		return nil, err
	}
	result.Rho = (priceUp - priceDown) / (2 * kFdRateBump)

	return result, nil
}
