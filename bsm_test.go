package options_test

import (
	"errors"
	"math"
	"testing"

	"github.com/joshi-prasad/options"
)

// approxEqual checks if two float64 values are approximately equal within a
// given tolerance.
func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func TestBsmReferencePrices(t *testing.T) {
	pricer := options.NewBsmPricer()

	t.Run("AtmCall", func(t *testing.T) {
		contract := &options.OptionContract{
			AssetPrice:    100,
			StrikePrice:   100,
			YearsToExpiry: 1,
			InterestRate:  0.05,
			Volatility:    0.2,
			OptionType:    options.Call,
			ExerciseStyle: options.European,
		}
		result, err := pricer.Price(contract)
		if err != nil {
			t.Fatalf("Price returned an error: %v", err)
		}
		if !approxEqual(result.Price, 10.450583572185565, 1e-9) {
			t.Errorf("call price: expected 10.450584, got %v", result.Price)
		}
		if result.GreeksApproximate {
			t.Errorf("closed-form greeks reported as approximate")
		}
	})

	t.Run("AtmPut", func(t *testing.T) {
		contract := &options.OptionContract{
			AssetPrice:    100,
			StrikePrice:   100,
			YearsToExpiry: 1,
			InterestRate:  0.05,
			Volatility:    0.2,
			OptionType:    options.Put,
			ExerciseStyle: options.European,
		}
		result, err := pricer.Price(contract)
		if err != nil {
			t.Fatalf("Price returned an error: %v", err)
		}
		if !approxEqual(result.Price, 5.573526022256971, 1e-9) {
			t.Errorf("put price: expected 5.573526, got %v", result.Price)
		}
	})

	t.Run("DocumentedPutSample", func(t *testing.T) {
		contract := &options.OptionContract{
			AssetPrice:    100,
			StrikePrice:   110,
			YearsToExpiry: 0.25,
			InterestRate:  0.02,
			Volatility:    0.3,
			OptionType:    options.Put,
			ExerciseStyle: options.European,
		}
		result, err := pricer.Price(contract)
		if err != nil {
			t.Fatalf("Price returned an error: %v", err)
		}
		if !approxEqual(result.Price, 12.0854, 1e-3) {
			t.Errorf("put price: expected 12.0854, got %v", result.Price)
		}
	})

	t.Run("WithDividendYield", func(t *testing.T) {
		contract := &options.OptionContract{
			AssetPrice:    100,
			StrikePrice:   100,
			YearsToExpiry: 1,
			InterestRate:  0.05,
			DividendYield: 0.03,
			Volatility:    0.2,
			OptionType:    options.Call,
			ExerciseStyle: options.European,
		}
		result, err := pricer.Price(contract)
		if err != nil {
			t.Fatalf("Price returned an error: %v", err)
		}
		if !approxEqual(result.Price, 8.652529, 1e-4) {
			t.Errorf("call price: expected 8.652529, got %v", result.Price)
		}

		contract.OptionType = options.Put
		result, err = pricer.Price(contract)
		if err != nil {
			t.Fatalf("Price returned an error: %v", err)
		}
		if !approxEqual(result.Price, 6.730918, 1e-4) {
			t.Errorf("put price: expected 6.730918, got %v", result.Price)
		}
	})
}

func TestBsmGreeks(t *testing.T) {
	pricer := options.NewBsmPricer()

	t.Run("AtmCall", func(t *testing.T) {
		contract := &options.OptionContract{
			AssetPrice:    100,
			StrikePrice:   100,
			YearsToExpiry: 1,
			InterestRate:  0.05,
			Volatility:    0.2,
			OptionType:    options.Call,
			ExerciseStyle: options.European,
		}
		result, err := pricer.Price(contract)
		if err != nil {
			t.Fatalf("Price returned an error: %v", err)
		}
		if !approxEqual(result.Delta, 0.6368307, 1e-5) {
			t.Errorf("delta: expected 0.6368307, got %v", result.Delta)
		}
		if !approxEqual(result.Gamma, 0.0187620, 1e-5) {
			t.Errorf("gamma: expected 0.0187620, got %v", result.Gamma)
		}
		if !approxEqual(result.Vega, 37.524035, 1e-4) {
			t.Errorf("vega: expected 37.524035, got %v", result.Vega)
		}
		if !approxEqual(result.Theta, -6.414028, 1e-4) {
			t.Errorf("theta: expected -6.414028, got %v", result.Theta)
		}
		if !approxEqual(result.Rho, 53.232482, 1e-4) {
			t.Errorf("rho: expected 53.232482, got %v", result.Rho)
		}
	})

	t.Run("AtmPut", func(t *testing.T) {
		contract := &options.OptionContract{
			AssetPrice:    100,
			StrikePrice:   100,
			YearsToExpiry: 1,
			InterestRate:  0.05,
			Volatility:    0.2,
			OptionType:    options.Put,
			ExerciseStyle: options.European,
		}
		result, err := pricer.Price(contract)
		if err != nil {
			t.Fatalf("Price returned an error: %v", err)
		}
		if !approxEqual(result.Delta, -0.3631693, 1e-5) {
			t.Errorf("delta: expected -0.3631693, got %v", result.Delta)
		}
		if !approxEqual(result.Gamma, 0.0187620, 1e-5) {
			t.Errorf("gamma: expected 0.0187620, got %v", result.Gamma)
		}
		if !approxEqual(result.Vega, 37.524035, 1e-4) {
			t.Errorf("vega: expected 37.524035, got %v", result.Vega)
		}
		if !approxEqual(result.Theta, -1.657880, 1e-4) {
			t.Errorf("theta: expected -1.657880, got %v", result.Theta)
		}
		if !approxEqual(result.Rho, -41.890461, 1e-4) {
			t.Errorf("rho: expected -41.890461, got %v", result.Rho)
		}
	})

	t.Run("MatchesFiniteDifferences", func(t *testing.T) {
		base := options.OptionContract{
			AssetPrice:    105,
			StrikePrice:   95,
			YearsToExpiry: 0.75,
			InterestRate:  0.03,
			DividendYield: 0.01,
			Volatility:    0.35,
			OptionType:    options.Put,
			ExerciseStyle: options.European,
		}
		price := func(contract options.OptionContract) float64 {
			result, err := pricer.Price(&contract)
			if err != nil {
				t.Fatalf("Price returned an error: %v", err)
			}
			return result.Price
		}
		result, err := pricer.Price(&base)
		if err != nil {
			t.Fatalf("Price returned an error: %v", err)
		}

		up := base
		down := base
		up.AssetPrice += 0.01
		down.AssetPrice -= 0.01
		fdDelta := (price(up) - price(down)) / 0.02
		fdGamma := (price(up) - 2*result.Price + price(down)) / (0.01 * 0.01)
		if !approxEqual(result.Delta, fdDelta, 1e-6) {
			t.Errorf("delta: analytic %v, finite difference %v",
				result.Delta, fdDelta)
		}
		if !approxEqual(result.Gamma, fdGamma, 1e-6) {
			t.Errorf("gamma: analytic %v, finite difference %v",
				result.Gamma, fdGamma)
		}

		up = base
		down = base
		up.Volatility += 1e-4
		down.Volatility -= 1e-4
		fdVega := (price(up) - price(down)) / 2e-4
		if !approxEqual(result.Vega, fdVega, 1e-4) {
			t.Errorf("vega: analytic %v, finite difference %v",
				result.Vega, fdVega)
		}

		up = base
		down = base
		up.YearsToExpiry += 1e-6
		down.YearsToExpiry -= 1e-6
		fdTheta := -(price(up) - price(down)) / 2e-6
		if !approxEqual(result.Theta, fdTheta, 1e-4) {
			t.Errorf("theta: analytic %v, finite difference %v",
				result.Theta, fdTheta)
		}

		up = base
		down = base
		up.InterestRate += 1e-6
		down.InterestRate -= 1e-6
		fdRho := (price(up) - price(down)) / 2e-6
		if !approxEqual(result.Rho, fdRho, 1e-4) {
			t.Errorf("rho: analytic %v, finite difference %v",
				result.Rho, fdRho)
		}
	})

	t.Run("ScaledConventions", func(t *testing.T) {
		result := &options.PricingResult{Vega: 37.52, Theta: -6.41, Rho: 53.23}
		if !approxEqual(result.VegaPerVolPoint(), 0.3752, 1e-9) {
			t.Errorf("vega per vol point: expected 0.3752, got %v",
				result.VegaPerVolPoint())
		}
		if !approxEqual(result.ThetaPerDay(), -6.41/365, 1e-9) {
			t.Errorf("theta per day: expected %v, got %v", -6.41/365,
				result.ThetaPerDay())
		}
		if !approxEqual(result.RhoPerRatePoint(), 0.5323, 1e-9) {
			t.Errorf("rho per rate point: expected 0.5323, got %v",
				result.RhoPerRatePoint())
		}
	})
}

func TestBsmPutCallParity(t *testing.T) {
	pricer := options.NewBsmPricer()
	contracts := []options.OptionContract{
		{AssetPrice: 100, StrikePrice: 100, YearsToExpiry: 1,
			InterestRate: 0.05, Volatility: 0.2},
		{AssetPrice: 100, StrikePrice: 110, YearsToExpiry: 0.25,
			InterestRate: 0.02, Volatility: 0.3},
		{AssetPrice: 50, StrikePrice: 45, YearsToExpiry: 2,
			InterestRate: 0.07, DividendYield: 0.03, Volatility: 0.45},
		{AssetPrice: 250, StrikePrice: 300, YearsToExpiry: 0.5,
			InterestRate: -0.01, DividendYield: 0.02, Volatility: 0.15},
	}
	for _, base := range contracts {
		call := base
		call.OptionType = options.Call
		call.ExerciseStyle = options.European
		put := call
		put.OptionType = options.Put

		callResult, err := pricer.Price(&call)
		if err != nil {
			t.Fatalf("call Price returned an error: %v", err)
		}
		putResult, err := pricer.Price(&put)
		if err != nil {
			t.Fatalf("put Price returned an error: %v", err)
		}

		forward := base.AssetPrice*
			math.Exp(-base.DividendYield*base.YearsToExpiry) -
			base.StrikePrice*math.Exp(-base.InterestRate*base.YearsToExpiry)
		parity := callResult.Price - putResult.Price
		if !approxEqual(parity, forward, 1e-9) {
			t.Errorf("parity violated for strike %v: call-put %v, forward %v",
				base.StrikePrice, parity, forward)
		}
	}
}

func TestBsmVegaNonNegative(t *testing.T) {
	pricer := options.NewBsmPricer()
	for _, strike := range []float64{50, 75, 100, 125, 150} {
		for _, expiry := range []float64{0.1, 1, 3} {
			for _, volatility := range []float64{0.05, 0.2, 1.0} {
				for _, optionType := range []options.OptionType{
					options.Call, options.Put} {
					contract := &options.OptionContract{
						AssetPrice:    100,
						StrikePrice:   strike,
						YearsToExpiry: expiry,
						InterestRate:  0.05,
						Volatility:    volatility,
						OptionType:    optionType,
						ExerciseStyle: options.European,
					}
					result, err := pricer.Price(contract)
					if err != nil {
						t.Fatalf("Price returned an error: %v", err)
					}
					if result.Vega < 0 {
						t.Errorf("negative vega %v at strike %v expiry %v "+
							"volatility %v", result.Vega, strike, expiry,
							volatility)
					}
				}
			}
		}
	}
}

func TestBsmExpiryBoundary(t *testing.T) {
	pricer := options.NewBsmPricer()

	cases := []struct {
		name       string
		assetPrice float64
		optionType options.OptionType
		price      float64
		delta      float64
	}{
		{"ItmCall", 105, options.Call, 5, 1},
		{"OtmCall", 95, options.Call, 0, 0},
		{"ItmPut", 95, options.Put, 5, -1},
		{"OtmPut", 105, options.Put, 0, 0},
		{"AtmCall", 100, options.Call, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			contract := &options.OptionContract{
				AssetPrice:    c.assetPrice,
				StrikePrice:   100,
				YearsToExpiry: 0,
				InterestRate:  0.05,
				Volatility:    0.2,
				OptionType:    c.optionType,
				ExerciseStyle: options.European,
			}
			result, err := pricer.Price(contract)
			if err != nil {
				t.Fatalf("Price returned an error: %v", err)
			}
			if !approxEqual(result.Price, c.price, 1e-12) {
				t.Errorf("price: expected %v, got %v", c.price, result.Price)
			}
			if !approxEqual(result.Delta, c.delta, 1e-12) {
				t.Errorf("delta: expected %v, got %v", c.delta, result.Delta)
			}
			if result.Gamma != 0 || result.Vega != 0 ||
				result.Theta != 0 || result.Rho != 0 {
				t.Errorf("expected remaining greeks to vanish, got %+v",
					result)
			}
		})
	}
}

func TestBsmRejectsInvalid(t *testing.T) {
	pricer := options.NewBsmPricer()
	valid := options.OptionContract{
		AssetPrice:    100,
		StrikePrice:   100,
		YearsToExpiry: 1,
		InterestRate:  0.05,
		Volatility:    0.2,
		OptionType:    options.Call,
		ExerciseStyle: options.European,
	}

	cases := []struct {
		name   string
		mutate func(contract *options.OptionContract)
	}{
		{"ZeroVolatility", func(c *options.OptionContract) {
			c.Volatility = 0
		}},
		{"NegativeVolatility", func(c *options.OptionContract) {
			c.Volatility = -0.2
		}},
		{"ZeroAssetPrice", func(c *options.OptionContract) {
			c.AssetPrice = 0
		}},
		{"NanAssetPrice", func(c *options.OptionContract) {
			c.AssetPrice = math.NaN()
		}},
		{"NegativeStrike", func(c *options.OptionContract) {
			c.StrikePrice = -5
		}},
		{"NegativeExpiry", func(c *options.OptionContract) {
			c.YearsToExpiry = -1
		}},
		{"InfiniteRate", func(c *options.OptionContract) {
			c.InterestRate = math.Inf(1)
		}},
		{"UnknownOptionType", func(c *options.OptionContract) {
			c.OptionType = "straddle"
		}},
		{"UnknownExerciseStyle", func(c *options.OptionContract) {
			c.ExerciseStyle = "asian"
		}},
		{"AmericanStyle", func(c *options.OptionContract) {
			c.ExerciseStyle = options.American
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			contract := valid
			c.mutate(&contract)
			_, err := pricer.Price(&contract)
			if err == nil {
				t.Fatalf("expected an error, got nil")
			}
			if !errors.Is(err, options.ErrInvalidParameter) {
				t.Errorf("expected an invalid parameter error, got %v", err)
			}
			if options.ErrorKind(err) != "invalid_parameter" {
				t.Errorf("error kind: expected invalid_parameter, got %q",
					options.ErrorKind(err))
			}
		})
	}
}
