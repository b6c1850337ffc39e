package options_test

import (
	"errors"
	"testing"

	"github.com/joshi-prasad/options"
)

func TestBinomialConvergesToClosedForm(t *testing.T) {
	lattice := options.NewBinomialPricer(2000)
	bsm := options.NewBsmPricer()

	for _, optionType := range []options.OptionType{options.Call, options.Put} {
		contract := &options.OptionContract{
			AssetPrice:    100,
			StrikePrice:   100,
			YearsToExpiry: 1,
			InterestRate:  0.05,
			Volatility:    0.2,
			OptionType:    optionType,
			ExerciseStyle: options.European,
		}
		latticeResult, err := lattice.Price(contract)
		if err != nil {
			t.Fatalf("lattice Price returned an error: %v", err)
		}
		closedForm, err := bsm.Price(contract)
		if err != nil {
			t.Fatalf("closed-form Price returned an error: %v", err)
		}
		if !approxEqual(latticeResult.Price, closedForm.Price, 1e-3) {
			t.Errorf("%s: lattice %v differs from closed form %v by more "+
				"than 1e-3", optionType, latticeResult.Price, closedForm.Price)
		}
		if !latticeResult.GreeksApproximate {
			t.Errorf("lattice greeks not reported as approximate")
		}
		if !approxEqual(latticeResult.Delta, closedForm.Delta, 2e-3) {
			t.Errorf("%s delta: lattice %v, closed form %v", optionType,
				latticeResult.Delta, closedForm.Delta)
		}
		if !approxEqual(latticeResult.Gamma, closedForm.Gamma, 2e-3) {
			t.Errorf("%s gamma: lattice %v, closed form %v", optionType,
				latticeResult.Gamma, closedForm.Gamma)
		}
		if !approxEqual(latticeResult.Vega, closedForm.Vega, 0.5) {
			t.Errorf("%s vega: lattice %v, closed form %v", optionType,
				latticeResult.Vega, closedForm.Vega)
		}
		if !approxEqual(latticeResult.Theta, closedForm.Theta, 0.05) {
			t.Errorf("%s theta: lattice %v, closed form %v", optionType,
				latticeResult.Theta, closedForm.Theta)
		}
		if !approxEqual(latticeResult.Rho, closedForm.Rho, 0.5) {
			t.Errorf("%s rho: lattice %v, closed form %v", optionType,
				latticeResult.Rho, closedForm.Rho)
		}
	}
}

func TestBinomialAmericanPut(t *testing.T) {
	lattice := options.NewBinomialPricer(500)

	american := &options.OptionContract{
		AssetPrice:    100,
		StrikePrice:   100,
		YearsToExpiry: 1,
		InterestRate:  0.05,
		Volatility:    0.2,
		OptionType:    options.Put,
		ExerciseStyle: options.American,
	}
	european := *american
	european.ExerciseStyle = options.European

	americanResult, err := lattice.Price(american)
	if err != nil {
		t.Fatalf("american Price returned an error: %v", err)
	}
	europeanResult, err := lattice.Price(&european)
	if err != nil {
		t.Fatalf("european Price returned an error: %v", err)
	}
	if americanResult.Price <= europeanResult.Price {
		t.Errorf("american put %v does not exceed european put %v",
			americanResult.Price, europeanResult.Price)
	}

	// Deep in the money the american put must be worth at least immediate
	// exercise.
	deep := *american
	deep.AssetPrice = 80
	deepResult, err := lattice.Price(&deep)
	if err != nil {
		t.Fatalf("deep Price returned an error: %v", err)
	}
	if deepResult.Price < 20 {
		t.Errorf("deep american put %v below exercise payoff 20",
			deepResult.Price)
	}
}

func TestBinomialBermudanBetweenStyles(t *testing.T) {
	steps := 200
	european := options.NewBinomialPricer(steps)
	american := options.NewBinomialPricer(steps)
	bermudan := options.NewBinomialPricer(steps)
	bermudan.SetExerciseSteps([]int{50, 100, 150, 200})

	base := options.OptionContract{
		AssetPrice:    100,
		StrikePrice:   100,
		YearsToExpiry: 1,
		InterestRate:  0.05,
		Volatility:    0.2,
		OptionType:    options.Put,
	}
	europeanContract := base
	europeanContract.ExerciseStyle = options.European
	americanContract := base
	americanContract.ExerciseStyle = options.American
	bermudanContract := base
	bermudanContract.ExerciseStyle = options.Bermudan

	europeanResult, err := european.Price(&europeanContract)
	if err != nil {
		t.Fatalf("european Price returned an error: %v", err)
	}
	americanResult, err := american.Price(&americanContract)
	if err != nil {
		t.Fatalf("american Price returned an error: %v", err)
	}
	bermudanResult, err := bermudan.Price(&bermudanContract)
	if err != nil {
		t.Fatalf("bermudan Price returned an error: %v", err)
	}

	if bermudanResult.Price <= europeanResult.Price {
		t.Errorf("bermudan put %v does not exceed european put %v",
			bermudanResult.Price, europeanResult.Price)
	}
	if americanResult.Price < bermudanResult.Price {
		t.Errorf("american put %v below bermudan put %v",
			americanResult.Price, bermudanResult.Price)
	}
}

func TestBinomialBermudanFullScheduleMatchesAmerican(t *testing.T) {
	steps := 200
	everyStep := make([]int, steps+1)
	for ii := range everyStep {
		everyStep[ii] = ii
	}
	bermudan := options.NewBinomialPricer(steps)
	bermudan.SetExerciseSteps(everyStep)
	american := options.NewBinomialPricer(steps)

	base := options.OptionContract{
		AssetPrice:    100,
		StrikePrice:   105,
		YearsToExpiry: 1,
		InterestRate:  0.05,
		Volatility:    0.25,
		OptionType:    options.Put,
	}
	bermudanContract := base
	bermudanContract.ExerciseStyle = options.Bermudan
	americanContract := base
	americanContract.ExerciseStyle = options.American

	bermudanResult, err := bermudan.Price(&bermudanContract)
	if err != nil {
		t.Fatalf("bermudan Price returned an error: %v", err)
	}
	americanResult, err := american.Price(&americanContract)
	if err != nil {
		t.Fatalf("american Price returned an error: %v", err)
	}

	// Exercise allowed at every step is exactly the american walk, so the
	// values must agree to the last bit.
	if bermudanResult.Price != americanResult.Price {
		t.Errorf("full-schedule bermudan put %v differs from american put %v",
			bermudanResult.Price, americanResult.Price)
	}
	if bermudanResult.Delta != americanResult.Delta {
		t.Errorf("full-schedule bermudan delta %v differs from american "+
			"delta %v", bermudanResult.Delta, americanResult.Delta)
	}
}

func TestBinomialBermudanValidation(t *testing.T) {
	base := options.OptionContract{
		AssetPrice:    100,
		StrikePrice:   100,
		YearsToExpiry: 1,
		InterestRate:  0.05,
		Volatility:    0.2,
		OptionType:    options.Put,
		ExerciseStyle: options.Bermudan,
	}

	t.Run("EmptySchedule", func(t *testing.T) {
		contract := base
		_, err := options.NewBinomialPricer(200).Price(&contract)
		if err == nil {
			t.Fatalf("expected an error, got nil")
		}
		if !errors.Is(err, options.ErrInvalidParameter) {
			t.Errorf("expected an invalid parameter error, got %v", err)
		}
	})

	t.Run("StepBeyondLattice", func(t *testing.T) {
		pricer := options.NewBinomialPricer(200)
		pricer.SetExerciseSteps([]int{50, 300})
		contract := base
		_, err := pricer.Price(&contract)
		if err == nil {
			t.Fatalf("expected an error, got nil")
		}
		if !errors.Is(err, options.ErrInvalidLatticeParameters) {
			t.Errorf("expected an invalid lattice error, got %v", err)
		}
	})

	t.Run("NegativeStep", func(t *testing.T) {
		pricer := options.NewBinomialPricer(200)
		pricer.SetExerciseSteps([]int{-1})
		contract := base
		_, err := pricer.Price(&contract)
		if err == nil {
			t.Fatalf("expected an error, got nil")
		}
		if !errors.Is(err, options.ErrInvalidLatticeParameters) {
			t.Errorf("expected an invalid lattice error, got %v", err)
		}
	})
}

func TestBinomialInvalidLattice(t *testing.T) {
	contract := options.OptionContract{
		AssetPrice:    100,
		StrikePrice:   100,
		YearsToExpiry: 1,
		InterestRate:  0.05,
		Volatility:    0.2,
		OptionType:    options.Call,
		ExerciseStyle: options.European,
	}

	t.Run("ZeroSteps", func(t *testing.T) {
		c := contract
		_, err := options.NewBinomialPricer(0).Price(&c)
		if err == nil {
			t.Fatalf("expected an error, got nil")
		}
		if !errors.Is(err, options.ErrInvalidLatticeParameters) {
			t.Errorf("expected an invalid lattice error, got %v", err)
		}
		if options.ErrorKind(err) != "invalid_lattice_parameters" {
			t.Errorf("error kind: expected invalid_lattice_parameters, "+
				"got %q", options.ErrorKind(err))
		}
	})

	t.Run("ProbabilityAboveOne", func(t *testing.T) {
		// One step of a year with nearly no volatility cannot match a 50%
		// drift: the risk-neutral probability leaves [0, 1].
		c := contract
		c.Volatility = 0.01
		c.InterestRate = 0.5
		_, err := options.NewBinomialPricer(1).Price(&c)
		if err == nil {
			t.Fatalf("expected an error, got nil")
		}
		if !errors.Is(err, options.ErrInvalidLatticeParameters) {
			t.Errorf("expected an invalid lattice error, got %v", err)
		}
	})
}

func TestBinomialDeterminism(t *testing.T) {
	contract := &options.OptionContract{
		AssetPrice:    100,
		StrikePrice:   105,
		YearsToExpiry: 0.75,
		InterestRate:  0.04,
		DividendYield: 0.01,
		Volatility:    0.25,
		OptionType:    options.Put,
		ExerciseStyle: options.American,
	}
	pricer := options.NewBinomialPricer(750)
	first, err := pricer.Price(contract)
	if err != nil {
		t.Fatalf("first Price returned an error: %v", err)
	}
	second, err := pricer.Price(contract)
	if err != nil {
		t.Fatalf("second Price returned an error: %v", err)
	}
	if first.Price != second.Price || first.Delta != second.Delta ||
		first.Gamma != second.Gamma || first.Vega != second.Vega ||
		first.Theta != second.Theta || first.Rho != second.Rho {
		t.Errorf("repeated pricing not reproducible: %+v vs %+v",
			first, second)
	}
}

func TestBinomialExpiryBoundary(t *testing.T) {
	contract := &options.OptionContract{
		AssetPrice:    108,
		StrikePrice:   100,
		YearsToExpiry: 0,
		InterestRate:  0.05,
		Volatility:    0.2,
		OptionType:    options.Call,
		ExerciseStyle: options.American,
	}
	result, err := options.NewBinomialPricer(100).Price(contract)
	if err != nil {
		t.Fatalf("Price returned an error: %v", err)
	}
	if !approxEqual(result.Price, 8, 1e-12) {
		t.Errorf("price: expected 8, got %v", result.Price)
	}
	if !approxEqual(result.Delta, 1, 1e-12) {
		t.Errorf("delta: expected 1, got %v", result.Delta)
	}
}
