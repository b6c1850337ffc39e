package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
	"github.com/shopspring/decimal"

	"github.com/joshi-prasad/options"
)

const (
	kMinAssetPrice  = 0.01
	kMinStrikePrice = 0.01
	kMinExpiry      = 1e-6
	kMaxExpiry      = 10.0
	kMinRate        = -1.0
	kMaxRate        = 1.0
	kMinVolatility  = 1e-6
	kMaxVolatility  = 5.0
	kDefaultSigma   = 0.2
	kMinYield       = 0.0
	kMaxYield       = 1.0
	kMaxSteps       = 10000

	kRoundPlaces = 6
)

// priceRequest is the JSON body of POST /price. Pointer fields tell a
// missing value apart from an explicit zero.
type priceRequest struct {
	S             *float64 `json:"S"`
	K             *float64 `json:"K"`
	T             *float64 `json:"T"`
	R             *float64 `json:"r"`
	Sigma         *float64 `json:"sigma"`
	C             *float64 `json:"c"`
	OptionType    string   `json:"option_type"`
	Model         string   `json:"model"`
	ExerciseStyle string   `json:"exercise_style"`
	LatticeSteps  *int     `json:"lattice_steps"`
	ExerciseSteps []int    `json:"exercise_steps"`
}

// ivRequest is the JSON body of POST /implied_vol. The volatility is the
// unknown, so the body carries a market price instead of a sigma.
type ivRequest struct {
	S             *float64 `json:"S"`
	K             *float64 `json:"K"`
	T             *float64 `json:"T"`
	R             *float64 `json:"r"`
	C             *float64 `json:"c"`
	MarketPrice   *float64 `json:"market_price"`
	OptionType    string   `json:"option_type"`
	Model         string   `json:"model"`
	ExerciseStyle string   `json:"exercise_style"`
	LatticeSteps  *int     `json:"lattice_steps"`
	ExerciseSteps []int    `json:"exercise_steps"`
}

// pricingInput is a parsed and range-checked request, ready to hand to the
// pricing core.
type pricingInput struct {
	contract      *options.OptionContract
	model         string
	latticeSteps  int
	exerciseSteps []int
}

func (self *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (self *Server) handlePrice(c *gin.Context) {
	var request priceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, badRequestError("JSON body required: %v", err))
		return
	}

	input, err := request.parse()
	if err != nil {
		respondError(c, err)
		return
	}
	pricer, err := buildPricer(input)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := pricer.Price(input.contract)
	warning := ""
	if err != nil {
		if result == nil || !errors.Is(err, options.ErrNonConvergence) {
			respondError(c, err)
			return
		}
		// The early exercise premium did not converge and the price fell
		// back to the european value. Still worth returning, flagged.
		warning = err.Error()
	}

	body := gin.H{
		"price": roundTo(result.Price),
		"greeks": gin.H{
			"Delta":              roundTo(result.Delta),
			"Gamma":              roundTo(result.Gamma),
			"Vega (per 1.0 vol)": roundTo(result.Vega),
			"Vega (per 1% vol)":  roundTo(result.VegaPerVolPoint()),
			"Theta (annual)":     roundTo(result.Theta),
			"Theta (per day)":    roundTo(result.ThetaPerDay()),
			"Rho (per 1.0 rate)": roundTo(result.Rho),
			"Rho (per 1% rate)":  roundTo(result.RhoPerRatePoint()),
		},
		"greeks_approximate": result.GreeksApproximate,
	}
	if warning != "" {
		body["warning"] = warning
	}
	c.JSON(http.StatusOK, body)
}

func (self *Server) handleImpliedVol(c *gin.Context) {
	var request ivRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, badRequestError("JSON body required: %v", err))
		return
	}

	input, marketPrice, err := request.parse()
	if err != nil {
		respondError(c, err)
		return
	}
	pricer, err := buildPricer(input)
	if err != nil {
		respondError(c, err)
		return
	}

	volatility, err := options.NewIvSolver(pricer).Solve(
		input.contract, marketPrice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"implied_volatility": roundTo(volatility),
	})
}

func (self *priceRequest) parse() (*pricingInput, error) {
	assetPrice, err := requireFloat(self.S, "S", kMinAssetPrice,
		math.MaxFloat64)
	if err != nil {
		return nil, err
	}
	strikePrice, err := requireFloat(self.K, "K", kMinStrikePrice,
		math.MaxFloat64)
	if err != nil {
		return nil, err
	}
	yearsToExpiry, err := requireFloat(self.T, "T", kMinExpiry, kMaxExpiry)
	if err != nil {
		return nil, err
	}
	interestRate, err := optionalFloat(self.R, 0.0, "r", kMinRate, kMaxRate)
	if err != nil {
		return nil, err
	}
	volatility, err := optionalFloat(self.Sigma, kDefaultSigma, "sigma",
		kMinVolatility, kMaxVolatility)
	if err != nil {
		return nil, err
	}
	dividendYield, err := optionalFloat(self.C, 0.0, "c", kMinYield,
		kMaxYield)
	if err != nil {
		return nil, err
	}
	optionType, err := parseOptionType(self.OptionType)
	if err != nil {
		return nil, err
	}
	model, steps, err := parseModel(self.Model, self.LatticeSteps)
	if err != nil {
		return nil, err
	}

	return &pricingInput{
		contract: &options.OptionContract{
			AssetPrice:    assetPrice,
			StrikePrice:   strikePrice,
			YearsToExpiry: yearsToExpiry,
			InterestRate:  interestRate,
			DividendYield: dividendYield,
			Volatility:    volatility,
			OptionType:    optionType,
			ExerciseStyle: parseStyle(self.ExerciseStyle, model),
		},
		model:         model,
		latticeSteps:  steps,
		exerciseSteps: self.ExerciseSteps,
	}, nil
}

func (self *ivRequest) parse() (*pricingInput, float64, error) {
	assetPrice, err := requireFloat(self.S, "S", kMinAssetPrice,
		math.MaxFloat64)
	if err != nil {
		return nil, 0, err
	}
	strikePrice, err := requireFloat(self.K, "K", kMinStrikePrice,
		math.MaxFloat64)
	if err != nil {
		return nil, 0, err
	}
	yearsToExpiry, err := requireFloat(self.T, "T", kMinExpiry, kMaxExpiry)
	if err != nil {
		return nil, 0, err
	}
	interestRate, err := optionalFloat(self.R, 0.0, "r", kMinRate, kMaxRate)
	if err != nil {
		return nil, 0, err
	}
	dividendYield, err := optionalFloat(self.C, 0.0, "c", kMinYield,
		kMaxYield)
	if err != nil {
		return nil, 0, err
	}
	marketPrice, err := requireFloat(self.MarketPrice, "market_price", 0.0,
		math.MaxFloat64)
	if err != nil {
		return nil, 0, err
	}
	optionType, err := parseOptionType(self.OptionType)
	if err != nil {
		return nil, 0, err
	}
	model, steps, err := parseModel(self.Model, self.LatticeSteps)
	if err != nil {
		return nil, 0, err
	}

	return &pricingInput{
		contract: &options.OptionContract{
			AssetPrice:    assetPrice,
			StrikePrice:   strikePrice,
			YearsToExpiry: yearsToExpiry,
			InterestRate:  interestRate,
			DividendYield: dividendYield,
			OptionType:    optionType,
			ExerciseStyle: parseStyle(self.ExerciseStyle, model),
		},
		model:         model,
		latticeSteps:  steps,
		exerciseSteps: self.ExerciseSteps,
	}, marketPrice, nil
}

func buildPricer(input *pricingInput) (options.Pricer, error) {
	pricer, err := options.NewPricerForModel(input.model, input.latticeSteps)
	if err != nil {
		return nil, err
	}
	if len(input.exerciseSteps) > 0 {
		lattice, ok := pricer.(options.LatticePricer)
		if !ok {
			return nil, badRequestError(
				"exercise_steps applies to the lattice models, not to %s",
				input.model)
		}
		lattice.SetExerciseSteps(input.exerciseSteps)
	}
	return pricer, nil
}

func parseOptionType(value string) (options.OptionType, error) {
	optionType := options.OptionType(strings.ToLower(value))
	if optionType == "" {
		optionType = options.Call
	}
	if optionType != options.Call && optionType != options.Put {
		return "", badRequestError("option_type must be 'call' or 'put'")
	}
	return optionType, nil
}

func parseModel(value string, latticeSteps *int) (string, int, error) {
	model := strings.ToLower(value)
	if model == "" {
		model = options.ModelBsm
	}
	steps := options.DefaultLatticeSteps
	if latticeSteps != nil {
		steps = *latticeSteps
		if steps < 1 || steps > kMaxSteps {
			return "", 0, badRequestError(
				"lattice_steps must be between 1 and %d", kMaxSteps)
		}
	}
	return model, steps, nil
}

func parseStyle(value string, model string) options.ExerciseStyle {
	if value == "" {
		return options.DefaultStyleForModel(model)
	}
	// Unknown styles pass through so the contract validation rejects them
	// with the usual invalid parameter error.
	return options.ExerciseStyle(strings.ToLower(value))
}

func requireFloat(
	value *float64,
	name string,
	minValue float64,
	maxValue float64) (float64, error) {

	if value == nil {
		return 0, badRequestError("%s is required", name)
	}
	return boundedFloat(*value, name, minValue, maxValue)
}

func optionalFloat(
	value *float64,
	fallback float64,
	name string,
	minValue float64,
	maxValue float64) (float64, error) {

	if value == nil {
		return fallback, nil
	}
	return boundedFloat(*value, name, minValue, maxValue)
}

func boundedFloat(
	x float64,
	name string,
	minValue float64,
	maxValue float64) (float64, error) {

	if math.IsNaN(x) || x < minValue {
		return 0, badRequestError("%s must be >= %g", name, minValue)
	}
	if x > maxValue {
		return 0, badRequestError("%s must be <= %g", name, maxValue)
	}
	return x, nil
}

// roundTo rounds a value to the wire precision. NaN and infinities pass
// through untouched, the JSON encoder is the one to complain about them.
func roundTo(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	rounded, _ := decimal.NewFromFloat(value).Round(kRoundPlaces).Float64()
	return rounded
}

func respondError(c *gin.Context, err error) {
	kind := options.ErrorKind(err)
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	c.JSON(status, gin.H{"error": message, "kind": kind})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, options.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, options.ErrNoArbitrageViolation):
		return http.StatusBadRequest
	case errors.Is(err, options.ErrInvalidLatticeParameters):
		return http.StatusUnprocessableEntity
	case errors.Is(err, options.ErrNonConvergence):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func badRequestError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	glog.Error(msg)
	return fmt.Errorf("%w: %s", options.ErrInvalidParameter, msg)
}
