package options

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
)

// Error kinds surfaced by the pricing core. Callers match them with
// errors.Is and decide their own policy: the service maps them onto HTTP
// statuses, the batch driver records them as row markers. The core itself
// never retries and never clamps an invalid input.
var (
	// ErrInvalidParameter covers non-positive prices or strikes, negative
	// expiries, non-finite inputs, and unrecognized option types or
	// exercise styles.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidLatticeParameters covers degenerate step counts,
	// out-of-range exercise indices, and risk-neutral probabilities falling
	// outside [0, 1]. The caller resolves it by adjusting the step count or
	// the contract.
	ErrInvalidLatticeParameters = errors.New("invalid lattice parameters")

	// ErrNonConvergence is returned when an iterative solve exhausts its
	// iteration cap without meeting tolerance.
	ErrNonConvergence = errors.New("non convergence")

	// ErrNoArbitrageViolation is returned by the implied volatility solver
	// when the market price lies outside the range achievable by any
	// admissible volatility.
	ErrNoArbitrageViolation = errors.New("no arbitrage violation")
)

func invalidParameterError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	glog.Error(msg)
	return fmt.Errorf("%w: %s", ErrInvalidParameter, msg)
}

func invalidLatticeError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	glog.Error(msg)
	return fmt.Errorf("%w: %s", ErrInvalidLatticeParameters, msg)
}

func nonConvergenceError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	glog.Warning(msg)
	return fmt.Errorf("%w: %s", ErrNonConvergence, msg)
}

func noArbitrageError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	glog.Error(msg)
	return fmt.Errorf("%w: %s", ErrNoArbitrageViolation, msg)
}

// ErrorKind returns the machine-readable kind string for a core error, the
// form carried on the service's JSON error body and the batch driver's row
// markers. Errors from outside the core map to "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, ErrInvalidLatticeParameters):
		return "invalid_lattice_parameters"
	case errors.Is(err, ErrNonConvergence):
		return "non_convergence"
	case errors.Is(err, ErrNoArbitrageViolation):
		return "no_arbitrage_violation"
	}
	return "internal"
}
