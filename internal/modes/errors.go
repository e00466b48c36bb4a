package modes

import "errors"

// Domain errors for mode solving and derived operators.
var (
	// ErrPrecondition indicates a solve without wavelength or index profile.
	ErrPrecondition = errors.New("modes: wavelength and index profile must be set")

	// ErrNoModes indicates a request that needs a solved, non-empty mode set.
	ErrNoModes = errors.New("modes: no solved modes available")

	// ErrInvalidArgument indicates a malformed argument (shift, npola, radius).
	ErrInvalidArgument = errors.New("modes: invalid argument")

	// ErrCurvatureReapplied indicates a curvature perturbation requested on a
	// mode set that was already solved for a bent fiber.
	ErrCurvatureReapplied = errors.New("modes: curvature perturbation requires modes solved for a straight fiber")

	// ErrParameterBounds indicates a solver parameter outside its valid range.
	ErrParameterBounds = errors.New("modes: parameter out of valid bounds")
)
