package xpbd

import "errors"

// Domain errors for the constraint solver.
var (
	// ErrDegenerateGeometry indicates two constrained particles became
	// coincident. The grid builder never produces coincident particles, so
	// this signals a topology defect, not a recoverable runtime condition.
	ErrDegenerateGeometry = errors.New("xpbd: coincident particles on constraint")

	// ErrGridTooSmall indicates grid dimensions below the 2x2 minimum.
	ErrGridTooSmall = errors.New("xpbd: grid dimensions must be at least 2x2")

	// ErrParameterBounds indicates a solver parameter outside its valid range.
	ErrParameterBounds = errors.New("xpbd: parameter out of valid bounds")

	// ErrUnknownParameter indicates a parameter name the solver does not know.
	ErrUnknownParameter = errors.New("xpbd: unknown parameter")

	// ErrDiverged indicates a particle position became non-finite, usually
	// from an extreme stiffness and iteration combination.
	ErrDiverged = errors.New("xpbd: simulation diverged")
)
