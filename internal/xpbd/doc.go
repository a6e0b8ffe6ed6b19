// Package xpbd provides the shared primitives of the cloth solver.
//
// The package defines the types every other component speaks in:
//
//   - [Vec3]: particle positions and accumulated multipliers
//   - [Params]: solver configuration, immutable during a step
//   - [Mode]: Gauss-Seidel (sequential) vs Jacobi (simultaneous) projection
//
// Extended Position-Based Dynamics (XPBD) augments position-based
// constraint projection with a compliance term 1/(stiffness*dt^2) and a
// persistent Lagrange multiplier per constraint, which the solver can
// carry across frames as a warm start.
//
// # Validation
//
// Params fields come from an interactive surface. [Params.Set] rejects
// out-of-range and non-finite values so a bad input never propagates into
// the solver as NaN; callers keep the previous valid value on error.
package xpbd
