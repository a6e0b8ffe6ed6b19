// Package viz provides the terminal front-end for the cloth simulator.
//
// The interactive view is a Bubble Tea program: a 60 Hz tick feeds frame
// timestamps to the step scheduler, and the cloth's constraint edges are
// rasterized onto a braille-pixel [Canvas]. The side panel exposes the
// solver parameters; edits are validated at this boundary and the
// previous value is kept when an edit is rejected.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset (rebuild topology)
//	F     - Forget stored impulse (zero lambdas)
//	M     - Toggle Gauss-Seidel / Jacobi
//	W     - Toggle warm start
//	Tab   - Cycle parameters, Up/Down tune
package viz
