// Package modes extracts the guided modes of a fiber and builds the operators
// that describe propagation through it.
//
// The main types are:
//
//   - [Solver]: holds wavelength and index profile, solves the eigenproblem
//   - [ModeSet]: immutable propagation constants and mode profiles
//   - [TransmissionMatrix]: a propagation matrix with its polarization count
//
// # Example
//
//	s := modes.NewSolver(logger)
//	s.SetIndexProfile(profile)
//	s.SetWavelength(1.55)
//	set, err := s.Solve(ctx, modes.DefaultSolveOptions())
//	tm, err := set.PropagationMatrix(1e6, 1, nil)
//
// # Units
//
// Lengths (wavelength, grid, bend radius, propagation distance) are in
// microns. Angles are in radians.
//
// # Thread Safety
//
// A Solver is not safe for concurrent use. A ModeSet is immutable and may be
// shared between goroutines.
package modes
