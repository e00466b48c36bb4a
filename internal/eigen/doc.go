// Package eigen finds the algebraically largest eigenpairs of a Helmholtz
// operator built by package operator.
//
// A straight-fiber operator H is real symmetric. A bent-fiber operator is
// D⁻¹H₀ with D the positive row scale 1+2x/R, which is similar to the
// symmetric matrix S = D^{1/2} H D^{-1/2}. Both cases are solved through S and
// the eigenvectors mapped back with v = D^{-1/2} w.
//
// Two strategies are available:
//
//   - [Dense]: assemble S and factorize it with gonum's EigenSym
//   - [Lanczos]: Krylov iteration with full reorthogonalisation, grown until
//     the wanted Ritz pairs converge
//
// [Largest] picks Dense for small operators and Lanczos otherwise.
package eigen
