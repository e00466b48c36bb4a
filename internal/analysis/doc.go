// Package analysis derives beam quantities from solved mode profiles.
//
// The package includes:
//
//   - [NewFarField]: Fraunhofer far-field intensity through a 2D FFT
//   - [EffectiveArea]: nonlinear effective area (∫|E|²)²/∫|E|⁴
//   - [ModeFieldDiameter]: second-moment diameter of the intensity
//   - [Overlap]: normalized power overlap between two fields
//
// # Units
//
// Lengths follow the index profile, in microns. Far-field axes are direction
// sines, sin θ = λ·f for spatial frequency f.
//
//	ff, err := analysis.NewFarField(set.Profile(0), np, profile.Dh(), set.Wavelength(), 2)
//	fmt.Println(ff.RMSSine())
package analysis
