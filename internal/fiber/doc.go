// Package fiber provides sampled transverse refractive-index profiles.
//
// The mode solver consumes profiles through the [IndexProfile] interface:
//
//   - [Grid]: a square sampled profile with row-major index and coordinate fields
//   - [NewStepIndex]: uniform core surrounded by a uniform cladding
//   - [NewGRIN]: power-law graded-index core
//
// # Coordinates
//
// Both axes span [-AreaSize/2, AreaSize/2] with NPoints samples, so the grid
// spacing is AreaSize/(NPoints-1). X varies along columns and Y along rows,
// the same convention as a meshgrid of the axis with itself.
package fiber
