// Package viz provides a terminal browser for solved fiber modes.
//
// The browser is a Bubble Tea program:
//
//   - [Browser]: steps through the modes of a set, one profile at a time
//   - [Canvas]: Braille-based pixel canvas with ordered dithering
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	j/k   - Previous/next mode
//	n     - Jump to the next near-degenerate group
//	c     - Cycle intensity, real and imaginary parts
//	t     - Cycle color themes
//	o     - Toggle the core outline
//	?     - Show help overlay
package viz
