// Package viz renders a running particle simulation in the terminal.
//
//   - [Model]: Bubble Tea model that steps a [sim.Simulator] on each tick
//   - [Canvas]: Braille pixel canvas, 2x4 dots per character cell
//   - [EnergyChart]: asciigraph plot of an energy series
//
// # Key Bindings
//
//	Space - Pause/Resume
//	M     - Toggle flat / cell-list force evaluation
//	G     - Toggle cell grid overlay
//	+/-   - Steps per frame
//	Q     - Quit
package viz
