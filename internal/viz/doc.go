// Package viz draws field lines in the terminal.
//
// [Canvas] is a braille pixel grid; [Plane] projects the XY plane of the scene
// bounds onto it and [Camera] gives an orbiting perspective view. [Model] is
// the Bubble Tea live viewer that steps the dipole dynamics every frame and
// retraces the lines when the scene changes.
//
// # Key Bindings
//
//	Space - Start/stop the dynamics
//	N     - Step once
//	R     - Reverse time
//	+/-   - Speed
//	A     - Toggle adaptive stepping
//	V     - Toggle 3d view
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
