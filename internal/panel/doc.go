// Package panel draws the board on a terminal and turns key presses into
// switch toggles.
//
// The panel is a board observer. Snapshots are throttled and handed to
// Run, which redraws the whole screen with ANSI escapes:
//
//	led  (led, 2x8)
//	  0 ○○○○●○○○  0x08  sum
//	  1 ○○○○○○○○  0x00
//
// With the keyboard enabled the terminal is put into cbreak mode and the
// keys 1-9, 0, q-p, a-l, z-m address the current switch device in
// row-major order. Ctrl-C still delivers SIGINT.
package panel
