// Package ui provides the styled output of expml's non-interactive commands:
// the color palette, status symbols, the run listing table and the header
// printed above it.
//
// Colors are ANSI codes so output follows the terminal theme:
//
//	ColorSuccess   (green)  - Finished runs
//	ColorError     (red)    - Failed or crashed runs
//	ColorInfo      (cyan)   - Running runs
//	ColorMuted     (gray)   - Secondary text
//
// Use DisableColors() for plain output (display.color: never, or a pipe).
package ui
