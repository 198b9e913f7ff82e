package ui

import "github.com/rileyhilliard/expml/internal/storage"

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓"
	SymbolFail     = "✗"
	SymbolPending  = "○"
	SymbolProgress = "◐"
	SymbolLatest   = "●"
)

// StatusSymbol returns the symbol shown next to a run status.
func StatusSymbol(status string) string {
	switch status {
	case storage.StatusRunning:
		return SymbolProgress
	case storage.StatusFinished:
		return SymbolSuccess
	case storage.StatusFailed, storage.StatusCrashed:
		return SymbolFail
	default:
		return SymbolPending
	}
}
