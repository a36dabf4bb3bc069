package finder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pders01/mifind/internal/search"
)

const (
	AppName     = "mifind"
	StatusReady = "Ready"

	StatusEngineUnavailable = "Search engine unavailable"
	StatusSessionExpired    = "Search session expired"
)

// FoundText is the status line for a result count.
func FoundText(total uint32) string {
	return fmt.Sprintf("%d items found", total)
}

// TitleFor is the window title for term.
func TitleFor(term string) string {
	if term == "" {
		return AppName
	}
	return term + " - " + AppName
}

// StatusForError maps an engine error to status text.
func StatusForError(err error) string {
	switch {
	case errors.Is(err, search.ErrInvalidPattern):
		detail := strings.TrimPrefix(err.Error(), search.ErrInvalidPattern.Error())
		detail = strings.TrimLeft(detail, ": ")
		if detail == "" {
			return "Invalid pattern"
		}
		return "Invalid pattern: " + detail
	case errors.Is(err, search.ErrSessionExpired):
		return StatusSessionExpired
	case errors.Is(err, search.ErrEngineUnavailable):
		return StatusEngineUnavailable
	default:
		return "Search failed: " + err.Error()
	}
}
