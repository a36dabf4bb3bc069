package tui

import (
	"github.com/pders01/mifind/internal/finder"
)

type View int

const (
	ViewSearch View = iota
	ViewHelp
)

// fireMsg is a debounce timer expiring.
type fireMsg struct {
	seq uint64
}

type submitDoneMsg struct {
	res finder.SubmitResult
}

type pageLoadedMsg struct {
	res finder.FetchResult
}

// indexChangedMsg reports that the watcher applied file system changes.
type indexChangedMsg struct{}

type helpRenderedMsg struct {
	content string
}

type statusMsg struct {
	text string
	kind StatusKind
}

type errorMsg struct {
	err error
}
