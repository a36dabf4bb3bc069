package tui

import (
	"fmt"
	"path/filepath"
)

// StatusKind indicates severity for status notices.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

// Short notices shown in place of the search status until the next query.
const (
	MsgNoSelection = "Nothing selected"
	MsgNoOpener    = "No opener configured for this platform"
	MsgNoHistory   = "No recent searches"
)

func MsgOpened(path string) string {
	return fmt.Sprintf("Opened %s", filepath.Base(path))
}

func MsgRevealed(path string) string {
	return fmt.Sprintf("Revealed %s", filepath.Base(path))
}

func MsgCopied(path string) string {
	return fmt.Sprintf("Copied %s", path)
}

func MsgIndexed(files int) string {
	if files == 1 {
		return "1 file indexed"
	}
	return fmt.Sprintf("%d files indexed", files)
}

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
