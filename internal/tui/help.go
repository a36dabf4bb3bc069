package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// newRenderer builds a markdown renderer wrapped to the terminal width.
func newRenderer(width int) (*glamour.TermRenderer, error) {
	wordWrap := (width * 9) / 10
	if wordWrap > 100 {
		wordWrap = 100
	}
	if wordWrap < 40 {
		wordWrap = 40
	}
	return glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
}

func (a *App) helpMarkdown() string {
	keys := a.keyHandler.keys
	var b strings.Builder
	b.WriteString("# mifind\n\n")
	b.WriteString("Results update while you type. There is no search button: ")
	b.WriteString("the list refreshes shortly after the last keystroke.\n\n")
	b.WriteString("## Keys\n\n")
	b.WriteString("| Key | Action |\n|---|---|\n")
	rows := [][2]string{
		{keys.toggleRegex, "Toggle regular expression matching"},
		{keys.toggleMigemo, "Toggle Migemo (romaji to Japanese) matching"},
		{"↑ / ↓", "Move the selection"},
		{"pgup / pgdown", "Move by a page"},
		{keys.open, "Open the selected file"},
		{keys.reveal, "Show the selected file in its folder"},
		{keys.copyPath, "Copy the full path"},
		{keys.history, "Recall a recent search"},
		{keys.clear, "Clear the search"},
		{keys.help, "Show or hide this help"},
		{keys.quit + " / ctrl+c", "Quit"},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "| `%s` | %s |\n", r[0], r[1])
	}
	b.WriteString("\n## Modes\n\n")
	b.WriteString("- **Plain**: space separated words must all appear in the name.\n")
	b.WriteString("  A word containing `/` matches against the full path.\n")
	b.WriteString("- **RE**: the input is a case-insensitive regular expression.\n")
	b.WriteString("- **Mi**: romaji input also matches hiragana, katakana and dictionary words.\n\n")
	b.WriteString("RE and Mi are exclusive. Turning one on turns the other off.\n")
	return b.String()
}
