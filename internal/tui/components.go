package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderInputFrame draws a rounded bordered container around a rendered input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 2).
		Render(inputView)
}

// renderCentered centers the provided content within the given width/height box.
func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		MaxHeight(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// renderModes shows the RE and Mi indicators.
func renderModes(regex, migemo bool) string {
	mode := func(label string, on bool) string {
		if on {
			return ModeOnStyle.Render(label)
		}
		return ModeOffStyle.Render(label)
	}
	return mode("RE", regex) + mode("Mi", migemo)
}

// renderSplit places left and right on one line of the given width.
func renderSplit(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func renderSeparator(width int) string {
	if width < 1 {
		return ""
	}
	return SeparatorStyle.Render(strings.Repeat("─", width))
}

// renderMuted renders text in muted color.
func renderMuted(text string) string {
	return MutedStyle.Render(text)
}

// padLines pads content to exactly height lines.
func padLines(lines []string, height int) string {
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
