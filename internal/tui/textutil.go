package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/pders01/mifind/internal/highlight"
)

const ellipsis = "…"

// truncateEnd shortens s to at most width terminal cells, appending an
// ellipsis if truncation occurs. Wide runes count as two cells.
func truncateEnd(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// truncateMiddle keeps both ends of s with a single ellipsis in between.
// Useful for paths where both ends carry meaning.
func truncateMiddle(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return ellipsis
	}
	keep := width - 1
	left := keep / 2
	right := keep - left

	r := []rune(s)
	var head, tail []rune
	used := 0
	for _, c := range r {
		w := runewidth.RuneWidth(c)
		if used+w > left {
			break
		}
		head = append(head, c)
		used += w
	}
	used = 0
	for i := len(r) - 1; i >= 0; i-- {
		w := runewidth.RuneWidth(r[i])
		if used+w > right {
			break
		}
		tail = append([]rune{r[i]}, tail...)
		used += w
	}
	return string(head) + ellipsis + string(tail)
}

// fitLeft truncates and pads s to exactly width cells.
func fitLeft(s string, width int) string {
	return runewidth.FillRight(truncateEnd(s, width), width)
}

// fitRight truncates and right-aligns s in width cells.
func fitRight(s string, width int) string {
	return runewidth.FillLeft(truncateEnd(s, width), width)
}

// renderSpans draws plain into exactly width cells, styling the highlighted
// ranges with mark and the rest with base. Overflow ends in an ellipsis.
func renderSpans(plain string, ranges []highlight.Range, width int, base, mark lipgloss.Style) string {
	if width <= 0 {
		return ""
	}
	fits := runewidth.StringWidth(plain) <= width
	budget := width
	if !fits {
		budget = width - 1
	}

	var b strings.Builder
	used := 0
	for _, seg := range highlight.Segments(plain, ranges) {
		if used >= budget {
			break
		}
		text := seg.Text
		whole := used+runewidth.StringWidth(text) <= budget
		if !whole {
			text = runewidth.Truncate(text, budget-used, "")
		}
		if text != "" {
			style := base
			if seg.Highlighted {
				style = mark
			}
			b.WriteString(style.Render(text))
			used += runewidth.StringWidth(text)
		}
		if !whole {
			break
		}
	}
	if !fits {
		b.WriteString(base.Render(ellipsis))
		used++
	}
	if used < width {
		b.WriteString(strings.Repeat(" ", width-used))
	}
	return b.String()
}
