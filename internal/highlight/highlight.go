// Package highlight turns engine markup such as "*foo*.txt" into plain text
// plus the rune ranges that should be drawn emphasized.
package highlight

import "strings"

// DefaultMarker is the character the search engine wraps around matches.
const DefaultMarker = '*'

// Range is a half-open span [Start, End) of rune indices into the plain text.
type Range struct {
	Start int
	End   int
}

// Len returns the number of runes covered by the range.
func (r Range) Len() int { return r.End - r.Start }

// Contains reports whether rune index i falls inside the range.
func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End }

// Parse strips marker runes from marked and returns the plain text together
// with the highlighted ranges. Every marker toggles a span; a span that is
// still open at the end of the string produces no range, but none of its
// text is dropped.
func Parse(marked string, marker rune) (string, []Range) {
	if !strings.ContainsRune(marked, marker) {
		return marked, nil
	}

	var (
		plain  strings.Builder
		ranges []Range
		pos    int
		start  int
		inside bool
	)
	plain.Grow(len(marked))

	for _, r := range marked {
		if r == marker {
			if inside {
				ranges = append(ranges, Range{Start: start, End: pos})
			} else {
				start = pos
			}
			inside = !inside
			continue
		}
		plain.WriteRune(r)
		pos++
	}

	return plain.String(), ranges
}

// Segment is a run of plain text that is either entirely highlighted or not.
type Segment struct {
	Text        string
	Highlighted bool
}

// Segments splits plain into alternating runs according to ranges, which
// must be ascending and non-overlapping as returned by Parse.
func Segments(plain string, ranges []Range) []Segment {
	if len(ranges) == 0 {
		if plain == "" {
			return nil
		}
		return []Segment{{Text: plain}}
	}

	runes := []rune(plain)
	var out []Segment
	cursor := 0
	for _, rg := range ranges {
		start := clamp(rg.Start, cursor, len(runes))
		end := clamp(rg.End, start, len(runes))
		if start > cursor {
			out = append(out, Segment{Text: string(runes[cursor:start])})
		}
		if end > start {
			out = append(out, Segment{Text: string(runes[start:end]), Highlighted: true})
		}
		cursor = end
	}
	if cursor < len(runes) {
		out = append(out, Segment{Text: string(runes[cursor:])})
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
