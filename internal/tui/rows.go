package tui

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pders01/mifind/internal/config"
	"github.com/pders01/mifind/internal/search"
)

const (
	cursorWidth  = 2
	minNameWidth = 12
)

// columns are the cell widths of one result row.
type columns struct {
	name     int
	folder   int
	size     int
	modified int
}

// layoutColumns fits the configured widths into width, dropping the folder
// and then the date column when the name would get too narrow.
func layoutColumns(width int, cfg config.ColumnsConfig) columns {
	c := columns{folder: cfg.Folder, size: cfg.Size, modified: cfg.Modified}
	rest := func() int {
		n := width - cursorWidth - c.size - c.modified - c.folder
		for _, w := range []int{c.folder, c.size, c.modified} {
			if w > 0 {
				n--
			}
		}
		return n
	}
	if rest() < minNameWidth {
		c.folder = 0
	}
	if rest() < minNameWidth {
		c.modified = 0
	}
	if rest() < minNameWidth {
		c.size = 0
	}
	c.name = rest()
	if c.name < 1 {
		c.name = 1
	}
	return c
}

// sizeText renders a byte count as whole kilobytes, rounded up, with
// thousands separators. Zero bytes render blank.
func sizeText(size uint64) string {
	if size == 0 {
		return ""
	}
	kb := (size + 1023) / 1024
	return humanize.Comma(int64(kb)) + " KB"
}

func dateText(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

func renderColumnHeader(c columns) string {
	cells := []string{strings.Repeat(" ", cursorWidth) + fitLeft("Name", c.name)}
	if c.folder > 0 {
		cells = append(cells, fitLeft("Folder", c.folder))
	}
	if c.size > 0 {
		cells = append(cells, fitRight("Size", c.size))
	}
	if c.modified > 0 {
		cells = append(cells, fitLeft("Modified", c.modified))
	}
	return ColumnHeaderStyle.Render(strings.Join(cells, " "))
}

// renderRow draws one result. A nil item is a row whose page has not
// arrived yet.
func renderRow(item *search.Item, selected bool, c columns, dateLayout string) string {
	cursor := strings.Repeat(" ", cursorWidth)
	if selected {
		cursor = CursorStyle.Render("›") + " "
	}
	if item == nil {
		return cursor + renderMuted(fitLeft(ellipsis, c.name))
	}

	base := TextStyle
	if selected {
		base = SelectedTextStyle
	}

	name, nameRanges := item.NameSpans()
	if item.IsDir() {
		name += "/"
	}
	cells := []string{cursor + renderSpans(name, nameRanges, c.name, base, MatchStyle)}

	if c.folder > 0 {
		folder, folderRanges := item.FolderSpans()
		if len(folderRanges) == 0 {
			cells = append(cells, renderMuted(fitLeft(truncateMiddle(folder, c.folder), c.folder)))
		} else {
			cells = append(cells, renderSpans(folder, folderRanges, c.folder, MutedStyle, MatchStyle))
		}
	}
	if c.size > 0 {
		size := ""
		if !item.IsDir() {
			size = sizeText(item.Size)
		}
		cells = append(cells, renderMuted(fitRight(size, c.size)))
	}
	if c.modified > 0 {
		cells = append(cells, renderMuted(fitLeft(dateText(item.Modified, dateLayout), c.modified)))
	}
	return strings.Join(cells, " ")
}
