package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"

	"github.com/pders01/mifind/internal/config"
	"github.com/pders01/mifind/internal/highlight"
	"github.com/pders01/mifind/internal/search"
	"github.com/pders01/mifind/internal/storage"
)

func TestSizeText(t *testing.T) {
	tests := []struct {
		size uint64
		want string
	}{
		{0, ""},
		{1, "1 KB"},
		{1024, "1 KB"},
		{1025, "2 KB"},
		{1536000, "1,500 KB"},
		{5 << 30, "5,242,880 KB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sizeText(tt.size), "size %d", tt.size)
	}
}

func TestDateText(t *testing.T) {
	ts := time.Date(2023, 11, 2, 7, 9, 0, 0, time.Local)
	assert.Equal(t, "2023-11-02 07:09", dateText(ts, "2006-01-02 15:04"))
	assert.Equal(t, "", dateText(time.Time{}, "2006-01-02 15:04"))
}

func TestTruncateEnd(t *testing.T) {
	assert.Equal(t, "hello", truncateEnd("hello", 5))
	assert.Equal(t, "hel…", truncateEnd("hello", 4))
	assert.Equal(t, "", truncateEnd("hello", 0))
	assert.Equal(t, "がっ…", truncateEnd("がっこう", 5), "wide runes take two cells")
}

func TestTruncateMiddle(t *testing.T) {
	assert.Equal(t, "/home/user", truncateMiddle("/home/user", 10))
	got := truncateMiddle("/home/user/projects/deep/folder", 12)
	assert.Equal(t, 12, runewidth.StringWidth(got))
	assert.True(t, strings.HasPrefix(got, "/home"))
	assert.True(t, strings.HasSuffix(got, "folder"))
	assert.Equal(t, "…", truncateMiddle("abcdef", 1))
}

func TestRenderSpans(t *testing.T) {
	plain := lipgloss.NewStyle()

	out := renderSpans("report.txt", []highlight.Range{{Start: 0, End: 3}}, 12, plain, plain)
	assert.Equal(t, "report.txt  ", out)

	out = renderSpans("report-final.pdf", []highlight.Range{{Start: 7, End: 12}}, 10, plain, plain)
	assert.Equal(t, "report-fi…", out)
	assert.Equal(t, 10, runewidth.StringWidth(out))

	out = renderSpans("がっこう.txt", nil, 6, plain, plain)
	assert.Equal(t, 6, runewidth.StringWidth(out))
	assert.True(t, strings.HasSuffix(strings.TrimRight(out, " "), "…"))

	assert.Equal(t, "", renderSpans("x", nil, 0, plain, plain))
}

func TestLayoutColumns(t *testing.T) {
	cfg := config.ColumnsConfig{Folder: 40, Size: 12, Modified: 16}

	wide := layoutColumns(120, cfg)
	assert.Equal(t, 40, wide.folder)
	assert.Equal(t, 120-cursorWidth-40-12-16-3, wide.name)

	narrow := layoutColumns(50, cfg)
	assert.Equal(t, 0, narrow.folder)
	assert.Equal(t, 16, narrow.modified)
	assert.GreaterOrEqual(t, narrow.name, minNameWidth)

	tiny := layoutColumns(20, cfg)
	assert.Equal(t, 0, tiny.folder)
	assert.Equal(t, 0, tiny.modified)
	assert.Equal(t, 0, tiny.size)
	assert.Equal(t, 20-cursorWidth, tiny.name)
}

func TestRenderRow(t *testing.T) {
	cols := columns{name: 20, folder: 10, size: 8, modified: 16}
	item := &search.Item{
		Name:            "report.txt",
		Folder:          "/home/docs",
		HighlightedName: "*rep*ort.txt",
		Size:            3000,
		Modified:        time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC),
	}

	row := renderRow(item, true, cols, "2006-01-02 15:04")
	assert.Contains(t, row, "› report.txt")
	assert.Contains(t, row, "/home/docs")
	assert.Contains(t, row, "3 KB")
	assert.Contains(t, row, "2024-01-02 03:04")

	dir := &search.Item{Name: "src", Folder: "/home", Attributes: storage.AttrDirectory, Size: 4096}
	row = renderRow(dir, false, cols, "2006-01-02 15:04")
	assert.Contains(t, row, "src/")
	assert.NotContains(t, row, "KB", "directories have no size")

	pending := renderRow(nil, false, cols, "2006-01-02 15:04")
	assert.Contains(t, pending, "…")
}
