package search

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/pders01/mifind/internal/highlight"
	"github.com/pders01/mifind/internal/storage"
)

var (
	// ErrEngineUnavailable means the engine cannot serve queries right now.
	ErrEngineUnavailable = errors.New("search engine unavailable")
	// ErrSessionExpired is returned by Fetch for a session the engine no longer tracks.
	ErrSessionExpired = errors.New("search session expired")
	// ErrInvalidPattern wraps pattern compilation failures.
	ErrInvalidPattern = errors.New("invalid pattern")
)

// Fields selects which item fields the engine fills in.
type Fields uint32

const (
	FieldName Fields = 1 << iota
	FieldPath
	FieldSize
	FieldModified
	FieldAttributes
	FieldHighlightedName
	FieldHighlightedPath
)

// DefaultFields is what the result list needs for every row.
const DefaultFields = FieldName | FieldPath | FieldSize | FieldModified |
	FieldAttributes | FieldHighlightedName | FieldHighlightedPath

// Has reports whether all bits of f are requested.
func (fs Fields) Has(f Fields) bool { return fs&f == f }

// Query is the effective query handed to the engine.
type Query struct {
	Pattern string
	Regex   bool
	Fields  Fields
}

// Session identifies one submitted query and its match count.
type Session struct {
	ID    uint64
	Total uint32
}

// Item is one result row, in engine sort order.
type Item struct {
	Name              string
	Folder            string
	HighlightedName   string
	HighlightedFolder string
	Size              uint64
	Modified          time.Time
	Attributes        storage.Attr
}

// Path returns the full path of the item.
func (i *Item) Path() string { return filepath.Join(i.Folder, i.Name) }

// IsDir reports whether the item is a directory.
func (i *Item) IsDir() bool { return i.Attributes.Has(storage.AttrDirectory) }

// NameSpans returns the display name and its highlighted ranges.
func (i *Item) NameSpans() (string, []highlight.Range) {
	if i.HighlightedName == "" {
		return i.Name, nil
	}
	return highlight.Parse(i.HighlightedName, highlight.DefaultMarker)
}

// FolderSpans returns the display folder and its highlighted ranges.
func (i *Item) FolderSpans() (string, []highlight.Range) {
	if i.HighlightedFolder == "" {
		return i.Folder, nil
	}
	return highlight.Parse(i.HighlightedFolder, highlight.DefaultMarker)
}

// Client is the minimal engine API the controller relies on.
type Client interface {
	// Submit runs q and returns a session handle with the total match count.
	Submit(ctx context.Context, q Query) (Session, error)
	// Fetch returns up to count items starting at offset. Offsets past the
	// total yield an empty slice.
	Fetch(ctx context.Context, sessionID uint64, offset, count uint32) ([]Item, error)
}

// UpdateListener is implemented by engines that keep their own index and
// need to hear about record changes.
type UpdateListener interface {
	OnRecordsUpdated(records []*storage.FileRecord) error
	OnRecordsRemoved(paths []string) error
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}
