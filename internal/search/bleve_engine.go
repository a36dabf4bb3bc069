package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/pders01/mifind/internal/debuglog"
	"github.com/pders01/mifind/internal/highlight"
	"github.com/pders01/mifind/internal/storage"
)

const (
	fieldName    = "name"
	fieldFolder  = "folder"
	fieldPath    = "path"
	fieldSortKey = "sort_key"

	lowerKeyword = "lower_keyword"

	marker = highlight.DefaultMarker

	// maxSessions bounds how many submitted queries can still be fetched.
	maxSessions = 8
)

type session struct {
	compiled *compiled
	fields   Fields
	total    uint32
}

// BleveEngine serves filename queries from a bleve index and hydrates
// metadata from the record store.
type BleveEngine struct {
	store *storage.Store
	idx   bleve.Index

	mu       sync.Mutex
	closed   bool
	nextID   uint64
	sessions map[uint64]*session
	order    []uint64
}

// NewBleveEngine opens the index at indexPath, creating it when missing.
func NewBleveEngine(store *storage.Store, indexPath string) (*BleveEngine, error) {
	if mkErr := os.MkdirAll(filepath.Dir(indexPath), 0o755); mkErr != nil {
		return nil, fmt.Errorf("creating index directory: %w", mkErr)
	}

	idx, err := bleve.Open(indexPath)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(indexPath, buildIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", indexPath, err)
	}
	return newEngine(store, idx), nil
}

// NewMemEngine builds an engine over an in-memory index.
func NewMemEngine(store *storage.Store) (*BleveEngine, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return newEngine(store, idx), nil
}

func newEngine(store *storage.Store, idx bleve.Index) *BleveEngine {
	return &BleveEngine{
		store:    store,
		idx:      idx,
		sessions: make(map[uint64]*session),
	}
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	if err := im.AddCustomAnalyzer(lowerKeyword, map[string]any{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		panic(err)
	}
	im.DefaultAnalyzer = keyword.Name

	dm := bleve.NewDocumentMapping()

	name := bleve.NewTextFieldMapping()
	name.Analyzer = keyword.Name
	name.Store = true

	folder := bleve.NewTextFieldMapping()
	folder.Analyzer = keyword.Name
	folder.Store = true

	path := bleve.NewTextFieldMapping()
	path.Analyzer = keyword.Name
	path.Store = false

	sortKey := bleve.NewTextFieldMapping()
	sortKey.Analyzer = lowerKeyword
	sortKey.Store = false
	sortKey.DocValues = true

	dm.AddFieldMappingsAt(fieldName, name)
	dm.AddFieldMappingsAt(fieldFolder, folder)
	dm.AddFieldMappingsAt(fieldPath, path)
	dm.AddFieldMappingsAt(fieldSortKey, sortKey)

	im.DefaultMapping = dm
	return im
}

func document(rec *storage.FileRecord) map[string]any {
	return map[string]any{
		fieldName:    rec.Name,
		fieldFolder:  rec.Folder,
		fieldPath:    rec.Path,
		fieldSortKey: strings.ToLower(rec.Name),
	}
}

// Submit implements Client.
func (b *BleveEngine) Submit(ctx context.Context, q Query) (Session, error) {
	if b.isClosed() {
		return Session{}, ErrEngineUnavailable
	}

	c, err := compile(q)
	if err != nil {
		return Session{}, err
	}

	req := bleve.NewSearchRequestOptions(c.query, 0, 0, false)
	res, err := b.idx.SearchInContext(ctx, req)
	if err != nil {
		return Session{}, b.searchErr(err, c)
	}

	total := uint32(res.Total)
	if res.Total > uint64(^uint32(0)) {
		total = ^uint32(0)
	}

	fields := q.Fields
	if fields == 0 {
		fields = DefaultFields
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.sessions[id] = &session{compiled: c, fields: fields, total: total}
	b.order = append(b.order, id)
	for len(b.order) > maxSessions {
		delete(b.sessions, b.order[0])
		b.order = b.order[1:]
	}

	debuglog.Debugf("submit session=%d regex=%t total=%d pattern=%q", id, q.Regex, total, q.Pattern)
	return Session{ID: id, Total: total}, nil
}

// Fetch implements Client.
func (b *BleveEngine) Fetch(ctx context.Context, sessionID uint64, offset, count uint32) ([]Item, error) {
	b.mu.Lock()
	closed := b.closed
	s, ok := b.sessions[sessionID]
	b.mu.Unlock()

	if closed {
		return nil, ErrEngineUnavailable
	}
	if !ok {
		return nil, fmt.Errorf("session %d: %w", sessionID, ErrSessionExpired)
	}
	if count == 0 || offset >= s.total {
		return []Item{}, nil
	}

	req := bleve.NewSearchRequestOptions(s.compiled.query, int(count), int(offset), false)
	req.Fields = []string{fieldName, fieldFolder}
	req.SortBy([]string{fieldSortKey, "_id"})

	res, err := b.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, b.searchErr(err, s.compiled)
	}

	ids := make([]string, len(res.Hits))
	for i, h := range res.Hits {
		ids[i] = h.ID
	}

	var records []*storage.FileRecord
	if b.store != nil && s.fields&(FieldSize|FieldModified|FieldAttributes) != 0 {
		records, err = b.store.GetRecords(ids)
		if err != nil {
			debuglog.Warnf("hydrating %d hits: %v", len(ids), err)
			records = nil
		}
	}

	items := make([]Item, len(res.Hits))
	for i, h := range res.Hits {
		it := Item{
			Name:   filepath.Base(h.ID),
			Folder: filepath.Dir(h.ID),
		}
		if v, ok := h.Fields[fieldName].(string); ok {
			it.Name = v
		}
		if v, ok := h.Fields[fieldFolder].(string); ok {
			it.Folder = v
		}
		if i < len(records) && records[i] != nil {
			rec := records[i]
			if s.fields.Has(FieldSize) {
				it.Size = rec.Size
			}
			if s.fields.Has(FieldModified) {
				it.Modified = rec.Modified
			}
			if s.fields.Has(FieldAttributes) {
				it.Attributes = rec.Attributes
			}
		}
		if s.fields.Has(FieldHighlightedName) {
			it.HighlightedName = markup(it.Name, s.compiled.marker)
		}
		if s.fields.Has(FieldHighlightedPath) {
			it.HighlightedFolder = markup(it.Folder, s.compiled.marker)
		}
		items[i] = it
	}
	return items, nil
}

// OnRecordsUpdated indexes the given records.
func (b *BleveEngine) OnRecordsUpdated(records []*storage.FileRecord) error {
	if len(records) == 0 {
		return nil
	}
	if b.isClosed() {
		return ErrEngineUnavailable
	}
	batch := b.idx.NewBatch()
	for _, rec := range records {
		if err := batch.Index(rec.Path, document(rec)); err != nil {
			return fmt.Errorf("indexing %s: %w", rec.Path, err)
		}
	}
	return b.idx.Batch(batch)
}

// OnRecordsRemoved deletes the given paths from the index.
func (b *BleveEngine) OnRecordsRemoved(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if b.isClosed() {
		return ErrEngineUnavailable
	}
	batch := b.idx.NewBatch()
	for _, p := range paths {
		batch.Delete(p)
	}
	return b.idx.Batch(batch)
}

// Reindex rebuilds every document from the record store.
func (b *BleveEngine) Reindex(batchSize int) error {
	if b.store == nil {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 1000
	}
	pending := make([]*storage.FileRecord, 0, batchSize)
	err := b.store.ForEachRecord(func(rec *storage.FileRecord) error {
		pending = append(pending, rec)
		if len(pending) < batchSize {
			return nil
		}
		err := b.OnRecordsUpdated(pending)
		pending = pending[:0]
		return err
	})
	if err != nil {
		return err
	}
	return b.OnRecordsUpdated(pending)
}

// DocCount reports total documents in the index.
func (b *BleveEngine) DocCount() (int, error) {
	if b.isClosed() {
		return 0, ErrEngineUnavailable
	}
	n, err := b.idx.DocCount()
	return int(n), err
}

// Close releases the index. Later calls report ErrEngineUnavailable.
func (b *BleveEngine) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.sessions = make(map[uint64]*session)
	b.order = nil
	b.mu.Unlock()
	return b.idx.Close()
}

func (b *BleveEngine) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// searchErr maps index errors. The term automaton rejects some constructs
// Go's regexp accepts (word boundaries, lazy repeats), which are reported
// as invalid patterns.
func (b *BleveEngine) searchErr(err error, c *compiled) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, bleve.ErrorIndexClosed) {
		return ErrEngineUnavailable
	}
	if c != nil && c.regex {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return fmt.Errorf("search: %w", err)
}
