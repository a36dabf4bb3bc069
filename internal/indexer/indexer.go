// Package indexer walks the configured roots into the record store and the
// search index, and keeps both current while the UI runs.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/pders01/mifind/internal/debuglog"
	"github.com/pders01/mifind/internal/search"
	"github.com/pders01/mifind/internal/storage"
)

// DefaultBatchSize is the number of records written per batch.
const DefaultBatchSize = 1000

// DefaultExclude lists directory names that are never descended into.
var DefaultExclude = []string{".git", ".hg", ".svn", "node_modules", ".cache", "__pycache__", ".Trash"}

// Options controls a walk.
type Options struct {
	Roots         []string
	Exclude       []string
	IncludeHidden bool
	BatchSize     int
}

// Indexer mirrors the filesystem below Roots into the store and a listener.
type Indexer struct {
	store    *storage.Store
	listener search.UpdateListener
	opts     Options
	exclude  map[string]bool
}

func New(store *storage.Store, listener search.UpdateListener, opts Options) *Indexer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Exclude == nil {
		opts.Exclude = DefaultExclude
	}
	ex := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		ex[name] = true
	}
	roots := make([]string, 0, len(opts.Roots))
	for _, r := range opts.Roots {
		if abs, err := filepath.Abs(r); err == nil {
			r = abs
		}
		roots = append(roots, filepath.Clean(r))
	}
	opts.Roots = roots
	return &Indexer{store: store, listener: listener, opts: opts, exclude: ex}
}

// Roots returns the cleaned absolute roots.
func (ix *Indexer) Roots() []string { return ix.opts.Roots }

// Skip reports whether a directory entry named name is left out.
func (ix *Indexer) Skip(name string, isDir bool) bool {
	if isDir && ix.exclude[name] {
		return true
	}
	return !ix.opts.IncludeHidden && len(name) > 1 && strings.HasPrefix(name, ".")
}

// Rebuild walks every root, writes what it finds and removes records below
// the roots that no longer exist.
func (ix *Indexer) Rebuild(ctx context.Context) (*storage.IndexStats, error) {
	started := time.Now()
	seen := make(map[string]bool)
	stats := &storage.IndexStats{Roots: ix.opts.Roots}

	batch := make([]*storage.FileRecord, 0, ix.opts.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ix.write(batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for _, root := range ix.opts.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err != nil {
				debuglog.Warnf("indexer: %s: %v", path, err)
				if d != nil && d.IsDir() && path != root {
					return fs.SkipDir
				}
				return nil
			}
			if path != root && ix.Skip(d.Name(), d.IsDir()) {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			rec, err := ix.record(path, d)
			if err != nil {
				debuglog.Debugf("indexer: stat %s: %v", path, err)
				return nil
			}
			seen[rec.Path] = true
			batch = append(batch, rec)
			stats.Files++
			if len(batch) >= ix.opts.BatchSize {
				return flush()
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	removed, err := ix.prune(seen)
	if err != nil {
		return nil, err
	}
	stats.Removed = removed
	stats.BuiltAt = time.Now()
	stats.Duration = time.Since(started)

	if err := ix.store.SaveStats(stats); err != nil {
		return nil, fmt.Errorf("saving index stats: %w", err)
	}
	debuglog.WithFields(map[string]any{
		"entries": stats.Files,
		"removed": stats.Removed,
		"took":    stats.Duration,
	}).Infof("indexer: rebuild done")
	return stats, nil
}

// prune deletes records under the roots that were not seen by the walk.
func (ix *Indexer) prune(seen map[string]bool) (int, error) {
	var stale []string
	err := ix.store.ForEachRecord(func(rec *storage.FileRecord) error {
		if !seen[rec.Path] && ix.underRoot(rec.Path) {
			stale = append(stale, rec.Path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scanning records: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := ix.store.DeleteRecords(stale); err != nil {
		return 0, fmt.Errorf("deleting stale records: %w", err)
	}
	if ix.listener != nil {
		if err := ix.listener.OnRecordsRemoved(stale); err != nil {
			return 0, fmt.Errorf("removing stale records from index: %w", err)
		}
	}
	return len(stale), nil
}

// Update re-reads a single path. A path that no longer exists is removed
// along with everything below it. A new directory is walked in full.
func (ix *Indexer) Update(ctx context.Context, path string) error {
	path = filepath.Clean(path)
	key := ix.normalize(path)
	if !ix.underRoot(key) || ix.skippedPath(key) {
		return nil
	}

	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		removed, err := ix.store.DeleteTree(key)
		if err != nil {
			return fmt.Errorf("deleting %s: %w", path, err)
		}
		if len(removed) > 0 && ix.listener != nil {
			return ix.listener.OnRecordsRemoved(removed)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		rec := storage.NewFileRecord(key, info)
		if old, err := ix.store.GetRecord(key); err == nil && sameFile(old, rec) {
			return nil
		}
		return ix.write([]*storage.FileRecord{rec})
	}

	var batch []*storage.FileRecord
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return nil
		}
		if p != path && ix.Skip(d.Name(), d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rec, err := ix.record(p, d)
		if err != nil {
			return nil
		}
		batch = append(batch, rec)
		if len(batch) >= ix.opts.BatchSize {
			if err := ix.write(batch); err != nil {
				return err
			}
			batch = nil
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", path, err)
	}
	return ix.write(batch)
}

func sameFile(a, b *storage.FileRecord) bool {
	return a.Size == b.Size && a.Attributes == b.Attributes && a.Modified.Equal(b.Modified)
}

func (ix *Indexer) write(batch []*storage.FileRecord) error {
	if len(batch) == 0 {
		return nil
	}
	if err := ix.store.SaveRecords(batch); err != nil {
		return fmt.Errorf("saving records: %w", err)
	}
	if ix.listener != nil {
		if err := ix.listener.OnRecordsUpdated(batch); err != nil {
			return fmt.Errorf("indexing records: %w", err)
		}
	}
	return nil
}

func (ix *Indexer) record(path string, d fs.DirEntry) (*storage.FileRecord, error) {
	info, err := d.Info()
	if err != nil {
		return nil, err
	}
	return storage.NewFileRecord(ix.normalize(path), info), nil
}

// normalize returns path in NFC.
func (ix *Indexer) normalize(path string) string {
	return norm.NFC.String(path)
}

func (ix *Indexer) underRoot(path string) bool {
	for _, root := range ix.opts.Roots {
		if path == root || strings.HasPrefix(path, root+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

// skippedPath reports whether any component below the root is skipped.
func (ix *Indexer) skippedPath(path string) bool {
	for _, root := range ix.opts.Roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") || rel == "." {
			continue
		}
		parts := strings.Split(rel, string(os.PathSeparator))
		for i, part := range parts {
			if ix.Skip(part, i < len(parts)-1) {
				return true
			}
		}
		// the leaf itself may be an excluded directory
		if ix.exclude[parts[len(parts)-1]] {
			return true
		}
		return false
	}
	return false
}
