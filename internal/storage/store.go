package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
)

// ErrNotFound is returned when a key is absent from the store.
var ErrNotFound = errors.New("not found")

// MaxRecentTerms bounds the persisted search history.
const MaxRecentTerms = 20

var (
	filesBucket = []byte("files")
	metaBucket  = []byte("metadata")
	stateBucket = []byte("state")

	statsKey = []byte("index_stats")
	uiKey    = []byte("ui")
)

type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string, timeout ...time.Duration) (*Store, error) {
	openTimeout := 1 * time.Second
	if len(timeout) > 0 && timeout[0] > 0 {
		openTimeout = timeout[0]
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{filesBucket, metaBucket, stateBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRecords upserts records in a single transaction.
func (s *Store) SaveRecords(records []*FileRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(filesBucket)
		for _, rec := range records {
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(rec.Path), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetRecord(path string) (*FileRecord, error) {
	var rec FileRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(filesBucket).Get([]byte(path))
		if data == nil {
			return fmt.Errorf("record %s: %w", path, ErrNotFound)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRecords looks up several paths in one read transaction. Missing paths
// yield nil entries so the result lines up with the input.
func (s *Store) GetRecords(paths []string) ([]*FileRecord, error) {
	out := make([]*FileRecord, len(paths))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(filesBucket)
		for i, p := range paths {
			data := b.Get([]byte(p))
			if data == nil {
				continue
			}
			var rec FileRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				continue
			}
			out[i] = &rec
		}
		return nil
	})
	return out, err
}

// DeleteRecords removes the given paths. Unknown paths are ignored.
func (s *Store) DeleteRecords(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(filesBucket)
		for _, p := range paths {
			if err := b.Delete([]byte(p)); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteTree removes dir and every record below it, returning the removed paths.
func (s *Store) DeleteTree(dir string) ([]string, error) {
	var removed []string
	prefix := []byte(dir + string(os.PathSeparator))
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(filesBucket)
		if b.Get([]byte(dir)) != nil {
			if err := b.Delete([]byte(dir)); err != nil {
				return err
			}
			removed = append(removed, dir)
		}
		c := b.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Seek(prefix) {
			removed = append(removed, string(k))
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
	return removed, err
}

// ForEachRecord visits every record in key order.
func (s *Store) ForEachRecord(fn func(*FileRecord) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(filesBucket).ForEach(func(_ []byte, v []byte) error {
			var rec FileRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil
			}
			return fn(&rec)
		})
	})
}

func (s *Store) CountRecords() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(filesBucket).Stats().KeyN
		return nil
	})
	return n, err
}

func (s *Store) SaveStats(stats *IndexStats) error {
	return s.putJSON(metaBucket, statsKey, stats)
}

func (s *Store) GetStats() (*IndexStats, error) {
	var stats IndexStats
	if err := s.getJSON(metaBucket, statsKey, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Store) SaveUIState(state *UIState) error {
	return s.putJSON(stateBucket, uiKey, state)
}

// GetUIState returns the persisted UI state, or a zero state on first run.
func (s *Store) GetUIState() (*UIState, error) {
	var state UIState
	if err := s.getJSON(stateBucket, uiKey, &state); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &UIState{}, nil
		}
		return nil, err
	}
	return &state, nil
}

// UpdateUIState applies fn to the persisted UI state inside one write
// transaction, so concurrent updates never overwrite each other.
func (s *Store) UpdateUIState(fn func(*UIState)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(stateBucket)
		var state UIState
		if data := b.Get(uiKey); data != nil {
			if err := json.Unmarshal(data, &state); err != nil {
				return err
			}
		}
		fn(&state)
		data, err := json.Marshal(&state)
		if err != nil {
			return err
		}
		return b.Put(uiKey, data)
	})
}

// AddRecentTerm moves term to the front of the history, trimming duplicates.
func (s *Store) AddRecentTerm(term string) error {
	if term == "" {
		return nil
	}
	return s.UpdateUIState(func(state *UIState) {
		terms := []string{term}
		for _, t := range state.RecentTerms {
			if t != term {
				terms = append(terms, t)
			}
		}
		if len(terms) > MaxRecentTerms {
			terms = terms[:MaxRecentTerms]
		}
		state.RecentTerms = terms
	})
}

func (s *Store) putJSON(bucket, key []byte, v any) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return tx.Bucket(bucket).Put(key, data)
	})
}

func (s *Store) getJSON(bucket, key []byte, v any) error {
	return s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucket).Get(key)
		if data == nil {
			return fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
		}
		return json.Unmarshal(data, v)
	})
}
