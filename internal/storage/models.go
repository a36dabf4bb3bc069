package storage

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// Attr is a bitset of file attributes recorded at index time.
type Attr uint32

const (
	AttrDirectory Attr = 1 << iota
	AttrHidden
	AttrSymlink
	AttrReadOnly
	AttrExecutable
)

// Has reports whether all bits in flag are set.
func (a Attr) Has(flag Attr) bool { return a&flag == flag }

// AttrFromMode derives the attribute set for a file name and mode.
func AttrFromMode(name string, mode fs.FileMode) Attr {
	var a Attr
	if mode.IsDir() {
		a |= AttrDirectory
	}
	if mode&fs.ModeSymlink != 0 {
		a |= AttrSymlink
	}
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		a |= AttrHidden
	}
	if mode.Perm()&0o222 == 0 {
		a |= AttrReadOnly
	}
	if !mode.IsDir() && mode.Perm()&0o111 != 0 {
		a |= AttrExecutable
	}
	return a
}

// FileRecord is one indexed filesystem entry, keyed by its full path.
type FileRecord struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Folder     string    `json:"folder"`
	Size       uint64    `json:"size"`
	Modified   time.Time `json:"modified"`
	Attributes Attr      `json:"attributes"`
	IndexedAt  time.Time `json:"indexed_at"`
}

// NewFileRecord builds a record for path from its FileInfo.
func NewFileRecord(path string, info fs.FileInfo) *FileRecord {
	var size uint64
	if !info.IsDir() && info.Size() > 0 {
		size = uint64(info.Size())
	}
	return &FileRecord{
		Path:       path,
		Name:       filepath.Base(path),
		Folder:     filepath.Dir(path),
		Size:       size,
		Modified:   info.ModTime(),
		Attributes: AttrFromMode(info.Name(), info.Mode()),
		IndexedAt:  time.Now(),
	}
}

// IsDir reports whether the record describes a directory.
func (r *FileRecord) IsDir() bool { return r.Attributes.Has(AttrDirectory) }

// IndexStats describes the last completed index build.
type IndexStats struct {
	Roots    []string      `json:"roots"`
	Files    int           `json:"files"`
	Removed  int           `json:"removed"`
	BuiltAt  time.Time     `json:"built_at"`
	Duration time.Duration `json:"duration"`
}

// UIState is the part of the search session restored on the next start.
type UIState struct {
	Regex       bool     `json:"regex"`
	Migemo      bool     `json:"migemo"`
	RecentTerms []string `json:"recent_terms"`
}
