package migemo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrNoDictionary is returned when none of the candidate paths hold a
// readable dictionary.
var ErrNoDictionary = errors.New("migemo dictionary not found")

// DefaultFileName is the file looked up next to the binary and in the
// working directory.
const DefaultFileName = "migemo-dict"

type entry struct {
	reading string
	words   []string
}

// Dictionary maps hiragana readings to words, sorted by reading.
type Dictionary struct {
	entries []entry
}

// LoadDictionary reads a migemo-dict text file: one reading per line
// followed by tab separated words. Lines starting with ';' are comments.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary %s: %w", path, err)
	}
	defer f.Close()

	d, err := ParseDictionary(f)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary %s: %w", path, err)
	}
	return d, nil
}

// ParseDictionary reads migemo-dict formatted data from r.
func ParseDictionary(r io.Reader) (*Dictionary, error) {
	byReading := make(map[string][]string)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Split(line, "\t")
		reading := norm.NFC.String(strings.TrimSpace(fields[0]))
		if reading == "" {
			continue
		}
		for _, w := range fields[1:] {
			w = norm.NFC.String(strings.TrimSpace(w))
			if w != "" {
				byReading[reading] = append(byReading[reading], w)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	d := &Dictionary{entries: make([]entry, 0, len(byReading))}
	for reading, words := range byReading {
		d.entries = append(d.entries, entry{reading: reading, words: words})
	}
	sort.Slice(d.entries, func(i, j int) bool { return d.entries[i].reading < d.entries[j].reading })
	return d, nil
}

// FindDictionary loads the first candidate path that exists. Empty
// candidates are skipped.
func FindDictionary(paths ...string) (*Dictionary, string, error) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		d, err := LoadDictionary(p)
		if err != nil {
			return nil, p, err
		}
		return d, p, nil
	}
	return nil, "", ErrNoDictionary
}

// Len reports the number of distinct readings.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Lookup returns the words of every reading starting with prefix, in reading
// order, without duplicates. At most limit words are returned when limit > 0.
func (d *Dictionary) Lookup(prefix string, limit int) []string {
	if d == nil || prefix == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	start := sort.Search(len(d.entries), func(i int) bool { return d.entries[i].reading >= prefix })
	for _, e := range d.entries[start:] {
		if !strings.HasPrefix(e.reading, prefix) {
			break
		}
		for _, w := range e.words {
			if seen[w] {
				continue
			}
			seen[w] = true
			out = append(out, w)
			if limit > 0 && len(out) >= limit {
				return out
			}
		}
	}
	return out
}
