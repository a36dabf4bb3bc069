// Package migemo expands romaji input into a regular expression that also
// matches the hiragana, katakana and dictionary words it could stand for.
package migemo

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/pders01/mifind/internal/debuglog"
)

// DefaultMaxWords caps dictionary words per input word.
const DefaultMaxWords = 256

// Expander builds Migemo patterns. The zero value and a nil *Expander quote
// the input literally.
type Expander struct {
	romaji   *Romaji
	dict     *Dictionary
	maxWords int
}

// NewExpander combines a romaji table and a dictionary. Either may be nil.
func NewExpander(r *Romaji, d *Dictionary, maxWords int) *Expander {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	return &Expander{romaji: r, dict: d, maxWords: maxWords}
}

// Options configures Open.
type Options struct {
	DictionaryPath string
	RomajiTable    string
	MaxWords       int
}

// Open loads the romaji table and the first dictionary found on the search
// path. Load failures are logged and the expander degrades instead of
// failing, so toggling Migemo always works.
func Open(opts Options) *Expander {
	r, err := NewRomaji(opts.RomajiTable)
	if err != nil {
		debuglog.Warnf("migemo: romaji table: %v", err)
		r, _ = NewRomaji("")
	}

	d, path, err := FindDictionary(DictionaryPaths(opts.DictionaryPath)...)
	switch {
	case errors.Is(err, ErrNoDictionary):
		debuglog.Warnf("migemo: no dictionary found, romaji expansion only")
	case err != nil:
		debuglog.Warnf("migemo: loading %s: %v", path, err)
	default:
		debuglog.Infof("migemo: loaded %d readings from %s", d.Len(), path)
	}

	return NewExpander(r, d, opts.MaxWords)
}

// DictionaryPaths lists the dictionary locations in lookup order: the
// configured path, the working directory, the executable's directory and
// the user config directory.
func DictionaryPaths(configured string) []string {
	paths := []string{configured, DefaultFileName}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), DefaultFileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "mifind", DefaultFileName))
	}
	return paths
}

// HasDictionary reports whether dictionary words take part in expansion.
func (e *Expander) HasDictionary() bool {
	return e != nil && e.dict.Len() > 0
}

// Expand returns a pattern for term. Whitespace separated words are
// expanded independently and must appear in order.
func (e *Expander) Expand(term string) string {
	term = norm.NFC.String(strings.TrimSpace(term))
	if term == "" {
		return ""
	}
	words := strings.Fields(term)
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = e.expandWord(w)
	}
	return strings.Join(parts, ".*")
}

func (e *Expander) expandWord(word string) string {
	raw := regexp.QuoteMeta(word)
	if e == nil || (e.romaji == nil && e.dict == nil) {
		return raw
	}

	alts := []string{raw}
	seen := map[string]bool{raw: true}
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			alts = append(alts, p)
		}
	}

	prefixes := []string{word}
	if e.romaji != nil {
		conv := e.romaji.Convert(word)
		if conv.Stem != strings.ToLower(word) || len(conv.Tails) > 0 {
			add(kanaPattern(conv.Stem, conv.Tails))
			kata := make([]string, len(conv.Tails))
			for i, t := range conv.Tails {
				kata[i] = ToKatakana(t)
			}
			add(kanaPattern(ToKatakana(conv.Stem), kata))

			prefixes = prefixes[:0]
			if len(conv.Tails) == 0 {
				prefixes = append(prefixes, conv.Stem)
			}
			for _, t := range conv.Tails {
				prefixes = append(prefixes, conv.Stem+t)
			}
		}
	}

	if e.dict != nil {
		budget := e.maxWords
		for _, p := range prefixes {
			if budget <= 0 {
				break
			}
			found := e.dict.Lookup(p, budget)
			budget -= len(found)
			for _, w := range found {
				add(regexp.QuoteMeta(w))
			}
		}
	}

	if len(alts) == 1 {
		return raw
	}
	return "(?:" + strings.Join(alts, "|") + ")"
}

// kanaPattern renders stem followed by one of tails.
func kanaPattern(stem string, tails []string) string {
	p := regexp.QuoteMeta(stem)
	switch len(tails) {
	case 0:
		return p
	case 1:
		return p + regexp.QuoteMeta(tails[0])
	}

	single := true
	for _, t := range tails {
		if utf8.RuneCountInString(t) != 1 {
			single = false
			break
		}
	}
	if single {
		return p + "[" + strings.Join(tails, "") + "]"
	}
	quoted := make([]string, len(tails))
	for i, t := range tails {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return p + "(?:" + strings.Join(quoted, "|") + ")"
}
