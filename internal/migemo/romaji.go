package migemo

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
)

//go:embed romaji.toml
var romajiTOML []byte

// RomajiTable is the TOML layout of a romaji table.
type RomajiTable struct {
	Kana map[string]string `toml:"kana"`
}

// Romaji converts romaji input into hiragana.
type Romaji struct {
	kana   map[string]string
	keys   []string // sorted, for prefix scans
	maxLen int
}

// Conversion is the result of converting one romaji word. Stem is complete
// hiragana. Tails holds the kana a trailing unfinished syllable could still
// become; it is empty when the input ended on a syllable boundary.
type Conversion struct {
	Stem  string
	Tails []string
}

// NewRomaji builds the embedded table. A non-empty override path replaces
// entries from the file on top of the built-in ones.
func NewRomaji(override string) (*Romaji, error) {
	var table RomajiTable
	if err := toml.Unmarshal(romajiTOML, &table); err != nil {
		return nil, fmt.Errorf("parsing romaji.toml: %w", err)
	}

	if override != "" {
		data, err := os.ReadFile(override)
		if err != nil {
			return nil, fmt.Errorf("reading romaji table %s: %w", override, err)
		}
		var user RomajiTable
		if err := toml.Unmarshal(data, &user); err != nil {
			return nil, fmt.Errorf("parsing romaji table %s: %w", override, err)
		}
		for k, v := range user.Kana {
			table.Kana[strings.ToLower(k)] = v
		}
	}

	return newRomaji(table.Kana), nil
}

func newRomaji(kana map[string]string) *Romaji {
	r := &Romaji{kana: kana, keys: make([]string, 0, len(kana))}
	for k := range kana {
		r.keys = append(r.keys, k)
		if len(k) > r.maxLen {
			r.maxLen = len(k)
		}
	}
	sort.Strings(r.keys)
	return r
}

// Convert turns lowercase romaji into hiragana. Characters that are not
// romaji pass through unchanged.
func (r *Romaji) Convert(input string) Conversion {
	s := strings.ToLower(input)
	var out strings.Builder

	for i := 0; i < len(s); {
		if l := r.longestMatch(s[i:]); l > 0 {
			out.WriteString(r.kana[s[i:i+l]])
			i += l
			continue
		}

		c := s[i]
		if i+1 < len(s) {
			next := s[i+1]
			if c == next && isConsonant(c) && c != 'n' {
				out.WriteString("っ")
				i++
				continue
			}
			if c == 'n' && !isVowel(next) && next != 'y' {
				out.WriteString("ん")
				i++
				continue
			}
		}

		if tails := r.tails(s[i:]); len(tails) > 0 {
			return Conversion{Stem: out.String(), Tails: tails}
		}

		_, size := utf8.DecodeRuneInString(s[i:])
		out.WriteString(s[i : i+size])
		i += size
	}

	return Conversion{Stem: out.String()}
}

func (r *Romaji) longestMatch(s string) int {
	for l := min(r.maxLen, len(s)); l > 0; l-- {
		if _, ok := r.kana[s[:l]]; ok {
			return l
		}
	}
	return 0
}

// tails lists the distinct kana of every table key that extends prefix.
// prefix must be the rest of the input, so anything returned is a
// completion of an unfinished trailing syllable.
func (r *Romaji) tails(prefix string) []string {
	if prefix == "" || len(prefix) >= r.maxLen {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	start := sort.SearchStrings(r.keys, prefix)
	for _, k := range r.keys[start:] {
		if !strings.HasPrefix(k, prefix) {
			break
		}
		if k == prefix {
			continue
		}
		v := r.kana[k]
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// ToKatakana shifts hiragana to katakana and leaves everything else alone.
func ToKatakana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'ぁ' && r <= 'ゖ' {
			return r + ('ァ' - 'ぁ')
		}
		return r
	}, s)
}

func isVowel(c byte) bool {
	return strings.IndexByte("aiueo", c) >= 0
}

func isConsonant(c byte) bool {
	return c >= 'a' && c <= 'z' && !isVowel(c)
}
