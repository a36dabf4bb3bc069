package search

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"
)

// compiled is a Query translated for the index and for markup generation.
type compiled struct {
	query  bleveQuery.Query
	marker *regexp.Regexp
	regex  bool
}

func compile(q Query) (*compiled, error) {
	if q.Regex {
		return compileRegex(q.Pattern)
	}
	return compilePlain(q.Pattern), nil
}

// compilePlain ANDs every whitespace separated token as a case-insensitive
// substring match. Tokens containing a path separator match the full path.
func compilePlain(pattern string) *compiled {
	tokens := strings.Fields(pattern)
	if len(tokens) == 0 {
		return &compiled{query: bleve.NewMatchAllQuery()}
	}

	var qs []bleveQuery.Query
	quoted := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		lit := regexp.QuoteMeta(tok)
		quoted = append(quoted, lit)
		rq := bleve.NewRegexpQuery("(?i).*" + lit + ".*")
		rq.SetField(fieldFor(tok))
		qs = append(qs, rq)
	}

	// Longest first so overlapping tokens mark the widest span.
	sort.SliceStable(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	mark := regexp.MustCompile("(?i)" + strings.Join(quoted, "|"))

	if len(qs) == 1 {
		return &compiled{query: qs[0], marker: mark}
	}
	return &compiled{query: bleve.NewConjunctionQuery(qs...), marker: mark}
}

// compileRegex matches pattern anywhere in the name unless it is anchored
// with ^ or $. The term dictionary automaton has no empty-width assertions,
// so anchors are expressed by dropping the surrounding wildcards.
func compileRegex(pattern string) (*compiled, error) {
	marker, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}

	core := pattern
	anchoredStart := strings.HasPrefix(core, "^")
	if anchoredStart {
		core = core[1:]
	}
	anchoredEnd := strings.HasSuffix(core, "$") && !strings.HasSuffix(core, `\$`)
	if anchoredEnd {
		core = core[:len(core)-1]
	}

	var expr strings.Builder
	expr.WriteString("(?i)")
	if !anchoredStart {
		expr.WriteString(".*")
	}
	expr.WriteString("(?:")
	expr.WriteString(core)
	expr.WriteString(")")
	if !anchoredEnd {
		expr.WriteString(".*")
	}

	rq := bleve.NewRegexpQuery(expr.String())
	rq.SetField(fieldFor(pattern))
	return &compiled{query: rq, marker: marker, regex: true}, nil
}

func fieldFor(token string) string {
	if strings.ContainsRune(token, os.PathSeparator) || strings.ContainsRune(token, '/') {
		return fieldPath
	}
	return fieldName
}

// markup wraps every non-empty match of re in s with the highlight marker.
// A name that already holds the marker cannot be marked up unambiguously,
// so it yields "" and callers fall back to the plain text.
func markup(s string, re *regexp.Regexp) string {
	if strings.ContainsRune(s, marker) {
		return ""
	}
	if re == nil || s == "" {
		return s
	}
	locs := re.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*len(locs))
	last := 0
	for _, loc := range locs {
		if loc[1] == loc[0] {
			continue
		}
		b.WriteString(s[last:loc[0]])
		b.WriteRune(marker)
		b.WriteString(s[loc[0]:loc[1]])
		b.WriteRune(marker)
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
