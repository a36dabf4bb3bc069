package finder

import (
	"regexp"

	"github.com/pders01/mifind/internal/search"
)

// Expander turns a raw term into a Migemo pattern.
type Expander interface {
	Expand(term string) string
}

// QueryState is what the user has typed and toggled. Regex and Migemo are
// never both on.
type QueryState struct {
	Term   string
	Regex  bool
	Migemo bool
}

// SetRegex switches regex matching. Turning it on turns Migemo off.
func (q *QueryState) SetRegex(on bool) {
	q.Regex = on
	if on {
		q.Migemo = false
	}
}

// SetMigemo switches Migemo expansion. Turning it on turns regex off.
func (q *QueryState) SetMigemo(on bool) {
	q.Migemo = on
	if on {
		q.Regex = false
	}
}

// Effective builds the engine query for the state. With Migemo on and no
// expander the term is matched literally.
func (q QueryState) Effective(x Expander, fields search.Fields) search.Query {
	pattern := q.Term
	if q.Migemo {
		if x != nil {
			pattern = x.Expand(q.Term)
		} else {
			pattern = regexp.QuoteMeta(q.Term)
		}
	}
	return search.Query{
		Pattern: pattern,
		Regex:   q.Regex || q.Migemo,
		Fields:  fields,
	}
}
