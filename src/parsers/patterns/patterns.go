// Package patterns evaluates ordered lists of fallback regular expressions.
package patterns

import (
	"regexp"
	"strings"

	"github.com/username/extractos/backend/src/models"
)

// List is an ordered set of candidate patterns for one field. Each pattern
// must have at least one capture group; group 1 is the extracted value.
type List []*regexp.Regexp

// Compile builds a List, panicking on an invalid expression like regexp.MustCompile.
func Compile(exprs ...string) List {
	l := make(List, len(exprs))
	for i, e := range exprs {
		l[i] = regexp.MustCompile(e)
	}
	return l
}

// First returns the trimmed group 1 of the first pattern whose match yields a
// non-empty value, or models.Sentinel when none does.
func (l List) First(text string) string {
	for _, p := range l {
		m := p.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if v := strings.TrimSpace(m[1]); v != "" {
			return v
		}
	}
	return models.Sentinel
}

// Concat returns a new List holding the patterns of all lists in order.
func Concat(lists ...List) List {
	var out List
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
