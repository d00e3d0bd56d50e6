// Package filter keeps candidates that mention one of a fixed set of deal terms.
package filter

import (
	"strings"

	"github.com/samber/lo"
)

// DefaultAliases folds plural search terms into the form that is stored.
var DefaultAliases = map[string]string{
	"Aportes": "Aporte",
}

// Filter matches terms case-insensitively as plain substrings, so "Série A" also
// matches inside longer text such as "Série AA".
type Filter struct {
	terms   []string
	aliases map[string]string
}

func New(terms []string, aliases map[string]string) *Filter {
	terms = lo.Uniq(lo.Filter(terms, func(t string, _ int) bool {
		return strings.TrimSpace(t) != ""
	}))
	if aliases == nil {
		aliases = map[string]string{}
	}
	return &Filter{terms: terms, aliases: aliases}
}

func (f *Filter) Terms() []string {
	return f.terms
}

// Canonical returns the stored spelling of term.
func (f *Filter) Canonical(term string) string {
	if c, ok := f.aliases[term]; ok {
		return c
	}
	return term
}

// Match returns the canonical form of the first vocabulary term found in any of texts.
func (f *Filter) Match(texts ...string) (string, bool) {
	for _, term := range f.terms {
		if f.contains(term, texts) {
			return f.Canonical(term), true
		}
	}
	return "", false
}

// MatchTerm reports whether term itself occurs in any of texts, returning its canonical form.
func (f *Filter) MatchTerm(term string, texts ...string) (string, bool) {
	if strings.TrimSpace(term) == "" || !f.contains(term, texts) {
		return "", false
	}
	return f.Canonical(term), true
}

func (f *Filter) contains(term string, texts []string) bool {
	needle := strings.ToLower(term)
	return lo.SomeBy(texts, func(text string) bool {
		return strings.Contains(strings.ToLower(text), needle)
	})
}
