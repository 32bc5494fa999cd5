package rules

import "strings"

// LookupGlossary returns the entry whose term equals term, followed by every
// entry whose term contains it, in document order. Matching is
// case-insensitive; no match yields an empty slice.
func (index *Index) LookupGlossary(term string) []*GlossaryEntry {
	query := NormalizeTerm(term)
	if query == "" {
		return []*GlossaryEntry{}
	}

	matches := make([]*GlossaryEntry, 0)
	if exact, ok := index.glossary[query]; ok {
		matches = append(matches, exact)
	}
	for _, key := range index.glossaryOrder {
		if key != query && strings.Contains(key, query) {
			matches = append(matches, index.glossary[key])
		}
	}
	return matches
}
