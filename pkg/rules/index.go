// Package rules indexes a comprehensive rules document into flat lookup
// tables and navigates its numbering hierarchy. Parent, child and sibling
// relations are computed from the numbering grammar on every call; no tree is
// stored, so a rebuilt index never leaves stale links behind.
package rules

import (
	"errors"
	"time"
)

// ErrRuleNotFound is returned by callers that require a rule to exist.
var ErrRuleNotFound = errors.New("rule not found")

// Rule is one numbered paragraph of the rules document.
type Rule struct {
	// Number is the original dotted spelling, e.g. "100.1." or "100.1a".
	Number string `json:"number"`
	Text   string `json:"text"`
}

// Key returns the normalized index key of the rule.
func (rule *Rule) Key() string {
	return NormalizeNumber(rule.Number)
}

// Level derives the rule's grammar level from its number.
func (rule *Rule) Level() Level {
	return LevelOf(rule.Number)
}

// GlossaryEntry is one defined term of the glossary.
type GlossaryEntry struct {
	Term string `json:"term"`
	Text string `json:"text"`
}

// Index is an immutable snapshot of a parsed rules document.
type Index struct {
	rules         map[string]*Rule
	ruleOrder     []string
	glossary      map[string]*GlossaryEntry
	glossaryOrder []string

	// SourceVersion identifies the document the index was built from.
	SourceVersion string

	// BuiltAt is when the index was built.
	BuiltAt time.Time
}

// Rule looks a rule up by any spelling of its number.
func (index *Index) Rule(number string) (*Rule, bool) {
	rule, ok := index.rules[NormalizeNumber(number)]
	return rule, ok
}

// Rules returns every rule in document order.
func (index *Index) Rules() []*Rule {
	list := make([]*Rule, 0, len(index.ruleOrder))
	for _, key := range index.ruleOrder {
		list = append(list, index.rules[key])
	}
	return list
}

// GlossaryEntries returns every glossary entry in document order.
func (index *Index) GlossaryEntries() []*GlossaryEntry {
	list := make([]*GlossaryEntry, 0, len(index.glossaryOrder))
	for _, key := range index.glossaryOrder {
		list = append(list, index.glossary[key])
	}
	return list
}

// RuleCount returns the number of indexed rules.
func (index *Index) RuleCount() int {
	return len(index.rules)
}

// GlossaryCount returns the number of indexed glossary entries.
func (index *Index) GlossaryCount() int {
	return len(index.glossary)
}

// Stats summarizes an index.
type Stats struct {
	SourceVersion string    `json:"source_version"`
	BuiltAt       time.Time `json:"built_at"`
	Categories    int       `json:"categories"`
	Rules         int       `json:"rules"`
	Subrules      int       `json:"subrules"`
	SubSubrules   int       `json:"subsubrules"`
	Unclassified  int       `json:"unclassified"`
	Glossary      int       `json:"glossary"`
}

// Stats counts rules per grammar level.
func (index *Index) Stats() Stats {
	stats := Stats{
		SourceVersion: index.SourceVersion,
		BuiltAt:       index.BuiltAt,
		Glossary:      len(index.glossary),
	}
	for _, rule := range index.rules {
		switch rule.Level() {
		case LevelCategory:
			stats.Categories++
		case LevelRule:
			stats.Rules++
		case LevelSubrule:
			stats.Subrules++
		case LevelSubSubrule:
			stats.SubSubrules++
		default:
			stats.Unclassified++
		}
	}
	return stats
}
