package rules

import (
	"regexp"
	"strings"
)

// Level is the nesting depth of a rule number. It is always derived from the
// number's spelling, never stored.
type Level int

const (
	// LevelUnknown is any number outside the grammar.
	LevelUnknown Level = iota
	// LevelCategory is a single digit: "1." Game Concepts.
	LevelCategory
	// LevelRule is three digits: "100." General.
	LevelRule
	// LevelSubrule is a rule plus a numbered part: "100.1."
	LevelSubrule
	// LevelSubSubrule is a subrule plus a letter: "100.1a".
	LevelSubSubrule
)

var levelNames = map[Level]string{
	LevelUnknown:    "unknown",
	LevelCategory:   "category",
	LevelRule:       "rule",
	LevelSubrule:    "subrule",
	LevelSubSubrule: "subsubrule",
}

// String returns the level's name.
func (level Level) String() string {
	if name, ok := levelNames[level]; ok {
		return name
	}
	return "unknown"
}

// subruleLetters is the sub-subrule suffix alphabet. It skips 'l' and 'o',
// which read too much like 1 and 0.
const subruleLetters = "abcdefghijkmnpqrstuvwxyz"

var (
	categoryNumberPattern   = regexp.MustCompile(`^[0-9]\.?$`)
	ruleNumberPattern       = regexp.MustCompile(`^[0-9]{3}\.?$`)
	subruleNumberPattern    = regexp.MustCompile(`^[0-9]{3}\.[0-9]{1,3}\.?$`)
	subSubruleNumberPattern = regexp.MustCompile(`^[0-9]{3}\.[0-9]{1,3}[a-z]$`)

	// ruleReferencePattern matches user input that names a rule rather than
	// a glossary term, in either dotted or dotless spelling.
	ruleReferencePattern = regexp.MustCompile(`^[1-9]\.?$|^[0-9]{3}\.?([0-9]{1,3}[a-z]?\.?)?$`)
)

// LevelOf derives the grammar level from a rule number in its original
// dotted spelling ("1.", "100.", "100.1.", "100.1a").
func LevelOf(number string) Level {
	lowered := strings.ToLower(strings.TrimSpace(number))
	switch {
	case categoryNumberPattern.MatchString(lowered):
		return LevelCategory
	case ruleNumberPattern.MatchString(lowered):
		return LevelRule
	case subruleNumberPattern.MatchString(lowered):
		return LevelSubrule
	case subSubruleNumberPattern.MatchString(lowered):
		return LevelSubSubrule
	}
	return LevelUnknown
}

// NormalizeNumber turns any spelling of a rule number into its index key by
// removing dots and lower-casing: "100.1A" becomes "1001a".
func NormalizeNumber(number string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(number), ".", ""))
}

// IsRuleReference reports whether a lookup query is a rule number. Anything
// else is treated as a glossary term.
func IsRuleReference(query string) bool {
	return ruleReferencePattern.MatchString(strings.ToLower(strings.TrimSpace(query)))
}

// NormalizeTerm lower-cases a glossary query and collapses runs of spaces.
func NormalizeTerm(term string) string {
	return strings.Join(strings.Fields(strings.ToLower(term)), " ")
}
