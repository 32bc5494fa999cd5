// Package mention finds inline card and rule references in chat messages.
//
// Cards are written [[name]] and rules or glossary terms {{query}}. Flags
// between the opening brackets modify the lookup: [![name]] attaches the card
// picture, [?[name]] asks for the extended card view and {>{query}} adds rule
// navigation.
package mention

import (
	"regexp"
	"strings"

	"github.com/coolbeans/judge/pkg/rules"
)

// Kind is what a mention refers to.
type Kind int

const (
	// Card is a [[name]] mention.
	Card Kind = iota
	// Rule is a {{number}} mention.
	Rule
	// Glossary is a {{term}} mention that is not a rule number.
	Glossary
)

// String returns the kind name used in error messages.
func (kind Kind) String() string {
	switch kind {
	case Card:
		return "card"
	case Rule:
		return "rule"
	case Glossary:
		return "glossary"
	}
	return "unknown"
}

// Mention is one reference found in a message.
type Mention struct {
	Kind  Kind   `json:"kind"`
	Query string `json:"query"`

	// Picture and Extended apply to cards.
	Picture  bool `json:"picture,omitempty"`
	Extended bool `json:"extended,omitempty"`

	// Navigate applies to rules.
	Navigate bool `json:"navigate,omitempty"`
}

var (
	cardPattern  = regexp.MustCompile(`\[([!?]*)\[([^\[\n]+?)\]\]`)
	rulePattern  = regexp.MustCompile(`\{(>*)\{([^{\n]+?)\}\}`)
	spacePattern = regexp.MustCompile(` +`)
)

// Extract returns the card mentions followed by the rule and glossary
// mentions of message, each in order of appearance. Repeated queries of the
// same group are reported once, with the flags of their first occurrence.
func Extract(message string) []Mention {
	var mentions []Mention

	seenCards := make(map[string]bool)
	for _, match := range cardPattern.FindAllStringSubmatch(message, -1) {
		query := normalizeQuery(match[2])
		if query == "" || seenCards[query] {
			continue
		}
		seenCards[query] = true
		mentions = append(mentions, Mention{
			Kind:     Card,
			Query:    query,
			Picture:  strings.Contains(match[1], "!"),
			Extended: strings.Contains(match[1], "?"),
		})
	}

	seenRules := make(map[string]bool)
	for _, match := range rulePattern.FindAllStringSubmatch(message, -1) {
		query := normalizeQuery(match[2])
		if query == "" || seenRules[query] {
			continue
		}
		seenRules[query] = true

		mention := Mention{Kind: Glossary, Query: query, Navigate: match[1] != ""}
		if rules.IsRuleReference(query) {
			mention.Kind = Rule
			mention.Query = rules.NormalizeNumber(query)
		}
		mentions = append(mentions, mention)
	}

	return mentions
}

// normalizeQuery trims, collapses runs of spaces and lower-cases.
func normalizeQuery(query string) string {
	return strings.ToLower(spacePattern.ReplaceAllString(strings.TrimSpace(query), " "))
}
