package mention

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	testCases := []struct {
		name     string
		message  string
		expected []Mention
	}{
		{
			name:     "no_mentions",
			message:  "just chatting [about] {things}",
			expected: nil,
		},
		{
			name:    "card_flags",
			message: "compare [[Llanowar Elves]] with [!?[  Elvish   Mystic ]]",
			expected: []Mention{
				{Kind: Card, Query: "llanowar elves"},
				{Kind: Card, Query: "elvish mystic", Picture: true, Extended: true},
			},
		},
		{
			name:    "rules_and_glossary",
			message: "see {{100.1a}} and {>{601.2.}} about {{Combat  Damage}}",
			expected: []Mention{
				{Kind: Rule, Query: "1001a"},
				{Kind: Rule, Query: "6012", Navigate: true},
				{Kind: Glossary, Query: "combat damage"},
			},
		},
		{
			name:    "cards_before_rules",
			message: "{{deathtouch}} [[Typhoid Rats]]",
			expected: []Mention{
				{Kind: Card, Query: "typhoid rats"},
				{Kind: Glossary, Query: "deathtouch"},
			},
		},
		{
			name:    "duplicates_keep_first",
			message: "[[Shock]] [?[shock]] {{1}} {>{1}}",
			expected: []Mention{
				{Kind: Card, Query: "shock"},
				{Kind: Rule, Query: "1"},
			},
		},
		{
			name:     "no_newlines_inside",
			message:  "[[Lightning\nBolt]]",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mentions := Extract(tc.message)
			if !reflect.DeepEqual(mentions, tc.expected) {
				t.Errorf("Extract(%q) = %+v, want %+v", tc.message, mentions, tc.expected)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if Card.String() != "card" || Rule.String() != "rule" || Glossary.String() != "glossary" {
		t.Error("unexpected kind names")
	}
}
