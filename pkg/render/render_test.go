package render

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coolbeans/judge/pkg/mana"
	"github.com/coolbeans/judge/pkg/pack"
	"github.com/coolbeans/judge/pkg/rules"
)

const testDocument = `Comprehensive Rules

Contents

Glossary

Credits

1. Game Concepts

100. General

100.1. These Magic rules apply to any Magic game.

100.1a A two-player game is a game that begins with only two players.

100.1b A multiplayer game is a game that begins with more than two players.

100.2. To play, each player needs their own deck.
Example: A deck of 59 cards can't be used in a constructed tournament.

101. The Magic Golden Rules

2. Parts of a Card

Glossary

Combat Damage
Damage dealt during the combat damage step.

Damage
Damage is dealt by sources.

Damage Prevention
An effect that stops damage.


Credits

Game Design: Richard Garfield
`

func buildTestIndex(t *testing.T) *rules.Index {
	t.Helper()
	index, err := rules.Build(testDocument, "test", time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return index
}

func mustRule(t *testing.T, index *rules.Index, number string) *rules.Rule {
	t.Helper()
	rule, ok := index.Rule(number)
	if !ok {
		t.Fatalf("rule %s not found", number)
	}
	return rule
}

func findField(embed Embed, name string) (Field, bool) {
	for _, field := range embed.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

func rulingsCard(count int) Card {
	card := Card{Title: "Test", ManaCost: "{G}", TypeLine: "Creature — Elf", Oracle: "{T}: Add {G}."}
	for i := 0; i < count; i++ {
		// Each rendered ruling is exactly 40 characters.
		card.Rulings = append(card.Rulings, Ruling{Date: "2020-01-01", Text: "abcdefghijklmnopqrstuvwx"})
	}
	return card
}

func TestDescribeCard(t *testing.T) {
	testCases := []struct {
		name              string
		card              Card
		expectedCost      string
		expectedConverted string
		expectedColors    string
		expectedIdentity  string
	}{
		{
			name:              "colored_cost",
			card:              Card{ManaCost: "{2}{W}{W}"},
			expectedCost:      "{2}{W}{W}",
			expectedConverted: "4",
			expectedColors:    "W",
			expectedIdentity:  "W",
		},
		{
			name:              "land_without_cost",
			card:              Card{Oracle: "{T}: Add {R} or {G}."},
			expectedCost:      "N/A",
			expectedConverted: "0",
			expectedColors:    "C",
			expectedIdentity:  "RG",
		},
		{
			name:              "devoid",
			card:              Card{ManaCost: "{1}{B}", Oracle: "Devoid\nFlying"},
			expectedCost:      "{1}{B}",
			expectedConverted: "2",
			expectedColors:    "C",
			expectedIdentity:  "B",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			descriptor := DescribeCard(tc.card)
			if descriptor.Cost != tc.expectedCost {
				t.Errorf("Cost = %q, want %q", descriptor.Cost, tc.expectedCost)
			}
			if descriptor.Converted != tc.expectedConverted {
				t.Errorf("Converted = %q, want %q", descriptor.Converted, tc.expectedConverted)
			}
			if descriptor.Colors.String() != tc.expectedColors {
				t.Errorf("Colors = %s, want %s", descriptor.Colors, tc.expectedColors)
			}
			if descriptor.Identity.String() != tc.expectedIdentity {
				t.Errorf("Identity = %s, want %s", descriptor.Identity, tc.expectedIdentity)
			}
		})
	}
}

func TestCardEmbed_Basic(t *testing.T) {
	renderer := NewRenderer(Limits{}, "", "judge | v1")
	card := Card{
		Title:          "Llanowar Elves",
		ManaCost:       "{G}",
		TypeLine:       "Creature — Elf Druid",
		Oracle:         "{T}: Add {G}.",
		Flavor:         "One bone broken for every twig snapped underfoot.",
		PowerToughness: "1/1",
		OtherParts:     []string{"Elvish Mystic"},
	}

	embed, err := renderer.CardEmbed(card, false)
	if err != nil {
		t.Fatalf("CardEmbed failed: %v", err)
	}

	if embed.URL != "https://mtg.wtf/card?q=!Llanowar%20Elves" {
		t.Errorf("URL = %q", embed.URL)
	}
	if embed.Color != ColorGreen {
		t.Errorf("Color = %#x, want green", embed.Color)
	}
	if embed.Footer != "judge | v1" {
		t.Errorf("Footer = %q", embed.Footer)
	}

	expected := map[string]string{
		"Mana Cost":                 "{G}",
		"CMC":                       "1",
		"Color(s) / Color Identity": "G / G",
		"Creature — Elf Druid":      "{T}: Add {G}.\n\n*One bone broken for every twig snapped underfoot.*\n\n**1/1**",
		"Other Part":                "[Elvish Mystic](https://mtg.wtf/card?q=!Elvish%20Mystic)\n",
	}
	for name, value := range expected {
		field, ok := findField(embed, name)
		if !ok {
			t.Errorf("missing field %q", name)
			continue
		}
		if field.Value != value {
			t.Errorf("field %q = %q, want %q", name, field.Value, value)
		}
	}
	if _, ok := findField(embed, "Rulings"); ok {
		t.Error("rulings should only appear in extended mode")
	}
}

func TestCardEmbed_TextFallbacks(t *testing.T) {
	renderer := NewRenderer(Limits{}, "", "")

	embed, _ := renderer.CardEmbed(Card{Title: "Vanilla", TypeLine: "Artifact"}, false)
	if field, _ := findField(embed, "Artifact"); field.Value != noRulesText {
		t.Errorf("empty card text = %q, want %q", field.Value, noRulesText)
	}

	embed, _ = renderer.CardEmbed(Card{Title: "Tarmogoyf", TypeLine: "Creature", PowerToughness: "*/1+*"}, false)
	if field, _ := findField(embed, "Creature"); field.Value != `**\*/1+\***` {
		t.Errorf("escaped P/T = %q", field.Value)
	}
}

func TestCardEmbed_ExtendedRulings(t *testing.T) {
	link := "https://mtg.wtf/card?q=!Test"
	ruling := "**2020-01-01** abcdefghijklmnopqrstuvwx\n"

	testCases := []struct {
		name       string
		fieldValue int
		count      int
		expected   string
	}{
		{"all_fit", 1024, 3, strings.Repeat(ruling, 3)},
		{"marker_backtracks", 100, 5, ruling + "[4 more](" + link + ")"},
		{"only_marker", 45, 5, "[5 rulings](" + link + ")"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			renderer := NewRenderer(Limits{FieldValue: tc.fieldValue}, "", "")
			embed, err := renderer.CardEmbed(rulingsCard(tc.count), true)
			if err != nil {
				t.Fatalf("CardEmbed failed: %v", err)
			}
			field, ok := findField(embed, "Rulings")
			if !ok {
				t.Fatal("missing Rulings field")
			}
			if field.Value != tc.expected {
				t.Errorf("Rulings = %q, want %q", field.Value, tc.expected)
			}
			if pack.Length(field.Value) > tc.fieldValue {
				t.Errorf("Rulings length %d exceeds %d", pack.Length(field.Value), tc.fieldValue)
			}
		})
	}
}

func TestCardEmbed_RulingsTooLarge(t *testing.T) {
	renderer := NewRenderer(Limits{FieldValue: 20}, "", "")
	_, err := renderer.CardEmbed(rulingsCard(2), true)
	if !errors.Is(err, pack.ErrContentTooLarge) {
		t.Errorf("error = %v, want ErrContentTooLarge", err)
	}
}

func TestCardEmbed_TotalLimit(t *testing.T) {
	renderer := NewRenderer(Limits{Total: 400}, "", "")
	card := rulingsCard(20)

	embed, err := renderer.CardEmbed(card, true)
	if err != nil {
		t.Fatalf("CardEmbed failed: %v", err)
	}
	if embed.Length() > 400 {
		t.Errorf("embed length %d exceeds total limit", embed.Length())
	}
	field, _ := findField(embed, "Rulings")
	if !strings.Contains(field.Value, " more](") {
		t.Errorf("expected a remaining-rulings link, got %q", field.Value)
	}
}

func TestCardLink(t *testing.T) {
	renderer := NewRenderer(DefaultLimits(), "", "")

	testCases := []struct {
		title    string
		expected string
	}{
		{"Urza's Tower", "Urza's%20Tower"},
		{"Ach! Hans, Run!", "Ach!%20Hans%2C%20Run!"},
		{"B.F.M. (Big Furry Monster)", "B.F.M.%20(Big%20Furry%20Monster)"},
		{"Fire // Ice", "Fire%20%2F%2F%20Ice"},
		{"Lim-Dûl's Vault", "Lim-D%C3%BBl's%20Vault"},
		{"A+B*C", "A%2BB*C"},
	}

	for _, tc := range testCases {
		t.Run(tc.title, func(t *testing.T) {
			link := renderer.CardLink(tc.title)
			if link != DefaultLinkBase+tc.expected {
				t.Errorf("CardLink(%q) = %q, want %q", tc.title, link, DefaultLinkBase+tc.expected)
			}
		})
	}
}

func TestColorFor(t *testing.T) {
	testCases := []struct {
		colors   mana.ColorSet
		expected int
	}{
		{mana.Colorless, 0},
		{mana.NewColorSet(mana.White), ColorWhite},
		{mana.NewColorSet(mana.Blue), ColorBlue},
		{mana.NewColorSet(mana.Black), ColorBlack},
		{mana.NewColorSet(mana.Red), ColorRed},
		{mana.NewColorSet(mana.Green), ColorGreen},
		{mana.NewColorSet(mana.Black, mana.Green), ColorMulticolor},
	}
	for _, tc := range testCases {
		if got := ColorFor(tc.colors); got != tc.expected {
			t.Errorf("ColorFor(%s) = %#x, want %#x", tc.colors, got, tc.expected)
		}
	}
}

func TestLoadCard(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "card.yaml")
	content := `title: Kird Ape
mana_cost: "{R}"
type_line: Creature — Ape
oracle: Kird Ape gets +1/+2 as long as you control a Forest.
power_toughness: 1/1
legalities:
  - format: Modern
    status: Legal
rulings:
  - date: "2004-10-04"
    text: The bonus applies as long as you control a Forest.
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing card: %v", err)
	}

	card, err := LoadCard(path)
	if err != nil {
		t.Fatalf("LoadCard failed: %v", err)
	}
	if card.Title != "Kird Ape" || card.ManaCost != "{R}" || len(card.Rulings) != 1 || len(card.Legalities) != 1 {
		t.Errorf("card = %+v", card)
	}

	untitled := filepath.Join(directory, "untitled.yaml")
	if err := os.WriteFile(untitled, []byte("mana_cost: \"{1}\"\n"), 0644); err != nil {
		t.Fatalf("writing card: %v", err)
	}
	if _, err := LoadCard(untitled); !errors.Is(err, ErrInvalidCard) {
		t.Errorf("error = %v, want ErrInvalidCard", err)
	}
}

func TestGlossaryEmbed(t *testing.T) {
	index := buildTestIndex(t)
	entries := index.LookupGlossary("damage")

	embed, err := NewRenderer(Limits{}, "", "").GlossaryEmbed(entries)
	if err != nil {
		t.Fatalf("GlossaryEmbed failed: %v", err)
	}
	if !strings.HasPrefix(embed.Description, "**Damage**\nDamage is dealt by sources.\n\n") {
		t.Errorf("exact match should come first, got %q", embed.Description)
	}
	if embed.Title != "Glossary" || embed.Color != ColorRules {
		t.Errorf("embed = %+v", embed)
	}

	narrow := NewRenderer(Limits{Description: 100}, "", "")
	embed, err = narrow.GlossaryEmbed(entries)
	if err != nil {
		t.Fatalf("GlossaryEmbed failed: %v", err)
	}
	if !strings.HasSuffix(embed.Description, "*(2 more matching entries, be more specific.)*") {
		t.Errorf("expected overflow hint, got %q", embed.Description)
	}
	if strings.Contains(embed.Description, "Combat Damage") {
		t.Error("entries after the cut should be excluded")
	}
}

func TestRuleEmbed(t *testing.T) {
	index := buildTestIndex(t)
	renderer := NewRenderer(Limits{}, "", "")

	embed, err := renderer.RuleEmbed(mustRule(t, index, "100.2"), nil)
	if err != nil {
		t.Fatalf("RuleEmbed failed: %v", err)
	}
	expected := "**100.2.** To play, each player needs their own deck.\n*Example: A deck of 59 cards can't be used in a constructed tournament.*"
	if embed.Description != expected {
		t.Errorf("Description = %q, want %q", embed.Description, expected)
	}
	if embed.Title != "Comprehensive Rules" || len(embed.Fields) != 0 {
		t.Errorf("embed = %+v", embed)
	}
}

func TestRuleEmbed_Navigation(t *testing.T) {
	index := buildTestIndex(t)
	rule := mustRule(t, index, "100.1")
	navigation := index.Navigation(rule)

	embed, err := NewRenderer(Limits{}, "", "").RuleEmbed(rule, &navigation)
	if err != nil {
		t.Fatalf("RuleEmbed failed: %v", err)
	}
	field, ok := findField(embed, "Navigation")
	if !ok {
		t.Fatal("missing Navigation field")
	}
	if field.Value != "**100.1.** - 100.2.\n\n100.1a - 100.1b" {
		t.Errorf("Navigation = %q", field.Value)
	}

	// Without room for the subrule line only the siblings remain.
	embed, err = NewRenderer(Limits{FieldValue: 20}, "", "").RuleEmbed(rule, &navigation)
	if err != nil {
		t.Fatalf("RuleEmbed failed: %v", err)
	}
	if field, _ := findField(embed, "Navigation"); field.Value != "**100.1.** - 100.2." {
		t.Errorf("Navigation = %q", field.Value)
	}
}

func TestRuleEmbed_NavigationOverflow(t *testing.T) {
	index := buildTestIndex(t)
	rule := mustRule(t, index, "100.1a")
	navigation := index.Navigation(rule)

	// "**100.1a** - 100.1b" needs 19 characters and the first sibling plus
	// a marker 21, so only the marker is left.
	embed, err := NewRenderer(Limits{FieldValue: 15}, "", "").RuleEmbed(rule, &navigation)
	if err != nil {
		t.Fatalf("RuleEmbed failed: %v", err)
	}
	field, _ := findField(embed, "Navigation")
	if field.Value != "… 2 rules" {
		t.Errorf("Navigation = %q", field.Value)
	}
}

func TestErrorEmbed(t *testing.T) {
	embed := NewRenderer(Limits{}, "", "judge").ErrorEmbed(rules.ErrRuleNotFound, "999", "rule")
	if embed.Title != "Error" || embed.Color != ColorError {
		t.Errorf("embed = %+v", embed)
	}
	if embed.Description != "*rule: 999*\n"+rules.ErrRuleNotFound.Error() {
		t.Errorf("Description = %q", embed.Description)
	}
}
