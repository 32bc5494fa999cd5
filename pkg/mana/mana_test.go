package mana

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestTokenize_Kinds(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		kind   SymbolKind
		colors string
		value  int
	}{
		{"white", "{W}", SymbolColored, "W", 0},
		{"colorless_symbol", "{C}", SymbolColored, "C", 0},
		{"hybrid", "{W/U}", SymbolHybrid, "WU", 0},
		{"phyrexian", "{B/P}", SymbolPhyrexian, "B", 0},
		{"hybrid_phyrexian", "{G/W/P}", SymbolPhyrexian, "WG", 0},
		{"monocolored_hybrid", "{2/W}", SymbolMonocoloredHybrid, "W", 2},
		{"half_mana", "{HR}", SymbolHalfMana, "R", 0},
		{"generic", "{12}", SymbolGeneric, "C", 12},
		{"variable", "{X}", SymbolVariable, "C", 0},
		{"tap", "{T}", SymbolOther, "C", 0},
		{"lowercase_input", "{u/r}", SymbolHybrid, "UR", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			symbols := Tokenize(tc.input)
			if len(symbols) != 1 {
				t.Fatalf("Tokenize(%q) returned %d symbols, want 1", tc.input, len(symbols))
			}
			symbol := symbols[0]
			if symbol.Kind != tc.kind {
				t.Errorf("Kind = %v, want %v", symbol.Kind, tc.kind)
			}
			if symbol.Colors.String() != tc.colors {
				t.Errorf("Colors = %s, want %s", symbol.Colors, tc.colors)
			}
			if symbol.Value != tc.value {
				t.Errorf("Value = %d, want %d", symbol.Value, tc.value)
			}
		})
	}
}

func TestTokenize_IgnoresTextOutsideBraces(t *testing.T) {
	symbols := Tokenize("{T}: Add {G}. Spend this mana only to cast a creature spell.")
	if len(symbols) != 2 {
		t.Fatalf("got %d symbols, want 2", len(symbols))
	}
	if symbols[0].Kind != SymbolOther || symbols[1].Kind != SymbolColored {
		t.Errorf("kinds = %v, %v", symbols[0].Kind, symbols[1].Kind)
	}
}

func TestParseCost_ConvertedCost(t *testing.T) {
	testCases := []struct {
		name     string
		cost     string
		expected float64
		colors   string
	}{
		{"generic_and_colored", "{2}{W}{W}", 4, "W"},
		{"hybrid_and_monocolored", "{W/U}{2/B}", 3, "WUB"},
		{"mixed", "{2}{W}{U/B}{B/P}", 5, "WUB"},
		{"half_mana", "{HR}", 0.5, "R"},
		{"half_mana_pair", "{1}{HW}{HW}", 2, "W"},
		{"colorless_symbol", "{C}{C}", 2, "C"},
		{"variable", "{X}{R}{R}", 2, "R"},
		{"only_first_generic_counts", "{2}{3}", 2, "C"},
		{"no_symbols", "free", 0, "C"},
		{"five_color", "{W}{U}{B}{R}{G}", 5, "WUBRG"},
		{"phyrexian_hybrid", "{G/U/P}", 1, "UG"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cost, err := ParseCost(tc.cost)
			if err != nil {
				t.Fatalf("ParseCost(%q) error: %v", tc.cost, err)
			}
			if cost.Converted != tc.expected {
				t.Errorf("Converted = %v, want %v", cost.Converted, tc.expected)
			}
			if cost.Colors().String() != tc.colors {
				t.Errorf("Colors = %s, want %s", cost.Colors(), tc.colors)
			}
		})
	}
}

func TestParseCost_NotApplicable(t *testing.T) {
	for _, raw := range []string{"", "   ", "N/A", "n/a"} {
		cost, err := ParseCost(raw)
		if !errors.Is(err, ErrNotApplicable) {
			t.Errorf("ParseCost(%q) error = %v, want ErrNotApplicable", raw, err)
		}
		if !cost.NotApplicable {
			t.Errorf("ParseCost(%q).NotApplicable = false", raw)
		}
		if cost.String() != "N/A" {
			t.Errorf("ParseCost(%q).String() = %q, want N/A", raw, cost.String())
		}
	}

	zero, err := ParseCost("{0}")
	if err != nil {
		t.Fatalf("ParseCost({0}) error: %v", err)
	}
	if zero.NotApplicable || zero.Converted != 0 {
		t.Errorf("{0} should be an applicable zero cost, got %+v", zero)
	}
}

func TestFormatConverted(t *testing.T) {
	testCases := []struct {
		input    float64
		expected string
	}{
		{0, "0"},
		{3, "3"},
		{0.5, "0.5"},
		{2.5, "2.5"},
	}
	for _, tc := range testCases {
		if got := FormatConverted(tc.input); got != tc.expected {
			t.Errorf("FormatConverted(%v) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestColors(t *testing.T) {
	testCases := []struct {
		name      string
		cost      string
		indicator string
		text      string
		expected  string
	}{
		{"from_cost", "{1}{U}{R}", "", "", "UR"},
		{"indicator_only", "", "Color Indicator: Green", "", "G"},
		{"indicator_pair", "", "(Color indicator: Blue and Black)", "", "UB"},
		{"all_colors", "", "all colors", "", "WUBRG"},
		{"devoid_first_line", "{3}{B}", "", "Devoid\nFlying", "C"},
		{"devoid_after_comma", "{2}{U}", "", "Flying, devoid", "C"},
		{"devoid_in_list", "{2}{U}", "", "Flash, devoid, flying", "C"},
		{"is_colorless", "{4}{G}", "", "Ghostfire is colorless.\nIt deals 3 damage.", "C"},
		{"devoid_not_word", "{R}", "", "Devoidance matters", "R"},
		{"hybrid_cost", "{W/B}{W/B}", "", "", "WB"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cost, _ := ParseCost(tc.cost)
			colors := Colors(cost, tc.indicator, tc.text)
			if colors.String() != tc.expected {
				t.Errorf("Colors = %s, want %s", colors, tc.expected)
			}
		})
	}
}

func TestIdentity(t *testing.T) {
	testCases := []struct {
		name     string
		cost     string
		text     string
		expected string
	}{
		{"cost_only", "{2}{G}", "", "G"},
		{"activated_ability", "{3}", "{T}: Add {W} or {U}.", "WU"},
		{"hybrid_in_text", "{1}{R}", "{B/G}: Regenerate this creature.", "BRG"},
		{"devoid_keeps_identity", "{1}{B}", "Devoid\nWhen this enters, draw a card.", "B"},
		{"colorless", "{4}", "{T}: Add {C}.", "C"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cost, _ := ParseCost(tc.cost)
			colors := Colors(cost, "", tc.text)
			identity := Identity(cost, colors, tc.text)
			if identity.String() != tc.expected {
				t.Errorf("Identity = %s, want %s", identity, tc.expected)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	profile, err := Describe("{1}{G}{U}", "", "{T}: Add {R}.")
	if err != nil {
		t.Fatalf("Describe error: %v", err)
	}
	if profile.Cost.Converted != 3 {
		t.Errorf("Converted = %v, want 3", profile.Cost.Converted)
	}
	if profile.Colors.String() != "UG" {
		t.Errorf("Colors = %s, want UG", profile.Colors)
	}
	if profile.Identity.String() != "URG" {
		t.Errorf("Identity = %s, want URG", profile.Identity)
	}

	land, err := Describe("", "", "{T}: Add {W}.")
	if !errors.Is(err, ErrNotApplicable) {
		t.Fatalf("Describe with no cost error = %v, want ErrNotApplicable", err)
	}
	if land.Colors.String() != "C" || land.Identity.String() != "W" {
		t.Errorf("land profile = %s / %s, want C / W", land.Colors, land.Identity)
	}
}

func TestColorSet_TextRoundTrip(t *testing.T) {
	payload, err := json.Marshal(map[string]ColorSet{"colors": NewColorSet(Green, White)})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(payload) != `{"colors":"WG"}` {
		t.Errorf("Marshal = %s", payload)
	}

	var decoded map[string]ColorSet
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if decoded["colors"] != NewColorSet(White, Green) {
		t.Errorf("decoded = %s, want WG", decoded["colors"])
	}

	var invalid ColorSet
	if err := invalid.UnmarshalText([]byte("WQ")); err == nil {
		t.Error("expected error for invalid letter")
	}
}
