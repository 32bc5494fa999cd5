// Package mana parses mana-cost strings such as "{2}{W}{U/B}{B/P}" into typed
// symbols and derives converted cost, colors and color identity from them.
package mana

import (
	"regexp"
	"strconv"
	"strings"
)

// SymbolKind classifies a single brace-delimited mana symbol.
type SymbolKind int

const (
	// SymbolOther covers tap, snow, energy and any symbol without mana value.
	SymbolOther SymbolKind = iota
	// SymbolColored is a single colored or colorless symbol: {W} {U} {B} {R} {G} {C}.
	SymbolColored
	// SymbolHybrid is a two-color hybrid symbol such as {W/U}.
	SymbolHybrid
	// SymbolPhyrexian is a Phyrexian symbol such as {B/P} or {G/W/P}.
	SymbolPhyrexian
	// SymbolMonocoloredHybrid is a generic/color pair such as {2/W}.
	SymbolMonocoloredHybrid
	// SymbolHalfMana is a legacy half-mana symbol such as {HR}.
	SymbolHalfMana
	// SymbolGeneric is a numeric generic symbol such as {3}.
	SymbolGeneric
	// SymbolVariable is {X}, {Y} or {Z}.
	SymbolVariable
)

var symbolKindNames = map[SymbolKind]string{
	SymbolOther:             "other",
	SymbolColored:           "colored",
	SymbolHybrid:            "hybrid",
	SymbolPhyrexian:         "phyrexian",
	SymbolMonocoloredHybrid: "monocolored_hybrid",
	SymbolHalfMana:          "half_mana",
	SymbolGeneric:           "generic",
	SymbolVariable:          "variable",
}

// String returns the kind's name.
func (kind SymbolKind) String() string {
	if name, ok := symbolKindNames[kind]; ok {
		return name
	}
	return "unknown"
}

// Symbol is one token of a mana cost.
type Symbol struct {
	Kind   SymbolKind `json:"kind"`
	Text   string     `json:"text"`
	Colors ColorSet   `json:"colors"`
	// Value is the numeric part of generic and monocolored hybrid symbols.
	Value int `json:"value,omitempty"`
}

var (
	symbolPattern = regexp.MustCompile(`\{([^{}]+)\}`)

	coloredPattern           = regexp.MustCompile(`^[WUBRGC]$`)
	phyrexianPattern         = regexp.MustCompile(`^([WUBRGC])(?:/([WUBRGC]))?/P$`)
	hybridPattern            = regexp.MustCompile(`^([WUBRGC])/([WUBRGC])$`)
	monocoloredHybridPattern = regexp.MustCompile(`^([0-9]+)/([WUBRGC])$`)
	halfManaPattern          = regexp.MustCompile(`^H([WUBRGC])$`)
	genericPattern           = regexp.MustCompile(`^[0-9]+$`)
	variablePattern          = regexp.MustCompile(`^[XYZ]$`)
)

// Tokenize splits text into mana symbols. Input is upper-cased first and
// anything outside braces is ignored, so it is safe to run over rules text.
func Tokenize(text string) []Symbol {
	matches := symbolPattern.FindAllStringSubmatch(strings.ToUpper(text), -1)
	symbols := make([]Symbol, 0, len(matches))
	for _, match := range matches {
		symbols = append(symbols, classifySymbol(match[1]))
	}
	return symbols
}

func classifySymbol(body string) Symbol {
	symbol := Symbol{Kind: SymbolOther, Text: "{" + body + "}"}

	switch {
	case coloredPattern.MatchString(body):
		symbol.Kind = SymbolColored
		symbol.Colors = NewColorSet(colorFromLetter(body[0]))

	case phyrexianPattern.MatchString(body):
		parts := phyrexianPattern.FindStringSubmatch(body)
		symbol.Kind = SymbolPhyrexian
		symbol.Colors = NewColorSet(colorFromLetter(parts[1][0]))
		if parts[2] != "" {
			symbol.Colors = symbol.Colors.With(colorFromLetter(parts[2][0]))
		}

	case hybridPattern.MatchString(body):
		parts := hybridPattern.FindStringSubmatch(body)
		symbol.Kind = SymbolHybrid
		symbol.Colors = NewColorSet(colorFromLetter(parts[1][0]), colorFromLetter(parts[2][0]))

	case monocoloredHybridPattern.MatchString(body):
		parts := monocoloredHybridPattern.FindStringSubmatch(body)
		symbol.Kind = SymbolMonocoloredHybrid
		symbol.Value, _ = strconv.Atoi(parts[1])
		symbol.Colors = NewColorSet(colorFromLetter(parts[2][0]))

	case halfManaPattern.MatchString(body):
		symbol.Kind = SymbolHalfMana
		symbol.Colors = NewColorSet(colorFromLetter(body[1]))

	case genericPattern.MatchString(body):
		symbol.Kind = SymbolGeneric
		symbol.Value, _ = strconv.Atoi(body)

	case variablePattern.MatchString(body):
		symbol.Kind = SymbolVariable
	}

	return symbol
}
