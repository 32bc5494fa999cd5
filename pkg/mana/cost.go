package mana

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNotApplicable is returned for an absent or blank cost. It marks a valid
// "no cost" state (lands, tokens) that is distinct from a zero cost.
var ErrNotApplicable = errors.New("mana cost not applicable")

// NotApplicableText is how an absent cost is displayed.
const NotApplicableText = "N/A"

// Cost is a parsed mana cost.
type Cost struct {
	Raw           string   `json:"raw"`
	Symbols       []Symbol `json:"symbols"`
	Converted     float64  `json:"converted"`
	NotApplicable bool     `json:"not_applicable,omitempty"`
}

// ParseCost tokenizes a cost string and folds its symbols into a converted
// cost. A blank string yields ErrNotApplicable together with a Cost flagged
// NotApplicable; a string with no symbols at all is a zero cost.
func ParseCost(raw string) (Cost, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, NotApplicableText) {
		return Cost{Raw: NotApplicableText, NotApplicable: true}, ErrNotApplicable
	}

	symbols := Tokenize(trimmed)
	return Cost{
		Raw:       strings.ToUpper(trimmed),
		Symbols:   symbols,
		Converted: convertedCost(symbols),
	}, nil
}

// convertedCost sums the mana value of each symbol. Only the first generic
// symbol counts; a well-formed cost never carries two.
func convertedCost(symbols []Symbol) float64 {
	var total float64
	genericSeen := false

	for _, symbol := range symbols {
		switch symbol.Kind {
		case SymbolColored, SymbolHybrid, SymbolPhyrexian:
			total++
		case SymbolMonocoloredHybrid:
			total += float64(symbol.Value)
		case SymbolHalfMana:
			total += 0.5
		case SymbolGeneric:
			if !genericSeen {
				total += float64(symbol.Value)
				genericSeen = true
			}
		}
	}

	return total
}

// Colors returns the union of the colors of every symbol in the cost.
func (cost Cost) Colors() ColorSet {
	var colorSet ColorSet
	for _, symbol := range cost.Symbols {
		colorSet = colorSet.Union(symbol.Colors)
	}
	return colorSet
}

// String returns the normalized cost text, or "N/A".
func (cost Cost) String() string {
	if cost.NotApplicable {
		return NotApplicableText
	}
	return cost.Raw
}

// FormatConverted renders a converted cost without trailing zeros ("3", "2.5").
func FormatConverted(converted float64) string {
	return strconv.FormatFloat(converted, 'f', -1, 64)
}

// Profile is the full mana description of an object.
type Profile struct {
	Cost     Cost     `json:"cost"`
	Colors   ColorSet `json:"colors"`
	Identity ColorSet `json:"identity"`
}

// Describe parses the cost and derives colors and color identity. When the
// cost is not applicable the profile is still filled in from the indicator
// and text, and ErrNotApplicable is returned alongside it.
func Describe(rawCost, colorIndicator, text string) (Profile, error) {
	cost, err := ParseCost(rawCost)
	if err != nil && !errors.Is(err, ErrNotApplicable) {
		return Profile{}, err
	}

	colors := Colors(cost, colorIndicator, text)
	profile := Profile{
		Cost:     cost,
		Colors:   colors,
		Identity: Identity(cost, colors, text),
	}
	return profile, err
}
