package mana

import (
	"fmt"
	"regexp"
	"strings"
)

// Color is one of the five colors of mana.
type Color uint8

const (
	White Color = 1 << iota
	Blue
	Black
	Red
	Green
)

// canonicalOrder is the W,U,B,R,G rendering order.
var canonicalOrder = []Color{White, Blue, Black, Red, Green}

// Letter returns the single-letter symbol of the color.
func (color Color) Letter() string {
	switch color {
	case White:
		return "W"
	case Blue:
		return "U"
	case Black:
		return "B"
	case Red:
		return "R"
	case Green:
		return "G"
	}
	return ""
}

// colorFromLetter maps a mana letter to its color. The colorless symbol C and
// anything else map to zero.
func colorFromLetter(letter byte) Color {
	switch letter {
	case 'W':
		return White
	case 'U':
		return Blue
	case 'B':
		return Black
	case 'R':
		return Red
	case 'G':
		return Green
	}
	return 0
}

// ColorSet is an unordered set of colors. The zero value is colorless.
type ColorSet uint8

// Colorless is the empty color set.
const Colorless ColorSet = 0

// NewColorSet builds a set from the given colors.
func NewColorSet(colors ...Color) ColorSet {
	var colorSet ColorSet
	for _, color := range colors {
		colorSet = colorSet.With(color)
	}
	return colorSet
}

// With returns the set with color added.
func (colorSet ColorSet) With(color Color) ColorSet {
	return colorSet | ColorSet(color)
}

// Union returns the union of both sets.
func (colorSet ColorSet) Union(other ColorSet) ColorSet {
	return colorSet | other
}

// Has reports whether color is in the set.
func (colorSet ColorSet) Has(color Color) bool {
	return colorSet&ColorSet(color) != 0
}

// IsColorless reports whether the set is empty.
func (colorSet ColorSet) IsColorless() bool {
	return colorSet == Colorless
}

// Count returns the number of colors in the set.
func (colorSet ColorSet) Count() int {
	count := 0
	for _, color := range canonicalOrder {
		if colorSet.Has(color) {
			count++
		}
	}
	return count
}

// Colors returns the members of the set in canonical W,U,B,R,G order.
func (colorSet ColorSet) Colors() []Color {
	colors := make([]Color, 0, 5)
	for _, color := range canonicalOrder {
		if colorSet.Has(color) {
			colors = append(colors, color)
		}
	}
	return colors
}

// String renders the set in canonical order, or "C" when colorless.
func (colorSet ColorSet) String() string {
	if colorSet.IsColorless() {
		return "C"
	}
	var builder strings.Builder
	for _, color := range colorSet.Colors() {
		builder.WriteString(color.Letter())
	}
	return builder.String()
}

// MarshalText renders the set the same way as String.
func (colorSet ColorSet) MarshalText() ([]byte, error) {
	return []byte(colorSet.String()), nil
}

// UnmarshalText parses letters such as "WU" or "C".
func (colorSet *ColorSet) UnmarshalText(text []byte) error {
	var parsed ColorSet
	for _, letter := range strings.ToUpper(string(text)) {
		if letter == 'C' {
			continue
		}
		color := colorFromLetter(byte(letter))
		if color == 0 {
			return fmt.Errorf("invalid color letter %q", letter)
		}
		parsed = parsed.With(color)
	}
	*colorSet = parsed
	return nil
}

var (
	// devoidPattern matches the devoid keyword standing on its own in rules text.
	devoidPattern = regexp.MustCompile(`(?:^|\n|, )[Dd]evoid(?:[,\n]|$)`)

	indicatorNames = map[Color]string{
		White: "white",
		Blue:  "blue",
		Black: "black",
		Red:   "red",
		Green: "green",
	}
)

// isForcedColorless reports whether rules text makes an object colorless
// regardless of its cost.
func isForcedColorless(text string) bool {
	if text == "" {
		return false
	}
	return devoidPattern.MatchString(text) || strings.Contains(text, " is colorless")
}

// indicatorColors reads the colors named by a color indicator, such as
// "Color Indicator: Blue and Black" or "all colors".
func indicatorColors(colorIndicator string) ColorSet {
	lowered := strings.ToLower(colorIndicator)
	if lowered == "" {
		return Colorless
	}
	if strings.Contains(lowered, "all colors") {
		return NewColorSet(canonicalOrder...)
	}
	var colorSet ColorSet
	for _, color := range canonicalOrder {
		if strings.Contains(lowered, indicatorNames[color]) {
			colorSet = colorSet.With(color)
		}
	}
	return colorSet
}

// Colors derives the color set of an object from its cost, its color
// indicator and its rules text. A devoid or "is colorless" clause in the text
// overrides everything else.
func Colors(cost Cost, colorIndicator, text string) ColorSet {
	if isForcedColorless(text) {
		return Colorless
	}
	return cost.Colors().Union(indicatorColors(colorIndicator))
}

// Identity derives the color identity: the color set plus every color of a
// mana symbol in the cost or anywhere in the rules text.
func Identity(cost Cost, colors ColorSet, text string) ColorSet {
	identity := colors.Union(cost.Colors())
	for _, symbol := range Tokenize(text) {
		identity = identity.Union(symbol.Colors)
	}
	return identity
}
