// Package render assembles cards, rules and glossary entries into
// size-limited rich message embeds.
package render

import (
	"net/url"
	"strings"

	"github.com/coolbeans/judge/pkg/mana"
	"github.com/coolbeans/judge/pkg/pack"
)

// Display limits of the embed format, in characters.
const (
	DefaultDescriptionLimit = 2048
	DefaultFieldValueLimit  = 1024
	DefaultTotalLimit       = 6000
)

// DefaultLinkBase prefixes the URL-encoded card title in card links.
const DefaultLinkBase = "https://mtg.wtf/card?q=!"

// Embed colors.
const (
	ColorMulticolor = 0xECD57A
	ColorWhite      = 0xFFFFDD
	ColorBlue       = 0x378BC6
	ColorBlack      = 0x161616
	ColorRed        = 0xAF1D1D
	ColorGreen      = 0x5BD387
	ColorRules      = 0xAD42F4
	ColorError      = 0x00FFFF
)

// Limits are the capacities an embed must respect.
type Limits struct {
	Description int `json:"description"`
	FieldValue  int `json:"field_value"`
	Total       int `json:"total"`
}

// DefaultLimits returns the standard embed limits.
func DefaultLimits() Limits {
	return Limits{
		Description: DefaultDescriptionLimit,
		FieldValue:  DefaultFieldValueLimit,
		Total:       DefaultTotalLimit,
	}
}

// Field is a named section of an embed.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed is a rich message ready to be posted or printed.
type Embed struct {
	Title       string  `json:"title,omitempty"`
	URL         string  `json:"url,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Footer      string  `json:"footer,omitempty"`
	Image       string  `json:"image,omitempty"`
}

// Length counts the characters that count against the total limit.
func (embed Embed) Length() int {
	length := pack.Length(embed.Title) + pack.Length(embed.Description) + pack.Length(embed.Footer)
	for _, field := range embed.Fields {
		length += pack.Length(field.Name) + pack.Length(field.Value)
	}
	return length
}

// Renderer builds embeds with shared limits, links and footer.
type Renderer struct {
	Limits   Limits
	LinkBase string
	Footer   string
}

// NewRenderer creates a Renderer. Zero limits and an empty link base fall
// back to the defaults.
func NewRenderer(limits Limits, linkBase, footer string) *Renderer {
	defaults := DefaultLimits()
	if limits.Description <= 0 {
		limits.Description = defaults.Description
	}
	if limits.FieldValue <= 0 {
		limits.FieldValue = defaults.FieldValue
	}
	if limits.Total <= 0 {
		limits.Total = defaults.Total
	}
	if linkBase == "" {
		linkBase = DefaultLinkBase
	}
	return &Renderer{Limits: limits, LinkBase: linkBase, Footer: footer}
}

// componentUnescaper restores the characters QueryEscape escapes but a URI
// component keeps literal. Spaces become %20.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// CardLink returns the link for a card title.
func (renderer *Renderer) CardLink(title string) string {
	return renderer.LinkBase + componentUnescaper.Replace(url.QueryEscape(title))
}

// ColorFor picks the embed color for a card's colors. Colorless cards get no
// color.
func ColorFor(colors mana.ColorSet) int {
	if colors.Count() > 1 {
		return ColorMulticolor
	}
	switch {
	case colors.Has(mana.White):
		return ColorWhite
	case colors.Has(mana.Blue):
		return ColorBlue
	case colors.Has(mana.Black):
		return ColorBlack
	case colors.Has(mana.Red):
		return ColorRed
	case colors.Has(mana.Green):
		return ColorGreen
	}
	return 0
}

// ErrorEmbed reports a failed lookup of the given kind ("card", "rule",
// "glossary").
func (renderer *Renderer) ErrorEmbed(err error, query, kind string) Embed {
	return Embed{
		Title:       "Error",
		Description: "*" + kind + ": " + query + "*\n" + err.Error(),
		Color:       ColorError,
		Footer:      renderer.Footer,
	}
}
