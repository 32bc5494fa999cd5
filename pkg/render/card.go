package render

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/judge/pkg/mana"
	"github.com/coolbeans/judge/pkg/pack"
)

// ErrInvalidCard is returned for card records without a title.
var ErrInvalidCard = errors.New("invalid card record")

// noRulesText stands in for a card without oracle, flavor or stats.
const noRulesText = "*(No rules text.)*"

// Card is an input card record.
type Card struct {
	Title          string     `yaml:"title" json:"title"`
	ManaCost       string     `yaml:"mana_cost" json:"mana_cost,omitempty"`
	TypeLine       string     `yaml:"type_line" json:"type_line"`
	Oracle         string     `yaml:"oracle" json:"oracle,omitempty"`
	ColorIndicator string     `yaml:"color_indicator" json:"color_indicator,omitempty"`
	Flavor         string     `yaml:"flavor" json:"flavor,omitempty"`
	PowerToughness string     `yaml:"power_toughness" json:"power_toughness,omitempty"`
	Loyalty        string     `yaml:"loyalty" json:"loyalty,omitempty"`
	OtherParts     []string   `yaml:"other_parts" json:"other_parts,omitempty"`
	Legalities     []Legality `yaml:"legalities" json:"legalities,omitempty"`
	Rulings        []Ruling   `yaml:"rulings" json:"rulings,omitempty"`
	ImageURL       string     `yaml:"image_url" json:"image_url,omitempty"`
}

// Legality is a card's status in one format.
type Legality struct {
	Format string `yaml:"format" json:"format"`
	Status string `yaml:"status" json:"status"`
}

// Ruling is a dated official ruling.
type Ruling struct {
	Date string `yaml:"date" json:"date"`
	Text string `yaml:"text" json:"text"`
}

// LoadCard reads a card record from a yaml file.
func LoadCard(path string) (Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Card{}, fmt.Errorf("reading card: %w", err)
	}

	var card Card
	if err := yaml.Unmarshal(data, &card); err != nil {
		return Card{}, fmt.Errorf("parsing card %s: %w", path, err)
	}
	if strings.TrimSpace(card.Title) == "" {
		return Card{}, fmt.Errorf("%w: %s has no title", ErrInvalidCard, path)
	}
	return card, nil
}

// CardDescriptor is the mana summary shown for a card.
type CardDescriptor struct {
	Cost          string        `json:"cost"`
	Converted     string        `json:"converted"`
	Colors        mana.ColorSet `json:"colors"`
	Identity      mana.ColorSet `json:"identity"`
	NotApplicable bool          `json:"not_applicable,omitempty"`
}

// DescribeCard derives the cost, converted cost, colors and color identity
// of a card. A card without a cost shows "N/A" with a converted cost of 0.
func DescribeCard(card Card) CardDescriptor {
	profile, err := mana.Describe(card.ManaCost, card.ColorIndicator, card.Oracle)
	return CardDescriptor{
		Cost:          profile.Cost.String(),
		Converted:     mana.FormatConverted(profile.Cost.Converted),
		Colors:        profile.Colors,
		Identity:      profile.Identity,
		NotApplicable: errors.Is(err, mana.ErrNotApplicable),
	}
}

// CardEmbed renders a card. Extended mode adds legalities and the rulings,
// which are packed into the remaining room with a link to the rest.
func (renderer *Renderer) CardEmbed(card Card, extended bool) (Embed, error) {
	descriptor := DescribeCard(card)
	link := renderer.CardLink(card.Title)

	embed := Embed{
		Title:  card.Title,
		URL:    link,
		Color:  ColorFor(descriptor.Colors),
		Footer: renderer.Footer,
		Image:  card.ImageURL,
	}

	embed.Fields = append(embed.Fields,
		Field{Name: "Mana Cost", Value: descriptor.Cost, Inline: true},
		Field{Name: "CMC", Value: descriptor.Converted, Inline: true},
		Field{Name: "Color(s) / Color Identity", Value: descriptor.Colors.String() + " / " + descriptor.Identity.String(), Inline: true},
		Field{Name: card.TypeLine, Value: mainText(card)},
	)

	if extended && len(card.Legalities) > 0 {
		var legalities strings.Builder
		for _, legality := range card.Legalities {
			legalities.WriteString(legality.Format + ": " + legality.Status + "\n")
		}
		embed.Fields = append(embed.Fields, Field{Name: "Legalities", Value: legalities.String(), Inline: true})
	}

	if len(card.OtherParts) > 0 {
		var parts strings.Builder
		for _, part := range card.OtherParts {
			parts.WriteString("[" + part + "](" + renderer.CardLink(part) + ")\n")
		}
		name := "Other Parts"
		if len(card.OtherParts) == 1 {
			name = "Other Part"
		}
		embed.Fields = append(embed.Fields, Field{Name: name, Value: parts.String(), Inline: true})
	}

	if extended && len(card.Rulings) > 0 {
		rulings, err := renderer.packRulings(card.Rulings, link, embed.Length())
		if err != nil {
			return Embed{}, fmt.Errorf("rendering rulings for %s: %w", card.Title, err)
		}
		embed.Fields = append(embed.Fields, Field{Name: "Rulings", Value: rulings})
	}

	return embed, nil
}

func (renderer *Renderer) packRulings(rulings []Ruling, link string, used int) (string, error) {
	blocks := make([]string, len(rulings))
	for i, ruling := range rulings {
		blocks[i] = "**" + ruling.Date + "** " + ruling.Text + "\n"
	}

	budget := pack.Budget{
		GroupCapacity:   renderer.Limits.FieldValue,
		OverallCapacity: renderer.Limits.Total,
		// The field name counts against the total as well.
		OverallUsed: used + pack.Length("Rulings"),
	}
	result, err := pack.Pack(blocks, budget, func(remaining int, nothingIncluded bool) string {
		if nothingIncluded {
			return fmt.Sprintf("[%d rulings](%s)", remaining, link)
		}
		return fmt.Sprintf("[%d more](%s)", remaining, link)
	})
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

func mainText(card Card) string {
	var sections []string
	if card.Oracle != "" {
		sections = append(sections, card.Oracle)
	}
	if card.Flavor != "" {
		sections = append(sections, "*"+card.Flavor+"*")
	}
	if card.PowerToughness != "" {
		sections = append(sections, "**"+strings.ReplaceAll(card.PowerToughness, "*", `\*`)+"**")
	}
	if card.Loyalty != "" {
		sections = append(sections, "**"+card.Loyalty+"**")
	}
	if len(sections) == 0 {
		return noRulesText
	}
	return strings.Join(sections, "\n\n")
}
