package render

import (
	"fmt"
	"strings"

	"github.com/coolbeans/judge/pkg/pack"
	"github.com/coolbeans/judge/pkg/rules"
)

const (
	rulesTitle     = "Comprehensive Rules"
	glossaryTitle  = "Glossary"
	navigationName = "Navigation"

	navigationSeparator = " - "
	examplePrefix       = "Example:"
)

// GlossaryEmbed renders glossary matches in order, packed into the
// description with a hint to narrow the search when they do not all fit.
func (renderer *Renderer) GlossaryEmbed(entries []*rules.GlossaryEntry) (Embed, error) {
	embed := Embed{
		Title:  glossaryTitle,
		Color:  ColorRules,
		Footer: renderer.Footer,
	}

	blocks := make([]string, len(entries))
	for i, entry := range entries {
		blocks[i] = "**" + entry.Term + "**\n" + entry.Text + "\n\n"
	}

	result, err := pack.Pack(blocks, renderer.descriptionBudget(embed),
		pack.CountMarker("*(%d more matching entries, be more specific.)*"))
	if err != nil {
		return Embed{}, fmt.Errorf("rendering glossary: %w", err)
	}
	embed.Description = result.Text()
	return embed, nil
}

// RuleEmbed renders a rule. With navigation, a "Navigation" field lists the
// rule's siblings, the rule itself in bold, followed by its subrules.
func (renderer *Renderer) RuleEmbed(rule *rules.Rule, navigation *rules.Navigation) (Embed, error) {
	embed := Embed{
		Title:  rulesTitle,
		Color:  ColorRules,
		Footer: renderer.Footer,
	}

	lines := strings.Split("**"+rule.Number+"** "+emphasizeExamples(rule.Text), "\n")
	blocks := make([]string, len(lines))
	for i, line := range lines {
		if i > 0 {
			line = "\n" + line
		}
		blocks[i] = line
	}
	description, err := pack.Pack(blocks, renderer.descriptionBudget(embed),
		pack.CountMarker("\n*(%d more lines)*"))
	if err != nil {
		return Embed{}, fmt.Errorf("rendering rule %s: %w", rule.Number, err)
	}
	embed.Description = description.Text()

	if navigation == nil {
		return embed, nil
	}

	value, err := renderer.navigationValue(*navigation, embed.Length()+pack.Length(navigationName))
	if err != nil {
		return Embed{}, fmt.Errorf("rendering navigation for %s: %w", rule.Number, err)
	}
	embed.Fields = append(embed.Fields, Field{Name: navigationName, Value: value})
	return embed, nil
}

func (renderer *Renderer) descriptionBudget(embed Embed) pack.Budget {
	return pack.Budget{
		GroupCapacity:   renderer.Limits.Description,
		OverallCapacity: renderer.Limits.Total,
		OverallUsed:     embed.Length(),
	}
}

// navigationValue packs the sibling line and the subrule line into one
// field value.
func (renderer *Renderer) navigationValue(navigation rules.Navigation, used int) (string, error) {
	siblingBlocks := make([]string, len(navigation.Siblings.List))
	for i, sibling := range navigation.Siblings.List {
		number := sibling.Number
		if i == navigation.Siblings.Position {
			number = "**" + number + "**"
		}
		siblingBlocks[i] = listBlock(i, number)
	}

	budget := pack.Budget{
		GroupCapacity:   renderer.Limits.FieldValue,
		OverallCapacity: renderer.Limits.Total,
		OverallUsed:     used,
	}
	siblings, err := pack.Pack(siblingBlocks, budget, listMarker)
	if err != nil {
		return "", err
	}
	value := siblings.Text()

	if navigation.Subrules.Count == 0 {
		return value, nil
	}

	subruleBlocks := make([]string, len(navigation.Subrules.List))
	for i, subrule := range navigation.Subrules.List {
		subruleBlocks[i] = listBlock(i, subrule.Number)
	}

	separator := "\n\n"
	consumed := pack.Length(value) + pack.Length(separator)
	budget.GroupCapacity -= consumed
	budget.OverallUsed += consumed
	subrules, err := pack.Pack(subruleBlocks, budget, listMarker)
	if err != nil {
		// The sibling line alone is still useful.
		return value, nil
	}
	return value + separator + subrules.Text(), nil
}

func listBlock(position int, text string) string {
	if position == 0 {
		return text
	}
	return navigationSeparator + text
}

func listMarker(remaining int, nothingIncluded bool) string {
	if nothingIncluded {
		return fmt.Sprintf("… %d rules", remaining)
	}
	return fmt.Sprintf("%s… %d more", navigationSeparator, remaining)
}

// emphasizeExamples italicizes the example lines of a rule text.
func emphasizeExamples(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, examplePrefix) {
			lines[i] = "*" + strings.TrimSpace(line) + "*"
		}
	}
	return strings.Join(lines, "\n")
}
