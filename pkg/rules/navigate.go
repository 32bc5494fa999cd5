package rules

import "strconv"

// Children is the ordered list of rules directly below a node.
type Children struct {
	Count int     `json:"count"`
	Start string  `json:"start,omitempty"`
	End   string  `json:"end,omitempty"`
	List  []*Rule `json:"list"`
}

// Siblings is the children of a rule's parent plus the rule's own position in
// that list, or -1 when the rule is not part of it.
type Siblings struct {
	Children
	Position int `json:"position"`
}

// Direction selects a neighbour for Step.
type Direction int

const (
	// Next is the following sibling.
	Next Direction = iota
	// Previous is the preceding sibling.
	Previous
	// Down is the first child.
	Down
	// Up is the parent.
	Up
)

// ChildrenOf lists the rules one level below rule; a nil rule means the top
// level, whose children are the categories. Enumeration probes successive
// numbers and stops at the first one missing from the index, so a numbering
// gap hides everything after it.
func (index *Index) ChildrenOf(rule *Rule) Children {
	if rule == nil {
		return index.probe(func(position int) string {
			return strconv.Itoa(position + 1)
		})
	}

	key := rule.Key()
	switch rule.Level() {
	case LevelCategory:
		categoryBase := int(key[0]-'0') * 100
		return index.probe(func(position int) string {
			if position >= 100 {
				return ""
			}
			return strconv.Itoa(categoryBase + position)
		})

	case LevelRule:
		return index.probe(func(position int) string {
			return key[:3] + strconv.Itoa(position+1)
		})

	case LevelSubrule:
		return index.probe(func(position int) string {
			if position >= len(subruleLetters) {
				return ""
			}
			return key + subruleLetters[position:position+1]
		})
	}

	return Children{List: []*Rule{}}
}

// probe collects rules for successive keys until a key is missing or empty.
func (index *Index) probe(keyAt func(position int) string) Children {
	children := Children{List: []*Rule{}}
	for position := 0; ; position++ {
		key := keyAt(position)
		if key == "" {
			break
		}
		rule, exists := index.rules[key]
		if !exists {
			break
		}
		children.List = append(children.List, rule)
	}

	children.Count = len(children.List)
	if children.Count > 0 {
		children.Start = children.List[0].Number
		children.End = children.List[children.Count-1].Number
	}
	return children
}

// ParentOf returns the rule one level up, or nil for categories, unknown
// numbers and rules whose parent is missing from the index.
func (index *Index) ParentOf(rule *Rule) *Rule {
	if rule == nil {
		return nil
	}

	key := rule.Key()
	var parentKey string
	switch rule.Level() {
	case LevelRule:
		parentKey = key[:1]
	case LevelSubrule:
		parentKey = key[:3]
	case LevelSubSubrule:
		parentKey = key[:len(key)-1]
	default:
		return nil
	}

	return index.rules[parentKey]
}

// SiblingsOf returns the children of rule's parent with rule's position in
// them. Unknown or detached rules yield position -1 rather than an error.
func (index *Index) SiblingsOf(rule *Rule) Siblings {
	if rule == nil {
		return Siblings{Children: Children{List: []*Rule{}}, Position: -1}
	}

	var children Children
	switch rule.Level() {
	case LevelCategory:
		children = index.ChildrenOf(nil)
	case LevelUnknown:
		return Siblings{Children: Children{List: []*Rule{}}, Position: -1}
	default:
		parent := index.ParentOf(rule)
		if parent == nil {
			return Siblings{Children: Children{List: []*Rule{}}, Position: -1}
		}
		children = index.ChildrenOf(parent)
	}

	siblings := Siblings{Children: children, Position: -1}
	key := rule.Key()
	for position, sibling := range children.List {
		if sibling.Key() == key {
			siblings.Position = position
			break
		}
	}
	return siblings
}

// Ancestors returns the chain of parents from the category down to the
// direct parent of rule.
func (index *Index) Ancestors(rule *Rule) []*Rule {
	var ancestors []*Rule
	for parent := index.ParentOf(rule); parent != nil; parent = index.ParentOf(parent) {
		ancestors = append([]*Rule{parent}, ancestors...)
	}
	return ancestors
}

// Navigation bundles everything needed to render a navigable rule.
type Navigation struct {
	Siblings  Siblings `json:"siblings"`
	Subrules  Children `json:"subrules"`
	Ancestors []*Rule  `json:"ancestors,omitempty"`
}

// Navigation computes siblings, children and ancestors of rule.
func (index *Index) Navigation(rule *Rule) Navigation {
	return Navigation{
		Siblings:  index.SiblingsOf(rule),
		Subrules:  index.ChildrenOf(rule),
		Ancestors: index.Ancestors(rule),
	}
}

// Step moves from the rule with the given number in direction. It reports
// false when the rule is unknown or there is nothing in that direction.
func (index *Index) Step(number string, direction Direction) (*Rule, bool) {
	rule, ok := index.Rule(number)
	if !ok {
		return nil, false
	}

	switch direction {
	case Next, Previous:
		siblings := index.SiblingsOf(rule)
		if siblings.Position < 0 {
			return nil, false
		}
		target := siblings.Position + 1
		if direction == Previous {
			target = siblings.Position - 1
		}
		if target < 0 || target >= siblings.Count {
			return nil, false
		}
		return siblings.List[target], true

	case Down:
		children := index.ChildrenOf(rule)
		if children.Count == 0 {
			return nil, false
		}
		return children.List[0], true

	case Up:
		parent := index.ParentOf(rule)
		return parent, parent != nil
	}

	return nil, false
}

// ParseDirection maps a direction name such as "next" or "up".
func ParseDirection(name string) (Direction, bool) {
	switch name {
	case "next", "right":
		return Next, true
	case "prev", "previous", "left":
		return Previous, true
	case "down", "sub", "subrule":
		return Down, true
	case "up", "super", "superrule":
		return Up, true
	}
	return 0, false
}
