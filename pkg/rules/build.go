package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrMalformedDocument is returned when a document lacks the section markers
// or content an index needs.
var ErrMalformedDocument = errors.New("malformed rules document")

// MalformedDocumentError names what was missing from the document.
type MalformedDocumentError struct {
	Marker string
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	if e.Marker != "" {
		return fmt.Sprintf("malformed rules document: %s (marker %q)", e.Reason, e.Marker)
	}
	return fmt.Sprintf("malformed rules document: %s", e.Reason)
}

func (e *MalformedDocumentError) Unwrap() error {
	return ErrMalformedDocument
}

const (
	// rulesStartMarker ends the table of contents; the rules follow it.
	rulesStartMarker = "Credits"
	// glossaryMarker is the heading line between rules and glossary.
	glossaryMarker = "\nGlossary\n"
	// glossaryEndMarker opens the closing credits.
	glossaryEndMarker = "\nCredits"
)

const (
	paragraphSeparator   = "\n\n"
	windowsLineSeparator = "\r\n"
)

var (
	blankLinePattern  = regexp.MustCompile(`(?m)^[ \t]+$`)
	newlineRunPattern = regexp.MustCompile(`\n{3,}`)
)

// Build parses a rules document into an Index. The document has a preamble
// and table of contents ending in "Credits", the numbered rules, a
// "Glossary" heading with the term definitions, and closing credits.
// Build never modifies an existing index: on error the caller keeps
// whatever it had.
func Build(document, version string, builtAt time.Time) (*Index, error) {
	rulesSection, glossarySection, err := splitSections(document)
	if err != nil {
		return nil, err
	}

	index := &Index{
		rules:         make(map[string]*Rule),
		glossary:      make(map[string]*GlossaryEntry),
		SourceVersion: version,
		BuiltAt:       builtAt,
	}

	for _, unit := range splitParagraphs(rulesSection) {
		number, text := unit, ""
		if spaceIndex := strings.Index(unit, " "); spaceIndex >= 0 {
			number, text = unit[:spaceIndex], unit[spaceIndex+1:]
		}
		key := NormalizeNumber(number)
		if _, exists := index.rules[key]; !exists {
			index.ruleOrder = append(index.ruleOrder, key)
		}
		index.rules[key] = &Rule{Number: number, Text: text}
	}

	for _, unit := range splitParagraphs(glossarySection) {
		term, text := unit, ""
		if newlineIndex := strings.Index(unit, "\n"); newlineIndex >= 0 {
			term, text = unit[:newlineIndex], unit[newlineIndex+1:]
		}
		key := NormalizeTerm(term)
		if _, exists := index.glossary[key]; !exists {
			index.glossaryOrder = append(index.glossaryOrder, key)
		}
		index.glossary[key] = &GlossaryEntry{Term: term, Text: text}
	}

	if len(index.rules) == 0 {
		return nil, &MalformedDocumentError{Reason: "rules section is empty"}
	}
	if len(index.glossary) == 0 {
		return nil, &MalformedDocumentError{Reason: "glossary section is empty"}
	}

	return index, nil
}

// splitSections locates the rules and glossary sections by their markers.
func splitSections(document string) (string, string, error) {
	text := strings.ReplaceAll(document, windowsLineSeparator, "\n")

	creditsIndex := strings.Index(text, rulesStartMarker)
	if creditsIndex < 0 {
		return "", "", &MalformedDocumentError{Marker: rulesStartMarker, Reason: "table of contents end not found"}
	}
	rulesStart := creditsIndex + len(rulesStartMarker)

	glossaryOffset := strings.Index(text[rulesStart:], glossaryMarker)
	if glossaryOffset < 0 {
		return "", "", &MalformedDocumentError{Marker: "Glossary", Reason: "glossary heading not found"}
	}
	rulesEnd := rulesStart + glossaryOffset
	glossaryStart := rulesEnd + len(glossaryMarker)

	endOffset := strings.Index(text[glossaryStart:], glossaryEndMarker)
	if endOffset < 0 {
		return "", "", &MalformedDocumentError{Marker: rulesStartMarker, Reason: "closing credits not found"}
	}
	glossaryEnd := glossaryStart + endOffset

	return text[rulesStart:rulesEnd], text[glossaryStart:glossaryEnd], nil
}

// splitParagraphs cleans stray whitespace-only lines, collapses blank-line
// runs and splits on the remaining paragraph breaks.
func splitParagraphs(section string) []string {
	cleaned := blankLinePattern.ReplaceAllString(section, "")
	cleaned = newlineRunPattern.ReplaceAllString(cleaned, paragraphSeparator)
	cleaned = strings.Trim(cleaned, "\n")
	if cleaned == "" {
		return nil
	}

	units := strings.Split(cleaned, paragraphSeparator)
	paragraphs := make([]string, 0, len(units))
	for _, unit := range units {
		unit = strings.TrimRight(unit, " \t\n")
		if unit != "" {
			paragraphs = append(paragraphs, unit)
		}
	}
	return paragraphs
}
