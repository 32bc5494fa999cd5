// Package pack fits an ordered sequence of pre-rendered text blocks into a
// capacity-bounded display region. Blocks are never split: a suffix that does
// not fit is replaced by a synthesized overflow marker.
package pack

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
)

// ErrContentTooLarge is returned when not even the overflow marker fits on its
// own. It signals a capacity misconfiguration, not a transient failure.
var ErrContentTooLarge = errors.New("content does not fit within capacity")

// Budget bounds a packing run.
type Budget struct {
	// GroupCapacity is the limit for the region being filled, e.g. one field.
	GroupCapacity int

	// OverallCapacity is a limit shared with other regions. Zero means unbounded.
	OverallCapacity int

	// OverallUsed is how much of OverallCapacity other regions already consume.
	OverallUsed int
}

// fits reports whether a region of the given length respects both limits.
func (budget Budget) fits(length int) bool {
	if length > budget.GroupCapacity {
		return false
	}
	if budget.OverallCapacity > 0 && budget.OverallUsed+length > budget.OverallCapacity {
		return false
	}
	return true
}

// MarkerFunc renders the overflow marker for the given number of excluded
// blocks. nothingIncluded is true when the marker stands in for every block.
type MarkerFunc func(remaining int, nothingIncluded bool) string

// CountMarker returns a MarkerFunc that formats the remaining count with
// format, e.g. CountMarker("*(%d more)*").
func CountMarker(format string) MarkerFunc {
	return func(remaining int, nothingIncluded bool) string {
		return fmt.Sprintf(format, remaining)
	}
}

// Result is the outcome of a packing run.
type Result struct {
	// Included is the prefix of the input that fits.
	Included []string `json:"included"`

	// Marker stands in for the excluded suffix; empty when nothing was cut.
	Marker string `json:"marker,omitempty"`

	// Truncated reports whether any block was excluded.
	Truncated bool `json:"truncated"`

	// Total is the number of input blocks.
	Total int `json:"total"`
}

// Text joins the included blocks and the marker.
func (result Result) Text() string {
	return strings.Join(result.Included, "") + result.Marker
}

// Excluded returns how many input blocks were left out.
func (result Result) Excluded() int {
	return result.Total - len(result.Included)
}

// Length counts the characters a block occupies in a display region, in
// UTF-16 code units. Characters outside the Basic Multilingual Plane count
// twice.
func Length(text string) int {
	length := 0
	for _, r := range text {
		length += utf16.RuneLen(r)
	}
	return length
}

// Pack selects the longest prefix of blocks that fits the budget. On the
// first block that does not fit, a marker for the rest is synthesized; when
// the marker itself overflows, included blocks are dropped from the end and
// the marker regenerated to cover them. If the marker cannot fit even with
// nothing included, Pack returns ErrContentTooLarge.
func Pack(blocks []string, budget Budget, marker MarkerFunc) (Result, error) {
	result := Result{Total: len(blocks)}

	runningLength := 0
	for blockIndex, block := range blocks {
		blockLength := Length(block)
		if budget.fits(runningLength + blockLength) {
			runningLength += blockLength
			continue
		}

		included := blockIndex
		markerText := marker(len(blocks)-included, included == 0)
		for !budget.fits(runningLength + Length(markerText)) {
			if included == 0 {
				return Result{Total: len(blocks)}, fmt.Errorf("%w: %d blocks, group capacity %d",
					ErrContentTooLarge, len(blocks), budget.GroupCapacity)
			}
			included--
			runningLength -= Length(blocks[included])
			markerText = marker(len(blocks)-included, included == 0)
		}

		result.Included = append([]string(nil), blocks[:included]...)
		result.Marker = markerText
		result.Truncated = true
		return result, nil
	}

	result.Included = append([]string(nil), blocks...)
	return result, nil
}
