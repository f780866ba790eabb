package parser

import (
	"strings"
)

// Label identifies which product field a descriptive fragment describes.
type Label string

const (
	LabelRating Label = "Rating"
	LabelColors Label = "Colors"
	LabelSize   Label = "Size"
	LabelGender Label = "Gender"
)

// descriptorRules are tried in order; the first rule that matches claims the
// fragment.
var descriptorRules = []struct {
	label Label
	match func(text string) (string, bool)
}{
	{LabelRating, prefixValue("Rating:")},
	{LabelColors, leadingToken("Colors")},
	{LabelSize, prefixValue("Size:")},
	{LabelGender, prefixValue("Gender:")},
}

// ParseDescriptor classifies one trimmed descriptive text fragment of a
// product card, such as "Size: M" or "3 Colors". ok is false when the
// fragment matches no rule.
func ParseDescriptor(text string) (label Label, value string, ok bool) {
	for _, rule := range descriptorRules {
		if v, matched := rule.match(text); matched {
			return rule.label, v, true
		}
	}
	return "", "", false
}

// prefixValue matches fragments starting with prefix; the value is the
// trimmed remainder.
func prefixValue(prefix string) func(string) (string, bool) {
	return func(text string) (string, bool) {
		rest, found := strings.CutPrefix(text, prefix)
		if !found {
			return "", false
		}
		return strings.TrimSpace(rest), true
	}
}

// leadingToken matches fragments containing marker anywhere; the value is the
// first whitespace-delimited token, usually a count.
func leadingToken(marker string) func(string) (string, bool) {
	return func(text string) (string, bool) {
		if !strings.Contains(text, marker) {
			return "", false
		}
		return strings.Fields(text)[0], true
	}
}
