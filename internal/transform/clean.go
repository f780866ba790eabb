package transform

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// CleanRating parses a star rating such as "⭐ 4.5 / 5". Anything that is not
// a string in exactly that shape with a value in [0, 5] yields nil.
func CleanRating(value interface{}) *float64 {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	if slices.Contains(unratedLiterals, s) {
		return nil
	}

	m := ratingPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil || f < minRating || f > maxRating {
		return nil
	}
	return &f
}

// ParsePrice turns a price cell into a number. Strings lose a leading "$" and
// thousands separators; anything unparsable yields nil.
func ParsePrice(value interface{}) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return finite(v)
	case int:
		f := float64(v)
		return &f
	}

	s := strings.TrimSpace(stringForm(value))
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

// ParseColors turns a colors cell into a count. Numbers are truncated to int;
// strings yield their first run of digits.
func ParseColors(value interface{}) *int {
	switch v := value.(type) {
	case nil:
		return nil
	case int:
		return &v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		n := int(v)
		return &n
	case string:
		run := digitRun.FindString(v)
		if run == "" {
			return nil
		}
		n, err := strconv.Atoi(run)
		if err != nil {
			return nil
		}
		return &n
	}
	return nil
}

// StripLabel removes a leading label matched by re from s.
func StripLabel(re *regexp.Regexp, s string) string {
	return re.ReplaceAllString(s, "")
}

// stringForm renders a cell as text; a missing value renders as "None".
func stringForm(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "None"
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
