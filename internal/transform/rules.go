package transform

import (
	"regexp"

	"github.com/maltedev/fashion-etl/internal/models"
)

// invalidValues lists literal cell values that disqualify a row. A nil entry
// matches a missing value.
var invalidValues = []struct {
	column string
	values []interface{}
}{
	{models.FieldTitle, []interface{}{"Unknown Product"}},
	{models.FieldRating, []interface{}{"Not Rated"}},
	{models.FieldPrice, []interface{}{"Price Unavailable", nil}},
}

// unratedLiterals are rating texts meaning the product has no rating.
var unratedLiterals = []string{"Not Rated", "No rating"}

var (
	ratingPattern = regexp.MustCompile(`^⭐\s*(\d+(\.\d+)?)\s*/\s*5$`)
	digitRun      = regexp.MustCompile(`\d+`)
	sizeLabel     = regexp.MustCompile(`^Size:\s*`)
	genderLabel   = regexp.MustCompile(`^Gender:\s*`)
)

const (
	minRating = 0.0
	maxRating = 5.0
)
