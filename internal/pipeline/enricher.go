package pipeline

import (
	"strings"
	"unicode/utf8"

	"github.com/reviewlens/backend/internal/dataset"
)

const NoBucket = ""

var (
	RatingCategories = []string{"Very Poor", "Poor", "Average", "Good", "Excellent"}
	AgeGroups        = []string{"Teen", "Young Adult", "Adult", "Middle Age", "Senior"}
)

// Enrich derives the analysis columns from cleaned reviews. It returns a new
// slice and never mutates its input.
func Enrich(rows []dataset.Review) []dataset.Review {
	out := make([]dataset.Review, len(rows))
	for i, r := range rows {
		r.ReviewLength = utf8.RuneCountInString(r.ReviewText)
		r.ReviewWordCount = len(strings.Fields(r.ReviewText))
		if r.HasDate() {
			r.ReviewYear = r.ReviewDate.Year()
			r.ReviewMonth = int(r.ReviewDate.Month())
		} else {
			r.ReviewYear = 0
			r.ReviewMonth = 0
		}
		r.RatingCategory = RatingCategory(r.Rating)
		r.AgeGroup = AgeGroup(r.UserAge)
		out[i] = r
	}
	return out
}

// RatingCategory buckets a rating into five labels. The lowest bin is closed
// on both ends; out-of-range values get no bucket instead of an error.
func RatingCategory(rating float64) string {
	switch {
	case rating < 0 || rating > 5:
		return NoBucket
	case rating <= 1.9:
		return "Very Poor"
	case rating <= 2.9:
		return "Poor"
	case rating <= 3.9:
		return "Average"
	case rating <= 4.4:
		return "Good"
	default:
		return "Excellent"
	}
}

func AgeGroup(age int) string {
	switch {
	case age < 0 || age > 100:
		return NoBucket
	case age <= 17:
		return "Teen"
	case age <= 24:
		return "Young Adult"
	case age <= 34:
		return "Adult"
	case age <= 49:
		return "Middle Age"
	default:
		return "Senior"
	}
}
