package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/reviewlens/backend/internal/dataset"
)

const unknownValue = "Unknown"

const (
	MinRating = 1.0
	MaxRating = 5.0
)

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
}

type CleanStats struct {
	SourceRows  int
	DroppedRows int
}

// Clean normalizes a raw table into typed reviews. Rows without review text
// are dropped first so the fill medians only reflect rows that survive.
func Clean(raw dataset.RawTable) ([]dataset.Review, CleanStats, error) {
	stats := CleanStats{SourceRows: len(raw.Rows)}

	if !raw.HasColumn(dataset.ColReviewText) {
		return nil, stats, fmt.Errorf("dataset is missing required column %q", dataset.ColReviewText)
	}

	kept := make([]dataset.Record, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		if _, ok := row.Value(dataset.ColReviewText); ok {
			kept = append(kept, row)
		}
	}
	stats.DroppedRows = stats.SourceRows - len(kept)

	ratingMedian := columnMedian(kept, dataset.ColRating)
	ageMedian := columnMedian(kept, dataset.ColUserAge)

	reviews := make([]dataset.Review, 0, len(kept))
	for _, row := range kept {
		text, _ := row.Value(dataset.ColReviewText)
		reviews = append(reviews, dataset.Review{
			AppName:         stringOr(row, dataset.ColAppName, ""),
			AppCategory:     stringOr(row, dataset.ColAppCategory, ""),
			ReviewText:      text,
			Rating:          clampRating(numericOr(row, dataset.ColRating, ratingMedian)),
			UserAge:         clampNonNegative(int(numericOr(row, dataset.ColUserAge, ageMedian))),
			UserCountry:     stringOr(row, dataset.ColUserCountry, unknownValue),
			UserGender:      stringOr(row, dataset.ColUserGender, unknownValue),
			AppVersion:      strings.TrimLeft(stringOr(row, dataset.ColAppVersion, unknownValue), "v"),
			NumHelpfulVotes: clampNonNegative(int(numericOr(row, dataset.ColNumHelpfulVotes, 0))),
			ReviewDate:      parseDate(row),
			ReviewLanguage:  stringOr(row, dataset.ColReviewLanguage, ""),
		})
	}

	return reviews, stats, nil
}

func stringOr(row dataset.Record, col, fallback string) string {
	if v, ok := row.Value(col); ok {
		return v
	}
	return fallback
}

func numericOr(row dataset.Record, col string, fallback float64) float64 {
	v, ok := row.Value(col)
	if !ok {
		return fallback
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return fallback
	}
	return f
}

func columnMedian(rows []dataset.Record, col string) float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		v, ok := row.Value(col)
		if !ok {
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			continue
		}
		values = append(values, f)
	}
	return median(values)
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func clampRating(r float64) float64 {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// parseDate returns the zero time as the unknown-date marker when the value
// is absent or matches no supported layout.
func parseDate(row dataset.Record) time.Time {
	v, ok := row.Value(dataset.ColReviewDate)
	if !ok {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
