package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlens/backend/internal/dataset"
	"github.com/reviewlens/backend/internal/pipeline"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func sampleRows() []dataset.Review {
	return pipeline.Enrich([]dataset.Review{
		{AppName: "ChatApp", AppCategory: "Social", ReviewText: "a", Rating: 4.4, ReviewDate: date(2025, 1, 10)},
		{AppName: "ChatApp", AppCategory: "Social", ReviewText: "b", Rating: 2.0, ReviewDate: date(2025, 2, 20)},
		{AppName: "MapMate", AppCategory: "Travel", ReviewText: "c", Rating: 4.8, ReviewDate: date(2025, 3, 5)},
		{AppName: "FitTrack", AppCategory: "Health", ReviewText: "d", Rating: 3.5},
	})
}

func TestDefaultCriteriaReturnsEverything(t *testing.T) {
	rows := sampleRows()

	view := Apply(rows, DefaultCriteria())

	assert.Equal(t, rows, view)
}

func TestFilterByAppAndCategory(t *testing.T) {
	rows := sampleRows()

	view := Apply(rows, Criteria{AppName: "ChatApp", MinRating: 1, MaxRating: 5})
	assert.Len(t, view, 2)

	view = Apply(rows, Criteria{Category: "Travel", MinRating: 1, MaxRating: 5})
	require.Len(t, view, 1)
	assert.Equal(t, "MapMate", view[0].AppName)

	view = Apply(rows, Criteria{AppName: All, Category: All, MinRating: 1, MaxRating: 5})
	assert.Len(t, view, 4)
}

func TestRatingRangeInclusiveAtBucketBoundary(t *testing.T) {
	rows := sampleRows()

	crit := DefaultCriteria()
	crit.MinRating = 4.4

	view := Apply(rows, crit)
	require.Len(t, view, 2)

	// The 4.4 row sits in the "Good" bucket yet is included by the inclusive
	// range bound.
	for _, r := range view {
		assert.Contains(t, []string{"Good", "Excellent"}, r.RatingCategory)
	}
	assert.Equal(t, "Good", view[0].RatingCategory)
	assert.Equal(t, 4.4, view[0].Rating)
}

func TestDateRangeExcludesUnknownDates(t *testing.T) {
	rows := sampleRows()

	crit := DefaultCriteria()
	crit.From = datePtr(2020, 1, 1)
	crit.To = datePtr(2030, 1, 1)

	view := Apply(rows, crit)
	require.Len(t, view, 3)
	for _, r := range view {
		assert.True(t, r.HasDate())
	}
}

func TestDateRangeInclusiveBounds(t *testing.T) {
	rows := sampleRows()

	crit := DefaultCriteria()
	crit.From = datePtr(2025, 1, 10)
	crit.To = datePtr(2025, 2, 20)

	view := Apply(rows, crit)
	require.Len(t, view, 2)
	assert.Equal(t, "a", view[0].ReviewText)
	assert.Equal(t, "b", view[1].ReviewText)
}

func TestOpenEndedDateRange(t *testing.T) {
	rows := sampleRows()

	crit := DefaultCriteria()
	crit.From = datePtr(2025, 2, 1)

	view := Apply(rows, crit)
	require.Len(t, view, 2)
	assert.Equal(t, "b", view[0].ReviewText)
	assert.Equal(t, "c", view[1].ReviewText)
}

func TestFilterComposition(t *testing.T) {
	rows := sampleRows()

	c1 := DefaultCriteria()
	c1.Category = "Social"

	c2 := DefaultCriteria()
	c2.MinRating = 4.0

	combined := DefaultCriteria()
	combined.Category = "Social"
	combined.MinRating = 4.0

	assert.Equal(t, Apply(rows, combined), Apply(Apply(rows, c1), c2))
}

func TestEmptyViewIsNotAnError(t *testing.T) {
	rows := sampleRows()

	view := Apply(rows, Criteria{AppName: "NoSuchApp", MinRating: 1, MaxRating: 5})

	assert.NotNil(t, view)
	assert.Empty(t, view)
}

func TestApplyDoesNotAliasInput(t *testing.T) {
	rows := sampleRows()

	view := Apply(rows, DefaultCriteria())
	view[0].AppName = "Mutated"

	assert.Equal(t, "ChatApp", rows[0].AppName)
}
