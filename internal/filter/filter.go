package filter

import (
	"time"

	"github.com/reviewlens/backend/internal/dataset"
)

const All = "All"

// Criteria describes one filter selection. An empty or "All" string field and
// a nil date bound contribute no restriction; all active constraints combine
// with logical AND.
type Criteria struct {
	AppName   string
	Category  string
	MinRating float64
	MaxRating float64
	From      *time.Time
	To        *time.Time
}

func DefaultCriteria() Criteria {
	return Criteria{MinRating: 1.0, MaxRating: 5.0}
}

func (c Criteria) appActive() bool {
	return c.AppName != "" && c.AppName != All
}

func (c Criteria) categoryActive() bool {
	return c.Category != "" && c.Category != All
}

func (c Criteria) dateActive() bool {
	return c.From != nil || c.To != nil
}

func (c Criteria) Matches(r dataset.Review) bool {
	if c.appActive() && r.AppName != c.AppName {
		return false
	}
	if c.categoryActive() && r.AppCategory != c.Category {
		return false
	}
	if r.Rating < c.MinRating || r.Rating > c.MaxRating {
		return false
	}
	if c.dateActive() {
		if !r.HasDate() {
			return false
		}
		day := truncateToDay(r.ReviewDate)
		if c.From != nil && day.Before(truncateToDay(*c.From)) {
			return false
		}
		if c.To != nil && day.After(truncateToDay(*c.To)) {
			return false
		}
	}
	return true
}

// Apply returns the matching rows as a fresh slice. An empty result is a
// valid view, not an error.
func Apply(rows []dataset.Review, c Criteria) []dataset.Review {
	view := make([]dataset.Review, 0, len(rows))
	for _, r := range rows {
		if c.Matches(r) {
			view = append(view, r)
		}
	}
	return view
}

// Date bounds compare at calendar-day granularity, both ends inclusive.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
