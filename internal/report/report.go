package report

import (
	"sort"
	"time"

	"github.com/reviewlens/backend/internal/dataset"
	"github.com/reviewlens/backend/internal/pipeline"
)

const DefaultTopApps = 10

type Summary struct {
	TotalReviews int      `json:"total_reviews"`
	AvgRating    *float64 `json:"avg_rating"`
	UniqueApps   int      `json:"unique_apps"`
	Languages    int      `json:"languages"`
}

type HistogramBin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

type BucketCount struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

type AppCount struct {
	AppName string `json:"app_name"`
	Count   int    `json:"count"`
}

type GroupMean struct {
	Group     string  `json:"group"`
	AvgRating float64 `json:"avg_rating"`
	Count     int     `json:"count"`
}

type Insights struct {
	Applicable    bool    `json:"applicable"`
	AvgRating     float64 `json:"avg_rating,omitempty"`
	BestCategory  string  `json:"best_category,omitempty"`
	WorstCategory string  `json:"worst_category,omitempty"`
}

func Summarize(view []dataset.Review) Summary {
	s := Summary{TotalReviews: len(view)}
	if len(view) == 0 {
		return s
	}

	apps := make(map[string]bool)
	languages := make(map[string]bool)
	var sum float64
	for _, r := range view {
		sum += r.Rating
		apps[r.AppName] = true
		languages[r.ReviewLanguage] = true
	}

	avg := sum / float64(len(view))
	s.AvgRating = &avg
	s.UniqueApps = len(apps)
	s.Languages = len(languages)
	return s
}

func RatingHistogram(view []dataset.Review, bins int) []HistogramBin {
	if bins <= 0 {
		bins = 20
	}

	width := (pipeline.MaxRating - pipeline.MinRating) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i].Lo = pipeline.MinRating + float64(i)*width
		out[i].Hi = out[i].Lo + width
	}

	for _, r := range view {
		idx := int((r.Rating - pipeline.MinRating) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	return out
}

// RatingCategoryCounts is zero-filled so every bucket appears even when the
// view has no rows in it.
func RatingCategoryCounts(view []dataset.Review) []BucketCount {
	counts := make(map[string]int)
	for _, r := range view {
		counts[r.RatingCategory]++
	}

	out := make([]BucketCount, 0, len(pipeline.RatingCategories))
	for _, bucket := range pipeline.RatingCategories {
		out = append(out, BucketCount{Bucket: bucket, Count: counts[bucket]})
	}
	return out
}

// TopApps ranks apps by review count, ties broken by app name ascending for a
// reproducible order.
func TopApps(view []dataset.Review, limit int) []AppCount {
	if limit <= 0 {
		limit = DefaultTopApps
	}

	counts := make(map[string]int)
	for _, r := range view {
		counts[r.AppName]++
	}

	out := make([]AppCount, 0, len(counts))
	for app, count := range counts {
		out = append(out, AppCount{AppName: app, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].AppName < out[j].AppName
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func CategoryMeanRatings(view []dataset.Review) []GroupMean {
	return groupMeans(view, func(r dataset.Review) string { return r.AppCategory })
}

func AgeGroupMeanRatings(view []dataset.Review) []GroupMean {
	return groupMeans(view, func(r dataset.Review) string { return r.AgeGroup })
}

func groupMeans(view []dataset.Review, key func(dataset.Review) string) []GroupMean {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range view {
		k := key(r)
		sums[k] += r.Rating
		counts[k]++
	}

	out := make([]GroupMean, 0, len(sums))
	for k, count := range counts {
		out = append(out, GroupMean{Group: k, AvgRating: sums[k] / float64(count), Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgRating != out[j].AvgRating {
			return out[i].AvgRating < out[j].AvgRating
		}
		return out[i].Group < out[j].Group
	})
	return out
}

// ComputeInsights reports the best and worst category by mean rating. On an
// empty view it is marked not applicable instead of failing.
func ComputeInsights(view []dataset.Review) Insights {
	if len(view) == 0 {
		return Insights{Applicable: false}
	}

	summary := Summarize(view)
	means := CategoryMeanRatings(view)

	// groupMeans sorts ascending by mean, name-tiebroken, so the ends of the
	// slice are the argmin and argmax.
	return Insights{
		Applicable:    true,
		AvgRating:     *summary.AvgRating,
		BestCategory:  means[len(means)-1].Group,
		WorstCategory: means[0].Group,
	}
}

type FilterOptions struct {
	Apps       []string   `json:"apps"`
	Categories []string   `json:"categories"`
	MinDate    *time.Time `json:"min_date"`
	MaxDate    *time.Time `json:"max_date"`
}

// Options lists the distinct values the dashboard needs to render its filter
// controls. Rows with an unknown date do not contribute to the date bounds.
func Options(rows []dataset.Review) FilterOptions {
	apps := make(map[string]bool)
	categories := make(map[string]bool)
	var minDate, maxDate *time.Time

	for _, r := range rows {
		apps[r.AppName] = true
		categories[r.AppCategory] = true
		if !r.HasDate() {
			continue
		}
		d := r.ReviewDate
		if minDate == nil || d.Before(*minDate) {
			minDate = &d
		}
		if maxDate == nil || d.After(*maxDate) {
			maxDate = &d
		}
	}

	return FilterOptions{
		Apps:       sortedKeys(apps),
		Categories: sortedKeys(categories),
		MinDate:    minDate,
		MaxDate:    maxDate,
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
