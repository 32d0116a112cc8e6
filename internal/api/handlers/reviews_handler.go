package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/filter"
	"github.com/reviewlens/backend/internal/metrics"
	"github.com/reviewlens/backend/internal/report"
	"github.com/reviewlens/backend/internal/store"
	"github.com/reviewlens/backend/pkg/logger"
)

type ReviewsHandler struct {
	store         *store.Store
	topAppsLimit  int
	histogramBins int
}

func NewReviewsHandler(store *store.Store, topAppsLimit, histogramBins int) *ReviewsHandler {
	return &ReviewsHandler{
		store:         store,
		topAppsLimit:  topAppsLimit,
		histogramBins: histogramBins,
	}
}

func (h *ReviewsHandler) ListReviews(c *fiber.Ctx) error {
	crit, err := parseCriteria(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)
	if limit < 1 || limit > 1000 || offset < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be in [1, 1000] and offset must not be negative",
		})
	}

	snap, err := h.store.Current(c.Context())
	if err != nil {
		logger.Error("Failed to get snapshot", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Dataset is unavailable",
		})
	}

	view := filter.Apply(snap.Reviews, crit)
	metrics.FilterRequests.WithLabelValues("reviews").Inc()
	metrics.ViewSize.Observe(float64(len(view)))

	start, end := offset, offset+limit
	if start > len(view) {
		start = len(view)
	}
	if end > len(view) {
		end = len(view)
	}
	page := view[start:end]

	return c.JSON(fiber.Map{
		"snapshot_id":         snap.ID,
		"no_matching_reviews": len(view) == 0,
		"total":               len(view),
		"limit":               limit,
		"offset":              offset,
		"reviews":             page,
	})
}

func (h *ReviewsHandler) GetSummary(c *fiber.Ctx) error {
	crit, err := parseCriteria(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	snap, err := h.store.Current(c.Context())
	if err != nil {
		logger.Error("Failed to get snapshot", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Dataset is unavailable",
		})
	}

	view := filter.Apply(snap.Reviews, crit)
	metrics.FilterRequests.WithLabelValues("summary").Inc()
	metrics.ViewSize.Observe(float64(len(view)))

	return c.JSON(fiber.Map{
		"snapshot_id":         snap.ID,
		"no_matching_reviews": len(view) == 0,
		"summary":             report.Summarize(view),
	})
}

func (h *ReviewsHandler) GetAggregates(c *fiber.Ctx) error {
	crit, err := parseCriteria(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	snap, err := h.store.Current(c.Context())
	if err != nil {
		logger.Error("Failed to get snapshot", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Dataset is unavailable",
		})
	}

	view := filter.Apply(snap.Reviews, crit)
	metrics.FilterRequests.WithLabelValues("aggregates").Inc()
	metrics.ViewSize.Observe(float64(len(view)))

	return c.JSON(fiber.Map{
		"snapshot_id":         snap.ID,
		"no_matching_reviews": len(view) == 0,
		"summary":             report.Summarize(view),
		"rating_histogram":    report.RatingHistogram(view, h.histogramBins),
		"rating_categories":   report.RatingCategoryCounts(view),
		"top_apps":            report.TopApps(view, h.topAppsLimit),
		"category_ratings":    report.CategoryMeanRatings(view),
		"age_group_ratings":   report.AgeGroupMeanRatings(view),
		"insights":            report.ComputeInsights(view),
	})
}

func (h *ReviewsHandler) GetFilterOptions(c *fiber.Ctx) error {
	snap, err := h.store.Current(c.Context())
	if err != nil {
		logger.Error("Failed to get snapshot", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Dataset is unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"snapshot_id": snap.ID,
		"options":     report.Options(snap.Reviews),
	})
}
