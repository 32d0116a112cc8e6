package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlens/backend/internal/dataset"
	"github.com/reviewlens/backend/internal/pipeline"
	"github.com/reviewlens/backend/internal/store"
	"github.com/reviewlens/backend/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeBuilder struct {
	err error
}

func (f *fakeBuilder) Build(ctx context.Context) (*dataset.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dataset.Snapshot{
		ID:      "snap-1",
		BuiltAt: time.Now(),
		Reviews: pipeline.Enrich([]dataset.Review{
			{AppName: "ChatApp", AppCategory: "Social", ReviewText: "nice", ReviewLanguage: "en", Rating: 4.5, UserAge: 20},
			{AppName: "MapMate", AppCategory: "Travel", ReviewText: "meh", ReviewLanguage: "de", Rating: 2.0, UserAge: 35},
		}),
	}, nil
}

func newTestApp(builderErr error) *fiber.App {
	snapshotStore := store.New(&fakeBuilder{err: builderErr}, time.Hour)

	reviewsHandler := NewReviewsHandler(snapshotStore, 10, 20)
	datasetHandler := NewDatasetHandler(snapshotStore)

	app := fiber.New()
	app.Get("/api/v1/reviews", reviewsHandler.ListReviews)
	app.Get("/api/v1/reviews/summary", reviewsHandler.GetSummary)
	app.Get("/api/v1/reviews/aggregates", reviewsHandler.GetAggregates)
	app.Get("/api/v1/reviews/filters", reviewsHandler.GetFilterOptions)
	app.Get("/api/v1/dataset", datasetHandler.GetStatus)
	app.Post("/api/v1/dataset/refresh", datasetHandler.Refresh)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target string) (*http.Response, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestListReviews(t *testing.T) {
	app := newTestApp(nil)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/reviews?limit=1&offset=1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, float64(2), body["total"])
	reviews := body["reviews"].([]interface{})
	require.Len(t, reviews, 1)
	first := reviews[0].(map[string]interface{})
	assert.Equal(t, "MapMate", first["app_name"])
}

func TestListReviewsBadPagination(t *testing.T) {
	app := newTestApp(nil)

	resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/reviews?limit=0")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSummary(t *testing.T) {
	app := newTestApp(nil)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/reviews/summary")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "snap-1", body["snapshot_id"])
	assert.Equal(t, false, body["no_matching_reviews"])

	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, float64(2), summary["total_reviews"])
	assert.InDelta(t, 3.25, summary["avg_rating"].(float64), 1e-9)
}

func TestGetSummaryFiltered(t *testing.T) {
	app := newTestApp(nil)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/reviews/summary?app=ChatApp&min_rating=4.0")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, float64(1), summary["total_reviews"])
}

func TestGetSummaryEmptyView(t *testing.T) {
	app := newTestApp(nil)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/reviews/summary?app=NoSuchApp")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, true, body["no_matching_reviews"])
	summary := body["summary"].(map[string]interface{})
	assert.Nil(t, summary["avg_rating"])
}

func TestGetSummaryBadCriteria(t *testing.T) {
	app := newTestApp(nil)

	tests := []string{
		"/api/v1/reviews/summary?min_rating=abc",
		"/api/v1/reviews/summary?min_rating=4.0&max_rating=2.0",
		"/api/v1/reviews/summary?min_rating=0.5",
		"/api/v1/reviews/summary?from=15-07-2024",
		"/api/v1/reviews/summary?from=2025-02-01&to=2025-01-01",
	}

	for _, target := range tests {
		resp, body := doRequest(t, app, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
		assert.NotEmpty(t, body["error"], target)
	}
}

func TestGetSummarySourceUnavailable(t *testing.T) {
	app := newTestApp(errors.New("connection refused"))

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/reviews/summary")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Dataset is unavailable", body["error"])
}

func TestGetAggregates(t *testing.T) {
	app := newTestApp(nil)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/reviews/aggregates")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Len(t, body["rating_histogram"], 20)
	assert.Len(t, body["rating_categories"], 5)
	assert.Len(t, body["top_apps"], 2)

	insights := body["insights"].(map[string]interface{})
	assert.Equal(t, true, insights["applicable"])
	assert.Equal(t, "Social", insights["best_category"])
	assert.Equal(t, "Travel", insights["worst_category"])
}

func TestGetFilterOptions(t *testing.T) {
	app := newTestApp(nil)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/reviews/filters")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	options := body["options"].(map[string]interface{})
	assert.Equal(t, []interface{}{"ChatApp", "MapMate"}, options["apps"])
	assert.Equal(t, []interface{}{"Social", "Travel"}, options["categories"])
}

func TestDatasetStatusAndRefresh(t *testing.T) {
	app := newTestApp(nil)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/dataset")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["stale"])

	resp, body = doRequest(t, app, http.MethodPost, "/api/v1/dataset/refresh")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "snap-1", body["snapshot_id"])

	resp, body = doRequest(t, app, http.MethodGet, "/api/v1/dataset")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["stale"])
}

func TestRefreshSourceUnavailable(t *testing.T) {
	app := newTestApp(errors.New("connection refused"))

	resp, body := doRequest(t, app, http.MethodPost, "/api/v1/dataset/refresh")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Failed to rebuild dataset snapshot", body["error"])
}
