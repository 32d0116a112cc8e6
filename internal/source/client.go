package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/dataset"
	"github.com/reviewlens/backend/internal/metrics"
	"github.com/reviewlens/backend/pkg/circuitbreaker"
	"github.com/reviewlens/backend/pkg/config"
	"github.com/reviewlens/backend/pkg/logger"
	"github.com/reviewlens/backend/pkg/retry"
	"github.com/reviewlens/backend/pkg/utils"
)

var ErrUnavailable = errors.New("dataset source unavailable")

type BlobCache interface {
	GetRawDataset(ctx context.Context, urlHash string) ([]byte, bool, error)
	SetRawDataset(ctx context.Context, urlHash string, body []byte, ttl time.Duration) error
}

type Client struct {
	datasetURL  string
	datasetPage string
	maxBodySize int64
	httpClient  *http.Client
	breaker     *circuitbreaker.CircuitBreaker
	retryCfg    retry.Config
	cache       BlobCache
	cacheTTL    time.Duration
}

func NewClient(cfg config.SourceConfig, cache BlobCache, cacheTTL time.Duration) *Client {
	return &Client{
		datasetURL:  cfg.DatasetURL,
		datasetPage: cfg.DatasetPage,
		maxBodySize: cfg.MaxBodySize,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
		breaker: circuitbreaker.NewCircuitBreaker("dataset-source", circuitbreaker.Config{
			Logger: logger.Log,
		}),
		retryCfg: retry.Config{
			MaxAttempts: cfg.MaxAttempts,
			Logger:      logger.Log,
		},
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Fetch retrieves and parses the dataset CSV. The raw download is cached so a
// snapshot rebuild inside the cache window does not hit the network again.
func (c *Client) Fetch(ctx context.Context) (dataset.RawTable, error) {
	csvURL, err := c.resolveURL(ctx)
	if err != nil {
		return dataset.RawTable{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	body, err := c.download(ctx, csvURL)
	if err != nil {
		return dataset.RawTable{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	table, err := ParseCSV(body)
	if err != nil {
		return dataset.RawTable{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	logger.Info("Dataset fetched",
		zap.String("url", csvURL),
		zap.Int("rows", len(table.Rows)),
		zap.Int("columns", len(table.Columns)),
	)

	return table, nil
}

func (c *Client) resolveURL(ctx context.Context) (string, error) {
	if c.datasetURL != "" {
		return c.datasetURL, nil
	}
	if c.datasetPage == "" {
		return "", fmt.Errorf("no dataset URL or dataset page configured")
	}
	return c.resolveFromPage(ctx)
}

// resolveFromPage scrapes the dataset landing page for the first CSV link.
func (c *Client) resolveFromPage(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.datasetPage, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build page request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch dataset page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dataset page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse dataset page: %w", err)
	}

	var csvLink string
	doc.Find("a[href]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if strings.HasSuffix(strings.ToLower(strings.Split(href, "?")[0]), ".csv") {
			csvLink = href
			return false
		}
		return true
	})

	if csvLink == "" {
		return "", fmt.Errorf("no CSV link found on dataset page")
	}

	base, err := url.Parse(c.datasetPage)
	if err != nil {
		return "", fmt.Errorf("invalid dataset page URL: %w", err)
	}
	ref, err := url.Parse(csvLink)
	if err != nil {
		return "", fmt.Errorf("invalid CSV link: %w", err)
	}

	resolved := base.ResolveReference(ref).String()
	logger.Info("Resolved dataset CSV link", zap.String("url", resolved))
	return resolved, nil
}

func (c *Client) download(ctx context.Context, csvURL string) ([]byte, error) {
	urlHash := utils.HashString(csvURL)

	if c.cache != nil {
		body, found, err := c.cache.GetRawDataset(ctx, urlHash)
		if err != nil {
			logger.Warn("Raw dataset cache lookup failed", zap.Error(err))
		} else if found {
			metrics.SourceCacheHits.WithLabelValues("raw_dataset").Inc()
			return body, nil
		}
		metrics.SourceCacheMisses.WithLabelValues("raw_dataset").Inc()
	}

	body, err := retry.DoWithResult(ctx, c.retryCfg, func() ([]byte, error) {
		var data []byte
		err := c.breaker.Execute(ctx, func() error {
			var innerErr error
			data, innerErr = c.get(ctx, csvURL)
			return innerErr
		})
		return data, err
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.SetRawDataset(ctx, urlHash, body, c.cacheTTL); err != nil {
			logger.Warn("Failed to cache raw dataset", zap.Error(err))
		}
	}

	return body, nil
}

func (c *Client) get(ctx context.Context, csvURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, csvURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset download returned status %d", resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if c.maxBodySize > 0 {
		reader = io.LimitReader(resp.Body, c.maxBodySize)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset body: %w", err)
	}

	return body, nil
}
