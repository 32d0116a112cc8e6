package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/reviewlens/backend/internal/filter"
	"github.com/reviewlens/backend/internal/pipeline"
)

const dateLayout = "2006-01-02"

func parseCriteria(c *fiber.Ctx) (filter.Criteria, error) {
	crit := filter.DefaultCriteria()
	crit.AppName = c.Query("app")
	crit.Category = c.Query("category")

	if v := c.Query("min_rating"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return crit, fmt.Errorf("min_rating must be a number")
		}
		crit.MinRating = f
	}
	if v := c.Query("max_rating"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return crit, fmt.Errorf("max_rating must be a number")
		}
		crit.MaxRating = f
	}

	if crit.MinRating < pipeline.MinRating || crit.MaxRating > pipeline.MaxRating {
		return crit, fmt.Errorf("rating range must be within [%.1f, %.1f]", pipeline.MinRating, pipeline.MaxRating)
	}
	if crit.MinRating > crit.MaxRating {
		return crit, fmt.Errorf("min_rating must not exceed max_rating")
	}

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return crit, fmt.Errorf("from must be a date in %s format", dateLayout)
		}
		crit.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return crit, fmt.Errorf("to must be a date in %s format", dateLayout)
		}
		crit.To = &t
	}
	if crit.From != nil && crit.To != nil && crit.From.After(*crit.To) {
		return crit, fmt.Errorf("from must not be after to")
	}

	return crit, nil
}
