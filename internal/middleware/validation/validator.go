package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var xssPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MaxParamLength int
	Logger         *zap.Logger
}

// Middleware bounds and sanitizes the filter query parameters before the
// handlers parse them.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxParamLength == 0 {
		cfg.MaxParamLength = 200
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if !strings.Contains(c.Path(), "/api/v1/reviews") {
			return c.Next()
		}

		for _, param := range []string{"app", "category", "min_rating", "max_rating", "from", "to"} {
			value := c.Query(param)
			if value == "" {
				continue
			}

			if len(value) > cfg.MaxParamLength {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Filter parameter exceeds maximum length",
				})
			}

			if strings.ContainsRune(value, '\x00') || xssPattern.MatchString(value) {
				cfg.Logger.Warn("Rejected filter parameter",
					zap.String("ip", c.IP()),
					zap.String("param", param),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid filter parameter content",
				})
			}
		}

		return c.Next()
	}
}
