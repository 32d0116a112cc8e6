package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/store"
	"github.com/reviewlens/backend/pkg/logger"
)

type DatasetHandler struct {
	store *store.Store
}

func NewDatasetHandler(store *store.Store) *DatasetHandler {
	return &DatasetHandler{
		store: store,
	}
}

func (h *DatasetHandler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(h.store.Status())
}

func (h *DatasetHandler) Refresh(c *fiber.Ctx) error {
	snap, err := h.store.Refresh(c.Context())
	if err != nil {
		logger.Error("Failed to refresh snapshot", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Failed to rebuild dataset snapshot",
		})
	}

	return c.JSON(fiber.Map{
		"message":     "Snapshot rebuilt",
		"snapshot_id": snap.ID,
		"reviews":     len(snap.Reviews),
	})
}
