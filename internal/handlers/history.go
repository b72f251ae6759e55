package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"mediumgate/pkg/db"
)

const defaultHistoryLimit = 50

// HistoryHandler serves the recorded detection history.
type HistoryHandler struct {
	db *db.DB
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(database *db.DB) *HistoryHandler {
	return &HistoryHandler{db: database}
}

// List returns the newest detections, newest first. ?limit= caps the
// page size.
func (h *HistoryHandler) List(c fiber.Ctx) error {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return jsonError(c, fiber.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	items, err := h.db.RecentDetections(limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch history")
	}

	return jsonSuccess(c, items)
}

// Stats returns aggregate counts over the whole history.
func (h *HistoryHandler) Stats(c fiber.Ctx) error {
	stats, err := h.db.HistoryStats()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch history stats")
	}

	return jsonSuccess(c, stats)
}
