package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"mediumgate/pkg/db"
)

// PrefsHandler reads and updates the persisted preferences.
type PrefsHandler struct {
	db *db.DB
}

// NewPrefsHandler creates a new preferences handler.
func NewPrefsHandler(database *db.DB) *PrefsHandler {
	return &PrefsHandler{db: database}
}

// Get returns the current preferences.
func (h *PrefsHandler) Get(c fiber.Ctx) error {
	prefs, err := h.db.LoadPreferences()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load preferences")
	}

	return jsonSuccess(c, prefs)
}

// Update applies a partial preferences update. Absent fields keep
// their stored values.
func (h *PrefsHandler) Update(c fiber.Ctx) error {
	var body struct {
		AutoRedirect *bool   `json:"auto_redirect"`
		Threshold    *int    `json:"threshold"`
		MirrorBase   *string `json:"mirror_base"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	prefs, err := h.db.LoadPreferences()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load preferences")
	}

	if body.AutoRedirect != nil {
		prefs.AutoRedirect = *body.AutoRedirect
	}
	if body.Threshold != nil {
		if *body.Threshold < 0 {
			return jsonError(c, fiber.StatusBadRequest, "threshold must not be negative")
		}
		prefs.Threshold = *body.Threshold
	}
	if body.MirrorBase != nil {
		prefs.MirrorBase = *body.MirrorBase
	}

	if err := h.db.SavePreferences(prefs); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to save preferences")
	}

	return jsonSuccess(c, prefs)
}
