package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"mediumgate/internal/common"
	"mediumgate/models"
	"mediumgate/pkg/classifier"
	"mediumgate/pkg/db"
)

// RedirectHandler sends Medium URLs to the mirror and everything else
// to its original destination.
type RedirectHandler struct {
	engine *classifier.Engine
	db     *db.DB
	cfg    *models.Config
}

// NewRedirectHandler creates a new redirect handler.
func NewRedirectHandler(engine *classifier.Engine, database *db.DB, cfg *models.Config) *RedirectHandler {
	return &RedirectHandler{engine: engine, db: database, cfg: cfg}
}

// Redirect classifies the ?url= target and 302s to the mirror when it
// is Medium-likely, to the original URL otherwise. With auto_redirect
// disabled the answer comes back as JSON instead. The classification
// outcome rides on X-Medium-Likely either way.
func (h *RedirectHandler) Redirect(c fiber.Ctx) error {
	rawURL := c.Query("url")
	if rawURL == "" {
		return jsonError(c, fiber.StatusBadRequest, "url query parameter is required")
	}
	if err := common.ValidateProbeURL(rawURL); err != nil {
		// Refuse to become an open redirector for arbitrary strings.
		return jsonError(c, fiber.StatusBadRequest, "url is not an absolute http(s) url")
	}

	prefs := db.DefaultPreferences()
	if h.db != nil {
		if loaded, err := h.db.LoadPreferences(); err == nil {
			prefs = loaded
		}
	}

	result := h.engine.Classify(c.Context(), models.DetectRequest{
		URL:       rawURL,
		Threshold: prefs.Threshold,
	})
	c.Set("X-Medium-Likely", strconv.FormatBool(result.IsMediumLikely))

	target := rawURL
	if result.IsMediumLikely {
		if prefs.MirrorBase != "" {
			target = classifier.ConvertToMirrorURL(prefs.MirrorBase, rawURL)
		} else {
			target = h.engine.MirrorURL(rawURL)
		}
	}

	if h.db != nil {
		row := detectionRow(rawURL, "", result)
		go func() { _, _ = h.db.RecordDetection(row) }()
	}

	if !prefs.AutoRedirect {
		return jsonSuccess(c, fiber.Map{
			"url":    rawURL,
			"target": target,
			"result": result,
		})
	}

	return c.Redirect().To(target)
}
