package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"mediumgate/models"
	"mediumgate/pkg/classifier"
	"mediumgate/pkg/db"
	"mediumgate/pkg/preview"
)

// DetectHandler answers classification queries over JSON.
type DetectHandler struct {
	engine *classifier.Engine
	probe  classifier.HeadFetcher
	db     *db.DB
	cfg    *models.Config
}

// NewDetectHandler creates a new detect handler. The probe is only used
// for preview extraction; classification runs through the engine.
func NewDetectHandler(engine *classifier.Engine, probe classifier.HeadFetcher, database *db.DB, cfg *models.Config) *DetectHandler {
	return &DetectHandler{engine: engine, probe: probe, db: database, cfg: cfg}
}

// Detect classifies the URL in the ?url= query parameter. Optional
// ?threshold= overrides the configured decision threshold for this
// request, and ?preview=1 attaches page metadata from a head fetch.
func (h *DetectHandler) Detect(c fiber.Ctx) error {
	rawURL := c.Query("url")
	if rawURL == "" {
		return jsonError(c, fiber.StatusBadRequest, "url query parameter is required")
	}

	req := models.DetectRequest{URL: rawURL}
	if raw := c.Query("threshold"); raw != "" {
		t, err := strconv.Atoi(raw)
		if err != nil || t <= 0 {
			return jsonError(c, fiber.StatusBadRequest, "threshold must be a positive integer")
		}
		req.Threshold = t
	}

	result := h.engine.Classify(c.Context(), req)

	payload := fiber.Map{
		"url":    rawURL,
		"result": result,
	}

	title := ""
	if c.Query("preview") == "1" || c.Query("preview") == "true" {
		if probe := h.probe.FetchHead(c.Context(), rawURL); probe.OK && probe.HeadHTML != "" {
			p := preview.Extract(probe.HeadHTML)
			payload["preview"] = p
			title = p.Title
		}
	}

	if h.db != nil && result.Source != models.SourceInvalid {
		row := detectionRow(rawURL, title, result)
		go func() { _, _ = h.db.RecordDetection(row) }()
	}

	return jsonSuccess(c, payload)
}

// detectionRow shapes a classification answer into a history row.
func detectionRow(rawURL, title string, result models.DetectionResult) db.Detection {
	host, _ := classifier.Hostname(rawURL)
	return db.Detection{
		Host:     host,
		URL:      rawURL,
		IsMedium: result.IsMediumLikely,
		Score:    result.Score,
		Reasons:  result.Reasons,
		Source:   result.Source,
		Title:    title,
	}
}
