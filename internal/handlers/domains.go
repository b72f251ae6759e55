package handlers

import (
	"github.com/gofiber/fiber/v3"

	"mediumgate/pkg/classifier"
)

// DomainHandler answers allowlist-only questions, no cache or network.
type DomainHandler struct {
	engine *classifier.Engine
}

// NewDomainHandler creates a new domain handler.
func NewDomainHandler(engine *classifier.Engine) *DomainHandler {
	return &DomainHandler{engine: engine}
}

// Check reports whether the ?hostname= query parameter names a known
// Medium publication domain.
func (h *DomainHandler) Check(c fiber.Ctx) error {
	hostname := c.Query("hostname")
	if hostname == "" {
		return jsonError(c, fiber.StatusBadRequest, "hostname query parameter is required")
	}

	return jsonSuccess(c, fiber.Map{
		"hostname":         hostname,
		"is_medium_domain": h.engine.Matcher().IsDirectMediumDomain(hostname),
	})
}
