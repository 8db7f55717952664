package v1

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/blakecrosley/941analytics/internal/sites"
	"github.com/blakecrosley/941analytics/internal/visits"
)

const (
	msgVisitAdded     = "Visit recorded"
	errInvalidRequest = "Invalid request"
	errInvalidOrigin  = "Invalid origin"
)

// Handler bundles the dependencies every API endpoint needs.
type Handler struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{DB: db, Logger: logger}
}

// CollectParams is the tracking payload posted by the client snippet. A
// non-empty eventName makes this a custom event; otherwise it is a page view.
type CollectParams struct {
	URL       string    `json:"url"`
	Referrer  string    `json:"referrer"`
	Timestamp time.Time `json:"timestamp"`
	EventName string    `json:"eventName"`
	UserAgent string    `json:"userAgent"`
}

// Collect ingests one tracking request.
func (h *Handler) Collect(c *fiber.Ctx) error {
	var params CollectParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": errInvalidRequest})
	}

	if err := h.validateOrigin(c); err != nil {
		return err
	}

	if err := h.collect(c, &params); err != nil {
		return h.collectErrorResponse(c, err)
	}

	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"message": msgVisitAdded,
		"status":  http.StatusAccepted,
	})
}

// CollectBeacon ingests requests sent via navigator.sendBeacon. Beacons are
// fire-and-forget on the client, so every outcome is a 202: there is nobody
// left to read an error.
func (h *Handler) CollectBeacon(c *fiber.Ctx) error {
	var params CollectParams
	if err := json.Unmarshal(c.Body(), &params); err != nil {
		h.Logger.Debug("Failed to parse beacon payload", slog.Any("error", err))
		return c.SendStatus(http.StatusAccepted)
	}

	if err := h.validateOrigin(c); err != nil {
		h.Logger.Debug("Invalid origin in beacon request")
		return c.SendStatus(http.StatusAccepted)
	}

	if err := h.collect(c, &params); err != nil {
		h.Logger.Error("Failed to collect beacon visit", slog.Any("error", err))
	}
	return c.SendStatus(http.StatusAccepted)
}

func (h *Handler) collect(c *fiber.Ctx, params *CollectParams) error {
	userAgent := params.UserAgent
	if userAgent == "" {
		userAgent = requestUserAgent(c)
	}

	visitType := visits.VisitTypePageView
	if strings.TrimSpace(params.EventName) != "" {
		visitType = visits.VisitTypeCustomEvent
	}

	_, err := visits.Collect(h.DB, h.Logger, &visits.CollectInput{
		RawURL:      params.URL,
		ReferrerURL: params.Referrer,
		UserAgent:   userAgent,
		IPAddress:   getClientIP(c),
		VisitType:   visitType,
		EventName:   params.EventName,
		Timestamp:   params.Timestamp,
	})
	return err
}

func (h *Handler) collectErrorResponse(c *fiber.Ctx, err error) error {
	h.Logger.Error("Failed to collect visit", slog.Any("error", err))

	var notFound *sites.SiteNotFoundError
	if errors.As(err, &notFound) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Site not found - please register your domain first",
			"code":  "SITE_NOT_FOUND",
		})
	}

	if strings.Contains(err.Error(), "database is locked") || strings.Contains(err.Error(), "busy") {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Temporarily overloaded",
			"code":  "RETRY_LATER",
		})
	}

	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to collect visit",
		"code":  "COLLECTION_ERROR",
	})
}

// validateOrigin checks that the request comes from a registered site. The
// Origin header is browser-controlled and cannot be set by page JavaScript;
// Referer covers same-origin requests where Origin is absent.
func (h *Handler) validateOrigin(c *fiber.Ctx) error {
	origin := c.Get("Origin")
	if origin == "" {
		origin = c.Get("Referer")
	}
	if origin == "" {
		h.Logger.Debug("No Origin or Referer header present")
		return fiber.NewError(http.StatusForbidden, errInvalidOrigin)
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		h.Logger.Debug("Failed to parse origin", slog.String("origin", origin), slog.Any("error", err))
		return fiber.NewError(http.StatusForbidden, errInvalidOrigin)
	}

	if _, err := sites.GetByDomain(h.DB, parsed.Hostname()); err != nil {
		h.Logger.Debug("Origin domain not registered",
			slog.String("origin", origin),
			slog.String("hostname", parsed.Hostname()))
		return fiber.NewError(http.StatusForbidden, errInvalidOrigin)
	}

	return nil
}

func requestUserAgent(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-User-Agent"); forwarded != "" {
		return forwarded
	}
	return c.Get("User-Agent")
}
