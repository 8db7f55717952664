package v1

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/blakecrosley/941analytics/internal/funnels"
	"github.com/blakecrosley/941analytics/internal/goals"
	"github.com/blakecrosley/941analytics/internal/referrers"
	"github.com/blakecrosley/941analytics/internal/sites"
	"github.com/blakecrosley/941analytics/internal/timeframe"
	"github.com/blakecrosley/941analytics/internal/visits"
)

const defaultRangeDays = 30

// CreateSite registers a new tracked site.
func (h *Handler) CreateSite(c *fiber.Ctx) error {
	var params struct {
		Domain string `json:"domain"`
		Name   string `json:"name"`
	}
	if err := c.BodyParser(&params); err != nil || params.Domain == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": errInvalidRequest})
	}

	site, err := sites.Create(h.DB, params.Domain, params.Name)
	if err != nil {
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	// New sites start with the standard funnels and goals.
	if err := funnels.EnsurePresets(h.DB, site.ID); err != nil {
		h.Logger.Warn("Failed to seed preset funnels", "error", err)
	}
	if err := goals.EnsurePresets(h.DB, site.ID); err != nil {
		h.Logger.Warn("Failed to seed preset goals", "error", err)
	}

	return c.Status(http.StatusCreated).JSON(site)
}

// ListSites returns every registered site.
func (h *Handler) ListSites(c *fiber.Ctx) error {
	all, err := sites.List(h.DB)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(all)
}

// ListFunnels returns a site's funnels with their decoded steps.
func (h *Handler) ListFunnels(c *fiber.Ctx) error {
	siteID, err := h.siteID(c)
	if err != nil {
		return err
	}

	all, err := funnels.List(h.DB, siteID)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	type funnelResponse struct {
		funnels.Funnel
		Steps []funnels.FunnelStep `json:"steps"`
	}

	response := make([]funnelResponse, 0, len(all))
	for _, funnel := range all {
		steps, err := funnel.Steps()
		if err != nil {
			h.Logger.Warn("Skipping funnel with undecodable steps",
				"funnel_id", funnel.ID, "error", err)
			continue
		}
		response = append(response, funnelResponse{Funnel: funnel, Steps: steps})
	}
	return c.JSON(response)
}

// CreateFunnel defines a new funnel for a site.
func (h *Handler) CreateFunnel(c *fiber.Ctx) error {
	siteID, err := h.siteID(c)
	if err != nil {
		return err
	}

	var params struct {
		Name        string               `json:"name"`
		Description string               `json:"description"`
		Steps       []funnels.FunnelStep `json:"steps"`
	}
	if err := c.BodyParser(&params); err != nil || params.Name == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": errInvalidRequest})
	}

	funnel, err := funnels.Create(h.DB, siteID, params.Name, params.Description, params.Steps)
	if err != nil {
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(http.StatusCreated).JSON(funnel)
}

// DeleteFunnel removes a user-defined funnel. Preset funnels are kept.
func (h *Handler) DeleteFunnel(c *fiber.Ctx) error {
	siteID, err := h.siteID(c)
	if err != nil {
		return err
	}
	funnelID, err := c.ParamsInt("funnelId")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": errInvalidRequest})
	}

	if err := funnels.Delete(h.DB, siteID, uint(funnelID)); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(http.StatusNoContent)
}

// AnalyzeFunnel runs the step-by-step conversion analysis for one funnel.
func (h *Handler) AnalyzeFunnel(c *fiber.Ctx) error {
	siteID, err := h.siteID(c)
	if err != nil {
		return err
	}
	funnelID, err := c.ParamsInt("funnelId")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": errInvalidRequest})
	}

	funnel, err := funnels.Get(h.DB, siteID, uint(funnelID))
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Funnel not found"})
	}

	result, err := funnels.Analyze(c.Context(), h.DB, funnel, h.dateRange(c))
	if err != nil {
		h.Logger.Error("Funnel analysis failed", "funnel_id", funnel.ID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Analysis failed"})
	}
	return c.JSON(result)
}

// ListGoals returns a site's goals; ?active=true filters to active ones.
func (h *Handler) ListGoals(c *fiber.Ctx) error {
	siteID, err := h.siteID(c)
	if err != nil {
		return err
	}

	activeOnly := c.Query("active") == "true"
	all, err := goals.List(h.DB, siteID, activeOnly)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(all)
}

// CreateGoal defines a new conversion goal for a site.
func (h *Handler) CreateGoal(c *fiber.Ctx) error {
	siteID, err := h.siteID(c)
	if err != nil {
		return err
	}

	var goal goals.Goal
	if err := c.BodyParser(&goal); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": errInvalidRequest})
	}
	goal.ID = 0
	goal.SiteID = siteID
	goal.IsActive = true

	if err := goals.Create(h.DB, &goal); err != nil {
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(http.StatusCreated).JSON(goal)
}

// DeleteGoal removes a goal.
func (h *Handler) DeleteGoal(c *fiber.Ctx) error {
	siteID, err := h.siteID(c)
	if err != nil {
		return err
	}
	goalID, err := c.ParamsInt("goalId")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": errInvalidRequest})
	}

	if err := goals.Delete(h.DB, siteID, uint(goalID)); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(http.StatusNoContent)
}

// AnalyzeGoal computes completions, conversion rate, and the daily trend for
// one goal.
func (h *Handler) AnalyzeGoal(c *fiber.Ctx) error {
	siteID, err := h.siteID(c)
	if err != nil {
		return err
	}
	goalID, err := c.ParamsInt("goalId")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": errInvalidRequest})
	}

	goal, err := goals.Get(h.DB, siteID, uint(goalID))
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Goal not found"})
	}

	result, err := goals.Analyze(c.Context(), h.DB, goal, h.dateRange(c))
	if err != nil {
		h.Logger.Error("Goal analysis failed", "goal_id", goal.ID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Analysis failed"})
	}
	return c.JSON(result)
}

// SourceBreakdownItem is one row of the traffic source report.
type SourceBreakdownItem struct {
	Type     string `json:"type"`
	Source   string `json:"source"`
	Visitors int    `json:"visitors"`
}

// TrafficSources reports where a site's human visitors came from.
func (h *Handler) TrafficSources(c *fiber.Ctx) error {
	siteID, err := h.siteID(c)
	if err != nil {
		return err
	}

	stats, err := visits.SourceBreakdown(c.Context(), h.DB, siteID, h.dateRange(c))
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	caser := cases.Title(language.AmericanEnglish)
	response := make([]SourceBreakdownItem, len(stats))
	for i, stat := range stats {
		source := stat.SourceName
		if source == "" {
			source = caser.String(stat.ReferrerType)
		} else {
			source = referrers.FriendlyName(source)
		}
		response[i] = SourceBreakdownItem{
			Type:     stat.ReferrerType,
			Source:   source,
			Visitors: stat.Visitors,
		}
	}
	return c.JSON(response)
}

// BotTraffic reports detected bot traffic grouped by category and bot name.
func (h *Handler) BotTraffic(c *fiber.Ctx) error {
	siteID, err := h.siteID(c)
	if err != nil {
		return err
	}

	stats, err := visits.BotBreakdown(c.Context(), h.DB, siteID, h.dateRange(c))
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stats)
}

// siteID resolves and validates the :siteId route parameter.
func (h *Handler) siteID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("siteId")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(http.StatusBadRequest, errInvalidRequest)
	}
	if _, err := sites.GetByID(h.DB, uint(id)); err != nil {
		return 0, fiber.NewError(http.StatusNotFound, "Site not found")
	}
	return uint(id), nil
}

// dateRange reads the ?days query parameter, defaulting to the last 30 days.
func (h *Handler) dateRange(c *fiber.Ctx) timeframe.DateRange {
	days, err := strconv.Atoi(c.Query("days", strconv.Itoa(defaultRangeDays)))
	if err != nil || days <= 0 || days > 365 {
		days = defaultRangeDays
	}
	return timeframe.LastNDays(days)
}
