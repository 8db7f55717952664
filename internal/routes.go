// Package internal wires the application together: HTTP surface, database,
// and background jobs.
package internal

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	v1 "github.com/blakecrosley/941analytics/api/v1"
)

// MountRoutes registers the public collection endpoints and the analytics
// API on the fiber app.
func MountRoutes(app *fiber.App, db *gorm.DB, logger *slog.Logger) {
	handler := v1.NewHandler(db, logger)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Collection endpoints hit by the tracking snippet.
	api.Post("/collect", handler.Collect)
	api.Post("/beacon", handler.CollectBeacon)

	// Analytics API.
	api.Get("/sites", handler.ListSites)
	api.Post("/sites", handler.CreateSite)

	site := api.Group("/sites/:siteId")
	site.Get("/funnels", handler.ListFunnels)
	site.Post("/funnels", handler.CreateFunnel)
	site.Delete("/funnels/:funnelId", handler.DeleteFunnel)
	site.Get("/funnels/:funnelId/analysis", handler.AnalyzeFunnel)

	site.Get("/goals", handler.ListGoals)
	site.Post("/goals", handler.CreateGoal)
	site.Delete("/goals/:goalId", handler.DeleteGoal)
	site.Get("/goals/:goalId/analysis", handler.AnalyzeGoal)

	site.Get("/sources", handler.TrafficSources)
	site.Get("/bots", handler.BotTraffic)
}
