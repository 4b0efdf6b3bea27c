package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/tirs/quota/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Insights       InsightsService
	MetricsHandler nethttp.Handler // nil = sin /metrics
	ServiceName    string
	Logger         *logger.Logger
}

// Router registra las rutas de la API. Todas son de solo lectura.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")
	h := NewInsightsHandler(deps.Insights, deps.Logger)

	ins := api.Group("/insights")
	ins.Get("/quick", h.GetQuick)
	ins.Get("/intelligence", h.GetIntelligence)
	ins.Get("/deals", h.GetDeals)
	ins.Get("/win-rate", h.GetWinRate)
	ins.Get("/trend", h.GetTrend)
	ins.Get("/churn", h.ListChurn)
	ins.Get("/health", h.ListHealth)
	ins.Get("/segments", h.GetSegments)
	ins.Get("/anomalies", h.GetAnomalies)
	ins.Get("/forecast", h.GetForecast)
	ins.Get("/lifetime-value", h.ListLifetimeValues)
	ins.Get("/alerts", h.GetAlerts)

	customers := api.Group("/customers")
	customers.Get("/:id/churn", h.GetCustomerChurn)
	customers.Get("/:id/health", h.GetCustomerHealth)
	customers.Get("/:id/recommendations", h.GetRecommendations)
	customers.Get("/:id/lifetime-value", h.GetCustomerLifetimeValue)
}
