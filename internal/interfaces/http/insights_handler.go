package http

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tirs/quota/internal/application/dto"
	"github.com/tirs/quota/internal/domain/insights"
	"github.com/tirs/quota/pkg/logger"
)

// InsightsService operaciones de análisis que expone la API.
type InsightsService interface {
	Policy() insights.Policy
	GetQuickInsights(ctx context.Context) (*dto.QuickInsightsDTO, error)
	GetSalesIntelligence(ctx context.Context) (*insights.SalesIntelligence, error)
	GetDealMetrics(ctx context.Context, req dto.DealFilterRequest) (*insights.DealMetrics, error)
	GetWinMetrics(ctx context.Context) (*insights.WinMetrics, error)
	GetTrend(ctx context.Context) (*insights.TrendResult, error)
	ListChurnRisks(ctx context.Context, minRisk int) (*dto.ChurnListDTO, error)
	ListHealthScores(ctx context.Context) (*dto.HealthListDTO, error)
	GetSegments(ctx context.Context) (*dto.SegmentsDTO, error)
	FindAnomalies(ctx context.Context) (*insights.AnomalyReport, error)
	Forecast(ctx context.Context, req dto.ForecastRequest) (*insights.ForecastResult, error)
	PredictChurn(ctx context.Context, customerID string) (*insights.ChurnResult, error)
	HealthScore(ctx context.Context, customerID string) (*insights.HealthResult, error)
	Recommend(ctx context.Context, customerID string, n int) (*dto.RecommendationsDTO, error)
	CustomerLifetimeValue(ctx context.Context, customerID string) (*insights.LifetimeValue, error)
	ListLifetimeValues(ctx context.Context) (*dto.LifetimeListDTO, error)
	GetAlerts(ctx context.Context) (*dto.AlertsDTO, error)
}

// InsightsHandler maneja los endpoints de inteligencia de clientes.
type InsightsHandler struct {
	svc InsightsService
	log *logger.Logger
}

// NewInsightsHandler construye el handler. log puede ser nil.
func NewInsightsHandler(svc InsightsService, log *logger.Logger) *InsightsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &InsightsHandler{svc: svc, log: log.Component("http")}
}

// fail registra los errores no esperados y responde con writeError.
func (h *InsightsHandler) fail(c *fiber.Ctx, err error) error {
	if !isClientError(err) {
		h.log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("petición de análisis fallida")
	}
	return writeError(c, err)
}

// GetQuick godoc
// @Summary      Tablero rápido de inteligencia de ventas
// @Description  Tendencia, riesgos altos de abandono, métricas de negocio, pronóstico a 30 días,
//               segmentos y anomalías. Las secciones que no se pudieron calcular se listan en
//               "unavailable" con su valor neutro; la respuesta sigue siendo 200.
// @Tags         insights
// @Produce      json
// @Success      200  {object}  dto.QuickInsightsDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/insights/quick [get]
func (h *InsightsHandler) GetQuick(c *fiber.Ctx) error {
	out, err := h.svc.GetQuickInsights(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetIntelligence godoc
// @Summary      Resumen comercial: totales, clientes principales y pronóstico
// @Tags         insights
// @Produce      json
// @Success      200  {object}  insights.SalesIntelligence
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/insights/intelligence [get]
func (h *InsightsHandler) GetIntelligence(c *fiber.Ctx) error {
	out, err := h.svc.GetSalesIntelligence(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetDeals godoc
// @Summary      Estadísticas de montos de cotizaciones con ingreso
// @Tags         insights
// @Produce      json
// @Param        status       query  string  false  "draft | sent | accepted | rejected"
// @Param        customer_id  query  string  false  "ID del cliente"
// @Param        since        query  string  false  "Desde (YYYY-MM-DD)"
// @Success      200  {object}  insights.DealMetrics
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/insights/deals [get]
func (h *InsightsHandler) GetDeals(c *fiber.Ctx) error {
	var req dto.DealFilterRequest
	if err := c.QueryParser(&req); err != nil {
		return invalidParams(c, "parámetros de consulta inválidos")
	}
	out, err := h.svc.GetDealMetrics(c.Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetWinRate GET /api/insights/win-rate
func (h *InsightsHandler) GetWinRate(c *fiber.Ctx) error {
	out, err := h.svc.GetWinMetrics(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetTrend GET /api/insights/trend
func (h *InsightsHandler) GetTrend(c *fiber.Ctx) error {
	out, err := h.svc.GetTrend(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// ListChurn godoc
// @Summary      Clientes con riesgo de abandono mayor que min_risk
// @Tags         insights
// @Produce      json
// @Param        min_risk  query  int  false  "0-100. Default: umbral de riesgo alto (70)."
// @Success      200  {object}  dto.ChurnListDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/insights/churn [get]
func (h *InsightsHandler) ListChurn(c *fiber.Ctx) error {
	minRisk, err := queryInt(c, "min_risk", h.svc.Policy().Churn.HighRiskThreshold)
	if err != nil {
		return invalidParams(c, "min_risk debe ser un entero")
	}
	out, err := h.svc.ListChurnRisks(c.Context(), minRisk)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// ListHealth GET /api/insights/health
func (h *InsightsHandler) ListHealth(c *fiber.Ctx) error {
	out, err := h.svc.ListHealthScores(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetSegments GET /api/insights/segments
func (h *InsightsHandler) GetSegments(c *fiber.Ctx) error {
	out, err := h.svc.GetSegments(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetAnomalies GET /api/insights/anomalies
func (h *InsightsHandler) GetAnomalies(c *fiber.Ctx) error {
	out, err := h.svc.FindAnomalies(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetForecast godoc
// @Summary      Proyección de ingresos
// @Tags         insights
// @Produce      json
// @Param        days      query  int     false  "Horizonte en días (default 30, máx. 365)"
// @Param        strategy  query  string  false  "linear | trend"
// @Success      200  {object}  insights.ForecastResult
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/insights/forecast [get]
func (h *InsightsHandler) GetForecast(c *fiber.Ctx) error {
	days, err := queryInt(c, "days", 0)
	if err != nil {
		return invalidParams(c, "days debe ser un entero")
	}
	req := dto.ForecastRequest{Days: days, Strategy: c.Query("strategy")}
	out, err := h.svc.Forecast(c.Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetCustomerChurn GET /api/customers/:id/churn
func (h *InsightsHandler) GetCustomerChurn(c *fiber.Ctx) error {
	out, err := h.svc.PredictChurn(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetCustomerHealth GET /api/customers/:id/health
func (h *InsightsHandler) GetCustomerHealth(c *fiber.Ctx) error {
	out, err := h.svc.HealthScore(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// ListLifetimeValues GET /api/insights/lifetime-value
func (h *InsightsHandler) ListLifetimeValues(c *fiber.Ctx) error {
	out, err := h.svc.ListLifetimeValues(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetCustomerLifetimeValue godoc
// @Summary      Valor de vida del cliente (CLV)
// @Description  Ingreso elegible histórico más la proyección a tres años al ritmo trimestral observado.
// @Tags         customers
// @Produce      json
// @Param        id  path  string  true  "ID del cliente"
// @Success      200  {object}  insights.LifetimeValue
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/customers/{id}/lifetime-value [get]
func (h *InsightsHandler) GetCustomerLifetimeValue(c *fiber.Ctx) error {
	out, err := h.svc.CustomerLifetimeValue(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetAlerts godoc
// @Summary      Condiciones de alerta vigentes
// @Description  Cotizaciones de alto valor recientes, caída de ingresos vs el mes anterior y clientes inactivos.
// @Tags         insights
// @Produce      json
// @Success      200  {object}  dto.AlertsDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/insights/alerts [get]
func (h *InsightsHandler) GetAlerts(c *fiber.Ctx) error {
	out, err := h.svc.GetAlerts(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetRecommendations godoc
// @Summary      Productos recomendados para un cliente (filtrado colaborativo)
// @Description  Excluye los productos que el cliente ya cotizó. n=0 o ausente usa el valor por defecto.
// @Tags         customers
// @Produce      json
// @Param        id  path   string  true   "ID del cliente"
// @Param        n   query  int     false  "Cantidad máxima (default 5, máx. 50)"
// @Success      200  {object}  dto.RecommendationsDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/customers/{id}/recommendations [get]
func (h *InsightsHandler) GetRecommendations(c *fiber.Ctx) error {
	n, err := queryInt(c, "n", 0)
	if err != nil {
		return invalidParams(c, "n debe ser un entero")
	}
	out, err := h.svc.Recommend(c.Context(), c.Params("id"), n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// queryInt lee un entero opcional de la query; ausente o vacío → def.
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
