package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tirs/quota/internal/application/dto"
	"github.com/tirs/quota/internal/domain"
	"github.com/tirs/quota/internal/domain/insights"
	apphttp "github.com/tirs/quota/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// stubService registra los parámetros recibidos y devuelve err si está definido.
type stubService struct {
	err        error
	minRisk    int
	forecast   dto.ForecastRequest
	deals      dto.DealFilterRequest
	customerID string
	n          int
}

func (s *stubService) Policy() insights.Policy { return insights.DefaultPolicy() }

func (s *stubService) GetQuickInsights(context.Context) (*dto.QuickInsightsDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.QuickInsightsDTO{
		ChurnRisks:  []insights.ChurnResult{{CustomerID: "B", Risk: 75}},
		Unavailable: []dto.SectionErrorDTO{{Section: "segments", Message: "data source unavailable"}},
	}, nil
}

func (s *stubService) GetSalesIntelligence(context.Context) (*insights.SalesIntelligence, error) {
	return &insights.SalesIntelligence{TotalCustomers: 3}, s.err
}

func (s *stubService) GetDealMetrics(_ context.Context, req dto.DealFilterRequest) (*insights.DealMetrics, error) {
	s.deals = req
	if s.err != nil {
		return nil, s.err
	}
	return &insights.DealMetrics{Count: 2, TotalRevenue: decimal.NewFromInt(300)}, nil
}

func (s *stubService) GetWinMetrics(context.Context) (*insights.WinMetrics, error) {
	return &insights.WinMetrics{Total: 15}, s.err
}

func (s *stubService) GetTrend(context.Context) (*insights.TrendResult, error) {
	return &insights.TrendResult{Direction: insights.TrendUp}, s.err
}

func (s *stubService) ListChurnRisks(_ context.Context, minRisk int) (*dto.ChurnListDTO, error) {
	s.minRisk = minRisk
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ChurnListDTO{MinRisk: minRisk, Items: []insights.ChurnResult{}}, nil
}

func (s *stubService) ListHealthScores(context.Context) (*dto.HealthListDTO, error) {
	return &dto.HealthListDTO{}, s.err
}

func (s *stubService) GetSegments(context.Context) (*dto.SegmentsDTO, error) {
	return &dto.SegmentsDTO{TotalCustomers: 3}, s.err
}

func (s *stubService) FindAnomalies(context.Context) (*insights.AnomalyReport, error) {
	return &insights.AnomalyReport{InsufficientData: true, MinRequired: 20}, s.err
}

func (s *stubService) Forecast(_ context.Context, req dto.ForecastRequest) (*insights.ForecastResult, error) {
	s.forecast = req
	if s.err != nil {
		return nil, s.err
	}
	return &insights.ForecastResult{HorizonDays: req.Days}, nil
}

func (s *stubService) PredictChurn(_ context.Context, id string) (*insights.ChurnResult, error) {
	s.customerID = id
	if s.err != nil {
		return nil, s.err
	}
	return &insights.ChurnResult{CustomerID: id, Risk: 20}, nil
}

func (s *stubService) HealthScore(_ context.Context, id string) (*insights.HealthResult, error) {
	s.customerID = id
	if s.err != nil {
		return nil, s.err
	}
	return &insights.HealthResult{CustomerID: id, Score: 98.78}, nil
}

func (s *stubService) Recommend(_ context.Context, id string, n int) (*dto.RecommendationsDTO, error) {
	s.customerID, s.n = id, n
	if s.err != nil {
		return nil, s.err
	}
	return &dto.RecommendationsDTO{CustomerID: id, Items: []insights.Recommendation{}}, nil
}

func (s *stubService) CustomerLifetimeValue(_ context.Context, id string) (*insights.LifetimeValue, error) {
	s.customerID = id
	if s.err != nil {
		return nil, s.err
	}
	return &insights.LifetimeValue{CustomerID: id, LifetimeValue: decimal.NewFromInt(1950)}, nil
}

func (s *stubService) ListLifetimeValues(context.Context) (*dto.LifetimeListDTO, error) {
	return &dto.LifetimeListDTO{Items: []insights.LifetimeValue{}}, s.err
}

func (s *stubService) GetAlerts(context.Context) (*dto.AlertsDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AlertsDTO{
		Items:  []insights.Alert{{Type: insights.AlertRevenueDrop, Severity: insights.AlertWarning, Percent: 70}},
		Total:  1,
		Counts: map[insights.AlertType]int{insights.AlertRevenueDrop: 1},
	}, nil
}

var _ apphttp.InsightsService = (*stubService)(nil)

func buildTestApp(svc apphttp.InsightsService, metrics nethttp.Handler) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Insights:       svc,
		MetricsHandler: metrics,
		ServiceName:    "quota-test",
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, target string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp.StatusCode, body
}

// ──────────────────────────────────────────────────────────────────────────────
// Rutas y parámetros
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_RutasDeInsights(t *testing.T) {
	app := buildTestApp(&stubService{}, nil)

	for _, path := range []string{
		"/health",
		"/api/insights/quick",
		"/api/insights/intelligence",
		"/api/insights/deals",
		"/api/insights/win-rate",
		"/api/insights/trend",
		"/api/insights/churn",
		"/api/insights/health",
		"/api/insights/segments",
		"/api/insights/anomalies",
		"/api/insights/forecast",
		"/api/insights/lifetime-value",
		"/api/insights/alerts",
		"/api/customers/A/churn",
		"/api/customers/A/health",
		"/api/customers/A/recommendations",
		"/api/customers/A/lifetime-value",
	} {
		status, _ := doGet(t, app, path)
		assert.Equal(t, fiber.StatusOK, status, path)
	}
}

func TestGetQuick_SeccionesNoDisponiblesSonParteDeLaRespuesta(t *testing.T) {
	status, body := doGet(t, buildTestApp(&stubService{}, nil), "/api/insights/quick")

	require.Equal(t, fiber.StatusOK, status)
	unavailable, ok := body["unavailable"].([]any)
	require.True(t, ok, "el cuerpo debe listar las secciones degradadas: %v", body)
	assert.Len(t, unavailable, 1)
}

func TestListChurn_UmbralPorDefectoYExplicito(t *testing.T) {
	svc := &stubService{}
	app := buildTestApp(svc, nil)

	doGet(t, app, "/api/insights/churn")
	assert.Equal(t, 70, svc.minRisk)

	doGet(t, app, "/api/insights/churn?min_risk=0")
	assert.Equal(t, 0, svc.minRisk)

	status, body := doGet(t, app, "/api/insights/churn?min_risk=alto")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PARAMS", body["code"])
}

func TestGetForecast_Parametros(t *testing.T) {
	svc := &stubService{}
	app := buildTestApp(svc, nil)

	status, _ := doGet(t, app, "/api/insights/forecast?days=90&strategy=trend")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, dto.ForecastRequest{Days: 90, Strategy: "trend"}, svc.forecast)

	status, _ = doGet(t, app, "/api/insights/forecast?days=tres")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestGetDeals_QueryParser(t *testing.T) {
	svc := &stubService{}
	app := buildTestApp(svc, nil)

	status, body := doGet(t, app, "/api/insights/deals?status=accepted&customer_id=A&since=2024-06-01")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, dto.DealFilterRequest{Status: "accepted", CustomerID: "A", Since: "2024-06-01"}, svc.deals)
	assert.Equal(t, "300", body["total_revenue"])
}

func TestGetRecommendations_PasaIDyN(t *testing.T) {
	svc := &stubService{}
	app := buildTestApp(svc, nil)

	status, _ := doGet(t, app, "/api/customers/C/recommendations?n=3")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "C", svc.customerID)
	assert.Equal(t, 3, svc.n)

	status, _ = doGet(t, app, "/api/customers/C/recommendations?n=x")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestGetCustomerLifetimeValue_PasaID(t *testing.T) {
	svc := &stubService{}
	status, body := doGet(t, buildTestApp(svc, nil), "/api/customers/C/lifetime-value")

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "C", svc.customerID)
	assert.Equal(t, "1950", body["lifetime_value"])

	status, body = doGet(t, buildTestApp(&stubService{err: domain.ErrNotFound}, nil), "/api/customers/X/lifetime-value")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestGetAlerts_CuerpoConConteos(t *testing.T) {
	status, body := doGet(t, buildTestApp(&stubService{}, nil), "/api/insights/alerts")

	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])
	counts, ok := body["counts"].(map[string]any)
	require.True(t, ok, "%v", body)
	assert.EqualValues(t, 1, counts["revenue_drop"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "warning", items[0].(map[string]any)["severity"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestErrores_MapeoACodigosHTTP(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"no encontrado", fmt.Errorf("analytics.PredictChurn: %w", domain.ErrNotFound), fiber.StatusNotFound, "NOT_FOUND"},
		{"entrada inválida", fmt.Errorf("%w: n fuera de rango", domain.ErrInvalidInput), fiber.StatusBadRequest, "INVALID_PARAMS"},
		{"fuente caída", fmt.Errorf("list quotes: %w", domain.ErrUnavailable), fiber.StatusInternalServerError, "INTERNAL"},
		{"error genérico", errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doGet(t, buildTestApp(&stubService{err: tc.err}, nil), "/api/customers/X/churn")
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestErrores_InternoNoExponeDetalle(t *testing.T) {
	svc := &stubService{err: errors.New(`pq: relation "quotes" password=secreto`)}
	_, body := doGet(t, buildTestApp(svc, nil), "/api/insights/quick")

	assert.NotContains(t, body["message"], "secreto")
}

// ──────────────────────────────────────────────────────────────────────────────
// /metrics
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_MetricsSoloSiHayHandler(t *testing.T) {
	status, _ := doGet(t, buildTestApp(&stubService{}, nil), "/metrics")
	assert.Equal(t, fiber.StatusNotFound, status)

	h := nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		_, _ = w.Write([]byte("quota_insights_cache_total 1\n"))
	})
	resp, err := buildTestApp(&stubService{}, h).Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "quota_insights_cache_total")
}
