package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/service-order-metrics/internal/analytics"
	"github.com/spec-kit/service-order-metrics/internal/api/http/handlers"
	"github.com/spec-kit/service-order-metrics/internal/auth"
	"github.com/spec-kit/service-order-metrics/internal/config"
	"github.com/spec-kit/service-order-metrics/internal/domain"
	"github.com/spec-kit/service-order-metrics/internal/events"
	"github.com/spec-kit/service-order-metrics/internal/importer"
	"github.com/spec-kit/service-order-metrics/internal/observability"
	"github.com/spec-kit/service-order-metrics/internal/repository"
	"github.com/spec-kit/service-order-metrics/internal/service"
)

var brt = time.FixedZone("BRT", -3*60*60)

type memOrders struct {
	mu     sync.Mutex
	orders []domain.ServiceOrder
}

func (m *memOrders) UpsertBatch(_ context.Context, orders []domain.ServiceOrder) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, orders...)
	return len(orders), nil
}

func (m *memOrders) ListWithFilter(_ context.Context, f repository.OrderFilter) ([]domain.ServiceOrder, error) {
	return m.collect(func(o domain.ServiceOrder) bool {
		return (f.CreatedFrom == nil || !o.CreatedAt.Before(*f.CreatedFrom)) &&
			(f.CreatedTo == nil || !o.CreatedAt.After(*f.CreatedTo))
	}), nil
}

func (m *memOrders) Snapshot(_ context.Context, from, to *time.Time) ([]domain.ServiceOrder, error) {
	return m.collect(func(o domain.ServiceOrder) bool {
		if to != nil && o.CreatedAt.After(*to) {
			return false
		}
		if from == nil || !o.CreatedAt.Before(*from) {
			return true
		}
		return o.CompletedAt != nil && !o.CompletedAt.Before(*from)
	}), nil
}

func (m *memOrders) collect(keep func(domain.ServiceOrder) bool) []domain.ServiceOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ServiceOrder
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func (m *memOrders) Count(context.Context) (int64, error) { return int64(len(m.orders)), nil }

type memAnalysts struct{ byID map[string]*domain.Analyst }

func (m *memAnalysts) Create(_ context.Context, a *domain.Analyst) error {
	m.byID[a.ID] = a
	return nil
}

func (m *memAnalysts) GetByEmail(_ context.Context, email string) (*domain.Analyst, error) {
	for _, a := range m.byID {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memAnalysts) GetByID(_ context.Context, id string) (*domain.Analyst, error) {
	if a, ok := m.byID[id]; ok {
		return a, nil
	}
	return nil, pgx.ErrNoRows
}

type testServer struct {
	app      *fiber.App
	storeErr error
	orders   *memOrders
	authSvc  *service.AuthService
	analysts *memAnalysts
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	engine := analytics.NewEngine(analytics.Options{})
	orders := &memOrders{}
	analysts := &memAnalysts{byID: map[string]*domain.Analyst{}}
	tokens := auth.NewTokenManager("test", 10)
	authSvc := service.NewAuthService(config.AuthConfig{BcryptCost: 4}, analysts, tokens, logger)
	dates := handlers.NewDateParser(brt)

	orderSvc := service.NewOrderService(service.OrderDependencies{
		OrderRepo:  orders,
		Engine:     engine,
		Dispatcher: events.NewInMemoryDispatcher(logger),
		Workbook:   importer.Options{Location: brt},
		Logger:     logger,
	})
	analyticsSvc := service.NewAnalyticsService(service.AnalyticsDependencies{OrderRepo: orders, Engine: engine, Location: brt})

	s := &testServer{orders: orders, authSvc: authSvc, analysts: analysts}
	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), time.Second)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("metrics", "test", orders, handlers.DependencyCheck{
			Name: "postgres",
			Ping: func(context.Context) error { return s.storeErr },
		}),
		Auth:           handlers.NewAuthHandler(authSvc),
		Orders:         handlers.NewOrdersHandler(orderSvc, 1<<20, dates),
		Metrics:        handlers.NewMetricsHandler(analyticsSvc, engine.Goals(), dates),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, analysts).Handle,
	})
	s.app = app
	return s
}

func (s *testServer) login(t *testing.T, role domain.AnalystRole) string {
	t.Helper()
	email := strings.ToLower(string(role)) + "@example.com"
	_, err := s.authSvc.CreateAnalyst(context.Background(), service.CreateAnalystInput{
		Name: string(role), Email: email, Password: "password1", Role: role,
	})
	require.NoError(t, err)

	body := `{"email":"` + email + `","password":"password1"}`
	req := httptest.NewRequest(nethttp.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var out struct {
		Data struct {
			Auth struct {
				Token string `json:"token"`
			} `json:"auth"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Data.Auth.Token
}

func (s *testServer) do(t *testing.T, method, target, token string, body io.Reader, contentType string) (*nethttp.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func errorCode(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

const reopeningBatch = `{"orders":[
 {"order_code":"A","client_code":"C1","technician":"Ana","service_type":"Instalação","sub_type":"Ponto Principal",
  "status":"Finalizada","created_at":"2024-03-01T08:00:00-03:00","completed_at":"2024-03-01T10:00:00-03:00","city":"São Paulo"},
 {"order_code":"B","client_code":"C1","technician":"Rui","service_type":"Assistência Técnica","sub_type":"Corretiva",
  "status":"Finalizada","created_at":"2024-03-05T09:00:00-03:00","completed_at":"2024-03-05T12:00:00-03:00","city":"sao  paulo"}
]}`

func TestImportAndQueryReopenings(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, domain.AnalystRoleImporter)

	resp, body := s.do(t, nethttp.MethodPost, "/orders", token, strings.NewReader(reopeningBatch), "application/json")
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 2, body["data"].(map[string]any)["persisted"])

	resp, body = s.do(t, nethttp.MethodGet, "/metrics/reopening/pairs?from=2024-03-01&to=2024-03-31", token, nil, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	pairs := body["data"].([]any)
	require.Len(t, pairs, 1)
	pair := pairs[0].(map[string]any)
	assert.InDelta(t, 95.0, pair["elapsed_hours"], 1e-9)
	assert.Equal(t, "PONTO_PRINCIPAL_TV", pair["anchor_category"])
	assert.Equal(t, "ASSISTENCIA_TECNICA_TV", pair["follow_up_category"])

	resp, body = s.do(t, nethttp.MethodGet, "/metrics/reopening?from=2024-03-01&to=2024-03-31", token, nil, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	metrics := body["data"].(map[string]any)
	assert.EqualValues(t, 1, metrics["total_reopenings"])
	cities := metrics["by_city"].([]any)
	require.Len(t, cities, 1)
	assert.Equal(t, "SAO PAULO", cities[0].(map[string]any)["key"])

	resp, body = s.do(t, nethttp.MethodGet, "/metrics/time?from=2024-03-01&to=2024-03-31", token, nil, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["data"].(map[string]any)["total"])

	resp, _ = s.do(t, nethttp.MethodGet, "/metrics/reopening/pairs/export?from=2024-03-01&to=2024-03-31", token, nil, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

	resp, body = s.do(t, nethttp.MethodGet, "/orders?client_code=C1", token, nil, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"].([]any), 2)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, nethttp.MethodGet, "/metrics/time", "", nil, "")
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(nethttp.MethodGet, "/health/live", nil)
	req.Header.Set(RequestIDHeader, "3f0c1a52-9a51-4a3e-8d0e-1f6f2b7a9c11")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "3f0c1a52-9a51-4a3e-8d0e-1f6f2b7a9c11", resp.Header.Get(RequestIDHeader))

	req = httptest.NewRequest(nethttp.MethodGet, "/health/live", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp, err = s.app.Test(req)
	require.NoError(t, err)
	generated := resp.Header.Get(RequestIDHeader)
	assert.NotEqual(t, "not-a-uuid", generated)
	assert.Len(t, generated, 36)
}

func TestReadiness(t *testing.T) {
	s := newTestServer(t)
	s.orders.orders = append(s.orders.orders, domain.ServiceOrder{OrderCode: "A"})

	resp, body := s.do(t, nethttp.MethodGet, "/health/ready", "", nil, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])
	assert.EqualValues(t, 1, body["stored_orders"])

	s.storeErr = errors.New("connection refused")
	resp, body = s.do(t, nethttp.MethodGet, "/health/ready", "", nil, "")
	assert.Equal(t, nethttp.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "connection refused", details["postgres"])
}

func TestViewerCannotImport(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, domain.AnalystRoleViewer)

	resp, body := s.do(t, nethttp.MethodPost, "/orders", token, strings.NewReader(reopeningBatch), "application/json")
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	resp, _ = s.do(t, nethttp.MethodPost, "/analysts", token, strings.NewReader(`{}`), "application/json")
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
}

func TestInvalidPeriod(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, domain.AnalystRoleViewer)

	resp, body := s.do(t, nethttp.MethodGet, "/metrics/time?from=01/03/2024", token, nil, "")
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	resp, body = s.do(t, nethttp.MethodGet, "/metrics/time?from=2024-03-10&to=2024-03-01", token, nil, "")
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestWorkbookUpload(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, domain.AnalystRoleAdmin)

	f := excelize.NewFile()
	header := []any{"OS", "Cliente", "Subtipo", "Status", "Data Criação", "Data Finalização"}
	row := []any{"X1", "C9", "Corretiva", "Finalizada", "02/03/2024 08:00", "02/03/2024 09:30"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(handlers.UploadField, "ordens.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, decoded := s.do(t, nethttp.MethodPost, "/orders/import", token, &body, mw.FormDataContentType())
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	data := decoded["data"].(map[string]any)
	assert.Equal(t, "xlsx", data["source"])
	assert.EqualValues(t, 1, data["persisted"])
	require.Len(t, s.orders.orders, 1)
	assert.Equal(t, domain.CategoryTechAssistanceTV, s.orders.orders[0].Category)
}
