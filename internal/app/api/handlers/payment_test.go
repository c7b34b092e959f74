package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lintasnet/paygate/internal/app/service/gateway"
	"github.com/lintasnet/paygate/internal/models"
	"github.com/lintasnet/paygate/pkg/types"
)

type stubOrchestrator struct {
	gateway.Orchestrator
	createRes  *gateway.CreatePaymentResponse
	createErr  error
	methods    []*types.PaymentMethod
	reloaded   bool
	lastGW     types.PaymentProvider
	lastMethod string
}

func (s *stubOrchestrator) CreatePayment(_ context.Context, invoiceID string, gw types.PaymentProvider) (*gateway.CreatePaymentResponse, error) {
	s.lastGW = gw
	return s.createRes, s.createErr
}

func (s *stubOrchestrator) CreatePaymentWithMethod(_ context.Context, invoiceID string, gw types.PaymentProvider, method, _ string) (*gateway.CreatePaymentResponse, error) {
	s.lastGW = gw
	s.lastMethod = method
	return s.createRes, s.createErr
}

func (s *stubOrchestrator) AvailablePaymentMethods(_ context.Context, amount int64) ([]*types.PaymentMethod, error) {
	return s.methods, nil
}

func (s *stubOrchestrator) Status(_ context.Context) ([]gateway.GatewayStatus, error) {
	return []gateway.GatewayStatus{{Gateway: types.PaymentProviderManual, Initialized: true, Active: true}}, nil
}

func (s *stubOrchestrator) Reload(_ context.Context) { s.reloaded = true }

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestApiCreatePayment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &stubOrchestrator{createRes: &gateway.CreatePaymentResponse{
		Transaction: &models.PaymentTransaction{ID: "tx-1", OrderID: "INV-1001"},
		Result:      &types.PaymentResult{Gateway: types.PaymentProviderTripay, OrderID: "INV-1001"},
	}}
	r := gin.New()
	r.POST("/create", ApiCreatePayment(stub))

	w := postJSON(t, r, "/create", map[string]string{"invoice_id": "inv-1", "gateway": "tripay"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "INV-1001")
	require.Equal(t, types.PaymentProviderTripay, stub.lastGW)
}

func TestApiCreatePaymentWithMethod(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &stubOrchestrator{createRes: &gateway.CreatePaymentResponse{
		Transaction: &models.PaymentTransaction{ID: "tx-1"},
		Result:      &types.PaymentResult{Gateway: types.PaymentProviderTripay, Method: "QRISC"},
	}}
	r := gin.New()
	r.POST("/create", ApiCreatePayment(stub))

	w := postJSON(t, r, "/create", map[string]string{"invoice_id": "inv-1", "gateway": "tripay", "method": "QRIS"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "QRIS", stub.lastMethod)
}

func TestApiCreatePaymentValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/create", ApiCreatePayment(&stubOrchestrator{}))

	// missing invoice_id
	w := postJSON(t, r, "/create", map[string]string{"gateway": "tripay"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "invoice_id")

	// unknown gateway name
	w = postJSON(t, r, "/create", map[string]string{"invoice_id": "inv-1", "gateway": "paypal"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "unknown gateway")
}

func TestApiListPaymentMethods(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &stubOrchestrator{methods: []*types.PaymentMethod{
		{Gateway: types.PaymentProviderTripay, Code: "QRISC", Name: "QRIS", FeeAmount: 1800, Active: true},
	}}
	r := gin.New()
	r.GET("/methods", ApiListPaymentMethods(stub))

	req := httptest.NewRequest(http.MethodGet, "/methods?amount=150000", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "QRISC")

	req = httptest.NewRequest(http.MethodGet, "/methods?amount=-5", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Contains(t, w.Body.String(), "invalid amount")
}

func TestApiReloadGateways(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &stubOrchestrator{}
	r := gin.New()
	r.POST("/reload", ApiReloadGateways(stub))

	req := httptest.NewRequest(http.MethodPost, "/reload", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, stub.reloaded)
}

func TestRegisterPaymentRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterPaymentRoutes(r.Group("/api/v1/payment"), &stubOrchestrator{})
	RegisterAdminGatewayRoutes(r.Group("/api/v1/admin"), &stubOrchestrator{}, nil)

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("POST /api/v1/payment/create"))
	require.True(t, contains("GET /api/v1/payment/methods"))
	require.True(t, contains("GET /api/v1/admin/gateway/status"))
	require.True(t, contains("POST /api/v1/admin/gateway/reload"))
	require.True(t, contains("GET /api/v1/admin/gateway/:gateway/channels"))
}
