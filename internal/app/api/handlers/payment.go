package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lintasnet/paygate/internal/app/service/gateway"
	"github.com/lintasnet/paygate/internal/app/service/ledger"
	"github.com/lintasnet/paygate/internal/app/service/settings"
	"github.com/lintasnet/paygate/pkg/response"
	"github.com/lintasnet/paygate/pkg/types"
)

type CreatePaymentRequest struct {
	InvoiceID   string `json:"invoice_id" binding:"required"`
	Gateway     string `json:"gateway"`
	Method      string `json:"method"`
	PaymentType string `json:"payment_type"`
}

// @Summary      Create Payment
// @Description  Opens a payment transaction for an invoice on the requested gateway, or the active one when gateway is omitted. Returns the existing pending transaction on repeat calls.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body CreatePaymentRequest true "Create payment request"
// @Success      200  {object}  handlers.RespCreatePayment
// @Router       /api/v1/payment/create [post]
func ApiCreatePayment(mgr gateway.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		gw := types.PaymentProvider(req.Gateway)
		if req.Gateway != "" && !gw.Valid() {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "unknown gateway: "+req.Gateway))
			return
		}

		var (
			res *gateway.CreatePaymentResponse
			err error
		)
		if req.Method != "" {
			res, err = mgr.CreatePaymentWithMethod(c.Request.Context(), req.InvoiceID, gw, req.Method, req.PaymentType)
		} else {
			res, err = mgr.CreatePayment(c.Request.Context(), req.InvoiceID, gw)
		}
		if err != nil {
			if errors.Is(err, ledger.ErrInvoiceNotPayable) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      List Payment Methods
// @Description  Aggregates payment methods across all initialized gateways. With amount set, fees are computed and out-of-range methods dropped.
// @Tags         Payment
// @Produce      json
// @Param        amount query int false "Payment amount for fee computation and range filtering"
// @Success      200  {object}  handlers.RespPaymentMethods
// @Router       /api/v1/payment/methods [get]
func ApiListPaymentMethods(mgr gateway.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var amount int64
		if v := c.Query("amount"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 0 {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid amount"))
				return
			}
			amount = n
		}
		methods, err := mgr.AvailablePaymentMethods(c.Request.Context(), amount)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(methods))
	}
}

// @Summary      Gateway Status (Admin)
// @Description  Lists every configured gateway with its enabled, initialized, mode and active flags.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespGatewayStatus
// @Router       /api/v1/admin/gateway/status [get]
func ApiGatewayStatus(mgr gateway.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := mgr.Status(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(status))
	}
}

// @Summary      Reload Gateways (Admin)
// @Description  Discards the adapter registry and rebuilds it from stored gateway settings. In-flight requests keep the old registry.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/gateway/reload [post]
func ApiReloadGateways(mgr gateway.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		mgr.Reload(c.Request.Context())
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

type SetActiveGatewayRequest struct {
	Gateway string `json:"gateway" binding:"required"`
}

// @Summary      Set Active Gateway (Admin)
// @Description  Records the default provider for payments that do not name one, then reloads the adapter registry.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body SetActiveGatewayRequest true "Active gateway selection"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/gateway/active [post]
func ApiSetActiveGateway(set *settings.Service, mgr gateway.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetActiveGatewayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := set.SetActiveGateway(c.Request.Context(), types.PaymentProvider(req.Gateway)); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		mgr.Reload(c.Request.Context())
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Dump Provider Channels (Admin)
// @Description  Returns the raw channel catalog from the provider API, for diagnosing fee or code mismatches.
// @Tags         Admin
// @Produce      json
// @Param        gateway path string true "Gateway name"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/gateway/{gateway}/channels [get]
func ApiDumpChannels(mgr gateway.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		gw := types.PaymentProvider(c.Param("gateway"))
		if !gw.Valid() {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "unknown gateway: "+c.Param("gateway")))
			return
		}
		raw, err := mgr.DumpChannels(c.Request.Context(), gw)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(raw))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, mgr gateway.Orchestrator) {
	r.POST("/create", ApiCreatePayment(mgr))
	r.GET("/methods", ApiListPaymentMethods(mgr))
}

func RegisterAdminGatewayRoutes(r gin.IRouter, mgr gateway.Orchestrator, set *settings.Service) {
	r.GET("/gateway/status", ApiGatewayStatus(mgr))
	r.POST("/gateway/reload", ApiReloadGateways(mgr))
	r.POST("/gateway/active", ApiSetActiveGateway(set, mgr))
	r.GET("/gateway/:gateway/channels", ApiDumpChannels(mgr))
}
