package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lintasnet/paygate/internal/app/service/ledger"
	"github.com/lintasnet/paygate/pkg/response"
	"github.com/lintasnet/paygate/pkg/types"
)

// @Summary      Get Transaction
// @Description  Returns one payment transaction with its countdown and the cached payment URL, QR string or manual transfer instructions.
// @Tags         Payment
// @Produce      json
// @Param        id path string true "Transaction ID"
// @Param        invoice_id query string false "Scope the read to this invoice"
// @Success      200  {object}  handlers.RespTransactionDetail
// @Router       /api/v1/payment/transaction/{id} [get]
func ApiGetTransaction(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := svc.Get(c.Request.Context(), c.Param("id"), c.Query("invoice_id"))
		if err != nil {
			if errors.Is(err, ledger.ErrTransactionNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(detail))
	}
}

type CancelTransactionRequest struct {
	Reason string `json:"reason"`
}

// @Summary      Cancel Transaction
// @Description  Cancels a pending transaction and frees the invoice for a new payment attempt. Non-pending transactions are rejected.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID"
// @Param        request body CancelTransactionRequest false "Cancellation reason"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/payment/transaction/{id}/cancel [post]
func ApiCancelTransaction(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CancelTransactionRequest
		_ = c.ShouldBindJSON(&req)
		if req.Reason == "" {
			req.Reason = "cancelled by user"
		}
		if err := svc.Cancel(c.Request.Context(), c.Param("id"), req.Reason); err != nil {
			if errors.Is(err, ledger.ErrInvalidStateTransition) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

type ListTransactionsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

// @Summary      List Transactions (Admin)
// @Description  Retrieves a paginated and filterable list of payment transactions.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ListTransactionsRequest true "List request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListTransactions
// @Router       /api/v1/admin/transaction/scan [post]
func ApiScanTransactions(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListTransactionsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.Scan(c.Request.Context(), &ledger.ScanRequest{
			Filters: req.Filters, From: req.From, Size: req.Size,
			SortBy: req.SortBy, SortOrder: req.SortOrder,
		})
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Transaction Statistics (Admin)
// @Description  Aggregates transaction counts by status plus collected fee and net totals over paid transactions.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespTransactionStats
// @Router       /api/v1/admin/transaction/stats [get]
func ApiTransactionStats(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.Statistics(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(stats))
	}
}

func RegisterTransactionRoutes(r gin.IRouter, svc *ledger.Service) {
	r.GET("/transaction/:id", ApiGetTransaction(svc))
	r.POST("/transaction/:id/cancel", ApiCancelTransaction(svc))
}

func RegisterAdminTransactionRoutes(r gin.IRouter, svc *ledger.Service) {
	r.POST("/transaction/scan", ApiScanTransactions(svc))
	r.GET("/transaction/stats", ApiTransactionStats(svc))
}
