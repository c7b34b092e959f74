package handlers

import (
    "github.com/lintasnet/paygate/internal/app/service/gateway"
    "github.com/lintasnet/paygate/internal/app/service/ledger"
    "github.com/lintasnet/paygate/pkg/response"
    types "github.com/lintasnet/paygate/pkg/types"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
    Code    response.APIResponseCode `json:"code"`
    Message string                   `json:"message"`
    Data    interface{}              `json:"data"`
}

// RespCreatePayment wraps CreatePaymentResponse in the standard envelope.
type RespCreatePayment struct {
    Code    response.APIResponseCode      `json:"code"`
    Message string                        `json:"message"`
    Data    gateway.CreatePaymentResponse `json:"data"`
}

// RespPaymentMethods wraps the aggregated method catalog in the standard envelope.
type RespPaymentMethods struct {
    Code    response.APIResponseCode `json:"code"`
    Message string                   `json:"message"`
    Data    []types.PaymentMethod    `json:"data"`
}

// RespGatewayStatus wraps the per-gateway status list in the standard envelope.
type RespGatewayStatus struct {
    Code    response.APIResponseCode `json:"code"`
    Message string                   `json:"message"`
    Data    []gateway.GatewayStatus  `json:"data"`
}

// RespTransactionDetail wraps a single transaction read in the standard envelope.
type RespTransactionDetail struct {
    Code    response.APIResponseCode `json:"code"`
    Message string                   `json:"message"`
    Data    ledger.TransactionDetail `json:"data"`
}

// RespListTransactions wraps the admin scan response in the standard envelope.
type RespListTransactions struct {
    Code    response.APIResponseCode `json:"code"`
    Message string                   `json:"message"`
    Data    ledger.ScanResponse      `json:"data"`
}

// RespTransactionStats wraps the aggregate statistics in the standard envelope.
type RespTransactionStats struct {
    Code    response.APIResponseCode `json:"code"`
    Message string                   `json:"message"`
    Data    ledger.Stats             `json:"data"`
}
