package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"go.uber.org/zap"

	midtranscli "github.com/lintasnet/paygate/internal/platform/midtrans"
	"github.com/lintasnet/paygate/pkg/config"
	"github.com/lintasnet/paygate/pkg/types"
)

// MidtransAdapter drives Midtrans Snap hosted checkout. The channel catalog
// is static: Midtrans exposes no listing API, channels are toggled in their
// dashboard.
type MidtransAdapter struct {
	cfg    *GatewayConfig
	appCfg *config.Config
	client *midtranscli.Client
	log    *zap.SugaredLogger
}

func NewMidtransAdapter(cfg *GatewayConfig, appCfg *config.Config, log *zap.SugaredLogger) (*MidtransAdapter, error) {
	cli, err := midtranscli.NewClient(midtranscli.ClientOptions{
		ServerKey:  cfg.Credentials.ServerKey,
		Production: cfg.Production(),
	})
	if err != nil {
		return nil, err
	}
	return &MidtransAdapter{cfg: cfg, appCfg: appCfg, client: cli, log: log}, nil
}

func (a *MidtransAdapter) Name() types.PaymentProvider { return types.PaymentProviderMidtrans }
func (a *MidtransAdapter) Mode() types.GatewayMode     { return a.cfg.Mode }

func (a *MidtransAdapter) CreatePayment(ctx context.Context, req *types.PaymentRequest) (*types.PaymentResult, error) {
	return a.create(ctx, req, nil)
}

func (a *MidtransAdapter) CreatePaymentWithMethod(ctx context.Context, req *types.PaymentRequest, method, paymentType string) (*types.PaymentResult, error) {
	code := normalizeMethod(types.PaymentProviderMidtrans, method)
	enabled := []snap.SnapPaymentType{snap.SnapPaymentType(code)}
	res, err := a.create(ctx, req, enabled)
	if err != nil {
		return nil, err
	}
	res.Method = code
	if paymentType != "" {
		if res.Extra == nil {
			res.Extra = map[string]string{}
		}
		res.Extra["payment_type"] = paymentType
	}
	return res, nil
}

func (a *MidtransAdapter) create(ctx context.Context, req *types.PaymentRequest, enabled []snap.SnapPaymentType) (*types.PaymentResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	orderID := req.OrderID()
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: req.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: sanitizeEmail(req.CustomerEmail),
			Phone: req.CustomerPhone,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    req.InvoiceID,
			Name:  itemName(req),
			Price: req.Amount,
			Qty:   1,
		}},
		Expiry: &snap.ExpiryDetails{
			Unit:     "hour",
			Duration: int64(a.appCfg.Gateway.TransactionTTL.Hours()),
		},
	}
	if len(enabled) > 0 {
		snapReq.EnabledPayments = enabled
	}

	resp, err := a.client.CreateTransaction(snapReq)
	if err != nil {
		return nil, providerErr(a.Name(), "create snap transaction", err)
	}
	return &types.PaymentResult{
		Gateway:    a.Name(),
		OrderID:    orderID,
		Token:      resp.Token,
		PaymentURL: resp.RedirectURL,
		Raw:        map[string]any{"token": resp.Token, "redirect_url": resp.RedirectURL},
	}, nil
}

func (a *MidtransAdapter) ListMethods(ctx context.Context, amount int64) ([]*types.PaymentMethod, error) {
	methods := []*types.PaymentMethod{
		{Gateway: a.Name(), Code: "qris", Name: "QRIS", Group: "QR", FeePercent: 0.7, Active: true},
		{Gateway: a.Name(), Code: "gopay", Name: "GoPay", Group: "E-Wallet", FeePercent: 2, Active: true},
		{Gateway: a.Name(), Code: "bank_transfer", Name: "Bank Transfer (VA)", Group: "Virtual Account", FeeFlat: 4000, MinAmount: 10000, Active: true},
	}
	return types.FilterMethods(methods, amount), nil
}

// midtransNotification is the subset of the HTTP notification body this
// service relies on.
type midtransNotification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionID     string `json:"transaction_id"`
}

func (a *MidtransAdapter) ParseWebhook(ctx context.Context, payload []byte, _ http.Header) (*types.WebhookResult, error) {
	var n midtransNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookParse, err)
	}
	if n.OrderID == "" || n.TransactionStatus == "" {
		return nil, fmt.Errorf("%w: order_id or transaction_status missing", ErrWebhookParse)
	}
	if !a.client.VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, n.SignatureKey) {
		return nil, ErrInvalidSignature
	}

	status := types.WebhookStatusFailed
	switch n.TransactionStatus {
	case "capture":
		if n.FraudStatus == "" || n.FraudStatus == "accept" {
			status = types.WebhookStatusSuccess
		}
	case "settlement":
		status = types.WebhookStatusSuccess
	case "pending":
		status = types.WebhookStatusPending
	}

	return &types.WebhookResult{
		Gateway:     a.Name(),
		OrderID:     n.OrderID,
		Status:      status,
		Amount:      parseAmount(n.GrossAmount),
		PaymentType: n.PaymentType,
		Reference:   n.TransactionID,
	}, nil
}

func itemName(req *types.PaymentRequest) string {
	if req.PackageName != "" {
		return req.PackageName
	}
	return "Invoice " + req.InvoiceNumber
}
