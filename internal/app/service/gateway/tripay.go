package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	tripaycli "github.com/lintasnet/paygate/internal/platform/tripay"
	"github.com/lintasnet/paygate/pkg/config"
	"github.com/lintasnet/paygate/pkg/types"
)

// defaultTripayMethod is used when the caller does not pick a channel.
const defaultTripayMethod = "QRISC"

// TripayAdapter talks to the Tripay closed-payment API. Channel listings are
// live; when the listing call fails in sandbox the adapter degrades to a
// small mock catalog so the payment page stays usable.
type TripayAdapter struct {
	cfg    *GatewayConfig
	appCfg *config.Config
	client *tripaycli.Client
	log    *zap.SugaredLogger
}

func NewTripayAdapter(cfg *GatewayConfig, appCfg *config.Config, log *zap.SugaredLogger) (*TripayAdapter, error) {
	cli, err := tripaycli.NewClient(tripaycli.ClientOptions{
		APIKey:       cfg.Credentials.APIKey,
		PrivateKey:   cfg.Credentials.PrivateKey,
		MerchantCode: cfg.Credentials.MerchantCode,
		Production:   cfg.Production(),
		Timeout:      appCfg.Gateway.ProviderTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &TripayAdapter{cfg: cfg, appCfg: appCfg, client: cli, log: log}, nil
}

func (a *TripayAdapter) Name() types.PaymentProvider { return types.PaymentProviderTripay }
func (a *TripayAdapter) Mode() types.GatewayMode     { return a.cfg.Mode }

func (a *TripayAdapter) CreatePayment(ctx context.Context, req *types.PaymentRequest) (*types.PaymentResult, error) {
	return a.create(ctx, req, defaultTripayMethod)
}

func (a *TripayAdapter) CreatePaymentWithMethod(ctx context.Context, req *types.PaymentRequest, method, _ string) (*types.PaymentResult, error) {
	return a.create(ctx, req, normalizeMethod(types.PaymentProviderTripay, method))
}

func (a *TripayAdapter) create(ctx context.Context, req *types.PaymentRequest, method string) (*types.PaymentResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	orderID := req.OrderID()
	tx, err := a.client.CreateTransaction(ctx, &tripaycli.CreateTransactionRequest{
		Method:        method,
		MerchantRef:   orderID,
		Amount:        req.Amount,
		CustomerName:  req.CustomerName,
		CustomerEmail: sanitizeEmail(req.CustomerEmail),
		CustomerPhone: req.CustomerPhone,
		OrderItems: []tripaycli.OrderItem{{
			Name:     itemName(req),
			Price:    req.Amount,
			Quantity: 1,
		}},
		CallbackURL: a.appCfg.Gateway.CallbackBaseURL + "/webhook/tripay",
		ExpiredTime: time.Now().Add(a.appCfg.Gateway.TransactionTTL).Unix(),
	})
	if err != nil {
		return nil, providerErr(a.Name(), "create transaction", err)
	}

	return &types.PaymentResult{
		Gateway:    a.Name(),
		OrderID:    orderID,
		Token:      tx.Reference,
		PaymentURL: tx.CheckoutURL,
		Method:     method,
		QRString:   tx.QRString,
		FeeAmount:  tx.TotalFee,
		Raw: map[string]any{
			"reference":    tx.Reference,
			"checkout_url": tx.CheckoutURL,
			"pay_code":     tx.PayCode,
			"qr_url":       tx.QRURL,
			"status":       tx.Status,
		},
	}, nil
}

func (a *TripayAdapter) ListMethods(ctx context.Context, amount int64) ([]*types.PaymentMethod, error) {
	channels, err := a.client.PaymentChannels(ctx)
	if err != nil {
		if a.cfg.Production() {
			return nil, providerErr(a.Name(), "list channels", err)
		}
		a.log.Warnw("tripay channel listing failed, serving mock catalog",
			"mode", a.cfg.Mode, "err", err)
		return types.FilterMethods(a.mockMethods(), amount), nil
	}

	methods := lo.Map(channels, func(ch tripaycli.Channel, _ int) *types.PaymentMethod {
		return &types.PaymentMethod{
			Gateway:    a.Name(),
			Code:       ch.Code,
			Name:       ch.Name,
			Group:      ch.Group,
			IconURL:    ch.IconURL,
			FeeFlat:    ch.FeeCustomer.Flat,
			FeePercent: ch.FeeCustomer.Percent,
			MinAmount:  ch.MinimumAmount,
			MaxAmount:  ch.MaximumAmount,
			Active:     ch.Active,
		}
	})
	return types.FilterMethods(methods, amount), nil
}

// mockMethods is the sandbox fallback catalog; every entry is marked is_mock
// so downstream consumers never mistake it for live provider state.
func (a *TripayAdapter) mockMethods() []*types.PaymentMethod {
	return []*types.PaymentMethod{
		{Gateway: a.Name(), Code: "QRISC", Name: "QRIS", Group: "QR", FeeFlat: 750, FeePercent: 0.7, Active: true, IsMock: true},
		{Gateway: a.Name(), Code: "BRIVA", Name: "BRI Virtual Account", Group: "Virtual Account", FeeFlat: 4250, MinAmount: 10000, Active: true, IsMock: true},
	}
}

// DumpChannels exposes the unmapped provider listing for the ops debug
// endpoint.
func (a *TripayAdapter) DumpChannels(ctx context.Context) (json.RawMessage, error) {
	return a.client.PaymentChannelsRaw(ctx)
}

type tripayCallback struct {
	Reference         string `json:"reference"`
	MerchantRef       string `json:"merchant_ref"`
	PaymentMethod     string `json:"payment_method"`
	PaymentMethodCode string `json:"payment_method_code"`
	TotalAmount       int64  `json:"total_amount"`
	Status            string `json:"status"`
}

func (a *TripayAdapter) ParseWebhook(ctx context.Context, payload []byte, header http.Header) (*types.WebhookResult, error) {
	sig := header.Get("X-Callback-Signature")
	if sig == "" || !a.client.VerifyCallbackSignature(payload, sig) {
		return nil, ErrInvalidSignature
	}

	var cb tripayCallback
	if err := json.Unmarshal(payload, &cb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookParse, err)
	}
	if cb.MerchantRef == "" || cb.Status == "" {
		return nil, fmt.Errorf("%w: merchant_ref or status missing", ErrWebhookParse)
	}

	status := types.WebhookStatusFailed
	switch cb.Status {
	case "PAID":
		status = types.WebhookStatusSuccess
	case "UNPAID":
		status = types.WebhookStatusPending
	}

	code := cb.PaymentMethodCode
	if code == "" {
		code = cb.PaymentMethod
	}
	return &types.WebhookResult{
		Gateway:     a.Name(),
		OrderID:     cb.MerchantRef,
		Status:      status,
		Amount:      cb.TotalAmount,
		PaymentType: code,
		Reference:   cb.Reference,
	}, nil
}
