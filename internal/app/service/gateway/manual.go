package gateway

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/lintasnet/paygate/pkg/types"
)

// ManualAdapter handles offline bank/e-wallet transfers. There is no upstream
// API and no callback: the customer uploads proof of transfer and an operator
// confirms it, so CreatePayment only hands back transfer instructions.
type ManualAdapter struct {
	cfg *GatewayConfig
	log *zap.SugaredLogger
}

// NewManualAdapter never fails; the orchestrator constructs it
// unconditionally even with an empty account list.
func NewManualAdapter(cfg *GatewayConfig, log *zap.SugaredLogger) *ManualAdapter {
	if cfg == nil {
		cfg = &GatewayConfig{Provider: types.PaymentProviderManual, Enabled: true, Mode: types.GatewayModeProduction}
	}
	return &ManualAdapter{cfg: cfg, log: log}
}

func (a *ManualAdapter) Name() types.PaymentProvider { return types.PaymentProviderManual }
func (a *ManualAdapter) Mode() types.GatewayMode     { return a.cfg.Mode }

func (a *ManualAdapter) activeAccounts() []types.ManualAccount {
	out := make([]types.ManualAccount, 0, len(a.cfg.Credentials.Accounts))
	for _, acc := range a.cfg.Credentials.Accounts {
		if acc.Active {
			out = append(out, acc)
		}
	}
	return out
}

func (a *ManualAdapter) CreatePayment(ctx context.Context, req *types.PaymentRequest) (*types.PaymentResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	accounts := a.activeAccounts()
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no active manual transfer accounts configured")
	}
	return &types.PaymentResult{
		Gateway:       a.Name(),
		OrderID:       req.OrderID(),
		Method:        "manual_transfer",
		RequiresProof: true,
		Instructions:  accounts,
	}, nil
}

func (a *ManualAdapter) CreatePaymentWithMethod(ctx context.Context, req *types.PaymentRequest, _, _ string) (*types.PaymentResult, error) {
	// Manual has a single channel; an explicit method request falls through.
	return a.CreatePayment(ctx, req)
}

func (a *ManualAdapter) ListMethods(ctx context.Context, amount int64) ([]*types.PaymentMethod, error) {
	if len(a.activeAccounts()) == 0 {
		return nil, nil
	}
	methods := []*types.PaymentMethod{{
		Gateway: a.Name(),
		Code:    "manual_transfer",
		Name:    "Transfer Manual",
		Group:   "Manual",
		Active:  true,
	}}
	return types.FilterMethods(methods, amount), nil
}

// ParseWebhook: manual payments settle through operator confirmation, never a
// callback.
func (a *ManualAdapter) ParseWebhook(ctx context.Context, payload []byte, _ http.Header) (*types.WebhookResult, error) {
	return nil, fmt.Errorf("manual gateway does not deliver webhooks")
}
