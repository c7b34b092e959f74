package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/lintasnet/paygate/internal/models"
	"github.com/lintasnet/paygate/pkg/types"
)

// Adapter is the per-provider capability contract. One lives per configured
// provider; the Manager owns construction and dispatch.
type Adapter interface {
	Name() types.PaymentProvider
	Mode() types.GatewayMode
	// CreatePayment opens a transaction with the provider's default flow.
	CreatePayment(ctx context.Context, req *types.PaymentRequest) (*types.PaymentResult, error)
	// CreatePaymentWithMethod opens a transaction on an explicit channel.
	// The method code is normalized before submission.
	CreatePaymentWithMethod(ctx context.Context, req *types.PaymentRequest, method, paymentType string) (*types.PaymentResult, error)
	// ListMethods returns the channel catalog, amount-filtered when amount>0.
	ListMethods(ctx context.Context, amount int64) ([]*types.PaymentMethod, error)
	// ParseWebhook verifies authenticity and returns the strict normalized
	// result. Verification failure is ErrInvalidSignature.
	ParseWebhook(ctx context.Context, payload []byte, header http.Header) (*types.WebhookResult, error)
}

// Credentials is the decoded shape of a gateway_setting credentials column.
// Each provider reads only its own fields.
type Credentials struct {
	ServerKey     string                `json:"server_key,omitempty"`     // midtrans
	ClientKey     string                `json:"client_key,omitempty"`     // midtrans
	SecretKey     string                `json:"secret_key,omitempty"`     // xendit
	CallbackToken string                `json:"callback_token,omitempty"` // xendit
	APIKey        string                `json:"api_key,omitempty"`        // tripay
	PrivateKey    string                `json:"private_key,omitempty"`    // tripay
	MerchantCode  string                `json:"merchant_code,omitempty"`  // tripay
	Accounts      []types.ManualAccount `json:"accounts,omitempty"`       // manual
}

// GatewayConfig is one provider's decoded configuration, loaded from the
// settings store at orchestrator initialization.
type GatewayConfig struct {
	Provider    types.PaymentProvider
	Enabled     bool
	Mode        types.GatewayMode
	Credentials Credentials
}

func (c *GatewayConfig) Production() bool { return c.Mode == types.GatewayModeProduction }

func configFromSetting(row *models.GatewaySetting) (*GatewayConfig, error) {
	p := types.PaymentProvider(row.Gateway)
	if !p.Valid() {
		return nil, fmt.Errorf("unknown gateway in settings: %s", row.Gateway)
	}
	mode := types.GatewayMode(row.Mode)
	if mode != types.GatewayModeProduction {
		mode = types.GatewayModeSandbox
	}
	cfg := &GatewayConfig{Provider: p, Enabled: row.Enabled, Mode: mode}
	if len(row.Credentials) > 0 {
		if err := json.Unmarshal(row.Credentials, &cfg.Credentials); err != nil {
			return nil, fmt.Errorf("malformed credentials for %s: %w", p, err)
		}
	}
	return cfg, nil
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// sanitizeEmail drops syntactically broken addresses instead of letting a
// provider reject the whole request over one.
func sanitizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" || !emailRe.MatchString(email) {
		return ""
	}
	return email
}

func validateRequest(req *types.PaymentRequest) error {
	if req == nil {
		return fmt.Errorf("nil payment request")
	}
	if req.Amount <= 0 {
		return fmt.Errorf("amount must be a positive integer, got %d", req.Amount)
	}
	if req.InvoiceNumber == "" {
		return fmt.Errorf("invoice number is required")
	}
	return nil
}

// methodAliases maps legacy/generic channel codes to each provider's
// currently-active code. Providers churn these; the UI keeps sending the old
// ones.
var methodAliases = map[types.PaymentProvider]map[string]string{
	types.PaymentProviderTripay: {
		"QRIS":      "QRISC",
		"QRIS2":     "QRISC",
		"SHOPEEPAY": "QRIS_SHOPEEPAY",
	},
	types.PaymentProviderMidtrans: {
		"QRIS":  "qris",
		"GOPAY": "gopay",
		"VA":    "bank_transfer",
	},
	types.PaymentProviderXendit: {
		"QRIS": "QR_CODE",
	},
}

// normalizeMethod resolves aliases and trims whitespace; unknown codes pass
// through unchanged so new provider channels work without a deploy.
func normalizeMethod(provider types.PaymentProvider, method string) string {
	m := strings.TrimSpace(method)
	if aliases, ok := methodAliases[provider]; ok {
		if mapped, ok := aliases[strings.ToUpper(m)]; ok {
			return mapped
		}
	}
	return m
}

// wildcardMethod reports whether the caller asked for "any channel".
func wildcardMethod(method string) bool {
	m := strings.TrimSpace(method)
	return m == "" || m == "*" || strings.EqualFold(m, "all")
}

// parseAmount converts provider decimal-string amounts ("150000.00") to
// integer minor units.
func parseAmount(s string) int64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(f))
}
