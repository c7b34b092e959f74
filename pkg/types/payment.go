package types

type PaymentProvider string

const (
	PaymentProviderMidtrans PaymentProvider = "midtrans"
	PaymentProviderXendit   PaymentProvider = "xendit"
	PaymentProviderTripay   PaymentProvider = "tripay"
	PaymentProviderManual   PaymentProvider = "manual"
)

// ProviderPriority is the fallback order used when no active gateway is
// configured explicitly: the first enabled provider wins.
var ProviderPriority = []PaymentProvider{
	PaymentProviderMidtrans,
	PaymentProviderTripay,
	PaymentProviderXendit,
	PaymentProviderManual,
}

func (p PaymentProvider) Valid() bool {
	switch p {
	case PaymentProviderMidtrans, PaymentProviderXendit, PaymentProviderTripay, PaymentProviderManual:
		return true
	}
	return false
}

type GatewayMode string

const (
	GatewayModeSandbox    GatewayMode = "sandbox"
	GatewayModeProduction GatewayMode = "production"
)

// PaymentRequest carries everything an adapter needs to open a transaction
// with its provider. It is built per call and never persisted directly.
type PaymentRequest struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	Amount        int64  `json:"amount"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	PackageName   string `json:"package_name,omitempty"`
}

// OrderID returns the provider-facing order reference. The invoice number is
// always recoverable from it on the webhook path.
func (r *PaymentRequest) OrderID() string {
	return "INV-" + r.InvoiceNumber
}

// PaymentResult is the normalized provider response for a created payment.
type PaymentResult struct {
	Gateway       PaymentProvider   `json:"gateway"`
	OrderID       string            `json:"order_id"`
	Token         string            `json:"token,omitempty"`
	PaymentURL    string            `json:"payment_url,omitempty"`
	Method        string            `json:"method,omitempty"`
	QRString      string            `json:"qr_string,omitempty"`
	FeeAmount     int64             `json:"fee_amount"`
	RequiresProof bool              `json:"requires_proof,omitempty"`
	Instructions  []ManualAccount   `json:"instructions,omitempty"`
	Raw           map[string]any    `json:"raw,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// ManualAccount is one configured destination for offline bank/e-wallet
// transfers, shown to the customer as payment instructions.
type ManualAccount struct {
	Kind          string `json:"kind" mapstructure:"kind"` // bank | ewallet
	Name          string `json:"name" mapstructure:"name"`
	AccountNumber string `json:"account_number" mapstructure:"account_number"`
	AccountHolder string `json:"account_holder" mapstructure:"account_holder"`
	Active        bool   `json:"active" mapstructure:"active"`
}

// WebhookStatus is the 3-value domain every provider status maps into.
type WebhookStatus string

const (
	WebhookStatusSuccess WebhookStatus = "success"
	WebhookStatusPending WebhookStatus = "pending"
	WebhookStatusFailed  WebhookStatus = "failed"
)

// WebhookResult is the strict normalized record produced from a verified
// provider callback. OrderID and Status are mandatory; absence of either is a
// parse error on the adapter side, never a zero value here.
type WebhookResult struct {
	Gateway     PaymentProvider `json:"gateway"`
	OrderID     string          `json:"order_id"`
	Status      WebhookStatus   `json:"status"`
	Amount      int64           `json:"amount"`
	PaymentType string          `json:"payment_type,omitempty"`
	Reference   string          `json:"reference,omitempty"`
}
