package models

import (
	"time"

	"github.com/lintasnet/paygate/pkg/types"
	"gorm.io/datatypes"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusPaid      TransactionStatus = "paid"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
	TransactionStatusExpired   TransactionStatus = "expired"
)

// Terminal reports whether no further webhook or cancel may move the
// transaction. Expiry is advisory: an expired-by-clock but still-pending row
// is not terminal until something actually flips it.
func (s TransactionStatus) Terminal() bool {
	return s != TransactionStatusPending
}

// PaymentTransaction is one payment attempt against an invoice. All state
// transitions are applied as conditional updates guarded on the pending
// status; that guard, not any in-process lock, is what makes concurrent
// webhook delivery and cancellation safe. Creation is guarded the same way
// by the partial unique index: at most one pending row per invoice.
type PaymentTransaction struct {
	ID         string                `gorm:"column:id;primary_key;type:uuid" json:"id"`
	InvoiceID  string                `gorm:"column:invoice_id;type:uuid;not null;index:idx_invoice_status,priority:1;uniqueIndex:uidx_invoice_pending,where:status = 'pending'" json:"invoice_id"`
	Gateway    types.PaymentProvider `gorm:"column:gateway;type:varchar(64);not null" json:"gateway"`
	GatewayRef string                `gorm:"column:gateway_ref;type:varchar(128)" json:"gateway_ref"`
	OrderID    string                `gorm:"column:order_id;type:varchar(128);not null;index" json:"order_id"`
	Method     string                `gorm:"column:method;type:varchar(64)" json:"method"`

	Amount    int64 `gorm:"column:amount;type:bigint;not null" json:"amount"`
	FeeAmount int64 `gorm:"column:fee_amount;type:bigint;not null;default:0" json:"fee_amount"`
	NetAmount int64 `gorm:"column:net_amount;type:bigint;not null" json:"net_amount"`

	Status TransactionStatus `gorm:"column:status;type:varchar(32);not null;index:idx_invoice_status,priority:2" json:"status"`

	// Verbatim provider payloads kept for audit/debug.
	RequestPayload  datatypes.JSON  `gorm:"column:request_payload;type:jsonb" json:"request_payload"`
	ResponsePayload *datatypes.JSON `gorm:"column:response_payload;type:jsonb" json:"response_payload"`

	ExpiresAt time.Time  `gorm:"column:expires_at;not null" json:"expires_at"`
	PaidAt    *time.Time `gorm:"column:paid_at" json:"paid_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (PaymentTransaction) TableName() string { return "payment_transaction" }

// RemainingSeconds clamps time-to-expiry at zero for pending transactions;
// non-pending transactions have nothing left to count down.
func (t *PaymentTransaction) RemainingSeconds(now time.Time) int64 {
	if t == nil || t.Status != TransactionStatusPending {
		return 0
	}
	d := t.ExpiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int64(d.Seconds())
}
