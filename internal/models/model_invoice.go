package models

import (
	"time"
)

type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "unpaid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Invoice is owned by the billing collaborator; this service only flips its
// payment markers on settlement and reads it for payability checks.
type Invoice struct {
	ID            string        `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Number        string        `gorm:"column:number;type:varchar(64);not null;uniqueIndex" json:"number"`
	CustomerName  string        `gorm:"column:customer_name;type:varchar(128);not null" json:"customer_name"`
	CustomerEmail string        `gorm:"column:customer_email;type:varchar(128)" json:"customer_email"`
	CustomerPhone string        `gorm:"column:customer_phone;type:varchar(32)" json:"customer_phone"`
	PackageName   string        `gorm:"column:package_name;type:varchar(128)" json:"package_name"`
	Amount        int64         `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Status        InvoiceStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	DueDate       time.Time     `gorm:"column:due_date" json:"due_date"`

	// Gateway markers set while a payment attempt is in flight / settled.
	PaymentGateway    *string    `gorm:"column:payment_gateway;type:varchar(64)" json:"payment_gateway"`
	PaymentGatewayRef *string    `gorm:"column:payment_gateway_ref;type:varchar(128)" json:"payment_gateway_ref"`
	PaymentMethod     *string    `gorm:"column:payment_method;type:varchar(64)" json:"payment_method"`
	PaymentDate       *time.Time `gorm:"column:payment_date" json:"payment_date"`
	SettlementDate    *time.Time `gorm:"column:settlement_date" json:"settlement_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Invoice) TableName() string { return "invoice" }

// Payable reports whether a payment may be opened against this invoice.
func (i *Invoice) Payable() bool {
	if i == nil {
		return false
	}
	return i.Status == InvoiceStatusUnpaid || i.Status == InvoiceStatusOverdue
}
