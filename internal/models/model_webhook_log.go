package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookLog is the append-only audit trail for inbound provider callbacks.
// A row is written before signature verification so spoofed and malformed
// attempts are auditable too; SignatureValid and Result are filled afterwards.
type WebhookLog struct {
	ID             string          `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Gateway        string          `gorm:"column:gateway;type:varchar(64);not null;index" json:"gateway"`
	OrderRef       string          `gorm:"column:order_ref;type:varchar(128);index" json:"order_ref"`
	Payload        datatypes.JSON  `gorm:"column:payload;type:jsonb" json:"payload"`
	Headers        datatypes.JSON  `gorm:"column:headers;type:jsonb" json:"headers"`
	SignatureValid bool            `gorm:"column:signature_valid;not null;default:false" json:"signature_valid"`
	Result         *datatypes.JSON `gorm:"column:result;type:jsonb" json:"result"`
	ReceivedAt     time.Time       `gorm:"column:received_at;not null" json:"received_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (WebhookLog) TableName() string { return "webhook_log" }
