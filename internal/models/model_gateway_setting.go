package models

import (
	"time"

	"gorm.io/datatypes"
)

// GatewaySetting is one row of the persisted settings store, keyed by gateway
// name. Credentials stay opaque JSON so each provider can carry its own shape
// (server key, api key, merchant code + private key, bank account list).
// A reserved "active_gateway" row points at the explicitly selected provider.
type GatewaySetting struct {
	Gateway     string         `gorm:"column:gateway;type:varchar(64);primary_key" json:"gateway"`
	Enabled     bool           `gorm:"column:enabled;not null;default:false" json:"enabled"`
	Mode        string         `gorm:"column:mode;type:varchar(32);not null;default:'sandbox'" json:"mode"`
	Credentials datatypes.JSON `gorm:"column:credentials;type:jsonb" json:"credentials"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (GatewaySetting) TableName() string { return "gateway_setting" }

// ActiveGatewayKey is the settings row naming the explicitly chosen provider.
const ActiveGatewayKey = "active_gateway"
