package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentReference maps a provider order id back to the transaction it pays.
// One row per transaction; the provider order id is globally unique so webhook
// notifications resolve without scanning settings or parsing synthetic keys.
type PaymentReference struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID         uuid.UUID `gorm:"column:store_id;type:uuid;not null;index"`
	TransactionID   uuid.UUID `gorm:"column:transaction_id;type:uuid;not null;uniqueIndex"`
	ProviderOrderID string    `gorm:"column:provider_order_id;not null;uniqueIndex"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
