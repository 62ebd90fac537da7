package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

// TransactionItem captures the snapshot of each line within a transaction.
// Rows are immutable once written so historical receipts survive catalog edits.
type TransactionItem struct {
	ID            uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID uuid.UUID   `gorm:"column:transaction_id;type:uuid;not null;index"`
	ProductID     uuid.UUID   `gorm:"column:product_id;type:uuid;not null"`
	ProductName   string      `gorm:"column:product_name;not null"`
	Quantity      int         `gorm:"column:quantity;not null"`
	UnitPrice     types.Money `gorm:"column:unit_price;type:numeric(14,2);not null"`
	Subtotal      types.Money `gorm:"column:subtotal;type:numeric(14,2);not null"`
	CreatedAt     time.Time   `gorm:"column:created_at;autoCreateTime"`
}
