package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

// Transaction captures one point-of-sale checkout.
type Transaction struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID       uuid.UUID               `gorm:"column:store_id;type:uuid;not null;index"`
	CashierID     uuid.UUID               `gorm:"column:cashier_id;type:uuid;not null"`
	TotalAmount   types.Money             `gorm:"column:total_amount;type:numeric(14,2);not null"`
	AmountPaid    types.Money             `gorm:"column:amount_paid;type:numeric(14,2);not null;default:0"`
	ChangeAmount  types.Money             `gorm:"column:change_amount;type:numeric(14,2);not null;default:0"`
	PaymentMethod enums.PaymentMethod     `gorm:"column:payment_method;type:text;not null"`
	Status        enums.TransactionStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	SnapToken     *string                 `gorm:"column:snap_token"`
	RedirectURL   *string                 `gorm:"column:redirect_url"`
	PaidAt        *time.Time              `gorm:"column:paid_at"`
	Items         []TransactionItem       `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
