package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

// Store represents the canonical tenant model.
type Store struct {
	ID        uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string      `gorm:"column:name;not null"`
	Address   *string     `gorm:"column:address"`
	Phone     *string     `gorm:"column:phone"`
	Email     *string     `gorm:"column:email"`
	TaxRate   types.Money `gorm:"column:tax_rate;type:numeric(5,2);not null;default:0"`
	Currency  string      `gorm:"column:currency;not null;default:'IDR'"`
	IsActive  bool        `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
