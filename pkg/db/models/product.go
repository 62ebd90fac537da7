package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

// Product represents a sellable catalog item scoped to one store.
type Product struct {
	ID          uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID   `gorm:"column:store_id;type:uuid;not null;index"`
	CategoryID  uuid.UUID   `gorm:"column:category_id;type:uuid;not null"`
	Name        string      `gorm:"column:name;not null"`
	Description *string     `gorm:"column:description"`
	Price       types.Money `gorm:"column:price;type:numeric(14,2);not null"`
	Stock       int         `gorm:"column:stock;not null;default:0"`
	ImageURL    *string     `gorm:"column:image_url"`
	IsActive    bool        `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
