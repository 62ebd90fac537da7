package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products within a single store.
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_categories_store_name"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:idx_categories_store_name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
