package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
)

// StoreSetting holds one key/value configuration row per store.
type StoreSetting struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID   uuid.UUID        `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_store_settings_store_key"`
	Key       enums.SettingKey `gorm:"column:key;type:text;not null;uniqueIndex:idx_store_settings_store_key"`
	Value     string           `gorm:"column:value;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
