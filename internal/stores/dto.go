package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

// StoreDTO exposes safe tenant data in API responses.
type StoreDTO struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Address   *string     `json:"address,omitempty"`
	Phone     *string     `json:"phone,omitempty"`
	Email     *string     `json:"email,omitempty"`
	TaxRate   types.Money `json:"taxRate"`
	Currency  string      `json:"currency"`
	IsActive  bool        `json:"isActive"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// CreateStoreDTO holds creation-time data for a new store.
type CreateStoreDTO struct {
	Name     string
	Address  *string
	Phone    *string
	Email    *string
	TaxRate  *types.Money
	Currency *string
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}

	return &StoreDTO{
		ID:        m.ID,
		Name:      m.Name,
		Address:   cloneStringPtr(m.Address),
		Phone:     cloneStringPtr(m.Phone),
		Email:     cloneStringPtr(m.Email),
		TaxRate:   m.TaxRate,
		Currency:  m.Currency,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// SettingsDTO flattens the per-store settings rows into a key/value map.
type SettingsDTO map[enums.SettingKey]string

// SettingsFromRows collapses setting rows into the transport map.
func SettingsFromRows(rows []models.StoreSetting) SettingsDTO {
	out := make(SettingsDTO, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out
}

func cloneStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
