package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

// ProductDTO is the transport shape for a catalog product.
type ProductDTO struct {
	ID          uuid.UUID   `json:"id"`
	StoreID     uuid.UUID   `json:"storeId"`
	CategoryID  uuid.UUID   `json:"categoryId"`
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	Price       types.Money `json:"price"`
	Stock       int         `json:"stock"`
	ImageURL    *string     `json:"imageUrl,omitempty"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// ProductListResult carries one page of products plus the next cursor.
type ProductListResult struct {
	Items      []ProductDTO `json:"items"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

// FromModel maps the persisted product into a DTO.
func FromModel(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	return &ProductDTO{
		ID:          m.ID,
		StoreID:     m.StoreID,
		CategoryID:  m.CategoryID,
		Name:        m.Name,
		Description: cloneStringPtr(m.Description),
		Price:       m.Price,
		Stock:       m.Stock,
		ImageURL:    cloneStringPtr(m.ImageURL),
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func cloneStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
