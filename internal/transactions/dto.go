package transactions

import (
	"time"

	"github.com/google/uuid"

	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

// TransactionItemDTO is the transport shape for one receipt line.
type TransactionItemDTO struct {
	ID          uuid.UUID   `json:"id"`
	ProductID   uuid.UUID   `json:"productId"`
	ProductName string      `json:"productName"`
	Quantity    int         `json:"quantity"`
	UnitPrice   types.Money `json:"unitPrice"`
	Subtotal    types.Money `json:"subtotal"`
}

// TransactionDTO is the transport shape for a sale.
type TransactionDTO struct {
	ID            uuid.UUID               `json:"id"`
	StoreID       uuid.UUID               `json:"storeId"`
	CashierID     uuid.UUID               `json:"cashierId"`
	TotalAmount   types.Money             `json:"totalAmount"`
	AmountPaid    types.Money             `json:"amountPaid"`
	ChangeAmount  types.Money             `json:"changeAmount"`
	PaymentMethod enums.PaymentMethod     `json:"paymentMethod"`
	Status        enums.TransactionStatus `json:"status"`
	SnapToken     *string                 `json:"snapToken,omitempty"`
	RedirectURL   *string                 `json:"redirectUrl,omitempty"`
	PaidAt        *time.Time              `json:"paidAt,omitempty"`
	Items         []TransactionItemDTO    `json:"items"`
	CreatedAt     time.Time               `json:"createdAt"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

// TransactionListResult carries one page of transactions plus the next cursor.
type TransactionListResult struct {
	Items      []TransactionDTO `json:"items"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

// FromModel maps the persisted transaction into a DTO.
func FromModel(m *models.Transaction) *TransactionDTO {
	if m == nil {
		return nil
	}

	items := make([]TransactionItemDTO, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, TransactionItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}

	return &TransactionDTO{
		ID:            m.ID,
		StoreID:       m.StoreID,
		CashierID:     m.CashierID,
		TotalAmount:   m.TotalAmount,
		AmountPaid:    m.AmountPaid,
		ChangeAmount:  m.ChangeAmount,
		PaymentMethod: m.PaymentMethod,
		Status:        m.Status,
		SnapToken:     cloneStringPtr(m.SnapToken),
		RedirectURL:   cloneStringPtr(m.RedirectURL),
		PaidAt:        cloneTimePtr(m.PaidAt),
		Items:         items,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func cloneStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}

func cloneTimePtr(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
