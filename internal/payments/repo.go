package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
)

// Repository persists the mapping between provider order ids and transactions.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByTransactionID loads the payment reference for a transaction, if any.
func (r *Repository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*models.PaymentReference, error) {
	var ref models.PaymentReference
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&ref).Error
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// FindByProviderOrderID resolves a webhook order id back to its transaction.
func (r *Repository) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*models.PaymentReference, error) {
	var ref models.PaymentReference
	err := r.db.WithContext(ctx).
		Where("provider_order_id = ?", providerOrderID).
		First(&ref).Error
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// Upsert writes the reference row, replacing the provider order id when the
// transaction already has one.
func (r *Repository) Upsert(ctx context.Context, storeID, transactionID uuid.UUID, providerOrderID string) error {
	ref := &models.PaymentReference{
		ID:              uuid.New(),
		StoreID:         storeID,
		TransactionID:   transactionID,
		ProviderOrderID: providerOrderID,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"provider_order_id", "updated_at"}),
		}).
		Create(ref).Error
}
