package transactions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
	"github.com/billy17-netizen/posvougher-sub002/pkg/pagination"
	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

// Repository exposes transaction persistence operations.
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

// Create inserts the transaction header together with its line items.
func (r *Repository) Create(ctx context.Context, transaction *models.Transaction) (*models.Transaction, error) {
	if err := r.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return nil, err
	}
	return transaction, nil
}

// FindByID loads a transaction with items, scoped to its store.
func (r *Repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND store_id = ?", id, storeID).
		First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// FindByIDAny loads a transaction with items regardless of store. Webhook
// resolution knows the transaction id before it knows the tenant.
func (r *Repository) FindByIDAny(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// ListFilter narrows the cursor listing.
type ListFilter struct {
	Status        *enums.TransactionStatus
	PaymentMethod *enums.PaymentMethod
	CashierID     *uuid.UUID
	From          *time.Time
	To            *time.Time
}

// ListByStore pages transactions newest-first with a keyset cursor.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Transaction, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ?", storeID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit))

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *filter.PaymentMethod)
	}
	if filter.CashierID != nil {
		query = query.Where("cashier_id = ?", *filter.CashierID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Transaction
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TransitionFromPending applies a conditional status transition. Zero rows
// affected means the transaction already left PENDING, so a replayed
// notification cannot double-apply side effects.
func (r *Repository) TransitionFromPending(ctx context.Context, id uuid.UUID, target enums.TransactionStatus, amountPaid *types.Money, paidAt *time.Time) (int64, error) {
	updates := map[string]any{
		"status":     target,
		"updated_at": time.Now().UTC(),
	}
	if amountPaid != nil {
		updates["amount_paid"] = *amountPaid
	}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}

	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, enums.TransactionStatusPending).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// ResetExpiredToPending flips an EXPIRED transaction back to PENDING so a new
// payment token can be issued for it.
func (r *Repository) ResetExpiredToPending(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, enums.TransactionStatusExpired).
		Updates(map[string]any{
			"status":     enums.TransactionStatusPending,
			"snap_token": nil,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// SetSnapToken stores the provider token and redirect URL on the transaction.
func (r *Repository) SetSnapToken(ctx context.Context, id uuid.UUID, token, redirectURL string) error {
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"snap_token":   token,
			"redirect_url": redirectURL,
			"updated_at":   time.Now().UTC(),
		}).Error
}

// ListStalePendingGateway returns gateway transactions that have sat in
// PENDING longer than the cutoff. The cron sweep expires them.
func (r *Repository) ListStalePendingGateway(ctx context.Context, cutoff time.Time, limit int) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND payment_method = ? AND created_at < ?",
			enums.TransactionStatusPending, enums.PaymentMethodMidtrans, cutoff).
		Order("created_at").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
