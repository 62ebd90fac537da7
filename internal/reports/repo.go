package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

// Repository answers aggregate questions over completed transactions.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

const salesSummaryQuery = `
SELECT
	COALESCE(SUM(t.total_amount), 0) AS gross_sales,
	COUNT(*)                         AS transaction_count,
	COALESCE(AVG(t.total_amount), 0) AS average_sale,
	COALESCE((
		SELECT SUM(ti.quantity)
		FROM transaction_items ti
		JOIN transactions tx ON tx.id = ti.transaction_id
		WHERE tx.store_id = @store_id
		  AND tx.status = 'COMPLETED'
		  AND tx.created_at >= @from AND tx.created_at < @to
	), 0) AS items_sold
FROM transactions t
WHERE t.store_id = @store_id
  AND t.status = 'COMPLETED'
  AND t.created_at >= @from AND t.created_at < @to`

type summaryRow struct {
	GrossSales       types.Money
	TransactionCount int64
	AverageSale      types.Money
	ItemsSold        int64
}

func (r *Repository) SalesSummary(ctx context.Context, storeID uuid.UUID, from, to time.Time) (*summaryRow, error) {
	var row summaryRow
	err := r.db.WithContext(ctx).
		Raw(salesSummaryQuery, map[string]any{"store_id": storeID, "from": from, "to": to}).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

const salesDailyQuery = `
SELECT
	date(t.created_at)               AS day,
	COALESCE(SUM(t.total_amount), 0) AS gross_sales,
	COUNT(*)                         AS transaction_count
FROM transactions t
WHERE t.store_id = @store_id
  AND t.status = 'COMPLETED'
  AND t.created_at >= @from AND t.created_at < @to
GROUP BY date(t.created_at)
ORDER BY day`

type dailyRow struct {
	Day              string
	GrossSales       types.Money
	TransactionCount int64
}

func (r *Repository) SalesDaily(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]dailyRow, error) {
	var rows []dailyRow
	err := r.db.WithContext(ctx).
		Raw(salesDailyQuery, map[string]any{"store_id": storeID, "from": from, "to": to}).
		Scan(&rows).Error
	return rows, err
}

const topProductsQuery = `
SELECT
	ti.product_id                AS product_id,
	ti.product_name              AS product_name,
	SUM(ti.quantity)             AS quantity_sold,
	COALESCE(SUM(ti.subtotal), 0) AS revenue
FROM transaction_items ti
JOIN transactions t ON t.id = ti.transaction_id
WHERE t.store_id = @store_id
  AND t.status = 'COMPLETED'
  AND t.created_at >= @from AND t.created_at < @to
GROUP BY ti.product_id, ti.product_name
ORDER BY quantity_sold DESC, revenue DESC
LIMIT @limit`

type topProductRow struct {
	ProductID    uuid.UUID
	ProductName  string
	QuantitySold int64
	Revenue      types.Money
}

func (r *Repository) TopProducts(ctx context.Context, storeID uuid.UUID, from, to time.Time, limit int) ([]topProductRow, error) {
	var rows []topProductRow
	err := r.db.WithContext(ctx).
		Raw(topProductsQuery, map[string]any{"store_id": storeID, "from": from, "to": to, "limit": limit}).
		Scan(&rows).Error
	return rows, err
}
