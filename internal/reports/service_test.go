package reports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
	pkgerrors "github.com/billy17-netizen/posvougher-sub002/pkg/errors"
	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE transactions (
			id TEXT PRIMARY KEY,
			store_id TEXT NOT NULL,
			cashier_id TEXT NOT NULL,
			total_amount NUMERIC NOT NULL,
			amount_paid NUMERIC NOT NULL DEFAULT 0,
			change_amount NUMERIC NOT NULL DEFAULT 0,
			payment_method TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'PENDING',
			snap_token TEXT,
			redirect_url TEXT,
			paid_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE transaction_items (
			id TEXT PRIMARY KEY,
			transaction_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			product_name TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price NUMERIC NOT NULL,
			subtotal NUMERIC NOT NULL,
			created_at DATETIME
		)`,
	}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type seedSale struct {
	total     int64
	status    enums.TransactionStatus
	createdAt time.Time
	items     []seedItem
}

type seedItem struct {
	productID uuid.UUID
	name      string
	qty       int
	unitPrice int64
}

func seedSales(t *testing.T, conn *gorm.DB, storeID uuid.UUID, sales []seedSale) {
	t.Helper()
	for _, sale := range sales {
		txn := &models.Transaction{
			ID:            uuid.New(),
			StoreID:       storeID,
			CashierID:     uuid.New(),
			TotalAmount:   types.MoneyFromInt(sale.total),
			PaymentMethod: enums.PaymentMethodCash,
			Status:        sale.status,
			CreatedAt:     sale.createdAt,
		}
		for _, item := range sale.items {
			txn.Items = append(txn.Items, models.TransactionItem{
				ID:          uuid.New(),
				ProductID:   item.productID,
				ProductName: item.name,
				Quantity:    item.qty,
				UnitPrice:   types.MoneyFromInt(item.unitPrice),
				Subtotal:    types.MoneyFromInt(item.unitPrice * int64(item.qty)),
			})
		}
		require.NoError(t, conn.Create(txn).Error)
	}
}

func dateRange(from, to string) Range {
	parse := func(value string) *time.Time {
		parsed, err := time.Parse("2006-01-02", value)
		if err != nil {
			panic(err)
		}
		return &parsed
	}
	return Range{From: parse(from), To: parse(to)}
}

func TestSalesSummaryCountsOnlyCompletedSalesInRange(t *testing.T) {
	conn := openTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	storeID := uuid.New()
	kopi := uuid.New()
	day := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	seedSales(t, conn, storeID, []seedSale{
		{total: 30000, status: enums.TransactionStatusCompleted, createdAt: day,
			items: []seedItem{{productID: kopi, name: "Kopi", qty: 2, unitPrice: 15000}}},
		{total: 20000, status: enums.TransactionStatusCompleted, createdAt: day.Add(3 * time.Hour),
			items: []seedItem{{productID: kopi, name: "Kopi", qty: 1, unitPrice: 20000}}},
		{total: 99000, status: enums.TransactionStatusPending, createdAt: day},
		{total: 50000, status: enums.TransactionStatusCancelled, createdAt: day},
		{total: 70000, status: enums.TransactionStatusCompleted, createdAt: day.AddDate(0, 0, -20)},
	})
	// A different store on the same day must never leak in.
	seedSales(t, conn, uuid.New(), []seedSale{
		{total: 88000, status: enums.TransactionStatusCompleted, createdAt: day},
	})

	summary, err := svc.SalesSummary(context.Background(), storeID, dateRange("2026-08-10", "2026-08-10"))
	require.NoError(t, err)
	require.True(t, summary.GrossSales.Equal(types.MoneyFromInt(50000)))
	require.EqualValues(t, 2, summary.TransactionCount)
	require.True(t, summary.AverageSale.Equal(types.MoneyFromInt(25000)))
	require.EqualValues(t, 3, summary.ItemsSold)
	require.Equal(t, "2026-08-10", summary.From)
	require.Equal(t, "2026-08-10", summary.To)
}

func TestSalesDailyGroupsByDay(t *testing.T) {
	conn := openTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	storeID := uuid.New()
	seedSales(t, conn, storeID, []seedSale{
		{total: 10000, status: enums.TransactionStatusCompleted, createdAt: time.Date(2026, 8, 10, 8, 0, 0, 0, time.UTC)},
		{total: 15000, status: enums.TransactionStatusCompleted, createdAt: time.Date(2026, 8, 10, 19, 0, 0, 0, time.UTC)},
		{total: 20000, status: enums.TransactionStatusCompleted, createdAt: time.Date(2026, 8, 12, 12, 0, 0, 0, time.UTC)},
		{total: 42000, status: enums.TransactionStatusExpired, createdAt: time.Date(2026, 8, 11, 12, 0, 0, 0, time.UTC)},
	})

	rows, err := svc.SalesDaily(context.Background(), storeID, dateRange("2026-08-10", "2026-08-12"))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, "2026-08-10", rows[0].Day)
	require.True(t, rows[0].GrossSales.Equal(types.MoneyFromInt(25000)))
	require.EqualValues(t, 2, rows[0].TransactionCount)

	require.Equal(t, "2026-08-12", rows[1].Day)
	require.EqualValues(t, 1, rows[1].TransactionCount)
}

func TestTopProductsRanksByQuantity(t *testing.T) {
	conn := openTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	storeID := uuid.New()
	kopi := uuid.New()
	teh := uuid.New()
	roti := uuid.New()
	day := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	seedSales(t, conn, storeID, []seedSale{
		{total: 60000, status: enums.TransactionStatusCompleted, createdAt: day, items: []seedItem{
			{productID: kopi, name: "Kopi", qty: 2, unitPrice: 15000},
			{productID: teh, name: "Teh", qty: 3, unitPrice: 10000},
		}},
		{total: 45000, status: enums.TransactionStatusCompleted, createdAt: day, items: []seedItem{
			{productID: kopi, name: "Kopi", qty: 3, unitPrice: 15000},
		}},
		// Pending sales never count toward the ranking.
		{total: 80000, status: enums.TransactionStatusPending, createdAt: day, items: []seedItem{
			{productID: roti, name: "Roti", qty: 8, unitPrice: 10000},
		}},
	})

	rows, err := svc.TopProducts(context.Background(), storeID, dateRange("2026-08-10", "2026-08-10"), 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, kopi, rows[0].ProductID)
	require.EqualValues(t, 5, rows[0].QuantitySold)
	require.True(t, rows[0].Revenue.Equal(types.MoneyFromInt(75000)))

	require.Equal(t, teh, rows[1].ProductID)
	require.EqualValues(t, 3, rows[1].QuantitySold)

	limited, err := svc.TopProducts(context.Background(), storeID, dateRange("2026-08-10", "2026-08-10"), 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, kopi, limited[0].ProductID)
}

func TestRangeValidation(t *testing.T) {
	conn := openTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	_, err = svc.SalesSummary(context.Background(), uuid.New(), dateRange("2026-08-12", "2026-08-10"))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	_, err = svc.SalesDaily(context.Background(), uuid.New(), Range{From: &from, To: &to})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestSummaryDefaultsToTrailingThirtyDays(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	svc := &service{repo: repo, now: func() time.Time {
		return time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)
	}}

	storeID := uuid.New()
	seedSales(t, conn, storeID, []seedSale{
		{total: 10000, status: enums.TransactionStatusCompleted, createdAt: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)},
		{total: 20000, status: enums.TransactionStatusCompleted, createdAt: time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)},
		{total: 99000, status: enums.TransactionStatusCompleted, createdAt: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)},
	})

	summary, err := svc.SalesSummary(context.Background(), storeID, Range{})
	require.NoError(t, err)
	require.EqualValues(t, 2, summary.TransactionCount)
	require.True(t, summary.GrossSales.Equal(types.MoneyFromInt(30000)))
	require.Equal(t, "2026-08-02", summary.From)
	require.Equal(t, "2026-08-31", summary.To)
}
