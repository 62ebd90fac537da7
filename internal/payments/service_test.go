package payments

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/billy17-netizen/posvougher-sub002/internal/transactions"
	"github.com/billy17-netizen/posvougher-sub002/pkg/db"
	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
	pkgerrors "github.com/billy17-netizen/posvougher-sub002/pkg/errors"
	"github.com/billy17-netizen/posvougher-sub002/pkg/midtrans"
	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

type fakeSnap struct {
	calls    []midtrans.SnapCreateParams
	failures []error
	token    string
	redirect string
}

func (f *fakeSnap) CreateSnapTransaction(_ context.Context, params midtrans.SnapCreateParams) (*midtrans.SnapTransaction, error) {
	f.calls = append(f.calls, params)
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		if err != nil {
			return nil, err
		}
	}
	return &midtrans.SnapTransaction{Token: f.token, RedirectURL: f.redirect}, nil
}

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
		`CREATE TABLE payment_references (
			id TEXT PRIMARY KEY,
			store_id TEXT NOT NULL,
			transaction_id TEXT NOT NULL UNIQUE,
			provider_order_id TEXT NOT NULL UNIQUE,
			created_at DATETIME,
			updated_at DATETIME
		)`,
	}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newTestService(t *testing.T, snap *fakeSnap) (Service, *Repository, *gorm.DB) {
	t.Helper()
	conn := openTestDB(t)
	refs := NewRepository(conn)
	svc, err := NewService(refs, transactions.NewRepository(conn), db.NewWithConn(conn), snap, nil)
	require.NoError(t, err)
	return svc, refs, conn
}

func seedGatewayTransaction(t *testing.T, conn *gorm.DB, total int64, status enums.TransactionStatus) *models.Transaction {
	t.Helper()
	txn := &models.Transaction{
		ID:            uuid.New(),
		StoreID:       uuid.New(),
		CashierID:     uuid.New(),
		TotalAmount:   types.MoneyFromInt(total),
		PaymentMethod: enums.PaymentMethodMidtrans,
		Status:        status,
		Items: []models.TransactionItem{
			{
				ID:          uuid.New(),
				ProductID:   uuid.New(),
				ProductName: "Es Kopi Susu",
				Quantity:    2,
				UnitPrice:   types.MoneyFromInt(total / 2),
				Subtotal:    types.MoneyFromInt(total),
			},
		},
	}
	require.NoError(t, conn.Create(txn).Error)
	return txn
}

func TestIssueTokenHappyPath(t *testing.T) {
	snap := &fakeSnap{token: "tok-1", redirect: "https://snap.example/pay"}
	svc, _, conn := newTestService(t, snap)
	txn := seedGatewayTransaction(t, conn, 36000, enums.TransactionStatusPending)

	dto, err := svc.IssueToken(context.Background(), txn.StoreID, txn.ID)
	require.NoError(t, err)
	require.Equal(t, "tok-1", dto.Token)
	require.Equal(t, "https://snap.example/pay", dto.RedirectURL)
	require.Equal(t, "POSV-"+txn.ID.String(), dto.OrderID)

	require.Len(t, snap.calls, 1)
	require.EqualValues(t, 36000, snap.calls[0].GrossAmount)

	var ref models.PaymentReference
	require.NoError(t, conn.First(&ref, "transaction_id = ?", txn.ID).Error)
	require.Equal(t, dto.OrderID, ref.ProviderOrderID)

	var reloaded models.Transaction
	require.NoError(t, conn.First(&reloaded, "id = ?", txn.ID).Error)
	require.NotNil(t, reloaded.SnapToken)
	require.Equal(t, "tok-1", *reloaded.SnapToken)
}

func TestIssueTokenIsIdempotentForPending(t *testing.T) {
	snap := &fakeSnap{token: "tok-1", redirect: "https://snap.example/pay"}
	svc, _, conn := newTestService(t, snap)
	txn := seedGatewayTransaction(t, conn, 36000, enums.TransactionStatusPending)

	first, err := svc.IssueToken(context.Background(), txn.StoreID, txn.ID)
	require.NoError(t, err)

	second, err := svc.IssueToken(context.Background(), txn.StoreID, txn.ID)
	require.NoError(t, err)
	require.Equal(t, first.Token, second.Token)
	require.Equal(t, first.OrderID, second.OrderID)
	require.Len(t, snap.calls, 1, "stored token must be reused without a provider call")
}

func TestIssueTokenAppendsTaxLineOnMismatch(t *testing.T) {
	snap := &fakeSnap{token: "tok-1"}
	svc, _, conn := newTestService(t, snap)

	// Items sum to 33000 but the register total includes 3630 of tax.
	txn := &models.Transaction{
		ID:            uuid.New(),
		StoreID:       uuid.New(),
		CashierID:     uuid.New(),
		TotalAmount:   types.MoneyFromInt(36630),
		PaymentMethod: enums.PaymentMethodMidtrans,
		Status:        enums.TransactionStatusPending,
		Items: []models.TransactionItem{
			{ID: uuid.New(), ProductID: uuid.New(), ProductName: "Kopi", Quantity: 3, UnitPrice: types.MoneyFromInt(11000), Subtotal: types.MoneyFromInt(33000)},
		},
	}
	require.NoError(t, conn.Create(txn).Error)

	_, err := svc.IssueToken(context.Background(), txn.StoreID, txn.ID)
	require.NoError(t, err)
	require.Len(t, snap.calls, 1)

	items := snap.calls[0].Items
	require.Len(t, items, 2)
	last := items[len(items)-1]
	require.Equal(t, "Tax", last.Name)
	require.EqualValues(t, 3630, last.Price)

	var sum int64
	for _, item := range items {
		sum += item.Price * int64(item.Qty)
	}
	require.EqualValues(t, 36630, sum)
}

func TestIssueTokenAmountValidation(t *testing.T) {
	snap := &fakeSnap{token: "tok-1"}
	svc, _, conn := newTestService(t, snap)

	cases := []struct {
		name  string
		total types.Money
	}{
		{"below minimum", types.MoneyFromInt(999)},
		{"above maximum", types.MoneyFromInt(5_000_001)},
		{"fractional", decimal.NewFromFloat(1500.50)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			txn := &models.Transaction{
				ID:            uuid.New(),
				StoreID:       uuid.New(),
				CashierID:     uuid.New(),
				TotalAmount:   tc.total,
				PaymentMethod: enums.PaymentMethodMidtrans,
				Status:        enums.TransactionStatusPending,
			}
			require.NoError(t, conn.Create(txn).Error)

			_, err := svc.IssueToken(context.Background(), txn.StoreID, txn.ID)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			require.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
	require.Empty(t, snap.calls)
}

func TestIssueTokenRejectsNonGatewayMethod(t *testing.T) {
	snap := &fakeSnap{token: "tok-1"}
	svc, _, conn := newTestService(t, snap)

	txn := &models.Transaction{
		ID:            uuid.New(),
		StoreID:       uuid.New(),
		CashierID:     uuid.New(),
		TotalAmount:   types.MoneyFromInt(36000),
		PaymentMethod: enums.PaymentMethodCash,
		Status:        enums.TransactionStatusPending,
	}
	require.NoError(t, conn.Create(txn).Error)

	_, err := svc.IssueToken(context.Background(), txn.StoreID, txn.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestIssueTokenRejectsSettledTransaction(t *testing.T) {
	snap := &fakeSnap{token: "tok-1"}
	svc, _, conn := newTestService(t, snap)
	txn := seedGatewayTransaction(t, conn, 36000, enums.TransactionStatusCompleted)

	_, err := svc.IssueToken(context.Background(), txn.StoreID, txn.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestIssueTokenResetsExpiredKeepingOrderID(t *testing.T) {
	snap := &fakeSnap{token: "tok-2", redirect: "https://snap.example/pay2"}
	svc, refs, conn := newTestService(t, snap)
	txn := seedGatewayTransaction(t, conn, 36000, enums.TransactionStatusExpired)

	stale := "tok-stale"
	require.NoError(t, conn.Model(&models.Transaction{}).Where("id = ?", txn.ID).UpdateColumn("snap_token", stale).Error)
	originalOrderID := "POSV-" + txn.ID.String()
	require.NoError(t, refs.Upsert(context.Background(), txn.StoreID, txn.ID, originalOrderID))

	dto, err := svc.IssueToken(context.Background(), txn.StoreID, txn.ID)
	require.NoError(t, err)
	require.Equal(t, "tok-2", dto.Token)
	require.Equal(t, originalOrderID, dto.OrderID, "expired reset keeps the provider order id")
	require.Len(t, snap.calls, 1)

	var reloaded models.Transaction
	require.NoError(t, conn.First(&reloaded, "id = ?", txn.ID).Error)
	require.Equal(t, enums.TransactionStatusPending, reloaded.Status)
}

func TestIssueTokenRetriesOnceOnTakenOrderID(t *testing.T) {
	snap := &fakeSnap{token: "tok-1", failures: []error{midtrans.ErrOrderIDTaken}}
	svc, _, conn := newTestService(t, snap)
	txn := seedGatewayTransaction(t, conn, 36000, enums.TransactionStatusPending)

	dto, err := svc.IssueToken(context.Background(), txn.StoreID, txn.ID)
	require.NoError(t, err)
	require.Len(t, snap.calls, 2)

	base := "POSV-" + txn.ID.String()
	require.NotEqual(t, base, dto.OrderID)
	require.True(t, strings.HasPrefix(dto.OrderID, base[:20]))
	require.LessOrEqual(t, len(dto.OrderID), midtrans.MaxOrderIDLen)

	var ref models.PaymentReference
	require.NoError(t, conn.First(&ref, "transaction_id = ?", txn.ID).Error)
	require.Equal(t, dto.OrderID, ref.ProviderOrderID)
}

func TestIssueTokenRetriesOnceOnTooLongOrderID(t *testing.T) {
	snap := &fakeSnap{token: "tok-1", failures: []error{midtrans.ErrOrderIDTooLong}}
	svc, _, conn := newTestService(t, snap)
	txn := seedGatewayTransaction(t, conn, 36000, enums.TransactionStatusPending)

	dto, err := svc.IssueToken(context.Background(), txn.StoreID, txn.ID)
	require.NoError(t, err)
	require.Len(t, snap.calls, 2)
	require.LessOrEqual(t, len(dto.OrderID), midtrans.MaxOrderIDLen)
}

func TestIssueTokenGivesUpAfterSecondFailure(t *testing.T) {
	snap := &fakeSnap{token: "tok-1", failures: []error{midtrans.ErrOrderIDTaken, midtrans.ErrOrderIDTaken}}
	svc, _, conn := newTestService(t, snap)
	txn := seedGatewayTransaction(t, conn, 36000, enums.TransactionStatusPending)

	_, err := svc.IssueToken(context.Background(), txn.StoreID, txn.ID)
	require.Error(t, err)
	require.Len(t, snap.calls, 2, "exactly one retry")
}

func TestOrderIDHelpers(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	id := uuid.New()
	orderID := orderIDForTransaction(id, now)
	require.Equal(t, "POSV-"+id.String(), orderID)
	require.LessOrEqual(t, len(orderID), midtrans.MaxOrderIDLen)

	long := strings.Repeat("x", 60)
	suffixed := withTimestampSuffix(long, now)
	require.LessOrEqual(t, len(suffixed), midtrans.MaxOrderIDLen)
	require.Contains(t, suffixed, "-")

	require.Len(t, hardTruncate(long), midtrans.MaxOrderIDLen)
	require.Equal(t, "short", hardTruncate("short"))
}
