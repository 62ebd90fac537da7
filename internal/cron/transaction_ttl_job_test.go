package cron

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/billy17-netizen/posvougher-sub002/internal/transactions"
	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
	"github.com/billy17-netizen/posvougher-sub002/pkg/logger"
	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`CREATE TABLE transactions (
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
	)`).Error)
	require.NoError(t, conn.Exec(`CREATE TABLE transaction_items (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		product_name TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price NUMERIC NOT NULL,
		subtotal NUMERIC NOT NULL,
		created_at DATETIME
	)`).Error)
	return conn
}

func seedTransaction(t *testing.T, conn *gorm.DB, method enums.PaymentMethod, status enums.TransactionStatus, age time.Duration) uuid.UUID {
	t.Helper()
	txn := &models.Transaction{
		ID:            uuid.New(),
		StoreID:       uuid.New(),
		CashierID:     uuid.New(),
		TotalAmount:   types.MoneyFromInt(25000),
		PaymentMethod: method,
		Status:        status,
		CreatedAt:     time.Now().UTC().Add(-age),
	}
	require.NoError(t, conn.Create(txn).Error)
	return txn.ID
}

func TestTransactionTTLJobExpiresOnlyStaleGatewayPending(t *testing.T) {
	conn := openTestDB(t)
	repo := transactions.NewRepository(conn)

	stale := seedTransaction(t, conn, enums.PaymentMethodMidtrans, enums.TransactionStatusPending, 30*time.Hour)
	fresh := seedTransaction(t, conn, enums.PaymentMethodMidtrans, enums.TransactionStatusPending, time.Hour)
	cash := seedTransaction(t, conn, enums.PaymentMethodCash, enums.TransactionStatusPending, 30*time.Hour)
	settled := seedTransaction(t, conn, enums.PaymentMethodMidtrans, enums.TransactionStatusCompleted, 30*time.Hour)

	job, err := NewTransactionTTLJob(TransactionTTLJobParams{
		Logger:       logger.New(logger.Options{ServiceName: "cron-test"}),
		Transactions: repo,
		PendingTTL:   24 * time.Hour,
	})
	require.NoError(t, err)
	require.Equal(t, "transaction-ttl", job.Name())
	require.NoError(t, job.Run(context.Background()))

	status := func(id uuid.UUID) enums.TransactionStatus {
		var txn models.Transaction
		require.NoError(t, conn.First(&txn, "id = ?", id).Error)
		return txn.Status
	}
	require.Equal(t, enums.TransactionStatusExpired, status(stale))
	require.Equal(t, enums.TransactionStatusPending, status(fresh))
	require.Equal(t, enums.TransactionStatusPending, status(cash))
	require.Equal(t, enums.TransactionStatusCompleted, status(settled))
}

func TestTransactionTTLJobIsIdempotent(t *testing.T) {
	conn := openTestDB(t)
	repo := transactions.NewRepository(conn)
	stale := seedTransaction(t, conn, enums.PaymentMethodMidtrans, enums.TransactionStatusPending, 48*time.Hour)

	job, err := NewTransactionTTLJob(TransactionTTLJobParams{
		Logger:       logger.New(logger.Options{ServiceName: "cron-test"}),
		Transactions: repo,
		PendingTTL:   24 * time.Hour,
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))

	var txn models.Transaction
	require.NoError(t, conn.First(&txn, "id = ?", stale).Error)
	require.Equal(t, enums.TransactionStatusExpired, txn.Status)
}

func TestNewTransactionTTLJobValidatesParams(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	repo := transactions.NewRepository(openTestDB(t))

	_, err := NewTransactionTTLJob(TransactionTTLJobParams{Transactions: repo, PendingTTL: time.Hour})
	require.Error(t, err)
	_, err = NewTransactionTTLJob(TransactionTTLJobParams{Logger: logg, PendingTTL: time.Hour})
	require.Error(t, err)
	_, err = NewTransactionTTLJob(TransactionTTLJobParams{Logger: logg, Transactions: repo})
	require.Error(t, err)
}
