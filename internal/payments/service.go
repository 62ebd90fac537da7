package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billy17-netizen/posvougher-sub002/internal/transactions"
	"github.com/billy17-netizen/posvougher-sub002/pkg/db"
	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
	pkgerrors "github.com/billy17-netizen/posvougher-sub002/pkg/errors"
	"github.com/billy17-netizen/posvougher-sub002/pkg/logger"
	"github.com/billy17-netizen/posvougher-sub002/pkg/midtrans"
	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

const (
	orderIDPrefix = "POSV-"

	// Provider limits on the gross amount of a hosted payment page.
	minGatewayAmount = 1_000
	maxGatewayAmount = 5_000_000
)

type snapCreator interface {
	CreateSnapTransaction(ctx context.Context, params midtrans.SnapCreateParams) (*midtrans.SnapTransaction, error)
}

// TokenDTO is the handle the cashier frontend needs to open the payment page.
type TokenDTO struct {
	TransactionID uuid.UUID `json:"transactionId"`
	OrderID       string    `json:"orderId"`
	Token         string    `json:"token"`
	RedirectURL   string    `json:"redirectUrl"`
}

// Service obtains Snap tokens for gateway transactions.
type Service interface {
	IssueToken(ctx context.Context, storeID, transactionID uuid.UUID) (*TokenDTO, error)
}

type service struct {
	refs         *Repository
	transactions *transactions.Repository
	dbClient     *db.Client
	snap         snapCreator
	logg         *logger.Logger
	now          func() time.Time
}

// NewService constructs the payment gateway adapter.
func NewService(refs *Repository, transactionsRepo *transactions.Repository, dbClient *db.Client, snap snapCreator, logg *logger.Logger) (Service, error) {
	if refs == nil {
		return nil, fmt.Errorf("payment reference repository required")
	}
	if transactionsRepo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if snap == nil {
		return nil, fmt.Errorf("snap client required")
	}
	return &service{
		refs:         refs,
		transactions: transactionsRepo,
		dbClient:     dbClient,
		snap:         snap,
		logg:         logg,
		now:          time.Now,
	}, nil
}

func (s *service) IssueToken(ctx context.Context, storeID, transactionID uuid.UUID) (*TokenDTO, error) {
	txn, err := s.transactions.FindByID(ctx, storeID, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}

	if !txn.PaymentMethod.UsesGateway() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction does not settle through the payment gateway")
	}

	switch txn.Status {
	case enums.TransactionStatusCompleted, enums.TransactionStatusCancelled:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction already settled")
	case enums.TransactionStatusExpired:
		// An expired page gets a fresh token under the same provider order id.
		if _, err := s.transactions.ResetExpiredToPending(ctx, transactionID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset expired transaction")
		}
		txn.Status = enums.TransactionStatusPending
		txn.SnapToken = nil
	}

	existingRef, err := s.refs.FindByTransactionID(ctx, transactionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment reference")
	}

	if txn.SnapToken != nil && *txn.SnapToken != "" && existingRef != nil {
		dto := &TokenDTO{
			TransactionID: txn.ID,
			OrderID:       existingRef.ProviderOrderID,
			Token:         *txn.SnapToken,
		}
		if txn.RedirectURL != nil {
			dto.RedirectURL = *txn.RedirectURL
		}
		return dto, nil
	}

	gross, err := gatewayAmount(txn.TotalAmount)
	if err != nil {
		return nil, err
	}

	orderID := orderIDForTransaction(txn.ID, s.now())
	if existingRef != nil {
		orderID = existingRef.ProviderOrderID
	}

	params := midtrans.SnapCreateParams{
		OrderID:     orderID,
		GrossAmount: gross,
		Items:       snapItems(txn.Items, gross),
	}

	snapTxn, err := s.snap.CreateSnapTransaction(ctx, params)
	if err != nil {
		orderID, snapTxn, err = s.retryOnce(ctx, params, err)
		if err != nil {
			return nil, err
		}
	}

	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.transactions.WithTx(tx).SetSnapToken(ctx, txn.ID, snapTxn.Token, snapTxn.RedirectURL); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store snap token")
		}
		if err := s.refs.WithTx(tx).Upsert(ctx, txn.StoreID, txn.ID, orderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store payment reference")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &TokenDTO{
		TransactionID: txn.ID,
		OrderID:       orderID,
		Token:         snapTxn.Token,
		RedirectURL:   snapTxn.RedirectURL,
	}, nil
}

// retryOnce handles the two provider rejections that merit exactly one retry:
// a duplicate order id gets a timestamp suffix, an oversized one is
// hard-truncated to the provider limit.
func (s *service) retryOnce(ctx context.Context, params midtrans.SnapCreateParams, cause error) (string, *midtrans.SnapTransaction, error) {
	switch {
	case errors.Is(cause, midtrans.ErrOrderIDTaken):
		params.OrderID = withTimestampSuffix(params.OrderID, s.now())
	case errors.Is(cause, midtrans.ErrOrderIDTooLong):
		params.OrderID = hardTruncate(params.OrderID)
	default:
		return "", nil, cause
	}

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"order_id": params.OrderID,
			"cause":    cause.Error(),
		})
		s.logg.Warn(ctx, "payments.snap.retry")
	}

	snapTxn, err := s.snap.CreateSnapTransaction(ctx, params)
	if err != nil {
		return "", nil, err
	}
	return params.OrderID, snapTxn, nil
}

func gatewayAmount(total types.Money) (int64, error) {
	if !types.IsWholeUnit(total) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "gateway amount must be a whole rupiah value")
	}
	gross := types.WholeUnits(total)
	if gross < minGatewayAmount {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("gateway amount must be at least %d", minGatewayAmount))
	}
	if gross > maxGatewayAmount {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("gateway amount must be at most %d", maxGatewayAmount))
	}
	return gross, nil
}

// snapItems converts receipt lines for the provider, clamping price and
// quantity to at least one. When the clamped line sum differs from the gross
// amount a synthetic Tax line keeps the provider total exact.
func snapItems(items []models.TransactionItem, gross int64) []midtrans.SnapItem {
	out := make([]midtrans.SnapItem, 0, len(items)+1)
	var sum int64
	for _, item := range items {
		price := types.WholeUnits(item.UnitPrice)
		if price < 1 {
			price = 1
		}
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		out = append(out, midtrans.SnapItem{
			ID:    item.ProductID.String(),
			Name:  item.ProductName,
			Price: price,
			Qty:   int32(qty),
		})
		sum += price * int64(qty)
	}

	if diff := gross - sum; diff != 0 {
		out = append(out, midtrans.SnapItem{
			ID:    "tax",
			Name:  "Tax",
			Price: diff,
			Qty:   1,
		})
	}
	return out
}

func orderIDForTransaction(transactionID uuid.UUID, now time.Time) string {
	orderID := orderIDPrefix + transactionID.String()
	if len(orderID) <= midtrans.MaxOrderIDLen {
		return orderID
	}
	// Oversized ids keep a prefix and a timestamp fragment so they stay unique.
	fragment := strconv.FormatInt(now.Unix(), 36)
	keep := midtrans.MaxOrderIDLen - len(fragment) - 1
	return orderID[:keep] + "-" + fragment
}

func withTimestampSuffix(orderID string, now time.Time) string {
	suffix := "-" + strconv.FormatInt(now.Unix(), 36)
	if len(orderID)+len(suffix) > midtrans.MaxOrderIDLen {
		orderID = orderID[:midtrans.MaxOrderIDLen-len(suffix)]
	}
	return orderID + suffix
}

func hardTruncate(orderID string) string {
	if len(orderID) <= midtrans.MaxOrderIDLen {
		return orderID
	}
	return orderID[:midtrans.MaxOrderIDLen]
}
