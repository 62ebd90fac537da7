package midtranswebhook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billy17-netizen/posvougher-sub002/internal/payments"
	"github.com/billy17-netizen/posvougher-sub002/internal/products"
	"github.com/billy17-netizen/posvougher-sub002/internal/transactions"
	"github.com/billy17-netizen/posvougher-sub002/pkg/db"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
	pkgerrors "github.com/billy17-netizen/posvougher-sub002/pkg/errors"
	"github.com/billy17-netizen/posvougher-sub002/pkg/logger"
	"github.com/billy17-netizen/posvougher-sub002/pkg/metrics"
	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

type signatureVerifier interface {
	VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool
}

// Notification is the payment status payload Midtrans posts to the webhook.
type Notification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionTime   string `json:"transaction_time"`
}

// Result describes what reconciliation did with a notification.
type Result struct {
	TransactionID uuid.UUID               `json:"transactionId"`
	Status        enums.TransactionStatus `json:"status"`
	Applied       bool                    `json:"applied"`
}

type ServiceParams struct {
	Refs            *payments.Repository
	Transactions    *transactions.Repository
	Products        *products.Repository
	DBClient        *db.Client
	Verifier        signatureVerifier
	Metrics         *metrics.WebhookMetrics
	Logger          *logger.Logger
	StrictSignature bool
}

type Service struct {
	refs         *payments.Repository
	transactions *transactions.Repository
	products     *products.Repository
	dbClient     *db.Client
	verifier     signatureVerifier
	metrics      *metrics.WebhookMetrics
	logg         *logger.Logger
	strict       bool
	now          func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Refs == nil {
		return nil, fmt.Errorf("payment reference repository required")
	}
	if params.Transactions == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.DBClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Verifier == nil {
		return nil, fmt.Errorf("signature verifier required")
	}
	return &Service{
		refs:         params.Refs,
		transactions: params.Transactions,
		products:     params.Products,
		dbClient:     params.DBClient,
		verifier:     params.Verifier,
		metrics:      params.Metrics,
		logg:         params.Logger,
		strict:       params.StrictSignature,
		now:          time.Now,
	}, nil
}

// HandleNotification reconciles a provider status change against the local
// transaction. Unknown order ids mutate nothing, and a transaction that has
// already left PENDING is never touched again.
func (s *Service) HandleNotification(ctx context.Context, notification *Notification) (*Result, error) {
	if notification == nil || strings.TrimSpace(notification.OrderID) == "" {
		s.metrics.IncRejected("missing_order_id")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	if !s.verifier.VerifySignature(notification.OrderID, notification.StatusCode, notification.GrossAmount, notification.SignatureKey) {
		s.metrics.IncSignatureMismatch()
		if s.strict {
			s.metrics.IncRejected("signature_mismatch")
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature")
		}
		s.warn(ctx, "webhook.signature.mismatch", map[string]any{"order_id": notification.OrderID})
	}

	ref, err := s.refs.FindByProviderOrderID(ctx, notification.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncRejected("unknown_order")
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no transaction for this order id")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve payment reference")
	}

	target, ok := targetStatus(notification.TransactionStatus, notification.FraudStatus)
	if !ok {
		// Intermediate provider states leave the transaction as is.
		return &Result{TransactionID: ref.TransactionID, Status: enums.TransactionStatusPending, Applied: false}, nil
	}

	result := &Result{TransactionID: ref.TransactionID, Status: target}
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txnRepo := s.transactions.WithTx(tx)

		txn, err := txnRepo.FindByIDAny(ctx, ref.TransactionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
		}

		var amountPaid *types.Money
		var paidAt *time.Time
		if target == enums.TransactionStatusCompleted {
			paid := txn.TotalAmount
			at := s.now().UTC()
			amountPaid = &paid
			paidAt = &at
		}

		affected, err := txnRepo.TransitionFromPending(ctx, ref.TransactionID, target, amountPaid, paidAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition transaction")
		}
		if affected == 0 {
			// Replayed or out-of-order notification for a settled transaction.
			result.Applied = false
			result.Status = txn.Status
			return nil
		}
		result.Applied = true

		if target == enums.TransactionStatusCompleted {
			productRepo := s.products.WithTx(tx)
			for _, item := range txn.Items {
				rows, err := productRepo.DecrementStock(ctx, item.ProductID, item.Quantity)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
				}
				if rows == 0 {
					return pkgerrors.New(pkgerrors.CodeStateConflict,
						fmt.Sprintf("insufficient stock for product %s", item.ProductID))
				}
			}
		}
		return nil
	})
	if txErr != nil {
		s.metrics.IncRejected("reconcile_failed")
		return nil, txErr
	}

	if result.Applied {
		s.metrics.IncProcessed(string(result.Status))
	}
	return result, nil
}

// targetStatus maps a provider transaction status to the local terminal
// status it implies. The second return is false for intermediate states.
func targetStatus(transactionStatus, fraudStatus string) (enums.TransactionStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(transactionStatus)) {
	case "capture":
		if fs := strings.ToLower(strings.TrimSpace(fraudStatus)); fs != "" && fs != "accept" {
			return "", false
		}
		return enums.TransactionStatusCompleted, true
	case "settlement":
		return enums.TransactionStatusCompleted, true
	case "deny", "cancel":
		return enums.TransactionStatusCancelled, true
	case "expire":
		return enums.TransactionStatusExpired, true
	default:
		return "", false
	}
}

func (s *Service) warn(ctx context.Context, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, fields)
	s.logg.Warn(ctx, msg)
}
