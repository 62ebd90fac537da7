package transactions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billy17-netizen/posvougher-sub002/internal/products"
	"github.com/billy17-netizen/posvougher-sub002/pkg/db"
	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
	pkgerrors "github.com/billy17-netizen/posvougher-sub002/pkg/errors"
	"github.com/billy17-netizen/posvougher-sub002/pkg/pagination"
	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

// ItemInput is one requested receipt line.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice types.Money
}

// CreateTransactionInput holds the validated checkout payload.
type CreateTransactionInput struct {
	Items         []ItemInput
	TotalAmount   types.Money
	AmountPaid    types.Money
	PaymentMethod enums.PaymentMethod
}

// ListTransactionsInput narrows and pages the store's sales history.
type ListTransactionsInput struct {
	StoreID    uuid.UUID
	Filter     ListFilter
	Pagination pagination.Params
}

// Service persists sales atomically and serves the sales history.
type Service interface {
	Create(ctx context.Context, storeID, cashierID uuid.UUID, input CreateTransactionInput) (*TransactionDTO, error)
	Get(ctx context.Context, storeID, id uuid.UUID) (*TransactionDTO, error)
	List(ctx context.Context, input ListTransactionsInput) (*TransactionListResult, error)
}

type service struct {
	repo     *Repository
	products *products.Repository
	dbClient *db.Client
}

// NewService constructs the transaction writer service.
func NewService(repo *Repository, productsRepo *products.Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, products: productsRepo, dbClient: dbClient}, nil
}

func (s *service) Create(ctx context.Context, storeID, cashierID uuid.UUID, input CreateTransactionInput) (*TransactionDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if cashierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cashier is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction needs at least one item")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if input.TotalAmount.IsZero() || input.TotalAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total amount must be positive")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product is required")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item price cannot be negative")
		}
	}

	amountPaid, change, err := settleAmounts(input.PaymentMethod, input.TotalAmount, input.AmountPaid)
	if err != nil {
		return nil, err
	}

	var created *models.Transaction
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		productIDs := make([]uuid.UUID, 0, len(input.Items))
		for _, item := range input.Items {
			productIDs = append(productIDs, item.ProductID)
		}

		rows, err := s.products.WithTx(tx).FindActiveByIDs(ctx, storeID, productIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
		}
		byID := make(map[uuid.UUID]models.Product, len(rows))
		for _, row := range rows {
			byID[row.ID] = row
		}

		var missing []string
		items := make([]models.TransactionItem, 0, len(input.Items))
		for _, item := range input.Items {
			product, ok := byID[item.ProductID]
			if !ok {
				missing = append(missing, item.ProductID.String())
				continue
			}
			items = append(items, models.TransactionItem{
				ID:          uuid.New(),
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Subtotal:    item.UnitPrice.Mul(types.MoneyFromInt(int64(item.Quantity))),
			})
		}
		if len(missing) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				"products not available in this store: "+strings.Join(missing, ", "))
		}

		transaction := &models.Transaction{
			ID:            uuid.New(),
			StoreID:       storeID,
			CashierID:     cashierID,
			TotalAmount:   input.TotalAmount,
			AmountPaid:    amountPaid,
			ChangeAmount:  change,
			PaymentMethod: input.PaymentMethod,
			Status:        enums.TransactionStatusPending,
			Items:         items,
		}

		created, err = s.repo.WithTx(tx).Create(ctx, transaction)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transaction")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, storeID, id uuid.UUID) (*TransactionDTO, error) {
	transaction, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return FromModel(transaction), nil
}

func (s *service) List(ctx context.Context, input ListTransactionsInput) (*TransactionListResult, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListByStore(ctx, input.StoreID, input.Filter, cursor, input.Pagination.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	page := pagination.BuildPage(rows, input.Pagination.Limit, func(t models.Transaction) pagination.Cursor {
		return pagination.Cursor{CreatedAt: t.CreatedAt, ID: t.ID}
	})

	items := make([]TransactionDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *FromModel(&page.Items[i]))
	}
	return &TransactionListResult{Items: items, NextCursor: page.NextCursor}, nil
}

// settleAmounts derives amount paid and change for the chosen method. Cash
// takes what the customer handed over; instant methods settle exactly;
// gateway payments are unpaid until the provider confirms.
func settleAmounts(method enums.PaymentMethod, total, paid types.Money) (types.Money, types.Money, error) {
	zero := types.MoneyFromInt(0)
	switch {
	case method == enums.PaymentMethodCash:
		if paid.LessThan(total) {
			return zero, zero, pkgerrors.New(pkgerrors.CodeValidation, "amount paid is less than the total")
		}
		return paid, paid.Sub(total), nil
	case method.UsesGateway():
		return zero, zero, nil
	default:
		// Debit, credit, and QRIS settle at the register for the exact total.
		return total, zero, nil
	}
}
