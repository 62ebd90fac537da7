package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/billy17-netizen/posvougher-sub002/pkg/db/models"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
	"github.com/billy17-netizen/posvougher-sub002/pkg/logger"
	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

const staleBatchSize = 100

type staleTransactionRepo interface {
	ListStalePendingGateway(ctx context.Context, cutoff time.Time, limit int) ([]models.Transaction, error)
	TransitionFromPending(ctx context.Context, id uuid.UUID, target enums.TransactionStatus, amountPaid *types.Money, paidAt *time.Time) (int64, error)
}

// TransactionTTLJobParams configure the stale gateway transaction sweeper.
type TransactionTTLJobParams struct {
	Logger       *logger.Logger
	Transactions staleTransactionRepo
	PendingTTL   time.Duration
}

// NewTransactionTTLJob builds the job that expires gateway transactions whose
// payment page was never completed. The provider eventually sends an expire
// notification for most of them; this sweep covers the ones it never does.
func NewTransactionTTLJob(params TransactionTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Transactions == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if params.PendingTTL <= 0 {
		return nil, fmt.Errorf("pending ttl must be positive")
	}
	return &transactionTTLJob{
		logg:         params.Logger,
		transactions: params.Transactions,
		pendingTTL:   params.PendingTTL,
		now:          time.Now,
	}, nil
}

type transactionTTLJob struct {
	logg         *logger.Logger
	transactions staleTransactionRepo
	pendingTTL   time.Duration
	now          func() time.Time
}

func (j *transactionTTLJob) Name() string { return "transaction-ttl" }

func (j *transactionTTLJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.pendingTTL)

	var expired int
	var errs []error
	for {
		stale, err := j.transactions.ListStalePendingGateway(ctx, cutoff, staleBatchSize)
		if err != nil {
			errs = append(errs, fmt.Errorf("list stale transactions: %w", err))
			break
		}
		if len(stale) == 0 {
			break
		}

		progressed := false
		for _, txn := range stale {
			affected, err := j.transactions.TransitionFromPending(ctx, txn.ID, enums.TransactionStatusExpired, nil, nil)
			if err != nil {
				errs = append(errs, fmt.Errorf("expire transaction %s: %w", txn.ID, err))
				continue
			}
			// Zero rows means a webhook settled it between list and update.
			if affected > 0 {
				expired++
				progressed = true
			}
		}
		if !progressed || len(stale) < staleBatchSize {
			break
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"expired": expired, "cutoff": cutoff})
	j.logg.Info(logCtx, "stale transaction sweep complete")
	return multierr.Combine(errs...)
}
