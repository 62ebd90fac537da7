package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/billy17-netizen/posvougher-sub002/pkg/errors"
	"github.com/billy17-netizen/posvougher-sub002/pkg/types"
)

const (
	defaultRangeDays = 30
	defaultTopLimit  = 10
	maxTopLimit      = 50
	maxRangeDays     = 366
	dayDuration      = 24 * time.Hour
)

// SalesSummaryDTO aggregates completed sales over a date range.
type SalesSummaryDTO struct {
	From             string      `json:"from"`
	To               string      `json:"to"`
	GrossSales       types.Money `json:"grossSales"`
	TransactionCount int64       `json:"transactionCount"`
	AverageSale      types.Money `json:"averageSale"`
	ItemsSold        int64       `json:"itemsSold"`
}

// DailySalesDTO is one day of completed sales.
type DailySalesDTO struct {
	Day              string      `json:"day"`
	GrossSales       types.Money `json:"grossSales"`
	TransactionCount int64       `json:"transactionCount"`
}

// TopProductDTO ranks a product by units sold in the range.
type TopProductDTO struct {
	ProductID    uuid.UUID   `json:"productId"`
	ProductName  string      `json:"productName"`
	QuantitySold int64       `json:"quantitySold"`
	Revenue      types.Money `json:"revenue"`
}

// Range is an optional [From, To] date filter, inclusive on both ends.
type Range struct {
	From *time.Time
	To   *time.Time
}

// Service serves the sales reporting endpoints.
type Service interface {
	SalesSummary(ctx context.Context, storeID uuid.UUID, dateRange Range) (*SalesSummaryDTO, error)
	SalesDaily(ctx context.Context, storeID uuid.UUID, dateRange Range) ([]DailySalesDTO, error)
	TopProducts(ctx context.Context, storeID uuid.UUID, dateRange Range, limit int) ([]TopProductDTO, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("report repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) SalesSummary(ctx context.Context, storeID uuid.UUID, dateRange Range) (*SalesSummaryDTO, error) {
	from, to, err := s.resolveRange(dateRange)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.SalesSummary(ctx, storeID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate sales summary")
	}

	return &SalesSummaryDTO{
		From:             from.Format("2006-01-02"),
		To:               to.Add(-dayDuration).Format("2006-01-02"),
		GrossSales:       row.GrossSales,
		TransactionCount: row.TransactionCount,
		AverageSale:      row.AverageSale.Round(2),
		ItemsSold:        row.ItemsSold,
	}, nil
}

func (s *service) SalesDaily(ctx context.Context, storeID uuid.UUID, dateRange Range) ([]DailySalesDTO, error) {
	from, to, err := s.resolveRange(dateRange)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.SalesDaily(ctx, storeID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate daily sales")
	}

	out := make([]DailySalesDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, DailySalesDTO{
			Day:              row.Day,
			GrossSales:       row.GrossSales,
			TransactionCount: row.TransactionCount,
		})
	}
	return out, nil
}

func (s *service) TopProducts(ctx context.Context, storeID uuid.UUID, dateRange Range, limit int) ([]TopProductDTO, error) {
	from, to, err := s.resolveRange(dateRange)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}

	rows, err := s.repo.TopProducts(ctx, storeID, from, to, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate top products")
	}

	out := make([]TopProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, TopProductDTO{
			ProductID:    row.ProductID,
			ProductName:  row.ProductName,
			QuantitySold: row.QuantitySold,
			Revenue:      row.Revenue,
		})
	}
	return out, nil
}

// resolveRange normalizes the inclusive date filter to a half-open UTC
// interval. A missing From defaults to 30 days back, a missing To to today.
func (s *service) resolveRange(dateRange Range) (time.Time, time.Time, error) {
	today := s.now().UTC().Truncate(dayDuration)

	to := today
	if dateRange.To != nil {
		to = dateRange.To.UTC().Truncate(dayDuration)
	}
	from := to.AddDate(0, 0, -(defaultRangeDays - 1))
	if dateRange.From != nil {
		from = dateRange.From.UTC().Truncate(dayDuration)
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to")
	}
	if to.Sub(from) > time.Duration(maxRangeDays)*dayDuration {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("date range is limited to %d days", maxRangeDays))
	}

	// To is inclusive, the queries take a half-open upper bound.
	return from, to.Add(dayDuration), nil
}
