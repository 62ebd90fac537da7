package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/billy17-netizen/posvougher-sub002/api/middleware"
	"github.com/billy17-netizen/posvougher-sub002/internal/payments"
	"github.com/billy17-netizen/posvougher-sub002/internal/transactions"
	"github.com/billy17-netizen/posvougher-sub002/pkg/logger"
)

type stubTransactionService struct {
	created *transactions.TransactionDTO
	listed  *transactions.TransactionListResult
	lastIn  transactions.CreateTransactionInput
	calls   int
	err     error
}

func (s *stubTransactionService) Create(_ context.Context, _, _ uuid.UUID, input transactions.CreateTransactionInput) (*transactions.TransactionDTO, error) {
	s.calls++
	s.lastIn = input
	if s.err != nil {
		return nil, s.err
	}
	return s.created, nil
}

func (s *stubTransactionService) Get(_ context.Context, _, _ uuid.UUID) (*transactions.TransactionDTO, error) {
	return s.created, s.err
}

func (s *stubTransactionService) List(_ context.Context, _ transactions.ListTransactionsInput) (*transactions.TransactionListResult, error) {
	return s.listed, s.err
}

type stubPaymentService struct {
	token *payments.TokenDTO
	calls int
	err   error
}

func (s *stubPaymentService) IssueToken(_ context.Context, _, _ uuid.UUID) (*payments.TokenDTO, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.token, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func authedContext(storeID, userID uuid.UUID) context.Context {
	ctx := middleware.WithStoreID(context.Background(), storeID.String())
	return middleware.WithUserID(ctx, userID.String())
}

func TestTransactionCreate(t *testing.T) {
	logg := testLogger()
	storeID := uuid.New()
	userID := uuid.New()
	productID := uuid.New()

	body := `{
		"items": [{"productId": "` + productID.String() + `", "quantity": 2, "unitPrice": 8000}],
		"totalAmount": 16000,
		"amountPaid": 20000,
		"paymentMethod": "cash"
	}`

	t.Run("success", func(t *testing.T) {
		stub := &stubTransactionService{created: &transactions.TransactionDTO{ID: uuid.New()}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
		req = req.WithContext(authedContext(storeID, userID))
		rec := httptest.NewRecorder()
		TransactionCreate(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
		}
		if stub.calls != 1 {
			t.Fatalf("expected one create call, got %d", stub.calls)
		}
		if len(stub.lastIn.Items) != 1 || stub.lastIn.Items[0].Quantity != 2 {
			t.Fatalf("unexpected items payload: %+v", stub.lastIn.Items)
		}
	})

	t.Run("unknown payment method", func(t *testing.T) {
		stub := &stubTransactionService{}
		payload := strings.Replace(body, `"cash"`, `"barter"`, 1)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(payload))
		req = req.WithContext(authedContext(storeID, userID))
		rec := httptest.NewRecorder()
		TransactionCreate(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if stub.calls != 0 {
			t.Fatalf("service should not be called for invalid method")
		}
	})

	t.Run("empty items rejected", func(t *testing.T) {
		stub := &stubTransactionService{}
		payload := `{"items": [], "totalAmount": 0, "paymentMethod": "cash"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(payload))
		req = req.WithContext(authedContext(storeID, userID))
		rec := httptest.NewRecorder()
		TransactionCreate(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing store context", func(t *testing.T) {
		stub := &stubTransactionService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
		req = req.WithContext(middleware.WithUserID(context.Background(), userID.String()))
		rec := httptest.NewRecorder()
		TransactionCreate(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}

func TestTransactionListFilterParsing(t *testing.T) {
	logg := testLogger()
	storeID := uuid.New()
	userID := uuid.New()

	t.Run("invalid status filter", func(t *testing.T) {
		stub := &stubTransactionService{}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?status=BROKEN", nil)
		req = req.WithContext(authedContext(storeID, userID))
		rec := httptest.NewRecorder()
		TransactionList(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("full filter accepted", func(t *testing.T) {
		stub := &stubTransactionService{listed: &transactions.TransactionListResult{}}
		target := "/api/v1/transactions?status=COMPLETED&paymentMethod=midtrans&from=2026-08-01&to=2026-08-31&limit=10"
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req = req.WithContext(authedContext(storeID, userID))
		rec := httptest.NewRecorder()
		TransactionList(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
	})
}

func TestTransactionToken(t *testing.T) {
	logg := testLogger()
	storeID := uuid.New()
	userID := uuid.New()
	txnID := uuid.New()

	t.Run("success", func(t *testing.T) {
		stub := &stubPaymentService{token: &payments.TokenDTO{TransactionID: txnID, Token: "snap-token"}}
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("transactionId", txnID.String())
		ctx := context.WithValue(authedContext(storeID, userID), chi.RouteCtxKey, routeCtx)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/"+txnID.String()+"/token", nil)
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		TransactionToken(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if stub.calls != 1 {
			t.Fatalf("expected one token call, got %d", stub.calls)
		}
	})

	t.Run("invalid transaction id", func(t *testing.T) {
		stub := &stubPaymentService{}
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("transactionId", "not-a-uuid")
		ctx := context.WithValue(authedContext(storeID, userID), chi.RouteCtxKey, routeCtx)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/not-a-uuid/token", nil)
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		TransactionToken(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if stub.calls != 0 {
			t.Fatalf("service should not be called for invalid id")
		}
	})
}
