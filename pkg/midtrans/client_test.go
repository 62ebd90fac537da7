package midtrans

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"testing"

	mt "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/rs/zerolog"

	pkgerrors "github.com/billy17-netizen/posvougher-sub002/pkg/errors"
	"github.com/billy17-netizen/posvougher-sub002/pkg/logger"
)

type fakeSnapAPI struct {
	resp *snap.Response
	err  *mt.Error
	got  *snap.Request
}

func (f *fakeSnapAPI) CreateTransaction(req *snap.Request) (*snap.Response, *mt.Error) {
	f.got = req
	return f.resp, f.err
}

type fakeCoreAPI struct {
	resp *coreapi.TransactionStatusResponse
	err  *mt.Error
}

func (f *fakeCoreAPI) CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, *mt.Error) {
	return f.resp, f.err
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

func TestCreateSnapTransactionSuccess(t *testing.T) {
	api := &fakeSnapAPI{resp: &snap.Response{Token: "tok-1", RedirectURL: "https://app.sandbox.midtrans.com/snap/v3/redirection/tok-1"}}
	c := &Client{snap: api, serverKey: "sk", environment: "sandbox", logger: testLogger(t)}

	got, err := c.CreateSnapTransaction(context.Background(), SnapCreateParams{
		OrderID:     "POSV-abc",
		GrossAmount: 15000,
		Items: []SnapItem{
			{ID: "p1", Name: "Kopi Susu", Price: 7500, Qty: 2},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Token != "tok-1" || got.RedirectURL == "" {
		t.Fatalf("unexpected snap transaction %+v", got)
	}
	if api.got.TransactionDetails.OrderID != "POSV-abc" {
		t.Fatalf("order id not forwarded: %s", api.got.TransactionDetails.OrderID)
	}
	if api.got.TransactionDetails.GrossAmt != 15000 {
		t.Fatalf("gross amount not forwarded: %d", api.got.TransactionDetails.GrossAmt)
	}
	if api.got.Items == nil || len(*api.got.Items) != 1 {
		t.Fatal("items not forwarded")
	}
}

func TestCreateSnapTransactionOrderIDTaken(t *testing.T) {
	api := &fakeSnapAPI{err: &mt.Error{
		Message:    "midtrans error",
		StatusCode: http.StatusBadRequest,
		RawError:   errors.New("transaction_details.order_id sudah digunakan"),
	}}
	c := &Client{snap: api, serverKey: "sk", environment: "sandbox", logger: testLogger(t)}

	_, err := c.CreateSnapTransaction(context.Background(), SnapCreateParams{OrderID: "POSV-dup", GrossAmount: 1000})
	if !errors.Is(err, ErrOrderIDTaken) {
		t.Fatalf("expected ErrOrderIDTaken, got %v", err)
	}
}

func TestCreateSnapTransactionOrderIDTooLong(t *testing.T) {
	api := &fakeSnapAPI{err: &mt.Error{
		Message:    "validation error: order_id too long",
		StatusCode: http.StatusBadRequest,
	}}
	c := &Client{snap: api, serverKey: "sk", environment: "sandbox", logger: testLogger(t)}

	_, err := c.CreateSnapTransaction(context.Background(), SnapCreateParams{OrderID: "POSV-long", GrossAmount: 1000})
	if !errors.Is(err, ErrOrderIDTooLong) {
		t.Fatalf("expected ErrOrderIDTooLong, got %v", err)
	}
}

func TestCreateSnapTransactionMapsProviderCodes(t *testing.T) {
	api := &fakeSnapAPI{err: &mt.Error{
		Message:    "unauthorized",
		StatusCode: http.StatusUnauthorized,
	}}
	c := &Client{snap: api, serverKey: "sk", environment: "sandbox", logger: testLogger(t)}

	_, err := c.CreateSnapTransaction(context.Background(), SnapCreateParams{OrderID: "POSV-x", GrossAmount: 1000})
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %s", typed.Code())
	}
}

func TestCheckTransaction(t *testing.T) {
	api := &fakeCoreAPI{resp: &coreapi.TransactionStatusResponse{
		OrderID:           "POSV-abc",
		TransactionStatus: "settlement",
	}}
	c := &Client{core: api, serverKey: "sk", environment: "sandbox", logger: testLogger(t)}

	resp, err := c.CheckTransaction(context.Background(), "POSV-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TransactionStatus != "settlement" {
		t.Fatalf("unexpected status %s", resp.TransactionStatus)
	}
}

func TestVerifySignature(t *testing.T) {
	c := &Client{serverKey: "server-key"}

	sum := sha512.Sum512([]byte("POSV-abc" + "200" + "15000.00" + "server-key"))
	valid := hex.EncodeToString(sum[:])

	if !c.VerifySignature("POSV-abc", "200", "15000.00", valid) {
		t.Fatal("expected valid signature to verify")
	}
	if c.VerifySignature("POSV-abc", "200", "15000.00", "deadbeef") {
		t.Fatal("expected invalid signature to fail")
	}
	if c.VerifySignature("POSV-other", "200", "15000.00", valid) {
		t.Fatal("signature must bind the order id")
	}
}

func TestDomainCodeForStatus(t *testing.T) {
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusForbidden, pkgerrors.CodeForbidden},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusConflict, pkgerrors.CodeConflict},
		{http.StatusTooManyRequests, pkgerrors.CodeRateLimit},
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusTeapot, pkgerrors.CodeValidation},
		{http.StatusInternalServerError, pkgerrors.CodeDependency},
	}
	for _, tt := range tests {
		if got := domainCodeForStatus(tt.status); got != tt.code {
			t.Fatalf("status %d expected %s got %s", tt.status, tt.code, got)
		}
	}
}

func TestRedact(t *testing.T) {
	c := &Client{}
	if out := c.redact("snap_token", "abc123"); out != "[REDACTED]" {
		t.Fatalf("expected redacted value, got %v", out)
	}
	if v := c.redact("status", "ok"); v != "ok" {
		t.Fatalf("unexpected redaction for safe key")
	}
}

func TestTruncateItemName(t *testing.T) {
	long := "Nasi Goreng Spesial Pakai Telur Mata Sapi Dan Kerupuk Udang Extra"
	if got := truncateItemName(long); len(got) != 50 {
		t.Fatalf("expected 50 chars, got %d", len(got))
	}
	if got := truncateItemName("Teh Manis"); got != "Teh Manis" {
		t.Fatalf("short names must pass through, got %q", got)
	}
}
