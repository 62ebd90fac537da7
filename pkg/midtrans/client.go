package midtrans

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	mt "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/billy17-netizen/posvougher-sub002/pkg/config"
	pkgerrors "github.com/billy17-netizen/posvougher-sub002/pkg/errors"
	"github.com/billy17-netizen/posvougher-sub002/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"

	// MaxOrderIDLen is the provider limit on order identifiers.
	MaxOrderIDLen = 50
)

var (
	errServerKeyRequired  = errors.New("midtrans server key is required")
	errInvalidMidtransEnv = fmt.Errorf("midtrans environment must be %q or %q", sandboxEnv, productionEnv)
	errLoggerRequired     = errors.New("midtrans logger is required")

	// ErrOrderIDTaken signals the provider rejected a duplicate order id.
	ErrOrderIDTaken = errors.New("order id already taken")
	// ErrOrderIDTooLong signals the provider rejected an oversized order id.
	ErrOrderIDTooLong = errors.New("order id too long")
)

type snapAPI interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *mt.Error)
}

type coreAPI interface {
	CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, *mt.Error)
}

// Client exposes Midtrans Snap/Core primitives with centralized logging,
// signature verification, and error mapping.
type Client struct {
	snap        snapAPI
	core        coreAPI
	serverKey   string
	environment string
	logger      *logger.Logger
}

// NewClient initializes the Midtrans wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.MidtransConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	serverKey := strings.TrimSpace(cfg.ServerKey)
	if serverKey == "" {
		return nil, errServerKeyRequired
	}

	envType := mt.Sandbox
	if env == productionEnv {
		envType = mt.Production
	}

	var snapClient snap.Client
	snapClient.New(serverKey, envType)
	var coreClient coreapi.Client
	coreClient.New(serverKey, envType)

	c := &Client{
		snap:        &snapClient,
		core:        &coreClient,
		serverKey:   serverKey,
		environment: env,
		logger:      logg,
	}

	logg.Info(ctx, "midtrans client initialized")
	return c, nil
}

// Environment reports the normalized Midtrans environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// CreateSnapTransaction opens a hosted payment page and returns its handle.
func (c *Client) CreateSnapTransaction(ctx context.Context, params SnapCreateParams) (*SnapTransaction, error) {
	c.log(ctx, "request", "create_snap_transaction", map[string]any{
		"order_id":     params.OrderID,
		"gross_amount": params.GrossAmount,
		"items":        len(params.Items),
	})

	resp, mtErr := c.snap.CreateTransaction(params.toSnapRequest())
	if mtErr != nil {
		c.log(ctx, "error", "create_snap_transaction", map[string]any{"error": mtErr.Error()})
		return nil, c.mapProviderError(mtErr, "create snap transaction")
	}

	c.log(ctx, "response", "create_snap_transaction", map[string]any{"order_id": params.OrderID})
	return &SnapTransaction{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// CheckTransaction fetches the current provider status for an order id.
func (c *Client) CheckTransaction(ctx context.Context, orderID string) (*coreapi.TransactionStatusResponse, error) {
	c.log(ctx, "request", "check_transaction", map[string]any{"order_id": orderID})

	resp, mtErr := c.core.CheckTransaction(orderID)
	if mtErr != nil {
		c.log(ctx, "error", "check_transaction", map[string]any{"error": mtErr.Error()})
		return nil, c.mapProviderError(mtErr, "check transaction")
	}

	c.log(ctx, "response", "check_transaction", map[string]any{
		"order_id": orderID,
		"status":   resp.TransactionStatus,
	})
	return resp, nil
}

// VerifySignature checks the SHA-512 notification signature computed over
// orderID + statusCode + grossAmount + serverKey.
func (c *Client) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	if c == nil || c.serverKey == "" {
		return false
	}
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + c.serverKey))
	expected := hex.EncodeToString(sum[:])
	provided := strings.ToLower(strings.TrimSpace(signatureKey))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("midtrans %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("midtrans %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "key", "secret", "email", "phone", "card"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func (c *Client) mapProviderError(mtErr *mt.Error, op string) error {
	if mtErr == nil {
		return nil
	}

	message := strings.ToLower(mtErr.Message)
	if raw := mtErr.GetRawError(); raw != nil {
		message += " " + strings.ToLower(raw.Error())
	}
	if strings.Contains(message, "sudah digunakan") || strings.Contains(message, "already taken") {
		return fmt.Errorf("midtrans %s: %w", op, ErrOrderIDTaken)
	}
	if strings.Contains(message, "too long") {
		return fmt.Errorf("midtrans %s: %w", op, ErrOrderIDTooLong)
	}

	code := domainCodeForStatus(mtErr.StatusCode)
	return pkgerrors.Wrap(code, mtErr, fmt.Sprintf("midtrans %s failed", op))
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, productionEnv:
		return env, nil
	default:
		return "", errInvalidMidtransEnv
	}
}
