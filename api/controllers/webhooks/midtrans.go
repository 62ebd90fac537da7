package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/billy17-netizen/posvougher-sub002/api/responses"
	midtranswebhook "github.com/billy17-netizen/posvougher-sub002/internal/webhooks/midtrans"
	pkgerrors "github.com/billy17-netizen/posvougher-sub002/pkg/errors"
	"github.com/billy17-netizen/posvougher-sub002/pkg/logger"
)

// maxNotificationBytes bounds the payload size accepted from the provider.
const maxNotificationBytes = 1 << 20

type MidtransWebhookService interface {
	HandleNotification(ctx context.Context, note *midtranswebhook.Notification) (*midtranswebhook.Result, error)
}

// MidtransWebhook receives payment status notifications from Midtrans.
// Signature checks and replay protection live in the service; this layer
// only decodes the payload and shapes the response.
func MidtransWebhook(svc MidtransWebhookService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationBytes))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		var note midtranswebhook.Notification
		if err := json.Unmarshal(payload, &note); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode notification"))
			return
		}

		result, err := svc.HandleNotification(ctx, &note)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			lctx := logg.WithFields(ctx, map[string]any{
				"order_id": note.OrderID,
				"status":   result.Status,
				"applied":  result.Applied,
			})
			logg.Info(lctx, "midtrans notification processed")
		}
		responses.WriteSuccess(w, result)
	}
}
