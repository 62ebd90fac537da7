package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics counts payment notification outcomes by provider status.
type WebhookMetrics struct {
	processed   *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	sigMismatch prometheus.Counter
}

// NewWebhookMetrics registers the webhook counters on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_notifications_processed",
		Help: "Payment notifications applied, by resulting transaction status.",
	}, []string{"status"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_notifications_rejected",
		Help: "Payment notifications rejected before reconciliation, by reason.",
	}, []string{"reason"})
	sigMismatch := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_signature_mismatch",
		Help: "Notifications whose SHA-512 signature failed verification.",
	})
	reg.MustRegister(processed, rejected, sigMismatch)
	return &WebhookMetrics{
		processed:   processed,
		rejected:    rejected,
		sigMismatch: sigMismatch,
	}
}

// IncProcessed records a notification that reached a terminal reconciliation.
func (w *WebhookMetrics) IncProcessed(status string) {
	if w == nil || w.processed == nil {
		return
	}
	w.processed.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncRejected records a notification dropped before mutating anything.
func (w *WebhookMetrics) IncRejected(reason string) {
	if w == nil || w.rejected == nil {
		return
	}
	w.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncSignatureMismatch records a signature verification failure.
func (w *WebhookMetrics) IncSignatureMismatch() {
	if w == nil || w.sigMismatch == nil {
		return
	}
	w.sigMismatch.Inc()
}
