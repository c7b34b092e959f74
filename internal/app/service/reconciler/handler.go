package reconciler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/lintasnet/paygate/internal/app/service/gateway"
	"github.com/lintasnet/paygate/internal/app/service/ledger"
	"github.com/lintasnet/paygate/internal/app/service/webhooklog"
	"github.com/lintasnet/paygate/internal/models"
	"github.com/lintasnet/paygate/pkg/logctx"
	"github.com/lintasnet/paygate/pkg/metrics"
	"github.com/lintasnet/paygate/pkg/types"
)

// Processor is the webhook entry point the HTTP layer depends on.
type Processor interface {
	Process(ctx context.Context, gw types.PaymentProvider, payload []byte, header http.Header) (*types.WebhookResult, error)
}

// ledgerStore is the slice of the ledger the reconciler moves money through.
type ledgerStore interface {
	FindPendingByOrderID(ctx context.Context, gateway types.PaymentProvider, orderID string) (*models.PaymentTransaction, error)
	FindPending(ctx context.Context, invoiceID string) (*models.PaymentTransaction, error)
	InvoiceByNumber(ctx context.Context, number string) (*models.Invoice, error)
	SettlePaid(ctx context.Context, txID, invoiceID, gatewayRef string, paidAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, txID string) (bool, error)
}

// auditLog is the append-only webhook record.
type auditLog interface {
	Record(ctx context.Context, gateway string, payload []byte, headers map[string][]string) (*models.WebhookLog, error)
	MarkVerified(ctx context.Context, id, orderRef string)
	SaveResult(ctx context.Context, id string, result map[string]any)
}

// Handler applies provider callbacks to the ledger. Providers deliver
// at-least-once, so every transition here must be a no-op on repeat input;
// the ledger's conditional updates carry that guarantee.
type Handler struct {
	log    *zap.SugaredLogger
	mgr    gateway.Orchestrator
	ledger ledgerStore
	whlog  auditLog
}

func NewHandler(log *zap.SugaredLogger, mgr gateway.Orchestrator, led *ledger.Service, whlog *webhooklog.Service) *Handler {
	return &Handler{log: log, mgr: mgr, ledger: led, whlog: whlog}
}

// Process runs the full reconciliation pipeline:
// audit log -> verify+normalize -> resolve transaction -> idempotent apply.
// An unknown or non-pending transaction is a logged no-op, never an error:
// duplicate and late delivery is expected provider behavior.
func (h *Handler) Process(ctx context.Context, gw types.PaymentProvider, payload []byte, header http.Header) (*types.WebhookResult, error) {
	log := logctx.FromCtx(ctx, h.log)

	entry, err := h.whlog.Record(ctx, string(gw), payload, header)
	if err != nil {
		return nil, err
	}

	result, err := h.mgr.HandleWebhook(ctx, gw, payload, header)
	if err != nil {
		metrics.WebhooksRejected.WithLabelValues(string(gw)).Inc()
		h.whlog.SaveResult(ctx, entry.ID, map[string]any{"error": err.Error()})
		return nil, err
	}
	h.whlog.MarkVerified(ctx, entry.ID, result.OrderID)

	applied, txID, err := h.apply(ctx, result)
	outcome := map[string]any{
		"order_id": result.OrderID,
		"status":   string(result.Status),
		"applied":  applied,
	}
	if txID != "" {
		outcome["transaction_id"] = txID
	}
	if err != nil {
		outcome["error"] = err.Error()
		h.whlog.SaveResult(ctx, entry.ID, outcome)
		return nil, err
	}
	h.whlog.SaveResult(ctx, entry.ID, outcome)
	metrics.WebhooksProcessed.WithLabelValues(string(gw), string(result.Status)).Inc()

	log.Infow("webhook processed",
		"gateway", gw, "order_id", result.OrderID, "status", result.Status, "applied", applied)
	return result, nil
}

func (h *Handler) apply(ctx context.Context, result *types.WebhookResult) (applied bool, txID string, err error) {
	log := logctx.FromCtx(ctx, h.log)

	tx, err := h.resolveTransaction(ctx, result)
	if err != nil {
		return false, "", err
	}
	if tx == nil {
		// Expired/cleaned-up record, or a retry after the transition already
		// happened. Answer success so the provider stops retrying.
		log.Warnw("webhook for unknown or non-pending transaction dropped",
			"gateway", result.Gateway, "order_id", result.OrderID)
		return false, "", nil
	}

	switch result.Status {
	case types.WebhookStatusSuccess:
		applied, err = h.ledger.SettlePaid(ctx, tx.ID, tx.InvoiceID, result.Reference, time.Now())
	case types.WebhookStatusFailed:
		applied, err = h.ledger.MarkFailed(ctx, tx.ID)
	default:
		// Still pending upstream; nothing to move.
		return false, tx.ID, nil
	}
	if err != nil {
		return false, tx.ID, err
	}
	if !applied {
		log.Warnw("webhook transition already applied, ignoring",
			"transaction_id", tx.ID, "status", result.Status)
	}
	return applied, tx.ID, nil
}

// resolveTransaction maps the provider order reference to the most recent
// pending transaction: directly by order id first, then via the INV-<number>
// convention against the invoice.
func (h *Handler) resolveTransaction(ctx context.Context, result *types.WebhookResult) (*models.PaymentTransaction, error) {
	tx, err := h.ledger.FindPendingByOrderID(ctx, result.Gateway, result.OrderID)
	if err != nil || tx != nil {
		return tx, err
	}

	number := strings.TrimPrefix(result.OrderID, "INV-")
	if number == result.OrderID {
		return nil, nil
	}
	inv, err := h.ledger.InvoiceByNumber(ctx, number)
	if err != nil || inv == nil {
		return nil, err
	}
	tx, err = h.ledger.FindPending(ctx, inv.ID)
	if err != nil || tx == nil {
		return tx, err
	}
	if tx.Gateway != result.Gateway {
		// The open attempt belongs to another provider. A stale callback
		// must not settle it.
		return nil, nil
	}
	return tx, nil
}

var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Provide(func(h *Handler) Processor { return h }),
)

var _ Processor = (*Handler)(nil)
