package reconciler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lintasnet/paygate/internal/app/service/gateway"
	"github.com/lintasnet/paygate/internal/models"
	"github.com/lintasnet/paygate/pkg/types"
)

// stubOrchestrator only implements HandleWebhook; the embedded interface
// covers the rest of the surface the handler never touches.
type stubOrchestrator struct {
	gateway.Orchestrator
	result *types.WebhookResult
	err    error
}

func (s *stubOrchestrator) HandleWebhook(ctx context.Context, gw types.PaymentProvider, payload []byte, header http.Header) (*types.WebhookResult, error) {
	return s.result, s.err
}

type stubLedger struct {
	byOrderID map[string]*models.PaymentTransaction
	invoices  map[string]*models.Invoice
	pending   map[string]*models.PaymentTransaction

	settleApplied bool
	settledTx     string
	settledRef    string
	failedTx      string
}

func (s *stubLedger) FindPendingByOrderID(ctx context.Context, gw types.PaymentProvider, orderID string) (*models.PaymentTransaction, error) {
	return s.byOrderID[orderID], nil
}

func (s *stubLedger) FindPending(ctx context.Context, invoiceID string) (*models.PaymentTransaction, error) {
	return s.pending[invoiceID], nil
}

func (s *stubLedger) InvoiceByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	return s.invoices[number], nil
}

func (s *stubLedger) SettlePaid(ctx context.Context, txID, invoiceID, gatewayRef string, paidAt time.Time) (bool, error) {
	s.settledTx = txID
	s.settledRef = gatewayRef
	return s.settleApplied, nil
}

func (s *stubLedger) MarkFailed(ctx context.Context, txID string) (bool, error) {
	s.failedTx = txID
	return true, nil
}

type stubAudit struct {
	recorded    bool
	verifiedRef string
	results     []map[string]any
}

func (s *stubAudit) Record(ctx context.Context, gw string, payload []byte, headers map[string][]string) (*models.WebhookLog, error) {
	s.recorded = true
	return &models.WebhookLog{ID: "wh-1", Gateway: gw}, nil
}

func (s *stubAudit) MarkVerified(ctx context.Context, id, orderRef string) { s.verifiedRef = orderRef }

func (s *stubAudit) SaveResult(ctx context.Context, id string, result map[string]any) {
	s.results = append(s.results, result)
}

func newTestHandler(orch *stubOrchestrator, led *stubLedger, audit *stubAudit) *Handler {
	return &Handler{log: zap.NewNop().Sugar(), mgr: orch, ledger: led, whlog: audit}
}

func webhookResult(status types.WebhookStatus) *types.WebhookResult {
	return &types.WebhookResult{
		Gateway:   types.PaymentProviderTripay,
		OrderID:   "INV-1001",
		Status:    status,
		Amount:    150000,
		Reference: "T0001-REF",
	}
}

func TestProcessSettlesPaidWebhook(t *testing.T) {
	led := &stubLedger{
		byOrderID: map[string]*models.PaymentTransaction{
			"INV-1001": {ID: "tx-1", InvoiceID: "inv-1", Status: models.TransactionStatusPending},
		},
		settleApplied: true,
	}
	audit := &stubAudit{}
	h := newTestHandler(&stubOrchestrator{result: webhookResult(types.WebhookStatusSuccess)}, led, audit)

	res, err := h.Process(context.Background(), types.PaymentProviderTripay, []byte("{}"), http.Header{})
	require.NoError(t, err)
	require.Equal(t, types.WebhookStatusSuccess, res.Status)
	require.Equal(t, "tx-1", led.settledTx)
	require.Equal(t, "T0001-REF", led.settledRef)
	require.True(t, audit.recorded)
	require.Equal(t, "INV-1001", audit.verifiedRef)
	require.Len(t, audit.results, 1)
	require.Equal(t, true, audit.results[0]["applied"])
}

func TestProcessRedeliveryIsNoOp(t *testing.T) {
	// The conditional update matches zero rows on the second delivery; the
	// handler still answers success so the provider stops retrying.
	led := &stubLedger{
		byOrderID: map[string]*models.PaymentTransaction{
			"INV-1001": {ID: "tx-1", InvoiceID: "inv-1", Status: models.TransactionStatusPending},
		},
		settleApplied: false,
	}
	audit := &stubAudit{}
	h := newTestHandler(&stubOrchestrator{result: webhookResult(types.WebhookStatusSuccess)}, led, audit)

	_, err := h.Process(context.Background(), types.PaymentProviderTripay, []byte("{}"), http.Header{})
	require.NoError(t, err)
	require.Len(t, audit.results, 1)
	require.Equal(t, false, audit.results[0]["applied"])
}

func TestProcessUnknownTransaction(t *testing.T) {
	led := &stubLedger{byOrderID: map[string]*models.PaymentTransaction{}}
	audit := &stubAudit{}
	h := newTestHandler(&stubOrchestrator{result: webhookResult(types.WebhookStatusSuccess)}, led, audit)

	_, err := h.Process(context.Background(), types.PaymentProviderTripay, []byte("{}"), http.Header{})
	require.NoError(t, err)
	require.Empty(t, led.settledTx)
}

func TestProcessResolvesViaInvoiceNumber(t *testing.T) {
	// Caller-supplied order ids miss the direct lookup; the INV- prefix leads
	// back through the invoice.
	led := &stubLedger{
		byOrderID:     map[string]*models.PaymentTransaction{},
		invoices:      map[string]*models.Invoice{"1001": {ID: "inv-1", Number: "1001"}},
		pending:       map[string]*models.PaymentTransaction{"inv-1": {ID: "tx-9", InvoiceID: "inv-1", Gateway: types.PaymentProviderTripay, Status: models.TransactionStatusPending}},
		settleApplied: true,
	}
	audit := &stubAudit{}
	h := newTestHandler(&stubOrchestrator{result: webhookResult(types.WebhookStatusSuccess)}, led, audit)

	_, err := h.Process(context.Background(), types.PaymentProviderTripay, []byte("{}"), http.Header{})
	require.NoError(t, err)
	require.Equal(t, "tx-9", led.settledTx)
}

func TestProcessIgnoresPendingTransactionOnOtherGateway(t *testing.T) {
	// A stale callback resolving through the invoice number must not settle
	// an attempt opened with a different provider.
	led := &stubLedger{
		byOrderID:     map[string]*models.PaymentTransaction{},
		invoices:      map[string]*models.Invoice{"1001": {ID: "inv-1", Number: "1001"}},
		pending:       map[string]*models.PaymentTransaction{"inv-1": {ID: "tx-midtrans", InvoiceID: "inv-1", Gateway: types.PaymentProviderMidtrans, Status: models.TransactionStatusPending}},
		settleApplied: true,
	}
	audit := &stubAudit{}
	h := newTestHandler(&stubOrchestrator{result: webhookResult(types.WebhookStatusSuccess)}, led, audit)

	_, err := h.Process(context.Background(), types.PaymentProviderTripay, []byte("{}"), http.Header{})
	require.NoError(t, err)
	require.Empty(t, led.settledTx)
	require.Empty(t, led.failedTx)
	require.Len(t, audit.results, 1)
	require.Equal(t, false, audit.results[0]["applied"])
}

func TestProcessFailedWebhookMarksFailed(t *testing.T) {
	led := &stubLedger{
		byOrderID: map[string]*models.PaymentTransaction{
			"INV-1001": {ID: "tx-1", InvoiceID: "inv-1", Status: models.TransactionStatusPending},
		},
	}
	audit := &stubAudit{}
	h := newTestHandler(&stubOrchestrator{result: webhookResult(types.WebhookStatusFailed)}, led, audit)

	_, err := h.Process(context.Background(), types.PaymentProviderTripay, []byte("{}"), http.Header{})
	require.NoError(t, err)
	require.Equal(t, "tx-1", led.failedTx)
	require.Empty(t, led.settledTx)
}

func TestProcessPendingWebhookMovesNothing(t *testing.T) {
	led := &stubLedger{
		byOrderID: map[string]*models.PaymentTransaction{
			"INV-1001": {ID: "tx-1", InvoiceID: "inv-1", Status: models.TransactionStatusPending},
		},
	}
	audit := &stubAudit{}
	h := newTestHandler(&stubOrchestrator{result: webhookResult(types.WebhookStatusPending)}, led, audit)

	_, err := h.Process(context.Background(), types.PaymentProviderTripay, []byte("{}"), http.Header{})
	require.NoError(t, err)
	require.Empty(t, led.settledTx)
	require.Empty(t, led.failedTx)
}

func TestProcessRejectedSignatureSurfaces(t *testing.T) {
	led := &stubLedger{}
	audit := &stubAudit{}
	h := newTestHandler(&stubOrchestrator{err: gateway.ErrInvalidSignature}, led, audit)

	_, err := h.Process(context.Background(), types.PaymentProviderMidtrans, []byte("{}"), http.Header{})
	require.ErrorIs(t, err, gateway.ErrInvalidSignature)
	// the raw delivery is still on record
	require.True(t, audit.recorded)
	require.Empty(t, audit.verifiedRef)
}
