package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lintasnet/paygate/internal/app/service/ledger"
	"github.com/lintasnet/paygate/internal/app/service/settings"
	"github.com/lintasnet/paygate/internal/models"
	"github.com/lintasnet/paygate/pkg/config"
	"github.com/lintasnet/paygate/pkg/logctx"
	"github.com/lintasnet/paygate/pkg/metrics"
	"github.com/lintasnet/paygate/pkg/types"
)

// CreatePaymentResponse pairs the ledger row with the provider result. When a
// pending transaction already existed for the invoice, Existing is true and
// the result is rebuilt from the stored provider response.
type CreatePaymentResponse struct {
	Transaction *models.PaymentTransaction `json:"transaction"`
	Result      *types.PaymentResult       `json:"result"`
	Existing    bool                       `json:"existing"`
}

// GatewayStatus is one row of the status endpoint.
type GatewayStatus struct {
	Gateway     types.PaymentProvider `json:"gateway"`
	Enabled     bool                  `json:"enabled"`
	Initialized bool                  `json:"initialized"`
	Mode        types.GatewayMode     `json:"mode"`
	Active      bool                  `json:"active"`
}

// Orchestrator is the public surface of the gateway manager; handlers depend
// on this, not the concrete Manager.
type Orchestrator interface {
	CreatePayment(ctx context.Context, invoiceID string, gw types.PaymentProvider) (*CreatePaymentResponse, error)
	CreatePaymentWithMethod(ctx context.Context, invoiceID string, gw types.PaymentProvider, method, paymentType string) (*CreatePaymentResponse, error)
	HandleWebhook(ctx context.Context, gw types.PaymentProvider, payload []byte, header http.Header) (*types.WebhookResult, error)
	AvailablePaymentMethods(ctx context.Context, amount int64) ([]*types.PaymentMethod, error)
	Status(ctx context.Context) ([]GatewayStatus, error)
	DumpChannels(ctx context.Context, gw types.PaymentProvider) (json.RawMessage, error)
	Reload(ctx context.Context)
}

// Registry is the immutable result of one initialization pass.
type Registry struct {
	adapters map[types.PaymentProvider]Adapter
	configs  map[types.PaymentProvider]*GatewayConfig
	active   types.PaymentProvider
}

func (r *Registry) Adapter(p types.PaymentProvider) (Adapter, bool) {
	a, ok := r.adapters[p]
	return a, ok
}

// Manager builds and owns the adapter registry. Initialization is lazy and
// single-flight: the first caller builds, concurrent early callers wait on
// the same sync.Once. Reload swaps in a fresh state and warms it in the
// background; in-flight requests keep the old registry, which is the
// eventually-consistent behavior we want.
type Manager struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	settings *settings.Service
	ledger   *ledger.Service

	mu sync.Mutex
	st *registryState

	// buildFn is swapped in tests.
	buildFn func(ctx context.Context) (*Registry, error)
}

type registryState struct {
	once sync.Once
	reg  *Registry
	err  error
}

func NewManager(cfg *config.Config, log *zap.SugaredLogger, set *settings.Service, led *ledger.Service) *Manager {
	m := &Manager{cfg: cfg, log: log, settings: set, ledger: led, st: &registryState{}}
	m.buildFn = m.buildRegistry
	return m
}

func (m *Manager) registry(ctx context.Context) (*Registry, error) {
	m.mu.Lock()
	st := m.st
	m.mu.Unlock()
	st.once.Do(func() {
		st.reg, st.err = m.buildFn(ctx)
	})
	return st.reg, st.err
}

// Reload discards the current registry and rebuilds asynchronously. Callers
// racing the rebuild either get the fresh registry or trigger the build
// themselves through the new sync.Once.
func (m *Manager) Reload(ctx context.Context) {
	m.mu.Lock()
	st := &registryState{}
	m.st = st
	m.mu.Unlock()

	go st.once.Do(func() {
		st.reg, st.err = m.buildFn(context.WithoutCancel(ctx))
		if st.err != nil {
			m.log.Errorw("gateway registry reload failed", "err", st.err)
		}
	})
}

// buildRegistry reads the settings store and constructs every enabled adapter.
// A single misconfigured provider is logged and skipped so it cannot take the
// others down; the Manual adapter is always constructed.
func (m *Manager) buildRegistry(ctx context.Context) (*Registry, error) {
	rows, err := m.settings.All(ctx)
	if err != nil {
		return nil, err
	}

	configs := make(map[types.PaymentProvider]*GatewayConfig, len(rows))
	for _, row := range rows {
		if row.Gateway == models.ActiveGatewayKey {
			continue
		}
		cfg, err := configFromSetting(row)
		if err != nil {
			m.log.Warnw("skipping malformed gateway setting", "gateway", row.Gateway, "err", err)
			continue
		}
		configs[cfg.Provider] = cfg
	}

	reg := &Registry{
		adapters: make(map[types.PaymentProvider]Adapter),
		configs:  configs,
	}
	for provider, cfg := range configs {
		if !cfg.Enabled || provider == types.PaymentProviderManual {
			continue
		}
		adapter, err := m.buildAdapter(cfg)
		if err != nil {
			// Construction failure is a configuration error, not a
			// startup failure.
			m.log.Errorw("gateway adapter construction failed",
				"gateway", provider, "err", err)
			continue
		}
		reg.adapters[provider] = adapter
	}

	manualCfg := configs[types.PaymentProviderManual]
	reg.adapters[types.PaymentProviderManual] = NewManualAdapter(manualCfg, m.log)

	reg.active = m.resolveActive(ctx, reg)
	m.log.Infow("gateway registry initialized",
		"adapters", len(reg.adapters), "active", reg.active)
	return reg, nil
}

func (m *Manager) buildAdapter(cfg *GatewayConfig) (Adapter, error) {
	switch cfg.Provider {
	case types.PaymentProviderMidtrans:
		return NewMidtransAdapter(cfg, m.cfg, m.log)
	case types.PaymentProviderXendit:
		return NewXenditAdapter(cfg, m.cfg, m.log)
	case types.PaymentProviderTripay:
		return NewTripayAdapter(cfg, m.cfg, m.log)
	default:
		return nil, fmt.Errorf("no adapter for gateway %s", cfg.Provider)
	}
}

func (m *Manager) resolveActive(ctx context.Context, reg *Registry) types.PaymentProvider {
	if explicit, err := m.settings.ActiveGateway(ctx); err == nil && explicit != "" {
		if _, ok := reg.adapters[explicit]; ok {
			return explicit
		}
		m.log.Warnw("configured active gateway is not initialized, falling back",
			"gateway", explicit)
	}
	for _, p := range types.ProviderPriority {
		cfg, ok := reg.configs[p]
		if p == types.PaymentProviderManual {
			// Manual is always live but only wins when enabled in settings
			// or nothing else is.
			if ok && cfg.Enabled {
				return p
			}
			continue
		}
		if ok && cfg.Enabled {
			if _, live := reg.adapters[p]; live {
				return p
			}
		}
	}
	return ""
}

// resolve picks the requested gateway, or the active one when the request is
// empty.
func (m *Manager) resolve(ctx context.Context, gw types.PaymentProvider) (Adapter, error) {
	reg, err := m.registry(ctx)
	if err != nil {
		return nil, err
	}
	if gw == "" {
		if reg.active == "" {
			return nil, ErrNoActiveGateway
		}
		gw = reg.active
	}
	adapter, ok := reg.adapters[gw]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGatewayNotInitialized, gw)
	}
	return adapter, nil
}

func (m *Manager) CreatePayment(ctx context.Context, invoiceID string, gw types.PaymentProvider) (*CreatePaymentResponse, error) {
	return m.createPayment(ctx, invoiceID, gw, func(a Adapter, req *types.PaymentRequest) (*types.PaymentResult, error) {
		return a.CreatePayment(ctx, req)
	})
}

func (m *Manager) CreatePaymentWithMethod(ctx context.Context, invoiceID string, gw types.PaymentProvider, method, paymentType string) (*CreatePaymentResponse, error) {
	if wildcardMethod(method) {
		return m.CreatePayment(ctx, invoiceID, gw)
	}
	return m.createPayment(ctx, invoiceID, gw, func(a Adapter, req *types.PaymentRequest) (*types.PaymentResult, error) {
		return a.CreatePaymentWithMethod(ctx, req, method, paymentType)
	})
}

func (m *Manager) createPayment(ctx context.Context, invoiceID string, gw types.PaymentProvider, create func(Adapter, *types.PaymentRequest) (*types.PaymentResult, error)) (*CreatePaymentResponse, error) {
	log := logctx.FromCtx(ctx, m.log)

	inv, err := m.ledger.ValidatePayable(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	// Double-submit guard: hand back the open attempt instead of opening a
	// new one with the provider.
	if existing, err := m.ledger.FindPending(ctx, inv.ID); err != nil {
		return nil, err
	} else if existing != nil {
		log.Infow("returning existing pending transaction",
			"invoice", inv.Number, "transaction_id", existing.ID)
		return &CreatePaymentResponse{
			Transaction: existing,
			Result:      resultFromStored(existing),
			Existing:    true,
		}, nil
	}

	adapter, err := m.resolve(ctx, gw)
	if err != nil {
		return nil, err
	}

	req := &types.PaymentRequest{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.Number,
		Amount:        inv.Amount,
		CustomerName:  inv.CustomerName,
		CustomerEmail: inv.CustomerEmail,
		CustomerPhone: inv.CustomerPhone,
		PackageName:   inv.PackageName,
	}
	result, err := create(adapter, req)
	if err != nil {
		return nil, err
	}

	tx, err := m.ledger.Create(ctx, inv, req, result)
	if errors.Is(err, ledger.ErrPendingExists) {
		// Lost a concurrent create on the same invoice. Hand back the row
		// that won the insert.
		existing, ferr := m.ledger.FindPending(ctx, inv.ID)
		if ferr == nil && existing != nil {
			log.Infow("concurrent payment creation, returning winning transaction",
				"invoice", inv.Number, "transaction_id", existing.ID)
			return &CreatePaymentResponse{
				Transaction: existing,
				Result:      resultFromStored(existing),
				Existing:    true,
			}, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	metrics.PaymentsCreated.WithLabelValues(string(adapter.Name())).Inc()
	log.Infow("payment created",
		"invoice", inv.Number, "gateway", adapter.Name(), "transaction_id", tx.ID)
	return &CreatePaymentResponse{Transaction: tx, Result: result}, nil
}

// resultFromStored rebuilds the provider result from the payload cached at
// creation time.
func resultFromStored(tx *models.PaymentTransaction) *types.PaymentResult {
	res := &types.PaymentResult{
		Gateway:   tx.Gateway,
		OrderID:   tx.OrderID,
		Token:     tx.GatewayRef,
		Method:    tx.Method,
		FeeAmount: tx.FeeAmount,
	}
	if tx.ResponsePayload != nil {
		var stored types.PaymentResult
		if err := json.Unmarshal(*tx.ResponsePayload, &stored); err == nil {
			stored.Gateway = tx.Gateway
			return &stored
		}
	}
	return res
}

// HandleWebhook dispatches to the matching adapter. Errors surface to the
// caller untouched: this path guards money movement.
func (m *Manager) HandleWebhook(ctx context.Context, gw types.PaymentProvider, payload []byte, header http.Header) (*types.WebhookResult, error) {
	reg, err := m.registry(ctx)
	if err != nil {
		return nil, err
	}
	adapter, ok := reg.Adapter(gw)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGatewayNotInitialized, gw)
	}
	return adapter.ParseWebhook(ctx, payload, header)
}

// AvailablePaymentMethods aggregates channel catalogs across every live
// adapter. One provider failing is logged and skipped, never fatal.
func (m *Manager) AvailablePaymentMethods(ctx context.Context, amount int64) ([]*types.PaymentMethod, error) {
	reg, err := m.registry(ctx)
	if err != nil {
		return nil, err
	}
	var out []*types.PaymentMethod
	for _, p := range types.ProviderPriority {
		adapter, ok := reg.Adapter(p)
		if !ok {
			continue
		}
		methods, err := adapter.ListMethods(ctx, amount)
		if err != nil {
			logctx.FromCtx(ctx, m.log).Errorw("method listing failed, skipping gateway",
				"gateway", p, "err", err)
			continue
		}
		out = append(out, methods...)
	}
	return out, nil
}

func (m *Manager) Status(ctx context.Context) ([]GatewayStatus, error) {
	reg, err := m.registry(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]GatewayStatus, 0, len(types.ProviderPriority))
	for _, p := range types.ProviderPriority {
		st := GatewayStatus{Gateway: p, Active: p == reg.active}
		if cfg, ok := reg.configs[p]; ok {
			st.Enabled = cfg.Enabled
			st.Mode = cfg.Mode
		}
		if p == types.PaymentProviderManual {
			st.Mode = types.GatewayModeProduction
		}
		_, st.Initialized = reg.adapters[p]
		out = append(out, st)
	}
	return out, nil
}

// DumpChannels returns a provider's raw channel listing for the ops debug
// endpoint. Only adapters with a live listing support it.
func (m *Manager) DumpChannels(ctx context.Context, gw types.PaymentProvider) (json.RawMessage, error) {
	reg, err := m.registry(ctx)
	if err != nil {
		return nil, err
	}
	adapter, ok := reg.Adapter(gw)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGatewayNotInitialized, gw)
	}
	dumper, ok := adapter.(interface {
		DumpChannels(ctx context.Context) (json.RawMessage, error)
	})
	if !ok {
		return nil, fmt.Errorf("gateway %s has no raw channel listing", gw)
	}
	start := time.Now()
	raw, err := dumper.DumpChannels(ctx)
	if err != nil {
		return nil, providerErr(gw, "dump channels", err)
	}
	logctx.FromCtx(ctx, m.log).Infow("dumped raw channels",
		"gateway", gw, "elapsed_ms", time.Since(start).Milliseconds())
	return raw, nil
}

var _ Orchestrator = (*Manager)(nil)
