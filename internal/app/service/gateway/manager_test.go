package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lintasnet/paygate/pkg/config"
	"github.com/lintasnet/paygate/pkg/types"
)

// stubAdapter is a scriptable Adapter for orchestrator tests.
type stubAdapter struct {
	name       types.PaymentProvider
	mode       types.GatewayMode
	methods    []*types.PaymentMethod
	methodsErr error
	webhook    *types.WebhookResult
	webhookErr error
}

func (s *stubAdapter) Name() types.PaymentProvider { return s.name }
func (s *stubAdapter) Mode() types.GatewayMode     { return s.mode }

func (s *stubAdapter) CreatePayment(ctx context.Context, req *types.PaymentRequest) (*types.PaymentResult, error) {
	return &types.PaymentResult{Gateway: s.name, OrderID: req.OrderID()}, nil
}

func (s *stubAdapter) CreatePaymentWithMethod(ctx context.Context, req *types.PaymentRequest, method, _ string) (*types.PaymentResult, error) {
	return &types.PaymentResult{Gateway: s.name, OrderID: req.OrderID(), Method: method}, nil
}

func (s *stubAdapter) ListMethods(ctx context.Context, amount int64) ([]*types.PaymentMethod, error) {
	return s.methods, s.methodsErr
}

func (s *stubAdapter) ParseWebhook(ctx context.Context, payload []byte, _ http.Header) (*types.WebhookResult, error) {
	return s.webhook, s.webhookErr
}

func newTestManager(t *testing.T, build func(ctx context.Context) (*Registry, error)) *Manager {
	t.Helper()
	m := NewManager(&config.Config{}, zap.NewNop().Sugar(), nil, nil)
	m.buildFn = build
	return m
}

func staticRegistry(reg *Registry) func(ctx context.Context) (*Registry, error) {
	return func(ctx context.Context) (*Registry, error) { return reg, nil }
}

func TestResolveNoActiveGateway(t *testing.T) {
	m := newTestManager(t, staticRegistry(&Registry{
		adapters: map[types.PaymentProvider]Adapter{},
		configs:  map[types.PaymentProvider]*GatewayConfig{},
	}))

	_, err := m.resolve(context.Background(), "")
	require.ErrorIs(t, err, ErrNoActiveGateway)
}

func TestResolveUninitializedGateway(t *testing.T) {
	m := newTestManager(t, staticRegistry(&Registry{
		adapters: map[types.PaymentProvider]Adapter{
			types.PaymentProviderManual: &stubAdapter{name: types.PaymentProviderManual},
		},
		configs: map[types.PaymentProvider]*GatewayConfig{},
		active:  types.PaymentProviderManual,
	}))

	_, err := m.resolve(context.Background(), types.PaymentProviderMidtrans)
	require.ErrorIs(t, err, ErrGatewayNotInitialized)

	a, err := m.resolve(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, types.PaymentProviderManual, a.Name())
}

func TestRegistrySingleFlight(t *testing.T) {
	var builds atomic.Int32
	m := newTestManager(t, func(ctx context.Context) (*Registry, error) {
		builds.Add(1)
		time.Sleep(20 * time.Millisecond)
		return &Registry{
			adapters: map[types.PaymentProvider]Adapter{
				types.PaymentProviderManual: &stubAdapter{name: types.PaymentProviderManual},
			},
			configs: map[types.PaymentProvider]*GatewayConfig{},
		}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Status(context.Background())
			require.NoError(t, err)
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, builds.Load())
}

func TestReloadSwapsRegistry(t *testing.T) {
	var builds atomic.Int32
	m := newTestManager(t, func(ctx context.Context) (*Registry, error) {
		n := builds.Add(1)
		active := types.PaymentProviderManual
		if n > 1 {
			active = types.PaymentProviderTripay
		}
		return &Registry{
			adapters: map[types.PaymentProvider]Adapter{
				active: &stubAdapter{name: active},
			},
			configs: map[types.PaymentProvider]*GatewayConfig{},
			active:  active,
		}, nil
	})

	a, err := m.resolve(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, types.PaymentProviderManual, a.Name())

	m.Reload(context.Background())

	// The background warm races this read; the new once guarantees the swap
	// regardless of who builds.
	require.Eventually(t, func() bool {
		a, err := m.resolve(context.Background(), "")
		return err == nil && a.Name() == types.PaymentProviderTripay
	}, time.Second, 10*time.Millisecond)
	require.EqualValues(t, 2, builds.Load())
}

func TestRegistryBuildErrorSurfaces(t *testing.T) {
	boom := errors.New("settings store down")
	m := newTestManager(t, func(ctx context.Context) (*Registry, error) { return nil, boom })

	_, err := m.Status(context.Background())
	require.ErrorIs(t, err, boom)

	_, err = m.HandleWebhook(context.Background(), types.PaymentProviderTripay, nil, nil)
	require.ErrorIs(t, err, boom)
}

func TestAvailableMethodsSkipsFailingProvider(t *testing.T) {
	m := newTestManager(t, staticRegistry(&Registry{
		adapters: map[types.PaymentProvider]Adapter{
			types.PaymentProviderTripay: &stubAdapter{
				name:       types.PaymentProviderTripay,
				methodsErr: fmt.Errorf("upstream 500"),
			},
			types.PaymentProviderMidtrans: &stubAdapter{
				name: types.PaymentProviderMidtrans,
				methods: []*types.PaymentMethod{
					{Gateway: types.PaymentProviderMidtrans, Code: "qris", Active: true},
				},
			},
		},
		configs: map[types.PaymentProvider]*GatewayConfig{},
	}))

	methods, err := m.AvailablePaymentMethods(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, methods, 1)
	require.Equal(t, "qris", methods[0].Code)
}

func TestHandleWebhookDispatch(t *testing.T) {
	want := &types.WebhookResult{
		Gateway: types.PaymentProviderTripay,
		OrderID: "INV-1001",
		Status:  types.WebhookStatusSuccess,
	}
	m := newTestManager(t, staticRegistry(&Registry{
		adapters: map[types.PaymentProvider]Adapter{
			types.PaymentProviderTripay: &stubAdapter{name: types.PaymentProviderTripay, webhook: want},
		},
		configs: map[types.PaymentProvider]*GatewayConfig{},
	}))

	got, err := m.HandleWebhook(context.Background(), types.PaymentProviderTripay, []byte("{}"), nil)
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = m.HandleWebhook(context.Background(), types.PaymentProviderXendit, []byte("{}"), nil)
	require.ErrorIs(t, err, ErrGatewayNotInitialized)
}

func TestWebhookErrorsSurfaceUnchanged(t *testing.T) {
	m := newTestManager(t, staticRegistry(&Registry{
		adapters: map[types.PaymentProvider]Adapter{
			types.PaymentProviderMidtrans: &stubAdapter{
				name:       types.PaymentProviderMidtrans,
				webhookErr: ErrInvalidSignature,
			},
		},
		configs: map[types.PaymentProvider]*GatewayConfig{},
	}))

	_, err := m.HandleWebhook(context.Background(), types.PaymentProviderMidtrans, []byte("{}"), nil)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestStatusReportsAllProviders(t *testing.T) {
	m := newTestManager(t, staticRegistry(&Registry{
		adapters: map[types.PaymentProvider]Adapter{
			types.PaymentProviderTripay: &stubAdapter{name: types.PaymentProviderTripay},
			types.PaymentProviderManual: &stubAdapter{name: types.PaymentProviderManual},
		},
		configs: map[types.PaymentProvider]*GatewayConfig{
			types.PaymentProviderTripay:   {Provider: types.PaymentProviderTripay, Enabled: true, Mode: types.GatewayModeSandbox},
			types.PaymentProviderMidtrans: {Provider: types.PaymentProviderMidtrans, Enabled: false, Mode: types.GatewayModeProduction},
		},
		active: types.PaymentProviderTripay,
	}))

	rows, err := m.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, len(types.ProviderPriority))

	byGateway := map[types.PaymentProvider]GatewayStatus{}
	for _, r := range rows {
		byGateway[r.Gateway] = r
	}
	require.True(t, byGateway[types.PaymentProviderTripay].Active)
	require.True(t, byGateway[types.PaymentProviderTripay].Initialized)
	require.True(t, byGateway[types.PaymentProviderTripay].Enabled)
	require.False(t, byGateway[types.PaymentProviderMidtrans].Initialized)
	require.False(t, byGateway[types.PaymentProviderMidtrans].Enabled)
	require.True(t, byGateway[types.PaymentProviderManual].Initialized)
}
