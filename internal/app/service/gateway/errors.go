package gateway

import (
	"errors"
	"fmt"

	"github.com/lintasnet/paygate/pkg/types"
)

var (
	// ErrNoActiveGateway: nothing is enabled and no explicit gateway was
	// requested.
	ErrNoActiveGateway = errors.New("no active payment gateway configured")
	// ErrGatewayNotInitialized: the requested gateway exists but is not live
	// (disabled, or its adapter failed construction).
	ErrGatewayNotInitialized = errors.New("payment gateway is not initialized")
	// ErrInvalidSignature: webhook authenticity check failed; the call must
	// hard-fail so the provider retries.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrWebhookParse: a required field (order id, status) is missing from
	// the callback payload.
	ErrWebhookParse = errors.New("malformed webhook payload")
)

// ProviderError wraps a failed outbound provider call.
type ProviderError struct {
	Gateway types.PaymentProvider
	Op      string
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Gateway, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func providerErr(gw types.PaymentProvider, op string, err error) error {
	return &ProviderError{Gateway: gw, Op: op, Err: err}
}
