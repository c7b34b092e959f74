package xendit

import (
	"crypto/subtle"
	"fmt"

	"github.com/xendit/xendit-go/client"
)

type ClientOptions struct {
	SecretKey string
	// CallbackToken is the shared secret Xendit sends back in the
	// x-callback-token header on every webhook delivery.
	CallbackToken string
}

// Client wraps the Xendit REST SDK. Invoice creation is the only outbound
// surface this service uses.
type Client struct {
	API  *client.API
	opts ClientOptions
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.SecretKey == "" {
		return nil, fmt.Errorf("xendit: secret key is required")
	}
	return &Client{API: client.New(opts.SecretKey), opts: opts}, nil
}

// VerifyCallbackToken compares the inbound x-callback-token header against
// the configured shared secret. An empty configured token never matches.
func (c *Client) VerifyCallbackToken(token string) bool {
	if c.opts.CallbackToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.opts.CallbackToken), []byte(token)) == 1
}

// HasCallbackToken reports whether a shared secret is configured at all; the
// sandbox trust decision lives with the caller.
func (c *Client) HasCallbackToken() bool { return c.opts.CallbackToken != "" }
