package midtrans

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

type ClientOptions struct {
	ServerKey  string
	Production bool
}

// Client wraps the Midtrans Snap SDK client for hosted-checkout transaction
// creation.
type Client struct {
	Snap snap.Client
	opts ClientOptions
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.ServerKey == "" {
		return nil, fmt.Errorf("midtrans: server key is required")
	}
	env := midtrans.Sandbox
	if opts.Production {
		env = midtrans.Production
	}
	c := &Client{opts: opts}
	c.Snap.New(opts.ServerKey, env)
	return c, nil
}

func (c *Client) CreateTransaction(req *snap.Request) (*snap.Response, error) {
	resp, merr := c.Snap.CreateTransaction(req)
	if merr != nil {
		return nil, fmt.Errorf("midtrans snap create: %w", merr)
	}
	return resp, nil
}

// VerifySignature checks the notification signature_key field:
// SHA-512(order_id + status_code + gross_amount + server_key).
func (c *Client) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + c.opts.ServerKey))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
