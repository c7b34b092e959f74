package tripay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	sandboxBaseURL    = "https://tripay.co.id/api-sandbox"
	productionBaseURL = "https://tripay.co.id/api"
)

type ClientOptions struct {
	APIKey       string
	PrivateKey   string
	MerchantCode string
	Production   bool
	Timeout      time.Duration
}

// Client is a minimal Tripay REST client; Tripay publishes no Go SDK.
type Client struct {
	opts    ClientOptions
	baseURL string
	http    *http.Client
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.APIKey == "" || opts.PrivateKey == "" || opts.MerchantCode == "" {
		return nil, fmt.Errorf("tripay: api key, private key and merchant code are required")
	}
	base := sandboxBaseURL
	if opts.Production {
		base = productionBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{opts: opts, baseURL: base, http: &http.Client{Timeout: timeout}}, nil
}

type OrderItem struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type CreateTransactionRequest struct {
	Method        string      `json:"method"`
	MerchantRef   string      `json:"merchant_ref"`
	Amount        int64       `json:"amount"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email,omitempty"`
	CustomerPhone string      `json:"customer_phone,omitempty"`
	OrderItems    []OrderItem `json:"order_items"`
	CallbackURL   string      `json:"callback_url,omitempty"`
	ReturnURL     string      `json:"return_url,omitempty"`
	ExpiredTime   int64       `json:"expired_time,omitempty"`
	Signature     string      `json:"signature"`
}

type Transaction struct {
	Reference   string  `json:"reference"`
	MerchantRef string  `json:"merchant_ref"`
	Method      string  `json:"payment_method"`
	MethodName  string  `json:"payment_name"`
	Amount      int64   `json:"amount"`
	FeeCustomer int64   `json:"fee_customer"`
	TotalFee    int64   `json:"total_fee"`
	CheckoutURL string  `json:"checkout_url"`
	QRString    string  `json:"qr_string"`
	QRURL       string  `json:"qr_url"`
	Status      string  `json:"status"`
	ExpiredTime int64   `json:"expired_time"`
	PayCode     string  `json:"pay_code"`
	PayURL      string  `json:"pay_url"`
	AmountFee   float64 `json:"amount_fee"`
}

type ChannelFee struct {
	Flat    int64   `json:"flat"`
	Percent float64 `json:"percent"`
}

type Channel struct {
	Group         string     `json:"group"`
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	FeeMerchant   ChannelFee `json:"fee_merchant"`
	FeeCustomer   ChannelFee `json:"fee_customer"`
	MinimumAmount int64      `json:"minimum_amount"`
	MaximumAmount int64      `json:"maximum_amount"`
	IconURL       string     `json:"icon_url"`
	Active        bool       `json:"active"`
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RequestSignature signs a create-transaction call:
// HMAC-SHA256(merchant_code + merchant_ref + amount, private_key).
func (c *Client) RequestSignature(merchantRef string, amount int64) string {
	mac := hmac.New(sha256.New, []byte(c.opts.PrivateKey))
	mac.Write([]byte(c.opts.MerchantCode + merchantRef + strconv.FormatInt(amount, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCallbackSignature checks the X-Callback-Signature header:
// HMAC-SHA256(raw_json_body, private_key).
func (c *Client) VerifyCallbackSignature(rawBody []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.opts.PrivateKey))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) MerchantCode() string { return c.opts.MerchantCode }

// CreateTransaction opens a closed-payment transaction. The signature field
// is filled here; callers never compute it themselves.
func (c *Client) CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*Transaction, error) {
	req.Signature = c.RequestSignature(req.MerchantRef, req.Amount)
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("tripay: marshal request: %w", err)
	}
	raw, err := c.call(ctx, http.MethodPost, "/transaction/create", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var tx Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("tripay: decode transaction: %w", err)
	}
	return &tx, nil
}

// PaymentChannels lists the merchant's currently enabled channels with their
// fee schedule.
func (c *Client) PaymentChannels(ctx context.Context) ([]Channel, error) {
	raw, err := c.call(ctx, http.MethodGet, "/merchant/payment-channel", nil)
	if err != nil {
		return nil, err
	}
	var channels []Channel
	if err := json.Unmarshal(raw, &channels); err != nil {
		return nil, fmt.Errorf("tripay: decode channels: %w", err)
	}
	return channels, nil
}

// PaymentChannelsRaw returns the unparsed channel listing for the ops debug
// endpoint, so fee/code drift can be inspected without our mapping in the way.
func (c *Client) PaymentChannelsRaw(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, http.MethodGet, "/merchant/payment-channel", nil)
}

func (c *Client) call(ctx context.Context, method, path string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("tripay: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tripay: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tripay: read response: %w", err)
	}

	var env apiEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("tripay: decode envelope (http %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		return nil, fmt.Errorf("tripay: %s %s failed (http %d): %s", method, path, resp.StatusCode, env.Message)
	}
	return env.Data, nil
}
