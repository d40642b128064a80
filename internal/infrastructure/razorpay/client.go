package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Config holds Razorpay API credentials
type Config struct {
	KeyID     string // Public key id (rzp_test_... / rzp_live_...)
	KeySecret string // Secret used for basic auth and signature verification
	BaseURL   string // API base URL, e.g. https://api.razorpay.com
}

// Client is the Razorpay API client. All amounts cross this boundary in paise.
type Client struct {
	config     Config
	httpClient *http.Client
}

// Order is a gateway order created ahead of client-side checkout.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Refund is the gateway's record of a processed refund.
type Refund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type refundRequest struct {
	Amount int64 `json:"amount"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// NewClient creates a new Razorpay client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.razorpay.com"
	}
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateOrder creates a gateway order for the given amount in paise.
func (c *Client) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*Order, error) {
	body := orderRequest{
		Amount:   amountPaise,
		Currency: "INR",
		Receipt:  receipt,
	}

	var order Order
	if err := c.post(ctx, "/v1/orders", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ProcessRefund refunds amountPaise of a captured payment.
func (c *Client) ProcessRefund(ctx context.Context, paymentID string, amountPaise int64) (*Refund, error) {
	endpoint := fmt.Sprintf("/v1/payments/%s/refund", paymentID)

	var refund Refund
	if err := c.post(ctx, endpoint, refundRequest{Amount: amountPaise}, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

// VerifyPaymentSignature checks the checkout callback signature:
// HMAC-SHA256 over "orderID|paymentID" keyed with the key secret.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	if signature == "" {
		return false
	}
	expected := Sign(orderID, paymentID, c.config.KeySecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the hex HMAC-SHA256 checkout signature for an order/payment pair.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) post(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	url := c.config.BaseURL + endpoint

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.config.KeyID, c.config.KeySecret)

	log.Printf("[Razorpay] Calling %s", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("razorpay API error: %s (%s)", apiErr.Error.Description, apiErr.Error.Code)
		}
		return fmt.Errorf("razorpay API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
