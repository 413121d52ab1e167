package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// Client talks to the Paystack REST API. Amounts cross this boundary in
// kobo (minor units); everything above it works in naira.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func New(secretKey, baseURL string) *Client {
	return &Client{
		secretKey:  secretKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Metadata is attached to the payment session and echoed back on verify
// and webhook payloads, correlating the gateway reference to our records.
type Metadata struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
	CartID  string `json:"cartId"`
}

type Authorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type Transaction struct {
	Status    string   `json:"status"`
	Reference string   `json:"reference"`
	Channel   string   `json:"channel"`
	PaidAt    string   `json:"paid_at"`
	Amount    int64    `json:"amount"`
	Metadata  Metadata `json:"metadata"`
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("paystack: %s (status %d)", e.Message, e.Status)
}

type initializeRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"`
	Currency    string   `json:"currency"`
	CallbackURL string   `json:"callback_url"`
	Metadata    Metadata `json:"metadata"`
}

// Initialize opens a payment session and returns the hosted authorization
// URL the payer is redirected to. amountMajor is in naira.
func (c *Client) Initialize(ctx context.Context, email string, amountMajor float64, callbackURL string, meta Metadata) (*Authorization, error) {
	payload := initializeRequest{
		Email:       email,
		Amount:      int64(math.Round(amountMajor * 100)),
		Currency:    "NGN",
		CallbackURL: callbackURL,
		Metadata:    meta,
	}

	var result Authorization
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Verify fetches the canonical state of a transaction by its reference.
func (c *Client) Verify(ctx context.Context, reference string) (*Transaction, error) {
	var result Transaction
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("paystack: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("paystack: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paystack: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Status  bool            `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("paystack: decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !envelope.Status {
		return &apiError{Status: resp.StatusCode, Message: envelope.Message}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("paystack: decode data: %w", err)
		}
	}
	return nil
}

// Event is the webhook payload shell; Data mirrors the verify response.
type Event struct {
	Event string      `json:"event"`
	Data  Transaction `json:"data"`
}

// ValidateSignature recomputes the HMAC-SHA512 of the raw webhook body and
// compares it to the x-paystack-signature header value.
func ValidateSignature(secretKey string, body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
