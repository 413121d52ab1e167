package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeSendsKoboAmount(t *testing.T) {
	var received initializeRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Authorization URL created",
			"data": {
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code": "abc123",
				"reference": "ref_abc123"
			}
		}`))
	}))
	defer server.Close()

	client := New("sk_test_abc", server.URL)
	session, err := client.Initialize(context.Background(), "ada@example.com", 10375.50,
		"https://shop.example.com/payments/verify", Metadata{OrderID: "o1", UserID: "u1", CartID: "c1"})

	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc123", session.AuthorizationURL)
	assert.Equal(t, "ref_abc123", session.Reference)

	// 10375.50 naira is 1037550 kobo; rounding happens only at this boundary.
	assert.Equal(t, int64(1037550), received.Amount)
	assert.Equal(t, "NGN", received.Currency)
	assert.Equal(t, "ada@example.com", received.Email)
	assert.Equal(t, "o1", received.Metadata.OrderID)
}

func TestInitializePropagatesGatewayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status": false, "message": "Invalid key"}`))
	}))
	defer server.Close()

	client := New("sk_test_bad", server.URL)
	_, err := client.Initialize(context.Background(), "ada@example.com", 100, "cb", Metadata{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid key")
}

func TestVerifyDecodesTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/ref_abc123", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {
				"status": "success",
				"reference": "ref_abc123",
				"channel": "card",
				"paid_at": "2024-03-07T15:04:05.000Z",
				"amount": 1037550,
				"metadata": {"orderId": "o1", "userId": "u1", "cartId": "c1"}
			}
		}`))
	}))
	defer server.Close()

	client := New("sk_test_abc", server.URL)
	tx, err := client.Verify(context.Background(), "ref_abc123")

	require.NoError(t, err)
	assert.Equal(t, "success", tx.Status)
	assert.Equal(t, "card", tx.Channel)
	assert.Equal(t, int64(1037550), tx.Amount)
	assert.Equal(t, "o1", tx.Metadata.OrderID)
}

func TestValidateSignature(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event":"charge.success","data":{"reference":"ref_1"}}`)

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, ValidateSignature(secret, body, valid))
	assert.False(t, ValidateSignature(secret, body, "deadbeef"))
	assert.False(t, ValidateSignature("other_secret", body, valid))
	assert.False(t, ValidateSignature(secret, []byte("tampered"), valid))
}
