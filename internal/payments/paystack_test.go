package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestValidSignature(t *testing.T) {
	c := &PaystackClient{SecretKey: "sk_test_secret"}
	body := []byte(`{"event":"charge.success"}`)

	assert.True(t, c.ValidSignature(body, signBody("sk_test_secret", body)))
	assert.False(t, c.ValidSignature(body, signBody("sk_wrong_secret", body)))
	assert.False(t, c.ValidSignature(body, ""))
	assert.False(t, c.ValidSignature([]byte(`{"event":"tampered"}`), signBody("sk_test_secret", body)))

	empty := &PaystackClient{}
	assert.False(t, empty.ValidSignature(body, signBody("", body)))
}

func TestWebhookEventAmountValue(t *testing.T) {
	var event WebhookEvent
	require.NoError(t, json.Unmarshal([]byte(`{
		"event": "charge.success",
		"data": {"reference": "tx-1", "status": "success", "amount": 345050, "currency": "GHS"}
	}`), &event))

	assert.Equal(t, "charge.success", event.Event)
	assert.True(t, event.AmountValue().Equal(decimal.NewFromFloat(3450.50)),
		"subunit amounts convert to major units")
}

func TestInitializeTransaction(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": true, "data": {"authorization_url": "https://checkout.paystack.com/abc123"}}`))
	}))
	defer server.Close()

	c := &PaystackClient{
		SecretKey: "sk_test_secret",
		BaseURL:   server.URL,
		Client:    &http.Client{Timeout: time.Second},
	}

	url, err := c.InitializeTransaction(context.Background(), "ama@example.com", decimal.NewFromFloat(1200.50), "GHS", "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc123", url)

	assert.Equal(t, "ama@example.com", got["email"])
	assert.Equal(t, float64(120050), got["amount"], "amount is sent in subunits")
	assert.Equal(t, "GHS", got["currency"])
	assert.Equal(t, "tx-1", got["reference"])
}

func TestInitializeTransactionRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status": false, "message": "Invalid amount"}`))
	}))
	defer server.Close()

	c := &PaystackClient{
		SecretKey: "sk_test_secret",
		BaseURL:   server.URL,
		Client:    &http.Client{Timeout: time.Second},
	}

	_, err := c.InitializeTransaction(context.Background(), "ama@example.com", decimal.Zero, "GHS", "tx-1")
	require.Error(t, err)
}

func TestInitializeTransactionNoSecretKey(t *testing.T) {
	c := &PaystackClient{Client: &http.Client{}}
	_, err := c.InitializeTransaction(context.Background(), "ama@example.com", decimal.NewFromInt(10), "GHS", "tx-1")
	require.Error(t, err)
}

func TestVerifyTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/tx-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": true, "data": {"reference": "tx-1", "status": "success", "amount": 120000, "currency": "GHS"}}`))
	}))
	defer server.Close()

	c := &PaystackClient{
		SecretKey: "sk_test_secret",
		BaseURL:   server.URL,
		Client:    &http.Client{Timeout: time.Second},
	}

	data, err := c.VerifyTransaction(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "tx-1", data.Reference)
	assert.Equal(t, "success", data.Status)
	assert.True(t, data.Amount.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, "GHS", data.Currency)
}
