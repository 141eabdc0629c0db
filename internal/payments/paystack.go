package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// PaystackClient talks to the Paystack REST API. The gateway is a black box
// to the rest of the system: it hands out payment links and verdicts on
// transaction references, nothing more.
type PaystackClient struct {
	SecretKey string
	BaseURL   string
	Client    *http.Client
}

func NewPaystackClient() *PaystackClient {
	return &PaystackClient{
		SecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
		BaseURL:   "https://api.paystack.co",
		Client:    &http.Client{Timeout: 20 * time.Second},
	}
}

// WebhookEvent is the envelope Paystack posts to the webhook endpoint.
// Amount is in currency subunits (pesewas for GHS).
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

// AmountValue converts the subunit amount to a major-unit decimal.
func (e WebhookEvent) AmountValue() decimal.Decimal {
	return decimal.NewFromInt(e.Data.Amount).Div(decimal.NewFromInt(100))
}

// ValidSignature checks the x-paystack-signature header: HMAC-SHA512 of the
// raw body keyed with the secret key.
func (c *PaystackClient) ValidSignature(body []byte, signature string) bool {
	if c.SecretKey == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.SecretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// InitializeTransaction creates a payment link for the given amount and
// returns the authorization URL customers are sent to.
func (c *PaystackClient) InitializeTransaction(ctx context.Context, email string, amount decimal.Decimal, currency, reference string) (string, error) {
	if c.SecretKey == "" {
		return "", fmt.Errorf("paystack secret key not set")
	}

	payload := map[string]interface{}{
		"email":     email,
		"amount":    amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"currency":  currency,
		"reference": reference,
	}
	if callback := os.Getenv("PAYSTACK_CALLBACK_URL"); callback != "" {
		payload["callback_url"] = callback
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach paystack: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paystack initialize failed: status code %d", resp.StatusCode)
	}

	var parsed struct {
		Status bool `json:"status"`
		Data   struct {
			AuthorizationURL string `json:"authorization_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("invalid paystack response: %v", err)
	}
	if !parsed.Status || parsed.Data.AuthorizationURL == "" {
		return "", fmt.Errorf("paystack rejected transaction initialize")
	}
	return parsed.Data.AuthorizationURL, nil
}

// VerifyData is the subset of a transaction verification the core needs.
type VerifyData struct {
	Reference string
	Status    string
	Amount    decimal.Decimal
	Currency  string
}

// VerifyTransaction asks Paystack for the current state of a transaction.
func (c *PaystackClient) VerifyTransaction(ctx context.Context, reference string) (*VerifyData, error) {
	if c.SecretKey == "" {
		return nil, fmt.Errorf("paystack secret key not set")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach paystack: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paystack verify failed: status code %d", resp.StatusCode)
	}

	var parsed struct {
		Status bool `json:"status"`
		Data   struct {
			Reference string `json:"reference"`
			Status    string `json:"status"`
			Amount    int64  `json:"amount"`
			Currency  string `json:"currency"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("invalid paystack response: %v", err)
	}
	if !parsed.Status {
		return nil, fmt.Errorf("paystack could not verify transaction %s", reference)
	}

	return &VerifyData{
		Reference: parsed.Data.Reference,
		Status:    parsed.Data.Status,
		Amount:    decimal.NewFromInt(parsed.Data.Amount).Div(decimal.NewFromInt(100)),
		Currency:  parsed.Data.Currency,
	}, nil
}
