package payment

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Client talks to the Razorpay REST API. Amounts are in minor units (paise).
type Client struct {
	keyID     string
	keySecret string
	apiURL    string
	http      *http.Client
}

// ProviderOrder is the provider-side order created before the user pays.
type ProviderOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type RefundResult struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func New(keyID, keySecret, apiURL string) *Client {
	if apiURL == "" {
		apiURL = "https://api.razorpay.com/v1"
	}
	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
		apiURL:    strings.TrimRight(apiURL, "/"),
		http:      &http.Client{},
	}
}

// NewFromEnv builds a client from RAZORPAY_KEY_ID / RAZORPAY_KEY_SECRET.
func NewFromEnv() (*Client, error) {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	if keyID == "" || keySecret == "" {
		return nil, fmt.Errorf("razorpay configuration missing")
	}
	return New(keyID, keySecret, os.Getenv("RAZORPAY_API_URL")), nil
}

// KeyID is exposed so the frontend can open the provider's checkout widget.
func (c *Client) KeyID() string { return c.keyID }

// CreateOrder registers a payable order with the provider. It has no local
// side effect and runs before the checkout transaction.
func (c *Client) CreateOrder(amountMinorUnits int64, currency, receipt string) (*ProviderOrder, error) {
	payload := map[string]interface{}{
		"amount":   amountMinorUnits,
		"currency": currency,
		"receipt":  receipt,
	}

	var order ProviderOrder
	if err := c.post("/orders", payload, &order); err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, fmt.Errorf("razorpay returned empty order id")
	}
	return &order, nil
}

// Refund reverses a captured payment. A provider error saying the payment has
// already been fully refunded counts as success, so cancel retries stay safe.
func (c *Client) Refund(paymentID string, amountMinorUnits int64) (*RefundResult, error) {
	payload := map[string]interface{}{
		"amount": amountMinorUnits,
		"speed":  "normal",
		"notes":  map[string]string{"reason": "Order cancelled by customer or admin."},
	}

	var refund RefundResult
	err := c.post("/payments/"+paymentID+"/refund", payload, &refund)
	if err != nil {
		if strings.Contains(err.Error(), "already been fully refunded") {
			return &RefundResult{
				ID:     "already_refunded",
				Amount: amountMinorUnits,
				Status: "processed",
			}, nil
		}
		return nil, err
	}
	return &refund, nil
}

// VerifySignature checks the HMAC-SHA256 the provider computes over
// "orderID|paymentID". This is the only proof the payment callback was not
// forged by a client, so the comparison is constant time.
func (c *Client) VerifySignature(providerOrderID, providerPaymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(providerOrderID + "|" + providerPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// NewReceipt returns a random hex receipt token for provider orders.
func NewReceipt() string {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

func (c *Client) post(path string, payload interface{}, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", c.apiURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach razorpay: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("razorpay error: %s", apiErr.Error.Description)
		}
		return fmt.Errorf("razorpay API error (%d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse razorpay response: %v", err)
	}
	return nil
}
