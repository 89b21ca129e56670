package utils

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

	"github.com/gracechapel/churchweb/config"
)

var paymentHTTPClient = &http.Client{Timeout: 30 * time.Second}

// PaymentInit is the result of a provider "create payment link" call.
type PaymentInit struct {
	AuthorizationURL string
	ProviderRef      string
}

type paystackInitRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"` // subunits (kobo)
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type paystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID        int64   `json:"id"`
		Status    string  `json:"status"`
		Reference string  `json:"reference"`
		Amount    float64 `json:"amount"`
		Currency  string  `json:"currency"`
	} `json:"data"`
}

// PaystackInitialize creates a hosted checkout session and returns the
// redirect URL. Amount is in major units and converted to kobo.
func PaystackInitialize(ctx context.Context, email string, amount float64, currency, reference, callbackURL string) (*PaymentInit, error) {
	cfg := config.Get()
	if cfg.PaystackSecretKey == "" {
		return nil, fmt.Errorf("paystack not configured")
	}

	reqBody := paystackInitRequest{
		Email:       email,
		Amount:      int64(math.Round(amount * 100)),
		Currency:    currency,
		Reference:   reference,
		CallbackURL: callbackURL,
	}
	var out paystackInitResponse
	if err := paystackPost(ctx, cfg, "/transaction/initialize", reqBody, &out); err != nil {
		return nil, err
	}
	if !out.Status || out.Data.AuthorizationURL == "" {
		return nil, fmt.Errorf("paystack initialize failed: %s", out.Message)
	}
	return &PaymentInit{
		AuthorizationURL: out.Data.AuthorizationURL,
		ProviderRef:      out.Data.Reference,
	}, nil
}

// PaystackVerify fetches the provider-side state of a transaction.
func PaystackVerify(ctx context.Context, reference string) (status, transactionID string, err error) {
	cfg := config.Get()
	if cfg.PaystackSecretKey == "" {
		return "", "", fmt.Errorf("paystack not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.PaystackBaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.PaystackSecretKey)

	resp, err := paymentHTTPClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("paystack verify: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("paystack verify failed with status %d", resp.StatusCode)
	}

	var out paystackVerifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", "", fmt.Errorf("paystack verify decode: %w", err)
	}
	if !out.Status {
		return "", "", fmt.Errorf("paystack verify failed: %s", out.Message)
	}
	return out.Data.Status, fmt.Sprintf("%d", out.Data.ID), nil
}

// PaystackSignatureValid checks the x-paystack-signature webhook header, an
// HMAC-SHA512 of the raw body keyed with the secret key.
func PaystackSignatureValid(body []byte, signature string) bool {
	cfg := config.Get()
	if cfg.PaystackSecretKey == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(cfg.PaystackSecretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func paystackPost(ctx context.Context, cfg config.AppConfig, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.PaystackBaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.PaystackSecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := paymentHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("paystack request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr paystackInitResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("paystack error: %s", apiErr.Message)
		}
		return fmt.Errorf("paystack request failed with status %d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}
