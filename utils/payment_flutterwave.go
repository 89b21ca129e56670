package utils

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gracechapel/churchweb/config"
)

type flutterwaveInitRequest struct {
	TxRef       string                `json:"tx_ref"`
	Amount      string                `json:"amount"`
	Currency    string                `json:"currency"`
	RedirectURL string                `json:"redirect_url,omitempty"`
	Customer    flutterwaveCustomer   `json:"customer"`
	Meta        map[string]string     `json:"meta,omitempty"`
	Customize   flutterwaveCustomizer `json:"customizations"`
}

type flutterwaveCustomer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type flutterwaveCustomizer struct {
	Title string `json:"title"`
}

type flutterwaveInitResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

type flutterwaveVerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID       int64   `json:"id"`
		TxRef    string  `json:"tx_ref"`
		Status   string  `json:"status"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	} `json:"data"`
}

// FlutterwaveInitialize creates a hosted payment page and returns its link.
func FlutterwaveInitialize(ctx context.Context, name, email string, amount float64, currency, txRef, redirectURL string) (*PaymentInit, error) {
	cfg := config.Get()
	if cfg.FlutterwaveSecretKey == "" {
		return nil, fmt.Errorf("flutterwave not configured")
	}

	reqBody := flutterwaveInitRequest{
		TxRef:       txRef,
		Amount:      fmt.Sprintf("%.2f", amount),
		Currency:    currency,
		RedirectURL: redirectURL,
		Customer:    flutterwaveCustomer{Email: email, Name: name},
		Customize:   flutterwaveCustomizer{Title: "Grace Chapel Giving"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.FlutterwaveBaseURL+"/v3/payments", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.FlutterwaveSecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := paymentHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flutterwave request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out flutterwaveInitResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("flutterwave decode: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || out.Status != "success" || out.Data.Link == "" {
		if out.Message != "" {
			return nil, fmt.Errorf("flutterwave error: %s", out.Message)
		}
		return nil, fmt.Errorf("flutterwave request failed with status %d", resp.StatusCode)
	}
	return &PaymentInit{AuthorizationURL: out.Data.Link, ProviderRef: txRef}, nil
}

// FlutterwaveVerify re-checks a transaction against the provider before any
// local state changes.
func FlutterwaveVerify(ctx context.Context, transactionID string) (status, txRef string, err error) {
	cfg := config.Get()
	if cfg.FlutterwaveSecretKey == "" {
		return "", "", fmt.Errorf("flutterwave not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.FlutterwaveBaseURL+"/v3/transactions/"+transactionID+"/verify", nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.FlutterwaveSecretKey)

	resp, err := paymentHTTPClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("flutterwave verify: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("flutterwave verify failed with status %d", resp.StatusCode)
	}

	var out flutterwaveVerifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", "", fmt.Errorf("flutterwave verify decode: %w", err)
	}
	if out.Status != "success" {
		return "", "", fmt.Errorf("flutterwave verify failed: %s", out.Message)
	}
	return out.Data.Status, out.Data.TxRef, nil
}

// FlutterwaveHashValid checks the verif-hash webhook header against the
// configured secret hash.
func FlutterwaveHashValid(header string) bool {
	cfg := config.Get()
	if cfg.FlutterwaveVerifHash == "" || header == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cfg.FlutterwaveVerifHash), []byte(header)) == 1
}
