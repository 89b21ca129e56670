package utils

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gracechapel/churchweb/config"
)

func TestPaystackInitializeConvertsToKobo(t *testing.T) {
	var gotAmount int64
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		var req paystackInitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotAmount = req.Amount
		fmt.Fprintf(w, `{"status":true,"data":{"authorization_url":"https://checkout.test/a","reference":"%s"}}`, req.Reference)
	}))
	defer stub.Close()

	cfg := testConfig(t)
	cfg.PaystackSecretKey = "sk_test"
	cfg.PaystackBaseURL = stub.URL
	config.SetForTesting(cfg)

	init, err := PaystackInitialize(context.Background(), "a@b.c", 1250.50, "NGN", "GIVING-1-AAAAAA", "")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.test/a", init.AuthorizationURL)
	assert.EqualValues(t, 125050, gotAmount, "major units become kobo")
}

func TestPaystackInitializeSurfacesAPIError(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"status":false,"message":"Invalid currency"}`)
	}))
	defer stub.Close()

	cfg := testConfig(t)
	cfg.PaystackSecretKey = "sk_test"
	cfg.PaystackBaseURL = stub.URL
	config.SetForTesting(cfg)

	_, err := PaystackInitialize(context.Background(), "a@b.c", 10, "XXX", "GIVING-1-AAAAAA", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid currency")
}

func TestPaystackVerify(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/transaction/verify/"))
		fmt.Fprint(w, `{"status":true,"data":{"id":987,"status":"success","reference":"GIVING-1-AAAAAA"}}`)
	}))
	defer stub.Close()

	cfg := testConfig(t)
	cfg.PaystackSecretKey = "sk_test"
	cfg.PaystackBaseURL = stub.URL
	config.SetForTesting(cfg)

	status, id, err := PaystackVerify(context.Background(), "GIVING-1-AAAAAA")
	require.NoError(t, err)
	assert.Equal(t, "success", status)
	assert.Equal(t, "987", id)
}

func TestPaystackSignatureValid(t *testing.T) {
	cfg := testConfig(t)
	cfg.PaystackSecretKey = "sk_test"
	config.SetForTesting(cfg)

	body := []byte(`{"event":"charge.success"}`)
	mac := hmac.New(sha512.New, []byte("sk_test"))
	mac.Write(body)
	good := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, PaystackSignatureValid(body, good))
	assert.False(t, PaystackSignatureValid(body, "deadbeef"))
	assert.False(t, PaystackSignatureValid(body, ""))
	assert.False(t, PaystackSignatureValid([]byte(`tampered`), good))
}

func TestFlutterwaveInitialize(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/payments", r.URL.Path)
		fmt.Fprint(w, `{"status":"success","data":{"link":"https://pay.test/xyz"}}`)
	}))
	defer stub.Close()

	cfg := testConfig(t)
	cfg.FlutterwaveSecretKey = "flw_test"
	cfg.FlutterwaveBaseURL = stub.URL
	config.SetForTesting(cfg)

	init, err := FlutterwaveInitialize(context.Background(), "Ada", "a@b.c", 100, "NGN", "GIVING-2-BBBBBB", "")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/xyz", init.AuthorizationURL)
	assert.Equal(t, "GIVING-2-BBBBBB", init.ProviderRef)
}

func TestFlutterwaveVerify(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/transactions/777/verify", r.URL.Path)
		fmt.Fprint(w, `{"status":"success","data":{"id":777,"tx_ref":"GIVING-2-BBBBBB","status":"successful"}}`)
	}))
	defer stub.Close()

	cfg := testConfig(t)
	cfg.FlutterwaveSecretKey = "flw_test"
	cfg.FlutterwaveBaseURL = stub.URL
	config.SetForTesting(cfg)

	status, txRef, err := FlutterwaveVerify(context.Background(), "777")
	require.NoError(t, err)
	assert.Equal(t, "successful", status)
	assert.Equal(t, "GIVING-2-BBBBBB", txRef)
}

func TestFlutterwaveHashValid(t *testing.T) {
	cfg := testConfig(t)
	cfg.FlutterwaveVerifHash = "verif-secret"
	config.SetForTesting(cfg)

	assert.True(t, FlutterwaveHashValid("verif-secret"))
	assert.False(t, FlutterwaveHashValid("wrong"))
	assert.False(t, FlutterwaveHashValid(""))
}

func TestProvidersRequireConfiguration(t *testing.T) {
	config.SetForTesting(testConfig(t))

	_, err := PaystackInitialize(context.Background(), "a@b.c", 10, "NGN", "r", "")
	assert.Error(t, err)
	_, _, err = PaystackVerify(context.Background(), "r")
	assert.Error(t, err)
	_, err = FlutterwaveInitialize(context.Background(), "n", "a@b.c", 10, "NGN", "r", "")
	assert.Error(t, err)
}
