package controllers_test

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gracechapel/churchweb/models"
)

var referencePattern = regexp.MustCompile(`^GIVING-\d+-[A-Z0-9]{6}$`)

// paystackStub fakes the two Paystack endpoints the flow touches.
func paystackStub(t *testing.T, verifyStatus string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/transaction/initialize":
			var req struct {
				Reference string `json:"reference"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			fmt.Fprintf(w, `{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.test/%s","access_code":"ac","reference":"%s"}}`, req.Reference, req.Reference)
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/transaction/verify/"):
			ref := strings.TrimPrefix(r.URL.Path, "/transaction/verify/")
			fmt.Fprintf(w, `{"status":true,"message":"Verification successful","data":{"id":4242,"status":"%s","reference":"%s","amount":500000,"currency":"NGN"}}`, verifyStatus, ref)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func paystackSign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateGivingValidation(t *testing.T) {
	db, r := newTestEnv(t, testConfig(t))

	cases := []map[string]interface{}{
		{"email": "a@b.c", "amount": 100, "givingType": "Tithe", "paymentProvider": "paystack"},                          // missing name
		{"name": "Ada", "email": "not-an-email", "amount": 100, "givingType": "Tithe", "paymentProvider": "paystack"},    // bad email
		{"name": "Ada", "email": "a@b.c", "amount": -5, "givingType": "Tithe", "paymentProvider": "paystack"},            // negative amount
		{"name": "Ada", "email": "a@b.c", "amount": 100, "givingType": "Raffle", "paymentProvider": "paystack"},          // unknown type
		{"name": "Ada", "email": "a@b.c", "amount": 100, "givingType": "Tithe", "paymentProvider": "stripe"},             // unknown provider
	}
	for _, c := range cases {
		w := doJSON(r, http.MethodPost, "/api/v1/giving", c, "")
		requireStatus(t, w, http.StatusBadRequest)
	}

	var count int64
	require.NoError(t, db.Model(&models.GivingTransaction{}).Count(&count).Error)
	require.Zero(t, count, "invalid requests must not create rows")
}

func TestCreateGivingPaystack(t *testing.T) {
	stub := paystackStub(t, "success")
	defer stub.Close()

	cfg := testConfig(t)
	cfg.PaystackSecretKey = "sk_test_secret"
	cfg.PaystackBaseURL = stub.URL
	db, r := newTestEnv(t, cfg)

	w := doJSON(r, http.MethodPost, "/api/v1/giving", map[string]interface{}{
		"name":            "Ada Obi",
		"email":           "ada@example.com",
		"amount":          5000,
		"givingType":      "Building Fund",
		"paymentProvider": "paystack",
	}, "")
	requireStatus(t, w, http.StatusCreated)

	var data struct {
		Reference        string `json:"reference"`
		AuthorizationURL string `json:"authorizationUrl"`
	}
	decodeData(t, w, &data)
	require.Regexp(t, referencePattern, data.Reference)
	require.Contains(t, data.AuthorizationURL, "https://checkout.test/")

	var tx models.GivingTransaction
	require.NoError(t, db.Where("payment_reference = ?", data.Reference).First(&tx).Error)
	require.Equal(t, models.GivingStatusPending, tx.Status)
	require.Equal(t, "NGN", tx.Currency)
	require.False(t, tx.ReceiptSent)
}

func TestCreateGivingKeepsPendingRowOnProviderFailure(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer stub.Close()

	cfg := testConfig(t)
	cfg.PaystackSecretKey = "sk_test_secret"
	cfg.PaystackBaseURL = stub.URL
	db, r := newTestEnv(t, cfg)

	w := doJSON(r, http.MethodPost, "/api/v1/giving", map[string]interface{}{
		"name":            "Ada Obi",
		"email":           "ada@example.com",
		"amount":          1000,
		"givingType":      "Tithe",
		"paymentProvider": "paystack",
	}, "")
	requireStatus(t, w, http.StatusInternalServerError)

	// The row survives for reconciliation
	var tx models.GivingTransaction
	require.NoError(t, db.First(&tx).Error)
	require.Equal(t, models.GivingStatusPending, tx.Status)
}

func TestPaystackWebhookFinalizesOnce(t *testing.T) {
	stub := paystackStub(t, "success")
	defer stub.Close()

	cfg := testConfig(t)
	cfg.PaystackSecretKey = "sk_test_secret"
	cfg.PaystackBaseURL = stub.URL
	db, r := newTestEnv(t, cfg)

	tx := models.GivingTransaction{
		Name:             "Ada Obi",
		Email:            "ada@example.com",
		Amount:           5000,
		Currency:         "NGN",
		GivingType:       "Tithe",
		PaymentProvider:  models.ProviderPaystack,
		PaymentReference: "GIVING-1756380000000-ABC123",
		Status:           models.GivingStatusPending,
	}
	require.NoError(t, db.Create(&tx).Error)

	body := []byte(fmt.Sprintf(`{"event":"charge.success","data":{"reference":"%s"}}`, tx.PaymentReference))

	// Missing/invalid signature is rejected before any lookup
	req := httptest.NewRequest(http.MethodPost, "/api/v1/giving/webhook/paystack", strings.NewReader(string(body)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	requireStatus(t, w, http.StatusUnauthorized)

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/giving/webhook/paystack", strings.NewReader(string(body)))
		req.Header.Set("x-paystack-signature", paystackSign(cfg.PaystackSecretKey, body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	requireStatus(t, post(), http.StatusOK)

	var stored models.GivingTransaction
	require.NoError(t, db.First(&stored, tx.ID).Error)
	require.Equal(t, models.GivingStatusSuccessful, stored.Status)
	require.Equal(t, "4242", stored.TransactionID)

	// Retry is idempotent
	requireStatus(t, post(), http.StatusOK)
	require.NoError(t, db.First(&stored, tx.ID).Error)
	require.Equal(t, models.GivingStatusSuccessful, stored.Status)
}

func TestWebhookPersistsTransitionWhenReceiptMailFails(t *testing.T) {
	stub := paystackStub(t, "success")
	defer stub.Close()

	cfg := testConfig(t)
	cfg.PaystackSecretKey = "sk_test_secret"
	cfg.PaystackBaseURL = stub.URL
	db, r := newTestEnv(t, cfg)

	tx := models.GivingTransaction{
		Name: "Ada", Email: "ada@example.com", Amount: 250, Currency: "NGN",
		GivingType: "Tithe", PaymentProvider: models.ProviderPaystack,
		PaymentReference: "GIVING-1756380000003-JKL012", Status: models.GivingStatusPending,
	}
	require.NoError(t, db.Create(&tx).Error)

	body := []byte(fmt.Sprintf(`{"event":"charge.success","data":{"reference":"%s"}}`, tx.PaymentReference))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/giving/webhook/paystack", strings.NewReader(string(body)))
	req.Header.Set("x-paystack-signature", paystackSign(cfg.PaystackSecretKey, body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	requireStatus(t, w, http.StatusOK)

	// SMTP is unconfigured here so the receipt send fails; the status
	// transition must be on disk anyway, with the receipt flag still unset.
	var stored models.GivingTransaction
	require.NoError(t, db.First(&stored, tx.ID).Error)
	require.Equal(t, models.GivingStatusSuccessful, stored.Status)
	require.False(t, stored.ReceiptSent)
}

func TestPaystackWebhookFailedCharge(t *testing.T) {
	stub := paystackStub(t, "failed")
	defer stub.Close()

	cfg := testConfig(t)
	cfg.PaystackSecretKey = "sk_test_secret"
	cfg.PaystackBaseURL = stub.URL
	db, r := newTestEnv(t, cfg)

	tx := models.GivingTransaction{
		Name: "Ada", Email: "ada@example.com", Amount: 100, Currency: "NGN",
		GivingType: "Offering", PaymentProvider: models.ProviderPaystack,
		PaymentReference: "GIVING-1756380000001-DEF456", Status: models.GivingStatusPending,
	}
	require.NoError(t, db.Create(&tx).Error)

	body := []byte(fmt.Sprintf(`{"event":"charge.failed","data":{"reference":"%s"}}`, tx.PaymentReference))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/giving/webhook/paystack", strings.NewReader(string(body)))
	req.Header.Set("x-paystack-signature", paystackSign(cfg.PaystackSecretKey, body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	requireStatus(t, w, http.StatusOK)

	var stored models.GivingTransaction
	require.NoError(t, db.First(&stored, tx.ID).Error)
	require.Equal(t, models.GivingStatusFailed, stored.Status)
	require.False(t, stored.ReceiptSent)
}

func TestFlutterwaveWebhook(t *testing.T) {
	ref := "GIVING-1756380000002-GHI789"
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/v3/transactions/777/verify" {
			fmt.Fprintf(w, `{"status":"success","message":"ok","data":{"id":777,"tx_ref":"%s","status":"successful","amount":100,"currency":"NGN"}}`, ref)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer stub.Close()

	cfg := testConfig(t)
	cfg.FlutterwaveSecretKey = "flw_test_secret"
	cfg.FlutterwaveBaseURL = stub.URL
	cfg.FlutterwaveVerifHash = "verif-hash-value"
	db, r := newTestEnv(t, cfg)

	tx := models.GivingTransaction{
		Name: "Ada", Email: "ada@example.com", Amount: 100, Currency: "NGN",
		GivingType: "Missions", PaymentProvider: models.ProviderFlutterwave,
		PaymentReference: ref, Status: models.GivingStatusPending,
	}
	require.NoError(t, db.Create(&tx).Error)

	body := `{"event":"charge.completed","data":{"id":777,"tx_ref":"` + ref + `"}}`

	// Wrong hash
	req := httptest.NewRequest(http.MethodPost, "/api/v1/giving/webhook/flutterwave", strings.NewReader(body))
	req.Header.Set("verif-hash", "nope")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	requireStatus(t, w, http.StatusUnauthorized)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/giving/webhook/flutterwave", strings.NewReader(body))
	req.Header.Set("verif-hash", cfg.FlutterwaveVerifHash)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	requireStatus(t, w, http.StatusOK)

	var stored models.GivingTransaction
	require.NoError(t, db.First(&stored, tx.ID).Error)
	require.Equal(t, models.GivingStatusSuccessful, stored.Status)
	require.Equal(t, "777", stored.TransactionID)
}

func TestListTransactionsAdminOnly(t *testing.T) {
	db, r := newTestEnv(t, testConfig(t))

	require.NoError(t, db.Create(&models.GivingTransaction{
		Name: "Ada", Email: "a@b.c", Amount: 10, Currency: "NGN",
		GivingType: "Tithe", PaymentProvider: models.ProviderPaystack,
		PaymentReference: "GIVING-1-AAAAAA", Status: models.GivingStatusSuccessful,
	}).Error)
	require.NoError(t, db.Create(&models.GivingTransaction{
		Name: "Obi", Email: "o@b.c", Amount: 20, Currency: "NGN",
		GivingType: "Offering", PaymentProvider: models.ProviderPaystack,
		PaymentReference: "GIVING-2-BBBBBB", Status: models.GivingStatusPending,
	}).Error)

	w := doJSON(r, http.MethodGet, "/api/v1/giving", nil, "")
	requireStatus(t, w, http.StatusUnauthorized)

	w = doJSON(r, http.MethodGet, "/api/v1/giving?status=pending", nil, adminToken(t))
	requireStatus(t, w, http.StatusOK)
	var list struct {
		Items []models.GivingTransaction `json:"items"`
	}
	decodeData(t, w, &list)
	require.Len(t, list.Items, 1)
	require.Equal(t, "GIVING-2-BBBBBB", list.Items[0].PaymentReference)
}
