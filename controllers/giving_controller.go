package controllers

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gracechapel/churchweb/config"
	"github.com/gracechapel/churchweb/models"
	"github.com/gracechapel/churchweb/utils"
)

// GivingController handles the donation flow: creating a pending transaction,
// redirecting the giver to the provider checkout, and finalizing the row from
// provider webhooks.
type GivingController struct {
	db *gorm.DB
}

// NewGivingController creates a new GivingController instance.
func NewGivingController(db *gorm.DB) *GivingController {
	return &GivingController{db: db}
}

const referenceCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateReference builds a unique payment reference:
// GIVING-{unix-ms}-{6 random alphanumerics}.
func generateReference() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; fall back to time
		return fmt.Sprintf("GIVING-%d-%06d", time.Now().UnixMilli(), time.Now().Nanosecond()%1000000)
	}
	for i := range buf {
		buf[i] = referenceCharset[int(buf[i])%len(referenceCharset)]
	}
	return fmt.Sprintf("GIVING-%d-%s", time.Now().UnixMilli(), string(buf))
}

func validGivingType(t string) bool {
	for _, g := range models.GivingTypes {
		if g == t {
			return true
		}
	}
	return false
}

// CreateGiving validates the donation, persists a pending transaction and
// initializes the provider checkout. The pending row is kept even when the
// provider call fails, so support can reconcile later. Public, rate limited.
func (g *GivingController) CreateGiving(ctx *gin.Context) {
	var req struct {
		Name            string  `json:"name" binding:"required,min=1"`
		Email           string  `json:"email" binding:"required,email"`
		Amount          float64 `json:"amount" binding:"required"`
		Currency        string  `json:"currency"`
		GivingType      string  `json:"givingType" binding:"required"`
		PaymentProvider string  `json:"paymentProvider" binding:"required"`
		CallbackURL     string  `json:"callbackUrl"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}
	if req.Amount <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40071, "amount must be greater than zero")
		return
	}
	if !validGivingType(req.GivingType) {
		utils.Error(ctx, http.StatusBadRequest, 40072, "invalid giving type")
		return
	}
	provider := strings.ToLower(strings.TrimSpace(req.PaymentProvider))
	if provider != models.ProviderPaystack && provider != models.ProviderFlutterwave {
		utils.Error(ctx, http.StatusBadRequest, 40073, "unsupported payment provider")
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = config.Get().GivingCurrency
	}

	tx := models.GivingTransaction{
		Name:             utils.SanitizePlain(strings.TrimSpace(req.Name)),
		Email:            strings.TrimSpace(req.Email),
		Amount:           req.Amount,
		Currency:         currency,
		GivingType:       req.GivingType,
		PaymentProvider:  provider,
		PaymentReference: generateReference(),
		Status:           models.GivingStatusPending,
	}
	if err := g.db.Create(&tx).Error; err != nil {
		utils.Sugar.Errorf("giving insert failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50100, "failed to record transaction")
		return
	}

	var init *utils.PaymentInit
	var err error
	switch provider {
	case models.ProviderPaystack:
		init, err = utils.PaystackInitialize(ctx.Request.Context(), tx.Email, tx.Amount, tx.Currency, tx.PaymentReference, req.CallbackURL)
	case models.ProviderFlutterwave:
		init, err = utils.FlutterwaveInitialize(ctx.Request.Context(), tx.Name, tx.Email, tx.Amount, tx.Currency, tx.PaymentReference, req.CallbackURL)
	}
	if err != nil {
		// Pending row stays for reconciliation
		utils.Sugar.Errorf("payment initialize failed for %s: %v", tx.PaymentReference, err)
		utils.Error(ctx, http.StatusInternalServerError, 50101, "failed to initialize payment")
		return
	}

	utils.Created(ctx, gin.H{
		"reference":        tx.PaymentReference,
		"authorizationUrl": init.AuthorizationURL,
		"transaction":      tx,
	})
}

// finalize applies a provider-verified status to a transaction. Only pending
// rows transition; finalized rows are left untouched so webhook retries stay
// idempotent. The receipt email is sent at most once.
func (g *GivingController) finalize(tx *models.GivingTransaction, providerStatus, transactionID string) {
	if tx.Status != models.GivingStatusPending {
		return
	}

	var next string
	switch providerStatus {
	case "success", "successful":
		next = models.GivingStatusSuccessful
	case "failed":
		next = models.GivingStatusFailed
	case "abandoned", "cancelled":
		next = models.GivingStatusCancelled
	default:
		utils.Sugar.Infof("giving %s left pending, provider status %q", tx.PaymentReference, providerStatus)
		return
	}

	if transactionID != "" {
		tx.TransactionID = transactionID
	}
	tx.UpdatedAt = time.Now()

	// Persist the transition before any side effect; RowsAffected guards
	// against a concurrent delivery winning the same pending row and the
	// receipt going out twice.
	res := g.db.Model(tx).Where("status = ?", models.GivingStatusPending).
		Updates(map[string]interface{}{
			"status":         next,
			"transaction_id": tx.TransactionID,
			"updated_at":     tx.UpdatedAt,
		})
	if res.Error != nil {
		utils.Sugar.Errorf("giving finalize update failed for %s: %v", tx.PaymentReference, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		return
	}
	tx.Status = next

	if next == models.GivingStatusSuccessful && !tx.ReceiptSent {
		if err := utils.SendGivingReceipt(tx.Email, tx.Name, tx.GivingType, tx.Currency, tx.Amount, tx.PaymentReference); err != nil {
			utils.Sugar.Warnf("receipt mail failed for %s: %v", tx.PaymentReference, err)
			return
		}
		tx.ReceiptSent = true
		if err := g.db.Model(tx).Update("receipt_sent", true).Error; err != nil {
			utils.Sugar.Errorf("receipt flag update failed for %s: %v", tx.PaymentReference, err)
		}
	}
}

// PaystackWebhook validates the x-paystack-signature header, re-verifies the
// transaction against the API and finalizes the local row.
func (g *GivingController) PaystackWebhook(ctx *gin.Context) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40074, "unreadable body")
		return
	}
	if !utils.PaystackSignatureValid(body, ctx.GetHeader("x-paystack-signature")) {
		utils.Error(ctx, http.StatusUnauthorized, 40171, "invalid signature")
		return
	}

	var event struct {
		Event string `json:"event"`
		Data  struct {
			Reference string `json:"reference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil || event.Data.Reference == "" {
		utils.Error(ctx, http.StatusBadRequest, 40075, "invalid payload")
		return
	}

	var tx models.GivingTransaction
	if err := g.db.Where("payment_reference = ?", event.Data.Reference).First(&tx).Error; err != nil {
		// Unknown reference: ack so the provider stops retrying
		utils.Sugar.Warnf("paystack webhook for unknown reference %s", event.Data.Reference)
		utils.Success(ctx, gin.H{"received": true})
		return
	}

	// Never trust the webhook payload alone
	status, transactionID, err := utils.PaystackVerify(ctx.Request.Context(), tx.PaymentReference)
	if err != nil {
		utils.Sugar.Errorf("paystack verify failed for %s: %v", tx.PaymentReference, err)
		utils.Error(ctx, http.StatusInternalServerError, 50102, "verification failed")
		return
	}

	g.finalize(&tx, status, transactionID)
	utils.Success(ctx, gin.H{"received": true})
}

// FlutterwaveWebhook validates the verif-hash header, re-verifies the
// transaction against the API and finalizes the local row.
func (g *GivingController) FlutterwaveWebhook(ctx *gin.Context) {
	if !utils.FlutterwaveHashValid(ctx.GetHeader("verif-hash")) {
		utils.Error(ctx, http.StatusUnauthorized, 40172, "invalid signature")
		return
	}

	var event struct {
		Event string `json:"event"`
		Data  struct {
			ID    int64  `json:"id"`
			TxRef string `json:"tx_ref"`
		} `json:"data"`
	}
	if err := ctx.ShouldBindJSON(&event); err != nil || event.Data.ID == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40076, "invalid payload")
		return
	}

	transactionID := fmt.Sprintf("%d", event.Data.ID)
	status, txRef, err := utils.FlutterwaveVerify(ctx.Request.Context(), transactionID)
	if err != nil {
		utils.Sugar.Errorf("flutterwave verify failed for tx %s: %v", transactionID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50103, "verification failed")
		return
	}

	var tx models.GivingTransaction
	if err := g.db.Where("payment_reference = ?", txRef).First(&tx).Error; err != nil {
		utils.Sugar.Warnf("flutterwave webhook for unknown reference %s", txRef)
		utils.Success(ctx, gin.H{"received": true})
		return
	}

	g.finalize(&tx, status, transactionID)
	utils.Success(ctx, gin.H{"received": true})
}

// ListTransactions returns donations for the dashboard, optionally filtered
// by status. Admin only.
func (g *GivingController) ListTransactions(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	status := strings.TrimSpace(ctx.Query("status"))

	var txs []models.GivingTransaction
	var total int64

	query := g.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Model(&models.GivingTransaction{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50104, "failed to count transactions")
		return
	}
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&txs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50105, "failed to list transactions")
		return
	}

	utils.Success(ctx, gin.H{
		"items": txs,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	})
}
