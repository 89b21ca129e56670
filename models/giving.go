package models

import "time"

// Giving types accepted from the public form.
var GivingTypes = []string{"Tithe", "Offering", "Building Fund", "Missions"}

// Payment providers.
const (
	ProviderPaystack    = "paystack"
	ProviderFlutterwave = "flutterwave"
)

// Transaction statuses. Rows start pending and are finalized exactly once by
// the provider webhook.
const (
	GivingStatusPending    = "pending"
	GivingStatusSuccessful = "successful"
	GivingStatusFailed     = "failed"
	GivingStatusCancelled  = "cancelled"
)

// GivingTransaction is a donation attempt. PaymentReference is generated
// server-side, immutable and unique.
type GivingTransaction struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:128;not null" json:"name"`
	Email            string    `gorm:"size:255;not null" json:"email"`
	Amount           float64   `gorm:"not null" json:"amount"`
	Currency         string    `gorm:"size:8;not null" json:"currency"`
	GivingType       string    `gorm:"size:32;not null" json:"givingType"`
	PaymentProvider  string    `gorm:"size:16;not null" json:"paymentProvider"`
	PaymentReference string    `gorm:"size:64;uniqueIndex;not null" json:"paymentReference"`
	TransactionID    string    `gorm:"size:128" json:"transactionId"`
	Status           string    `gorm:"size:16;index;not null;default:pending" json:"status"`
	ReceiptSent      bool      `json:"receiptSent"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
