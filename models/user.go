package models

import "time"

// Role values for User.Role.
const (
	RoleAdmin = "admin"
)

// User is a dashboard account. The site has no self-registration; the single
// admin account is seeded from configuration at boot.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Email        string    `gorm:"size:255" json:"email"`
	Role         string    `gorm:"size:16;not null;default:admin" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
