package models

import "time"

// Event is a calendar entry shown on the public events page.
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Date        string    `gorm:"size:32;not null" json:"date"`
	Time        string    `gorm:"size:32" json:"time"`
	Venue       string    `gorm:"size:255" json:"venue"`
	Type        string    `gorm:"size:64" json:"type"` // e.g. Youth Program, Conference
	ImageURL    string    `gorm:"size:1024" json:"imageUrl"`
	Recurring   bool      `json:"recurring"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
