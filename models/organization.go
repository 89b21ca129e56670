package models

import "time"

// Organization is a ministry or department (choir, youth, ushering, ...).
type Organization struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Leader      string    `gorm:"size:128" json:"leader"`
	MeetingTime string    `gorm:"size:128" json:"meetingTime"`
	ImageURL    string    `gorm:"size:1024" json:"imageUrl"`
	Contact     string    `gorm:"size:255" json:"contact"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
