package models

import "time"

// Sermon is a published message recording: audio or video plus teaching notes.
type Sermon struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Speaker      string    `gorm:"size:128" json:"speaker"`
	Date         string    `gorm:"size:32" json:"date"` // YYYY-MM-DD as entered by the dashboard
	Scripture    string    `gorm:"size:255" json:"scripture"`
	Description  string    `gorm:"type:text" json:"description"`
	AudioURL     string    `gorm:"size:1024" json:"audioUrl"`
	VideoURL     string    `gorm:"size:1024" json:"videoUrl"`
	ThumbnailURL string    `gorm:"size:1024" json:"thumbnailUrl"`
	Series       string    `gorm:"size:128" json:"series"`
	Tags         string    `gorm:"size:512" json:"tags"` // comma separated
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
