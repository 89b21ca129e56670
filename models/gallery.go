package models

import "time"

// GalleryImage is a photo shown in the public gallery. Rows are created either
// directly through the gallery CRUD endpoint or mirrored from a completed
// gallery upload, in which case UploadID records the source UploadedFile.
type GalleryImage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	ImageURL     string    `gorm:"size:1024;not null" json:"imageUrl"`
	Album        string    `gorm:"size:128;index" json:"album"`
	Photographer string    `gorm:"size:128" json:"photographer"`
	Date         string    `gorm:"size:32" json:"date"`
	UploadID     uint      `gorm:"index" json:"uploadId"` // 0 when not mirrored from an upload
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
