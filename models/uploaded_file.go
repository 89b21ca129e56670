package models

import "time"

// Upload categories.
const (
	UploadTypeSermon   = "sermon"
	UploadTypeGallery  = "gallery"
	UploadTypeSettings = "settings"
)

// Storage backends.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendBlob  = "blob"
)

// Upload statuses. Status only ever moves pending -> completed.
const (
	UploadStatusPending   = "pending"
	UploadStatusCompleted = "completed"
)

// UploadedFile records a file stored in one of the upload backends. Direct
// uploads are written as completed; presigned S3 uploads start pending and are
// flipped by the confirm call.
type UploadedFile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OriginalName string    `gorm:"size:512;not null" json:"originalName"`
	Filename     string    `gorm:"size:512;not null" json:"filename"`
	Type         string    `gorm:"size:16;index;not null" json:"type"`
	Size         int64     `json:"size"`
	MimeType     string    `gorm:"size:128" json:"mimeType"`
	URL          string    `gorm:"size:1024" json:"url"`
	StorageKey   string    `gorm:"size:1024" json:"storageKey"` // backend object key or filesystem path
	Backend      string    `gorm:"size:16;not null" json:"backend"`
	Metadata     string    `gorm:"type:text" json:"metadata"` // open JSON mapping from the dashboard
	UploadedBy   string    `gorm:"size:128" json:"uploadedBy"`
	Status       string    `gorm:"size:16;index;not null;default:pending" json:"status"`
	CreatedAt    time.Time `json:"uploadedAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
