package utils

import (
	"context"
	"log"
	"time"

	"github.com/gracechapel/churchweb/config"
	"github.com/gracechapel/churchweb/models"
)

// Pending uploads older than this never got confirmed; the presigned PUT
// either failed or was abandoned.
const pendingUploadMaxAge = 24 * time.Hour

// StartUploadReaper launches a background goroutine that periodically removes
// stale pending upload records and their backend objects. It is best-effort
// and logs failures.
func StartUploadReaper(interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			cutoff := time.Now().Add(-pendingUploadMaxAge)
			var items []models.UploadedFile
			if err := db.Where("status = ? AND created_at <= ?", models.UploadStatusPending, cutoff).Limit(100).Find(&items).Error; err != nil {
				log.Printf("upload reaper query failed: %v", err)
				continue
			}
			for _, it := range items {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if err := DeleteStoredObject(ctx, &it); err != nil {
					log.Printf("upload reaper backend delete failed id=%d: %v", it.ID, err)
				}
				cancel()
				// Remove row regardless of backend deletion outcome
				if err := db.Delete(&models.UploadedFile{}, it.ID).Error; err != nil {
					log.Printf("upload reaper delete row failed: %v", err)
				}
			}
		}
	}()
}

// DeleteStoredObject removes a file's backend object according to its backend.
func DeleteStoredObject(ctx context.Context, f *models.UploadedFile) error {
	switch f.Backend {
	case models.BackendLocal:
		return DeleteLocalFile(f.StorageKey)
	case models.BackendS3:
		return DeleteS3Object(ctx, f.StorageKey)
	case models.BackendBlob:
		return BlobDelete(ctx, f.URL)
	default:
		return nil
	}
}
