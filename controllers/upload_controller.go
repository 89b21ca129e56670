package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gracechapel/churchweb/config"
	"github.com/gracechapel/churchweb/models"
	"github.com/gracechapel/churchweb/utils"
)

const (
	directUploadLimit  = 50 * 1024 * 1024  // server-proxied uploads
	presignUploadLimit = 100 * 1024 * 1024 // client PUTs straight to S3
)

// UploadController implements the multi-backend upload pipeline: direct
// multipart uploads to local disk or Vercel Blob, presigned S3 uploads with a
// confirm step, listing and deletion.
type UploadController struct {
	db *gorm.DB
}

// NewUploadController creates a new UploadController instance.
func NewUploadController(db *gorm.DB) *UploadController {
	return &UploadController{db: db}
}

// allowedMimeType checks the declared content type against the upload category.
func allowedMimeType(uploadType, mimeType string) bool {
	switch uploadType {
	case models.UploadTypeGallery, models.UploadTypeSettings:
		return strings.HasPrefix(mimeType, "image/")
	case models.UploadTypeSermon:
		return strings.HasPrefix(mimeType, "audio/") || strings.HasPrefix(mimeType, "video/")
	default:
		return false
	}
}

func validUploadType(t string) bool {
	switch t {
	case models.UploadTypeSermon, models.UploadTypeGallery, models.UploadTypeSettings:
		return true
	}
	return false
}

// timestampedFilename prefixes the original name with a millisecond timestamp
// so concurrent uploads of the same file cannot collide.
func timestampedFilename(original string) string {
	name := filepath.Base(original)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == "" || name == "/" {
		name = "file"
	}
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), name)
}

// Upload handles a direct multipart upload. The file is written server-side
// to local disk or Vercel Blob and the record is created already completed.
func (u *UploadController) Upload(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40090, "no file uploaded")
		return
	}
	defer file.Close()

	uploadType := strings.TrimSpace(ctx.PostForm("type"))
	if !validUploadType(uploadType) {
		utils.Error(ctx, http.StatusBadRequest, 40091, "invalid upload type")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !allowedMimeType(uploadType, mimeType) {
		utils.Error(ctx, http.StatusBadRequest, 40092, "file format not allowed for this category")
		return
	}

	if header.Size > 0 && header.Size > directUploadLimit {
		utils.Error(ctx, http.StatusBadRequest, 40093, "file size exceeds 50MB")
		return
	}

	metadata := ctx.PostForm("metadata")
	if metadata != "" && !json.Valid([]byte(metadata)) {
		utils.Error(ctx, http.StatusBadRequest, 40094, "metadata must be valid JSON")
		return
	}

	backend := strings.TrimSpace(ctx.PostForm("backend"))
	if backend == "" {
		backend = config.Get().StorageBackend
	}
	if backend == models.BackendS3 {
		// S3 goes through the presigned flow, never proxied through here
		utils.Error(ctx, http.StatusBadRequest, 40095, "use the presign endpoint for s3 uploads")
		return
	}

	filename := timestampedFilename(header.Filename)

	var url, storageKey string
	switch backend {
	case models.BackendLocal:
		url, storageKey, err = utils.SaveLocalFile(file, filename, directUploadLimit)
	case models.BackendBlob:
		url, err = utils.BlobPut(ctx.Request.Context(), uploadType+"/"+filename, mimeType, file)
		storageKey = uploadType + "/" + filename
	default:
		utils.Error(ctx, http.StatusBadRequest, 40096, "unknown storage backend")
		return
	}
	if err != nil {
		if errors.Is(err, utils.ErrFileTooLarge) {
			utils.Error(ctx, http.StatusBadRequest, 40093, "file size exceeds 50MB")
			return
		}
		utils.Sugar.Errorf("upload backend write failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to store file")
		return
	}

	record := models.UploadedFile{
		OriginalName: header.Filename,
		Filename:     filename,
		Type:         uploadType,
		Size:         header.Size,
		MimeType:     mimeType,
		URL:          url,
		StorageKey:   storageKey,
		Backend:      backend,
		Metadata:     metadata,
		UploadedBy:   getUsername(ctx),
		Status:       models.UploadStatusCompleted,
	}
	if err := u.db.Create(&record).Error; err != nil {
		utils.Sugar.Errorf("upload record insert failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to record upload")
		return
	}

	// Direct gallery uploads mirror immediately; no confirm step follows.
	if record.Type == models.UploadTypeGallery {
		u.mirrorGalleryImage(&record)
	}

	utils.Created(ctx, gin.H{"upload": record})
}

// Presign returns a time-limited S3 PUT URL and creates a pending record the
// client must confirm after its direct upload succeeds.
func (u *UploadController) Presign(ctx *gin.Context) {
	var req struct {
		Filename    string `json:"filename" binding:"required"`
		ContentType string `json:"contentType" binding:"required"`
		Size        int64  `json:"size"`
		Type        string `json:"type" binding:"required"`
		Metadata    string `json:"metadata"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40097, "invalid request payload")
		return
	}
	if !validUploadType(req.Type) {
		utils.Error(ctx, http.StatusBadRequest, 40091, "invalid upload type")
		return
	}
	if !allowedMimeType(req.Type, req.ContentType) {
		utils.Error(ctx, http.StatusBadRequest, 40092, "file format not allowed for this category")
		return
	}
	if req.Size > presignUploadLimit {
		utils.Error(ctx, http.StatusBadRequest, 40098, "file size exceeds 100MB")
		return
	}
	if req.Metadata != "" && !json.Valid([]byte(req.Metadata)) {
		utils.Error(ctx, http.StatusBadRequest, 40094, "metadata must be valid JSON")
		return
	}

	filename := timestampedFilename(req.Filename)
	key := utils.S3StorageKey(req.Type, filename)

	putURL, err := utils.PresignS3Put(ctx.Request.Context(), key, req.ContentType)
	if err != nil {
		utils.Sugar.Errorf("presign failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to presign upload")
		return
	}

	record := models.UploadedFile{
		OriginalName: req.Filename,
		Filename:     filename,
		Type:         req.Type,
		Size:         req.Size,
		MimeType:     req.ContentType,
		URL:          utils.PublicS3URL(key),
		StorageKey:   key,
		Backend:      models.BackendS3,
		Metadata:     req.Metadata,
		UploadedBy:   getUsername(ctx),
		Status:       models.UploadStatusPending,
	}
	if err := u.db.Create(&record).Error; err != nil {
		utils.Sugar.Errorf("upload record insert failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to record upload")
		return
	}

	utils.Created(ctx, gin.H{
		"upload":    record,
		"uploadUrl": putURL,
		"expiresIn": 15 * 60,
	})
}

// Confirm flips a pending presigned upload to completed. Confirming an
// already-completed upload is a no-op success. Gallery images in JPEG/PNG
// format are mirrored into the gallery collection exactly once.
func (u *UploadController) Confirm(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40461, "upload not found")
		return
	}
	var record models.UploadedFile
	if err := u.db.First(&record, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40461, "upload not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50093, "failed to load upload")
		return
	}

	if record.Status == models.UploadStatusCompleted {
		utils.Success(ctx, gin.H{"upload": record})
		return
	}

	record.Status = models.UploadStatusCompleted
	record.UpdatedAt = time.Now()
	if err := u.db.Save(&record).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50094, "failed to confirm upload")
		return
	}

	if record.Type == models.UploadTypeGallery {
		u.mirrorGalleryImage(&record)
	}

	utils.Success(ctx, gin.H{"upload": record})
}

// mirrorGalleryImage inserts a GalleryImage for a completed gallery upload.
// Only JPEG/PNG are mirrored, and only once per upload.
func (u *UploadController) mirrorGalleryImage(record *models.UploadedFile) {
	if record.MimeType != "image/jpeg" && record.MimeType != "image/png" {
		return
	}

	var count int64
	if err := u.db.Model(&models.GalleryImage{}).Where("upload_id = ?", record.ID).Count(&count).Error; err != nil || count > 0 {
		return
	}

	title := record.OriginalName
	album := ""
	photographer := ""
	if record.Metadata != "" {
		var meta map[string]string
		if err := json.Unmarshal([]byte(record.Metadata), &meta); err == nil {
			if v := meta["title"]; v != "" {
				title = v
			}
			album = meta["album"]
			photographer = meta["photographer"]
		}
	}

	image := models.GalleryImage{
		Title:        utils.SanitizePlain(title),
		ImageURL:     record.URL,
		Album:        utils.SanitizePlain(album),
		Photographer: utils.SanitizePlain(photographer),
		Date:         time.Now().Format("2006-01-02"),
		UploadID:     record.ID,
	}
	if err := u.db.Create(&image).Error; err != nil {
		utils.Sugar.Errorf("gallery mirror insert failed for upload %d: %v", record.ID, err)
		return
	}
	utils.InvalidateByPrefix("cache:gallery:")
}

// ListUploads returns uploads for the dashboard, optionally by type. Admin only.
func (u *UploadController) ListUploads(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	uploadType := strings.TrimSpace(ctx.Query("type"))

	var uploads []models.UploadedFile
	var total int64

	query := u.db.Order("created_at DESC")
	if uploadType != "" {
		query = query.Where("type = ?", uploadType)
	}
	if err := query.Model(&models.UploadedFile{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50095, "failed to count uploads")
		return
	}
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&uploads).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50096, "failed to list uploads")
		return
	}

	utils.Success(ctx, gin.H{
		"items": uploads,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	})
}

// Delete removes the backend object (best-effort) then the record
// unconditionally. Admin only.
func (u *UploadController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40462, "upload not found")
		return
	}
	var record models.UploadedFile
	if err := u.db.First(&record, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40462, "upload not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50097, "failed to load upload")
		return
	}

	if err := utils.DeleteStoredObject(ctx.Request.Context(), &record); err != nil {
		// Backend deletion is best-effort; the record goes away regardless
		utils.Sugar.Warnf("backend delete failed for upload %d: %v", record.ID, err)
	}

	if err := u.db.Delete(&record).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50098, "failed to delete upload record")
		return
	}

	utils.Success(ctx, gin.H{"deleted": record.ID})
}
