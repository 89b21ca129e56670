package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gracechapel/churchweb/models"
	"github.com/gracechapel/churchweb/utils"
)

// SermonController manages CRUD operations for sermons.
type SermonController struct {
	db *gorm.DB
}

// NewSermonController creates a new SermonController instance.
func NewSermonController(db *gorm.DB) *SermonController {
	return &SermonController{db: db}
}

// ListSermons returns paginated sermons, newest first. Public.
func (s *SermonController) ListSermons(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))
	series := strings.TrimSpace(ctx.Query("series"))

	// Cache only un-searched lists to avoid cache key explosion
	if search == "" {
		cacheKey := fmt.Sprintf("cache:sermons:list:series=%s:page=%d:size=%d", series, page, pageSize)
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(200, "application/json", b)
			return
		}
	}

	var sermons []models.Sermon
	var total int64

	query := s.db.Order("date DESC, created_at DESC")
	if search != "" {
		query = query.Where("title LIKE ? OR speaker LIKE ? OR scripture LIKE ?", "%"+search+"%", "%"+search+"%", "%"+search+"%")
	}
	if series != "" {
		query = query.Where("series = ?", series)
	}
	if err := query.Model(&models.Sermon{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count sermons")
		return
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&sermons).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list sermons")
		return
	}

	payload := gin.H{
		"items": sermons,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	}
	if search == "" {
		cacheKey := fmt.Sprintf("cache:sermons:list:series=%s:page=%d:size=%d", series, page, pageSize)
		wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
		utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	}
	utils.Success(ctx, payload)
}

// GetSermon returns a single sermon. Public.
func (s *SermonController) GetSermon(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40402, "sermon not found")
		return
	}
	var sermon models.Sermon
	if err := s.db.First(&sermon, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40402, "sermon not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load sermon")
		return
	}
	utils.Success(ctx, gin.H{"sermon": sermon})
}

// CreateSermon adds a sermon. Admin only.
func (s *SermonController) CreateSermon(ctx *gin.Context) {
	var req struct {
		Title        string `json:"title" binding:"required,min=1"`
		Speaker      string `json:"speaker"`
		Date         string `json:"date"`
		Scripture    string `json:"scripture"`
		Description  string `json:"description"`
		AudioURL     string `json:"audioUrl"`
		VideoURL     string `json:"videoUrl"`
		ThumbnailURL string `json:"thumbnailUrl"`
		Series       string `json:"series"`
		Tags         string `json:"tags"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	title := utils.SanitizePlain(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}

	sermon := models.Sermon{
		Title:        title,
		Speaker:      utils.SanitizePlain(req.Speaker),
		Date:         req.Date,
		Scripture:    utils.SanitizePlain(req.Scripture),
		Description:  utils.Sanitize(req.Description),
		AudioURL:     req.AudioURL,
		VideoURL:     req.VideoURL,
		ThumbnailURL: req.ThumbnailURL,
		Series:       utils.SanitizePlain(req.Series),
		Tags:         utils.SanitizePlain(req.Tags),
	}

	if err := s.db.Create(&sermon).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create sermon")
		return
	}

	utils.InvalidateByPrefix("cache:sermons:")
	utils.InvalidateKnowledgeBase()
	utils.Created(ctx, gin.H{"sermon": sermon})
}

// UpdateSermon merges a partial update into an existing sermon. Admin only.
func (s *SermonController) UpdateSermon(ctx *gin.Context) {
	var req struct {
		Title        *string `json:"title"`
		Speaker      *string `json:"speaker"`
		Date         *string `json:"date"`
		Scripture    *string `json:"scripture"`
		Description  *string `json:"description"`
		AudioURL     *string `json:"audioUrl"`
		VideoURL     *string `json:"videoUrl"`
		ThumbnailURL *string `json:"thumbnailUrl"`
		Series       *string `json:"series"`
		Tags         *string `json:"tags"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}

	id, ok := parseID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40403, "sermon not found")
		return
	}
	var sermon models.Sermon
	if err := s.db.First(&sermon, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40403, "sermon not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load sermon")
		return
	}

	if req.Title != nil {
		title := utils.SanitizePlain(strings.TrimSpace(*req.Title))
		if title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40025, "title cannot be empty")
			return
		}
		sermon.Title = title
	}
	if req.Speaker != nil {
		sermon.Speaker = utils.SanitizePlain(*req.Speaker)
	}
	if req.Date != nil {
		sermon.Date = *req.Date
	}
	if req.Scripture != nil {
		sermon.Scripture = utils.SanitizePlain(*req.Scripture)
	}
	if req.Description != nil {
		sermon.Description = utils.Sanitize(*req.Description)
	}
	if req.AudioURL != nil {
		sermon.AudioURL = *req.AudioURL
	}
	if req.VideoURL != nil {
		sermon.VideoURL = *req.VideoURL
	}
	if req.ThumbnailURL != nil {
		sermon.ThumbnailURL = *req.ThumbnailURL
	}
	if req.Series != nil {
		sermon.Series = utils.SanitizePlain(*req.Series)
	}
	if req.Tags != nil {
		sermon.Tags = utils.SanitizePlain(*req.Tags)
	}
	sermon.UpdatedAt = time.Now()

	if err := s.db.Save(&sermon).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update sermon")
		return
	}

	utils.InvalidateByPrefix("cache:sermons:")
	utils.InvalidateKnowledgeBase()
	utils.Success(ctx, gin.H{"sermon": sermon})
}

// DeleteSermon removes a sermon. Admin only.
func (s *SermonController) DeleteSermon(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40404, "sermon not found")
		return
	}
	var sermon models.Sermon
	if err := s.db.First(&sermon, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40404, "sermon not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load sermon")
		return
	}

	if err := s.db.Delete(&sermon).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete sermon")
		return
	}

	utils.InvalidateByPrefix("cache:sermons:")
	utils.InvalidateKnowledgeBase()
	utils.Success(ctx, gin.H{"deleted": sermon.ID})
}
