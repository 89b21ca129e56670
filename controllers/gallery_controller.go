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

// GalleryController manages CRUD operations for gallery images.
type GalleryController struct {
	db *gorm.DB
}

// NewGalleryController creates a new GalleryController instance.
func NewGalleryController(db *gorm.DB) *GalleryController {
	return &GalleryController{db: db}
}

// ListImages returns paginated gallery images, optionally by album. Public.
func (g *GalleryController) ListImages(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	album := strings.TrimSpace(ctx.Query("album"))

	cacheKey := fmt.Sprintf("cache:gallery:list:album=%s:page=%d:size=%d", album, page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	var images []models.GalleryImage
	var total int64

	query := g.db.Order("created_at DESC")
	if album != "" {
		query = query.Where("album = ?", album)
	}
	if err := query.Model(&models.GalleryImage{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to count images")
		return
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&images).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to list images")
		return
	}

	payload := gin.H{
		"items": images,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// CreateImage adds a gallery image directly (not via upload mirror). Admin only.
func (g *GalleryController) CreateImage(ctx *gin.Context) {
	var req struct {
		Title        string `json:"title" binding:"required,min=1"`
		Description  string `json:"description"`
		ImageURL     string `json:"imageUrl" binding:"required"`
		Album        string `json:"album"`
		Photographer string `json:"photographer"`
		Date         string `json:"date"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	image := models.GalleryImage{
		Title:        utils.SanitizePlain(strings.TrimSpace(req.Title)),
		Description:  utils.Sanitize(req.Description),
		ImageURL:     req.ImageURL,
		Album:        utils.SanitizePlain(req.Album),
		Photographer: utils.SanitizePlain(req.Photographer),
		Date:         req.Date,
	}
	if image.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "title cannot be empty")
		return
	}

	if err := g.db.Create(&image).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to create image")
		return
	}

	utils.InvalidateByPrefix("cache:gallery:")
	utils.Created(ctx, gin.H{"image": image})
}

// UpdateImage merges a partial update into an existing image. Admin only.
func (g *GalleryController) UpdateImage(ctx *gin.Context) {
	var req struct {
		Title        *string `json:"title"`
		Description  *string `json:"description"`
		ImageURL     *string `json:"imageUrl"`
		Album        *string `json:"album"`
		Photographer *string `json:"photographer"`
		Date         *string `json:"date"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid request payload")
		return
	}

	id, ok := parseID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40421, "image not found")
		return
	}
	var image models.GalleryImage
	if err := g.db.First(&image, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40421, "image not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load image")
		return
	}

	if req.Title != nil {
		title := utils.SanitizePlain(strings.TrimSpace(*req.Title))
		if title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40043, "title cannot be empty")
			return
		}
		image.Title = title
	}
	if req.Description != nil {
		image.Description = utils.Sanitize(*req.Description)
	}
	if req.ImageURL != nil {
		image.ImageURL = *req.ImageURL
	}
	if req.Album != nil {
		image.Album = utils.SanitizePlain(*req.Album)
	}
	if req.Photographer != nil {
		image.Photographer = utils.SanitizePlain(*req.Photographer)
	}
	if req.Date != nil {
		image.Date = *req.Date
	}
	image.UpdatedAt = time.Now()

	if err := g.db.Save(&image).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to update image")
		return
	}

	utils.InvalidateByPrefix("cache:gallery:")
	utils.Success(ctx, gin.H{"image": image})
}

// DeleteImage removes a gallery image. Admin only.
func (g *GalleryController) DeleteImage(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40422, "image not found")
		return
	}
	var image models.GalleryImage
	if err := g.db.First(&image, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40422, "image not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to load image")
		return
	}

	if err := g.db.Delete(&image).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to delete image")
		return
	}

	utils.InvalidateByPrefix("cache:gallery:")
	utils.Success(ctx, gin.H{"deleted": image.ID})
}
