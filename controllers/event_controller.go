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

// EventController manages CRUD operations for calendar events.
type EventController struct {
	db *gorm.DB
}

// NewEventController creates a new EventController instance.
func NewEventController(db *gorm.DB) *EventController {
	return &EventController{db: db}
}

// ListEvents returns paginated events, soonest first. Public.
func (e *EventController) ListEvents(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	eventType := strings.TrimSpace(ctx.Query("type"))
	search := strings.TrimSpace(ctx.Query("search"))

	if search == "" {
		cacheKey := fmt.Sprintf("cache:events:list:type=%s:page=%d:size=%d", eventType, page, pageSize)
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(200, "application/json", b)
			return
		}
	}

	var events []models.Event
	var total int64

	query := e.db.Order("date ASC, time ASC")
	if eventType != "" {
		query = query.Where("type = ?", eventType)
	}
	if search != "" {
		query = query.Where("title LIKE ? OR description LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if err := query.Model(&models.Event{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to count events")
		return
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&events).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to list events")
		return
	}

	payload := gin.H{
		"items": events,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	}
	if search == "" {
		cacheKey := fmt.Sprintf("cache:events:list:type=%s:page=%d:size=%d", eventType, page, pageSize)
		wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
		utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	}
	utils.Success(ctx, payload)
}

// GetEvent returns a single event. Public.
func (e *EventController) GetEvent(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40412, "event not found")
		return
	}
	var event models.Event
	if err := e.db.First(&event, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40412, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to load event")
		return
	}
	utils.Success(ctx, gin.H{"event": event})
}

// CreateEvent adds an event. Admin only.
func (e *EventController) CreateEvent(ctx *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,min=1"`
		Description string `json:"description"`
		Date        string `json:"date" binding:"required"`
		Time        string `json:"time"`
		Venue       string `json:"venue"`
		Type        string `json:"type"`
		ImageURL    string `json:"imageUrl"`
		Recurring   bool   `json:"recurring"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	title := utils.SanitizePlain(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "title cannot be empty")
		return
	}

	event := models.Event{
		Title:       title,
		Description: utils.Sanitize(req.Description),
		Date:        req.Date,
		Time:        req.Time,
		Venue:       utils.SanitizePlain(req.Venue),
		Type:        utils.SanitizePlain(req.Type),
		ImageURL:    req.ImageURL,
		Recurring:   req.Recurring,
	}

	if err := e.db.Create(&event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create event")
		return
	}

	utils.InvalidateByPrefix("cache:events:")
	utils.InvalidateKnowledgeBase()
	utils.Created(ctx, gin.H{"event": event})
}

// UpdateEvent merges a partial update into an existing event. Admin only.
func (e *EventController) UpdateEvent(ctx *gin.Context) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Date        *string `json:"date"`
		Time        *string `json:"time"`
		Venue       *string `json:"venue"`
		Type        *string `json:"type"`
		ImageURL    *string `json:"imageUrl"`
		Recurring   *bool   `json:"recurring"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid request payload")
		return
	}

	id, ok := parseID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40413, "event not found")
		return
	}
	var event models.Event
	if err := e.db.First(&event, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40413, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to load event")
		return
	}

	if req.Title != nil {
		title := utils.SanitizePlain(strings.TrimSpace(*req.Title))
		if title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40033, "title cannot be empty")
			return
		}
		event.Title = title
	}
	if req.Description != nil {
		event.Description = utils.Sanitize(*req.Description)
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.Time != nil {
		event.Time = *req.Time
	}
	if req.Venue != nil {
		event.Venue = utils.SanitizePlain(*req.Venue)
	}
	if req.Type != nil {
		event.Type = utils.SanitizePlain(*req.Type)
	}
	if req.ImageURL != nil {
		event.ImageURL = *req.ImageURL
	}
	if req.Recurring != nil {
		event.Recurring = *req.Recurring
	}
	event.UpdatedAt = time.Now()

	if err := e.db.Save(&event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to update event")
		return
	}

	utils.InvalidateByPrefix("cache:events:")
	utils.InvalidateKnowledgeBase()
	utils.Success(ctx, gin.H{"event": event})
}

// DeleteEvent removes an event. Admin only.
func (e *EventController) DeleteEvent(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40414, "event not found")
		return
	}
	var event models.Event
	if err := e.db.First(&event, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40414, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to load event")
		return
	}

	if err := e.db.Delete(&event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50037, "failed to delete event")
		return
	}

	utils.InvalidateByPrefix("cache:events:")
	utils.InvalidateKnowledgeBase()
	utils.Success(ctx, gin.H{"deleted": event.ID})
}
