package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gracechapel/churchweb/models"
	"github.com/gracechapel/churchweb/utils"
)

// OrganizationController manages CRUD operations for ministries.
type OrganizationController struct {
	db *gorm.DB
}

// NewOrganizationController creates a new OrganizationController instance.
func NewOrganizationController(db *gorm.DB) *OrganizationController {
	return &OrganizationController{db: db}
}

// ListOrganizations returns all ministries, alphabetical. Public.
func (o *OrganizationController) ListOrganizations(ctx *gin.Context) {
	const cacheKey = "cache:organizations:list"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	var orgs []models.Organization
	if err := o.db.Order("name").Find(&orgs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to list organizations")
		return
	}

	payload := gin.H{"items": orgs}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// CreateOrganization adds a ministry. Admin only.
func (o *OrganizationController) CreateOrganization(ctx *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,min=1"`
		Description string `json:"description"`
		Leader      string `json:"leader"`
		MeetingTime string `json:"meetingTime"`
		ImageURL    string `json:"imageUrl"`
		Contact     string `json:"contact"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	org := models.Organization{
		Name:        utils.SanitizePlain(strings.TrimSpace(req.Name)),
		Description: utils.Sanitize(req.Description),
		Leader:      utils.SanitizePlain(req.Leader),
		MeetingTime: utils.SanitizePlain(req.MeetingTime),
		ImageURL:    req.ImageURL,
		Contact:     utils.SanitizePlain(req.Contact),
	}
	if org.Name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40051, "name cannot be empty")
		return
	}

	if err := o.db.Create(&org).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to create organization")
		return
	}

	utils.InvalidateByPrefix("cache:organizations:")
	utils.InvalidateKnowledgeBase()
	utils.Created(ctx, gin.H{"organization": org})
}

// UpdateOrganization merges a partial update into an existing ministry. Admin only.
func (o *OrganizationController) UpdateOrganization(ctx *gin.Context) {
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Leader      *string `json:"leader"`
		MeetingTime *string `json:"meetingTime"`
		ImageURL    *string `json:"imageUrl"`
		Contact     *string `json:"contact"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid request payload")
		return
	}

	id, ok := parseID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40431, "organization not found")
		return
	}
	var org models.Organization
	if err := o.db.First(&org, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40431, "organization not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to load organization")
		return
	}

	if req.Name != nil {
		name := utils.SanitizePlain(strings.TrimSpace(*req.Name))
		if name == "" {
			utils.Error(ctx, http.StatusBadRequest, 40053, "name cannot be empty")
			return
		}
		org.Name = name
	}
	if req.Description != nil {
		org.Description = utils.Sanitize(*req.Description)
	}
	if req.Leader != nil {
		org.Leader = utils.SanitizePlain(*req.Leader)
	}
	if req.MeetingTime != nil {
		org.MeetingTime = utils.SanitizePlain(*req.MeetingTime)
	}
	if req.ImageURL != nil {
		org.ImageURL = *req.ImageURL
	}
	if req.Contact != nil {
		org.Contact = utils.SanitizePlain(*req.Contact)
	}
	org.UpdatedAt = time.Now()

	if err := o.db.Save(&org).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to update organization")
		return
	}

	utils.InvalidateByPrefix("cache:organizations:")
	utils.InvalidateKnowledgeBase()
	utils.Success(ctx, gin.H{"organization": org})
}

// DeleteOrganization removes a ministry. Admin only.
func (o *OrganizationController) DeleteOrganization(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40432, "organization not found")
		return
	}
	var org models.Organization
	if err := o.db.First(&org, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40432, "organization not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to load organization")
		return
	}

	if err := o.db.Delete(&org).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to delete organization")
		return
	}

	utils.InvalidateByPrefix("cache:organizations:")
	utils.InvalidateKnowledgeBase()
	utils.Success(ctx, gin.H{"deleted": org.ID})
}
