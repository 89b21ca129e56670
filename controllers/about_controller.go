package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gracechapel/churchweb/models"
	"github.com/gracechapel/churchweb/utils"
)

// AboutController manages the about page: free-form sections, core beliefs
// and the leadership team.
type AboutController struct {
	db *gorm.DB
}

// NewAboutController creates a new AboutController instance.
func NewAboutController(db *gorm.DB) *AboutController {
	return &AboutController{db: db}
}

// GetAboutPage returns sections, beliefs and leadership in one payload. Public.
func (a *AboutController) GetAboutPage(ctx *gin.Context) {
	const cacheKey = "cache:about:page"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	var sections []models.AboutSection
	var beliefs []models.CoreBelief
	var leaders []models.LeadershipMember

	if err := a.db.Find(&sections).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to load about sections")
		return
	}
	if err := a.db.Order("sort_order").Find(&beliefs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to load core beliefs")
		return
	}
	if err := a.db.Order("sort_order").Find(&leaders).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to load leadership")
		return
	}

	payload := gin.H{
		"sections":   sections,
		"beliefs":    beliefs,
		"leadership": leaders,
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// UpsertSection creates or replaces a named about section. Admin only.
func (a *AboutController) UpsertSection(ctx *gin.Context) {
	var req struct {
		Section string `json:"section" binding:"required,min=1"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	section := models.AboutSection{
		Section: utils.SanitizePlain(strings.ToLower(strings.TrimSpace(req.Section))),
		Title:   utils.SanitizePlain(req.Title),
		Content: utils.Sanitize(req.Content),
	}
	if section.Section == "" {
		utils.Error(ctx, http.StatusBadRequest, 40061, "section name cannot be empty")
		return
	}

	if err := a.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "section"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "content", "updated_at"}),
	}).Create(&section).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to save section")
		return
	}
	// On the conflict path the in-memory struct has no id or timestamps
	if err := a.db.Where("section = ?", section.Section).First(&section).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to save section")
		return
	}

	utils.InvalidateByPrefix("cache:about:")
	utils.InvalidateKnowledgeBase()
	utils.Success(ctx, gin.H{"section": section})
}

// DeleteSection removes a named about section. Admin only.
func (a *AboutController) DeleteSection(ctx *gin.Context) {
	name := strings.ToLower(strings.TrimSpace(ctx.Param("section")))
	var section models.AboutSection
	if err := a.db.Where("section = ?", name).First(&section).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40441, "section not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to load section")
		return
	}
	if err := a.db.Delete(&section).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to delete section")
		return
	}
	utils.InvalidateByPrefix("cache:about:")
	utils.InvalidateKnowledgeBase()
	utils.Success(ctx, gin.H{"deleted": section.ID})
}

// CreateBelief adds a core belief. Admin only.
func (a *AboutController) CreateBelief(ctx *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,min=1"`
		Description string `json:"description"`
		Scripture   string `json:"scripture"`
		SortOrder   int    `json:"sortOrder"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40062, "invalid request payload")
		return
	}

	belief := models.CoreBelief{
		Title:       utils.SanitizePlain(strings.TrimSpace(req.Title)),
		Description: utils.Sanitize(req.Description),
		Scripture:   utils.SanitizePlain(req.Scripture),
		SortOrder:   req.SortOrder,
	}
	if belief.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40063, "title cannot be empty")
		return
	}
	if err := a.db.Create(&belief).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to create belief")
		return
	}
	utils.InvalidateByPrefix("cache:about:")
	utils.Created(ctx, gin.H{"belief": belief})
}

// UpdateBelief merges a partial update into a core belief. Admin only.
func (a *AboutController) UpdateBelief(ctx *gin.Context) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Scripture   *string `json:"scripture"`
		SortOrder   *int    `json:"sortOrder"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40064, "invalid request payload")
		return
	}

	id, ok := parseID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40442, "belief not found")
		return
	}
	var belief models.CoreBelief
	if err := a.db.First(&belief, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40442, "belief not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50067, "failed to load belief")
		return
	}

	if req.Title != nil {
		title := utils.SanitizePlain(strings.TrimSpace(*req.Title))
		if title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40065, "title cannot be empty")
			return
		}
		belief.Title = title
	}
	if req.Description != nil {
		belief.Description = utils.Sanitize(*req.Description)
	}
	if req.Scripture != nil {
		belief.Scripture = utils.SanitizePlain(*req.Scripture)
	}
	if req.SortOrder != nil {
		belief.SortOrder = *req.SortOrder
	}
	belief.UpdatedAt = time.Now()

	if err := a.db.Save(&belief).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50068, "failed to update belief")
		return
	}
	utils.InvalidateByPrefix("cache:about:")
	utils.Success(ctx, gin.H{"belief": belief})
}

// DeleteBelief removes a core belief. Admin only.
func (a *AboutController) DeleteBelief(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40443, "belief not found")
		return
	}
	var belief models.CoreBelief
	if err := a.db.First(&belief, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40443, "belief not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50069, "failed to load belief")
		return
	}
	if err := a.db.Delete(&belief).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to delete belief")
		return
	}
	utils.InvalidateByPrefix("cache:about:")
	utils.Success(ctx, gin.H{"deleted": belief.ID})
}

// CreateLeader adds a leadership member. Admin only.
func (a *AboutController) CreateLeader(ctx *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required,min=1"`
		Title     string `json:"title"`
		Bio       string `json:"bio"`
		ImageURL  string `json:"imageUrl"`
		Email     string `json:"email"`
		SortOrder int    `json:"sortOrder"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40066, "invalid request payload")
		return
	}

	leader := models.LeadershipMember{
		Name:      utils.SanitizePlain(strings.TrimSpace(req.Name)),
		Title:     utils.SanitizePlain(req.Title),
		Bio:       utils.Sanitize(req.Bio),
		ImageURL:  req.ImageURL,
		Email:     strings.TrimSpace(req.Email),
		SortOrder: req.SortOrder,
	}
	if leader.Name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40067, "name cannot be empty")
		return
	}
	if err := a.db.Create(&leader).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to create leader")
		return
	}
	utils.InvalidateByPrefix("cache:about:")
	utils.InvalidateKnowledgeBase()
	utils.Created(ctx, gin.H{"leader": leader})
}

// UpdateLeader merges a partial update into a leadership member. Admin only.
func (a *AboutController) UpdateLeader(ctx *gin.Context) {
	var req struct {
		Name      *string `json:"name"`
		Title     *string `json:"title"`
		Bio       *string `json:"bio"`
		ImageURL  *string `json:"imageUrl"`
		Email     *string `json:"email"`
		SortOrder *int    `json:"sortOrder"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40068, "invalid request payload")
		return
	}

	id, ok := parseID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40444, "leader not found")
		return
	}
	var leader models.LeadershipMember
	if err := a.db.First(&leader, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40444, "leader not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to load leader")
		return
	}

	if req.Name != nil {
		name := utils.SanitizePlain(strings.TrimSpace(*req.Name))
		if name == "" {
			utils.Error(ctx, http.StatusBadRequest, 40069, "name cannot be empty")
			return
		}
		leader.Name = name
	}
	if req.Title != nil {
		leader.Title = utils.SanitizePlain(*req.Title)
	}
	if req.Bio != nil {
		leader.Bio = utils.Sanitize(*req.Bio)
	}
	if req.ImageURL != nil {
		leader.ImageURL = *req.ImageURL
	}
	if req.Email != nil {
		leader.Email = strings.TrimSpace(*req.Email)
	}
	if req.SortOrder != nil {
		leader.SortOrder = *req.SortOrder
	}
	leader.UpdatedAt = time.Now()

	if err := a.db.Save(&leader).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to update leader")
		return
	}
	utils.InvalidateByPrefix("cache:about:")
	utils.InvalidateKnowledgeBase()
	utils.Success(ctx, gin.H{"leader": leader})
}

// DeleteLeader removes a leadership member. Admin only.
func (a *AboutController) DeleteLeader(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40445, "leader not found")
		return
	}
	var leader models.LeadershipMember
	if err := a.db.First(&leader, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40445, "leader not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to load leader")
		return
	}
	if err := a.db.Delete(&leader).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to delete leader")
		return
	}
	utils.InvalidateByPrefix("cache:about:")
	utils.InvalidateKnowledgeBase()
	utils.Success(ctx, gin.H{"deleted": leader.ID})
}
