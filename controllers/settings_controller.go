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

// SettingsController manages site-wide key/value settings.
type SettingsController struct {
	db *gorm.DB
}

// NewSettingsController creates a new SettingsController instance.
func NewSettingsController(db *gorm.DB) *SettingsController {
	return &SettingsController{db: db}
}

// ListSettings returns all settings as a key/value map. Public.
func (s *SettingsController) ListSettings(ctx *gin.Context) {
	const cacheKey = "cache:settings:list"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	var settings []models.SiteSetting
	if err := s.db.Find(&settings).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to list settings")
		return
	}

	kv := make(map[string]string, len(settings))
	for _, st := range settings {
		kv[st.Key] = st.Value
	}
	payload := gin.H{"settings": kv}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// UpsertSetting creates or replaces a setting by key. Admin only.
func (s *SettingsController) UpsertSetting(ctx *gin.Context) {
	var req struct {
		Key   string `json:"key" binding:"required,min=1"`
		Value string `json:"value"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}

	setting := models.SiteSetting{
		Key:   strings.TrimSpace(req.Key),
		Value: req.Value,
	}
	if setting.Key == "" {
		utils.Error(ctx, http.StatusBadRequest, 40081, "key cannot be empty")
		return
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to save setting")
		return
	}
	// On the conflict path the in-memory struct has no id or timestamps
	if err := s.db.Where("`key` = ?", setting.Key).First(&setting).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to save setting")
		return
	}

	utils.InvalidateByPrefix("cache:settings:")
	utils.InvalidateKnowledgeBase()
	utils.Success(ctx, gin.H{"setting": setting})
}

// DeleteSetting removes a setting by key. Admin only.
func (s *SettingsController) DeleteSetting(ctx *gin.Context) {
	key := strings.TrimSpace(ctx.Param("key"))
	var setting models.SiteSetting
	if err := s.db.Where("`key` = ?", key).First(&setting).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40451, "setting not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to load setting")
		return
	}
	if err := s.db.Delete(&setting).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to delete setting")
		return
	}
	utils.InvalidateByPrefix("cache:settings:")
	utils.InvalidateKnowledgeBase()
	utils.Success(ctx, gin.H{"deleted": setting.Key})
}
