package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gracechapel/churchweb/config"
	"github.com/gracechapel/churchweb/models"
	"github.com/gracechapel/churchweb/utils"
)

const tokenLifetime = 24 * time.Hour

// AuthController handles dashboard login and profile lookup.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// SeedAdminUser creates the configured admin account when it does not exist.
// Called once at boot; a changed ADMIN_PASSWORD takes effect on next restart.
func SeedAdminUser(db *gorm.DB) error {
	cfg := config.Get()
	if cfg.AdminPassword == "" {
		if utils.Sugar != nil {
			utils.Sugar.Warn("ADMIN_PASSWORD not set; dashboard login disabled")
		}
		return nil
	}

	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	var existing models.User
	err = db.Where("username = ?", cfg.AdminUsername).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return db.Create(&models.User{
			Username:     cfg.AdminUsername,
			PasswordHash: hash,
			Email:        cfg.AdminEmail,
			Role:         models.RoleAdmin,
		}).Error
	}
	if err != nil {
		return err
	}

	// Keep credentials in sync with configuration
	return db.Model(&existing).Updates(map[string]interface{}{
		"password_hash": hash,
		"email":         cfg.AdminEmail,
	}).Error
}

// Login authenticates the admin and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "username and password are required")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid credentials")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid credentials")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, tokenLifetime)
	if err != nil {
		utils.Sugar.Errorf("token generation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated admin's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}
