package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cragbase-api/models"
	"cragbase-api/utils"
)

type UserController struct {
	db *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

func (uc *UserController) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	if err := uc.db.First(&user, "id = ?", userID).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, user)
}

type UpdateProfileRequest struct {
	Name         string              `json:"name"`
	Avatar       *string             `json:"avatar"`
	GradingScale models.GradingScale `json:"grading_scale"`
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	if err := uc.db.First(&user, "id = ?", userID).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.GradingScale != "" {
		if !utils.IsValidGradingScale(req.GradingScale) {
			utils.SendValidationError(c, "Invalid grading scale")
			return
		}
		updates["grading_scale"] = req.GradingScale
	}

	if len(updates) > 0 {
		if err := uc.db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
	}

	var updated models.User
	uc.db.First(&updated, "id = ?", userID)
	updated.Password = ""
	c.JSON(http.StatusOK, updated)
}

// GetUser returns another user's public profile by handle
func (uc *UserController) GetUser(c *gin.Context) {
	handle := c.Param("handle")

	var user models.User
	if err := uc.db.First(&user, "handle = ?", handle).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	user.Password = ""
	user.Email = ""
	c.JSON(http.StatusOK, user)
}

// GetStatistics aggregates a user's climbing numbers
func (uc *UserController) GetStatistics(c *gin.Context) {
	handle := c.Param("handle")

	var user models.User
	if err := uc.db.First(&user, "handle = ?", handle).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	stats := models.UserStatistics{
		AscentsCount: int64(user.AscentsCount),
	}
	uc.db.Model(&models.Route{}).Where("created_by = ?", user.ID).Count(&stats.RoutesCreated)
	uc.db.Model(&models.Area{}).Where("created_by = ?", user.ID).Count(&stats.AreasCreated)
	uc.db.Model(&models.RegionMember{}).Where("user_id = ? AND is_active = ?", user.ID, true).Count(&stats.RegionsCount)

	// Hardest recorded ascent by grade ladder position
	var hardestGrade *string
	var hardest models.Ascent
	if err := uc.db.Where("user_id = ? AND grade_id IS NOT NULL", user.ID).
		Order("grade_id DESC").
		First(&hardest).Error; err == nil && hardest.GradeID != nil {
		var grade models.Grade
		if err := uc.db.First(&grade, "id = ?", *hardest.GradeID).Error; err == nil {
			display := grade.DisplayGrade(user.GradingScale)
			hardestGrade = &display
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"statistics":    stats,
		"hardest_grade": hardestGrade,
	})
}
