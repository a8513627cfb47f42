package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cragbase-api/middleware"
	"cragbase-api/models"
	"cragbase-api/services"
	"cragbase-api/utils"
)

type TagController struct {
	db *gorm.DB
}

func NewTagController(db *gorm.DB) *TagController {
	return &TagController{db: db}
}

func (tc *TagController) GetTags(c *gin.Context) {
	var tags []models.Tag
	if err := tc.db.Order("name ASC").Find(&tags).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

type TagRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateTag is a global admin operation; the tag catalog is shared across regions
func (tc *TagController) CreateTag(c *gin.Context) {
	if !services.CheckAppPermission(middleware.AppPermissions(c), []models.AppPermission{models.AppPermissionAdmin}) {
		utils.SendNotFound(c)
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.Tag
	if err := tc.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		utils.SendConflict(c, existing.Name, req)
		return
	}

	tag := models.Tag{Name: req.Name}
	if err := tc.db.Create(&tag).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tag"})
		return
	}

	c.JSON(http.StatusCreated, tag)
}

func (tc *TagController) UpdateTag(c *gin.Context) {
	if !services.CheckAppPermission(middleware.AppPermissions(c), []models.AppPermission{models.AppPermissionAdmin}) {
		utils.SendNotFound(c)
		return
	}

	tagID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	var tag models.Tag
	if err := tc.db.First(&tag, "id = ?", tagID).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.Tag
	if err := tc.db.Where("name = ? AND id <> ?", req.Name, tag.ID).First(&existing).Error; err == nil {
		utils.SendConflict(c, existing.Name, req)
		return
	}

	if err := tc.db.Model(&tag).Update("name", req.Name).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tag"})
		return
	}

	c.JSON(http.StatusOK, tag)
}

// DeleteTag refuses to delete while routes still carry the tag
func (tc *TagController) DeleteTag(c *gin.Context) {
	if !services.CheckAppPermission(middleware.AppPermissions(c), []models.AppPermission{models.AppPermissionAdmin}) {
		utils.SendNotFound(c)
		return
	}

	tagID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	var tag models.Tag
	if err := tc.db.First(&tag, "id = ?", tagID).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	var usage int64
	tc.db.Model(&models.RouteTag{}).Where("tag_id = ?", tag.ID).Count(&usage)
	if usage > 0 {
		utils.SendReferentialIntegrityError(c, "tagged routes", usage)
		return
	}

	if err := tc.db.Delete(&tag).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tag"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}
