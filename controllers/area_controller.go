package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cragbase-api/middleware"
	"cragbase-api/models"
	"cragbase-api/repositories"
	"cragbase-api/services"
	"cragbase-api/utils"
)

type AreaController struct {
	db          *gorm.DB
	areaRepo    *repositories.AreaRepository
	areaService *services.AreaService
}

func NewAreaController(db *gorm.DB) *AreaController {
	return &AreaController{
		db:          db,
		areaRepo:    repositories.NewAreaRepository(db),
		areaService: services.NewAreaService(db),
	}
}

type CreateAreaRequest struct {
	Name        string `json:"name" binding:"required"`
	RegionID    uint   `json:"region_id" binding:"required"`
	ParentID    *uint  `json:"parent_id"`
	Type        string `json:"type"`
	Visibility  string `json:"visibility"`
	Description string `json:"description"`
}

type UpdateAreaRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Visibility  string `json:"visibility"`
	Description string `json:"description"`
}

// GetArea resolves a nested slug path like
// /areas/greece-12/rovies-23/kalogria-40, enriches the area with its derived
// pathname and aggregates route statistics for the subtree.
func (ac *AreaController) GetArea(c *gin.Context) {
	info, err := utils.ConvertAreaSlug(c.Param("slugs"))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	area, err := ac.areaRepo.GetAreaWithContents(uint(info.AreaID))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	enriched := services.EnrichArea(area)

	// Enrich child blocks against the already-loaded chain and hide blocks
	// rooted in private trees from non-members
	blocks := make([]models.Block, 0, len(area.Blocks))
	for _, block := range area.Blocks {
		b := block
		b.Area = area
		blocks = append(blocks, *services.EnrichBlock(&b))
	}
	if !services.CheckRegionPermission(middleware.RegionGrants(c), []models.RegionPermission{models.RegionPermissionRead}, &area.RegionID) {
		blocks = services.VisibleBlocks(blocks)
	}

	stats, err := ac.areaService.GetStatsOfArea(area.ID, middleware.GradingScale(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"area":         enriched,
		"blocks":       blocks,
		"stats":        stats,
		"can_add_area": info.CanAddArea,
		"path":         info.Path,
	})
}

func (ac *AreaController) CreateArea(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Permission is checked against the submitted region, not the parent's:
	// the area being written is the entity whose region matters
	if !services.CheckRegionPermission(middleware.RegionGrants(c), []models.RegionPermission{models.RegionPermissionEdit}, &req.RegionID) {
		utils.SendNotFound(c)
		return
	}

	var parent *models.Area
	if req.ParentID != nil {
		loaded, err := ac.areaRepo.GetArea(*req.ParentID, models.MaxAreaNestingDepth)
		if err != nil {
			utils.SendNotFound(c)
			return
		}
		parent = loaded

		// A subarea always belongs to the same region as its parent
		if parent.RegionID != req.RegionID {
			utils.SendValidationError(c, "Area region must match the parent area's region")
			return
		}

		// Reject children that would exceed the nesting depth limit
		if repositories.ChainLength(parent) >= models.MaxAreaNestingDepth {
			utils.SendValidationError(c, "Maximum area nesting depth reached")
			return
		}
	}

	slug := utils.GenerateSlug(req.Name)
	taken, collidingName, err := ac.areaRepo.SlugTaken(slug, req.ParentID, req.RegionID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check slug"})
		return
	}
	if taken {
		utils.SendConflict(c, collidingName, req)
		return
	}

	areaType := models.AreaType(req.Type)
	if areaType != models.AreaTypeCrag {
		areaType = models.AreaTypeArea
	}
	visibility := req.Visibility
	if visibility != models.VisibilityPrivate {
		visibility = models.VisibilityPublic
	}

	area := models.Area{
		Slug:        slug,
		Name:        req.Name,
		Type:        areaType,
		Visibility:  visibility,
		Description: req.Description,
		ParentID:    req.ParentID,
		RegionID:    req.RegionID,
		CreatedBy:   userID,
	}

	if err := ac.db.Create(&area).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create area"})
		return
	}

	area.Parent = parent
	c.JSON(http.StatusCreated, services.EnrichArea(&area))
}

func (ac *AreaController) UpdateArea(c *gin.Context) {
	areaID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	area, err := ac.areaRepo.GetArea(uint(areaID), models.MaxAreaNestingDepth)
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	if !services.CheckRegionPermission(middleware.RegionGrants(c), []models.RegionPermission{models.RegionPermissionEdit}, &area.RegionID) {
		utils.SendNotFound(c)
		return
	}

	var req UpdateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}

	// Renaming regenerates the slug
	if req.Name != "" && req.Name != area.Name {
		slug := utils.GenerateSlug(req.Name)
		taken, collidingName, err := ac.areaRepo.SlugTaken(slug, area.ParentID, area.RegionID, area.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check slug"})
			return
		}
		if taken {
			utils.SendConflict(c, collidingName, req)
			return
		}
		updates["name"] = req.Name
		updates["slug"] = slug
		area.Name = req.Name
		area.Slug = slug
	}

	if req.Type == string(models.AreaTypeArea) || req.Type == string(models.AreaTypeCrag) {
		updates["type"] = req.Type
		area.Type = models.AreaType(req.Type)
	}
	if req.Visibility == models.VisibilityPublic || req.Visibility == models.VisibilityPrivate {
		updates["visibility"] = req.Visibility
		area.Visibility = req.Visibility
	}
	if req.Description != "" {
		updates["description"] = req.Description
		area.Description = req.Description
	}

	if len(updates) > 0 {
		if err := ac.db.Model(&models.Area{}).Where("id = ?", area.ID).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update area"})
			return
		}
	}

	c.JSON(http.StatusOK, services.EnrichArea(area))
}

// DeleteArea refuses to delete while child areas or blocks exist
func (ac *AreaController) DeleteArea(c *gin.Context) {
	areaID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	var area models.Area
	if err := ac.db.First(&area, "id = ?", areaID).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	if !services.CheckRegionPermission(middleware.RegionGrants(c), []models.RegionPermission{models.RegionPermissionDelete}, &area.RegionID) {
		utils.SendNotFound(c)
		return
	}

	childAreas, blocks, err := ac.areaRepo.CountChildren(area.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check children"})
		return
	}
	if childAreas > 0 {
		utils.SendReferentialIntegrityError(c, "child areas", childAreas)
		return
	}
	if blocks > 0 {
		utils.SendReferentialIntegrityError(c, "blocks", blocks)
		return
	}

	// Ordered dependent-then-parent deletes, no wrapping transaction
	if err := ac.db.Where("area_id = ?", area.ID).Delete(&models.Geolocation{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete parking locations"})
		return
	}
	if err := ac.db.Delete(&area).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete area"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Area deleted"})
}

// AddParkingLocation attaches a parking geolocation to an area
func (ac *AreaController) AddParkingLocation(c *gin.Context) {
	areaID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	var area models.Area
	if err := ac.db.First(&area, "id = ?", areaID).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	if !services.CheckRegionPermission(middleware.RegionGrants(c), []models.RegionPermission{models.RegionPermissionEdit}, &area.RegionID) {
		utils.SendNotFound(c)
		return
	}

	var req struct {
		Latitude  float64 `json:"latitude" binding:"required"`
		Longitude float64 `json:"longitude" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !utils.IsValidLatitude(req.Latitude) || !utils.IsValidLongitude(req.Longitude) {
		utils.SendValidationError(c, "Invalid coordinates")
		return
	}

	location := models.Geolocation{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		AreaID:    &area.ID,
	}
	if err := ac.db.Create(&location).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create parking location"})
		return
	}

	c.JSON(http.StatusCreated, location)
}
