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

type BlockController struct {
	db          *gorm.DB
	areaRepo    *repositories.AreaRepository
	areaService *services.AreaService
}

func NewBlockController(db *gorm.DB) *BlockController {
	return &BlockController{
		db:          db,
		areaRepo:    repositories.NewAreaRepository(db),
		areaService: services.NewAreaService(db),
	}
}

type CreateBlockRequest struct {
	Name      string   `json:"name" binding:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// GetBlocks lists a block's area siblings with pathnames and statistics.
// Blocks rooted in private areas are hidden from users without read
// permission in the owning region.
func (bc *BlockController) GetBlocks(c *gin.Context) {
	areaID, err := strconv.Atoi(c.Param("areaId"))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	area, err := bc.areaRepo.GetAreaWithContents(uint(areaID))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	blocks := make([]models.Block, 0, len(area.Blocks))
	for _, block := range area.Blocks {
		b := block
		b.Area = area
		blocks = append(blocks, *services.EnrichBlock(&b))
	}
	if !services.CheckRegionPermission(middleware.RegionGrants(c), []models.RegionPermission{models.RegionPermissionRead}, &area.RegionID) {
		blocks = services.VisibleBlocks(blocks)
	}

	stats := bc.areaService.GetStatsOfBlocks(blocks, middleware.GradingScale(c))

	c.JSON(http.StatusOK, gin.H{
		"blocks": blocks,
		"stats":  stats,
	})
}

func (bc *BlockController) CreateBlock(c *gin.Context) {
	userID := c.GetString("user_id")

	areaID, err := strconv.Atoi(c.Param("areaId"))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	area, err := bc.areaRepo.GetArea(uint(areaID), models.MaxAreaNestingDepth)
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	if !services.CheckRegionPermission(middleware.RegionGrants(c), []models.RegionPermission{models.RegionPermissionEdit}, &area.RegionID) {
		utils.SendNotFound(c)
		return
	}

	var req CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slug := utils.GenerateSlug(req.Name)
	var existing models.Block
	if err := bc.db.Where("area_id = ? AND slug = ?", area.ID, slug).First(&existing).Error; err == nil {
		utils.SendConflict(c, existing.Name, req)
		return
	}

	// New blocks go to the end of the manual ordering
	var siblingCount int64
	if err := bc.db.Model(&models.Block{}).Where("area_id = ?", area.ID).Count(&siblingCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count siblings"})
		return
	}

	block := models.Block{
		Slug:      slug,
		Name:      req.Name,
		AreaID:    area.ID,
		Order:     int(siblingCount),
		CreatedBy: userID,
	}

	if req.Latitude != nil && req.Longitude != nil {
		if !utils.IsValidLatitude(*req.Latitude) || !utils.IsValidLongitude(*req.Longitude) {
			utils.SendValidationError(c, "Invalid coordinates")
			return
		}
		location := models.Geolocation{Latitude: *req.Latitude, Longitude: *req.Longitude}
		if err := bc.db.Create(&location).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create geolocation"})
			return
		}
		block.GeolocationID = &location.ID
	}

	if err := bc.db.Create(&block).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create block"})
		return
	}

	block.Area = area
	c.JSON(http.StatusCreated, services.EnrichBlock(&block))
}

func (bc *BlockController) GetBlock(c *gin.Context) {
	blockID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	var block models.Block
	if err := bc.db.Preload("Geolocation").Preload("Routes").Preload("Topos").First(&block, "id = ?", blockID).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	area, err := bc.areaRepo.GetArea(block.AreaID, models.MaxAreaNestingDepth)
	if err != nil {
		utils.SendNotFound(c)
		return
	}
	block.Area = area

	c.JSON(http.StatusOK, services.EnrichBlock(&block))
}

type UpdateBlockRequest struct {
	Name      string   `json:"name"`
	Order     *int     `json:"order"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (bc *BlockController) UpdateBlock(c *gin.Context) {
	block, ok := bc.loadBlockForWrite(c, models.RegionPermissionEdit)
	if !ok {
		return
	}

	var req UpdateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}

	if req.Name != "" && req.Name != block.Name {
		slug := utils.GenerateSlug(req.Name)
		var existing models.Block
		if err := bc.db.Where("area_id = ? AND slug = ? AND id <> ?", block.AreaID, slug, block.ID).First(&existing).Error; err == nil {
			utils.SendConflict(c, existing.Name, req)
			return
		}
		updates["name"] = req.Name
		updates["slug"] = slug
	}
	if req.Order != nil {
		updates["order"] = *req.Order
	}

	if req.Latitude != nil && req.Longitude != nil {
		if !utils.IsValidLatitude(*req.Latitude) || !utils.IsValidLongitude(*req.Longitude) {
			utils.SendValidationError(c, "Invalid coordinates")
			return
		}
		if block.GeolocationID != nil {
			bc.db.Model(&models.Geolocation{}).Where("id = ?", *block.GeolocationID).
				Updates(map[string]interface{}{"latitude": *req.Latitude, "longitude": *req.Longitude})
		} else {
			location := models.Geolocation{Latitude: *req.Latitude, Longitude: *req.Longitude}
			if err := bc.db.Create(&location).Error; err == nil {
				updates["geolocation_id"] = location.ID
			}
		}
	}

	if len(updates) > 0 {
		if err := bc.db.Model(&models.Block{}).Where("id = ?", block.ID).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update block"})
			return
		}
	}

	var updated models.Block
	bc.db.Preload("Geolocation").First(&updated, "id = ?", block.ID)
	c.JSON(http.StatusOK, updated)
}

// DeleteBlock refuses to delete while routes or topos exist
func (bc *BlockController) DeleteBlock(c *gin.Context) {
	block, ok := bc.loadBlockForWrite(c, models.RegionPermissionDelete)
	if !ok {
		return
	}

	var routeCount int64
	bc.db.Model(&models.Route{}).Where("block_id = ?", block.ID).Count(&routeCount)
	if routeCount > 0 {
		utils.SendReferentialIntegrityError(c, "routes", routeCount)
		return
	}

	var topoCount int64
	bc.db.Model(&models.Topo{}).Where("block_id = ?", block.ID).Count(&topoCount)
	if topoCount > 0 {
		utils.SendReferentialIntegrityError(c, "topos", topoCount)
		return
	}

	// Ordered dependent-then-parent deletes, no wrapping transaction
	if block.GeolocationID != nil {
		bc.db.Delete(&models.Geolocation{}, "id = ?", *block.GeolocationID)
	}
	if err := bc.db.Delete(&models.Block{}, "id = ?", block.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete block"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Block deleted"})
}

// loadBlockForWrite fetches the block and gates on the given region
// permission, answering 404 for both missing and forbidden
func (bc *BlockController) loadBlockForWrite(c *gin.Context, permission models.RegionPermission) (*models.Block, bool) {
	blockID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendNotFound(c)
		return nil, false
	}

	var block models.Block
	if err := bc.db.Preload("Area").First(&block, "id = ?", blockID).Error; err != nil {
		utils.SendNotFound(c)
		return nil, false
	}

	if block.Area == nil || !services.CheckRegionPermission(middleware.RegionGrants(c), []models.RegionPermission{permission}, &block.Area.RegionID) {
		utils.SendNotFound(c)
		return nil, false
	}

	return &block, true
}
