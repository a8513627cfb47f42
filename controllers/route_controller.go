package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cragbase-api/middleware"
	"cragbase-api/models"
	"cragbase-api/repositories"
	"cragbase-api/services"
	"cragbase-api/utils"
)

type RouteController struct {
	db       *gorm.DB
	areaRepo *repositories.AreaRepository
}

func NewRouteController(db *gorm.DB) *RouteController {
	return &RouteController{
		db:       db,
		areaRepo: repositories.NewAreaRepository(db),
	}
}

type CreateRouteRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	GradeID     *uint  `json:"grade_id"`
	Rating      *int   `json:"rating"`
}

// encodeAreaIDs renders the ancestor chain as a comma-fenced id list so a
// single id can be matched with LIKE '%,4,%' without false positives
func encodeAreaIDs(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return "," + strings.Join(parts, ",") + ","
}

// GetRoutes lists routes, optionally filtered to an area subtree via the
// snapshot AreaIDs column
func (rc *RouteController) GetRoutes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset := (page - 1) * limit

	query := rc.db.Model(&models.Route{}).Preload("Grade")

	if areaID := c.Query("area_id"); areaID != "" {
		// Matches routes created while the area was in their ancestor chain;
		// the snapshot is not updated when areas move
		query = query.Where("area_ids LIKE ?", fmt.Sprintf("%%,%s,%%", areaID))
	}

	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var routes []models.Route
	if err := query.Offset(offset).Limit(limit).Find(&routes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch routes"})
		return
	}

	utils.SendPaginated(c, routes, page, limit, total)
}

func (rc *RouteController) CreateRoute(c *gin.Context) {
	userID := c.GetString("user_id")

	blockID, err := strconv.Atoi(c.Param("blockId"))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	var block models.Block
	if err := rc.db.First(&block, "id = ?", blockID).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	// Load the full ancestor chain for the region check and the snapshots
	area, err := rc.areaRepo.GetArea(block.AreaID, models.MaxAreaNestingDepth)
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	if !services.CheckRegionPermission(middleware.RegionGrants(c), []models.RegionPermission{models.RegionPermissionEdit}, &area.RegionID) {
		utils.SendNotFound(c)
		return
	}

	var req CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Rating != nil && !utils.IsValidRating(*req.Rating) {
		utils.SendValidationError(c, "Rating must be between 1 and 3")
		return
	}

	slug := utils.GenerateSlug(req.Name)
	var existing models.Route
	if err := rc.db.Where("block_id = ? AND slug = ? AND slug <> ''", block.ID, slug).First(&existing).Error; err == nil {
		utils.SendConflict(c, existing.Name, req)
		return
	}

	// Snapshot the ancestor chain root-first; these fields are frozen at
	// creation time
	ancestorIDs := repositories.AncestorIDs(area)
	areaFks := make(models.IntSlice, len(ancestorIDs))
	copy(areaFks, ancestorIDs)

	route := models.Route{
		Slug:        slug,
		Name:        req.Name,
		BlockID:     block.ID,
		Description: req.Description,
		GradeID:     req.GradeID,
		Rating:      req.Rating,
		AreaFks:     areaFks,
		AreaIDs:     encodeAreaIDs(ancestorIDs),
		CreatedBy:   userID,
	}

	if err := rc.db.Create(&route).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create route"})
		return
	}

	block.Area = area
	route.Block = &block
	c.JSON(http.StatusCreated, services.EnrichRoute(&route))
}

func (rc *RouteController) GetRoute(c *gin.Context) {
	routeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	var route models.Route
	if err := rc.db.Preload("Grade").
		Preload("Tags.Tag").
		Preload("FirstAscents").
		Preload("ExternalResources").
		Preload("Ascents.User").
		First(&route, "id = ?", routeID).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	var block models.Block
	if err := rc.db.First(&block, "id = ?", route.BlockID).Error; err == nil {
		if area, err := rc.areaRepo.GetArea(block.AreaID, models.MaxAreaNestingDepth); err == nil {
			block.Area = area
		}
		route.Block = &block
	}

	for i := range route.Ascents {
		route.Ascents[i].User.Password = ""
	}

	c.JSON(http.StatusOK, services.EnrichRoute(&route))
}

type UpdateRouteRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	GradeID     *uint  `json:"grade_id"`
	Rating      *int   `json:"rating"`
}

func (rc *RouteController) UpdateRoute(c *gin.Context) {
	route, ok := rc.loadRouteForWrite(c, models.RegionPermissionEdit)
	if !ok {
		return
	}

	var req UpdateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Rating != nil && !utils.IsValidRating(*req.Rating) {
		utils.SendValidationError(c, "Rating must be between 1 and 3")
		return
	}

	updates := map[string]interface{}{}

	if req.Name != "" && req.Name != route.Name {
		slug := utils.GenerateSlug(req.Name)
		var existing models.Route
		if err := rc.db.Where("block_id = ? AND slug = ? AND slug <> '' AND id <> ?", route.BlockID, slug, route.ID).First(&existing).Error; err == nil {
			utils.SendConflict(c, existing.Name, req)
			return
		}
		updates["name"] = req.Name
		updates["slug"] = slug
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.GradeID != nil {
		updates["grade_id"] = *req.GradeID
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}

	if len(updates) > 0 {
		if err := rc.db.Model(&models.Route{}).Where("id = ?", route.ID).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update route"})
			return
		}
		// Base grade feeds the aggregated user grade
		if req.GradeID != nil || req.Rating != nil {
			recalculateRouteAggregates(rc.db, route.ID)
		}
	}

	var updated models.Route
	rc.db.Preload("Grade").First(&updated, "id = ?", route.ID)
	c.JSON(http.StatusOK, updated)
}

// DeleteRoute removes every dependent row before the route itself: ascents,
// tags, first-ascent links, topo associations, external resources. The
// deletes run in order without a wrapping transaction.
func (rc *RouteController) DeleteRoute(c *gin.Context) {
	route, ok := rc.loadRouteForWrite(c, models.RegionPermissionDelete)
	if !ok {
		return
	}

	steps := []struct {
		name  string
		model interface{}
	}{
		{"ascents", &models.Ascent{}},
		{"route tags", &models.RouteTag{}},
		{"first ascents", &models.FirstAscent{}},
		{"topo associations", &models.TopoRoute{}},
		{"external resources", &models.RouteExternalResource{}},
	}

	for _, step := range steps {
		if err := rc.db.Where("route_id = ?", route.ID).Delete(step.model).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to delete %s", step.name)})
			return
		}
	}

	if err := rc.db.Delete(&models.Route{}, "id = ?", route.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete route"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Route deleted"})
}

type TagRouteRequest struct {
	TagID uint `json:"tag_id" binding:"required"`
}

func (rc *RouteController) TagRoute(c *gin.Context) {
	route, ok := rc.loadRouteForWrite(c, models.RegionPermissionEdit)
	if !ok {
		return
	}

	var req TagRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var tag models.Tag
	if err := rc.db.First(&tag, "id = ?", req.TagID).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	routeTag := models.RouteTag{RouteID: route.ID, TagID: tag.ID}
	if err := rc.db.Create(&routeTag).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tag already attached"})
		return
	}

	c.JSON(http.StatusCreated, routeTag)
}

func (rc *RouteController) UntagRoute(c *gin.Context) {
	route, ok := rc.loadRouteForWrite(c, models.RegionPermissionEdit)
	if !ok {
		return
	}

	tagID, err := strconv.Atoi(c.Param("tagId"))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	if err := rc.db.Where("route_id = ? AND tag_id = ?", route.ID, tagID).Delete(&models.RouteTag{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove tag"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag removed"})
}

type FirstAscentRequest struct {
	ClimberName string `json:"climber_name" binding:"required"`
	Year        *int   `json:"year"`
}

func (rc *RouteController) SetFirstAscent(c *gin.Context) {
	route, ok := rc.loadRouteForWrite(c, models.RegionPermissionEdit)
	if !ok {
		return
	}

	var req FirstAscentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	firstAscent := models.FirstAscent{
		RouteID:     route.ID,
		ClimberName: req.ClimberName,
		Year:        req.Year,
	}
	if err := rc.db.Create(&firstAscent).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record first ascent"})
		return
	}

	c.JSON(http.StatusCreated, firstAscent)
}

type ExternalResourceRequest struct {
	URL    string `json:"url" binding:"required"`
	Source string `json:"source"`
}

func (rc *RouteController) AddExternalResource(c *gin.Context) {
	route, ok := rc.loadRouteForWrite(c, models.RegionPermissionEdit)
	if !ok {
		return
	}

	var req ExternalResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resource := models.RouteExternalResource{
		RouteID: route.ID,
		URL:     req.URL,
		Source:  req.Source,
	}
	if err := rc.db.Create(&resource).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add external resource"})
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// loadRouteForWrite fetches the route and gates on the given region
// permission, answering 404 for both missing and forbidden
func (rc *RouteController) loadRouteForWrite(c *gin.Context, permission models.RegionPermission) (*models.Route, bool) {
	routeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendNotFound(c)
		return nil, false
	}

	var route models.Route
	if err := rc.db.Preload("Block.Area").First(&route, "id = ?", routeID).Error; err != nil {
		utils.SendNotFound(c)
		return nil, false
	}

	if route.Block == nil || route.Block.Area == nil ||
		!services.CheckRegionPermission(middleware.RegionGrants(c), []models.RegionPermission{permission}, &route.Block.Area.RegionID) {
		utils.SendNotFound(c)
		return nil, false
	}

	return &route, true
}
