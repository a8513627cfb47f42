package controllers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"cragbase-api/middleware"
	"cragbase-api/models"
	"cragbase-api/repositories"
	"cragbase-api/services"
	"cragbase-api/utils"
)

type AscentController struct {
	db       *gorm.DB
	areaRepo *repositories.AreaRepository
}

func NewAscentController(db *gorm.DB) *AscentController {
	return &AscentController{
		db:       db,
		areaRepo: repositories.NewAreaRepository(db),
	}
}

type CreateAscentRequest struct {
	Type    models.AscentType `json:"type" binding:"required"`
	GradeID *uint             `json:"grade_id"`
	Rating  *int              `json:"rating"`
	Date    *time.Time        `json:"date"`
	Notes   string            `json:"notes"`
}

func (ac *AscentController) CreateAscent(c *gin.Context) {
	userID := c.GetString("user_id")

	route, ok := ac.loadVisibleRoute(c)
	if !ok {
		return
	}

	var req CreateAscentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !utils.IsValidAscentType(req.Type) {
		utils.SendValidationError(c, "Invalid ascent type")
		return
	}
	if req.Rating != nil && !utils.IsValidRating(*req.Rating) {
		utils.SendValidationError(c, "Rating must be between 1 and 3")
		return
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	ascent := models.Ascent{
		RouteID: route.ID,
		UserID:  userID,
		Type:    req.Type,
		GradeID: req.GradeID,
		Rating:  req.Rating,
		Date:    date,
		Notes:   req.Notes,
	}

	if err := ac.db.Create(&ascent).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log ascent"})
		return
	}

	ac.db.Model(&models.User{}).Where("id = ?", userID).UpdateColumn("ascents_count", gorm.Expr("ascents_count + ?", 1))

	recalculateRouteAggregates(ac.db, route.ID)

	// Notify the route creator, unless they climbed their own route
	if route.CreatedBy != "" && route.CreatedBy != userID {
		notification := models.Notification{
			ID:           uuid.New().String(),
			Type:         models.NotificationTypeAscent,
			ActorUserID:  userID,
			TargetUserID: route.CreatedBy,
			RouteID:      &route.ID,
		}
		ac.db.Create(&notification)
	}

	c.JSON(http.StatusCreated, ascent)
}

type UpdateAscentRequest struct {
	Type    models.AscentType `json:"type"`
	GradeID *uint             `json:"grade_id"`
	Rating  *int              `json:"rating"`
	Date    *time.Time        `json:"date"`
	Notes   string            `json:"notes"`
}

func (ac *AscentController) UpdateAscent(c *gin.Context) {
	userID := c.GetString("user_id")
	ascentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	// Only the author may edit; anyone else sees 404
	var ascent models.Ascent
	if err := ac.db.First(&ascent, "id = ? AND user_id = ?", ascentID, userID).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	var req UpdateAscentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Type != "" {
		if !utils.IsValidAscentType(req.Type) {
			utils.SendValidationError(c, "Invalid ascent type")
			return
		}
		updates["type"] = req.Type
	}
	if req.GradeID != nil {
		updates["grade_id"] = *req.GradeID
	}
	if req.Rating != nil {
		if !utils.IsValidRating(*req.Rating) {
			utils.SendValidationError(c, "Rating must be between 1 and 3")
			return
		}
		updates["rating"] = *req.Rating
	}
	if req.Date != nil {
		updates["date"] = *req.Date
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	if len(updates) > 0 {
		if err := ac.db.Model(&models.Ascent{}).Where("id = ?", ascent.ID).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ascent"})
			return
		}
		recalculateRouteAggregates(ac.db, ascent.RouteID)
	}

	var updated models.Ascent
	ac.db.First(&updated, "id = ?", ascent.ID)
	c.JSON(http.StatusOK, updated)
}

func (ac *AscentController) DeleteAscent(c *gin.Context) {
	userID := c.GetString("user_id")
	ascentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	var ascent models.Ascent
	if err := ac.db.First(&ascent, "id = ? AND user_id = ?", ascentID, userID).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	if err := ac.db.Delete(&ascent).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete ascent"})
		return
	}

	ac.db.Model(&models.User{}).Where("id = ?", userID).UpdateColumn("ascents_count", gorm.Expr("ascents_count - ?", 1))

	recalculateRouteAggregates(ac.db, ascent.RouteID)

	c.JSON(http.StatusOK, gin.H{"message": "Ascent deleted"})
}

// GetRouteAscents lists the ascents of one route, newest first
func (ac *AscentController) GetRouteAscents(c *gin.Context) {
	route, ok := ac.loadVisibleRoute(c)
	if !ok {
		return
	}

	var ascents []models.Ascent
	if err := ac.db.Preload("User").Where("route_id = ?", route.ID).Order("date DESC").Find(&ascents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ascents"})
		return
	}

	for i := range ascents {
		ascents[i].User.Password = ""
	}

	c.JSON(http.StatusOK, gin.H{"ascents": ascents})
}

// GetFeed returns recent ascents across the site with pathnames attached,
// newest first. Ascents on routes rooted in private areas are hidden unless
// the requester can read the owning region.
//
// Pagination is keyset-based: pass next_cursor from the previous response as
// ?cursor= to continue. Filtering happens after the fetch, so an offset would
// drift as entries are hidden; anchoring each page below the last delivered
// id cannot skip or repeat entries.
func (ac *AscentController) GetFeed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}
	cursor, _ := strconv.Atoi(c.DefaultQuery("cursor", "0"))

	grants := middleware.RegionGrants(c)

	feed := make([]models.Ascent, 0, limit)
	next := 0
	exhausted := false

	for len(feed) < limit && !exhausted {
		batchSize := limit * 2
		var batch []models.Ascent
		tx := ac.db.Preload("User").Preload("Route.Block").
			Order("id DESC").Limit(batchSize)
		if cursor > 0 {
			tx = tx.Where("id < ?", cursor)
		}
		if err := tx.Find(&batch).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feed"})
			return
		}
		exhausted = len(batch) < batchSize

		for _, ascent := range batch {
			cursor = int(ascent.ID)
			if ascent.Route == nil || ascent.Route.Block == nil {
				continue
			}

			area, err := ac.areaRepo.GetArea(ascent.Route.Block.AreaID, models.MaxAreaNestingDepth)
			if err != nil {
				continue
			}
			ascent.Route.Block.Area = area

			canRead := services.CheckRegionPermission(grants, []models.RegionPermission{models.RegionPermissionRead}, &area.RegionID)
			if !canRead && len(services.VisibleBlocks([]models.Block{*ascent.Route.Block})) == 0 {
				continue
			}

			ascent.User.Password = ""
			feed = append(feed, *services.EnrichAscent(&ascent))
			next = int(ascent.ID)
			if len(feed) == limit {
				break
			}
		}
	}

	if exhausted && len(feed) < limit {
		next = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"feed":        feed,
		"limit":       limit,
		"next_cursor": next,
	})
}

// loadVisibleRoute fetches the :routeId route with its area chain and applies
// the read gate: a route rooted in a private area answers 404 unless the
// requester can read the owning region, so its existence is never confirmed
// to outsiders.
func (ac *AscentController) loadVisibleRoute(c *gin.Context) (*models.Route, bool) {
	routeID, err := strconv.Atoi(c.Param("routeId"))
	if err != nil {
		utils.SendNotFound(c)
		return nil, false
	}

	var route models.Route
	if err := ac.db.Preload("Block").First(&route, "id = ?", routeID).Error; err != nil {
		utils.SendNotFound(c)
		return nil, false
	}
	if route.Block == nil {
		utils.SendNotFound(c)
		return nil, false
	}

	area, err := ac.areaRepo.GetArea(route.Block.AreaID, models.MaxAreaNestingDepth)
	if err != nil {
		utils.SendNotFound(c)
		return nil, false
	}
	route.Block.Area = area

	canRead := services.CheckRegionPermission(middleware.RegionGrants(c), []models.RegionPermission{models.RegionPermissionRead}, &area.RegionID)
	if !canRead && len(services.VisibleBlocks([]models.Block{*route.Block})) == 0 {
		utils.SendNotFound(c)
		return nil, false
	}

	return &route, true
}

// recalculateRouteAggregates recomputes a route's denormalized user grade
// and rating: the rounded arithmetic mean of the route's own value plus all
// ascent values, or null when nothing contributes.
func recalculateRouteAggregates(db *gorm.DB, routeID uint) {
	var route models.Route
	if err := db.First(&route, "id = ?", routeID).Error; err != nil {
		return
	}

	var ascents []models.Ascent
	if err := db.Where("route_id = ?", routeID).Find(&ascents).Error; err != nil {
		return
	}

	var gradeValues, ratingValues []int
	if route.GradeID != nil {
		gradeValues = append(gradeValues, int(*route.GradeID))
	}
	if route.Rating != nil {
		ratingValues = append(ratingValues, *route.Rating)
	}
	for _, ascent := range ascents {
		if ascent.GradeID != nil {
			gradeValues = append(gradeValues, int(*ascent.GradeID))
		}
		if ascent.Rating != nil {
			ratingValues = append(ratingValues, *ascent.Rating)
		}
	}

	updates := map[string]interface{}{
		"user_grade_id": roundedMean(gradeValues),
		"user_rating":   roundedMean(ratingValues),
	}
	db.Model(&models.Route{}).Where("id = ?", routeID).Updates(updates)
}

// roundedMean returns the mean rounded to the nearest integer, or nil for
// an empty input
func roundedMean(values []int) *int {
	if len(values) == 0 {
		return nil
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	mean := int(math.Round(float64(sum) / float64(len(values))))
	return &mean
}
