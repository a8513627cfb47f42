package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"cragbase-api/middleware"
	"cragbase-api/models"
	"cragbase-api/services"
	"cragbase-api/utils"
)

type RegionController struct {
	db           *gorm.DB
	emailService *services.EmailService
}

func NewRegionController(db *gorm.DB, emailService *services.EmailService) *RegionController {
	return &RegionController{db: db, emailService: emailService}
}

// GetRegions lists all regions together with the requester's role in each
func (rc *RegionController) GetRegions(c *gin.Context) {
	var regions []models.Region
	if err := rc.db.Find(&regions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch regions"})
		return
	}

	grants := middleware.RegionGrants(c)
	roles := make(map[uint]models.RegionRole, len(grants))
	for _, grant := range grants {
		roles[grant.RegionID] = grant.Role
	}

	type regionWithRole struct {
		models.Region
		Role models.RegionRole `json:"role,omitempty"`
	}

	result := make([]regionWithRole, 0, len(regions))
	for _, region := range regions {
		result = append(result, regionWithRole{Region: region, Role: roles[region.ID]})
	}

	c.JSON(http.StatusOK, gin.H{"regions": result})
}

type CreateRegionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateRegion is a global admin operation
func (rc *RegionController) CreateRegion(c *gin.Context) {
	userID := c.GetString("user_id")

	if !services.CheckAppPermission(middleware.AppPermissions(c), []models.AppPermission{models.AppPermissionAdmin}) {
		utils.SendNotFound(c)
		return
	}

	var req CreateRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slug := utils.GenerateSlug(req.Name)
	var existing models.Region
	if err := rc.db.Where("slug = ?", slug).First(&existing).Error; err == nil {
		utils.SendConflict(c, existing.Name, req)
		return
	}

	region := models.Region{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		CreatedBy:   userID,
	}
	if err := rc.db.Create(&region).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create region"})
		return
	}

	// The creator administers the new region
	member := models.RegionMember{
		RegionID: region.ID,
		UserID:   userID,
		Role:     models.RegionRoleAdmin,
		IsActive: true,
	}
	if err := rc.db.Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create membership"})
		return
	}

	c.JSON(http.StatusCreated, region)
}

// GetMembers lists a region's members [region.read]
func (rc *RegionController) GetMembers(c *gin.Context) {
	region, ok := rc.loadRegionForWrite(c, models.RegionPermissionRead)
	if !ok {
		return
	}

	var members []models.RegionMember
	if err := rc.db.Preload("User").Where("region_id = ?", region.ID).Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	for i := range members {
		members[i].User.Password = ""
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

type AddMemberRequest struct {
	Email string            `json:"email" binding:"required,email"`
	Role  models.RegionRole `json:"role" binding:"required"`
}

// AddMember invites a user into the region [region.admin]
func (rc *RegionController) AddMember(c *gin.Context) {
	actorID := c.GetString("user_id")

	region, ok := rc.loadRegionForWrite(c, models.RegionPermissionAdmin)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validRegionRole(req.Role) {
		utils.SendValidationError(c, "Invalid region role")
		return
	}

	var user models.User
	if err := rc.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	// Reactivate an existing membership row instead of duplicating it
	var existing models.RegionMember
	if err := rc.db.Where("region_id = ? AND user_id = ?", region.ID, user.ID).First(&existing).Error; err == nil {
		if existing.IsActive {
			utils.SendConflict(c, user.Name, req)
			return
		}
		updates := map[string]interface{}{"is_active": true, "role": req.Role, "invited_by": actorID}
		if err := rc.db.Model(&existing).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update membership"})
			return
		}
		c.JSON(http.StatusOK, existing)
		return
	}

	member := models.RegionMember{
		RegionID:  region.ID,
		UserID:    user.ID,
		Role:      req.Role,
		IsActive:  true,
		InvitedBy: &actorID,
	}
	if err := rc.db.Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	if err := rc.emailService.SendRegionInviteEmail(user.Email, user.Name, region.Name, string(req.Role)); err != nil {
		log.Warn().Err(err).Str("email", user.Email).Msg("failed to send invite email")
	}

	notification := models.Notification{
		ID:           uuid.New().String(),
		Type:         models.NotificationTypeInvite,
		ActorUserID:  actorID,
		TargetUserID: user.ID,
		RegionID:     &region.ID,
	}
	rc.db.Create(&notification)

	c.JSON(http.StatusCreated, member)
}

type ChangeRoleRequest struct {
	Role models.RegionRole `json:"role" binding:"required"`
}

// ChangeRole updates a member's region role [region.admin]
func (rc *RegionController) ChangeRole(c *gin.Context) {
	actorID := c.GetString("user_id")

	region, ok := rc.loadRegionForWrite(c, models.RegionPermissionAdmin)
	if !ok {
		return
	}

	memberID, err := strconv.Atoi(c.Param("memberId"))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validRegionRole(req.Role) {
		utils.SendValidationError(c, "Invalid region role")
		return
	}

	var member models.RegionMember
	if err := rc.db.First(&member, "id = ? AND region_id = ?", memberID, region.ID).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	if err := rc.db.Model(&member).Update("role", req.Role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change role"})
		return
	}

	notification := models.Notification{
		ID:           uuid.New().String(),
		Type:         models.NotificationTypeRoleChange,
		ActorUserID:  actorID,
		TargetUserID: member.UserID,
		RegionID:     &region.ID,
	}
	rc.db.Create(&notification)

	c.JSON(http.StatusOK, member)
}

// RemoveMember deactivates a membership [region.admin]
func (rc *RegionController) RemoveMember(c *gin.Context) {
	region, ok := rc.loadRegionForWrite(c, models.RegionPermissionAdmin)
	if !ok {
		return
	}

	memberID, err := strconv.Atoi(c.Param("memberId"))
	if err != nil {
		utils.SendNotFound(c)
		return
	}

	var member models.RegionMember
	if err := rc.db.First(&member, "id = ? AND region_id = ?", memberID, region.ID).Error; err != nil {
		utils.SendNotFound(c)
		return
	}

	if err := rc.db.Model(&member).Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

func (rc *RegionController) loadRegionForWrite(c *gin.Context, permission models.RegionPermission) (*models.Region, bool) {
	regionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendNotFound(c)
		return nil, false
	}

	var region models.Region
	if err := rc.db.First(&region, "id = ?", regionID).Error; err != nil {
		utils.SendNotFound(c)
		return nil, false
	}

	if !services.CheckRegionPermission(middleware.RegionGrants(c), []models.RegionPermission{permission}, &region.ID) {
		utils.SendNotFound(c)
		return nil, false
	}

	return &region, true
}

func validRegionRole(role models.RegionRole) bool {
	switch role {
	case models.RegionRoleUser, models.RegionRoleMaintainer, models.RegionRoleAdmin:
		return true
	}
	return false
}
