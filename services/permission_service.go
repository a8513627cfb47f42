package services

import (
	"strings"

	"gorm.io/gorm"

	"cragbase-api/models"
)

// RegionGrant is a user's effective permission set in one region, resolved
// from the role held in an active membership row.
type RegionGrant struct {
	RegionID    uint                      `json:"region_id"`
	Role        models.RegionRole         `json:"role"`
	Permissions []models.RegionPermission `json:"permissions"`
}

// PermissionService resolves role→permission mappings. The mapping is loaded
// from the role_permissions table once at construction; the in-code defaults
// apply when the table is empty.
type PermissionService struct {
	db                 *gorm.DB
	rolePermissions    map[models.RegionRole][]models.RegionPermission
	appRolePermissions map[models.AppRole][]models.AppPermission
}

// DefaultRolePermissions is the authoritative in-code role→permission table
// for region roles. Every role includes read.
func DefaultRolePermissions() map[models.RegionRole][]models.RegionPermission {
	return map[models.RegionRole][]models.RegionPermission{
		models.RegionRoleUser: {
			models.RegionPermissionRead,
		},
		models.RegionRoleMaintainer: {
			models.RegionPermissionRead,
			models.RegionPermissionEdit,
		},
		models.RegionRoleAdmin: {
			models.RegionPermissionRead,
			models.RegionPermissionEdit,
			models.RegionPermissionDelete,
			models.RegionPermissionAdmin,
		},
	}
}

// DefaultAppRolePermissions maps app-wide roles to app permissions
func DefaultAppRolePermissions() map[models.AppRole][]models.AppPermission {
	return map[models.AppRole][]models.AppPermission{
		models.AppRoleUser:  {},
		models.AppRoleAdmin: {models.AppPermissionAdmin},
	}
}

func NewPermissionService(db *gorm.DB) *PermissionService {
	ps := &PermissionService{
		db:                 db,
		rolePermissions:    DefaultRolePermissions(),
		appRolePermissions: DefaultAppRolePermissions(),
	}
	ps.loadFromTable()
	return ps
}

// loadFromTable overrides the defaults with the seeded role_permissions rows
func (ps *PermissionService) loadFromTable() {
	var rows []models.RolePermission
	if err := ps.db.Find(&rows).Error; err != nil || len(rows) == 0 {
		return
	}

	regionPerms := make(map[models.RegionRole][]models.RegionPermission)
	appPerms := make(map[models.AppRole][]models.AppPermission)

	for _, row := range rows {
		if strings.HasPrefix(row.Permission, "app.") {
			role := models.AppRole(row.Role)
			appPerms[role] = append(appPerms[role], models.AppPermission(row.Permission))
		} else {
			role := models.RegionRole(row.Role)
			regionPerms[role] = append(regionPerms[role], models.RegionPermission(row.Permission))
		}
	}

	if len(regionPerms) > 0 {
		ps.rolePermissions = regionPerms
	}
	if len(appPerms) > 0 {
		// Roles without any rows keep an empty permission set
		for role := range DefaultAppRolePermissions() {
			if _, ok := appPerms[role]; !ok {
				appPerms[role] = []models.AppPermission{}
			}
		}
		ps.appRolePermissions = appPerms
	}
}

// RegionRolePermissions returns the permission set for a region role
func (ps *PermissionService) RegionRolePermissions(role models.RegionRole) []models.RegionPermission {
	return ps.rolePermissions[role]
}

// AppRolePermissions returns the permission set for an app-wide role
func (ps *PermissionService) AppRolePermissions(role models.AppRole) []models.AppPermission {
	return ps.appRolePermissions[role]
}

// ResolveUserGrants computes a user's effective per-region permission sets
// from their active memberships. Called once per request by the auth
// middleware; the result is cached in the request context.
func (ps *PermissionService) ResolveUserGrants(userID string) ([]RegionGrant, error) {
	var memberships []models.RegionMember
	if err := ps.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&memberships).Error; err != nil {
		return nil, err
	}

	grants := make([]RegionGrant, 0, len(memberships))
	for _, m := range memberships {
		grants = append(grants, RegionGrant{
			RegionID:    m.RegionID,
			Role:        m.Role,
			Permissions: ps.rolePermissions[m.Role],
		})
	}
	return grants, nil
}

// CheckRegionPermission returns true iff the target region appears in the
// user's grants and that grant carries every required permission. A nil
// target region always fails; creation handlers must pass the region id
// of the values being written, not the parent's.
func CheckRegionPermission(grants []RegionGrant, required []models.RegionPermission, regionID *uint) bool {
	if regionID == nil {
		return false
	}

	for _, grant := range grants {
		if grant.RegionID != *regionID {
			continue
		}
		return hasAllRegionPermissions(grant.Permissions, required)
	}
	return false
}

// CheckAppPermission returns true iff every required app permission is held
func CheckAppPermission(permissions []models.AppPermission, required []models.AppPermission) bool {
	for _, req := range required {
		found := false
		for _, p := range permissions {
			if p == req {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func hasAllRegionPermissions(held []models.RegionPermission, required []models.RegionPermission) bool {
	for _, req := range required {
		found := false
		for _, p := range held {
			if p == req {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
