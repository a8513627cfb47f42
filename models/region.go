package models

import (
	"time"
)

// RegionRole is the role a user holds inside a single region
type RegionRole string

const (
	RegionRoleUser       RegionRole = "region_user"
	RegionRoleMaintainer RegionRole = "region_maintainer"
	RegionRoleAdmin      RegionRole = "region_admin"
)

// RegionPermission is a single permission string granted through a region role
type RegionPermission string

const (
	RegionPermissionRead   RegionPermission = "region.read"
	RegionPermissionEdit   RegionPermission = "region.edit"
	RegionPermissionDelete RegionPermission = "region.delete"
	RegionPermissionAdmin  RegionPermission = "region.admin"
)

// AppPermission is an application-wide permission derived from the app role
type AppPermission string

const (
	AppPermissionAdmin AppPermission = "app.admin"
)

// Region is the top-level tenant boundary; every area traces to exactly one region
type Region struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;size:255"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null;size:255"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by" gorm:"size:191"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Members []RegionMember `json:"members,omitempty" gorm:"foreignKey:RegionID"`
	Areas   []Area         `json:"areas,omitempty" gorm:"foreignKey:RegionID"`
}

// RegionMember associates a user with a region and a role.
// A user holds at most one membership row per region; IsActive toggles it.
// IsActive carries no column default on purpose: gorm substitutes defaults
// for zero values on Create, which would silently activate rows created with
// IsActive false. Creation sites set the flag explicitly.
type RegionMember struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	RegionID  uint       `json:"region_id" gorm:"not null;uniqueIndex:idx_region_members_region_user"`
	UserID    string     `json:"user_id" gorm:"not null;size:191;uniqueIndex:idx_region_members_region_user"`
	Role      RegionRole `json:"role" gorm:"not null;size:50"`
	IsActive  bool       `json:"is_active" gorm:"not null"`
	InvitedBy *string    `json:"invited_by" gorm:"size:191"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Region Region `json:"region,omitempty" gorm:"foreignKey:RegionID"`
	User   User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// RolePermission maps a role to a single permission string. The table is
// seeded from the in-code defaults and read once at startup.
type RolePermission struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Role       string `json:"role" gorm:"not null;size:50;index"`
	Permission string `json:"permission" gorm:"not null;size:100"`
}

// TableName specifies the database table name for the RolePermission model
func (RolePermission) TableName() string {
	return "role_permissions"
}
