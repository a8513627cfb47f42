package models

import (
	"strings"
	"time"
)

// GradingScale selects which column of the grade conversion table is shown to a user
type GradingScale string

const (
	GradingScaleFB GradingScale = "FB"
	GradingScaleV  GradingScale = "V"
)

// AppRole is the application-wide role of a user, distinct from region roles
type AppRole string

const (
	AppRoleUser  AppRole = "app_user"
	AppRoleAdmin AppRole = "app_admin"
)

type User struct {
	ID            string       `json:"id" gorm:"primaryKey;size:191"`
	Name          string       `json:"name" gorm:"not null;size:255"`
	Handle        string       `json:"handle" gorm:"uniqueIndex;not null;size:50"`
	Email         string       `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password      string       `json:"-" gorm:"not null;size:255"`
	EmailVerified bool         `json:"email_verified" gorm:"default:false"`
	Avatar        *string      `json:"avatar" gorm:"size:500"`
	GradingScale  GradingScale `json:"grading_scale" gorm:"default:'FB';size:10"`
	AppRole       AppRole      `json:"app_role" gorm:"default:'app_user';size:50"`
	AscentsCount  int          `json:"ascents_count" gorm:"default:0"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	// Relationships
	RegionMemberships []RegionMember `json:"region_memberships,omitempty" gorm:"foreignKey:UserID"`
	Ascents           []Ascent       `json:"ascents,omitempty" gorm:"foreignKey:UserID"`
}

// GenerateHandleFromName creates a handle from the user's name
func GenerateHandleFromName(name string) string {
	// Convert to lowercase and replace spaces with underscores
	handle := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	// Remove special characters
	handle = strings.ReplaceAll(handle, ".", "")
	handle = strings.ReplaceAll(handle, "-", "_")
	return handle
}

// UserStatistics represents aggregate numbers shown on a user's profile
type UserStatistics struct {
	AscentsCount  int64 `json:"ascents_count"`
	RoutesCreated int64 `json:"routes_created"`
	AreasCreated  int64 `json:"areas_created"`
	RegionsCount  int64 `json:"regions_count"`
}
