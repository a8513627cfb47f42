package models

import (
	"time"
)

// Route is a single climbing route within a block.
//
// AreaFks and AreaIDs snapshot the ancestor area chain (root-first) at
// creation time. They are NOT reconciled when an ancestor area is later
// re-parented; filters built on them see the chain as it was when the route
// was created.
type Route struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Slug        string    `json:"slug" gorm:"size:255;index"` // may be empty, numeric id is the fallback address
	Name        string    `json:"name" gorm:"not null;size:255"`
	BlockID     uint      `json:"block_id" gorm:"not null;index"`
	Description string    `json:"description"`
	GradeID     *uint     `json:"grade_id"`
	Rating      *int      `json:"rating"`
	UserGradeID *uint     `json:"user_grade_id"`
	UserRating  *int      `json:"user_rating"`
	AreaFks     IntSlice  `json:"area_fks" gorm:"type:json"`
	AreaIDs     string    `json:"area_ids" gorm:"size:500;index"` // comma-fenced id list, e.g. ",1,4,9,"
	CreatedBy   string    `json:"created_by" gorm:"size:191"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Block             *Block                  `json:"block,omitempty" gorm:"foreignKey:BlockID"`
	Grade             *Grade                  `json:"grade,omitempty" gorm:"foreignKey:GradeID"`
	Ascents           []Ascent                `json:"ascents,omitempty" gorm:"foreignKey:RouteID"`
	Tags              []RouteTag              `json:"tags,omitempty" gorm:"foreignKey:RouteID"`
	FirstAscents      []FirstAscent           `json:"first_ascents,omitempty" gorm:"foreignKey:RouteID"`
	ExternalResources []RouteExternalResource `json:"external_resources,omitempty" gorm:"foreignKey:RouteID"`

	// Pathname is derived from the ancestor chain, never persisted
	Pathname string `json:"pathname,omitempty" gorm:"-"`
}

// FirstAscent links a route to the climber credited with its first ascent
type FirstAscent struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RouteID     uint      `json:"route_id" gorm:"not null;index"`
	ClimberName string    `json:"climber_name" gorm:"not null;size:255"`
	Year        *int      `json:"year"`
	CreatedAt   time.Time `json:"created_at"`
}

// RouteExternalResource is a link to an external page describing the route
type RouteExternalResource struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RouteID   uint      `json:"route_id" gorm:"not null;index"`
	URL       string    `json:"url" gorm:"not null;size:500"`
	Source    string    `json:"source" gorm:"size:100"`
	CreatedAt time.Time `json:"created_at"`
}
