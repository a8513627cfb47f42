package models

import (
	"time"
)

// MaxAreaNestingDepth is the maximum number of nested area levels (root to leaf).
// Enforced both when building nested queries and when adding a child area.
const MaxAreaNestingDepth = 4

// AreaType classifies a node in the area tree
type AreaType string

const (
	AreaTypeArea AreaType = "area"
	AreaTypeCrag AreaType = "crag"
)

// Area visibility values
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Area is a node in a strict tree of at most MaxAreaNestingDepth levels.
// A subarea always belongs to the same region as its parent.
type Area struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Slug        string    `json:"slug" gorm:"not null;size:255;index"`
	Name        string    `json:"name" gorm:"not null;size:255"`
	Type        AreaType  `json:"type" gorm:"default:'area';size:20"`
	Visibility  string    `json:"visibility" gorm:"default:'public';size:20"`
	Description string    `json:"description"`
	ParentID    *uint     `json:"parent_id" gorm:"index"`
	RegionID    uint      `json:"region_id" gorm:"not null;index"`
	CreatedBy   string    `json:"created_by" gorm:"size:191"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Parent           *Area         `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Children         []Area        `json:"children,omitempty" gorm:"foreignKey:ParentID"`
	Blocks           []Block       `json:"blocks,omitempty" gorm:"foreignKey:AreaID"`
	ParkingLocations []Geolocation `json:"parking_locations,omitempty" gorm:"foreignKey:AreaID"`
	Region           Region        `json:"region,omitempty" gorm:"foreignKey:RegionID"`

	// Pathname is derived from the ancestor chain, never persisted
	Pathname string `json:"pathname,omitempty" gorm:"-"`
}

// Geolocation is a lat/long point. Rows with AreaID set are an area's
// parking locations; blocks reference their point via Block.GeolocationID.
type Geolocation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Latitude  float64   `json:"latitude" gorm:"not null"`
	Longitude float64   `json:"longitude" gorm:"not null"`
	AreaID    *uint     `json:"area_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
