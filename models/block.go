package models

import (
	"time"
)

// Block is a physical rock formation inside an area, containing routes.
// Slug is unique within the owning area; Order is the manual position among
// siblings and is set to the sibling count at creation time.
type Block struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Slug          string    `json:"slug" gorm:"not null;size:255;index"`
	Name          string    `json:"name" gorm:"not null;size:255"`
	AreaID        uint      `json:"area_id" gorm:"not null;index"`
	Order         int       `json:"order" gorm:"not null;default:0"`
	GeolocationID *uint     `json:"geolocation_id"`
	CreatedBy     string    `json:"created_by" gorm:"size:191"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	Area        *Area        `json:"area,omitempty" gorm:"foreignKey:AreaID"`
	Geolocation *Geolocation `json:"geolocation,omitempty" gorm:"foreignKey:GeolocationID"`
	Routes      []Route      `json:"routes,omitempty" gorm:"foreignKey:BlockID"`
	Topos       []Topo       `json:"topos,omitempty" gorm:"foreignKey:BlockID"`

	// Pathname is derived from the ancestor chain, never persisted
	Pathname string `json:"pathname,omitempty" gorm:"-"`
}
