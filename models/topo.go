package models

import (
	"time"
)

// Topo is a photo of a block with route lines drawn on it. The upload
// pipeline lives elsewhere; only the database rows matter here because
// routes cannot be deleted while topo associations exist.
type Topo struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BlockID   uint      `json:"block_id" gorm:"not null;index"`
	FilePath  string    `json:"file_path" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Routes []TopoRoute `json:"routes,omitempty" gorm:"foreignKey:TopoID"`
}

// TopoRoute associates a route with a topo image and stores the drawn
// line geometry as JSON.
type TopoRoute struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TopoID    uint      `json:"topo_id" gorm:"not null;index"`
	RouteID   uint      `json:"route_id" gorm:"not null;index"`
	TopoType  string    `json:"topo_type" gorm:"size:20"`
	Path      JSONData  `json:"path" gorm:"type:json"`
	CreatedAt time.Time `json:"created_at"`
}
