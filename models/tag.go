package models

import (
	"time"
)

// Tag is a global label managed by app admins
type Tag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null;size:100"`
	CreatedAt time.Time `json:"created_at"`
}

// RouteTag attaches a tag to a route
type RouteTag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RouteID   uint      `json:"route_id" gorm:"not null;uniqueIndex:idx_route_tags_route_tag"`
	TagID     uint      `json:"tag_id" gorm:"not null;uniqueIndex:idx_route_tags_route_tag"`
	CreatedAt time.Time `json:"created_at"`

	Tag Tag `json:"tag,omitempty" gorm:"foreignKey:TagID"`
}
