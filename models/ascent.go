package models

import (
	"time"
)

// AscentType classifies a logged climb
type AscentType string

const (
	AscentTypeFlash   AscentType = "flash"
	AscentTypeSend    AscentType = "send"
	AscentTypeRepeat  AscentType = "repeat"
	AscentTypeAttempt AscentType = "attempt"
)

// Ascent is a logged climb of a route by a user. Its optional grade and
// rating feed the owning route's denormalized UserGradeID/UserRating.
type Ascent struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	RouteID   uint       `json:"route_id" gorm:"not null;index"`
	UserID    string     `json:"user_id" gorm:"not null;size:191;index"`
	Type      AscentType `json:"type" gorm:"not null;size:20"`
	GradeID   *uint      `json:"grade_id"`
	Rating    *int       `json:"rating"`
	Date      time.Time  `json:"date"`
	Notes     string     `json:"notes"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relationships
	Route *Route `json:"route,omitempty" gorm:"foreignKey:RouteID"`
	User  User   `json:"user,omitempty" gorm:"foreignKey:UserID"`

	// Pathname is derived from the ancestor chain, never persisted
	Pathname string `json:"pathname,omitempty" gorm:"-"`
}
