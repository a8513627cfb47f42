package models

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationTypeAscent     NotificationType = "ascent"
	NotificationTypeNewRoute   NotificationType = "new_route"
	NotificationTypeInvite     NotificationType = "invite"
	NotificationTypeRoleChange NotificationType = "role_change"
)

type Notification struct {
	ID           string           `json:"id" gorm:"primaryKey;size:191"`
	Type         NotificationType `json:"type" gorm:"not null;size:50"`
	ActorUserID  string           `json:"actor_user_id" gorm:"not null;size:191"`  // Who performed the action
	TargetUserID string           `json:"target_user_id" gorm:"not null;size:191"` // Who receives the notification
	RouteID      *uint            `json:"route_id"`                                // Optional: related route
	RegionID     *uint            `json:"region_id"`                               // Optional: related region
	IsRead       bool             `json:"is_read" gorm:"default:false"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	// Relationships
	ActorUser  User    `json:"actor_user" gorm:"foreignKey:ActorUserID"`
	TargetUser User    `json:"target_user" gorm:"foreignKey:TargetUserID"`
	Route      *Route  `json:"route,omitempty" gorm:"foreignKey:RouteID"`
	Region     *Region `json:"region,omitempty" gorm:"foreignKey:RegionID"`
}

// NotificationResponse represents the API response for notifications
type NotificationResponse struct {
	ID        string             `json:"id"`
	Type      NotificationType   `json:"type"`
	ActorUser NotificationUser   `json:"actor_user"`
	Route     *NotificationRoute `json:"route,omitempty"`
	IsRead    bool               `json:"is_read"`
	CreatedAt time.Time          `json:"created_at"`
	Message   string             `json:"message"`
	TimeAgo   string             `json:"time_ago"`
}

type NotificationUser struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Handle string  `json:"handle"`
	Avatar *string `json:"avatar"`
}

type NotificationRoute struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// NotificationStats represents notification statistics
type NotificationStats struct {
	UnreadCount int `json:"unread_count"`
	TotalCount  int `json:"total_count"`
}

// GetNotificationMessage returns a human-readable message for the notification
func (n *Notification) GetNotificationMessage() string {
	switch n.Type {
	case NotificationTypeAscent:
		return "climbed your route"
	case NotificationTypeNewRoute:
		return "added a new route"
	case NotificationTypeInvite:
		return "invited you to a region"
	case NotificationTypeRoleChange:
		return "changed your region role"
	default:
		return "interacted with your content"
	}
}

// GetTimeAgo returns a human-readable time difference
func (n *Notification) GetTimeAgo() string {
	now := time.Now()
	diff := now.Sub(n.CreatedAt)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		minutes := int(diff.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / (24 * 7))
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		months := int(diff.Hours() / (24 * 30))
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	}
}

// ToResponse converts Notification to NotificationResponse
func (n *Notification) ToResponse() NotificationResponse {
	response := NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
		Message:   n.GetNotificationMessage(),
		TimeAgo:   n.GetTimeAgo(),
		ActorUser: NotificationUser{
			ID:     n.ActorUser.ID,
			Name:   n.ActorUser.Name,
			Handle: n.ActorUser.Handle,
			Avatar: n.ActorUser.Avatar,
		},
	}

	if n.Route != nil {
		response.Route = &NotificationRoute{
			ID:   n.Route.ID,
			Name: n.Route.Name,
		}
	}

	return response
}
