package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeLike    NotificationType = "like"
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeReply   NotificationType = "reply"
	NotificationTypeRating  NotificationType = "rating"
	NotificationTypeFollow  NotificationType = "follow"
)

// NotificationRetention is how long a notification stays visible.
const NotificationRetention = 30 * 24 * time.Hour

type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index:idx_notification_recipient" json:"recipient_id"`
	SenderID    uint             `gorm:"not null;index" json:"sender_id"`
	Type        NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Message     string           `gorm:"type:text;not null" json:"message"`
	RecipeID    *uint            `gorm:"index" json:"recipe_id,omitempty"`
	CommentID   *uint            `gorm:"index" json:"comment_id,omitempty"`
	IsRead      bool             `gorm:"default:false;index" json:"is_read"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
	CreatedAt   time.Time        `gorm:"index:idx_notification_recipient;index" json:"created_at"`
}
