package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationReply   = "reply"
)

// Notification represents one user's action (like/comment/reply) surfaced to
// another user. A like notification is unique per (user, blog) and doubles as
// the source of truth for "has this user liked this blog".
type Notification struct {
	ID               primitive.ObjectID  `json:"_id,omitempty" bson:"_id,omitempty"`
	Type             string              `json:"type" bson:"type"`
	Blog             primitive.ObjectID  `json:"blog" bson:"blog"`
	NotificationFor  primitive.ObjectID  `json:"notification_for" bson:"notification_for"`
	User             primitive.ObjectID  `json:"user" bson:"user"` // actor
	Comment          *primitive.ObjectID `json:"comment,omitempty" bson:"comment,omitempty"`
	RepliedOnComment *primitive.ObjectID `json:"replied_on_comment,omitempty" bson:"replied_on_comment,omitempty"`
	Seen             bool                `json:"seen" bson:"seen"`
	CreatedAt        time.Time           `json:"createdAt" bson:"createdAt"`
}

// NotificationsRequest pages through the caller's notification feed.
// Filter is "all" or one of the notification types. DeletedDocCount shifts
// the skip window when the client removed items from an already-loaded page.
type NotificationsRequest struct {
	Page            int64  `json:"page"`
	Filter          string `json:"filter"`
	DeletedDocCount int64  `json:"deletedDocCount"`
}

// CountNotificationsRequest counts the caller's notifications per filter
type CountNotificationsRequest struct {
	Filter string `json:"filter"`
}

// NotificationResponse is a notification with the referenced blog, actor and
// comments resolved into their display shapes.
type NotificationResponse struct {
	Notification
	Blog             *BlogSummary    `json:"blog"`
	User             *UserSummary    `json:"user"`
	Comment          *CommentSummary `json:"comment,omitempty"`
	RepliedOnComment *CommentSummary `json:"replied_on_comment,omitempty"`
}
