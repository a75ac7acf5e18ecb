package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment or reply on a blog.
// A non-reply has no parent; a reply always has exactly one.
type Comment struct {
	ID          primitive.ObjectID   `json:"_id,omitempty" bson:"_id,omitempty"`
	BlogID      primitive.ObjectID   `json:"blog_id" bson:"blog_id"`
	BlogAuthor  primitive.ObjectID   `json:"blog_author" bson:"blog_author"`
	Comment     string               `json:"comment" bson:"comment"`
	CommentedBy primitive.ObjectID   `json:"commented_by" bson:"commented_by"`
	IsReply     bool                 `json:"isReply" bson:"isReply"`
	Parent      *primitive.ObjectID  `json:"parent,omitempty" bson:"parent,omitempty"`
	Children    []primitive.ObjectID `json:"children" bson:"children"`
	CommentedAt time.Time            `json:"commentedAt" bson:"commentedAt"`
}

// CreateCommentRequest defines the request body for commenting on a blog.
// ReplyingTo holds the parent comment id when the comment is a reply.
type CreateCommentRequest struct {
	BlogID     string `json:"_id" validate:"required"`
	BlogAuthor string `json:"blog_author" validate:"required"`
	Comment    string `json:"comments"`
	ReplyingTo string `json:"replyingTo,omitempty"`
}

// BlogCommentsRequest pages through a blog's top-level comments
type BlogCommentsRequest struct {
	BlogID string `json:"blog_id" validate:"required"`
	Skip   int64  `json:"skip"`
}

// CommentSummary is the comment shape attached to notifications
type CommentSummary struct {
	Comment string `json:"comment"`
}

// CommentNode is one node of the assembled comment tree: a comment with its
// commenter's public info, nested children and the computed depth level.
type CommentNode struct {
	Comment
	CommentedBy   *UserSummary   `json:"commented_by"`
	Children      []*CommentNode `json:"children"`
	ChildrenLevel int            `json:"childrenLevel"`
}
