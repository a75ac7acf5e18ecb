package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentBlock is one typed block of the editor output
// (paragraph, header, image, quote, list).
type ContentBlock struct {
	ID   string                 `json:"id,omitempty" bson:"id,omitempty"`
	Type string                 `json:"type" bson:"type"`
	Data map[string]interface{} `json:"data" bson:"data"`
}

// BlogContent is the structured body of a post as produced by the editor
type BlogContent struct {
	Time    int64          `json:"time,omitempty" bson:"time,omitempty"`
	Blocks  []ContentBlock `json:"blocks" bson:"blocks"`
	Version string         `json:"version,omitempty" bson:"version,omitempty"`
}

// Activity holds the denormalized engagement counters of a blog.
// total_likes mirrors the count of like notifications referencing the blog;
// the two are kept in step by sequential writes, not recomputed.
type Activity struct {
	TotalLikes          int `json:"total_likes" bson:"total_likes"`
	TotalComments       int `json:"total_comments" bson:"total_comments"`
	TotalParentComments int `json:"total_parent_comments" bson:"total_parent_comments"`
	TotalReads          int `json:"total_reads" bson:"total_reads"`
}

// Blog represents a blog post stored in MongoDB
type Blog struct {
	ID          primitive.ObjectID   `json:"_id,omitempty" bson:"_id,omitempty"`
	BlogID      string               `json:"blogId" bson:"blogId"` // slug + "-" + random suffix
	Title       string               `json:"title" bson:"title"`
	Description string               `json:"description" bson:"description"`
	Banner      string               `json:"banner" bson:"banner"`
	Content     BlogContent          `json:"content" bson:"content"`
	Tags        []string             `json:"tags" bson:"tags"` // lowercased, max 10
	Draft       bool                 `json:"draft" bson:"draft"`
	Comments    []primitive.ObjectID `json:"comments" bson:"comments"`
	Activity    Activity             `json:"activity" bson:"activity"`
	Creator     primitive.ObjectID   `json:"creator" bson:"creator"`
	PublishedAt time.Time            `json:"publishedAt" bson:"publishedAt"`
}

// CreateBlogRequest defines the request body for creating or editing a blog.
// When ID is set the request edits the existing blog with that blogId.
type CreateBlogRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Banner      string      `json:"banner"`
	Content     BlogContent `json:"content"`
	Tags        []string    `json:"tags"`
	Draft       bool        `json:"draft"`
	ID          string      `json:"id,omitempty"`
}

// SearchBlogsRequest filters published blogs by tag
type SearchBlogsRequest struct {
	Tag string `json:"tag" validate:"required"`
}

// UserBlogsRequest lists published blogs of one author
type UserBlogsRequest struct {
	Username string `json:"username" validate:"required"`
}

// OwnBlogsRequest lists the caller's blogs on the dashboard
type OwnBlogsRequest struct {
	Draft       bool   `json:"draft"`
	SearchQuery string `json:"searchQuery,omitempty"`
}

// BlogDetailsRequest fetches one blog; mode "edit" suppresses the view count
type BlogDetailsRequest struct {
	BlogID string `json:"blogId" validate:"required"`
	Mode   string `json:"mode,omitempty"`
}

// DeleteBlogRequest identifies the blog to delete
type DeleteBlogRequest struct {
	BlogID string `json:"blogId" validate:"required"`
}

// ToggleLikeRequest carries the Mongo _id of the liked blog
type ToggleLikeRequest struct {
	ID string `json:"_id" validate:"required"`
}

// BlogSummary is the blog shape attached to notifications
type BlogSummary struct {
	BlogID string `json:"blogId"`
	Title  string `json:"title"`
}

// BlogResponse is a blog with its creator's public info attached in place
// of the raw creator reference.
type BlogResponse struct {
	Blog
	Creator *UserSummary `json:"creator"`
}
