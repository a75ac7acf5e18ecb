package repositories

import (
	"context"
	"time"

	"github.com/JoyKMondal/Mern-Blog-App/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BlogFilter narrows published-blog listings by tag and/or creator
type BlogFilter struct {
	Tag     string
	Creator *primitive.ObjectID
}

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	CreateBlog(ctx context.Context, blog *models.Blog) error
	GetBlogByBlogID(ctx context.Context, blogID string) (*models.Blog, error)
	GetBlogByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)
	GetBlogsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Blog, error)
	UpdateBlog(ctx context.Context, blog *models.Blog) error
	DeleteBlog(ctx context.Context, id primitive.ObjectID) error
	FindPublished(ctx context.Context, filter BlogFilter, skip, limit int64) ([]models.Blog, error)
	CountPublished(ctx context.Context, filter BlogFilter) (int64, error)
	FindTrending(ctx context.Context, limit int64) ([]models.Blog, error)
	FindOwn(ctx context.Context, creator primitive.ObjectID, draft bool, searchQuery string) ([]models.Blog, error)
	IncrementReads(ctx context.Context, blogID string, by int) (*models.Blog, error)
	ApplyLikeDelta(ctx context.Context, id primitive.ObjectID, delta int) (*models.Blog, error)
	AddComment(ctx context.Context, id, commentID primitive.ObjectID, parentDelta int) (*models.Blog, error)
	CreatorsByTag(ctx context.Context, tag string) ([]models.UserSummary, error)
}

// MongoBlogRepository implements BlogRepository for MongoDB
type MongoBlogRepository struct {
	collection *mongo.Collection
}

// NewMongoBlogRepository creates a new MongoBlogRepository
func NewMongoBlogRepository(db *mongo.Database) *MongoBlogRepository {
	return &MongoBlogRepository{collection: db.Collection("blogs")}
}

// CreateBlog creates a new blog in MongoDB
func (r *MongoBlogRepository) CreateBlog(ctx context.Context, blog *models.Blog) error {
	blog.ID = primitive.NewObjectID()
	blog.PublishedAt = time.Now()
	if blog.Comments == nil {
		blog.Comments = []primitive.ObjectID{}
	}
	if blog.Tags == nil {
		blog.Tags = []string{}
	}
	_, err := r.collection.InsertOne(ctx, blog)
	return err
}

// GetBlogByBlogID retrieves a blog by its human-readable blogId
func (r *MongoBlogRepository) GetBlogByBlogID(ctx context.Context, blogID string) (*models.Blog, error) {
	return r.findOne(ctx, bson.M{"blogId": blogID})
}

// GetBlogByID retrieves a blog by its Mongo ObjectID
func (r *MongoBlogRepository) GetBlogByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetBlogsByIDs retrieves a batch of blogs keyed by their ObjectID
func (r *MongoBlogRepository) GetBlogsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Blog, error) {
	blogs := make(map[primitive.ObjectID]models.Blog, len(ids))
	if len(ids) == 0 {
		return blogs, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.Blog
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	for _, blog := range results {
		blogs[blog.ID] = blog
	}
	return blogs, nil
}

// UpdateBlog overwrites the editable fields of an existing blog in place
func (r *MongoBlogRepository) UpdateBlog(ctx context.Context, blog *models.Blog) error {
	update := bson.M{
		"$set": bson.M{
			"title":       blog.Title,
			"description": blog.Description,
			"banner":      blog.Banner,
			"content":     blog.Content,
			"tags":        blog.Tags,
			"draft":       blog.Draft,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"blogId": blog.BlogID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBlog deletes a blog by its ObjectID
func (r *MongoBlogRepository) DeleteBlog(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindPublished retrieves published blogs newest-first with pagination
func (r *MongoBlogRepository) FindPublished(ctx context.Context, filter BlogFilter, skip, limit int64) ([]models.Blog, error) {
	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	return r.findMany(ctx, publishedQuery(filter), findOptions)
}

// CountPublished counts published blogs matching the filter
func (r *MongoBlogRepository) CountPublished(ctx context.Context, filter BlogFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, publishedQuery(filter))
}

// FindTrending retrieves the most-read published blogs, ties broken by likes
// then recency
func (r *MongoBlogRepository) FindTrending(ctx context.Context, limit int64) ([]models.Blog, error) {
	findOptions := options.Find().
		SetLimit(limit).
		SetSort(bson.D{
			{Key: "activity.total_reads", Value: -1},
			{Key: "activity.total_likes", Value: -1},
			{Key: "publishedAt", Value: -1},
		})
	return r.findMany(ctx, bson.M{"draft": false}, findOptions)
}

// FindOwn retrieves a creator's own blogs (drafts or published) newest-first,
// optionally filtered by a case-insensitive title match
func (r *MongoBlogRepository) FindOwn(ctx context.Context, creator primitive.ObjectID, draft bool, searchQuery string) ([]models.Blog, error) {
	query := bson.M{"creator": creator, "draft": draft}
	if searchQuery != "" {
		query["title"] = bson.M{"$regex": searchQuery, "$options": "i"}
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	return r.findMany(ctx, query, findOptions)
}

// IncrementReads bumps activity.total_reads by the given amount and returns
// the updated blog. by is 0 for edit-mode reads.
func (r *MongoBlogRepository) IncrementReads(ctx context.Context, blogID string, by int) (*models.Blog, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{"blogId": blogID},
		bson.M{"$inc": bson.M{"activity.total_reads": by}})
}

// ApplyLikeDelta adjusts activity.total_likes and returns the updated blog
func (r *MongoBlogRepository) ApplyLikeDelta(ctx context.Context, id primitive.ObjectID, delta int) (*models.Blog, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"activity.total_likes": delta}})
}

// AddComment pushes a comment reference onto the blog and adjusts the comment
// counters. parentDelta is 1 for a top-level comment and 0 for a reply.
func (r *MongoBlogRepository) AddComment(ctx context.Context, id, commentID primitive.ObjectID, parentDelta int) (*models.Blog, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"comments": commentID},
			"$inc": bson.M{
				"activity.total_comments":        1,
				"activity.total_parent_comments": parentDelta,
			},
		})
}

// CreatorsByTag returns the public info of every user with a published blog
// carrying the tag, via a group-by-creator aggregation joined to users
func (r *MongoBlogRepository) CreatorsByTag(ctx context.Context, tag string) ([]models.UserSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tags": tag, "draft": false}}},
		{{Key: "$group", Value: bson.M{"_id": "$creator"}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "userDetails",
		}}},
		{{Key: "$unwind", Value: "$userDetails"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$userDetails"}}},
		{{Key: "$project", Value: bson.M{"personal_info": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.UserSummary
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func publishedQuery(filter BlogFilter) bson.M {
	query := bson.M{"draft": false}
	if filter.Tag != "" {
		query["tags"] = filter.Tag
	}
	if filter.Creator != nil {
		query["creator"] = *filter.Creator
	}
	return query
}

func (r *MongoBlogRepository) findOne(ctx context.Context, filter bson.M) (*models.Blog, error) {
	var blog models.Blog
	err := r.collection.FindOne(ctx, filter).Decode(&blog)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &blog, nil
}

func (r *MongoBlogRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Blog, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var blogs []models.Blog
	if err = cursor.All(ctx, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

func (r *MongoBlogRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Blog, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var blog models.Blog
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&blog)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &blog, nil
}
