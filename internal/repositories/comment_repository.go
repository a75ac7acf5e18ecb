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

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	GetCommentsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Comment, error)
	AddChild(ctx context.Context, parentID, childID primitive.ObjectID) (*models.Comment, error)
	FindParentComments(ctx context.Context, blogID primitive.ObjectID, skip, limit int64) ([]models.Comment, error)
	FindReplies(ctx context.Context, blogID primitive.ObjectID) ([]models.Comment, error)
	DeleteCommentsByBlog(ctx context.Context, blogID primitive.ObjectID) error
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// CreateComment creates a new comment in MongoDB
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CommentedAt = time.Now()
	if comment.Children == nil {
		comment.Children = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetCommentByID retrieves a comment by ID
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByIDs retrieves a batch of comments keyed by their ObjectID
func (r *MongoCommentRepository) GetCommentsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Comment, error) {
	comments := make(map[primitive.ObjectID]models.Comment, len(ids))
	if len(ids) == 0 {
		return comments, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.Comment
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	for _, comment := range results {
		comments[comment.ID] = comment
	}
	return comments, nil
}

// AddChild appends a reply reference to its parent comment's children and
// returns the parent, whose author receives the reply notification
func (r *MongoCommentRepository) AddChild(ctx context.Context, parentID, childID primitive.ObjectID) (*models.Comment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var parent models.Comment
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": parentID},
		bson.M{"$push": bson.M{"children": childID}},
		opts,
	).Decode(&parent)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &parent, nil
}

// FindParentComments retrieves a page of a blog's top-level comments,
// newest first
func (r *MongoCommentRepository) FindParentComments(ctx context.Context, blogID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "commentedAt", Value: -1}})
	return r.findMany(ctx, bson.M{"blog_id": blogID, "isReply": false}, findOptions)
}

// FindReplies retrieves all replies of a blog, oldest first, so the tree
// assembly preserves conversation order
func (r *MongoCommentRepository) FindReplies(ctx context.Context, blogID primitive.ObjectID) ([]models.Comment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "commentedAt", Value: 1}})
	return r.findMany(ctx, bson.M{"blog_id": blogID, "isReply": true}, findOptions)
}

// DeleteCommentsByBlog removes every comment referencing a blog
func (r *MongoCommentRepository) DeleteCommentsByBlog(ctx context.Context, blogID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"blog_id": blogID})
	return err
}

func (r *MongoCommentRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Comment, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
