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

// NotificationRepository defines the interface for notification data
// operations. Like notifications double as the like-state store: FindLike
// returning ErrNotFound means "not liked".
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	FindLike(ctx context.Context, userID, blogID primitive.ObjectID) (*models.Notification, error)
	DeleteLike(ctx context.Context, userID, blogID primitive.ObjectID) error
	DeleteNotificationsByBlog(ctx context.Context, blogID primitive.ObjectID) error
	HasUnseen(ctx context.Context, recipient primitive.ObjectID) (bool, error)
	FindNotifications(ctx context.Context, recipient primitive.ObjectID, filter string, skip, limit int64) ([]models.Notification, error)
	CountNotifications(ctx context.Context, recipient primitive.ObjectID, filter string) (int64, error)
	MarkSeen(ctx context.Context, ids []primitive.ObjectID) error
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// CreateNotification creates a new notification in MongoDB
func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// FindLike retrieves the like notification for (user, blog), if any
func (r *MongoNotificationRepository) FindLike(ctx context.Context, userID, blogID primitive.ObjectID) (*models.Notification, error) {
	var notification models.Notification
	err := r.collection.FindOne(ctx, likeQuery(userID, blogID)).Decode(&notification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &notification, nil
}

// DeleteLike removes the like notification for (user, blog)
func (r *MongoNotificationRepository) DeleteLike(ctx context.Context, userID, blogID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, likeQuery(userID, blogID))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteNotificationsByBlog removes every notification referencing a blog
func (r *MongoNotificationRepository) DeleteNotificationsByBlog(ctx context.Context, blogID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"blog": blogID})
	return err
}

// HasUnseen reports whether the recipient has unseen notifications from
// other users
func (r *MongoNotificationRepository) HasUnseen(ctx context.Context, recipient primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"notification_for": recipient,
		"seen":             false,
		"user":             bson.M{"$ne": recipient},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindNotifications retrieves a page of the recipient's notifications,
// newest first, optionally narrowed to one type
func (r *MongoNotificationRepository) FindNotifications(ctx context.Context, recipient primitive.ObjectID, filter string, skip, limit int64) ([]models.Notification, error) {
	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, feedQuery(recipient, filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// CountNotifications counts the recipient's notifications per filter
func (r *MongoNotificationRepository) CountNotifications(ctx context.Context, recipient primitive.ObjectID, filter string) (int64, error) {
	return r.collection.CountDocuments(ctx, feedQuery(recipient, filter))
}

// MarkSeen flags the given notifications as seen
func (r *MongoNotificationRepository) MarkSeen(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"seen": true}})
	return err
}

func likeQuery(userID, blogID primitive.ObjectID) bson.M {
	return bson.M{
		"user": userID,
		"blog": blogID,
		"type": models.NotificationLike,
	}
}

func feedQuery(recipient primitive.ObjectID, filter string) bson.M {
	query := bson.M{
		"notification_for": recipient,
		"user":             bson.M{"$ne": recipient},
	}
	if filter != "" && filter != "all" {
		query["type"] = filter
	}
	return query
}
