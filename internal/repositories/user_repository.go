package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/JoyKMondal/Mern-Blog-App/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	UpdateProfileImage(ctx context.Context, id primitive.ObjectID, url string) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, username, bio string, socialLinks map[string]string) error
	AddBlogRef(ctx context.Context, userID, blogID primitive.ObjectID, postsDelta int) error
	RemoveBlogRef(ctx context.Context, userID, blogID primitive.ObjectID) error
	IncrementTotalReads(ctx context.Context, userID primitive.ObjectID, by int) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser creates a new user in MongoDB
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.JoinedAt = time.Now()
	if user.Blogs == nil {
		user.Blogs = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

// GetUserByID retrieves a user by their hex ObjectID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

// GetUserByEmail retrieves a user by email
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"personal_info.email": email})
}

// GetUserByUsername retrieves a user by username
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"personal_info.username": username})
}

// GetUsersByIDs retrieves a batch of users keyed by their ObjectID
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	users := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.User
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	for _, user := range results {
		users[user.ID] = user
	}
	return users, nil
}

// UsernameTaken reports whether a username is already in use
func (r *MongoUserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"personal_info.username": username})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateProfileImage sets the user's profile image URL
func (r *MongoUserRepository) UpdateProfileImage(ctx context.Context, id primitive.ObjectID, url string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"personal_info.profileImage": url}})
}

// UpdatePassword replaces the stored password hash
func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"personal_info.password": passwordHash}})
}

// UpdateProfile overwrites username, bio and social links
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, username, bio string, socialLinks map[string]string) error {
	set := bson.M{
		"personal_info.username": username,
		"personal_info.bio":      bio,
	}
	if socialLinks != nil {
		set["social_links"] = socialLinks
	}
	return r.updateOne(ctx, id, bson.M{"$set": set})
}

// AddBlogRef appends a blog reference to the user's blog list and adjusts
// total_posts. postsDelta is 1 for a published blog and 0 for a draft.
func (r *MongoUserRepository) AddBlogRef(ctx context.Context, userID, blogID primitive.ObjectID, postsDelta int) error {
	return r.updateOne(ctx, userID, bson.M{
		"$push": bson.M{"blogs": blogID},
		"$inc":  bson.M{"account_info.total_posts": postsDelta},
	})
}

// RemoveBlogRef removes a blog reference and decrements total_posts by 1
func (r *MongoUserRepository) RemoveBlogRef(ctx context.Context, userID, blogID primitive.ObjectID) error {
	return r.updateOne(ctx, userID, bson.M{
		"$pull": bson.M{"blogs": blogID},
		"$inc":  bson.M{"account_info.total_posts": -1},
	})
}

// IncrementTotalReads adjusts the user's aggregate read counter
func (r *MongoUserRepository) IncrementTotalReads(ctx context.Context, userID primitive.ObjectID, by int) error {
	if by == 0 {
		return nil
	}
	return r.updateOne(ctx, userID, bson.M{"$inc": bson.M{"account_info.total_reads": by}})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
