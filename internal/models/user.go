package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PersonalInfo holds the user's identity and profile fields
type PersonalInfo struct {
	FullName     string `json:"fullName" bson:"fullName"`
	Email        string `json:"email" bson:"email"`
	Password     string `json:"-" bson:"password"` // bcrypt hash, never serialized
	Username     string `json:"username" bson:"username"`
	Bio          string `json:"bio" bson:"bio"`
	ProfileImage string `json:"profileImage" bson:"profileImage"`
}

// AccountInfo holds denormalized aggregate counters for fast profile display
type AccountInfo struct {
	TotalPosts int `json:"total_posts" bson:"total_posts"`
	TotalReads int `json:"total_reads" bson:"total_reads"`
}

// User represents a user account stored in MongoDB
type User struct {
	ID           primitive.ObjectID   `json:"_id,omitempty" bson:"_id,omitempty"`
	PersonalInfo PersonalInfo         `json:"personal_info" bson:"personal_info"`
	SocialLinks  map[string]string    `json:"social_links,omitempty" bson:"social_links,omitempty"`
	AccountInfo  AccountInfo          `json:"account_info" bson:"account_info"`
	GoogleAuth   bool                 `json:"google_auth" bson:"google_auth"`
	Blogs        []primitive.ObjectID `json:"blogs" bson:"blogs"`
	JoinedAt     time.Time            `json:"joinedAt" bson:"joinedAt"`
}

// UserSummary is the creator/actor shape attached to blogs, comments and
// notifications in responses (the subset a feed needs to render a user).
type UserSummary struct {
	PersonalInfo PersonalInfoSummary `json:"personal_info" bson:"personal_info"`
}

type PersonalInfoSummary struct {
	FullName     string `json:"fullName" bson:"fullName"`
	Username     string `json:"username" bson:"username"`
	ProfileImage string `json:"profileImage" bson:"profileImage"`
}

// SignupRequest defines the request body for local registration
type SignupRequest struct {
	FullName string `json:"fullName" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest defines the request body for password login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleAuthRequest carries the Firebase ID token obtained from Google sign-in
type GoogleAuthRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

// UserProfileRequest looks up a public profile by username
type UserProfileRequest struct {
	Username string `json:"username" validate:"required"`
}

// UpdateProfileImageRequest defines the request body for swapping the avatar
type UpdateProfileImageRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// ChangePasswordRequest defines the request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,min=6"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// UpdateProfileRequest defines the request body for editing profile details
type UpdateProfileRequest struct {
	Username    string            `json:"username" validate:"required,min=3"`
	Bio         string            `json:"bio" validate:"max=200"`
	SocialLinks map[string]string `json:"social_links,omitempty" validate:"omitempty,dive,omitempty,url"`
}

// AuthResponse is returned by signup, login and google-auth
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	Username     string `json:"username"`
	FullName     string `json:"fullName"`
	ProfileImage string `json:"profileImage"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"` // hex ObjectID
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Summary reduces a full user document to its response shape
func (u *User) Summary() *UserSummary {
	return &UserSummary{PersonalInfo: PersonalInfoSummary{
		FullName:     u.PersonalInfo.FullName,
		Username:     u.PersonalInfo.Username,
		ProfileImage: u.PersonalInfo.ProfileImage,
	}}
}
