package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/JoyKMondal/Mern-Blog-App/internal/models"
	"github.com/JoyKMondal/Mern-Blog-App/internal/repositories"
	"github.com/JoyKMondal/Mern-Blog-App/pkg/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes mirroring the behavior of the Mongo
// implementations closely enough for handler tests.

type fakeUserRepo struct {
	users []*models.User
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.JoinedAt = time.Now()
	if user.Blogs == nil {
		user.Blogs = []primitive.ObjectID{}
	}
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}
	for _, user := range r.users {
		if user.ID == objID {
			u := *user
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.PersonalInfo.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range r.users {
		if user.PersonalInfo.Username == username {
			u := *user
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	users := make(map[primitive.ObjectID]models.User, len(ids))
	for _, id := range ids {
		for _, user := range r.users {
			if user.ID == id {
				users[id] = *user
			}
		}
	}
	return users, nil
}

func (r *fakeUserRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	for _, user := range r.users {
		if user.PersonalInfo.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UpdateProfileImage(ctx context.Context, id primitive.ObjectID, url string) error {
	user, err := r.find(id)
	if err != nil {
		return err
	}
	user.PersonalInfo.ProfileImage = url
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	user, err := r.find(id)
	if err != nil {
		return err
	}
	user.PersonalInfo.Password = passwordHash
	return nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, username, bio string, socialLinks map[string]string) error {
	user, err := r.find(id)
	if err != nil {
		return err
	}
	user.PersonalInfo.Username = username
	user.PersonalInfo.Bio = bio
	if socialLinks != nil {
		user.SocialLinks = socialLinks
	}
	return nil
}

func (r *fakeUserRepo) AddBlogRef(ctx context.Context, userID, blogID primitive.ObjectID, postsDelta int) error {
	user, err := r.find(userID)
	if err != nil {
		return err
	}
	user.Blogs = append(user.Blogs, blogID)
	user.AccountInfo.TotalPosts += postsDelta
	return nil
}

func (r *fakeUserRepo) RemoveBlogRef(ctx context.Context, userID, blogID primitive.ObjectID) error {
	user, err := r.find(userID)
	if err != nil {
		return err
	}
	kept := user.Blogs[:0]
	for _, id := range user.Blogs {
		if id != blogID {
			kept = append(kept, id)
		}
	}
	user.Blogs = kept
	user.AccountInfo.TotalPosts--
	return nil
}

func (r *fakeUserRepo) IncrementTotalReads(ctx context.Context, userID primitive.ObjectID, by int) error {
	if by == 0 {
		return nil
	}
	user, err := r.find(userID)
	if err != nil {
		return err
	}
	user.AccountInfo.TotalReads += by
	return nil
}

func (r *fakeUserRepo) find(id primitive.ObjectID) (*models.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

type fakeBlogRepo struct {
	blogs []*models.Blog
	users *fakeUserRepo // for CreatorsByTag
}

func (r *fakeBlogRepo) CreateBlog(ctx context.Context, blog *models.Blog) error {
	blog.ID = primitive.NewObjectID()
	blog.PublishedAt = time.Now()
	if blog.Comments == nil {
		blog.Comments = []primitive.ObjectID{}
	}
	if blog.Tags == nil {
		blog.Tags = []string{}
	}
	r.blogs = append(r.blogs, blog)
	return nil
}

func (r *fakeBlogRepo) GetBlogByBlogID(ctx context.Context, blogID string) (*models.Blog, error) {
	for _, blog := range r.blogs {
		if blog.BlogID == blogID {
			b := *blog
			return &b, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeBlogRepo) GetBlogByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	blog, err := r.find(id)
	if err != nil {
		return nil, err
	}
	b := *blog
	return &b, nil
}

func (r *fakeBlogRepo) GetBlogsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Blog, error) {
	blogs := make(map[primitive.ObjectID]models.Blog, len(ids))
	for _, id := range ids {
		if blog, err := r.find(id); err == nil {
			blogs[id] = *blog
		}
	}
	return blogs, nil
}

func (r *fakeBlogRepo) UpdateBlog(ctx context.Context, blog *models.Blog) error {
	for _, stored := range r.blogs {
		if stored.BlogID == blog.BlogID {
			stored.Title = blog.Title
			stored.Description = blog.Description
			stored.Banner = blog.Banner
			stored.Content = blog.Content
			stored.Tags = blog.Tags
			stored.Draft = blog.Draft
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeBlogRepo) DeleteBlog(ctx context.Context, id primitive.ObjectID) error {
	for i, blog := range r.blogs {
		if blog.ID == id {
			r.blogs = append(r.blogs[:i], r.blogs[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeBlogRepo) FindPublished(ctx context.Context, filter repositories.BlogFilter, skip, limit int64) ([]models.Blog, error) {
	matched := r.published(filter)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})
	return page(matched, skip, limit), nil
}

func (r *fakeBlogRepo) CountPublished(ctx context.Context, filter repositories.BlogFilter) (int64, error) {
	return int64(len(r.published(filter))), nil
}

func (r *fakeBlogRepo) FindTrending(ctx context.Context, limit int64) ([]models.Blog, error) {
	matched := r.published(repositories.BlogFilter{})
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Activity.TotalReads != b.Activity.TotalReads {
			return a.Activity.TotalReads > b.Activity.TotalReads
		}
		if a.Activity.TotalLikes != b.Activity.TotalLikes {
			return a.Activity.TotalLikes > b.Activity.TotalLikes
		}
		return a.PublishedAt.After(b.PublishedAt)
	})
	return page(matched, 0, limit), nil
}

func (r *fakeBlogRepo) FindOwn(ctx context.Context, creator primitive.ObjectID, draft bool, searchQuery string) ([]models.Blog, error) {
	var matched []models.Blog
	for _, blog := range r.blogs {
		if blog.Creator != creator || blog.Draft != draft {
			continue
		}
		if searchQuery != "" && !strings.Contains(strings.ToLower(blog.Title), strings.ToLower(searchQuery)) {
			continue
		}
		matched = append(matched, *blog)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})
	return matched, nil
}

func (r *fakeBlogRepo) IncrementReads(ctx context.Context, blogID string, by int) (*models.Blog, error) {
	for _, blog := range r.blogs {
		if blog.BlogID == blogID {
			blog.Activity.TotalReads += by
			b := *blog
			return &b, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeBlogRepo) ApplyLikeDelta(ctx context.Context, id primitive.ObjectID, delta int) (*models.Blog, error) {
	blog, err := r.find(id)
	if err != nil {
		return nil, err
	}
	blog.Activity.TotalLikes += delta
	b := *blog
	return &b, nil
}

func (r *fakeBlogRepo) AddComment(ctx context.Context, id, commentID primitive.ObjectID, parentDelta int) (*models.Blog, error) {
	blog, err := r.find(id)
	if err != nil {
		return nil, err
	}
	blog.Comments = append(blog.Comments, commentID)
	blog.Activity.TotalComments++
	blog.Activity.TotalParentComments += parentDelta
	b := *blog
	return &b, nil
}

func (r *fakeBlogRepo) CreatorsByTag(ctx context.Context, tag string) ([]models.UserSummary, error) {
	seen := make(map[primitive.ObjectID]bool)
	var users []models.UserSummary
	for _, blog := range r.blogs {
		if blog.Draft || !hasTag(blog.Tags, tag) || seen[blog.Creator] {
			continue
		}
		seen[blog.Creator] = true
		if user, err := r.users.find(blog.Creator); err == nil {
			users = append(users, *user.Summary())
		}
	}
	return users, nil
}

func (r *fakeBlogRepo) find(id primitive.ObjectID) (*models.Blog, error) {
	for _, blog := range r.blogs {
		if blog.ID == id {
			return blog, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeBlogRepo) published(filter repositories.BlogFilter) []models.Blog {
	var matched []models.Blog
	for _, blog := range r.blogs {
		if blog.Draft {
			continue
		}
		if filter.Tag != "" && !hasTag(blog.Tags, filter.Tag) {
			continue
		}
		if filter.Creator != nil && blog.Creator != *filter.Creator {
			continue
		}
		matched = append(matched, *blog)
	}
	return matched
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func page(blogs []models.Blog, skip, limit int64) []models.Blog {
	if skip >= int64(len(blogs)) {
		return nil
	}
	blogs = blogs[skip:]
	if limit < int64(len(blogs)) {
		blogs = blogs[:limit]
	}
	return blogs
}

type fakeCommentRepo struct {
	comments []*models.Comment
}

func (r *fakeCommentRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CommentedAt = time.Now()
	if comment.Children == nil {
		comment.Children = []primitive.ObjectID{}
	}
	r.comments = append(r.comments, comment)
	return nil
}

func (r *fakeCommentRepo) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	for _, comment := range r.comments {
		if comment.ID == id {
			c := *comment
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeCommentRepo) GetCommentsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Comment, error) {
	comments := make(map[primitive.ObjectID]models.Comment, len(ids))
	for _, id := range ids {
		for _, comment := range r.comments {
			if comment.ID == id {
				comments[id] = *comment
			}
		}
	}
	return comments, nil
}

func (r *fakeCommentRepo) AddChild(ctx context.Context, parentID, childID primitive.ObjectID) (*models.Comment, error) {
	for _, comment := range r.comments {
		if comment.ID == parentID {
			comment.Children = append(comment.Children, childID)
			c := *comment
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeCommentRepo) FindParentComments(ctx context.Context, blogID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	var matched []models.Comment
	for _, comment := range r.comments {
		if comment.BlogID == blogID && !comment.IsReply {
			matched = append(matched, *comment)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CommentedAt.After(matched[j].CommentedAt)
	})
	if skip >= int64(len(matched)) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit < int64(len(matched)) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeCommentRepo) FindReplies(ctx context.Context, blogID primitive.ObjectID) ([]models.Comment, error) {
	var matched []models.Comment
	for _, comment := range r.comments {
		if comment.BlogID == blogID && comment.IsReply {
			matched = append(matched, *comment)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CommentedAt.Before(matched[j].CommentedAt)
	})
	return matched, nil
}

func (r *fakeCommentRepo) DeleteCommentsByBlog(ctx context.Context, blogID primitive.ObjectID) error {
	kept := r.comments[:0]
	for _, comment := range r.comments {
		if comment.BlogID != blogID {
			kept = append(kept, comment)
		}
	}
	r.comments = kept
	return nil
}

type fakeNotificationRepo struct {
	notifications []*models.Notification
}

func (r *fakeNotificationRepo) CreateNotification(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) FindLike(ctx context.Context, userID, blogID primitive.ObjectID) (*models.Notification, error) {
	for _, n := range r.notifications {
		if n.Type == models.NotificationLike && n.User == userID && n.Blog == blogID {
			found := *n
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeNotificationRepo) DeleteLike(ctx context.Context, userID, blogID primitive.ObjectID) error {
	for i, n := range r.notifications {
		if n.Type == models.NotificationLike && n.User == userID && n.Blog == blogID {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeNotificationRepo) DeleteNotificationsByBlog(ctx context.Context, blogID primitive.ObjectID) error {
	kept := r.notifications[:0]
	for _, n := range r.notifications {
		if n.Blog != blogID {
			kept = append(kept, n)
		}
	}
	r.notifications = kept
	return nil
}

func (r *fakeNotificationRepo) HasUnseen(ctx context.Context, recipient primitive.ObjectID) (bool, error) {
	for _, n := range r.notifications {
		if n.NotificationFor == recipient && !n.Seen && n.User != recipient {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) FindNotifications(ctx context.Context, recipient primitive.ObjectID, filter string, skip, limit int64) ([]models.Notification, error) {
	matched := r.feed(recipient, filter)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if skip >= int64(len(matched)) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit < int64(len(matched)) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeNotificationRepo) CountNotifications(ctx context.Context, recipient primitive.ObjectID, filter string) (int64, error) {
	return int64(len(r.feed(recipient, filter))), nil
}

func (r *fakeNotificationRepo) MarkSeen(ctx context.Context, ids []primitive.ObjectID) error {
	for _, id := range ids {
		for _, n := range r.notifications {
			if n.ID == id {
				n.Seen = true
			}
		}
	}
	return nil
}

func (r *fakeNotificationRepo) feed(recipient primitive.ObjectID, filter string) []models.Notification {
	var matched []models.Notification
	for _, n := range r.notifications {
		if n.NotificationFor != recipient || n.User == recipient {
			continue
		}
		if filter != "" && filter != "all" && n.Type != filter {
			continue
		}
		matched = append(matched, *n)
	}
	return matched
}

// newTestContext builds an echo context with the request validator installed
// and an optional JSON body.
func newTestContext(t *testing.T, method, target string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = validators.NewValidator()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asUser injects the JWT claims the auth middleware would have set.
func asUser(c echo.Context, user *models.User) {
	c.Set("user", &models.JwtCustomClaims{
		UserID: user.ID.Hex(),
		Email:  user.PersonalInfo.Email,
	})
}

// httpError asserts that the handler returned an *echo.HTTPError and
// hands it back for code/message assertions.
func httpError(t *testing.T, err error) *echo.HTTPError {
	t.Helper()
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	return he
}

// decodeBody unmarshals the recorded JSON response into out.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// seedUser inserts a ready-made user into the fake repository.
func seedUser(t *testing.T, repo *fakeUserRepo, fullName, email, username string) *models.User {
	t.Helper()
	user := &models.User{
		PersonalInfo: models.PersonalInfo{
			FullName: fullName,
			Email:    email,
			Username: username,
		},
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}
