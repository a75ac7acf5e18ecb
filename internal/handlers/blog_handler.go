package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/JoyKMondal/Mern-Blog-App/internal/models"
	"github.com/JoyKMondal/Mern-Blog-App/internal/repositories"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxBlogTags = 10

// BlogHandler handles HTTP requests related to blog posts
type BlogHandler struct {
	blogRepository         repositories.BlogRepository
	userRepository         repositories.UserRepository
	commentRepository      repositories.CommentRepository
	notificationRepository repositories.NotificationRepository
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(blogRepo repositories.BlogRepository, userRepo repositories.UserRepository, commentRepo repositories.CommentRepository, notificationRepo repositories.NotificationRepository) *BlogHandler {
	return &BlogHandler{
		blogRepository:         blogRepo,
		userRepository:         userRepo,
		commentRepository:      commentRepo,
		notificationRepository: notificationRepo,
	}
}

// RegisterPublicRoutes registers the blog routes that need no session
func (h *BlogHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/latest-blogs", h.GetLatestBlogs)
	g.GET("/trending-blogs", h.GetTrendingBlogs)
	g.POST("/search-blogs", h.SearchBlogs)
	g.POST("/search-users", h.SearchUsersByTag)
	g.POST("/user-blogs", h.GetUserBlogs)
	g.POST("/blog-details", h.GetBlogDetails)
}

// RegisterBlogRoutes registers the authenticated blog routes
func (h *BlogHandler) RegisterBlogRoutes(g *echo.Group) {
	g.POST("/create-blog", h.CreateBlog)
	g.POST("/all-blogs", h.GetOwnBlogs)
	g.DELETE("/delete-blog", h.DeleteBlog)
}

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace   = regexp.MustCompile(`\s+`)
	slugDashRuns     = regexp.MustCompile(`-+`)
)

// slugify reduces a title to a URL-safe slug
func slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = strings.TrimSpace(slug)
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	return slugDashRuns.ReplaceAllString(slug, "-")
}

// newBlogID derives the human-readable identifier of a blog:
// slug of the title plus a random unique suffix.
func newBlogID(title string) string {
	return slugify(title) + "-" + uuid.NewString()
}

// CreateBlog creates a new blog or edits an existing one (when an id is
// passed). Publishing a new blog increments the author's total_posts;
// saving a draft does not.
func (h *BlogHandler) CreateBlog(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.CreateBlogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	for i, tag := range req.Tags {
		req.Tags[i] = strings.ToLower(tag)
	}

	if !req.Draft {
		if err := validatePublishable(&req); err != nil {
			return err
		}
	}

	ctx := c.Request().Context()

	if req.ID != "" {
		return h.editBlog(c, ctx, userID, &req)
	}

	blog := &models.Blog{
		BlogID:      newBlogID(req.Title),
		Title:       req.Title,
		Description: req.Description,
		Banner:      req.Banner,
		Content:     req.Content,
		Tags:        req.Tags,
		Draft:       req.Draft,
		Creator:     userID,
	}

	if err := h.blogRepository.CreateBlog(ctx, blog); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	postsDelta := 1
	if req.Draft {
		postsDelta = 0
	}

	if err := h.userRepository.AddBlogRef(ctx, userID, blog.ID, postsDelta); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found!")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user, err := h.userRepository.GetUserByID(ctx, userID.Hex())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Blog created and user updated",
		"blog":    blog,
		"user":    user,
	})
}

func (h *BlogHandler) editBlog(c echo.Context, ctx context.Context, userID primitive.ObjectID, req *models.CreateBlogRequest) error {
	existing, err := h.blogRepository.GetBlogByBlogID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Blog not found!")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := authorize(userID, existing.Creator); err != nil {
		return err
	}

	existing.Title = req.Title
	existing.Description = req.Description
	existing.Banner = req.Banner
	existing.Content = req.Content
	existing.Tags = req.Tags
	existing.Draft = req.Draft

	if err := h.blogRepository.UpdateBlog(ctx, existing); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Blog updated successfully!",
		"blog":    existing,
	})
}

// validatePublishable enforces the required fields of a non-draft submission
func validatePublishable(req *models.CreateBlogRequest) error {
	invalid := req.Title == "" ||
		req.Description == "" || len(req.Description) > 200 ||
		req.Banner == "" ||
		len(req.Content.Blocks) == 0 ||
		len(req.Tags) == 0 || len(req.Tags) > maxBlogTags
	if invalid {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data.")
	}
	return nil
}

// GetLatestBlogs lists published blogs, newest first, paginated
func (h *BlogHandler) GetLatestBlogs(c echo.Context) error {
	return h.listPublished(c, repositories.BlogFilter{})
}

// SearchBlogs lists published blogs carrying a tag, newest first, paginated
func (h *BlogHandler) SearchBlogs(c echo.Context) error {
	var req models.SearchBlogsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	return h.listPublished(c, repositories.BlogFilter{Tag: strings.ToLower(req.Tag)})
}

// GetUserBlogs lists one author's published blogs, newest first, paginated
func (h *BlogHandler) GetUserBlogs(c echo.Context) error {
	var req models.UserBlogsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return h.listPublished(c, repositories.BlogFilter{Creator: &user.ID})
}

func (h *BlogHandler) listPublished(c echo.Context, filter repositories.BlogFilter) error {
	page, limit := paginationParams(c)
	skip := (page - 1) * limit
	ctx := c.Request().Context()

	blogs, err := h.blogRepository.FindPublished(ctx, filter, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	totalBlogs, err := h.blogRepository.CountPublished(ctx, filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if len(blogs) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "No blogs found.")
	}

	withCreators, err := h.attachCreators(ctx, blogs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"blogs":       withCreators,
		"currentPage": page,
		"totalPages":  int64(math.Ceil(float64(totalBlogs) / float64(limit))),
		"totalBlogs":  totalBlogs,
	})
}

// GetTrendingBlogs lists the five most-read published blogs
func (h *BlogHandler) GetTrendingBlogs(c echo.Context) error {
	ctx := c.Request().Context()

	blogs, err := h.blogRepository.FindTrending(ctx, 5)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(blogs) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "No blogs found.")
	}

	withCreators, err := h.attachCreators(ctx, blogs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"blogs": withCreators})
}

// SearchUsersByTag lists the authors who published blogs carrying a tag
func (h *BlogHandler) SearchUsersByTag(c echo.Context) error {
	var req models.SearchBlogsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	users, err := h.blogRepository.CreatorsByTag(c.Request().Context(), strings.ToLower(req.Tag))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(users) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "No users found with matching blogs.")
	}

	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// GetOwnBlogs lists the caller's blogs on the dashboard, split by draft flag
// and optionally filtered by a title search
func (h *BlogHandler) GetOwnBlogs(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.OwnBlogsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	blogs, err := h.blogRepository.FindOwn(c.Request().Context(), userID, req.Draft, req.SearchQuery)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(blogs) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "No blogs found.")
	}

	return c.JSON(http.StatusOK, echo.Map{"blogs": blogs})
}

// GetBlogDetails fetches one blog and counts the view on both the blog and
// its author, unless the read is for the editor (mode "edit").
func (h *BlogHandler) GetBlogDetails(c echo.Context) error {
	var req models.BlogDetailsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	incrementBy := 1
	if req.Mode == "edit" {
		incrementBy = 0
	}

	ctx := c.Request().Context()

	blog, err := h.blogRepository.IncrementReads(ctx, req.BlogID, incrementBy)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Blog not found!")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.userRepository.IncrementTotalReads(ctx, blog.Creator, incrementBy); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	withCreators, err := h.attachCreators(ctx, []models.Blog{*blog})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Blog retrieved and data updated",
		"blog":    withCreators[0],
	})
}

// DeleteBlog removes a blog together with its comments and notifications and
// rolls the author's counters back. The writes are sequential with no
// transaction: a failure partway through is reported without compensation.
func (h *BlogHandler) DeleteBlog(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.DeleteBlogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	blog, err := h.blogRepository.GetBlogByBlogID(ctx, req.BlogID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Blog not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := authorize(userID, blog.Creator); err != nil {
		return err
	}

	if err := h.blogRepository.DeleteBlog(ctx, blog.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.notificationRepository.DeleteNotificationsByBlog(ctx, blog.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.commentRepository.DeleteCommentsByBlog(ctx, blog.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.userRepository.RemoveBlogRef(ctx, userID, blog.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Blog, associated notifications, and user data updated successfully",
	})
}

// attachCreators resolves the creator references of a batch of blogs into
// their public info
func (h *BlogHandler) attachCreators(ctx context.Context, blogs []models.Blog) ([]models.BlogResponse, error) {
	creatorIDs := make([]primitive.ObjectID, 0, len(blogs))
	seen := make(map[primitive.ObjectID]bool, len(blogs))
	for _, blog := range blogs {
		if !seen[blog.Creator] {
			seen[blog.Creator] = true
			creatorIDs = append(creatorIDs, blog.Creator)
		}
	}

	creators, err := h.userRepository.GetUsersByIDs(ctx, creatorIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]models.BlogResponse, 0, len(blogs))
	for _, blog := range blogs {
		response := models.BlogResponse{Blog: blog}
		if creator, ok := creators[blog.Creator]; ok {
			response.Creator = creator.Summary()
		}
		responses = append(responses, response)
	}
	return responses, nil
}

// paginationParams reads the 1-indexed page and page size from the query,
// falling back to the first page of five
func paginationParams(c echo.Context) (page, limit int64) {
	page, _ = strconv.ParseInt(c.QueryParam("page"), 10, 64)
	limit, _ = strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 5
	}
	return page, limit
}
