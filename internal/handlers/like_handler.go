package handlers

import (
	"errors"
	"net/http"

	"github.com/JoyKMondal/Mern-Blog-App/internal/models"
	"github.com/JoyKMondal/Mern-Blog-App/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeHandler handles like toggling. The like state of (user, blog) is the
// existence of a like notification, not a stored boolean; the blog's
// total_likes counter is adjusted alongside each transition without a
// transaction, so a concurrent double toggle can race.
type LikeHandler struct {
	blogRepository         repositories.BlogRepository
	notificationRepository repositories.NotificationRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(blogRepo repositories.BlogRepository, notificationRepo repositories.NotificationRepository) *LikeHandler {
	return &LikeHandler{
		blogRepository:         blogRepo,
		notificationRepository: notificationRepo,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/toggle-like-blog", h.ToggleLike)
	g.GET("/is-liked/:blogId", h.CheckLike)
}

// ToggleLike flips the caller's like state for a blog
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.ToggleLikeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	blogID, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid blog ID format")
	}

	ctx := c.Request().Context()

	blog, err := h.blogRepository.GetBlogByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Blog not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	_, err = h.notificationRepository.FindLike(ctx, userID, blogID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	liked := err == nil

	if liked {
		updatedBlog, err := h.blogRepository.ApplyLikeDelta(ctx, blogID, -1)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		if err := h.notificationRepository.DeleteLike(ctx, userID, blogID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		return c.JSON(http.StatusOK, echo.Map{
			"blog":        updatedBlog,
			"message":     "Blog unliked successfully.",
			"likedByUser": false,
		})
	}

	updatedBlog, err := h.blogRepository.ApplyLikeDelta(ctx, blogID, 1)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	notification := &models.Notification{
		Type:            models.NotificationLike,
		Blog:            blogID,
		NotificationFor: blog.Creator,
		User:            userID,
	}
	if err := h.notificationRepository.CreateNotification(ctx, notification); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"blog":        updatedBlog,
		"message":     "Blog liked successfully.",
		"likedByUser": true,
	})
}

// CheckLike reports whether the caller has liked a blog
func (h *LikeHandler) CheckLike(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	blogID, err := primitive.ObjectIDFromHex(c.Param("blogId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid blog ID format")
	}

	_, err = h.notificationRepository.FindLike(c.Request().Context(), userID, blogID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"likedByUser": err == nil})
}
