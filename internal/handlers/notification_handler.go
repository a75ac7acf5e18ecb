package handlers

import (
	"net/http"

	"github.com/JoyKMondal/Mern-Blog-App/internal/models"
	"github.com/JoyKMondal/Mern-Blog-App/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// notificationPageSize is the fixed number of notifications per feed page
const notificationPageSize = 10

// NotificationHandler serves the caller's notification feed
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	blogRepository         repositories.BlogRepository
	commentRepository      repositories.CommentRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationRepo repositories.NotificationRepository, blogRepo repositories.BlogRepository, commentRepo repositories.CommentRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notificationRepo,
		blogRepository:         blogRepo,
		commentRepository:      commentRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/is-new-notification", h.NewNotificationExists)
	g.POST("/get-notifications", h.GetNotifications)
	g.POST("/count-notifications", h.CountNotifications)
}

// NewNotificationExists reports whether the caller has unseen notifications
func (h *NotificationHandler) NewNotificationExists(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	hasUnseen, err := h.notificationRepository.HasUnseen(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"new_notification_available": hasUnseen})
}

// GetNotifications returns a page of the caller's notifications with the
// referenced blog, actor and comments resolved, then marks the returned
// page as seen.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.NotificationsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if req.Page < 1 {
		req.Page = 1
	}

	// deletedDocCount compensates for items the client removed from pages
	// it already loaded, keeping the skip window aligned.
	skip := (req.Page-1)*notificationPageSize - req.DeletedDocCount
	if skip < 0 {
		skip = 0
	}

	ctx := c.Request().Context()

	notifications, err := h.notificationRepository.FindNotifications(ctx, userID, req.Filter, skip, notificationPageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	responses, err := h.resolveReferences(c, notifications)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ids := make([]primitive.ObjectID, 0, len(notifications))
	for _, notification := range notifications {
		ids = append(ids, notification.ID)
	}
	if err := h.notificationRepository.MarkSeen(ctx, ids); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"notifications": responses})
}

// CountNotifications counts the caller's notifications per filter
func (h *NotificationHandler) CountNotifications(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.CountNotificationsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	total, err := h.notificationRepository.CountNotifications(c.Request().Context(), userID, req.Filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"totalDocs": total})
}

// resolveReferences batch-loads the blogs, actors and comments a page of
// notifications points at and builds the display shapes
func (h *NotificationHandler) resolveReferences(c echo.Context, notifications []models.Notification) ([]models.NotificationResponse, error) {
	ctx := c.Request().Context()

	blogIDs := make([]primitive.ObjectID, 0, len(notifications))
	actorIDs := make([]primitive.ObjectID, 0, len(notifications))
	commentIDs := make([]primitive.ObjectID, 0, len(notifications))
	for _, n := range notifications {
		blogIDs = append(blogIDs, n.Blog)
		actorIDs = append(actorIDs, n.User)
		if n.Comment != nil {
			commentIDs = append(commentIDs, *n.Comment)
		}
		if n.RepliedOnComment != nil {
			commentIDs = append(commentIDs, *n.RepliedOnComment)
		}
	}

	blogs, err := h.blogRepository.GetBlogsByIDs(ctx, blogIDs)
	if err != nil {
		return nil, err
	}
	actors, err := h.userRepository.GetUsersByIDs(ctx, actorIDs)
	if err != nil {
		return nil, err
	}
	comments, err := h.commentRepository.GetCommentsByIDs(ctx, commentIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]models.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response := models.NotificationResponse{Notification: n}
		if blog, ok := blogs[n.Blog]; ok {
			response.Blog = &models.BlogSummary{BlogID: blog.BlogID, Title: blog.Title}
		}
		if actor, ok := actors[n.User]; ok {
			response.User = actor.Summary()
		}
		if n.Comment != nil {
			if comment, ok := comments[*n.Comment]; ok {
				response.Comment = &models.CommentSummary{Comment: comment.Comment}
			}
		}
		if n.RepliedOnComment != nil {
			if comment, ok := comments[*n.RepliedOnComment]; ok {
				response.RepliedOnComment = &models.CommentSummary{Comment: comment.Comment}
			}
		}
		responses = append(responses, response)
	}
	return responses, nil
}
