package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/JoyKMondal/Mern-Blog-App/internal/models"
	"github.com/JoyKMondal/Mern-Blog-App/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// commentPageSize is the fixed number of top-level comments per page
const commentPageSize = 5

// CommentHandler handles comment/reply creation and comment tree reads
type CommentHandler struct {
	commentRepository      repositories.CommentRepository
	blogRepository         repositories.BlogRepository
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, blogRepo repositories.BlogRepository, notificationRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository:      commentRepo,
		blogRepository:         blogRepo,
		notificationRepository: notificationRepo,
		userRepository:         userRepo,
	}
}

// RegisterPublicRoutes registers the comment routes that need no session
func (h *CommentHandler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/get-blog-comments", h.GetBlogComments)
}

// RegisterCommentRoutes registers the authenticated comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comment-blog", h.CommentBlog)
}

// CommentBlog creates a comment or reply, bumps the blog's comment counters
// and fans a notification out to the blog author — or, for a reply, to the
// parent comment's author. The writes run in sequence without a transaction;
// a failure partway through is reported without compensation.
func (h *CommentHandler) CommentBlog(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if req.Comment == "" {
		return echo.NewHTTPError(http.StatusForbidden, "Write something before sending to backend")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	blogID, err := primitive.ObjectIDFromHex(req.BlogID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid blog ID format")
	}
	blogAuthor, err := primitive.ObjectIDFromHex(req.BlogAuthor)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid blog author ID format")
	}

	var parentID *primitive.ObjectID
	if req.ReplyingTo != "" {
		parent, err := primitive.ObjectIDFromHex(req.ReplyingTo)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid parent comment ID format")
		}
		parentID = &parent
	}

	ctx := c.Request().Context()

	comment := &models.Comment{
		BlogID:      blogID,
		BlogAuthor:  blogAuthor,
		Comment:     req.Comment,
		CommentedBy: userID,
		IsReply:     parentID != nil,
		Parent:      parentID,
	}

	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	parentDelta := 1
	if comment.IsReply {
		parentDelta = 0
	}

	if _, err := h.blogRepository.AddComment(ctx, blogID, comment.ID, parentDelta); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Blog not found!")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	notification := &models.Notification{
		Type:            models.NotificationComment,
		Blog:            blogID,
		NotificationFor: blogAuthor,
		User:            userID,
		Comment:         &comment.ID,
	}

	if parentID != nil {
		notification.Type = models.NotificationReply
		notification.RepliedOnComment = parentID

		// The reply notification goes to the parent comment's author,
		// not the blog author.
		parent, err := h.commentRepository.AddChild(ctx, *parentID, comment.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "Parent comment not found!")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		notification.NotificationFor = parent.CommentedBy
	}

	if err := h.notificationRepository.CreateNotification(ctx, notification); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"comment":     comment.Comment,
		"commentedAt": comment.CommentedAt,
		"children":    comment.Children,
		"userId":      userID.Hex(),
		"comment_id":  comment.ID.Hex(),
	})
}

// GetBlogComments returns a page of a blog's top-level comments with their
// replies nested beneath them. Replies of replies are attached from the same
// grouping so a third level renders if the data ever contains one.
func (h *CommentHandler) GetBlogComments(c echo.Context) error {
	var req models.BlogCommentsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	blogID, err := primitive.ObjectIDFromHex(req.BlogID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid blog ID format")
	}

	ctx := c.Request().Context()

	parents, err := h.commentRepository.FindParentComments(ctx, blogID, req.Skip, commentPageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	replies, err := h.commentRepository.FindReplies(ctx, blogID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	commenters, err := h.loadCommenters(ctx, parents, replies)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"comment": assembleCommentTree(parents, replies, commenters),
	})
}

// loadCommenters batch-fetches the authors of every comment in the page
func (h *CommentHandler) loadCommenters(ctx context.Context, parents, replies []models.Comment) (map[primitive.ObjectID]models.User, error) {
	ids := make([]primitive.ObjectID, 0, len(parents)+len(replies))
	seen := make(map[primitive.ObjectID]bool)
	for _, comment := range append(append([]models.Comment{}, parents...), replies...) {
		if !seen[comment.CommentedBy] {
			seen[comment.CommentedBy] = true
			ids = append(ids, comment.CommentedBy)
		}
	}
	return h.userRepository.GetUsersByIDs(ctx, ids)
}

// assembleCommentTree groups replies under their parents and computes the
// depth level of each node: 0 for top-level comments, 1 for their replies,
// 2 for replies to replies.
func assembleCommentTree(parents, replies []models.Comment, commenters map[primitive.ObjectID]models.User) []*models.CommentNode {
	repliesByParent := make(map[primitive.ObjectID][]*models.CommentNode)
	for _, reply := range replies {
		if reply.Parent == nil {
			continue
		}
		node := newCommentNode(reply, commenters, 1)
		repliesByParent[*reply.Parent] = append(repliesByParent[*reply.Parent], node)
	}

	tree := make([]*models.CommentNode, 0, len(parents))
	for _, parent := range parents {
		node := newCommentNode(parent, commenters, 0)
		node.Children = childrenOf(parent.ID, repliesByParent)

		for _, child := range node.Children {
			child.Children = childrenOf(child.ID, repliesByParent)
			for _, grandchild := range child.Children {
				grandchild.ChildrenLevel = 2
			}
		}

		tree = append(tree, node)
	}
	return tree
}

func childrenOf(id primitive.ObjectID, repliesByParent map[primitive.ObjectID][]*models.CommentNode) []*models.CommentNode {
	if children, ok := repliesByParent[id]; ok {
		return children
	}
	return []*models.CommentNode{}
}

func newCommentNode(comment models.Comment, commenters map[primitive.ObjectID]models.User, level int) *models.CommentNode {
	node := &models.CommentNode{
		Comment:       comment,
		Children:      []*models.CommentNode{},
		ChildrenLevel: level,
	}
	if commenter, ok := commenters[comment.CommentedBy]; ok {
		node.CommentedBy = commenter.Summary()
	}
	return node
}
