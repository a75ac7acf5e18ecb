package handlers

import (
	"errors"
	"net/http"

	"github.com/JoyKMondal/Mern-Blog-App/internal/models"
	"github.com/JoyKMondal/Mern-Blog-App/internal/repositories"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterPublicRoutes registers the profile routes that need no session
func (h *UserHandler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/user-profile", h.GetUserProfile)
	g.GET("/:uid", h.GetUserByID)
}

// RegisterProfileRoutes registers the authenticated profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.POST("/update-profile-image", h.UpdateProfileImage)
	g.PATCH("/change-password", h.ChangePassword)
	g.PATCH("/update-profile", h.UpdateProfile)
}

// GetUserProfile retrieves a public profile by username
func (h *UserHandler) GetUserProfile(c echo.Context) error {
	var req models.UserProfileRequest
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

	return c.JSON(http.StatusOK, user)
}

// GetUserByID retrieves a user by their hex ObjectID
func (h *UserHandler) GetUserByID(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), c.Param("uid"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateProfileImage sets a new profile image URL for the caller
func (h *UserHandler) UpdateProfileImage(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.userRepository.UpdateProfileImage(c.Request().Context(), userID, req.URL); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"profileImage": req.URL})
}

// ChangePassword swaps the caller's password after verifying the current one
func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, claims, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByEmail(ctx, claims.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	if user.GoogleAuth {
		return echo.NewHTTPError(http.StatusForbidden, "You can't change the password of an account created with Google.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PersonalInfo.Password), []byte(req.CurrentPassword)); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "Incorrect current password")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	if err := h.userRepository.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully."})
}

// UpdateProfile edits the caller's username, bio and social links
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, claims, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByEmail(ctx, claims.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	if req.Username != user.PersonalInfo.Username {
		taken, err := h.userRepository.UsernameTaken(ctx, req.Username)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if taken {
			return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
		}
	}

	if err := h.userRepository.UpdateProfile(ctx, userID, req.Username, req.Bio, req.SocialLinks); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"username": req.Username})
}
