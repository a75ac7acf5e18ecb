package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/JoyKMondal/Mern-Blog-App/internal/models"
	"github.com/JoyKMondal/Mern-Blog-App/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles signup, password login and Google sign-in
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   *auth.Client
	jwtSecret      string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuthClient *auth.Client, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuthClient,
		jwtSecret:      jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.POST("/google-auth", h.GoogleAuth)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User exists already, please login instead.")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	username, err := h.deriveUsername(ctx, req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user := &models.User{
		PersonalInfo: models.PersonalInfo{
			FullName:     req.FullName,
			Email:        req.Email,
			Password:     string(hashedPassword),
			Username:     username,
			ProfileImage: defaultProfileImage(username),
		},
	}

	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp, err := h.authResponse(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login handles password authentication.
// Accounts created through Google sign-in have no password and are rejected.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Email not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if user.GoogleAuth {
		return echo.NewHTTPError(http.StatusForbidden, "Account was created using Google. Please log in with Google.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PersonalInfo.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect password")
	}

	resp, err := h.authResponse(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// GoogleAuth verifies a Firebase ID token from Google sign-in and issues a
// local JWT, creating the account on first login.
func (h *AuthHandler) GoogleAuth(c echo.Context) error {
	var req models.GoogleAuthRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.firebaseAuth.VerifyIDToken(context.Background(), req.AccessToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Failed to authenticate with Google. Try again with another account.")
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)
	if email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Google account has no email")
	}

	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		username, err := h.deriveUsername(ctx, email)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		if picture == "" {
			picture = defaultProfileImage(username)
		}

		user = &models.User{
			PersonalInfo: models.PersonalInfo{
				FullName:     name,
				Email:        email,
				Username:     username,
				ProfileImage: picture,
			},
			GoogleAuth: true,
		}
		if err := h.userRepository.CreateUser(ctx, user); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else if !user.GoogleAuth {
		return echo.NewHTTPError(http.StatusForbidden, "This email was signed up without Google. Please log in with password to access the account.")
	}

	resp, err := h.authResponse(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// deriveUsername takes the email local part and appends a random fragment
// when the name is already taken.
func (h *AuthHandler) deriveUsername(ctx context.Context, email string) (string, error) {
	username := strings.Split(email, "@")[0]

	taken, err := h.userRepository.UsernameTaken(ctx, username)
	if err != nil {
		return "", err
	}
	if taken {
		username = username + "-" + uuid.NewString()[:8]
	}
	return username, nil
}

func defaultProfileImage(username string) string {
	return fmt.Sprintf("https://api.dicebear.com/6.x/adventurer/svg?seed=%s", username)
}

func (h *AuthHandler) authResponse(user *models.User) (*models.AuthResponse, error) {
	accessToken, err := h.generateJWT(user)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return &models.AuthResponse{
		AccessToken:  accessToken,
		Username:     user.PersonalInfo.Username,
		FullName:     user.PersonalInfo.FullName,
		ProfileImage: user.PersonalInfo.ProfileImage,
	}, nil
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID.Hex(),
		Email:  user.PersonalInfo.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
