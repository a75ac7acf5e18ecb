package handlers

import (
	"net/http"
	"testing"

	"github.com/JoyKMondal/Mern-Blog-App/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGetUserProfile(t *testing.T) {
	userRepo := &fakeUserRepo{}
	seedUser(t, userRepo, "Test User", "test@example.com", "test")
	handler := NewUserHandler(userRepo)

	c, rec := newTestContext(t, http.MethodPost, "/user-profile", models.UserProfileRequest{Username: "test"})
	require.NoError(t, handler.GetUserProfile(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.User
	decodeBody(t, rec, &resp)
	assert.Equal(t, "test", resp.PersonalInfo.Username)
	assert.NotContains(t, rec.Body.String(), `"password"`, "the password hash never leaves the server")

	c, _ = newTestContext(t, http.MethodPost, "/user-profile", models.UserProfileRequest{Username: "ghost"})
	he := httpError(t, handler.GetUserProfile(c))
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestGetUserByID(t *testing.T) {
	userRepo := &fakeUserRepo{}
	user := seedUser(t, userRepo, "Test User", "test@example.com", "test")
	handler := NewUserHandler(userRepo)

	c, rec := newTestContext(t, http.MethodGet, "/"+user.ID.Hex(), nil)
	c.SetParamNames("uid")
	c.SetParamValues(user.ID.Hex())
	require.NoError(t, handler.GetUserByID(c))

	var resp models.User
	decodeBody(t, rec, &resp)
	assert.Equal(t, user.ID, resp.ID)
}

func TestUpdateProfileImage(t *testing.T) {
	userRepo := &fakeUserRepo{}
	user := seedUser(t, userRepo, "Test User", "test@example.com", "test")
	handler := NewUserHandler(userRepo)

	c, rec := newTestContext(t, http.MethodPost, "/update-profile-image", models.UpdateProfileImageRequest{
		URL: "https://cdn.example.com/avatar.png",
	})
	asUser(c, user)
	require.NoError(t, handler.UpdateProfileImage(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://cdn.example.com/avatar.png", user.PersonalInfo.ProfileImage)
}

func TestChangePassword(t *testing.T) {
	newEnv := func(t *testing.T) (*UserHandler, *models.User) {
		userRepo := &fakeUserRepo{}
		user := seedUser(t, userRepo, "Test User", "test@example.com", "test")
		hash, err := bcrypt.GenerateFromPassword([]byte("oldpassword"), bcrypt.DefaultCost)
		require.NoError(t, err)
		user.PersonalInfo.Password = string(hash)
		return NewUserHandler(userRepo), user
	}

	t.Run("success", func(t *testing.T) {
		handler, user := newEnv(t)
		c, rec := newTestContext(t, http.MethodPatch, "/change-password", models.ChangePasswordRequest{
			CurrentPassword: "oldpassword",
			NewPassword:     "newpassword",
		})
		asUser(c, user)
		require.NoError(t, handler.ChangePassword(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PersonalInfo.Password), []byte("newpassword")))
	})

	t.Run("wrong current password", func(t *testing.T) {
		handler, user := newEnv(t)
		c, _ := newTestContext(t, http.MethodPatch, "/change-password", models.ChangePasswordRequest{
			CurrentPassword: "wrongpassword",
			NewPassword:     "newpassword",
		})
		asUser(c, user)
		he := httpError(t, handler.ChangePassword(c))
		assert.Equal(t, http.StatusForbidden, he.Code)
	})

	t.Run("google account", func(t *testing.T) {
		handler, user := newEnv(t)
		user.GoogleAuth = true
		c, _ := newTestContext(t, http.MethodPatch, "/change-password", models.ChangePasswordRequest{
			CurrentPassword: "oldpassword",
			NewPassword:     "newpassword",
		})
		asUser(c, user)
		he := httpError(t, handler.ChangePassword(c))
		assert.Equal(t, http.StatusForbidden, he.Code)
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		userRepo := &fakeUserRepo{}
		user := seedUser(t, userRepo, "Test User", "test@example.com", "test")
		handler := NewUserHandler(userRepo)

		c, rec := newTestContext(t, http.MethodPatch, "/update-profile", models.UpdateProfileRequest{
			Username:    "renamed",
			Bio:         "Hello there",
			SocialLinks: map[string]string{"github": "https://github.com/renamed"},
		})
		asUser(c, user)
		require.NoError(t, handler.UpdateProfile(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "renamed", user.PersonalInfo.Username)
		assert.Equal(t, "Hello there", user.PersonalInfo.Bio)
		assert.Equal(t, "https://github.com/renamed", user.SocialLinks["github"])
	})

	t.Run("username taken", func(t *testing.T) {
		userRepo := &fakeUserRepo{}
		user := seedUser(t, userRepo, "Test User", "test@example.com", "test")
		seedUser(t, userRepo, "Other User", "other@example.com", "taken")
		handler := NewUserHandler(userRepo)

		c, _ := newTestContext(t, http.MethodPatch, "/update-profile", models.UpdateProfileRequest{
			Username: "taken",
		})
		asUser(c, user)
		he := httpError(t, handler.UpdateProfile(c))
		assert.Equal(t, http.StatusConflict, he.Code)
		assert.Equal(t, "test", user.PersonalInfo.Username)
	})

	t.Run("keeping own username is allowed", func(t *testing.T) {
		userRepo := &fakeUserRepo{}
		user := seedUser(t, userRepo, "Test User", "test@example.com", "test")
		handler := NewUserHandler(userRepo)

		c, rec := newTestContext(t, http.MethodPatch, "/update-profile", models.UpdateProfileRequest{
			Username: "test",
			Bio:      "Just a bio change",
		})
		asUser(c, user)
		require.NoError(t, handler.UpdateProfile(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Just a bio change", user.PersonalInfo.Bio)
	})
}

func TestAuthorize(t *testing.T) {
	owner := seedUser(t, &fakeUserRepo{}, "Owner", "owner@example.com", "owner")

	assert.NoError(t, authorize(owner.ID, owner.ID))

	other := seedUser(t, &fakeUserRepo{}, "Other", "other@example.com", "other")
	he := httpError(t, authorize(other.ID, owner.ID))
	assert.Equal(t, http.StatusForbidden, he.Code)
}
