package handlers

import (
	"net/http"

	"github.com/JoyKMondal/Mern-Blog-App/internal/models"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUser extracts the authenticated user's claims and ObjectID from the
// JWT middleware's context entry.
func currentUser(c echo.Context) (primitive.ObjectID, *models.JwtCustomClaims, error) {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return primitive.NilObjectID, nil, echo.NewHTTPError(http.StatusUnauthorized, "Missing authentication")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid authentication")
	}
	return id, claims, nil
}

// authorize is the single ownership predicate used by every mutating
// operation: only the resource owner may proceed.
func authorize(actor, owner primitive.ObjectID) error {
	if actor != owner {
		return echo.NewHTTPError(http.StatusForbidden, "You are not allowed to modify this resource.")
	}
	return nil
}
