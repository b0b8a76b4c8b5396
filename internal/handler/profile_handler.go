package handler

import (
	"net/http"
	"time"

	"agency-portal/pkg/database"
	"agency-portal/pkg/logger"
	"agency-portal/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// GetProfile returns the caller's own profile
func GetProfile(c echo.Context) error {
	profile, ok := currentProfile(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	email, _ := c.Get("email").(string)
	return c.JSON(http.StatusOK, echo.Map{
		"id":         profile.ID,
		"user_id":    profile.UserID,
		"email":      email,
		"first_name": profile.FirstName,
		"last_name":  profile.LastName,
		"role":       profile.Role,
		"client_id":  profile.ClientID,
		"avatar_url": profile.AvatarURL,
	})
}

// UpdateProfile lets a user edit their own display fields. Role and client
// association are admin-managed and cannot be changed here.
func UpdateProfile(c echo.Context) error {
	log := logger.FromContext(c)

	profile, ok := currentProfile(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		AvatarURL *string `json:"avatar_url"`
	}

	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse profile update", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(profile).Updates(updates).Error; err != nil {
		log.Error("Failed to update profile", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "profile update failed"})
	}

	log.Info("Profile updated", zap.Uint("profile_id", profile.ID))
	return c.JSON(http.StatusOK, profile)
}
