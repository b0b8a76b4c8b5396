package handler

import (
	"agency-portal/internal/model"

	"github.com/labstack/echo/v4"
)

// activeClientID returns the tenant scope resolved by the middleware chain.
// Every tenant-scoped query must be filtered by this id.
func activeClientID(c echo.Context) (uint, bool) {
	id, ok := c.Get("active_client_id").(uint)
	return id, ok
}

// currentProfile returns the profile loaded by the role gate.
func currentProfile(c echo.Context) (*model.Profile, bool) {
	p, ok := c.Get("profile").(*model.Profile)
	return p, ok
}

// currentUserID returns the authenticated principal's user id.
func currentUserID(c echo.Context) (uint, bool) {
	id, ok := c.Get("user_id").(uint)
	return id, ok
}
