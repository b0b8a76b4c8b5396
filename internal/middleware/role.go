package middleware

import (
	"net/http"

	"agency-portal/internal/model"
	"agency-portal/internal/tenancy"
	"agency-portal/pkg/database"
	"agency-portal/pkg/logger"
	"agency-portal/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequireRole loads the caller's profile and enforces a per-operation role
// allow-list. It runs after Auth and before any business logic; on success
// the loaded profile is stored in the context for the active-client resolver
// and handlers.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			userID, ok := c.Get("user_id").(uint)
			if !ok {
				log.Error("Failed to get user ID from context")
				prometheus.RecordAuthError("missing_principal")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			var profile model.Profile
			if err := database.GetDB().Where("user_id = ?", userID).First(&profile).Error; err != nil {
				log.Warn("No profile for authenticated user", zap.Uint("user_id", userID))
				prometheus.RecordAccessDenied("profile_not_found")
				return c.JSON(http.StatusForbidden, echo.Map{"error": tenancy.ErrProfileNotFound.Error()})
			}

			// Exhaustive over the role enum: a stored value outside it is a
			// provisioning defect and never passes the gate.
			switch profile.Role {
			case model.RoleClient:
				if profile.ClientID == nil {
					log.Error("Client-role profile has no client association",
						zap.Uint("user_id", userID),
						zap.Uint("profile_id", profile.ID))
					prometheus.RecordIntegrityError("client_without_client_id")
					return c.JSON(http.StatusForbidden, echo.Map{"error": tenancy.ErrClientAssociationMissing.Error()})
				}
			case model.RoleEmployee, model.RoleAdmin:
			default:
				log.Error("Profile carries unknown role",
					zap.Uint("user_id", userID),
					zap.String("role", profile.Role.String()))
				prometheus.RecordIntegrityError("unknown_role")
				return c.JSON(http.StatusForbidden, echo.Map{"error": tenancy.ErrInsufficientRole.Error()})
			}

			if !profile.Role.In(roles...) {
				log.Warn("Role outside operation allow-list",
					zap.Uint("user_id", userID),
					zap.String("role", profile.Role.String()))
				prometheus.RecordAccessDenied("insufficient_role")
				return c.JSON(http.StatusForbidden, echo.Map{"error": tenancy.ErrInsufficientRole.Error()})
			}

			c.Set("profile", &profile)
			c.Set("logger", log.With(zap.String("role", profile.Role.String())))

			return next(c)
		}
	}
}
