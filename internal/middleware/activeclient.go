package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"agency-portal/internal/model"
	"agency-portal/internal/tenancy"
	"agency-portal/pkg/database"
	"agency-portal/pkg/logger"
	"agency-portal/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ActiveClientHeader is the out-of-band channel through which employees and
// admins name the tenant a request operates on. Tenant scope is never taken
// from a resource payload.
const ActiveClientHeader = "X-Active-Client"

// RequireActiveClient resolves the tenant scope for the request and stores it
// in the context as active_client_id. It runs after RequireRole and is
// re-evaluated on every request.
func RequireActiveClient(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		profile, ok := c.Get("profile").(*model.Profile)
		if !ok {
			log.Error("Active-client resolution reached without a profile in context")
			prometheus.RecordAuthError("missing_profile")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		var override *uint
		if raw := c.Request().Header.Get(ActiveClientHeader); raw != "" {
			id64, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				log.Warn("Unparseable active-client header", zap.String("value", raw))
				prometheus.RecordAccessDenied("bad_active_client_header")
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + ActiveClientHeader + " header"})
			}
			id := uint(id64)
			override = &id
		}

		clientID, err := tenancy.ResolveActiveClient(database.GetDB(), profile, override)
		if err != nil {
			switch {
			case errors.Is(err, tenancy.ErrActiveClientRequired):
				log.Warn("Employee request without active-client context", zap.Uint("user_id", profile.UserID))
				prometheus.RecordAccessDenied("active_client_missing")
				return c.JSON(http.StatusBadRequest, echo.Map{"error": tenancy.ErrActiveClientRequired.Error()})
			case errors.Is(err, tenancy.ErrNotAssociated):
				log.Warn("Active-client override outside caller's association set",
					zap.Uint("user_id", profile.UserID),
					zap.Uint("client_id", *override))
				prometheus.RecordAccessDenied("client_not_associated")
				return c.JSON(http.StatusForbidden, echo.Map{"error": tenancy.ErrNotAssociated.Error()})
			case errors.Is(err, tenancy.ErrClientAssociationMissing):
				log.Error("Client-role profile has no client association", zap.Uint("user_id", profile.UserID))
				prometheus.RecordIntegrityError("client_without_client_id")
				return c.JSON(http.StatusForbidden, echo.Map{"error": tenancy.ErrClientAssociationMissing.Error()})
			default:
				log.Error("Active-client resolution failed", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve client context"})
			}
		}

		if profile.Role == model.RoleClient && override != nil && *override != clientID {
			log.Warn("Ignoring active-client override from client-role user",
				zap.Uint("user_id", profile.UserID),
				zap.Uint("override", *override),
				zap.Uint("resolved", clientID))
		}

		c.Set("active_client_id", clientID)
		c.Set("logger", log.With(zap.Uint("client_id", clientID)))

		return next(c)
	}
}
