package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"agency-portal/internal/model"
	"agency-portal/internal/tenancy"
	"agency-portal/pkg/database"
	"agency-portal/pkg/logger"
	"agency-portal/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateUser provisions an account plus profile in one transaction. Client
// accounts must name their client; employee and admin accounts must not.
func CreateUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("user", "create")

	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Role      string `json:"role"`
		ClientID  *uint  `json:"client_id,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse user creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	role, err := model.ParseRole(req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	// The client-profile invariant is enforced at provisioning time, not
	// just checked at the gate.
	switch role {
	case model.RoleClient:
		if req.ClientID == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id is required for client-role users"})
		}
	case model.RoleEmployee, model.RoleAdmin:
		if req.ClientID != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id is only valid for client-role users"})
		}
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.User
	if result := database.GetDB().Where("email = ?", req.Email).First(&existing); result.Error == nil {
		log.Warn("User already exists", zap.String("email", req.Email))
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
	}

	user := model.User{Email: req.Email, Password: string(hashed)}
	profile := model.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		ClientID:  req.ClientID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&user); result.Error != nil {
			return result.Error
		}
		profile.UserID = user.ID
		if result := tx.Create(&profile); result.Error != nil {
			return result.Error
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to provision user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
	}

	log.Info("User provisioned",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("role", role.String()))
	return c.JSON(http.StatusCreated, echo.Map{
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
		},
		"profile": profile,
	})
}

// ListUsers returns all profiles with their account emails
func ListUsers(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("user", "list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var profiles []model.Profile
	if err := database.GetDB().Preload("User").Find(&profiles).Error; err != nil {
		log.Error("Failed to list users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve users"})
	}

	return c.JSON(http.StatusOK, profiles)
}

// GetUser returns one user's profile with their client associations
func GetUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("user", "get")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var profile model.Profile
	if result := database.GetDB().Preload("User").Where("user_id = ?", uint(id)).First(&profile); result.Error != nil {
		log.Warn("User not found", zap.Uint64("user_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	var associations []model.UserClient
	if err := database.GetDB().Where("user_id = ?", uint(id)).Find(&associations).Error; err != nil {
		log.Error("Failed to load associations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve user"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"profile":      profile,
		"associations": associations,
	})
}

// UpdateUserRole changes a user's role, keeping the client-profile invariant
// intact in both directions.
func UpdateUserRole(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("user", "update_role")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}
	userID := uint(id)

	var req struct {
		Role     string `json:"role"`
		ClientID *uint  `json:"client_id,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse role update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	role, err := model.ParseRole(req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	updates := map[string]interface{}{"role": role}
	switch role {
	case model.RoleClient:
		if req.ClientID == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id is required for client-role users"})
		}
		updates["client_id"] = *req.ClientID
	case model.RoleEmployee, model.RoleAdmin:
		// Pinned client id makes no sense outside the client role
		updates["client_id"] = nil
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var profile model.Profile
	if result := database.GetDB().Where("user_id = ?", userID).First(&profile); result.Error != nil {
		log.Warn("User not found", zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	if err := database.GetDB().Model(&profile).Updates(updates).Error; err != nil {
		log.Error("Failed to update role", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "role update failed"})
	}

	log.Info("User role updated",
		zap.Uint("user_id", userID),
		zap.String("role", role.String()))
	return c.JSON(http.StatusOK, profile)
}

// SyncUserClients reconciles a user's client associations to the supplied
// set. The reconciliation is all-or-nothing; a partial failure leaves the
// association set unchanged.
func SyncUserClients(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.AssociationSyncCounter.Inc()

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}
	userID := uint(id)

	var req struct {
		ClientIDs       []uint `json:"client_ids"`
		PrimaryClientID *uint  `json:"primary_client_id,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse association sync request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var profile model.Profile
	if result := database.GetDB().Where("user_id = ?", userID).First(&profile); result.Error != nil {
		log.Warn("User not found", zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	// Client-role users are pinned to one tenant through their profile, not
	// through the association table.
	if profile.Role == model.RoleClient {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client-role users cannot hold client associations"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result, err := tenancy.SyncClientAssociations(database.GetDB(), userID, req.ClientIDs, req.PrimaryClientID)
	if err != nil {
		if errors.Is(err, tenancy.ErrPrimaryNotMember) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		log.Error("Association sync failed", zap.Uint("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "association sync failed"})
	}

	log.Info("Client associations reconciled",
		zap.Uint("user_id", userID),
		zap.Uints("added", result.Added),
		zap.Uints("removed", result.Removed))
	return c.JSON(http.StatusOK, result)
}
