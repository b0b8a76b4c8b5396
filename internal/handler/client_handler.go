package handler

import (
	"net/http"
	"strconv"
	"time"

	"agency-portal/internal/model"
	"agency-portal/pkg/database"
	"agency-portal/pkg/logger"
	"agency-portal/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClientRequest defines the structure for client creation/update requests
type ClientRequest struct {
	CompanyName   string `json:"company_name"`
	ContactPerson string `json:"contact_person"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	Website       string `json:"website"`
	Industry      string `json:"industry"`
	Domain        string `json:"domain"`
	Active        *bool  `json:"active"`
}

// ListClients returns the clients visible to the caller: a client-role user
// sees only their own organization, employees and admins see the clients they
// are associated with.
func ListClients(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("client", "list")

	profile, ok := currentProfile(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var clients []model.Client

	switch profile.Role {
	case model.RoleClient:
		if err := database.GetDB().Where("id = ?", *profile.ClientID).Find(&clients).Error; err != nil {
			log.Error("Failed to retrieve client", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve clients"})
		}
	case model.RoleEmployee, model.RoleAdmin:
		associated := database.GetDB().Model(&model.UserClient{}).
			Select("client_id").
			Where("user_id = ?", profile.UserID)
		if err := database.GetDB().Where("id IN (?)", associated).Find(&clients).Error; err != nil {
			log.Error("Failed to retrieve associated clients", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve clients"})
		}
	}

	return c.JSON(http.StatusOK, clients)
}

// GetClient retrieves a single client, membership-checked
func GetClient(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("client", "get")

	profile, ok := currentProfile(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Warn("Invalid client ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client ID"})
	}
	clientID := uint(id)

	// Membership before data: a caller outside the client's circle gets 403,
	// not 404, so a probe cannot distinguish tenants.
	switch profile.Role {
	case model.RoleClient:
		if *profile.ClientID != clientID {
			log.Warn("Client-role user requested a foreign client",
				zap.Uint("own_client_id", *profile.ClientID),
				zap.Uint("requested", clientID))
			prometheus.RecordAccessDenied("client_not_associated")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}
	case model.RoleEmployee, model.RoleAdmin:
		var count int64
		database.GetDB().Model(&model.UserClient{}).
			Where("user_id = ? AND client_id = ?", profile.UserID, clientID).
			Count(&count)
		if count == 0 {
			log.Warn("User requested a client outside their association set",
				zap.Uint("user_id", profile.UserID),
				zap.Uint("client_id", clientID))
			prometheus.RecordAccessDenied("client_not_associated")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var client model.Client
	if result := database.GetDB().First(&client, clientID); result.Error != nil {
		log.Warn("Client not found", zap.Uint("client_id", clientID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	}

	return c.JSON(http.StatusOK, client)
}

// CreateClient creates a new client and associates the creator with it
func CreateClient(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("client", "create")

	profile, ok := currentProfile(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse client creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.CompanyName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "company_name is required"})
	}

	client := model.Client{
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Address:       req.Address,
		Website:       req.Website,
		Industry:      req.Industry,
		Domain:        req.Domain,
		Active:        true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&client); result.Error != nil {
			return result.Error
		}
		// The creator administers the new client from day one
		assoc := model.UserClient{UserID: profile.UserID, ClientID: client.ID}
		if result := tx.Create(&assoc); result.Error != nil {
			return result.Error
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to create client", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "client creation failed"})
	}

	log.Info("Client created",
		zap.Uint("client_id", client.ID),
		zap.String("company_name", client.CompanyName),
		zap.Uint("created_by", profile.UserID))
	return c.JSON(http.StatusCreated, client)
}

// UpdateClient edits a client's fields; setting active=false soft-disables it
func UpdateClient(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("client", "update")

	profile, ok := currentProfile(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client ID"})
	}
	clientID := uint(id)

	var count int64
	database.GetDB().Model(&model.UserClient{}).
		Where("user_id = ? AND client_id = ?", profile.UserID, clientID).
		Count(&count)
	if count == 0 {
		log.Warn("User attempted to update a client outside their association set",
			zap.Uint("user_id", profile.UserID),
			zap.Uint("client_id", clientID))
		prometheus.RecordAccessDenied("client_not_associated")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	var client model.Client
	if result := database.GetDB().First(&client, clientID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	}

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse client update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.CompanyName != "" {
		updates["company_name"] = req.CompanyName
	}
	if req.ContactPerson != "" {
		updates["contact_person"] = req.ContactPerson
	}
	if req.ContactNumber != "" {
		updates["contact_number"] = req.ContactNumber
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.Website != "" {
		updates["website"] = req.Website
	}
	if req.Industry != "" {
		updates["industry"] = req.Industry
	}
	if req.Domain != "" {
		updates["domain"] = req.Domain
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&client).Updates(updates).Error; err != nil {
		log.Error("Failed to update client", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "client update failed"})
	}

	log.Info("Client updated", zap.Uint("client_id", client.ID))
	return c.JSON(http.StatusOK, client)
}

// DeleteClient permanently removes a client and its associations. The route
// is gated to admins; employees soft-disable via UpdateClient instead.
func DeleteClient(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("client", "delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client ID"})
	}
	clientID := uint(id)

	defer prometheus.TrackDBOperation("delete")(time.Now())
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if result := tx.Where("client_id = ?", clientID).Delete(&model.UserClient{}); result.Error != nil {
			return result.Error
		}
		if result := tx.Unscoped().Delete(&model.Client{}, clientID); result.Error != nil {
			return result.Error
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to delete client", zap.Uint("client_id", clientID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "client deletion failed"})
	}

	log.Info("Client deleted", zap.Uint("client_id", clientID))
	return c.JSON(http.StatusOK, echo.Map{"message": "client deleted"})
}
