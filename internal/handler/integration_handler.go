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
)

// IntegrationRequest defines the structure for integration creation/update requests
type IntegrationRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	Config   string `json:"config"`
	Enabled  *bool  `json:"enabled,omitempty"`
}

// integrationSummary is the list representation; the API key never leaves
// through list responses.
type integrationSummary struct {
	ID        uint      `json:"id"`
	Provider  string    `json:"provider"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateIntegration connects a provider for the active client
func CreateIntegration(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("integration", "create")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	var req IntegrationRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse integration creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Provider == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provider is required"})
	}

	integration := model.Integration{
		ClientID: clientID,
		Provider: req.Provider,
		APIKey:   req.APIKey,
		Config:   req.Config,
		Enabled:  true,
	}
	if req.Enabled != nil {
		integration.Enabled = *req.Enabled
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&integration); result.Error != nil {
		log.Error("Failed to create integration", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "integration creation failed"})
	}

	log.Info("Integration created",
		zap.Uint("integration_id", integration.ID),
		zap.String("provider", integration.Provider),
		zap.Uint("client_id", clientID))
	return c.JSON(http.StatusCreated, integration)
}

// ListIntegrations lists the active client's integrations without API keys
func ListIntegrations(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("integration", "list")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var integrations []model.Integration
	if err := database.GetDB().Where("client_id = ?", clientID).Find(&integrations).Error; err != nil {
		log.Error("Failed to list integrations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve integrations"})
	}

	summaries := make([]integrationSummary, 0, len(integrations))
	for _, in := range integrations {
		summaries = append(summaries, integrationSummary{
			ID:        in.ID,
			Provider:  in.Provider,
			Enabled:   in.Enabled,
			CreatedAt: in.CreatedAt,
			UpdatedAt: in.UpdatedAt,
		})
	}

	return c.JSON(http.StatusOK, summaries)
}

// GetIntegration retrieves an integration by ID for the active client
func GetIntegration(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("integration", "get")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid integration ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var integration model.Integration
	if result := database.GetDB().Where("id = ? AND client_id = ?", id, clientID).First(&integration); result.Error != nil {
		log.Warn("Integration not found for tenant", zap.Uint64("integration_id", id), zap.Uint("client_id", clientID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "integration not found"})
	}

	return c.JSON(http.StatusOK, integration)
}

// UpdateIntegration edits an integration belonging to the active client
func UpdateIntegration(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("integration", "update")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid integration ID"})
	}

	var integration model.Integration
	if result := database.GetDB().Where("id = ? AND client_id = ?", id, clientID).First(&integration); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "integration not found"})
	}

	var req IntegrationRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse integration update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Provider != "" {
		updates["provider"] = req.Provider
	}
	if req.APIKey != "" {
		updates["api_key"] = req.APIKey
	}
	if req.Config != "" {
		updates["config"] = req.Config
	}
	if req.Enabled != nil {
		updates["enabled"] = *req.Enabled
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&integration).Updates(updates).Error; err != nil {
		log.Error("Failed to update integration", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "integration update failed"})
	}

	log.Info("Integration updated", zap.Uint("integration_id", integration.ID), zap.Uint("client_id", clientID))
	return c.JSON(http.StatusOK, integration)
}

// DeleteIntegration removes an integration belonging to the active client
func DeleteIntegration(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("integration", "delete")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid integration ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Where("id = ? AND client_id = ?", id, clientID).Delete(&model.Integration{})
	if result.Error != nil {
		log.Error("Failed to delete integration", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "integration deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "integration not found"})
	}

	log.Info("Integration deleted", zap.Uint64("integration_id", id), zap.Uint("client_id", clientID))
	return c.JSON(http.StatusOK, echo.Map{"message": "integration deleted"})
}
