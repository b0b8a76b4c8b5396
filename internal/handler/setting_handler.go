package handler

import (
	"errors"
	"net/http"
	"time"

	"agency-portal/internal/model"
	"agency-portal/pkg/database"
	"agency-portal/pkg/logger"
	"agency-portal/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ListSettings returns all settings for the active client
func ListSettings(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("setting", "list")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var settings []model.Setting
	if err := database.GetDB().Where("client_id = ?", clientID).Order("key ASC").Find(&settings).Error; err != nil {
		log.Error("Failed to list settings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve settings"})
	}

	return c.JSON(http.StatusOK, settings)
}

// PutSetting creates or updates a setting for the active client
func PutSetting(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("setting", "put")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	key := c.Param("key")
	if key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "setting key is required"})
	}

	var req struct {
		Value string `json:"value"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse setting request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var setting model.Setting
	err := database.GetDB().Where("client_id = ? AND key = ?", clientID, key).First(&setting).Error
	switch {
	case err == nil:
		if err := database.GetDB().Model(&setting).Update("value", req.Value).Error; err != nil {
			log.Error("Failed to update setting", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "setting update failed"})
		}
		log.Info("Setting updated", zap.String("key", key), zap.Uint("client_id", clientID))
		return c.JSON(http.StatusOK, setting)

	case errors.Is(err, gorm.ErrRecordNotFound):
		setting = model.Setting{ClientID: clientID, Key: key, Value: req.Value}
		if err := database.GetDB().Create(&setting).Error; err != nil {
			log.Error("Failed to create setting", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "setting creation failed"})
		}
		log.Info("Setting created", zap.String("key", key), zap.Uint("client_id", clientID))
		return c.JSON(http.StatusCreated, setting)

	default:
		log.Error("Failed to load setting", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "setting lookup failed"})
	}
}

// DeleteSetting removes a setting for the active client
func DeleteSetting(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("setting", "delete")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	key := c.Param("key")
	if key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "setting key is required"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Where("client_id = ? AND key = ?", clientID, key).Delete(&model.Setting{})
	if result.Error != nil {
		log.Error("Failed to delete setting", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "setting deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "setting not found"})
	}

	log.Info("Setting deleted", zap.String("key", key), zap.Uint("client_id", clientID))
	return c.JSON(http.StatusOK, echo.Map{"message": "setting deleted"})
}
