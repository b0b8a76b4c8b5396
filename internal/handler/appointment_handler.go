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

// AppointmentRequest defines the structure for appointment creation/update requests
type AppointmentRequest struct {
	Title    string     `json:"title"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
	Location string     `json:"location"`
	Attendee string     `json:"attendee"`
	Notes    string     `json:"notes"`
}

// CreateAppointment schedules an appointment for the active client
func CreateAppointment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("appointment", "create")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	var req AppointmentRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse appointment creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Title == "" || req.StartsAt == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and starts_at are required"})
	}
	if req.EndsAt != nil && !req.EndsAt.After(*req.StartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be after starts_at"})
	}

	appointment := model.Appointment{
		ClientID: clientID,
		Title:    req.Title,
		StartsAt: *req.StartsAt,
		EndsAt:   req.EndsAt,
		Location: req.Location,
		Attendee: req.Attendee,
		Notes:    req.Notes,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&appointment); result.Error != nil {
		log.Error("Failed to create appointment", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "appointment creation failed"})
	}

	log.Info("Appointment created", zap.Uint("appointment_id", appointment.ID), zap.Uint("client_id", clientID))
	return c.JSON(http.StatusCreated, appointment)
}

// ListAppointments lists the active client's appointments, optionally
// bounded by from/to query params (RFC 3339)
func ListAppointments(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("appointment", "list")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	query := database.GetDB().Where("client_id = ?", clientID)
	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from parameter"})
		}
		query = query.Where("starts_at >= ?", t)
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to parameter"})
		}
		query = query.Where("starts_at < ?", t)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var appointments []model.Appointment
	if err := query.Order("starts_at ASC").Find(&appointments).Error; err != nil {
		log.Error("Failed to list appointments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve appointments"})
	}

	return c.JSON(http.StatusOK, appointments)
}

// GetAppointment retrieves an appointment by ID for the active client
func GetAppointment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("appointment", "get")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var appointment model.Appointment
	if result := database.GetDB().Where("id = ? AND client_id = ?", id, clientID).First(&appointment); result.Error != nil {
		log.Warn("Appointment not found for tenant", zap.Uint64("appointment_id", id), zap.Uint("client_id", clientID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
	}

	return c.JSON(http.StatusOK, appointment)
}

// UpdateAppointment edits an appointment belonging to the active client
func UpdateAppointment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("appointment", "update")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment ID"})
	}

	var appointment model.Appointment
	if result := database.GetDB().Where("id = ? AND client_id = ?", id, clientID).First(&appointment); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
	}

	var req AppointmentRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse appointment update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.StartsAt != nil {
		updates["starts_at"] = *req.StartsAt
	}
	if req.EndsAt != nil {
		updates["ends_at"] = *req.EndsAt
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.Attendee != "" {
		updates["attendee"] = req.Attendee
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&appointment).Updates(updates).Error; err != nil {
		log.Error("Failed to update appointment", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "appointment update failed"})
	}

	log.Info("Appointment updated", zap.Uint("appointment_id", appointment.ID), zap.Uint("client_id", clientID))
	return c.JSON(http.StatusOK, appointment)
}

// DeleteAppointment removes an appointment belonging to the active client
func DeleteAppointment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("appointment", "delete")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Where("id = ? AND client_id = ?", id, clientID).Delete(&model.Appointment{})
	if result.Error != nil {
		log.Error("Failed to delete appointment", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "appointment deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
	}

	log.Info("Appointment deleted", zap.Uint64("appointment_id", id), zap.Uint("client_id", clientID))
	return c.JSON(http.StatusOK, echo.Map{"message": "appointment deleted"})
}
