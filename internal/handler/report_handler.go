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

// ReportRequest defines the structure for report creation/update requests
type ReportRequest struct {
	Title       string     `json:"title"`
	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`
	Summary     string     `json:"summary"`
	FileURL     string     `json:"file_url"`
}

// CreateReport creates a report for the active client
func CreateReport(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("report", "create")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	var req ReportRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse report creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	report := model.Report{
		ClientID:    clientID,
		Title:       req.Title,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Summary:     req.Summary,
		FileURL:     req.FileURL,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&report); result.Error != nil {
		log.Error("Failed to create report", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report creation failed"})
	}

	log.Info("Report created", zap.Uint("report_id", report.ID), zap.Uint("client_id", clientID))
	return c.JSON(http.StatusCreated, report)
}

// ListReports lists the active client's reports
func ListReports(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("report", "list")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var reports []model.Report
	if err := database.GetDB().Where("client_id = ?", clientID).Order("created_at DESC").Find(&reports).Error; err != nil {
		log.Error("Failed to list reports", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve reports"})
	}

	return c.JSON(http.StatusOK, reports)
}

// GetReport retrieves a report by ID for the active client
func GetReport(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("report", "get")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var report model.Report
	if result := database.GetDB().Where("id = ? AND client_id = ?", id, clientID).First(&report); result.Error != nil {
		log.Warn("Report not found for tenant", zap.Uint64("report_id", id), zap.Uint("client_id", clientID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
	}

	return c.JSON(http.StatusOK, report)
}

// UpdateReport edits a report belonging to the active client
func UpdateReport(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("report", "update")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report ID"})
	}

	var report model.Report
	if result := database.GetDB().Where("id = ? AND client_id = ?", id, clientID).First(&report); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
	}

	var req ReportRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse report update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.PeriodStart != nil {
		updates["period_start"] = *req.PeriodStart
	}
	if req.PeriodEnd != nil {
		updates["period_end"] = *req.PeriodEnd
	}
	if req.Summary != "" {
		updates["summary"] = req.Summary
	}
	if req.FileURL != "" {
		updates["file_url"] = req.FileURL
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&report).Updates(updates).Error; err != nil {
		log.Error("Failed to update report", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report update failed"})
	}

	log.Info("Report updated", zap.Uint("report_id", report.ID), zap.Uint("client_id", clientID))
	return c.JSON(http.StatusOK, report)
}

// DeleteReport removes a report belonging to the active client
func DeleteReport(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("report", "delete")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Where("id = ? AND client_id = ?", id, clientID).Delete(&model.Report{})
	if result.Error != nil {
		log.Error("Failed to delete report", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
	}

	log.Info("Report deleted", zap.Uint64("report_id", id), zap.Uint("client_id", clientID))
	return c.JSON(http.StatusOK, echo.Map{"message": "report deleted"})
}
