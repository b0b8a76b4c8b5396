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

// InvoiceRequest defines the structure for invoice creation/update requests
type InvoiceRequest struct {
	Number      string     `json:"number"`
	Status      string     `json:"status"`
	IssueDate   *time.Time `json:"issue_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AmountCents *int64     `json:"amount_cents,omitempty"`
	Currency    string     `json:"currency"`
	Notes       string     `json:"notes"`
}

// CreateInvoice creates an invoice for the active client
func CreateInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("invoice", "create")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	var req InvoiceRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse invoice creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Number == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number is required"})
	}
	if req.Status == "" {
		req.Status = model.InvoiceStatusDraft
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	// Invoice numbers are unique within a tenant
	var count int64
	database.GetDB().Model(&model.Invoice{}).
		Where("number = ? AND client_id = ?", req.Number, clientID).
		Count(&count)
	if count > 0 {
		log.Warn("Invoice number already exists for this client",
			zap.String("number", req.Number),
			zap.Uint("client_id", clientID))
		return c.JSON(http.StatusConflict, echo.Map{"error": "invoice number already exists for this client"})
	}

	invoice := model.Invoice{
		ClientID:  clientID,
		Number:    req.Number,
		Status:    req.Status,
		IssueDate: req.IssueDate,
		DueDate:   req.DueDate,
		Currency:  req.Currency,
		Notes:     req.Notes,
	}
	if req.AmountCents != nil {
		invoice.AmountCents = *req.AmountCents
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&invoice); result.Error != nil {
		log.Error("Failed to create invoice", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invoice creation failed"})
	}

	log.Info("Invoice created",
		zap.Uint("invoice_id", invoice.ID),
		zap.String("number", invoice.Number),
		zap.Uint("client_id", clientID))
	return c.JSON(http.StatusCreated, invoice)
}

// ListInvoices lists the active client's invoices, optionally filtered by status
func ListInvoices(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("invoice", "list")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	query := database.GetDB().Where("client_id = ?", clientID)
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var invoices []model.Invoice
	if err := query.Order("created_at DESC").Find(&invoices).Error; err != nil {
		log.Error("Failed to list invoices", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve invoices"})
	}

	return c.JSON(http.StatusOK, invoices)
}

// GetInvoice retrieves an invoice by ID for the active client
func GetInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("invoice", "get")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var invoice model.Invoice
	if result := database.GetDB().Where("id = ? AND client_id = ?", id, clientID).First(&invoice); result.Error != nil {
		log.Warn("Invoice not found for tenant", zap.Uint64("invoice_id", id), zap.Uint("client_id", clientID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
	}

	return c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice edits an invoice belonging to the active client
func UpdateInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("invoice", "update")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice ID"})
	}

	var invoice model.Invoice
	if result := database.GetDB().Where("id = ? AND client_id = ?", id, clientID).First(&invoice); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
	}

	var req InvoiceRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse invoice update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Number != "" && req.Number != invoice.Number {
		var count int64
		database.GetDB().Model(&model.Invoice{}).
			Where("number = ? AND client_id = ? AND id <> ?", req.Number, clientID, invoice.ID).
			Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "invoice number already exists for this client"})
		}
		updates["number"] = req.Number
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.IssueDate != nil {
		updates["issue_date"] = *req.IssueDate
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.AmountCents != nil {
		updates["amount_cents"] = *req.AmountCents
	}
	if req.Currency != "" {
		updates["currency"] = req.Currency
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&invoice).Updates(updates).Error; err != nil {
		log.Error("Failed to update invoice", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invoice update failed"})
	}

	log.Info("Invoice updated", zap.Uint("invoice_id", invoice.ID), zap.Uint("client_id", clientID))
	return c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice removes an invoice belonging to the active client
func DeleteInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("invoice", "delete")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Where("id = ? AND client_id = ?", id, clientID).Delete(&model.Invoice{})
	if result.Error != nil {
		log.Error("Failed to delete invoice", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invoice deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
	}

	log.Info("Invoice deleted", zap.Uint64("invoice_id", id), zap.Uint("client_id", clientID))
	return c.JSON(http.StatusOK, echo.Map{"message": "invoice deleted"})
}
