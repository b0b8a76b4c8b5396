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

// TaskRequest defines the structure for task creation/update requests. There
// is deliberately no client_id field: tenant scope comes from the resolved
// active client, never from the payload.
type TaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssigneeID  *uint      `json:"assignee_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// CreateTask creates a task for the active client
func CreateTask(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("task", "create")

	clientID, ok := activeClientID(c)
	if !ok {
		log.Error("Missing active client in context")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	var req TaskRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse task creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if req.Status == "" {
		req.Status = model.TaskStatusTodo
	}
	if req.Priority == "" {
		req.Priority = "normal"
	}

	task := model.Task{
		ClientID:    clientID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&task); result.Error != nil {
		log.Error("Failed to create task", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "task creation failed"})
	}

	log.Info("Task created", zap.Uint("task_id", task.ID), zap.Uint("client_id", clientID))
	return c.JSON(http.StatusCreated, task)
}

// ListTasks lists the active client's tasks, optionally filtered by status
func ListTasks(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("task", "list")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	query := database.GetDB().Where("client_id = ?", clientID)
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tasks []model.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		log.Error("Failed to list tasks", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tasks"})
	}

	return c.JSON(http.StatusOK, tasks)
}

// GetTask retrieves a task by ID for the active client
func GetTask(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("task", "get")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var task model.Task
	if result := database.GetDB().Where("id = ? AND client_id = ?", id, clientID).First(&task); result.Error != nil {
		log.Warn("Task not found for tenant", zap.Uint64("task_id", id), zap.Uint("client_id", clientID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask edits a task belonging to the active client
func UpdateTask(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("task", "update")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task ID"})
	}

	var task model.Task
	if result := database.GetDB().Where("id = ? AND client_id = ?", id, clientID).First(&task); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
	}

	var req TaskRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse task update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Priority != "" {
		updates["priority"] = req.Priority
	}
	if req.AssigneeID != nil {
		updates["assignee_id"] = *req.AssigneeID
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&task).Updates(updates).Error; err != nil {
		log.Error("Failed to update task", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "task update failed"})
	}

	log.Info("Task updated", zap.Uint("task_id", task.ID), zap.Uint("client_id", clientID))
	return c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task belonging to the active client
func DeleteTask(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("task", "delete")

	clientID, ok := activeClientID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active client context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Where("id = ? AND client_id = ?", id, clientID).Delete(&model.Task{})
	if result.Error != nil {
		log.Error("Failed to delete task", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "task deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
	}

	log.Info("Task deleted", zap.Uint64("task_id", id), zap.Uint("client_id", clientID))
	return c.JSON(http.StatusOK, echo.Map{"message": "task deleted"})
}
