package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/server/biz"
)

type TaskHandlersParams struct {
	fx.In

	TaskService *biz.TaskService
}

func NewTaskHandlers(params TaskHandlersParams) *TaskHandlers {
	return &TaskHandlers{
		TaskService: params.TaskService,
	}
}

type TaskHandlers struct {
	TaskService *biz.TaskService
}

type CreateTaskRequest struct {
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description"`
	DueAt          *time.Time `json:"due_at"`
	AssigneeUserID *int       `json:"assignee_user_id"`
	LeadID         *int       `json:"lead_id"`
	DealID         *int       `json:"deal_id"`
}

func (h *TaskHandlers) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	task, err := h.TaskService.CreateTask(c.Request.Context(), &objects.Task{
		Title:          req.Title,
		Description:    req.Description,
		DueAt:          req.DueAt,
		AssigneeUserID: req.AssigneeUserID,
		LeadID:         req.LeadID,
		DealID:         req.DealID,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandlers) GetTask(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	task, err := h.TaskService.GetTask(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandlers) ListTasks(c *gin.Context) {
	tasks, err := h.TaskService.ListTasks(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

type UpdateTaskRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Status         *string    `json:"status"`
	DueAt          *time.Time `json:"due_at"`
	AssigneeUserID *int       `json:"assignee_user_id"`
}

func (h *TaskHandlers) UpdateTask(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	ctx := c.Request.Context()

	task, err := h.TaskService.GetTask(ctx, id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	applyString(&task.Title, req.Title)
	applyString(&task.Description, req.Description)
	applyString(&task.Status, req.Status)

	if req.DueAt != nil {
		task.DueAt = req.DueAt
	}

	if req.AssigneeUserID != nil {
		task.AssigneeUserID = req.AssigneeUserID
	}

	task, err = h.TaskService.UpdateTask(ctx, task)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandlers) DeleteTask(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	if err := h.TaskService.DeleteTask(c.Request.Context(), id); err != nil {
		ServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CompleteTask marks a task done. Only the assignee may do this; anyone
// else gets a 409 from the completion guard.
func (h *TaskHandlers) CompleteTask(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}

	task, err := h.TaskService.CompleteTask(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}
