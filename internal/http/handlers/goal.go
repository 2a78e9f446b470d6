package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/onboarding-backend/internal/http/response"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/services"
)

type GoalHandler struct {
	log   *logger.Logger
	goals services.GoalService
}

func NewGoalHandler(log *logger.Logger, goals services.GoalService) *GoalHandler {
	return &GoalHandler{log: log.With("handler", "GoalHandler"), goals: goals}
}

func (h *GoalHandler) List(c *gin.Context) {
	goals, err := h.goals.List(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"goals": goals})
}

func (h *GoalHandler) Create(c *gin.Context) {
	var in services.GoalInput
	if !bindJSON(c, &in) {
		return
	}
	goal, err := h.goals.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, goal)
}

func (h *GoalHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var in services.GoalInput
	if !bindJSON(c, &in) {
		return
	}
	goal, err := h.goals.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, goal)
}

type progressRequest struct {
	ProgressPercent *int `json:"progress_percent" binding:"required"`
}

// PUT /api/goals/:id/progress
func (h *GoalHandler) SetProgress(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	goal, err := h.goals.SetProgress(c.Request.Context(), id, *req.ProgressPercent)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, goal)
}

func (h *GoalHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.goals.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
