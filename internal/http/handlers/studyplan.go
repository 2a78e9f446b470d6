package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/http/response"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/services"
)

type StudyPlanHandler struct {
	log      *logger.Logger
	pipeline services.PipelineService
	plans    services.StudyPlanService
}

func NewStudyPlanHandler(log *logger.Logger, pipeline services.PipelineService, plans services.StudyPlanService) *StudyPlanHandler {
	return &StudyPlanHandler{log: log.With("handler", "StudyPlanHandler"), pipeline: pipeline, plans: plans}
}

type generatePlanRequest struct {
	types.PlanRequest
	DocumentID *uuid.UUID `json:"document_id"`
}

// POST /api/study-plans
func (h *StudyPlanHandler) Generate(c *gin.Context) {
	var req generatePlanRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.pipeline.GenerateStudyPlan(c.Request.Context(), req.PlanRequest, req.DocumentID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, res)
}

// GET /api/study-plans
func (h *StudyPlanHandler) Get(c *gin.Context) {
	st, err := h.plans.Get(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, st)
}

// POST /api/study-plans/:id/sessions/:sessionId/toggle
func (h *StudyPlanHandler) ToggleSession(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	plan, err := h.plans.ToggleSession(c.Request.Context(), id, strings.TrimSpace(c.Param("sessionId")))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, plan)
}
