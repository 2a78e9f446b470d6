package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/onboarding-backend/internal/http/response"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/services"
)

type QuizHandler struct {
	log      *logger.Logger
	pipeline services.PipelineService
	quizzes  services.QuizService
}

func NewQuizHandler(log *logger.Logger, pipeline services.PipelineService, quizzes services.QuizService) *QuizHandler {
	return &QuizHandler{log: log.With("handler", "QuizHandler"), pipeline: pipeline, quizzes: quizzes}
}

type generateQuizRequest struct {
	QuestionCount int `json:"question_count"`
}

// POST /api/documents/:id/quiz
func (h *QuizHandler) Generate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req generateQuizRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.pipeline.GenerateQuiz(c.Request.Context(), id, req.QuestionCount)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, res)
}

// GET /api/quiz
func (h *QuizHandler) Get(c *gin.Context) {
	st, err := h.quizzes.Current(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, st)
}

type saveAnswersRequest struct {
	Answers []int `json:"answers" binding:"required"`
}

// PUT /api/quiz/answers
func (h *QuizHandler) SaveAnswers(c *gin.Context) {
	var req saveAnswersRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.quizzes.SaveAnswers(c.Request.Context(), req.Answers)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, st)
}

// POST /api/quiz/submit
func (h *QuizHandler) Submit(c *gin.Context) {
	st, err := h.quizzes.Submit(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, st)
}
