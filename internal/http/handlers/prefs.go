package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/onboarding-backend/internal/http/response"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/services"
)

type PrefsHandler struct {
	log   *logger.Logger
	prefs services.PrefsService
}

func NewPrefsHandler(log *logger.Logger, prefs services.PrefsService) *PrefsHandler {
	return &PrefsHandler{log: log.With("handler", "PrefsHandler"), prefs: prefs}
}

func (h *PrefsHandler) Get(c *gin.Context) {
	vals, err := h.prefs.Get(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"prefs": vals})
}

func (h *PrefsHandler) Set(c *gin.Context) {
	var req map[string]string
	if !bindJSON(c, &req) {
		return
	}
	vals, err := h.prefs.Set(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"prefs": vals})
}
