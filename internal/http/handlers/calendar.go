package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/onboarding-backend/internal/http/response"
	"github.com/yungbote/onboarding-backend/internal/platform/calendar"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/services"
)

// headerCalendarToken carries the caller's Google OAuth access token.
const headerCalendarToken = "X-Google-Access-Token"

type CalendarHandler struct {
	log      *logger.Logger
	calendar services.CalendarService
}

func NewCalendarHandler(log *logger.Logger, cal services.CalendarService) *CalendarHandler {
	return &CalendarHandler{log: log.With("handler", "CalendarHandler"), calendar: cal}
}

// POST /api/calendar/sessions
func (h *CalendarHandler) ScheduleSession(c *gin.Context) {
	var req services.SessionRequest
	if !bindJSON(c, &req) {
		return
	}
	creds := calendar.Credentials{AccessToken: strings.TrimSpace(c.GetHeader(headerCalendarToken))}
	res, err := h.calendar.ScheduleSession(c.Request.Context(), creds, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, res)
}
