package app

import (
	apphttp "github.com/yungbote/onboarding-backend/internal/http"
	httpH "github.com/yungbote/onboarding-backend/internal/http/handlers"
	httpMW "github.com/yungbote/onboarding-backend/internal/http/middleware"
	"github.com/yungbote/onboarding-backend/internal/observability"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Document  *httpH.DocumentHandler
	Quiz      *httpH.QuizHandler
	StudyPlan *httpH.StudyPlanHandler
	Goal      *httpH.GoalHandler
	Calendar  *httpH.CalendarHandler
	Prefs     *httpH.PrefsHandler
	Dashboard *httpH.DashboardHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Document:  httpH.NewDocumentHandler(log, services.Pipeline, services.Documents, cfg.MaxUploadBytes),
		Quiz:      httpH.NewQuizHandler(log, services.Pipeline, services.Quiz),
		StudyPlan: httpH.NewStudyPlanHandler(log, services.Pipeline, services.StudyPlans),
		Goal:      httpH.NewGoalHandler(log, services.Goals),
		Calendar:  httpH.NewCalendarHandler(log, services.Calendar),
		Prefs:     httpH.NewPrefsHandler(log, services.Prefs),
		Dashboard: httpH.NewDashboardHandler(log, services.Dashboard),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:              log,
		ServiceName:      serviceName,
		AllowedOrigins:   cfg.AllowedOrigins,
		Metrics:          observability.Current(),
		AuthMiddleware:   middleware.Auth,
		HealthHandler:    handlers.Health,
		DocumentHandler:  handlers.Document,
		QuizHandler:      handlers.Quiz,
		StudyPlanHandler: handlers.StudyPlan,
		GoalHandler:      handlers.Goal,
		CalendarHandler:  handlers.Calendar,
		PrefsHandler:     handlers.Prefs,
		DashboardHandler: handlers.Dashboard,
	})
}
