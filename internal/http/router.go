package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/onboarding-backend/internal/http/handlers"
	httpMW "github.com/yungbote/onboarding-backend/internal/http/middleware"
	"github.com/yungbote/onboarding-backend/internal/observability"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler    *httpH.HealthHandler
	DocumentHandler  *httpH.DocumentHandler
	QuizHandler      *httpH.QuizHandler
	StudyPlanHandler *httpH.StudyPlanHandler
	GoalHandler      *httpH.GoalHandler
	CalendarHandler  *httpH.CalendarHandler
	PrefsHandler     *httpH.PrefsHandler
	DashboardHandler *httpH.DashboardHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	protected := r.Group("/api")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Documents
		if cfg.DocumentHandler != nil {
			protected.POST("/documents", cfg.DocumentHandler.Upload)
			protected.GET("/documents", cfg.DocumentHandler.List)
			protected.DELETE("/documents/:id", cfg.DocumentHandler.Delete)
			protected.POST("/documents/:id/analyze", cfg.DocumentHandler.AnalyzeAll)
		}

		// Quiz
		if cfg.QuizHandler != nil {
			protected.POST("/documents/:id/quiz", cfg.QuizHandler.Generate)
			protected.GET("/quiz", cfg.QuizHandler.Get)
			protected.PUT("/quiz/answers", cfg.QuizHandler.SaveAnswers)
			protected.POST("/quiz/submit", cfg.QuizHandler.Submit)
		}

		// Study plans
		if cfg.StudyPlanHandler != nil {
			protected.POST("/study-plans", cfg.StudyPlanHandler.Generate)
			protected.GET("/study-plans", cfg.StudyPlanHandler.Get)
			protected.POST("/study-plans/:id/sessions/:sessionId/toggle", cfg.StudyPlanHandler.ToggleSession)
		}

		// Goals
		if cfg.GoalHandler != nil {
			protected.GET("/goals", cfg.GoalHandler.List)
			protected.POST("/goals", cfg.GoalHandler.Create)
			protected.PATCH("/goals/:id", cfg.GoalHandler.Update)
			protected.PUT("/goals/:id/progress", cfg.GoalHandler.SetProgress)
			protected.DELETE("/goals/:id", cfg.GoalHandler.Delete)
		}

		if cfg.CalendarHandler != nil {
			protected.POST("/calendar/sessions", cfg.CalendarHandler.ScheduleSession)
		}

		if cfg.PrefsHandler != nil {
			protected.GET("/prefs", cfg.PrefsHandler.Get)
			protected.PUT("/prefs", cfg.PrefsHandler.Set)
		}

		if cfg.DashboardHandler != nil {
			protected.GET("/dashboard", cfg.DashboardHandler.Get)
		}
	}

	return r
}
