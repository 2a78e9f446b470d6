package app

import (
	"fmt"

	"github.com/yungbote/onboarding-backend/internal/data/repos"
	"github.com/yungbote/onboarding-backend/internal/modules/onboarding/extract"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/services"
)

type Services struct {
	Auth       services.TokenVerifier
	Pipeline   services.PipelineService
	Documents  services.DocumentService
	Quiz       services.QuizService
	StudyPlans services.StudyPlanService
	Goals      services.GoalService
	Calendar   services.CalendarService
	Prefs      services.PrefsService
	Dashboard  services.DashboardService
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, rs repos.Set) (Services, error) {
	log.Info("Wiring services...")

	verifier, err := services.NewTokenVerifier(log, cfg.JWTSecretKey, cfg.JWTIssuer)
	if err != nil {
		return Services{}, fmt.Errorf("init token verifier: %w", err)
	}

	blobs := clients.blobStore()
	extractor := extract.New(clients.Catalog)

	return Services{
		Auth: verifier,
		Pipeline: services.NewPipelineService(log, clients.Gemini, extractor, blobs, clients.Mirror, clients.OCR, rs, services.PipelineConfig{
			UploadTimeout: cfg.UploadTimeout,
			MaxFileBytes:  cfg.MaxUploadBytes,
		}),
		Documents:  services.NewDocumentService(log, rs.Documents, blobs, clients.Mirror, cfg.UploadTimeout),
		Quiz:       services.NewQuizService(log, rs.Quizzes),
		StudyPlans: services.NewStudyPlanService(log, rs.StudyPlans),
		Goals:      services.NewGoalService(log, rs.Goals),
		Calendar:   services.NewCalendarService(log, clients.Calendar, cfg.CalendarTimeout),
		Prefs:      services.NewPrefsService(log, rs.Prefs),
		Dashboard:  services.NewDashboardService(log, rs),
	}, nil
}
