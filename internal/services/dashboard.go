package services

import (
	"context"

	"github.com/yungbote/onboarding-backend/internal/data/repos"
	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

type DashboardService interface {
	Get(ctx context.Context) (*types.Dashboard, error)
}

type dashboardService struct {
	log   *logger.Logger
	repos repos.Set
}

func NewDashboardService(log *logger.Logger, rs repos.Set) DashboardService {
	return &dashboardService{log: log.With("service", "DashboardService"), repos: rs}
}

func (ds *dashboardService) Get(ctx context.Context) (*types.Dashboard, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	out := &types.Dashboard{}

	docs, err := ds.repos.Documents.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	out.Documents = len(docs)

	goals, err := ds.repos.Goals.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	out.Goals = len(goals)
	if len(goals) > 0 {
		sum := 0
		for _, g := range goals {
			sum += g.ProgressPercent
		}
		out.AverageGoalProgress = (sum + len(goals)/2) / len(goals)
	}

	plan, err := ds.repos.StudyPlans.Current(ctx, owner)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		out.PlanProgress = plan.ProgressPercent
	}

	score, err := ds.repos.Quizzes.Score(ctx, owner)
	if err != nil {
		return nil, err
	}
	if score != nil {
		out.LastQuizPercent = score.Percent
	}
	sub, err := ds.repos.Quizzes.Submitted(ctx, owner)
	if err != nil {
		return nil, err
	}
	out.QuizSubmitted = sub != nil && sub.Submitted
	return out, nil
}
