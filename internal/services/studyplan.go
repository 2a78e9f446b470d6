package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/data/repos"
	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

type PlanState struct {
	Current *types.StudyPlan  `json:"current"`
	History []types.StudyPlan `json:"history"`
}

type StudyPlanService interface {
	Get(ctx context.Context) (*PlanState, error)
	ToggleSession(ctx context.Context, planID uuid.UUID, sessionID string) (*types.StudyPlan, error)
}

type studyPlanService struct {
	log   *logger.Logger
	plans repos.StudyPlanRepo
}

func NewStudyPlanService(log *logger.Logger, plans repos.StudyPlanRepo) StudyPlanService {
	return &studyPlanService{log: log.With("service", "StudyPlanService"), plans: plans}
}

func (ss *studyPlanService) Get(ctx context.Context) (*PlanState, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	cur, err := ss.plans.Current(ctx, owner)
	if err != nil {
		return nil, err
	}
	hist, err := ss.plans.History(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &PlanState{Current: cur, History: hist}, nil
}

// ToggleSession flips completion on the current plan or a history entry and
// recomputes its progress.
func (ss *studyPlanService) ToggleSession(ctx context.Context, planID uuid.UUID, sessionID string) (*types.StudyPlan, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, apierr.Validation("session id is required")
	}
	return ss.plans.Mutate(ctx, owner, planID, func(p *types.StudyPlan) error {
		if err := p.ToggleSession(sessionID); err != nil {
			return apierr.Validation("%v", err)
		}
		return nil
	})
}
