package repos

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/data/kvstore"
	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

type StudyPlanRepo interface {
	// SetCurrent installs plan as the owner's current plan. A previous current
	// plan is pushed to the front of the history list.
	SetCurrent(ctx context.Context, plan types.StudyPlan) error
	Current(ctx context.Context, ownerID uuid.UUID) (*types.StudyPlan, error)
	History(ctx context.Context, ownerID uuid.UUID) ([]types.StudyPlan, error)
	// Mutate applies fn to the plan with planID, current or historical.
	Mutate(ctx context.Context, ownerID, planID uuid.UUID, fn func(*types.StudyPlan) error) (*types.StudyPlan, error)
}

type studyPlanRepo struct {
	current ownerSingleton[types.StudyPlan]
	history *kvstore.Collection[types.StudyPlan]
	log     *logger.Logger
}

func NewStudyPlanRepo(store kvstore.Store, locks *kvstore.Locks, baseLog *logger.Logger) StudyPlanRepo {
	repoLog := baseLog.With("repo", "StudyPlanRepo")
	return &studyPlanRepo{
		current: ownerSingleton[types.StudyPlan]{col: kvstore.NewCollection[types.StudyPlan](store, locks, CollectionStudyPlan, repoLog)},
		history: kvstore.NewCollection[types.StudyPlan](store, locks, CollectionStudyPlanHistory, repoLog),
		log:     repoLog,
	}
}

// SetCurrent archives and installs under both collection locks; concurrent
// installs for one owner each archive the plan they replaced.
func (r *studyPlanRepo) SetCurrent(ctx context.Context, plan types.StudyPlan) error {
	owner := plan.OwnerID
	return kvstore.UpdatePair(ctx, r.current.col, r.history, func(cur, hist []types.StudyPlan) ([]types.StudyPlan, []types.StudyPlan, error) {
		for _, prev := range cur {
			if prev.OwnerID == owner && prev.ID != plan.ID {
				hist = append([]types.StudyPlan{prev}, hist...)
			}
		}
		return append(withoutOwner(cur, owner), plan), hist, nil
	})
}

func (r *studyPlanRepo) Current(ctx context.Context, ownerID uuid.UUID) (*types.StudyPlan, error) {
	return r.current.get(ctx, ownerID)
}

func (r *studyPlanRepo) History(ctx context.Context, ownerID uuid.UUID) ([]types.StudyPlan, error) {
	return r.history.Load(ctx, ownerID)
}

func (r *studyPlanRepo) Mutate(ctx context.Context, ownerID, planID uuid.UUID, fn func(*types.StudyPlan) error) (*types.StudyPlan, error) {
	apply := func(all []types.StudyPlan) (*types.StudyPlan, error) {
		for i := range all {
			if all[i].ID != planID || all[i].OwnerID != ownerID {
				continue
			}
			if err := fn(&all[i]); err != nil {
				return nil, err
			}
			cp := all[i]
			return &cp, nil
		}
		return nil, nil
	}

	var out *types.StudyPlan
	err := kvstore.UpdatePair(ctx, r.current.col, r.history, func(cur, hist []types.StudyPlan) ([]types.StudyPlan, []types.StudyPlan, error) {
		p, err := apply(cur)
		if err == nil && p == nil {
			p, err = apply(hist)
		}
		if err != nil {
			return nil, nil, err
		}
		if p == nil {
			return nil, nil, apierr.NotFound("study plan")
		}
		out = p
		return cur, hist, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
