package repos

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/data/kvstore"
	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

type GoalRepo interface {
	Create(ctx context.Context, goal types.Goal) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Goal, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, fn func(*types.Goal) error) (*types.Goal, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type goalRepo struct {
	col *kvstore.Collection[types.Goal]
	log *logger.Logger
}

func NewGoalRepo(store kvstore.Store, locks *kvstore.Locks, baseLog *logger.Logger) GoalRepo {
	repoLog := baseLog.With("repo", "GoalRepo")
	return &goalRepo{
		col: kvstore.NewCollection[types.Goal](store, locks, CollectionGoals, repoLog),
		log: repoLog,
	}
}

func (r *goalRepo) Create(ctx context.Context, goal types.Goal) error {
	return r.col.Update(ctx, func(all []types.Goal) ([]types.Goal, error) {
		return append(all, goal), nil
	})
}

func (r *goalRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Goal, error) {
	return r.col.Load(ctx, ownerID)
}

func (r *goalRepo) Update(ctx context.Context, ownerID, id uuid.UUID, fn func(*types.Goal) error) (*types.Goal, error) {
	var out *types.Goal
	err := r.col.Update(ctx, func(all []types.Goal) ([]types.Goal, error) {
		for i := range all {
			if all[i].ID != id || all[i].OwnerID != ownerID {
				continue
			}
			if err := fn(&all[i]); err != nil {
				return nil, err
			}
			cp := all[i]
			out = &cp
			return all, nil
		}
		return nil, apierr.NotFound("goal")
	})
	return out, err
}

func (r *goalRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.col.Update(ctx, func(all []types.Goal) ([]types.Goal, error) {
		out := make([]types.Goal, 0, len(all))
		for _, g := range all {
			if g.ID == id && g.OwnerID == ownerID {
				continue
			}
			out = append(out, g)
		}
		if len(out) == len(all) {
			return nil, apierr.NotFound("goal")
		}
		return out, nil
	})
}
