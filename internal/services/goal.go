package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/data/repos"
	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

type GoalInput struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Deadline        *time.Time `json:"deadline"`
	Category        *string    `json:"category"`
	ProgressPercent *int       `json:"progress_percent"`
}

type GoalService interface {
	Create(ctx context.Context, in GoalInput) (*types.Goal, error)
	List(ctx context.Context) ([]types.Goal, error)
	Update(ctx context.Context, id uuid.UUID, in GoalInput) (*types.Goal, error)
	SetProgress(ctx context.Context, id uuid.UUID, percent int) (*types.Goal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type goalService struct {
	log   *logger.Logger
	goals repos.GoalRepo
	now   func() time.Time
}

func NewGoalService(log *logger.Logger, goals repos.GoalRepo) GoalService {
	return &goalService{
		log:   log.With("service", "GoalService"),
		goals: goals,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (gs *goalService) Create(ctx context.Context, in GoalInput) (*types.Goal, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, apierr.Validation("title is required")
	}
	now := gs.now()
	g := types.Goal{ID: uuid.New(), OwnerID: owner, CreatedAt: now}
	applyGoalInput(&g, in)
	g.UpdatedAt = now
	if err := gs.goals.Create(ctx, g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (gs *goalService) List(ctx context.Context) ([]types.Goal, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	return gs.goals.ListByOwner(ctx, owner)
}

func (gs *goalService) Update(ctx context.Context, id uuid.UUID, in GoalInput) (*types.Goal, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, apierr.Validation("title cannot be empty")
	}
	return gs.goals.Update(ctx, owner, id, func(g *types.Goal) error {
		applyGoalInput(g, in)
		g.UpdatedAt = gs.now()
		return nil
	})
}

// SetProgress clamps percent into [0,100].
func (gs *goalService) SetProgress(ctx context.Context, id uuid.UUID, percent int) (*types.Goal, error) {
	return gs.Update(ctx, id, GoalInput{ProgressPercent: &percent})
}

func (gs *goalService) Delete(ctx context.Context, id uuid.UUID) error {
	owner, err := requireOwner(ctx)
	if err != nil {
		return err
	}
	return gs.goals.Delete(ctx, owner, id)
}

func applyGoalInput(g *types.Goal, in GoalInput) {
	if in.Title != nil {
		g.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		g.Description = strings.TrimSpace(*in.Description)
	}
	if in.Deadline != nil {
		d := in.Deadline.UTC()
		g.Deadline = &d
	}
	if in.Category != nil {
		g.Category = strings.TrimSpace(*in.Category)
	}
	if in.ProgressPercent != nil {
		g.ProgressPercent = types.ClampProgress(*in.ProgressPercent)
	}
}
