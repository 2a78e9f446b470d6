package repos

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/data/kvstore"
)

// ownerSingleton keeps at most one record per owner inside a collection.
type ownerSingleton[T kvstore.Owned] struct {
	col *kvstore.Collection[T]
}

func (s ownerSingleton[T]) get(ctx context.Context, ownerID uuid.UUID) (*T, error) {
	items, err := s.col.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	v := items[len(items)-1]
	return &v, nil
}

func (s ownerSingleton[T]) put(ctx context.Context, v T) error {
	owner := v.Owner()
	return s.col.Update(ctx, func(all []T) ([]T, error) {
		out := withoutOwner(all, owner)
		return append(out, v), nil
	})
}

func (s ownerSingleton[T]) clear(ctx context.Context, ownerID uuid.UUID) error {
	return s.col.Update(ctx, func(all []T) ([]T, error) {
		return withoutOwner(all, ownerID), nil
	})
}

func withoutOwner[T kvstore.Owned](all []T, ownerID uuid.UUID) []T {
	out := make([]T, 0, len(all))
	for _, it := range all {
		if it.Owner() != ownerID {
			out = append(out, it)
		}
	}
	return out
}
