package repos

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/data/kvstore"
	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

type DocumentRepo interface {
	Create(ctx context.Context, doc types.Document) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Document, error)
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*types.Document, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, fn func(*types.Document) error) (*types.Document, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type documentRepo struct {
	col *kvstore.Collection[types.Document]
	log *logger.Logger
}

func NewDocumentRepo(store kvstore.Store, locks *kvstore.Locks, baseLog *logger.Logger) DocumentRepo {
	repoLog := baseLog.With("repo", "DocumentRepo")
	return &documentRepo{
		col: kvstore.NewCollection[types.Document](store, locks, CollectionDocuments, repoLog),
		log: repoLog,
	}
}

func (r *documentRepo) Create(ctx context.Context, doc types.Document) error {
	return r.col.Update(ctx, func(all []types.Document) ([]types.Document, error) {
		return append(all, doc), nil
	})
}

func (r *documentRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Document, error) {
	return r.col.Load(ctx, ownerID)
}

func (r *documentRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*types.Document, error) {
	docs, err := r.col.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].ID == id {
			return &docs[i], nil
		}
	}
	return nil, apierr.NotFound("document")
}

func (r *documentRepo) Update(ctx context.Context, ownerID, id uuid.UUID, fn func(*types.Document) error) (*types.Document, error) {
	var out *types.Document
	err := r.col.Update(ctx, func(all []types.Document) ([]types.Document, error) {
		for i := range all {
			if all[i].ID == id && all[i].OwnerID == ownerID {
				if err := fn(&all[i]); err != nil {
					return nil, err
				}
				cp := all[i]
				out = &cp
				return all, nil
			}
		}
		return nil, apierr.NotFound("document")
	})
	return out, err
}

func (r *documentRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.col.Update(ctx, func(all []types.Document) ([]types.Document, error) {
		out := make([]types.Document, 0, len(all))
		found := false
		for _, d := range all {
			if d.ID == id && d.OwnerID == ownerID {
				found = true
				continue
			}
			out = append(out, d)
		}
		if !found {
			return nil, apierr.NotFound("document")
		}
		return out, nil
	})
}
