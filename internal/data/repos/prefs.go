package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/data/kvstore"
	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// PrefsRepo holds per-owner primitive values (active tab, upload type, last
// extracted text, last summary), each under its own collection name.
type PrefsRepo interface {
	Get(ctx context.Context, ownerID uuid.UUID, name string) (string, bool, error)
	Set(ctx context.Context, ownerID uuid.UUID, name, value string) error
	All(ctx context.Context, ownerID uuid.UUID) (map[string]string, error)
}

type prefsRepo struct {
	cols map[string]ownerSingleton[types.PrefValue]
	log  *logger.Logger
}

func NewPrefsRepo(store kvstore.Store, locks *kvstore.Locks, baseLog *logger.Logger) PrefsRepo {
	repoLog := baseLog.With("repo", "PrefsRepo")
	cols := make(map[string]ownerSingleton[types.PrefValue], len(PrefNames))
	for _, name := range PrefNames {
		cols[name] = ownerSingleton[types.PrefValue]{col: kvstore.NewCollection[types.PrefValue](store, locks, name, repoLog)}
	}
	return &prefsRepo{cols: cols, log: repoLog}
}

func (r *prefsRepo) col(name string) (ownerSingleton[types.PrefValue], error) {
	c, ok := r.cols[name]
	if !ok {
		return c, fmt.Errorf("unknown pref %q", name)
	}
	return c, nil
}

func (r *prefsRepo) Get(ctx context.Context, ownerID uuid.UUID, name string) (string, bool, error) {
	c, err := r.col(name)
	if err != nil {
		return "", false, err
	}
	v, err := c.get(ctx, ownerID)
	if err != nil || v == nil {
		return "", false, err
	}
	return v.Value, true, nil
}

func (r *prefsRepo) Set(ctx context.Context, ownerID uuid.UUID, name, value string) error {
	c, err := r.col(name)
	if err != nil {
		return err
	}
	return c.put(ctx, types.PrefValue{OwnerID: ownerID, Value: value, UpdatedAt: time.Now().UTC()})
}

func (r *prefsRepo) All(ctx context.Context, ownerID uuid.UUID) (map[string]string, error) {
	out := make(map[string]string, len(PrefNames))
	for _, name := range PrefNames {
		v, ok, err := r.Get(ctx, ownerID, name)
		if err != nil {
			return nil, fmt.Errorf("load pref %s: %w", name, err)
		}
		if ok {
			out[name] = v
		}
	}
	return out, nil
}
