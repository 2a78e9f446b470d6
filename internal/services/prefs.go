package services

import (
	"context"
	"strings"

	"github.com/yungbote/onboarding-backend/internal/data/repos"
	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

const maxPrefValueLen = 64

// writablePrefs are the UI preferences a client may set. extracted-text and
// summary are written by the pipeline only.
var writablePrefs = map[string]struct{}{
	repos.PrefActiveTab:  {},
	repos.PrefUploadType: {},
}

type PrefsService interface {
	Get(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, values map[string]string) (map[string]string, error)
}

type prefsService struct {
	log   *logger.Logger
	prefs repos.PrefsRepo
}

func NewPrefsService(log *logger.Logger, prefs repos.PrefsRepo) PrefsService {
	return &prefsService{log: log.With("service", "PrefsService"), prefs: prefs}
}

func (ps *prefsService) Get(ctx context.Context) (map[string]string, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	return ps.prefs.All(ctx, owner)
}

func (ps *prefsService) Set(ctx context.Context, values map[string]string) (map[string]string, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, apierr.Validation("no preferences given")
	}
	clean := make(map[string]string, len(values))
	for name, v := range values {
		if _, ok := writablePrefs[name]; !ok {
			return nil, apierr.Validation("preference %q is not writable", name)
		}
		v = strings.TrimSpace(v)
		if v == "" || len(v) > maxPrefValueLen {
			return nil, apierr.Validation("preference %q must be 1-%d characters", name, maxPrefValueLen)
		}
		if name == repos.PrefUploadType {
			kind, ok := types.ParseFileKind(v)
			if !ok {
				return nil, apierr.Validation("unsupported upload type %q", v)
			}
			v = string(kind)
		}
		clean[name] = v
	}
	for name, v := range clean {
		if err := ps.prefs.Set(ctx, owner, name, v); err != nil {
			return nil, err
		}
	}
	return ps.prefs.All(ctx, owner)
}
