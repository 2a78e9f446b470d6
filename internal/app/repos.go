package app

import (
	"github.com/yungbote/onboarding-backend/internal/data/kvstore"
	"github.com/yungbote/onboarding-backend/internal/data/repos"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

func wireRepos(store kvstore.Store, log *logger.Logger) repos.Set {
	log.Info("Wiring repos...")
	return repos.New(store, log)
}
