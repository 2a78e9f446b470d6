package app

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/onboarding-backend/internal/data/db"
	"github.com/yungbote/onboarding-backend/internal/data/kvstore"
	"github.com/yungbote/onboarding-backend/internal/modules/onboarding/catalog"
	"github.com/yungbote/onboarding-backend/internal/platform/calendar"
	"github.com/yungbote/onboarding-backend/internal/platform/gcp"
	"github.com/yungbote/onboarding-backend/internal/platform/gemini"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/services"
)

type Clients struct {
	DB       *gorm.DB
	Redis    *redis.Client
	KV       kvstore.Store
	Catalog  *catalog.Catalog
	Gemini   gemini.Client
	Blobs    objectStore
	Mirror   gcp.DocumentMirror
	OCR      gcp.TextDetector
	Calendar calendar.Inserter
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// KV backend
	switch cfg.KVBackend {
	case KVBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init redis (%s): %w", cfg.RedisAddr, err)
		}
		out.Redis = rdb
		out.KV = kvstore.NewRedisStore(rdb, cfg.RedisPrefix, log)
	case KVBackendSQL, "":
		gdb, err := db.Open(log, cfg.DB)
		if err != nil {
			return Clients{}, fmt.Errorf("init database: %w", err)
		}
		out.DB = gdb
		out.KV = kvstore.NewGormStore(gdb, log)
	default:
		return Clients{}, fmt.Errorf("unsupported KV_BACKEND %q (allowed: %q, %q)", cfg.KVBackend, KVBackendSQL, KVBackendRedis)
	}

	out.Catalog = catalog.Load(log)

	// Gemini
	gcfg := cfg.Gemini
	gcfg.Preamble = out.Catalog.Preamble
	completer, err := gemini.New(ctx, log, gcfg)
	if err != nil {
		out.Close(log)
		return Clients{}, fmt.Errorf("init gemini client: %w", err)
	}
	out.Gemini = completer

	// Object storage
	blobs, err := resolveObjectStore(ctx, log, cfg)
	if err != nil {
		out.Close(log)
		return Clients{}, err
	}
	out.Blobs = blobs

	// Firestore mirror
	if cfg.FirestoreProjectID != "" {
		mirror, err := gcp.NewFirestoreMirror(ctx, log, cfg.FirestoreProjectID)
		if err != nil {
			out.Close(log)
			return Clients{}, fmt.Errorf("init firestore mirror: %w", err)
		}
		out.Mirror = mirror
	}

	// Image OCR
	if cfg.VisionOCR {
		ocr, err := gcp.NewVisionDetector(ctx, log)
		if err != nil {
			out.Close(log)
			return Clients{}, fmt.Errorf("init vision ocr: %w", err)
		}
		out.OCR = ocr
	}

	out.Calendar = calendar.NewGoogleInserter(log, cfg.CalendarEndpoint)
	return out, nil
}

// blobStore hands the pipeline an untyped nil when storage is local-only.
func (c Clients) blobStore() services.BlobStore {
	if c.Blobs == nil {
		return nil
	}
	return c.Blobs
}

func (c *Clients) Close(log *logger.Logger) {
	if c == nil {
		return
	}
	closeQuietly(log, "gemini", c.Gemini)
	if c.Blobs != nil {
		closeQuietly(log, "object storage", c.Blobs)
	}
	if c.Mirror != nil {
		closeQuietly(log, "firestore", c.Mirror)
	}
	if c.OCR != nil {
		closeQuietly(log, "vision", c.OCR)
	}
	if c.Redis != nil {
		closeQuietly(log, "redis", c.Redis)
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			closeQuietly(log, "database", sqlDB)
		}
	}
}

func closeQuietly(log *logger.Logger, name string, v any) {
	closer, ok := v.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		log.Warn("Close failed", "client", name, "error", err)
	}
}
