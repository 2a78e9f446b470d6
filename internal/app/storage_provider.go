package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/yungbote/onboarding-backend/internal/platform/gcp"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/platform/s3store"
)

// objectStore is what the pipeline needs from a bucket plus Close.
type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

var (
	newGCSBucket = func(ctx context.Context, log *logger.Logger, cfg gcp.ObjectStorageConfig) (objectStore, error) {
		return gcp.NewBucketService(ctx, log, cfg)
	}
	newMinIOStore = func(ctx context.Context, log *logger.Logger, cfg s3store.Config) (objectStore, error) {
		st, err := s3store.New(log, cfg)
		if err != nil {
			return nil, err
		}
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return st, nil
	}
)

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorMisconfigured       StorageProviderBootstrapErrorCode = "misconfigured"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func objectStorageConfig(cfg Config) gcp.ObjectStorageConfig {
	sc := gcp.ObjectStorageConfig{
		Mode:          gcp.ObjectStorageMode(cfg.ObjectStorageMode),
		EmulatorHost:  cfg.StorageEmulatorHost,
		MinIOEndpoint: cfg.MinIO.Endpoint,
		Bucket:        cfg.DocumentsBucket,
	}
	if sc.Mode == "" {
		switch {
		case sc.EmulatorHost != "":
			sc.Mode = gcp.ObjectStorageModeGCSEmulator
			sc.CompatibilityFallback = true
		case sc.Bucket != "":
			sc.Mode = gcp.ObjectStorageModeGCS
		default:
			sc.Mode = gcp.ObjectStorageModeLocal
		}
	}
	return sc
}

// resolveObjectStore returns nil in local mode; uploads then degrade to
// local-only previews.
func resolveObjectStore(ctx context.Context, log *logger.Logger, cfg Config) (objectStore, error) {
	storageCfg := objectStorageConfig(cfg)
	if err := gcp.ValidateObjectStorageConfig(storageCfg); err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider selection failed",
			"mode", storageCfg.Mode,
			"mode_source", storageCfg.ModeSource(),
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}

	log.Info(
		"Selecting object storage provider",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"compatibility_fallback", storageCfg.CompatibilityFallback,
		"bucket", storageCfg.Bucket,
	)

	var (
		store objectStore
		err   error
	)
	switch storageCfg.Mode {
	case gcp.ObjectStorageModeLocal:
		log.Warn("Object storage disabled; uploads stay local-only")
		return nil, nil
	case gcp.ObjectStorageModeMinIO:
		minioCfg := cfg.MinIO
		minioCfg.Bucket = storageCfg.Bucket
		store, err = newMinIOStore(ctx, log, minioCfg)
	default:
		store, err = newGCSBucket(ctx, log, storageCfg)
	}
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", storageCfg.Mode,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return store, nil
}

func classifyStorageProviderBootstrapError(storageCfg gcp.ObjectStorageConfig, err error) error {
	out := &StorageProviderBootstrapError{
		Code:         StorageProviderBootstrapErrorConnectFailed,
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.ObjectStorageConfigErrorInvalidMode:
			out.Code = StorageProviderBootstrapErrorInvalidMode
		case gcp.ObjectStorageConfigErrorMissingEmulatorHost:
			out.Code = StorageProviderBootstrapErrorMissingEmulatorHost
		case gcp.ObjectStorageConfigErrorInvalidEmulatorHost:
			out.Code = StorageProviderBootstrapErrorInvalidEmulatorHost
		default:
			out.Code = StorageProviderBootstrapErrorMisconfigured
		}
	}
	return out
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageProviderBootstrapErrorConnectFailed
}
