package app

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/onboarding-backend/internal/data/db"
	"github.com/yungbote/onboarding-backend/internal/platform/envutil"
	"github.com/yungbote/onboarding-backend/internal/platform/gemini"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/platform/s3store"
)

const (
	KVBackendSQL   = "sql"
	KVBackendRedis = "redis"
)

type Config struct {
	Environment string
	Version     string
	HTTPAddr    string
	MetricsAddr string

	JWTSecretKey   string
	JWTIssuer      string
	AllowedOrigins []string

	KVBackend     string
	DB            db.Config
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	ObjectStorageMode   string
	StorageEmulatorHost string
	DocumentsBucket     string
	MinIO               s3store.Config

	FirestoreProjectID string
	VisionOCR          bool
	CalendarEndpoint   string
	Gemini             gemini.Config

	UploadTimeout   time.Duration
	CalendarTimeout time.Duration
	MaxUploadBytes  int64
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig(log *logger.Logger) Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Failed to load .env", "error", err)
	}
	return Config{
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
		HTTPAddr:    envutil.String("HTTP_ADDR", ":8080"),
		MetricsAddr: envutil.String("METRICS_ADDR", ""),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", ""),
		JWTIssuer:      envutil.String("JWT_ISSUER", ""),
		AllowedOrigins: splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),

		KVBackend:     strings.ToLower(envutil.String("KV_BACKEND", KVBackendSQL)),
		DB:            db.ConfigFromEnv(),
		RedisAddr:     envutil.String("REDIS_ADDR", "localhost:6379"),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
		RedisDB:       envutil.Int("REDIS_DB", 0),
		RedisPrefix:   envutil.String("REDIS_PREFIX", "onboarding"),

		ObjectStorageMode:   strings.ToLower(envutil.String("OBJECT_STORAGE_MODE", "")),
		StorageEmulatorHost: envutil.String("STORAGE_EMULATOR_HOST", ""),
		DocumentsBucket:     envutil.String("DOCUMENTS_BUCKET", ""),
		MinIO:               s3store.ConfigFromEnv(),

		FirestoreProjectID: envutil.String("FIRESTORE_PROJECT_ID", envutil.String("GCP_PROJECT_ID", "")),
		VisionOCR:          envutil.Bool("VISION_OCR_ENABLED", false),
		CalendarEndpoint:   envutil.String("CALENDAR_ENDPOINT", ""),
		Gemini:             gemini.ConfigFromEnv(),

		UploadTimeout:   envutil.Duration("UPLOAD_TIMEOUT", 30*time.Second),
		CalendarTimeout: envutil.Duration("CALENDAR_TIMEOUT", 15*time.Second),
		MaxUploadBytes:  int64(envutil.Int("MAX_UPLOAD_BYTES", 20<<20)),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
