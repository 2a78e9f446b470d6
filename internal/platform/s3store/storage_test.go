package s3store

import (
	"testing"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MINIO_REGION", "")
	t.Setenv("DOCUMENTS_BUCKET", "onboarding-docs")

	cfg := ConfigFromEnv()
	if cfg.Endpoint != "localhost:9000" || !cfg.UseSSL {
		t.Fatalf("config: got=%+v", cfg)
	}
	if cfg.Region != "us-east-1" {
		t.Fatalf("region default: want=us-east-1 got=%q", cfg.Region)
	}
}

func TestObjectURL(t *testing.T) {
	cfg := Config{Endpoint: "localhost:9000", Bucket: "docs"}
	if got := ObjectURL(cfg, "/documents/x/a.pdf"); got != "http://localhost:9000/docs/documents/x/a.pdf" {
		t.Fatalf("ObjectURL: got=%q", got)
	}
	cfg.UseSSL = true
	if got := ObjectURL(cfg, "k"); got != "https://localhost:9000/docs/k" {
		t.Fatalf("ObjectURL ssl: got=%q", got)
	}
}

func TestNewRequiresEndpointAndBucket(t *testing.T) {
	if _, err := New(logger.NewNop(), Config{Endpoint: "localhost:9000"}); err == nil {
		t.Fatalf("expected error without bucket")
	}
}
