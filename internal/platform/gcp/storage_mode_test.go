package gcp

import (
	"errors"
	"testing"
)

func setStorageEnv(t *testing.T, mode, emulator, minio, bucket string) {
	t.Helper()
	t.Setenv("OBJECT_STORAGE_MODE", mode)
	t.Setenv("STORAGE_EMULATOR_HOST", emulator)
	t.Setenv("MINIO_ENDPOINT", minio)
	t.Setenv("DOCUMENTS_BUCKET", bucket)
}

func TestResolveObjectStorageConfigFromEnvDefaultLocal(t *testing.T) {
	setStorageEnv(t, "", "", "", "")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeLocal {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeLocal, cfg.Mode)
	}
}

func TestResolveObjectStorageConfigFromEnvDefaultGCSWithBucket(t *testing.T) {
	setStorageEnv(t, "", "", "", "onboarding-docs")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCS, cfg.Mode)
	}
	if cfg.ModeSource() != "explicit_or_default" {
		t.Fatalf("mode source: want=explicit_or_default got=%q", cfg.ModeSource())
	}
}

func TestResolveObjectStorageConfigFromEnvCompatibilityFallback(t *testing.T) {
	setStorageEnv(t, "", "http://fake-gcs:4443", "", "onboarding-docs")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCSEmulator {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCSEmulator, cfg.Mode)
	}
	if !cfg.CompatibilityFallback {
		t.Fatalf("compatibility fallback: want=true got=false")
	}
}

func TestResolveObjectStorageConfigFromEnvMinIO(t *testing.T) {
	setStorageEnv(t, "MinIO", "", "localhost:9000", "onboarding-docs")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeMinIO {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeMinIO, cfg.Mode)
	}
}

func TestResolveObjectStorageConfigFromEnvErrors(t *testing.T) {
	cases := []struct {
		name                          string
		mode, emulator, minio, bucket string
		want                          ObjectStorageConfigErrorCode
	}{
		{"invalid mode", "ftp", "", "", "b", ObjectStorageConfigErrorInvalidMode},
		{"missing bucket", "gcs", "", "", "", ObjectStorageConfigErrorMissingBucket},
		{"missing emulator host", "gcs_emulator", "", "", "b", ObjectStorageConfigErrorMissingEmulatorHost},
		{"invalid emulator host", "gcs_emulator", "fake-gcs:4443", "", "b", ObjectStorageConfigErrorInvalidEmulatorHost},
		{"missing minio endpoint", "minio", "", "", "b", ObjectStorageConfigErrorMissingEndpoint},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setStorageEnv(t, tc.mode, tc.emulator, tc.minio, tc.bucket)
			_, err := ResolveObjectStorageConfigFromEnv()
			var cfgErr *ObjectStorageConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error type: want=*ObjectStorageConfigError got=%T (%v)", err, err)
			}
			if cfgErr.Code != tc.want {
				t.Fatalf("code: want=%q got=%q", tc.want, cfgErr.Code)
			}
		})
	}
}
