package logger

import (
	"strings"
	"testing"
)

func TestScrubberRedactsSecretsAndHashesOwners(t *testing.T) {
	s := &scrubber{enabled: true, salt: "pepper"}
	out := s.kvs([]interface{}{"api_key", "abc", "owner_id", "u-1", "file_name", "policy.pdf"})
	if len(out) != 6 {
		t.Fatalf("len: want=6 got=%d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("api_key: want=[REDACTED] got=%v", out[1])
	}
	hashed, _ := out[3].(string)
	if !strings.HasPrefix(hashed, "hash:") || strings.Contains(hashed, "u-1") {
		t.Fatalf("owner_id: want hashed value got=%v", out[3])
	}
	if out[5] != "policy.pdf" {
		t.Fatalf("file_name: want=%q got=%v", "policy.pdf", out[5])
	}
}

func TestScrubberDisabledPassesThrough(t *testing.T) {
	s := &scrubber{enabled: false}
	in := []interface{}{"token", "raw"}
	out := s.kvs(in)
	if out[1] != "raw" {
		t.Fatalf("token: want=raw got=%v", out[1])
	}
}

func TestScrubberRedactsJWTShapedValues(t *testing.T) {
	s := &scrubber{enabled: true}
	jwtish := "eyJhbGciOiJIUzI1NiJ9.eyJ1c2VyX2lkIjoiYWJjIn0.sig"
	out := s.kvs([]interface{}{"header", jwtish})
	if out[1] != "[REDACTED]" {
		t.Fatalf("jwt value: want=[REDACTED] got=%v", out[1])
	}
}

func TestNewRespectsLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	log, err := New("development")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.SugaredLogger.Desugar().Core().Enabled(-1) {
		t.Fatalf("debug level: want disabled got enabled")
	}
}
