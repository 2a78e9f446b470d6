package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindsSurviveWrapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		target error
		status int
		code   string
	}{
		{"auth", AuthRequired("missing token"), ErrAuthRequired, http.StatusUnauthorized, "auth_required"},
		{"validation", Validation("title is required"), ErrValidation, http.StatusBadRequest, "validation_error"},
		{"completion", CompletionFailed(errors.New("503")), ErrCompletionFailed, http.StatusBadGateway, "completion_failed"},
		{"upload", UploadDegraded(errors.New("bucket down")), ErrUploadDegraded, http.StatusAccepted, "upload_degraded"},
		{"not found", NotFound("goal"), ErrNotFound, http.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tc.err)
			if !errors.Is(wrapped, tc.target) {
				t.Fatalf("errors.Is: want true for %v", tc.target)
			}
			status, code := Classify(wrapped)
			if status != tc.status || code != tc.code {
				t.Fatalf("classify: want=%d/%s got=%d/%s", tc.status, tc.code, status, code)
			}
		})
	}
}

func TestClassifyBareSentinel(t *testing.T) {
	status, code := Classify(fmt.Errorf("x: %w", ErrAuthRequired))
	if status != http.StatusUnauthorized || code != "auth_required" {
		t.Fatalf("classify: want=401/auth_required got=%d/%s", status, code)
	}
	status, _ = Classify(errors.New("boom"))
	if status != http.StatusInternalServerError {
		t.Fatalf("classify unknown: want=500 got=%d", status)
	}
}
