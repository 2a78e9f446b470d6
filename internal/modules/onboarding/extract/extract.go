// Package extract turns raw completion text into summaries, quizzes and
// study plans. Every extractor is total: malformed or missing model output
// yields the deterministic fallback artifact instead of an error.
package extract

import (
	"fmt"
	"time"

	"github.com/yungbote/onboarding-backend/internal/modules/onboarding/catalog"
)

// Result wraps an artifact with whether it came from the fallback path.
type Result[T any] struct {
	Value    T
	Fallback bool
	Reason   string
}

// InvalidArtifactError is the Invalid side of the validation boundary.
type InvalidArtifactError struct {
	Artifact string
	Reason   string
}

func (e *InvalidArtifactError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Artifact, e.Reason)
}

func invalid(artifact, format string, args ...any) error {
	return &InvalidArtifactError{Artifact: artifact, Reason: fmt.Sprintf(format, args...)}
}

type Extractor struct {
	cat *catalog.Catalog
	now func() time.Time
}

func New(cat *catalog.Catalog) *Extractor {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Extractor{cat: cat, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock pins the timestamp source, mainly for tests.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	cp := *e
	cp.now = now
	return &cp
}

func (e *Extractor) Catalog() *catalog.Catalog { return e.cat }
