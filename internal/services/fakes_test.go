package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/data/kvstore"
	"github.com/yungbote/onboarding-backend/internal/data/repos"
	"github.com/yungbote/onboarding-backend/internal/data/testutil"
	"github.com/yungbote/onboarding-backend/internal/modules/onboarding/extract"
	"github.com/yungbote/onboarding-backend/internal/platform/ctxutil"
	"github.com/yungbote/onboarding-backend/internal/platform/gcp"
	"github.com/yungbote/onboarding-backend/internal/platform/gemini"
)

type completeFunc func(ctx context.Context, prompt string, att *gemini.Attachment) (string, error)

type fakeCompleter struct {
	mu      sync.Mutex
	fn      completeFunc
	prompts []string
	atts    []*gemini.Attachment
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, att *gemini.Attachment) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.atts = append(f.atts, att)
	fn := f.fn
	f.mu.Unlock()
	return fn(ctx, prompt, att)
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeBlobs struct {
	mu      sync.Mutex
	err     error
	keys    []string
	deleted []string
}

func (f *fakeBlobs) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.mu.Unlock()
	return "https://storage.example.com/bucket/" + key, nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, key)
	f.mu.Unlock()
	return f.err
}

type fakeMirror struct {
	mu      sync.Mutex
	err     error
	upserts map[string]map[string]any
	deletes []string
}

func (f *fakeMirror) Upsert(_ context.Context, collection, id string, data map[string]any) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upserts == nil {
		f.upserts = map[string]map[string]any{}
	}
	f.upserts[collection+"/"+id] = data
	return nil
}

func (f *fakeMirror) Delete(_ context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, collection+"/"+id)
	return f.err
}

func (f *fakeMirror) Close() error { return nil }

var _ gcp.DocumentMirror = (*fakeMirror)(nil)

type fakeDetector struct {
	text string
	err  error
	mu   sync.Mutex
	seen []string
}

func (f *fakeDetector) DetectText(_ context.Context, _ []byte, mimeType string) (string, error) {
	f.mu.Lock()
	f.seen = append(f.seen, mimeType)
	f.mu.Unlock()
	return f.text, f.err
}

func (f *fakeDetector) Close() error { return nil }

func newTestRepos(t *testing.T) repos.Set {
	t.Helper()
	log := testutil.Logger(t)
	return repos.New(kvstore.NewGormStore(testutil.SQLite(t), log), log)
}

func ownerCtx(owner uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: owner})
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
}

func newTestExtractor() *extract.Extractor {
	return extract.New(nil).WithClock(fixedClock())
}
