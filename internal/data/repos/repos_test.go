package repos_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/data/kvstore"
	"github.com/yungbote/onboarding-backend/internal/data/repos"
	"github.com/yungbote/onboarding-backend/internal/data/testutil"
	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
)

func newSet(t *testing.T) repos.Set {
	t.Helper()
	log := testutil.Logger(t)
	store := kvstore.NewGormStore(testutil.SQLite(t), log)
	return repos.New(store, log)
}

func TestGoalProgressSurvivesReload(t *testing.T) {
	ctx := context.Background()
	log := testutil.Logger(t)
	store := kvstore.NewGormStore(testutil.SQLite(t), log)

	owner := uuid.New()
	goal := types.Goal{ID: uuid.New(), OwnerID: owner, Title: "Finish compliance training"}
	if err := repos.NewGoalRepo(store, kvstore.NewLocks(), log).Create(ctx, goal); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repos.NewGoalRepo(store, kvstore.NewLocks(), log).Update(ctx, owner, goal.ID, func(g *types.Goal) error {
		g.ProgressPercent = types.ClampProgress(75)
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	// fresh repo over the same store
	got, err := repos.NewGoalRepo(store, kvstore.NewLocks(), log).ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ProgressPercent != 75 {
		t.Fatalf("progress after reload: want=75 got=%+v", got)
	}
}

func TestGoalMissingIsNotFound(t *testing.T) {
	set := newSet(t)
	_, err := set.Goals.Update(context.Background(), uuid.New(), uuid.New(), func(*types.Goal) error { return nil })
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("update missing: want=ErrNotFound got=%v", err)
	}
	if err := set.Goals.Delete(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("delete missing: want=ErrNotFound got=%v", err)
	}
}

func TestDocumentsScopedToOwner(t *testing.T) {
	ctx := context.Background()
	set := newSet(t)
	alice, bob := uuid.New(), uuid.New()
	doc := types.Document{ID: uuid.New(), OwnerID: alice, FileName: "handbook.pdf", FileKind: types.FileKindPDF}
	if err := set.Documents.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := set.Documents.GetByID(ctx, bob, doc.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("cross-owner get: want=ErrNotFound got=%v", err)
	}
	if err := set.Documents.Delete(ctx, bob, doc.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("cross-owner delete: want=ErrNotFound got=%v", err)
	}

	updated, err := set.Documents.Update(ctx, alice, doc.ID, func(d *types.Document) error {
		d.Summary = "Read the handbook."
		return nil
	})
	if err != nil || updated.Summary != "Read the handbook." {
		t.Fatalf("update summary: err=%v got=%+v", err, updated)
	}
	if err := set.Documents.Delete(ctx, alice, doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	docs, _ := set.Documents.ListByOwner(ctx, alice)
	if len(docs) != 0 {
		t.Fatalf("after delete: want=0 got=%d", len(docs))
	}
}

func TestQuizReplaceClearsAnswerState(t *testing.T) {
	ctx := context.Background()
	set := newSet(t)
	owner := uuid.New()
	first := types.Quiz{ID: uuid.New(), OwnerID: owner}
	if err := set.Quizzes.Replace(ctx, first); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := set.Quizzes.SetAnswers(ctx, types.QuizAnswers{OwnerID: owner, QuizID: first.ID, Answers: []int{1}}); err != nil {
		t.Fatalf("answers: %v", err)
	}
	if err := set.Quizzes.SetSubmitted(ctx, types.QuizSubmitted{OwnerID: owner, QuizID: first.ID, Submitted: true}); err != nil {
		t.Fatalf("submitted: %v", err)
	}

	second := types.Quiz{ID: uuid.New(), OwnerID: owner}
	if err := set.Quizzes.Replace(ctx, second); err != nil {
		t.Fatalf("replace again: %v", err)
	}
	cur, _ := set.Quizzes.Current(ctx, owner)
	if cur == nil || cur.ID != second.ID {
		t.Fatalf("current: want=%s got=%+v", second.ID, cur)
	}
	if a, _ := set.Quizzes.Answers(ctx, owner); a != nil {
		t.Fatalf("answers after replace: want=nil got=%+v", a)
	}
	if s, _ := set.Quizzes.Submitted(ctx, owner); s != nil {
		t.Fatalf("submitted after replace: want=nil got=%+v", s)
	}
}

func plan(owner uuid.UUID) types.StudyPlan {
	return types.StudyPlan{
		ID:      uuid.New(),
		OwnerID: owner,
		Days: []types.StudyDay{{DayNumber: 1, Sessions: []types.StudySession{
			{ID: types.SessionID(1, 0), Kind: types.SessionStudy, DurationMinutes: 20},
			{ID: types.SessionID(1, 1), Kind: types.SessionReview, DurationMinutes: 15},
		}}},
		Timestamp: time.Now().UTC(),
	}
}

func TestStudyPlanHistoryAndMutate(t *testing.T) {
	ctx := context.Background()
	set := newSet(t)
	owner := uuid.New()
	p1, p2 := plan(owner), plan(owner)

	if err := set.StudyPlans.SetCurrent(ctx, p1); err != nil {
		t.Fatalf("set p1: %v", err)
	}
	if err := set.StudyPlans.SetCurrent(ctx, p2); err != nil {
		t.Fatalf("set p2: %v", err)
	}
	hist, _ := set.StudyPlans.History(ctx, owner)
	if len(hist) != 1 || hist[0].ID != p1.ID {
		t.Fatalf("history: want=[%s] got=%+v", p1.ID, hist)
	}

	toggle := func(p *types.StudyPlan) error { return p.ToggleSession(types.SessionID(1, 0)) }
	got, err := set.StudyPlans.Mutate(ctx, owner, p1.ID, toggle)
	if err != nil {
		t.Fatalf("mutate history: %v", err)
	}
	if got.ProgressPercent != 50 {
		t.Fatalf("history progress: want=50 got=%d", got.ProgressPercent)
	}
	cur, _ := set.StudyPlans.Current(ctx, owner)
	if cur.ProgressPercent != 0 {
		t.Fatalf("current untouched: want=0 got=%d", cur.ProgressPercent)
	}

	if _, err := set.StudyPlans.Mutate(ctx, owner, uuid.New(), toggle); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("mutate missing: want=ErrNotFound got=%v", err)
	}
}

// slowStore widens the window between read and write of every update.
type slowStore struct {
	kvstore.Store
	delay time.Duration
}

func (s slowStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	time.Sleep(s.delay)
	return s.Store.Get(ctx, key)
}

func TestStudyPlanConcurrentSetCurrentKeepsEveryPlan(t *testing.T) {
	ctx := context.Background()
	log := testutil.Logger(t)
	store := slowStore{Store: kvstore.NewGormStore(testutil.SQLite(t), log), delay: 2 * time.Millisecond}
	set := repos.New(store, log)
	owner := uuid.New()
	a, b, c := plan(owner), plan(owner), plan(owner)

	if err := set.StudyPlans.SetCurrent(ctx, a); err != nil {
		t.Fatalf("set a: %v", err)
	}
	var wg sync.WaitGroup
	for _, p := range []types.StudyPlan{b, c} {
		wg.Add(1)
		go func(p types.StudyPlan) {
			defer wg.Done()
			if err := set.StudyPlans.SetCurrent(ctx, p); err != nil {
				t.Errorf("set %s: %v", p.ID, err)
			}
		}(p)
	}
	wg.Wait()

	cur, err := set.StudyPlans.Current(ctx, owner)
	if err != nil || cur == nil {
		t.Fatalf("current: got=%v err=%v", cur, err)
	}
	hist, _ := set.StudyPlans.History(ctx, owner)
	if len(hist) != 2 {
		t.Fatalf("history: want=2 got=%d", len(hist))
	}
	loser := b.ID
	if cur.ID == b.ID {
		loser = c.ID
	}
	if hist[0].ID != loser || hist[1].ID != a.ID {
		t.Fatalf("history order: want=[%s %s] got=[%s %s]", loser, a.ID, hist[0].ID, hist[1].ID)
	}
}

func TestStudyPlanMutateDuringSetCurrentKeepsToggle(t *testing.T) {
	ctx := context.Background()
	log := testutil.Logger(t)
	store := slowStore{Store: kvstore.NewGormStore(testutil.SQLite(t), log), delay: 2 * time.Millisecond}
	set := repos.New(store, log)
	owner := uuid.New()
	a, b := plan(owner), plan(owner)
	if err := set.StudyPlans.SetCurrent(ctx, a); err != nil {
		t.Fatalf("set a: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := set.StudyPlans.SetCurrent(ctx, b); err != nil {
			t.Errorf("set b: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := set.StudyPlans.Mutate(ctx, owner, a.ID, func(p *types.StudyPlan) error {
			return p.ToggleSession(types.SessionID(1, 0))
		}); err != nil {
			t.Errorf("mutate a: %v", err)
		}
	}()
	wg.Wait()

	hist, _ := set.StudyPlans.History(ctx, owner)
	if len(hist) != 1 || hist[0].ID != a.ID {
		t.Fatalf("history: want=[%s] got=%+v", a.ID, hist)
	}
	if hist[0].ProgressPercent != 50 {
		t.Fatalf("archived toggle: want=50 got=%d", hist[0].ProgressPercent)
	}
}

func TestPrefsRoundTrip(t *testing.T) {
	ctx := context.Background()
	set := newSet(t)
	owner := uuid.New()
	if err := set.Prefs.Set(ctx, owner, repos.PrefActiveTab, "quiz"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := set.Prefs.Set(ctx, owner, repos.PrefActiveTab, "plan"); err != nil {
		t.Fatalf("set again: %v", err)
	}
	v, ok, err := set.Prefs.Get(ctx, owner, repos.PrefActiveTab)
	if err != nil || !ok || v != "plan" {
		t.Fatalf("get: want=plan got=%q ok=%v err=%v", v, ok, err)
	}
	if err := set.Prefs.Set(ctx, owner, "theme", "dark"); err == nil {
		t.Fatalf("unknown pref: want error")
	}
	all, _ := set.Prefs.All(ctx, owner)
	if len(all) != 1 {
		t.Fatalf("all: want=1 got=%v", all)
	}
}
