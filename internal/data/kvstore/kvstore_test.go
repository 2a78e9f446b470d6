package kvstore_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/data/kvstore"
	"github.com/yungbote/onboarding-backend/internal/data/testutil"
)

type item struct {
	ID      int       `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`
}

func (i item) Owner() uuid.UUID { return i.OwnerID }

func exerciseStore(t *testing.T, store kvstore.Store) {
	t.Helper()
	ctx := context.Background()
	key := "test-" + uuid.NewString()

	if _, ok, err := store.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get missing: want ok=false err=nil got ok=%v err=%v", ok, err)
	}
	if err := store.Put(ctx, key, []byte(`[1]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, key, []byte(`[1,2]`)); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err := store.Get(ctx, key)
	if err != nil || !ok || string(got) != `[1,2]` {
		t.Fatalf("Get: want=[1,2] got=%s ok=%v err=%v", got, ok, err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, key); ok {
		t.Fatalf("Get after delete: want ok=false")
	}
}

func TestGormStoreSQLite(t *testing.T) {
	exerciseStore(t, kvstore.NewGormStore(testutil.SQLite(t), testutil.Logger(t)))
}

func TestGormStorePostgres(t *testing.T) {
	gdb := testutil.Tx(t, testutil.Postgres(t))
	exerciseStore(t, kvstore.NewGormStore(gdb, testutil.Logger(t)))
}

func TestRedisStore(t *testing.T) {
	rdb := testutil.Redis(t)
	exerciseStore(t, kvstore.NewRedisStore(rdb, "onboarding:test:"+uuid.NewString()+":", testutil.Logger(t)))
}

func newCollection(t *testing.T) *kvstore.Collection[item] {
	t.Helper()
	store := kvstore.NewGormStore(testutil.SQLite(t), testutil.Logger(t))
	return kvstore.NewCollection[item](store, kvstore.NewLocks(), "items", testutil.Logger(t))
}

func TestSaveLoadFiltersByOwnerInOrder(t *testing.T) {
	ctx := context.Background()
	c := newCollection(t)
	alice, bob := uuid.New(), uuid.New()
	items := []item{{1, alice}, {2, bob}, {3, alice}, {4, bob}, {5, alice}}
	if err := c.Save(ctx, items); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := c.Load(ctx, alice)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []int{1, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("Load: want=%d items got=%d", len(want), len(got))
	}
	for i, it := range got {
		if it.ID != want[i] || it.OwnerID != alice {
			t.Fatalf("item %d: want id=%d got=%+v", i, want[i], it)
		}
	}
	empty, err := c.Load(ctx, uuid.New())
	if err != nil || len(empty) != 0 {
		t.Fatalf("Load unknown owner: want empty got=%v err=%v", empty, err)
	}
}

func TestLoadMissingCollectionIsEmpty(t *testing.T) {
	got, err := newCollection(t).Load(context.Background(), uuid.New())
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("Load: want empty non-nil slice got=%v err=%v", got, err)
	}
}

func TestUpdateIsAtomicUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	c := newCollection(t)
	owner := uuid.New()
	const writers = 40

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- c.Update(ctx, func(all []item) ([]item, error) {
				return append(all, item{ID: n, OwnerID: owner}), nil
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	got, err := c.Load(ctx, owner)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != writers {
		t.Fatalf("lost updates: want=%d got=%d", writers, len(got))
	}
}

func TestUpdateErrorLeavesCollectionUntouched(t *testing.T) {
	ctx := context.Background()
	c := newCollection(t)
	owner := uuid.New()
	if err := c.Save(ctx, []item{{1, owner}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	boom := errors.New("boom")
	err := c.Update(ctx, func(all []item) ([]item, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update: want boom got=%v", err)
	}
	got, _ := c.Load(ctx, owner)
	if len(got) != 1 {
		t.Fatalf("collection changed after failed update: got=%v", got)
	}
}

func TestUpdateHonoursCancellationWhileLocked(t *testing.T) {
	c := newCollection(t)
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = c.Update(context.Background(), func(all []item) ([]item, error) {
			close(started)
			<-release
			return all, nil
		})
	}()
	<-started
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Update(ctx, func(all []item) ([]item, error) { return all, nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Update: want DeadlineExceeded got=%v", err)
	}
}

func TestCollectionsShareLocksByName(t *testing.T) {
	store := kvstore.NewGormStore(testutil.SQLite(t), testutil.Logger(t))
	locks := kvstore.NewLocks()
	a := kvstore.NewCollection[item](store, locks, "shared", testutil.Logger(t))
	b := kvstore.NewCollection[item](store, locks, "shared", testutil.Logger(t))
	owner := uuid.New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		c := a
		if i%2 == 1 {
			c = b
		}
		go func(n int) {
			defer wg.Done()
			if err := c.Update(ctx, func(all []item) ([]item, error) {
				return append(all, item{ID: n, OwnerID: owner}), nil
			}); err != nil {
				t.Errorf("Update %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()
	got, _ := a.Load(ctx, owner)
	if len(got) != 20 {
		t.Fatalf("shared lock: want=20 got=%d (%s)", len(got), fmt.Sprint(got))
	}
}

func TestUpdatePairConservesRecordsAcrossCollections(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewGormStore(testutil.SQLite(t), testutil.Logger(t))
	locks := kvstore.NewLocks()
	left := kvstore.NewCollection[item](store, locks, "left", testutil.Logger(t))
	right := kvstore.NewCollection[item](store, locks, "right", testutil.Logger(t))
	owner := uuid.New()
	const total = 30
	seed := make([]item, 0, total)
	for i := 0; i < total; i++ {
		seed = append(seed, item{ID: i, OwnerID: owner})
	}
	if err := left.Save(ctx, seed); err != nil {
		t.Fatalf("Save: %v", err)
	}

	move := func(from []item, to []item) ([]item, []item) {
		if len(from) == 0 {
			return from, to
		}
		return from[1:], append(to, from[0])
	}
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			var err error
			// alternate argument order; lock order must not depend on it
			if n%2 == 0 {
				err = kvstore.UpdatePair(ctx, left, right, func(l, r []item) ([]item, []item, error) {
					l, r = move(l, r)
					return l, r, nil
				})
			} else {
				err = kvstore.UpdatePair(ctx, right, left, func(r, l []item) ([]item, []item, error) {
					r, l = move(r, l)
					return r, l, nil
				})
			}
			if err != nil {
				t.Errorf("UpdatePair %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	l, _ := left.Load(ctx, owner)
	r, _ := right.Load(ctx, owner)
	if len(l)+len(r) != total {
		t.Fatalf("records: want=%d got=%d (left=%d right=%d)", total, len(l)+len(r), len(l), len(r))
	}
	seen := map[int]bool{}
	for _, it := range append(l, r...) {
		if seen[it.ID] {
			t.Fatalf("record %d present twice", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestUpdatePairRejectsSameCollection(t *testing.T) {
	c := newCollection(t)
	err := kvstore.UpdatePair(context.Background(), c, c, func(a, b []item) ([]item, []item, error) {
		return a, b, nil
	})
	if err == nil {
		t.Fatalf("UpdatePair same collection: want error")
	}
}

type failingPutStore struct {
	kvstore.Store
	failKey string
}

func (s failingPutStore) Put(ctx context.Context, key string, value []byte) error {
	if key == s.failKey {
		return errors.New("write refused")
	}
	return s.Store.Put(ctx, key, value)
}

func TestUpdatePairWritesFirstCollectionFirst(t *testing.T) {
	ctx := context.Background()
	base := kvstore.NewGormStore(testutil.SQLite(t), testutil.Logger(t))
	store := failingPutStore{Store: base, failKey: "history"}
	locks := kvstore.NewLocks()
	current := kvstore.NewCollection[item](store, locks, "current", testutil.Logger(t))
	history := kvstore.NewCollection[item](store, locks, "history", testutil.Logger(t))
	owner := uuid.New()
	if err := current.Save(ctx, []item{{ID: 1, OwnerID: owner}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	err := kvstore.UpdatePair(ctx, current, history, func(cur, hist []item) ([]item, []item, error) {
		return []item{{ID: 2, OwnerID: owner}}, append(hist, cur...), nil
	})
	if err == nil {
		t.Fatalf("UpdatePair: want error from failed history write")
	}

	cur, _ := current.Load(ctx, owner)
	hist, _ := history.Load(ctx, owner)
	if len(cur) != 1 || cur[0].ID != 2 {
		t.Fatalf("current: want=[2] got=%v", cur)
	}
	if len(hist) != 0 {
		t.Fatalf("history: want=[] got=%v", hist)
	}
}
