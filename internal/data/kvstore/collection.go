package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// Owned records can be filtered by owner after deserialisation.
type Owned interface {
	Owner() uuid.UUID
}

// Locks hands out one lock per collection name. Every Collection built from
// the same Locks shares it, so read-modify-write on a name is serialised
// within the process.
type Locks struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewLocks() *Locks {
	return &Locks{locks: map[string]chan struct{}{}}
}

func (l *Locks) forName(name string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[name]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[name] = ch
	}
	return ch
}

type Collection[T Owned] struct {
	name  string
	store Store
	lock  chan struct{}
	log   *logger.Logger
}

func NewCollection[T Owned](store Store, locks *Locks, name string, baseLog *logger.Logger) *Collection[T] {
	return &Collection[T]{
		name:  name,
		store: store,
		lock:  locks.forName(name),
		log:   baseLog.With("collection", name),
	}
}

func (c *Collection[T]) Name() string { return c.name }

func (c *Collection[T]) acquire(ctx context.Context) error {
	select {
	case c.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Collection[T]) release() { <-c.lock }

func (c *Collection[T]) readAll(ctx context.Context) ([]T, error) {
	raw, ok, err := c.store.Get(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", c.name, err)
	}
	items := []T{}
	if !ok || len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", c.name, err)
	}
	return items, nil
}

func (c *Collection[T]) writeAll(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", c.name, err)
	}
	if err := c.store.Put(ctx, c.name, raw); err != nil {
		return fmt.Errorf("write collection %s: %w", c.name, err)
	}
	return nil
}

// Load returns the owner's items in insertion order.
func (c *Collection[T]) Load(ctx context.Context, ownerID uuid.UUID) ([]T, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()
	all, err := c.readAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(all))
	for _, it := range all {
		if it.Owner() == ownerID {
			out = append(out, it)
		}
	}
	return out, nil
}

// Save replaces the whole collection with items.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()
	return c.writeAll(ctx, items)
}

// Update runs fn against the full collection under the collection lock and
// writes back its result. An error from fn leaves the stored value untouched.
func (c *Collection[T]) Update(ctx context.Context, fn func(all []T) ([]T, error)) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()
	all, err := c.readAll(ctx)
	if err != nil {
		return err
	}
	next, err := fn(all)
	if err != nil {
		return err
	}
	return c.writeAll(ctx, next)
}

// UpdatePair runs fn against two collections while holding both locks, so
// records moving between them are never seen twice or lost. Locks are taken
// in name order; every caller uses the same order.
//
// Writes are not transactional: a is written before b. If b's write fails,
// a keeps its new contents and b its old ones, so a record moving from a to
// b is dropped rather than stored in both.
func UpdatePair[A, B Owned](ctx context.Context, a *Collection[A], b *Collection[B], fn func(as []A, bs []B) ([]A, []B, error)) error {
	if a.name == b.name {
		return fmt.Errorf("update pair: collection %s given twice", a.name)
	}
	first, second := a.acquire, b.acquire
	firstRelease, secondRelease := a.release, b.release
	if b.name < a.name {
		first, second = second, first
		firstRelease, secondRelease = secondRelease, firstRelease
	}
	if err := first(ctx); err != nil {
		return err
	}
	defer firstRelease()
	if err := second(ctx); err != nil {
		return err
	}
	defer secondRelease()

	as, err := a.readAll(ctx)
	if err != nil {
		return err
	}
	bs, err := b.readAll(ctx)
	if err != nil {
		return err
	}
	nextA, nextB, err := fn(as, bs)
	if err != nil {
		return err
	}
	if err := a.writeAll(ctx, nextA); err != nil {
		return err
	}
	return b.writeAll(ctx, nextB)
}
