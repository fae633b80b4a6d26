package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/events"
	"github.com/noah-isme/wellness-api/internal/kv"
	"github.com/noah-isme/wellness-api/internal/models"
)

// entity constrains P to the pointer type of a stored record.
type entity[T any] interface {
	*T
	models.Record
	Stamp(id string, at time.Time)
}

// Observer receives one call per store operation.
type Observer interface {
	ObserveStoreOp(collection, op string, err error, elapsed time.Duration)
}

// Hooks hold the store-level invariants of a collection.
type Hooks[T any] struct {
	// BeforeAdd may adjust a record before it is stored.
	BeforeAdd func(rec *T, now time.Time)
	// BeforePatch may rewrite the normalised patch applied to prev.
	BeforePatch func(prev T, patch models.Patch, now time.Time)
	// Check validates the record about to be stored against the others.
	Check func(next T, others []T) error
}

// Spec describes one collection.
type Spec[T any] struct {
	Name      string
	IDPrefix  string
	Immutable []string
	// Match reports whether rec belongs to the List filter key. Defaults to
	// comparing the record owner.
	Match func(rec T, key string) bool
	Hooks Hooks[T]
}

// Deps are shared by every collection of a store.
type Deps struct {
	KV        kv.KV
	KeyPrefix string
	IDs       IDGenerator
	Events    events.Publisher
	Observer  Observer
	Clock     func() time.Time
	Logger    *zap.Logger
}

type snapshot[T any] struct {
	raw   string
	found bool
	items []T
	index map[string]int
}

// Collection is a JSON array of T stored under one substrate key. The decoded
// array and its id index are cached until the stored value changes.
type Collection[T any, P entity[T]] struct {
	spec Spec[T]
	key  string
	deps Deps
	log  *zap.Logger

	mu    sync.Mutex
	cache *snapshot[T]
}

// NewCollection binds spec to the shared dependencies.
func NewCollection[T any, P entity[T]](spec Spec[T], deps Deps) *Collection[T, P] {
	if deps.IDs == nil {
		deps.IDs = NewMonotonicIDs()
	}
	if deps.Events == nil {
		deps.Events = events.Discard{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.KV == nil {
		deps.KV = kv.Unavailable{}
	}
	if spec.Match == nil {
		spec.Match = func(rec T, key string) bool { return P(&rec).OwnerID() == key }
	}
	return &Collection[T, P]{
		spec: spec,
		key:  Key(deps.KeyPrefix, spec.Name),
		deps: deps,
		log:  deps.Logger.With(zap.String("collection", spec.Name)),
	}
}

// Name returns the collection name.
func (c *Collection[T, P]) Name() string { return c.spec.Name }

// Key returns the substrate key.
func (c *Collection[T, P]) Key() string { return c.key }

// List returns the records matching key in insertion order, or all records
// when key is empty. The slice is a fresh copy; nested slices are shared with
// the cache and must not be modified.
func (c *Collection[T, P]) List(ctx context.Context, key string) (out []T, err error) {
	defer c.observe("list", time.Now(), &err)
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	out = make([]T, 0, len(snap.items))
	for _, rec := range snap.items {
		if key == "" || c.spec.Match(rec, key) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Get looks a record up by id.
func (c *Collection[T, P]) Get(ctx context.Context, id string) (rec T, found bool, err error) {
	defer c.observe("get", time.Now(), &err)
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.load(ctx)
	if err != nil {
		return rec, false, err
	}
	pos, ok := snap.index[id]
	if !ok {
		return rec, false, nil
	}
	return snap.items[pos], true, nil
}

// Add stamps rec with a fresh id and creation time, appends it and writes the
// collection back.
func (c *Collection[T, P]) Add(ctx context.Context, rec T) (_ T, err error) {
	defer c.observe("add", time.Now(), &err)
	var change *events.Event
	defer c.emit(&change)
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.load(ctx)
	if err != nil {
		return rec, err
	}

	now := c.deps.Clock()
	id := c.deps.IDs.NewID(c.spec.IDPrefix)
	for _, taken := snap.index[id]; taken; _, taken = snap.index[id] {
		id = c.deps.IDs.NewID(c.spec.IDPrefix)
	}
	P(&rec).Stamp(id, now)
	if c.spec.Hooks.BeforeAdd != nil {
		c.spec.Hooks.BeforeAdd(&rec, now)
	}
	if c.spec.Hooks.Check != nil {
		if err := c.spec.Hooks.Check(rec, snap.items); err != nil {
			return rec, err
		}
	}

	next := make([]T, len(snap.items), len(snap.items)+1)
	copy(next, snap.items)
	next = append(next, rec)
	if err := c.save(ctx, next); err != nil {
		return rec, err
	}
	change = c.event(events.OpAdd, id, &rec, now)
	return rec, nil
}

// Update shallow-merges patch into the record with id. A nil patch value
// clears the field; the id and creation timestamp never change. found is
// false, and nothing is written, when no record has the id.
func (c *Collection[T, P]) Update(ctx context.Context, id string, patch models.Patch) (rec T, found bool, err error) {
	defer c.observe("update", time.Now(), &err)
	var change *events.Event
	defer c.emit(&change)
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.load(ctx)
	if err != nil {
		return rec, false, err
	}
	pos, ok := snap.index[id]
	if !ok {
		return rec, false, nil
	}

	normalised, err := normalisePatch(patch, c.spec.Immutable)
	if err != nil {
		return rec, true, err
	}
	now := c.deps.Clock()
	prev := snap.items[pos]
	if c.spec.Hooks.BeforePatch != nil {
		c.spec.Hooks.BeforePatch(prev, normalised, now)
	}
	merged, err := applyPatch(prev, normalised)
	if err != nil {
		return rec, true, err
	}
	if c.spec.Hooks.Check != nil {
		others := make([]T, 0, len(snap.items)-1)
		for i, other := range snap.items {
			if i != pos && P(&other).RecordID() != id {
				others = append(others, other)
			}
		}
		if err := c.spec.Hooks.Check(merged, others); err != nil {
			return rec, true, err
		}
	}

	next := make([]T, len(snap.items))
	copy(next, snap.items)
	next[pos] = merged
	if err := c.save(ctx, next); err != nil {
		return rec, true, err
	}
	change = c.event(events.OpUpdate, id, &merged, now)
	return merged, true, nil
}

// Delete removes every record with id and reports whether any was removed.
func (c *Collection[T, P]) Delete(ctx context.Context, id string) (removed bool, err error) {
	defer c.observe("delete", time.Now(), &err)
	var change *events.Event
	defer c.emit(&change)
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.load(ctx)
	if err != nil {
		return false, err
	}
	pos, ok := snap.index[id]
	if !ok {
		return false, nil
	}
	gone := snap.items[pos]

	next := make([]T, 0, len(snap.items)-1)
	for _, rec := range snap.items {
		if P(&rec).RecordID() != id {
			next = append(next, rec)
		}
	}
	if err := c.save(ctx, next); err != nil {
		return false, err
	}
	change = c.event(events.OpDelete, id, &gone, c.deps.Clock())
	return true, nil
}

// Count returns the number of stored records.
func (c *Collection[T, P]) Count(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, err := c.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(snap.items), nil
}

// Raw returns the stored value untouched, even when it does not decode.
func (c *Collection[T, P]) Raw(ctx context.Context) (string, bool, error) {
	return c.deps.KV.Get(ctx, c.key)
}

// Reset deletes the collection key. It is the recovery path for a corrupted
// value.
func (c *Collection[T, P]) Reset(ctx context.Context) (err error) {
	defer c.observe("reset", time.Now(), &err)
	var change *events.Event
	defer c.emit(&change)
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.deps.KV.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("reset %s: %w", c.key, err)
	}
	c.cache = nil
	change = c.event(events.OpReset, "", nil, c.deps.Clock())
	return nil
}

func (c *Collection[T, P]) load(ctx context.Context) (*snapshot[T], error) {
	raw, found, err := c.deps.KV.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.key, err)
	}
	if c.cache != nil && c.cache.found == found && c.cache.raw == raw {
		return c.cache, nil
	}

	var items []T
	if trimmed := strings.TrimSpace(raw); trimmed != "" && trimmed != "null" {
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			c.log.Warn("collection value does not decode", zap.String("key", c.key), zap.Error(err))
			return nil, &CorruptError{Key: c.key, Err: err}
		}
	}
	c.cache = newSnapshot[T, P](items, raw, found)
	return c.cache, nil
}

func (c *Collection[T, P]) save(ctx context.Context, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.deps.KV.Set(ctx, c.key, string(raw)); err != nil {
		return fmt.Errorf("write %s: %w", c.key, err)
	}
	c.cache = newSnapshot[T, P](items, string(raw), true)
	return nil
}

type participated interface {
	Participants() []string
}

// event describes a committed change to rec. rec is nil for a reset.
func (c *Collection[T, P]) event(op events.Op, id string, rec *T, at time.Time) *events.Event {
	e := &events.Event{Collection: c.spec.Name, Op: op, ID: id, At: at.UTC()}
	if rec != nil {
		e.StudentID = P(rec).OwnerID()
		if p, ok := any(P(rec)).(participated); ok {
			e.Participants = p.Participants()
		}
	}
	return e
}

// emit publishes the change recorded by a mutation. Mutations defer it ahead
// of their unlock so it runs once the collection lock is released.
func (c *Collection[T, P]) emit(change **events.Event) {
	if *change != nil {
		c.deps.Events.Publish(**change)
	}
}

func (c *Collection[T, P]) observe(op string, start time.Time, err *error) {
	if c.deps.Observer != nil {
		c.deps.Observer.ObserveStoreOp(c.spec.Name, op, *err, time.Since(start))
	}
}

// newSnapshot indexes items by id. The first record wins when legacy data
// holds duplicate ids.
func newSnapshot[T any, P entity[T]](items []T, raw string, found bool) *snapshot[T] {
	if items == nil {
		items = []T{}
	}
	index := make(map[string]int, len(items))
	for i := range items {
		id := P(&items[i]).RecordID()
		if _, dup := index[id]; !dup {
			index[id] = i
		}
	}
	return &snapshot[T]{raw: raw, found: found, items: items, index: index}
}

// normalisePatch round-trips the patch through JSON so typed values compare
// as their wire form, then drops immutable fields.
func normalisePatch(patch models.Patch, immutable []string) (models.Patch, error) {
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	out := models.Patch{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	for _, field := range immutable {
		delete(out, field)
	}
	return out, nil
}

func applyPatch[T any](prev T, patch models.Patch) (T, error) {
	var next T
	raw, err := json.Marshal(prev)
	if err != nil {
		return next, err
	}
	fields := map[string]interface{}{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return next, err
	}
	for k, v := range patch {
		if v == nil {
			delete(fields, k)
			continue
		}
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return next, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	dec = json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		return next, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return next, nil
}
