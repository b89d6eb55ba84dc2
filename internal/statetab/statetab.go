// Package statetab implements the owner-scoped side table that tracks
// per-key load state, the latest operation key, cancellable handles, and
// supersession generations for arbitrary owner objects. Owners participate
// by identity; the table stores nothing inside the owner and the stored
// values must not reference the owner back.
package statetab

import "sync"

// Canceller is the cancel surface tracked per slot. The loader's manager
// handles satisfy it.
type Canceller interface {
	Cancel()
}

// Table maps owner identity to its keyed slots. S is the per-key state
// value, C the owner-level companion configuration (transition, indicator).
//
// A Table is safe for concurrent use. Entries persist until Release is
// called for the owner; there is no implicit eviction.
type Table[S any, C any] struct {
	mu     sync.Mutex
	owners map[any]*ownerEntry[S, C]
}

type ownerEntry[S any, C any] struct {
	latestKey string
	hasLatest bool
	config    C
	hasConfig bool
	slots     map[string]*slot[S]
}

type slot[S any] struct {
	state      S
	hasState   bool
	handle     Canceller
	generation uint64
}

// New creates an empty table.
func New[S any, C any]() *Table[S, C] {
	return &Table[S, C]{owners: make(map[any]*ownerEntry[S, C])}
}

func (t *Table[S, C]) entry(owner any) *ownerEntry[S, C] {
	e, ok := t.owners[owner]
	if !ok {
		e = &ownerEntry[S, C]{slots: make(map[string]*slot[S])}
		t.owners[owner] = e
	}
	return e
}

func (t *Table[S, C]) lookup(owner any, key string) (*ownerEntry[S, C], *slot[S]) {
	e, ok := t.owners[owner]
	if !ok {
		return nil, nil
	}
	return e, e.slots[key]
}

// Begin records key as the owner's latest operation key and advances the
// slot's generation, returning the new generation. The returned
// (key, generation) pair is the issue-time supersession token: a deferred
// step is authoritative only while Current reports true for it.
func (t *Table[S, C]) Begin(owner any, key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entry(owner)
	e.latestKey = key
	e.hasLatest = true
	sl, ok := e.slots[key]
	if !ok {
		sl = &slot[S]{}
		e.slots[key] = sl
	}
	sl.generation++
	return sl.generation
}

// Current reports whether the (key, generation) token still identifies the
// owner's authoritative request: key must be the latest key and generation
// must match the slot's current generation.
func (t *Table[S, C]) Current(owner any, key string, generation uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, sl := t.lookup(owner, key)
	if e == nil || sl == nil {
		return false
	}
	return e.hasLatest && e.latestKey == key && sl.generation == generation
}

// LatestKey returns the owner's most recently issued operation key.
func (t *Table[S, C]) LatestKey(owner any) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.owners[owner]
	if !ok || !e.hasLatest {
		return "", false
	}
	return e.latestKey, true
}

// Get returns the state stored for (owner, key).
func (t *Table[S, C]) Get(owner any, key string) (S, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero S
	_, sl := t.lookup(owner, key)
	if sl == nil || !sl.hasState {
		return zero, false
	}
	return sl.state, true
}

// Set stores state for (owner, key), replacing any previous value.
func (t *Table[S, C]) Set(owner any, key string, state S) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entry(owner)
	sl, ok := e.slots[key]
	if !ok {
		sl = &slot[S]{}
		e.slots[key] = sl
	}
	sl.state = state
	sl.hasState = true
}

// Remove drops the state stored for (owner, key). The slot itself survives
// while a handle or generation is still attached to it.
func (t *Table[S, C]) Remove(owner any, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, sl := t.lookup(owner, key)
	if sl == nil {
		return
	}
	var zero S
	sl.state = zero
	sl.hasState = false
	if sl.handle == nil && sl.generation == 0 {
		delete(e.slots, key)
	}
}

// SetHandle registers the in-flight handle for (owner, key). A handle
// already registered under the key is cancelled first, so at most one live
// handle exists per slot.
func (t *Table[S, C]) SetHandle(owner any, key string, h Canceller) {
	t.mu.Lock()
	e := t.entry(owner)
	sl, ok := e.slots[key]
	if !ok {
		sl = &slot[S]{}
		e.slots[key] = sl
	}
	prev := sl.handle
	sl.handle = h
	t.mu.Unlock()

	// Cancel outside the lock; the handle belongs to an external subsystem.
	if prev != nil {
		prev.Cancel()
	}
}

// Cancel cancels and removes the handle registered for (owner, key).
// Cancelling a key with no handle is a no-op. A successful cancel advances
// the slot's generation so the cancelled request's late deliveries fail the
// Current check and can no longer touch presentation state. It reports
// whether a handle was actually cancelled.
func (t *Table[S, C]) Cancel(owner any, key string) bool {
	t.mu.Lock()
	_, sl := t.lookup(owner, key)
	var h Canceller
	if sl != nil && sl.handle != nil {
		h = sl.handle
		sl.handle = nil
		sl.generation++
	}
	t.mu.Unlock()

	if h == nil {
		return false
	}
	h.Cancel()
	return true
}

// CancelIf behaves like Cancel but only acts when the (key, generation)
// token is still current, so a stale request handle cannot cancel work it
// no longer owns.
func (t *Table[S, C]) CancelIf(owner any, key string, generation uint64) bool {
	t.mu.Lock()
	e, sl := t.lookup(owner, key)
	var h Canceller
	if e != nil && sl != nil && e.hasLatest && e.latestKey == key && sl.generation == generation {
		h = sl.handle
		sl.handle = nil
		sl.generation++
	}
	t.mu.Unlock()

	if h == nil {
		return false
	}
	h.Cancel()
	return true
}

// CancelLatest cancels the handle registered under the owner's latest key.
func (t *Table[S, C]) CancelLatest(owner any) bool {
	t.mu.Lock()
	e, ok := t.owners[owner]
	if !ok || !e.hasLatest {
		t.mu.Unlock()
		return false
	}
	key := e.latestKey
	t.mu.Unlock()

	return t.Cancel(owner, key)
}

// Config returns the owner-level companion configuration.
func (t *Table[S, C]) Config(owner any) (C, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero C
	e, ok := t.owners[owner]
	if !ok || !e.hasConfig {
		return zero, false
	}
	return e.config, true
}

// SetConfig stores the owner-level companion configuration.
func (t *Table[S, C]) SetConfig(owner any, config C) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entry(owner)
	e.config = config
	e.hasConfig = true
}

// Release cancels every handle attached to the owner and drops the owner's
// whole side-table entry. It is the teardown hook to call when the owner
// reaches the end of its life.
func (t *Table[S, C]) Release(owner any) {
	t.mu.Lock()
	e, ok := t.owners[owner]
	var handles []Canceller
	if ok {
		for _, sl := range e.slots {
			if sl.handle != nil {
				handles = append(handles, sl.handle)
			}
		}
		delete(t.owners, owner)
	}
	t.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
}
