// Package viewload's main entry point: the Loader and its request
// orchestration.
package viewload

import (
	"context"
	"image"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/viewload/viewload/internal/statetab"
)

// ownerConfig is the owner-level presentation configuration kept alongside
// the keyed slots.
type ownerConfig struct {
	transition *Transition
	indicator  Indicator
}

// Loader issues and reconciles image loads against owner objects. It is
// safe for concurrent use, but state attached to a single owner is expected
// to be mutated from that owner's home execution context, with asynchronous
// results marshaled in through the callback queue.
type Loader struct {
	manager Manager
	peeker  CachePeeker
	queue   Queue
	logger  *slog.Logger
	table   *statetab.Table[*LoadState, ownerConfig]
}

// New creates a Loader around the given fetch Manager.
func New(manager Manager, opts ...LoaderOption) (*Loader, error) {
	if manager == nil {
		return nil, ErrNilManager
	}

	options := DefaultLoaderOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.Queue == nil {
		options.Queue = HomeQueue()
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Loader{
		manager: manager,
		peeker:  options.Peeker,
		queue:   options.Queue,
		logger:  options.Logger,
		table:   statetab.New[*LoadState, ownerConfig](),
	}, nil
}

// request captures everything one issued load needs for its deferred
// steps. The (key, gen) pair is the supersession token: every deferred step
// re-reads the owner's current latest key and slot generation and compares,
// so the "is this still the authoritative request" check is an explicit
// function rather than implicit closure state.
type request struct {
	id       string
	owner    any
	key      string
	gen      uint64
	target   *url.URL
	opts     *LoadOptions
	queue    Queue
	setter   SetImageFunc
	progress *Progress
	started  time.Time
	sampled  atomic.Bool
	done     atomic.Bool
}

func (l *Loader) current(req *request) bool {
	return l.table.Current(req.owner, req.key, req.gen)
}

func (l *Loader) dropStale(req *request, phase string) {
	staleDropsTotal.Inc()
	l.logger.Debug("dropping superseded step",
		"request_id", req.id, "key", req.key, "phase", phase)
}

// Load issues an asynchronous image load for the owner's resolved slot.
//
// The slot's recorded URL and the owner's latest key are updated
// synchronously before any asynchronous work begins. Unless opted out, the
// slot's previous operation is cancelled before the new fetch is issued,
// so at most one logically owned fetch is ever in flight per slot. The
// returned handle cancels this request; cancelling is advisory and a late
// result is dropped by the supersession check.
//
// A nil target short-circuits to a completion delivery carrying
// ErrInvalidTarget, still scheduled on the callback queue.
func (l *Loader) Load(ctx context.Context, owner any, target *url.URL, opts ...LoadOption) (CancelHandle, error) {
	if owner == nil {
		return nil, ErrNilOwner
	}

	options := DefaultLoadOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.Queue == nil {
		options.Queue = l.queue
	}

	key := resolveKey(owner, options.Key)

	req := &request{
		id:     ulid.Make().String(),
		owner:  owner,
		key:    key,
		target: target,
		opts:   options,
		queue:  options.Queue,
		setter: selectSetter(owner, key, options.Key != "", options.Setter),
	}

	l.logger.Debug("issuing image load",
		"request_id", req.id, "key", key, "url", urlString(target))

	if !options.AvoidAutoCancelPrevious {
		if l.table.Cancel(owner, key) {
			cancellationsTotal.Inc()
			l.logger.Debug("cancelled previous operation",
				"request_id", req.id, "key", key)
		}
	}

	// Mint the supersession token after the previous operation is gone; the
	// cancel above already invalidated the old request's token.
	req.gen = l.table.Begin(owner, key)

	// Record the URL synchronously, whatever the fetch's eventual outcome.
	// The Progress entity is reused across requests on the same slot so
	// external observers keep watching the same instance.
	prev, _ := l.table.Get(owner, key)
	state := &LoadState{URL: target, Progress: NewProgress()}
	if prev != nil && prev.Progress != nil {
		state.Progress = prev.Progress
	}
	l.table.Set(owner, key, state)
	req.progress = state.Progress

	if !options.DelayPlaceholder {
		placeholder := options.Placeholder
		req.queue.Async(func() {
			if !l.current(req) {
				l.dropStale(req, "placeholder")
				return
			}
			if req.setter != nil {
				req.setter(placeholder, nil, CacheTierNone, target)
			}
		})
	}

	req.queue.Async(func() {
		if !l.current(req) {
			return
		}
		if ind := l.IndicatorFor(req.owner); ind != nil {
			ind.StartAnimating()
		}
	})

	if options.QuerySyncMemory && l.peeker != nil {
		// Warm-tier hint only; the result is discarded.
		_ = l.peeker.Peek(target)
	}

	if target == nil {
		requestsTotal.WithLabelValues(outcomeInvalidTarget).Inc()
		req.queue.Async(func() {
			l.stopIndicator(req)
			if options.Completion != nil {
				options.Completion(Completion{
					Err:      ErrInvalidTarget,
					Tier:     CacheTierNone,
					Finished: true,
				})
			}
		})
		return &loadHandle{}, nil
	}

	req.progress.reset()
	req.started = time.Now()

	fetchOpts := FetchOptions{
		Key:             key,
		QuerySyncMemory: options.QuerySyncMemory,
		QuerySyncDisk:   options.QuerySyncDisk,
	}
	handle := l.manager.LoadImage(ctx, target, fetchOpts, l.progressFunc(req), func(res Completion) {
		l.reconcile(req, res)
	})
	if handle != nil {
		l.table.SetHandle(owner, key, handle)
	}

	return &loadHandle{loader: l, req: req}, nil
}

// reconcile handles one delivery from the Manager. It runs on whatever
// goroutine the Manager used; everything that touches presentation hops
// onto the callback queue.
func (l *Loader) reconcile(req *request, res Completion) {
	options := req.opts

	if res.Finished && res.Err == nil && !req.sampled.Load() {
		req.progress.markUnknownComplete()
	}

	// Auto-apply declined suppresses the fetched image and the delayed
	// placeholder alike; a missing image with no delayed placeholder leaves
	// nothing to present.
	suppressed := options.AvoidAutoApplyResult ||
		(res.Image == nil && !options.DelayPlaceholder)

	if res.Finished && req.done.CompareAndSwap(false, true) {
		fetchDuration.Observe(time.Since(req.started).Seconds())
		switch {
		case res.Err != nil:
			requestsTotal.WithLabelValues(outcomeFailed).Inc()
		case suppressed:
			requestsTotal.WithLabelValues(outcomeSuppressed).Inc()
		default:
			requestsTotal.WithLabelValues(outcomeApplied).Inc()
		}
		l.logger.Debug("load finished",
			"request_id", req.id, "key", req.key,
			"tier", res.Tier.String(), "error", res.Err,
			"duration", time.Since(req.started))
	}

	if suppressed {
		// No presentation step runs; the completion callback still fires
		// when the fetch is finished, or mid-stream when auto-apply was
		// declined for a produced image.
		fire := res.Finished || (options.AvoidAutoApplyResult && res.Image != nil)
		req.queue.Async(func() {
			if res.Finished {
				l.stopIndicator(req)
			}
			if fire && options.Completion != nil {
				options.Completion(res)
			}
		})
		return
	}

	img, data := res.Image, res.Data
	if img == nil && options.DelayPlaceholder {
		img, data = options.Placeholder, nil
	}

	req.queue.Async(func() {
		l.present(req, img, data, res)
	})
}

// present runs on the callback queue and either applies the target
// directly or hands it to the transition state machine. A superseded
// request never touches presentation state, but its completion callback is
// still a caller-visible event and fires. Progressive deliveries are
// painted without a completion callback; only the terminal delivery fires.
func (l *Loader) present(req *request, img image.Image, data []byte, res Completion) {
	options := req.opts
	fire := func() {
		if res.Finished && options.Completion != nil {
			options.Completion(res)
		}
	}

	if !l.current(req) {
		l.dropStale(req, "present")
		fire()
		return
	}

	if res.Finished {
		l.stopIndicator(req)
	}

	apply := func() {
		if req.setter != nil {
			req.setter(img, data, res.Tier, res.URL)
		}
	}

	tr := l.TransitionFor(req.owner)
	if !useTransition(tr, res, options) {
		apply()
		fire()
		return
	}
	l.runTransition(req, tr, img, data, res, apply, fire)
}

// stopIndicator runs on the callback queue; superseded requests leave the
// indicator to the request that took over.
func (l *Loader) stopIndicator(req *request) {
	if !l.current(req) {
		return
	}
	if ind := l.IndicatorFor(req.owner); ind != nil {
		ind.StopAnimating()
	}
}

// loadHandle is the cancellable token returned for one issued request. It
// only acts while its request is still the slot's authoritative one.
type loadHandle struct {
	loader *Loader
	req    *request
	once   sync.Once
}

func (h *loadHandle) Cancel() {
	h.once.Do(func() {
		if h.loader == nil {
			return
		}
		if h.loader.table.CancelIf(h.req.owner, h.req.key, h.req.gen) {
			cancellationsTotal.Inc()
		}
	})
}

// CancelLatest cancels whatever operation is registered under the owner's
// latest key. Cancelling with nothing in flight is a no-op.
func (l *Loader) CancelLatest(owner any) {
	if l.table.CancelLatest(owner) {
		cancellationsTotal.Inc()
	}
}

// CancelKey cancels the operation registered under the given key.
// Cancelling a key with no registered operation is a no-op.
func (l *Loader) CancelKey(owner any, key string) {
	if l.table.Cancel(owner, key) {
		cancellationsTotal.Inc()
	}
}

// LatestKey returns the owner's most recently requested operation key, or
// the empty string when nothing was ever requested.
func (l *Loader) LatestKey(owner any) string {
	key, _ := l.table.LatestKey(owner)
	return key
}

// ImageURL returns the URL most recently requested for the owner's latest
// slot. It reflects issued requests, not completed ones.
func (l *Loader) ImageURL(owner any) *url.URL {
	key, ok := l.table.LatestKey(owner)
	if !ok {
		return nil
	}
	state, ok := l.table.Get(owner, key)
	if !ok {
		return nil
	}
	return state.URL
}

// ImageProgress returns the Progress entity for the owner's latest slot,
// creating the load state lazily on first access. The getter never returns
// nil; use SetImageProgress(owner, nil) to discard the current entity. A
// nil owner gets a fresh detached entity rather than a slot.
func (l *Loader) ImageProgress(owner any) *Progress {
	if owner == nil {
		return NewProgress()
	}
	key := l.latestOrDefaultKey(owner)
	state, ok := l.table.Get(owner, key)
	if !ok {
		state = &LoadState{}
	}
	if state.Progress == nil {
		state.Progress = NewProgress()
		l.table.Set(owner, key, state)
	}
	return state.Progress
}

// SetImageProgress installs a caller-owned Progress entity for the owner's
// latest slot. Passing nil resets the slot so the next access creates a
// fresh entity. A nil owner is a no-op.
func (l *Loader) SetImageProgress(owner any, p *Progress) {
	if owner == nil {
		return
	}
	key := l.latestOrDefaultKey(owner)
	state, ok := l.table.Get(owner, key)
	if !ok {
		state = &LoadState{}
	}
	state.Progress = p
	l.table.Set(owner, key, state)
}

func (l *Loader) latestOrDefaultKey(owner any) string {
	if key, ok := l.table.LatestKey(owner); ok {
		return key
	}
	return defaultKey(owner)
}

// LoadStateFor returns the load state container for the given key, or nil.
func (l *Loader) LoadStateFor(owner any, key string) *LoadState {
	state, ok := l.table.Get(owner, key)
	if !ok {
		return nil
	}
	return state
}

// SetLoadStateFor replaces the load state container for the given key.
func (l *Loader) SetLoadStateFor(owner any, key string, state *LoadState) {
	if state == nil {
		l.table.Remove(owner, key)
		return
	}
	l.table.Set(owner, key, state)
}

// RemoveLoadStateFor drops the load state container for the given key.
func (l *Loader) RemoveLoadStateFor(owner any, key string) {
	l.table.Remove(owner, key)
}

// TransitionFor returns the owner's configured presentation transition.
func (l *Loader) TransitionFor(owner any) *Transition {
	cfg, ok := l.table.Config(owner)
	if !ok {
		return nil
	}
	return cfg.transition
}

// SetTransition configures the presentation transition applied when a
// fetched result is shown for this owner. Nil disables transitions.
func (l *Loader) SetTransition(owner any, tr *Transition) {
	cfg, _ := l.table.Config(owner)
	cfg.transition = tr
	l.table.SetConfig(owner, cfg)
}

// IndicatorFor returns the owner's configured load indicator.
func (l *Loader) IndicatorFor(owner any) Indicator {
	cfg, ok := l.table.Config(owner)
	if !ok {
		return nil
	}
	return cfg.indicator
}

// SetIndicator configures the indicator shown while the owner's loads are
// in flight. Nil removes it.
func (l *Loader) SetIndicator(owner any, ind Indicator) {
	cfg, _ := l.table.Config(owner)
	cfg.indicator = ind
	l.table.SetConfig(owner, cfg)
}

// Release cancels everything in flight for the owner and drops its whole
// side-table entry. Call it when the owner reaches the end of its life;
// the loader never holds state for an owner past this point.
func (l *Loader) Release(owner any) {
	l.table.Release(owner)
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
