package viewload

import (
	"image"
	"net/url"
	"time"
)

// Transition describes the multi-phase presentation effect applied when a
// fetched result is shown: a zero-duration prepare phase that lets the
// underlying placeholder render, an animate phase over Duration, and a
// completion phase. A Transition is stateless configuration; the loader
// reads it but never mutates it.
//
// Transitions run only for finished network-tier deliveries unless the
// request forces them; memory-tier results and synchronously queried disk
// results apply immediately.
type Transition struct {
	// Duration separates entry into the animate phase from the completion
	// phase.
	Duration time.Duration

	// AvoidAutoApply leaves applying the target image to the Animate hook
	// instead of the loader's selected setter.
	AvoidAutoApply bool

	// Prepare runs at the start of the prepare phase, before the target is
	// applied.
	Prepare func(owner any, img image.Image, data []byte, target *url.URL)

	// Animate runs on entry into the animate phase, after the target has
	// been applied (unless AvoidAutoApply is set).
	Animate func(owner any, img image.Image)

	// Completion runs when the transition completes, always with finished
	// true. A request superseded mid-transition skips the hook entirely.
	Completion func(owner any, finished bool)
}

// runTransition drives Prepared -> Animated -> Completed for one presented
// result. It runs on the callback queue with the request already validated;
// each later phase boundary re-validates, because supersession can happen
// mid-transition. fire delivers the outer completion callback and is called
// exactly once: concurrently with entry into Animated by default, or after
// Completed when the request asked to wait for the transition.
func (l *Loader) runTransition(req *request, tr *Transition, img image.Image, data []byte, res Completion, apply func(), fire func()) {
	if tr.Prepare != nil {
		tr.Prepare(req.owner, img, data, res.URL)
	}

	req.queue.Async(func() {
		if !l.current(req) {
			l.dropStale(req, "animate")
			fire()
			return
		}
		if !tr.AvoidAutoApply {
			apply()
		}
		if tr.Animate != nil {
			tr.Animate(req.owner, img)
		}
		if !req.opts.WaitForTransition {
			fire()
		}

		time.AfterFunc(tr.Duration, func() {
			req.queue.Async(func() {
				ok := l.current(req)
				if ok && tr.Completion != nil {
					tr.Completion(req.owner, true)
				}
				if !ok {
					l.dropStale(req, "complete")
				}
				if req.opts.WaitForTransition {
					fire()
				}
			})
		})
	})
}

// useTransition decides whether a delivery goes through the transition
// state machine at all.
func useTransition(tr *Transition, res Completion, opts *LoadOptions) bool {
	if tr == nil || !res.Finished {
		return false
	}
	if opts.ForceTransition {
		return true
	}
	if res.Tier == CacheTierMemory {
		return false
	}
	if res.Tier == CacheTierDisk && opts.QuerySyncDisk {
		return false
	}
	return true
}
