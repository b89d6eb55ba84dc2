// This file bridges raw byte-count samples from the fetch subsystem into
// the slot's Progress entity and the optional presentation indicator.
package viewload

import "net/url"

// progressFunc builds the bridge for one request. Raw samples arrive on an
// arbitrary execution context: the Progress fields are updated right there
// with cheap atomic writes, the caller's observer is invoked on the same
// context without a queue hop, and only the normalized indicator projection
// is dispatched onto the callback queue, guarded against supersession.
func (l *Loader) progressFunc(req *request) ProgressFunc {
	return func(received, expected int64, target *url.URL) {
		req.sampled.Store(true)
		req.progress.set(received, expected)

		if obs := req.opts.Progress; obs != nil {
			obs(received, expected, target)
		}

		fraction := clampFraction(received, expected)
		req.queue.Async(func() {
			if !l.current(req) {
				return
			}
			if pr, ok := l.IndicatorFor(req.owner).(ProgressReporter); ok {
				pr.SetProgress(fraction)
			}
		})
	}
}
