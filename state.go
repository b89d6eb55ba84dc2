package viewload

import (
	"net/url"
	"sync/atomic"
)

// UnknownUnitCount is the sentinel written to both Progress counters when a
// load finishes successfully without ever reporting granular byte counts.
// It is distinct from zero so observers can tell "completed without
// progress" apart from "never started".
const UnknownUnitCount int64 = 1

// Progress tracks the byte counts of one slot's in-flight load. The fields
// are written atomically from the fetch subsystem's goroutine and may be
// read from anywhere. The entity is reused across requests on the same
// slot (reset, not reallocated) so external observers holding a reference
// keep observing the same instance.
type Progress struct {
	total     atomic.Int64
	completed atomic.Int64
}

// NewProgress returns a Progress at (0, 0).
func NewProgress() *Progress {
	return &Progress{}
}

// TotalUnitCount returns the expected total units of the current load.
func (p *Progress) TotalUnitCount() int64 {
	return p.total.Load()
}

// CompletedUnitCount returns the units received so far.
func (p *Progress) CompletedUnitCount() int64 {
	return p.completed.Load()
}

// Fraction returns the completed fraction clamped to [0, 1]. An unknown
// total yields 0.
func (p *Progress) Fraction() float64 {
	return clampFraction(p.completed.Load(), p.total.Load())
}

func (p *Progress) set(completed, total int64) {
	p.completed.Store(completed)
	p.total.Store(total)
}

func (p *Progress) reset() {
	p.set(0, 0)
}

func (p *Progress) markUnknownComplete() {
	p.set(UnknownUnitCount, UnknownUnitCount)
}

func clampFraction(completed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	f := float64(completed) / float64(total)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// LoadState is the per-(owner, key) record of the most recently issued
// request. URL always reflects the last request issued for the slot,
// written synchronously before the fetch starts, whether or not that fetch
// ever completes.
//
// LoadState is created lazily on first access for a key and replaced, not
// merged, when a new request targets the key; only the Progress entity is
// carried over. Mutate it on the owner's home execution context.
type LoadState struct {
	URL      *url.URL
	Progress *Progress
}
