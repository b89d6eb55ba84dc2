// This file defines the external collaborator interfaces. The fetch and its
// cache-tier resolution live entirely behind Manager; viewload never
// performs network or disk IO itself.
package viewload

import (
	"context"
	"image"
	"net/url"
)

// CacheTier identifies where a delivered image came from. Memory-tier
// results (and disk-tier results obtained through a synchronous query) skip
// the presentation transition unless it is forced.
type CacheTier int

const (
	// CacheTierNone means the image came from the network, or no cache was
	// involved at all.
	CacheTierNone CacheTier = iota
	// CacheTierMemory means the image was served from the in-memory tier.
	CacheTierMemory
	// CacheTierDisk means the image was served from the disk tier.
	CacheTierDisk
)

// String returns the tier name for logging and metric labels.
func (t CacheTier) String() string {
	switch t {
	case CacheTierMemory:
		return "memory"
	case CacheTierDisk:
		return "disk"
	default:
		return "none"
	}
}

// CancelHandle allows early termination of one in-flight fetch. Cancelling
// is advisory: a late result may still arrive and is then dropped by the
// supersession check. Cancel must be safe to call more than once.
type CancelHandle interface {
	Cancel()
}

// ProgressFunc receives raw byte-count samples. The Manager invokes it on
// its own execution context, not on the callback queue.
type ProgressFunc func(received, expected int64, target *url.URL)

// Completion is one delivery from a load. A Manager may deliver several
// times for progressive loads; only the last delivery carries Finished.
type Completion struct {
	Image    image.Image
	Data     []byte
	Err      error
	Tier     CacheTier
	Finished bool
	URL      *url.URL
}

// CompletionFunc receives load deliveries. The loader schedules it on the
// callback queue.
type CompletionFunc func(Completion)

// FetchOptions carries the per-request settings a Manager may honor. Key is
// the resolved operation key, echoed from the issuing request so downstream
// layers agree on the slot being targeted.
type FetchOptions struct {
	Key             string
	QuerySyncMemory bool
	QuerySyncDisk   bool
}

// Manager performs the actual fetch with whatever cache-tier resolution it
// implements. LoadImage must return a handle for early termination and must
// invoke onCompletion at least once; onCompletion and onProgress may be
// called from any goroutine.
type Manager interface {
	LoadImage(
		ctx context.Context,
		target *url.URL,
		opts FetchOptions,
		onProgress ProgressFunc,
		onCompletion CompletionFunc,
	) CancelHandle
}

// CachePeeker answers a non-blocking "is this target warm in the fast
// tier" query. The loader uses it purely as a side-effecting hint to warm
// secondary cache layers; the result is discarded.
type CachePeeker interface {
	Peek(target *url.URL) bool
}
