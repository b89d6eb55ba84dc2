// This file contains the functional options for Loader construction and
// for individual load requests.
package viewload

import (
	"image"
	"log/slog"
)

// LoaderOptions contains configuration options for the Loader.
type LoaderOptions struct {
	// Peeker answers non-blocking warm-tier queries. Optional.
	Peeker CachePeeker

	// Queue is the default serialized callback queue for requests that do
	// not designate their own. Defaults to the shared home queue.
	Queue Queue

	// Logger receives debug-level request tracing. Defaults to a discard
	// logger so the library stays silent unless configured.
	Logger *slog.Logger
}

// LoaderOption is a functional option for configuring the Loader.
type LoaderOption func(*LoaderOptions)

// WithCachePeeker configures the warm-tier hint collaborator consulted when
// a request asks for a synchronous memory query.
func WithCachePeeker(p CachePeeker) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.Peeker = p
	}
}

// WithQueue sets the Loader's default callback queue.
func WithQueue(q Queue) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.Queue = q
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.Logger = logger
	}
}

// DefaultLoaderOptions returns the default loader options.
func DefaultLoaderOptions() *LoaderOptions {
	return &LoaderOptions{}
}

// LoadOptions contains options for one load request. The seven boolean
// flags compose freely.
type LoadOptions struct {
	// Key overrides the operation key. When empty the key is derived from
	// the owner's dynamic type.
	Key string

	// Placeholder is applied before the fetch begins (unless delayed) and,
	// when DelayPlaceholder is set, stands in for a failed fetch's missing
	// image.
	Placeholder image.Image

	// Setter replaces the built-in presentation strategies.
	Setter SetImageFunc

	// Progress observes raw byte-count samples on the fetch subsystem's
	// goroutine, without a queue hop.
	Progress ProgressFunc

	// Completion receives every delivery for the request, scheduled on the
	// callback queue.
	Completion CompletionFunc

	// Queue designates the serialized callback queue for this request.
	Queue Queue

	// AvoidAutoCancelPrevious skips cancelling the operation previously
	// registered under the resolved key.
	AvoidAutoCancelPrevious bool

	// DelayPlaceholder suppresses applying the placeholder before the fetch
	// and instead presents it if the fetch finishes without an image.
	DelayPlaceholder bool

	// AvoidAutoApplyResult suppresses presenting a fetched image; the
	// completion callback still fires.
	AvoidAutoApplyResult bool

	// ForceTransition runs the configured transition even for cache-tier
	// deliveries that would normally skip it.
	ForceTransition bool

	// WaitForTransition delays the completion callback until the transition
	// finishes instead of firing it on entry into the animate phase.
	WaitForTransition bool

	// QuerySyncMemory performs the non-blocking warm-tier peek before the
	// fetch begins.
	QuerySyncMemory bool

	// QuerySyncDisk marks disk-tier deliveries as synchronously queried, so
	// they skip the transition like memory-tier ones.
	QuerySyncDisk bool
}

// LoadOption is a functional option for configuring one load request.
type LoadOption func(*LoadOptions)

// WithKey targets an explicit operation key instead of the type-derived
// default slot.
func WithKey(key string) LoadOption {
	return func(opts *LoadOptions) {
		opts.Key = key
	}
}

// WithPlaceholder sets the placeholder image.
func WithPlaceholder(img image.Image) LoadOption {
	return func(opts *LoadOptions) {
		opts.Placeholder = img
	}
}

// WithSetter supplies a custom presentation setter.
func WithSetter(fn SetImageFunc) LoadOption {
	return func(opts *LoadOptions) {
		opts.Setter = fn
	}
}

// WithProgressObserver supplies the raw progress observer. It runs on the
// fetch subsystem's goroutine for minimal latency; marshal to your own
// context if needed.
func WithProgressObserver(fn ProgressFunc) LoadOption {
	return func(opts *LoadOptions) {
		opts.Progress = fn
	}
}

// WithCompletion supplies the completion observer.
func WithCompletion(fn CompletionFunc) LoadOption {
	return func(opts *LoadOptions) {
		opts.Completion = fn
	}
}

// WithCallbackQueue designates the serialized callback queue for this
// request. All mutation for an owner must go through one queue to keep the
// presentation order total.
func WithCallbackQueue(q Queue) LoadOption {
	return func(opts *LoadOptions) {
		opts.Queue = q
	}
}

// WithoutAutoCancel keeps the previously registered operation for the key
// running instead of cancelling it.
func WithoutAutoCancel() LoadOption {
	return func(opts *LoadOptions) {
		opts.AvoidAutoCancelPrevious = true
	}
}

// WithDelayedPlaceholder defers the placeholder until the fetch finishes
// without an image.
func WithDelayedPlaceholder() LoadOption {
	return func(opts *LoadOptions) {
		opts.DelayPlaceholder = true
	}
}

// WithoutAutoApply suppresses presenting the fetched image.
func WithoutAutoApply() LoadOption {
	return func(opts *LoadOptions) {
		opts.AvoidAutoApplyResult = true
	}
}

// WithForcedTransition runs the transition regardless of cache tier.
func WithForcedTransition() LoadOption {
	return func(opts *LoadOptions) {
		opts.ForceTransition = true
	}
}

// WithWaitForTransition fires the completion callback only after the
// transition completes.
func WithWaitForTransition() LoadOption {
	return func(opts *LoadOptions) {
		opts.WaitForTransition = true
	}
}

// WithSyncMemoryQuery performs the non-blocking warm-tier peek as a
// side-effecting hint before the fetch.
func WithSyncMemoryQuery() LoadOption {
	return func(opts *LoadOptions) {
		opts.QuerySyncMemory = true
	}
}

// WithSyncDiskQuery marks disk-tier deliveries as synchronously queried.
func WithSyncDiskQuery() LoadOption {
	return func(opts *LoadOptions) {
		opts.QuerySyncDisk = true
	}
}

// DefaultLoadOptions returns the default load options.
func DefaultLoadOptions() *LoadOptions {
	return &LoadOptions{}
}
