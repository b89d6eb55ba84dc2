// Package viewload coordinates asynchronous, cancellable, de-duplicated
// image loads on behalf of long-lived owner objects that can only ever
// display the result of their latest request.
//
// The actual fetch is delegated to a caller-supplied Manager. viewload's job
// is the hard part around it: tracking per-owner load state by operation
// key, cancelling superseded work, bridging raw progress into a bounded
// entity, rejecting stale results, and driving an optional multi-phase
// presentation transition, all while a newer request may arrive at any
// moment and take over the slot.
//
// All presentation-affecting steps are dispatched onto a single serialized
// callback queue, which gives a total order per owner. Every deferred step
// re-validates its supersession token against the owner's current latest
// key before touching presentation state, so out-of-order completions can
// never let an older request win visually.
package viewload
