package viewload

import "errors"

// ErrInvalidTarget is delivered through the completion callback when a load
// is issued without a resolvable target URL. It is synthesized locally,
// carries no image, and is never retried.
var ErrInvalidTarget = errors.New("viewload: no resolvable target URL")

// ErrNilOwner is returned by Load when no owner is supplied.
var ErrNilOwner = errors.New("viewload: owner must not be nil")

// ErrNilManager is returned by New when no Manager is supplied.
var ErrNilManager = errors.New("viewload: manager must not be nil")
