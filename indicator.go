package viewload

// Indicator is an optional presentation widget shown while a load is in
// flight. The loader starts it when a request is issued and stops it when
// the request reaches a terminal delivery, both on the callback queue and
// both skipped once the request has been superseded.
type Indicator interface {
	StartAnimating()
	StopAnimating()
}

// ProgressReporter is implemented by indicators that can display determinate
// progress. The loader forwards the normalized fraction of each raw sample,
// clamped to [0, 1], on the callback queue.
type ProgressReporter interface {
	SetProgress(fraction float64)
}
