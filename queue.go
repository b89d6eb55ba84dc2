package viewload

import (
	"sync"

	"github.com/viewload/viewload/internal/dispatch"
)

// Queue is a serialized FIFO dispatcher. All state mutation, presentation
// steps, and most callbacks for an owner are submitted through one queue,
// which processes work strictly in submission order and so gives a total
// order over everything that affects the owner's presentation.
//
// Async must never run fn inline on the submitting goroutine.
type Queue interface {
	Async(fn func())
}

var (
	homeOnce  sync.Once
	homeQueue Queue
)

// HomeQueue returns the process-wide shared serial queue used when neither
// the Loader nor the request designates its own.
func HomeQueue() Queue {
	homeOnce.Do(func() {
		homeQueue = dispatch.NewSerial()
	})
	return homeQueue
}
