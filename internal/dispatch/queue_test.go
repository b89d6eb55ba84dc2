package dispatch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerial_RunsInSubmissionOrder(t *testing.T) {
	q := NewSerial()
	defer q.Close()

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})

	for i := 0; i < 100; i++ {
		i := i
		q.Async(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	q.Async(func() { close(done) })
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestSerial_ConcurrentSubmitters(t *testing.T) {
	q := NewSerial()

	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				q.Async(func() {
					mu.Lock()
					count++
					mu.Unlock()
				})
			}
		}()
	}
	wg.Wait()
	q.Close()

	assert.Equal(t, 400, count)
}

func TestSerial_CloseDrainsBacklog(t *testing.T) {
	q := NewSerial()

	var mu sync.Mutex
	count := 0
	for i := 0; i < 20; i++ {
		q.Async(func() {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}
	q.Close()

	assert.Equal(t, 20, count)

	// Submissions after Close are dropped, and Close is idempotent.
	q.Async(func() {
		mu.Lock()
		count++
		mu.Unlock()
	})
	q.Close()
	assert.Equal(t, 20, count)
}

func TestSerial_NilFuncIsNoop(t *testing.T) {
	q := NewSerial()
	defer q.Close()

	assert.NotPanics(t, func() { q.Async(nil) })
}
