package notify

import (
	"sync"
	"time"
)

// Clock abstracts time and repeating timers so the scheduler can run against
// a fake clock in tests.
type Clock interface {
	Now() time.Time
	// Every invokes fn once per interval until the returned stop function
	// is called. Stop is safe to call more than once.
	Every(interval time.Duration, fn func()) (stop func())
}

type realClock struct{}

// NewClock returns the wall-clock implementation backed by time.Ticker.
func NewClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}
