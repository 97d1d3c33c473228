package ops

import "sync/atomic"

// Barrier is an N-way rendezvous: Arrive blocks until N goroutines have
// called it, then returns true on exactly one caller (the "coordinator",
// used to pick one goroutine to finalize shared results or free the
// shared operation).
type Barrier struct {
	n        int64
	arrived  int64
	release  chan struct{}
}

// NewBarrier constructs a barrier for exactly n arrivals.
func NewBarrier(n int) *Barrier {
	return &Barrier{n: int64(n), release: make(chan struct{})}
}

// Arrive blocks until all N parties have arrived, then returns true for
// exactly one caller (the coordinator) and false for the rest.
func (b *Barrier) Arrive() (coordinator bool) {
	count := atomic.AddInt64(&b.arrived, 1)
	if count == b.n {
		close(b.release)
		return true
	}
	<-b.release
	return false
}
