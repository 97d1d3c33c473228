package ops

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureWaitBlocksUntilNotify(t *testing.T) {
	f := NewFuture[int]()
	done := make(chan int, 1)
	go func() { done <- f.Wait() }()

	select {
	case <-done:
		t.Fatal("Wait returned before Notify")
	case <-time.After(20 * time.Millisecond):
	}

	f.Notify(42)
	require.Equal(t, 42, <-done)
}

func TestBarrierExactlyOneCoordinator(t *testing.T) {
	const n = 8
	b := NewBarrier(n)
	var coordinators int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if b.Arrive() {
				mu.Lock()
				coordinators++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, coordinators)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "SUCCESS", StatusSuccess.String())
	assert.Equal(t, "NOT_FOUND", StatusNotFound.String())
	assert.Equal(t, "ERROR", StatusError.String())
	assert.Equal(t, "PENDING", StatusPending.String())
}

func TestScanOpFinalizeAllFound(t *testing.T) {
	s := NewScanOp([]string{"a", "b"}, []int{0, 1}, nil, 2)
	s.SetResult(0, []byte("1"), true, nil)
	s.SetResult(1, []byte("2"), true, nil)
	res := s.Finalize()
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Len(t, res.KVs, 2)
}

func TestScanOpFinalizeNotFound(t *testing.T) {
	s := NewScanOp([]string{"a"}, []int{0}, nil, 1)
	s.SetResult(0, nil, false, nil)
	res := s.Finalize()
	assert.Equal(t, StatusNotFound, res.Status)
	assert.Empty(t, res.KVs)
}

func TestScanOpFinalizeEmptyKeys(t *testing.T) {
	s := NewScanOp(nil, nil, nil, 1)
	res := s.Finalize()
	assert.Equal(t, StatusNotFound, res.Status)
}
