package worker

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Voskan/partkv/engine"
	"github.com/Voskan/partkv/internal/ops"
)

// fakeEngine is a minimal in-memory engine.Engine for worker tests; the
// real ordered/on-disk engines are tested separately.
type fakeEngine struct {
	mu    sync.RWMutex
	data  map[string][]byte
	level uint64
}

func newFakeEngine() *fakeEngine { return &fakeEngine{data: map[string][]byte{}} }

func (f *fakeEngine) Read(_ context.Context, key string) (engine.Result, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data[key]
	return engine.Result{Value: v, Found: ok}, nil
}

func (f *fakeEngine) Write(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeEngine) Scan(_ context.Context, lowerBound string, limit int) ([]engine.KV, error) {
	return nil, nil
}

func (f *fakeEngine) Level() uint64 { return f.level }
func (f *fakeEngine) Close() error  { return nil }
func (f *fakeEngine) RLock()        { f.mu.RLock() }
func (f *fakeEngine) RUnlock()      { f.mu.RUnlock() }
func (f *fakeEngine) Lock()         { f.mu.Lock() }
func (f *fakeEngine) Unlock()       { f.mu.Unlock() }

func TestWorkerReadWriteRoundTrip(t *testing.T) {
	e := newFakeEngine()
	w := New(e, 0, 4)
	ctx := context.Background()

	require.NoError(t, w.Enqueue(ctx, ops.Operation{
		Kind:  ops.KindWrite,
		Write: &ops.WriteOp{Key: "k1", Value: []byte("v1")},
	}))

	f := ops.NewFuture[ops.ReadResult]()
	require.NoError(t, w.Enqueue(ctx, ops.Operation{
		Kind: ops.KindRead,
		Read: &ops.ReadOp{Key: "k1", Future: f},
	}))
	res := f.Wait()
	assert.Equal(t, ops.StatusSuccess, res.Status)
	assert.Equal(t, []byte("v1"), res.Value)

	require.NoError(t, w.Stop(ctx))
}

func TestWorkerReadMissingKeyReportsNotFound(t *testing.T) {
	e := newFakeEngine()
	w := New(e, 0, 4)
	ctx := context.Background()

	f := ops.NewFuture[ops.ReadResult]()
	require.NoError(t, w.Enqueue(ctx, ops.Operation{
		Kind: ops.KindRead,
		Read: &ops.ReadOp{Key: "missing", Future: f},
	}))
	res := f.Wait()
	assert.Equal(t, ops.StatusNotFound, res.Status)
	require.NoError(t, w.Stop(ctx))
}

func TestWorkerScanFanOutAcrossShards(t *testing.T) {
	e0, e1 := newFakeEngine(), newFakeEngine()
	ctx := context.Background()
	require.NoError(t, e0.Write(ctx, "a", []byte("1")))
	require.NoError(t, e1.Write(ctx, "b", []byte("2")))

	w0 := New(nil, 0, 4)
	w1 := New(nil, 1, 4)

	keys := []string{"a", "b"}
	shardOf := []int{0, 1}
	engineOf := []engine.Engine{e0, e1}
	op := ops.NewScanOp(keys, shardOf, engineOf, 2)

	require.NoError(t, w0.Enqueue(ctx, ops.Operation{Kind: ops.KindScan, Scan: op}))
	require.NoError(t, w1.Enqueue(ctx, ops.Operation{Kind: ops.KindScan, Scan: op}))

	res := op.Future.Wait()
	assert.Equal(t, ops.StatusSuccess, res.Status)
	assert.Len(t, res.KVs, 2)

	require.NoError(t, w0.Stop(ctx))
	require.NoError(t, w1.Stop(ctx))
}

func TestWorkerSyncFencesAllShards(t *testing.T) {
	w0 := New(newFakeEngine(), 0, 4)
	w1 := New(newFakeEngine(), 1, 4)
	ctx := context.Background()

	barrier := ops.NewBarrier(2)
	require.NoError(t, w0.Enqueue(ctx, ops.Operation{Kind: ops.KindSync, Sync: &ops.SyncOp{Barrier: barrier}}))
	require.NoError(t, w1.Enqueue(ctx, ops.Operation{Kind: ops.KindSync, Sync: &ops.SyncOp{Barrier: barrier}}))

	require.NoError(t, w0.Stop(ctx))
	require.NoError(t, w1.Stop(ctx))
}
