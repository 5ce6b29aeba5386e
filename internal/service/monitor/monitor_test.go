package monitor_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iota-uz/persistsvc/internal/service/monitor"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeJobLister struct {
	mu    sync.Mutex
	ids   []uint64
	calls int
}

func (f *fakeJobLister) ListUnclaimed(context.Context) ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.ids, nil
}

func (f *fakeJobLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePool struct {
	mu  sync.Mutex
	put []uint64
}

func (f *fakePool) Put(jobID uint64) {
	f.mu.Lock()
	f.put = append(f.put, jobID)
	f.mu.Unlock()
}

func (f *fakePool) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.put)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(&bytes.Buffer{})
	return l
}

// fakeTx runs fn directly against the given ctx, mirroring
// persister_test.go's fakeTx: the poll loop's transaction boundary is
// not under test here, only that pollOnce goes through it.
type fakeTx struct{}

func (fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestMonitor_EnqueuesDiscoveredJobs(t *testing.T) {
	jobs := &fakeJobLister{ids: []uint64{1, 2, 3}}
	pool := &fakePool{}

	m := monitor.New(jobs, pool, fakeTx{}, time.Hour, testLogger())
	m.Start()

	require.Eventually(t, func() bool { return pool.putCount() == 3 }, time.Second, time.Millisecond)

	require.NoError(t, m.Shutdown(context.Background()))
}

// TestMonitor_StopInterruptsWaitImmediately asserts the testable
// property behind spec.md §9's condition-variable requirement: stop
// wakes the poll loop well before the poll interval elapses.
func TestMonitor_StopInterruptsWaitImmediately(t *testing.T) {
	jobs := &fakeJobLister{}
	pool := &fakePool{}

	m := monitor.New(jobs, pool, fakeTx{}, time.Hour, testLogger())
	m.Start()

	require.Eventually(t, func() bool { return jobs.callCount() >= 1 }, time.Second, time.Millisecond)

	start := time.Now()
	err := m.Shutdown(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Less(t, elapsed, 500*time.Millisecond, "shutdown must not wait out the hour-long poll interval")
}

func TestMonitor_ShutdownTimesOutOnDeadline(t *testing.T) {
	// A monitor that's never Start()-ed never closes its done channel,
	// so Shutdown must respect the context deadline rather than block
	// forever.
	jobs := &fakeJobLister{}
	pool := &fakePool{}
	m := monitor.New(jobs, pool, fakeTx{}, time.Hour, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := m.Shutdown(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
