// Package monitor implements the job monitor (spec.md §4.7): a single
// long-lived poll loop that discovers unclaimed persist jobs and
// enqueues them onto the worker pool, with shutdown that interrupts
// the poll wait immediately rather than waiting out the interval.
package monitor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// JobLister is the narrow surface the monitor needs to discover
// unclaimed jobs.
type JobLister interface {
	ListUnclaimed(ctx context.Context) ([]uint64, error)
}

// Enqueuer is the narrow surface the monitor needs from the worker
// pool.
type Enqueuer interface {
	Put(jobID uint64)
}

// TxRunner runs fn inside its own store session, matching
// persister.TxRunner's shape. spec.md §4.7 describes the discovery
// query itself as "open session, list, commit" — a standalone
// operation, not part of any job's own transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Monitor runs the poll loop described in spec.md §4.7: list
// unclaimed jobs, enqueue each, then wait until either the poll
// interval elapses or stop is signaled — whichever comes first.
type Monitor struct {
	jobs         JobLister
	pool         Enqueuer
	tx           TxRunner
	pollInterval time.Duration
	log          *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a monitor that polls jobs every pollInterval.
func New(jobs JobLister, pool Enqueuer, tx TxRunner, pollInterval time.Duration, log *logrus.Logger) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		jobs:         jobs,
		pool:         pool,
		tx:           tx,
		pollInterval: pollInterval,
		log:          log,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
}

// Start launches the poll loop in its own goroutine.
func (m *Monitor) Start() {
	go m.run()
}

func (m *Monitor) run() {
	defer close(m.done)

	for {
		m.pollOnce()

		timer := time.NewTimer(m.pollInterval)
		select {
		case <-m.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (m *Monitor) pollOnce() {
	var ids []uint64
	err := m.tx.RunInTx(m.ctx, func(ctx context.Context) error {
		var err error
		ids, err = m.jobs.ListUnclaimed(ctx)
		return err
	})
	if err != nil {
		m.log.WithError(err).Warn("failed to list unclaimed persist jobs")
		return
	}
	for _, id := range ids {
		m.pool.Put(id)
	}
}

// Stop signals the poll loop to exit, interrupting an in-progress
// wait immediately rather than letting it run out the interval
// (spec.md §9 "Condition variable for monitor shutdown").
func (m *Monitor) Stop() {
	m.cancel()
}

// Shutdown stops the monitor and blocks until its goroutine has
// exited or ctx's deadline elapses.
func (m *Monitor) Shutdown(ctx context.Context) error {
	m.Stop()
	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
