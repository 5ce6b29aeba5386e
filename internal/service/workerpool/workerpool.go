// Package workerpool implements the fixed-size worker pool (spec.md
// §4.7): a bounded number of worker goroutines consuming job ids from
// a large buffered queue, each running a Persister to completion.
package workerpool

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Persister is the narrow surface the pool needs from
// persister.Persister, kept as an interface so the pool is testable
// without a real persister/store stack.
type Persister interface {
	Run(ctx context.Context, jobID uint64) error
}

// Pool runs size workers draining a buffered job-id channel whose
// capacity is fixed at construction. Put does not block while the
// backlog is below that capacity; once the buffer is full, Put blocks
// until a worker takes a job or the pool is stopped.
type Pool struct {
	log       *logrus.Logger
	persister Persister
	size      int

	jobs chan uint64
	wg   sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a pool of size workers, each running a job with
// persister.Run. queueCapacity bounds the channel buffer; spec.md
// describes the queue as unbounded, so callers should size this
// generously (e.g. several thousand) rather than rely on backpressure.
func New(size int, queueCapacity int, persister Persister, log *logrus.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		log:       log,
		persister: persister,
		size:      size,
		jobs:      make(chan uint64, queueCapacity),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the pool's worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *Pool) worker(index int) {
	defer p.wg.Done()
	log := p.log.WithField("worker", index)

	for {
		select {
		case <-p.ctx.Done():
			return
		case jobID, ok := <-p.jobs:
			if !ok {
				return
			}
			if err := p.persister.Run(context.WithoutCancel(p.ctx), jobID); err != nil {
				log.WithError(err).WithField("job_id", jobID).Warn("persist job run returned an error")
			}
		}
	}
}

// Put enqueues a job id for processing. It is safe to call
// concurrently with Start and from the monitor's poll loop.
func (p *Pool) Put(jobID uint64) {
	select {
	case p.jobs <- jobID:
	case <-p.ctx.Done():
	}
}

// Stop signals every worker to drain and exit once the current job
// (if any) finishes, without waiting.
func (p *Pool) Stop() {
	p.cancel()
}

// Shutdown stops the pool and blocks until every worker has exited or
// ctx's deadline elapses, whichever comes first (spec.md §9
// "Join timeout on shutdown", supplemented from original_source/).
func (p *Pool) Shutdown(ctx context.Context) error {
	p.Stop()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
