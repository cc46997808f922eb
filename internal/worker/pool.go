package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vytor/studycards/internal/logger"
)

var (
	// ErrQueueFull is returned by TrySubmit when no queue slot is free.
	ErrQueueFull = errors.New("worker queue full")
	// ErrPoolStopped is returned by TrySubmit after Stop.
	ErrPoolStopped = errors.New("worker pool stopped")
)

type Job interface {
	Run(context.Context) error
	Name() string
}

// Stats counts job outcomes since the pool was created.
type Stats struct {
	Completed uint64
	Failed    uint64
	Dropped   uint64
}

// Pool runs jobs on a fixed set of workers fed by a bounded queue. Stop drains
// whatever is already queued before returning.
type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	workers int
	queue   int
	cancel  context.CancelFunc
	log     *logger.Logger

	mu      sync.RWMutex
	stopped bool

	completed atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	log := logger.Default().WithPrefix("audit-pool")
	log.Debug("creating pool: workers=%d, queue=%d", workers, queueSize)
	return &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
		queue:   queueSize,
		cancel:  func() {},
		log:     log,
	}
}

// Start launches the workers. Jobs run with a context derived from ctx that is
// cancelled only when Stop gives up waiting.
func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting pool with %d workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(ctx, i+1)
	}
}

func (p *Pool) work(ctx context.Context, id int) {
	defer p.wg.Done()
	workerLog := p.log.WithField("worker_id", id)

	for job := range p.jobs {
		jobLog := workerLog.WithField("job", job.Name())
		start := time.Now()

		if err := job.Run(logger.NewContext(ctx, jobLog)); err != nil {
			p.failed.Add(1)
			jobLog.Error("job failed after %v: %v", time.Since(start), err)
			continue
		}
		p.completed.Add(1)
		jobLog.Debug("job completed in %v", time.Since(start))
	}
	workerLog.Debug("worker exiting, queue drained")
}

// Stop refuses new jobs and waits for queued ones to finish. If ctx expires
// first, running jobs are cancelled and ctx's error is returned.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.log.Info("stopping pool: %d jobs pending", len(p.jobs))

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		s := p.Stats()
		p.log.Info("pool stopped: completed=%d, failed=%d, dropped=%d", s.Completed, s.Failed, s.Dropped)
		return nil
	case <-ctx.Done():
		p.log.Warn("pool stop timed out, cancelling running jobs")
		p.cancel()
		<-done
		return ctx.Err()
	}
}

// TrySubmit queues job without blocking and fails when the queue is full.
func (p *Pool) TrySubmit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.dropped.Add(1)
		return ErrPoolStopped
	}

	select {
	case p.jobs <- job:
		p.log.Debug("queued job: %s", job.Name())
		return nil
	default:
		p.dropped.Add(1)
		p.log.Warn("dropping job %s: queue full (%d)", job.Name(), p.queue)
		return ErrQueueFull
	}
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}

func (p *Pool) Stats() Stats {
	return Stats{
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
		Dropped:   p.dropped.Load(),
	}
}
