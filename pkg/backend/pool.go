// Package backend runs submitted hooks outside the request path.
package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/metrics"
	"go.uber.org/zap"
)

var (
	ErrQueueFull = errors.New("backend: queue full")
	ErrClosed    = errors.New("backend: closed")
)

type PoolConfig struct {
	Workers    int           // default 4
	QueueSize  int           // default 1024
	JobTimeout time.Duration // 0 = no per-job deadline
}

type poolJob struct {
	id      string
	h       hooks.Handler
	payload []byte
}

// Pool is an in-process job backend: a bounded queue drained by a fixed set
// of goroutines. Submit never blocks.
type Pool struct {
	cfg PoolConfig
	log *zap.Logger

	queue chan poolJob
	wg    sync.WaitGroup

	mu      sync.RWMutex
	started bool
	closed  bool
	cancel  context.CancelFunc
}

func NewPool(cfg PoolConfig, log *zap.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{cfg: cfg, log: log, queue: make(chan poolJob, cfg.QueueSize)}
}

// Start launches the workers. Jobs run under a context derived from ctx's
// values but not its cancellation; Stop controls their lifetime.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.started {
		return nil
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	p.started = true
	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.work(runCtx, i)
	}
	p.log.Info("job pool started", zap.Int("workers", p.cfg.Workers), zap.Int("queue", p.cfg.QueueSize))
	return nil
}

// Submit enqueues h with payload and returns immediately.
func (p *Pool) Submit(_ context.Context, h hooks.Handler, payload []byte) (hooks.Handle, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return hooks.Handle{}, ErrClosed
	}
	j := poolJob{id: uuid.NewString(), h: h, payload: payload}
	select {
	case p.queue <- j:
		metrics.ObserveJobQueued(h.Name, len(p.queue))
		return hooks.Handle{ID: j.id, Task: h.Name, Backend: "inproc"}, nil
	default:
		metrics.ObserveJobRejected(h.Name)
		return hooks.Handle{}, ErrQueueFull
	}
}

// Stop refuses new jobs and waits for queued ones. When ctx expires first the
// running jobs are cancelled and ctx's error is returned.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	started := p.started
	p.mu.Unlock()

	if !started {
		return nil
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.cancel()
		p.log.Info("job pool drained")
		return nil
	case <-ctx.Done():
		p.cancel()
		p.log.Warn("job pool stop deadline reached", zap.Int("pending", len(p.queue)))
		return ctx.Err()
	}
}

func (p *Pool) work(ctx context.Context, n int) {
	defer p.wg.Done()
	for j := range p.queue {
		p.run(ctx, n, j)
	}
}

func (p *Pool) run(ctx context.Context, n int, j poolJob) {
	if p.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.JobTimeout)
		defer cancel()
	}
	start := time.Now()
	err := safeRun(ctx, j)
	lat := time.Since(start)

	status := "succeeded"
	if err != nil {
		status = "failed"
		p.log.Error("job failed",
			zap.String("jobId", j.id),
			zap.String("task", j.h.Name),
			zap.Int("worker", n),
			zap.Duration("lat", lat),
			zap.Error(err),
		)
	} else {
		p.log.Info("job done",
			zap.String("jobId", j.id),
			zap.String("task", j.h.Name),
			zap.Int("worker", n),
			zap.Duration("lat", lat),
		)
	}
	metrics.ObserveJobFinished(j.h.Name, status, lat, len(p.queue))
}

func safeRun(ctx context.Context, j poolJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return j.h.Run(ctx, j.payload)
}

var _ hooks.Backend = (*Pool)(nil)
