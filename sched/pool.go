// Package sched runs render jobs on a fixed set of workers, each with its own
// FIFO queue, and aggregates their completion.
//
// Cancellation is cooperative. StopAll bumps the pool's epoch, raises every
// worker's abort flag and drains every queue; a running job notices at its
// next row and returns, leaving the rows it finished in place. Jobs carry the
// epoch they were scheduled in, so a job that slipped past the drain is
// discarded when a worker picks it up.
package sched

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	mandel "github.com/marben/mandelmaps"
	"github.com/marben/mandelmaps/render"
)

// ErrClosed is returned by Wait once the pool is closed.
var ErrClosed = errors.New("render pool closed")

// Options configure a Pool.
type Options struct {
	// Workers is the number of workers; zero or less uses runtime.NumCPU().
	Workers int
	Order   Order
	// QueueLen is the capacity of each worker's queue. Defaults to 4.
	QueueLen int
	// Progress makes worker 0 request a repaint every twelfth of the frame
	// height while it renders. Every worker requests one when a job ends.
	Progress bool

	OnRepaint  func()
	OnComplete func(elapsed time.Duration)
}

// round tracks the completion of the fine pass scheduled by one Restart.
type round struct {
	epoch      uint64
	start      time.Time
	finished   bool
	done       chan struct{}
	superseded chan struct{}
}

// Pool owns the workers of one fractal view.
//
// StopAll, Restart and Enqueue are meant to be called by a single
// coordinating goroutine. Completion is tracked per worker with lock-free,
// epoch-stamped flags; the callbacks in Options run on worker goroutines.
type Pool struct {
	opts    Options
	workers []*Worker

	epoch     atomic.Uint64
	completed []atomic.Uint64 // epoch of each worker's last finished fine job
	active    atomic.Int32

	mu  sync.Mutex
	cur *round

	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewPool starts the workers. Close stops them.
func NewPool(opts Options) *Pool {
	n := opts.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	n = max(n, 1)
	if opts.QueueLen <= 0 {
		opts.QueueLen = 4
	}

	done := make(chan struct{})
	close(done)
	p := &Pool{
		opts:      opts,
		workers:   make([]*Worker, n),
		completed: make([]atomic.Uint64, n),
		cur:       &round{finished: true, done: done, superseded: make(chan struct{})},
		quit:      make(chan struct{}),
	}
	for i := range p.workers {
		p.workers[i] = newWorker(i, opts.QueueLen)
	}
	// Epoch 0 belongs to the initial, already finished round.
	p.epoch.Store(1)

	p.wg.Add(n)
	for _, w := range p.workers {
		go p.run(w)
	}
	mandel.Logger().Debug("render pool started", "workers", n, "order", opts.Order)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Worker returns worker i.
func (p *Pool) Worker(i int) *Worker { return p.workers[i] }

// Active returns how many workers are running a job.
func (p *Pool) Active() int { return int(p.active.Load()) }

// Epoch returns the current scheduling epoch.
func (p *Pool) Epoch() uint64 { return p.epoch.Load() }

// StopAll cancels running jobs and discards queued ones.
func (p *Pool) StopAll() {
	e := p.epoch.Add(1)
	dropped := 0
	for _, w := range p.workers {
		w.abortRendering()
		dropped += w.drain()
	}
	mandel.Logger().Debug("rendering stopped", "epoch", e, "dropped", dropped)
}

// Restart cancels all work and starts tracking a new fine pass. Jobs
// enqueued afterwards belong to it.
func (p *Pool) Restart() {
	p.StopAll()

	p.mu.Lock()
	old := p.cur
	p.cur = &round{
		epoch:      p.epoch.Load(),
		start:      time.Now(),
		done:       make(chan struct{}),
		superseded: make(chan struct{}),
	}
	p.mu.Unlock()
	close(old.superseded)
}

// Enqueue appends job to every worker's queue. Each worker renders the rows
// it owns.
func (p *Pool) Enqueue(job render.Job) {
	select {
	case <-p.quit:
		return
	default:
	}

	e := p.epoch.Load()
	for _, w := range p.workers {
		w.allowRendering()
		select {
		case w.queue <- task{job: job, epoch: e}:
		default:
			mandel.Logger().Warn("render queue full, job dropped", "worker", w.id, "block", job.Block)
		}
	}
}

// Rendering reports whether the fine pass of the latest Restart has not
// completed yet, including when it was stopped before finishing.
func (p *Pool) Rendering() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.cur.finished
}

// Wait blocks until the fine pass of the latest Restart completes, following
// newer passes that supersede it. It returns ErrClosed once the pool is
// closed.
func (p *Pool) Wait(ctx context.Context) error {
	for {
		select {
		case <-p.quit:
			return ErrClosed
		default:
		}

		p.mu.Lock()
		r := p.cur
		p.mu.Unlock()

		select {
		case <-r.done:
			return nil
		case <-r.superseded:
		case <-p.quit:
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops all work and waits for the workers to exit. It is safe to call
// more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.StopAll()
		close(p.quit)

		done := make(chan struct{})
		close(done)
		p.mu.Lock()
		old := p.cur
		p.cur = &round{finished: true, done: done, superseded: make(chan struct{})}
		p.mu.Unlock()
		close(old.superseded)

		p.wg.Wait()
		mandel.Logger().Debug("render pool closed")
	})
}

func (p *Pool) run(w *Worker) {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case t := <-w.queue:
			p.execute(w, t)
		}
	}
}

func (p *Pool) execute(w *Worker, t task) {
	if t.epoch != p.epoch.Load() || t.job.Frame == nil {
		return
	}
	w.allowRendering()
	w.lastRow.Store(-1)
	w.state.Store(int32(Running))
	p.active.Add(1)

	part := Partition{
		Height:  t.job.Frame.Height(),
		Block:   t.job.Block,
		Workers: len(p.workers),
		Order:   p.opts.Order,
	}
	hooks := render.Hooks{
		Abort: func() bool {
			return w.abort.Load() || p.epoch.Load() != t.epoch
		},
		OnRow: func(row int) {
			w.lastRow.Store(int64(row))
		},
		Repaint: p.opts.OnRepaint,
	}
	if w.id == 0 && p.opts.Progress {
		hooks.RepaintEvery = max(1, part.Height/12)
	}

	finished := t.job.Run(part.Rows(w.id), hooks)

	p.active.Add(-1)
	w.state.Store(int32(Idle))

	// A job that finished its last row after being cancelled does not count.
	if !finished || t.epoch != p.epoch.Load() {
		mandel.Logger().Debug("job aborted", "worker", w.id, "block", t.job.Block, "lastRow", w.LastRow())
		return
	}
	if t.job.Fine() {
		p.markComplete(w, t.epoch)
	}
}

// markComplete records that w finished the fine job of epoch and fires the
// completion callback once every worker has.
func (p *Pool) markComplete(w *Worker, epoch uint64) {
	p.completed[w.id].Store(epoch)
	for i := range p.completed {
		if p.completed[i].Load() != epoch {
			return
		}
	}

	p.mu.Lock()
	r := p.cur
	if r.epoch != epoch || r.finished {
		p.mu.Unlock()
		return
	}
	r.finished = true
	close(r.done)
	elapsed := time.Since(r.start)
	p.mu.Unlock()

	mandel.Logger().Info("render complete", "epoch", epoch, "elapsed", elapsed)
	if p.opts.OnComplete != nil {
		p.opts.OnComplete(elapsed)
	}
}
