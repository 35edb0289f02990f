package sched

import (
	"fmt"
	"sync/atomic"

	"github.com/marben/mandelmaps/render"
)

// State is the lifecycle of a worker: Idle → Running → CancelRequested → Idle.
type State int32

const (
	Idle State = iota
	Running
	CancelRequested
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case CancelRequested:
		return "cancel requested"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// task is a job bound to the epoch it was scheduled in.
type task struct {
	job   render.Job
	epoch uint64
}

// Worker renders the jobs of its own FIFO queue, one at a time. Jobs are
// never shared or stolen between workers.
type Worker struct {
	id    int
	queue chan task

	abort   atomic.Bool
	state   atomic.Int32
	lastRow atomic.Int64
}

func newWorker(id, queueLen int) *Worker {
	w := &Worker{
		id:    id,
		queue: make(chan task, queueLen),
	}
	w.lastRow.Store(-1)
	return w
}

func (w *Worker) ID() int { return w.id }

// State returns the current lifecycle state.
func (w *Worker) State() State { return State(w.state.Load()) }

// LastRow returns the last row the worker finished, or -1 when its current
// job has not finished a row yet.
func (w *Worker) LastRow() int { return int(w.lastRow.Load()) }

// Aborted reports whether the worker was asked to abandon its job.
func (w *Worker) Aborted() bool { return w.abort.Load() }

// abortRendering asks the running job to stop at its next row.
func (w *Worker) abortRendering() {
	w.abort.Store(true)
	w.state.CompareAndSwap(int32(Running), int32(CancelRequested))
}

// allowRendering clears the abort flag before a new job starts.
func (w *Worker) allowRendering() {
	w.abort.Store(false)
}

// drain discards every queued job without running it.
func (w *Worker) drain() (dropped int) {
	for {
		select {
		case <-w.queue:
			dropped++
		default:
			return dropped
		}
	}
}
