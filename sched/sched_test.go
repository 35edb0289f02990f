package sched

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	mandel "github.com/marben/mandelmaps"
	"github.com/marben/mandelmaps/colouring"
	"github.com/marben/mandelmaps/fractal"
	"github.com/marben/mandelmaps/framebuf"
	"github.com/marben/mandelmaps/render"
	"github.com/marben/mandelmaps/viewport"
)

// ---------------------------------------------------------------------------
// Partition
// ---------------------------------------------------------------------------

func TestPartitionCoverage(t *testing.T) {
	for _, order := range []Order{CentreOut, Strided} {
		for workers := 1; workers <= 7; workers++ {
			for _, block := range []int{1, 2, 3, 7} {
				for height := 0; height <= 50; height++ {
					p := Partition{Height: height, Block: block, Workers: workers, Order: order}
					seen := make([]int, height)
					for w := 0; w < workers; w++ {
						for r := range p.Rows(w) {
							for y := r; y < min(r+block, height); y++ {
								seen[y]++
								if owner := p.Owner(y); owner != w {
									t.Fatalf("%v: Owner(%d) = %d, but worker %d computed it", p, y, owner, w)
								}
							}
						}
					}
					for y, n := range seen {
						if n != 1 {
							t.Fatalf("%v: row %d covered %d times, want 1", p, y, n)
						}
					}
				}
			}
		}
	}
}

func collect(p Partition, w int) []int {
	var rows []int
	for r := range p.Rows(w) {
		rows = append(rows, r)
	}
	return rows
}

func TestStridedOrder(t *testing.T) {
	p := Partition{Height: 20, Block: 3, Workers: 2, Order: Strided}
	got := collect(p, 1)
	want := []int{3, 9, 15}
	if len(got) != len(want) {
		t.Fatalf("Rows(1) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Rows(1) = %v, want %v", got, want)
		}
	}
}

func TestCentreOutStartsInTheMiddle(t *testing.T) {
	p := Partition{Height: 100, Block: 1, Workers: 1, Order: CentreOut}
	got := collect(p, 0)
	want := []int{50, 51, 49, 52, 48}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Rows(0)[:5] = %v, want %v", got[:5], want)
		}
	}

	// Distance from the middle never decreases.
	prev := 0
	for _, r := range got {
		d := max(r-50, 50-r)
		if d < prev {
			t.Fatalf("row %d is closer to the middle than an earlier row", r)
		}
		prev = d
	}
}

func TestPartitionEdgeCases(t *testing.T) {
	p := Partition{Height: 10, Block: 1, Workers: 3}
	if got := p.Owner(-1); got != -1 {
		t.Errorf("Owner(-1) = %d, want -1", got)
	}
	if got := p.Owner(10); got != -1 {
		t.Errorf("Owner(10) = %d, want -1", got)
	}
	if rows := collect(p, 3); len(rows) != 0 {
		t.Errorf("Rows(3) of a 3-worker partition = %v, want none", rows)
	}
	if rows := collect(Partition{Height: 10, Block: 0, Workers: 1}, 0); len(rows) != 0 {
		t.Errorf("Rows() with zero block = %v, want none", rows)
	}

	// Stopping early must not panic.
	for range p.Rows(0) {
		break
	}
}

// ---------------------------------------------------------------------------
// Pool
// ---------------------------------------------------------------------------

func newJob(w, h, block int, v fractal.Variant) render.Job {
	return render.Job{
		Frame:         framebuf.New(w, h),
		View:          viewport.Viewport{Area: mandel.DefaultMandelbrotArea, Width: w, Height: h},
		Variant:       v,
		Scheme:        colouring.MandelbrotDefault{},
		Block:         block,
		MaxIterations: 30,
	}
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestPoolDefaults(t *testing.T) {
	p := NewPool(Options{})
	defer p.Close()
	if p.Size() < 1 {
		t.Errorf("Size() = %d, want at least 1", p.Size())
	}
	if p.Rendering() {
		t.Error("Rendering() = true before anything was scheduled")
	}
	if err := p.Wait(waitCtx(t)); err != nil {
		t.Errorf("Wait() before scheduling = %v", err)
	}
}

func TestPoolRendersEveryPixel(t *testing.T) {
	var completions atomic.Int32
	var repaints atomic.Int32
	p := NewPool(Options{
		Workers:    4,
		Progress:   true,
		OnRepaint:  func() { repaints.Add(1) },
		OnComplete: func(time.Duration) { completions.Add(1) },
	})
	defer p.Close()

	crude := newJob(40, 30, fractal.CrudeBlock, fractal.Mandelbrot{})
	fine := crude
	fine.Block = fractal.FineBlock

	p.Restart()
	p.Enqueue(crude)
	p.Enqueue(fine)

	if err := p.Wait(waitCtx(t)); err != nil {
		t.Fatal(err)
	}
	if got := fine.Frame.Count(1); got != 40*30 {
		t.Errorf("Count(1) = %d, want %d", got, 40*30)
	}
	if got := completions.Load(); got != 1 {
		t.Errorf("OnComplete called %d times, want 1", got)
	}
	if repaints.Load() < 8 {
		t.Errorf("OnRepaint called %d times, want at least one per job end", repaints.Load())
	}
	if p.Rendering() {
		t.Error("Rendering() = true after completion")
	}
}

func TestCrudeCompletionNotCounted(t *testing.T) {
	var completions atomic.Int32
	p := NewPool(Options{Workers: 2, OnComplete: func(time.Duration) { completions.Add(1) }})
	defer p.Close()

	job := newJob(12, 12, fractal.CrudeBlock, fractal.Mandelbrot{})
	p.Restart()
	p.Enqueue(job)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want deadline exceeded", err)
	}
	if job.Frame.Count(3) != 144 {
		t.Errorf("crude pass incomplete: Count(3) = %d", job.Frame.Count(3))
	}
	if completions.Load() != 0 || !p.Rendering() {
		t.Error("a crude pass alone must not complete the render")
	}
}

// gateVariant blocks its first Escape call until released.
type gateVariant struct {
	fractal.Variant
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGate() *gateVariant {
	return &gateVariant{
		Variant: fractal.Mandelbrot{},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gateVariant) Escape(x, y float64, maxIterations int) (int, bool) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.Variant.Escape(x, y, maxIterations)
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestStopAllCancelsAtRowBoundary(t *testing.T) {
	var completions atomic.Int32
	p := NewPool(Options{Workers: 1, Order: Strided, OnComplete: func(time.Duration) { completions.Add(1) }})
	defer p.Close()

	gate := newGate()
	job := newJob(8, 8, 1, gate)
	queued := newJob(8, 8, 1, fractal.Mandelbrot{})

	p.Restart()
	p.Enqueue(job)
	p.Enqueue(queued)

	<-gate.entered
	w := p.Worker(0)
	if got := w.State(); got != Running {
		t.Errorf("State() = %v, want running", got)
	}

	p.StopAll()
	if got := w.State(); got != CancelRequested {
		t.Errorf("State() after StopAll = %v, want cancel requested", got)
	}
	close(gate.release)

	eventually(t, func() bool { return w.State() == Idle })

	// The row in progress completes, nothing after it does.
	if got := job.Frame.Count(1); got != 8 {
		t.Errorf("Count(1) = %d, want one finished row", got)
	}
	if got := w.LastRow(); got != 0 {
		t.Errorf("LastRow() = %d, want 0", got)
	}
	if got := queued.Frame.Count(1); got != 0 {
		t.Errorf("drained job rendered %d pixels", got)
	}
	if completions.Load() != 0 {
		t.Error("cancelled render reported completion")
	}
	if !w.Aborted() {
		t.Error("Aborted() = false after StopAll")
	}
}

func TestStaleJobDiscarded(t *testing.T) {
	p := NewPool(Options{Workers: 1})
	defer p.Close()

	gate := newGate()
	blocker := newJob(1, 1, 1, gate)
	stale := newJob(6, 6, 1, fractal.Mandelbrot{})

	p.Restart()
	p.Enqueue(blocker)
	<-gate.entered

	// Slip a job of the old epoch past the drain.
	old := p.Epoch()
	p.StopAll()
	p.Worker(0).queue <- task{job: stale, epoch: old}
	close(gate.release)

	fresh := newJob(6, 6, 1, fractal.Mandelbrot{})
	p.Restart()
	p.Enqueue(fresh)
	if err := p.Wait(waitCtx(t)); err != nil {
		t.Fatal(err)
	}
	if got := stale.Frame.Count(1); got != 0 {
		t.Errorf("stale job rendered %d pixels", got)
	}
	if got := fresh.Frame.Count(1); got != 36 {
		t.Errorf("fresh job rendered %d pixels, want 36", got)
	}
}

func TestWaitFollowsRestart(t *testing.T) {
	p := NewPool(Options{Workers: 2})
	defer p.Close()

	gate := newGate()
	p.Restart()
	p.Enqueue(newJob(10, 10, 1, gate))
	<-gate.entered

	errc := make(chan error, 1)
	go func() { errc <- p.Wait(waitCtx(t)) }()

	// Supersede the blocked pass with a new one; Wait returns when it completes.
	p.Restart()
	close(gate.release)
	next := newJob(10, 10, 1, fractal.Mandelbrot{})
	p.Enqueue(next)

	if err := <-errc; err != nil {
		t.Fatal(err)
	}
	if got := next.Frame.Count(1); got != 100 {
		t.Errorf("Count(1) = %d, want 100", got)
	}
}

func TestCloseIdempotent(t *testing.T) {
	p := NewPool(Options{Workers: 3})
	p.Restart()
	p.Enqueue(newJob(50, 50, 1, fractal.Mandelbrot{}))
	p.Close()
	p.Close()

	// Enqueue after Close is a no-op.
	p.Enqueue(newJob(5, 5, 1, fractal.Mandelbrot{}))
	for i := 0; i < p.Size(); i++ {
		if n := len(p.Worker(i).queue); n != 0 {
			t.Errorf("worker %d has %d queued jobs after Close", i, n)
		}
	}
}

func TestWaitReturnsOnClose(t *testing.T) {
	p := NewPool(Options{Workers: 2})
	p.Restart()
	// A crude job never completes the round, so Wait blocks until Close.
	p.Enqueue(newJob(12, 12, fractal.CrudeBlock, fractal.Mandelbrot{}))

	errc := make(chan error, 1)
	go func() { errc <- p.Wait(waitCtx(t)) }()
	time.Sleep(20 * time.Millisecond)
	p.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Wait() during Close = %v, want ErrClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Wait() still blocked after Close")
	}

	if err := p.Wait(waitCtx(t)); !errors.Is(err, ErrClosed) {
		t.Errorf("Wait() after Close = %v, want ErrClosed", err)
	}
	if p.Rendering() {
		t.Error("Rendering() = true after Close")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Idle, "idle"},
		{Running, "running"},
		{CancelRequested, "cancel requested"},
		{State(9), "State(9)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
