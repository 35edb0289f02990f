package render

import (
	"slices"
	"testing"

	mandel "github.com/marben/mandelmaps"
	"github.com/marben/mandelmaps/colouring"
	"github.com/marben/mandelmaps/fractal"
	"github.com/marben/mandelmaps/framebuf"
	"github.com/marben/mandelmaps/viewport"
)

// countingVariant records how many points were iterated.
type countingVariant struct {
	fractal.Variant
	calls int
}

func (c *countingVariant) Escape(x, y float64, maxIterations int) (int, bool) {
	c.calls++
	return c.Variant.Escape(x, y, maxIterations)
}

func newJob(w, h, block int, v fractal.Variant) Job {
	vp := viewport.Viewport{Area: mandel.DefaultMandelbrotArea, Width: w, Height: h}
	return Job{
		Frame:         framebuf.New(w, h),
		View:          vp,
		Variant:       v,
		Scheme:        colouring.MandelbrotDefault{},
		Block:         block,
		MaxIterations: 50,
	}
}

func blockRows(h, block int) []int {
	var rows []int
	for y := 0; y < h; y += block {
		rows = append(rows, y)
	}
	return rows
}

func TestRunFine(t *testing.T) {
	j := newJob(20, 15, 1, fractal.Mandelbrot{})
	if !j.Run(slices.Values(blockRows(15, 1)), Hooks{}) {
		t.Fatal("Run() reported abort")
	}
	if got := j.Frame.Count(1); got != 20*15 {
		t.Errorf("Count(1) = %d, want %d", got, 20*15)
	}
	if !j.Fine() {
		t.Error("Fine() = false for block 1")
	}
}

func TestRunColours(t *testing.T) {
	vp := viewport.Viewport{Area: mandel.GraphArea{XMin: -0.5, YMax: 0.5, Width: 1}, Width: 2, Height: 2}
	j := Job{
		Frame:         framebuf.New(2, 2),
		View:          vp,
		Variant:       fractal.Mandelbrot{},
		Scheme:        colouring.MandelbrotDefault{},
		Block:         1,
		MaxIterations: 100,
	}
	j.Run(slices.Values([]int{0, 1}), Hooks{})
	// (-0.5, 0.5) and (0, 0) both lie inside the set.
	if got := j.Frame.Pixel(0, 0); got != j.Scheme.Inside() {
		t.Errorf("Pixel(0, 0) = %#08x, want inside colour", got)
	}
	if got := j.Frame.Pixel(1, 1); got != j.Scheme.Inside() {
		t.Errorf("Pixel(1, 1) = %#08x, want inside colour", got)
	}
}

func TestCrudeBlocksClipped(t *testing.T) {
	j := newJob(7, 5, 3, fractal.Mandelbrot{})
	j.Run(slices.Values(blockRows(5, 3)), Hooks{})
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			if got := j.Frame.Size(x, y); got != 3 {
				t.Fatalf("Size(%d, %d) = %d, want 3", x, y, got)
			}
			ax, ay := x/3*3, y/3*3
			if j.Frame.Pixel(x, y) != j.Frame.Pixel(ax, ay) {
				t.Fatalf("pixel (%d, %d) differs from its block anchor (%d, %d)", x, y, ax, ay)
			}
		}
	}
}

func TestRunSkipsFinerPixels(t *testing.T) {
	v := &countingVariant{Variant: fractal.Mandelbrot{}}
	j := newJob(16, 12, 1, v)
	rows := blockRows(12, 1)

	j.Run(slices.Values(rows), Hooks{})
	if v.calls != 16*12 {
		t.Fatalf("first pass iterated %d points, want %d", v.calls, 16*12)
	}

	// A finished fine pass is skipped by every later block size.
	for _, block := range []int{1, 3} {
		v.calls = 0
		again := j
		again.Block = block
		again.Run(slices.Values(blockRows(12, block)), Hooks{})
		if v.calls != 0 {
			t.Errorf("block %d pass iterated %d points, want 0", block, v.calls)
		}
	}
}

func TestFineRefinesCrude(t *testing.T) {
	v := &countingVariant{Variant: fractal.Mandelbrot{}}
	crude := newJob(9, 9, 3, v)
	crude.Run(slices.Values(blockRows(9, 3)), Hooks{})
	if v.calls != 9 {
		t.Fatalf("crude pass iterated %d points, want 9", v.calls)
	}

	v.calls = 0
	fine := crude
	fine.Block = 1
	fine.Run(slices.Values(blockRows(9, 1)), Hooks{})
	if v.calls != 81 {
		t.Errorf("fine pass iterated %d points, want 81", v.calls)
	}
}

func TestAbort(t *testing.T) {
	j := newJob(10, 10, 1, fractal.Mandelbrot{})

	var finished []int
	repaints := 0
	ok := j.Run(slices.Values(blockRows(10, 1)), Hooks{
		Abort:   func() bool { return len(finished) == 4 },
		OnRow:   func(row int) { finished = append(finished, row) },
		Repaint: func() { repaints++ },
	})
	if ok {
		t.Error("Run() = true, want false after abort")
	}
	if !slices.Equal(finished, []int{0, 1, 2, 3}) {
		t.Errorf("finished rows = %v, want [0 1 2 3]", finished)
	}
	if got := j.Frame.Count(1); got != 40 {
		t.Errorf("Count(1) = %d, want 40 (partial rows stay)", got)
	}
	if repaints != 0 {
		t.Errorf("aborted job repainted %d times, want 0", repaints)
	}
}

func TestRepaintCadence(t *testing.T) {
	j := newJob(4, 24, 1, fractal.Mandelbrot{})
	repaints := 0
	j.Run(slices.Values(blockRows(24, 1)), Hooks{
		Repaint:      func() { repaints++ },
		RepaintEvery: 24 / 12,
	})
	// Every second row plus the final repaint.
	if repaints != 13 {
		t.Errorf("repaints = %d, want 13", repaints)
	}
}

func TestOutOfRangeRowsIgnored(t *testing.T) {
	j := newJob(4, 4, 1, fractal.Mandelbrot{})
	if !j.Run(slices.Values([]int{-1, 0, 4, 9}), Hooks{}) {
		t.Fatal("Run() reported abort")
	}
	if got := j.Frame.Count(1); got != 4 {
		t.Errorf("Count(1) = %d, want 4", got)
	}
}

func TestEmptyFrame(t *testing.T) {
	j := newJob(0, 0, 1, fractal.Mandelbrot{})
	if !j.Run(slices.Values([]int{0}), Hooks{}) {
		t.Error("Run() on an empty frame should be a no-op")
	}
}
