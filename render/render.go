// Package render is the escape-time kernel: it computes the rows a worker
// owns for one job and writes them into a shared frame.
package render

import (
	"iter"

	"github.com/marben/mandelmaps/colouring"
	"github.com/marben/mandelmaps/fractal"
	"github.com/marben/mandelmaps/framebuf"
	"github.com/marben/mandelmaps/viewport"
)

// Job is one pass over a frame at a fixed block size. Jobs are immutable and
// capture everything they read, so a geometry change after scheduling never
// mixes two viewports in one pass.
type Job struct {
	Frame         *framebuf.Frame
	View          viewport.Viewport
	Variant       fractal.Variant
	Scheme        colouring.Scheme
	Block         int
	MaxIterations int
}

// Fine reports whether the job renders at full resolution.
func (j Job) Fine() bool { return j.Block == fractal.FineBlock }

// Hooks connect a running job to its worker and to the host.
type Hooks struct {
	// Abort is consulted before every row; the job returns as soon as it
	// reports true, leaving finished rows in place.
	Abort func() bool
	// OnRow is called after every finished row.
	OnRow func(row int)
	// Repaint is called every RepaintEvery rows and once when the job ends
	// without being aborted. A non-positive RepaintEvery only repaints at the end.
	Repaint      func()
	RepaintEvery int
}

// Run computes every row yielded by rows. Each row is the top of a block
// row: the sampled pixel of every block is its top-left corner. Blocks whose
// pixels are already at least as refined as the job are skipped. Run reports
// whether all rows were computed.
func (j Job) Run(rows iter.Seq[int], h Hooks) bool {
	f := j.Frame
	if f == nil || j.Block <= 0 || f.Width() == 0 || f.Height() == 0 {
		return true
	}
	ps := j.View.PixelSize()
	inside := j.Scheme.Inside()

	done := 0
	for py := range rows {
		if h.Abort != nil && h.Abort() {
			return false
		}
		if py < 0 || py >= f.Height() {
			continue
		}

		y0 := j.View.Area.YMax - float64(py)*ps
		for px := 0; px < f.Width(); px += j.Block {
			if f.Skip(px, py, j.Block) {
				continue
			}
			x0 := j.View.Area.XMin + float64(px)*ps

			colour := inside
			if it, escaped := j.Variant.Escape(x0, y0, j.MaxIterations); escaped {
				colour = j.Scheme.Outside(it, j.MaxIterations)
			}
			f.Record(px, py, j.Block, colour)
		}

		if h.OnRow != nil {
			h.OnRow(py)
		}
		done++
		if h.Repaint != nil && h.RepaintEvery > 0 && done%h.RepaintEvery == 0 {
			h.Repaint()
		}
	}
	if h.Repaint != nil {
		h.Repaint()
	}
	return true
}
