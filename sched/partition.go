package sched

import "iter"

// Order is the sequence in which a worker visits the rows it owns.
type Order int

const (
	// CentreOut starts at the vertical midpoint and alternates outward, so
	// the middle of the image sharpens first.
	CentreOut Order = iota
	// Strided walks each worker's rows top to bottom.
	Strided
)

func (o Order) String() string {
	switch o {
	case CentreOut:
		return "centre-out"
	case Strided:
		return "strided"
	}
	return "unknown"
}

// Partition splits the rows of a frame between workers. The frame is cut
// into block rows of Block pixels; block row k belongs to worker k mod
// Workers, so consecutive block rows go to different workers and every worker
// makes visible progress over the whole image.
type Partition struct {
	Height  int
	Block   int
	Workers int
	Order   Order
}

func (p Partition) valid() bool {
	return p.Height > 0 && p.Block > 0 && p.Workers > 0
}

func (p Partition) blockRows() int {
	return (p.Height + p.Block - 1) / p.Block
}

// Owner returns the worker that computes pixel row y, or -1 outside the frame.
func (p Partition) Owner(y int) int {
	if !p.valid() || y < 0 || y >= p.Height {
		return -1
	}
	return (y / p.Block) % p.Workers
}

// Rows yields the first pixel row of every block row owned by worker, in the
// partition's order.
func (p Partition) Rows(worker int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if !p.valid() || worker < 0 || worker >= p.Workers {
			return
		}
		n := p.blockRows()

		if p.Order == Strided {
			for k := worker; k < n; k += p.Workers {
				if !yield(k * p.Block) {
					return
				}
			}
			return
		}

		// Rings of growing distance around the middle block row: the row
		// below the midpoint first, then the one above.
		mid := (p.Height / 2) / p.Block
		for d := 0; mid+d < n || mid-d >= 0; d++ {
			if k := mid + d; k < n && k%p.Workers == worker {
				if !yield(k * p.Block) {
					return
				}
			}
			if k := mid - d; d > 0 && k >= 0 && k%p.Workers == worker {
				if !yield(k * p.Block) {
					return
				}
			}
		}
	}
}
