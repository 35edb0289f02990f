// Package framebuf holds a fractal view's raster together with the block size
// every pixel was last computed at.
//
// A frame is shared by all render workers. Within one job each worker owns
// disjoint rows, but the crude and fine jobs of one render run side by side
// and a crude block spans rows other workers own in the fine pass. Every pixel
// is therefore a single atomic word holding colour and block size, and a
// write only lands if it refines the pixel: a crude result never replaces a
// finer one.
//
// Geometry changes never touch a frame in place; Shift, Resample and Cleared
// return a new frame, so a worker of a cancelled job that is still finishing
// its row writes into a frame nobody shows any more.
package framebuf

import "sync/atomic"

// NeverComputed marks a pixel that holds no usable value at any block size.
const NeverComputed = 1000

const opaqueBlack = 0xFF000000

func pack(colour uint32, size int) uint64 {
	return uint64(size)<<32 | uint64(colour)
}

func unpack(cell uint64) (colour uint32, size int) {
	return uint32(cell), int(cell >> 32)
}

// Frame is a raster of packed 0xAARRGGBB colours with the parallel
// block-size buffer used for dirty tracking. Its dimensions never change.
type Frame struct {
	width, height int
	cells         []atomic.Uint64
}

// New returns a black frame with every pixel marked NeverComputed.
func New(width, height int) *Frame {
	width, height = max(width, 0), max(height, 0)
	f := &Frame{
		width:  width,
		height: height,
		cells:  make([]atomic.Uint64, width*height),
	}
	for i := range f.cells {
		f.cells[i].Store(pack(opaqueBlack, NeverComputed))
	}
	return f
}

func (f *Frame) Width() int  { return f.width }
func (f *Frame) Height() int { return f.height }

// In reports whether (px, py) lies inside the frame.
func (f *Frame) In(px, py int) bool {
	return px >= 0 && py >= 0 && px < f.width && py < f.height
}

// Pixel returns the colour at (px, py).
func (f *Frame) Pixel(px, py int) uint32 {
	c, _ := unpack(f.cells[py*f.width+px].Load())
	return c
}

// Size returns the block size (px, py) was last computed at.
func (f *Frame) Size(px, py int) int {
	_, s := unpack(f.cells[py*f.width+px].Load())
	return s
}

// Skip reports whether the block anchored at (px, py) is already at least as
// refined as block.
func (f *Frame) Skip(px, py, block int) bool {
	return f.Size(px, py) <= block
}

// Record paints the block anchored at (px, py) with colour and marks it as
// computed at the block size. The block is clipped to the frame. Pixels
// already computed at block or finer keep their value.
func (f *Frame) Record(px, py, block int, colour uint32) {
	block = min(block, NeverComputed-1)
	cell := pack(colour, block)

	xEnd := min(px+block, f.width)
	yEnd := min(py+block, f.height)
	for y := max(py, 0); y < yEnd; y++ {
		row := y * f.width
		for x := max(px, 0); x < xEnd; x++ {
			c := &f.cells[row+x]
			for {
				old := c.Load()
				if _, size := unpack(old); size <= block {
					break
				}
				if c.CompareAndSwap(old, cell) {
					break
				}
			}
		}
	}
}

// Clear marks every pixel NeverComputed. Colours are kept so the host can
// show the stale raster until it is repainted.
func (f *Frame) Clear() {
	for i := range f.cells {
		colour, _ := unpack(f.cells[i].Load())
		f.cells[i].Store(pack(colour, NeverComputed))
	}
}

// Cleared returns a copy of f with every pixel marked NeverComputed.
func (f *Frame) Cleared() *Frame {
	g := &Frame{width: f.width, height: f.height, cells: make([]atomic.Uint64, len(f.cells))}
	for i := range f.cells {
		colour, _ := unpack(f.cells[i].Load())
		g.cells[i].Store(pack(colour, NeverComputed))
	}
	return g
}

// Shift returns a new frame holding f's content moved by (dx, dy) pixels.
// The exposed border is marked NeverComputed.
func (f *Frame) Shift(dx, dy int) *Frame {
	g := New(f.width, f.height)

	rows := f.height - abs(dy)
	cols := f.width - abs(dx)
	if rows <= 0 || cols <= 0 {
		return g
	}
	srcY, srcX := max(-dy, 0), max(-dx, 0)
	dstY, dstX := max(dy, 0), max(dx, 0)

	for r := 0; r < rows; r++ {
		src := (srcY+r)*f.width + srcX
		dst := (dstY+r)*g.width + dstX
		for c := 0; c < cols; c++ {
			g.cells[dst+c].Store(f.cells[src+c].Load())
		}
	}
	return g
}

// Count returns how many pixels are computed at block size block or finer.
func (f *Frame) Count(block int) int {
	n := 0
	for i := range f.cells {
		if _, size := unpack(f.cells[i].Load()); size <= block {
			n++
		}
	}
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
