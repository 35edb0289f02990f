package mandel

import (
	"image"
	"time"
)

// Host is the shell a fractal view reports to. All methods are advisory and
// may be called from render workers as well as from the goroutine driving the
// view, so implementations must be safe for concurrent use and must not block.
type Host interface {
	// RepaintRequested asks the host to redraw the view's raster.
	RepaintRequested()
	// RenderComplete is called once every worker finished the full resolution pass.
	RenderComplete(elapsed time.Duration)
	// MaxDepthReached reports that a candidate graph area was rejected.
	MaxDepthReached()
}

// HostFuncs adapts plain functions to Host. Nil fields are ignored.
type HostFuncs struct {
	OnRepaint  func()
	OnComplete func(elapsed time.Duration)
	OnMaxDepth func()
}

func (h HostFuncs) RepaintRequested() {
	if h.OnRepaint != nil {
		h.OnRepaint()
	}
}

func (h HostFuncs) RenderComplete(elapsed time.Duration) {
	if h.OnComplete != nil {
		h.OnComplete(elapsed)
	}
}

func (h HostFuncs) MaxDepthReached() {
	if h.OnMaxDepth != nil {
		h.OnMaxDepth()
	}
}

var _ Host = HostFuncs{}

// ImgProvider gives a host shell the current raster of a view.
type ImgProvider interface {
	Image() *image.RGBA
}
