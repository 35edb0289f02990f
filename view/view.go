// Package view drives one interactive fractal view: it owns the graph area,
// the frame and the render pool, and turns host gestures into renders.
//
// All methods are safe for concurrent use; they are serialized by a mutex
// and never wait for render workers while holding it. Host callbacks are
// invoked without the mutex held, from the calling goroutine or from render
// workers.
package view

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	mandel "github.com/marben/mandelmaps"
	"github.com/marben/mandelmaps/colouring"
	"github.com/marben/mandelmaps/fractal"
	"github.com/marben/mandelmaps/framebuf"
	"github.com/marben/mandelmaps/render"
	"github.com/marben/mandelmaps/sched"
	"github.com/marben/mandelmaps/viewport"
)

// Size distinguishes the main view from the small companion view.
type Size int

const (
	// Large is the main, interactive view.
	Large Size = iota
	// Little is the companion view: no crude pass, no zoom-depth checks, no
	// progress repaints and a higher detail.
	Little
)

// Options configure a View.
type Options struct {
	Kind     fractal.Kind
	Size     Size
	Location mandel.Location

	Width, Height int

	Workers int
	Order   sched.Order

	// Detail is the iteration budget percentage, see fractal.ClampDetail.
	Detail float64
	// Colours names a colouring scheme; empty selects the variant default.
	Colours string
	// Crude enables the low resolution preview pass.
	Crude bool
}

// DefaultOptions returns the options of a main view of kind at home.
func DefaultOptions(kind fractal.Kind) Options {
	return Options{
		Kind:     kind,
		Size:     Large,
		Location: mandel.DefaultLocation(),
		Order:    sched.CentreOut,
		Detail:   fractal.DetailDefault,
		Crude:    true,
	}
}

// DefaultColours is the colouring scheme a variant starts with.
func DefaultColours(kind fractal.Kind) string {
	if kind == fractal.KindJulia {
		return colouring.NameJuliaDefault
	}
	return colouring.NameMandelbrotDefault
}

// Gesture is the host gesture a view is in.
type Gesture int

const (
	Static Gesture = iota
	Dragging
	Zooming
)

var (
	ErrClosed      = errors.New("view closed")
	ErrInvalidArea = errors.New("invalid graph area")
)

// View is one fractal view.
type View struct {
	mu   sync.Mutex
	host mandel.Host
	pool *sched.Pool

	kind    fractal.Kind
	size    Size
	variant fractal.Variant
	param   mandel.Param
	scheme  colouring.Scheme
	colours string
	detail  float64
	crude   bool

	width, height int
	area          mandel.GraphArea
	hasArea       bool
	frame         *framebuf.Frame

	gesture    Gesture
	transform  viewport.Transform
	totalScale float64
	dragX      float64
	dragY      float64
	hasZoomed  bool

	paused  bool
	pending bool // a render was requested while paused
	closed  bool

	// Host notifications collected under mu, delivered by unlock.
	notifyMaxDepth int
	notifyRepaint  bool
}

// New creates a view and, when opts carries a size, starts rendering.
// A nil host receives nothing.
func New(opts Options, host mandel.Host) (*View, error) {
	if host == nil {
		host = mandel.HostFuncs{}
	}
	if opts.Kind == "" {
		opts.Kind = fractal.KindMandelbrot
	}
	if opts.Colours == "" {
		opts.Colours = DefaultColours(opts.Kind)
	}
	scheme, err := colouring.ByName(opts.Colours)
	if err != nil {
		return nil, err
	}
	variant, err := fractal.New(opts.Kind, opts.Location.JuliaParam)
	if err != nil {
		return nil, err
	}
	area := areaOf(opts.Kind, opts.Location)
	if !area.Valid() {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidArea, area)
	}

	v := &View{
		host:       host,
		kind:       opts.Kind,
		size:       opts.Size,
		variant:    variant,
		param:      opts.Location.JuliaParam,
		scheme:     scheme,
		colours:    opts.Colours,
		detail:     fractal.ClampDetail(opts.Detail),
		crude:      opts.Crude,
		frame:      framebuf.New(0, 0),
		transform:  viewport.Identity,
		totalScale: 1,
	}
	v.pool = sched.NewPool(sched.Options{
		Workers:    opts.Workers,
		Order:      opts.Order,
		Progress:   opts.Size == Large,
		OnRepaint:  host.RepaintRequested,
		OnComplete: host.RenderComplete,
	})

	v.mu.Lock()
	defer v.unlock()
	v.setGraphArea(area, false)
	if opts.Width > 0 && opts.Height > 0 {
		v.resize(opts.Width, opts.Height)
	}
	return v, nil
}

func areaOf(kind fractal.Kind, loc mandel.Location) mandel.GraphArea {
	if kind == fractal.KindJulia {
		return loc.Julia
	}
	return loc.Mandelbrot
}

// unlock releases mu and then delivers the notifications collected while
// it was held.
func (v *View) unlock() {
	maxDepth, repaint := v.notifyMaxDepth, v.notifyRepaint
	v.notifyMaxDepth, v.notifyRepaint = 0, false
	v.mu.Unlock()

	for range maxDepth {
		v.host.MaxDepthReached()
	}
	if repaint {
		v.host.RepaintRequested()
	}
}

func (v *View) viewport() viewport.Viewport {
	return viewport.Viewport{Area: v.area, Width: v.width, Height: v.height}
}

func (v *View) maxZoomLn() float64 {
	return v.variant.Constants().MaxZoomLn
}

func (v *View) maxIterations() int {
	detail := v.detail
	if v.size == Little {
		detail *= fractal.LittleDetailFactor
	}
	return fractal.MaxIterations(v.variant.Constants(), v.viewport().PixelSize(), detail)
}

// setGraphArea commits cand. On the main view the candidate is first
// committed on trial: if its zoom level is not sane the previous area is
// restored and the host is told the maximum depth was reached. Invalid
// candidates are ignored. It reports whether cand was accepted.
func (v *View) setGraphArea(cand mandel.GraphArea, schedule bool) bool {
	if !cand.Valid() {
		return false
	}
	if v.hasArea && v.size == Large {
		prev := v.area
		v.area = cand
		if level := v.viewport().ZoomLevel(v.maxZoomLn()); !viewport.Sane(level) {
			v.area = prev
			v.notifyMaxDepth++
			mandel.Logger().Warn("graph area rejected", "kind", v.kind, "zoomLevel", level)
			return false
		}
	} else {
		v.area = cand
		v.hasArea = true
	}
	if schedule {
		v.scheduleNewRenders()
	}
	return true
}

// scheduleNewRenders cancels all work and queues a fine pass, preceded by
// a crude one when the change was large enough to make the old raster
// misleading.
func (v *View) scheduleNewRenders() {
	if v.closed || v.width <= 0 || v.height <= 0 || !v.hasArea {
		return
	}
	if v.paused {
		v.pending = true
		v.pool.StopAll()
		return
	}
	v.pending = false

	unfinished := v.pool.Rendering()
	v.pool.Restart()

	maxIter := v.maxIterations()
	job := render.Job{
		Frame:         v.frame,
		View:          v.viewport(),
		Variant:       v.variant,
		Scheme:        v.scheme,
		MaxIterations: maxIter,
	}

	if v.wantsCrude(unfinished) {
		crude := job
		crude.Block = fractal.CrudeBlockFor(v.width, maxIter)
		v.pool.Enqueue(crude)
	}
	v.totalScale = 1

	job.Block = fractal.FineBlock
	v.pool.Enqueue(job)

	mandel.Logger().Debug("renders scheduled",
		"kind", v.kind, "area", v.area, "maxIterations", maxIter, "epoch", v.pool.Epoch())
}

// wantsCrude reports whether a crude pass should precede the fine one: the
// previous render never finished, or the zoom since it was not a small
// adjustment of the raster on screen.
func (v *View) wantsCrude(unfinished bool) bool {
	if v.size == Little || !v.crude {
		return false
	}
	s := v.totalScale
	return s < 0.6 || s == 1 || s > 3.5 || unfinished
}

// endGesture abandons the gesture in progress, so that the host's closing
// EndDrag or EndZoom is ignored.
func (v *View) endGesture() {
	v.gesture = Static
	v.transform = viewport.Identity
	v.dragX, v.dragY = 0, 0
	v.hasZoomed = false
	v.totalScale = 1
}

// invalidate drops every computed pixel. The old raster stays visible until
// it is repainted.
func (v *View) invalidate() {
	v.pool.StopAll()
	v.frame = v.frame.Cleared()
}

// Resize sets the raster size in pixels. Sizes with a zero or negative side
// are ignored.
func (v *View) Resize(width, height int) {
	v.mu.Lock()
	defer v.unlock()
	v.resize(width, height)
}

func (v *View) resize(width, height int) {
	if v.closed || width <= 0 || height <= 0 || (width == v.width && height == v.height) {
		return
	}
	v.pool.StopAll()
	v.width, v.height = width, height
	v.frame = framebuf.New(width, height)
	v.endGesture()
	v.scheduleNewRenders()
}

// LoadLocation moves the view to the part of loc that matches its variant.
// A Julia view also takes the location's parameter.
func (v *View) LoadLocation(loc mandel.Location) error {
	area := areaOf(v.kind, loc)
	if !area.Valid() {
		return fmt.Errorf("%w: %+v", ErrInvalidArea, area)
	}

	v.mu.Lock()
	defer v.unlock()
	if v.closed {
		return ErrClosed
	}
	if v.kind == fractal.KindJulia {
		v.setParam(loc.JuliaParam)
	}
	v.endGesture()
	v.invalidate()
	if !v.setGraphArea(area, true) {
		v.scheduleNewRenders()
	}
	return nil
}

// SetDetail changes the iteration budget percentage. Every pixel is
// recomputed, since a deeper budget changes escaped colours too.
func (v *View) SetDetail(detail float64) {
	v.mu.Lock()
	defer v.unlock()
	detail = fractal.ClampDetail(detail)
	if v.closed || detail == v.detail {
		return
	}
	v.detail = detail
	v.invalidate()
	v.scheduleNewRenders()
}

// StepDetail moves the detail by steps positions of a detail slider, see
// fractal.DetailFromSlider. The result stays on the slider.
func (v *View) StepDetail(steps int) {
	v.mu.Lock()
	pos := fractal.SliderFromDetail(v.detail) + steps
	v.mu.Unlock()

	d, _ := fractal.DetailFromSlider(min(max(pos, 0), fractal.DetailSliderScaling))
	v.SetDetail(d)
}

// SetFractalParameter sets the constant c of a Julia view. Other views
// ignore it.
func (v *View) SetFractalParameter(p mandel.Param) {
	v.mu.Lock()
	defer v.unlock()
	if v.closed || v.kind != fractal.KindJulia || p == v.param {
		return
	}
	v.setParam(p)
	v.invalidate()
	v.scheduleNewRenders()
}

func (v *View) setParam(p mandel.Param) {
	v.param = p
	v.variant = fractal.Julia{C: p}
}

// SetColouring switches the colouring scheme and repaints every pixel.
func (v *View) SetColouring(name string) error {
	scheme, err := colouring.ByName(name)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.unlock()
	if v.closed {
		return ErrClosed
	}
	if name == v.colours {
		return nil
	}
	v.scheme, v.colours = scheme, name
	v.invalidate()
	v.scheduleNewRenders()
	return nil
}

// SetCrude enables or disables the crude preview pass.
func (v *View) SetCrude(crude bool) {
	v.mu.Lock()
	defer v.unlock()
	v.crude = crude
}

// SetPaused stops rendering while the view is hidden. Renders requested in
// the meantime run once it is resumed.
func (v *View) SetPaused(paused bool) {
	v.mu.Lock()
	defer v.unlock()
	if v.paused == paused {
		return
	}
	v.paused = paused
	if paused {
		v.pool.StopAll()
		v.pending = v.pending || v.pool.Rendering()
		return
	}
	if v.pending {
		v.scheduleNewRenders()
	}
}

// Reset returns to the variant's home graph area.
func (v *View) Reset() {
	v.mu.Lock()
	defer v.unlock()
	if v.closed {
		return
	}
	v.endGesture()
	v.invalidate()
	if !v.setGraphArea(fractal.DefaultArea(v.kind), true) {
		v.scheduleNewRenders()
	}
	mandel.Logger().Info("view reset", "kind", v.kind)
}

// Close cancels all work and stops the workers. It is safe to call more
// than once.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.pool.Close()
}

// RequestShutdown is Close.
func (v *View) RequestShutdown() { v.Close() }

// Wait blocks until the latest fine pass completes. It returns ErrClosed
// once the view is closed.
func (v *View) Wait(ctx context.Context) error {
	if err := v.pool.Wait(ctx); errors.Is(err, sched.ErrClosed) {
		return ErrClosed
	} else if err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Kind returns the fractal variant of the view.
func (v *View) Kind() fractal.Kind { return v.kind }

// GraphArea returns the current graph area.
func (v *View) GraphArea() mandel.GraphArea {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.area
}

// JuliaParam returns the Julia parameter of the view.
func (v *View) JuliaParam() mandel.Param {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.param
}

// Bounds returns the raster rectangle.
func (v *View) Bounds() image.Rectangle {
	v.mu.Lock()
	defer v.mu.Unlock()
	return image.Rect(0, 0, v.width, v.height)
}

// PointAt maps a pixel to the complex plane.
func (v *View) PointAt(px, py float64) complex128 {
	v.mu.Lock()
	defer v.mu.Unlock()
	x, y := v.viewport().ToComplex(px, py)
	return complex(x, y)
}

// ZoomLevel returns the zoom level for display, clamped to
// [0, viewport.ZoomSliderScaling]. The little view is not held to the zoom
// range and may lie outside it.
func (v *View) ZoomLevel() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return min(max(v.viewport().ZoomLevel(v.maxZoomLn()), 0), viewport.ZoomSliderScaling)
}

// MaxIterations returns the iteration budget at the current zoom.
func (v *View) MaxIterations() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.maxIterations()
}

// Detail returns the iteration budget percentage.
func (v *View) Detail() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.detail
}

// Colouring returns the name of the colouring scheme.
func (v *View) Colouring() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.colours
}

// Workers returns the number of render workers.
func (v *View) Workers() int { return v.pool.Size() }

// Rendering reports whether the latest fine pass has not completed.
func (v *View) Rendering() bool { return v.pool.Rendering() }

// Gesture returns the gesture in progress. Hosts should keep showing the
// last raster through Transform while it is not Static.
func (v *View) Gesture() Gesture {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gesture
}

// Transform maps the last raster to the screen during a gesture.
func (v *View) Transform() viewport.Transform {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.transform
}

// Image copies the raster into a new image.
func (v *View) Image() *image.RGBA {
	v.mu.Lock()
	f := v.frame
	v.mu.Unlock()
	return f.Image()
}

// RGB565 returns the raster as row-major RGB565 pixels.
func (v *View) RGB565() []uint16 {
	v.mu.Lock()
	f := v.frame
	v.mu.Unlock()
	dst := make([]uint16, f.Width()*f.Height())
	f.RGB565(dst)
	return dst
}

// CopyTo copies the raster into dst.
func (v *View) CopyTo(dst *image.RGBA) {
	v.mu.Lock()
	f := v.frame
	v.mu.Unlock()
	f.CopyTo(dst)
}

var _ mandel.ImgProvider = (*View)(nil)

// Snapshot combines the views into a location: a Mandelbrot or cubic view
// provides the Mandelbrot area, a Julia view the Julia area and parameter.
// Missing parts keep their defaults.
func Snapshot(name string, views ...*View) mandel.Location {
	loc := mandel.DefaultLocation()
	loc.Name = name
	for _, v := range views {
		if v == nil {
			continue
		}
		if v.Kind() == fractal.KindJulia {
			loc.Julia = v.GraphArea()
			loc.JuliaParam = v.JuliaParam()
		} else {
			loc.Mandelbrot = v.GraphArea()
		}
	}
	return loc
}
