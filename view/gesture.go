package view

import (
	"github.com/marben/mandelmaps/viewport"
)

// A drag runs BeginDrag, DragBy for every pointer move and EndDrag. A pinch
// ends the drag in progress with EndDrag(true), then runs BeginZoom, ZoomBy
// and EndZoom; the view is then dragging again and the host finishes with
// EndDrag(false), which renders the result.

// BeginDrag starts a drag: rendering stops and the drag totals are reset.
func (v *View) BeginDrag() {
	v.mu.Lock()
	defer v.unlock()
	if v.closed {
		return
	}
	v.gesture = Dragging
	v.pool.StopAll()
	v.dragX, v.dragY = 0, 0
	v.hasZoomed = false
}

// DragBy moves the raster on screen by (dx, dy) pixels.
func (v *View) DragBy(dx, dy float64) {
	v.mu.Lock()
	defer v.unlock()
	if v.gesture != Dragging {
		return
	}
	v.dragX += dx
	v.dragY += dy
	v.transform = v.transform.Translate(dx, dy)
	v.notifyRepaint = true
}

// EndDrag moves the graph area to match the raster on screen. When
// zoomFollows is set a pinch is starting: the area moves but nothing is
// rendered and the on-screen transform is kept for the zoom to build on.
// Otherwise the pixels that are still valid are kept and the rest is
// scheduled.
func (v *View) EndDrag(zoomFollows bool) {
	v.mu.Lock()
	defer v.unlock()
	if v.closed || v.gesture == Static {
		return
	}
	v.gesture = Static

	dx, dy := int(v.dragX), int(v.dragY)
	v.dragX, v.dragY = 0, 0

	if !zoomFollows {
		v.pool.StopAll()
		if v.hasZoomed {
			v.frame = v.frame.Resample(v.transform.Aff3())
		} else {
			v.frame = v.frame.Shift(dx, dy)
		}
		v.transform = viewport.Identity
	}
	v.hasZoomed = false

	moved := v.viewport().Moved(float64(dx), float64(dy))
	if !v.setGraphArea(moved, !zoomFollows) && !zoomFollows {
		v.scheduleNewRenders()
	}
	v.notifyRepaint = true
}

// BeginZoom starts a pinch. Every pixel is marked stale since none will
// match the new geometry.
func (v *View) BeginZoom() {
	v.mu.Lock()
	defer v.unlock()
	if v.closed {
		return
	}
	v.gesture = Zooming
	v.hasZoomed = true
	v.invalidate()
}

// ZoomBy scales the raster on screen by s around the focus pixel (fx, fy);
// s > 1 zooms in. The graph area follows without rendering. A scale that
// would leave the zoom range is rejected and leaves area and raster as
// they were.
func (v *View) ZoomBy(fx, fy, s float64) {
	v.mu.Lock()
	defer v.unlock()
	if v.gesture != Zooming || s <= 0 {
		return
	}
	v.totalScale *= s
	if v.setGraphArea(v.viewport().ZoomAbout(fx, fy, 1/s), false) {
		v.transform = v.transform.ScaleAbout(fx, fy, s)
		v.notifyRepaint = true
	}
}

// EndZoom bakes the on-screen raster into the frame. The view stays in the
// drag gesture, see EndDrag.
func (v *View) EndZoom() {
	v.mu.Lock()
	defer v.unlock()
	if v.gesture != Zooming {
		return
	}
	v.pool.StopAll()
	v.frame = v.frame.Resample(v.transform.Aff3())
	v.transform = viewport.Identity
	v.dragX, v.dragY = 0, 0
	v.gesture = Dragging
	v.notifyRepaint = true
}

// ZoomStep scales the graph area by s around the focus pixel (fx, fy) in
// one step, as for a mouse wheel; s < 1 zooms in. It reports whether the
// new area was accepted.
func (v *View) ZoomStep(fx, fy, s float64) bool {
	v.mu.Lock()
	defer v.unlock()
	if v.closed || v.gesture != Static || s <= 0 || v.width <= 0 {
		return false
	}
	if !v.setGraphArea(v.viewport().ZoomAbout(fx, fy, s), false) {
		return false
	}
	v.pool.StopAll()
	v.frame = v.frame.Resample(viewport.Identity.ScaleAbout(fx, fy, 1/s).Aff3())
	v.totalScale = 1
	v.scheduleNewRenders()
	v.notifyRepaint = true
	return true
}
