// Package viewport maps between screen pixels and the complex plane and holds
// the zoom arithmetic shared by all fractal views.
package viewport

import (
	"math"

	mandel "github.com/marben/mandelmaps"
)

const (
	// ZoomSliderScaling is the number of zoom levels between the widest
	// view and the deepest one double precision can resolve.
	ZoomSliderScaling = 300

	// MinZoomLnPixel is ln(pixel size) of the widest reasonable view.
	MinZoomLnPixel = -3.0
)

// Viewport is a graph area mapped onto a Width × Height pixel raster.
type Viewport struct {
	Area          mandel.GraphArea
	Width, Height int
}

// Empty reports whether the viewport has no pixels to map.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// PixelSize is the side of one pixel on the complex plane, or 0 when the
// viewport has no width.
func (v Viewport) PixelSize() float64 {
	if v.Width <= 0 {
		return 0
	}
	return v.Area.Width / float64(v.Width)
}

// ToComplex maps a pixel to its point on the complex plane. Rows grow
// downward while the imaginary axis grows upward.
func (v Viewport) ToComplex(px, py float64) (x, y float64) {
	ps := v.PixelSize()
	return v.Area.XMin + px*ps, v.Area.YMax - py*ps
}

// ToPixel is the inverse of ToComplex.
func (v Viewport) ToPixel(x, y float64) (px, py float64) {
	ps := v.PixelSize()
	if ps == 0 {
		return 0, 0
	}
	return (x - v.Area.XMin) / ps, (v.Area.YMax - y) / ps
}

// Height of the graph area on the complex plane.
func (v Viewport) AreaHeight() float64 {
	return v.PixelSize() * float64(v.Height)
}

// ZoomLevel places the pixel size on a logarithmic scale where 0 is the
// widest reasonable view and ZoomSliderScaling is maxZoomLn, the deepest
// zoom the fractal variant can resolve. An unmappable viewport reports 1.
func (v Viewport) ZoomLevel(maxZoomLn float64) int {
	ps := v.PixelSize()
	if ps == 0 {
		return 1
	}
	level := ZoomSliderScaling * (math.Log(ps) - MinZoomLnPixel) / (maxZoomLn - MinZoomLnPixel)
	return int(level)
}

// Sane reports whether a zoom level lies within [1, ZoomSliderScaling].
func Sane(level int) bool {
	return level >= 1 && level <= ZoomSliderScaling
}

// ZoomAbout returns the graph area scaled by s around the focus pixel
// (fx, fy): every edge moves toward the focus point by the same factor, so
// the focus keeps its screen position. s < 1 zooms in.
func (v Viewport) ZoomAbout(fx, fy, s float64) mandel.GraphArea {
	old := v.Area
	cx, cy := v.ToComplex(fx, fy)

	newMinX := cx - s*(cx-old.XMin)
	newMaxY := cy - s*(cy-old.YMax)

	oldMaxX := old.XMin + old.Width
	newMaxX := cx - s*(cx-oldMaxX)

	return mandel.GraphArea{
		XMin:  newMinX,
		YMax:  newMaxY,
		Width: newMaxX - newMinX,
	}
}

// Moved returns the graph area after the raster was dragged by (dx, dy)
// pixels: the content follows the pointer.
func (v Viewport) Moved(dx, dy float64) mandel.GraphArea {
	ps := v.PixelSize()
	a := v.Area
	a.XMin -= dx * ps
	a.YMax += dy * ps
	return a
}
