package viewport

import "golang.org/x/image/math/f64"

// Transform is the screen-space movement of the last rendered raster during a
// gesture. Hosts draw the raster through it until the gesture ends; at the end
// of a zoom it resamples the raster into the new baseline.
type Transform f64.Aff3

// Identity leaves the raster where it was rendered.
var Identity = Transform{1, 0, 0, 0, 1, 0}

// Aff3 returns the transform as a source-to-destination matrix for
// golang.org/x/image/draw.
func (t Transform) Aff3() f64.Aff3 { return f64.Aff3(t) }

// Then returns t followed by u.
func (t Transform) Then(u Transform) Transform {
	return Transform{
		u[0]*t[0] + u[1]*t[3],
		u[0]*t[1] + u[1]*t[4],
		u[0]*t[2] + u[1]*t[5] + u[2],
		u[3]*t[0] + u[4]*t[3],
		u[3]*t[1] + u[4]*t[4],
		u[3]*t[2] + u[4]*t[5] + u[5],
	}
}

// Translate appends a move by (dx, dy) pixels.
func (t Transform) Translate(dx, dy float64) Transform {
	return t.Then(Transform{1, 0, dx, 0, 1, dy})
}

// ScaleAbout appends a scale by s that keeps the pixel (fx, fy) fixed.
func (t Transform) ScaleAbout(fx, fy, s float64) Transform {
	return t.Then(Transform{s, 0, fx - s*fx, 0, s, fy - s*fy})
}

// Apply maps a point of the rendered raster to the screen.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t[0]*x + t[1]*y + t[2], t[3]*x + t[4]*y + t[5]
}

// Scale is the uniform scale factor of t.
func (t Transform) Scale() float64 { return t[0] }
