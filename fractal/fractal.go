// Package fractal holds the escape-time iteration of each supported fractal
// variant together with the constants that tie its iteration depth and zoom
// bound to the pixel size.
package fractal

import (
	"fmt"
	"math"
	"strings"

	mandel "github.com/marben/mandelmaps"
)

// Kind identifies a fractal variant.
type Kind string

const (
	KindMandelbrot Kind = "mandelbrot"
	KindCubic      Kind = "cubic"
	KindJulia      Kind = "julia"
)

// ParseKind accepts a variant name in any case.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindMandelbrot, KindCubic, KindJulia:
		return k, nil
	}
	return "", fmt.Errorf("unknown fractal %q", s)
}

// Constants tune a variant's iteration depth and zoom bound.
type Constants struct {
	// Base and Factor shape maxIterations ~ Factor * Base^|ln pixelSize|.
	Base   float64
	Factor float64
	// MaxZoomLn is ln(pixel size) past which double precision no longer
	// resolves neighbouring points of the variant.
	MaxZoomLn float64
}

var (
	mandelbrotConstants = Constants{Base: 1.24, Factor: 54, MaxZoomLn: -31}
	juliaConstants      = Constants{Base: 1.58, Factor: 6.46, MaxZoomLn: -20}
)

// Variant iterates the points of one escape-time fractal.
type Variant interface {
	Kind() Kind
	Constants() Constants
	// Escape iterates the point (x, y). It returns the zero-based index of
	// the iteration at which |z|² exceeded 4, or maxIterations with escaped
	// false when the point stayed bounded.
	Escape(x, y float64, maxIterations int) (iterations int, escaped bool)
}

// Mandelbrot iterates z ← z² + c from z = 0 with c the point itself.
type Mandelbrot struct{}

func (Mandelbrot) Kind() Kind           { return KindMandelbrot }
func (Mandelbrot) Constants() Constants { return mandelbrotConstants }

func (Mandelbrot) Escape(x0, y0 float64, maxIterations int) (int, bool) {
	var x, y float64
	for i := 0; i < maxIterations; i++ {
		x, y = x*x-y*y+x0, 2*x*y+y0
		if x*x+y*y > 4 {
			return i, true
		}
	}
	return maxIterations, false
}

// Cubic iterates z ← z³ + c from z = 0 with c the point itself.
type Cubic struct{}

func (Cubic) Kind() Kind           { return KindCubic }
func (Cubic) Constants() Constants { return mandelbrotConstants }

func (Cubic) Escape(x0, y0 float64, maxIterations int) (int, bool) {
	var x, y float64
	for i := 0; i < maxIterations; i++ {
		xx, yy := x*x, y*y
		x, y = x*(xx-3*yy)+x0, y*(3*xx-yy)+y0
		if x*x+y*y > 4 {
			return i, true
		}
	}
	return maxIterations, false
}

// Julia iterates z ← z² + C starting from the point itself.
type Julia struct {
	C mandel.Param
}

func (Julia) Kind() Kind           { return KindJulia }
func (Julia) Constants() Constants { return juliaConstants }

func (j Julia) Escape(x, y float64, maxIterations int) (int, bool) {
	cx, cy := j.C.Cx, j.C.Cy
	for i := 0; i < maxIterations; i++ {
		x, y = x*x-y*y+cx, 2*x*y+cy
		if x*x+y*y > 4 {
			return i, true
		}
	}
	return maxIterations, false
}

// New returns the variant for k; param is used by Julia only.
func New(k Kind, param mandel.Param) (Variant, error) {
	switch k {
	case KindMandelbrot:
		return Mandelbrot{}, nil
	case KindCubic:
		return Cubic{}, nil
	case KindJulia:
		return Julia{C: param}, nil
	}
	return nil, fmt.Errorf("unknown fractal %q", k)
}

// DefaultArea is the home graph area of the variant.
func DefaultArea(k Kind) mandel.GraphArea {
	if k == KindJulia {
		return mandel.DefaultJuliaArea
	}
	return mandel.DefaultMandelbrotArea
}

// MinIterations is the floor of every iteration budget.
const MinIterations = 10

// MaxIterations derives the iteration budget of a render at pixel size ps.
// detail is a percentage multiplier; see Detail.
func MaxIterations(c Constants, ps, detail float64) int {
	if ps <= 0 {
		return MinIterations
	}
	n := detail / 100 * c.Factor * math.Pow(c.Base, math.Abs(math.Log(ps)))
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return max(int(n), MinIterations)
}

// Block sizes of the two render passes.
const (
	CrudeBlock = 3
	FineBlock  = 1
)

// CrudeBlockFor enlarges the crude block for very deep iteration budgets so
// the preview stays quick.
func CrudeBlockFor(width, maxIterations int) int {
	if maxIterations <= 10000 {
		return CrudeBlock
	}
	return max(1, min(width/17, CrudeBlock*(maxIterations/5000)))
}
