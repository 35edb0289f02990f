package mandel

import "math"

// GraphArea is the rectangle of the complex plane mapped onto a viewport.
// Only the top-left corner and the width are stored; the height follows from
// the viewport's pixel aspect ratio.
type GraphArea struct {
	XMin  float64 `json:"xMin"`
	YMax  float64 `json:"yMax"`
	Width float64 `json:"width"`
}

// Valid reports whether the area can be mapped onto a viewport.
func (a GraphArea) Valid() bool {
	return a.Width > 0 && !math.IsInf(a.Width, 0) &&
		!math.IsNaN(a.XMin) && !math.IsInf(a.XMin, 0) &&
		!math.IsNaN(a.YMax) && !math.IsInf(a.YMax, 0)
}

// Default graph areas and Julia parameter shown on start and after a reset.
var (
	DefaultMandelbrotArea = GraphArea{XMin: -3.1, YMax: 1.45, Width: 5}
	DefaultJuliaArea      = GraphArea{XMin: -1.8, YMax: 1.45, Width: 3.6}
	DefaultJuliaParam     = Param{Cx: 0.152, Cy: 0.584}
)

// Param is the fixed complex parameter c of a Julia set.
type Param struct {
	Cx float64 `json:"cx"`
	Cy float64 `json:"cy"`
}

func (p Param) Complex() complex128 { return complex(p.Cx, p.Cy) }

// ParamOf converts a point of the complex plane into a Julia parameter.
func ParamOf(c complex128) Param { return Param{Cx: real(c), Cy: imag(c)} }

// Region within the Mandelbrot set
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// GraphArea anchors the region's top-left corner and keeps its horizontal extent.
func (r Region) GraphArea() GraphArea {
	return GraphArea{XMin: r.Xmin, YMax: r.Ymax, Width: r.Xmax - r.Xmin}
}

// Centre is the middle of the region, a good Julia parameter for it.
func (r Region) Centre() complex128 {
	return complex((r.Xmin+r.Xmax)/2, (r.Ymin+r.Ymax)/2)
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Region{
		Xmin: -0.8,
		Xmax: -0.7,
		Ymin: 0.05,
		Ymax: 0.15,
	}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Region{
		Xmin: 0.25,
		Xmax: 0.35,
		Ymin: -0.05,
		Ymax: 0.05,
	}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Region{
		Xmin: -0.7435,
		Xmax: -0.7420,
		Ymin: 0.1310,
		Ymax: 0.1325,
	}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = Region{
		Xmin: -0.7480,
		Xmax: -0.7450,
		Ymin: 0.0950,
		Ymax: 0.0980,
	}

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = Region{
		Xmin: -0.7400,
		Xmax: -0.7350,
		Ymin: 0.1800,
		Ymax: 0.1850,
	}

	// Minibrot in a Mini-Spiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = Region{
		Xmin: -1.7390,
		Xmax: -1.7375,
		Ymin: -0.0235,
		Ymax: -0.0220,
	}
)
