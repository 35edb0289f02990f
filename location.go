package mandel

// Location is a bookmark: a snapshot of both fractal views that can restore a
// viewport or move it to another device. Locations are values and never
// change once built.
type Location struct {
	Name       string    `json:"name,omitempty"`
	Mandelbrot GraphArea `json:"mandelbrot"`
	Julia      GraphArea `json:"julia"`
	JuliaParam Param     `json:"juliaParam"`
}

// DefaultLocation is the home position of both views.
func DefaultLocation() Location {
	return Location{
		Name:       "Home",
		Mandelbrot: DefaultMandelbrotArea,
		Julia:      DefaultJuliaArea,
		JuliaParam: DefaultJuliaParam,
	}
}

// RegionLocation builds a location showing r in the Mandelbrot view and the
// Julia set of r's centre in the Julia view.
func RegionLocation(name string, r Region) Location {
	return Location{
		Name:       name,
		Mandelbrot: r.GraphArea(),
		Julia:      DefaultJuliaArea,
		JuliaParam: ParamOf(r.Centre()),
	}
}

// Landmarks returns the built-in bookmarks, home first.
func Landmarks() []Location {
	return []Location{
		DefaultLocation(),
		RegionLocation("Seahorse Valley", SeahorseValley),
		RegionLocation("Elephant Valley", ElephantValley),
		RegionLocation("Spiral Minibrot", SpiralMinibrot),
		RegionLocation("Triple Spiral", TripleSpiral),
		RegionLocation("Valley of the Dragon", ValleyOfTheDragon),
		RegionLocation("Minibrot in a Mini-Spiral", MinibrotInMiniSpiral),
	}
}
