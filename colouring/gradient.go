package colouring

import "math"

// MandelbrotDefault is a hue-cycling gradient over the fraction of the
// iteration cap used: red saturates early, green rises linearly and blue
// oscillates three and a half times.
type MandelbrotDefault struct{}

func (MandelbrotDefault) Inside() uint32 { return white }

func (MandelbrotDefault) Outside(iterations, maxIterations int) uint32 {
	if iterations <= 0 || maxIterations <= 0 {
		return black
	}
	c := float64(iterations) / float64(maxIterations)
	r := min(int(255*6*c), 255)
	g := int(255 * c)
	b := int(127.5 - 127.5*math.Cos(7*math.Pi*c))
	return rgb(r, g, b)
}

// JuliaDefault is the inverse of MandelbrotDefault, with a black interior,
// so a Julia view reads differently from the Mandelbrot view beside it.
type JuliaDefault struct{}

func (JuliaDefault) Inside() uint32 { return black }

func (JuliaDefault) Outside(iterations, maxIterations int) uint32 {
	return invert(MandelbrotDefault{}.Outside(iterations, maxIterations))
}

func invert(c uint32) uint32 {
	return black | (^c & 0x00FFFFFF)
}

// Hue walks the HSV colour wheel at a fixed rate per iteration.
type Hue struct{}

func (Hue) Inside() uint32 { return black }

func (Hue) Outside(iterations, maxIterations int) uint32 {
	if iterations <= 0 {
		return black
	}
	return hsv(float64(iterations)*0.02, 1, 1)
}

// Simple HSV → RGB
func hsv(h, s, v float64) uint32 {
	h = math.Mod(h, 1)
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return rgb(int(r*255), int(g*255), int(b*255))
}
