package colouring

import "math"

const (
	walkSpacing = 30  // component step per iteration
	walkMax     = 220 // brightest component value
)

// RGBWalk steps through six linear segments, one iteration at a time:
// black→blue on the first lap only, then blue→cyan→green→yellow→red→magenta
// and magenta→blue on every later lap.
type RGBWalk struct{}

func (RGBWalk) Inside() uint32 { return white }

func (RGBWalk) Outside(iterations, maxIterations int) uint32 {
	if iterations <= 0 {
		return black
	}

	perSegment := walkMax / walkSpacing
	period := perSegment * 6

	lapped := iterations >= period
	iterations %= period

	segment := iterations / perSegment
	step := (iterations - segment*perSegment) * walkSpacing

	var r, g, b int
	switch segment {
	case 0:
		if lapped {
			r, b = walkMax-step, walkMax
		} else {
			b = step
		}
	case 1:
		g, b = step, walkMax
	case 2:
		g, b = walkMax, walkMax-step
	case 3:
		r, g = step, walkMax
	case 4:
		r, g = walkMax, walkMax-step
	case 5:
		r, b = walkMax, step
	}
	return rgb(r, g, b)
}

const (
	spiralRange = 230 // distinct values per component
	spiralStart = 25  // darkest component value
)

// Psychedelic follows a conical spiral r=t, x=t·2(cos t+1), y=t·2(sin t+1),
// where 2π of t corresponds to 255 iterations. Components fold back and forth
// inside [spiralStart, spiralStart+spiralRange].
type Psychedelic struct{}

func (Psychedelic) Inside() uint32 { return white }

func (Psychedelic) Outside(iterations, maxIterations int) uint32 {
	if iterations <= 0 {
		return black
	}
	t := float64(iterations) / 255 * 2 * math.Pi

	x := t * 2 * (math.Cos(t) + 1)
	y := t * 2 * (math.Sin(t) + 1)

	r := fold(int(spiralRange*t)) + spiralStart
	g := fold(int(spiralRange*y)) + spiralStart
	b := fold(int(spiralRange*x)) + spiralStart
	return rgb(r, g, b)
}

// fold reflects c into [0, spiralRange] with period 2*spiralRange.
func fold(c int) int {
	if c > 2*spiralRange {
		c %= 2 * spiralRange
	}
	if c > spiralRange {
		c = 2*spiralRange - c
	}
	return c
}
