package fractal

import "math"

// Detail is a percentage applied to the iteration budget. Each variant keeps
// its own detail.
const (
	DetailMin     = 1.0
	DetailMax     = 10000.0
	DetailDefault = 30.0

	// LittleDetailFactor raises the detail of the small companion view,
	// whose pixels are too large to show thin filaments otherwise.
	LittleDetailFactor = 1.5

	// DetailSliderScaling is the number of steps of a detail slider.
	DetailSliderScaling = 200
)

// ClampDetail limits d to [DetailMin, DetailMax]. NaN becomes the default.
func ClampDetail(d float64) float64 {
	if math.IsNaN(d) {
		return DetailDefault
	}
	return min(max(d, DetailMin), DetailMax)
}

// DetailFromSlider maps a slider position in [0, DetailSliderScaling] onto
// the detail range on a log scale. ok is false for positions off the slider.
func DetailFromSlider(pos int) (detail float64, ok bool) {
	if pos < 0 || pos > DetailSliderScaling {
		return 0, false
	}
	lnMin, lnMax := math.Log(DetailMin), math.Log(DetailMax)
	return math.Exp(lnMin + float64(pos)*(lnMax-lnMin)/DetailSliderScaling), true
}

// SliderFromDetail is the inverse of DetailFromSlider, truncated to a step.
func SliderFromDetail(detail float64) int {
	lnMin, lnMax := math.Log(DetailMin), math.Log(DetailMax)
	return int(DetailSliderScaling * ((math.Log(ClampDetail(detail)) - lnMin) / (lnMax - lnMin)))
}
