// Package colouring turns escape-time results into packed 0xAARRGGBB colours.
//
// Schemes are stateless: the colour of a point depends only on the iteration
// count at which it escaped and on the iteration cap of the render. Swapping a
// scheme therefore invalidates no geometry, only the pixels already painted.
package colouring

import (
	"errors"
	"fmt"
	"sort"
)

// Scheme colours points of an escape-time fractal.
type Scheme interface {
	// Inside colours a point that did not escape within the iteration cap.
	Inside() uint32
	// Outside colours a point that escaped after iterations steps.
	Outside(iterations, maxIterations int) uint32
}

// Scheme names accepted by ByName.
const (
	NameMandelbrotDefault = "MandelbrotDefault"
	NameJuliaDefault      = "JuliaDefault"
	NameRGBWalk           = "RGBWalk"
	NamePsychedelic       = "Psychedelic"
	NameHue               = "Hue"
)

var ErrUnknownScheme = errors.New("unknown colouring scheme")

var schemes = map[string]Scheme{
	NameMandelbrotDefault: MandelbrotDefault{},
	NameJuliaDefault:      JuliaDefault{},
	NameRGBWalk:           RGBWalk{},
	NamePsychedelic:       Psychedelic{},
	NameHue:               Hue{},
}

// ByName returns the scheme registered under name.
func ByName(name string) (Scheme, error) {
	s, ok := schemes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
	return s, nil
}

// Names lists the registered scheme names in lexical order.
func Names() []string {
	names := make([]string, 0, len(schemes))
	for n := range schemes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

const (
	black = 0xFF000000
	white = 0xFFFFFFFF
)

// rgb packs clamped components into an opaque colour.
func rgb(r, g, b int) uint32 {
	return black | uint32(clamp(r))<<16 | uint32(clamp(g))<<8 | uint32(clamp(b))
}

func clamp(c int) int {
	if c < 0 {
		return 0
	}
	if c > 255 {
		return 255
	}
	return c
}

// RGBA splits a packed colour into its components.
func RGBA(c uint32) (r, g, b, a uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c), uint8(c >> 24)
}
