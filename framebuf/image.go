package framebuf

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Image copies the raster into a new RGBA image.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	f.CopyTo(img)
	return img
}

// CopyTo writes the raster into dst, clipped to dst's bounds. The frame's
// origin maps to dst.Rect.Min.
func (f *Frame) CopyTo(dst *image.RGBA) {
	w := min(f.width, dst.Rect.Dx())
	h := min(f.height, dst.Rect.Dy())
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			c, _ := unpack(f.cells[y*f.width+x].Load())
			p := row[x*4 : x*4+4 : x*4+4]
			p[0] = uint8(c >> 16)
			p[1] = uint8(c >> 8)
			p[2] = uint8(c)
			p[3] = uint8(c >> 24)
		}
	}
}

// RGB565 writes the raster into dst as 16-bit RGB565 for panel-style
// displays. dst must hold Width*Height entries.
func (f *Frame) RGB565(dst []uint16) {
	for i := range f.cells {
		if i >= len(dst) {
			return
		}
		c, _ := unpack(f.cells[i].Load())
		dst[i] = rgb565(uint8(c>>16), uint8(c>>8), uint8(c))
	}
}

func rgb565(r, g, b uint8) uint16 {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>2) & 0x3F
	bb := uint16(b>>3) & 0x1F
	return (rr << 11) | (gg << 5) | bb
}

// Resample returns a new frame holding f's raster drawn through the
// source-to-destination transform s2d, as it was shown on screen at the end
// of a gesture. Areas the transformed raster does not reach are black. Every
// pixel of the result is marked NeverComputed.
func (f *Frame) Resample(s2d f64.Aff3) *Frame {
	src := f.Image()
	dst := image.NewRGBA(src.Rect)
	draw.Draw(dst, dst.Rect, image.Black, image.Point{}, draw.Src)
	draw.BiLinear.Transform(dst, s2d, src, src.Rect, draw.Src, nil)

	g := New(f.width, f.height)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			p := dst.Pix[y*dst.Stride+x*4:]
			colour := opaqueBlack | uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
			g.cells[y*g.width+x].Store(pack(colour, NeverComputed))
		}
	}
	return g
}
