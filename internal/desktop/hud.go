package desktop

import (
	"image"
	"image/color"
	"image/draw"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/marben/mandelmaps/view"
	"github.com/marben/mandelmaps/viewport"
)

var printer = message.NewPrinter(language.English)

var hudBackground = image.NewUniform(color.RGBA{A: 0xA0})

const (
	hudMargin = 4
	hudLine   = 13 // basicfont.Face7x13 line height
)

// hud draws a status overlay in the top-left corner. The overlay is only
// rasterized again when its text changes.
type hud struct {
	lines []string
	img   *ebiten.Image
}

// hudLines describes v's state, followed by msg when it is not empty.
func hudLines(v *view.View, msg string) []string {
	lines := []string{
		printer.Sprintf("zoom %d/%d   iterations %d   detail %v%%",
			v.ZoomLevel(), viewport.ZoomSliderScaling, v.MaxIterations(),
			number.Decimal(v.Detail(), number.MaxFractionDigits(1))),
		printer.Sprintf("%s   %s", v.Colouring(), v.Kind()),
	}
	if msg != "" {
		lines = append(lines, msg)
	}
	return lines
}

func (h *hud) draw(screen *ebiten.Image, v *view.View, msg string) {
	lines := hudLines(v, msg)
	if h.img == nil || !slices.Equal(lines, h.lines) {
		h.render(lines)
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(hudMargin, hudMargin)
	screen.DrawImage(h.img, op)
}

func (h *hud) render(lines []string) {
	face := basicfont.Face7x13
	w := 0
	for _, l := range lines {
		w = max(w, font.MeasureString(face, l).Ceil())
	}
	rgba := image.NewRGBA(image.Rect(0, 0, w+2*hudMargin, len(lines)*hudLine+2*hudMargin))
	draw.Draw(rgba, rgba.Rect, hudBackground, image.Point{}, draw.Src)

	d := font.Drawer{Dst: rgba, Src: image.White, Face: face}
	for i, l := range lines {
		d.Dot = fixed.P(hudMargin, hudMargin+(i+1)*hudLine-face.Descent)
		d.DrawString(l)
	}

	if h.img != nil {
		h.img.Deallocate()
	}
	h.img = ebiten.NewImage(rgba.Rect.Dx(), rgba.Rect.Dy())
	h.img.WritePixels(rgba.Pix)
	h.lines = lines
}
