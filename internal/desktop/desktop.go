// Package desktop shows fractal views in an ebiten window.
//
// The main view follows the mouse (drag to pan, wheel to zoom) and touch
// (one finger pans, two pinch). A Mandelbrot or cubic main view carries a
// little Julia view in the bottom-right corner whose parameter follows the
// point under the right mouse button.
package desktop

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"math"
	"os"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	mandel "github.com/marben/mandelmaps"
	"github.com/marben/mandelmaps/bookmark"
	"github.com/marben/mandelmaps/colouring"
	"github.com/marben/mandelmaps/fractal"
	"github.com/marben/mandelmaps/view"
)

// Config configures the window.
type Config struct {
	Main view.Options
	// Minimap adds the little Julia view to a Mandelbrot or cubic main view.
	Minimap   bool
	Bookmarks []mandel.Location
	// Out receives bookmarks printed with the B key. Defaults to stdout.
	Out io.Writer
}

const (
	wheelZoom    = 0.8 // graph area scale per wheel notch
	detailStep   = 10  // detail slider steps per key press
	messageTime  = 3 * time.Second
	littleFactor = 4 // the little view is a quarter of the window
)

// Run opens the window and blocks until it is closed.
func Run(cfg Config) error {
	g, err := newGame(cfg)
	if err != nil {
		return err
	}
	defer g.close()

	ebiten.SetWindowTitle(fmt.Sprintf("mandelmaps - %s", cfg.Main.Kind))
	ebiten.SetWindowSize(cfg.Main.Width, cfg.Main.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(g); err != nil && err != ebiten.Termination {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}

// game implements ebiten.Game.
type game struct {
	cfg    Config
	main   *view.View
	little *view.View

	mainDirty   atomic.Bool
	littleDirty atomic.Bool
	message     atomic.Pointer[status]

	mainRaster   raster
	littleRaster raster
	hud          hud

	crude    bool
	focused  bool
	dragging bool
	pinching bool
	lastX    float64
	lastY    float64
	pinchLen float64
	touches  []ebiten.TouchID
}

// status is a message shown in the HUD until it expires.
type status struct {
	text    string
	expires time.Time
}

func newGame(cfg Config) (*game, error) {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if len(cfg.Bookmarks) == 0 {
		cfg.Bookmarks = mandel.Landmarks()
	}
	g := &game{cfg: cfg, crude: cfg.Main.Crude, focused: true}

	main, err := view.New(cfg.Main, mandel.HostFuncs{
		OnRepaint:  func() { g.mainDirty.Store(true) },
		OnComplete: func(d time.Duration) { g.say(view.RenderTimeMessage(d)) },
		OnMaxDepth: func() { g.say("Maximum zoom depth reached") },
	})
	if err != nil {
		return nil, err
	}
	g.main = main

	if cfg.Minimap && cfg.Main.Kind != fractal.KindJulia {
		opts := view.DefaultOptions(fractal.KindJulia)
		opts.Size = view.Little
		opts.Location = cfg.Main.Location
		opts.Workers = cfg.Main.Workers
		opts.Detail = cfg.Main.Detail
		opts.Width = max(1, cfg.Main.Width/littleFactor)
		opts.Height = max(1, cfg.Main.Height/littleFactor)
		little, err := view.New(opts, mandel.HostFuncs{
			OnRepaint: func() { g.littleDirty.Store(true) },
		})
		if err != nil {
			main.Close()
			return nil, err
		}
		g.little = little
	}
	return g, nil
}

func (g *game) close() {
	g.main.Close()
	if g.little != nil {
		g.little.Close()
	}
}

func (g *game) say(text string) {
	g.message.Store(&status{text: text, expires: time.Now().Add(messageTime)})
}

func (g *game) views() []*view.View {
	if g.little == nil {
		return []*view.View{g.main}
	}
	return []*view.View{g.main, g.little}
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	// Hidden windows do not render.
	if focused := ebiten.IsFocused(); focused != g.focused {
		g.focused = focused
		for _, v := range g.views() {
			v.SetPaused(!focused)
		}
	}

	g.updatePinch()
	g.updatePointer()
	g.updateWheel()
	g.updatePicker()
	return g.updateKeys()
}

// pointer returns the position of the mouse with the left button held, or
// of a single touch.
func (g *game) pointer() (x, y float64, down bool) {
	if len(g.touches) == 1 {
		tx, ty := ebiten.TouchPosition(g.touches[0])
		return float64(tx), float64(ty), true
	}
	mx, my := ebiten.CursorPosition()
	return float64(mx), float64(my), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
}

func (g *game) updatePointer() {
	if g.pinching {
		return
	}
	x, y, down := g.pointer()
	switch {
	case down && !g.dragging:
		g.main.BeginDrag()
		g.dragging = true
	case down:
		g.main.DragBy(x-g.lastX, y-g.lastY)
	case g.dragging:
		g.main.EndDrag(false)
		g.dragging = false
	}
	g.lastX, g.lastY = x, y
}

func (g *game) updatePinch() {
	g.touches = ebiten.AppendTouchIDs(g.touches[:0])
	if len(g.touches) < 2 {
		if g.pinching {
			g.pinching = false
			g.main.EndZoom()
			g.main.EndDrag(false)
			g.dragging = false
		}
		return
	}

	x0, y0 := ebiten.TouchPosition(g.touches[0])
	x1, y1 := ebiten.TouchPosition(g.touches[1])
	fx, fy := float64(x0+x1)/2, float64(y0+y1)/2
	length := math.Hypot(float64(x1-x0), float64(y1-y0))

	if !g.pinching {
		if g.dragging {
			g.main.EndDrag(true)
			g.dragging = false
		}
		g.main.BeginZoom()
		g.pinching = true
	} else if g.pinchLen > 0 && length > 0 {
		g.main.ZoomBy(fx, fy, length/g.pinchLen)
	}
	g.pinchLen = length
}

func (g *game) updateWheel() {
	_, dy := ebiten.Wheel()
	if dy == 0 || g.dragging || g.pinching {
		return
	}
	mx, my := ebiten.CursorPosition()
	g.main.ZoomStep(float64(mx), float64(my), math.Pow(wheelZoom, dy))
}

// updatePicker sets the little Julia view's parameter to the point under
// the right mouse button.
func (g *game) updatePicker() {
	if g.little == nil || !ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		return
	}
	mx, my := ebiten.CursorPosition()
	g.little.SetFractalParameter(mandel.ParamOf(g.main.PointAt(float64(mx), float64(my))))
}

var digitKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

func (g *game) updateKeys() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		for _, v := range g.views() {
			v.Reset()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		g.stepDetail(detailStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		g.stepDetail(-detailStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyK):
		g.nextColouring()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.crude = !g.crude
		g.main.SetCrude(g.crude)
		if g.crude {
			g.say("Crude pass on")
		} else {
			g.say("Crude pass off")
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		loc := view.Snapshot("Bookmark "+time.Now().Format("2006-01-02 15:04:05"), g.views()...)
		if err := bookmark.Format(g.cfg.Out, []mandel.Location{loc}); err != nil {
			return fmt.Errorf("print bookmark: %w", err)
		}
		g.say("Bookmark printed")
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		name, err := g.save()
		if err != nil {
			log.Printf("save: %v", err)
			g.say("Saving failed")
			return nil
		}
		g.say("Saved " + name)
	}

	for i, k := range digitKeys {
		if i < len(g.cfg.Bookmarks) && inpututil.IsKeyJustPressed(k) {
			loc := g.cfg.Bookmarks[i]
			for _, v := range g.views() {
				if err := v.LoadLocation(loc); err != nil {
					log.Printf("load %q: %v", loc.Name, err)
				}
			}
			g.say(loc.Name)
		}
	}
	return nil
}

// stepDetail moves every view's detail slider by steps. Each view keeps its
// own detail.
func (g *game) stepDetail(steps int) {
	for _, v := range g.views() {
		v.StepDetail(steps)
	}
}

func (g *game) nextColouring() {
	names := colouring.Names()
	cur := g.main.Colouring()
	next := names[0]
	for i, n := range names {
		if n == cur {
			next = names[(i+1)%len(names)]
		}
	}
	if err := g.main.SetColouring(next); err != nil {
		log.Printf("colouring: %v", err)
		return
	}
	g.say(next)
}

// save writes the main raster to a PNG file in the working directory.
func (g *game) save() (string, error) {
	name := fmt.Sprintf("mandelmaps-%s.png", time.Now().Format("20060102-150405"))
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := png.Encode(f, g.main.Image()); err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	return name, f.Close()
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(image.Black)

	g.mainRaster.refresh(g.main, g.mainDirty.Swap(false))
	op := &ebiten.DrawImageOptions{}
	t := g.main.Transform()
	op.GeoM.SetElement(0, 0, t[0])
	op.GeoM.SetElement(0, 1, t[1])
	op.GeoM.SetElement(0, 2, t[2])
	op.GeoM.SetElement(1, 0, t[3])
	op.GeoM.SetElement(1, 1, t[4])
	op.GeoM.SetElement(1, 2, t[5])
	screen.DrawImage(g.mainRaster.img, op)

	if g.little != nil {
		g.littleRaster.refresh(g.little, g.littleDirty.Swap(false))
		sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
		lw, lh := g.littleRaster.rgba.Rect.Dx(), g.littleRaster.rgba.Rect.Dy()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(sw-lw), float64(sh-lh))
		screen.DrawImage(g.littleRaster.img, op)
	}

	msg := ""
	if st := g.message.Load(); st != nil && time.Now().Before(st.expires) {
		msg = st.text
	}
	g.hud.draw(screen, g.main, msg)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.main.Resize(outsideWidth, outsideHeight)
	if g.little != nil {
		g.little.Resize(max(1, outsideWidth/littleFactor), max(1, outsideHeight/littleFactor))
	}
	return outsideWidth, outsideHeight
}

// raster mirrors a view's frame in an ebiten image.
type raster struct {
	rgba *image.RGBA
	img  *ebiten.Image
}

func (r *raster) refresh(v *view.View, dirty bool) {
	b := v.Bounds()
	if r.rgba == nil || r.rgba.Rect != b {
		r.rgba = image.NewRGBA(b)
		if r.img != nil {
			r.img.Deallocate()
		}
		r.img = ebiten.NewImage(max(1, b.Dx()), max(1, b.Dy()))
		dirty = true
	}
	if !dirty || b.Empty() {
		return
	}
	v.CopyTo(r.rgba)
	r.img.WritePixels(r.rgba.Pix)
}
