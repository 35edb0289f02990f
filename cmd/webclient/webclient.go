//go:build js && wasm

// webclient is the browser shell of mandelmaps serve. It forwards pointer,
// wheel and touch gestures over a websocket and paints the frames the
// server renders.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"syscall/js"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	mandel "github.com/marben/mandelmaps"
)

const wheelZoom = 0.8

func main() {
	logScreenf("Starting WASM web client...")

	// Figure out the server address to open WebSocket
	loc := js.Global().Get("window").Get("location")
	host := loc.Get("host").String()
	proto := "ws"
	if loc.Get("protocol").String() == "https:" {
		proto = "wss"
	}
	websocketUrl := proto + "://" + host + "/ws"

	logScreenf("Connecting to mandelmaps server at %s...", websocketUrl)
	ctx := context.Background()
	conn, _, err := websocket.Dial(ctx, websocketUrl, nil)
	if err != nil {
		logFatalf("Failed to connect: %v", err)
	}
	conn.SetReadLimit(64 << 20)
	logScreenf("WebSocket connected.")

	sh := &shell{conn: conn, controls: make(chan mandel.Control, 64)}
	go sh.writeLoop(ctx)

	width, height := windowSize()
	initCanvas(width, height, "#3a3a6e")
	sh.send(mandel.Control{Op: mandel.OpResize, Width: width, Height: height})
	sh.bindInput()
	sh.bindBookmarks()

	if err := sh.readLoop(ctx); err != nil {
		logFatalf("readLoop: %v", err)
	}
}

// logScreenf appends a formatted message to the log element in the DOM.
func logScreenf(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)

	doc := js.Global().Get("document")
	logElem := doc.Call("getElementById", "log")
	logElem.Set("textContent", logElem.Get("textContent").String()+msg+"\n")
}

// logFatalf logs a fatal error to the log window and terminates the program.
func logFatalf(format string, a ...any) {
	logScreenf("FATAL: "+format, a...)
	log.Fatalf(format, a...)
}

func windowSize() (int, int) {
	w := js.Global().Get("window")
	return w.Get("innerWidth").Int(), w.Get("innerHeight").Int() - 60
}

// shell owns the connection. JS callbacks must not block, so controls are
// queued and written by writeLoop.
type shell struct {
	conn     *websocket.Conn
	controls chan mandel.Control

	dragging bool
	pinching bool
	lastX    float64
	lastY    float64
	pinchLen float64
}

func (s *shell) send(ctl mandel.Control) {
	select {
	case s.controls <- ctl:
	default:
		logScreenf("control queue full, %s dropped", ctl.Op)
	}
}

func (s *shell) writeLoop(ctx context.Context) {
	for ctl := range s.controls {
		if err := wsjson.Write(ctx, s.conn, ctl); err != nil {
			logScreenf("send %s: %v", ctl.Op, err)
			return
		}
	}
}

func (s *shell) readLoop(ctx context.Context) error {
	for {
		typ, data, err := s.conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if typ == websocket.MessageBinary {
			img, err := decodeFrame(data)
			if err != nil {
				logScreenf("bad frame: %v", err)
				continue
			}
			displayImage(img)
			continue
		}

		var st mandel.Status
		if err := json.Unmarshal(data, &st); err != nil {
			logScreenf("bad status: %v", err)
			continue
		}
		hudShow(st)
	}
}

// on registers handler for event on target. Events are not passed on to
// the browser.
func on(target js.Value, event string, handler func(e js.Value)) {
	target.Call("addEventListener", event, js.FuncOf(func(this js.Value, args []js.Value) any {
		e := args[0]
		e.Call("preventDefault")
		handler(e)
		return nil
	}), map[string]any{"passive": false})
}

func (s *shell) bindInput() {
	c := canvas()

	on(c, "mousedown", func(e js.Value) {
		if e.Get("button").Int() != 0 {
			return
		}
		s.dragging = true
		s.lastX, s.lastY = e.Get("offsetX").Float(), e.Get("offsetY").Float()
		s.send(mandel.Control{Op: mandel.OpBeginDrag})
	})
	on(c, "mousemove", func(e js.Value) {
		x, y := e.Get("offsetX").Float(), e.Get("offsetY").Float()
		if s.dragging {
			s.send(mandel.Control{Op: mandel.OpDragBy, X: x - s.lastX, Y: y - s.lastY})
		}
		s.lastX, s.lastY = x, y
	})
	end := func(js.Value) {
		if s.dragging {
			s.dragging = false
			s.send(mandel.Control{Op: mandel.OpEndDrag})
		}
	}
	on(c, "mouseup", end)
	on(c, "mouseleave", end)
	on(c, "wheel", func(e js.Value) {
		notches := math.Copysign(1, e.Get("deltaY").Float())
		s.send(mandel.Control{
			Op:    mandel.OpZoomStep,
			X:     e.Get("offsetX").Float(),
			Y:     e.Get("offsetY").Float(),
			Scale: math.Pow(wheelZoom, -notches),
		})
	})
	on(c, "contextmenu", func(js.Value) {})

	on(c, "touchstart", s.touch)
	on(c, "touchmove", s.touch)
	on(c, "touchend", s.touch)
	on(c, "touchcancel", s.touch)

	on(js.Global().Get("window"), "resize", func(js.Value) {
		w, h := windowSize()
		initCanvas(w, h, "#3a3a6e")
		s.send(mandel.Control{Op: mandel.OpResize, Width: w, Height: h})
	})
	js.Global().Get("document").Call("addEventListener", "keydown", js.FuncOf(func(this js.Value, args []js.Value) any {
		if args[0].Get("key").String() == "r" {
			s.send(mandel.Control{Op: mandel.OpReset})
		}
		return nil
	}))
}

// touch maps one finger to a drag and two to a pinch.
func (s *shell) touch(e js.Value) {
	touches := e.Get("touches")
	rect := canvas().Call("getBoundingClientRect")
	pos := func(i int) (float64, float64) {
		t := touches.Index(i)
		return t.Get("clientX").Float() - rect.Get("left").Float(),
			t.Get("clientY").Float() - rect.Get("top").Float()
	}

	switch n := touches.Length(); {
	case n >= 2:
		x0, y0 := pos(0)
		x1, y1 := pos(1)
		length := math.Hypot(x1-x0, y1-y0)
		if !s.pinching {
			if s.dragging {
				s.send(mandel.Control{Op: mandel.OpEndDrag, Committed: true})
				s.dragging = false
			}
			s.send(mandel.Control{Op: mandel.OpBeginZoom})
			s.pinching = true
		} else if s.pinchLen > 0 && length > 0 {
			s.send(mandel.Control{Op: mandel.OpZoomBy, X: (x0 + x1) / 2, Y: (y0 + y1) / 2, Scale: length / s.pinchLen})
		}
		s.pinchLen = length

	case s.pinching:
		s.pinching = false
		s.send(mandel.Control{Op: mandel.OpEndZoom})
		s.send(mandel.Control{Op: mandel.OpEndDrag})

	case n == 1:
		x, y := pos(0)
		if !s.dragging {
			s.dragging = true
			s.send(mandel.Control{Op: mandel.OpBeginDrag})
		} else {
			s.send(mandel.Control{Op: mandel.OpDragBy, X: x - s.lastX, Y: y - s.lastY})
		}
		s.lastX, s.lastY = x, y

	case s.dragging:
		s.dragging = false
		s.send(mandel.Control{Op: mandel.OpEndDrag})
	}
}

// bindBookmarks fills the bookmark selector with the built-in landmarks.
func (s *shell) bindBookmarks() {
	doc := js.Global().Get("document")
	sel := doc.Call("getElementById", "bookmarks")
	for _, loc := range mandel.Landmarks() {
		opt := doc.Call("createElement", "option")
		opt.Set("textContent", loc.Name)
		opt.Set("value", loc.Name)
		sel.Call("appendChild", opt)
	}
	sel.Call("addEventListener", "change", js.FuncOf(func(this js.Value, args []js.Value) any {
		s.send(mandel.Control{Op: mandel.OpBookmark, Name: sel.Get("value").String()})
		return nil
	}))
}

// hudShow updates the HUD from a server status.
func hudShow(st mandel.Status) {
	doc := js.Global().Get("document")
	set := func(id string, v any) {
		doc.Call("getElementById", id).Set("textContent", v)
	}
	if st.Workers > 0 {
		set("workers", st.Workers)
	}
	if st.ZoomLevel > 0 {
		set("zoomLevel", st.ZoomLevel)
	}
	if st.MaxIterations > 0 {
		set("iterations", st.MaxIterations)
	}
	if st.Message != "" {
		set("message", st.Message)
		logScreenf("%s: %s", st.Kind, st.Message)
	}
}
