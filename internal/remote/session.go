package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	mandel "github.com/marben/mandelmaps"
	"github.com/marben/mandelmaps/bookmark"
	"github.com/marben/mandelmaps/view"
)

var errUnknownOp = errors.New("unknown op")

// session is the host of one connection's view.
type session struct {
	view      *view.View
	bookmarks []mandel.Location
	interval  time.Duration

	dirty  chan struct{}
	status chan mandel.Status
	enc    png.Encoder
}

func newSession(cfg Config) (*session, error) {
	s := &session{
		bookmarks: cfg.Bookmarks,
		interval:  cfg.FrameInterval,
		dirty:     make(chan struct{}, 1),
		status:    make(chan mandel.Status, 16),
		enc:       png.Encoder{CompressionLevel: png.BestSpeed},
	}

	// The view must be set before it can call back, so it starts without
	// a size.
	opts := cfg.View
	opts.Width, opts.Height = 0, 0
	v, err := view.New(opts, s)
	if err != nil {
		return nil, err
	}
	s.view = v

	// Hello goes out first and already describes the sized view.
	v.SetPaused(true)
	v.Resize(cfg.View.Width, cfg.View.Height)
	hello := s.describe(mandel.StatusHello)
	hello.Message = fmt.Sprintf("%s view, %d workers", v.Kind(), v.Workers())
	s.post(hello)
	v.SetPaused(false)
	return s, nil
}

func (s *session) RepaintRequested() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (s *session) RenderComplete(elapsed time.Duration) {
	st := s.describe(mandel.StatusComplete)
	st.Message = view.RenderTimeMessage(elapsed)
	st.ElapsedMillis = elapsed.Milliseconds()
	s.post(st)
}

func (s *session) MaxDepthReached() {
	st := s.describe(mandel.StatusMaxDepth)
	st.Message = "maximum zoom depth reached"
	s.post(st)
}

var _ mandel.Host = (*session)(nil)

// describe returns a status of kind carrying the view's current state.
func (s *session) describe(kind mandel.StatusKind) mandel.Status {
	loc := view.Snapshot("", s.view)
	return mandel.Status{
		Kind:          kind,
		ZoomLevel:     s.view.ZoomLevel(),
		MaxIterations: s.view.MaxIterations(),
		Workers:       s.view.Workers(),
		Location:      &loc,
	}
}

func (s *session) post(st mandel.Status) {
	select {
	case s.status <- st:
	default:
		log.Printf("status queue full, %s dropped", st.Kind)
	}
}

func (s *session) fail(err error) {
	s.post(mandel.Status{Kind: mandel.StatusError, Message: err.Error()})
}

// apply performs one control on the view.
func (s *session) apply(ctl mandel.Control) error {
	v := s.view
	switch ctl.Op {
	case mandel.OpResize:
		v.Resize(ctl.Width, ctl.Height)
	case mandel.OpBeginDrag:
		v.BeginDrag()
	case mandel.OpDragBy:
		v.DragBy(ctl.X, ctl.Y)
	case mandel.OpEndDrag:
		v.EndDrag(ctl.Committed)
	case mandel.OpBeginZoom:
		v.BeginZoom()
	case mandel.OpZoomBy:
		v.ZoomBy(ctl.X, ctl.Y, ctl.Scale)
	case mandel.OpEndZoom:
		v.EndZoom()
	case mandel.OpZoomStep:
		v.ZoomStep(ctl.X, ctl.Y, ctl.Scale)
	case mandel.OpReset:
		v.Reset()
	case mandel.OpDetail:
		v.SetDetail(ctl.Detail)
	case mandel.OpColours:
		return v.SetColouring(ctl.Name)
	case mandel.OpLocation:
		if ctl.Location == nil {
			return fmt.Errorf("%s: missing location", ctl.Op)
		}
		return v.LoadLocation(*ctl.Location)
	case mandel.OpJuliaParam:
		v.SetFractalParameter(mandel.Param{Cx: ctl.X, Cy: ctl.Y})
	case mandel.OpBookmark:
		loc, ok := bookmark.Find(s.bookmarks, ctl.Name)
		if !ok {
			return fmt.Errorf("%s: no bookmark %q", ctl.Op, ctl.Name)
		}
		return v.LoadLocation(loc)
	default:
		return fmt.Errorf("%w: %q", errUnknownOp, ctl.Op)
	}
	return nil
}

func (s *session) readLoop(ctx context.Context, c *websocket.Conn) error {
	for {
		var ctl mandel.Control
		if err := wsjson.Read(ctx, c, &ctl); err != nil {
			return fmt.Errorf("read control: %w", err)
		}
		if err := s.apply(ctl); err != nil {
			s.fail(err)
		}
	}
}

func (s *session) writeLoop(ctx context.Context, c *websocket.Conn) error {
	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	pending := true
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case st := <-s.status:
			if err := wsjson.Write(ctx, c, st); err != nil {
				return fmt.Errorf("write status: %w", err)
			}
		case <-s.dirty:
			pending = true
		case <-tick.C:
			if !pending {
				continue
			}
			pending = false
			frame, err := s.frame()
			if err != nil {
				return err
			}
			if err := c.Write(ctx, websocket.MessageBinary, frame); err != nil {
				return fmt.Errorf("write frame: %w", err)
			}
		}
	}
}

// frame encodes the raster as the shell should show it: during a gesture
// it is drawn through the view's transform.
func (s *session) frame() ([]byte, error) {
	img := s.view.Image()
	if s.view.Gesture() != view.Static {
		dst := image.NewRGBA(img.Rect)
		draw.Draw(dst, dst.Rect, image.Black, image.Point{}, draw.Src)
		draw.ApproxBiLinear.Transform(dst, s.view.Transform().Aff3(), img, img.Rect, draw.Src, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := s.enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// serve runs a session on c until either side gives up.
func (s *Server) serve(ctx context.Context, c *websocket.Conn) error {
	sess, err := newSession(s.cfg)
	if err != nil {
		return fmt.Errorf("new session: %w", err)
	}
	defer sess.view.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sess.readLoop(ctx, c) })
	g.Go(func() error { return sess.writeLoop(ctx, c) })
	return g.Wait()
}
