// Package remote serves fractal views to browser shells over a websocket.
//
// Every connection gets its own view and render pool. The shell sends
// mandel.Control messages as JSON text; the server answers with
// mandel.Status messages as JSON text and with the raster as binary PNG
// messages, at most one every frame interval.
package remote

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	mandel "github.com/marben/mandelmaps"
	"github.com/marben/mandelmaps/fractal"
	"github.com/marben/mandelmaps/view"
)

// Config configures a Server.
type Config struct {
	// View is the template of every session's view. A zero size defaults
	// to 640x480 until the shell sends a resize.
	View view.Options
	// Bookmarks are the locations a shell can jump to by name.
	Bookmarks []mandel.Location
	// OriginPatterns are the hosts allowed to connect from another origin.
	OriginPatterns []string
	// FrameInterval limits how often frames are sent. Defaults to 50ms.
	FrameInterval time.Duration
}

// Server accepts websocket connections and runs one session per connection.
type Server struct {
	cfg      Config
	sessions atomic.Int32
}

func NewServer(cfg Config) *Server {
	if cfg.View.Kind == "" {
		cfg.View = view.DefaultOptions(fractal.KindMandelbrot)
	}
	if cfg.View.Width <= 0 || cfg.View.Height <= 0 {
		cfg.View.Width, cfg.View.Height = 640, 480
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = 50 * time.Millisecond
	}
	if len(cfg.Bookmarks) == 0 {
		cfg.Bookmarks = mandel.Landmarks()
	}
	return &Server{cfg: cfg}
}

// Sessions returns the number of connected shells.
func (s *Server) Sessions() int { return int(s.sessions.Load()) }

// Handler serves the websocket endpoint on /ws and the files of staticDir
// (index.html, main.wasm) on every other path.
func (s *Server) Handler(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	return mux
}

// ServeHTTP upgrades the request and runs a session until the shell
// disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.OriginPatterns,
	})
	if err != nil {
		log.Printf("websocket accept: %v", err)
		return
	}
	defer c.CloseNow()

	n := s.sessions.Add(1)
	defer s.sessions.Add(-1)
	log.Printf("got connection from: %s (sessions: %d)", r.RemoteAddr, n)

	err = s.serve(r.Context(), c)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
	case websocket.CloseStatus(err) == websocket.StatusNormalClosure,
		websocket.CloseStatus(err) == websocket.StatusGoingAway:
	default:
		log.Printf("session %s: %v", r.RemoteAddr, err)
		return
	}
	c.Close(websocket.StatusNormalClosure, "")
	log.Printf("connection from %s closed", r.RemoteAddr)
}
