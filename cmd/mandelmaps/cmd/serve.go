package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marben/mandelmaps/internal/remote"
)

var (
	addr      string
	staticDir string
	origins   []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve browser shells over a websocket",
	Long: `Serve index.html and main.wasm from --static and a websocket endpoint
on /ws. Every connected shell gets its own view rendered on this machine.

Build the browser shell with:
  GOOS=js GOARCH=wasm go build -o static/main.wasm ./cmd/webclient
  cp "$(go env GOROOT)/lib/wasm/wasm_exec.js" static/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, locs, err := options()
		if err != nil {
			return err
		}
		srv := remote.NewServer(remote.Config{
			View:           opts,
			Bookmarks:      locs,
			OriginPatterns: origins,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, srv.Handler(staticDir))
	},
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&addr, "addr", ":8080", "listen address")
	f.StringVar(&staticDir, "static", "./static", "directory with index.html and main.wasm")
	f.StringSliceVar(&origins, "origin", nil, "additional origins allowed to connect")
	rootCmd.AddCommand(serveCmd)
}

// serve runs an http server on addr until ctx is done.
func serve(ctx context.Context, h http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("listening on http://localhost%s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("httpServer: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
