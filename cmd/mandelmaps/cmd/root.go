package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	mandel "github.com/marben/mandelmaps"
	"github.com/marben/mandelmaps/bookmark"
	"github.com/marben/mandelmaps/colouring"
	"github.com/marben/mandelmaps/fractal"
	"github.com/marben/mandelmaps/sched"
	"github.com/marben/mandelmaps/view"
)

var (
	// Global flags
	verbose       bool
	width         int
	height        int
	workers       int
	detail        float64
	colours       string
	crude         bool
	fractalName   string
	locationName  string
	bookmarksPath string
)

var rootCmd = &cobra.Command{
	Use:   "mandelmaps",
	Short: "Mandelbrot, Julia and cubic Mandelbrot explorer",
	Long: `Explore escape-time fractals with progressive multi-worker rendering.

Examples:
  mandelmaps view                                  # Mandelbrot window with a Julia minimap
  mandelmaps view --fractal julia --colours Hue    # Julia set window
  mandelmaps serve --addr :8080                    # serve browser shells
  mandelmaps render --location "Seahorse Valley"   # write mandel.png
  mandelmaps bookmarks --bookmarks places.txt      # list known locations`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			mandel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	f := rootCmd.PersistentFlags()
	f.BoolVarP(&verbose, "verbose", "v", false, "log scheduling and rendering")
	f.IntVar(&width, "width", 960, "view width in pixels")
	f.IntVar(&height, "height", 640, "view height in pixels")
	f.IntVar(&workers, "workers", 0, "render workers per view (0 = one per CPU)")
	f.Float64Var(&detail, "detail", fractal.DetailDefault, "iteration budget in percent")
	f.StringVar(&colours, "colours", "", fmt.Sprintf("colouring scheme %v (default depends on --fractal)", colouring.Names()))
	f.BoolVar(&crude, "crude", true, "render a low resolution pass first")
	f.StringVar(&fractalName, "fractal", string(fractal.KindMandelbrot), "mandelbrot, cubic or julia")
	f.StringVar(&locationName, "location", "", "start at the named bookmark")
	f.StringVar(&bookmarksPath, "bookmarks", "", "file with additional bookmarks")
}

// options builds the main view's options from the global flags. It also
// returns every known bookmark.
func options() (view.Options, []mandel.Location, error) {
	kind, err := fractal.ParseKind(fractalName)
	if err != nil {
		return view.Options{}, nil, err
	}
	locs, err := loadBookmarks()
	if err != nil {
		return view.Options{}, nil, err
	}

	opts := view.DefaultOptions(kind)
	opts.Width, opts.Height = width, height
	opts.Workers = workers
	opts.Order = sched.CentreOut
	opts.Detail = detail
	opts.Colours = colours
	opts.Crude = crude
	if locationName != "" {
		loc, ok := bookmark.Find(locs, locationName)
		if !ok {
			return view.Options{}, nil, fmt.Errorf("no bookmark %q", locationName)
		}
		opts.Location = loc
	}
	return opts, locs, nil
}

// loadBookmarks returns the built-in landmarks followed by the bookmarks
// file, if any.
func loadBookmarks() ([]mandel.Location, error) {
	locs := mandel.Landmarks()
	if bookmarksPath == "" {
		return locs, nil
	}
	extra, err := bookmark.ParseFile(bookmarksPath)
	if err != nil {
		return nil, err
	}
	return append(locs, extra...), nil
}
