package cmd

import (
	"github.com/spf13/cobra"

	"github.com/marben/mandelmaps/internal/desktop"
)

var noMinimap bool

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open a desktop window",
	Long: `Open a window showing the fractal.

Drag to pan, use the wheel or pinch to zoom. Hold the right mouse button
over the Mandelbrot set to pick the Julia set shown in the corner.

Keys:
  = / -   more or less detail
  K       next colouring scheme
  C       toggle the crude pass
  R       reset
  1-9     jump to a bookmark
  B       print the current location as a bookmark
  S       save a PNG
  Esc, Q  quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, locs, err := options()
		if err != nil {
			return err
		}
		return desktop.Run(desktop.Config{
			Main:      opts,
			Minimap:   !noMinimap,
			Bookmarks: locs,
			Out:       cmd.OutOrStdout(),
		})
	},
}

func init() {
	viewCmd.Flags().BoolVar(&noMinimap, "no-minimap", false, "hide the little Julia view")
	rootCmd.AddCommand(viewCmd)
}
