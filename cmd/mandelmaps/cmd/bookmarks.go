package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marben/mandelmaps/bookmark"
)

var formatBookmarks bool

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "List the built-in and loaded bookmarks",
	RunE: func(cmd *cobra.Command, args []string) error {
		locs, err := loadBookmarks()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if formatBookmarks {
			return bookmark.Format(out, locs)
		}
		for i, loc := range locs {
			a := loc.Mandelbrot
			fmt.Fprintf(out, "%2d  %-28s  x %.6g  y %.6g  width %.3g\n", i+1, loc.Name, a.XMin, a.YMax, a.Width)
		}
		return nil
	},
}

func init() {
	bookmarksCmd.Flags().BoolVar(&formatBookmarks, "format", false, "print in the bookmarks file format")
	rootCmd.AddCommand(bookmarksCmd)
}
