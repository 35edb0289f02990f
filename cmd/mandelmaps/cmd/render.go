package cmd

import (
	"context"
	"encoding/binary"
	"fmt"
	"image/png"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marben/mandelmaps/view"
)

var (
	output        string
	renderTimeout time.Duration
	rawRGB565     bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one image to a PNG file",
	Long: `Render one image to a PNG file.

With --rgb565 the raster is written instead as raw little-endian RGB565
pixels, row by row, the way panel displays take it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, _, err := options()
		if err != nil {
			return err
		}
		// A single image gains nothing from a preview pass.
		opts.Crude = false

		v, err := view.New(opts, nil)
		if err != nil {
			return err
		}
		defer v.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), renderTimeout)
		defer cancel()
		start := time.Now()
		if err := v.Wait(ctx); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		log.Print(view.RenderTimeMessage(time.Since(start)))

		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		if rawRGB565 {
			if err := binary.Write(f, binary.LittleEndian, v.RGB565()); err != nil {
				return fmt.Errorf("failed to write RGB565: %w", err)
			}
		} else if err := png.Encode(f, v.Image()); err != nil {
			return fmt.Errorf("failed to encode PNG: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}

		log.Printf("fully rendered file saved to %q", output)
		return nil
	},
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&output, "output", "o", "mandel.png", "file to write")
	f.BoolVar(&rawRGB565, "rgb565", false, "write raw RGB565 pixels instead of PNG")
	f.DurationVar(&renderTimeout, "timeout", 5*time.Minute, "give up after this long")
	rootCmd.AddCommand(renderCmd)
}
