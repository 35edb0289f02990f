// mandelmaps explores the Mandelbrot set, its Julia sets and the cubic
// Mandelbrot set. It opens a desktop window, serves browser shells over a
// websocket, or renders a single PNG.
package main

import (
	"log"

	"github.com/marben/mandelmaps/cmd/mandelmaps/cmd"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	return cmd.Execute()
}
