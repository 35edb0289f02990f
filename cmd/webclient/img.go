//go:build js && wasm

package main

import (
	"bytes"
	"image"
	"image/png"
	"syscall/js"

	"golang.org/x/image/draw"
)

func canvas() js.Value {
	return js.Global().Get("document").Call("getElementById", "myCanvas")
}

// decodeFrame decodes a PNG frame sent by the server.
func decodeFrame(data []byte) (*image.RGBA, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Rect, img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

// displayImage puts img on the canvas.
func displayImage(img *image.RGBA) {
	ctx := canvas().Call("getContext", "2d")

	width := img.Rect.Dx()
	height := img.Rect.Dy()

	// Copy the Go byte slice into a JS TypedArray backing an ImageData.
	jsData := js.Global().Get("Uint8ClampedArray").New(len(img.Pix))
	js.CopyBytesToJS(jsData, img.Pix)

	imageData := js.Global().Get("ImageData").New(jsData, width, height)
	ctx.Call("putImageData", imageData, 0, 0)
}

func initCanvas(width, height int, color string) {
	c := canvas()
	c.Set("width", width)
	c.Set("height", height)

	ctx := c.Call("getContext", "2d")
	ctx.Set("fillStyle", color)
	ctx.Call("fillRect", 0, 0, width, height)
}
