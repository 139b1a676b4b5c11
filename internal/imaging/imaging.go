// Package imaging prepares record assets for placement. Every image is
// fully decoded, optionally downscaled, and re-encoded before the layout
// engine sees it: canvas errors are sticky and would poison the whole
// document, so corrupt or exotic files must be rejected here instead.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	_ "image/gif" // decode-only; GIFs re-encode as PNG

	xdraw "golang.org/x/image/draw"

	"github.com/brightsciences/lessonpress/internal/layout"
)

const (
	// maxEdge bounds the longest pixel edge. Print placement tops out
	// around 230 points, so anything past this resolution only bloats the
	// file. Downscaling also bounds decode memory for generated photos.
	maxEdge = 1600

	jpegQuality = 82
)

// Load reads, decodes, validates, and normalizes one image file into a
// placement-ready asset. Photos come back as baseline JPEG; PNG input stays
// PNG so logo transparency survives. The name becomes the asset's registry
// key and must be unique within a document.
func Load(path, name string) (*layout.ImageAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return Prepare(data, name)
}

// Prepare normalizes raw image bytes. See Load.
func Prepare(data []byte, name string) (*layout.ImageAsset, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() < 1 || bounds.Dy() < 1 {
		return nil, fmt.Errorf("decode image: empty bounds")
	}

	img = downscale(img)

	var (
		buf     bytes.Buffer
		outType string
	)
	if format == "png" {
		outType = "PNG"
		err = png.Encode(&buf, img)
	} else {
		outType = "JPG"
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	return &layout.ImageAsset{
		Name:   name,
		Format: outType,
		Data:   buf.Bytes(),
		PixelW: img.Bounds().Dx(),
		PixelH: img.Bounds().Dy(),
	}, nil
}

// downscale resamples the image so its longest edge is at most maxEdge.
// Catmull-Rom keeps photographic detail acceptable at print sizes.
func downscale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxEdge {
		return img
	}

	scale := float64(maxEdge) / float64(longest)
	dw := int(float64(w)*scale + 0.5)
	dh := int(float64(h)*scale + 0.5)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}
