// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imaging provides the raster operations the pipeline needs: loading
// and saving PNG pages, cropping regions out of page images, and downscaling
// oversized crops before they are sent to remote services.
package imaging

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	"github.com/pdiddy/pdf2pptx/pkg/types"
)

// LoadPNG reads a PNG image from disk.
func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image %s: %w", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// SavePNG writes img to path, creating parent directories as needed.
func SavePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

// Crop returns the region of img covered by box. The box is clamped to the
// image bounds first; a box that clamps to nothing returns an error.
func Crop(img image.Image, box types.BBox) (image.Image, error) {
	bounds := img.Bounds()
	clamped := box.Clamp(types.NewBBox(
		float64(bounds.Min.X), float64(bounds.Min.Y),
		float64(bounds.Max.X), float64(bounds.Max.Y),
	))
	if clamped.IsEmpty() {
		return nil, fmt.Errorf("region %v lies outside image bounds %v", box, bounds)
	}

	rect := image.Rect(
		int(clamped.X0), int(clamped.Y0),
		int(clamped.X1), int(clamped.Y1),
	)

	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if si, ok := img.(subImager); ok {
		return si.SubImage(rect), nil
	}

	// Fallback for decoders that return non-subimageable types.
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	xdraw.Draw(out, out.Bounds(), img, rect.Min, xdraw.Src)
	return out, nil
}

// Downscale resizes img so that neither dimension exceeds maxDim, preserving
// aspect ratio. Images already within the limit are returned unchanged.
func Downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, bounds, xdraw.Over, nil)
	return out
}

// CropToFile crops box out of the page image at srcPath and writes the
// result to destPath. Used by the decomposition engine to materialize
// sub-region images for recursive extraction calls.
func CropToFile(srcPath string, box types.BBox, destPath string) error {
	img, err := LoadPNG(srcPath)
	if err != nil {
		return err
	}
	crop, err := Crop(img, box)
	if err != nil {
		return err
	}
	return SavePNG(crop, destPath)
}
