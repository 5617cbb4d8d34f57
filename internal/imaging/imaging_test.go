// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imaging

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/pdiddy/pdf2pptx/pkg/types"
)

// testImage builds a w by h image with a distinct pixel at (markX, markY).
func testImage(w, h, markX, markY int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	img.Set(markX, markY, color.RGBA{R: 255, A: 255})
	return img
}

func TestCrop(t *testing.T) {
	img := testImage(200, 100, 60, 30)

	crop, err := Crop(img, types.NewBBox(50, 20, 150, 80))
	if err != nil {
		t.Fatal(err)
	}

	b := crop.Bounds()
	if b.Dx() != 100 || b.Dy() != 60 {
		t.Errorf("crop size = %dx%d, want 100x60", b.Dx(), b.Dy())
	}
	r, _, _, _ := crop.At(60, 30).RGBA()
	if r != 0xffff {
		t.Errorf("marker pixel not present in crop")
	}
}

func TestCrop_ClampsToImageBounds(t *testing.T) {
	img := testImage(100, 100, 0, 0)

	crop, err := Crop(img, types.NewBBox(-20, -20, 50, 150))
	if err != nil {
		t.Fatal(err)
	}
	b := crop.Bounds()
	if b.Dx() != 50 || b.Dy() != 100 {
		t.Errorf("clamped crop size = %dx%d, want 50x100", b.Dx(), b.Dy())
	}
}

func TestCrop_OutsideBounds(t *testing.T) {
	img := testImage(100, 100, 0, 0)
	if _, err := Crop(img, types.NewBBox(200, 200, 300, 300)); err == nil {
		t.Fatal("expected error for region outside image bounds")
	}
}

func TestDownscale(t *testing.T) {
	tests := []struct {
		name         string
		w, h, maxDim int
		wantW, wantH int
	}{
		{"wide image", 4000, 2000, 1000, 1000, 500},
		{"tall image", 1000, 4000, 2000, 500, 2000},
		{"within limit unchanged", 800, 600, 1000, 800, 600},
		{"zero limit unchanged", 800, 600, 0, 800, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := testImage(tt.w, tt.h, 0, 0)
			out := Downscale(img, tt.maxDim)
			b := out.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestSaveAndLoadPNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "page.png")

	if err := SavePNG(testImage(40, 20, 5, 5), path); err != nil {
		t.Fatal(err)
	}
	img, err := LoadPNG(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Errorf("round-tripped size = %v", img.Bounds())
	}
}

func TestCropToFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "page.png")
	dest := filepath.Join(dir, "regions", "r0.png")

	if err := SavePNG(testImage(300, 200, 0, 0), src); err != nil {
		t.Fatal(err)
	}
	if err := CropToFile(src, types.NewBBox(10, 10, 110, 60), dest); err != nil {
		t.Fatal(err)
	}
	img, err := LoadPNG(dest)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Errorf("crop file size = %v", img.Bounds())
	}
}
