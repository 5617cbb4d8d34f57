// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rasterize

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/pdf2pptx/pkg/types"
)

// fakeExecutor simulates pdftoppm by writing PNG files into the output
// directory derived from the final argument.
type fakeExecutor struct {
	available bool
	pages     int
	runErr    error
	gotArgs   []string
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.available {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found")
}

func (f *fakeExecutor) Run(ctx context.Context, name string, args ...string) error {
	f.gotArgs = append([]string{name}, args...)
	if f.runErr != nil {
		return f.runErr
	}
	prefix := args[len(args)-1]
	for i := 1; i <= f.pages; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 320, 180))
		out, err := os.Create(fmt.Sprintf("%s-%02d.png", prefix, i))
		if err != nil {
			return err
		}
		if err := png.Encode(out, img); err != nil {
			out.Close()
			return err
		}
		out.Close()
	}
	return nil
}

func writeFakePDF(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "deck.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.5 fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRasterize(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeFakePDF(t, dir)
	exec := &fakeExecutor{available: true, pages: 3}
	r := newRasterizer(types.RasterizeConfig{DPI: 200}, exec)

	pages, err := r.Rasterize(context.Background(), pdfPath, filepath.Join(dir, "images"))
	if err != nil {
		t.Fatal(err)
	}

	if len(pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(pages))
	}
	for i, p := range pages {
		if p.Index != i {
			t.Errorf("page %d index = %d", i, p.Index)
		}
		want := filepath.Join(dir, "images", fmt.Sprintf("page_%03d.png", i))
		if p.ImagePath != want {
			t.Errorf("page %d path = %q, want %q", i, p.ImagePath, want)
		}
		if p.Width != 320 || p.Height != 180 {
			t.Errorf("page %d dimensions = %dx%d", i, p.Width, p.Height)
		}
	}

	// DPI from config is passed through.
	if exec.gotArgs[0] != "pdftoppm" || exec.gotArgs[3] != "200" {
		t.Errorf("command = %v", exec.gotArgs)
	}
}

func TestRasterize_MissingPDF(t *testing.T) {
	r := newRasterizer(types.RasterizeConfig{}, &fakeExecutor{available: true, pages: 1})
	_, err := r.Rasterize(context.Background(), "/nonexistent/deck.pdf", t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing input PDF")
	}
}

func TestRasterize_CommandFailure(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeFakePDF(t, dir)
	exec := &fakeExecutor{available: true, runErr: errors.New("syntax error")}
	r := newRasterizer(types.RasterizeConfig{}, exec)

	if _, err := r.Rasterize(context.Background(), pdfPath, filepath.Join(dir, "images")); err == nil {
		t.Fatal("expected error when the rasterizer command fails")
	}
}

func TestRasterize_NoOutput(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeFakePDF(t, dir)
	exec := &fakeExecutor{available: true, pages: 0}
	r := newRasterizer(types.RasterizeConfig{}, exec)

	if _, err := r.Rasterize(context.Background(), pdfPath, filepath.Join(dir, "images")); err == nil {
		t.Fatal("expected error when no page images are produced")
	}
}

func TestAvailable(t *testing.T) {
	if !newRasterizer(types.RasterizeConfig{}, &fakeExecutor{available: true}).Available() {
		t.Error("expected available")
	}
	if newRasterizer(types.RasterizeConfig{}, &fakeExecutor{}).Available() {
		t.Error("expected unavailable")
	}
}
