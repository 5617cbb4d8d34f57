// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rasterize renders PDF pages to PNG images using the poppler
// pdftoppm binary. See docs/ARCHITECTURE § Rasterization.
package rasterize

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/pdiddy/pdf2pptx/pkg/types"
)

const (
	defaultBinary = "pdftoppm"
	defaultDPI    = 144
)

// Rasterizer converts a PDF into one PNG image per page.
type Rasterizer interface {
	// Rasterize renders every page of pdfPath into outDir and returns the
	// pages in document order. Page images are named page_000.png,
	// page_001.png and so on.
	Rasterize(ctx context.Context, pdfPath, outDir string) ([]types.Page, error)

	// Available reports whether the rasterizer binary exists on PATH.
	Available() bool
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w (output: %s)", name, err, out)
	}
	return nil
}

// popplerRasterizer shells out to pdftoppm.
type popplerRasterizer struct {
	bin  string
	dpi  int
	exec executor
}

// New builds a Rasterizer from config. Zero-value fields fall back to
// pdftoppm at 144 DPI, matching a 2x render of a 72 DPI page.
func New(cfg types.RasterizeConfig) Rasterizer {
	return newRasterizer(cfg, &osExecutor{})
}

func newRasterizer(cfg types.RasterizeConfig, exec executor) *popplerRasterizer {
	bin := cfg.Binary
	if bin == "" {
		bin = defaultBinary
	}
	dpi := cfg.DPI
	if dpi <= 0 {
		dpi = defaultDPI
	}
	return &popplerRasterizer{bin: bin, dpi: dpi, exec: exec}
}

func (r *popplerRasterizer) Available() bool {
	_, err := r.exec.LookPath(r.bin)
	return err == nil
}

func (r *popplerRasterizer) Rasterize(ctx context.Context, pdfPath, outDir string) ([]types.Page, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, fmt.Errorf("input PDF: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	prefix := filepath.Join(outDir, "raw")
	args := []string{"-png", "-r", fmt.Sprint(r.dpi), pdfPath, prefix}
	if err := r.exec.Run(ctx, r.bin, args...); err != nil {
		return nil, fmt.Errorf("rasterizing %s: %w", pdfPath, err)
	}

	return collectPages(outDir, prefix)
}

// collectPages renames the pdftoppm output files (raw-1.png, raw-2.png, or
// zero-padded variants) into the canonical page_NNN.png naming and reads
// each page's pixel dimensions.
func collectPages(outDir, prefix string) ([]types.Page, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("globbing page images: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("rasterizer produced no page images in %s", outDir)
	}

	// pdftoppm zero-pads page numbers to a fixed width, so lexical order is
	// document order.
	sort.Strings(matches)

	pages := make([]types.Page, 0, len(matches))
	for i, src := range matches {
		dest := filepath.Join(outDir, fmt.Sprintf("page_%03d.png", i))
		if err := os.Rename(src, dest); err != nil {
			return nil, fmt.Errorf("renaming %s: %w", src, err)
		}

		w, h, err := pngDimensions(dest)
		if err != nil {
			return nil, err
		}
		pages = append(pages, types.Page{
			Index:     i,
			Width:     w,
			Height:    h,
			ImagePath: dest,
		})
	}
	return pages, nil
}

func pngDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("reading dimensions of %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}
