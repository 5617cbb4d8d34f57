// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package decompose turns a flat page image plus its extraction result into
// a tree of positioned, typed elements. Composite regions are cropped and
// re-submitted to the extraction service up to a configured depth. See
// docs/ARCHITECTURE § Decomposition.
package decompose

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/pdiddy/pdf2pptx/internal/extract"
	"github.com/pdiddy/pdf2pptx/internal/imaging"
	"github.com/pdiddy/pdf2pptx/internal/ocr"
	"github.com/pdiddy/pdf2pptx/pkg/types"
)

// RegionExtractor issues extraction calls for cropped sub-region images.
// Satisfied by *extract.Client.
type RegionExtractor interface {
	ParseImage(ctx context.Context, imagePath string, overrides map[string]string) (string, string, error)
}

// ExtractionEvent describes one sub-region extraction call issued during
// decomposition. Err is set when the call succeeded but its result directory
// could not be read back.
type ExtractionEvent struct {
	ID        string
	ParentID  string
	Dir       string
	PageIndex int
	Depth     int
	Err       error
}

// RecordFunc receives extraction events as they happen.
type RecordFunc func(ctx context.Context, ev ExtractionEvent)

// Engine builds element trees from extraction results.
type Engine struct {
	cfg       types.DecomposeConfig
	extractor RegionExtractor
	ocr       ocr.Recognizer
	workDir   string
	record    RecordFunc
}

// OnExtraction registers a callback for every sub-region extraction call.
// Used to keep the extraction registry current.
func (e *Engine) OnExtraction(fn RecordFunc) { e.record = fn }

// New builds a decomposition engine. The OCR recognizer may be disabled; it
// is consulted only for table cells the layout service left without text.
func New(cfg types.DecomposeConfig, extractor RegionExtractor, recognizer ocr.Recognizer, workDir string) *Engine {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 3
	}
	if cfg.MinRegionArea <= 0 {
		cfg.MinRegionArea = 10000
	}
	return &Engine{
		cfg:       cfg,
		extractor: extractor,
		ocr:       recognizer,
		workDir:   workDir,
	}
}

// region is one pending unit of decomposition work. The work list carries
// regions instead of using native recursion so the depth bound and
// cancellation are enforceable without unbounded stack growth.
type region struct {
	// parent receives the elements produced for this region.
	parent *types.Element

	// bbox is the region's extent in page-pixel coordinates.
	bbox types.BBox

	// records are the content records scoped to this region, with bboxes in
	// the region's own coordinate space.
	records []extract.ContentRecord

	// extractID is the extraction call that produced the records.
	extractID string

	depth int
}

// Decompose builds the ordered root-element sequence for one page from an
// already-loaded extraction result. Failures inside a sub-region downgrade
// that region to a diagnostic leaf; only the root region's absence of
// records is surfaced to the caller.
func (e *Engine) Decompose(ctx context.Context, page types.Page, result *extract.Result, out io.Writer) ([]*types.Element, error) {
	if len(result.Records) == 0 {
		return nil, fmt.Errorf("extraction produced no content records for page %d", page.Index)
	}

	root := &types.Element{
		Kind: types.ElementGroup,
		BBox: types.NewBBox(0, 0, float64(page.Width), float64(page.Height)),
	}

	// The result directory name is the extraction id.
	work := []region{{
		parent:    root,
		bbox:      root.BBox,
		records:   result.Records,
		extractID: filepath.Base(result.Dir),
		depth:     0,
	}}

	for len(work) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r := work[0]
		work = work[1:]

		children := e.buildElements(ctx, page, r, &work, out)
		sortReadingOrder(children)
		r.parent.Children = append(r.parent.Children, children...)
	}

	return root.Children, nil
}

// buildElements converts a region's content records into elements, queueing
// composite regions for deeper decomposition.
func (e *Engine) buildElements(ctx context.Context, page types.Page, r region, work *[]region, out io.Writer) []*types.Element {
	pageBounds := types.NewBBox(0, 0, float64(page.Width), float64(page.Height))
	var elements []*types.Element

	for _, rec := range r.records {
		box, ok := rec.Bounds()
		if !ok {
			continue
		}
		// Record coordinates are relative to the region that was submitted
		// for extraction; shift into page space and keep inside the parent.
		box = box.Offset(r.bbox.X0, r.bbox.Y0).Clamp(r.bbox).Clamp(pageBounds)
		if box.IsEmpty() {
			continue
		}

		elem := &types.Element{
			BBox:  box,
			Depth: r.depth,
		}

		switch rec.Type {
		case "text", "title", "equation":
			elem.Kind = types.ElementText
			elem.Text = rec.Text
			elem.TextLevel = rec.TextLevel
		case "table":
			elem.Kind = types.ElementTable
			elem.Cells = e.tableCells(ctx, page, rec, box, out)
		case "image":
			elem.Kind = types.ElementImage
			elem.ImagePath = rec.ImgPath
			// Only image regions large enough to plausibly contain nested
			// content are worth a recursive extraction call.
			if r.depth < e.cfg.MaxDepth && box.Area() >= e.cfg.MinRegionArea {
				e.queueComposite(ctx, page, elem, r.extractID, work, out)
			}
		default:
			// Unknown record types are kept as positioned images so the
			// content is not silently dropped from the slide.
			elem.Kind = types.ElementImage
			elem.ImagePath = rec.ImgPath
		}

		elements = append(elements, elem)
	}

	return elements
}

// queueComposite crops the element's region out of the page image, submits
// it for extraction, and queues the resulting records one level deeper. Any
// failure downgrades the element to a diagnostic leaf.
func (e *Engine) queueComposite(ctx context.Context, page types.Page, elem *types.Element, parentID string, work *[]region, out io.Writer) {
	if e.extractor == nil {
		return
	}

	cropPath := filepath.Join(e.workDir, "regions",
		fmt.Sprintf("page%03d_d%d_%d_%d.png", page.Index, elem.Depth+1, int(elem.BBox.X0), int(elem.BBox.Y0)))

	if err := imaging.CropToFile(page.ImagePath, elem.BBox, cropPath); err != nil {
		elem.Diagnostic = fmt.Sprintf("region crop failed: %v", err)
		fmt.Fprintf(out, "downgraded: page %d region at (%d,%d) (%s)\n",
			page.Index, int(elem.BBox.X0), int(elem.BBox.Y0), elem.Diagnostic)
		return
	}

	id, dir, err := e.extractor.ParseImage(ctx, cropPath, nil)
	if err != nil {
		elem.Diagnostic = fmt.Sprintf("sub-region extraction failed: %v", err)
		fmt.Fprintf(out, "downgraded: page %d region at (%d,%d) (%s)\n",
			page.Index, int(elem.BBox.X0), int(elem.BBox.Y0), elem.Diagnostic)
		return
	}

	result, err := extract.LoadResult(dir)
	if e.record != nil {
		e.record(ctx, ExtractionEvent{
			ID:        id,
			ParentID:  parentID,
			Dir:       dir,
			PageIndex: page.Index,
			Depth:     elem.Depth + 1,
			Err:       err,
		})
	}
	if err != nil {
		elem.Diagnostic = fmt.Sprintf("sub-region result unreadable: %v", err)
		fmt.Fprintf(out, "downgraded: page %d region at (%d,%d) (%s)\n",
			page.Index, int(elem.BBox.X0), int(elem.BBox.Y0), elem.Diagnostic)
		return
	}

	// A sub-extraction that sees a single region spanning the whole crop has
	// found nothing new to split; treat the element as a leaf.
	if len(result.Records) <= 1 {
		return
	}

	*work = append(*work, region{
		parent:    elem,
		bbox:      elem.BBox,
		records:   result.Records,
		extractID: id,
		depth:     elem.Depth + 1,
	})
}

// tableCells derives the cell grid for a table region. The layout service's
// HTML table body provides text and grid shape; cell geometry is a uniform
// split of the region. Cells without text are backfilled through OCR when a
// recognizer is configured.
func (e *Engine) tableCells(ctx context.Context, page types.Page, rec extract.ContentRecord, box types.BBox, out io.Writer) []types.TableCell {
	grid := extract.ParseTableBody(rec.TableBody)
	if len(grid) == 0 {
		return nil
	}

	cols := 0
	for _, row := range grid {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return nil
	}

	cellW := box.Width() / float64(cols)
	cellH := box.Height() / float64(len(grid))

	var cells []types.TableCell
	for ri, row := range grid {
		for ci := 0; ci < cols; ci++ {
			cell := types.TableCell{
				Row: ri,
				Col: ci,
				BBox: types.NewBBox(
					box.X0+float64(ci)*cellW,
					box.Y0+float64(ri)*cellH,
					box.X0+float64(ci+1)*cellW,
					box.Y0+float64(ri)*cellH+cellH,
				),
			}
			if ci < len(row) {
				cell.Text = row[ci]
			}
			if cell.Text == "" && e.ocr != nil && e.ocr.Enabled() {
				cell.Text = e.recognizeCell(ctx, page, cell, out)
			}
			cells = append(cells, cell)
		}
	}
	return cells
}

// recognizeCell crops one cell and runs OCR on it. Failures leave the cell
// empty; a missing cell text never aborts the page.
func (e *Engine) recognizeCell(ctx context.Context, page types.Page, cell types.TableCell, out io.Writer) string {
	cropPath := filepath.Join(e.workDir, "cells",
		fmt.Sprintf("page%03d_r%d_c%d.png", page.Index, cell.Row, cell.Col))
	if err := imaging.CropToFile(page.ImagePath, cell.BBox, cropPath); err != nil {
		fmt.Fprintf(out, "warning: page %d cell (%d,%d) crop failed: %v\n", page.Index, cell.Row, cell.Col, err)
		return ""
	}
	text, err := e.ocr.Recognize(ctx, cropPath)
	if err != nil {
		fmt.Fprintf(out, "warning: page %d cell (%d,%d) ocr failed: %v\n", page.Index, cell.Row, cell.Col, err)
		return ""
	}
	return text
}

// sortReadingOrder orders siblings row-major: top edge first, left edge as
// the tie-break. The extraction service's native ordering is not stable
// across backends, so the reading order is imposed here.
func sortReadingOrder(elements []*types.Element) {
	sort.SliceStable(elements, func(i, j int) bool {
		if elements[i].BBox.Y0 != elements[j].BBox.Y0 {
			return elements[i].BBox.Y0 < elements[j].BBox.Y0
		}
		return elements[i].BBox.X0 < elements[j].BBox.X0
	})
}
