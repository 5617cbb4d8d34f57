// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates a conversion run: rasterization, per-page
// extraction and decomposition fanned out to a bounded worker pool, background
// synthesis, style resolution, and assembly into the output deck. See
// docs/ARCHITECTURE § Orchestration.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdf2pptx/internal/assemble"
	"github.com/pdiddy/pdf2pptx/internal/decompose"
	"github.com/pdiddy/pdf2pptx/internal/extract"
	"github.com/pdiddy/pdf2pptx/internal/inpaint"
	"github.com/pdiddy/pdf2pptx/internal/ocr"
	"github.com/pdiddy/pdf2pptx/internal/rasterize"
	"github.com/pdiddy/pdf2pptx/internal/registry"
	"github.com/pdiddy/pdf2pptx/internal/style"
	"github.com/pdiddy/pdf2pptx/pkg/types"
)

const defaultWorkers = 4

// Extractor issues extraction calls for page and sub-region images.
// Satisfied by *extract.Client.
type Extractor interface {
	ParseImage(ctx context.Context, imagePath string, overrides map[string]string) (string, string, error)
}

// Job describes one conversion run.
type Job struct {
	// PDFPath is the input slide deck.
	PDFPath string

	// OutputPath is the target pptx file. Empty means
	// <OutputDir>/<stem>.pptx.
	OutputPath string

	// ResultsDir points at an existing extraction result directory. When
	// set, page-level extraction calls are skipped and records are taken
	// from the stored content list instead.
	ResultsDir string

	// Timeout bounds the whole run. Zero means no run-level deadline. Pages
	// cancelled by the deadline degrade to background-only slides; pages
	// already converted are kept.
	Timeout time.Duration
}

// PageReport summarizes the outcome for one page.
type PageReport struct {
	Index     int    `yaml:"index"`
	ExtractID string `yaml:"extract_id,omitempty"`
	Elements  int    `yaml:"elements"`
	Degraded  bool   `yaml:"degraded"`
	Error     string `yaml:"error,omitempty"`
}

// RunResult is the run manifest, written next to the generated deck.
type RunResult struct {
	Input       string       `yaml:"input"`
	Output      string       `yaml:"output"`
	StartedAt   time.Time    `yaml:"started_at"`
	Duration    string       `yaml:"duration"`
	StyleSource string       `yaml:"style_source"`
	Pages       []PageReport `yaml:"pages"`
}

// Pipeline wires the conversion stages together.
type Pipeline struct {
	cfg       types.PipelineConfig
	raster    rasterize.Rasterizer
	extractor Extractor
	engine    *decompose.Engine
	synth     inpaint.Synthesizer
	store     *registry.Store

	mu  sync.Mutex
	out io.Writer
}

// New builds a pipeline from its stage collaborators. The registry store may
// be nil; extraction calls are then not recorded. The extractor may be nil
// only for runs that reuse an existing result directory.
func New(cfg types.PipelineConfig, raster rasterize.Rasterizer, extractor Extractor,
	recognizer ocr.Recognizer, synth inpaint.Synthesizer, store *registry.Store, out io.Writer) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	p := &Pipeline{
		cfg:       cfg,
		raster:    raster,
		extractor: extractor,
		synth:     synth,
		store:     store,
		out:       out,
	}
	p.engine = decompose.New(cfg.Decompose, extractor, recognizer, cfg.WorkDir)
	p.engine.OnExtraction(p.recordEvent)
	return p
}

// pageResult is one worker's outcome, merged by index on the main goroutine.
type pageResult struct {
	index    int
	editable types.EditableImage
	report   PageReport
	log      string
	err      error
}

// Run converts one PDF into an editable deck. A failed or timed-out page
// falls back to a background-only slide and the run keeps its completed
// pages; configuration and rasterization failures abort the run.
func (p *Pipeline) Run(ctx context.Context, job Job) (*RunResult, error) {
	start := time.Now()
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	if err := p.checkConfig(job); err != nil {
		return nil, err
	}

	outPath := job.OutputPath
	if outPath == "" {
		stem := strings.TrimSuffix(filepath.Base(job.PDFPath), filepath.Ext(job.PDFPath))
		outPath = filepath.Join(p.cfg.OutputDir, stem+".pptx")
	}

	pages, err := p.raster.Rasterize(ctx, job.PDFPath, filepath.Join(p.cfg.WorkDir, "pages"))
	if err != nil {
		return nil, fmt.Errorf("rasterizing %s: %w", job.PDFPath, err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%s rendered no pages", job.PDFPath)
	}
	p.logf("rasterized: %s (%d pages)\n", filepath.Base(job.PDFPath), len(pages))

	var reused map[int][]extract.ContentRecord
	if job.ResultsDir != "" {
		result, err := extract.LoadResult(job.ResultsDir)
		if err != nil {
			return nil, fmt.Errorf("reusing extraction from %s: %w", job.ResultsDir, err)
		}
		reused = splitByPage(result.Records)
		p.logf("reusing: %s (%d records)\n", job.ResultsDir, len(result.Records))
	}

	styleCfg := style.Extract(p.cfg.Template, p.out)

	images, reports := p.convertPages(ctx, pages, job.ResultsDir, reused)

	if err := assemble.Write(outPath, images, styleCfg); err != nil {
		return nil, fmt.Errorf("assembling %s: %w", outPath, err)
	}

	result := &RunResult{
		Input:       job.PDFPath,
		Output:      outPath,
		StartedAt:   start.UTC(),
		Duration:    time.Since(start).Round(time.Millisecond).String(),
		StyleSource: styleCfg.Source,
		Pages:       reports,
	}
	if err := p.writeManifest(outPath, result); err != nil {
		p.logf("warning: run manifest: %v\n", err)
	}

	degraded := 0
	for _, r := range reports {
		if r.Degraded {
			degraded++
		}
	}
	p.logf("converted: %s (%d pages, %d degraded)\n", outPath, len(pages), degraded)
	return result, nil
}

// checkConfig validates everything a run needs before any work starts.
func (p *Pipeline) checkConfig(job Job) error {
	if job.PDFPath == "" {
		return &extract.ConfigurationError{Reason: "no input PDF given"}
	}
	if _, err := os.Stat(job.PDFPath); err != nil {
		return &extract.ConfigurationError{Reason: fmt.Sprintf("input %s: %v", job.PDFPath, err)}
	}
	if p.raster == nil || !p.raster.Available() {
		return &extract.ConfigurationError{Reason: "rasterizer binary not found on PATH"}
	}
	if p.extractor == nil && job.ResultsDir == "" {
		return &extract.ConfigurationError{Reason: "extraction endpoint is not configured and no result directory was given"}
	}
	if p.cfg.WorkDir == "" {
		return &extract.ConfigurationError{Reason: "work directory is not configured"}
	}
	return nil
}

// convertPages fans the page work out to a bounded pool and merges the
// tagged results back by index. A per-page failure yields a background-only
// slide instead of aborting the run.
func (p *Pipeline) convertPages(ctx context.Context, pages []types.Page, resultsDir string, reused map[int][]extract.ContentRecord) ([]types.EditableImage, []PageReport) {
	workers := p.cfg.Workers
	if workers > len(pages) {
		workers = len(pages)
	}

	jobs := make(chan types.Page)
	results := make(chan pageResult, len(pages))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				results <- p.convertPage(ctx, page, resultsDir, reused)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	go func() {
		for _, page := range pages {
			jobs <- page
		}
		close(jobs)
	}()

	images := make([]types.EditableImage, len(pages))
	reports := make([]PageReport, len(pages))
	for res := range results {
		if res.log != "" {
			p.logf("%s", res.log)
		}
		if res.err != nil {
			p.logf("warning: page %d failed, keeping background only: %v\n", res.index, res.err)
			res.report.Degraded = true
			res.report.Error = res.err.Error()
			res.editable = types.EditableImage{
				Page:           pages[res.index],
				BackgroundPath: pages[res.index].ImagePath,
				Degraded:       true,
			}
		}
		images[res.index] = res.editable
		reports[res.index] = res.report
	}
	return images, reports
}

// convertPage runs extraction, decomposition, and background synthesis for
// one page. Stage output is buffered so concurrent pages do not interleave
// on the status writer.
func (p *Pipeline) convertPage(ctx context.Context, page types.Page, resultsDir string, reused map[int][]extract.ContentRecord) pageResult {
	var log bytes.Buffer
	res := pageResult{index: page.Index, report: PageReport{Index: page.Index}}

	result, extractID, err := p.pageRecords(ctx, page, resultsDir, reused, &log)
	if err != nil {
		res.err = err
		res.log = log.String()
		return res
	}
	res.report.ExtractID = extractID

	elements, err := p.engine.Decompose(ctx, page, result, &log)
	if err != nil {
		res.err = err
		res.log = log.String()
		return res
	}

	// Every root element is foreground content to remove from the background.
	masks := make([]types.BBox, 0, len(elements))
	for _, el := range elements {
		masks = append(masks, el.BBox)
	}
	background, degraded := p.synth.Synthesize(ctx, page, masks, &log)

	res.editable = types.EditableImage{
		Page:           page,
		Elements:       elements,
		BackgroundPath: background,
		Degraded:       degraded,
	}
	res.report.Elements = countElements(elements)
	res.report.Degraded = degraded
	res.log = log.String()
	return res
}

// pageRecords obtains the extraction result for one page, either from a
// reused result directory or through a fresh page-level extraction call.
func (p *Pipeline) pageRecords(ctx context.Context, page types.Page, resultsDir string, reused map[int][]extract.ContentRecord, log io.Writer) (*extract.Result, string, error) {
	if reused != nil {
		records := reused[page.Index]
		if len(records) == 0 {
			return nil, "", fmt.Errorf("reused result has no records for page %d", page.Index)
		}
		return &extract.Result{Dir: resultsDir, Records: records}, "", nil
	}

	fmt.Fprintf(log, "extracting: page %d\n", page.Index)
	id, dir, err := p.extractor.ParseImage(ctx, page.ImagePath, nil)
	if err != nil {
		return nil, "", fmt.Errorf("page extraction: %w", err)
	}

	result, err := extract.LoadResult(dir)
	status := registry.StatusComplete
	if err != nil {
		status = registry.StatusFailed
	}
	p.recordExtraction(ctx, registry.Extraction{
		ID:        id,
		PageIndex: page.Index,
		Depth:     0,
		Dir:       dir,
		Status:    status,
	})
	if err != nil {
		return nil, "", fmt.Errorf("page extraction result: %w", err)
	}
	return result, id, nil
}

// recordEvent stores a sub-region extraction call in the registry.
func (p *Pipeline) recordEvent(ctx context.Context, ev decompose.ExtractionEvent) {
	status := registry.StatusComplete
	if ev.Err != nil {
		status = registry.StatusFailed
	}
	p.recordExtraction(ctx, registry.Extraction{
		ID:        ev.ID,
		ParentID:  ev.ParentID,
		PageIndex: ev.PageIndex,
		Depth:     ev.Depth,
		Dir:       ev.Dir,
		Status:    status,
	})
}

func (p *Pipeline) recordExtraction(ctx context.Context, e registry.Extraction) {
	if p.store == nil {
		return
	}
	if err := p.store.Record(ctx, e); err != nil {
		p.logf("warning: registry: %v\n", err)
	}
}

// writeManifest records the run outcome next to the generated deck as
// <stem>-run.yaml.
func (p *Pipeline) writeManifest(outPath string, result *RunResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	stem := strings.TrimSuffix(outPath, filepath.Ext(outPath))
	return os.WriteFile(stem+"-run.yaml", data, 0o644)
}

// splitByPage groups a whole-document content list by page index. Record
// boxes stay page-relative, matching per-page extraction output.
func splitByPage(records []extract.ContentRecord) map[int][]extract.ContentRecord {
	out := make(map[int][]extract.ContentRecord, len(records))
	for _, rec := range records {
		out[rec.PageIdx] = append(out[rec.PageIdx], rec)
	}
	return out
}

func countElements(elements []*types.Element) int {
	n := 0
	for _, el := range elements {
		n += 1 + countElements(el.Children)
	}
	return n
}

// logf serializes writes to the shared status writer.
func (p *Pipeline) logf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}
