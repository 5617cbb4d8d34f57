// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2pptx/internal/extract"
	"github.com/pdiddy/pdf2pptx/internal/inpaint"
	"github.com/pdiddy/pdf2pptx/internal/ocr"
	"github.com/pdiddy/pdf2pptx/internal/pipeline"
	"github.com/pdiddy/pdf2pptx/internal/rasterize"
	"github.com/pdiddy/pdf2pptx/internal/registry"
	"github.com/pdiddy/pdf2pptx/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <deck.pdf>",
	Short: "Convert a PDF slide deck into an editable PPTX",
	Long: `Convert rasterizes each page of the deck, sends the page images to the
extraction service, decomposes the results into positioned elements, cleans
the backgrounds through the inpainting service when credentials are present,
and assembles an editable PPTX plus a run manifest.

A previously stored extraction can be reused with --results-dir, skipping
the page-level extraction calls entirely.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	var extractor pipeline.Extractor
	if cfg.Extraction.Endpoint != "" {
		client, err := extract.NewClient(cfg.Extraction)
		if err != nil {
			return err
		}
		extractor = client
	}

	store, err := registry.Open(filepath.Join(cfg.WorkDir, "index"))
	if err != nil {
		return err
	}
	defer store.Close()

	p := pipeline.New(cfg, rasterize.New(cfg.Rasterize), extractor,
		ocr.NewClient(cfg.OCR), inpaint.NewClient(cfg.Inpaint), store, os.Stdout)

	outPath, _ := cmd.Flags().GetString("output")
	resultsDir, _ := cmd.Flags().GetString("results-dir")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	_, err = p.Run(context.Background(), pipeline.Job{
		PDFPath:    args[0],
		OutputPath: outPath,
		ResultsDir: resultsDir,
		Timeout:    timeout,
	})
	return err
}

// pipelineConfig assembles the full stage configuration from viper (flags,
// environment, config file) and the loaded secrets. Deep components never
// read configuration themselves.
func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Rasterize: types.RasterizeConfig{
			Binary: viper.GetString("rasterize.binary"),
			DPI:    viper.GetInt("rasterize.dpi"),
		},
		Extraction: types.ExtractionConfig{
			Endpoint:   viper.GetString("extraction.endpoint"),
			Token:      secretDefault("mineru-token", viper.GetString("extraction.token")),
			MaxRetries: viper.GetInt("extraction.max_retries"),
		},
		Decompose: types.DecomposeConfig{
			MaxDepth:      viper.GetInt("decompose.max_depth"),
			MinRegionArea: viper.GetFloat64("decompose.min_region_area"),
		},
		Inpaint: types.InpaintConfig{
			Endpoint:    viper.GetString("inpaint.endpoint"),
			AccessKey:   secretDefault("volcengine-access-key", viper.GetString("inpaint.access_key")),
			SecretKey:   secretDefault("volcengine-secret-key", viper.GetString("inpaint.secret_key")),
			MaskPadding: viper.GetInt("inpaint.mask_padding"),
		},
		OCR: types.OCRConfig{
			Endpoint:    viper.GetString("ocr.endpoint"),
			APIKey:      secretDefault("baidu-ocr-api-key", viper.GetString("ocr.api_key")),
			APISecret:   secretDefault("baidu-ocr-api-secret", viper.GetString("ocr.api_secret")),
			MaxImageDim: viper.GetInt("ocr.max_image_dim"),
		},
		Template: types.TemplateConfig{
			Dir:             viper.GetString("template.dir"),
			ContentTemplate: viper.GetString("template.content_template"),
		},
		Workers:   viper.GetInt("workers"),
		WorkDir:   viper.GetString("work_dir"),
		OutputDir: viper.GetString("output_dir"),
	}
	// Extraction results live under the shared work directory.
	cfg.Extraction.WorkDir = cfg.WorkDir
	return cfg
}

func init() {
	convertCmd.Flags().String("output", "", "output pptx path (default: <output-dir>/<stem>.pptx)")
	convertCmd.Flags().String("output-dir", "output", "directory for the generated deck and run manifest")
	convertCmd.Flags().String("results-dir", "", "reuse an existing extraction result directory")
	convertCmd.Flags().Duration("timeout", 0, "run-level timeout (0 = none)")
	convertCmd.Flags().Int("workers", 4, "page worker pool size")

	convertCmd.Flags().String("rasterizer", "pdftoppm", "rasterizer binary name or path")
	convertCmd.Flags().Int("dpi", 144, "page render resolution")

	convertCmd.Flags().Int("max-depth", 3, "maximum recursive decomposition depth")
	convertCmd.Flags().Float64("min-region-area", 10000, "minimum image-region area in square pixels worth a recursive extraction call")

	convertCmd.Flags().String("inpaint-endpoint", "", "background inpainting service URL")
	convertCmd.Flags().String("ocr-endpoint", "", "table-cell OCR service URL")

	convertCmd.Flags().String("template-dir", "", "directory holding template pptx files (empty = brand defaults)")
	convertCmd.Flags().String("template", "", "content-slide template filename")

	viper.BindPFlag("output_dir", convertCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("workers", convertCmd.Flags().Lookup("workers"))
	viper.BindPFlag("rasterize.binary", convertCmd.Flags().Lookup("rasterizer"))
	viper.BindPFlag("rasterize.dpi", convertCmd.Flags().Lookup("dpi"))
	viper.BindPFlag("decompose.max_depth", convertCmd.Flags().Lookup("max-depth"))
	viper.BindPFlag("decompose.min_region_area", convertCmd.Flags().Lookup("min-region-area"))
	viper.BindPFlag("inpaint.endpoint", convertCmd.Flags().Lookup("inpaint-endpoint"))
	viper.BindPFlag("ocr.endpoint", convertCmd.Flags().Lookup("ocr-endpoint"))
	viper.BindPFlag("template.dir", convertCmd.Flags().Lookup("template-dir"))
	viper.BindPFlag("template.content_template", convertCmd.Flags().Lookup("template"))

	rootCmd.AddCommand(convertCmd)
}
