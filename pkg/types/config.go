// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that call a service.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pdf2pptx/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RasterizeConfig holds settings for the rasterization stage.
type RasterizeConfig struct {
	// Binary is the rasterizer executable name or path (default "pdftoppm").
	Binary string `json:"binary" yaml:"binary"`

	// DPI is the render resolution (default 144, twice the PDF default).
	DPI int `json:"dpi" yaml:"dpi"`
}

// ExtractionConfig holds settings for the layout/OCR extraction service.
type ExtractionConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the base URL or full /file_parse URL of the self-hosted
	// extraction service.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Token is an optional bearer token for the service.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// WorkDir is the base directory for extraction results
	// (results land in WorkDir/mineru_files/<id>/).
	WorkDir string `json:"work_dir" yaml:"work_dir"`

	// FormOverrides replaces or adds capability form fields on every call.
	FormOverrides map[string]string `json:"form_overrides,omitempty" yaml:"form_overrides,omitempty"`

	// MaxRetries caps retries of rate-limited requests (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// DecomposeConfig holds settings for recursive element decomposition.
type DecomposeConfig struct {
	// MaxDepth bounds the number of nested region extractions (default 3).
	MaxDepth int `json:"max_depth" yaml:"max_depth"`

	// MinRegionArea is the minimum image-region area in square pixels that
	// warrants a recursive extraction call (default 10000). It never filters
	// text or table records.
	MinRegionArea float64 `json:"min_region_area" yaml:"min_region_area"`
}

// InpaintConfig holds settings for the background inpainting collaborator.
// Empty credentials are a supported configuration: pages then keep their
// original image as background.
type InpaintConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the inpainting service URL.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// AccessKey and SecretKey authenticate against the service. Both must
	// be set for inpainting to be used.
	AccessKey string `json:"access_key,omitempty" yaml:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`

	// MaskPadding is the margin in pixels added around each element box to
	// cover anti-aliasing and shadow artifacts (default 4).
	MaskPadding int `json:"mask_padding" yaml:"mask_padding"`
}

// OCRConfig holds settings for the optional table-cell OCR collaborator.
type OCRConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the OCR service URL.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// APIKey and APISecret authenticate against the service. Cell OCR is
	// enabled only when both are set.
	APIKey    string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty" yaml:"api_secret,omitempty"`

	// MaxImageDim is the maximum width or height in pixels of a crop sent
	// to the service; larger crops are scaled down first (default 4096).
	MaxImageDim int `json:"max_image_dim" yaml:"max_image_dim"`
}

// TemplateConfig holds settings for template-derived styling.
type TemplateConfig struct {
	// Dir is the directory holding template PPTX files. Empty means use
	// brand defaults.
	Dir string `json:"dir" yaml:"dir"`

	// ContentTemplate is the filename of the content-slide template
	// (default "non-title-slide.pptx").
	ContentTemplate string `json:"content_template" yaml:"content_template"`
}

// PipelineConfig groups all stage configurations for one conversion run.
// It is built once in cmd/ from flags, config file, and secrets, and passed
// by reference into every component constructor.
type PipelineConfig struct {
	Rasterize  RasterizeConfig  `json:"rasterize" yaml:"rasterize"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Decompose  DecomposeConfig  `json:"decompose" yaml:"decompose"`
	Inpaint    InpaintConfig    `json:"inpaint" yaml:"inpaint"`
	OCR        OCRConfig        `json:"ocr" yaml:"ocr"`
	Template   TemplateConfig   `json:"template" yaml:"template"`

	// Workers is the size of the per-page worker pool (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// WorkDir is the base working directory for intermediate artifacts
	// (page images, extraction results, the extraction registry).
	WorkDir string `json:"work_dir" yaml:"work_dir"`

	// OutputDir is the directory for the generated PPTX and run manifest.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}
