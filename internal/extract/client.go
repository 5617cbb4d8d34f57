// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract talks to the self-hosted layout/OCR extraction service,
// unpacks its zip result bundles safely, and normalizes them into the
// canonical result-directory contract consumed by the decomposition engine.
// See docs/ARCHITECTURE § Extraction.
package extract

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/pdf2pptx/internal/httputil"
	"github.com/pdiddy/pdf2pptx/pkg/types"
)

const (
	// resultsDir is the subdirectory under the work dir for result bundles.
	resultsDir = "mineru_files"

	// snippetLimit caps diagnostic payload snippets.
	snippetLimit = 10000
)

// defaultFormFields are the capability flags sent with every extraction
// call. Callers can override individual fields per call.
func defaultFormFields() map[string]string {
	return map[string]string{
		"return_content_list": "true",
		"return_middle_json":  "true",
		"return_model_output": "true",
		"return_md":           "true",
		"return_images":       "true",
		"response_format_zip": "true",
		"table_enable":        "true",
		"formula_enable":      "true",
		"parse_method":        "auto",
		"backend":             "hybrid-auto-engine",
		"start_page_id":       "0",
		"end_page_id":         "99999",
		"lang_list":           "en",
		"output_dir":          "./output",
		"server_url":          "string",
	}
}

// Client performs extraction calls and owns the result-directory layout.
type Client struct {
	cfg      types.ExtractionConfig
	http     *http.Client
	endpoint string
}

// NewClient builds a client for the configured extraction endpoint. The
// endpoint may be a base URL or the full /file_parse URL.
func NewClient(cfg types.ExtractionConfig) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, &ConfigurationError{Reason: "extraction endpoint is not configured"}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: timeout},
		endpoint: resolveEndpoint(cfg.Endpoint),
	}, nil
}

// resolveEndpoint accepts either a base URL or a full /file_parse URL and
// returns the full endpoint.
func resolveEndpoint(raw string) string {
	url := strings.TrimSpace(raw)
	if strings.HasSuffix(url, "/file_parse") {
		return url
	}
	return strings.TrimRight(url, "/") + "/file_parse"
}

// Endpoint returns the resolved /file_parse URL.
func (c *Client) Endpoint() string { return c.endpoint }

// ParsePDF submits a PDF for extraction and returns the extraction id and
// the normalized result directory.
func (c *Client) ParsePDF(ctx context.Context, pdfPath string, overrides map[string]string) (string, string, error) {
	return c.parse(ctx, pdfPath, "application/pdf", overrides)
}

// ParseImage submits a page or sub-region image for extraction. Used by the
// decomposition engine for recursive region analysis.
func (c *Client) ParseImage(ctx context.Context, imagePath string, overrides map[string]string) (string, string, error) {
	return c.parse(ctx, imagePath, "image/png", overrides)
}

// parse performs one synchronous extraction call: multipart upload, zip
// download, safe unpack, and normalization. The returned directory satisfies
// the canonical contract (content list present, layout backfilled).
func (c *Client) parse(ctx context.Context, inputPath, contentType string, overrides map[string]string) (extractID string, resultDir string, err error) {
	if _, err := os.Stat(inputPath); err != nil {
		return "", "", fmt.Errorf("input file: %w", err)
	}

	payload, err := c.post(ctx, inputPath, contentType, overrides)
	if err != nil {
		return "", "", err
	}

	// The result directory is created only once there is a payload to
	// persist, so a failed call leaves no empty directory behind.
	extractID = newExtractID()
	resultDir = filepath.Join(c.cfg.WorkDir, resultsDir, extractID)
	if err := os.MkdirAll(resultDir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating result directory: %w", err)
	}

	// Persist the raw response before validating it, so a malformed payload
	// can be inspected offline.
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	zipName := fmt.Sprintf("%s-mineru-%s.zip", stem, time.Now().Format("20060102-150405"))
	zipPath := filepath.Join(resultDir, zipName)
	if err := os.WriteFile(zipPath, payload, 0o644); err != nil {
		return "", "", fmt.Errorf("saving response payload: %w", err)
	}

	if err := Unpack(payload, resultDir); err != nil {
		var malformed *MalformedResponseError
		if errors.As(err, &malformed) {
			malformed.SavedTo = zipPath
		}
		return "", "", err
	}
	if err := Normalize(resultDir, stem); err != nil {
		return "", "", err
	}

	return extractID, resultDir, nil
}

// post uploads the input file with the capability form fields and returns
// the raw response payload.
func (c *Client) post(ctx context.Context, inputPath, contentType string, overrides map[string]string) ([]byte, error) {
	fields := defaultFormFields()
	for k, v := range c.cfg.FormOverrides {
		fields[k] = v
	}
	for k, v := range overrides {
		fields[k] = v
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("writing form field %s: %w", k, err)
		}
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", inputPath, err)
	}
	defer f.Close()

	part, err := filePart(mw, filepath.Base(inputPath), contentType)
	if err != nil {
		return nil, fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copying upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(body.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("extraction request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServiceError{
			Endpoint: c.endpoint,
			Status:   resp.StatusCode,
			Snippet:  truncate(string(payload), snippetLimit),
		}
	}
	return payload, nil
}

// filePart adds the upload part under the field name the service expects,
// with an explicit content type.
func filePart(mw *multipart.Writer, filename, contentType string) (io.Writer, error) {
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{
		fmt.Sprintf(`form-data; name="files"; filename="%s"`, filename),
	}
	h["Content-Type"] = []string{contentType}
	return mw.CreatePart(h)
}

// newExtractID returns an 8-hex-character extraction identifier. The id
// names the result directory, so directory identity and logical identity
// coincide.
func newExtractID() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failure is unrecoverable on any supported platform.
		panic(fmt.Sprintf("reading random bytes: %v", err))
	}
	return hex.EncodeToString(b[:])
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "\n... (truncated) ..."
}
