// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inpaint removes foreground content from page images through an
// external inpainting service, producing clean slide backgrounds. The stage
// is optional: without credentials every page keeps its original image and
// is marked degraded. See docs/ARCHITECTURE § Background Synthesis.
package inpaint

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/pdf2pptx/pkg/types"
)

const defaultMaskPadding = 4

// Synthesizer produces a clean background for a page image.
type Synthesizer interface {
	// Enabled reports whether the stage has credentials and will actually
	// call the service.
	Enabled() bool

	// Synthesize requests removal of the given foreground regions from the
	// page image. It returns the path of the background image to use and
	// whether the page is degraded (original image kept). A transient
	// service failure degrades the page and is reported on the status
	// writer; it is never returned as an error.
	Synthesize(ctx context.Context, page types.Page, regions []types.BBox, out io.Writer) (string, bool)
}

// Client talks to the inpainting service.
type Client struct {
	cfg  types.InpaintConfig
	http *http.Client
}

// NewClient builds the background synthesis stage. Missing credentials are
// a supported configuration; the returned client reports Enabled() == false
// and passes every page through unchanged.
func NewClient(cfg types.InpaintConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if cfg.MaskPadding <= 0 {
		cfg.MaskPadding = defaultMaskPadding
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool {
	return c.cfg.AccessKey != "" && c.cfg.SecretKey != "" && c.cfg.Endpoint != ""
}

// inpaintRequest is the service request body. Masks are pixel rectangles in
// the coordinate space of the submitted image.
type inpaintRequest struct {
	ImageBase64 string     `json:"image_base64"`
	Masks       []maskRect `json:"masks"`
}

type maskRect struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

type inpaintResponse struct {
	ImageBase64 string `json:"image_base64"`
	Message     string `json:"message,omitempty"`
}

func (c *Client) Synthesize(ctx context.Context, page types.Page, regions []types.BBox, out io.Writer) (string, bool) {
	if !c.Enabled() {
		return page.ImagePath, true
	}
	if len(regions) == 0 {
		// Nothing to remove; the original image is already clean.
		return page.ImagePath, false
	}

	cleanPath, err := c.inpaint(ctx, page, regions)
	if err != nil {
		fmt.Fprintf(out, "degraded: page %d (inpainting failed: %v)\n", page.Index, err)
		return page.ImagePath, true
	}
	return cleanPath, false
}

func (c *Client) inpaint(ctx context.Context, page types.Page, regions []types.BBox) (string, error) {
	imgData, err := os.ReadFile(page.ImagePath)
	if err != nil {
		return "", fmt.Errorf("reading page image: %w", err)
	}

	pageBounds := types.NewBBox(0, 0, float64(page.Width), float64(page.Height))
	masks := make([]maskRect, 0, len(regions))
	for _, r := range regions {
		padded := r.Pad(float64(c.cfg.MaskPadding)).Clamp(pageBounds)
		if padded.IsEmpty() {
			continue
		}
		masks = append(masks, maskRect{
			X0: int(padded.X0), Y0: int(padded.Y0),
			X1: int(padded.X1), Y1: int(padded.Y1),
		})
	}

	body, err := json.Marshal(inpaintRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(imgData),
		Masks:       masks,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Access-Key", c.cfg.AccessKey)
	req.Header.Set("X-Secret-Key", c.cfg.SecretKey)
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("inpainting request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("inpainting service returned HTTP %d: %s", resp.StatusCode, truncate(payload, 500))
	}

	var parsed inpaintResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	clean, err := base64.StdEncoding.DecodeString(parsed.ImageBase64)
	if err != nil {
		return "", fmt.Errorf("decoding cleaned image: %w", err)
	}

	stem := strings.TrimSuffix(page.ImagePath, filepath.Ext(page.ImagePath))
	cleanPath := stem + "_clean.png"
	if err := os.WriteFile(cleanPath, clean, 0o644); err != nil {
		return "", fmt.Errorf("saving cleaned image: %w", err)
	}
	return cleanPath, nil
}

func truncate(b []byte, limit int) string {
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}
