// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr recognizes text in cropped table-cell images through an
// external OCR service. The stage is optional: it is enabled only when both
// API credentials are configured, and the decomposition engine falls back
// to the extraction service's own cell text when it is not.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/pdf2pptx/internal/imaging"
	"github.com/pdiddy/pdf2pptx/pkg/types"
)

// defaultMaxImageDim is the largest crop edge submitted without downscaling.
const defaultMaxImageDim = 4096

// Recognizer turns a cell image into its text content.
type Recognizer interface {
	// Enabled reports whether credentials are configured.
	Enabled() bool

	// Recognize returns the text found in the image at path. Lines are
	// joined with newlines.
	Recognize(ctx context.Context, path string) (string, error)
}

// Client implements Recognizer against a token-authenticated OCR service.
type Client struct {
	cfg  types.OCRConfig
	http *http.Client

	mu    sync.Mutex
	token string
}

// NewClient builds the OCR stage. Missing credentials are a supported
// configuration; the returned client reports Enabled() == false.
func NewClient(cfg types.OCRConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool {
	return c.cfg.APIKey != "" && c.cfg.APISecret != ""
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Error       string `json:"error,omitempty"`
	ErrorDesc   string `json:"error_description,omitempty"`
}

type recognizeResponse struct {
	WordsResult []struct {
		Words string `json:"words"`
	} `json:"words_result"`
	ErrorCode int    `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`
}

// Recognize submits the image as base64 form data. The access token is
// fetched lazily on the first call and cached for the process lifetime.
func (c *Client) Recognize(ctx context.Context, path string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("ocr credentials not configured")
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	data, err := c.cellPayload(path)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("image", base64.StdEncoding.EncodeToString(data))

	endpoint := c.cfg.Endpoint + "?access_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("ocr service returned HTTP %d", resp.StatusCode)
	}

	var parsed recognizeResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if parsed.ErrorCode != 0 {
		return "", fmt.Errorf("ocr service error %d: %s", parsed.ErrorCode, parsed.ErrorMsg)
	}

	lines := make([]string, 0, len(parsed.WordsResult))
	for _, w := range parsed.WordsResult {
		if w.Words != "" {
			lines = append(lines, w.Words)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// cellPayload returns the image bytes to submit. Crops above the configured
// maximum dimension are downscaled so the service's size limit is never hit;
// inputs that do not decode as PNG pass through untouched.
func (c *Client) cellPayload(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cell image: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return data, nil
	}

	maxDim := c.cfg.MaxImageDim
	if maxDim <= 0 {
		maxDim = defaultMaxImageDim
	}
	scaled := imaging.Downscale(img, maxDim)
	if scaled == img {
		return data, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encoding scaled cell image: %w", err)
	}
	return buf.Bytes(), nil
}

// accessToken exchanges the API key pair for a bearer token. The token
// endpoint is derived from the recognize endpoint's host.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	base, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing ocr endpoint: %w", err)
	}
	tokenURL := fmt.Sprintf("%s://%s/oauth/2.0/token?grant_type=client_credentials&client_id=%s&client_secret=%s",
		base.Scheme, base.Host,
		url.QueryEscape(c.cfg.APIKey), url.QueryEscape(c.cfg.APISecret))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("parsing token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("token request failed: %s %s", parsed.Error, parsed.ErrorDesc)
	}

	c.token = parsed.AccessToken
	return c.token, nil
}
