// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inpaint

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/pdf2pptx/pkg/types"
)

func writePageImage(t *testing.T, dir string) types.Page {
	t.Helper()
	path := filepath.Join(dir, "page_000.png")
	if err := os.WriteFile(path, []byte("fake png bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return types.Page{Index: 0, Width: 1920, Height: 1080, ImagePath: path}
}

func TestSynthesize_NoCredentialsIsIdentity(t *testing.T) {
	client := NewClient(types.InpaintConfig{})
	page := writePageImage(t, t.TempDir())

	var log bytes.Buffer
	got, degraded := client.Synthesize(context.Background(), page, []types.BBox{types.NewBBox(0, 0, 10, 10)}, &log)

	if got != page.ImagePath {
		t.Errorf("path = %q, want original image", got)
	}
	if !degraded {
		t.Error("expected degraded mode without credentials")
	}
	if client.Enabled() {
		t.Error("Enabled() = true without credentials")
	}
}

func TestSynthesize_CleansBackground(t *testing.T) {
	cleaned := []byte("cleaned png bytes")
	var gotMasks []maskRect
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Access-Key") != "ak" || r.Header.Get("X-Secret-Key") != "sk" {
			t.Errorf("credentials not forwarded")
		}
		var req inpaintRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		gotMasks = req.Masks
		json.NewEncoder(w).Encode(inpaintResponse{
			ImageBase64: base64.StdEncoding.EncodeToString(cleaned),
		})
	}))
	defer srv.Close()

	client := NewClient(types.InpaintConfig{
		Endpoint:    srv.URL,
		AccessKey:   "ak",
		SecretKey:   "sk",
		MaskPadding: 8,
	})
	page := writePageImage(t, t.TempDir())

	var log bytes.Buffer
	got, degraded := client.Synthesize(context.Background(), page, []types.BBox{types.NewBBox(100, 100, 200, 150)}, &log)

	if degraded {
		t.Fatalf("unexpected degraded mode, log: %s", log.String())
	}
	if !strings.HasSuffix(got, "page_000_clean.png") {
		t.Errorf("clean path = %q", got)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, cleaned) {
		t.Errorf("clean image contents = %q", data)
	}

	// Padding applied around the region.
	if len(gotMasks) != 1 || gotMasks[0].X0 != 92 || gotMasks[0].Y1 != 158 {
		t.Errorf("masks = %+v, want padded region", gotMasks)
	}
}

func TestSynthesize_MaskClampedToPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req inpaintRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Masks[0].X0 != 0 || req.Masks[0].Y0 != 0 {
			t.Errorf("mask not clamped: %+v", req.Masks[0])
		}
		json.NewEncoder(w).Encode(inpaintResponse{
			ImageBase64: base64.StdEncoding.EncodeToString([]byte("ok")),
		})
	}))
	defer srv.Close()

	client := NewClient(types.InpaintConfig{Endpoint: srv.URL, AccessKey: "ak", SecretKey: "sk"})
	page := writePageImage(t, t.TempDir())

	var log bytes.Buffer
	client.Synthesize(context.Background(), page, []types.BBox{types.NewBBox(1, 1, 50, 50)}, &log)
}

func TestSynthesize_TransientFailureDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(types.InpaintConfig{Endpoint: srv.URL, AccessKey: "ak", SecretKey: "sk"})
	page := writePageImage(t, t.TempDir())

	var log bytes.Buffer
	got, degraded := client.Synthesize(context.Background(), page, []types.BBox{types.NewBBox(0, 0, 10, 10)}, &log)

	if got != page.ImagePath {
		t.Errorf("path = %q, want original image on failure", got)
	}
	if !degraded {
		t.Error("expected degraded mode on service failure")
	}
	if !strings.Contains(log.String(), "degraded: page 0") {
		t.Errorf("log = %q, want degraded warning", log.String())
	}
}

func TestSynthesize_NoRegionsSkipsCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewClient(types.InpaintConfig{Endpoint: srv.URL, AccessKey: "ak", SecretKey: "sk"})
	page := writePageImage(t, t.TempDir())

	var log bytes.Buffer
	got, degraded := client.Synthesize(context.Background(), page, nil, &log)

	if called {
		t.Error("service called for a page with no foreground regions")
	}
	if got != page.ImagePath || degraded {
		t.Errorf("got %q degraded=%v, want original image, not degraded", got, degraded)
	}
}
