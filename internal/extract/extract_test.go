// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/pdiddy/pdf2pptx/pkg/types"
)

// buildZip assembles an in-memory zip archive from a name->content map,
// preserving the given order.
func buildZip(t *testing.T, entries []struct{ name, body string }) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(e.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// countFiles returns the number of regular files under dir.
func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestUnpack_PathTraversalWritesNothing(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"dotdot prefix", "../evil.txt"},
		{"dotdot nested", "ok/../../evil.txt"},
		{"absolute path", "/etc/evil.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			payload := buildZip(t, []struct{ name, body string }{
				{"harmless.json", "{}"},
				{tt.entry, "payload"},
			})

			err := Unpack(payload, dir)
			if !errors.Is(err, ErrPathTraversal) {
				t.Fatalf("err = %v, want ErrPathTraversal", err)
			}
			// The unsafe entry sorts after a safe one; nothing at all may
			// have been written.
			if n := countFiles(t, dir); n != 0 {
				t.Errorf("extraction dir contains %d files, want 0", n)
			}
		})
	}
}

func TestUnpack_NonZipPayload(t *testing.T) {
	dir := t.TempDir()
	err := Unpack([]byte(`{"detail":"internal error"}`), dir)

	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("err = %v, want MalformedResponseError", err)
	}
	if !strings.Contains(malformed.Snippet, "internal error") {
		t.Errorf("snippet %q does not include payload head", malformed.Snippet)
	}
}

func TestUnpack_FlattensSingleTopLevelDir(t *testing.T) {
	dir := t.TempDir()
	payload := buildZip(t, []struct{ name, body string }{
		{"bundle/doc_content_list.json", "[]"},
		{"bundle/images/fig1.png", "png"},
		{"__MACOSX/._junk", ""},
	})

	if err := Unpack(payload, dir); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "doc_content_list.json")); err != nil {
		t.Errorf("content list not hoisted to root: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "images", "fig1.png")); err != nil {
		t.Errorf("nested image not hoisted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bundle")); !os.IsNotExist(err) {
		t.Errorf("wrapper directory still present")
	}
}

func TestUnpack_TwoTopLevelDirsLeftAlone(t *testing.T) {
	dir := t.TempDir()
	payload := buildZip(t, []struct{ name, body string }{
		{"one/a.json", "{}"},
		{"two/b.json", "{}"},
	})

	if err := Unpack(payload, dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "one", "a.json")); err != nil {
		t.Errorf("expected one/a.json to survive: %v", err)
	}
}

func TestNormalize_BackfillsLayoutFromUniqueMiddle(t *testing.T) {
	dir := t.TempDir()
	middle := []byte(`{"pdf_info":[]}`)
	if err := os.WriteFile(filepath.Join(dir, "doc_middle.json"), middle, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "doc_content_list.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Normalize(dir, "doc"); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "layout.json"))
	if err != nil {
		t.Fatalf("layout.json not backfilled: %v", err)
	}
	if !bytes.Equal(got, middle) {
		t.Errorf("layout.json = %q, want middle-json contents", got)
	}
}

func TestNormalize_PrefersStemMiddleWhenSeveral(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "doc_middle.json"), []byte(`{"which":"stem"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "other_middle.json"), []byte(`{"which":"other"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "doc_content_list.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Normalize(dir, "doc"); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "layout.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "stem") {
		t.Errorf("layout.json = %q, want the <stem>_middle.json contents", got)
	}
}

func TestNormalize_AmbiguousMiddleIsFatal(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a_middle.json", "b_middle.json", "doc_content_list.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	err := Normalize(dir, "doc")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want ConfigurationError", err)
	}
	if len(cfgErr.Candidates) != 2 {
		t.Errorf("candidates = %v, want both middle-json paths", cfgErr.Candidates)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "layout.json")); !os.IsNotExist(statErr) {
		t.Errorf("layout.json must not be written on ambiguity")
	}
}

func TestNormalize_NoMiddleProceedsWithoutLayout(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "doc_content_list.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Normalize(dir, "doc"); err != nil {
		t.Fatalf("Normalize() = %v, want nil", err)
	}
}

func TestNormalize_MissingContentList(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "doc.md"), []byte("# doc"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Normalize(dir, "doc")
	var missing *MissingArtifactError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingArtifactError", err)
	}
	if missing.Artifact != "*_content_list.json" {
		t.Errorf("artifact = %q", missing.Artifact)
	}
	found := false
	for _, entry := range missing.Listing {
		if entry == "doc.md" {
			found = true
		}
	}
	if !found {
		t.Errorf("listing %v does not name the extracted entries", missing.Listing)
	}
}

func TestParsePDF_EndToEnd(t *testing.T) {
	bundle := buildZip(t, []struct{ name, body string }{
		{"deck/deck_content_list.json", `[{"type":"text","text":"Title slide","text_level":1,"bbox":[10,10,200,40],"page_idx":0}]`},
		{"deck/deck_middle.json", `{"pdf_info":[]}`},
	})

	var gotFields map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		gotFields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				gotFields[k] = v[0]
			}
		}
		if _, _, err := r.FormFile("files"); err != nil {
			t.Errorf("missing files part: %v", err)
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Write(bundle)
	}))
	defer srv.Close()

	workDir := t.TempDir()
	client, err := NewClient(types.ExtractionConfig{
		Endpoint: srv.URL,
		WorkDir:  workDir,
	})
	if err != nil {
		t.Fatal(err)
	}

	pdfPath := filepath.Join(workDir, "deck.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.5 fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	id, dir, err := client.ParsePDF(context.Background(), pdfPath, nil)
	if err != nil {
		t.Fatal(err)
	}

	if !regexp.MustCompile(`^[0-9a-f]{8}$`).MatchString(id) {
		t.Errorf("extract id = %q, want 8 hex characters", id)
	}
	if dir != filepath.Join(workDir, "mineru_files", id) {
		t.Errorf("result dir = %q, not under mineru_files/<id>", dir)
	}

	for field, want := range map[string]string{
		"return_content_list": "true",
		"return_middle_json":  "true",
		"response_format_zip": "true",
		"backend":             "hybrid-auto-engine",
		"end_page_id":         "99999",
	} {
		if gotFields[field] != want {
			t.Errorf("form field %s = %q, want %q", field, gotFields[field], want)
		}
	}

	// Raw payload persisted alongside the extracted artifacts.
	matches, err := filepath.Glob(filepath.Join(dir, "deck-mineru-*.zip"))
	if err != nil || len(matches) != 1 {
		t.Errorf("persisted zip matches = %v (err %v), want exactly one", matches, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "layout.json")); err != nil {
		t.Errorf("layout.json not backfilled: %v", err)
	}

	result, err := LoadResult(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Records) != 1 || result.Records[0].Text != "Title slide" {
		t.Errorf("records = %+v", result.Records)
	}
}

func TestParsePDF_FieldOverrides(t *testing.T) {
	bundle := buildZip(t, []struct{ name, body string }{
		{"x_content_list.json", "[]"},
	})
	var gotLang, gotTables string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(32 << 20)
		gotLang = r.FormValue("lang_list")
		gotTables = r.FormValue("table_enable")
		w.Write(bundle)
	}))
	defer srv.Close()

	workDir := t.TempDir()
	client, err := NewClient(types.ExtractionConfig{
		Endpoint:      srv.URL,
		WorkDir:       workDir,
		FormOverrides: map[string]string{"lang_list": "de"},
	})
	if err != nil {
		t.Fatal(err)
	}
	imgPath := filepath.Join(workDir, "region.png")
	if err := os.WriteFile(imgPath, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err = client.ParseImage(context.Background(), imgPath, map[string]string{"table_enable": "false"})
	if err != nil {
		t.Fatal(err)
	}
	if gotLang != "de" {
		t.Errorf("lang_list = %q, want config override applied", gotLang)
	}
	if gotTables != "false" {
		t.Errorf("table_enable = %q, want per-call override applied", gotTables)
	}
}

func TestParsePDF_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"model not loaded"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	workDir := t.TempDir()
	client, err := NewClient(types.ExtractionConfig{Endpoint: srv.URL, WorkDir: workDir})
	if err != nil {
		t.Fatal(err)
	}
	pdfPath := filepath.Join(workDir, "deck.pdf")
	if err := os.WriteFile(pdfPath, []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err = client.ParsePDF(context.Background(), pdfPath, nil)
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("err = %v, want ServiceError", err)
	}
	if svcErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d", svcErr.Status)
	}
	if !strings.Contains(svcErr.Snippet, "model not loaded") {
		t.Errorf("snippet = %q", svcErr.Snippet)
	}
	if entries, readErr := os.ReadDir(filepath.Join(workDir, "mineru_files")); readErr == nil && len(entries) != 0 {
		t.Errorf("failed call left result directories behind: %v", entries)
	}
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(types.ExtractionConfig{})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want ConfigurationError", err)
	}
}

func TestResolveEndpoint(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://mineru:8000", "http://mineru:8000/file_parse"},
		{"http://mineru:8000/", "http://mineru:8000/file_parse"},
		{"http://mineru:8000/file_parse", "http://mineru:8000/file_parse"},
	}
	for _, tt := range tests {
		if got := resolveEndpoint(tt.in); got != tt.want {
			t.Errorf("resolveEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadResult_ResolvesImagePaths(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "auto")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	records := `[{"type":"image","img_path":"images/fig1.png","bbox":[0,0,100,100],"page_idx":0}]`
	if err := os.WriteFile(filepath.Join(sub, "deck_content_list.json"), []byte(records), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadResult(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(sub, "images", "fig1.png")
	if result.Records[0].ImgPath != want {
		t.Errorf("img path = %q, want %q", result.Records[0].ImgPath, want)
	}
}

func TestContentRecord_Bounds(t *testing.T) {
	tests := []struct {
		name   string
		bbox   []float64
		wantOK bool
	}{
		{"valid", []float64{10, 10, 200, 40}, true},
		{"missing", nil, false},
		{"short", []float64{1, 2, 3}, false},
		{"degenerate", []float64{50, 50, 50, 50}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ContentRecord{BBox: tt.bbox}
			b, ok := rec.Bounds()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (b.Width() != 190 || b.Height() != 30) {
				t.Errorf("bounds = %+v", b)
			}
		})
	}
}

func TestParseTableBody(t *testing.T) {
	body := `<table><tr><th>Region</th><th>Q1</th></tr><tr><td>EMEA</td><td>42</td></tr></table>`
	grid := ParseTableBody(body)
	if len(grid) != 2 {
		t.Fatalf("rows = %d, want 2", len(grid))
	}
	if grid[0][0] != "Region" || grid[1][1] != "42" {
		t.Errorf("grid = %v", grid)
	}
	if ParseTableBody("<p>no table</p>") != nil {
		t.Errorf("expected nil grid for markup without rows")
	}
}
