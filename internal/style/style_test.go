// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package style

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/pdf2pptx/pkg/types"
)

// writeTemplate assembles a minimal pptx file whose slide parts carry the
// given XML bodies, keyed by part name.
func writeTemplate(t *testing.T, dir, name string, parts map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for partName, body := range parts {
		w, err := zw.Create(partName)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func slideWith(shapes string) string {
	return `<?xml version="1.0"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
       xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree>` + shapes + `</p:spTree></p:cSld>
</p:sld>`
}

func titleShape(phType, typeface, bold, color, text string) string {
	fill := ""
	if color != "" {
		fill = `<a:solidFill><a:srgbClr val="` + color + `"/></a:solidFill>`
	}
	boldAttr := ""
	if bold != "" {
		boldAttr = ` b="` + bold + `"`
	}
	return `<p:sp>
  <p:nvSpPr><p:nvPr><p:ph type="` + phType + `"/></p:nvPr></p:nvSpPr>
  <p:txBody><a:p><a:r>
    <a:rPr` + boldAttr + `>` + fill + `<a:latin typeface="` + typeface + `"/></a:rPr>
    <a:t>` + text + `</a:t>
  </a:r></a:p></p:txBody>
</p:sp>`
}

func TestExtract_MissingTemplateUsesDefaults(t *testing.T) {
	var log bytes.Buffer
	got := Extract(types.TemplateConfig{Dir: t.TempDir()}, &log)

	if got.Title.Name != types.DefaultTitleFont || !got.Title.Bold {
		t.Errorf("title = %+v", got.Title)
	}
	if got.Body.Name != types.DefaultBodyFont || got.Body.Bold {
		t.Errorf("body = %+v", got.Body)
	}
	if got.Source != "defaults" {
		t.Errorf("source = %q", got.Source)
	}
	if !strings.Contains(log.String(), "defaulted: style") {
		t.Errorf("log = %q", log.String())
	}
}

func TestExtract_FromTemplate(t *testing.T) {
	dir := t.TempDir()
	slide := slideWith(
		titleShape("ctrTitle", "Graphik Semibold", "1", "00B388", "Quarterly Review") +
			titleShape("body", "Graphik", "", "", "Agenda items"),
	)
	path := writeTemplate(t, dir, "non-title-slide.pptx", map[string]string{
		"ppt/slides/slide1.xml": slide,
	})

	var log bytes.Buffer
	got := Extract(types.TemplateConfig{Dir: dir}, &log)

	if got.Title.Name != "Graphik Semibold" || !got.Title.Bold {
		t.Errorf("title = %+v", got.Title)
	}
	if got.Title.Color == nil || got.Title.Color.G != 0xB3 {
		t.Errorf("title color = %+v", got.Title.Color)
	}
	if got.Body.Name != "Graphik" || got.Body.Bold {
		t.Errorf("body = %+v", got.Body)
	}
	if got.Body.Color != nil {
		t.Errorf("body color = %+v, want none", got.Body.Color)
	}
	if got.Source != path {
		t.Errorf("source = %q, want %q", got.Source, path)
	}
}

func TestExtract_FirstMatchWins(t *testing.T) {
	dir := t.TempDir()
	slide := slideWith(
		titleShape("title", "First Font", "1", "", "one") +
			titleShape("title", "Second Font", "1", "", "two"),
	)
	writeTemplate(t, dir, "non-title-slide.pptx", map[string]string{
		"ppt/slides/slide1.xml": slide,
	})

	var log bytes.Buffer
	got := Extract(types.TemplateConfig{Dir: dir}, &log)
	if got.Title.Name != "First Font" {
		t.Errorf("title font = %q, want first match", got.Title.Name)
	}
}

func TestExtract_SkipsEmptyRunsAndOtherPlaceholders(t *testing.T) {
	dir := t.TempDir()
	slide := slideWith(
		titleShape("title", "Ghost Font", "1", "", "   ") + // whitespace only
			titleShape("sldNum", "Number Font", "", "", "3") + // other category
			titleShape("title", "Real Font", "1", "", "Heading"),
	)
	writeTemplate(t, dir, "non-title-slide.pptx", map[string]string{
		"ppt/slides/slide1.xml": slide,
	})

	var log bytes.Buffer
	got := Extract(types.TemplateConfig{Dir: dir}, &log)
	if got.Title.Name != "Real Font" {
		t.Errorf("title font = %q", got.Title.Name)
	}
}

func TestExtract_CorruptTemplateUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "non-title-slide.pptx"), []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	var log bytes.Buffer
	got := Extract(types.TemplateConfig{Dir: dir}, &log)
	if got.Source != "defaults" {
		t.Errorf("source = %q, want defaults", got.Source)
	}
}

func TestExtract_CustomTemplateName(t *testing.T) {
	dir := t.TempDir()
	slide := slideWith(titleShape("title", "Custom Font", "1", "", "x"))
	writeTemplate(t, dir, "brand.pptx", map[string]string{
		"ppt/slides/slide1.xml": slide,
	})

	var log bytes.Buffer
	got := Extract(types.TemplateConfig{Dir: dir, ContentTemplate: "brand.pptx"}, &log)
	if got.Title.Name != "Custom Font" {
		t.Errorf("title font = %q", got.Title.Name)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want *types.RGB
	}{
		{"FF0000", &types.RGB{R: 255}},
		{"#00ff00", &types.RGB{G: 255}},
		{"0000FF", &types.RGB{B: 255}},
		{"FFF", nil},
		{"GGHHII", nil},
		{"", nil},
		{"FF0000AA", nil},
	}
	for _, tt := range tests {
		got := parseColor(tt.in)
		if (got == nil) != (tt.want == nil) {
			t.Errorf("parseColor(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		if got != nil && *got != *tt.want {
			t.Errorf("parseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		phType string
		want   placeholderCategory
	}{
		{"title", categoryTitle},
		{"ctrTitle", categoryTitle},
		{"body", categoryBody},
		{"subTitle", categoryBody},
		{"ftr", categoryBody},
		{"", categoryBody},
		{"sldNum", categoryOther},
		{"dt", categoryOther},
	}
	for _, tt := range tests {
		if got := categoryOf(tt.phType); got != tt.want {
			t.Errorf("categoryOf(%q) = %d, want %d", tt.phType, got, tt.want)
		}
	}
}
